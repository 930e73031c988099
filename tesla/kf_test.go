package tesla

import (
	"testing"
)

func TestKF1D_ResetsOnFirstSample(t *testing.T) {
	kf := NewSpeedFilter()
	v, a := kf.Update(20)
	approx(t, 20, v, 1e-12)
	approx(t, 0, a, 1e-12)
}

func TestKF1D_Converges(t *testing.T) {
	kf := NewSpeedFilter()
	kf.Update(4)
	var v, a float64
	for i := 0; i < 1000; i++ {
		v, a = kf.Update(5)
	}
	approx(t, 5, v, 1e-3)
	approx(t, 0, a, 1e-3)
}

func TestKF1D_TracksRamp(t *testing.T) {
	kf := NewSpeedFilter()
	var a float64
	for i := 0; i < 2000; i++ {
		_, a = kf.Update(10 + 1.5*float64(i)*DtCtrl)
	}
	approx(t, 1.5, a, 0.05)
}

func TestKF1D_JumpResets(t *testing.T) {
	kf := NewSpeedFilter()
	for i := 0; i < 100; i++ {
		kf.Update(10)
	}
	v, a := kf.Update(13)
	approx(t, 13, v, 1e-12)
	approx(t, 0, a, 1e-12)

	// a jump at the threshold is filtered, not reset
	v, _ = kf.Update(15)
	approx(t, 13+0.12287673*2, v, 1e-9)
}
