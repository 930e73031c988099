package tesla

import "math"

// SpeedFilter turns raw wheel speed into filtered speed and acceleration.
type SpeedFilter interface {
	Update(vRaw float64) (vEgo, aEgo float64)
}

// KF1D is a constant-acceleration Kalman filter with steady-state gain,
// tuned for the 100 Hz adapter tick.
type KF1D struct {
	x0, x1 float64 // speed, acceleration
	a01    float64
	k0, k1 float64
	// ResetThreshold re-seeds the state when a measurement jumps by more than
	// this many m/s, so a car started at non-zero speed does not report a huge
	// acceleration.
	ResetThreshold float64
}

func NewSpeedFilter() *KF1D {
	return &KF1D{
		a01:            DtCtrl,
		k0:             0.12287673,
		k1:             0.29666309,
		ResetThreshold: 2.0,
	}
}

func (kf *KF1D) Update(vRaw float64) (float64, float64) {
	if math.Abs(vRaw-kf.x0) > kf.ResetThreshold {
		kf.x0, kf.x1 = vRaw, 0
	}
	// predict
	p0 := kf.x0 + kf.a01*kf.x1
	p1 := kf.x1
	// correct
	innov := vRaw - p0
	kf.x0 = p0 + kf.k0*innov
	kf.x1 = p1 + kf.k1*innov
	return kf.x0, kf.x1
}
