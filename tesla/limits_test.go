package tesla

import (
	"math"
	"math/rand"
	"testing"

	"gotest.tools/v3/assert"
)

func approx(t *testing.T, want, got, tol float64) {
	t.Helper()
	assert.Assert(t, math.Abs(want-got) <= tol, "want %v got %v (tol %v)", want, got, tol)
}

func TestInterp(t *testing.T) {
	xp, fp := []float64{0, 5, 15}, []float64{10, 1.6, 0.3}
	approx(t, 10, interp(-1, xp, fp), 0)
	approx(t, 10, interp(0, xp, fp), 0)
	approx(t, 5.8, interp(2.5, xp, fp), 1e-9)
	approx(t, 0.95, interp(10, xp, fp), 1e-9)
	approx(t, 0.3, interp(40, xp, fp), 0)
}

func TestAngleRateLimitFor(t *testing.T) {
	p := CarControllerParams
	for _, tt := range []struct {
		name          string
		desired, last float64
		v             float64
		want          float64
	}{
		{name: "up at standstill", desired: 30, last: 0, v: 0, want: 10},
		{name: "up mid speed", desired: 5, last: 2, v: 10, want: 0.95},
		{name: "up highway", desired: -5, last: -2, v: 30, want: 0.3},
		{name: "down mid speed", desired: 0, last: 5, v: 10, want: 3.9},
		{name: "crossing center uses down", desired: -3, last: 2, v: 15, want: 0.8},
	} {
		t.Run(tt.name, func(t *testing.T) {
			approx(t, tt.want, AngleRateLimitFor(tt.desired, tt.last, tt.v, p), 1e-9)
		})
	}
}

func TestApplyStdSteerAngleLimits(t *testing.T) {
	p := CarControllerParams
	approx(t, 10, ApplyStdSteerAngleLimits(30, 0, 0, p), 1e-9)
	approx(t, 1.1, ApplyStdSteerAngleLimits(0, 5, 10, p), 1e-9)
	approx(t, 2.3, ApplyStdSteerAngleLimits(2.3, 2, 10, p), 1e-9)
}

func TestApplyStdSteerAngleLimits_Bounded(t *testing.T) {
	p := CarControllerParams
	rng := rand.New(rand.NewSource(1))
	last := 0.0
	for i := 0; i < 5000; i++ {
		desired := rng.Float64()*360 - 180
		v := rng.Float64() * 40
		lim := AngleRateLimitFor(desired, last, v, p)
		got := ApplyStdSteerAngleLimits(desired, last, v, p)
		assert.Assert(t, math.Abs(got-last) <= lim+1e-9, "step %d: |%v-%v| > %v", i, got, last, lim)
		if math.Abs(desired-last) <= lim {
			approx(t, desired, got, 1e-12)
		}
		last = got
	}
}
