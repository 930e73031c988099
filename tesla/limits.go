package tesla

import "math"

// interp is piecewise-linear interpolation over ascending breakpoints,
// clamped to the end values outside the range.
func interp(x float64, xp, fp []float64) float64 {
	n := len(xp)
	if n == 0 {
		return 0
	}
	if x <= xp[0] {
		return fp[0]
	}
	if x >= xp[n-1] {
		return fp[n-1]
	}
	for i := 1; i < n; i++ {
		if x <= xp[i] {
			t := (x - xp[i-1]) / (xp[i] - xp[i-1])
			return fp[i-1] + t*(fp[i]-fp[i-1])
		}
	}
	return fp[n-1]
}

func clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

// AngleRateLimitFor returns the per-step angle bound at vEgo, picking the
// wind-up table when the command moves away from center.
func AngleRateLimitFor(desired, last, vEgo float64, p ControllerParams) float64 {
	steerUp := last*desired >= 0 && math.Abs(desired) > math.Abs(last)
	limits := p.AngleRateLimitDown
	if steerUp {
		limits = p.AngleRateLimitUp
	}
	return interp(vEgo, limits.SpeedBP, limits.AngleV)
}

// ApplyStdSteerAngleLimits bounds the change from last to desired by the
// speed-dependent rate limit.
func ApplyStdSteerAngleLimits(desired, last, vEgo float64, p ControllerParams) float64 {
	lim := AngleRateLimitFor(desired, last, vEgo, p)
	return clip(desired, last-lim, last+lim)
}
