package control

import "math"

// PIDController implements a discrete PID controller for velocity tracking.
// Its output feeds the DAS accel request, so it is bounded to what the
// vehicle's longitudinal controller accepts.
type PIDController struct {
	cfg PIDConfig

	// State
	integral     float64
	prevError    float64
	prevVelocity float64
	initialized  bool

	// Overshoot protection
	overshootDuration float64 // How long we've been above target (seconds)
}

// NewPIDController creates a new PID controller with given configuration
func NewPIDController(cfg PIDConfig) *PIDController {
	return &PIDController{cfg: cfg}
}

// Reset clears the PID state
func (pid *PIDController) Reset() {
	pid.integral = 0.0
	pid.prevError = 0.0
	pid.prevVelocity = 0.0
	pid.initialized = false
	pid.overshootDuration = 0.0
}

// Update computes the accel command given current velocity and time delta
func (pid *PIDController) Update(currentVelocity float64, dt float64) ControlOutput {
	if !pid.initialized {
		pid.prevVelocity = currentVelocity
		pid.prevError = pid.cfg.TargetVelocityMPS - currentVelocity
		pid.initialized = true
		return newOutput(0)
	}

	error := pid.cfg.TargetVelocityMPS - currentVelocity

	// Above target for more than 2 s: drop the integral and brake on the
	// proportional error alone.
	if error < 0 {
		pid.overshootDuration += dt
		if pid.overshootDuration > 2.0 {
			pid.integral = 0.0
			pid.prevError = error
			pid.prevVelocity = currentVelocity
			accel := ClampFloat(pid.cfg.Kp*error, pid.cfg.MinAccelMPS2, 0)
			return newOutput(accel)
		}
	} else {
		pid.overshootDuration = 0.0
	}

	p := pid.cfg.Kp * error

	// no integration inside a ±0.05 m/s deadband
	if math.Abs(error) > 0.05 {
		pid.integral += error * dt
	}

	// Crossing the setpoint keeps only 10% of the integral.
	if (pid.prevError > 0 && error < 0) || (pid.prevError < 0 && error > 0) {
		pid.integral *= 0.1
	}

	pid.integral = ClampFloat(pid.integral, -pid.cfg.IntegralLimit, pid.cfg.IntegralLimit)
	i := pid.cfg.Ki * pid.integral

	var d float64
	if dt > 0 {
		d = pid.cfg.Kd * (error - pid.prevError) / dt
	}

	accel := p + i + d

	if accel > pid.cfg.MaxAccelMPS2 {
		accel = pid.cfg.MaxAccelMPS2
		if pid.cfg.Ki != 0 {
			pid.integral = ClampFloat((accel-p-d)/pid.cfg.Ki, -pid.cfg.IntegralLimit, pid.cfg.IntegralLimit)
		}
	} else if accel < pid.cfg.MinAccelMPS2 {
		accel = pid.cfg.MinAccelMPS2
		if pid.cfg.Ki != 0 {
			pid.integral = ClampFloat((accel-p-d)/pid.cfg.Ki, -pid.cfg.IntegralLimit, pid.cfg.IntegralLimit)
		}
	}

	pid.prevError = error
	pid.prevVelocity = currentVelocity

	return newOutput(accel)
}

// GetDiagnostics returns current PID state for logging/debugging
func (pid *PIDController) GetDiagnostics() PIDDiagnostics {
	return PIDDiagnostics{
		Error:    pid.prevError,
		Integral: pid.integral,
		P:        pid.cfg.Kp * pid.prevError,
		I:        pid.cfg.Ki * pid.integral,
	}
}

// PIDDiagnostics contains PID internal state for monitoring
type PIDDiagnostics struct {
	Error    float64
	Integral float64
	P        float64
	I        float64
}

// GetTargetVelocity returns the current target velocity
func (pid *PIDController) GetTargetVelocity() float64 {
	return pid.cfg.TargetVelocityMPS
}

// SetTargetVelocity updates the target velocity
func (pid *PIDController) SetTargetVelocity(target float64) {
	pid.cfg.TargetVelocityMPS = target
}
