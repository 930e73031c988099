package control

// PIDConfig holds speed PID parameters. Output is a target acceleration.
type PIDConfig struct {
	TargetVelocityMPS float64 `json:"target_velocity_mps"`
	Kp                float64 `json:"kp"`
	Ki                float64 `json:"ki"`
	Kd                float64 `json:"kd"`
	MaxAccelMPS2      float64 `json:"max_accel_mps2"`
	MinAccelMPS2      float64 `json:"min_accel_mps2"`
	IntegralLimit     float64 `json:"integral_limit"`
}

// DefaultPIDConfig is a gentle highway tuning within the DAS accel range.
func DefaultPIDConfig() PIDConfig {
	return PIDConfig{
		Kp:            0.6,
		Ki:            0.1,
		Kd:            0.0,
		MaxAccelMPS2:  2.0,
		MinAccelMPS2:  -3.5,
		IntegralLimit: 5.0,
	}
}
