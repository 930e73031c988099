package control

// ControlOutput is the accel command of one planner step
type ControlOutput struct {
	AccelMPS2 float64
	IsAccel   bool
	IsBrake   bool
}

// ClampFloat clamps value between min and max
func ClampFloat(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// GetControlModeStr returns a string describing the control mode
func GetControlModeStr(output ControlOutput) string {
	if output.IsAccel {
		return "[ACCEL]"
	} else if output.IsBrake {
		return "[BRAKE]"
	}
	return "[COAST]"
}

func newOutput(accel float64) ControlOutput {
	return ControlOutput{
		AccelMPS2: accel,
		IsAccel:   accel > 0,
		IsBrake:   accel < 0,
	}
}
