package main

import (
	"encoding/json"
	"fmt"
	"os"

	control "tesla-bridge-core/closed_loop/longitudinal_control"
	"tesla-bridge-core/tesla"
)

const (
	modeOpenLoop    = "open_loop"
	modeVelocityPID = "velocity_pid"
)

// Scenario defines a complete test scenario
type Scenario struct {
	Meta      ScenarioMeta       `json:"meta"`
	Timing    ScenarioTiming     `json:"timing"`
	Defaults  PlannerCmd         `json:"defaults"`
	Segments  []ScenarioSegment  `json:"segments"`
	PIDConfig *control.PIDConfig `json:"pid_config,omitempty"` // Optional PID config
}

// ScenarioMeta contains scenario metadata
type ScenarioMeta struct {
	Name        string `json:"name"`
	Version     int    `json:"version"`
	Description string `json:"description"`
	ControlMode string `json:"control_mode,omitempty"` // "open_loop" or "velocity_pid"
}

// ScenarioTiming defines timing parameters
type ScenarioTiming struct {
	DurationS float64 `json:"duration_s"`
}

// ScenarioSegment overrides the defaults between T0 and T1. T1 < 0 runs to
// the end of the scenario.
type ScenarioSegment struct {
	T0        float64 `json:"t0"`
	T1        float64 `json:"t1"`
	SteerDeg  float64 `json:"steer_deg,omitempty"`
	AccelMPS2 float64 `json:"accel_mps2,omitempty"`
	LatActive *bool   `json:"lat_active,omitempty"`
	Cancel    bool    `json:"cancel,omitempty"`
	Comment   string  `json:"comment,omitempty"`
}

// PlannerCmd is the planner output before it becomes a tesla.Request.
type PlannerCmd struct {
	LatActive bool    `json:"lat_active"`
	SteerDeg  float64 `json:"steer_deg"`
	AccelMPS2 float64 `json:"accel_mps2"`
	Cancel    bool    `json:"cancel"`
}

func (c PlannerCmd) Request() tesla.Request {
	return tesla.Request{
		SteeringAngleDeg: c.SteerDeg,
		Accel:            c.AccelMPS2,
		LatActive:        c.LatActive,
		Cancel:           c.Cancel,
	}
}

// LoadScenario loads a scenario from JSON file
func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read file: %w", err)
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (Scenario, error) {
	var scen Scenario
	if err := json.Unmarshal(data, &scen); err != nil {
		return Scenario{}, fmt.Errorf("unmarshal: %w", err)
	}

	if scen.Timing.DurationS <= 0 {
		return Scenario{}, fmt.Errorf("invalid duration_s: %f", scen.Timing.DurationS)
	}

	if scen.Meta.ControlMode == "" {
		scen.Meta.ControlMode = modeOpenLoop
	}

	switch scen.Meta.ControlMode {
	case modeOpenLoop:
	case modeVelocityPID:
		if scen.PIDConfig == nil {
			return Scenario{}, fmt.Errorf("velocity_pid mode requires pid_config")
		}
		if scen.PIDConfig.TargetVelocityMPS <= 0 {
			return Scenario{}, fmt.Errorf("invalid target_velocity_mps: %f", scen.PIDConfig.TargetVelocityMPS)
		}
	default:
		return Scenario{}, fmt.Errorf("unknown control_mode %q", scen.Meta.ControlMode)
	}

	for i, seg := range scen.Segments {
		if seg.T1 >= 0 && seg.T1 <= seg.T0 {
			return Scenario{}, fmt.Errorf("segment %d: t1 %.3f not after t0 %.3f", i, seg.T1, seg.T0)
		}
	}

	return scen, nil
}

// EvalCmd evaluates the scenario at time t. The first matching segment wins.
func EvalCmd(scen *Scenario, t float64) PlannerCmd {
	cmd := scen.Defaults

	for _, seg := range scen.Segments {
		t1 := seg.T1
		if t1 < 0 {
			t1 = scen.Timing.DurationS
		}

		if t >= seg.T0 && t < t1 {
			cmd.SteerDeg = seg.SteerDeg
			cmd.AccelMPS2 = seg.AccelMPS2
			if seg.LatActive != nil {
				cmd.LatActive = *seg.LatActive
			}
			cmd.Cancel = cmd.Cancel || seg.Cancel
			break
		}
	}

	return cmd
}
