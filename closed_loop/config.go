package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"tesla-bridge-core/tesla"
)

// VariantConfig selects the vehicle variant.
type VariantConfig struct {
	Family       string `json:"family"`
	Raven        bool   `json:"raven"`
	Longitudinal bool   `json:"longitudinal"`
}

// RunnerConfig is loaded from the -config JSON file. Missing fields keep the
// DefaultRunnerConfig value.
type RunnerConfig struct {
	Variant VariantConfig `json:"variant"`
	// Interfaces maps a bus id to its SocketCAN interface name.
	Interfaces   map[int]string `json:"interfaces"`
	TickMS       int            `json:"tick_ms"`
	ScenarioPath string         `json:"scenario"`
	LogPath      string         `json:"log_path"`

	// CPU pins the control loop thread, -1 leaves affinity alone.
	CPU  int `json:"cpu"`
	Nice int `json:"nice"`
}

func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Variant: VariantConfig{Family: "model3_y"},
		Interfaces: map[int]string{
			tesla.BusChassis:          "can0",
			tesla.BusVehicle:          "can1",
			tesla.BusAutopilotChassis: "can2",
		},
		TickMS:       10,
		ScenarioPath: "closed_loop/scenarios/lane_hold_30s.json",
		LogPath:      "closed_loop.log",
		CPU:          -1,
	}
}

// LoadRunnerConfig reads path over the defaults. An empty path returns the
// defaults.
func LoadRunnerConfig(path string) (RunnerConfig, error) {
	cfg := DefaultRunnerConfig()
	if path == "" {
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return RunnerConfig{}, fmt.Errorf("read config: %w", err)
	}
	// a bus map in the file replaces the default one instead of merging
	defaults := cfg.Interfaces
	cfg.Interfaces = nil
	if err := json.Unmarshal(data, &cfg); err != nil {
		return RunnerConfig{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Interfaces == nil {
		cfg.Interfaces = defaults
	}
	if err := cfg.Validate(); err != nil {
		return RunnerConfig{}, err
	}
	return cfg, nil
}

func (c RunnerConfig) Validate() error {
	if _, err := c.TeslaVariant(); err != nil {
		return err
	}
	if c.TickMS <= 0 {
		return fmt.Errorf("invalid tick_ms: %d", c.TickMS)
	}
	if len(c.Interfaces) == 0 {
		return fmt.Errorf("no bus interfaces configured")
	}
	for bus, iface := range c.Interfaces {
		if bus < 0 {
			return fmt.Errorf("invalid bus id %d", bus)
		}
		if iface == "" {
			return fmt.Errorf("bus %d: empty interface name", bus)
		}
	}
	if c.Nice < -20 || c.Nice > 19 {
		return fmt.Errorf("invalid nice: %d", c.Nice)
	}
	return nil
}

// TeslaVariant converts the variant section.
func (c RunnerConfig) TeslaVariant() (tesla.Variant, error) {
	family, err := tesla.ParseFamily(c.Variant.Family)
	if err != nil {
		return tesla.Variant{}, err
	}
	return tesla.Variant{
		Family:       family,
		Raven:        c.Variant.Raven,
		Longitudinal: c.Variant.Longitudinal,
	}, nil
}

func (c RunnerConfig) Tick() time.Duration {
	return time.Duration(c.TickMS) * time.Millisecond
}
