package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"tesla-bridge-core/tesla"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	assert.NilError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultRunnerConfig(t *testing.T) {
	cfg, err := LoadRunnerConfig("")
	assert.NilError(t, err)
	assert.DeepEqual(t, DefaultRunnerConfig(), cfg)
	assert.Equal(t, 10*time.Millisecond, cfg.Tick())

	v, err := cfg.TeslaVariant()
	assert.NilError(t, err)
	assert.Equal(t, tesla.Variant{Family: tesla.FamilyA}, v)
}

func TestLoadRunnerConfig(t *testing.T) {
	path := writeTemp(t, "cfg.json", `{
		"variant": {"family": "models_x", "raven": true, "longitudinal": true},
		"interfaces": {"0": "vcan0", "2": "vcan2", "4": "vcan4"},
		"tick_ms": 20,
		"cpu": 2
	}`)
	cfg, err := LoadRunnerConfig(path)
	assert.NilError(t, err)
	assert.DeepEqual(t, map[int]string{0: "vcan0", 2: "vcan2", 4: "vcan4"}, cfg.Interfaces)
	assert.Equal(t, 20*time.Millisecond, cfg.Tick())
	assert.Equal(t, 2, cfg.CPU)
	assert.Equal(t, "closed_loop.log", cfg.LogPath)

	v, err := cfg.TeslaVariant()
	assert.NilError(t, err)
	assert.Equal(t, tesla.Variant{Family: tesla.FamilyB, Raven: true, Longitudinal: true}, v)
}

func TestLoadRunnerConfig_KeepsDefaultBuses(t *testing.T) {
	cfg, err := LoadRunnerConfig(writeTemp(t, "cfg.json", `{"tick_ms": 5}`))
	assert.NilError(t, err)
	assert.DeepEqual(t, DefaultRunnerConfig().Interfaces, cfg.Interfaces)
}

func TestLoadRunnerConfig_Errors(t *testing.T) {
	for _, tt := range []struct {
		name string
		json string
		want string
	}{
		{name: "syntax", json: `{`, want: "unmarshal config"},
		{name: "family", json: `{"variant": {"family": "roadster"}}`, want: "unknown vehicle family"},
		{name: "tick", json: `{"tick_ms": 0}`, want: "invalid tick_ms"},
		{name: "no buses", json: `{"interfaces": {}}`, want: "no bus interfaces"},
		{name: "empty iface", json: `{"interfaces": {"0": ""}}`, want: "empty interface name"},
		{name: "negative bus", json: `{"interfaces": {"-1": "can0"}}`, want: "invalid bus id"},
		{name: "nice", json: `{"nice": 40}`, want: "invalid nice"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRunnerConfig(writeTemp(t, "cfg.json", tt.json))
			assert.ErrorContains(t, err, tt.want)
		})
	}

	_, err := LoadRunnerConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "read config")
}

func TestShippedConfigs(t *testing.T) {
	for _, name := range []string{"configs/model3.json", "configs/model_s_raven.json"} {
		_, err := LoadRunnerConfig(name)
		assert.NilError(t, err, name)
	}
	for _, name := range []string{"scenarios/lane_hold_30s.json", "scenarios/speed_hold_pid_60s.json"} {
		_, err := LoadScenario(name)
		assert.NilError(t, err, name)
	}
}
