package utils

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestNewParser_UnknownMessage(t *testing.T) {
	m := mustMap(t, "tesla_powertrain")
	_, err := NewParser(m, 4, []MessageSpec{{Name: "ESP_B", FrequencyHz: 50}})
	assert.ErrorContains(t, err, "bus 4")
}

func TestParser_DefaultsBeforeFirstFrame(t *testing.T) {
	m := mustMap(t, "tesla_can")
	p, err := NewParser(m, 0, []MessageSpec{{Name: "BrakeMessage", FrequencyHz: 50}})
	assert.NilError(t, err)

	assert.Equal(t, 1.0, p.Value("BrakeMessage", "driverBrakeStatus"))
	assert.Assert(t, !p.Seen("BrakeMessage"))
	assert.Assert(t, !p.CanValid())
	assert.Assert(t, p.Subscribed("BrakeMessage"))
	assert.Assert(t, !p.Subscribed("ESP_B"))

	_, ok := p.Lookup("ESP_B", "ESP_vehicleSpeed")
	assert.Assert(t, !ok)
	assert.Equal(t, 0.0, p.Value("ESP_B", "ESP_vehicleSpeed"))
	assert.Equal(t, m, p.Database())
}

func TestParser_Update(t *testing.T) {
	m := mustMap(t, "tesla_can")
	p, err := NewParser(m, 2, []MessageSpec{{Name: "DAS_control", FrequencyHz: 40}})
	assert.NilError(t, err)

	pack := func(bus int, counter float64) BusFrame {
		f, err := m.Pack("DAS_control", bus, map[string]float64{"DAS_controlCounter": counter})
		assert.NilError(t, err)
		return f
	}
	other, err := m.Pack("ESP_B", 2, map[string]float64{"ESP_vehicleSpeed": 50})
	assert.NilError(t, err)

	n, err := p.Update([]BusFrame{pack(2, 3), pack(0, 9), other, pack(2, 4), pack(2, 5)})
	assert.NilError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, p.UpdateCount("DAS_control"))
	assert.DeepEqual(t, []float64{3, 4, 5}, p.All("DAS_control", "DAS_controlCounter"))
	assert.Equal(t, 5.0, p.Value("DAS_control", "DAS_controlCounter"))
	assert.Assert(t, p.Seen("DAS_control"))
	assert.Assert(t, p.CanValid())

	// the per-update history resets, the latest value stays
	n, err = p.Update(nil)
	assert.NilError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, p.UpdateCount("DAS_control"))
	assert.Equal(t, 0, len(p.All("DAS_control", "DAS_controlCounter")))
	assert.Equal(t, 5.0, p.Value("DAS_control", "DAS_controlCounter"))
}

func TestParser_MalformedFrameSkipped(t *testing.T) {
	m := mustMap(t, "tesla_can")
	p, err := NewParser(m, 0, []MessageSpec{{Name: "ESP_B", FrequencyHz: 50}})
	assert.NilError(t, err)

	good, err := m.Pack("ESP_B", 0, map[string]float64{"ESP_vehicleSpeed": 36})
	assert.NilError(t, err)
	short := good
	short.Frame.Length = 2

	n, err := p.Update([]BusFrame{good, short})
	assert.ErrorContains(t, err, "expects DLC 8")
	assert.Equal(t, 1, n)
	assert.Equal(t, 36.0, p.Value("ESP_B", "ESP_vehicleSpeed"))
}

func TestParser_MessageIsCopy(t *testing.T) {
	m := mustMap(t, "tesla_can")
	p, err := NewParser(m, 0, []MessageSpec{{Name: "STW_ACTN_RQ", FrequencyHz: 10}})
	assert.NilError(t, err)

	msg := p.Message("STW_ACTN_RQ")
	msg["SpdCtrlLvr_Stat"] = 42
	assert.Equal(t, 0.0, p.Value("STW_ACTN_RQ", "SpdCtrlLvr_Stat"))
	assert.Assert(t, p.Message("GTW_carState") == nil)
}
