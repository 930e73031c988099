package tesla

import (
	"io"
	"testing"

	"gotest.tools/v3/assert"

	"tesla-bridge-core/utils"
)

type harness struct {
	t       *testing.T
	ci      *CarInterface
	chassis *utils.CANMap
	pt      *utils.CANMap
}

func newHarness(t *testing.T, v Variant) *harness {
	t.Helper()
	ci, err := NewCarInterface(v, utils.NewLogger(io.Discard, utils.TRACE))
	assert.NilError(t, err)
	chassisName, ptName := ci.policy.databases()
	chassis, err := utils.LoadEmbeddedCANMap(chassisName)
	assert.NilError(t, err)
	pt, err := utils.LoadEmbeddedCANMap(ptName)
	assert.NilError(t, err)
	return &harness{t: t, ci: ci, chassis: chassis, pt: pt}
}

func (h *harness) frame(db *utils.CANMap, name string, bus int, vals map[string]float64) utils.BusFrame {
	h.t.Helper()
	f, err := db.Pack(name, bus, vals)
	assert.NilError(h.t, err)
	return f
}

func (h *harness) tick(req Request, frames ...utils.BusFrame) (CarState, Actuators, []utils.BusFrame) {
	cs := h.ci.Update(frames)
	act, out := h.ci.Apply(req, cs)
	return cs, act, out
}

func (h *harness) decode(db *utils.CANMap, f utils.BusFrame) map[string]float64 {
	h.t.Helper()
	vals, err := db.DecodeFrame(f.Frame.ID, f.Payload())
	assert.NilError(h.t, err)
	return vals
}

// byID filters frames with the given id, preserving order.
func byID(frames []utils.BusFrame, id uint32) []utils.BusFrame {
	var out []utils.BusFrame
	for _, f := range frames {
		if f.Frame.ID == id {
			out = append(out, f)
		}
	}
	return out
}
