package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"
	"gotest.tools/v3/assert"

	control "tesla-bridge-core/closed_loop/longitudinal_control"
	"tesla-bridge-core/tesla"
	"tesla-bridge-core/utils"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// testRig is one loopback bus per harness bus, with a peer endpoint on each
// that plays the vehicle.
type testRig struct {
	ports map[int]*busPort
	peers map[int]*utils.LoopbackEndpoint
	buses []*utils.LoopbackBus
}

func newTestRig(t *testing.T, buses ...int) *testRig {
	t.Helper()
	r := &testRig{ports: map[int]*busPort{}, peers: map[int]*utils.LoopbackEndpoint{}}
	for _, b := range buses {
		lb := utils.NewLoopbackBus()
		r.buses = append(r.buses, lb)
		r.ports[b] = &busPort{bus: b, iface: "loopback", conn: lb.Open()}
		r.peers[b] = lb.Open()
	}
	t.Cleanup(func() {
		for _, lb := range r.buses {
			_ = lb.Close()
		}
	})
	return r
}

// collect reads everything the peer on bus received within the timeout.
func (r *testRig) collect(t *testing.T, bus int, n int) []utils.BusFrame {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	var out []utils.BusFrame
	for len(out) < n {
		f, err := r.peers[bus].ReadFrame(ctx)
		assert.NilError(t, err)
		out = append(out, utils.BusFrame{Bus: bus, Frame: f})
	}
	return out
}

func testLogger() *utils.Logger {
	return utils.NewLogger(io.Discard, utils.TRACE)
}

func newTestRunner(t *testing.T, v tesla.Variant, scen Scenario, rig *testRig) *Runner {
	t.Helper()
	ci, err := tesla.NewCarInterface(v, testLogger())
	assert.NilError(t, err)
	cfg := DefaultRunnerConfig()
	r, err := newRunnerWithPorts(cfg, scen, ci, rig.ports, testLogger())
	assert.NilError(t, err)
	return r
}

func openLoop(d float64, cmd PlannerCmd) Scenario {
	return Scenario{
		Meta:     ScenarioMeta{Name: "test", ControlMode: modeOpenLoop},
		Timing:   ScenarioTiming{DurationS: d},
		Defaults: cmd,
	}
}

func TestStep_TransmitsInOrder(t *testing.T) {
	rig := newTestRig(t, 0, 2)
	r := newTestRunner(t, tesla.Variant{Family: tesla.FamilyB}, openLoop(1, PlannerCmd{Cancel: true}), rig)

	db, err := utils.LoadEmbeddedCANMap("tesla_can")
	assert.NilError(t, err)
	cruise, err := db.Pack("DI_state", 0, map[string]float64{"DI_cruiseState": 2})
	assert.NilError(t, err)

	act, err := r.Step(context.Background(), 0, []utils.BusFrame{cruise})
	assert.NilError(t, err)
	assert.Assert(t, act.Cancel)

	// steering plus 16 cancels on the chassis bus, 16 cancels on the autopilot bus
	chassis := rig.collect(t, 0, 17)
	assert.Equal(t, uint32(0x488), chassis[0].Frame.ID)
	for _, f := range chassis[1:] {
		assert.Equal(t, uint32(0x045), f.Frame.ID)
	}
	ap := rig.collect(t, 2, 16)
	for i, f := range ap {
		vals, err := db.DecodeFrame(f.Frame.ID, f.Payload())
		assert.NilError(t, err)
		assert.Equal(t, float64(i), vals["MC_STW_ACTN_RQ"])
	}
	assert.Equal(t, uint64(33), r.sent)
	assert.Equal(t, uint64(1), r.ticks)
}

func TestStep_VelocityPID(t *testing.T) {
	rig := newTestRig(t, 0, 1, 2)
	pid := control.DefaultPIDConfig()
	pid.TargetVelocityMPS = 25
	scen := openLoop(1, PlannerCmd{})
	scen.Meta.ControlMode = modeVelocityPID
	scen.PIDConfig = &pid
	r := newTestRunner(t, tesla.Variant{Family: tesla.FamilyA, Longitudinal: true}, scen, rig)

	ctx := context.Background()
	act, err := r.Step(ctx, 0, nil)
	assert.NilError(t, err)
	assert.Equal(t, 0.0, act.Accel)

	act, err = r.Step(ctx, 0.01, nil)
	assert.NilError(t, err)
	assert.Equal(t, pid.MaxAccelMPS2, act.Accel)

	// tick 0: steering + DAS_control, tick 1: DAS_control
	out := rig.collect(t, 0, 3)
	assert.Equal(t, uint32(0x2B9), out[2].Frame.ID)
	db, err := utils.LoadEmbeddedCANMap("tesla_model3_party")
	assert.NilError(t, err)
	vals, err := db.DecodeFrame(out[2].Frame.ID, out[2].Payload())
	assert.NilError(t, err)
	assert.Assert(t, vals["DAS_accelMax"] > 1.9)
}

func TestRun_ForwardsFramesAndStops(t *testing.T) {
	rig := newTestRig(t, 0, 2)
	r := newTestRunner(t, tesla.Variant{Family: tesla.FamilyB, Longitudinal: true}, openLoop(0.2, PlannerCmd{AccelMPS2: 0.5}), rig)
	defer r.Close()

	db, err := utils.LoadEmbeddedCANMap("tesla_can")
	assert.NilError(t, err)
	ctx := context.Background()
	for _, c := range []float64{1, 2} {
		f, err := db.Pack("DAS_control", 2, map[string]float64{"DAS_controlCounter": c})
		assert.NilError(t, err)
		assert.NilError(t, rig.peers[2].WriteFrame(ctx, f.Frame))
	}

	assert.NilError(t, r.Run(ctx))
	assert.Assert(t, r.ticks > 0)

	// both observed counters are echoed on the chassis bus
	var counters []float64
	drainCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	for {
		f, err := rig.peers[0].ReadFrame(drainCtx)
		if err != nil {
			break
		}
		if f.ID == 0x2B9 {
			vals, err := db.DecodeFrame(f.ID, f.Data[:f.Length])
			assert.NilError(t, err)
			counters = append(counters, vals["DAS_controlCounter"])
		}
	}
	assert.DeepEqual(t, []float64{1, 2}, counters)
}

func TestRun_CancelSpamNotDecodedAsButton(t *testing.T) {
	for _, tc := range []struct {
		name     string
		variant  tesla.Variant
		buses    []int
		db       string
		cancelID uint32
		cancelOn int
	}{
		{"model_s", tesla.Variant{Family: tesla.FamilyB}, []int{0, 2}, "tesla_can", 0x045, 0},
		{"model_3", tesla.Variant{Family: tesla.FamilyA}, []int{0, 1, 2}, "tesla_model3_party", 0x229, 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rig := newTestRig(t, tc.buses...)
			var logBuf bytes.Buffer
			log := utils.NewLogger(&logBuf, utils.DEBUG)
			ci, err := tesla.NewCarInterface(tc.variant, log)
			assert.NilError(t, err)
			r, err := newRunnerWithPorts(DefaultRunnerConfig(), openLoop(0.3, PlannerCmd{Cancel: true}), ci, rig.ports, log)
			assert.NilError(t, err)
			defer r.Close()

			db, err := utils.LoadEmbeddedCANMap(tc.db)
			assert.NilError(t, err)
			ctx := context.Background()
			cruise, err := db.Pack("DI_state", 0, map[string]float64{"DI_cruiseState": 2})
			assert.NilError(t, err)
			assert.NilError(t, rig.peers[0].WriteFrame(ctx, cruise.Frame))

			assert.NilError(t, r.Run(ctx))

			// the vehicle side saw the cancel frames, the adapter did not decode them
			var cancels int
			drainCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
			defer cancel()
			for {
				f, err := rig.peers[tc.cancelOn].ReadFrame(drainCtx)
				if err != nil {
					break
				}
				if f.ID == tc.cancelID {
					cancels++
				}
			}
			assert.Assert(t, cancels > 0)
			assert.Assert(t, !strings.Contains(logBuf.String(), "button cancel"), logBuf.String())
		})
	}
}

func TestRun_Canceled(t *testing.T) {
	rig := newTestRig(t, 0, 2)
	r := newTestRunner(t, tesla.Variant{Family: tesla.FamilyB}, openLoop(60, PlannerCmd{}), rig)
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := r.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewRunner_DryRun(t *testing.T) {
	cfg := DefaultRunnerConfig()
	cfg.Variant = VariantConfig{Family: "models_x", Longitudinal: true}
	cfg.Interfaces = map[int]string{0: "can0", 2: "can2", 4: "can4"}
	r, err := NewRunner(context.Background(), cfg, openLoop(0.05, PlannerCmd{}), testLogger(), true)
	assert.NilError(t, err)
	defer r.Close()

	assert.Equal(t, 3, len(r.ports))
	assert.NilError(t, r.Run(context.Background()))
}

func TestNewRunner_MissingInterface(t *testing.T) {
	cfg := DefaultRunnerConfig()
	cfg.Interfaces = map[int]string{0: "can0"}
	_, err := NewRunner(context.Background(), cfg, openLoop(1, PlannerCmd{}), testLogger(), true)
	assert.ErrorContains(t, err, "bus 1: no interface configured")
}
