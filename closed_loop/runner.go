package main

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	control "tesla-bridge-core/closed_loop/longitudinal_control"
	"tesla-bridge-core/tesla"
	"tesla-bridge-core/utils"
)

// busPort is the single connection of one harness bus. RX and TX share it so
// the adapter never decodes its own transmissions.
type busPort struct {
	bus   int
	iface string
	conn  utils.CANConn
}

func (p *busPort) close() {
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

type Runner struct {
	cfg   RunnerConfig
	log   *utils.Logger
	scen  Scenario
	ci    *tesla.CarInterface
	ports map[int]*busPort
	loops []*utils.LoopbackBus
	pid   *control.PIDController

	ticks uint64
	sent  uint64
	last  tesla.Actuators
}

// NewRunner builds the car interface and opens one port per bus it uses.
// With dryRun every bus is an in-memory loopback.
func NewRunner(ctx context.Context, cfg RunnerConfig, scen Scenario, log *utils.Logger, dryRun bool) (*Runner, error) {
	variant, err := cfg.TeslaVariant()
	if err != nil {
		return nil, err
	}
	ci, err := tesla.NewCarInterface(variant, log)
	if err != nil {
		return nil, fmt.Errorf("car interface: %w", err)
	}

	r := &Runner{
		cfg:   cfg,
		log:   log,
		scen:  scen,
		ci:    ci,
		ports: make(map[int]*busPort),
	}

	for _, bus := range usedBuses(ci) {
		iface, ok := cfg.Interfaces[bus]
		if !ok {
			r.Close()
			return nil, fmt.Errorf("bus %d: no interface configured", bus)
		}
		port := &busPort{bus: bus, iface: iface}
		if dryRun {
			lb := utils.NewLoopbackBus()
			r.loops = append(r.loops, lb)
			port.iface = "loopback"
			port.conn = lb.Open()
		} else {
			conn, err := utils.DialSocketCAN(ctx, iface)
			if err != nil {
				r.Close()
				return nil, err
			}
			port.conn = conn
		}
		r.ports[bus] = port
	}

	if err := r.initPlanner(); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// newRunnerWithPorts wires an existing car interface to caller-owned ports.
func newRunnerWithPorts(cfg RunnerConfig, scen Scenario, ci *tesla.CarInterface, ports map[int]*busPort, log *utils.Logger) (*Runner, error) {
	r := &Runner{cfg: cfg, log: log, scen: scen, ci: ci, ports: ports}
	return r, r.initPlanner()
}

func (r *Runner) initPlanner() error {
	if r.scen.Meta.ControlMode != modeVelocityPID {
		return nil
	}
	if r.scen.PIDConfig == nil {
		return fmt.Errorf("velocity_pid mode requires pid_config in scenario")
	}
	r.pid = control.NewPIDController(*r.scen.PIDConfig)
	r.log.Info("PID controller initialized: target=%.2f m/s, Kp=%.2f, Ki=%.2f, Kd=%.2f",
		r.scen.PIDConfig.TargetVelocityMPS,
		r.scen.PIDConfig.Kp,
		r.scen.PIDConfig.Ki,
		r.scen.PIDConfig.Kd)
	return nil
}

func usedBuses(ci *tesla.CarInterface) []int {
	set := make(map[int]struct{})
	for _, b := range ci.Buses() {
		set[b] = struct{}{}
	}
	for _, b := range ci.TxBuses() {
		set[b] = struct{}{}
	}
	out := make([]int, 0, len(set))
	for b := range set {
		out = append(out, b)
	}
	sort.Ints(out)
	return out
}

func (r *Runner) Close() {
	for _, p := range r.ports {
		p.close()
	}
	for _, lb := range r.loops {
		_ = lb.Close()
	}
}

func (r *Runner) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	if err := setRealtime(r.cfg.CPU, r.cfg.Nice); err != nil {
		r.log.Warn("Realtime setup failed, continuing: %v", err)
	}

	r.log.Info("Starting control loop: variant=%s tick=%s scenario=%s duration=%.2fs mode=%s",
		r.ci.Variant(), r.cfg.Tick(), r.scen.Meta.Name, r.scen.Timing.DurationS, r.scen.Meta.ControlMode)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	rx := make(chan utils.BusFrame, 1024)
	for _, p := range r.ports {
		p := p
		g.Go(func() error { return r.receiveLoop(gctx, p, rx) })
	}

	err := r.controlLoop(gctx, rx)

	// readers may be blocked in a socket read; closing unblocks them
	cancel()
	for _, p := range r.ports {
		p.close()
	}
	if werr := g.Wait(); werr != nil && (err == nil || errors.Is(err, context.Canceled)) {
		err = werr
	}
	r.log.Info("Completed. ticks=%d frames_sent=%d last_angle=%.2f last_accel=%.2f",
		r.ticks, r.sent, r.last.SteeringAngleDeg, r.last.Accel)
	return err
}

func (r *Runner) controlLoop(ctx context.Context, rx <-chan utils.BusFrame) error {
	tick := r.cfg.Tick()
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	start := time.Now()
	endAfter := time.Duration(r.scen.Timing.DurationS * float64(time.Second))
	var pending []utils.BusFrame

	for {
		select {
		case <-ctx.Done():
			r.log.Warn("Context canceled; stopping control loop")
			return ctx.Err()

		case now := <-ticker.C:
			elapsed := now.Sub(start)
			if elapsed > endAfter {
				return nil
			}

			pending = drain(rx, pending[:0])
			if _, err := r.Step(ctx, elapsed.Seconds(), pending); err != nil {
				r.log.Critical("Transmit failed at t=%.3f: %v", elapsed.Seconds(), err)
				return err
			}
		}
	}
}

// drain appends every frame already queued on rx without blocking.
func drain(rx <-chan utils.BusFrame, out []utils.BusFrame) []utils.BusFrame {
	for {
		select {
		case f := <-rx:
			out = append(out, f)
		default:
			return out
		}
	}
}

// Step runs one tick: decode, plan, encode, transmit.
func (r *Runner) Step(ctx context.Context, t float64, frames []utils.BusFrame) (tesla.Actuators, error) {
	cs := r.ci.Update(frames)
	req := r.plan(t, cs)
	act, out := r.ci.Apply(req, cs)
	r.last = act
	r.ticks++

	for _, f := range out {
		p, ok := r.ports[f.Bus]
		if !ok {
			r.log.Warn("No port for bus %d, dropping 0x%X", f.Bus, uint32(f.Frame.ID))
			continue
		}
		if err := p.conn.WriteFrame(ctx, f.Frame); err != nil {
			return act, fmt.Errorf("bus %d tx 0x%X: %w", f.Bus, uint32(f.Frame.ID), err)
		}
		r.sent++
		r.log.Trace("TX t=%.3f bus=%d id=0x%X data=% X", t, f.Bus, uint32(f.Frame.ID), f.Payload())
	}

	if r.ticks%100 == 0 {
		r.log.Debug("t=%.2f v=%.2f angle=%.2f cmd_angle=%.2f accel=%.2f cruise=%v can_valid=%v fault=%s",
			t, cs.VEgo, cs.SteeringAngleDeg, act.SteeringAngleDeg, act.Accel,
			cs.Cruise.Enabled, cs.CanValid, cs.SteerFault)
	}
	return act, nil
}

func (r *Runner) plan(t float64, cs tesla.CarState) tesla.Request {
	cmd := EvalCmd(&r.scen, t)

	if r.pid != nil {
		out := r.pid.Update(cs.VEgo, r.cfg.Tick().Seconds())
		cmd.AccelMPS2 = out.AccelMPS2
		if r.ticks%100 == 0 {
			diag := r.pid.GetDiagnostics()
			r.log.Debug("PID: %s v=%.2f err=%.3f accel=%.2f P=%.2f I=%.2f",
				control.GetControlModeStr(out), cs.VEgo, diag.Error, out.AccelMPS2, diag.P, diag.I)
		}
	}

	return cmd.Request()
}

// receiveLoop forwards frames from one bus until the context ends.
func (r *Runner) receiveLoop(ctx context.Context, p *busPort, out chan<- utils.BusFrame) error {
	r.log.Debug("RX loop started: bus=%d iface=%s", p.bus, p.iface)
	defer r.log.Debug("RX loop stopped: bus=%d", p.bus)

	for {
		frame, err := p.conn.ReadFrame(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("bus %d rx: %w", p.bus, err)
		}
		select {
		case out <- utils.BusFrame{Bus: p.bus, Frame: frame}:
		case <-ctx.Done():
			return nil
		}
		r.log.Trace("RX bus=%d id=0x%X len=%d data=% X", p.bus, uint32(frame.ID), frame.Length, frame.Data[:frame.Length])
	}
}
