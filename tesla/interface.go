// Package tesla translates between vehicle-neutral actuation requests and the
// Tesla control-bus message set. A CarInterface decodes the frames received
// each tick into a CarState and encodes the frames to send back.
//
// A CarInterface is single-threaded: Update and Apply must be called from one
// goroutine, once each per tick.
package tesla

import (
	"fmt"
	"sort"

	"tesla-bridge-core/utils"
)

type CarInterface struct {
	variant Variant
	policy  familyPolicy
	params  ControllerParams
	log     *utils.Logger

	buses   buses
	can     *teslaCAN
	kf      SpeedFilter
	buttons *buttonTracker

	st adapterState
}

type Option func(*CarInterface)

// WithSpeedFilter replaces the default speed Kalman filter.
func WithSpeedFilter(f SpeedFilter) Option {
	return func(ci *CarInterface) { ci.kf = f }
}

// WithParams replaces CarControllerParams.
func WithParams(p ControllerParams) Option {
	return func(ci *CarInterface) { ci.params = p }
}

// NewCarInterface resolves the variant policy and the signal databases. It is
// the only place configuration errors are reported.
func NewCarInterface(v Variant, log *utils.Logger, opts ...Option) (*CarInterface, error) {
	policy, err := policyFor(v)
	if err != nil {
		return nil, err
	}

	chassisName, ptName := policy.databases()
	chassisDB, err := utils.LoadEmbeddedCANMap(chassisName)
	if err != nil {
		return nil, fmt.Errorf("load chassis database: %w", err)
	}
	ptDB, err := utils.LoadEmbeddedCANMap(ptName)
	if err != nil {
		return nil, fmt.Errorf("load powertrain database: %w", err)
	}

	cpSpecs, camSpecs, bodySpecs := policy.subscriptions(v)
	var b buses
	if b.cp, err = utils.NewParser(chassisDB, BusChassis, cpSpecs); err != nil {
		return nil, err
	}
	if b.cam, err = utils.NewParser(chassisDB, BusAutopilotChassis, camSpecs); err != nil {
		return nil, err
	}
	if len(bodySpecs) > 0 {
		if b.body, err = utils.NewParser(ptDB, BusVehicle, bodySpecs); err != nil {
			return nil, err
		}
	}

	ci := &CarInterface{
		variant: v,
		policy:  policy,
		params:  CarControllerParams,
		log:     log,
		buses:   b,
		kf:      NewSpeedFilter(),
		buttons: newButtonTracker(policy.buttonDefs()),
	}
	for _, opt := range opts {
		opt(ci)
	}
	ci.can = &teslaCAN{packer: chassisDB, ptPacker: ptDB, params: ci.params}

	if err := ci.checkSignals(); err != nil {
		return nil, err
	}

	log.Info("Car interface ready: variant=%s chassis_db=%s pt_db=%s buses=%v",
		v, chassisName, ptName, ci.Buses())
	return ci, nil
}

func (ci *CarInterface) parserFor(bus int) *utils.Parser {
	for _, p := range ci.buses.all() {
		if p.Bus == bus {
			return p
		}
	}
	return nil
}

func (ci *CarInterface) checkSignals() error {
	refs := ci.policy.required(ci.variant)
	src := ci.policy.buttonSource(ci.buses)
	for _, d := range ci.policy.buttonDefs() {
		refs = append(refs, signalRef{src.Bus, d.Message, d.Signal})
	}
	for _, r := range refs {
		p := ci.parserFor(r.bus)
		if p == nil {
			return &SignalError{Bus: r.bus, Message: r.message, Signal: r.signal,
				Err: fmt.Errorf("no parser on bus")}
		}
		if !p.Subscribed(r.message) {
			return &SignalError{Bus: r.bus, Message: r.message, Signal: r.signal,
				Err: fmt.Errorf("message not subscribed")}
		}
		if _, ok := p.Lookup(r.message, r.signal); !ok {
			return &SignalError{Bus: r.bus, Message: r.message, Signal: r.signal,
				Err: fmt.Errorf("not in database %s", p.Database().Name)}
		}
	}
	return nil
}

// Variant returns the variant the interface was built for.
func (ci *CarInterface) Variant() Variant { return ci.variant }

// Buses lists the bus ids the interface decodes, ascending.
func (ci *CarInterface) Buses() []int {
	var out []int
	for _, p := range ci.buses.all() {
		out = append(out, p.Bus)
	}
	sort.Ints(out)
	return out
}

// TxBuses lists every bus the interface may transmit on, ascending.
func (ci *CarInterface) TxBuses() []int {
	set := map[int]struct{}{BusChassis: {}}
	switch ci.variant.Family {
	case FamilyA:
		set[BusVehicle] = struct{}{}
	case FamilyB:
		set[BusAutopilotChassis] = struct{}{}
		if ci.variant.Longitudinal {
			set[BusPowertrain] = struct{}{}
		}
	}
	out := make([]int, 0, len(set))
	for b := range set {
		out = append(out, b)
	}
	sort.Ints(out)
	return out
}

// Frame is the number of completed Apply calls.
func (ci *CarInterface) Frame() int { return ci.st.frame }
