package tesla

import (
	"tesla-bridge-core/utils"
)

// buses holds the per-bus parsers of one variant. body is nil for FamilyB.
type buses struct {
	cp   *utils.Parser
	cam  *utils.Parser
	body *utils.Parser
}

func (b buses) all() []*utils.Parser {
	out := []*utils.Parser{b.cp, b.cam}
	if b.body != nil {
		out = append(out, b.body)
	}
	return out
}

// familyReading is the family-specific part of a decode, read before any
// adapter state is committed.
type familyReading struct {
	handsOnLevel float64
	errorCode    float64
	eacStatus    float64
	internalSAS  float64
	torque       float64
	steerRate    float64

	gas          float64
	brakePressed bool
	gear         float64

	doorOpen          bool
	leftBlinker       bool
	rightBlinker      bool
	seatbeltUnlatched bool

	// stalk is the raw driver stalk message echoed by the cancel path.
	stalk map[string]float64
}

type signalRef struct {
	bus     int
	message string
	signal  string
}

// familyPolicy is the strategy object resolved once per variant. Each
// implementation owns its signal names, bus layout and cancel mechanism.
type familyPolicy interface {
	// databases names the chassis and powertrain/vehicle signal databases.
	databases() (chassis, pt string)
	subscriptions(v Variant) (cp, cam, body []utils.MessageSpec)
	required(v Variant) []signalRef
	buttonDefs() []ButtonDefinition
	buttonSource(b buses) *utils.Parser
	read(v Variant, b buses) familyReading
	longitudinalFrames(tc *teslaCAN, st *adapterState, cmd longitudinalCommand) ([]utils.BusFrame, error)
	cancelFrames(tc *teslaCAN, st *adapterState) ([]utils.BusFrame, error)
}

func policyFor(v Variant) (familyPolicy, error) {
	switch v.Family {
	case FamilyA:
		if v.Raven {
			return nil, &VariantError{Variant: v, msg: "raven is a Model S revision"}
		}
		return familyAPolicy{}, nil
	case FamilyB:
		return familyBPolicy{}, nil
	}
	return nil, &VariantError{Variant: v}
}

// longitudinalCommand is shared by every longitudinal frame of one tick.
type longitudinalCommand struct {
	accState    float64
	targetSpeed float64
	minAccel    float64
	maxAccel    float64
}
