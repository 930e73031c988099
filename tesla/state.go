package tesla

// SteerFault classifies the EPAS condition.
type SteerFault int

const (
	SteerFaultNone SteerFault = iota
	SteerFaultHandsOn
	SteerFaultSoft
	SteerFaultPermanent
)

func (f SteerFault) String() string {
	switch f {
	case SteerFaultNone:
		return "none"
	case SteerFaultHandsOn:
		return "hands-on"
	case SteerFaultSoft:
		return "soft"
	case SteerFaultPermanent:
		return "permanent"
	}
	return "unknown"
}

type CruiseStatus struct {
	Enabled   bool
	Available bool
	// SpeedMs is the cruise set speed, 0 when the display unit is unknown.
	SpeedMs    float64
	Standstill bool
}

// CarState is the canonical vehicle state, rebuilt every tick.
type CarState struct {
	VEgoRaw    float64
	VEgo       float64
	AEgo       float64
	Standstill bool

	Gas          float64
	GasPressed   bool
	Brake        float64
	BrakePressed bool

	SteeringAngleDeg    float64
	SteeringRateDeg     float64
	SteeringTorque      float64
	SteeringPressed     bool
	HandsOnLevel        int
	SteerWarning        EACErrorCode
	SteerStatus         EACStatus
	SteerFault          SteerFault
	SteerFaultPermanent bool
	SteerFaultTemporary bool

	Cruise      CruiseStatus
	GearShifter Gear

	DoorOpen          bool
	LeftBlinker       bool
	RightBlinker      bool
	SeatbeltUnlatched bool
	StockAEB          bool

	ButtonEvents []ButtonEvent

	// CanValid is true once every subscribed message has been received.
	CanValid bool
}

// Request is the upstream planner's actuation intent for one tick.
type Request struct {
	SteeringAngleDeg float64
	Accel            float64
	LatActive        bool
	Cancel           bool
}

// Actuators is what the adapter actually commanded, fed back to the planner.
type Actuators struct {
	SteeringAngleDeg float64
	Accel            float64
	// Cancel is true when a cancel was requested or forced by a hands-on fault.
	Cancel bool
}

// adapterState persists across ticks. It is owned by one CarInterface.
type adapterState struct {
	frame          int
	applyAngleLast float64

	handsOnLevel int
	steerWarning EACErrorCode
	accEnabled   bool

	// stalk is SCCM_rightStalk on FamilyA and STW_ACTN_RQ on FamilyB.
	stalk       map[string]float64
	dasControl  map[string]float64
	dasCounters counterQueue
}

func (s *adapterState) handsOnFault(p ControllerParams) bool {
	return s.steerWarning == EACErrorHandsOn && s.handsOnLevel >= p.HandsOnFaultLevel
}
