package tesla

// Harness bus ids.
const (
	BusChassis = 0
	// BusRadar carries the Model 3/Y vehicle (body) bus on AP3 harnesses.
	BusRadar            = 1
	BusVehicle          = BusRadar
	BusAutopilotChassis = 2

	BusPowertrain          = 4
	BusPrivate             = 5
	BusAutopilotPowertrain = 6
)

// Unit conversions.
const (
	KphToMs = 1 / 3.6
	MsToKph = 3.6
	MphToMs = 0.44704
)

// DtCtrl is the adapter tick period in seconds (100 Hz).
const DtCtrl = 0.01

// Message ids used for checksum keying.
const (
	msgSteeringControl = 0x488
	msgDASControl      = 0x2B9
)

// AngleRateLimit is a speed-indexed table of maximum per-step steering angle
// change in degrees.
type AngleRateLimit struct {
	SpeedBP []float64
	AngleV  []float64
}

// ControllerParams holds the actuation limits the vehicle enforces.
type ControllerParams struct {
	AngleRateLimitUp       AngleRateLimit
	AngleRateLimitDown     AngleRateLimit
	JerkLimitMax           float64
	JerkLimitMin           float64
	AccelToSpeedMultiplier float64
	// SteerAngleBand bounds the command around the measured angle.
	SteerAngleBand float64
	// HandsOnFaultLevel is the hands-on level at which a HANDS_ON error code
	// becomes a hands-on fault.
	HandsOnFaultLevel int
}

// CarControllerParams are the limits accepted by the EPAS and DAS receivers.
var CarControllerParams = ControllerParams{
	AngleRateLimitUp:       AngleRateLimit{SpeedBP: []float64{0, 5, 15}, AngleV: []float64{10, 1.6, 0.3}},
	AngleRateLimitDown:     AngleRateLimit{SpeedBP: []float64{0, 5, 15}, AngleV: []float64{10, 7.0, 0.8}},
	JerkLimitMax:           8,
	JerkLimitMin:           -8,
	AccelToSpeedMultiplier: 3,
	SteerAngleBand:         20,
	HandsOnFaultLevel:      3,
}

// Cadence, in adapter ticks, of each outbound stream.
const (
	steeringStep = 2
	cancelStep   = 10
)
