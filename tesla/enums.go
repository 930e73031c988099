package tesla

// EACErrorCode is the EPAS angle-control error code.
type EACErrorCode int

const (
	EACErrorUnknown EACErrorCode = iota
	EACErrorIdle
	EACErrorHandsOn
	EACErrorTmpFault
	EACErrorMaxSpeed
	EACErrorLowSpeed
	EACErrorHighAngleReq
	EACErrorHighAngleRateReq
	EACErrorHighAngleSafety
	EACErrorHighAngleRateSafety
	EACErrorHighMMOTSafety
	EACErrorEPBInhibit
	EACErrorPinionVelDiff
)

var eacErrorNames = map[EACErrorCode]string{
	EACErrorUnknown:             "UNKNOWN",
	EACErrorIdle:                "EAC_ERROR_IDLE",
	EACErrorHandsOn:             "EAC_ERROR_HANDS_ON",
	EACErrorTmpFault:            "EAC_ERROR_TMP_FAULT",
	EACErrorMaxSpeed:            "EAC_ERROR_MAX_SPEED",
	EACErrorLowSpeed:            "EAC_ERROR_LOW_SPEED",
	EACErrorHighAngleReq:        "EAC_ERROR_HIGH_ANGLE_REQ",
	EACErrorHighAngleRateReq:    "EAC_ERROR_HIGH_ANGLE_RATE_REQ",
	EACErrorHighAngleSafety:     "EAC_ERROR_HIGH_ANGLE_SAFETY",
	EACErrorHighAngleRateSafety: "EAC_ERROR_HIGH_ANGLE_RATE_SAFETY",
	EACErrorHighMMOTSafety:      "EAC_ERROR_HIGH_MMOT_SAFETY",
	EACErrorEPBInhibit:          "EAC_ERROR_EPB_INHIBIT",
	EACErrorPinionVelDiff:       "EAC_ERROR_PINION_VEL_DIFF",
}

func (c EACErrorCode) String() string { return eacErrorNames[c] }

// Raw EACErrorCode values as laid out in the embedded signal databases, not
// the vehicle DBC numbering. Raw 11..13 are unused.
var eacErrorTable = map[int]EACErrorCode{
	0:  EACErrorIdle,
	1:  EACErrorHandsOn,
	2:  EACErrorTmpFault,
	3:  EACErrorMaxSpeed,
	4:  EACErrorLowSpeed,
	5:  EACErrorHighAngleReq,
	6:  EACErrorHighAngleRateReq,
	7:  EACErrorHighAngleSafety,
	8:  EACErrorHighAngleRateSafety,
	9:  EACErrorHighMMOTSafety,
	10: EACErrorEPBInhibit,
	15: EACErrorPinionVelDiff,
}

// EACStatus is the EPAS angle-control status.
type EACStatus int

const (
	EACStatusUnknown EACStatus = iota
	EACStatusInhibited
	EACStatusAvailable
	EACStatusActive
	EACStatusFault
)

var eacStatusTable = map[int]EACStatus{
	0: EACStatusInhibited,
	1: EACStatusAvailable,
	2: EACStatusActive,
	3: EACStatusFault,
}

// CruiseState mirrors DI_cruiseState.
type CruiseState int

const (
	CruiseStateUnknown CruiseState = iota
	CruiseStateOff
	CruiseStateStandby
	CruiseStateEnabled
	CruiseStateStandstill
	CruiseStateOverride
	CruiseStateFault
	CruiseStatePreFault
	CruiseStatePreCancel
)

var cruiseStateTable = map[int]CruiseState{
	0: CruiseStateOff,
	1: CruiseStateStandby,
	2: CruiseStateEnabled,
	3: CruiseStateStandstill,
	4: CruiseStateOverride,
	5: CruiseStateFault,
	6: CruiseStatePreFault,
	7: CruiseStatePreCancel,
}

// Engaged reports whether the stock cruise is controlling speed.
func (s CruiseState) Engaged() bool {
	switch s {
	case CruiseStateEnabled, CruiseStateStandstill, CruiseStateOverride, CruiseStatePreFault, CruiseStatePreCancel:
		return true
	}
	return false
}

type SpeedUnits int

const (
	SpeedUnitsUnknown SpeedUnits = iota
	SpeedUnitsMPH
	SpeedUnitsKPH
)

var speedUnitsTable = map[int]SpeedUnits{
	0: SpeedUnitsMPH,
	1: SpeedUnitsKPH,
}

// Gear is the canonical gear shifter position.
type Gear int

const (
	GearUnknown Gear = iota
	GearPark
	GearReverse
	GearNeutral
	GearDrive
)

func (g Gear) String() string {
	switch g {
	case GearPark:
		return "park"
	case GearReverse:
		return "reverse"
	case GearNeutral:
		return "neutral"
	case GearDrive:
		return "drive"
	}
	return "unknown"
}

// DI_gear: 0 INVALID, 1 P, 2 R, 3 N, 4 D, 7 SNA.
var gearTable = map[int]Gear{
	0: GearUnknown,
	1: GearPark,
	2: GearReverse,
	3: GearNeutral,
	4: GearDrive,
	7: GearUnknown,
}

type DoorState int

const (
	DoorStateUnknown DoorState = iota
	DoorStateClosed
	DoorStateOpen
	DoorStateInit
	DoorStateSNA
)

var doorStateTable = map[int]DoorState{
	0: DoorStateClosed,
	1: DoorStateOpen,
	2: DoorStateInit,
	3: DoorStateSNA,
}

// lookup decodes raw through table, returning the zero (unknown) value when
// the raw value is not listed. ok is false in that case.
func lookup[T any](table map[int]T, raw float64) (T, bool) {
	v, ok := table[int(raw)]
	return v, ok
}
