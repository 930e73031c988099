package tesla

import (
	"tesla-bridge-core/utils"
)

// Update decodes the frames received since the previous tick and returns the
// canonical state. Frames for buses or messages the variant does not use are
// ignored. Malformed frames are logged and skipped.
func (ci *CarInterface) Update(frames []utils.BusFrame) CarState {
	for _, p := range ci.buses.all() {
		if _, err := p.Update(frames); err != nil {
			ci.log.Warn("bus %d: decode: %v", p.Bus, err)
		}
	}
	cp, cam := ci.buses.cp, ci.buses.cam
	r := ci.policy.read(ci.variant, ci.buses)

	var cs CarState

	cs.VEgoRaw = cp.Value("ESP_B", "ESP_vehicleSpeed") * KphToMs
	cs.VEgo, cs.AEgo = ci.kf.Update(cs.VEgoRaw)
	cs.Standstill = cs.VEgo < 0.1

	cs.Gas = r.gas / 100.0
	cs.GasPressed = cs.Gas > 0
	cs.BrakePressed = r.brakePressed

	warning, ok := lookup(eacErrorTable, r.errorCode)
	if !ok {
		ci.log.Trace("unknown EAC error code %v", r.errorCode)
	}
	status, _ := lookup(eacStatusTable, r.eacStatus)

	cs.HandsOnLevel = int(r.handsOnLevel)
	cs.SteerWarning = warning
	cs.SteerStatus = status
	cs.SteeringAngleDeg = -r.internalSAS
	cs.SteeringRateDeg = -r.steerRate
	cs.SteeringTorque = -r.torque
	cs.SteeringPressed = cs.HandsOnLevel > 0
	cs.SteerFaultPermanent = status == EACStatusFault
	cs.SteerFaultTemporary = warning != EACErrorIdle && warning != EACErrorHandsOn
	cs.SteerFault = classifySteerFault(warning, status)

	cruise, ok := lookup(cruiseStateTable, cp.Value("DI_state", "DI_cruiseState"))
	if !ok {
		ci.log.Trace("unknown cruise state %v", cp.Value("DI_state", "DI_cruiseState"))
	}
	units, _ := lookup(speedUnitsTable, cp.Value("DI_state", "DI_speedUnits"))
	cs.Cruise.Enabled = cruise.Engaged()
	cs.Cruise.Available = cruise == CruiseStateStandby || cs.Cruise.Enabled
	switch units {
	case SpeedUnitsKPH:
		cs.Cruise.SpeedMs = cp.Value("DI_state", "DI_digitalSpeed") * KphToMs
	case SpeedUnitsMPH:
		cs.Cruise.SpeedMs = cp.Value("DI_state", "DI_digitalSpeed") * MphToMs
	}
	// resuming from a stop needs nothing special
	cs.Cruise.Standstill = false

	cs.GearShifter, _ = lookup(gearTable, r.gear)

	cs.ButtonEvents = ci.buttons.Update(ci.policy.buttonSource(ci.buses).Value)

	cs.DoorOpen = r.doorOpen
	cs.LeftBlinker = r.leftBlinker
	cs.RightBlinker = r.rightBlinker
	cs.SeatbeltUnlatched = r.seatbeltUnlatched

	cs.StockAEB = cam.Value("DAS_control", "DAS_aebEvent") == 1

	cs.CanValid = true
	for _, p := range ci.buses.all() {
		cs.CanValid = cs.CanValid && p.CanValid()
	}

	// state the controller needs next tick
	ci.st.handsOnLevel = cs.HandsOnLevel
	ci.st.steerWarning = warning
	ci.st.accEnabled = cs.Cruise.Enabled
	ci.st.stalk = r.stalk
	ci.st.dasControl = cam.Message("DAS_control")
	ci.st.dasCounters.Push(cam.All("DAS_control", "DAS_controlCounter")...)

	for _, ev := range cs.ButtonEvents {
		ci.log.Debug("button %s pressed=%v", ev.Type, ev.Pressed)
	}
	return cs
}

func classifySteerFault(warning EACErrorCode, status EACStatus) SteerFault {
	switch {
	case status == EACStatusFault:
		return SteerFaultPermanent
	case warning == EACErrorHandsOn:
		return SteerFaultHandsOn
	case warning != EACErrorIdle:
		return SteerFaultSoft
	}
	return SteerFaultNone
}
