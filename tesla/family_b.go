package tesla

import (
	"tesla-bridge-core/utils"
)

// familyBPolicy drives Model S / Model X. Longitudinal is duplicated on the
// chassis and powertrain buses and cancel spams STW_ACTN_RQ.
type familyBPolicy struct{}

var gtwDoors = []string{
	"DOOR_STATE_FL",
	"DOOR_STATE_FR",
	"DOOR_STATE_RL",
	"DOOR_STATE_RR",
	"DOOR_STATE_FrontTrunk",
	"BOOT_STATE",
}

func (familyBPolicy) databases() (string, string) {
	return "tesla_can", "tesla_powertrain"
}

func (familyBPolicy) subscriptions(v Variant) (cp, cam, body []utils.MessageSpec) {
	cp = []utils.MessageSpec{
		{Name: "ESP_B", FrequencyHz: 50},
		{Name: "DI_torque1", FrequencyHz: 100},
		{Name: "DI_torque2", FrequencyHz: 100},
		{Name: "STW_ANGLHP_STAT", FrequencyHz: 100},
		{Name: "EPAS_sysStatus", FrequencyHz: 25},
		{Name: "DI_state", FrequencyHz: 10},
		{Name: "STW_ACTN_RQ", FrequencyHz: 10},
		{Name: "GTW_carState", FrequencyHz: 10},
		{Name: "BrakeMessage", FrequencyHz: 50},
	}
	if v.Raven {
		cp = append(cp, utils.MessageSpec{Name: "DriverSeat", FrequencyHz: 20})
	} else {
		cp = append(cp, utils.MessageSpec{Name: "SDM1", FrequencyHz: 10})
	}

	cam = []utils.MessageSpec{
		{Name: "DAS_control", FrequencyHz: 40},
	}
	if v.Raven {
		cam = append(cam, utils.MessageSpec{Name: "EPAS3P_sysStatus", FrequencyHz: 100})
	}
	return cp, cam, nil
}

func (familyBPolicy) required(v Variant) []signalRef {
	refs := []signalRef{
		{BusChassis, "ESP_B", "ESP_vehicleSpeed"},
		{BusChassis, "DI_torque1", "DI_pedalPos"},
		{BusChassis, "DI_torque2", "DI_gear"},
		{BusChassis, "STW_ANGLHP_STAT", "StW_AnglHP_Spd"},
		{BusChassis, "DI_state", "DI_cruiseState"},
		{BusChassis, "DI_state", "DI_speedUnits"},
		{BusChassis, "DI_state", "DI_digitalSpeed"},
		{BusChassis, "GTW_carState", "BC_indicatorLStatus"},
		{BusChassis, "GTW_carState", "BC_indicatorRStatus"},
		{BusChassis, "BrakeMessage", "driverBrakeStatus"},
		{BusAutopilotChassis, "DAS_control", "DAS_aebEvent"},
		{BusAutopilotChassis, "DAS_control", "DAS_accState"},
		{BusAutopilotChassis, "DAS_control", "DAS_controlCounter"},
	}
	for _, d := range gtwDoors {
		refs = append(refs, signalRef{BusChassis, "GTW_carState", d})
	}
	for _, s := range stwActnReqSignals {
		refs = append(refs, signalRef{BusChassis, "STW_ACTN_RQ", s})
	}

	epasBus, epasMsg := BusChassis, "EPAS_sysStatus"
	if v.Raven {
		epasBus, epasMsg = BusAutopilotChassis, "EPAS3P_sysStatus"
		refs = append(refs, signalRef{BusChassis, "DriverSeat", "buckleStatus"})
	} else {
		refs = append(refs, signalRef{BusChassis, "SDM1", "SDM_bcklDrivStatus"})
	}
	for _, s := range []string{"handsOnLevel", "eacStatus", "eacErrorCode", "internalSAS", "torsionBarTorque"} {
		refs = append(refs, signalRef{epasBus, epasMsg, "EPAS_" + s})
	}
	return refs
}

func (familyBPolicy) buttonDefs() []ButtonDefinition { return familyBButtons }

func (familyBPolicy) buttonSource(b buses) *utils.Parser { return b.cp }

func (familyBPolicy) read(v Variant, b buses) familyReading {
	epas := b.cp.Message("EPAS_sysStatus")
	if v.Raven {
		epas = b.cam.Message("EPAS3P_sysStatus")
	}

	doorOpen := false
	for _, d := range gtwDoors {
		// Values missing from the enum table count as open; SNA and INIT do not.
		state, ok := lookup(doorStateTable, b.cp.Value("GTW_carState", d))
		if !ok || state == DoorStateOpen {
			doorOpen = true
			break
		}
	}

	var unlatched bool
	if v.Raven {
		unlatched = b.cp.Value("DriverSeat", "buckleStatus") != 1
	} else {
		unlatched = b.cp.Value("SDM1", "SDM_bcklDrivStatus") != 1
	}

	return familyReading{
		handsOnLevel: epas["EPAS_handsOnLevel"],
		errorCode:    epas["EPAS_eacErrorCode"],
		eacStatus:    epas["EPAS_eacStatus"],
		internalSAS:  epas["EPAS_internalSAS"],
		torque:       epas["EPAS_torsionBarTorque"],
		// from a different angle sensor, sampled at a different rate
		steerRate: b.cp.Value("STW_ANGLHP_STAT", "StW_AnglHP_Spd"),

		gas:          b.cp.Value("DI_torque1", "DI_pedalPos"),
		brakePressed: b.cp.Value("BrakeMessage", "driverBrakeStatus") != 1,
		gear:         b.cp.Value("DI_torque2", "DI_gear"),

		doorOpen:          doorOpen,
		leftBlinker:       b.cp.Value("GTW_carState", "BC_indicatorLStatus") == 1,
		rightBlinker:      b.cp.Value("GTW_carState", "BC_indicatorRStatus") == 1,
		seatbeltUnlatched: unlatched,

		stalk: b.cp.Message("STW_ACTN_RQ"),
	}
}

// The stock DAS_control runs faster than the adapter, so every counter seen
// since the last tick is echoed, on both buses, to keep the receiving ECU's
// counter check continuous.
func (familyBPolicy) longitudinalFrames(tc *teslaCAN, st *adapterState, cmd longitudinalCommand) ([]utils.BusFrame, error) {
	targets := []packerBus{{tc.packer, BusChassis}, {tc.ptPacker, BusPowertrain}}
	var out []utils.BusFrame
	for _, c := range st.dasCounters.Drain() {
		frames, err := tc.longitudinalCommands(cmd, c, targets)
		out = append(out, frames...)
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

// The receiver may expect any counter value, so all 16 are sent on both the
// chassis and autopilot chassis buses.
func (familyBPolicy) cancelFrames(tc *teslaCAN, st *adapterState) ([]utils.BusFrame, error) {
	out := make([]utils.BusFrame, 0, 32)
	for _, c := range Sweep() {
		for _, bus := range []int{BusChassis, BusAutopilotChassis} {
			f, err := tc.actionRequest(st.stalk, true, bus, c)
			if err != nil {
				return out, err
			}
			out = append(out, f)
		}
	}
	return out, nil
}
