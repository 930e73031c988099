package tesla

import (
	"tesla-bridge-core/utils"
)

// familyAPolicy drives Model 3 / Model Y. The body signals live on a separate
// vehicle bus, longitudinal goes out once per tick on the chassis bus, and
// cancel is a half-up right stalk press.
type familyAPolicy struct{}

func (familyAPolicy) databases() (string, string) {
	return "tesla_model3_party", "tesla_model3_vehicle"
}

func (familyAPolicy) subscriptions(Variant) (cp, cam, body []utils.MessageSpec) {
	cp = []utils.MessageSpec{
		{Name: "ESP_B", FrequencyHz: 50},
		{Name: "DI_systemStatus", FrequencyHz: 100},
		{Name: "IBST_status", FrequencyHz: 25},
		{Name: "DI_state", FrequencyHz: 10},
		{Name: "EPAS3S_sysStatus", FrequencyHz: 100},
	}
	cam = []utils.MessageSpec{
		{Name: "DAS_control", FrequencyHz: 25},
	}
	body = []utils.MessageSpec{
		{Name: "VCLEFT_switchStatus", FrequencyHz: 20},
		{Name: "SCCM_leftStalk", FrequencyHz: 10},
		{Name: "SCCM_rightStalk", FrequencyHz: 10},
		{Name: "SCCM_steeringAngleSensor", FrequencyHz: 100},
		{Name: "DAS_bodyControls", FrequencyHz: 2},
		{Name: "ID3F5VCFRONT_lighting", FrequencyHz: 10},
		{Name: "VCLEFT_doorStatus", FrequencyHz: 10},
		{Name: "VCRIGHT_doorStatus", FrequencyHz: 10},
	}
	return cp, cam, body
}

func (familyAPolicy) required(Variant) []signalRef {
	refs := []signalRef{
		{BusChassis, "ESP_B", "ESP_vehicleSpeed"},
		{BusChassis, "DI_systemStatus", "DI_accelPedalPos"},
		{BusChassis, "DI_systemStatus", "DI_gear"},
		{BusChassis, "IBST_status", "IBST_driverBrakeApply"},
		{BusChassis, "DI_state", "DI_cruiseState"},
		{BusChassis, "DI_state", "DI_speedUnits"},
		{BusChassis, "DI_state", "DI_digitalSpeed"},
		{BusAutopilotChassis, "DAS_control", "DAS_aebEvent"},
		{BusAutopilotChassis, "DAS_control", "DAS_accState"},
		{BusAutopilotChassis, "DAS_control", "DAS_controlCounter"},
		{BusVehicle, "VCLEFT_switchStatus", "VCLEFT_frontBuckleSwitch"},
		{BusVehicle, "SCCM_rightStalk", "SCCM_rightStalkCounter"},
		{BusVehicle, "SCCM_steeringAngleSensor", "SCCM_steeringAngleSpeed"},
		{BusVehicle, "ID3F5VCFRONT_lighting", "VCFRONT_indicatorLeftRequest"},
		{BusVehicle, "ID3F5VCFRONT_lighting", "VCFRONT_indicatorRightRequest"},
		{BusVehicle, "VCLEFT_doorStatus", "VCLEFT_frontLatchSwitch"},
		{BusVehicle, "VCLEFT_doorStatus", "VCLEFT_rearLatchSwitch"},
		{BusVehicle, "VCRIGHT_doorStatus", "VCRIGHT_frontLatchSwitch"},
		{BusVehicle, "VCRIGHT_doorStatus", "VCRIGHT_rearLatchSwitch"},
		{BusVehicle, "VCRIGHT_doorStatus", "VCRIGHT_trunkLatchStatus"},
	}
	for _, s := range []string{"handsOnLevel", "eacStatus", "eacErrorCode", "internalSAS", "torsionBarTorque"} {
		refs = append(refs, signalRef{BusChassis, "EPAS3S_sysStatus", "EPAS3S_" + s})
	}
	return refs
}

func (familyAPolicy) buttonDefs() []ButtonDefinition { return familyAButtons }

func (familyAPolicy) buttonSource(b buses) *utils.Parser { return b.body }

func (familyAPolicy) read(_ Variant, b buses) familyReading {
	epas := b.cp.Message("EPAS3S_sysStatus")
	body := b.body

	return familyReading{
		handsOnLevel: epas["EPAS3S_handsOnLevel"],
		errorCode:    epas["EPAS3S_eacErrorCode"],
		eacStatus:    epas["EPAS3S_eacStatus"],
		internalSAS:  epas["EPAS3S_internalSAS"],
		torque:       epas["EPAS3S_torsionBarTorque"],
		steerRate:    body.Value("SCCM_steeringAngleSensor", "SCCM_steeringAngleSpeed"),

		gas:          b.cp.Value("DI_systemStatus", "DI_accelPedalPos"),
		brakePressed: b.cp.Value("IBST_status", "IBST_driverBrakeApply") == 2,
		gear:         b.cp.Value("DI_systemStatus", "DI_gear"),

		doorOpen: body.Value("VCLEFT_doorStatus", "VCLEFT_frontLatchSwitch") != 1 ||
			body.Value("VCLEFT_doorStatus", "VCLEFT_rearLatchSwitch") != 1 ||
			body.Value("VCRIGHT_doorStatus", "VCRIGHT_frontLatchSwitch") != 1 ||
			body.Value("VCRIGHT_doorStatus", "VCRIGHT_rearLatchSwitch") != 1 ||
			body.Value("VCRIGHT_doorStatus", "VCRIGHT_trunkLatchStatus") != 2,
		leftBlinker:       body.Value("ID3F5VCFRONT_lighting", "VCFRONT_indicatorLeftRequest") != 0,
		rightBlinker:      body.Value("ID3F5VCFRONT_lighting", "VCFRONT_indicatorRightRequest") != 0,
		seatbeltUnlatched: body.Value("VCLEFT_switchStatus", "VCLEFT_frontBuckleSwitch") == 1,

		stalk: body.Message("SCCM_rightStalk"),
	}
}

// The stock DAS counter is echoed as is: one frame per tick.
func (familyAPolicy) longitudinalFrames(tc *teslaCAN, st *adapterState, cmd longitudinalCommand) ([]utils.BusFrame, error) {
	counter := CounterOf(int(st.dasControl["DAS_controlCounter"]))
	return tc.longitudinalCommands(cmd, counter, []packerBus{{tc.packer, BusChassis}})
}

// A held half-up press reads as a gear change request, so the press is
// followed immediately by a neutral frame with the next counter.
func (familyAPolicy) cancelFrames(tc *teslaCAN, st *adapterState) ([]utils.BusFrame, error) {
	counter := CounterOf(int(st.stalk["SCCM_rightStalkCounter"]) + 1)

	press, err := tc.model3CancelACC(counter, stalkHalfUp)
	if err != nil {
		return nil, err
	}
	release, err := tc.model3CancelACC(counter.Next(), stalkNeutral)
	if err != nil {
		return []utils.BusFrame{press}, err
	}
	return []utils.BusFrame{press, release}, nil
}
