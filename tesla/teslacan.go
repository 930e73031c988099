package tesla

import (
	"fmt"

	"tesla-bridge-core/utils"
)

// Packer encodes named signals into a frame for one bus. *utils.CANMap
// satisfies it.
type Packer interface {
	Pack(name string, bus int, values map[string]float64) (utils.BusFrame, error)
}

// stwActnReqSignals are copied verbatim from the last received STW_ACTN_RQ
// when spamming cancel.
var stwActnReqSignals = []string{
	"SpdCtrlLvr_Stat",
	"VSL_Enbl_Rq",
	"SpdCtrlLvrStat_Inv",
	"DTR_Dist_Rq",
	"TurnIndLvr_Stat",
	"HiBmLvr_Stat",
	"WprWashSw_Psd",
	"WprWash_R_Sw_Posn_V2",
	"StW_Lvr_Stat",
	"StW_Cond_Flt",
	"StW_Cond_Psd",
	"HrnSw_Psd",
	"StW_Sw00_Psd",
	"StW_Sw01_Psd",
	"StW_Sw02_Psd",
	"StW_Sw03_Psd",
	"StW_Sw04_Psd",
	"StW_Sw05_Psd",
	"StW_Sw06_Psd",
	"StW_Sw07_Psd",
	"StW_Sw08_Psd",
	"StW_Sw09_Psd",
	"StW_Sw10_Psd",
	"StW_Sw11_Psd",
	"StW_Sw12_Psd",
	"StW_Sw13_Psd",
	"StW_Sw14_Psd",
	"StW_Sw15_Psd",
	"WprSw6Posn",
	"MC_STW_ACTN_RQ",
	"CRC_STW_ACTN_RQ",
}

// Right stalk positions sent by the Model 3/Y cancel sequence.
const (
	stalkNeutral = 0
	stalkHalfUp  = 1
)

// SCCM_rightStalk CRC bytes by counter, one table per stalk position. The
// right stalk CRC is not recomputed here; these values are what the vehicle
// accepts for a message that differs only in counter and position.
var (
	rightStalkCRCHalfUp  = [16]uint8{166, 164, 178, 141, 163, 161, 61, 25, 172, 69, 22, 108, 169, 207, 209, 219}
	rightStalkCRCNeutral = [16]uint8{70, 68, 82, 109, 67, 65, 221, 249, 76, 165, 246, 140, 73, 47, 49, 59}
)

// packerBus pairs a database with the bus a frame goes out on.
type packerBus struct {
	packer Packer
	bus    int
}

// teslaCAN builds the outbound frames.
type teslaCAN struct {
	packer   Packer
	ptPacker Packer
	params   ControllerParams
}

func (t *teslaCAN) steeringControl(angle float64, enabled bool, counter Counter) (utils.BusFrame, error) {
	values := map[string]float64{
		"DAS_steeringAngleRequest":   -angle,
		"DAS_steeringHapticRequest":  0,
		"DAS_steeringControlType":    utils.BoolToFloat(enabled),
		"DAS_steeringControlCounter": float64(counter),
	}

	f, err := t.packer.Pack("DAS_steeringControl", BusChassis, values)
	if err != nil {
		return utils.BusFrame{}, fmt.Errorf("steering control: %w", err)
	}
	values["DAS_steeringControlChecksum"] = float64(Checksum(msgSteeringControl, f.Frame.Data[:3]))
	return t.packer.Pack("DAS_steeringControl", BusChassis, values)
}

// actionRequest re-sends the driver's STW_ACTN_RQ, with the cancel lever
// position forced when cancel is set.
func (t *teslaCAN) actionRequest(stw map[string]float64, cancel bool, bus int, counter Counter) (utils.BusFrame, error) {
	values := make(map[string]float64, len(stwActnReqSignals))
	for _, s := range stwActnReqSignals {
		values[s] = stw[s]
	}
	if cancel {
		values["SpdCtrlLvr_Stat"] = 1
		values["MC_STW_ACTN_RQ"] = float64(counter)
	}

	f, err := t.packer.Pack("STW_ACTN_RQ", bus, values)
	if err != nil {
		return utils.BusFrame{}, fmt.Errorf("action request: %w", err)
	}
	values["CRC_STW_ACTN_RQ"] = float64(CRC8J1850(f.Frame.Data[:7]))
	return t.packer.Pack("STW_ACTN_RQ", bus, values)
}

// longitudinalCommands emits one DAS_control per bus, each with its own checksum.
func (t *teslaCAN) longitudinalCommands(cmd longitudinalCommand, counter Counter, targets []packerBus) ([]utils.BusFrame, error) {
	values := map[string]float64{
		"DAS_setSpeed":        cmd.targetSpeed * MsToKph,
		"DAS_accState":        cmd.accState,
		"DAS_aebEvent":        0,
		"DAS_jerkMin":         t.params.JerkLimitMin,
		"DAS_jerkMax":         t.params.JerkLimitMax,
		"DAS_accelMin":        cmd.minAccel,
		"DAS_accelMax":        cmd.maxAccel,
		"DAS_controlCounter":  float64(counter),
		"DAS_controlChecksum": 0,
	}

	out := make([]utils.BusFrame, 0, len(targets))
	for _, pb := range targets {
		values["DAS_controlChecksum"] = 0
		f, err := pb.packer.Pack("DAS_control", pb.bus, values)
		if err != nil {
			return out, fmt.Errorf("das control bus %d: %w", pb.bus, err)
		}
		values["DAS_controlChecksum"] = float64(Checksum(msgDASControl, f.Frame.Data[:7]))
		f, err = pb.packer.Pack("DAS_control", pb.bus, values)
		if err != nil {
			return out, fmt.Errorf("das control bus %d: %w", pb.bus, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// model3CancelACC builds a right stalk frame on the vehicle bus. Any position
// other than half up is sent as neutral.
func (t *teslaCAN) model3CancelACC(counter Counter, position int) (utils.BusFrame, error) {
	crc := rightStalkCRCNeutral
	if position == stalkHalfUp {
		crc = rightStalkCRCHalfUp
	} else {
		position = stalkNeutral
	}

	values := map[string]float64{
		"SCCM_rightStalkCounter":   float64(counter),
		"SCCM_rightStalkCrc":       float64(crc[counter&0x0F]),
		"SCCM_rightStalkReserved1": 0,
		"SCCM_parkButtonStatus":    0,
		"SCCM_rightStalkReserved2": 0,
		"SCCM_rightStalkStatus":    float64(position),
	}
	return t.ptPacker.Pack("SCCM_rightStalk", BusVehicle, values)
}
