package utils

import (
	"fmt"
	"math"

	"go.einride.tech/can"
)

func (m *CANMap) encodeData(fd *FrameDef, values map[string]float64) (can.Data, error) {
	var data can.Data
	if fd.DLC <= 0 || fd.DLC > 8 {
		return data, fmt.Errorf("frame %s has invalid DLC %d", fd.Name, fd.DLC)
	}

	for _, s := range fd.Signals {
		v, ok := values[s.Name]
		if !ok {
			v = s.Default
		}
		if math.IsNaN(v) {
			return data, fmt.Errorf("frame %s signal %s: NaN value", fd.Name, s.Name)
		}

		if s.Max > s.Min {
			v = clamp(v, s.Min, s.Max)
		}

		raw := int64(math.Round((v - s.Offset) / s.Factor))
		raw = clampRaw(raw, s.BitLength, s.Signed)

		if s.Signed {
			data.SetSignedBitsLittleEndian(uint8(s.StartBit), uint8(s.BitLength), raw)
		} else {
			data.SetUnsignedBitsLittleEndian(uint8(s.StartBit), uint8(s.BitLength), uint64(raw))
		}
	}
	return data, nil
}

func (m *CANMap) EncodeFrame(frameName string, values map[string]float64) ([]byte, uint32, error) {
	fd, err := m.FrameByName(frameName)
	if err != nil {
		return nil, 0, err
	}
	data, err := m.encodeData(fd, values)
	if err != nil {
		return nil, 0, err
	}
	out := make([]byte, fd.DLC)
	copy(out, data[:fd.DLC])
	return out, fd.ID, nil
}

// Helper: produce einride can.Frame ready to transmit.
func (m *CANMap) EncodeEinrideFrame(frameName string, values map[string]float64) (can.Frame, error) {
	fd, err := m.FrameByName(frameName)
	if err != nil {
		return can.Frame{}, err
	}
	data, err := m.encodeData(fd, values)
	if err != nil {
		return can.Frame{}, err
	}
	return can.Frame{
		ID:     fd.ID,
		Length: uint8(fd.DLC),
		Data:   data,
	}, nil
}

// Pack encodes a frame by name and tags it with the bus it will be sent on.
// Signals missing from values take their database default.
func (m *CANMap) Pack(frameName string, bus int, values map[string]float64) (BusFrame, error) {
	f, err := m.EncodeEinrideFrame(frameName, values)
	if err != nil {
		return BusFrame{}, err
	}
	return BusFrame{Bus: bus, Frame: f}, nil
}

func (m *CANMap) DecodeFrame(frameID uint32, data []byte) (map[string]float64, error) {
	fd, err := m.FrameByID(frameID)
	if err != nil {
		return nil, err
	}
	if len(data) < fd.DLC {
		return nil, fmt.Errorf("frame 0x%X expects DLC %d, got %d", frameID, fd.DLC, len(data))
	}

	var payload can.Data
	copy(payload[:], data[:fd.DLC])

	out := make(map[string]float64, len(fd.Signals))
	for _, s := range fd.Signals {
		var raw int64
		if s.Signed {
			raw = payload.SignedBitsLittleEndian(uint8(s.StartBit), uint8(s.BitLength))
		} else {
			raw = int64(payload.UnsignedBitsLittleEndian(uint8(s.StartBit), uint8(s.BitLength)))
		}
		out[s.Name] = float64(raw)*s.Factor + s.Offset
	}
	return out, nil
}
