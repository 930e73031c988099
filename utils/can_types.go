package utils

import (
	"sort"

	"go.einride.tech/can"
)

type SignalDef struct {
	Name       string
	StartBit   int
	BitLength  int
	Signed     bool
	Factor     float64
	Offset     float64
	Min        float64
	Max        float64
	Default    float64
	Unit       string
	Comment    string
	Endianness string // only "little" supported
}

type FrameDef struct {
	ID        uint32
	Name      string
	DLC       int
	Direction string
	CycleMS   int
	Signals   []SignalDef
}

// Signal returns the definition of the named signal, if the frame carries it.
func (fd *FrameDef) Signal(name string) (*SignalDef, bool) {
	for i := range fd.Signals {
		if fd.Signals[i].Name == name {
			return &fd.Signals[i], true
		}
	}
	return nil, false
}

// CANMap is one signal database (the equivalent of a single DBC file).
type CANMap struct {
	Name   string
	ByID   map[uint32]*FrameDef
	ByName map[string]*FrameDef
}

func (m *CANMap) FrameNames() []string {
	out := make([]string, 0, len(m.ByName))
	for k := range m.ByName {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// BusFrame is a classical CAN frame tagged with the harness bus it travels on.
type BusFrame struct {
	Bus   int
	Frame can.Frame
}

// Payload returns the used part of the frame data.
func (b BusFrame) Payload() []byte {
	return b.Frame.Data[:b.Frame.Length]
}
