package tesla

import (
	"fmt"
	"strings"
)

// Family groups vehicles sharing one signal layout, bus topology and cancel
// mechanism.
type Family int

const (
	FamilyUnknown Family = iota
	// FamilyA is Model 3 / Model Y (AP3).
	FamilyA
	// FamilyB is Model S / Model X (AP1, AP2).
	FamilyB
)

func (f Family) String() string {
	switch f {
	case FamilyA:
		return "model3_y"
	case FamilyB:
		return "models_x"
	}
	return fmt.Sprintf("family(%d)", int(f))
}

// ParseFamily accepts the config spellings of a family.
func ParseFamily(s string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a", "model3", "model3_y", "modely", "ap3":
		return FamilyA, nil
	case "b", "models", "models_x", "modelx":
		return FamilyB, nil
	}
	return FamilyUnknown, fmt.Errorf("unknown vehicle family %q", s)
}

// Variant is fixed at startup.
type Variant struct {
	Family Family
	// Raven marks the Model S hardware revision whose EPAS reports on the
	// autopilot bus. Only valid with FamilyB.
	Raven bool
	// Longitudinal is set when the adapter owns longitudinal control.
	Longitudinal bool
}

func (v Variant) String() string {
	s := v.Family.String()
	if v.Raven {
		s += "+raven"
	}
	if v.Longitudinal {
		s += "+long"
	}
	return s
}
