package tesla

import (
	"errors"
	"io/fs"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestNewCarInterface_Variants(t *testing.T) {
	for _, tt := range []struct {
		variant Variant
		buses   []int
		tx      []int
	}{
		{variant: Variant{Family: FamilyA}, buses: []int{0, 1, 2}, tx: []int{0, 1}},
		{variant: Variant{Family: FamilyA, Longitudinal: true}, buses: []int{0, 1, 2}, tx: []int{0, 1}},
		{variant: Variant{Family: FamilyB}, buses: []int{0, 2}, tx: []int{0, 2}},
		{variant: Variant{Family: FamilyB, Raven: true, Longitudinal: true}, buses: []int{0, 2}, tx: []int{0, 2, 4}},
	} {
		t.Run(tt.variant.String(), func(t *testing.T) {
			ci, err := NewCarInterface(tt.variant, nil)
			assert.NilError(t, err)
			assert.Equal(t, tt.variant, ci.Variant())
			assert.DeepEqual(t, tt.buses, ci.Buses())
			assert.DeepEqual(t, tt.tx, ci.TxBuses())
			assert.Equal(t, 0, ci.Frame())
		})
	}
}

func TestNewCarInterface_VariantError(t *testing.T) {
	for _, v := range []Variant{
		{Family: FamilyA, Raven: true},
		{Family: FamilyUnknown},
		{Family: Family(7)},
	} {
		_, err := NewCarInterface(v, nil)
		var verr *VariantError
		assert.Assert(t, errors.As(err, &verr), "%s", v)
		assert.Equal(t, v, verr.Variant)
	}
}

func TestVariantError_Message(t *testing.T) {
	err := &VariantError{Variant: Variant{Family: FamilyA, Raven: true}, msg: "raven is a Model S revision"}
	assert.Error(t, err, "raven is a Model S revision: model3_y+raven")
	err = &VariantError{Variant: Variant{}}
	assert.Error(t, err, "unsupported vehicle variant: family(0)")
}

func TestSignalError(t *testing.T) {
	err := &SignalError{Bus: 2, Message: "EPAS3P_sysStatus", Signal: "EPAS_handsOnLevel", Err: fs.ErrNotExist}
	assert.Check(t, is.ErrorContains(err, "bus 2 EPAS3P_sysStatus.EPAS_handsOnLevel unavailable"))
	assert.Assert(t, errors.Is(err, fs.ErrNotExist))
	assert.Error(t, &SignalError{Bus: 0, Message: "M", Signal: "S"}, "bus 0 M.S unavailable")
}

func TestParseFamily(t *testing.T) {
	for in, want := range map[string]Family{
		"model3_y": FamilyA,
		"Model3":   FamilyA,
		" a ":      FamilyA,
		"models_x": FamilyB,
		"modelx":   FamilyB,
		"B":        FamilyB,
	} {
		got, err := ParseFamily(in)
		assert.NilError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFamily("roadster")
	assert.ErrorContains(t, err, "roadster")
}

func TestRequiredSignalsResolve(t *testing.T) {
	// every signal a policy reads must be reachable through its parsers
	for _, v := range []Variant{
		{Family: FamilyA},
		{Family: FamilyB},
		{Family: FamilyB, Raven: true},
	} {
		ci, err := NewCarInterface(v, nil)
		assert.NilError(t, err)
		for _, r := range ci.policy.required(v) {
			p := ci.parserFor(r.bus)
			assert.Assert(t, p != nil, "%s: bus %d", v, r.bus)
			_, ok := p.Lookup(r.message, r.signal)
			assert.Assert(t, ok, "%s: %s.%s", v, r.message, r.signal)
		}
	}
}
