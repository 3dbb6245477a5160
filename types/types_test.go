package types_test

import (
	"testing"

	"github.com/smasher164/circuit/types"
)

func TestEqual(t *testing.T) {
	cases := []struct {
		a, b types.Type
		want bool
	}{
		{types.FieldElement, types.FieldElement, true},
		{types.FieldElement, types.Witness, false},
		{types.Uint(32), types.Uint(32), true},
		{types.Uint(32), types.Int(32), false},
		{types.Uint(32), types.Uint(64), false},
		{types.Uint(8), types.Constant, false},
		{types.Array{Size: types.Fixed(3), Elem: types.Constant}, types.Array{Size: types.Fixed(3), Elem: types.Constant}, true},
		{types.Array{Size: types.Fixed(3), Elem: types.Constant}, types.Array{Size: types.Fixed(4), Elem: types.Constant}, false},
		{types.Array{Size: types.Fixed(3), Elem: types.Constant}, types.Array{Size: types.Variable, Elem: types.Constant}, false},
		{types.Array{Size: types.Variable, Elem: types.Uint(8)}, types.Array{Size: types.Variable, Elem: types.Int(8)}, false},
		{types.Array{Size: types.Variable, Elem: types.Array{Size: types.Fixed(2), Elem: types.Bool}}, types.Array{Size: types.Variable, Elem: types.Array{Size: types.Fixed(2), Elem: types.Bool}}, true},
	}
	for _, c := range cases {
		if got := types.Equal(c.a, c.b); got != c.want {
			t.Errorf("Equal(%s, %s) = %t, want %t", c.a, c.b, got, c.want)
		}
		if got := types.Equal(c.b, c.a); got != c.want {
			t.Errorf("Equal(%s, %s) = %t, want %t", c.b, c.a, got, c.want)
		}
	}
}

func TestArrayPredicates(t *testing.T) {
	fixed := types.Array{Size: types.Fixed(4), Elem: types.FieldElement}
	variable := types.Array{Size: types.Variable, Elem: types.FieldElement}
	if !types.IsFixedSizedArray(fixed) || types.IsVariableSizedArray(fixed) {
		t.Errorf("%s should be fixed-size only", fixed)
	}
	if !types.IsVariableSizedArray(variable) || types.IsFixedSizedArray(variable) {
		t.Errorf("%s should be variable-size only", variable)
	}
	if types.IsFixedSizedArray(types.FieldElement) || types.IsVariableSizedArray(types.FieldElement) {
		t.Error("Field is not an array")
	}
}

func TestString(t *testing.T) {
	cases := map[types.Type]string{
		types.FieldElement: "Field",
		types.Constant:     "const",
		types.Witness:      "Witness",
		types.Public:       "pub",
		types.Unit:         "()",
		types.Uint(32):     "u32",
		types.Int(8):       "i8",
		types.Array{Size: types.Fixed(4), Elem: types.FieldElement}:  "[Field; 4]",
		types.Array{Size: types.Variable, Elem: types.Uint(1)}:       "[u1]",
	}
	for ty, want := range cases {
		if got := ty.String(); got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	}
}

func TestLookup(t *testing.T) {
	valid := map[string]types.Type{
		"Field":   types.FieldElement,
		"Witness": types.Witness,
		"pub":     types.Public,
		"Public":  types.Public,
		"const":   types.Constant,
		"bool":    types.Bool,
		"u1":      types.Uint(1),
		"u32":     types.Uint(32),
		"i64":     types.Int(64),
		"u128":    types.Uint(128),
	}
	for name, want := range valid {
		got, err := types.Lookup(name)
		if err != nil {
			t.Errorf("Lookup(%q): %v", name, err)
			continue
		}
		if !types.Equal(got, want) {
			t.Errorf("Lookup(%q) = %s, want %s", name, got, want)
		}
	}
	for _, name := range []string{"u", "u0", "u08", "u129", "i99999999999", "Felt", "ux"} {
		if _, err := types.Lookup(name); err == nil {
			t.Errorf("Lookup(%q) should fail", name)
		}
	}
}
