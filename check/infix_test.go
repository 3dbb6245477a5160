package check_test

import (
	"errors"
	"testing"

	"github.com/smasher164/circuit/check"
	"github.com/smasher164/circuit/hir"
	"github.com/smasher164/circuit/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleTypes = []types.Type{
	types.FieldElement,
	types.Constant,
	types.Witness,
	types.Public,
	types.Bool,
	types.Unit,
	types.Unknown,
	types.Unspecified,
	types.Error,
	types.Uint(8),
	types.Uint(32),
	types.Int(32),
	types.Array{Size: types.Fixed(4), Elem: types.FieldElement},
	types.Array{Size: types.Variable, Elem: types.Uint(8)},
}

func TestInfixIntegers(t *testing.T) {
	for _, width := range []uint32{1, 8, 32, 64, 128} {
		for _, ty := range []types.Integer{types.Uint(width), types.Int(width)} {
			got, err := check.InfixResultType(ty, hir.Add, ty)
			require.NoError(t, err)
			assert.Equal(t, types.Type(ty), got)
		}
	}

	_, err := check.InfixResultType(types.Uint(8), hir.Mul, types.Int(8))
	assert.ErrorIs(t, err, check.SignednessMismatch)
	_, err = check.InfixResultType(types.Uint(8), hir.Mul, types.Uint(16))
	assert.ErrorIs(t, err, check.BitWidthMismatch)
	assert.Contains(t, err.Error(), "8 and 16")
	// Signedness is reported before width.
	_, err = check.InfixResultType(types.Uint(8), hir.Sub, types.Int(16))
	assert.ErrorIs(t, err, check.SignednessMismatch)
}

func TestInfixRules(t *testing.T) {
	u8 := types.Uint(8)
	arr := types.Array{Size: types.Fixed(2), Elem: types.FieldElement}
	cases := []struct {
		name     string
		lhs, rhs types.Type
		op       hir.BinaryOp
		want     types.Type
		wantErr  error
	}{
		{"comparison ignores operands", u8, types.Witness, hir.Eq, types.Bool, nil},
		{"comparison of arrays", arr, types.Unit, hir.Lt, types.Bool, nil},
		{"integer and witness", u8, types.Witness, hir.Add, nil, check.IncompatibleOperandTypes},
		{"integer and constant", u8, types.Constant, hir.Add, u8, nil},
		{"integer and field", u8, types.FieldElement, hir.Add, nil, check.IncompatibleOperandTypes},
		{"integer and error", u8, types.Error, hir.Add, nil, check.IncompatibleOperandTypes},
		{"integer and public", u8, types.Public, hir.Add, nil, check.IncompatibleOperandTypes},
		{"integer and array", u8, arr, hir.Add, nil, check.IncompatibleOperandTypes},
		{"array and field", arr, types.FieldElement, hir.Add, nil, check.IncompatibleOperandTypes},
		{"array and error", arr, types.Error, hir.Add, nil, check.IncompatibleOperandTypes},
		{"error absorbs", types.Error, types.Witness, hir.Add, types.Error, nil},
		{"error before unspecified", types.Error, types.Unspecified, hir.Add, types.Error, nil},
		{"unspecified before unknown", types.Unspecified, types.Unknown, hir.Add, types.Unspecified, nil},
		{"unknown before unit", types.Unknown, types.Unit, hir.Add, types.Unknown, nil},
		{"unit before witness", types.Unit, types.Witness, hir.Add, types.Unit, nil},
		{"witness and public", types.Witness, types.Public, hir.Add, types.Witness, nil},
		{"public is a witness", types.Public, types.FieldElement, hir.Mul, types.Witness, nil},
		{"public and constant", types.Public, types.Constant, hir.Mul, types.Witness, nil},
		{"bool before field", types.Bool, types.FieldElement, hir.And, types.Bool, nil},
		{"field and constant", types.FieldElement, types.Constant, hir.Add, types.FieldElement, nil},
		{"constants", types.Constant, types.Constant, hir.Shl, types.Constant, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := check.InfixResultType(c.lhs, c.op, c.rhs)
			if c.wantErr != nil {
				assert.ErrorIs(t, err, c.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, types.Equal(c.want, got), "got %s, want %s", got, c.want)
		})
	}
}

func TestInfixSymmetric(t *testing.T) {
	ops := []hir.BinaryOp{hir.Add, hir.Mul, hir.Xor, hir.NotEq}
	for _, op := range ops {
		for _, a := range sampleTypes {
			for _, b := range sampleTypes {
				ab, errAB := check.InfixResultType(a, op, b)
				ba, errBA := check.InfixResultType(b, op, a)
				if errAB != nil || errBA != nil {
					var e1, e2 *check.Error
					require.True(t, errors.As(errAB, &e1), "%s %s %s succeeded as %s, but swapped failed: %v", a, op, b, ab, errBA)
					require.True(t, errors.As(errBA, &e2), "%s %s %s succeeded as %s, but swapped failed: %v", b, op, a, ba, errAB)
					assert.Equal(t, e1.Kind, e2.Kind, "%s %s %s", a, op, b)
					continue
				}
				assert.True(t, types.Equal(ab, ba), "%s %s %s = %s, swapped = %s", a, op, b, ab, ba)
			}
		}
	}
}
