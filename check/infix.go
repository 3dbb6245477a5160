package check

import (
	"github.com/smasher164/circuit/hir"
	"github.com/smasher164/circuit/lexer"
	"github.com/smasher164/circuit/types"
)

// InfixResultType returns the type of lhs op rhs. The cases are tried in
// order and the first match wins: integer rules come before the absorbing
// placeholder types, so u8 + error is an error rather than error.
func InfixResultType(lhs types.Type, op hir.BinaryOp, rhs types.Type) (types.Type, error) {
	return infixResultType(lhs, op, rhs, lexer.Span{})
}

func infixResultType(lhs types.Type, op hir.BinaryOp, rhs types.Type, span lexer.Span) (types.Type, error) {
	lint, lIsInt := lhs.(types.Integer)
	rint, rIsInt := rhs.(types.Integer)
	switch {
	case op.IsComparator():
		return types.Bool, nil
	case lIsInt && rIsInt:
		if lint.Sign != rint.Sign {
			return nil, errorf(SignednessMismatch, span, "%s %s %s: integers must have the same signedness", lhs, op, rhs)
		}
		if lint.Width != rint.Width {
			return nil, errorf(BitWidthMismatch, span, "%s %s %s: integers must have the same bit width, found %d and %d", lhs, op, rhs, lint.Width, rint.Width)
		}
		return lint, nil
	case lIsInt && isBase(rhs, types.Witness), rIsInt && isBase(lhs, types.Witness):
		return nil, errorf(IncompatibleOperandTypes, span, "%s %s %s: cannot combine an integer with a witness; convert the witness to an integer first", lhs, op, rhs)
	case lIsInt && isBase(rhs, types.Constant):
		return lint, nil
	case rIsInt && isBase(lhs, types.Constant):
		return rint, nil
	case lIsInt, rIsInt:
		return nil, errorf(IncompatibleOperandTypes, span, "%s %s %s: integers only combine with integers of the same type or constants", lhs, op, rhs)
	case isArray(lhs), isArray(rhs):
		return nil, errorf(IncompatibleOperandTypes, span, "%s %s %s: arrays cannot be operands of %s", lhs, op, rhs, op)
	case either(lhs, rhs, types.Error):
		return types.Error, nil
	case either(lhs, rhs, types.Unspecified):
		return types.Unspecified, nil
	case either(lhs, rhs, types.Unknown):
		return types.Unknown, nil
	case either(lhs, rhs, types.Unit):
		return types.Unit, nil
	case either(lhs, rhs, types.Witness):
		return types.Witness, nil
	case either(lhs, rhs, types.Public):
		return types.Witness, nil
	case either(lhs, rhs, types.Bool):
		return types.Bool, nil
	case either(lhs, rhs, types.FieldElement):
		return types.FieldElement, nil
	case isBase(lhs, types.Constant) && isBase(rhs, types.Constant):
		return types.Constant, nil
	}
	return nil, errorf(IncompatibleOperandTypes, span, "%s %s %s: no rule for these operand types", lhs, op, rhs)
}

func isBase(t types.Type, b types.Base) bool {
	tb, ok := t.(types.Base)
	return ok && tb == b
}

func either(lhs, rhs types.Type, b types.Base) bool {
	return isBase(lhs, b) || isBase(rhs, b)
}

func isArray(t types.Type) bool {
	_, ok := t.(types.Array)
	return ok
}
