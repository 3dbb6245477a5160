package check

import (
	"fmt"

	"github.com/smasher164/circuit/lexer"
)

// ErrorKind classifies a type error. Every *Error unwraps to its kind, so
// callers match with errors.Is(err, check.ArityMismatch).
type ErrorKind int

const (
	// UnresolvedIdentifier means an identifier reached the checker without
	// a definition. Name resolution rules this out for well-formed input.
	UnresolvedIdentifier ErrorKind = iota + 1
	SignednessMismatch
	BitWidthMismatch
	IncompatibleOperandTypes
	IndexOnNonArray
	ArityMismatch
	ArgumentTypeMismatch
	VariableSizedArgument
	NonConstantRangeBound
	RangeBoundTypeMismatch
	HeterogeneousArray
	UnsupportedConstruct
	DeclarationTypeMismatch
	NonBooleanConstraint
	ReturnTypeMismatch
	// Internal reports IR the checker cannot handle, such as a block whose
	// trailing statement is itself a block.
	Internal
)

var kindNames = [...]string{
	UnresolvedIdentifier:     "unresolved identifier",
	SignednessMismatch:       "signedness mismatch",
	BitWidthMismatch:         "bit width mismatch",
	IncompatibleOperandTypes: "incompatible operand types",
	IndexOnNonArray:          "index on non-array",
	ArityMismatch:            "arity mismatch",
	ArgumentTypeMismatch:     "argument type mismatch",
	VariableSizedArgument:    "variable-sized argument",
	NonConstantRangeBound:    "non-constant range bound",
	RangeBoundTypeMismatch:   "range bound type mismatch",
	HeterogeneousArray:       "heterogeneous array",
	UnsupportedConstruct:     "unsupported construct",
	DeclarationTypeMismatch:  "declaration type mismatch",
	NonBooleanConstraint:     "non-boolean constraint",
	ReturnTypeMismatch:       "return type mismatch",
	Internal:                 "internal error",
}

func (k ErrorKind) String() string {
	if k > 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

func (k ErrorKind) Error() string {
	return k.String()
}

// Error is a type error at a source span.
type Error struct {
	// Filename is set once the error is attributed to a function.
	Filename string
	Kind     ErrorKind
	Span     lexer.Span
	Msg      string
}

func (e *Error) Error() string {
	switch {
	case e.Span == (lexer.Span{}):
		return e.Msg
	case e.Filename != "":
		return fmt.Sprintf("%s:%s: %s", e.Filename, e.Span.Start, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Span.Start, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func errorf(kind ErrorKind, span lexer.Span, format string, args ...any) *Error {
	return &Error{Kind: kind, Span: span, Msg: fmt.Sprintf(format, args...)}
}
