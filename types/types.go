package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Type is the closed set of types a circuit value can have.
type Type interface {
	fmt.Stringer
	Equal(Type) bool
	isType()
}

var (
	_ Type = Base(0)
	_ Type = Integer{}
	_ Type = Array{}
)

type Base int

const (
	// FieldElement is the native scalar of the proof system.
	FieldElement Base = iota
	// Constant is known at compile time and coerces into any Integer.
	Constant
	// Witness is supplied privately when the proof is generated.
	Witness
	// Public is supplied publicly when the proof is generated. It composes
	// as a Witness.
	Public
	Bool
	Unit
	Unknown
	Unspecified
	// Error absorbs operations on a value whose check already failed.
	Error
)

func (Base) isType() {}

func (t1 Base) Equal(t2 Type) bool {
	if t2, ok := t2.(Base); ok {
		return t1 == t2
	}
	return false
}

func (b Base) String() string {
	switch b {
	case FieldElement:
		return "Field"
	case Constant:
		return "const"
	case Witness:
		return "Witness"
	case Public:
		return "pub"
	case Bool:
		return "bool"
	case Unit:
		return "()"
	case Unknown:
		return "unknown"
	case Unspecified:
		return "unspecified"
	case Error:
		return "error"
	}
	return "Base(" + strconv.Itoa(int(b)) + ")"
}

type Signedness int

const (
	Unsigned Signedness = iota
	Signed
)

func (s Signedness) String() string {
	if s == Signed {
		return "signed"
	}
	return "unsigned"
}

// MaxWidth is the widest integer that fits in a field element with room to
// spare for overflow checks.
const MaxWidth = 128

type Integer struct {
	Sign  Signedness
	Width uint32
}

func Uint(width uint32) Integer { return Integer{Sign: Unsigned, Width: width} }
func Int(width uint32) Integer  { return Integer{Sign: Signed, Width: width} }

func (Integer) isType() {}

func (t1 Integer) Equal(t2 Type) bool {
	if t2, ok := t2.(Integer); ok {
		return t1 == t2
	}
	return false
}

func (t Integer) String() string {
	prefix := "u"
	if t.Sign == Signed {
		prefix = "i"
	}
	return prefix + strconv.FormatUint(uint64(t.Width), 10)
}

// ArraySize is either a fixed length known during checking or Variable.
type ArraySize struct {
	Variable bool
	Len      uint64
}

func Fixed(n uint64) ArraySize { return ArraySize{Len: n} }

var Variable = ArraySize{Variable: true}

type Array struct {
	Size ArraySize
	Elem Type
}

func (Array) isType() {}

func (t1 Array) Equal(t2 Type) bool {
	if t2, ok := t2.(Array); ok {
		return t1.Size == t2.Size && t1.Elem.Equal(t2.Elem)
	}
	return false
}

func (t Array) String() string {
	if t.Size.Variable {
		return fmt.Sprintf("[%s]", t.Elem)
	}
	return fmt.Sprintf("[%s; %d]", t.Elem, t.Size.Len)
}

func IsVariableSizedArray(t Type) bool {
	arr, ok := t.(Array)
	return ok && arr.Size.Variable
}

func IsFixedSizedArray(t Type) bool {
	arr, ok := t.(Array)
	return ok && !arr.Size.Variable
}

// Equal reports whether t1 and t2 are the same type. A nil type is equal
// only to nil.
func Equal(t1, t2 Type) bool {
	if t1 == nil || t2 == nil {
		return t1 == nil && t2 == nil
	}
	return t1.Equal(t2)
}

var universe = map[string]Type{
	"Field":    FieldElement,
	"Witness":  Witness,
	"Public":   Public,
	"pub":      Public,
	"Constant": Constant,
	"const":    Constant,
	"bool":     Bool,
}

// Lookup returns the type named by a type identifier in source: one of the
// builtin names, or uN / iN for an integer of width N.
func Lookup(name string) (Type, error) {
	if t, ok := universe[name]; ok {
		return t, nil
	}
	if len(name) > 1 && (name[0] == 'u' || name[0] == 'i') {
		digits := name[1:]
		if strings.TrimLeft(digits, "0123456789") == "" && digits[0] != '0' {
			width, err := strconv.ParseUint(digits, 10, 32)
			if err != nil || width > MaxWidth {
				return nil, fmt.Errorf("integer width %s exceeds the maximum of %d bits", digits, MaxWidth)
			}
			if name[0] == 'i' {
				return Int(uint32(width)), nil
			}
			return Uint(uint32(width)), nil
		}
	}
	return nil, fmt.Errorf("unknown type %s", name)
}
