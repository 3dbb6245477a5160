// Package hir holds the resolved intermediate representation of a circuit
// package. Nodes live in arenas and are referred to by integer handles; the
// type of every expression and binding is recorded in a side table owned by
// the Store.
package hir

import (
	"math/big"

	"github.com/smasher164/circuit/lexer"
	"github.com/smasher164/circuit/types"
)

type (
	ExprID  int
	StmtID  int
	IdentID int
	FuncID  int
)

type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
	And
	Or
	Xor
	Shl
	Shr
	Eq
	NotEq
	Lt
	LtEq
	Gt
	GtEq
)

var binaryOpNames = [...]string{
	Add:   "+",
	Sub:   "-",
	Mul:   "*",
	Div:   "/",
	And:   "&",
	Or:    "|",
	Xor:   "^",
	Shl:   "<<",
	Shr:   ">>",
	Eq:    "==",
	NotEq: "!=",
	Lt:    "<",
	LtEq:  "<=",
	Gt:    ">",
	GtEq:  ">=",
}

func (op BinaryOp) String() string {
	if op >= 0 && int(op) < len(binaryOpNames) {
		return binaryOpNames[op]
	}
	return "?"
}

func (op BinaryOp) IsComparator() bool {
	switch op {
	case Eq, NotEq, Lt, LtEq, Gt, GtEq:
		return true
	}
	return false
}

type PrefixOp int

const (
	Neg PrefixOp = iota
	Not
)

func (op PrefixOp) String() string {
	if op == Not {
		return "!"
	}
	return "-"
}

// Expression is one of the expression kinds below.
type Expression interface {
	isExpr()
}

var (
	_ Expression = Ident{}
	_ Expression = IntLit{}
	_ Expression = BoolLit{}
	_ Expression = StrLit{}
	_ Expression = ArrayLit{}
	_ Expression = Infix{}
	_ Expression = Index{}
	_ Expression = Call{}
	_ Expression = Cast{}
	_ Expression = For{}
	_ Expression = Prefix{}
	_ Expression = Predicate{}
	_ Expression = If{}
)

// Ident is a use of a name. Its definition is looked up with Store.Definition.
type Ident struct {
	ID IdentID
}

type IntLit struct {
	Value *big.Int
}

type BoolLit struct {
	Value bool
}

type StrLit struct {
	Value string
}

type ArrayLit struct {
	Elements []ExprID
}

type Infix struct {
	LHS ExprID
	Op  BinaryOp
	RHS ExprID
}

// Index reads an element of the array bound to Collection.
type Index struct {
	Collection IdentID
	Index      ExprID
}

type Call struct {
	Func FuncID
	Args []ExprID
}

type Cast struct {
	LHS  ExprID
	Type types.Type
}

// For iterates Ident over Start..End, evaluating Body once per iteration.
type For struct {
	Ident IdentID
	Start ExprID
	End   ExprID
	Body  StmtID
}

type Prefix struct {
	Op  PrefixOp
	RHS ExprID
}

// Predicate selects between two values on a boolean condition without
// branching the circuit.
type Predicate struct {
	Cond ExprID
	Then ExprID
	Else ExprID
}

type If struct {
	Cond ExprID
	Then StmtID
	Else StmtID // NoStmt when absent
}

// NoStmt marks an absent statement handle.
const NoStmt StmtID = -1

func (Ident) isExpr()     {}
func (IntLit) isExpr()    {}
func (BoolLit) isExpr()   {}
func (StrLit) isExpr()    {}
func (ArrayLit) isExpr()  {}
func (Infix) isExpr()     {}
func (Index) isExpr()     {}
func (Call) isExpr()      {}
func (Cast) isExpr()      {}
func (For) isExpr()       {}
func (Prefix) isExpr()    {}
func (Predicate) isExpr() {}
func (If) isExpr()        {}

// Statement is one of the statement kinds below.
type Statement interface {
	isStmt()
}

var (
	_ Statement = Let{}
	_ Statement = Const{}
	_ Statement = Constrain{}
	_ Statement = ExprStmt{}
	_ Statement = SemiStmt{}
	_ Statement = Block{}
)

// Let binds Ident to Expr. Type is types.Unspecified when not annotated.
type Let struct {
	Ident IdentID
	Type  types.Type
	Expr  ExprID
}

type Const struct {
	Ident IdentID
	Expr  ExprID
}

type Constrain struct {
	Expr ExprID
}

// ExprStmt is an expression without a trailing semicolon; as the last
// statement of a block it yields the block's value.
type ExprStmt struct {
	Expr ExprID
}

type SemiStmt struct {
	Expr ExprID
}

type Block struct {
	Stmts []StmtID
}

func (Let) isStmt()       {}
func (Const) isStmt()     {}
func (Constrain) isStmt() {}
func (ExprStmt) isStmt()  {}
func (SemiStmt) isStmt()  {}
func (Block) isStmt()     {}

// IdentInfo describes one occurrence of a name in source.
type IdentInfo struct {
	Name string
	Span lexer.Span
}

type Param struct {
	Ident IdentID
	Type  types.Type
}

type Function struct {
	File   string
	Name   IdentID
	Params []Param
	Return types.Type
	Body   StmtID
}
