package hir

import (
	"errors"
	"fmt"
	"io"

	"github.com/sanity-io/litter"
	"github.com/smasher164/circuit/lexer"
	"github.com/smasher164/circuit/types"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// ErrTypeRecorded is returned when a type is recorded twice for one handle.
var ErrTypeRecorded = errors.New("type already recorded")

type exprNode struct {
	Kind Expression
	Span lexer.Span
}

// Store owns the IR of a package and the types recorded against it.
type Store struct {
	exprs  []exprNode
	stmts  []Statement
	idents []IdentInfo
	funcs  []Function

	defs       map[IdentID]IdentID
	exprTypes  map[ExprID]types.Type
	identTypes map[IdentID]types.Type
}

func NewStore() *Store {
	return &Store{
		defs:       make(map[IdentID]IdentID),
		exprTypes:  make(map[ExprID]types.Type),
		identTypes: make(map[IdentID]types.Type),
	}
}

func (s *Store) PushExpr(kind Expression, span lexer.Span) ExprID {
	s.exprs = append(s.exprs, exprNode{Kind: kind, Span: span})
	return ExprID(len(s.exprs) - 1)
}

func (s *Store) PushStmt(stmt Statement) StmtID {
	s.stmts = append(s.stmts, stmt)
	return StmtID(len(s.stmts) - 1)
}

func (s *Store) PushIdent(name string, span lexer.Span) IdentID {
	s.idents = append(s.idents, IdentInfo{Name: name, Span: span})
	return IdentID(len(s.idents) - 1)
}

func (s *Store) PushFunction(fn Function) FuncID {
	fn.Params = slices.Clone(fn.Params)
	s.funcs = append(s.funcs, fn)
	return FuncID(len(s.funcs) - 1)
}

// SetFunctionBody attaches a lowered body to a function pushed from its
// signature alone.
func (s *Store) SetFunctionBody(id FuncID, body StmtID) {
	s.funcs[id].Body = body
}

// Resolve records that the identifier ref refers to the binding def.
func (s *Store) Resolve(ref, def IdentID) {
	s.defs[ref] = def
}

func (s *Store) Expression(id ExprID) Expression {
	return s.exprs[id].Kind
}

func (s *Store) ExprSpan(id ExprID) lexer.Span {
	return s.exprs[id].Span
}

func (s *Store) Statement(id StmtID) Statement {
	return s.stmts[id]
}

func (s *Store) Ident(id IdentID) IdentInfo {
	return s.idents[id]
}

func (s *Store) Function(id FuncID) Function {
	return s.funcs[id]
}

func (s *Store) NumExprs() int {
	return len(s.exprs)
}

func (s *Store) NumFunctions() int {
	return len(s.funcs)
}

// Definition returns the binding that ref resolves to.
func (s *Store) Definition(ref IdentID) (IdentID, bool) {
	def, ok := s.defs[ref]
	return def, ok
}

// ExprType returns the type recorded for id, or types.Unknown.
func (s *Store) ExprType(id ExprID) types.Type {
	if t, ok := s.exprTypes[id]; ok {
		return t
	}
	return types.Unknown
}

func (s *Store) LookupExprType(id ExprID) (types.Type, bool) {
	t, ok := s.exprTypes[id]
	return t, ok
}

// IdentType returns the type recorded for the binding id, or types.Unknown.
func (s *Store) IdentType(id IdentID) types.Type {
	if t, ok := s.identTypes[id]; ok {
		return t
	}
	return types.Unknown
}

func (s *Store) LookupIdentType(id IdentID) (types.Type, bool) {
	t, ok := s.identTypes[id]
	return t, ok
}

// TypedIdents returns the bindings that have a recorded type, in handle order.
func (s *Store) TypedIdents() []IdentID {
	ids := maps.Keys(s.identTypes)
	slices.Sort(ids)
	return ids
}

// SetExprType records t for id. Each expression is typed at most once.
func (s *Store) SetExprType(id ExprID, t types.Type) error {
	if old, ok := s.exprTypes[id]; ok {
		return fmt.Errorf("expression %d: %w as %s", id, ErrTypeRecorded, old)
	}
	s.exprTypes[id] = t
	return nil
}

// SetIdentType records t for the binding id. Each binding is typed at most once.
func (s *Store) SetIdentType(id IdentID, t types.Type) error {
	if old, ok := s.identTypes[id]; ok {
		return fmt.Errorf("identifier %s: %w as %s", s.idents[id].Name, ErrTypeRecorded, old)
	}
	s.identTypes[id] = t
	return nil
}

// Dump writes a readable rendering of every node and recorded type.
func (s *Store) Dump(w io.Writer) {
	opts := litter.Options{
		StripPackageNames: true,
		HideZeroValues:    true,
		HidePrivateFields: false,
		Separator:         " ",
	}
	fmt.Fprintf(w, "functions: %s\n", opts.Sdump(s.funcs))
	fmt.Fprintf(w, "idents: %s\n", opts.Sdump(s.idents))
	fmt.Fprintf(w, "statements: %s\n", opts.Sdump(s.stmts))
	fmt.Fprintf(w, "expressions: %s\n", opts.Sdump(s.exprs))
	fmt.Fprintf(w, "definitions: %s\n", opts.Sdump(s.defs))
	fmt.Fprintf(w, "expression types: %s\n", opts.Sdump(s.exprTypes))
	fmt.Fprintf(w, "identifier types: %s\n", opts.Sdump(s.identTypes))
}
