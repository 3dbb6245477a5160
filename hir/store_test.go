package hir_test

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/smasher164/circuit/hir"
	"github.com/smasher164/circuit/lexer"
	"github.com/smasher164/circuit/types"
)

func TestTypeTableWriteOnce(t *testing.T) {
	s := hir.NewStore()
	lit := s.PushExpr(hir.IntLit{Value: big.NewInt(7)}, lexer.Span{})
	if ty, ok := s.LookupExprType(lit); ok || ty != nil {
		t.Errorf("fresh expression has type %v", ty)
	}
	if got := s.ExprType(lit); got != types.Unknown {
		t.Errorf("unrecorded type reads as %s", got)
	}
	if err := s.SetExprType(lit, types.Constant); err != nil {
		t.Fatal(err)
	}
	err := s.SetExprType(lit, types.FieldElement)
	if !errors.Is(err, hir.ErrTypeRecorded) {
		t.Fatalf("second write: %v", err)
	}
	if got := s.ExprType(lit); got != types.Constant {
		t.Errorf("second write replaced %s", got)
	}

	x := s.PushIdent("x", lexer.Span{})
	if err := s.SetIdentType(x, types.Witness); err != nil {
		t.Fatal(err)
	}
	err = s.SetIdentType(x, types.Witness)
	if !errors.Is(err, hir.ErrTypeRecorded) || !strings.Contains(err.Error(), "identifier x") {
		t.Errorf("second ident write: %v", err)
	}
	if _, ok := s.LookupIdentType(s.PushIdent("y", lexer.Span{})); ok {
		t.Error("y has a type")
	}
}

func TestStore(t *testing.T) {
	s := hir.NewStore()
	def := s.PushIdent("x", lexer.Span{})
	ref := s.PushIdent("x", lexer.Span{})
	s.Resolve(ref, def)
	if got, ok := s.Definition(ref); !ok || got != def {
		t.Errorf("Definition(%d) = %d, %t", ref, got, ok)
	}
	if _, ok := s.Definition(def); ok {
		t.Error("a definition does not resolve to itself")
	}

	params := []hir.Param{{Ident: def, Type: types.FieldElement}}
	fn := s.PushFunction(hir.Function{Name: s.PushIdent("f", lexer.Span{}), Params: params, Return: types.Unit, Body: hir.NoStmt})
	params[0].Type = types.Bool
	if got := s.Function(fn).Params[0].Type; got != types.FieldElement {
		t.Errorf("function params alias the caller's slice: %s", got)
	}
	body := s.PushStmt(hir.Block{})
	s.SetFunctionBody(fn, body)
	if s.Function(fn).Body != body {
		t.Error("body not attached")
	}
	if s.NumFunctions() != 1 {
		t.Errorf("NumFunctions() = %d", s.NumFunctions())
	}

	var sb strings.Builder
	s.Dump(&sb)
	for _, want := range []string{"functions:", "Block", "expression types:"} {
		if !strings.Contains(sb.String(), want) {
			t.Errorf("dump lacks %q:\n%s", want, sb.String())
		}
	}
}

func TestBinaryOp(t *testing.T) {
	for op := hir.Add; op <= hir.GtEq; op++ {
		want := op >= hir.Eq
		if op.IsComparator() != want {
			t.Errorf("%s.IsComparator() = %t", op, !want)
		}
	}
	if hir.Shl.String() != "<<" || hir.NotEq.String() != "!=" {
		t.Errorf("op names: %s %s", hir.Shl, hir.NotEq)
	}
}
