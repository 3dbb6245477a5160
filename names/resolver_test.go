package names_test

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/smasher164/circuit/ast"
	"github.com/smasher164/circuit/hir"
	"github.com/smasher164/circuit/names"
	"github.com/smasher164/circuit/parser"
	"github.com/smasher164/circuit/types"
)

func resolve(t *testing.T, files map[string]string) (*hir.Store, []hir.FuncID, error) {
	t.Helper()
	fsys := fstest.MapFS{}
	for name, src := range files {
		fsys["pkg/"+name] = &fstest.MapFile{Data: []byte(src)}
	}
	pkg, err := parser.ParsePackage(fsys, "pkg")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return names.Resolve(pkg)
}

func funcNamed(store *hir.Store, funcs []hir.FuncID, name string) (hir.Function, bool) {
	for _, id := range funcs {
		fn := store.Function(id)
		if store.Ident(fn.Name).Name == name {
			return fn, true
		}
	}
	return hir.Function{}, false
}

func TestResolveAcrossFiles(t *testing.T) {
	store, funcs, err := resolve(t, map[string]string{
		"a.cir": `fn main(x: u32, xs: [Field; 3]) -> bool { helper(x) }`,
		"b.cir": `fn helper(y: u32) -> bool { y < 3 }`,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(funcs) != 2 {
		t.Fatalf("expected 2 functions, got %d", len(funcs))
	}
	main, ok := funcNamed(store, funcs, "main")
	if !ok {
		t.Fatal("main not found")
	}
	if main.File != "pkg/a.cir" {
		t.Errorf("main declared in %s", main.File)
	}
	wantParams := []types.Type{types.Uint(32), types.Array{Size: types.Fixed(3), Elem: types.FieldElement}}
	for i, p := range main.Params {
		if !types.Equal(p.Type, wantParams[i]) {
			t.Errorf("param %d: got %s, want %s", i, p.Type, wantParams[i])
		}
		if got := store.IdentType(p.Ident); !types.Equal(got, wantParams[i]) {
			t.Errorf("param %d recorded as %s", i, got)
		}
	}
	if !types.Equal(main.Return, types.Bool) {
		t.Errorf("main returns %s", main.Return)
	}

	body := store.Statement(main.Body).(hir.Block)
	trailing := store.Statement(body.Stmts[0]).(hir.ExprStmt)
	call := store.Expression(trailing.Expr).(hir.Call)
	if got := store.Ident(store.Function(call.Func).Name).Name; got != "helper" {
		t.Errorf("call resolved to %s", got)
	}
	arg := store.Expression(call.Args[0]).(hir.Ident)
	def, ok := store.Definition(arg.ID)
	if !ok || def != main.Params[0].Ident {
		t.Errorf("argument resolved to %d, want parameter %d", def, main.Params[0].Ident)
	}
}

func TestResolveScopes(t *testing.T) {
	store, funcs, err := resolve(t, map[string]string{
		"main.cir": `
fn main(x: Field) -> Field {
	let x = x + 1;
	for i in 0..3 { i };
	x
}`,
	})
	if err != nil {
		t.Fatal(err)
	}
	main := store.Function(funcs[0])
	body := store.Statement(main.Body).(hir.Block)
	let := store.Statement(body.Stmts[0]).(hir.Let)
	if !types.Equal(let.Type, types.Unspecified) {
		t.Errorf("unannotated let has type %s", let.Type)
	}
	// The right-hand side sees the parameter, not the new binding.
	rhs := store.Expression(let.Expr).(hir.Infix)
	if def, _ := store.Definition(store.Expression(rhs.LHS).(hir.Ident).ID); def != main.Params[0].Ident {
		t.Errorf("x + 1 refers to %d, want parameter", def)
	}
	loop := store.Expression(store.Statement(body.Stmts[1]).(hir.SemiStmt).Expr).(hir.For)
	loopBody := store.Statement(loop.Body).(hir.Block)
	i := store.Expression(store.Statement(loopBody.Stmts[0]).(hir.ExprStmt).Expr).(hir.Ident)
	if def, _ := store.Definition(i.ID); def != loop.Ident {
		t.Errorf("i refers to %d, want loop variable %d", def, loop.Ident)
	}
	// The trailing x sees the let binding.
	x := store.Expression(store.Statement(body.Stmts[2]).(hir.ExprStmt).Expr).(hir.Ident)
	if def, _ := store.Definition(x.ID); def != let.Ident {
		t.Errorf("trailing x refers to %d, want let %d", def, let.Ident)
	}
}

func TestResolveLiterals(t *testing.T) {
	store, funcs, err := resolve(t, map[string]string{
		"main.cir": `fn main() { let a = 0x_ff; let s = "a\tb"; let b = false; let c = (1_000); }`,
	})
	if err != nil {
		t.Fatal(err)
	}
	body := store.Statement(store.Function(funcs[0]).Body).(hir.Block)
	exprOf := func(i int) hir.Expression {
		return store.Expression(store.Statement(body.Stmts[i]).(hir.Let).Expr)
	}
	if v := exprOf(0).(hir.IntLit).Value; v.Int64() != 255 {
		t.Errorf("0x_ff = %s", v)
	}
	if s := exprOf(1).(hir.StrLit).Value; s != "a\tb" {
		t.Errorf("string = %q", s)
	}
	if b := exprOf(2).(hir.BoolLit).Value; b {
		t.Error("false lowered to true")
	}
	if v := exprOf(3).(hir.IntLit).Value; v.Int64() != 1000 {
		t.Errorf("(1_000) = %s", v)
	}
}

func TestResolveElseIf(t *testing.T) {
	store, funcs, err := resolve(t, map[string]string{
		"main.cir": `fn main(x: Field) { if x == 1 { x } else if x == 2 { x }; }`,
	})
	if err != nil {
		t.Fatal(err)
	}
	body := store.Statement(store.Function(funcs[0]).Body).(hir.Block)
	outer := store.Expression(store.Statement(body.Stmts[0]).(hir.SemiStmt).Expr).(hir.If)
	els := store.Statement(outer.Else).(hir.Block)
	inner := store.Expression(store.Statement(els.Stmts[0]).(hir.ExprStmt).Expr).(hir.If)
	if inner.Else != hir.NoStmt {
		t.Errorf("inner if has else %d", inner.Else)
	}
}

func TestResolveErrors(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{`fn main() -> Field { y }`, "main.cir:1:22: undefined: y"},
		{`fn main() { g(); }`, "undefined function g"},
		{`fn g() {} fn main() { let x = g; }`, "function g used as a value"},
		{`fn main(x: Field) { x(); }`, "x is not a function"},
		{`fn main() {} fn main() {}`, "main redeclared in this package, previous declaration at 1:4"},
		{`fn main(x: Field, x: Field) {}`, "duplicate parameter x"},
		{`fn main(x: Felt) {}`, "unknown type Felt"},
		{`fn main(x: u200) {}`, "exceeds the maximum of 128 bits"},
		{`fn main() { let x: [u8; 0x] = 1; }`, "no digits"},
		{`fn f(x: Field) -> [Field; 2] { [x, x] } fn main(x: Field) { let y = f(x)[0]; }`, "only a named array can be indexed"},
		{`fn main(x: Field) { let y = (x)(1); }`, "x is not a function"},
	}
	for _, c := range cases {
		fsys := fstest.MapFS{"main.cir": &fstest.MapFile{Data: []byte(c.src)}}
		file, err := parser.ParseFile(fsys, "main.cir")
		if err != nil {
			if !strings.Contains(err.Error(), c.want) {
				t.Errorf("%s: parse error %q, want %q", c.src, err, c.want)
			}
			continue
		}
		_, _, err = names.Resolve(&ast.Package{Files: []*ast.File{file}})
		if err == nil {
			t.Errorf("%s: expected error %q", c.src, c.want)
			continue
		}
		var rerr *names.Error
		if !errors.As(err, &rerr) {
			t.Errorf("%s: %T is not a *names.Error", c.src, err)
		}
		if !strings.Contains(err.Error(), c.want) {
			t.Errorf("%s: got %q, want %q", c.src, err, c.want)
		}
	}
}

func TestResolveContinuesAfterError(t *testing.T) {
	store, funcs, err := resolve(t, map[string]string{
		"main.cir": `
fn bad() { nope; }
fn good(x: Field) -> Field { x }
fn worse(x: Nope) {}
`,
	})
	if err == nil {
		t.Fatal("expected errors")
	}
	for _, want := range []string{"undefined: nope", "unknown type Nope"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("missing %q in %q", want, err)
		}
	}
	if len(funcs) != 1 || store.Ident(store.Function(funcs[0]).Name).Name != "good" {
		t.Errorf("expected only good to resolve, got %d functions", len(funcs))
	}
}
