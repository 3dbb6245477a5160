// Package names resolves identifiers in a parsed package and lowers the
// syntax tree into the hir store consumed by the type checker.
package names

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/smasher164/circuit/ast"
	"github.com/smasher164/circuit/hir"
	"github.com/smasher164/circuit/lexer"
	"github.com/smasher164/circuit/types"
)

// Error is a resolution error at a position in a source file.
type Error struct {
	Filename string
	Span     lexer.Span
	Msg      string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%s: %s", e.Filename, e.Span.Start.String(), e.Msg)
}

type resolver struct {
	store    *hir.Store
	pkg      *Env
	filename string
}

func (r *resolver) errorf(span lexer.Span, format string, args ...any) error {
	return &Error{Filename: r.filename, Span: span, Msg: fmt.Sprintf(format, args...)}
}

type pendingBody struct {
	id       hir.FuncID
	decl     *ast.FnDecl
	filename string
}

// Resolve lowers every function in pkg into a new store. Signatures are
// collected before any body is lowered, so functions may call each other in
// any order. The returned handles name the functions whose bodies lowered
// cleanly; the error joins every resolution failure.
func Resolve(pkg *ast.Package) (*hir.Store, []hir.FuncID, error) {
	r := &resolver{store: hir.NewStore(), pkg: NewEnv(nil)}
	var errs []error
	var pending []pendingBody
	for _, file := range pkg.Files {
		r.filename = file.Filename
		for _, decl := range file.Decls {
			// Illegal declarations were already reported by the parser.
			fn, ok := decl.(*ast.FnDecl)
			if !ok {
				continue
			}
			id, err := r.declareFunction(fn)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			pending = append(pending, pendingBody{id: id, decl: fn, filename: file.Filename})
		}
	}
	funcs := make([]hir.FuncID, 0, len(pending))
	for _, p := range pending {
		r.filename = p.filename
		if err := r.lowerFunction(p.id, p.decl); err != nil {
			errs = append(errs, err)
			continue
		}
		funcs = append(funcs, p.id)
	}
	return r.store, funcs, errors.Join(errs...)
}

func (r *resolver) declareFunction(decl *ast.FnDecl) (hir.FuncID, error) {
	fn := hir.Function{File: r.filename, Body: hir.NoStmt}
	seen := make(map[string]bool)
	for _, param := range decl.Params {
		name := param.Name.Name.Data
		if seen[name] && name != "_" {
			return 0, r.errorf(param.Name.Span(), "duplicate parameter %s", name)
		}
		seen[name] = true
		ty, err := r.resolveType(param.Type)
		if err != nil {
			return 0, err
		}
		id := r.store.PushIdent(name, param.Name.Span())
		if err := r.store.SetIdentType(id, ty); err != nil {
			return 0, err
		}
		fn.Params = append(fn.Params, hir.Param{Ident: id, Type: ty})
	}
	ret, err := r.resolveType(decl.Result)
	if err != nil {
		return 0, err
	}
	fn.Return = ret
	name := decl.Name.Name.Data
	fn.Name = r.store.PushIdent(name, decl.Name.Span())
	id := r.store.PushFunction(fn)
	if prev, ok := r.pkg.Add(name, FuncBind{ID: id}); !ok {
		if prev, ok := prev.(FuncBind); ok {
			first := r.store.Ident(r.store.Function(prev.ID).Name)
			return 0, r.errorf(decl.Name.Span(), "%s redeclared in this package, previous declaration at %s", name, first.Span.Start)
		}
		return 0, r.errorf(decl.Name.Span(), "%s redeclared in this package", name)
	}
	return id, nil
}

func (r *resolver) lowerFunction(id hir.FuncID, decl *ast.FnDecl) error {
	env := r.pkg.AddScope()
	for i, param := range r.store.Function(id).Params {
		env.Add(decl.Params[i].Name.Name.Data, VarBind{Def: param.Ident})
	}
	body, err := r.lowerBlock(env, decl.Body)
	if err != nil {
		return err
	}
	r.store.SetFunctionBody(id, body)
	return nil
}

// resolveType maps a type expression to a type. A nil node is the unit type
// of a function without a declared result.
func (r *resolver) resolveType(n ast.Node) (types.Type, error) {
	switch n := n.(type) {
	case nil:
		return types.Unit, nil
	case *ast.UnitType:
		return types.Unit, nil
	case *ast.Ident:
		ty, err := types.Lookup(n.Name.Data)
		if err != nil {
			return nil, r.errorf(n.Span(), "%v", err)
		}
		return ty, nil
	case *ast.ArrayType:
		elem, err := r.resolveType(n.Elem)
		if err != nil {
			return nil, err
		}
		if n.Len == nil {
			return types.Array{Size: types.Variable, Elem: elem}, nil
		}
		size, ok := parseInt(n.Len.Lit.Data)
		if !ok || !size.IsUint64() {
			return nil, r.errorf(n.Len.Span(), "invalid array length %s", n.Len.Lit.Data)
		}
		return types.Array{Size: types.Fixed(size.Uint64()), Elem: elem}, nil
	}
	return nil, r.errorf(n.Span(), "invalid type")
}

func (r *resolver) lowerBlock(env *Env, block *ast.Block) (hir.StmtID, error) {
	env = env.AddScope()
	var stmts []hir.StmtID
	for _, n := range block.Body {
		stmt, err := r.lowerStmt(env, n)
		if err != nil {
			return 0, err
		}
		stmts = append(stmts, stmt)
	}
	return r.store.PushStmt(hir.Block{Stmts: stmts}), nil
}

func (r *resolver) lowerStmt(env *Env, n ast.Node) (hir.StmtID, error) {
	switch n := n.(type) {
	case *ast.LetDecl:
		rhs, err := r.lowerExpr(env, n.Rhs)
		if err != nil {
			return 0, err
		}
		var ty types.Type = types.Unspecified
		if n.Type != nil {
			if ty, err = r.resolveType(n.Type); err != nil {
				return 0, err
			}
		}
		id := r.define(env, n.Name)
		return r.store.PushStmt(hir.Let{Ident: id, Type: ty, Expr: rhs}), nil
	case *ast.ConstDecl:
		rhs, err := r.lowerExpr(env, n.Rhs)
		if err != nil {
			return 0, err
		}
		id := r.define(env, n.Name)
		return r.store.PushStmt(hir.Const{Ident: id, Expr: rhs}), nil
	case *ast.Constrain:
		x, err := r.lowerExpr(env, n.X)
		if err != nil {
			return 0, err
		}
		return r.store.PushStmt(hir.Constrain{Expr: x}), nil
	case *ast.ExprStmt:
		x, err := r.lowerExpr(env, n.X)
		if err != nil {
			return 0, err
		}
		if n.HasSemicolon() {
			return r.store.PushStmt(hir.SemiStmt{Expr: x}), nil
		}
		return r.store.PushStmt(hir.ExprStmt{Expr: x}), nil
	case *ast.Block:
		return r.lowerBlock(env, n)
	}
	return 0, r.errorf(n.Span(), "unexpected statement")
}

// define introduces a value binding. Later bindings of the same name in one
// scope shadow earlier ones.
func (r *resolver) define(env *Env, name *ast.Ident) hir.IdentID {
	id := r.store.PushIdent(name.Name.Data, name.Span())
	env.Shadow(name.Name.Data, VarBind{Def: id})
	return id
}

// use resolves a reference to a value binding.
func (r *resolver) use(env *Env, name *ast.Ident) (hir.IdentID, error) {
	b, _, ok := env.LookupStack(name.Name.Data)
	if !ok {
		return 0, r.errorf(name.Span(), "undefined: %s", name.Name.Data)
	}
	vb, ok := b.(VarBind)
	if !ok {
		return 0, r.errorf(name.Span(), "function %s used as a value", name.Name.Data)
	}
	ref := r.store.PushIdent(name.Name.Data, name.Span())
	r.store.Resolve(ref, vb.Def)
	return ref, nil
}

func (r *resolver) lowerExprs(env *Env, nodes []ast.Node) ([]hir.ExprID, error) {
	ids := make([]hir.ExprID, 0, len(nodes))
	for _, n := range nodes {
		id, err := r.lowerExpr(env, n)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *resolver) lowerExpr(env *Env, n ast.Node) (hir.ExprID, error) {
	n = ast.Unparen(n)
	span := n.Span()
	switch n := n.(type) {
	case *ast.Ident:
		ref, err := r.use(env, n)
		if err != nil {
			return 0, err
		}
		return r.store.PushExpr(hir.Ident{ID: ref}, span), nil
	case *ast.Number:
		v, ok := parseInt(n.Lit.Data)
		if !ok {
			return 0, r.errorf(span, "invalid integer literal %s", n.Lit.Data)
		}
		return r.store.PushExpr(hir.IntLit{Value: v}, span), nil
	case *ast.Bool:
		return r.store.PushExpr(hir.BoolLit{Value: n.Value()}, span), nil
	case *ast.BasicString:
		s, err := strconv.Unquote(n.Lit.Data)
		if err != nil {
			s = ast.TrimQuotes(n.Lit.Data)
		}
		return r.store.PushExpr(hir.StrLit{Value: s}, span), nil
	case *ast.Array:
		elems, err := r.lowerExprs(env, n.Elements)
		if err != nil {
			return 0, err
		}
		return r.store.PushExpr(hir.ArrayLit{Elements: elems}, span), nil
	case *ast.BinaryExpr:
		op, ok := binaryOps[n.Op.Type]
		if !ok {
			return 0, r.errorf(n.Op.Span, "%s is not a binary operator", n.Op.Type)
		}
		lhs, err := r.lowerExpr(env, n.Left)
		if err != nil {
			return 0, err
		}
		rhs, err := r.lowerExpr(env, n.Right)
		if err != nil {
			return 0, err
		}
		return r.store.PushExpr(hir.Infix{LHS: lhs, Op: op, RHS: rhs}, span), nil
	case *ast.PrefixExpr:
		x, err := r.lowerExpr(env, n.X)
		if err != nil {
			return 0, err
		}
		op := hir.Neg
		if n.Op.Type == lexer.Not {
			op = hir.Not
		}
		return r.store.PushExpr(hir.Prefix{Op: op, RHS: x}, span), nil
	case *ast.IndexExpr:
		target, ok := ast.Unparen(n.X).(*ast.Ident)
		if !ok {
			return 0, r.errorf(n.X.Span(), "only a named array can be indexed")
		}
		coll, err := r.use(env, target)
		if err != nil {
			return 0, err
		}
		index, err := r.lowerExpr(env, n.Index)
		if err != nil {
			return 0, err
		}
		return r.store.PushExpr(hir.Index{Collection: coll, Index: index}, span), nil
	case *ast.CallExpr:
		fn, err := r.callee(env, n.Fun)
		if err != nil {
			return 0, err
		}
		args, err := r.lowerExprs(env, n.Args)
		if err != nil {
			return 0, err
		}
		return r.store.PushExpr(hir.Call{Func: fn, Args: args}, span), nil
	case *ast.CastExpr:
		x, err := r.lowerExpr(env, n.X)
		if err != nil {
			return 0, err
		}
		ty, err := r.resolveType(n.Type)
		if err != nil {
			return 0, err
		}
		return r.store.PushExpr(hir.Cast{LHS: x, Type: ty}, span), nil
	case *ast.ForExpr:
		start, err := r.lowerExpr(env, n.Start)
		if err != nil {
			return 0, err
		}
		end, err := r.lowerExpr(env, n.End)
		if err != nil {
			return 0, err
		}
		loop := env.AddScope()
		ident := r.define(loop, n.Ident)
		body, err := r.lowerBlock(loop, n.Body)
		if err != nil {
			return 0, err
		}
		return r.store.PushExpr(hir.For{Ident: ident, Start: start, End: end, Body: body}, span), nil
	case *ast.IfExpr:
		return r.lowerIf(env, n)
	case *ast.Illegal:
		return 0, r.errorf(span, "%s", n.Msg)
	}
	return 0, r.errorf(span, "unexpected expression")
}

func (r *resolver) lowerIf(env *Env, n *ast.IfExpr) (hir.ExprID, error) {
	cond, err := r.lowerExpr(env, n.Cond)
	if err != nil {
		return 0, err
	}
	then, err := r.lowerBlock(env, n.Then)
	if err != nil {
		return 0, err
	}
	els := hir.NoStmt
	switch e := n.ElseBody.(type) {
	case *ast.Block:
		if els, err = r.lowerBlock(env, e); err != nil {
			return 0, err
		}
	case *ast.IfExpr:
		// else if c {...} is else { if c {...} }.
		nested, err := r.lowerIf(env, e)
		if err != nil {
			return 0, err
		}
		stmt := r.store.PushStmt(hir.ExprStmt{Expr: nested})
		els = r.store.PushStmt(hir.Block{Stmts: []hir.StmtID{stmt}})
	}
	return r.store.PushExpr(hir.If{Cond: cond, Then: then, Else: els}, n.Span()), nil
}

func (r *resolver) callee(env *Env, fun ast.Node) (hir.FuncID, error) {
	name, ok := ast.Unparen(fun).(*ast.Ident)
	if !ok {
		return 0, r.errorf(fun.Span(), "only a named function can be called")
	}
	b, _, ok := env.LookupStack(name.Name.Data)
	if !ok {
		return 0, r.errorf(name.Span(), "undefined function %s", name.Name.Data)
	}
	fb, ok := b.(FuncBind)
	if !ok {
		return 0, r.errorf(name.Span(), "%s is not a function", name.Name.Data)
	}
	return fb.ID, nil
}

var binaryOps = map[lexer.TokenType]hir.BinaryOp{
	lexer.Plus:              hir.Add,
	lexer.Minus:             hir.Sub,
	lexer.Times:             hir.Mul,
	lexer.Divide:            hir.Div,
	lexer.And:               hir.And,
	lexer.Or:                hir.Or,
	lexer.Caret:             hir.Xor,
	lexer.LeftShift:         hir.Shl,
	lexer.RightShift:        hir.Shr,
	lexer.LogicalEquals:     hir.Eq,
	lexer.NotEquals:         hir.NotEq,
	lexer.LessThan:          hir.Lt,
	lexer.LessThanEquals:    hir.LtEq,
	lexer.GreaterThan:       hir.Gt,
	lexer.GreaterThanEquals: hir.GtEq,
}

// parseInt parses an integer literal as the lexer accepts it: decimal, or
// 0x, 0o, 0b prefixed, with optional underscore separators.
func parseInt(lit string) (*big.Int, bool) {
	lit = strings.ReplaceAll(lit, "_", "")
	base := 10
	if len(lit) > 2 && lit[0] == '0' {
		switch lit[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 10 {
			lit = lit[2:]
		}
	}
	return new(big.Int).SetString(lit, base)
}
