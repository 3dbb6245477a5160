// Package check assigns a type to every expression and binding of a resolved
// circuit program and rejects programs whose types do not compose.
//
// Checking is a single post-order walk. Every sub-expression is typed before
// its parent, and each expression's type is recorded exactly once, as the
// last step of visiting it.
package check

import (
	"errors"

	"github.com/samber/lo"
	"github.com/smasher164/circuit/hir"
	"github.com/smasher164/circuit/lexer"
	"github.com/smasher164/circuit/types"
)

// Store is the IR the checker reads and the type table it writes.
// *hir.Store implements it.
type Store interface {
	Expression(hir.ExprID) hir.Expression
	ExprSpan(hir.ExprID) lexer.Span
	Statement(hir.StmtID) hir.Statement
	Ident(hir.IdentID) hir.IdentInfo
	Definition(ref hir.IdentID) (hir.IdentID, bool)
	Function(hir.FuncID) hir.Function
	ExprType(hir.ExprID) types.Type
	IdentType(hir.IdentID) types.Type
	SetExprType(hir.ExprID, types.Type) error
	SetIdentType(hir.IdentID, types.Type) error
}

var _ Store = (*hir.Store)(nil)

type Checker struct {
	store Store
}

func NewChecker(store Store) *Checker {
	return &Checker{store: store}
}

// Program checks every function in funcs. A failing function does not stop
// the others; the returned error joins all failures.
func Program(store Store, funcs []hir.FuncID) error {
	c := NewChecker(store)
	var errs []error
	for _, id := range funcs {
		if err := c.CheckFunction(id); err != nil {
			var cerr *Error
			if errors.As(err, &cerr) && cerr.Filename == "" {
				cerr.Filename = store.Function(id).File
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CheckFunction checks the body of a function whose parameter types were
// recorded at declaration, then checks the body's value against the declared
// result.
func (c *Checker) CheckFunction(id hir.FuncID) error {
	fn := c.store.Function(id)
	name := c.store.Ident(fn.Name)
	if fn.Body == hir.NoStmt {
		return errorf(Internal, name.Span, "function %s has no body", name.Name)
	}
	if err := c.CheckStatement(fn.Body); err != nil {
		return err
	}
	got, err := c.trailingType(fn.Body, name.Span)
	if err != nil {
		return err
	}
	if !assignable(got, fn.Return) {
		return errorf(ReturnTypeMismatch, name.Span, "function %s returns %s, but its body yields %s", name.Name, fn.Return, got)
	}
	return nil
}

// assignable reports whether a value of type from may be stored where to is
// expected: the types are equal, or a constant meets an integer.
func assignable(from, to types.Type) bool {
	if types.Equal(from, to) {
		return true
	}
	_, toInt := to.(types.Integer)
	return toInt && isBase(from, types.Constant)
}

// CheckStatement checks every expression under the statement and records the
// types of the bindings it introduces. It stops at the first error.
func (c *Checker) CheckStatement(id hir.StmtID) error {
	switch s := c.store.Statement(id).(type) {
	case hir.Let:
		if err := c.CheckExpression(s.Expr); err != nil {
			return err
		}
		got := c.store.ExprType(s.Expr)
		if s.Type == nil || isBase(s.Type, types.Unspecified) {
			return c.bind(s.Ident, got)
		}
		if !assignable(got, s.Type) {
			name := c.store.Ident(s.Ident).Name
			return errorf(DeclarationTypeMismatch, c.store.ExprSpan(s.Expr), "cannot use %s value as %s in declaration of %s", got, s.Type, name)
		}
		return c.bind(s.Ident, s.Type)
	case hir.Const:
		if err := c.CheckExpression(s.Expr); err != nil {
			return err
		}
		if got := c.store.ExprType(s.Expr); !isBase(got, types.Constant) {
			name := c.store.Ident(s.Ident).Name
			return errorf(DeclarationTypeMismatch, c.store.ExprSpan(s.Expr), "const %s must be initialized with a constant, found %s", name, got)
		}
		return c.bind(s.Ident, types.Constant)
	case hir.Constrain:
		if err := c.CheckExpression(s.Expr); err != nil {
			return err
		}
		if got := c.store.ExprType(s.Expr); !isBase(got, types.Bool) {
			return errorf(NonBooleanConstraint, c.store.ExprSpan(s.Expr), "constrain requires a comparison, found %s", got)
		}
		return nil
	case hir.ExprStmt:
		return c.CheckExpression(s.Expr)
	case hir.SemiStmt:
		return c.CheckExpression(s.Expr)
	case hir.Block:
		for _, stmt := range s.Stmts {
			if err := c.CheckStatement(stmt); err != nil {
				return err
			}
		}
		return nil
	}
	return errorf(Internal, lexer.Span{}, "unknown statement %d", id)
}

func (c *Checker) bind(id hir.IdentID, t types.Type) error {
	if err := c.store.SetIdentType(id, t); err != nil {
		return errorf(Internal, c.store.Ident(id).Span, "%v", err)
	}
	return nil
}

// CheckExpression checks the expression's operands, then records its type.
func (c *Checker) CheckExpression(id hir.ExprID) error {
	t, err := c.expressionType(id)
	if err != nil {
		return err
	}
	if err := c.store.SetExprType(id, t); err != nil {
		return errorf(Internal, c.store.ExprSpan(id), "%v", err)
	}
	return nil
}

func (c *Checker) checkAll(ids []hir.ExprID) ([]types.Type, error) {
	for _, id := range ids {
		if err := c.CheckExpression(id); err != nil {
			return nil, err
		}
	}
	return lo.Map(ids, func(id hir.ExprID, _ int) types.Type {
		return c.store.ExprType(id)
	}), nil
}

func (c *Checker) expressionType(id hir.ExprID) (types.Type, error) {
	span := c.store.ExprSpan(id)
	switch e := c.store.Expression(id).(type) {
	case hir.Ident:
		return c.definitionType(e.ID)
	case hir.IntLit:
		return types.Constant, nil
	case hir.BoolLit:
		return nil, errorf(UnsupportedConstruct, span, "boolean literals are not supported yet")
	case hir.StrLit:
		return nil, errorf(UnsupportedConstruct, span, "string literals are not supported yet")
	case hir.ArrayLit:
		elems, err := c.checkAll(e.Elements)
		if err != nil {
			return nil, err
		}
		return checkArrayLiteral(elems, span)
	case hir.Infix:
		if err := c.CheckExpression(e.LHS); err != nil {
			return nil, err
		}
		if err := c.CheckExpression(e.RHS); err != nil {
			return nil, err
		}
		return infixResultType(c.store.ExprType(e.LHS), e.Op, c.store.ExprType(e.RHS), span)
	case hir.Index:
		if err := c.CheckExpression(e.Index); err != nil {
			return nil, err
		}
		t, err := c.definitionType(e.Collection)
		if err != nil {
			return nil, err
		}
		arr, ok := t.(types.Array)
		if !ok {
			name := c.store.Ident(e.Collection).Name
			return nil, errorf(IndexOnNonArray, span, "cannot index %s of type %s", name, t)
		}
		return arr.Elem, nil
	case hir.Call:
		args, err := c.checkAll(e.Args)
		if err != nil {
			return nil, err
		}
		fn := c.store.Function(e.Func)
		if err := c.checkCallArguments(fn, args, span); err != nil {
			return nil, err
		}
		return fn.Return, nil
	case hir.Cast:
		// Whether the operand converts to the target is decided when the
		// circuit is evaluated.
		if err := c.CheckExpression(e.LHS); err != nil {
			return nil, err
		}
		return e.Type, nil
	case hir.For:
		return c.checkFor(e, span)
	case hir.Prefix:
		return nil, errorf(UnsupportedConstruct, span, "prefix %s is not supported yet", e.Op)
	case hir.Predicate:
		return nil, errorf(UnsupportedConstruct, span, "predicates are not supported yet")
	case hir.If:
		return nil, errorf(UnsupportedConstruct, span, "if expressions are not supported yet")
	}
	return nil, errorf(Internal, span, "unknown expression %d", id)
}

// definitionType returns the type recorded for the binding ref resolves to.
func (c *Checker) definitionType(ref hir.IdentID) (types.Type, error) {
	def, ok := c.store.Definition(ref)
	if !ok {
		info := c.store.Ident(ref)
		return nil, errorf(UnresolvedIdentifier, info.Span, "unresolved identifier %s", info.Name)
	}
	return c.store.IdentType(def), nil
}

// checkArrayLiteral requires adjacent elements to have equal types. Equality
// is transitive, so this covers every pair.
func checkArrayLiteral(elems []types.Type, span lexer.Span) (types.Type, error) {
	if len(elems) == 0 {
		return nil, errorf(Internal, span, "empty array literal")
	}
	for i := 1; i < len(elems); i++ {
		if !types.Equal(elems[i-1], elems[i]) {
			return nil, errorf(HeterogeneousArray, span, "array elements must have the same type, found %s and %s", elems[i-1], elems[i])
		}
	}
	return types.Array{Size: types.Fixed(uint64(len(elems))), Elem: elems[0]}, nil
}

// checkCallArguments matches argument types to fn's parameters. A fixed-size
// array argument is accepted for a variable-size array parameter whatever its
// element type; any other pair must be equal.
func (c *Checker) checkCallArguments(fn hir.Function, args []types.Type, span lexer.Span) error {
	name := c.store.Ident(fn.Name).Name
	if len(fn.Params) != len(args) {
		return errorf(ArityMismatch, span, "function %s expects %d arguments, found %d", name, len(fn.Params), len(args))
	}
	for i, param := range fn.Params {
		arg := args[i]
		if types.IsVariableSizedArray(arg) {
			return errorf(VariableSizedArgument, span, "argument %d to %s has variable-sized type %s", i+1, name, arg)
		}
		if types.IsVariableSizedArray(param.Type) && types.IsFixedSizedArray(arg) {
			continue
		}
		if !types.Equal(param.Type, arg) {
			paramName := c.store.Ident(param.Ident).Name
			return errorf(ArgumentTypeMismatch, span, "parameter %s of %s expects %s, found %s", paramName, name, param.Type, arg)
		}
	}
	return nil
}

// checkFor types a loop as a variable-length array of its body's value.
func (c *Checker) checkFor(e hir.For, span lexer.Span) (types.Type, error) {
	if err := c.CheckExpression(e.Start); err != nil {
		return nil, err
	}
	if err := c.CheckExpression(e.End); err != nil {
		return nil, err
	}
	start, end := c.store.ExprType(e.Start), c.store.ExprType(e.End)
	if !isBase(start, types.Constant) {
		return nil, errorf(NonConstantRangeBound, c.store.ExprSpan(e.Start), "start of range must be a constant, found %s", start)
	}
	if !isBase(end, types.Constant) {
		return nil, errorf(NonConstantRangeBound, c.store.ExprSpan(e.End), "end of range must be a constant, found %s", end)
	}
	if !types.Equal(start, end) {
		return nil, errorf(RangeBoundTypeMismatch, c.store.ExprSpan(e.Start).Add(c.store.ExprSpan(e.End)), "range bounds have different types %s and %s", start, end)
	}
	if err := c.bind(e.Ident, start); err != nil {
		return nil, err
	}
	if err := c.CheckStatement(e.Body); err != nil {
		return nil, err
	}
	elem, err := c.trailingType(e.Body, span)
	if err != nil {
		return nil, err
	}
	return types.Array{Size: types.Variable, Elem: elem}, nil
}

// trailingType returns the value of a block: the type of its trailing
// expression statement, or Unit.
func (c *Checker) trailingType(id hir.StmtID, span lexer.Span) (types.Type, error) {
	block, ok := c.store.Statement(id).(hir.Block)
	if !ok {
		return nil, errorf(Internal, span, "statement %d is not a block", id)
	}
	if len(block.Stmts) == 0 {
		return types.Unit, nil
	}
	switch last := c.store.Statement(block.Stmts[len(block.Stmts)-1]).(type) {
	case hir.ExprStmt:
		return c.store.ExprType(last.Expr), nil
	case hir.Block:
		// TODO: yield the inner block's value once blocks are expressions.
		return nil, errorf(Internal, span, "a block ending in a nested block has no value")
	}
	return types.Unit, nil
}
