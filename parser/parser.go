package parser

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/smasher164/circuit/ast"
	"github.com/smasher164/circuit/lexer"
)

// Debug enables an indented trace of the parse on Trace.
var (
	Debug           = false
	Trace io.Writer = os.Stderr
)

// Error is a syntax error at a position in a source file.
type Error struct {
	Filename string
	Span     lexer.Span
	Msg      string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%s: %s", e.Filename, e.Span.Start.String(), e.Msg)
}

// bailout unwinds the parse of the current declaration after an error.
type bailout struct{}

type Lexer interface {
	Next() lexer.Token
}

type parser struct {
	filename string
	l        Lexer
	tok      lexer.Token
	indent   int
	errs     []error
}

func (p *parser) trace(msg string) func() {
	if Debug {
		fmt.Fprintf(Trace, "%*s%s %s\n", p.indent*2, "", msg, p.tok)
		p.indent++
		return func() {
			p.indent--
		}
	}
	return func() {}
}

func (p *parser) next() {
	p.tok = p.l.Next()
}

func (p *parser) errorf(span lexer.Span, format string, args ...any) {
	p.errs = append(p.errs, &Error{Filename: p.filename, Span: span, Msg: fmt.Sprintf(format, args...)})
	panic(bailout{})
}

func (p *parser) expect(ttyp lexer.TokenType) lexer.Token {
	tok := p.tok
	if tok.Type != ttyp {
		p.unexpected(fmt.Sprintf("%q", ttyp.String()))
	}
	p.next()
	return tok
}

func (p *parser) unexpected(want string) {
	switch p.tok.Type {
	case lexer.Illegal:
		p.errorf(p.tok.Span, "%s", p.tok.Data)
	case lexer.EOF:
		p.errorf(p.tok.Span, "expected %s, found end of file", want)
	case lexer.Ident, lexer.Number, lexer.String:
		p.errorf(p.tok.Span, "expected %s, found %s %s", want, p.tok.Type, p.tok.Data)
	default:
		p.errorf(p.tok.Span, "expected %s, found %q", want, p.tok.Type.String())
	}
}

// ParseFile parses a single .cir file from fsys. The returned file holds
// Illegal nodes for declarations that failed to parse.
func ParseFile(fsys fs.FS, filename string) (*ast.File, error) {
	l, err := lexer.NewLexer(fsys, filename)
	if err != nil {
		return nil, err
	}
	return parse(filename, l)
}

// ParseString parses src as if it were the contents of filename.
func ParseString(filename, src string) (*ast.File, error) {
	return parse(filename, lexer.NewReaderLexer(filename, strings.NewReader(src)))
}

func parse(filename string, l *lexer.Lexer) (*ast.File, error) {
	p := &parser{filename: filename, l: l}
	f := p.parseFile()
	if err := l.Err(); err != nil {
		p.errs = append(p.errs, err)
	}
	return f, errors.Join(p.errs...)
}

func (p *parser) parseFile() (f *ast.File) {
	defer p.trace("parseFile")()
	f = &ast.File{Filename: p.filename}
	p.next()
	for p.tok.Type != lexer.EOF {
		f.Decls = append(f.Decls, p.parseDecl())
	}
	f.SetTrailingTrivia(p.tok.LeadingTrivia)
	return f
}

// parseDecl parses one top-level declaration, resynchronizing on the next
// "fn" after a syntax error.
func (p *parser) parseDecl() (decl ast.Node) {
	start := p.tok
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			ill := ast.NewIllegal(start.Span.Add(p.tok.Span), decl, p.errs[len(p.errs)-1].(*Error).Msg)
			ill.SetLeadingTrivia(start.LeadingTrivia)
			decl = ill
			if p.tok.Span == start.Span && p.tok.Type != lexer.EOF {
				p.next()
			}
			for p.tok.Type != lexer.Fn && p.tok.Type != lexer.EOF {
				p.next()
			}
		}
	}()
	if p.tok.Type != lexer.Fn {
		p.unexpected(`"fn"`)
	}
	return p.parseFnDecl()
}

func (p *parser) parseIdent() *ast.Ident {
	if p.tok.Type != lexer.Ident {
		p.unexpected("identifier")
	}
	id := &ast.Ident{Name: p.tok}
	p.next()
	return id
}

// FnDecl = "fn" ident "(" [Param {"," Param} [","]] ")" ["->" Type] Block
func (p *parser) parseFnDecl() *ast.FnDecl {
	defer p.trace("parseFnDecl")()
	fn := &ast.FnDecl{Fn: p.tok}
	p.next()
	fn.Name = p.parseIdent()
	fn.LeftParen = p.expect(lexer.LeftParen)
	for p.tok.Type != lexer.RightParen && p.tok.Type != lexer.EOF {
		fn.Params = append(fn.Params, p.parseParam())
		if p.tok.Type != lexer.Comma {
			break
		}
		p.next()
	}
	fn.RightParen = p.expect(lexer.RightParen)
	if p.tok.Type == lexer.RightArrow {
		fn.Arrow = p.tok
		p.next()
		fn.Result = p.parseType()
	}
	fn.Body = p.parseBlock()
	return fn
}

func (p *parser) parseParam() *ast.Param {
	defer p.trace("parseParam")()
	var param ast.Param
	param.Name = p.parseIdent()
	param.Colon = p.expect(lexer.Colon)
	param.Type = p.parseType()
	return &param
}

// Type = ident | "(" ")" | "[" Type [";" number] "]"
func (p *parser) parseType() ast.Node {
	defer p.trace("parseType")()
	switch tok := p.tok; tok.Type {
	case lexer.Ident:
		return p.parseIdent()
	case lexer.LeftParen:
		p.next()
		return &ast.UnitType{LeftParen: tok, RightParen: p.expect(lexer.RightParen)}
	case lexer.LeftBracket:
		arr := &ast.ArrayType{LeftBracket: tok}
		p.next()
		arr.Elem = p.parseType()
		if p.tok.Type == lexer.Semicolon {
			arr.Semicolon = p.tok
			p.next()
			arr.Len = &ast.Number{Lit: p.expect(lexer.Number)}
		}
		arr.RightBracket = p.expect(lexer.RightBracket)
		return arr
	}
	p.unexpected("type")
	return nil
}

func (p *parser) parseBlock() *ast.Block {
	defer p.trace("parseBlock")()
	block := &ast.Block{LeftBrace: p.expect(lexer.LeftBrace)}
	for p.tok.Type != lexer.RightBrace && p.tok.Type != lexer.EOF {
		if p.tok.Type == lexer.Semicolon {
			p.next()
			continue
		}
		block.Body = append(block.Body, p.parseStmt())
	}
	block.RightBrace = p.expect(lexer.RightBrace)
	return block
}

func (p *parser) parseStmt() ast.Node {
	defer p.trace("parseStmt")()
	switch p.tok.Type {
	case lexer.Let:
		return p.parseLetDecl()
	case lexer.Const:
		return p.parseConstDecl()
	case lexer.Constrain:
		c := &ast.Constrain{Constrain: p.tok}
		p.next()
		c.X = p.parseExpr()
		c.Semicolon = p.expect(lexer.Semicolon)
		return c
	case lexer.LeftBrace:
		return p.parseBlock()
	}
	stmt := &ast.ExprStmt{X: p.parseExpr()}
	switch {
	case p.tok.Type == lexer.Semicolon:
		stmt.Semicolon = p.tok
		p.next()
	case p.tok.Type == lexer.RightBrace, isBlockExpr(stmt.X):
	default:
		p.unexpected(`";" after expression`)
	}
	return stmt
}

func isBlockExpr(n ast.Node) bool {
	switch n.(type) {
	case *ast.ForExpr, *ast.IfExpr:
		return true
	}
	return false
}

// LetDecl = "let" ident [":" Type] "=" Expr ";"
func (p *parser) parseLetDecl() ast.Node {
	defer p.trace("parseLetDecl")()
	let := &ast.LetDecl{Let: p.tok}
	p.next()
	let.Name = p.parseIdent()
	if p.tok.Type == lexer.Colon {
		let.Colon = p.tok
		p.next()
		let.Type = p.parseType()
	}
	let.Equals = p.expect(lexer.Equals)
	let.Rhs = p.parseExpr()
	let.Semicolon = p.expect(lexer.Semicolon)
	return let
}

// ConstDecl = "const" ident "=" Expr ";"
func (p *parser) parseConstDecl() ast.Node {
	defer p.trace("parseConstDecl")()
	c := &ast.ConstDecl{Const: p.tok}
	p.next()
	c.Name = p.parseIdent()
	c.Equals = p.expect(lexer.Equals)
	c.Rhs = p.parseExpr()
	c.Semicolon = p.expect(lexer.Semicolon)
	return c
}

func (p *parser) parseExpr() ast.Node {
	defer p.trace("parseExpr")()
	return p.parseBinaryExpr(lexer.MinPrec)
}

func (p *parser) parseBinaryExpr(minPrec int) ast.Node {
	defer p.trace("parseBinaryExpr")()
	res := p.parsePrefixExpr()
	for p.tok.IsBinaryOp() && p.tok.Prec() >= minPrec {
		op := p.tok
		p.next()
		rhs := p.parseBinaryExpr(op.Prec() + 1)
		res = &ast.BinaryExpr{Left: res, Op: op, Right: rhs}
	}
	return res
}

func (p *parser) parsePrefixExpr() ast.Node {
	defer p.trace("parsePrefixExpr")()
	if p.tok.IsPrefixOp() {
		op := p.tok
		p.next()
		return &ast.PrefixExpr{Op: op, X: p.parsePrefixExpr()}
	}
	return p.parsePrimaryExpr()
}

func (p *parser) parsePrimaryExpr() ast.Node {
	defer p.trace("parsePrimaryExpr")()
	start := p.tok
	x := p.parseOperand()
	if start.BeginsBlockExpr() {
		return x
	}
	for {
		switch tok := p.tok; tok.Type {
		case lexer.LeftBracket:
			p.next()
			index := p.parseExpr()
			x = &ast.IndexExpr{X: x, LeftBracket: tok, Index: index, RightBracket: p.expect(lexer.RightBracket)}
		case lexer.LeftParen:
			p.next()
			call := &ast.CallExpr{Fun: x, LeftParen: tok}
			call.Args = p.parseList(lexer.RightParen)
			call.RightParen = p.expect(lexer.RightParen)
			x = call
		case lexer.As:
			p.next()
			x = &ast.CastExpr{X: x, As: tok, Type: p.parseType()}
		default:
			return x
		}
	}
}

// parseList parses comma-separated expressions up to, but not including, end.
func (p *parser) parseList(end lexer.TokenType) []ast.Node {
	var list []ast.Node
	for p.tok.Type != end && p.tok.Type != lexer.EOF {
		list = append(list, p.parseExpr())
		if p.tok.Type != lexer.Comma {
			break
		}
		p.next()
	}
	return list
}

func (p *parser) parseOperand() ast.Node {
	defer p.trace("parseOperand")()
	switch tok := p.tok; tok.Type {
	case lexer.Ident:
		p.next()
		return &ast.Ident{Name: tok}
	case lexer.Number:
		p.next()
		return &ast.Number{Lit: tok}
	case lexer.String:
		p.next()
		return &ast.BasicString{Lit: tok}
	case lexer.True, lexer.False:
		p.next()
		return &ast.Bool{Lit: tok}
	case lexer.LeftBracket:
		return p.parseArray()
	case lexer.LeftParen:
		p.next()
		x := p.parseExpr()
		return &ast.ParenExpr{LeftParen: tok, X: x, RightParen: p.expect(lexer.RightParen)}
	case lexer.For:
		return p.parseFor()
	case lexer.If:
		return p.parseIf()
	}
	p.unexpected("operand")
	return nil
}

func (p *parser) parseArray() ast.Node {
	defer p.trace("parseArray")()
	arr := &ast.Array{LeftBracket: p.tok}
	p.next()
	arr.Elements = p.parseList(lexer.RightBracket)
	arr.RightBracket = p.expect(lexer.RightBracket)
	if len(arr.Elements) == 0 {
		p.errorf(arr.Span(), "array literal must have at least one element")
	}
	return arr
}

// ForExpr = "for" ident "in" Expr ".." Expr Block
func (p *parser) parseFor() ast.Node {
	defer p.trace("parseFor")()
	f := &ast.ForExpr{For: p.tok}
	p.next()
	f.Ident = p.parseIdent()
	f.In = p.expect(lexer.In)
	f.Start = p.parseExpr()
	f.DotDot = p.expect(lexer.DotDot)
	f.End = p.parseExpr()
	f.Body = p.parseBlock()
	return f
}

// IfExpr = "if" Expr Block ["else" (Block | IfExpr)]
func (p *parser) parseIf() ast.Node {
	defer p.trace("parseIf")()
	i := &ast.IfExpr{If: p.tok}
	p.next()
	i.Cond = p.parseExpr()
	i.Then = p.parseBlock()
	if p.tok.Type == lexer.Else {
		i.Else = p.tok
		p.next()
		if p.tok.Type == lexer.If {
			i.ElseBody = p.parseIf()
		} else {
			i.ElseBody = p.parseBlock()
		}
	}
	return i
}
