package ast

import (
	"fmt"
	"io"
	"strings"

	"github.com/smasher164/circuit/lexer"
)

type Node interface {
	LeadingTrivia() []lexer.Token
	Span() lexer.Span
	ASTString(depth int) string
}

var (
	_ Node = (*Package)(nil)
	_ Node = (*File)(nil)
	_ Node = (*FnDecl)(nil)
	_ Node = (*Param)(nil)
	_ Node = (*ArrayType)(nil)
	_ Node = (*UnitType)(nil)
	_ Node = (*Block)(nil)
	_ Node = (*LetDecl)(nil)
	_ Node = (*ConstDecl)(nil)
	_ Node = (*Constrain)(nil)
	_ Node = (*ExprStmt)(nil)
	_ Node = (*Ident)(nil)
	_ Node = (*Number)(nil)
	_ Node = (*BasicString)(nil)
	_ Node = (*Bool)(nil)
	_ Node = (*Array)(nil)
	_ Node = (*BinaryExpr)(nil)
	_ Node = (*PrefixExpr)(nil)
	_ Node = (*ParenExpr)(nil)
	_ Node = (*IndexExpr)(nil)
	_ Node = (*CallExpr)(nil)
	_ Node = (*CastExpr)(nil)
	_ Node = (*ForExpr)(nil)
	_ Node = (*IfExpr)(nil)
	_ Node = (*Illegal)(nil)
)

func spanOf(n any) lexer.Span {
	if n == nil {
		return lexer.Span{}
	}
	switch n := n.(type) {
	case lexer.Token:
		return n.Span
	case Node:
		if isNil(n) {
			return lexer.Span{}
		}
		return n.Span()
	case []Node:
		if len(n) > 0 {
			return lexer.Span{
				Start: spanOf(n[0]).Start,
				End:   spanOf(n[len(n)-1]).End,
			}
		}
	}
	return lexer.Span{}
}

// isNil catches typed nil pointers stored in a Node.
func isNil(n Node) bool {
	switch n := n.(type) {
	case *Ident:
		return n == nil
	case *Block:
		return n == nil
	case *Number:
		return n == nil
	}
	return n == nil
}

func leadingTriviaOf(n Node) []lexer.Token {
	if n == nil || isNil(n) {
		return nil
	}
	return n.LeadingTrivia()
}

func indent(depth int) string {
	return fmt.Sprintf("%*s", depth*2, "")
}

func printNodeSlice(depth int, nodes []Node) string {
	if len(nodes) == 0 {
		return "[]"
	}
	s := fmt.Sprintf("[\n%s", indent(depth+1))
	for _, n := range nodes {
		s += fmt.Sprintf("%s\n%s", n.ASTString(depth+1), indent(depth+1))
	}
	s += "]"
	return s
}

func optString(depth int, n Node) string {
	if n == nil || isNil(n) {
		return "<nil>"
	}
	return n.ASTString(depth)
}

// Fprint writes an indented dump of the tree rooted at root.
func Fprint(w io.Writer, root Node) {
	fmt.Fprintln(w, root.ASTString(0))
}

type Package struct {
	Dir   string
	Files []*File
}

func (p *Package) ASTString(depth int) string {
	nodes := make([]Node, len(p.Files))
	for i, f := range p.Files {
		nodes[i] = f
	}
	return fmt.Sprintf("Package\n%sDir: %s\n%sFiles: %s",
		indent(depth+1), p.Dir, indent(depth+1), printNodeSlice(depth+1, nodes))
}

func (p *Package) LeadingTrivia() []lexer.Token {
	return nil
}

func (p *Package) Span() lexer.Span {
	return lexer.Span{}
}

type File struct {
	Filename       string
	Decls          []Node
	trailingTrivia []lexer.Token
}

func (f *File) SetTrailingTrivia(tt []lexer.Token) {
	f.trailingTrivia = tt
}

func (f *File) TrailingTrivia() []lexer.Token {
	return f.trailingTrivia
}

func (f *File) ASTString(depth int) string {
	return fmt.Sprintf(
		"File\n%sFilename: %s\n%sDecls: %s",
		indent(depth+1), f.Filename,
		indent(depth+1), printNodeSlice(depth+1, f.Decls))
}

func (f *File) LeadingTrivia() []lexer.Token {
	if len(f.Decls) == 0 {
		return f.trailingTrivia
	}
	return leadingTriviaOf(f.Decls[0])
}

func (f *File) Span() lexer.Span {
	return spanOf(f.Decls)
}

type FnDecl struct {
	Fn         lexer.Token
	Name       *Ident
	LeftParen  lexer.Token
	Params     []*Param
	RightParen lexer.Token
	Arrow      lexer.Token
	Result     Node // nil when the function returns ()
	Body       *Block
}

func (f *FnDecl) ASTString(depth int) string {
	params := make([]Node, len(f.Params))
	for i, p := range f.Params {
		params[i] = p
	}
	return fmt.Sprintf(
		"FnDecl\n%sName: %s\n%sParams: %s\n%sResult: %s\n%sBody: %s",
		indent(depth+1), optString(depth+1, f.Name),
		indent(depth+1), printNodeSlice(depth+1, params),
		indent(depth+1), optString(depth+1, f.Result),
		indent(depth+1), optString(depth+1, f.Body))
}

func (f *FnDecl) LeadingTrivia() []lexer.Token {
	return f.Fn.LeadingTrivia
}

func (f *FnDecl) Span() lexer.Span {
	return f.Fn.Span.Add(spanOf(f.Body))
}

type Param struct {
	Name  *Ident
	Colon lexer.Token
	Type  Node
}

func (p *Param) ASTString(depth int) string {
	return fmt.Sprintf("Param\n%sName: %s\n%sType: %s",
		indent(depth+1), optString(depth+1, p.Name),
		indent(depth+1), optString(depth+1, p.Type))
}

func (p *Param) LeadingTrivia() []lexer.Token {
	return leadingTriviaOf(p.Name)
}

func (p *Param) Span() lexer.Span {
	return spanOf(p.Name).Add(spanOf(p.Type))
}

// ArrayType is [Elem; Len], or [Elem] when Len is nil.
type ArrayType struct {
	LeftBracket  lexer.Token
	Elem         Node
	Semicolon    lexer.Token
	Len          *Number
	RightBracket lexer.Token
}

func (a *ArrayType) ASTString(depth int) string {
	return fmt.Sprintf("ArrayType\n%sElem: %s\n%sLen: %s",
		indent(depth+1), optString(depth+1, a.Elem),
		indent(depth+1), optString(depth+1, a.Len))
}

func (a *ArrayType) LeadingTrivia() []lexer.Token {
	return a.LeftBracket.LeadingTrivia
}

func (a *ArrayType) Span() lexer.Span {
	return a.LeftBracket.Span.Add(a.RightBracket.Span)
}

type UnitType struct {
	LeftParen  lexer.Token
	RightParen lexer.Token
}

func (u *UnitType) ASTString(int) string {
	return "UnitType"
}

func (u *UnitType) LeadingTrivia() []lexer.Token {
	return u.LeftParen.LeadingTrivia
}

func (u *UnitType) Span() lexer.Span {
	return u.LeftParen.Span.Add(u.RightParen.Span)
}

type Block struct {
	LeftBrace  lexer.Token
	Body       []Node
	RightBrace lexer.Token
}

func (b *Block) ASTString(depth int) string {
	return fmt.Sprintf("Block\n%sBody: %s", indent(depth+1), printNodeSlice(depth+1, b.Body))
}

func (b *Block) LeadingTrivia() []lexer.Token {
	return b.LeftBrace.LeadingTrivia
}

func (b *Block) Span() lexer.Span {
	return b.LeftBrace.Span.Add(b.RightBrace.Span)
}

type LetDecl struct {
	Let       lexer.Token
	Name      *Ident
	Colon     lexer.Token
	Type      Node // nil when unannotated
	Equals    lexer.Token
	Rhs       Node
	Semicolon lexer.Token
}

func (l *LetDecl) ASTString(depth int) string {
	return fmt.Sprintf("LetDecl\n%sName: %s\n%sType: %s\n%sRhs: %s",
		indent(depth+1), optString(depth+1, l.Name),
		indent(depth+1), optString(depth+1, l.Type),
		indent(depth+1), optString(depth+1, l.Rhs))
}

func (l *LetDecl) LeadingTrivia() []lexer.Token {
	return l.Let.LeadingTrivia
}

func (l *LetDecl) Span() lexer.Span {
	return l.Let.Span.Add(spanOf(l.Rhs)).Add(l.Semicolon.Span)
}

type ConstDecl struct {
	Const     lexer.Token
	Name      *Ident
	Equals    lexer.Token
	Rhs       Node
	Semicolon lexer.Token
}

func (c *ConstDecl) ASTString(depth int) string {
	return fmt.Sprintf("ConstDecl\n%sName: %s\n%sRhs: %s",
		indent(depth+1), optString(depth+1, c.Name),
		indent(depth+1), optString(depth+1, c.Rhs))
}

func (c *ConstDecl) LeadingTrivia() []lexer.Token {
	return c.Const.LeadingTrivia
}

func (c *ConstDecl) Span() lexer.Span {
	return c.Const.Span.Add(spanOf(c.Rhs)).Add(c.Semicolon.Span)
}

type Constrain struct {
	Constrain lexer.Token
	X         Node
	Semicolon lexer.Token
}

func (c *Constrain) ASTString(depth int) string {
	return fmt.Sprintf("Constrain\n%sX: %s", indent(depth+1), optString(depth+1, c.X))
}

func (c *Constrain) LeadingTrivia() []lexer.Token {
	return c.Constrain.LeadingTrivia
}

func (c *Constrain) Span() lexer.Span {
	return c.Constrain.Span.Add(spanOf(c.X)).Add(c.Semicolon.Span)
}

// ExprStmt is an expression in statement position. Without a semicolon, it
// yields its value to the enclosing block.
type ExprStmt struct {
	X         Node
	Semicolon lexer.Token
}

func (s *ExprStmt) HasSemicolon() bool {
	return s.Semicolon.Type == lexer.Semicolon
}

func (s *ExprStmt) ASTString(depth int) string {
	return fmt.Sprintf("ExprStmt\n%sX: %s\n%sSemicolon: %t",
		indent(depth+1), optString(depth+1, s.X),
		indent(depth+1), s.HasSemicolon())
}

func (s *ExprStmt) LeadingTrivia() []lexer.Token {
	return leadingTriviaOf(s.X)
}

func (s *ExprStmt) Span() lexer.Span {
	if s.HasSemicolon() {
		return spanOf(s.X).Add(s.Semicolon.Span)
	}
	return spanOf(s.X)
}

type Ident struct {
	Name lexer.Token
}

func (id *Ident) ASTString(int) string {
	return id.Name.String()
}

func (id *Ident) LeadingTrivia() []lexer.Token {
	return id.Name.LeadingTrivia
}

func (id *Ident) Span() lexer.Span {
	return id.Name.Span
}

type Number struct {
	Lit lexer.Token
}

func (n *Number) ASTString(int) string {
	return n.Lit.String()
}

func (n *Number) LeadingTrivia() []lexer.Token {
	return n.Lit.LeadingTrivia
}

func (n *Number) Span() lexer.Span {
	return n.Lit.Span
}

type BasicString struct {
	Lit lexer.Token
}

func (s *BasicString) ASTString(int) string {
	return s.Lit.String()
}

func (s *BasicString) LeadingTrivia() []lexer.Token {
	return s.Lit.LeadingTrivia
}

func (s *BasicString) Span() lexer.Span {
	return s.Lit.Span
}

type Bool struct {
	Lit lexer.Token
}

func (b *Bool) Value() bool {
	return b.Lit.Type == lexer.True
}

func (b *Bool) ASTString(int) string {
	return b.Lit.String()
}

func (b *Bool) LeadingTrivia() []lexer.Token {
	return b.Lit.LeadingTrivia
}

func (b *Bool) Span() lexer.Span {
	return b.Lit.Span
}

type Array struct {
	LeftBracket  lexer.Token
	Elements     []Node
	RightBracket lexer.Token
}

func (a *Array) LeadingTrivia() []lexer.Token {
	return a.LeftBracket.LeadingTrivia
}

func (a *Array) Span() lexer.Span {
	return a.LeftBracket.Span.Add(a.RightBracket.Span)
}

func (a *Array) ASTString(depth int) string {
	return fmt.Sprintf("Array\n%sElements: %s", indent(depth+1), printNodeSlice(depth+1, a.Elements))
}

type BinaryExpr struct {
	Left  Node
	Op    lexer.Token
	Right Node
}

func (be *BinaryExpr) ASTString(depth int) string {
	return fmt.Sprintf(
		"BinaryExpr\n%sLeft: %s\n%sOp: %s\n%sRight: %s",
		indent(depth+1), optString(depth+1, be.Left),
		indent(depth+1), be.Op,
		indent(depth+1), optString(depth+1, be.Right))
}

func (be *BinaryExpr) Span() lexer.Span {
	return spanOf(be.Left).Add(spanOf(be.Right))
}

func (be *BinaryExpr) LeadingTrivia() []lexer.Token {
	return leadingTriviaOf(be.Left)
}

type PrefixExpr struct {
	Op lexer.Token
	X  Node
}

func (p *PrefixExpr) ASTString(depth int) string {
	return fmt.Sprintf("PrefixExpr\n%sOp: %s\n%sX: %s",
		indent(depth+1), p.Op,
		indent(depth+1), optString(depth+1, p.X))
}

func (p *PrefixExpr) LeadingTrivia() []lexer.Token {
	return p.Op.LeadingTrivia
}

func (p *PrefixExpr) Span() lexer.Span {
	return p.Op.Span.Add(spanOf(p.X))
}

type ParenExpr struct {
	LeftParen  lexer.Token
	X          Node
	RightParen lexer.Token
}

func (p *ParenExpr) ASTString(depth int) string {
	return fmt.Sprintf("ParenExpr\n%sX: %s", indent(depth+1), optString(depth+1, p.X))
}

func (p *ParenExpr) LeadingTrivia() []lexer.Token {
	return p.LeftParen.LeadingTrivia
}

func (p *ParenExpr) Span() lexer.Span {
	return p.LeftParen.Span.Add(p.RightParen.Span)
}

type IndexExpr struct {
	X            Node
	LeftBracket  lexer.Token
	Index        Node
	RightBracket lexer.Token
}

func (i *IndexExpr) ASTString(depth int) string {
	return fmt.Sprintf("IndexExpr\n%sX: %s\n%sIndex: %s",
		indent(depth+1), optString(depth+1, i.X),
		indent(depth+1), optString(depth+1, i.Index))
}

func (i *IndexExpr) LeadingTrivia() []lexer.Token {
	return leadingTriviaOf(i.X)
}

func (i *IndexExpr) Span() lexer.Span {
	return spanOf(i.X).Add(i.RightBracket.Span)
}

type CallExpr struct {
	Fun        Node
	LeftParen  lexer.Token
	Args       []Node
	RightParen lexer.Token
}

func (c *CallExpr) ASTString(depth int) string {
	return fmt.Sprintf("CallExpr\n%sFun: %s\n%sArgs: %s",
		indent(depth+1), optString(depth+1, c.Fun),
		indent(depth+1), printNodeSlice(depth+1, c.Args))
}

func (c *CallExpr) LeadingTrivia() []lexer.Token {
	return leadingTriviaOf(c.Fun)
}

func (c *CallExpr) Span() lexer.Span {
	return spanOf(c.Fun).Add(c.RightParen.Span)
}

type CastExpr struct {
	X    Node
	As   lexer.Token
	Type Node
}

func (c *CastExpr) ASTString(depth int) string {
	return fmt.Sprintf("CastExpr\n%sX: %s\n%sType: %s",
		indent(depth+1), optString(depth+1, c.X),
		indent(depth+1), optString(depth+1, c.Type))
}

func (c *CastExpr) LeadingTrivia() []lexer.Token {
	return leadingTriviaOf(c.X)
}

func (c *CastExpr) Span() lexer.Span {
	return spanOf(c.X).Add(spanOf(c.Type))
}

type ForExpr struct {
	For    lexer.Token
	Ident  *Ident
	In     lexer.Token
	Start  Node
	DotDot lexer.Token
	End    Node
	Body   *Block
}

func (f *ForExpr) ASTString(depth int) string {
	return fmt.Sprintf("ForExpr\n%sIdent: %s\n%sStart: %s\n%sEnd: %s\n%sBody: %s",
		indent(depth+1), optString(depth+1, f.Ident),
		indent(depth+1), optString(depth+1, f.Start),
		indent(depth+1), optString(depth+1, f.End),
		indent(depth+1), optString(depth+1, f.Body))
}

func (f *ForExpr) LeadingTrivia() []lexer.Token {
	return f.For.LeadingTrivia
}

func (f *ForExpr) Span() lexer.Span {
	return f.For.Span.Add(spanOf(f.Body))
}

type IfExpr struct {
	If   lexer.Token
	Cond Node
	Then *Block
	Else lexer.Token
	// ElseBody is a *Block, an *IfExpr, or nil.
	ElseBody Node
}

func (i *IfExpr) ASTString(depth int) string {
	return fmt.Sprintf("IfExpr\n%sCond: %s\n%sThen: %s\n%sElse: %s",
		indent(depth+1), optString(depth+1, i.Cond),
		indent(depth+1), optString(depth+1, i.Then),
		indent(depth+1), optString(depth+1, i.ElseBody))
}

func (i *IfExpr) LeadingTrivia() []lexer.Token {
	return i.If.LeadingTrivia
}

func (i *IfExpr) Span() lexer.Span {
	if i.ElseBody != nil {
		return i.If.Span.Add(spanOf(i.ElseBody))
	}
	return i.If.Span.Add(spanOf(i.Then))
}

type Illegal struct {
	leadingTrivia []lexer.Token
	span          lexer.Span
	Node          Node
	Msg           string
}

// NewIllegal records a syntax error at span, optionally wrapping the partial
// node that was parsed before the error.
func NewIllegal(span lexer.Span, node Node, msg string) *Illegal {
	return &Illegal{span: span, Node: node, Msg: msg}
}

func (ill *Illegal) SetLeadingTrivia(tt []lexer.Token) {
	ill.leadingTrivia = tt
}

func (i *Illegal) ASTString(depth int) string {
	return fmt.Sprintf(
		"Illegal\n%sspan: %s\n%sNode: %s\n%sMsg: %q",
		indent(depth+1), i.span,
		indent(depth+1), optString(depth+1, i.Node),
		indent(depth+1), i.Msg)
}

func (i *Illegal) LeadingTrivia() []lexer.Token {
	if len(i.leadingTrivia) > 0 {
		return i.leadingTrivia
	}
	return leadingTriviaOf(i.Node)
}

func (i *Illegal) Span() lexer.Span {
	return i.span.Add(spanOf(i.Node))
}

// Unparen strips any enclosing parentheses from n.
func Unparen(n Node) Node {
	for {
		p, ok := n.(*ParenExpr)
		if !ok {
			return n
		}
		n = p.X
	}
}

// TrimQuotes returns the body of a string literal token.
func TrimQuotes(lit string) string {
	return strings.TrimSuffix(strings.TrimPrefix(lit, `"`), `"`)
}
