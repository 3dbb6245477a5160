package lexer

import (
	"fmt"

	"golang.org/x/exp/slices"
)

type TokenType int

const (
	EOF TokenType = iota
	Plus
	Minus
	Times
	Divide
	And
	Or
	Caret
	LessThan
	GreaterThan
	Equals
	Colon
	Not
	Comma
	Semicolon
	LeftParen
	RightParen
	LeftBrace
	RightBrace
	LeftBracket
	RightBracket

	LeftShift
	RightShift
	LogicalEquals
	NotEquals
	LessThanEquals
	GreaterThanEquals
	DotDot
	RightArrow

	Fn
	Let
	Const
	Constrain
	For
	In
	As
	If
	Else
	True
	False

	Ident
	Number
	String
	Whitespace
	SingleLineComment
	Illegal
)

var tokenNames = [...]string{
	EOF:               "EOF",
	Plus:              "+",
	Minus:             "-",
	Times:             "*",
	Divide:            "/",
	And:               "&",
	Or:                "|",
	Caret:             "^",
	LessThan:          "<",
	GreaterThan:       ">",
	Equals:            "=",
	Colon:             ":",
	Not:               "!",
	Comma:             ",",
	Semicolon:         ";",
	LeftParen:         "(",
	RightParen:        ")",
	LeftBrace:         "{",
	RightBrace:        "}",
	LeftBracket:       "[",
	RightBracket:      "]",
	LeftShift:         "<<",
	RightShift:        ">>",
	LogicalEquals:     "==",
	NotEquals:         "!=",
	LessThanEquals:    "<=",
	GreaterThanEquals: ">=",
	DotDot:            "..",
	RightArrow:        "->",
	Fn:                "fn",
	Let:               "let",
	Const:             "const",
	Constrain:         "constrain",
	For:               "for",
	In:                "in",
	As:                "as",
	If:                "if",
	Else:              "else",
	True:              "true",
	False:             "false",
	Ident:             "Ident",
	Number:            "Number",
	String:            "String",
	Whitespace:        "Whitespace",
	SingleLineComment: "SingleLineComment",
	Illegal:           "Illegal",
}

func (t TokenType) String() string {
	if t >= 0 && int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

var SingleCharTokens = map[rune]TokenType{
	'+': Plus,
	'^': Caret,
	',': Comma,
	';': Semicolon,
	'(': LeftParen,
	')': RightParen,
	'{': LeftBrace,
	'}': RightBrace,
	'[': LeftBracket,
	']': RightBracket,
	'/': Divide,
	'-': Minus,
	'*': Times,
	'&': And,
	'|': Or,
	'<': LessThan,
	'>': GreaterThan,
	'=': Equals,
	'!': Not,
	':': Colon,
	eof: EOF,
}

var DoubleCharTokens = map[[2]rune]TokenType{
	{'-', '>'}: RightArrow,
	{'<', '='}: LessThanEquals,
	{'<', '<'}: LeftShift,
	{'>', '='}: GreaterThanEquals,
	{'>', '>'}: RightShift,
	{'=', '='}: LogicalEquals,
	{'!', '='}: NotEquals,
	{'.', '.'}: DotDot,
}

var Keywords = map[string]TokenType{
	"fn":        Fn,
	"let":       Let,
	"const":     Const,
	"constrain": Constrain,
	"for":       For,
	"in":        In,
	"as":        As,
	"if":        If,
	"else":      Else,
	"true":      True,
	"false":     False,
}

type Pos struct {
	Offset int
	Line   int
	Column int
}

func (p Pos) Min(other Pos) Pos {
	if p.Column == 0 {
		return other
	}
	if other.Column == 0 {
		return p
	}
	if p.Offset < other.Offset {
		return p
	}
	return other
}

func (p Pos) Max(other Pos) Pos {
	if p.Column == 0 {
		return other
	}
	if other.Column == 0 {
		return p
	}
	if p.Offset > other.Offset {
		return p
	}
	return other
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type Span struct {
	Start Pos
	End   Pos
}

func (span Span) Add(other Span) Span {
	return Span{span.Start.Min(other.Start), span.End.Max(other.End)}
}

func (s Span) String() string {
	if s.Start == s.End {
		return fmt.Sprintf("%d:%d", s.Start.Line, s.Start.Column)
	}
	if s.Start.Line == s.End.Line {
		return fmt.Sprintf("%d:%d-%d", s.Start.Line, s.Start.Column, s.End.Column)
	}
	return fmt.Sprintf("%d:%d-%d:%d", s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}

type Token struct {
	LeadingTrivia []Token
	Type          TokenType
	Span          Span
	Data          string
}

func (t Token) String() string {
	if t.Data == "" {
		return fmt.Sprintf("%s:%s", t.Span, t.Type)
	}
	return fmt.Sprintf("%s:%s %q", t.Span, t.Type, t.Data)
}

func (b Token) Eq(a Token) bool {
	return a.Type == b.Type && a.Data == b.Data
}

func (a Token) ExactEq(b Token) bool {
	return a.Type == b.Type && a.Span == b.Span && a.Data == b.Data && slices.EqualFunc(a.LeadingTrivia, b.LeadingTrivia, Token.ExactEq)
}

var binaryOps = []TokenType{
	Plus, Minus, Times, Divide, And, Or, Caret, LeftShift, RightShift,
	LogicalEquals, NotEquals, LessThan, LessThanEquals, GreaterThan, GreaterThanEquals,
}

func (t Token) IsBinaryOp() bool {
	return slices.Contains(binaryOps, t.Type)
}

func (t Token) IsPrefixOp() bool {
	return t.Type == Minus || t.Type == Not
}

func (t Token) IsComparison() bool {
	switch t.Type {
	case LogicalEquals, NotEquals, LessThan, LessThanEquals, GreaterThan, GreaterThanEquals:
		return true
	}
	return false
}

const MinPrec = 1

// All binary operators are left associative.
func (t Token) Prec() int {
	switch t.Type {
	case Times, Divide:
		return 5
	case Plus, Minus:
		return 4
	case LeftShift, RightShift:
		return 3
	case LogicalEquals, NotEquals, LessThan, GreaterThan, LessThanEquals, GreaterThanEquals:
		return 2
	case And, Or, Caret:
		return 1
	}
	return 0
}

// BeginsBlockExpr reports whether an expression starting with t ends in a
// block, in which case it may be used as a statement without a semicolon.
func (t Token) BeginsBlockExpr() bool {
	return t.Type == For || t.Type == If
}
