// Package token defines the lexical tokens produced by the scanner and
// consumed by the parser.
package token

import (
	"fmt"

	"github.com/josharian/intern"
)

// Kind identifies the lexical category of a Token.
type Kind int

// Token kinds, grouped the way spec.md §3 groups them.
const (
	// single-character tokens
	LeftParen Kind = iota
	RightParen
	LeftBrace
	RightBrace
	Comma
	Dot
	Minus
	Plus
	Semicolon
	Star
	Slash
	Percent

	// one- or two-character tokens
	Bang
	BangEqual
	Equal
	EqualEqual
	Greater
	GreaterEqual
	Less
	LessEqual
	PlusPlus
	MinusMinus
	PlusEqual
	MinusEqual
	StarEqual
	SlashEqual
	PercentEqual

	// literals
	Identifier
	String
	Number

	// keywords
	And
	Class
	Else
	False
	For
	Fun
	If
	Nil
	Or
	Print
	Return
	Super
	This
	True
	Var
	While
	Break

	// question/colon for the ternary operator (SPEC_FULL.md §B.4)
	Question
	Colon

	// sentinel
	EOF
)

var kindNames = map[Kind]string{
	LeftParen: "LEFT_PAREN", RightParen: "RIGHT_PAREN",
	LeftBrace: "LEFT_BRACE", RightBrace: "RIGHT_BRACE",
	Comma: "COMMA", Dot: "DOT", Minus: "MINUS", Plus: "PLUS",
	Semicolon: "SEMICOLON", Star: "STAR", Slash: "SLASH", Percent: "PERCENT",
	Bang: "BANG", BangEqual: "BANG_EQUAL", Equal: "EQUAL", EqualEqual: "EQUAL_EQUAL",
	Greater: "GREATER", GreaterEqual: "GREATER_EQUAL", Less: "LESS", LessEqual: "LESS_EQUAL",
	PlusPlus: "PLUS_PLUS", MinusMinus: "MINUS_MINUS",
	PlusEqual: "PLUS_EQUAL", MinusEqual: "MINUS_EQUAL",
	StarEqual: "STAR_EQUAL", SlashEqual: "SLASH_EQUAL", PercentEqual: "PERCENT_EQUAL",
	Identifier: "IDENTIFIER", String: "STRING", Number: "NUMBER",
	And: "and", Class: "class", Else: "else", False: "false", For: "for",
	Fun: "fun", If: "if", Nil: "nil", Or: "or", Print: "print",
	Return: "return", Super: "super", This: "this", True: "true",
	Var: "var", While: "while", Break: "break",
	Question: "QUESTION", Colon: "COLON",
	EOF: "EOF",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Keywords maps reserved lexemes to their Kind. It is written out by hand,
// separately from kindNames.
var Keywords = map[string]Kind{
	"and": And, "class": Class, "else": Else, "false": False, "for": For,
	"fun": Fun, "if": If, "nil": Nil, "or": Or, "print": Print,
	"return": Return, "super": Super, "this": This, "true": True,
	"var": Var, "while": While, "break": Break,
}

// Token is an immutable lexical unit: its kind, the exact source
// substring it spans, an optional literal value (float64 for NUMBER,
// string for STRING), and the line its first character lies on.
type Token struct {
	Kind    Kind
	Lexeme  string
	Literal interface{}
	Line    int
}

// New builds a Token, interning its lexeme so repeated identifiers
// (and keyword lexemes) across a source file share one string.
func New(kind Kind, lexeme string, literal interface{}, line int) Token {
	return Token{
		Kind:    kind,
		Lexeme:  intern.String(lexeme),
		Literal: literal,
		Line:    line,
	}
}

func (t Token) String() string {
	lexeme := t.Lexeme
	if t.Kind == EOF {
		lexeme = ""
	}
	return fmt.Sprintf("[line %d] %v %q", t.Line, t.Kind, lexeme)
}
