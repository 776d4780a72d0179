package scanner_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/archevan/glox/internal/diag"
	"github.com/archevan/glox/internal/scanner"
	"github.com/archevan/glox/internal/token"
)

func scan(t *testing.T, source string) ([]token.Token, *diag.Sink) {
	t.Helper()
	var buf bytes.Buffer
	sink := diag.New(&buf, nil)
	s := scanner.New(source, sink)
	return s.ScanTokens(), sink
}

func TestEmptySource(t *testing.T) {
	toks, sink := scan(t, "")
	assert.False(t, sink.HadError())
	assert.Equal(t, []token.Token{token.New(token.EOF, "", nil, 1)}, toks)
}

func TestArithmeticTokens(t *testing.T) {
	toks, sink := scan(t, "2 + 4")
	assert.False(t, sink.HadError())
	want := []token.Token{
		token.New(token.Number, "2", 2.0, 1),
		token.New(token.Plus, "+", nil, 1),
		token.New(token.Number, "4", 4.0, 1),
		token.New(token.EOF, "", nil, 1),
	}
	assert.Equal(t, want, toks)
}

func TestCompoundOperators(t *testing.T) {
	toks, sink := scan(t, "i += 1; i++; i--; i -= 2; i *= 3; i /= 4; i %= 5;")
	assert.False(t, sink.HadError())
	kinds := make([]token.Kind, 0, len(toks))
	for _, tk := range toks {
		kinds = append(kinds, tk.Kind)
	}
	assert.Contains(t, kinds, token.PlusEqual)
	assert.Contains(t, kinds, token.PlusPlus)
	assert.Contains(t, kinds, token.MinusMinus)
	assert.Contains(t, kinds, token.MinusEqual)
	assert.Contains(t, kinds, token.StarEqual)
	assert.Contains(t, kinds, token.SlashEqual)
	assert.Contains(t, kinds, token.PercentEqual)
}

func TestLineCommentsIgnored(t *testing.T) {
	toks, sink := scan(t, "// a whole comment\nprint 1;")
	assert.False(t, sink.HadError())
	assert.Equal(t, token.Print, toks[0].Kind)
	assert.Equal(t, 2, toks[0].Line)
}

func TestStringLiteral(t *testing.T) {
	toks, sink := scan(t, `"hello\nworld"`)
	assert.False(t, sink.HadError())
	assert.Equal(t, token.String, toks[0].Kind)
	assert.Equal(t, `hello\nworld`, toks[0].Literal)
}

func TestUnterminatedString(t *testing.T) {
	_, sink := scan(t, `"hello`)
	assert.True(t, sink.HadError())
}

func TestMultilineStringAdvancesLineNumber(t *testing.T) {
	toks, sink := scan(t, "\"a\nb\"\nprint 1;")
	assert.False(t, sink.HadError())
	assert.Equal(t, token.String, toks[0].Kind)
	// the print keyword is on line 3: two newlines precede it
	var printTok token.Token
	for _, tk := range toks {
		if tk.Kind == token.Print {
			printTok = tk
		}
	}
	assert.Equal(t, 3, printTok.Line)
}

func TestUnexpectedCharacter(t *testing.T) {
	_, sink := scan(t, "#")
	assert.True(t, sink.HadError())
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	toks, sink := scan(t, "var class_name = classy;")
	assert.False(t, sink.HadError())
	assert.Equal(t, token.Var, toks[0].Kind)
	assert.Equal(t, token.Identifier, toks[1].Kind)
	assert.Equal(t, "class_name", toks[1].Lexeme)
	assert.Equal(t, token.Identifier, toks[3].Kind)
}

func TestTernaryPunctuation(t *testing.T) {
	toks, sink := scan(t, "a ? b : c;")
	assert.False(t, sink.HadError())
	assert.Equal(t, token.Question, toks[1].Kind)
	assert.Equal(t, token.Colon, toks[3].Kind)
}
