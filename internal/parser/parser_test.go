package parser_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archevan/glox/internal/ast"
	"github.com/archevan/glox/internal/diag"
	"github.com/archevan/glox/internal/parser"
	"github.com/archevan/glox/internal/scanner"
	"github.com/archevan/glox/internal/token"
)

func parse(t *testing.T, source string) ([]ast.Stmt, *diag.Sink) {
	t.Helper()
	var buf bytes.Buffer
	sink := diag.New(&buf, nil)
	toks := scanner.New(source, sink).ScanTokens()
	stmts := parser.New(toks, sink).Parse()
	return stmts, sink
}

// cmpOpts ignores token.Line/Literal noise not relevant to tree shape,
// but keeps Kind/Lexeme so operator identity still matters.
var cmpOpts = cmp.Options{
	cmpopts.IgnoreFields(token.Token{}, "Line", "Literal"),
}

func TestArithmeticPrecedence(t *testing.T) {
	stmts, sink := parse(t, "1 + 2 * 3;")
	require.False(t, sink.HadError())
	require.Len(t, stmts, 1)
	es, ok := stmts[0].(*ast.ExpressionStmt)
	require.True(t, ok)
	bin, ok := es.Expr.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.Plus, bin.Op.Kind)
	rightBin, ok := bin.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.Star, rightBin.Op.Kind)
}

func TestFactorIsLeftAssociative(t *testing.T) {
	// 8 / 4 / 2 must parse as (8/4)/2, not 8/(4/2), per spec.md §9.
	stmts, sink := parse(t, "8 / 4 / 2;")
	require.False(t, sink.HadError())
	es := stmts[0].(*ast.ExpressionStmt)
	outer := es.Expr.(*ast.BinaryExpr)
	assert.Equal(t, token.Slash, outer.Op.Kind)
	leftInner, ok := outer.Left.(*ast.BinaryExpr)
	require.True(t, ok, "left-associative parse must nest on the left")
	assert.Equal(t, token.Slash, leftInner.Op.Kind)
}

func TestForDesugarsToWhile(t *testing.T) {
	stmts, sink := parse(t, "for (var i = 0; i < 3; i = i + 1) print i;")
	require.False(t, sink.HadError())
	require.Len(t, stmts, 1)
	block, ok := stmts[0].(*ast.BlockStmt)
	require.True(t, ok)
	require.Len(t, block.Stmts, 2)
	_, isVar := block.Stmts[0].(*ast.VarStmt)
	assert.True(t, isVar)
	whileStmt, ok := block.Stmts[1].(*ast.WhileStmt)
	require.True(t, ok)
	body, ok := whileStmt.Body.(*ast.BlockStmt)
	require.True(t, ok)
	require.Len(t, body.Stmts, 2)
}

func TestInvalidAssignmentTargetReportsButContinues(t *testing.T) {
	stmts, sink := parse(t, "1 + 2 = 3;")
	assert.True(t, sink.HadError())
	// parsing still produced a statement (error is non-fatal)
	assert.Len(t, stmts, 1)
}

func TestBreakOutsideLoopReportsError(t *testing.T) {
	_, sink := parse(t, "break;")
	assert.True(t, sink.HadError())
}

func TestBreakInsideLoopOK(t *testing.T) {
	_, sink := parse(t, "while (true) { break; }")
	assert.False(t, sink.HadError())
}

func TestTooManyParametersReportsError(t *testing.T) {
	var params bytes.Buffer
	for i := 0; i < 256; i++ {
		if i > 0 {
			params.WriteString(", ")
		}
		params.WriteString("a")
		params.WriteString(itoa(i))
	}
	src := "fun f(" + params.String() + ") { }"
	_, sink := parse(t, src)
	assert.True(t, sink.HadError())
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := []byte{}
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	return string(digits)
}

func TestSynchronizeRecoversAfterError(t *testing.T) {
	stmts, sink := parse(t, "var = ; print 1;")
	assert.True(t, sink.HadError())
	// the print statement after the broken declaration should still parse
	found := false
	for _, s := range stmts {
		if _, ok := s.(*ast.PrintStmt); ok {
			found = true
		}
	}
	assert.True(t, found, "parser should recover and parse the print statement")
}

func TestTernaryExpression(t *testing.T) {
	stmts, sink := parse(t, "print true ? 1 : 2;")
	require.False(t, sink.HadError())
	ps := stmts[0].(*ast.PrintStmt)
	_, ok := ps.Expr.(*ast.TernaryExpr)
	assert.True(t, ok)
}

func TestParserIsDeterministic(t *testing.T) {
	src := "fun add(a, b) { return a + b; } print add(1, 2);"
	first, sink1 := parse(t, src)
	second, sink2 := parse(t, src)
	require.False(t, sink1.HadError())
	require.False(t, sink2.HadError())
	diff := cmp.Diff(first, second, cmpOpts)
	assert.Empty(t, diff, "re-parsing identical source must yield structurally identical ASTs")
}

func TestClassWithSuperclassAndGetter(t *testing.T) {
	stmts, sink := parse(t, `
		class Base { greeting { return "hi"; } }
		class Sub < Base { }
	`)
	require.False(t, sink.HadError())
	require.Len(t, stmts, 2)
	base := stmts[0].(*ast.ClassStmt)
	require.Len(t, base.Methods, 1)
	assert.True(t, base.Methods[0].IsGetter)
	sub := stmts[1].(*ast.ClassStmt)
	require.NotNil(t, sub.Superclass)
	assert.Equal(t, "Base", sub.Superclass.Name.Lexeme)
}

func TestCompoundAssignDesugars(t *testing.T) {
	stmts, sink := parse(t, "x += 1;")
	require.False(t, sink.HadError())
	es := stmts[0].(*ast.ExpressionStmt)
	assign, ok := es.Expr.(*ast.AssignExpr)
	require.True(t, ok)
	bin, ok := assign.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.Plus, bin.Op.Kind)
}

func TestAnonymousFunctionExpression(t *testing.T) {
	stmts, sink := parse(t, "var f = fun (a) { return a; };")
	require.False(t, sink.HadError())
	v := stmts[0].(*ast.VarStmt)
	_, ok := v.Init.(*ast.AnonFunctionExpr)
	assert.True(t, ok)
}
