package astprint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/archevan/glox/internal/ast"
	"github.com/archevan/glox/internal/astprint"
	"github.com/archevan/glox/internal/token"
)

func TestPrintBinaryExpression(t *testing.T) {
	// -123 * (45.67)
	expr := &ast.BinaryExpr{
		Left: &ast.UnaryExpr{
			Op:    token.New(token.Minus, "-", nil, 1),
			Right: &ast.LiteralExpr{Value: 123.0},
		},
		Op:    token.New(token.Star, "*", nil, 1),
		Right: &ast.GroupingExpr{Inner: &ast.LiteralExpr{Value: 45.67}},
	}
	assert.Equal(t, "(* (- 123) (group 45.67))", astprint.Print(expr))
}

func TestPrintLiteralVariants(t *testing.T) {
	assert.Equal(t, "nil", astprint.Print(&ast.LiteralExpr{Value: nil}))
	assert.Equal(t, "true", astprint.Print(&ast.LiteralExpr{Value: true}))
	assert.Equal(t, "hi", astprint.Print(&ast.LiteralExpr{Value: "hi"}))
}

func TestPrintTernaryAndAssign(t *testing.T) {
	name := token.New(token.Identifier, "x", nil, 1)
	assign := &ast.AssignExpr{Name: name, Value: &ast.LiteralExpr{Value: 1.0}}
	assert.Equal(t, "(= x 1)", astprint.Print(assign))

	tern := &ast.TernaryExpr{
		Cond: &ast.VariableExpr{Name: name},
		Then: &ast.LiteralExpr{Value: "yes"},
		Else: &ast.LiteralExpr{Value: "no"},
	}
	assert.Equal(t, "(?: x yes no)", astprint.Print(tern))
}
