// Package astprint implements a debugging pretty-printer for the AST,
// reachable via the `--ast` CLI flag. Grounded on
// archevan-glox/ast_printer.go's parenthesize shape, adapted to the
// tagged-variant internal/ast types via a type switch instead of the
// teacher's visitor `accept` call.
package astprint

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/archevan/glox/internal/ast"
)

// Print renders a single expression as a fully-parenthesized
// s-expression, e.g. `(* (- 123) (group 45.67))`.
func Print(e ast.Expr) string {
	var b strings.Builder
	writeExpr(&b, e)
	return b.String()
}

func writeExpr(b *strings.Builder, e ast.Expr) {
	switch n := e.(type) {
	case *ast.LiteralExpr:
		b.WriteString(literalString(n.Value))
	case *ast.GroupingExpr:
		parenthesize(b, "group", n.Inner)
	case *ast.UnaryExpr:
		parenthesize(b, n.Op.Lexeme, n.Right)
	case *ast.BinaryExpr:
		parenthesize(b, n.Op.Lexeme, n.Left, n.Right)
	case *ast.LogicalExpr:
		parenthesize(b, n.Op.Lexeme, n.Left, n.Right)
	case *ast.TernaryExpr:
		parenthesize(b, "?:", n.Cond, n.Then, n.Else)
	case *ast.VariableExpr:
		b.WriteString(n.Name.Lexeme)
	case *ast.AssignExpr:
		b.WriteByte('(')
		b.WriteString("= ")
		b.WriteString(n.Name.Lexeme)
		b.WriteByte(' ')
		writeExpr(b, n.Value)
		b.WriteByte(')')
	case *ast.CallExpr:
		b.WriteByte('(')
		b.WriteString("call ")
		writeExpr(b, n.Callee)
		for _, a := range n.Args {
			b.WriteByte(' ')
			writeExpr(b, a)
		}
		b.WriteByte(')')
	case *ast.GetExpr:
		b.WriteByte('(')
		b.WriteString("get ")
		writeExpr(b, n.Object)
		b.WriteByte(' ')
		b.WriteString(n.Name.Lexeme)
		b.WriteByte(')')
	case *ast.SetExpr:
		b.WriteByte('(')
		b.WriteString("set ")
		writeExpr(b, n.Object)
		b.WriteByte(' ')
		b.WriteString(n.Name.Lexeme)
		b.WriteByte(' ')
		writeExpr(b, n.Value)
		b.WriteByte(')')
	case *ast.ThisExpr:
		b.WriteString("this")
	case *ast.SuperExpr:
		b.WriteString("(super ")
		b.WriteString(n.Method.Lexeme)
		b.WriteByte(')')
	case *ast.AnonFunctionExpr:
		b.WriteString("(fun)")
	default:
		fmt.Fprintf(b, "<?%T>", e)
	}
}

func parenthesize(b *strings.Builder, name string, exprs ...ast.Expr) {
	b.WriteByte('(')
	b.WriteString(name)
	for _, e := range exprs {
		b.WriteByte(' ')
		writeExpr(b, e)
	}
	b.WriteByte(')')
}

func literalString(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return "nil"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", v)
	}
}
