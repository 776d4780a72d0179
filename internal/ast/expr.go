// Package ast defines the expression and statement tree produced by the
// parser. Nodes are tagged variants, with the concrete Go struct type
// serving as the tag, rather than a Java-style visitor hierarchy: consumers
// switch on concrete type, which is the idiomatic Go shape for a closed
// sum type and is the redesign spec.md §9 calls for in place of the
// teacher's accept(Visitor) double dispatch.
package ast

import "github.com/archevan/glox/internal/token"

// Expr is any expression node. The interface itself carries no
// behavior; it exists only to group the pointer types below into one
// sum type for exhaustive type switches.
type Expr interface {
	exprNode()
}

// Each expression node's Go pointer identity is what the resolver keys
// its scope-depth table on (see internal/resolver), satisfying spec.md
// §3's "stable identity used by the resolver to attach a scope-depth."

type LiteralExpr struct {
	Value interface{}
}

type GroupingExpr struct {
	Inner Expr
}

type UnaryExpr struct {
	Op    token.Token
	Right Expr
}

type BinaryExpr struct {
	Left  Expr
	Op    token.Token
	Right Expr
}

type LogicalExpr struct {
	Left  Expr
	Op    token.Token
	Right Expr
}

type VariableExpr struct {
	Name token.Token
}

type AssignExpr struct {
	Name  token.Token
	Value Expr
}

type CallExpr struct {
	Callee Expr
	Paren  token.Token // closing ')', anchors call-site diagnostics
	Args   []Expr
}

type GetExpr struct {
	Object Expr
	Name   token.Token
}

type SetExpr struct {
	Object Expr
	Name   token.Token
	Value  Expr
}

type ThisExpr struct {
	Keyword token.Token
}

// SuperExpr is a supplemented node (SPEC_FULL.md §B.4): super.method().
type SuperExpr struct {
	Keyword token.Token
	Method  token.Token
}

// TernaryExpr is a supplemented node (SPEC_FULL.md §B.4): cond ? a : b.
type TernaryExpr struct {
	Cond, Then, Else Expr
}

// AnonFunctionExpr is a supplemented node (SPEC_FULL.md §B.4): an
// anonymous `fun (params) { body }` used as a primary expression.
type AnonFunctionExpr struct {
	Keyword token.Token // the `fun` token, anchors source location
	Params  []token.Token
	Body    []Stmt
}

func (*LiteralExpr) exprNode()      {}
func (*GroupingExpr) exprNode()     {}
func (*UnaryExpr) exprNode()        {}
func (*BinaryExpr) exprNode()       {}
func (*LogicalExpr) exprNode()      {}
func (*VariableExpr) exprNode()     {}
func (*AssignExpr) exprNode()       {}
func (*CallExpr) exprNode()         {}
func (*GetExpr) exprNode()          {}
func (*SetExpr) exprNode()          {}
func (*ThisExpr) exprNode()         {}
func (*SuperExpr) exprNode()        {}
func (*TernaryExpr) exprNode()      {}
func (*AnonFunctionExpr) exprNode() {}
