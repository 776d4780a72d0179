// Package resolver implements the static scope-depth resolution pass of
// spec.md §4.3: an AST walk (no evaluation) that annotates every
// Variable/Assign/This/Super expression with the number of enclosing
// environments to skip at interpretation time.
//
// The teacher (archevan-glox) has no resolver at all — every variable
// read goes straight to the live environment chain, which reproduces
// the classic late-binding bug spec.md §8 scenario 4 exists to catch.
// This pass is built directly from spec.md §4.3's algorithm.
package resolver

import (
	"github.com/archevan/glox/internal/ast"
	"github.com/archevan/glox/internal/diag"
	"github.com/archevan/glox/internal/token"
)

type functionType int

const (
	fnNone functionType = iota
	fnFunction
	fnMethod
	fnInitializer
)

type classType int

const (
	classNone classType = iota
	classClass
	classSubclass
)

// Locals is the local-resolution table of spec.md §3: expression
// identity (Go pointer identity of the concrete *ast.*Expr) to scope
// distance. Absence means "global".
type Locals map[interface{}]int

type scope map[string]bool

// Resolver walks an already-parsed AST and fills in a Locals table.
type Resolver struct {
	scopes          []scope
	locals          Locals
	currentFunction functionType
	currentClass    classType
	sink            *diag.Sink
}

// New returns a Resolver that reports diagnostics to sink.
func New(sink *diag.Sink) *Resolver {
	return &Resolver{locals: make(Locals), sink: sink}
}

// Resolve walks every top-level statement and returns the completed
// Locals table.
func (r *Resolver) Resolve(stmts []ast.Stmt) Locals {
	r.resolveStmts(stmts)
	return r.locals
}

func (r *Resolver) resolveStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		r.resolveStmt(s)
	}
}

func (r *Resolver) beginScope() { r.scopes = append(r.scopes, scope{}) }

func (r *Resolver) endScope() { r.scopes = r.scopes[:len(r.scopes)-1] }

func (r *Resolver) declare(name token.Token) {
	if len(r.scopes) == 0 {
		return // globals are never tracked
	}
	sc := r.scopes[len(r.scopes)-1]
	if _, ok := sc[name.Lexeme]; ok {
		r.sink.TokenError(name, "Already a variable with this name in this scope.")
	}
	sc[name.Lexeme] = false
}

func (r *Resolver) define(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name.Lexeme] = true
}

func (r *Resolver) resolveLocal(expr interface{}, name token.Token) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name.Lexeme]; ok {
			r.locals[expr] = len(r.scopes) - 1 - i
			return
		}
	}
	// unresolved: treat as global
}

func (r *Resolver) resolveStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.ExpressionStmt:
		r.resolveExpr(n.Expr)
	case *ast.PrintStmt:
		r.resolveExpr(n.Expr)
	case *ast.VarStmt:
		r.declare(n.Name)
		if n.Init != nil {
			r.resolveExpr(n.Init)
		}
		r.define(n.Name)
	case *ast.BlockStmt:
		r.beginScope()
		r.resolveStmts(n.Stmts)
		r.endScope()
	case *ast.IfStmt:
		r.resolveExpr(n.Cond)
		r.resolveStmt(n.Then)
		if n.Else != nil {
			r.resolveStmt(n.Else)
		}
	case *ast.WhileStmt:
		r.resolveExpr(n.Cond)
		r.resolveStmt(n.Body)
	case *ast.BreakStmt:
		// validity already enforced by the parser
	case *ast.FunctionStmt:
		r.declare(n.Name)
		r.define(n.Name)
		r.resolveFunction(n, fnFunction)
	case *ast.ReturnStmt:
		if r.currentFunction == fnNone {
			r.sink.TokenError(n.Keyword, "Can't return from top-level code.")
		}
		if n.Value != nil {
			if r.currentFunction == fnInitializer {
				r.sink.TokenError(n.Keyword, "Can't return a value from an initializer.")
			}
			r.resolveExpr(n.Value)
		}
	case *ast.ClassStmt:
		r.resolveClass(n)
	default:
		panic("resolver: unhandled statement type")
	}
}

func (r *Resolver) resolveFunction(fn *ast.FunctionStmt, typ functionType) {
	enclosingFunction := r.currentFunction
	r.currentFunction = typ
	r.beginScope()
	for _, param := range fn.Params {
		r.declare(param)
		r.define(param)
	}
	r.resolveStmts(fn.Body)
	r.endScope()
	r.currentFunction = enclosingFunction
}

func (r *Resolver) resolveClass(c *ast.ClassStmt) {
	enclosingClass := r.currentClass
	r.currentClass = classClass
	r.declare(c.Name)
	r.define(c.Name)

	if c.Superclass != nil {
		if c.Superclass.Name.Lexeme == c.Name.Lexeme {
			r.sink.TokenError(c.Superclass.Name, "A class can't inherit from itself.")
		}
		r.currentClass = classSubclass
		r.resolveExpr(c.Superclass)
		r.beginScope()
		r.scopes[len(r.scopes)-1]["super"] = true
	}

	r.beginScope()
	r.scopes[len(r.scopes)-1]["this"] = true
	for _, m := range c.Methods {
		typ := fnMethod
		if m.Name.Lexeme == "init" {
			typ = fnInitializer
		}
		r.resolveFunction(m, typ)
	}
	r.endScope()

	if c.Superclass != nil {
		r.endScope()
	}
	r.currentClass = enclosingClass
}

func (r *Resolver) resolveExpr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.LiteralExpr:
		// no sub-expressions
	case *ast.GroupingExpr:
		r.resolveExpr(n.Inner)
	case *ast.UnaryExpr:
		r.resolveExpr(n.Right)
	case *ast.BinaryExpr:
		r.resolveExpr(n.Left)
		r.resolveExpr(n.Right)
	case *ast.LogicalExpr:
		r.resolveExpr(n.Left)
		r.resolveExpr(n.Right)
	case *ast.TernaryExpr:
		r.resolveExpr(n.Cond)
		r.resolveExpr(n.Then)
		r.resolveExpr(n.Else)
	case *ast.VariableExpr:
		if len(r.scopes) > 0 {
			if ready, ok := r.scopes[len(r.scopes)-1][n.Name.Lexeme]; ok && !ready {
				r.sink.TokenError(n.Name, "Can't read local variable in its own initializer.")
			}
		}
		r.resolveLocal(n, n.Name)
	case *ast.AssignExpr:
		r.resolveExpr(n.Value)
		r.resolveLocal(n, n.Name)
	case *ast.CallExpr:
		r.resolveExpr(n.Callee)
		for _, a := range n.Args {
			r.resolveExpr(a)
		}
	case *ast.GetExpr:
		r.resolveExpr(n.Object)
	case *ast.SetExpr:
		r.resolveExpr(n.Value)
		r.resolveExpr(n.Object)
	case *ast.ThisExpr:
		if r.currentClass == classNone {
			r.sink.TokenError(n.Keyword, "Can't use 'this' outside of a class.")
			return
		}
		r.resolveLocal(n, n.Keyword)
	case *ast.SuperExpr:
		if r.currentClass == classNone {
			r.sink.TokenError(n.Keyword, "Can't use 'super' outside of a class.")
		} else if r.currentClass != classSubclass {
			r.sink.TokenError(n.Keyword, "Can't use 'super' in a class with no superclass.")
		}
		r.resolveLocal(n, n.Keyword)
	case *ast.AnonFunctionExpr:
		enclosingFunction := r.currentFunction
		r.currentFunction = fnFunction
		r.beginScope()
		for _, param := range n.Params {
			r.declare(param)
			r.define(param)
		}
		r.resolveStmts(n.Body)
		r.endScope()
		r.currentFunction = enclosingFunction
	default:
		panic("resolver: unhandled expression type")
	}
}
