// Package parser implements the recursive-descent Lox parser of
// spec.md §4.2: one token of lookahead, a statement/expression tree
// out, diagnostics (not panics) for malformed input, with `synchronize`
// error recovery at each declaration boundary.
package parser

import (
	"fmt"

	"github.com/archevan/glox/internal/ast"
	"github.com/archevan/glox/internal/diag"
	"github.com/archevan/glox/internal/token"
)

const maxArgs = 255

// parseError is the recoverable sentinel spec.md §4.2 describes: it
// unwinds the current production back to declaration(), which
// synchronizes; the diagnostic itself is already reported by errorAt
// when the sentinel is created. It is returned as an
// ordinary Go error rather than thrown, which is the idiomatic-Go
// equivalent the teacher's own error-as-value RuntimeError already
// points toward.
type parseError struct{ reported bool }

func (parseError) Error() string { return "parse error" }

// Parser turns a token stream into a list of statement trees. Grounded
// on archevan-glox/parser.go's intent (the file present in the teacher
// is only a stub of Expr/BinaryExpr) and on the production grammar of
// spec.md §4.2.
type Parser struct {
	tokens    []token.Token
	current   int
	loopDepth int
	sink      *diag.Sink
}

// New returns a Parser over tokens, reporting diagnostics to sink.
func New(tokens []token.Token, sink *diag.Sink) *Parser {
	return &Parser{tokens: tokens, sink: sink}
}

// Parse runs `program := declaration* EOF` and returns every top-level
// statement it could recover a tree for.
func (p *Parser) Parse() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.isAtEnd() {
		if s := p.declaration(); s != nil {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

// --- token-stream primitives ---

func (p *Parser) peek() token.Token { return p.tokens[p.current] }

func (p *Parser) previous() token.Token { return p.tokens[p.current-1] }

func (p *Parser) isAtEnd() bool { return p.peek().Kind == token.EOF }

func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) check(kind token.Kind) bool {
	if p.isAtEnd() {
		return kind == token.EOF
	}
	return p.peek().Kind == kind
}

func (p *Parser) matchAny(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(kind token.Kind, msg string) (token.Token, error) {
	if p.check(kind) {
		return p.advance(), nil
	}
	return token.Token{}, p.errorAt(p.peek(), msg)
}

// errorAt reports a diagnostic anchored at tok and returns the
// recoverable sentinel; it always reports immediately so a caller that
// simply propagates the error upward never double-reports.
func (p *Parser) errorAt(tok token.Token, msg string) error {
	p.sink.TokenError(tok, msg)
	return parseError{reported: true}
}

// synchronize discards tokens until a plausible statement boundary:
// a consumed ';' or the next token starting a new declaration.
func (p *Parser) synchronize() {
	p.advance()
	for !p.isAtEnd() {
		if p.previous().Kind == token.Semicolon {
			return
		}
		switch p.peek().Kind {
		case token.Class, token.Fun, token.Var, token.For, token.If,
			token.While, token.Print, token.Return:
			return
		}
		p.advance()
	}
}

// --- declarations ---

func (p *Parser) declaration() ast.Stmt {
	var stmt ast.Stmt
	var err error
	switch {
	case p.matchAny(token.Class):
		stmt, err = p.classDecl()
	case p.matchAny(token.Fun):
		stmt, err = p.funDecl("function")
	case p.matchAny(token.Var):
		stmt, err = p.varDecl()
	default:
		stmt, err = p.statement()
	}
	if err != nil {
		p.synchronize()
		return nil
	}
	return stmt
}

func (p *Parser) classDecl() (ast.Stmt, error) {
	name, err := p.consume(token.Identifier, "Expect class name.")
	if err != nil {
		return nil, err
	}
	var superclass *ast.VariableExpr
	if p.matchAny(token.Less) {
		superName, err := p.consume(token.Identifier, "Expect superclass name.")
		if err != nil {
			return nil, err
		}
		superclass = &ast.VariableExpr{Name: superName}
	}
	if _, err := p.consume(token.LeftBrace, "Expect '{' before class body."); err != nil {
		return nil, err
	}
	var methods []*ast.FunctionStmt
	for !p.check(token.RightBrace) && !p.isAtEnd() {
		m, err := p.method()
		if err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}
	if _, err := p.consume(token.RightBrace, "Expect '}' after class body."); err != nil {
		return nil, err
	}
	return &ast.ClassStmt{Name: name, Superclass: superclass, Methods: methods}, nil
}

// method parses a single class member: either a regular method
// (`name(params) { body }`) or a getter (`name { body }`), the
// supplemented form of SPEC_FULL.md §B.4.
func (p *Parser) method() (*ast.FunctionStmt, error) {
	name, err := p.consume(token.Identifier, "Expect method name.")
	if err != nil {
		return nil, err
	}
	if p.check(token.LeftBrace) {
		body, err := p.blockBody()
		if err != nil {
			return nil, err
		}
		return &ast.FunctionStmt{Name: name, Body: body, IsGetter: true}, nil
	}
	fn, err := p.functionRest(name)
	if err != nil {
		return nil, err
	}
	return fn, nil
}

func (p *Parser) funDecl(kind string) (ast.Stmt, error) {
	name, err := p.consume(token.Identifier, "Expect "+kind+" name.")
	if err != nil {
		return nil, err
	}
	return p.functionRest(name)
}

func (p *Parser) functionRest(name token.Token) (*ast.FunctionStmt, error) {
	if _, err := p.consume(token.LeftParen, "Expect '(' after name."); err != nil {
		return nil, err
	}
	params, err := p.paramList()
	if err != nil {
		return nil, err
	}
	body, err := p.blockBody()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionStmt{Name: name, Params: params, Body: body}, nil
}

func (p *Parser) paramList() ([]token.Token, error) {
	var params []token.Token
	if !p.check(token.RightParen) {
		for {
			if len(params) >= maxArgs {
				p.errorAt(p.peek(), fmt.Sprintf("Can't have more than %d parameters.", maxArgs))
			}
			param, err := p.consume(token.Identifier, "Expect parameter name.")
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			if !p.matchAny(token.Comma) {
				break
			}
		}
	}
	if _, err := p.consume(token.RightParen, "Expect ')' after parameters."); err != nil {
		return nil, err
	}
	return params, nil
}

// blockBody consumes `"{" declaration* "}"` and returns its statements,
// used for function, method, getter and anonymous-function bodies
// (block statements match their '{' in statement and call blockStmts).
func (p *Parser) blockBody() ([]ast.Stmt, error) {
	if _, err := p.consume(token.LeftBrace, "Expect '{' before body."); err != nil {
		return nil, err
	}
	return p.blockStmts()
}

func (p *Parser) blockStmts() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for !p.check(token.RightBrace) && !p.isAtEnd() {
		if s := p.declaration(); s != nil {
			stmts = append(stmts, s)
		}
	}
	if _, err := p.consume(token.RightBrace, "Expect '}' after block."); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *Parser) varDecl() (ast.Stmt, error) {
	name, err := p.consume(token.Identifier, "Expect variable name.")
	if err != nil {
		return nil, err
	}
	var init ast.Expr
	if p.matchAny(token.Equal) {
		init, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.Semicolon, "Expect ';' after variable declaration."); err != nil {
		return nil, err
	}
	return &ast.VarStmt{Name: name, Init: init}, nil
}

// --- statements ---

func (p *Parser) statement() (ast.Stmt, error) {
	switch {
	case p.matchAny(token.For):
		return p.forStmt()
	case p.matchAny(token.If):
		return p.ifStmt()
	case p.matchAny(token.Print):
		return p.printStmt()
	case p.matchAny(token.Return):
		return p.returnStmt()
	case p.matchAny(token.While):
		return p.whileStmt()
	case p.matchAny(token.Break):
		return p.breakStmt()
	case p.matchAny(token.LeftBrace):
		stmts, err := p.blockStmts()
		if err != nil {
			return nil, err
		}
		return &ast.BlockStmt{Stmts: stmts}, nil
	default:
		return p.exprStmt()
	}
}

// forStmt desugars `for(init; cond; incr) body` into a synthetic block
// wrapping a while loop, exactly as spec.md §4.2 specifies.
func (p *Parser) forStmt() (ast.Stmt, error) {
	if _, err := p.consume(token.LeftParen, "Expect '(' after 'for'."); err != nil {
		return nil, err
	}

	var initializer ast.Stmt
	var err error
	switch {
	case p.matchAny(token.Semicolon):
		initializer = nil
	case p.matchAny(token.Var):
		initializer, err = p.varDecl()
	default:
		initializer, err = p.exprStmt()
	}
	if err != nil {
		return nil, err
	}

	var cond ast.Expr
	if !p.check(token.Semicolon) {
		cond, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.Semicolon, "Expect ';' after loop condition."); err != nil {
		return nil, err
	}

	var incr ast.Expr
	if !p.check(token.RightParen) {
		incr, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.RightParen, "Expect ')' after for clauses."); err != nil {
		return nil, err
	}

	p.loopDepth++
	body, err := p.statement()
	p.loopDepth--
	if err != nil {
		return nil, err
	}

	if incr != nil {
		body = &ast.BlockStmt{Stmts: []ast.Stmt{body, &ast.ExpressionStmt{Expr: incr}}}
	}
	if cond == nil {
		cond = &ast.LiteralExpr{Value: true}
	}
	body = &ast.WhileStmt{Cond: cond, Body: body}
	if initializer != nil {
		body = &ast.BlockStmt{Stmts: []ast.Stmt{initializer, body}}
	}
	return body, nil
}

func (p *Parser) ifStmt() (ast.Stmt, error) {
	if _, err := p.consume(token.LeftParen, "Expect '(' after 'if'."); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RightParen, "Expect ')' after if condition."); err != nil {
		return nil, err
	}
	then, err := p.statement()
	if err != nil {
		return nil, err
	}
	var elseBranch ast.Stmt
	if p.matchAny(token.Else) {
		elseBranch, err = p.statement()
		if err != nil {
			return nil, err
		}
	}
	return &ast.IfStmt{Cond: cond, Then: then, Else: elseBranch}, nil
}

func (p *Parser) printStmt() (ast.Stmt, error) {
	value, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.Semicolon, "Expect ';' after value."); err != nil {
		return nil, err
	}
	return &ast.PrintStmt{Expr: value}, nil
}

func (p *Parser) returnStmt() (ast.Stmt, error) {
	keyword := p.previous()
	var value ast.Expr
	var err error
	if !p.check(token.Semicolon) {
		value, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.Semicolon, "Expect ';' after return value."); err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{Keyword: keyword, Value: value}, nil
}

func (p *Parser) whileStmt() (ast.Stmt, error) {
	if _, err := p.consume(token.LeftParen, "Expect '(' after 'while'."); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RightParen, "Expect ')' after condition."); err != nil {
		return nil, err
	}
	p.loopDepth++
	body, err := p.statement()
	p.loopDepth--
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Cond: cond, Body: body}, nil
}

func (p *Parser) breakStmt() (ast.Stmt, error) {
	keyword := p.previous()
	if p.loopDepth == 0 {
		p.errorAt(keyword, "Can't use 'break' outside of a loop.")
	}
	if _, err := p.consume(token.Semicolon, "Expect ';' after 'break'."); err != nil {
		return nil, err
	}
	return &ast.BreakStmt{Keyword: keyword}, nil
}

func (p *Parser) exprStmt() (ast.Stmt, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.Semicolon, "Expect ';' after expression."); err != nil {
		return nil, err
	}
	return &ast.ExpressionStmt{Expr: expr}, nil
}

// --- expressions, lowest to highest precedence ---

func (p *Parser) expression() (ast.Expr, error) {
	return p.assignment()
}

// assignment handles `=` and the supplemented compound-assignment /
// increment/decrement operators (SPEC_FULL.md §B.4), all desugared at
// parse time to an Assign node.
func (p *Parser) assignment() (ast.Expr, error) {
	expr, err := p.ternary()
	if err != nil {
		return nil, err
	}

	if compoundOp, ok := compoundOps[p.peek().Kind]; ok {
		opTok := p.advance()
		rhs, err := p.assignment()
		if err != nil {
			return nil, err
		}
		return p.makeAssign(expr, opTok, &ast.BinaryExpr{Left: expr, Op: token.New(compoundOp, binaryLexeme[compoundOp], nil, opTok.Line), Right: rhs})
	}

	if p.matchAny(token.PlusPlus, token.MinusMinus) {
		opTok := p.previous()
		incrKind := token.Plus
		if opTok.Kind == token.MinusMinus {
			incrKind = token.Minus
		}
		one := &ast.LiteralExpr{Value: 1.0}
		return p.makeAssign(expr, opTok, &ast.BinaryExpr{Left: expr, Op: token.New(incrKind, binaryLexeme[incrKind], nil, opTok.Line), Right: one})
	}

	if p.matchAny(token.Equal) {
		equals := p.previous()
		value, err := p.assignment()
		if err != nil {
			return nil, err
		}
		return p.makeAssign(expr, equals, value)
	}

	return expr, nil
}

var compoundOps = map[token.Kind]token.Kind{
	token.PlusEqual:    token.Plus,
	token.MinusEqual:   token.Minus,
	token.StarEqual:    token.Star,
	token.SlashEqual:   token.Slash,
	token.PercentEqual: token.Percent,
}

var binaryLexeme = map[token.Kind]string{
	token.Plus: "+", token.Minus: "-", token.Star: "*", token.Slash: "/", token.Percent: "%",
}

// makeAssign validates that target is assignable (Variable -> Assign,
// Get -> Set) exactly per spec.md §4.2's assignment semantics: an
// invalid target is reported but parsing continues with target as-is.
func (p *Parser) makeAssign(target ast.Expr, equals token.Token, value ast.Expr) (ast.Expr, error) {
	switch t := target.(type) {
	case *ast.VariableExpr:
		return &ast.AssignExpr{Name: t.Name, Value: value}, nil
	case *ast.GetExpr:
		return &ast.SetExpr{Object: t.Object, Name: t.Name, Value: value}, nil
	default:
		p.errorAt(equals, "Invalid assignment target.")
		return target, nil
	}
}

// ternary is a supplemented precedence level (SPEC_FULL.md §B.4),
// between logic_or and assignment, right-associative.
func (p *Parser) ternary() (ast.Expr, error) {
	cond, err := p.or()
	if err != nil {
		return nil, err
	}
	if p.matchAny(token.Question) {
		then, err := p.ternary()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.Colon, "Expect ':' in ternary expression."); err != nil {
			return nil, err
		}
		elseExpr, err := p.ternary()
		if err != nil {
			return nil, err
		}
		return &ast.TernaryExpr{Cond: cond, Then: then, Else: elseExpr}, nil
	}
	return cond, nil
}

func (p *Parser) or() (ast.Expr, error) {
	expr, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.matchAny(token.Or) {
		op := p.previous()
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		expr = &ast.LogicalExpr{Left: expr, Op: op, Right: right}
	}
	return expr, nil
}

func (p *Parser) and() (ast.Expr, error) {
	expr, err := p.equality()
	if err != nil {
		return nil, err
	}
	for p.matchAny(token.And) {
		op := p.previous()
		right, err := p.equality()
		if err != nil {
			return nil, err
		}
		expr = &ast.LogicalExpr{Left: expr, Op: op, Right: right}
	}
	return expr, nil
}

func (p *Parser) equality() (ast.Expr, error) {
	expr, err := p.comparison()
	if err != nil {
		return nil, err
	}
	for p.matchAny(token.BangEqual, token.EqualEqual) {
		op := p.previous()
		right, err := p.comparison()
		if err != nil {
			return nil, err
		}
		expr = &ast.BinaryExpr{Left: expr, Op: op, Right: right}
	}
	return expr, nil
}

func (p *Parser) comparison() (ast.Expr, error) {
	expr, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.matchAny(token.Greater, token.GreaterEqual, token.Less, token.LessEqual) {
		op := p.previous()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		expr = &ast.BinaryExpr{Left: expr, Op: op, Right: right}
	}
	return expr, nil
}

func (p *Parser) term() (ast.Expr, error) {
	expr, err := p.factor()
	if err != nil {
		return nil, err
	}
	for p.matchAny(token.Minus, token.Plus) {
		op := p.previous()
		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		expr = &ast.BinaryExpr{Left: expr, Op: op, Right: right}
	}
	return expr, nil
}

// factor is parsed left-associatively, per spec.md §9's explicit
// correction of the teacher lineage's right-recursive bug.
func (p *Parser) factor() (ast.Expr, error) {
	expr, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.matchAny(token.Slash, token.Star, token.Percent) {
		op := p.previous()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		expr = &ast.BinaryExpr{Left: expr, Op: op, Right: right}
	}
	return expr, nil
}

func (p *Parser) unary() (ast.Expr, error) {
	if p.matchAny(token.PlusPlus, token.MinusMinus) {
		opTok := p.previous()
		target, err := p.call()
		if err != nil {
			return nil, err
		}
		incrKind := token.Plus
		if opTok.Kind == token.MinusMinus {
			incrKind = token.Minus
		}
		one := &ast.LiteralExpr{Value: 1.0}
		return p.makeAssign(target, opTok, &ast.BinaryExpr{Left: target, Op: token.New(incrKind, binaryLexeme[incrKind], nil, opTok.Line), Right: one})
	}
	if p.matchAny(token.Bang, token.Minus) {
		op := p.previous()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: op, Right: right}, nil
	}
	return p.call()
}

func (p *Parser) call() (ast.Expr, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.matchAny(token.LeftParen):
			expr, err = p.finishCall(expr)
			if err != nil {
				return nil, err
			}
		case p.matchAny(token.Dot):
			name, err := p.consume(token.Identifier, "Expect property name after '.'.")
			if err != nil {
				return nil, err
			}
			expr = &ast.GetExpr{Object: expr, Name: name}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) finishCall(callee ast.Expr) (ast.Expr, error) {
	var args []ast.Expr
	if !p.check(token.RightParen) {
		for {
			if len(args) >= maxArgs {
				p.errorAt(p.peek(), fmt.Sprintf("Can't have more than %d arguments.", maxArgs))
			}
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.matchAny(token.Comma) {
				break
			}
		}
	}
	paren, err := p.consume(token.RightParen, "Expect ')' after arguments.")
	if err != nil {
		return nil, err
	}
	return &ast.CallExpr{Callee: callee, Paren: paren, Args: args}, nil
}

func (p *Parser) primary() (ast.Expr, error) {
	switch {
	case p.matchAny(token.False):
		return &ast.LiteralExpr{Value: false}, nil
	case p.matchAny(token.True):
		return &ast.LiteralExpr{Value: true}, nil
	case p.matchAny(token.Nil):
		return &ast.LiteralExpr{Value: nil}, nil
	case p.matchAny(token.Number, token.String):
		return &ast.LiteralExpr{Value: p.previous().Literal}, nil
	case p.matchAny(token.Super):
		keyword := p.previous()
		if _, err := p.consume(token.Dot, "Expect '.' after 'super'."); err != nil {
			return nil, err
		}
		method, err := p.consume(token.Identifier, "Expect superclass method name.")
		if err != nil {
			return nil, err
		}
		return &ast.SuperExpr{Keyword: keyword, Method: method}, nil
	case p.matchAny(token.This):
		return &ast.ThisExpr{Keyword: p.previous()}, nil
	case p.matchAny(token.Identifier):
		return &ast.VariableExpr{Name: p.previous()}, nil
	case p.matchAny(token.Fun):
		return p.anonFunction()
	case p.matchAny(token.LeftParen):
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RightParen, "Expect ')' after expression."); err != nil {
			return nil, err
		}
		return &ast.GroupingExpr{Inner: expr}, nil
	default:
		return nil, p.errorAt(p.peek(), "Expect expression.")
	}
}

// anonFunction parses the supplemented `fun (params) { body }` primary
// expression (SPEC_FULL.md §B.4).
func (p *Parser) anonFunction() (ast.Expr, error) {
	keyword := p.previous()
	if _, err := p.consume(token.LeftParen, "Expect '(' after 'fun'."); err != nil {
		return nil, err
	}
	params, err := p.paramList()
	if err != nil {
		return nil, err
	}
	body, err := p.blockBody()
	if err != nil {
		return nil, err
	}
	return &ast.AnonFunctionExpr{Keyword: keyword, Params: params, Body: body}, nil
}
