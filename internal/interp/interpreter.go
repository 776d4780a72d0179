// Package interp implements the tree-walking evaluator of spec.md §4.4:
// a second AST walk that mutates an environment chain and emits output,
// using the resolver's scope-depth annotations to find variables
// without re-deriving lexical scope at runtime.
package interp

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/archevan/glox/internal/ast"
	"github.com/archevan/glox/internal/diag"
	"github.com/archevan/glox/internal/resolver"
	"github.com/archevan/glox/internal/token"
)

// Interpreter walks the AST produced by the parser and annotated by the
// resolver. Grounded on archevan-glox/interpreter.go's per-expression
// evaluation switch, isTruthy, stringify, checkNumberOperand(s), and
// executeBlock's save/restore-environment pattern — generalized from
// the teacher's single `resultVal interface{}` field (which conflates
// "no error" with "value is nil") to ordinary (value, error) returns.
type Interpreter struct {
	globals *Environment
	env     *Environment
	locals  resolver.Locals
	out     io.Writer
	sink    *diag.Sink
	log     *logrus.Logger
}

// New returns an Interpreter with its globals pre-populated with the
// built-in native functions (§6) and ready to run stmts annotated by
// locals.
func New(locals resolver.Locals, out io.Writer, sink *diag.Sink, log *logrus.Logger) *Interpreter {
	globals := NewEnvironment(nil)
	registerNatives(globals)
	return &Interpreter{globals: globals, env: globals, locals: locals, out: out, sink: sink, log: log}
}

// Interpret executes each top-level statement in order. A runtime
// error aborts the remaining statements in this call (spec.md §7):
// callers that want "next REPL line keeps going" behavior simply call
// Interpret again per line, which is how the ordinary driver works.
func (in *Interpreter) Interpret(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		_, err := in.executeStmt(stmt)
		if err != nil {
			if rerr, ok := err.(*diag.RuntimeError); ok {
				in.sink.RuntimeErr(rerr)
			}
			return
		}
	}
}

// Stringify converts an evaluated Lox value to its `print`/REPL text
// form (spec.md §4.4 "stringify"). Also used by the `str()` native
// (SPEC_FULL.md §B.4).
func Stringify(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return "nil"
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	case Callable:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// --- expression evaluation ---

func (in *Interpreter) evaluate(e ast.Expr) (interface{}, error) {
	switch n := e.(type) {
	case *ast.LiteralExpr:
		return n.Value, nil
	case *ast.GroupingExpr:
		return in.evaluate(n.Inner)
	case *ast.UnaryExpr:
		return in.evalUnary(n)
	case *ast.BinaryExpr:
		return in.evalBinary(n)
	case *ast.LogicalExpr:
		return in.evalLogical(n)
	case *ast.TernaryExpr:
		return in.evalTernary(n)
	case *ast.VariableExpr:
		return in.lookUpVariable(n.Name, n)
	case *ast.AssignExpr:
		return in.evalAssign(n)
	case *ast.CallExpr:
		return in.evalCall(n)
	case *ast.GetExpr:
		return in.evalGet(n)
	case *ast.SetExpr:
		return in.evalSet(n)
	case *ast.ThisExpr:
		return in.lookUpVariable(n.Keyword, n)
	case *ast.SuperExpr:
		return in.evalSuper(n)
	case *ast.AnonFunctionExpr:
		decl := &ast.FunctionStmt{Params: n.Params, Body: n.Body}
		return NewFunction(decl, in.env, false), nil
	default:
		return nil, fmt.Errorf("interp: unhandled expression type %T", e)
	}
}

func (in *Interpreter) lookUpVariable(name token.Token, expr interface{}) (interface{}, error) {
	if distance, ok := in.locals[expr]; ok {
		return in.env.GetAt(distance, name.Lexeme), nil
	}
	return in.globals.Get(name)
}

func (in *Interpreter) evalUnary(n *ast.UnaryExpr) (interface{}, error) {
	right, err := in.evaluate(n.Right)
	if err != nil {
		return nil, err
	}
	switch n.Op.Kind {
	case token.Minus:
		num, err := in.checkNumberOperand(n.Op, right)
		if err != nil {
			return nil, err
		}
		return -num, nil
	case token.Bang:
		return !isTruthy(right), nil
	}
	return nil, fmt.Errorf("interp: unhandled unary operator %v", n.Op.Kind)
}

func (in *Interpreter) evalBinary(n *ast.BinaryExpr) (interface{}, error) {
	left, err := in.evaluate(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := in.evaluate(n.Right)
	if err != nil {
		return nil, err
	}
	switch n.Op.Kind {
	case token.EqualEqual:
		return isEqual(left, right), nil
	case token.BangEqual:
		return !isEqual(left, right), nil
	case token.Greater, token.GreaterEqual, token.Less, token.LessEqual,
		token.Minus, token.Star, token.Slash, token.Percent:
		l, r, err := in.checkNumberOperands(n.Op, left, right)
		if err != nil {
			return nil, err
		}
		return in.numericBinary(n.Op, l, r)
	case token.Plus:
		return in.evalPlus(n.Op, left, right)
	}
	return nil, fmt.Errorf("interp: unhandled binary operator %v", n.Op.Kind)
}

func (in *Interpreter) numericBinary(op token.Token, l, r float64) (interface{}, error) {
	switch op.Kind {
	case token.Greater:
		return l > r, nil
	case token.GreaterEqual:
		return l >= r, nil
	case token.Less:
		return l < r, nil
	case token.LessEqual:
		return l <= r, nil
	case token.Minus:
		return l - r, nil
	case token.Star:
		return l * r, nil
	case token.Slash:
		if r == 0 {
			return nil, &diag.RuntimeError{Token: op, Msg: "Cannot divide by zero."}
		}
		return l / r, nil
	case token.Percent:
		if r == 0 {
			return nil, &diag.RuntimeError{Token: op, Msg: "Cannot divide by zero."}
		}
		return math.Mod(l, r), nil
	}
	return nil, fmt.Errorf("interp: unhandled numeric operator %v", op.Kind)
}

// evalPlus implements spec.md §4.4's PLUS rule: number+number adds;
// string+anything concatenates by stringifying the other operand
// (SPEC_FULL.md §B.5 pins this as the chosen policy over rejecting
// mixed types).
func (in *Interpreter) evalPlus(op token.Token, left, right interface{}) (interface{}, error) {
	lf, lIsNum := left.(float64)
	rf, rIsNum := right.(float64)
	if lIsNum && rIsNum {
		return lf + rf, nil
	}
	_, lIsStr := left.(string)
	_, rIsStr := right.(string)
	if lIsStr || rIsStr {
		return Stringify(left) + Stringify(right), nil
	}
	return nil, &diag.RuntimeError{Token: op, Msg: "Operands must be two numbers or include a string."}
}

func (in *Interpreter) evalLogical(n *ast.LogicalExpr) (interface{}, error) {
	left, err := in.evaluate(n.Left)
	if err != nil {
		return nil, err
	}
	if n.Op.Kind == token.Or {
		if isTruthy(left) {
			return left, nil
		}
	} else {
		if !isTruthy(left) {
			return left, nil
		}
	}
	return in.evaluate(n.Right)
}

func (in *Interpreter) evalTernary(n *ast.TernaryExpr) (interface{}, error) {
	cond, err := in.evaluate(n.Cond)
	if err != nil {
		return nil, err
	}
	if isTruthy(cond) {
		return in.evaluate(n.Then)
	}
	return in.evaluate(n.Else)
}

func (in *Interpreter) evalAssign(n *ast.AssignExpr) (interface{}, error) {
	val, err := in.evaluate(n.Value)
	if err != nil {
		return nil, err
	}
	if distance, ok := in.locals[n]; ok {
		in.env.AssignAt(distance, n.Name, val)
	} else if err := in.globals.Assign(n.Name, val); err != nil {
		return nil, err
	}
	return val, nil
}

func (in *Interpreter) evalCall(n *ast.CallExpr) (interface{}, error) {
	callee, err := in.evaluate(n.Callee)
	if err != nil {
		return nil, err
	}
	args := make([]interface{}, 0, len(n.Args))
	for _, a := range n.Args {
		val, err := in.evaluate(a)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}
	callable, ok := callee.(Callable)
	if !ok {
		return nil, &diag.RuntimeError{Token: n.Paren, Msg: "Can only call functions and classes."}
	}
	if len(args) != callable.Arity() {
		return nil, &diag.RuntimeError{
			Token: n.Paren,
			Msg:   fmt.Sprintf("Expected %d arguments but got %d.", callable.Arity(), len(args)),
		}
	}
	if in.log != nil {
		in.log.WithField("callee", callable.String()).Trace("calling")
	}
	val, err := callable.Call(in, args)
	if err != nil {
		if _, ok := err.(*diag.RuntimeError); !ok {
			err = &diag.RuntimeError{Token: n.Paren, Msg: err.Error()}
		}
		return nil, err
	}
	return val, nil
}

func (in *Interpreter) evalGet(n *ast.GetExpr) (interface{}, error) {
	obj, err := in.evaluate(n.Object)
	if err != nil {
		return nil, err
	}
	instance, ok := obj.(*Instance)
	if !ok {
		return nil, &diag.RuntimeError{Token: n.Name, Msg: "Only instances have properties."}
	}
	val, err := instance.Get(n.Name)
	if err != nil {
		return nil, err
	}
	if fn, ok := val.(*Function); ok && fn.IsGetter() {
		return fn.Call(in, nil)
	}
	return val, nil
}

func (in *Interpreter) evalSet(n *ast.SetExpr) (interface{}, error) {
	obj, err := in.evaluate(n.Object)
	if err != nil {
		return nil, err
	}
	instance, ok := obj.(*Instance)
	if !ok {
		return nil, &diag.RuntimeError{Token: n.Name, Msg: "Only instances have fields."}
	}
	val, err := in.evaluate(n.Value)
	if err != nil {
		return nil, err
	}
	instance.Set(n.Name, val)
	return val, nil
}

func (in *Interpreter) evalSuper(n *ast.SuperExpr) (interface{}, error) {
	distance, ok := in.locals[n]
	if !ok {
		return nil, &diag.RuntimeError{Token: n.Keyword, Msg: "Can't resolve 'super'."}
	}
	superclass, _ := in.env.GetAt(distance, "super").(*Class)
	instance, _ := in.env.GetAt(distance-1, "this").(*Instance)
	method := superclass.FindMethod(n.Method.Lexeme)
	if method == nil {
		return nil, &diag.RuntimeError{Token: n.Method, Msg: "Undefined property '" + n.Method.Lexeme + "'."}
	}
	return method.Bind(instance), nil
}

// --- statement execution ---

func (in *Interpreter) executeStmt(s ast.Stmt) (execResult, error) {
	switch n := s.(type) {
	case *ast.ExpressionStmt:
		_, err := in.evaluate(n.Expr)
		return normalResult, err
	case *ast.PrintStmt:
		val, err := in.evaluate(n.Expr)
		if err != nil {
			return normalResult, err
		}
		fmt.Fprintln(in.out, Stringify(val))
		return normalResult, nil
	case *ast.VarStmt:
		var val interface{}
		if n.Init != nil {
			v, err := in.evaluate(n.Init)
			if err != nil {
				return normalResult, err
			}
			val = v
		}
		in.env.Define(n.Name.Lexeme, val)
		return normalResult, nil
	case *ast.BlockStmt:
		return in.executeBlock(n.Stmts, NewEnvironment(in.env))
	case *ast.IfStmt:
		return in.executeIf(n)
	case *ast.WhileStmt:
		return in.executeWhile(n)
	case *ast.BreakStmt:
		return execResult{kind: execBreak}, nil
	case *ast.FunctionStmt:
		fn := NewFunction(n, in.env, false)
		in.env.Define(n.Name.Lexeme, fn)
		return normalResult, nil
	case *ast.ReturnStmt:
		var val interface{}
		if n.Value != nil {
			v, err := in.evaluate(n.Value)
			if err != nil {
				return normalResult, err
			}
			val = v
		}
		return execResult{kind: execReturn, value: val}, nil
	case *ast.ClassStmt:
		return in.executeClass(n)
	default:
		return normalResult, fmt.Errorf("interp: unhandled statement type %T", s)
	}
}

func (in *Interpreter) executeIf(n *ast.IfStmt) (execResult, error) {
	cond, err := in.evaluate(n.Cond)
	if err != nil {
		return normalResult, err
	}
	if isTruthy(cond) {
		return in.executeStmt(n.Then)
	}
	if n.Else != nil {
		return in.executeStmt(n.Else)
	}
	return normalResult, nil
}

// executeWhile re-evaluates the condition every iteration (spec.md §9:
// the teacher lineage's `isTruthy(stmt.condition)` bug — checking
// truthiness of the *unevaluated* condition expression — is fixed here
// by evaluating it fresh each time through the loop).
func (in *Interpreter) executeWhile(n *ast.WhileStmt) (execResult, error) {
	for {
		cond, err := in.evaluate(n.Cond)
		if err != nil {
			return normalResult, err
		}
		if !isTruthy(cond) {
			return normalResult, nil
		}
		result, err := in.executeStmt(n.Body)
		if err != nil {
			return normalResult, err
		}
		switch result.kind {
		case execBreak:
			return normalResult, nil
		case execReturn:
			return result, nil
		}
	}
}

func (in *Interpreter) executeClass(n *ast.ClassStmt) (execResult, error) {
	var superclass *Class
	if n.Superclass != nil {
		val, err := in.evaluate(n.Superclass)
		if err != nil {
			return normalResult, err
		}
		sc, ok := val.(*Class)
		if !ok {
			return normalResult, &diag.RuntimeError{Token: n.Superclass.Name, Msg: "Superclass must be a class."}
		}
		superclass = sc
	}

	in.env.Define(n.Name.Lexeme, nil)

	env := in.env
	if superclass != nil {
		env = NewEnvironment(in.env)
		env.Define("super", superclass)
	}

	methods := make(map[string]*Function, len(n.Methods))
	for _, m := range n.Methods {
		methods[m.Name.Lexeme] = NewFunction(m, env, m.Name.Lexeme == "init")
	}

	class := NewClass(n.Name.Lexeme, superclass, methods)
	if err := in.env.Assign(n.Name, class); err != nil {
		return normalResult, err
	}
	return normalResult, nil
}

// executeBlock runs stmts inside env, restoring the previous
// environment on every exit path — normal completion, a break/return
// signal, or a propagated runtime error (spec.md §5's resource-policy
// invariant; grounded on archevan-glox/interpreter.go's executeBlock).
func (in *Interpreter) executeBlock(stmts []ast.Stmt, env *Environment) (execResult, error) {
	previous := in.env
	in.env = env
	defer func() { in.env = previous }()

	for _, stmt := range stmts {
		result, err := in.executeStmt(stmt)
		if err != nil {
			return normalResult, err
		}
		if result.kind != execNormal {
			return result, nil
		}
	}
	return normalResult, nil
}

// --- shared helpers ---

// isTruthy implements spec.md §3's truthiness law: nil and false are
// falsey, everything else is truthy.
func isTruthy(val interface{}) bool {
	if val == nil {
		return false
	}
	if b, ok := val.(bool); ok {
		return b
	}
	return true
}

// isEqual implements spec.md §3's value-equality rule directly as Go
// comparable-interface equality: every runtime Value variant (nil,
// bool, float64, string, *Instance, *Class, Callable) is itself
// comparable, so cross-type comparisons fall out as false for free
// instead of needing reflect.DeepEqual's structural walk.
func isEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a == b
}

func (in *Interpreter) checkNumberOperand(op token.Token, operand interface{}) (float64, error) {
	if num, ok := operand.(float64); ok {
		return num, nil
	}
	return 0, &diag.RuntimeError{Token: op, Msg: "Operand must be a number."}
}

func (in *Interpreter) checkNumberOperands(op token.Token, left, right interface{}) (float64, float64, error) {
	l, lok := left.(float64)
	r, rok := right.(float64)
	if lok && rok {
		return l, r, nil
	}
	return 0, 0, &diag.RuntimeError{Token: op, Msg: "Operands must be numbers."}
}
