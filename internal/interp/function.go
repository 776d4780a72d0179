package interp

import "github.com/archevan/glox/internal/ast"

// Function is a runtime Callable wrapping an *ast.FunctionStmt together
// with the environment captured at definition time — a closure
// (spec.md §3). Grounded on archevan-glox/loxfunction.go's LoxFunction,
// generalized to: return values (the teacher's call() has a literal
// "TODO: implement return values"), `this`-binding for methods, and
// getter invocation.
type Function struct {
	declaration   *ast.FunctionStmt
	closure       *Environment
	isInitializer bool
}

// NewFunction builds a Function closing over env.
func NewFunction(decl *ast.FunctionStmt, env *Environment, isInitializer bool) *Function {
	return &Function{declaration: decl, closure: env, isInitializer: isInitializer}
}

// Bind returns a copy of f whose closure has `this` bound to instance,
// one scope below the original closure — the mechanism §4.4 calls
// "binding (this -> instance) in a scope inserted between closure and
// call scope."
func (f *Function) Bind(instance *Instance) *Function {
	env := NewEnvironment(f.closure)
	env.Define("this", instance)
	return &Function{declaration: f.declaration, closure: env, isInitializer: f.isInitializer}
}

func (f *Function) Arity() int { return len(f.declaration.Params) }

// IsGetter reports whether f was declared with the supplemented getter
// syntax (SPEC_FULL.md §B.4: a method with no parameter list).
func (f *Function) IsGetter() bool { return f.declaration.IsGetter }

// Call creates a new environment parented on the closure, binds
// parameters to arguments, and executes the body inside a managed
// block, catching the return signal (spec.md §4.4 "Calling a
// function"). A body that completes normally yields Nil, unless this
// is an initializer, which always yields `this`.
func (f *Function) Call(in *Interpreter, args []interface{}) (interface{}, error) {
	env := NewEnvironment(f.closure)
	for i, param := range f.declaration.Params {
		env.Define(param.Lexeme, args[i])
	}
	result, err := in.executeBlock(f.declaration.Body, env)
	if err != nil {
		return nil, err
	}
	if f.isInitializer {
		return f.closure.GetAt(0, "this"), nil
	}
	if result.kind == execReturn {
		return result.value, nil
	}
	return nil, nil
}

func (f *Function) String() string {
	if f.declaration.Name.Lexeme == "" {
		return "<fn anonymous>"
	}
	return "<fn " + f.declaration.Name.Lexeme + ">"
}
