package interp

import (
	"github.com/archevan/glox/internal/diag"
	"github.com/archevan/glox/internal/token"
)

// Environment is a mapping of lexeme to Value plus an optional back-
// reference to an enclosing scope (spec.md §3). Grounded on
// archevan-glox/environment.go, generalized with GetAt/AssignAt so the
// interpreter can use the resolver's scope-distance annotations instead
// of always walking the chain from the innermost scope.
type Environment struct {
	enclosing *Environment
	bindings  map[string]interface{}
}

// NewEnvironment returns a freshly initialized Environment whose parent
// is enclosing (nil for the global environment).
func NewEnvironment(enclosing *Environment) *Environment {
	return &Environment{enclosing: enclosing, bindings: make(map[string]interface{})}
}

// Define binds name to val in this environment, overwriting any
// existing binding (redeclaration is legal at the top level).
func (e *Environment) Define(name string, val interface{}) {
	e.bindings[name] = val
}

// Get looks up name in this environment and, on miss, the enclosing
// chain; it reports spec.md's "Undefined variable" diagnostic if the
// chain is exhausted.
func (e *Environment) Get(name token.Token) (interface{}, error) {
	if val, ok := e.bindings[name.Lexeme]; ok {
		return val, nil
	}
	if e.enclosing != nil {
		return e.enclosing.Get(name)
	}
	return nil, &diag.RuntimeError{Token: name, Msg: "Undefined variable '" + name.Lexeme + "'."}
}

// Assign rebinds name in this environment or, on miss, the enclosing
// chain; it reports an "Undefined variable" diagnostic if no binding
// exists anywhere in the chain (Lox assignment never implicitly
// declares a new global).
func (e *Environment) Assign(name token.Token, val interface{}) error {
	if _, ok := e.bindings[name.Lexeme]; ok {
		e.bindings[name.Lexeme] = val
		return nil
	}
	if e.enclosing != nil {
		return e.enclosing.Assign(name, val)
	}
	return &diag.RuntimeError{Token: name, Msg: "Undefined variable '" + name.Lexeme + "'."}
}

// ancestor walks exactly distance environments up the chain. The
// resolver guarantees (spec.md §3 invariant) that such a chain exists
// whenever it hands back a non-negative distance.
func (e *Environment) ancestor(distance int) *Environment {
	env := e
	for i := 0; i < distance; i++ {
		env = env.enclosing
	}
	return env
}

// GetAt reads name from the ancestor environment `distance` links up.
func (e *Environment) GetAt(distance int, name string) interface{} {
	return e.ancestor(distance).bindings[name]
}

// AssignAt rebinds name in the ancestor environment `distance` links up.
func (e *Environment) AssignAt(distance int, name token.Token, val interface{}) {
	e.ancestor(distance).bindings[name.Lexeme] = val
}
