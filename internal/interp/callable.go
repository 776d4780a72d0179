package interp

// Callable is the protocol shared by user functions, methods, classes
// acting as constructors, and native functions like clock() (spec.md
// §3/glossary). Grounded on archevan-glox/natives.go's LoxCaller
// interface, renamed to match the tagged-variant Value model (§9:
// dispatch on a Go interface satisfied by exactly the runtime's
// callable concrete types, rather than a visitor).
type Callable interface {
	Arity() int
	Call(in *Interpreter, args []interface{}) (interface{}, error)
	String() string
}
