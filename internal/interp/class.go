package interp

import (
	"github.com/archevan/glox/internal/diag"
	"github.com/archevan/glox/internal/token"
)

// Class is the runtime representation of a Lox class (spec.md §3),
// extended with an optional Superclass (SPEC_FULL.md §B.4) — spec.md's
// class model has no inheritance, but §9 directs implementers to treat
// classes as fully first-class, and inheritance is not in the
// Non-goals list.
type Class struct {
	Name       string
	Superclass *Class
	Methods    map[string]*Function
}

// NewClass returns a Class with the given methods, keyed by name.
func NewClass(name string, superclass *Class, methods map[string]*Function) *Class {
	return &Class{Name: name, Superclass: superclass, Methods: methods}
}

// FindMethod looks up name on c, falling through to the superclass
// chain on miss.
func (c *Class) FindMethod(name string) *Function {
	if fn, ok := c.Methods[name]; ok {
		return fn
	}
	if c.Superclass != nil {
		return c.Superclass.FindMethod(name)
	}
	return nil
}

// Arity is the initializer's arity, or 0 if the class has none — a
// class acts as its own constructor callable (spec.md glossary:
// "classes acting as constructors").
func (c *Class) Arity() int {
	if init := c.FindMethod("init"); init != nil {
		return init.Arity()
	}
	return 0
}

// Call constructs a new Instance and, if the class defines an `init`
// method, runs it bound to the new instance.
func (c *Class) Call(in *Interpreter, args []interface{}) (interface{}, error) {
	instance := NewInstance(c)
	if init := c.FindMethod("init"); init != nil {
		if _, err := init.Bind(instance).Call(in, args); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

func (c *Class) String() string { return c.Name }

// Instance is a runtime Lox object: a class plus mutable fields
// (spec.md §3; SPEC_FULL.md §B.5 resolves fields as read-write).
type Instance struct {
	class  *Class
	fields map[string]interface{}
}

// NewInstance returns a fresh, field-less Instance of class.
func NewInstance(class *Class) *Instance {
	return &Instance{class: class, fields: make(map[string]interface{})}
}

// Get resolves a property: fields shadow methods (spec.md §4.4 "Get").
func (i *Instance) Get(name token.Token) (interface{}, error) {
	if val, ok := i.fields[name.Lexeme]; ok {
		return val, nil
	}
	if method := i.class.FindMethod(name.Lexeme); method != nil {
		return method.Bind(i), nil
	}
	return nil, &diag.RuntimeError{Token: name, Msg: "Undefined property '" + name.Lexeme + "'."}
}

// Set assigns a field, creating it if absent.
func (i *Instance) Set(name token.Token, val interface{}) {
	i.fields[name.Lexeme] = val
}

func (i *Instance) String() string { return i.class.Name + " instance" }
