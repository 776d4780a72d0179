package interp

import (
	"fmt"
	"strconv"
	"time"
)

// nativeFunc adapts a plain Go function into the Callable protocol for
// the handful of built-in globals (spec.md §6; SPEC_FULL.md §B.4's
// supplemented string/number/length helpers). Grounded on
// archevan-glox/natives.go's GlobalFunctionClock/LoxCaller shape,
// generalized from one hand-written type per native into a single
// reusable adapter.
type nativeFunc struct {
	name string
	fn   func(args []interface{}) (interface{}, error)
	n    int
}

func (n *nativeFunc) Arity() int { return n.n }

func (n *nativeFunc) Call(_ *Interpreter, args []interface{}) (interface{}, error) {
	return n.fn(args)
}

func (n *nativeFunc) String() string { return "<native fn>" }

// registerNatives binds every built-in global into env.
func registerNatives(env *Environment) {
	env.Define("clock", &nativeFunc{
		name: "clock",
		n:    0,
		fn: func(args []interface{}) (interface{}, error) {
			return float64(time.Now().UnixNano()) / float64(time.Second), nil
		},
	})
	env.Define("str", &nativeFunc{
		name: "str",
		n:    1,
		fn: func(args []interface{}) (interface{}, error) {
			return Stringify(args[0]), nil
		},
	})
	env.Define("num", &nativeFunc{
		name: "num",
		n:    1,
		fn: func(args []interface{}) (interface{}, error) {
			switch v := args[0].(type) {
			case float64:
				return v, nil
			case string:
				f, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return nil, fmt.Errorf("num(): %q is not a valid number", v)
				}
				return f, nil
			default:
				return nil, fmt.Errorf("num(): cannot convert %T to a number", v)
			}
		},
	})
	env.Define("len", &nativeFunc{
		name: "len",
		n:    1,
		fn: func(args []interface{}) (interface{}, error) {
			s, ok := args[0].(string)
			if !ok {
				return nil, fmt.Errorf("len(): argument must be a string")
			}
			return float64(len(s)), nil
		},
	})
}
