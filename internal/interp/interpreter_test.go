package interp_test

import (
	"bytes"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archevan/glox/internal/diag"
	"github.com/archevan/glox/internal/interp"
	"github.com/archevan/glox/internal/parser"
	"github.com/archevan/glox/internal/resolver"
	"github.com/archevan/glox/internal/scanner"
)

// run scans, parses, resolves, and interprets source, returning
// everything written to the shared buffer: `print` output and
// diagnostics alike.
func run(t *testing.T, source string) (string, *diag.Sink) {
	t.Helper()
	var out bytes.Buffer
	sink := diag.New(&out, nil)
	toks := scanner.New(source, sink).ScanTokens()
	stmts := parser.New(toks, sink).Parse()
	if sink.HadError() {
		return out.String(), sink
	}
	locals := resolver.New(sink).Resolve(stmts)
	if sink.HadError() {
		return out.String(), sink
	}
	interp.New(locals, &out, sink, nil).Interpret(stmts)
	return out.String(), sink
}

func TestArithmeticAndPrecedence(t *testing.T) {
	out, sink := run(t, "print 1 + 2 * 3;")
	require.False(t, sink.HadError())
	require.False(t, sink.HadRuntimeError())
	assert.Equal(t, "7\n", out)
}

func TestStringConcatWithNumber(t *testing.T) {
	out, sink := run(t, `print "x=" + 3;`)
	require.False(t, sink.HadError())
	assert.Equal(t, "x=3\n", out)
}

func TestClosuresCaptureByReference(t *testing.T) {
	src := heredoc.Doc(`
		fun makeCounter() {
			var n = 0;
			fun c() {
				n = n + 1;
				return n;
			}
			return c;
		}
		var c = makeCounter();
		print c();
		print c();
		print c();
	`)
	out, sink := run(t, src)
	require.False(t, sink.HadError())
	require.False(t, sink.HadRuntimeError())
	assert.Equal(t, "1\n2\n3\n", out)
}

func TestResolverFixesLateBinding(t *testing.T) {
	src := heredoc.Doc(`
		var a = "global";
		{
			fun show() { print a; }
			show();
			var a = "local";
			show();
		}
	`)
	out, sink := run(t, src)
	require.False(t, sink.HadError())
	assert.Equal(t, "global\nglobal\n", out)
}

func TestSelfInitializerRejectedAtExit65(t *testing.T) {
	_, sink := run(t, "{ var a = a; }")
	assert.True(t, sink.HadError())
}

func TestDivideByZeroRuntimeError(t *testing.T) {
	out, sink := run(t, "print 1/0;")
	assert.True(t, sink.HadRuntimeError())
	assert.Contains(t, out, "Cannot divide by zero.")
}

func TestModuloByZeroRuntimeError(t *testing.T) {
	_, sink := run(t, "print 1 % 0;")
	assert.True(t, sink.HadRuntimeError())
}

func TestBreakOutOfLoop(t *testing.T) {
	src := "var i=0; while (true) { if (i==3) break; i=i+1; } print i;"
	out, sink := run(t, src)
	require.False(t, sink.HadError())
	require.False(t, sink.HadRuntimeError())
	assert.Equal(t, "3\n", out)
}

func TestClassInstanceStringify(t *testing.T) {
	out, sink := run(t, "class P { } var p = P(); print p;")
	require.False(t, sink.HadError())
	assert.Equal(t, "P instance\n", out)
}

func TestEmptyProgramProducesNoOutput(t *testing.T) {
	out, sink := run(t, "")
	assert.False(t, sink.HadError())
	assert.Equal(t, "", out)
}

func TestPrintNil(t *testing.T) {
	out, sink := run(t, "print nil;")
	require.False(t, sink.HadError())
	assert.Equal(t, "nil\n", out)
}

func TestTruthinessLaw(t *testing.T) {
	out, sink := run(t, `print !!nil; print !!false; print !!0; print !!"";`)
	require.False(t, sink.HadError())
	assert.Equal(t, "false\nfalse\ntrue\ntrue\n", out)
}

func TestClassWithInheritanceAndSuperCall(t *testing.T) {
	src := heredoc.Doc(`
		class Animal {
			speak() { return "..."; }
		}
		class Dog < Animal {
			speak() { return "Woof, " + super.speak(); }
		}
		print Dog().speak();
	`)
	out, sink := run(t, src)
	require.False(t, sink.HadError())
	require.False(t, sink.HadRuntimeError())
	assert.Equal(t, "Woof, ...\n", out)
}

func TestGetterMethodInvokedWithoutParens(t *testing.T) {
	src := heredoc.Doc(`
		class Square {
			init(side) { this.side = side; }
			area { return this.side * this.side; }
		}
		print Square(4).area;
	`)
	out, sink := run(t, src)
	require.False(t, sink.HadError())
	assert.Equal(t, "16\n", out)
}

func TestMutableFields(t *testing.T) {
	src := heredoc.Doc(`
		class Box { }
		var b = Box();
		b.value = 1;
		b.value = b.value + 1;
		print b.value;
	`)
	out, sink := run(t, src)
	require.False(t, sink.HadError())
	assert.Equal(t, "2\n", out)
}

func TestTernaryOperator(t *testing.T) {
	out, sink := run(t, `print true ? "yes" : "no"; print false ? "yes" : "no";`)
	require.False(t, sink.HadError())
	assert.Equal(t, "yes\nno\n", out)
}

func TestCompoundAssignmentAndIncrement(t *testing.T) {
	src := heredoc.Doc(`
		var x = 1;
		x += 4;
		x *= 2;
		++x;
		print x;
	`)
	out, sink := run(t, src)
	require.False(t, sink.HadError())
	assert.Equal(t, "11\n", out)
}

func TestAnonymousFunctionIsCallable(t *testing.T) {
	src := heredoc.Doc(`
		var add = fun (a, b) { return a + b; };
		print add(2, 3);
	`)
	out, sink := run(t, src)
	require.False(t, sink.HadError())
	assert.Equal(t, "5\n", out)
}

func TestNativeStringHelpers(t *testing.T) {
	out, sink := run(t, `print len("hello"); print num("3") + 1; print str(true);`)
	require.False(t, sink.HadError())
	assert.Equal(t, "5\n4\ntrue\n", out)
}

func TestEqualityLaw(t *testing.T) {
	out, sink := run(t, `print 1 == 1; print 1 != 1; print "a" == "a"; print "a" == 1;`)
	require.False(t, sink.HadError())
	assert.Equal(t, "true\nfalse\ntrue\nfalse\n", out)
}

func TestUndefinedPropertyRuntimeError(t *testing.T) {
	out, sink := run(t, "class P {} print P().missing;")
	assert.True(t, sink.HadRuntimeError())
	assert.Contains(t, out, "Undefined property 'missing'.")
}

func TestCallArityMismatch(t *testing.T) {
	out, sink := run(t, "fun f(a) { return a; } print f(1, 2);")
	assert.True(t, sink.HadRuntimeError())
	assert.Contains(t, out, "Expected 1 arguments but got 2.")
}
