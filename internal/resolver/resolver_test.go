package resolver_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archevan/glox/internal/diag"
	"github.com/archevan/glox/internal/parser"
	"github.com/archevan/glox/internal/resolver"
	"github.com/archevan/glox/internal/scanner"
)

func resolve(t *testing.T, source string) (resolver.Locals, *diag.Sink) {
	t.Helper()
	var buf bytes.Buffer
	sink := diag.New(&buf, nil)
	toks := scanner.New(source, sink).ScanTokens()
	stmts := parser.New(toks, sink).Parse()
	locals := resolver.New(sink).Resolve(stmts)
	return locals, sink
}

func TestSelfInitializerRejected(t *testing.T) {
	_, sink := resolve(t, "{ var a = a; }")
	assert.True(t, sink.HadError())
}

func TestShadowingInNestedScopeIsAllowed(t *testing.T) {
	_, sink := resolve(t, `
		var a = "global";
		{ var a = "local"; print a; }
	`)
	assert.False(t, sink.HadError())
}

func TestRedeclarationInSameScopeReportsError(t *testing.T) {
	_, sink := resolve(t, "{ var a = 1; var a = 2; }")
	assert.True(t, sink.HadError())
}

func TestGlobalRedeclarationIsAllowed(t *testing.T) {
	_, sink := resolve(t, "var a = 1; var a = 2;")
	assert.False(t, sink.HadError())
}

func TestReturnOutsideFunctionReportsError(t *testing.T) {
	_, sink := resolve(t, "return 1;")
	assert.True(t, sink.HadError())
}

func TestReturnValueFromInitializerReportsError(t *testing.T) {
	_, sink := resolve(t, `
		class Foo {
			init() { return 1; }
		}
	`)
	assert.True(t, sink.HadError())
}

func TestThisOutsideClassReportsError(t *testing.T) {
	_, sink := resolve(t, "print this;")
	assert.True(t, sink.HadError())
}

func TestSuperOutsideClassReportsError(t *testing.T) {
	_, sink := resolve(t, "print super.x;")
	assert.True(t, sink.HadError())
}

func TestLocalVariableResolvesToNonZeroDistance(t *testing.T) {
	// `n` read inside the nested function is one environment below the
	// block that declares it.
	locals, sink := resolve(t, `
		{
			var n = 0;
			fun show() { print n; }
		}
	`)
	require.False(t, sink.HadError())
	assert.NotEmpty(t, locals)
	for _, distance := range locals {
		assert.Equal(t, 1, distance)
	}
}
