// Package diag implements the diagnostics sink described in spec.md §7:
// an explicit collaborator that receives compile-time and runtime
// diagnostics and tracks whether any occurred, replacing the teacher's
// package-level `hasError` bool (spec.md §9 design note).
package diag

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/archevan/glox/internal/token"
)

// RuntimeError is the interpreter's one error kind (spec.md §4.4/§7):
// an offending token plus a message. It implements `error` so it can be
// propagated with Go's ordinary (value, error) idiom through the
// evaluator and statement executor.
type RuntimeError struct {
	Token token.Token
	Msg   string
}

func (r *RuntimeError) Error() string {
	return r.Msg
}

// Sink accumulates diagnostics for one Run (one file execution, or one
// REPL line) and formats them exactly as spec.md §6 mandates.
type Sink struct {
	out     io.Writer
	errs    *multierror.Error
	hadErr  bool
	hadRunt bool
	log     *logrus.Logger
}

// New returns a Sink that writes formatted diagnostics to w.
func New(w io.Writer, log *logrus.Logger) *Sink {
	return &Sink{out: w, log: log}
}

// HadError reports whether any compile-time (scan/parse/resolve)
// diagnostic has been recorded since the last Reset.
func (s *Sink) HadError() bool { return s.hadErr }

// HadRuntimeError reports whether a runtime error has been recorded
// since the last Reset.
func (s *Sink) HadRuntimeError() bool { return s.hadRunt }

// Reset clears both flags and the accumulated diagnostics. Called by
// the REPL (cmd/glox) after every line so one bad line's error flag
// doesn't carry into the next.
func (s *Sink) Reset() {
	s.errs = nil
	s.hadErr = false
	s.hadRunt = false
}

// ScanError reports a scanner diagnostic: `[line N] Error: MESSAGE`.
func (s *Sink) ScanError(line int, msg string) {
	s.report(fmt.Sprintf("[line %d] Error: %s", line, msg))
}

// TokenError reports a parser/resolver diagnostic anchored at a token:
// `[line N] Error at 'LEXEME': MESSAGE` or `at end` for EOF.
func (s *Sink) TokenError(tok token.Token, msg string) {
	where := fmt.Sprintf("at '%s'", tok.Lexeme)
	if tok.Kind == token.EOF {
		where = "at end"
	}
	s.report(fmt.Sprintf("[line %d] Error %s: %s", tok.Line, where, msg))
}

// RuntimeErr reports a runtime diagnostic: `RuntimeError [line N]: MESSAGE`.
func (s *Sink) RuntimeErr(err *RuntimeError) {
	fmt.Fprintf(s.out, "RuntimeError [line %d]: %s\n", err.Token.Line, err.Msg)
	s.hadRunt = true
	if s.log != nil {
		s.log.WithField("line", err.Token.Line).Debug("runtime error reported")
	}
}

func (s *Sink) report(line string) {
	fmt.Fprintln(s.out, line)
	s.errs = multierror.Append(s.errs, fmt.Errorf("%s", line))
	s.hadErr = true
	if s.log != nil {
		s.log.WithField("diagnostic", line).Debug("compile diagnostic reported")
	}
}

// Errors returns every compile-time diagnostic recorded since the last
// Reset, aggregated via go-multierror. cmd/glox logs this at debug
// level after a failed run so the full list (not just the text already
// echoed to stderr) reaches anyone tracing with --verbose.
func (s *Sink) Errors() error {
	if s.errs == nil {
		return nil
	}
	return s.errs.ErrorOrNil()
}
