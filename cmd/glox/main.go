// Command glox is the driver program for the interpreter: given no
// arguments it opens an interactive prompt, given one argument it runs
// that file as a script, and given more it reports a usage error.
// Grounded on archevan-glox/main.go's run/runFile/runPrompt shape,
// generalized to drive the new internal/scanner -> internal/parser ->
// internal/resolver -> internal/interp pipeline through a shared
// internal/diag.Sink instead of a package-level hasError bool.
package main

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/chzyer/readline"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	formatter "github.com/t-tomalak/logrus-easy-formatter"

	"github.com/archevan/glox/internal/ast"
	"github.com/archevan/glox/internal/astprint"
	"github.com/archevan/glox/internal/diag"
	"github.com/archevan/glox/internal/interp"
	"github.com/archevan/glox/internal/parser"
	"github.com/archevan/glox/internal/resolver"
	"github.com/archevan/glox/internal/scanner"
)

var (
	verbose  bool
	printAST bool
	version  = "v0.1.0"
)

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.Out = os.Stderr
	log.Level = logrus.WarnLevel
	if verbose {
		log.Level = logrus.TraceLevel
	}
	log.Formatter = &formatter.Formatter{
		LogFormat: "[%lvl%] %msg%\n",
	}
	return log
}

// run executes one unit of source (a whole file, or one REPL line)
// through sink, writing `print` output to stdout and every diagnostic
// (scan/parse/resolve/runtime) to stderr — stdout carries only
// program output (spec.md §6: "Standard output. Only `print`
// statements emit to stdout.").
func run(sink *diag.Sink, source string, log *logrus.Logger) {
	toks := scanner.New(source, sink).ScanTokens()
	stmts := parser.New(toks, sink).Parse()
	if sink.HadError() {
		return
	}

	if printAST {
		for _, s := range stmts {
			if es, ok := s.(*ast.ExpressionStmt); ok {
				fmt.Fprintln(os.Stderr, astprint.Print(es.Expr))
			}
		}
	}

	locals := resolver.New(sink).Resolve(stmts)
	if sink.HadError() {
		return
	}

	interp.New(locals, os.Stdout, sink, log).Interpret(stmts)
}

func runFile(path string, log *logrus.Logger) int {
	contents, err := ioutil.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Can't open file at %q.\n", path)
		return 74
	}

	sink := diag.New(os.Stderr, log)
	run(sink, string(contents), log)
	if sink.HadError() {
		log.WithError(sink.Errors()).Debug("compile diagnostics")
	}

	switch {
	case sink.HadRuntimeError():
		return 70
	case sink.HadError():
		return 65
	default:
		return 0
	}
}

func runPrompt(log *logrus.Logger) int {
	rl, err := readline.New("> ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Can't start the interactive prompt.")
		return 74
	}
	defer rl.Close()

	sink := diag.New(os.Stderr, log)
	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or interrupt
			return 0
		}
		if line == "" {
			continue
		}
		run(sink, line, log)
		sink.Reset() // one bad line shouldn't end the session (spec.md §6)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "glox [script]",
		Short:         "glox is a tree-walking interpreter",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()

			if len(args) > 1 {
				fmt.Println("Usage: jlox [script]")
				os.Exit(64)
			}

			var code int
			if len(args) == 1 {
				code = runFile(args[0], log)
			} else {
				code = runPrompt(log)
			}
			if code != 0 {
				os.Exit(code)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "trace scanner/parser/interpreter activity to stderr")
	cmd.Flags().BoolVar(&printAST, "ast", false, "print each top-level expression's parenthesized AST to stderr before executing")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
