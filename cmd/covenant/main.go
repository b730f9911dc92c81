// Command covenant is a thin wrapper around internal/pipeline, in the
// shape of funxy's own cmd/funxy: it reads input, runs the pipeline, and
// prints results. Since the concrete Covenant lexer/parser stays out of
// scope (spec.md §1), input here is pre-parsed snippet-IR JSON rather than
// Covenant source text.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/cyrusattoun/covenant/internal/diagnostics"
	"github.com/cyrusattoun/covenant/internal/embed"
	"github.com/cyrusattoun/covenant/internal/ir"
	"github.com/cyrusattoun/covenant/internal/pipeline"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s [-emit=ir] <snippet-ir.json>\n", os.Args[0])
		os.Exit(2)
	}

	emitIR := false
	path := ""
	for _, arg := range os.Args[1:] {
		if arg == "-emit=ir" || arg == "--emit=ir" {
			emitIR = true
			continue
		}
		path = arg
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "usage: covenant [-emit=ir] <snippet-ir.json>")
		os.Exit(2)
	}

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "covenant: %s\n", err)
		os.Exit(1)
	}

	program, err := DecodeProgram(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "covenant: %s\n", err)
		os.Exit(1)
	}

	ctx := pipeline.Default().Run(pipeline.NewContext(program))

	errs := ctx.SortedErrors()
	printDiagnostics(os.Stderr, errs)

	if emitIR {
		if err := printIR(os.Stdout, ctx.Lowered); err != nil {
			fmt.Fprintf(os.Stderr, "covenant: %s\n", err)
			os.Exit(1)
		}
	} else {
		records := embed.Build(ctx.Graph, ctx.Closures)
		out, err := embed.Marshal(records)
		if err != nil {
			fmt.Fprintf(os.Stderr, "covenant: %s\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(out)
		fmt.Fprintln(os.Stdout)
	}

	if diagnostics.HasHardError(errs) {
		os.Exit(1)
	}
}

// colorize reports whether diagnostic output should carry ANSI codes,
// mirroring how funxy's evaluator (builtins_term.go) decides whether the
// terminal supports color before emitting escape sequences.
func colorize() bool {
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}

func printDiagnostics(w io.Writer, errs []*diagnostics.DiagnosticError) {
	color := colorize()
	for _, e := range errs {
		label := e.Code.Severity().String()
		if color {
			switch e.Code.Severity() {
			case diagnostics.SeverityHard:
				label = "\033[31m" + label + "\033[0m"
			case diagnostics.SeveritySoft:
				label = "\033[33m" + label + "\033[0m"
			case diagnostics.SeverityWarning:
				label = "\033[36m" + label + "\033[0m"
			}
		}
		fmt.Fprintf(w, "%s[%d:%d] %s\n", label, e.Span.Start, e.Span.End, e.Error())
	}
}

func printIR(w io.Writer, lowered map[string]*ir.Function) error {
	out, err := ir.MarshalFunctions(lowered)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	if err == nil {
		fmt.Fprintln(w)
	}
	return err
}
