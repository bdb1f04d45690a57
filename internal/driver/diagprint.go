package driver

import (
	"fmt"
	"io"

	"github.com/frankischilling/bcc/internal/diag"
	"github.com/frankischilling/bcc/internal/lexer"
	"github.com/frankischilling/bcc/internal/parser"
	"github.com/frankischilling/bcc/internal/sem"
)

// asDiagnostic unwraps one of the pipeline's typed errors down to the
// underlying diag.Diagnostic, so the driver has one place that knows about
// --verbose-errors vs. the two-letter compact form, instead of every stage
// formatting its own errors.
func asDiagnostic(err error) (diag.Diagnostic, bool) {
	switch e := err.(type) {
	case *lexer.Error:
		return e.Diag, true
	case *parser.Error:
		return e.Diag, true
	case *sem.Error:
		return e.Diag, true
	default:
		return diag.Diagnostic{}, false
	}
}

// printError renders err to w: a known pipeline diagnostic is rendered
// compactly or verbosely per verbose; anything else (I/O errors, tooling
// errors from internal/config or internal/cache) is printed as plain text.
func printError(w io.Writer, err error, verbose bool) {
	if d, ok := asDiagnostic(err); ok {
		fmt.Fprintln(w, d.Render(verbose))
		return
	}
	fmt.Fprintf(w, "bcc: %s\n", err.Error())
}

func printWarnings(l *logger, warnings []*sem.Warning, verbose bool) {
	for _, w := range warnings {
		l.Warn(w.Diag.Render(verbose))
	}
}
