package driver

import (
	"fmt"
	"io"

	"github.com/frankischilling/bcc/internal/ast"
	"github.com/frankischilling/bcc/internal/lexer"
)

// dumpTokens renders one token per line, matching lexer.Token.String()'s
// "kind("lexeme")" form — this is a developer diagnostic, not a stable
// machine-readable format.
func dumpTokens(w io.Writer, toks []lexer.Token) {
	for _, t := range toks {
		fmt.Fprintf(w, "%s:%d:%d: %s\n", t.File, t.Line, t.Col, t.String())
	}
}

// dumpAST renders prog with Go's default struct formatting. Full golden-file
// fidelity isn't the goal here (internal/parser's tests use go-cmp for
// that) — this is --dump-ast's human-facing debug output.
func dumpAST(w io.Writer, prog *ast.Program) {
	fmt.Fprintf(w, "%+v\n", prog)
}
