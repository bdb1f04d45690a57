// Package diag implements the compiler's two-letter historical diagnostic codes
// and a verbose, point-and-caret rendering mode, modeled on the teacher
// project's ParseError/DevCmdError shapes.
package diag

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Code is one of the historical two-letter (or two-symbol) diagnostic codes.
type Code string

const (
	CodeStmtSyntax  Code = "sx" // parser expected a statement form
	CodeExprSyntax  Code = "ex" // parser expected an operand or operator
	CodeLvalue      Code = "lv" // assignment/address-of/increment on a non-lvalue
	CodeRedecl      Code = "rd" // duplicate in the same scope
	CodeUndefined   Code = "un" // call target not resolvable to function or variable
	CodeExternSyn   Code = "xx" // bad external definition form
	CodeParenImbal  Code = "()" // unterminated ( ... )
	CodeBracketImb  Code = "[]" // unterminated [ ... ]
	CodeBraceImbal  Code = "{}" // unterminated { ... }
	CodeCommentImb  Code = "*/" // unterminated block comment
	CodeOverflowSym Code = ">s" // symbol table overflow (fatal, reserved)
	CodeOverflowExp Code = ">e" // expression table overflow (fatal, reserved)
	CodeOverflowCas Code = ">c" // case table overflow (fatal, reserved)
	CodeOverflowLbl Code = ">i" // label table overflow (fatal, reserved)
)

var codeDescriptions = map[Code]string{
	CodeStmtSyntax:  "expected a statement",
	CodeExprSyntax:  "expected an operand or operator",
	CodeLvalue:      "not an lvalue",
	CodeRedecl:      "redeclaration",
	CodeUndefined:   "undefined name",
	CodeExternSyn:   "bad external definition",
	CodeParenImbal:  "unterminated parenthesis",
	CodeBracketImb:  "unterminated bracket",
	CodeBraceImbal:  "unterminated brace",
	CodeCommentImb:  "unterminated comment",
	CodeOverflowSym: "symbol table overflow",
	CodeOverflowExp: "expression table overflow",
	CodeOverflowCas: "case table overflow",
	CodeOverflowLbl: "label table overflow",
}

// Pos is a source location: filename plus 1-based line/column.
type Pos struct {
	File string
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// Diagnostic is a single compiler-reported problem.
type Diagnostic struct {
	Code       Code
	Pos        Pos
	Message    string
	Context    string // offending lexeme/identifier, shown in verbose mode
	Suggestion string // optional "did you mean X" fill-in, no surrounding text
	Warning    bool   // true for non-fatal diagnostics (e.g. fallthrough)
}

// Error implements the error interface and always uses the compact
// presentation; Render(true) gives the verbose one.
func (d Diagnostic) Error() string {
	return d.Render(false)
}

// Render formats the diagnostic either compactly ("sx file:line") or verbosely
// as one line ("file:line:col: error: message 'context' (did you mean 'X'?)",
// the context and suggestion parts only when set). The verbose form prints no
// source excerpt and no caret.
func (d Diagnostic) Render(verbose bool) string {
	if !verbose {
		return fmt.Sprintf("%s %s:%d", d.Code, d.Pos.File, d.Pos.Line)
	}

	kind := "error"
	if d.Warning {
		kind = "warning"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s: %s", d.Pos.String(), kind, d.Message)
	if d.Context != "" {
		fmt.Fprintf(&b, " '%s'", d.Context)
	}
	if d.Suggestion != "" {
		fmt.Fprintf(&b, " (did you mean '%s'?)", d.Suggestion)
	}
	return b.String()
}

// New builds a Diagnostic with a description looked up from the code table.
func New(code Code, pos Pos, context string) Diagnostic {
	return Diagnostic{Code: code, Pos: pos, Message: codeDescriptions[code], Context: context}
}

// Newf builds a Diagnostic with a caller-supplied message, overriding the
// code table's canned description — used where the generic description isn't
// specific enough (e.g. "redeclaration of 'x', first declared at file:line").
func Newf(code Code, pos Pos, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Code: code, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Suggest fills in d.Suggestion with the closest candidate to name, if any
// candidate is within fuzzy-match range; candidates is typically "every symbol
// in scope, plus the builtin table". It never changes d.Code or fails
// compilation — it only enriches an already-fatal 'un' diagnostic.
func Suggest(d Diagnostic, name string, candidates []string) Diagnostic {
	best := ""
	bestDist := -1
	for _, c := range candidates {
		if !fuzzy.MatchFold(name, c) && !fuzzy.MatchFold(c, name) {
			continue
		}
		dist := levenshtein(name, c)
		if dist == 0 {
			continue // exact match can't be the cause of an 'un' diagnostic
		}
		if bestDist == -1 || dist < bestDist {
			bestDist, best = dist, c
		}
	}
	// Only offer a suggestion that is plausibly a typo, not a free-association match.
	if best != "" && bestDist <= maxSuggestDistance(name) {
		d.Suggestion = best
	}
	return d
}

func maxSuggestDistance(name string) int {
	if len(name) <= 3 {
		return 1
	}
	return 2
}

// levenshtein computes the classic edit distance; fuzzysearch exposes ranked
// fuzzy matching but not a raw distance, so we compute it ourselves to gate
// "close enough" suggestions.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur := make([]int, len(rb)+1)
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min3(cur[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev = cur
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// SanitizeExcerpt makes a raw source line safe to print to a terminal when it
// is not valid UTF-8 — B source is a byte stream with no encoding guarantee,
// while terminal output is UTF-8. Render does not call it, since diagnostics
// carry no source excerpt. Bytes
// that don't round-trip as UTF-8 are reinterpreted as Latin-1 (the historical
// assumption for 8-bit B source) rather than replaced with U+FFFD, so the
// excerpt stays readable instead of turning into a wall of replacement chars.
func SanitizeExcerpt(line string) string {
	if utf8.ValidString(line) {
		return line
	}
	out, _, err := transform.String(charmap.ISO8859_1.NewDecoder(), line)
	if err != nil {
		return line
	}
	return out
}
