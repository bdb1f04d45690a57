package emit

import (
	"fmt"
	"strings"
)

// preamble renders the start of a translation unit: a banner, the
// B_BYTEPTR and WORD_BITS defines, and the #include of bcc_runtime.h. The
// word-model typedefs and arithmetic macros of spec §4.6.1, the B_*
// accessors and the b_* entry points all come from that header (package
// runtime); this preamble only fixes the two compile-time switches for this
// translation unit so the header can branch on them.
func preamble(opts Options) string {
	var b strings.Builder
	b.WriteString("/* generated by bcc; do not edit */\n")
	fmt.Fprintf(&b, "#define B_BYTEPTR %d\n", opts.bBytePtrMacro())
	fmt.Fprintf(&b, "#define WORD_BITS %d\n", opts.WordBits)
	b.WriteString("#include \"bcc_runtime.h\"\n\n")
	return b.String()
}

func lineDirective(opts Options, line int) string {
	if opts.NoLine {
		return ""
	}
	return fmt.Sprintf("#line %d %q\n", line, opts.SourceFile)
}
