// Package builtins holds the seed table of runtime-library names that are
// pre-installed in global scope so B source can call them without a source
// declaration, and the parallel table of well-known C-standard functions the
// emitter wraps specially when B code calls them directly.
package builtins

// Names lists every builtin the semantic analyzer installs into global
// scope before checking any function body.
var Names = []string{
	"print", "putchar", "getchar", "printf",
	"open", "close", "read", "write",
	"fork", "wait", "execl", "execv",
	"stat", "fstat", "chmod", "chown", "link", "unlink",
	"time", "ctime", "getuid", "setuid",
	"makdir", "intr", "chdir",
	"char", "lchar", "getchr", "putchr", "getstr", "putstr",
	"flush", "reread", "printn", "putnum",
	"exit", "abort", "free", "alloc",
	"system", "callf",
	"argc", "argv",
	"gtty", "stty", "usleep",
}

// Set is Names as a membership set.
var Set = func() map[string]bool {
	m := make(map[string]bool, len(Names))
	for _, n := range Names {
		m[n] = true
	}
	return m
}()

// IsBuiltin reports whether name is a pre-installed runtime builtin.
func IsBuiltin(name string) bool { return Set[name] }

// CFuncWrap describes how the emitter wraps a direct call to a well-known
// C-standard function: which arguments need B-pointer-to-native conversion,
// whether the return value is a pointer needing the reverse conversion, and
// whether a size argument is word-scaled in word-addressed pointer mode.
type CFuncWrap struct {
	Name          string
	ReturnsPtr    bool  // malloc/realloc/calloc: result wrapped with B_PTR
	PtrArgs       []int // 0-based argument indices wrapped with B_CPTR
	ScaledSizeArg int   // -1 if none; else the argument index scaled by sizeof(word) in word mode
	FormatArg     int   // -1 if none; else the printf-style format-string argument index
}

// CFuncs is keyed by the C function name B source calls directly.
var CFuncs = map[string]CFuncWrap{
	"malloc":   {Name: "malloc", ReturnsPtr: true, ScaledSizeArg: 0, FormatArg: -1},
	"realloc":  {Name: "realloc", ReturnsPtr: true, PtrArgs: []int{0}, ScaledSizeArg: 1, FormatArg: -1},
	"calloc":   {Name: "calloc", ReturnsPtr: true, ScaledSizeArg: 1, FormatArg: -1},
	"strlen":   {Name: "strlen", PtrArgs: []int{0}, ScaledSizeArg: -1, FormatArg: -1},
	"memcpy":   {Name: "memcpy", PtrArgs: []int{0, 1}, ScaledSizeArg: 2, FormatArg: -1},
	"memset":   {Name: "memset", PtrArgs: []int{0}, ScaledSizeArg: 2, FormatArg: -1},
	"memmove":  {Name: "memmove", PtrArgs: []int{0, 1}, ScaledSizeArg: 2, FormatArg: -1},
	"tcgetattr": {Name: "tcgetattr", PtrArgs: []int{1}, ScaledSizeArg: -1, FormatArg: -1},
	"tcsetattr": {Name: "tcsetattr", PtrArgs: []int{2}, ScaledSizeArg: -1, FormatArg: -1},
	"ioctl":    {Name: "ioctl", PtrArgs: []int{2}, ScaledSizeArg: -1, FormatArg: -1},
	"atoi":     {Name: "atoi", PtrArgs: []int{0}, ScaledSizeArg: -1, FormatArg: -1},
	"printf":   {Name: "printf", ScaledSizeArg: -1, FormatArg: 0},
	"fprintf":  {Name: "fprintf", ScaledSizeArg: -1, FormatArg: 1},
	"dprintf":  {Name: "dprintf", ScaledSizeArg: -1, FormatArg: 1},
	"sprintf":  {Name: "sprintf", PtrArgs: []int{0}, ScaledSizeArg: -1, FormatArg: 1},
	"snprintf": {Name: "snprintf", PtrArgs: []int{0}, ScaledSizeArg: -1, FormatArg: 2},
}

// IsCFunc reports whether name is one of the specially-wrapped direct
// C-standard calls.
func IsCFunc(name string) (CFuncWrap, bool) {
	w, ok := CFuncs[name]
	return w, ok
}
