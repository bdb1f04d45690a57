// Package driver orchestrates the end-to-end pipeline spec.md §5 and §6
// describe: reading one or more B source files, running them through the
// lexer/parser/analyzer/emitter, and invoking a downstream C compiler to
// produce an executable (or, in one of the dump/emit-only modes, stopping
// earlier and printing an intermediate artifact instead).
package driver

// Options is the fully-resolved set of driver knobs: CLI flags, already
// merged with any -config file by the caller (cmd/bcc), so driver.Run never
// has to know about config precedence itself.
type Options struct {
	Inputs []string
	Output string // -o, default "a.out"

	EmitCStdout bool // -S: emit C to stdout, no compile (single file only)
	EmitAsm     bool // --asm: emit assembly to stdout (single file only)
	CompileOnly bool // -c: compile and keep object file(s), no link
	EmitCToOut  bool // -E: emit C to the file named by -o (single file only)

	KeepC       bool // --keep-c
	EmitCNaming bool // --emit-c (implies KeepC)

	Debug       bool     // -g
	Libs        []string // -l NAME, repeatable
	IncludeDirs []string // from -config's includeDirs; passed as -I to the downstream compiler
	Extra       []string // -X FLAG, repeatable verbatim to downstream compiler

	WarnAll     bool
	WarnNoAll   bool
	WarnExtra   bool
	WarnNoExtra bool
	WarnError   bool

	BytePtr  bool // --byteptr (default true); false selects word-scaled pointers
	WordBits int  // 0 (native), 16, or 32

	DumpTokens bool
	DumpAST    bool
	DumpC      bool

	NoLine        bool // --no-line
	VerboseErrors bool // --verbose-errors
	Verbose       bool // -v

	NoCache      bool   // --no-cache
	CacheDir     string // --cache-dir
	CCMinVersion string // --cc-min-version

	CC string // downstream compiler binary; when empty, Run falls back to $CC, then "cc"
}

// singleFileOnly reports whether opts selects a mode spec.md §6 restricts to
// exactly one input file (-S, --asm, -E, and the dump flags all produce one
// undifferentiated stream of output, which does not make sense fanned out
// over several files at once).
func (o Options) singleFileOnly() bool {
	return o.EmitCStdout || o.EmitAsm || o.EmitCToOut || o.DumpTokens || o.DumpAST || o.DumpC
}
