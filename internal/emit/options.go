// Package emit lowers a checked ast.Program into a single C translation unit
// that links against the runtime library in package runtime. It owns the
// word model, the string literal pool, name mangling, storage layout, and
// the expression/statement/switch lowering rules in spec §4.6.
package emit

// Options selects the two compile-time switches spec §4.6.1 describes, plus
// the driver-level knobs that affect emitted text without affecting runtime
// semantics.
type Options struct {
	// BytePtr selects the pointer model: true means B pointer values are
	// native byte addresses (B_BYTEPTR=1, the default); false means they are
	// word-scaled Thompson-B addresses (B_BYTEPTR=0).
	BytePtr bool

	// WordBits is 0 (host-native, no wrapping), 16, or 32.
	WordBits int

	// NoLine suppresses #line directives that would otherwise map emitted C
	// back to B source locations.
	NoLine bool

	// SourceFile is the B source path, used for #line directives.
	SourceFile string
}

// wordByteWidth returns sizeof(word) in bytes for packing the string pool and
// scaling pointer arithmetic: the wrapped widths are exact, host-native mode
// assumes a 64-bit pointer-sized word (the modern host this compiler targets).
func (o Options) wordByteWidth() int {
	switch o.WordBits {
	case 16:
		return 2
	case 32:
		return 4
	default:
		return 8
	}
}

func (o Options) bBytePtrMacro() int {
	if o.BytePtr {
		return 1
	}
	return 0
}
