// Package arena implements a bump allocator with mark/rewind, used to own all
// compilation-lifetime data (tokens, AST nodes, interned strings) so the rest of
// the compiler never has to think about individual frees.
//
// Go already garbage-collects, so the arena's job here is not memory safety —
// it is allocation-amortization for parse speculation (mark a cursor, try a
// grammar alternative, rewind on failure) and a single place that owns
// compiler-lifetime byte slices without forcing every AST node to carry its own
// copy.
package arena

import "fmt"

const defaultChunkSize = 64 * 1024

type chunk struct {
	data []byte
	used int
	next *chunk
}

// Arena is a monotonic bump allocator. Zero value is not usable; use New.
type Arena struct {
	first *chunk
	cur   *chunk
}

// New returns a fresh, empty arena.
func New() *Arena {
	return &Arena{}
}

func newChunk(cap int) *chunk {
	if cap < defaultChunkSize {
		cap = defaultChunkSize
	}
	return &chunk{data: make([]byte, cap)}
}

// Alloc returns n bytes of zeroed, pointer-aligned-by-convention storage.
// Go slices are not subject to manual alignment concerns the way the C arena
// was, but we keep chunks sized generously so a single allocation request
// never has to split across chunk boundaries.
func (a *Arena) Alloc(n int) []byte {
	if a.cur == nil || a.cur.used+n > len(a.cur.data) {
		c := newChunk(n)
		if a.cur != nil {
			a.cur.next = c
		} else {
			a.first = c
		}
		a.cur = c
	}
	p := a.cur.data[a.cur.used : a.cur.used+n : a.cur.used+n]
	a.cur.used += n
	return p
}

// Sdup copies s into arena-owned storage.
func (a *Arena) Sdup(s string) string {
	if s == "" {
		return ""
	}
	b := a.Alloc(len(s))
	copy(b, s)
	return string(b)
}

// SdupRange copies s[lo:hi] into arena-owned storage, clamping an inverted
// range to empty rather than panicking — this mirrors arena_xstrdup_range's
// defensive a>b handling in the original C allocator.
func (a *Arena) SdupRange(s string, lo, hi int) string {
	if hi <= lo {
		return ""
	}
	return a.Sdup(s[lo:hi])
}

// Fmt formats into arena-owned storage.
func (a *Arena) Fmt(format string, args ...interface{}) string {
	return a.Sdup(fmt.Sprintf(format, args...))
}

// Mark is an opaque cursor produced by Mark and consumed by Rewind. It is
// only valid as long as no Reset has happened on the same Arena in between.
type Mark struct {
	chunk *chunk
	used  int
}

// Mark returns a cursor that Rewind can later restore to.
func (a *Arena) Mark() Mark {
	if a.cur == nil {
		return Mark{}
	}
	return Mark{chunk: a.cur, used: a.cur.used}
}

// Rewind drops every chunk allocated after m and restores the used-offset of
// m's chunk, making every allocation since m available for reuse. Used by the
// parser to discard a speculative sub-parse.
func (a *Arena) Rewind(m Mark) {
	if m.chunk == nil {
		a.first = nil
		a.cur = nil
		return
	}
	m.chunk.next = nil
	m.chunk.used = m.used
	a.cur = m.chunk
}

// Reset releases every chunk, leaving the Arena empty but still usable.
func (a *Arena) Reset() {
	a.first = nil
	a.cur = nil
}
