package emit

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// stringPool interns B string literals during the preliminary walk of
// spec §4.6.2. Interning is keyed by a blake2b-256 hash of the literal's
// byte content so two textually identical literals anywhere in the
// translation unit share one packed array, matching "each interned string
// is emitted once".
type stringPool struct {
	order  []string
	byHash map[[32]byte]int
}

func newStringPool() *stringPool {
	return &stringPool{byHash: make(map[[32]byte]int)}
}

// Intern records s if not already present and returns its pool index.
func (p *stringPool) Intern(s string) int {
	h := blake2b.Sum256([]byte(s))
	if idx, ok := p.byHash[h]; ok {
		return idx
	}
	idx := len(p.order)
	p.order = append(p.order, s)
	p.byHash[h] = idx
	return idx
}

// CName is the generated C identifier for the pool entry at idx.
func (p *stringPool) CName(idx int) string {
	return fmt.Sprintf("__b_str%d", idx)
}

// packWords packs a B string into words per spec §4.6.2: byte 0 of the
// payload sits in the least significant byte of word 0, extending to higher
// bytes then higher words; the payload is terminated by the sentinel byte
// 004 and the final word is zero-padded.
func packWords(s string, wordBytes int) []uint64 {
	payload := append([]byte(s), 0x04)
	n := (len(payload) + wordBytes - 1) / wordBytes
	words := make([]uint64, n)
	for i, b := range payload {
		words[i/wordBytes] |= uint64(b) << (8 * uint(i%wordBytes))
	}
	return words
}

// EmitDecls renders every interned string as a static packed word array, in
// interning order (so pool indices stay stable across emission passes).
func (p *stringPool) EmitDecls(wordBytes int) string {
	var b strings.Builder
	for i, s := range p.order {
		words := packWords(s, wordBytes)
		fmt.Fprintf(&b, "static const word %s[%d] = {", p.CName(i), len(words))
		for j, w := range words {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "(word)0x%xULL", w)
		}
		b.WriteString("};\n")
	}
	return b.String()
}
