// Package cache implements the on-disk compile cache (spec SPEC_FULL.md
// §4.8): a blake2b-256 key over a translation unit's source bytes plus
// every codegen-affecting flag, storing the emitted C source as a
// cbor-encoded entry so a later invocation with an identical key can skip
// lexing, parsing, semantic analysis, and emission entirely.
package cache

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

// Key identifies one cacheable compilation: the source bytes hash combined
// with every flag that can change the emitted C for otherwise-identical
// source (spec §4.6.1's word model, plus --byteptr).
type Key struct {
	SourceHash  [32]byte
	PointerByte bool // B_BYTEPTR
	WordBits    int
	NoLine      bool
}

// Digest returns the blake2b-256 hash of the key's fields, used as the
// cache entry's filename.
func (k Key) Digest() [32]byte {
	h, _ := blake2b.New256(nil)
	h.Write(k.SourceHash[:])
	var flags [3]byte
	if k.PointerByte {
		flags[0] = 1
	}
	flags[1] = byte(k.WordBits)
	if k.NoLine {
		flags[2] = 1
	}
	h.Write(flags[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// NewSourceKey hashes source bytes with blake2b-256 for use as Key.SourceHash.
func NewSourceKey(source []byte) [32]byte {
	return blake2b.Sum256(source)
}

// entry is the cbor-encoded payload stored on disk.
type entry struct {
	CSource string `cbor:"c_source"`
}

// Cache reads and writes compile-cache entries under Dir. A zero-value
// Cache with Disabled true never reads or writes, implementing --no-cache.
type Cache struct {
	Dir      string
	Disabled bool
}

// New constructs a Cache rooted at dir. An empty dir disables the cache,
// since there is nowhere safe to write.
func New(dir string, disabled bool) *Cache {
	return &Cache{Dir: dir, Disabled: disabled || dir == ""}
}

// DefaultDir returns $TMPDIR/bcc-cache (os.TempDir()-relative), the
// default cache location per spec §4.8.
func DefaultDir() string {
	return filepath.Join(os.TempDir(), "bcc-cache")
}

func (c *Cache) path(key Key) string {
	digest := key.Digest()
	return filepath.Join(c.Dir, hex.EncodeToString(digest[:])+".cbor")
}

// Lookup returns the cached C source for key, or ok=false on a miss. A
// corrupt or unreadable entry is treated as a miss, never an error: the
// cache is strictly an optimization, so its own failure must never block
// a compile that would otherwise succeed.
func (c *Cache) Lookup(key Key) (source string, ok bool) {
	if c.Disabled {
		return "", false
	}
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return "", false
	}
	var e entry
	if err := cbor.Unmarshal(data, &e); err != nil {
		return "", false
	}
	return e.CSource, true
}

// Store writes cSource under key. Failures are non-fatal to the caller
// (the compile already succeeded); Store reports the error so the driver
// can warn but must not treat it as a compile failure.
func (c *Cache) Store(key Key, cSource string) error {
	if c.Disabled {
		return nil
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("cache: create %s: %w", c.Dir, err)
	}
	data, err := cbor.Marshal(entry{CSource: cSource})
	if err != nil {
		return fmt.Errorf("cache: encode: %w", err)
	}
	return writeAtomic(c.path(key), data)
}

// writeAtomic writes data to a randomly-named temp file in the same
// directory as path, then renames it into place, so a concurrent compiler
// invocation reading path never observes a partially-written entry.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := tempName(dir)
	if err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func tempName(dir string) (string, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", errors.New("cache: could not generate temp name: " + err.Error())
	}
	return filepath.Join(dir, ".tmp-"+hex.EncodeToString(buf[:])), nil
}
