// Package runtime embeds the B runtime library bcc emits code against:
// bcc_runtime.h (the word-model macros and function declarations every
// translation unit includes) and bcc_runtime.c (their implementation,
// compiled once per invocation and linked into the final executable).
package runtime

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed bcc_runtime.h
var Header []byte

//go:embed bcc_runtime.c
var Source string

// HeaderName and SourceName are the filenames Extract writes Header and
// Source under; the emitted preamble's #include "bcc_runtime.h" depends on
// HeaderName matching exactly.
const (
	HeaderName = "bcc_runtime.h"
	SourceName = "bcc_runtime.c"
)

// Extract writes the runtime header and source into dir, creating it if
// necessary, and returns their paths. Safe to call repeatedly; it always
// rewrites both files so a stale copy from an older bcc binary can never
// linger in a long-lived directory.
func Extract(dir string) (headerPath, sourcePath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("runtime: create %s: %w", dir, err)
	}

	headerPath = filepath.Join(dir, HeaderName)
	if err := os.WriteFile(headerPath, Header, 0o644); err != nil {
		return "", "", fmt.Errorf("runtime: write %s: %w", headerPath, err)
	}

	sourcePath = filepath.Join(dir, SourceName)
	if err := os.WriteFile(sourcePath, []byte(Source), 0o644); err != nil {
		return "", "", fmt.Errorf("runtime: write %s: %w", sourcePath, err)
	}
	return headerPath, sourcePath, nil
}
