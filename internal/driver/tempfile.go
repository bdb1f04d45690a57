package driver

import (
	"os"
	"path/filepath"
)

// writeTempC writes cSource to a mkstemp-style temporary file (spec §5: "a
// mkstemp-style sequence") next to input, using input's base name as the
// temp-file prefix so --emit-c / --keep-c output reads naturally if kept.
// The caller decides whether to unlink it (compile succeeded, not keeping)
// or retain it (failure, or --keep-c/--emit-c).
func writeTempC(input, cSource string) (path string, cleanup func(), err error) {
	dir := filepath.Dir(input)
	base := filepath.Base(input)
	f, err := os.CreateTemp(dir, base+".*.c")
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	if _, err := f.WriteString(cSource); err != nil {
		os.Remove(f.Name())
		return "", nil, err
	}
	return f.Name(), func() { os.Remove(f.Name()) }, nil
}

// finalCPath returns the C file name --emit-c or --keep-c would retain:
// "<input-without-ext>.c" next to the input.
func finalCPath(input string) string {
	ext := filepath.Ext(input)
	return input[:len(input)-len(ext)] + ".c"
}

// objectPath returns the object file name for input, next to the input.
func objectPath(input string) string {
	ext := filepath.Ext(input)
	return input[:len(input)-len(ext)] + ".o"
}
