package driver

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/frankischilling/bcc/runtime"
)

// runtimeBuild is the extracted header/source pair and its compiled object
// for one flag combination. The object is keyed by pointer model and word
// width because bcc_runtime.c's behavior (byte vs. word addressing, wrapped
// arithmetic) depends on the same two macros the emitted C is built with.
type runtimeBuild struct {
	headerDir string
	objPath   string
}

// prepareRuntime extracts the embedded runtime library into dir and
// compiles it to an object file with the same B_BYTEPTR/WORD_BITS macros
// opts selects, skipping the compile step if a matching object is already
// there from an earlier invocation.
func prepareRuntime(cc string, opts Options, dir string, stdout, stderr io.Writer) (*runtimeBuild, error) {
	flagTag := fmt.Sprintf("bp%d-wb%d", bytePtrMacro(opts), opts.WordBits)
	runtimeDir := filepath.Join(dir, "runtime-"+flagTag)

	_, sourcePath, err := runtime.Extract(runtimeDir)
	if err != nil {
		return nil, err
	}

	objPath := filepath.Join(runtimeDir, runtime.SourceName+".o")
	if _, statErr := os.Stat(objPath); statErr == nil {
		return &runtimeBuild{headerDir: runtimeDir, objPath: objPath}, nil
	}

	args := []string{
		fmt.Sprintf("-DB_BYTEPTR=%d", bytePtrMacro(opts)),
		fmt.Sprintf("-DWORD_BITS=%d", opts.WordBits),
		"-c", sourcePath, "-o", objPath,
	}
	code, err := runCC(cc, args, stdout, stderr)
	if err != nil {
		return nil, err
	}
	if code != 0 {
		return nil, fmt.Errorf("compiling runtime library exited %d", code)
	}
	return &runtimeBuild{headerDir: runtimeDir, objPath: objPath}, nil
}

func bytePtrMacro(opts Options) int {
	if opts.BytePtr {
		return 1
	}
	return 0
}
