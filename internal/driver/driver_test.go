package driver

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/frankischilling/bcc/internal/diag"
	"github.com/frankischilling/bcc/internal/lexer"
	"github.com/frankischilling/bcc/internal/parser"
	"github.com/frankischilling/bcc/internal/sem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReturnsTwoOnMissingInput(t *testing.T) {
	var stderr bytes.Buffer
	code := Run(Options{}, &bytes.Buffer{}, &stderr)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "no input files")
}

func TestRunRejectsMultipleFilesForSingleFileOnlyModes(t *testing.T) {
	var stderr bytes.Buffer
	opts := Options{Inputs: []string{"a.b", "b.b"}, EmitCStdout: true}
	code := Run(opts, &bytes.Buffer{}, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "single")
}

func TestSingleFileOnlyFlags(t *testing.T) {
	assert.True(t, Options{EmitCStdout: true}.singleFileOnly())
	assert.True(t, Options{EmitAsm: true}.singleFileOnly())
	assert.True(t, Options{EmitCToOut: true}.singleFileOnly())
	assert.True(t, Options{DumpTokens: true}.singleFileOnly())
	assert.False(t, Options{}.singleFileOnly())
}

func TestOutputOrDefault(t *testing.T) {
	assert.Equal(t, "a.out", outputOrDefault(""))
	assert.Equal(t, "prog", outputOrDefault("prog"))
}

func TestWarningArgsTranslatesEachFlag(t *testing.T) {
	args := warningArgs(Options{WarnAll: true, WarnError: true})
	assert.Equal(t, []string{"-Wall", "-Werror"}, args)
}

func TestCompileArgsIncludesDebugAndIncludeDirs(t *testing.T) {
	args := compileArgs(Options{Debug: true, IncludeDirs: []string{"/usr/include/b"}}, "t.c", "t.o", "/opt/bcc/runtime")
	assert.Contains(t, args, "-g")
	assert.Contains(t, args, "-I/usr/include/b")
	assert.Contains(t, args, "-I/opt/bcc/runtime")
	assert.Equal(t, []string{"-c", "t.c", "-o", "t.o"}, args[:4])
}

func TestLinkArgsAppendsLibsAfterObjects(t *testing.T) {
	args := linkArgs(Options{Libs: []string{"m"}, Output: "prog"}, []string{"a.o", "b.o"})
	assert.Equal(t, []string{"a.o", "b.o", "-o", "prog", "-lm"}, args)
}

func TestFinalCPathAndObjectPathStripExtension(t *testing.T) {
	assert.Equal(t, "foo.c", finalCPath("foo.b"))
	assert.Equal(t, "foo.o", objectPath("foo.b"))
}

func TestWriteTempCRoundTrips(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "prog.b")
	require.NoError(t, os.WriteFile(input, []byte("main(){}"), 0o644))

	path, cleanup, err := writeTempC(input, "int main(void){return 0;}")
	require.NoError(t, err)
	defer cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "int main(void){return 0;}", string(data))
}

func TestAsDiagnosticUnwrapsEachPipelineStage(t *testing.T) {
	d := diag.New(diag.CodeUndefined, diag.Pos{File: "t.b", Line: 1, Col: 1}, "foo")

	got, ok := asDiagnostic(&lexer.Error{Diag: d})
	require.True(t, ok)
	assert.Equal(t, d, got)

	got, ok = asDiagnostic(&parser.Error{Diag: d})
	require.True(t, ok)
	assert.Equal(t, d, got)

	got, ok = asDiagnostic(&sem.Error{Diag: d})
	require.True(t, ok)
	assert.Equal(t, d, got)

	_, ok = asDiagnostic(assertErr{})
	assert.False(t, ok)
}

type assertErr struct{}

func (assertErr) Error() string { return "plain" }

func TestBytePtrMacro(t *testing.T) {
	assert.Equal(t, 1, bytePtrMacro(Options{BytePtr: true}))
	assert.Equal(t, 0, bytePtrMacro(Options{BytePtr: false}))
}
