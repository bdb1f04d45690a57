package diag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompactRender(t *testing.T) {
	d := New(CodeUndefined, Pos{File: "a.b", Line: 3, Col: 5}, "foo")
	require.Equal(t, "un a.b:3", d.Render(false))
}

func TestVerboseRenderIncludesPositionMessageAndContext(t *testing.T) {
	d := New(CodeUndefined, Pos{File: "a.b", Line: 3, Col: 5}, "foo")
	got := d.Render(true)
	require.Contains(t, got, "a.b:3:5")
	require.Contains(t, got, "undefined name")
	require.Contains(t, got, "'foo'")
}

func TestSuggestFindsCloseMatch(t *testing.T) {
	d := New(CodeUndefined, Pos{File: "a.b", Line: 1, Col: 1}, "prntf")
	d = Suggest(d, "prntf", []string{"printf", "putchar", "getchar"})
	require.Equal(t, "printf", d.Suggestion)
}

func TestSuggestOmittedWhenNothingClose(t *testing.T) {
	d := New(CodeUndefined, Pos{File: "a.b", Line: 1, Col: 1}, "zzzzzzz")
	d = Suggest(d, "zzzzzzz", []string{"printf", "putchar"})
	require.Empty(t, d.Suggestion)
}

func TestSanitizeExcerptPassesThroughValidUTF8(t *testing.T) {
	require.Equal(t, "hello", SanitizeExcerpt("hello"))
}

func TestToolingErrorUnwrap(t *testing.T) {
	cause := NewTooling(KindIO, "disk full")
	wrapped := WrapTooling(KindConfig, "could not load config", cause)
	require.ErrorIs(t, wrapped, cause)
}
