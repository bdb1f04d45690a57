package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSdupRoundTrip(t *testing.T) {
	a := New()
	s := a.Sdup("hello")
	require.Equal(t, "hello", s)
}

func TestMarkRewindDiscardsAllocations(t *testing.T) {
	a := New()
	a.Sdup("before")
	m := a.Mark()
	a.Alloc(1 << 20) // forces a new chunk well past the marked chunk's capacity
	a.Rewind(m)

	// Allocating again after rewind must not panic or corrupt the marked chunk.
	s := a.Sdup("after")
	require.Equal(t, "after", s)
}

func TestRewindToEmptyMark(t *testing.T) {
	a := New()
	m := a.Mark()
	a.Sdup("anything")
	a.Rewind(m)
	require.Nil(t, a.first)
}

func TestSdupRangeClampsInvertedRange(t *testing.T) {
	a := New()
	require.Equal(t, "", a.SdupRange("hello", 3, 1))
	require.Equal(t, "ell", a.SdupRange("hello", 1, 4))
}

func TestFmt(t *testing.T) {
	a := New()
	require.Equal(t, "x=42", a.Fmt("x=%d", 42))
}
