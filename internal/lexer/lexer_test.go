package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func tokens(t *testing.T, src string) []Token {
	t.Helper()
	toks, err := TokenizeAll(src, "t.b")
	require.NoError(t, err)
	return toks
}

func TestIdentifierWithDot(t *testing.T) {
	toks := tokens(t, "foo.bar")
	require.Equal(t, IDENT, toks[0].Kind)
	require.Equal(t, "foo.bar", toks[0].Lexeme)
}

func TestKeywords(t *testing.T) {
	toks := tokens(t, "auto extrn if else while return break continue goto switch case default")
	want := []Kind{AUTO, EXTRN, IF, ELSE, WHILE, RETURN, BREAK, CONTINUE, GOTO, SWITCH, CASE, DEFAULT}
	for i, k := range want {
		require.Equal(t, k, toks[i].Kind, "token %d", i)
	}
}

func TestOctalDefaultAndLenientDigits(t *testing.T) {
	toks := tokens(t, "010 09")
	require.Equal(t, int64(8), toks[0].Num)
	require.Equal(t, int64(9), toks[1].Num) // 011 octal == 9 decimal
}

func TestDecimalNumber(t *testing.T) {
	toks := tokens(t, "123")
	require.Equal(t, int64(123), toks[0].Num)
}

func TestCharConstantPacking(t *testing.T) {
	toks := tokens(t, "'ab'")
	require.Equal(t, CHAR, toks[0].Kind)
	require.Equal(t, int64('a')|int64('b')<<8, toks[0].Num)
}

func TestStringEscapes(t *testing.T) {
	toks := tokens(t, `"hi*n"`)
	require.Equal(t, STRING, toks[0].Kind)
	require.Equal(t, "hi\n", toks[0].Lexeme)
}

func TestAllEscapeSequences(t *testing.T) {
	toks := tokens(t, `"*0*e*(*)*t***'*"*n"`)
	require.Equal(t, "\x00\x04()\t*'\"\n", toks[0].Lexeme)
}

func TestUnknownEscapeIsFatal(t *testing.T) {
	_, err := TokenizeAll(`"*z"`, "t.b")
	require.Error(t, err)
}

func TestBlockComment(t *testing.T) {
	toks := tokens(t, "/* comment */ x")
	require.Equal(t, IDENT, toks[0].Kind)
	require.Equal(t, "x", toks[0].Lexeme)
}

func TestUnterminatedBlockCommentIsFatal(t *testing.T) {
	_, err := TokenizeAll("/* never closes", "t.b")
	require.Error(t, err)
}

func TestLineComment(t *testing.T) {
	toks := tokens(t, "x // trailing\ny")
	require.Equal(t, "x", toks[0].Lexeme)
	require.Equal(t, "y", toks[1].Lexeme)
}

func TestLongestMatchOperators(t *testing.T) {
	toks := tokens(t, "=<= =< =>= => === == =!= !=")
	want := []Kind{LEEQ, LTEQ, GEEQ, GTEQ, EQEQ, EQ, NEEQ, NE}
	for i, k := range want {
		require.Equal(t, k, toks[i].Kind, "token %d (%s)", i, toks[i])
	}
}

func TestCompoundAssignmentFamily(t *testing.T) {
	toks := tokens(t, "=+ =- =* =/ =% =& =| =<< =>>")
	want := []Kind{PLUSEQ, MINUSEQ, STAREQ, SLASHEQ, PERCENTEQ, ANDEQ, OREQ, LSHIFTEQ, RSHIFTEQ}
	for i, k := range want {
		require.Equal(t, k, toks[i].Kind, "token %d", i)
	}
}

func TestIncrementDecrement(t *testing.T) {
	toks := tokens(t, "++ --")
	require.Equal(t, PLUSPLUS, toks[0].Kind)
	require.Equal(t, MINUSMINUS, toks[1].Kind)
}

func TestEOFTerminatesStream(t *testing.T) {
	toks := tokens(t, "x")
	require.Equal(t, EOF, toks[len(toks)-1].Kind)
}

func TestLineAndColumnTracking(t *testing.T) {
	toks := tokens(t, "x\ny")
	require.Equal(t, 1, toks[0].Line)
	require.Equal(t, 2, toks[1].Line)
	require.Equal(t, 1, toks[1].Col)
}

func TestPositionsAreNonDecreasing(t *testing.T) {
	toks := tokens(t, "a b\nc   d")
	for i := 1; i < len(toks); i++ {
		prev, cur := toks[i-1], toks[i]
		require.True(t, cur.Line > prev.Line || (cur.Line == prev.Line && cur.Col >= prev.Col))
		require.GreaterOrEqual(t, cur.Line, 1)
		require.GreaterOrEqual(t, cur.Col, 1)
	}
}

func TestLoneZeroLexesAsOctal(t *testing.T) {
	// a literal with a leading zero is read in lenient octal; the digit
	// scanner only ever collects 0-9, so a lone "0" is a valid octal literal.
	_, err := TokenizeAll("0", "t.b")
	require.NoError(t, err)
}
