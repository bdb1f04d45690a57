package emit

import (
	"testing"

	"github.com/frankischilling/bcc/internal/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMangleDotAndHexEscaping(t *testing.T) {
	m := newMangler()
	assert.Equal(t, "a_b", m.Mangle("a.b"))
	assert.Equal(t, "plain", m.Mangle("plain"))
	// re-mangling the same source name returns the same identifier
	assert.Equal(t, "a_b", m.Mangle("a.b"))
}

func TestMangleKeywordGetsBPrefix(t *testing.T) {
	m := newMangler()
	assert.Equal(t, "b_while", m.Mangle("while"))
	assert.Equal(t, "b_int", m.Mangle("int"))
}

func TestMangleCollisionGetsNumericSuffix(t *testing.T) {
	m := newMangler()
	first := m.Mangle("x.y")
	second := m.Mangle("x_y") // encodes to the same raw token as "x.y"
	assert.Equal(t, "x_y", first)
	assert.Equal(t, "x_y_1", second)
}

func TestStringPoolInternsDuplicatesOnce(t *testing.T) {
	pool := newStringPool()
	a := pool.Intern("hello")
	b := pool.Intern("world")
	c := pool.Intern("hello")
	assert.Equal(t, a, c)
	assert.NotEqual(t, a, b)
	assert.Len(t, pool.order, 2)
}

func TestPackWordsTerminatesWithEOTAndZeroPads(t *testing.T) {
	words := packWords("hi", 8)
	require.Len(t, words, 1)
	// 'h'=0x68 'i'=0x69 EOT=0x04, little-endian within the word
	expected := uint64(0x68) | uint64(0x69)<<8 | uint64(0x04)<<16
	assert.Equal(t, expected, words[0])
}

func TestNestedBaseLenOfEmptyListIsOne(t *testing.T) {
	assert.Equal(t, 1, nestedBaseLen(nil))
	assert.Equal(t, 3, nestedBaseLen([]ast.Init{{}, {}, {}}))
}

func TestEdgeWordsTotalWithNestedLists(t *testing.T) {
	// {1, {2, 3}, 4} — root has 3 slots; the nested {2,3} list itself
	// reserves 2 words for its own base, none of them lists.
	root := []ast.Init{
		{Expr: &ast.Num{Value: 1}},
		{List: []ast.Init{{Expr: &ast.Num{Value: 2}}, {Expr: &ast.Num{Value: 3}}}},
		{Expr: &ast.Num{Value: 4}},
	}
	assert.Equal(t, 3+2, edgeWordsTotal(root))
	assert.Equal(t, 2, edgeTailWordsTop(root))
}

func TestFillListPlacesNestedSubvectorInTail(t *testing.T) {
	e := New(Options{BytePtr: true})
	root := []ast.Init{
		{Expr: &ast.Num{Value: 1}},
		{List: []ast.Init{{Expr: &ast.Num{Value: 2}}, {Expr: &ast.Num{Value: 3}}}},
	}
	cursor := nestedBaseLen(root) // root reserves 2 words at [0,1]; tail starts at 2
	stmts := e.fillList("arr", root, 0, &cursor)
	require.Len(t, stmts, 4)
	assert.Contains(t, stmts[0], "arr[0] = ")
	assert.Contains(t, stmts[1], "arr[1] = B_PTR(&arr[2])")
	assert.Contains(t, stmts[2], "arr[2] = ")
}

func TestFormatStringArgPositionsSkipsWidthAndPrecisionStars(t *testing.T) {
	// printf("%d %*s %s", argFormat=0): arg1 -> %d, arg2 -> the '*' width,
	// arg3 -> the first %s, arg4 -> the second %s.
	positions := formatStringArgPositions("%d %*s %s", 0)
	assert.False(t, positions[1])
	assert.False(t, positions[2])
	assert.True(t, positions[3])
	assert.True(t, positions[4])
}

func TestLowerExprStringLiteralInternsAndWrapsPool(t *testing.T) {
	e := New(Options{BytePtr: true})
	got := e.lowerExpr(&ast.Str{Value: "hi"})
	assert.Equal(t, "B_PTR(__b_str0)", got)
}

func TestLowerExprNumLiteral(t *testing.T) {
	e := New(Options{BytePtr: true})
	assert.Equal(t, "((word)42LL)", e.lowerExpr(&ast.Num{Value: 42}))
}

func TestLowerBinaryRelationalProducesBooleanWord(t *testing.T) {
	e := New(Options{BytePtr: true})
	bin := &ast.Binary{Op: ast.BinLt, Lhs: &ast.Var{Name: "a"}, Rhs: &ast.Num{Value: 1}}
	got := e.lowerExpr(bin)
	assert.Contains(t, got, "<")
	assert.Contains(t, got, "(word)1")
}

func TestLowerSwitchEmitsDispatchAndLabelsPerCase(t *testing.T) {
	e := New(Options{BytePtr: true})
	body := &ast.Block{Stmts: []ast.Stmt{
		&ast.Block{Stmts: []ast.Stmt{
			&ast.Case{Lo: 1},
			&ast.ExprStmt{X: &ast.Assign{Op: ast.AssignPlain, Lhs: &ast.Var{Name: "x"}, Rhs: &ast.Num{Value: 1}}},
		}},
		&ast.Block{Stmts: []ast.Stmt{
			&ast.Case{IsDefault: true},
			&ast.ExprStmt{X: &ast.Assign{Op: ast.AssignPlain, Lhs: &ast.Var{Name: "x"}, Rhs: &ast.Num{Value: 2}}},
		}},
	}}
	sw := &ast.Switch{X: &ast.Var{Name: "x"}, Body: body}
	out := e.lowerStmt(sw)
	assert.Contains(t, out, "__bsw1_case0: ;")
	assert.Contains(t, out, "__bsw1_case1: ;")
	assert.Contains(t, out, "goto __bsw1_case0;")
	assert.Contains(t, out, "goto __bsw1_case1;") // default's unconditional fallthrough target
}

func TestLowerBreakInsideSwitchGotosEndLabel(t *testing.T) {
	e := New(Options{BytePtr: true})
	body := &ast.Block{Stmts: []ast.Stmt{
		&ast.Block{Stmts: []ast.Stmt{
			&ast.Case{Lo: 1},
			&ast.Break{},
		}},
	}}
	sw := &ast.Switch{X: &ast.Var{Name: "x"}, Body: body}
	out := e.lowerStmt(sw)
	assert.Contains(t, out, "goto __bsw1_end;")
}

func TestLowerAutoVectorReservesSizePlusOne(t *testing.T) {
	e := New(Options{BytePtr: true})
	decl := &ast.AutoDecl{Items: []ast.DeclItem{{Name: "v", Size: &ast.Num{Value: 10}}}}
	out := e.lowerStmt(decl)
	assert.Contains(t, out, "__v_store[11]")
}

func TestEmitProgramOrdersStorageInitFunctionsThenMain(t *testing.T) {
	prog := &ast.Program{Tops: []ast.Top{
		{Kind: ast.TopExternDef, Extern: &ast.ExternItem{
			Name: "g", Variant: ast.ExternScalar,
			Init: &ast.Init{Expr: &ast.Num{Value: 7}},
		}},
		{Kind: ast.TopFunction, Function: &ast.Function{
			Name: "main",
			Body: &ast.Block{Stmts: []ast.Stmt{&ast.Return{Value: &ast.Num{Value: 0}}}},
		}},
	}}
	e := New(Options{BytePtr: true})
	out, err := e.EmitProgram(prog, "t.b")
	require.NoError(t, err)

	storageIdx := indexOf(t, out, "word g;")
	initIdx := indexOf(t, out, "__b_init_file")
	mainIdx := indexOf(t, out, "__b_user_main")
	realMainIdx := indexOf(t, out, "int main(")
	assert.Less(t, storageIdx, initIdx)
	assert.Less(t, initIdx, mainIdx)
	assert.Less(t, mainIdx, realMainIdx)
}

func indexOf(t *testing.T, haystack, needle string) int {
	t.Helper()
	idx := -1
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			idx = i
			break
		}
	}
	require.GreaterOrEqual(t, idx, 0, "expected %q to contain %q", haystack, needle)
	return idx
}
