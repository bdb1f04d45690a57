package parser

import (
	"testing"

	"github.com/frankischilling/bcc/internal/ast"
	"github.com/frankischilling/bcc/internal/diag"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// astDiffOpts ignores source positions: a golden tree describes shape, not
// which file/line/column a token came from.
var astDiffOpts = cmp.Options{
	cmpopts.IgnoreTypes(diag.Pos{}),
}

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := Parse(src, "t.b")
	require.NoError(t, err)
	require.NotNil(t, prog)
	return prog
}

func TestParseHelloWorldFunction(t *testing.T) {
	prog := mustParse(t, `main() {
		extrn a;
		auto b;
		b = 1;
		printf("hello*n");
		return(0);
	}`)
	require.Len(t, prog.Tops, 1)
	top := prog.Tops[0]
	require.Equal(t, ast.TopFunction, top.Kind)
	fn := top.Function
	assert.Equal(t, "main", fn.Name)
	require.Len(t, fn.Body.Stmts, 5)

	_, ok := fn.Body.Stmts[0].(*ast.ExtrnDecl)
	assert.True(t, ok)
	_, ok = fn.Body.Stmts[1].(*ast.AutoDecl)
	assert.True(t, ok)

	assignStmt, ok := fn.Body.Stmts[2].(*ast.ExprStmt)
	require.True(t, ok)
	assign, ok := assignStmt.X.(*ast.Assign)
	require.True(t, ok)
	assert.Equal(t, ast.AssignPlain, assign.Op)

	ret, ok := fn.Body.Stmts[4].(*ast.Return)
	require.True(t, ok)
	num, ok := ret.Value.(*ast.Num)
	require.True(t, ok)
	assert.Equal(t, int64(0), num.Value)
}

func TestParseExternScalarForms(t *testing.T) {
	prog := mustParse(t, `x;
y = 5;
`)
	require.Len(t, prog.Tops, 2)

	assert.Equal(t, ast.TopExternDecl, prog.Tops[0].Kind)
	assert.Equal(t, "x", prog.Tops[0].Extern.Name)
	assert.Nil(t, prog.Tops[0].Extern.Init)

	assert.Equal(t, ast.TopExternDef, prog.Tops[1].Kind)
	assert.Equal(t, "y", prog.Tops[1].Extern.Name)
	require.NotNil(t, prog.Tops[1].Extern.Init)
	n, ok := prog.Tops[1].Extern.Init.Expr.(*ast.Num)
	require.True(t, ok)
	assert.Equal(t, int64(5), n.Value)
}

func TestParseVectorWithEdgeSubvectorInit(t *testing.T) {
	prog := mustParse(t, `table[3] {1, {2, 3}, 4};`)
	require.Len(t, prog.Tops, 1)
	item := prog.Tops[0].Extern
	require.Equal(t, ast.ExternVector, item.Variant)
	require.True(t, item.HasBrack)
	require.NotNil(t, item.Bound)
	bound, ok := item.Bound.(*ast.Num)
	require.True(t, ok)
	assert.Equal(t, int64(3), bound.Value)

	require.NotNil(t, item.Init)
	require.True(t, item.Init.IsList())
	require.Len(t, item.Init.List, 3)
	assert.False(t, item.Init.List[0].IsList())
	assert.True(t, item.Init.List[1].IsList())
	require.Len(t, item.Init.List[1].List, 2)
	assert.False(t, item.Init.List[2].IsList())
}

func TestParseEmptyVectorDeclaration(t *testing.T) {
	prog := mustParse(t, `buf[];`)
	item := prog.Tops[0].Extern
	require.Equal(t, ast.ExternVector, item.Variant)
	assert.True(t, item.HasBrack)
	assert.True(t, item.HasEmpty)
	assert.Nil(t, item.Bound)
	assert.Nil(t, item.Init)
}

func TestParseBlobBareCommaList(t *testing.T) {
	prog := mustParse(t, `greeting "h", "i";`)
	item := prog.Tops[0].Extern
	require.Equal(t, ast.ExternBlob, item.Variant)
	require.NotNil(t, item.Init)
	require.Len(t, item.Init.List, 2)
}

func TestParseSwitchWithCaseAndDefault(t *testing.T) {
	prog := mustParse(t, `f() {
		auto x;
		switch (x) {
			case 1:
				x = 10;
			case 2:
				x = 20;
			default:
				x = 0;
		}
	}`)
	fn := prog.Tops[0].Function
	sw, ok := fn.Body.Stmts[1].(*ast.Switch)
	require.True(t, ok)
	body, ok := sw.Body.(*ast.Block)
	require.True(t, ok)

	var cases []*ast.Case
	var walk func(ast.Stmt)
	walk = func(s ast.Stmt) {
		switch v := s.(type) {
		case *ast.Block:
			for _, inner := range v.Stmts {
				walk(inner)
			}
		case *ast.Case:
			cases = append(cases, v)
		}
	}
	walk(body)

	require.Len(t, cases, 3)
	num0, ok := cases[0].Expr.(*ast.Num)
	require.True(t, ok)
	assert.Equal(t, int64(1), num0.Value)
	num1, ok := cases[1].Expr.(*ast.Num)
	require.True(t, ok)
	assert.Equal(t, int64(2), num1.Value)
	assert.True(t, cases[2].IsDefault)
}

func TestParseCaseAcceptsCharLiteralAndArithmeticExpr(t *testing.T) {
	prog := mustParse(t, `f() {
		auto x;
		switch (x) {
			case 1 + 1:
				x = 1;
			case 'a':
				x = 2;
		}
	}`)
	fn := prog.Tops[0].Function
	sw, ok := fn.Body.Stmts[1].(*ast.Switch)
	require.True(t, ok)

	var cases []*ast.Case
	var walk func(ast.Stmt)
	walk = func(s ast.Stmt) {
		switch v := s.(type) {
		case *ast.Block:
			for _, inner := range v.Stmts {
				walk(inner)
			}
		case *ast.Case:
			cases = append(cases, v)
		}
	}
	walk(sw.Body)

	require.Len(t, cases, 2)
	bin, ok := cases[0].Expr.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.BinAdd, bin.Op)

	char, ok := cases[1].Expr.(*ast.Num)
	require.True(t, ok)
	assert.Equal(t, int64('a'), char.Value)
}

func TestParseCaseOutsideSwitchIsError(t *testing.T) {
	_, err := Parse(`f() { case 1: ; }`, "t.b")
	require.Error(t, err)
}

func TestParseCompoundAssignmentAndRelationalAssignment(t *testing.T) {
	prog := mustParse(t, `f() {
		auto a, b;
		a =+ 1;
		b =< a;
	}`)
	fn := prog.Tops[0].Function
	s0, ok := fn.Body.Stmts[1].(*ast.ExprStmt)
	require.True(t, ok)
	a0, ok := s0.X.(*ast.Assign)
	require.True(t, ok)
	assert.Equal(t, ast.AssignAdd, a0.Op)

	s1, ok := fn.Body.Stmts[2].(*ast.ExprStmt)
	require.True(t, ok)
	a1, ok := s1.X.(*ast.Assign)
	require.True(t, ok)
	assert.Equal(t, ast.AssignLt, a1.Op)
}

func TestAssignToNonLvalueIsError(t *testing.T) {
	_, err := Parse(`f() { 1 = 2; }`, "t.b")
	require.Error(t, err)
}

func TestAddressOfNonLvalueIsError(t *testing.T) {
	_, err := Parse(`f() { auto x; x = &1; }`, "t.b")
	require.Error(t, err)
}

func TestStringIndexExpr(t *testing.T) {
	prog := mustParse(t, `f() {
		auto s, c;
		s = "hi";
		c = s[0];
	}`)
	fn := prog.Tops[0].Function
	s, ok := fn.Body.Stmts[2].(*ast.ExprStmt)
	require.True(t, ok)
	assign, ok := s.X.(*ast.Assign)
	require.True(t, ok)
	idx, ok := assign.Rhs.(*ast.Index)
	require.True(t, ok)
	base, ok := idx.X.(*ast.Var)
	require.True(t, ok)
	assert.Equal(t, "s", base.Name)
}

func TestOperatorPrecedenceBitwiseLooserThanRelational(t *testing.T) {
	// "a & b == c" parses as "a & (b == c)": '&' binds looser than '=='.
	prog := mustParse(t, `f() { auto a, b, c, r; r = a & b == c; }`)
	fn := prog.Tops[0].Function
	s, ok := fn.Body.Stmts[1].(*ast.ExprStmt)
	require.True(t, ok)
	assign := s.X.(*ast.Assign)
	bin, ok := assign.Rhs.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.BinBitAnd, bin.Op)
	inner, ok := bin.Rhs.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.BinEq, inner.Op)
}

func TestTernaryAndCommaExpression(t *testing.T) {
	prog := mustParse(t, `f() { auto a, b; a = 1 ? 2 : 3, b; }`)
	fn := prog.Tops[0].Function
	s, ok := fn.Body.Stmts[1].(*ast.ExprStmt)
	require.True(t, ok)
	comma, ok := s.X.(*ast.Comma)
	require.True(t, ok)
	assign, ok := comma.Lhs.(*ast.Assign)
	require.True(t, ok)
	_, ok = assign.Rhs.(*ast.Ternary)
	assert.True(t, ok)
}

func TestUnterminatedBlockIsFatal(t *testing.T) {
	_, err := Parse(`f() {`, "t.b")
	require.Error(t, err)
}

func TestParseGoldenAssignmentTree(t *testing.T) {
	prog := mustParse(t, `f() { auto x; x = 1 + 2; }`)

	want := &ast.Program{
		Tops: []ast.Top{
			{
				Kind: ast.TopFunction,
				Function: &ast.Function{
					Name: "f",
					Body: &ast.Block{
						Stmts: []ast.Stmt{
							&ast.AutoDecl{Items: []ast.DeclItem{{Name: "x"}}},
							&ast.ExprStmt{
								X: &ast.Assign{
									Op:  ast.AssignPlain,
									Lhs: &ast.Var{Name: "x"},
									Rhs: &ast.Binary{
										Op:  ast.BinAdd,
										Lhs: &ast.Num{Value: 1},
										Rhs: &ast.Num{Value: 2},
									},
								},
							},
						},
					},
				},
			},
		},
	}

	if diff := cmp.Diff(want, prog, astDiffOpts); diff != "" {
		t.Errorf("parsed tree mismatch (-want +got):\n%s", diff)
	}
}

func TestGotoAndLabel(t *testing.T) {
	prog := mustParse(t, `f() {
		goto done;
		done: return;
	}`)
	fn := prog.Tops[0].Function
	_, ok := fn.Body.Stmts[0].(*ast.Goto)
	require.True(t, ok)
	label, ok := fn.Body.Stmts[1].(*ast.Label)
	require.True(t, ok)
	assert.Equal(t, "done", label.Name)
}
