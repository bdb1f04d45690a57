package sem

import (
	"testing"

	"github.com/frankischilling/bcc/internal/ast"
	"github.com/frankischilling/bcc/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustAnalyze(t *testing.T, src string) *Result {
	t.Helper()
	prog, err := parser.Parse(src, "t.b")
	require.NoError(t, err)
	res, err := Analyze(prog, "t.b")
	require.NoError(t, err)
	return res
}

func TestDuplicateTopLevelNameIsRedeclaration(t *testing.T) {
	prog, err := parser.Parse(`x; x;`, "t.b")
	require.NoError(t, err)
	_, err = Analyze(prog, "t.b")
	require.Error(t, err)
	semErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, "rd", string(semErr.Diag.Code))
}

func TestDuplicateAutoInSameScopeIsRedeclaration(t *testing.T) {
	prog, err := parser.Parse(`f() { auto a, a; }`, "t.b")
	require.NoError(t, err)
	_, err = Analyze(prog, "t.b")
	require.Error(t, err)
}

func TestShadowingInNestedScopeIsAllowed(t *testing.T) {
	res := mustAnalyze(t, `f() {
		auto a;
		if (1) {
			auto a;
			a = 2;
		}
		a = 1;
	}`)
	require.NotNil(t, res)
}

func TestUndeclaredVariableReferenceBecomesImplicitStatic(t *testing.T) {
	res := mustAnalyze(t, `f() { auto x; x = y; }`)
	var found *ast.ExternItem
	for _, top := range res.Program.Tops {
		if top.Kind == ast.TopExternDef && top.Extern.Name == "y" {
			found = top.Extern
		}
	}
	require.NotNil(t, found)
	assert.True(t, found.IsImplicitStatic)
	assert.Equal(t, ast.ExternScalar, found.Variant)

	sym, ok := res.Global.Lookup("y")
	require.True(t, ok)
	assert.True(t, sym.IsExtern)
}

func TestExplicitExternIsNotDuplicatedByImplicitPromotion(t *testing.T) {
	res := mustAnalyze(t, `y;
f() { auto x; x = y; }`)
	count := 0
	for _, top := range res.Program.Tops {
		if top.Kind == ast.TopExternDecl || top.Kind == ast.TopExternDef {
			if top.Extern.Name == "y" {
				count++
			}
		}
	}
	assert.Equal(t, 1, count)
}

func TestCallToUndefinedNameIsUndefinedError(t *testing.T) {
	prog, err := parser.Parse(`f() { helllo(); }`, "t.b")
	require.NoError(t, err)
	_, err = Analyze(prog, "t.b")
	require.Error(t, err)
	semErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, "un", string(semErr.Diag.Code))
}

func TestCallToUndefinedNameSuggestsCloseMatch(t *testing.T) {
	prog, err := parser.Parse(`hello() { return; }
f() { helllo(); }`, "t.b")
	require.NoError(t, err)
	_, err = Analyze(prog, "t.b")
	require.Error(t, err)
	semErr := err.(*Error)
	assert.Contains(t, semErr.Diag.Suggestion, "hello")
}

func TestCallToBuiltinResolvesWithoutDeclaration(t *testing.T) {
	res := mustAnalyze(t, `f() { printf("hi*n"); }`)
	require.NotNil(t, res)
}

func TestCallToForwardDeclaredFunctionResolves(t *testing.T) {
	res := mustAnalyze(t, `f() { g(); }
g() { return; }`)
	require.NotNil(t, res)
}

func TestVectorBoundFoldsConstant(t *testing.T) {
	res := mustAnalyze(t, `table[2 + 1] {1, 2, 3, 4};`)
	item := res.Program.Tops[0].Extern
	assert.Equal(t, int64(3), item.BoundFold)
}

func TestNegativeVectorBoundIsError(t *testing.T) {
	prog, err := parser.Parse(`table[0 - 5];`, "t.b")
	require.NoError(t, err)
	_, err = Analyze(prog, "t.b")
	require.Error(t, err)
}

func TestAdjacentCaseLabelsProduceFallthroughWarning(t *testing.T) {
	res := mustAnalyze(t, `f() {
		auto x;
		switch (x) {
			case 1:
			case 2:
				x = 1;
		}
	}`)
	require.Len(t, res.Warnings, 1)
}

func TestCaseLabelFoldsArithmeticAndCharLiteral(t *testing.T) {
	res := mustAnalyze(t, `f() {
		auto x;
		switch (x) {
			case 1 + 1:
				x = 1;
			case 'a':
				x = 2;
		}
	}`)

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
	sw := res.Program.Tops[0].Function.Body.Stmts[1].(*ast.Switch)
	walk(sw.Body)

	require.Len(t, cases, 2)
	assert.Equal(t, int64(2), cases[0].Lo)
	assert.Equal(t, int64('a'), cases[1].Lo)
}

func TestCaseLabelFoldFailureIsDiagnostic(t *testing.T) {
	prog, err := parser.Parse(`f() {
		auto x, y;
		switch (x) {
			case y:
				x = 1;
		}
	}`, "t.b")
	require.NoError(t, err)
	_, err = Analyze(prog, "t.b")
	require.Error(t, err)
	semErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, "sx", string(semErr.Diag.Code))
}

func TestFoldArithmeticWithPrecedence(t *testing.T) {
	prog, err := parser.Parse(`n[1 + 2 * 3];`, "t.b")
	require.NoError(t, err)
	res, err := Analyze(prog, "t.b")
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.Program.Tops[0].Extern.BoundFold)
}

func TestFoldDivisionByZeroFails(t *testing.T) {
	_, err := Fold(&ast.Binary{
		Op:  ast.BinDiv,
		Lhs: &ast.Num{Value: 1},
		Rhs: &ast.Num{Value: 0},
	})
	require.Error(t, err)
}

func TestFoldTernaryAndComma(t *testing.T) {
	v, err := Fold(&ast.Ternary{
		Cond: &ast.Num{Value: 0},
		Then: &ast.Num{Value: 10},
		Else: &ast.Comma{Lhs: &ast.Num{Value: 1}, Rhs: &ast.Num{Value: 20}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(20), v)
}
