package sem

import (
	"fmt"
	"sort"

	"github.com/frankischilling/bcc/internal/ast"
	"github.com/frankischilling/bcc/internal/builtins"
	"github.com/frankischilling/bcc/internal/diag"
)

// Error is a fatal semantic diagnostic.
type Error struct{ Diag diag.Diagnostic }

func (e *Error) Error() string { return e.Diag.Error() }

// Warning is a non-fatal semantic diagnostic (currently only the
// adjacent-case-labels fallthrough warning).
type Warning struct{ Diag diag.Diagnostic }

func (w *Warning) String() string { return w.Diag.Error() }

// Result is everything the emitter needs from semantic analysis: the
// program (mutated in place to append implicit-static externs) plus the
// global scope for name-to-mangled-identifier lookups downstream.
type Result struct {
	Program  *ast.Program
	Global   *Scope
	Warnings []*Warning
}

// Analyzer runs the two-pass check over a Program.
type Analyzer struct {
	file     string
	global   *Scope
	warnings []*Warning

	// implicitStatics tracks implicit-static names discovered during pass 2 that
	// need a synthesized ExternDef appended once the pass completes.
	implicitStatics map[string]diag.Pos
	implicitOrder   []string

	// explicitExternNames records every name already given an extern
	// definition or declaration in pass 1, so the post-pass does not
	// shadow one with a synthesized duplicate.
	explicitExternNames map[string]bool
}

// Analyze runs both passes over prog and returns the result, or the first
// fatal diagnostic encountered.
func Analyze(prog *ast.Program, file string) (*Result, error) {
	a := &Analyzer{
		file:                file,
		global:              NewScope(nil),
		implicitStatics:     make(map[string]diag.Pos),
		explicitExternNames: make(map[string]bool),
	}
	for _, name := range builtins.Names {
		a.global.Declare(&Symbol{Kind: SymFunc, Name: name, IsExtern: true})
	}

	if err := a.pass1Collect(prog); err != nil {
		return nil, err
	}
	if err := a.pass2Check(prog); err != nil {
		return nil, err
	}
	a.appendImplicitStatics(prog)

	return &Result{Program: prog, Global: a.global, Warnings: a.warnings}, nil
}

func (a *Analyzer) errf(code diag.Code, pos diag.Pos, format string, args ...interface{}) *Error {
	return &Error{Diag: diag.Newf(code, pos, format, args...)}
}

// pass1Collect inserts every top-level name into global scope before any
// function body is checked, and const-folds global vector bounds.
func (a *Analyzer) pass1Collect(prog *ast.Program) error {
	for i := range prog.Tops {
		top := &prog.Tops[i]
		switch top.Kind {
		case ast.TopFunction:
			fn := top.Function
			if prior, redeclared := a.global.Declare(&Symbol{
				Kind: SymFunc, Name: fn.Name, Pos: fn.Pos, NumParams: len(fn.Params),
			}); redeclared {
				return a.redeclErr(fn.Pos, fn.Name, prior)
			}

		case ast.TopExternDef, ast.TopExternDecl:
			item := top.Extern
			a.explicitExternNames[item.Name] = true
			if prior, redeclared := a.global.Declare(&Symbol{
				Kind: SymVar, Name: item.Name, Pos: item.Pos, IsExtern: true,
			}); redeclared {
				return a.redeclErr(item.Pos, item.Name, prior)
			}
			if item.Variant == ast.ExternVector && item.HasBrack && item.Bound != nil {
				v, err := Fold(item.Bound)
				if err != nil {
					return a.errf(diag.CodeExternSyn, item.Pos, "vector bound does not fold to a constant: %s", err)
				}
				if v < 0 {
					return a.errf(diag.CodeExternSyn, item.Pos, "vector bound %d is negative", v)
				}
				item.BoundFold = v
			}
		}
	}
	return nil
}

func (a *Analyzer) redeclErr(pos diag.Pos, name string, prior *Symbol) *Error {
	d := diag.Newf(diag.CodeRedecl, pos, "redeclaration of %q", name)
	if prior != nil {
		d.Context = fmt.Sprintf("previously declared at %s", prior.Pos)
	}
	return &Error{Diag: d}
}

// pass2Check walks every function body, pushing and popping scopes, and
// resolves every variable reference and call site.
func (a *Analyzer) pass2Check(prog *ast.Program) error {
	for i := range prog.Tops {
		top := &prog.Tops[i]
		if top.Kind != ast.TopFunction {
			continue
		}
		fn := top.Function
		fnScope := NewScope(a.global)
		for _, param := range fn.Params {
			fnScope.Declare(&Symbol{Kind: SymVar, Name: param.Name, Pos: param.Pos})
		}
		if err := a.checkStmt(fn.Body, fnScope); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) checkStmt(s ast.Stmt, scope *Scope) error {
	switch v := s.(type) {
	case *ast.Block:
		inner := NewScope(scope)
		for _, stmt := range v.Stmts {
			if err := a.checkStmt(stmt, inner); err != nil {
				return err
			}
		}

	case *ast.AutoDecl:
		for _, item := range v.Items {
			if prior, redeclared := scope.Declare(&Symbol{Kind: SymVar, Name: item.Name, Pos: item.Pos}); redeclared {
				return a.redeclErr(item.Pos, item.Name, prior)
			}
			if item.Size != nil {
				if err := a.checkExpr(item.Size, scope); err != nil {
					return err
				}
			}
		}

	case *ast.ExtrnDecl:
		for _, name := range v.Names {
			scope.Declare(&Symbol{Kind: SymVar, Name: name, Pos: v.Pos, IsExtern: true})
		}

	case *ast.If:
		if err := a.checkExpr(v.Cond, scope); err != nil {
			return err
		}
		if err := a.checkStmt(v.Then, scope); err != nil {
			return err
		}
		if v.Else != nil {
			return a.checkStmt(v.Else, scope)
		}

	case *ast.While:
		if err := a.checkExpr(v.Cond, scope); err != nil {
			return err
		}
		return a.checkStmt(v.Body, scope)

	case *ast.Return:
		if v.Value != nil {
			return a.checkExpr(v.Value, scope)
		}

	case *ast.ExprStmt:
		return a.checkExpr(v.X, scope)

	case *ast.Switch:
		if err := a.checkExpr(v.X, scope); err != nil {
			return err
		}
		a.scanFallthrough(v.Body)
		return a.checkStmt(v.Body, scope)

	case *ast.Label:
		return a.checkStmt(v.Stmt, scope)

	case *ast.Case:
		if v.IsDefault {
			return nil
		}
		fold, err := Fold(v.Expr)
		if err != nil {
			return a.errf(diag.CodeStmtSyntax, v.Pos, "case label does not fold to a constant: %s", err)
		}
		v.Lo = fold
		v.Hi = fold

	case *ast.Empty, *ast.Break, *ast.Continue, *ast.Goto:
		// no references to resolve

	default:
		return a.errf(diag.CodeStmtSyntax, s.Position(), "internal: unrecognized statement %T", s)
	}
	return nil
}

// scanFallthrough walks a switch body for two adjacent case/default labels
// with no statement of actual work between them, which is almost always a
// pasted-in-the-wrong-place bug; it is a warning, not a fatal diagnostic,
// because B's switch semantics permit it. The parser represents "case N:
// stmt" as a two-element block [Case, stmt] (see wrapCaseThen in the parser
// package), so adjacency is nesting, not a flat sibling list: case N
// immediately followed by case M appears as [Case(N), [Case(M), ...]].
// Label search does not descend into a nested Switch, matching the case
// nodes it reaches without crossing into one.
func (a *Analyzer) scanFallthrough(s ast.Stmt) {
	switch v := s.(type) {
	case *ast.Block:
		if isCaseWrapper(v) {
			if isCaseWrapper(v.Stmts[1]) {
				a.warnf(v.Stmts[1].Position(), "case label immediately follows another with no statement between them")
			}
			a.scanFallthrough(v.Stmts[1])
			return
		}
		for _, st := range v.Stmts {
			a.scanFallthrough(st)
		}

	case *ast.If:
		a.scanFallthrough(v.Then)
		if v.Else != nil {
			a.scanFallthrough(v.Else)
		}

	case *ast.While:
		a.scanFallthrough(v.Body)

	case *ast.Label:
		a.scanFallthrough(v.Stmt)
	}
}

func isCaseWrapper(s ast.Stmt) bool {
	blk, ok := s.(*ast.Block)
	if !ok || len(blk.Stmts) != 2 {
		return false
	}
	_, ok = blk.Stmts[0].(*ast.Case)
	return ok
}

func (a *Analyzer) warnf(pos diag.Pos, format string, args ...interface{}) {
	a.warnings = append(a.warnings, &Warning{Diag: diag.Newf(diag.CodeRedecl, pos, format, args...)})
}

func (a *Analyzer) checkExpr(e ast.Expr, scope *Scope) error {
	switch v := e.(type) {
	case *ast.Num, *ast.Str:
		return nil

	case *ast.Var:
		return a.resolveRef(v.Name, v.Pos, scope)

	case *ast.Call:
		if callee, ok := v.Callee.(*ast.Var); ok {
			if err := a.resolveCallee(callee.Name, callee.Pos, scope); err != nil {
				return err
			}
		} else if err := a.checkExpr(v.Callee, scope); err != nil {
			return err
		}
		for _, arg := range v.Args {
			if err := a.checkExpr(arg, scope); err != nil {
				return err
			}
		}

	case *ast.Index:
		if err := a.checkExpr(v.X, scope); err != nil {
			return err
		}
		return a.checkExpr(v.Index, scope)

	case *ast.UnaryPrefix:
		return a.checkExpr(v.Operand, scope)

	case *ast.UnaryPostfix:
		return a.checkExpr(v.Operand, scope)

	case *ast.Binary:
		if err := a.checkExpr(v.Lhs, scope); err != nil {
			return err
		}
		return a.checkExpr(v.Rhs, scope)

	case *ast.Assign:
		if err := a.checkExpr(v.Lhs, scope); err != nil {
			return err
		}
		return a.checkExpr(v.Rhs, scope)

	case *ast.Ternary:
		if err := a.checkExpr(v.Cond, scope); err != nil {
			return err
		}
		if err := a.checkExpr(v.Then, scope); err != nil {
			return err
		}
		return a.checkExpr(v.Else, scope)

	case *ast.Comma:
		if err := a.checkExpr(v.Lhs, scope); err != nil {
			return err
		}
		return a.checkExpr(v.Rhs, scope)

	default:
		return a.errf(diag.CodeExprSyntax, e.Position(), "internal: unrecognized expression %T", e)
	}
	return nil
}

// resolveRef looks up name in scope; an unresolved, non-extern,
// not-yet-promoted reference is recorded as an implicit static rather than
// rejected outright, matching B's historical "undeclared global" leniency.
func (a *Analyzer) resolveRef(name string, pos diag.Pos, scope *Scope) error {
	if _, ok := scope.Lookup(name); ok {
		return nil
	}
	if _, ok := a.implicitStatics[name]; ok {
		return nil
	}
	a.implicitStatics[name] = pos
	a.implicitOrder = append(a.implicitOrder, name)
	return nil
}

// resolveCallee resolves a call's callee strictly: pass 1 already installed
// every top-level function and extern name in global scope, so a call
// target still unresolved at this point is not a forward reference — it is
// a genuinely undefined name (a typo, or a call to something never defined
// anywhere in the file) and is reported as `un`, enriched with a fuzzy
// "did you mean" suggestion drawn from every name currently visible plus
// the builtin table. This is deliberately stricter than resolveRef's
// implicit-static leniency for plain variable references.
func (a *Analyzer) resolveCallee(name string, pos diag.Pos, scope *Scope) error {
	if _, ok := scope.Lookup(name); ok {
		return nil
	}
	if _, ok := a.implicitStatics[name]; ok {
		return nil
	}
	d := diag.New(diag.CodeUndefined, pos, name)
	candidates := append(scope.AllVisibleNames(), builtins.Names...)
	d = diag.Suggest(d, name, candidates)
	return &Error{Diag: d}
}

// appendImplicitStatics synthesizes a scalar ExternDef, flagged
// IsImplicitStatic, for every name pass 2 found unresolved — unless an
// explicit extern with that name already exists (the source declared it,
// just after the first use the analyzer happened to see it from).
func (a *Analyzer) appendImplicitStatics(prog *ast.Program) {
	names := append([]string(nil), a.implicitOrder...)
	sort.Strings(names)
	for _, name := range names {
		if a.explicitExternNames[name] {
			continue
		}
		pos := a.implicitStatics[name]
		prog.Tops = append(prog.Tops, ast.Top{
			Kind: ast.TopExternDef,
			Extern: &ast.ExternItem{
				Name:             name,
				Variant:          ast.ExternScalar,
				IsImplicitStatic: true,
				Pos:              pos,
			},
			Pos: pos,
		})
		a.global.Declare(&Symbol{Kind: SymVar, Name: name, Pos: pos, IsExtern: true})
	}
}
