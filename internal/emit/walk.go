package emit

import "github.com/frankischilling/bcc/internal/ast"

// internStrings performs the preliminary AST walk of spec §4.6.2, interning
// every string literal reached from prog before any C is emitted, so pool
// indices are stable no matter which function is emitted first.
func internStrings(pool *stringPool, prog *ast.Program) {
	for _, top := range prog.Tops {
		switch top.Kind {
		case ast.TopFunction:
			internStmt(pool, top.Function.Body)
		case ast.TopExternDef:
			internInit(pool, top.Extern.Init)
		case ast.TopGlobalAuto:
			internStmt(pool, top.Stmt)
		}
	}
}

func internInit(pool *stringPool, in *ast.Init) {
	if in == nil {
		return
	}
	if in.IsList() {
		for i := range in.List {
			internInit(pool, &in.List[i])
		}
		return
	}
	if in.Expr != nil {
		internExpr(pool, in.Expr)
	}
}

func internStmt(pool *stringPool, s ast.Stmt) {
	switch v := s.(type) {
	case nil:
	case *ast.Empty, *ast.Break, *ast.Continue:
	case *ast.Block:
		for _, st := range v.Stmts {
			internStmt(pool, st)
		}
	case *ast.AutoDecl:
		for _, it := range v.Items {
			if it.Size != nil {
				internExpr(pool, it.Size)
			}
		}
	case *ast.ExtrnDecl:
	case *ast.If:
		internExpr(pool, v.Cond)
		internStmt(pool, v.Then)
		internStmt(pool, v.Else)
	case *ast.While:
		internExpr(pool, v.Cond)
		internStmt(pool, v.Body)
	case *ast.Return:
		if v.Value != nil {
			internExpr(pool, v.Value)
		}
	case *ast.ExprStmt:
		internExpr(pool, v.X)
	case *ast.Goto:
	case *ast.Label:
		internStmt(pool, v.Stmt)
	case *ast.Switch:
		internExpr(pool, v.X)
		internStmt(pool, v.Body)
	case *ast.Case:
	default:
	}
}

func internExpr(pool *stringPool, e ast.Expr) {
	switch v := e.(type) {
	case nil:
	case *ast.Num:
	case *ast.Str:
		pool.Intern(v.Value)
	case *ast.Var:
	case *ast.Call:
		internExpr(pool, v.Callee)
		for _, a := range v.Args {
			internExpr(pool, a)
		}
	case *ast.Index:
		internExpr(pool, v.X)
		internExpr(pool, v.Index)
	case *ast.UnaryPrefix:
		internExpr(pool, v.Operand)
	case *ast.UnaryPostfix:
		internExpr(pool, v.Operand)
	case *ast.Binary:
		internExpr(pool, v.Lhs)
		internExpr(pool, v.Rhs)
	case *ast.Assign:
		internExpr(pool, v.Lhs)
		internExpr(pool, v.Rhs)
	case *ast.Ternary:
		internExpr(pool, v.Cond)
		internExpr(pool, v.Then)
		internExpr(pool, v.Else)
	case *ast.Comma:
		internExpr(pool, v.Lhs)
		internExpr(pool, v.Rhs)
	}
}

// collectCases gathers every *ast.Case reachable from s without descending
// into a nested *ast.Switch, in source order, per spec §4.6.8 step 1. It
// mirrors the nesting that parser.wrapCaseThen produces: a case label wraps
// its following statement in a two-element Block, so "adjacent" labels are
// parent/child, not flat siblings.
func collectCases(s ast.Stmt) []*ast.Case {
	var out []*ast.Case
	var walk func(ast.Stmt)
	walk = func(s ast.Stmt) {
		switch v := s.(type) {
		case nil:
		case *ast.Case:
			out = append(out, v)
		case *ast.Block:
			for _, st := range v.Stmts {
				walk(st)
			}
		case *ast.If:
			walk(v.Then)
			walk(v.Else)
		case *ast.While:
			walk(v.Body)
		case *ast.Label:
			walk(v.Stmt)
		case *ast.Switch:
			// do not descend: a nested switch owns its own cases
		default:
		}
	}
	walk(s)
	return out
}
