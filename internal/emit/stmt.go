package emit

import (
	"fmt"
	"strings"

	"github.com/frankischilling/bcc/internal/ast"
	"github.com/frankischilling/bcc/internal/invariant"
)

// lowerStmt renders s as a sequence of C statement lines. Scoping follows
// the AST directly: a Block becomes a brace-delimited C block, and nothing
// here needs its own scope tracking since every name was already mangled to
// a unique C identifier by the semantic pass plus this emitter's mangler.
func (e *Emitter) lowerStmt(s ast.Stmt) string {
	switch v := s.(type) {
	case *ast.Empty:
		return ";\n"

	case *ast.Block:
		var b strings.Builder
		b.WriteString("{\n")
		for _, st := range v.Stmts {
			b.WriteString(e.lowerStmt(st))
		}
		b.WriteString("}\n")
		return b.String()

	case *ast.AutoDecl:
		return e.lowerAutoDecl(v)

	case *ast.ExtrnDecl:
		// Externs are already emitted as file-scope storage; the extrn
		// statement only brings the mangled name into this function's
		// reference set, which the mangler already does on first use.
		for _, name := range v.Names {
			e.mangle.Mangle(name)
		}
		return ""

	case *ast.If:
		var b strings.Builder
		fmt.Fprintf(&b, "if (%s != 0) %s", e.lowerExpr(v.Cond), e.lowerStmt(v.Then))
		if v.Else != nil {
			fmt.Fprintf(&b, "else %s", e.lowerStmt(v.Else))
		}
		return b.String()

	case *ast.While:
		e.breakStack = append(e.breakStack, breakTarget{native: true})
		body := e.lowerStmt(v.Body)
		e.breakStack = e.breakStack[:len(e.breakStack)-1]
		return fmt.Sprintf("while (%s != 0) %s", e.lowerExpr(v.Cond), body)

	case *ast.Return:
		if v.Value == nil {
			return "return 0;\n"
		}
		return fmt.Sprintf("return %s;\n", e.lowerExpr(v.Value))

	case *ast.ExprStmt:
		return fmt.Sprintf("%s;\n", e.lowerExpr(v.X))

	case *ast.Break:
		return e.lowerBreak()

	case *ast.Continue:
		return "continue;\n"

	case *ast.Goto:
		return fmt.Sprintf("goto %s;\n", e.mangle.Mangle(v.Label))

	case *ast.Label:
		return fmt.Sprintf("%s: %s", e.mangle.Mangle(v.Name), e.lowerStmt(v.Stmt))

	case *ast.Switch:
		return e.lowerSwitch(v)

	case *ast.Case:
		// A bare Case reached outside lowerSwitch's dispatch rewrite means
		// the body contains a label this pass didn't visit via a Switch
		// ancestor; that would be a parser/analyzer invariant violation.
		invariant.Unreachable("case label reached outside switch lowering")
		return ""

	default:
		invariant.Unreachable("unhandled statement node %T", s)
		return ""
	}
}

// breakTarget records what a B "break;" compiles to: a plain C break when
// the nearest enclosing construct is a while, or a goto to the switch's end
// label when it's a switch (see lowerSwitch's doc comment for why).
type breakTarget struct {
	native    bool
	gotoLabel string
}

func (e *Emitter) lowerBreak() string {
	if len(e.breakStack) == 0 {
		invariant.Unreachable("break outside while or switch reached the emitter")
	}
	top := e.breakStack[len(e.breakStack)-1]
	if top.native {
		return "break;\n"
	}
	return fmt.Sprintf("goto %s;\n", top.gotoLabel)
}

// lowerAutoDecl emits each local's storage: a plain word for a scalar, or a
// stack array plus pointer variable for a local vector (spec §4.6.4: the B
// bound is an upper index, so capacity is size+1).
func (e *Emitter) lowerAutoDecl(v *ast.AutoDecl) string {
	var b strings.Builder
	for _, item := range v.Items {
		mname := e.mangle.Mangle(item.Name)
		if item.Size == nil {
			fmt.Fprintf(&b, "word %s = 0;\n", mname)
			continue
		}
		size := item.Size.(*ast.Num).Value
		storeName := "__" + mname + "_store"
		fmt.Fprintf(&b, "word %s[%d];\n", storeName, size+1)
		fmt.Fprintf(&b, "word %s = B_PTR(&%s[0]);\n", mname, storeName)
	}
	return b.String()
}
