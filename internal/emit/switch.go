package emit

import (
	"fmt"
	"strings"

	"github.com/frankischilling/bcc/internal/ast"
)

// lowerSwitch implements spec §4.6.8. Labels buried anywhere in the body
// (including inside nested if/while) are collected up front and rewritten
// as unique C labels; a dispatch table of conditional jumps, evaluated once
// up front, replaces the fallthrough-by-default C switch with B's "labels
// can be nested arbitrarily" semantics.
//
// Unlike the spec prose's "for(;;){ … break; }" scaffold, this lowers
// without introducing a synthetic C loop: a bare goto to the switch's end
// label stands in for "break" while inside the switch (tracked via
// e.breakStack), so a B continue lexically inside a switch that is itself
// inside a while still continues that while rather than a wrapper loop the
// switch never asked for.
func (e *Emitter) lowerSwitch(v *ast.Switch) string {
	cases := collectCases(v.Body)
	sid := e.nextSwitchID()

	labels := make(map[*ast.Case]string, len(cases))
	var defaultLabel string
	for i, c := range cases {
		label := fmt.Sprintf("__bsw%d_case%d", sid, i)
		labels[c] = label
		if c.IsDefault {
			defaultLabel = label
		}
	}

	dispatchLabel := fmt.Sprintf("__bsw%d_dispatch", sid)
	endLabel := fmt.Sprintf("__bsw%d_end", sid)
	swVar := fmt.Sprintf("__bsw%d_val", sid)

	e.breakStack = append(e.breakStack, breakTarget{gotoLabel: endLabel})
	body := e.lowerSwitchBody(v.Body, labels)
	e.breakStack = e.breakStack[:len(e.breakStack)-1]

	var b strings.Builder
	b.WriteString("{\n")
	fmt.Fprintf(&b, "word %s = %s;\n", swVar, e.lowerExpr(v.X))
	fmt.Fprintf(&b, "goto %s;\n", dispatchLabel)
	b.WriteString(body)
	fmt.Fprintf(&b, "goto %s;\n", endLabel)
	fmt.Fprintf(&b, "%s: ;\n", dispatchLabel)
	for _, c := range cases {
		if c.IsDefault {
			continue
		}
		fmt.Fprintf(&b, "if %s goto %s;\n", caseTest(swVar, c), labels[c])
	}
	if defaultLabel != "" {
		fmt.Fprintf(&b, "goto %s;\n", defaultLabel)
	} else {
		fmt.Fprintf(&b, "goto %s;\n", endLabel)
	}
	fmt.Fprintf(&b, "%s: ;\n", endLabel)
	b.WriteString("}\n")
	return b.String()
}

// caseTest renders the dispatch-table test for one case: a point case tests
// equality, a range case (lo <= x <= hi) tests the interval, a bounded form
// tests with the recorded relational operator.
func caseTest(swVar string, c *ast.Case) string {
	if c.HasRange {
		return fmt.Sprintf("(%s >= %dLL && %s <= %dLL)", swVar, c.Lo, swVar, c.Hi)
	}
	if c.RelOp != ast.CaseRelNone {
		sym := map[ast.CaseRelOp]string{
			ast.CaseRelLt: "<", ast.CaseRelLe: "<=",
			ast.CaseRelGt: ">", ast.CaseRelGe: ">=",
		}[c.RelOp]
		return fmt.Sprintf("(%s %s %dLL)", swVar, sym, c.Lo)
	}
	return fmt.Sprintf("(%s == %dLL)", swVar, c.Lo)
}

// lowerSwitchBody mirrors lowerStmt for every statement shape that can carry
// a buried case label (Block, If, While, Label — the same set collectCases
// descends into), replacing each *ast.Case with its assigned C label; every
// other statement, including a nested Switch, is lowered normally.
func (e *Emitter) lowerSwitchBody(s ast.Stmt, labels map[*ast.Case]string) string {
	switch v := s.(type) {
	case nil:
		return ""

	case *ast.Case:
		return fmt.Sprintf("%s: ;\n", labels[v])

	case *ast.Block:
		var b strings.Builder
		b.WriteString("{\n")
		for _, st := range v.Stmts {
			b.WriteString(e.lowerSwitchBody(st, labels))
		}
		b.WriteString("}\n")
		return b.String()

	case *ast.If:
		var b strings.Builder
		fmt.Fprintf(&b, "if (%s != 0) %s", e.lowerExpr(v.Cond), e.lowerSwitchBody(v.Then, labels))
		if v.Else != nil {
			fmt.Fprintf(&b, "else %s", e.lowerSwitchBody(v.Else, labels))
		}
		return b.String()

	case *ast.While:
		e.breakStack = append(e.breakStack, breakTarget{native: true})
		body := e.lowerSwitchBody(v.Body, labels)
		e.breakStack = e.breakStack[:len(e.breakStack)-1]
		return fmt.Sprintf("while (%s != 0) %s", e.lowerExpr(v.Cond), body)

	case *ast.Label:
		return fmt.Sprintf("%s: %s", e.mangle.Mangle(v.Name), e.lowerSwitchBody(v.Stmt, labels))

	default:
		return e.lowerStmt(s)
	}
}
