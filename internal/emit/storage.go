package emit

import (
	"fmt"
	"strings"

	"github.com/frankischilling/bcc/internal/ast"
)

// emitStorage renders every Top's storage declaration in source order
// (spec §4.6.4) and accumulates the C statements that belong in the
// file-scoped init routine (scalar/blob/vector initializers, computed with
// the edge-subvector algorithm of §4.6.5). Function definitions are skipped
// here; emitFunction handles those separately.
func (e *Emitter) emitStorage(prog *ast.Program) (decls string, initStmts []string, err error) {
	var b strings.Builder
	for _, top := range prog.Tops {
		switch top.Kind {
		case ast.TopExternDef, ast.TopExternDecl:
			stmts, err := e.emitExternItem(&b, top.Extern)
			if err != nil {
				return "", nil, err
			}
			initStmts = append(initStmts, stmts...)
		case ast.TopFunction:
			// storage for functions (none) is handled by emitFunction
		case ast.TopGlobalAuto:
			// no current grammar production reaches this; nothing to store
		}
	}
	return b.String(), initStmts, nil
}

func (e *Emitter) emitExternItem(b *strings.Builder, item *ast.ExternItem) (initStmts []string, err error) {
	mname := e.mangle.Mangle(item.Name)

	switch item.Variant {
	case ast.ExternScalar:
		fmt.Fprintf(b, "word %s;\n", mname)
		if item.Init != nil && item.Init.Expr != nil {
			initStmts = append(initStmts, fmt.Sprintf("%s = %s;", mname, e.lowerExpr(item.Init.Expr)))
		}
		return initStmts, nil

	case ast.ExternBlob:
		return e.emitBlob(b, mname, item)

	case ast.ExternVector:
		return e.emitVector(b, mname, item)

	default:
		return nil, fmt.Errorf("emit: unknown extern variant for %q", item.Name)
	}
}

// emitBlob handles spec §4.6.4's blob case: a single string initializer
// lowers to a word cell holding the pool pointer; anything else reserves a
// backing array sized by the edge-subvector formulas and fills it with a
// single depth-first pass.
func (e *Emitter) emitBlob(b *strings.Builder, mname string, item *ast.ExternItem) ([]string, error) {
	if item.Init == nil {
		fmt.Fprintf(b, "word %s;\n", mname)
		return nil, nil
	}

	if len(item.Init.List) == 1 && item.Init.List[0].Expr != nil {
		if str, ok := item.Init.List[0].Expr.(*ast.Str); ok {
			fmt.Fprintf(b, "word %s;\n", mname)
			idx := e.pool.Intern(str.Value)
			return []string{fmt.Sprintf("%s = B_PTR(%s);", mname, e.pool.CName(idx))}, nil
		}
	}

	storeName := "__" + mname + "_blob"
	size := edgeWordsTotal(item.Init.List)
	fmt.Fprintf(b, "static word %s[%d];\n", storeName, size)
	fmt.Fprintf(b, "word %s;\n", mname)

	initStmts := []string{fmt.Sprintf("%s = B_PTR(&%s[0]);", mname, storeName)}
	cursor := nestedBaseLen(item.Init.List)
	initStmts = append(initStmts, e.fillList(storeName, item.Init.List, 0, &cursor)...)
	return initStmts, nil
}

// emitVector handles spec §4.6.4's vector case: the outer length is the
// initializer length when brackets were empty, else the larger of the
// folded bound (plus one, since a B vector bound is an upper index) and the
// initializer length; the tail region holds nested edge subvectors.
func (e *Emitter) emitVector(b *strings.Builder, mname string, item *ast.ExternItem) ([]string, error) {
	initLen := 0
	var list []ast.Init
	if item.Init != nil {
		list = item.Init.List
		initLen = len(list)
	}

	outerLen := initLen
	if !item.HasEmpty && item.Bound != nil {
		if item.BoundFold+1 > int64(outerLen) {
			outerLen = int(item.BoundFold + 1)
		}
	}
	if outerLen == 0 {
		outerLen = 1
	}

	tail := edgeTailWordsTop(list)
	storeName := "__" + mname + "_store"
	fmt.Fprintf(b, "static word %s[%d];\n", storeName, outerLen+tail)
	fmt.Fprintf(b, "word %s;\n", mname)

	initStmts := []string{fmt.Sprintf("%s = B_PTR(&%s[0]);", mname, storeName)}
	if len(list) > 0 {
		cursor := outerLen
		initStmts = append(initStmts, e.fillList(storeName, list, 0, &cursor)...)
	}
	return initStmts, nil
}

// nestedBaseLen is spec §4.6.5's nested_base_len: even an empty list
// reserves one word.
func nestedBaseLen(list []ast.Init) int {
	if len(list) == 0 {
		return 1
	}
	return len(list)
}

// edgeWordsTotal is spec §4.6.5's edge_words_total: this list's own base
// region plus every nested list child's own total, recursively.
func edgeWordsTotal(list []ast.Init) int {
	total := nestedBaseLen(list)
	for _, child := range list {
		if child.IsList() {
			total += edgeWordsTotal(child.List)
		}
	}
	return total
}

// edgeTailWordsTop is spec §4.6.5's edge_tail_words_top: the sum of
// edge_words_total over this list's immediate list-valued children (the
// root's own base region is accounted for separately by the caller).
func edgeTailWordsTop(list []ast.Init) int {
	total := 0
	for _, child := range list {
		if child.IsList() {
			total += edgeWordsTotal(child.List)
		}
	}
	return total
}

// fillList performs the single depth-first initialization pass of
// §4.6.5: a plain-expression slot is assigned directly; a nested-list slot
// is assigned the address of where that child's own base region begins
// (cursor), which is then where the child is recursively laid out, after
// which cursor advances past everything the child itself consumed.
func (e *Emitter) fillList(arrName string, list []ast.Init, base int, cursor *int) []string {
	var out []string
	for j, elem := range list {
		switch {
		case elem.IsList():
			childBase := *cursor
			out = append(out, fmt.Sprintf("%s[%d] = B_PTR(&%s[%d]);", arrName, base+j, arrName, childBase))
			*cursor = childBase + nestedBaseLen(elem.List)
			out = append(out, e.fillList(arrName, elem.List, childBase, cursor)...)
			*cursor = childBase + edgeWordsTotal(elem.List)
		case elem.Expr != nil:
			out = append(out, fmt.Sprintf("%s[%d] = %s;", arrName, base+j, e.lowerInitExpr(elem.Expr)))
		default:
			out = append(out, fmt.Sprintf("%s[%d] = 0;", arrName, base+j))
		}
	}
	return out
}

// lowerInitExpr lowers an initializer expression, special-casing the
// address of a simple global variable (spec §4.6.5's closing rule: it emits
// the B-pointer form of the address, scaled per the pointer model) rather
// than falling through to the general unary '&' lowering, which targets a
// runtime lvalue address rather than a storage-layout constant.
func (e *Emitter) lowerInitExpr(expr ast.Expr) string {
	if pre, ok := expr.(*ast.UnaryPrefix); ok && pre.Op == ast.PrefixAddr {
		if v, ok := pre.Operand.(*ast.Var); ok {
			return fmt.Sprintf("B_ADDR(%s)", e.mangle.Mangle(v.Name))
		}
	}
	return e.lowerExpr(expr)
}
