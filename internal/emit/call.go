package emit

import (
	"fmt"
	"strings"

	"github.com/frankischilling/bcc/internal/ast"
	"github.com/frankischilling/bcc/internal/builtins"
)

// lowerCall implements spec §4.6.7. A plain-identifier callee in the
// builtin table is prefixed with "b_"; a plain-identifier callee naming one
// of the wrapped C-standard functions gets its pointer/size/format
// arguments converted; "callf" is lowered to the n-ary dynamic dispatcher;
// everything else (including a computed callee expression) is a direct C
// call through the mangled name.
func (e *Emitter) lowerCall(c *ast.Call) string {
	name, isIdent := c.Callee.(*ast.Var)
	if !isIdent {
		args := make([]string, len(c.Args))
		for i, a := range c.Args {
			args[i] = e.lowerExpr(a)
		}
		return fmt.Sprintf("(%s)(%s)", e.lowerExpr(c.Callee), strings.Join(args, ", "))
	}

	if name.Name == "callf" {
		return e.lowerCallf(c)
	}

	if wrap, ok := builtins.IsCFunc(name.Name); ok {
		return e.lowerCFuncCall(wrap, c.Args)
	}

	callee := e.mangle.Mangle(name.Name)
	if builtins.IsBuiltin(name.Name) {
		callee = "b_" + name.Name
	}
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = e.lowerExpr(a)
	}
	return fmt.Sprintf("%s(%s)", callee, strings.Join(args, ", "))
}

// lowerCallf lowers "callf(name, arg...)" to "b_callf_dispatch(n, name,
// args...)" where n is the argument count minus the name slot; the runtime
// resolves name via the host dynamic linker and invokes an n-ary function
// pointer.
func (e *Emitter) lowerCallf(c *ast.Call) string {
	if len(c.Args) == 0 {
		return `b_callf_dispatch(0, (word)0)`
	}
	n := len(c.Args) - 1
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = e.lowerExpr(a)
	}
	return fmt.Sprintf("b_callf_dispatch(%d, %s)", n, strings.Join(args, ", "))
}

// lowerCFuncCall wraps a direct call to a well-known C-standard function per
// the per-function table in package builtins: pointer arguments are wrapped
// with B_CPTR, a size argument is scaled by sizeof(word) in word-addressed
// mode, a pointer-returning function's result is converted back to a B
// pointer, and a format-string argument (plus any %s arguments the literal
// format implies) goes through __b_cstr.
func (e *Emitter) lowerCFuncCall(wrap builtins.CFuncWrap, args []ast.Expr) string {
	isPtrArg := make(map[int]bool, len(wrap.PtrArgs))
	for _, i := range wrap.PtrArgs {
		isPtrArg[i] = true
	}

	var strArgsFromFormat map[int]bool
	if wrap.FormatArg >= 0 && wrap.FormatArg < len(args) {
		if lit, ok := args[wrap.FormatArg].(*ast.Str); ok {
			strArgsFromFormat = formatStringArgPositions(lit.Value, wrap.FormatArg)
		}
	}

	rendered := make([]string, len(args))
	for i, a := range args {
		switch {
		case i == wrap.FormatArg:
			rendered[i] = fmt.Sprintf("__b_cstr(%s)", e.lowerExpr(a))
		case isPtrArg[i]:
			rendered[i] = fmt.Sprintf("B_CPTR(%s)", e.lowerExpr(a))
		case i == wrap.ScaledSizeArg && !e.opts.BytePtr:
			rendered[i] = fmt.Sprintf("((size_t)(%s) * sizeof(word))", e.lowerExpr(a))
		case strArgsFromFormat[i]:
			rendered[i] = fmt.Sprintf("__b_cstr(%s)", e.lowerExpr(a))
		default:
			rendered[i] = e.lowerExpr(a)
		}
	}

	call := fmt.Sprintf("%s(%s)", wrap.Name, strings.Join(rendered, ", "))
	if wrap.ReturnsPtr {
		return fmt.Sprintf("B_PTR(%s)", call)
	}
	return call
}

// formatStringArgPositions scans a printf-style format string and returns
// the argument indices (relative to the call, formatArgIdx+1 being the
// first variadic argument) that a "%s" conversion consumes, accounting for
// flags, width (including '*'), precision (including '*'), and length
// modifiers — each of which can itself consume a preceding variadic slot.
func formatStringArgPositions(format string, formatArgIdx int) map[int]bool {
	out := make(map[int]bool)
	argIdx := formatArgIdx + 1
	i := 0
	for i < len(format) {
		if format[i] != '%' {
			i++
			continue
		}
		i++
		if i >= len(format) {
			break
		}
		if format[i] == '%' {
			i++
			continue
		}
		// flags
		for i < len(format) && strings.ContainsRune("-+ 0#", rune(format[i])) {
			i++
		}
		// width
		if i < len(format) && format[i] == '*' {
			argIdx++
			i++
		} else {
			for i < len(format) && format[i] >= '0' && format[i] <= '9' {
				i++
			}
		}
		// precision
		if i < len(format) && format[i] == '.' {
			i++
			if i < len(format) && format[i] == '*' {
				argIdx++
				i++
			} else {
				for i < len(format) && format[i] >= '0' && format[i] <= '9' {
					i++
				}
			}
		}
		// length modifiers
		for i < len(format) && strings.ContainsRune("hlLqjzt", rune(format[i])) {
			i++
		}
		if i >= len(format) {
			break
		}
		conv := format[i]
		i++
		if conv == 's' {
			out[argIdx] = true
		}
		if conv != 0 {
			argIdx++
		}
	}
	return out
}
