package emit

import (
	"fmt"
	"strings"

	"github.com/frankischilling/bcc/internal/ast"
	"github.com/frankischilling/bcc/internal/invariant"
)

// lowerExpr renders e as a C expression per spec §4.6.6. It never emits
// statements; complex lvalue mutation (increment/decrement and compound
// assignment on an index or dereference target) goes through the b_* helper
// functions so the lvalue's address is evaluated exactly once. Relational
// assignment is expanded inline and evaluates its lvalue twice.
func (e *Emitter) lowerExpr(expr ast.Expr) string {
	switch v := expr.(type) {
	case *ast.Num:
		return fmt.Sprintf("((word)%dLL)", v.Value)

	case *ast.Str:
		idx := e.pool.Intern(v.Value)
		return fmt.Sprintf("B_PTR(%s)", e.pool.CName(idx))

	case *ast.Var:
		return e.mangle.Mangle(v.Name)

	case *ast.Call:
		return e.lowerCall(v)

	case *ast.Index:
		return fmt.Sprintf("B_INDEX(%s, %s)", e.lowerExpr(v.X), e.lowerExpr(v.Index))

	case *ast.UnaryPrefix:
		return e.lowerUnaryPrefix(v)

	case *ast.UnaryPostfix:
		return e.lowerUnaryPostfix(v)

	case *ast.Binary:
		return e.lowerBinary(v)

	case *ast.Assign:
		return e.lowerAssign(v)

	case *ast.Ternary:
		return fmt.Sprintf("(%s ? %s : %s)", e.lowerExpr(v.Cond), e.lowerExpr(v.Then), e.lowerExpr(v.Else))

	case *ast.Comma:
		return fmt.Sprintf("(%s, %s)", e.lowerExpr(v.Lhs), e.lowerExpr(v.Rhs))

	default:
		invariant.Unreachable("unhandled expression node %T", expr)
		return ""
	}
}

// charAccessorOperand reports whether deref is the special "*(str + k)" or
// "*(k + str)" byte-addressing idiom over a string literal, returning the
// pool pointer expression and the byte index expression when it is.
func (e *Emitter) charAccessorOperand(operand ast.Expr) (ptrExpr, idxExpr string, ok bool) {
	bin, isBin := operand.(*ast.Binary)
	if !isBin || bin.Op != ast.BinAdd {
		return "", "", false
	}
	if str, isStr := bin.Lhs.(*ast.Str); isStr {
		return e.lowerExpr(str), e.lowerExpr(bin.Rhs), true
	}
	if str, isStr := bin.Rhs.(*ast.Str); isStr {
		return e.lowerExpr(str), e.lowerExpr(bin.Lhs), true
	}
	return "", "", false
}

func (e *Emitter) lowerUnaryPrefix(v *ast.UnaryPrefix) string {
	switch v.Op {
	case ast.PrefixNeg:
		if e.opts.WordBits == 0 {
			return fmt.Sprintf("(-%s)", e.lowerExpr(v.Operand))
		}
		return fmt.Sprintf("WNEG(%s)", e.lowerExpr(v.Operand))

	case ast.PrefixNot:
		return fmt.Sprintf("((%s) == 0 ? (word)1 : (word)0)", e.lowerExpr(v.Operand))

	case ast.PrefixDeref:
		if ptr, idx, ok := e.charAccessorOperand(v.Operand); ok {
			return fmt.Sprintf("b_char(%s, %s)", ptr, idx)
		}
		return fmt.Sprintf("B_DEREF(%s)", e.lowerExpr(v.Operand))

	case ast.PrefixAddr:
		if idx, isIdx := v.Operand.(*ast.Index); isIdx {
			return fmt.Sprintf("B_ADDR_INDEX(%s, %s)", e.lowerExpr(idx.X), e.lowerExpr(idx.Index))
		}
		return fmt.Sprintf("B_ADDR(%s)", e.lowerExpr(v.Operand))

	case ast.PrefixInc, ast.PrefixDec:
		helper := "b_preinc"
		if v.Op == ast.PrefixDec {
			helper = "b_predec"
		}
		return e.lowerIncDec(helper, v.Operand)

	default:
		invariant.Unreachable("unhandled prefix operator %v", v.Op)
		return ""
	}
}

func (e *Emitter) lowerUnaryPostfix(v *ast.UnaryPostfix) string {
	helper := "b_postinc"
	if v.Op == ast.PostfixDec {
		helper = "b_postdec"
	}
	return e.lowerIncDec(helper, v.Operand)
}

// lowerIncDec implements the rule of §4.6.6: a bare-variable operand (the
// only lvalue shape with no side effects of its own to evaluate once) lowers
// to a plain C ++/--; anything else, or any wrapping word width, goes
// through the b_* helper so the lvalue's address is computed a single time.
func (e *Emitter) lowerIncDec(helper string, operand ast.Expr) string {
	if _, isVar := operand.(*ast.Var); isVar && e.opts.WordBits == 0 {
		op := "++"
		if strings.HasSuffix(helper, "dec") {
			op = "--"
		}
		if strings.HasPrefix(helper, "b_pre") {
			return fmt.Sprintf("(%s%s)", op, e.lowerExpr(operand))
		}
		return fmt.Sprintf("(%s%s)", e.lowerExpr(operand), op)
	}
	return fmt.Sprintf("%s(%s)", helper, e.lowerAddressOfLvalue(operand))
}

// lowerAddressOfLvalue renders "&operand" as a word* for one of the b_*
// helper functions, without going through the B pointer-model macros (these
// helpers take a native C pointer into the storage, always host-addressed).
func (e *Emitter) lowerAddressOfLvalue(operand ast.Expr) string {
	switch v := operand.(type) {
	case *ast.Var:
		return fmt.Sprintf("(&%s)", e.mangle.Mangle(v.Name))
	case *ast.Index:
		return fmt.Sprintf("(&B_INDEX(%s, %s))", e.lowerExpr(v.X), e.lowerExpr(v.Index))
	case *ast.UnaryPrefix:
		invariant.Check(v.Op == ast.PrefixDeref, "lvalue address-of target must be a dereference, got prefix op %v", v.Op)
		return fmt.Sprintf("(&B_DEREF(%s))", e.lowerExpr(v.Operand))
	default:
		invariant.Unreachable("not an lvalue: %T", operand)
		return ""
	}
}

var binaryOpSym = map[ast.BinaryOp]string{
	ast.BinEq: "==", ast.BinNe: "!=",
	ast.BinLt: "<", ast.BinLe: "<=", ast.BinGt: ">", ast.BinGe: ">=",
}

var wrappingMacro = map[ast.BinaryOp]string{
	ast.BinAdd: "WADD", ast.BinSub: "WSUB", ast.BinMul: "WMUL",
	ast.BinDiv: "WDIV", ast.BinMod: "WMOD",
	ast.BinShl: "WSHL", ast.BinShr: "WSHR",
	ast.BinBitAnd: "WAND", ast.BinBitOr: "WOR",
}

var nativeOpSym = map[ast.BinaryOp]string{
	ast.BinAdd: "+", ast.BinSub: "-", ast.BinMul: "*", ast.BinDiv: "/", ast.BinMod: "%",
	ast.BinShl: "<<", ast.BinShr: ">>", ast.BinBitAnd: "&", ast.BinBitOr: "|",
}

func (e *Emitter) lowerBinary(v *ast.Binary) string {
	switch v.Op {
	case ast.BinOr:
		return fmt.Sprintf("((%s) != 0 || (%s) != 0 ? (word)1 : (word)0)", e.lowerExpr(v.Lhs), e.lowerExpr(v.Rhs))
	case ast.BinAnd:
		return fmt.Sprintf("((%s) != 0 && (%s) != 0 ? (word)1 : (word)0)", e.lowerExpr(v.Lhs), e.lowerExpr(v.Rhs))
	}

	if sym, ok := binaryOpSym[v.Op]; ok {
		return fmt.Sprintf("((%s) %s (%s) ? (word)1 : (word)0)", e.lowerExpr(v.Lhs), sym, e.lowerExpr(v.Rhs))
	}

	if e.opts.WordBits != 0 {
		if macro, ok := wrappingMacro[v.Op]; ok {
			return fmt.Sprintf("%s(%s, %s)", macro, e.lowerExpr(v.Lhs), e.lowerExpr(v.Rhs))
		}
	}
	if sym, ok := nativeOpSym[v.Op]; ok {
		return fmt.Sprintf("(%s %s %s)", e.lowerExpr(v.Lhs), sym, e.lowerExpr(v.Rhs))
	}

	invariant.Unreachable("unhandled binary operator %v", v.Op)
	return ""
}

var compoundHelper = map[ast.AssignOp]string{
	ast.AssignAdd: "b_add_assign", ast.AssignSub: "b_sub_assign",
	ast.AssignMul: "b_mul_assign", ast.AssignDiv: "b_div_assign",
	ast.AssignMod: "b_mod_assign", ast.AssignAnd: "b_and_assign",
	ast.AssignOr: "b_or_assign", ast.AssignShl: "b_shl_assign",
	ast.AssignShr: "b_shr_assign",
}

var compoundOpSym = map[ast.AssignOp]string{
	ast.AssignAdd: "+=", ast.AssignSub: "-=", ast.AssignMul: "*=",
	ast.AssignDiv: "/=", ast.AssignMod: "%=", ast.AssignAnd: "&=",
	ast.AssignOr: "|=", ast.AssignShl: "<<=", ast.AssignShr: ">>=",
}

var relAssignSym = map[ast.AssignOp]string{
	ast.AssignLt: "<", ast.AssignLe: "<=", ast.AssignGt: ">", ast.AssignGe: ">=",
	ast.AssignEq: "==", ast.AssignNe: "!=",
}

// lowerAssign implements §4.6.6's assignment rules: plain assignment is a
// direct C '=' for a variable in native word width, and otherwise assigns
// through the lvalue's address ("*&lv = rhs"); a relational form "x =< y"
// expands to "x = (x < y)", evaluating x twice; a compound form uses a helper for
// any complex lvalue or any wrapping word width, and inline C otherwise.
func (e *Emitter) lowerAssign(v *ast.Assign) string {
	if sym, ok := relAssignSym[v.Op]; ok {
		return fmt.Sprintf("(%s = ((%s) %s (%s) ? (word)1 : (word)0))", e.lowerExpr(v.Lhs), e.lowerExpr(v.Lhs), sym, e.lowerExpr(v.Rhs))
	}

	_, isVar := v.Lhs.(*ast.Var)
	simple := isVar && e.opts.WordBits == 0

	if v.Op == ast.AssignPlain {
		if simple {
			return fmt.Sprintf("(%s = %s)", e.lowerExpr(v.Lhs), e.lowerExpr(v.Rhs))
		}
		return fmt.Sprintf("(*%s = %s)", e.lowerAddressOfLvalue(v.Lhs), e.lowerExpr(v.Rhs))
	}

	if simple {
		return fmt.Sprintf("(%s %s %s)", e.lowerExpr(v.Lhs), compoundOpSym[v.Op], e.lowerExpr(v.Rhs))
	}
	return fmt.Sprintf("%s(%s, %s)", compoundHelper[v.Op], e.lowerAddressOfLvalue(v.Lhs), e.lowerExpr(v.Rhs))
}
