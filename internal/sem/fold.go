package sem

import (
	"fmt"

	"github.com/frankischilling/bcc/internal/ast"
)

// FoldError reports that an expression could not be reduced to a constant.
type FoldError struct{ Reason string }

func (e *FoldError) Error() string { return e.Reason }

// Fold evaluates a constant expression at compile time: NUM literals, unary
// minus/logical-not, binary arithmetic (wrap-on-overflow, computed in
// unsigned then reinterpreted signed, matching the word model the emitter
// targets), bitwise '&' '|', relationals, and comma (which folds and
// discards the left operand). Division or modulo by zero fails the fold
// rather than panicking, since a non-constant result must surface as a
// diagnostic at the call site that required one (a vector bound or a case
// label), not as an internal error.
func Fold(e ast.Expr) (int64, error) {
	switch v := e.(type) {
	case *ast.Num:
		return v.Value, nil

	case *ast.Str:
		return 0, &FoldError{Reason: "string literal is not a constant expression"}

	case *ast.Var:
		return 0, &FoldError{Reason: fmt.Sprintf("%q is not a constant", v.Name)}

	case *ast.UnaryPrefix:
		operand, err := Fold(v.Operand)
		if err != nil {
			return 0, err
		}
		switch v.Op {
		case ast.PrefixNeg:
			return wrapNeg(operand), nil
		case ast.PrefixNot:
			if operand == 0 {
				return 1, nil
			}
			return 0, nil
		default:
			return 0, &FoldError{Reason: "operator is not valid in a constant expression"}
		}

	case *ast.Binary:
		lhs, err := Fold(v.Lhs)
		if err != nil {
			return 0, err
		}
		rhs, err := Fold(v.Rhs)
		if err != nil {
			return 0, err
		}
		return foldBinary(v.Op, lhs, rhs)

	case *ast.Comma:
		if _, err := Fold(v.Lhs); err != nil {
			return 0, err
		}
		return Fold(v.Rhs)

	case *ast.Ternary:
		cond, err := Fold(v.Cond)
		if err != nil {
			return 0, err
		}
		if cond != 0 {
			return Fold(v.Then)
		}
		return Fold(v.Else)

	default:
		return 0, &FoldError{Reason: "expression is not valid in a constant context"}
	}
}

func foldBinary(op ast.BinaryOp, lhs, rhs int64) (int64, error) {
	switch op {
	case ast.BinAdd:
		return wrapAdd(lhs, rhs), nil
	case ast.BinSub:
		return wrapAdd(lhs, wrapNeg(rhs)), nil
	case ast.BinMul:
		return wrapMul(lhs, rhs), nil
	case ast.BinDiv:
		if rhs == 0 {
			return 0, &FoldError{Reason: "division by zero in constant expression"}
		}
		return lhs / rhs, nil
	case ast.BinMod:
		if rhs == 0 {
			return 0, &FoldError{Reason: "modulo by zero in constant expression"}
		}
		return lhs % rhs, nil
	case ast.BinBitAnd:
		return lhs & rhs, nil
	case ast.BinBitOr:
		return lhs | rhs, nil
	case ast.BinShl:
		return lhs << uint(rhs&63), nil
	case ast.BinShr:
		return lhs >> uint(rhs&63), nil
	case ast.BinEq:
		return boolWord(lhs == rhs), nil
	case ast.BinNe:
		return boolWord(lhs != rhs), nil
	case ast.BinLt:
		return boolWord(lhs < rhs), nil
	case ast.BinLe:
		return boolWord(lhs <= rhs), nil
	case ast.BinGt:
		return boolWord(lhs > rhs), nil
	case ast.BinGe:
		return boolWord(lhs >= rhs), nil
	case ast.BinOr:
		return boolWord(lhs != 0 || rhs != 0), nil
	case ast.BinAnd:
		return boolWord(lhs != 0 && rhs != 0), nil
	default:
		return 0, &FoldError{Reason: "operator is not valid in a constant expression"}
	}
}

func boolWord(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// wrapAdd, wrapMul, wrapNeg compute in uint64 and reinterpret the bit
// pattern as int64, matching the word model's "unsigned arithmetic then
// reinterpret signed" wrap semantics for the host's native word width; the
// emitter's WADD/WMUL/WNEG macros apply the narrower 16/32-bit mask only
// when that mode is selected, which the constant folder (used solely for
// compile-time bounds and case labels, always host-width) does not need to
// replicate.
func wrapAdd(a, b int64) int64 { return int64(uint64(a) + uint64(b)) }
func wrapMul(a, b int64) int64 { return int64(uint64(a) * uint64(b)) }
func wrapNeg(a int64) int64    { return int64(-uint64(a)) }
