// Package ast defines the typed tree produced by the parser: expressions,
// statements, external definitions, function definitions, and initializer
// trees. Every node is a strict tree (no cycles, no shared ownership) and
// carries the source location of the token that opened it.
package ast

import "github.com/frankischilling/bcc/internal/diag"

// Expr is the sum type of B expression nodes.
type Expr interface {
	exprNode()
	Position() diag.Pos
}

type Base struct{ Pos diag.Pos }

func (b Base) Position() diag.Pos { return b.Pos }

// Num is an integer literal.
type Num struct {
	Base
	Value int64
}

func (*Num) exprNode() {}

// Str is a string literal; Value is the already-unescaped byte content (the
// lexer resolves '*'-escapes), not including the EOT terminator that emission
// adds when materializing the packed string pool.
type Str struct {
	Base
	Value string
}

func (*Str) exprNode() {}

// Var is a bare identifier reference.
type Var struct {
	Base
	Name string
}

func (*Var) exprNode() {}

// Call is a function call expression: Callee(Args...).
type Call struct {
	Base
	Callee Expr
	Args   []Expr
}

func (*Call) exprNode() {}

// Index is a[i].
type Index struct {
	Base
	X     Expr // the indexed expression (the "a" in "a[i]")
	Index Expr
}

func (*Index) exprNode() {}

// PrefixOp identifies a unary prefix operator.
type PrefixOp int

const (
	PrefixNeg   PrefixOp = iota // -e
	PrefixNot                   // !e
	PrefixDeref                 // *e
	PrefixAddr                  // &e
	PrefixInc                   // ++e
	PrefixDec                   // --e
)

// UnaryPrefix is a prefix-operator expression.
type UnaryPrefix struct {
	Base
	Op      PrefixOp
	Operand Expr
}

func (*UnaryPrefix) exprNode() {}

// PostfixOp identifies a unary postfix operator. Postfix increment/decrement
// is a distinct node from prefix because it snapshots the pre-mutation
// rvalue.
type PostfixOp int

const (
	PostfixInc PostfixOp = iota
	PostfixDec
)

// UnaryPostfix is a postfix-operator expression.
type UnaryPostfix struct {
	Base
	Op      PostfixOp
	Operand Expr
}

func (*UnaryPostfix) exprNode() {}

// BinaryOp identifies a binary operator.
type BinaryOp int

const (
	BinOr BinaryOp = iota
	BinAnd
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
	BinAdd
	BinSub
	BinShl
	BinShr
	BinMul
	BinDiv
	BinMod
	BinBitOr
	BinBitAnd
)

// Binary is a binary-operator expression.
type Binary struct {
	Base
	Op       BinaryOp
	Lhs, Rhs Expr
}

func (*Binary) exprNode() {}

// AssignOp identifies an assignment-family operator: plain '=', one of B's
// "=<op>" compound forms, or a relational-assignment form ("x =< y" expands
// at emission time to "x = (x < y)").
type AssignOp int

const (
	AssignPlain AssignOp = iota
	AssignAdd
	AssignSub
	AssignMul
	AssignDiv
	AssignMod
	AssignAnd
	AssignOr
	AssignShl
	AssignShr
	AssignLt
	AssignLe
	AssignGt
	AssignGe
	AssignEq
	AssignNe
)

// Assign is an assignment expression, valid only when Lhs is an lvalue.
type Assign struct {
	Base
	Op       AssignOp
	Lhs, Rhs Expr
}

func (*Assign) exprNode() {}

// Ternary is cond ? then : else.
type Ternary struct {
	Base
	Cond, Then, Else Expr
}

func (*Ternary) exprNode() {}

// Comma is the lowest-precedence comma expression: Lhs, Rhs.
type Comma struct {
	Base
	Lhs, Rhs Expr
}

func (*Comma) exprNode() {}

// IsLvalue reports whether e is syntactically an lvalue: a variable, an
// index expression, or a unary-dereference expression. Used by the parser
// to enforce spec's lvalue discipline (assignment, address-of,
// increment/decrement).
func IsLvalue(e Expr) bool {
	switch v := e.(type) {
	case *Var:
		return true
	case *Index:
		return true
	case *UnaryPrefix:
		return v.Op == PrefixDeref
	default:
		return false
	}
}
