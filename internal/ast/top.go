package ast

import "github.com/frankischilling/bcc/internal/diag"

// Init is a scalar initializer expression or a nested "edge" subvector list.
type Init struct {
	Expr Expr   // set when this Init is a plain expression
	List []Init // set when this Init is a nested '{' ... '}' list
	Pos  diag.Pos
}

// IsList reports whether in is a nested initializer list rather than a plain
// expression.
func (in Init) IsList() bool { return in.List != nil }

// ExternVariant identifies the shape of an ExternItem.
type ExternVariant int

const (
	ExternScalar ExternVariant = iota
	ExternBlob
	ExternVector
)

// ExternItem is one external definition or declaration.
type ExternItem struct {
	Name      string
	Variant   ExternVariant
	Init      *Init // nil for a bare declaration or an uninitialized vector
	Bound     Expr  // ExternVector only: the bracketed size expression, nil if omitted
	HasBrack  bool  // ExternVector only: true if '[' ... ']' was written at all
	HasEmpty  bool  // ExternVector only: true for "name[]" (bound omitted but brackets present)
	BoundFold int64 // ExternVector only: the const-folded bound, valid when Bound != nil

	// IsImplicitStatic marks an ExternItem synthesized by the semantic pass
	// to back an undeclared identifier (spec's "implicit static promotion"),
	// rather than one that appeared in the source.
	IsImplicitStatic bool

	Pos diag.Pos
}

// Param is one formal parameter of a function definition.
type Param struct {
	Name string
	Pos  diag.Pos
}

// Function is a top-level function definition.
type Function struct {
	Name   string
	Params []Param
	Body   *Block
	Pos    diag.Pos
}

// TopKind identifies which alternative of the Top sum type is populated.
type TopKind int

const (
	TopGlobalAuto TopKind = iota // a bare statement at file scope (historically: a block of externs)
	TopFunction
	TopExternDef  // an extern with an initializer, or any vector (with or without one)
	TopExternDecl // a bare "name;" extern declaration, no initializer
)

// Top is one top-level program item.
type Top struct {
	Kind     TopKind
	Stmt     Stmt        // TopGlobalAuto
	Function *Function   // TopFunction
	Extern   *ExternItem // TopExternDef, TopExternDecl
	Pos      diag.Pos
}

// Program is the ordered sequence of top-level items making up one
// translation unit. Order is preserved because emission interleaves storage
// declarations and the init routine in a single forward pass.
type Program struct {
	Tops []Top
}
