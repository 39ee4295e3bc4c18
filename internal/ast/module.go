package ast

// Definition is one top-level module binding: `(define name value)`.
type Definition struct {
	Name  string
	Value Expr
	Pos   Pos
}

// AliasDecl is a top-level type-alias declaration. Params supplements
// spec.md's nullary-alias treatment with the parametric aliases the
// original language supports (SPEC_FULL.md §4): `(deftype (Name p1 …
// pn) Body)`, with Params empty for a plain nullary alias.
type AliasDecl struct {
	Name   string
	Params []string
	Body   TypeExpr
	Pos    Pos
}

// Module is the top-level input unit the driver folds: an ordered
// sequence of definitions and bare top-level expressions, the
// module's type aliases, and the names it exports (spec §2 data flow,
// §4.9).
type Module struct {
	Defs      []Definition
	Exprs     []Expr
	Aliases   []AliasDecl
	Exports   []string
	SourceRef string
}
