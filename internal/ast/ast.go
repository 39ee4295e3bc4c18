// Package ast defines the parsed expression tree the inference core
// consumes from the (out-of-scope) reader and desugarer, and the
// surface type-annotation syntax a "the" form carries before alias
// expansion and wildcard instantiation (spec §6, "Parsed expression
// tree").
package ast

import "fmt"

// Pos is a source position, carried on every node so the core can
// attach a Location to any error or unknown it reports.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) String() string { return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column) }

// Expr is the base interface for every expression-tree node the
// generator walks.
type Expr interface {
	Position() Pos
	exprNode()
}

// LitKind distinguishes the three literal forms.
type LitKind int

const (
	NumberLit LitKind = iota
	StringLit
	BooleanLit
)

// Lit is a literal number, string, or boolean.
type Lit struct {
	Kind  LitKind
	Value interface{}
	Pos   Pos
}

func (l *Lit) Position() Pos { return l.Pos }
func (*Lit) exprNode()       {}

// UnknownExpr represents a gap left by a syntax error upstream of the
// core; inference proceeds past it with fresh, unconstrained type and
// effect (spec §4.5).
type UnknownExpr struct{ Pos Pos }

func (u *UnknownExpr) Position() Pos { return u.Pos }
func (*UnknownExpr) exprNode()       {}

// VarRef is a use of a variable name.
type VarRef struct {
	Name string
	Pos  Pos
}

func (v *VarRef) Position() Pos { return v.Pos }
func (*VarRef) exprNode()       {}

// Vector is a vector literal `[e1 … en]`.
type Vector struct {
	Elems []Expr
	Pos   Pos
}

func (v *Vector) Position() Pos { return v.Pos }
func (*Vector) exprNode()       {}

// RecordField is one `:label value` pair in a record literal.
type RecordField struct {
	Label string
	Value Expr
}

// Record is a record literal `{ :l1 v1 … :ln vn [| tail] }`. Tail is
// nil when the literal has no `| tail` clause.
type Record struct {
	Fields []RecordField
	Tail   Expr
	Pos    Pos
}

func (r *Record) Position() Pos { return r.Pos }
func (*Record) exprNode()       {}

// If is a conditional `(if c t e)`.
type If struct {
	Cond, Then, Else Expr
	Pos              Pos
}

func (i *If) Position() Pos { return i.Pos }
func (*If) exprNode()       {}

// Lambda is `(lambda (x1 … xn) body…)`. Body is a non-empty sequence;
// only the last form's type is the lambda's result type.
type Lambda struct {
	Params []string
	Body   []Expr
	Pos    Pos
}

func (l *Lambda) Position() Pos { return l.Pos }
func (*Lambda) exprNode()       {}

// Call is a function application `(f a1 … an)`.
type Call struct {
	Func Expr
	Args []Expr
	Pos  Pos
}

func (c *Call) Position() Pos { return c.Pos }
func (*Call) exprNode()       {}

// Binding is one `xi vi` pair in a let form.
type Binding struct {
	Name  string
	Value Expr
}

// Let is `(let {x1 v1 … xn vn} body…)`.
type Let struct {
	Bindings []Binding
	Body     []Expr
	Pos      Pos
}

func (l *Let) Position() Pos { return l.Pos }
func (*Let) exprNode()       {}

// Annotation is `(the T e)`.
type Annotation struct {
	Type TypeExpr
	Expr Expr
	Pos  Pos
}

func (a *Annotation) Position() Pos { return a.Pos }
func (*Annotation) exprNode()       {}

// Do is `(do f1 … fn returning)`.
type Do struct {
	Forms     []Expr
	Returning Expr
	Pos       Pos
}

func (d *Do) Position() Pos { return d.Pos }
func (*Do) exprNode()       {}

// MatchCase is one `({:L x} body…)` arm of a match.
type MatchCase struct {
	Label string
	Var   string
	Body  []Expr
}

// Match is `(match v ({:L x} body…)…)`.
type Match struct {
	Scrutinee Expr
	Cases     []MatchCase
	Pos       Pos
}

func (m *Match) Position() Pos { return m.Pos }
func (*Match) exprNode()       {}

// Values is a multiple-value producer expression.
type Values struct {
	Elems []Expr
	Pos   Pos
}

func (v *Values) Position() Pos { return v.Pos }
func (*Values) exprNode()       {}

// MultipleValueBind destructures a Values producer, widening the
// consumer to accept the full tuple (spec §4.5).
type MultipleValueBind struct {
	Names    []string
	Producer Expr
	Body     []Expr
	Pos      Pos
}

func (m *MultipleValueBind) Position() Pos { return m.Pos }
func (*MultipleValueBind) exprNode()       {}

// TypeExpr is the surface syntax of a user type annotation, parsed
// before alias expansion and wildcard instantiation (spec §4.7).
type TypeExpr interface {
	typeExprNode()
}

// TConstExpr names a nullary constructor or an alias.
type TConstExpr struct{ Name string }

func (TConstExpr) typeExprNode() {}

// TAppExpr is a surface-syntax application, e.g. `(-> a b c)` or
// `[a]`.
type TAppExpr struct {
	Op   string
	Args []TypeExpr
}

func (TAppExpr) typeExprNode() {}

// TVarExpr is a surface-syntax variable reference: a user-chosen
// name, an anonymous wildcard `_`, or a named wildcard `_name`.
// IsWildcard is true for both wildcard forms; Name is empty only for
// the anonymous form.
type TVarExpr struct {
	Name       string
	IsWildcard bool
}

func (TVarExpr) typeExprNode() {}

// TRowFieldExpr is one `:label T` pair in a surface row/record type.
type TRowFieldExpr struct {
	Label string
	Type  TypeExpr
}

// TRowExpr is a surface-syntax row or record type. Tail is nil for a
// closed row.
type TRowExpr struct {
	Fields []TRowFieldExpr
	Tail   TypeExpr
}

func (TRowExpr) typeExprNode() {}
