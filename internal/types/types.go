package types

import "fmt"

// Monotype is a type with no quantifiers: a constant, a saturated
// application, a variable, or one of the two row forms. It is the
// sealed, tagged-variant shape spec'd in §3 — implementers are never
// meant to add cases outside this file.
type Monotype interface {
	Kind() Kind
	monotype()
}

// Well-known application operators. Op is a plain string rather than a
// separate enum because user type constructors (record field types,
// declared data types) share the same Constant/App namespace as the
// built-ins.
const (
	OpFunc    = "→"
	OpVector  = "vector"
	OpRecord  = "record"
	OpVariant = "variant"
	OpEffect  = "effect"
	// OpValues is the supplemental "multiple values" producer shape
	// (SPEC_FULL.md §4): a tuple-like application, not a new Monotype
	// case.
	OpValues = "values"
)

// Constant is a nullary type constructor: number, string, boolean,
// void, or a user-declared type name.
type Constant struct {
	Name string
}

func (Constant) monotype()   {}
func (Constant) Kind() Kind { return KindValue }

// App is the saturated application of a constructor to its operand
// types. Function types are App(OpFunc, arg1, …, argn, effect,
// result); vectors are App(OpVector, t); records are App(OpRecord,
// row); variants are App(OpVariant, row); effect types are
// App(OpEffect, row).
type App struct {
	Op   string
	Args []Monotype
}

func (App) monotype()   {}
func (App) Kind() Kind { return KindValue }

// Var is a type or row variable. UserSpecified marks a variable
// written by the programmer in an annotation (spec §4.7) rather than
// one generated by the fresh-variable source.
type Var struct {
	Name          string
	UserSpecified bool
	VarKind       Kind
}

func (Var) monotype()   {}
func (v Var) Kind() Kind { return v.VarKind }

// RowEmpty is the closed, empty row: {}.
type RowEmpty struct{}

func (RowEmpty) monotype()   {}
func (RowEmpty) Kind() Kind { return KindRow }

// RowExt extends a row with one labeled field type over a tail. The
// tail is itself a Monotype of kind row: either RowEmpty (closed),
// another RowExt, or a Var of kind row (open).
type RowExt struct {
	Label     string
	FieldType Monotype
	Tail      Monotype
}

func (RowExt) monotype()   {}
func (RowExt) Kind() Kind { return KindRow }

// Func builds a function monotype: App(OpFunc, args..., effect, result).
func Func(args []Monotype, effect Monotype, result Monotype) App {
	all := make([]Monotype, 0, len(args)+2)
	all = append(all, args...)
	all = append(all, effect, result)
	return App{Op: OpFunc, Args: all}
}

// FuncParts extracts (args, effect, result) from a function App. It
// panics if t is not shaped like a function application — callers are
// expected to have already checked Op == OpFunc.
func FuncParts(t App) (args []Monotype, effect Monotype, result Monotype) {
	if len(t.Args) < 2 {
		panic(fmt.Sprintf("malformed function application: %d args", len(t.Args)))
	}
	n := len(t.Args)
	return t.Args[:n-2], t.Args[n-2], t.Args[n-1]
}

// Vector builds App(OpVector, elem).
func Vector(elem Monotype) App { return App{Op: OpVector, Args: []Monotype{elem}} }

// Record builds App(OpRecord, row).
func Record(row Monotype) App { return App{Op: OpRecord, Args: []Monotype{row}} }

// Variant builds App(OpVariant, row).
func Variant(row Monotype) App { return App{Op: OpVariant, Args: []Monotype{row}} }

// Effect builds App(OpEffect, row).
func Effect(row Monotype) App { return App{Op: OpEffect, Args: []Monotype{row}} }

// Values builds the supplemental multiple-values producer shape,
// App(OpValues, t1, …, tn).
func Values(ts ...Monotype) App { return App{Op: OpValues, Args: ts} }

// Built-in nullary constants.
var (
	Number  = Constant{Name: "number"}
	String  = Constant{Name: "string"}
	Boolean = Constant{Name: "boolean"}
	Void    = Constant{Name: "void"}
)

// Equal performs a purely structural (non-unifying) comparison of two
// monotypes, used by tests and by the row-permutation canonicity
// check. It does not consult any substitution.
func Equal(a, b Monotype) bool {
	switch a := a.(type) {
	case Constant:
		b, ok := b.(Constant)
		return ok && a.Name == b.Name
	case App:
		b, ok := b.(App)
		if !ok || a.Op != b.Op || len(a.Args) != len(b.Args) {
			return false
		}
		for i := range a.Args {
			if !Equal(a.Args[i], b.Args[i]) {
				return false
			}
		}
		return true
	case Var:
		b, ok := b.(Var)
		return ok && a.Name == b.Name && a.VarKind == b.VarKind
	case RowEmpty:
		_, ok := b.(RowEmpty)
		return ok
	case RowExt:
		return rowEqual(a, b)
	default:
		return false
	}
}

// rowEqual implements row-permutation equality: two rows are equal up
// to permutation of distinct labels sharing the same tail (spec §3,
// "Row canonicity").
func rowEqual(a Monotype, b Monotype) bool {
	am, aTail := flattenRow(a)
	bm, bTail := flattenRow(b)
	if len(am) != len(bm) {
		return false
	}
	for label, at := range am {
		bt, ok := bm[label]
		if !ok || !Equal(at, bt) {
			return false
		}
	}
	return Equal(aTail, bTail)
}

// flattenRow walks a chain of RowExt down to its tail, returning the
// label->type map and the non-RowExt tail (RowEmpty, a Var, or nil if
// the chain itself wasn't rooted in a row).
func flattenRow(t Monotype) (map[string]Monotype, Monotype) {
	labels := make(map[string]Monotype)
	for {
		switch r := t.(type) {
		case RowExt:
			labels[r.Label] = r.FieldType
			t = r.Tail
		case RowEmpty:
			return labels, RowEmpty{}
		default:
			return labels, t
		}
	}
}
