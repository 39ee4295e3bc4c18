// Package scheme implements generalization and instantiation: turning
// a monotype into a ∀-quantified scheme with respect to a live
// monomorphic set, and turning a scheme back into a fresh monotype
// instance (spec §4.4).
package scheme

import (
	"sort"

	"github.com/sunholo/ailang-infer/internal/fresh"
	"github.com/sunholo/ailang-infer/internal/subst"
	"github.com/sunholo/ailang-infer/internal/types"
)

// Generalize quantifies t over every free variable of t that is not
// in monovars. Quantified variables keep their kind; the scheme's
// body is t unchanged (the caller is expected to have already applied
// the running substitution to t).
func Generalize(t types.Monotype, monovars map[string]bool) *types.Scheme {
	free := subst.FreeVars(t)
	kinds := kindsOf(t)

	names := make([]string, 0, len(free))
	for name := range free {
		if !monovars[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	vars := make([]types.QuantifiedVar, len(names))
	for i, name := range names {
		vars[i] = types.QuantifiedVar{Name: name, Kind: kinds[name]}
	}
	return &types.Scheme{Vars: vars, Type: t}
}

// Instantiate substitutes each of scheme's quantified variables with a
// fresh variable of the same kind, returning the resulting monotype.
func Instantiate(freshSrc *fresh.Source, s *types.Scheme) types.Monotype {
	if len(s.Vars) == 0 {
		return s.Type
	}
	renaming := make(subst.Substitution, len(s.Vars))
	for _, v := range s.Vars {
		renaming[v.Name] = freshSrc.Var(v.Kind)
	}
	return subst.Apply(renaming, s.Type)
}

// ActiveVars is the set of variables an ImplicitInstance constraint
// would generalize if solved right now: free_vars(t) \ monovars (spec
// §4.6, "Active variables").
func ActiveVars(t types.Monotype, monovars map[string]bool) map[string]bool {
	free := subst.FreeVars(t)
	active := make(map[string]bool, len(free))
	for name := range free {
		if !monovars[name] {
			active[name] = true
		}
	}
	return active
}

// kindsOf walks t once to record the kind each variable name it
// mentions was declared with, so Generalize can reproduce it on the
// QuantifiedVar without a second kind-inference pass.
func kindsOf(t types.Monotype) map[string]types.Kind {
	kinds := make(map[string]types.Kind)
	var walk func(types.Monotype)
	walk = func(t types.Monotype) {
		switch t := t.(type) {
		case types.Var:
			kinds[t.Name] = t.VarKind
		case types.App:
			for _, a := range t.Args {
				walk(a)
			}
		case types.RowExt:
			walk(t.FieldType)
			walk(t.Tail)
		}
	}
	walk(t)
	return kinds
}
