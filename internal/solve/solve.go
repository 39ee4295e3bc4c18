// Package solve implements the constraint scheduler: it incrementally
// refines a substitution until every constraint discharges, including
// the generalization step that turns monotypes into schemes with
// respect to the live monomorphic set (spec §4.6).
package solve

import (
	"github.com/sunholo/ailang-infer/internal/constraint"
	"github.com/sunholo/ailang-infer/internal/fresh"
	"github.com/sunholo/ailang-infer/internal/scheme"
	"github.com/sunholo/ailang-infer/internal/subst"
	"github.com/sunholo/ailang-infer/internal/types"
	"github.com/sunholo/ailang-infer/internal/unify"
)

// Solve runs the scheduler to a fixpoint. Given the same input list
// and the same fresh-variable source, it always produces the same
// substitution (spec §5, determinism): the iteration order below is
// "first solvable constraint, scanning the remaining list
// front-to-back" every round, never a data-structure-order-dependent
// choice.
func Solve(freshSrc *fresh.Source, constraints []constraint.Constraint) (subst.Substitution, error) {
	sub := subst.Empty()
	remaining := append([]constraint.Constraint(nil), constraints...)

	for len(remaining) > 0 {
		idx := findSolvable(sub, remaining)
		if idx < 0 {
			return nil, types.NewSolverStuckError(len(remaining))
		}
		c := remaining[idx]
		remaining = append(append([]constraint.Constraint(nil), remaining[:idx]...), remaining[idx+1:]...)

		next, err := solveOne(freshSrc, sub, c)
		if err != nil {
			return nil, err
		}
		sub = next
	}
	return sub, nil
}

// findSolvable returns the index of the first constraint in remaining
// that the scheduling rules (spec §4.6) allow solving right now, or -1
// if none qualify — which the caller reports as solver-stuck.
func findSolvable(sub subst.Substitution, remaining []constraint.Constraint) int {
	for i, c := range remaining {
		switch c := c.(type) {
		case constraint.Equal, constraint.EffectEqual, constraint.ExplicitInstance:
			return i
		case constraint.ImplicitInstance:
			if implicitInstanceSolvable(sub, c, remaining, i) {
				return i
			}
		}
	}
	return -1
}

// implicitInstanceSolvable implements "ImplicitInstance is solvable
// only when active_vars(monovars, t) ∩ free_vars_of_other_constraints
// = ∅" (spec §4.6): generalizing now must not capture a variable that
// some other pending constraint still needs to refine.
func implicitInstanceSolvable(sub subst.Substitution, c constraint.ImplicitInstance, remaining []constraint.Constraint, selfIdx int) bool {
	active := scheme.ActiveVars(subst.Apply(sub, c.Template), liveMonovars(sub, c.Monovars))
	if len(active) == 0 {
		return true
	}
	for i, other := range remaining {
		if i == selfIdx {
			continue
		}
		for v := range freeVarsOf(sub, other) {
			if active[v] {
				return false
			}
		}
	}
	return true
}

// liveMonovars re-derives, under the current substitution, which
// variable names are still part of the monomorphic set captured at
// constraint-generation time: a monovar that has since been unified
// with a variable elsewhere contributes that variable's own free
// names instead of its original (now-stale) name.
func liveMonovars(sub subst.Substitution, monovars map[string]bool) map[string]bool {
	live := make(map[string]bool, len(monovars))
	for name := range monovars {
		if repl, ok := sub[name]; ok {
			for v := range subst.FreeVars(repl) {
				live[v] = true
			}
			continue
		}
		live[name] = true
	}
	return live
}

// freeVarsOf reports the free variables a constraint (under sub)
// still mentions, for the purposes of the active-variables check. An
// ImplicitInstance constraint contributes only its use site, not its
// own template's active variables: two sibling ImplicitInstance
// constraints generalizing the SAME let-bound template (e.g. the two
// uses of "id" in "(id id)") never perform unification on that
// template themselves, so letting one's active set block the other
// would deadlock the textbook let-polymorphism case — the solver
// would report solver-stuck on exactly the example spec §8 requires
// to typecheck. Only a constraint that actually unifies a shared
// variable (an Equal, an EffectEqual, or the use-site of another
// constraint) can legitimately defer a generalization.
func freeVarsOf(sub subst.Substitution, c constraint.Constraint) map[string]bool {
	switch c := c.(type) {
	case constraint.Equal:
		return union(subst.FreeVars(subst.Apply(sub, c.A)), subst.FreeVars(subst.Apply(sub, c.B)))
	case constraint.EffectEqual:
		return union(subst.FreeVars(subst.Apply(sub, c.NodeEffect)), subst.FreeVars(subst.Apply(sub, c.Target)))
	case constraint.ExplicitInstance:
		applied := subst.ApplyScheme(sub, c.Scheme)
		return union(subst.FreeVars(subst.Apply(sub, c.Use)), subst.FreeVarsScheme(applied))
	case constraint.ImplicitInstance:
		return subst.FreeVars(subst.Apply(sub, c.Use))
	default:
		return nil
	}
}

func union(a, b map[string]bool) map[string]bool {
	out := make(map[string]bool, len(a)+len(b))
	for k := range a {
		out[k] = true
	}
	for k := range b {
		out[k] = true
	}
	return out
}

// solveOne discharges a single constraint that findSolvable already
// determined is solvable.
func solveOne(freshSrc *fresh.Source, sub subst.Substitution, c constraint.Constraint) (subst.Substitution, error) {
	switch c := c.(type) {
	case constraint.Equal:
		return unify.Unify(freshSrc, sub, c.A, c.B, c.Location)

	case constraint.EffectEqual:
		return unify.Unify(freshSrc, sub, c.NodeEffect, c.Target, c.Location)

	case constraint.ExplicitInstance:
		instance := scheme.Instantiate(freshSrc, c.Scheme)
		return unify.Unify(freshSrc, sub, c.Use, instance, c.Location)

	case constraint.ImplicitInstance:
		template := subst.Apply(sub, c.Template)
		monovars := liveMonovars(sub, c.Monovars)
		s := scheme.Generalize(template, monovars)
		instance := scheme.Instantiate(freshSrc, s)
		return unify.Unify(freshSrc, sub, c.Use, instance, c.Location)

	default:
		return nil, types.NewSolverStuckError(1)
	}
}
