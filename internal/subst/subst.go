// Package subst implements the finite mapping from type/row variable
// names to monotypes that the solver threads through unification:
// application, composition, free-variable queries, and the occurs
// check (spec §4.2).
package subst

import (
	"fmt"

	"github.com/sunholo/ailang-infer/internal/types"
)

// Substitution maps variable names to the monotype they stand for.
type Substitution map[string]types.Monotype

// Empty returns a fresh, empty substitution.
func Empty() Substitution { return Substitution{} }

// Apply recursively rewrites every variable in t that is bound in
// sub, to a fixpoint: if rewriting a variable yields a type that
// itself contains variables still in sub's domain, those are rewritten
// too. This is what makes Apply safe to call with a substitution
// built incrementally by the solver, where later bindings can refine
// the range of earlier ones.
func Apply(sub Substitution, t types.Monotype) types.Monotype {
	if len(sub) == 0 {
		return t
	}
	switch t := t.(type) {
	case types.Constant:
		return t
	case types.RowEmpty:
		return t
	case types.Var:
		if repl, ok := sub[t.Name]; ok {
			if _, same := repl.(types.Var); same && repl.(types.Var).Name == t.Name {
				return t
			}
			return Apply(sub, repl)
		}
		return t
	case types.App:
		args := make([]types.Monotype, len(t.Args))
		for i, a := range t.Args {
			args[i] = Apply(sub, a)
		}
		return types.App{Op: t.Op, Args: args}
	case types.RowExt:
		return types.RowExt{
			Label:     t.Label,
			FieldType: Apply(sub, t.FieldType),
			Tail:      Apply(sub, t.Tail),
		}
	default:
		panic(fmt.Sprintf("subst.Apply: unhandled monotype %T", t))
	}
}

// ApplyScheme applies sub to a scheme's body, skipping any variable
// that the scheme itself quantifies (those are bound, not free).
func ApplyScheme(sub Substitution, s *types.Scheme) *types.Scheme {
	if len(s.Vars) == 0 {
		return &types.Scheme{Type: Apply(sub, s.Type)}
	}
	filtered := make(Substitution, len(sub))
	bound := make(map[string]bool, len(s.Vars))
	for _, v := range s.Vars {
		bound[v.Name] = true
	}
	for k, v := range sub {
		if !bound[k] {
			filtered[k] = v
		}
	}
	return &types.Scheme{Vars: s.Vars, Type: Apply(filtered, s.Type)}
}

// Compose returns the substitution equivalent to applying s1 after
// s2: every binding in s2's range is rewritten through s1, and then
// s1's own bindings are unioned in, winning on domain overlap (spec
// §4.2).
func Compose(s1, s2 Substitution) Substitution {
	out := make(Substitution, len(s1)+len(s2))
	for k, v := range s2 {
		out[k] = Apply(s1, v)
	}
	for k, v := range s1 {
		out[k] = v
	}
	return out
}

// Extend returns sub with name bound to t, failing the occurs check
// if t (after applying sub) would contain name.
func Extend(sub Substitution, name string, t types.Monotype) (Substitution, error) {
	t = Apply(sub, t)
	if FreeVars(t)[name] {
		return nil, fmt.Errorf("occurs-check: %s occurs in %s", name, types.Print(t))
	}
	out := make(Substitution, len(sub)+1)
	for k, v := range sub {
		out[k] = v
	}
	out[name] = t
	return out, nil
}

// FreeVars returns the set of variable names occurring free in t.
func FreeVars(t types.Monotype) map[string]bool {
	free := make(map[string]bool)
	collectFreeVars(t, free)
	return free
}

func collectFreeVars(t types.Monotype, into map[string]bool) {
	switch t := t.(type) {
	case types.Var:
		into[t.Name] = true
	case types.App:
		for _, a := range t.Args {
			collectFreeVars(a, into)
		}
	case types.RowExt:
		collectFreeVars(t.FieldType, into)
		collectFreeVars(t.Tail, into)
	case types.Constant, types.RowEmpty:
		// no variables
	}
}

// FreeVarsScheme returns the free variables of a scheme: those of its
// body minus the ones it quantifies.
func FreeVarsScheme(s *types.Scheme) map[string]bool {
	free := FreeVars(s.Type)
	for _, v := range s.Vars {
		delete(free, v.Name)
	}
	return free
}

// FreeVarsSub returns the union of free variables across every
// binding in sub's range.
func FreeVarsSub(sub Substitution) map[string]bool {
	free := make(map[string]bool)
	for _, v := range sub {
		collectFreeVars(v, free)
	}
	return free
}
