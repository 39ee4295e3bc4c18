// Package module drives one module through the full pipeline: alias
// cycle check, constraint generation over every definition and
// top-level expression, assumption resolution against the module's
// own bindings and an optional external environment, constraint
// solving, and substitution of the result back into the typed tree
// (spec §4.9).
package module

import (
	"fmt"
	"sort"

	"github.com/sunholo/ailang-infer/internal/alias"
	"github.com/sunholo/ailang-infer/internal/ast"
	"github.com/sunholo/ailang-infer/internal/constraint"
	"github.com/sunholo/ailang-infer/internal/fresh"
	"github.com/sunholo/ailang-infer/internal/infer"
	"github.com/sunholo/ailang-infer/internal/solve"
	"github.com/sunholo/ailang-infer/internal/subst"
	"github.com/sunholo/ailang-infer/internal/typedast"
	"github.com/sunholo/ailang-infer/internal/types"
)

// Environment is the externally-supplied part of the typing context:
// primitive schemes and alias declarations that exist outside the
// module being checked (spec §4.9's "external" assumption class).
// A nil Environment is equivalent to an empty one.
type Environment struct {
	Primitives map[string]*types.Scheme
	Aliases    []ast.AliasDecl
}

// Unknown reports a free variable neither the module nor the
// environment could resolve (spec §4.9).
type Unknown struct {
	Name     string
	Location types.Location
}

// Result is everything driving a module produces: its typed form, the
// substitution the solver found, and any unresolved free variables.
type Result struct {
	Module   *typedast.TypedModule
	Subst    subst.Substitution
	Unknowns []Unknown
}

// Run executes the full pipeline over m using env as the external
// environment (pass nil for none). freshSrc is the run's shared
// fresh-variable source — callers that want reproducible variable
// names across runs should pass a freshly constructed *fresh.Source.
func Run(freshSrc *fresh.Source, m *ast.Module, env *Environment) (*Result, error) {
	if env == nil {
		env = &Environment{}
	}

	allDecls := append(append([]ast.AliasDecl(nil), env.Aliases...), m.Aliases...)
	aliasTable, err := alias.NewTable(allDecls)
	if err != nil {
		return nil, err
	}
	if err := aliasTable.CheckCycles(); err != nil {
		return nil, err
	}

	gen := infer.New(freshSrc, aliasTable)

	defSchemes := make(map[string]types.Monotype, len(m.Defs))
	monovars := map[string]bool{}

	var constraints []constraint.Constraint
	var assumptions []constraint.Assumption
	typedDefs := make([]typedast.TypedDefinition, len(m.Defs))

	for i, def := range m.Defs {
		r := gen.Infer(def.Value, monovars)
		constraints = append(constraints, r.Constraints...)

		for _, a := range r.Assumptions {
			if bt, ok := defSchemes[a.Name]; ok {
				// A definition referring to an earlier definition in
				// the same module resolves internally: a let-bound
				// polymorphic use (spec §4.9 "internal" assumption
				// class).
				constraints = append(constraints,
					constraint.ImplicitInstance{Use: a.Type, Monovars: copyMap(monovars), Template: bt, Location: a.Location},
				)
				continue
			}
			assumptions = append(assumptions, a)
		}

		defSchemes[def.Name] = r.Node.Info().Type
		typedDefs[i] = typedast.TypedDefinition{Name: def.Name, Scheme: types.Mono(r.Node.Info().Type), Value: r.Node}
	}

	typedExprs := make([]typedast.TypedNode, len(m.Exprs))
	for i, expr := range m.Exprs {
		r := gen.Infer(expr, monovars)
		constraints = append(constraints, r.Constraints...)
		typedExprs[i] = r.Node
		assumptions = append(assumptions, r.Assumptions...)
	}

	var unknowns []Unknown
	for _, a := range assumptions {
		if bt, ok := defSchemes[a.Name]; ok {
			constraints = append(constraints,
				constraint.ImplicitInstance{Use: a.Type, Monovars: map[string]bool{}, Template: bt, Location: a.Location},
			)
			continue
		}
		if s, ok := env.Primitives[a.Name]; ok {
			constraints = append(constraints,
				constraint.ExplicitInstance{Use: a.Type, Scheme: s, Location: a.Location},
			)
			continue
		}
		unknowns = append(unknowns, Unknown{Name: a.Name, Location: a.Location})
	}

	sub, err := solve.Solve(freshSrc, constraints)
	if err != nil {
		if len(unknowns) > 0 {
			return nil, fmt.Errorf("%w (and %d unresolved name(s): %s)", err, len(unknowns), unknownNames(unknowns))
		}
		return nil, err
	}

	typed := &typedast.TypedModule{Defs: typedDefs, Exprs: typedExprs}
	typedast.ApplySubstitutionToModule(sub, typed)
	for i := range typed.Defs {
		typed.Defs[i].Scheme = generalize(typed.Defs[i].Value.Info().Type)
	}
	defaultTopLevelEffects(typed.Exprs)

	sortUnknowns(unknowns)
	return &Result{Module: typed, Subst: sub, Unknowns: unknowns}, nil
}

// defaultTopLevelEffects applies effect row defaulting for closed
// top-level expressions: a module-level expression whose effect row
// is still a bare, unconstrained variable after solving has no
// remaining effect evidence, so it is defaulted to the empty row
// before being reported, matching user expectation that "no observed
// effect" prints as {} rather than a fresh Greek-letter row variable.
// This is a presentation-layer default, not a solver rule — it runs
// after substitution and never participates in unification. Mirrors
// internal/replcore's defaultedEffect, which applies the same default
// to the REPL's one-expression-at-a-time result.
func defaultTopLevelEffects(exprs []typedast.TypedNode) {
	for _, e := range exprs {
		info := e.Info()
		if _, ok := info.Effect.(types.Var); ok {
			info.Effect = types.RowEmpty{}
		}
	}
}

// generalize quantifies every free variable of t with no exclusions —
// used for a module's top-level definitions once solving is complete
// and nothing remains to keep monomorphic.
func generalize(t types.Monotype) *types.Scheme {
	free := subst.FreeVars(t)
	names := make([]string, 0, len(free))
	for name := range free {
		names = append(names, name)
	}
	sort.Strings(names)
	kindOf := kindLookup(t)
	vars := make([]types.QuantifiedVar, 0, len(names))
	for _, name := range names {
		vars = append(vars, types.QuantifiedVar{Name: name, Kind: kindOf[name]})
	}
	return &types.Scheme{Vars: vars, Type: t}
}

// kindLookup walks t once to record the kind each free variable name
// was seen at, since FreeVars alone only returns names.
func kindLookup(t types.Monotype) map[string]types.Kind {
	out := map[string]types.Kind{}
	var walk func(types.Monotype)
	walk = func(t types.Monotype) {
		switch t := t.(type) {
		case types.Var:
			out[t.Name] = t.VarKind
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
	return out
}

func copyMap(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}

func unknownNames(u []Unknown) string {
	names := make([]string, len(u))
	for i, x := range u {
		names[i] = x.Name
	}
	return fmt.Sprintf("%v", names)
}

func sortUnknowns(u []Unknown) {
	sort.Slice(u, func(i, j int) bool { return u[i].Name < u[j].Name })
}
