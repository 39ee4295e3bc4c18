// Package infer is the constraint generator: a single structural walk
// over an expression tree that, for each syntactic form, returns a
// typed node plus the constraints and assumptions that form
// introduces (spec §4.5). The generator never fails — every
// syntactic shape, however apparently ill-typed, produces *some*
// constraint set; all type errors are found later, by the solver.
package infer

import (
	"github.com/sunholo/ailang-infer/internal/alias"
	"github.com/sunholo/ailang-infer/internal/ast"
	"github.com/sunholo/ailang-infer/internal/constraint"
	"github.com/sunholo/ailang-infer/internal/fresh"
	"github.com/sunholo/ailang-infer/internal/typedast"
	"github.com/sunholo/ailang-infer/internal/types"
)

// Generator walks expression trees, threading a shared fresh-variable
// source and the module's alias table (needed to expand "(the T e)"
// annotations).
type Generator struct {
	Fresh   *fresh.Source
	Aliases *alias.Table
}

// New creates a Generator over one fresh-variable source and alias
// table. Both are shared across every call made during one module's
// inference.
func New(freshSrc *fresh.Source, aliases *alias.Table) *Generator {
	return &Generator{Fresh: freshSrc, Aliases: aliases}
}

// Result bundles what every generator case produces: the typed node,
// the constraints it and its children emitted, and the still-open
// assumptions about free variables.
type Result struct {
	Node        typedast.TypedNode
	Constraints []constraint.Constraint
	Assumptions []constraint.Assumption
}

// Infer dispatches on expr's concrete syntactic form. monovars is the
// set of variable names monomorphic in the current scope (the
// parameters of every enclosing, not-yet-returned-from lambda); it is
// read, never mutated, by every case — cases that introduce new
// monomorphic names build an extended copy for their sub-calls.
func (g *Generator) Infer(expr ast.Expr, monovars map[string]bool) Result {
	switch e := expr.(type) {
	case *ast.Lit:
		return g.inferLit(e)
	case *ast.UnknownExpr:
		return g.inferUnknown(e)
	case *ast.VarRef:
		return g.inferVar(e)
	case *ast.Vector:
		return g.inferVector(e, monovars)
	case *ast.Record:
		return g.inferRecord(e, monovars)
	case *ast.If:
		return g.inferIf(e, monovars)
	case *ast.Lambda:
		return g.inferLambda(e, monovars)
	case *ast.Call:
		return g.inferCall(e, monovars)
	case *ast.Let:
		return g.inferLet(e, monovars)
	case *ast.Annotation:
		return g.inferAnnotation(e, monovars)
	case *ast.Do:
		return g.inferDo(e, monovars)
	case *ast.Match:
		return g.inferMatch(e, monovars)
	case *ast.Values:
		return g.inferValues(e, monovars)
	case *ast.MultipleValueBind:
		return g.inferMultipleValueBind(e, monovars)
	default:
		return g.inferUnknown(&ast.UnknownExpr{Pos: expr.Position()})
	}
}

func info(t types.Monotype, eff types.Monotype, pos ast.Pos) *typedast.TypeInfo {
	return &typedast.TypeInfo{Type: t, Effect: eff, Pos: pos}
}

func loc(pos ast.Pos) types.Location {
	return types.Location{File: pos.File, Line: pos.Line, Column: pos.Column}
}

func (g *Generator) inferLit(e *ast.Lit) Result {
	var t types.Monotype
	switch e.Kind {
	case ast.NumberLit:
		t = types.Number
	case ast.StringLit:
		t = types.String
	case ast.BooleanLit:
		t = types.Boolean
	}
	eff := g.Fresh.Row()
	return Result{Node: &typedast.TypedLit{TypeInfo: info(t, eff, e.Pos), Kind: e.Kind, Value: e.Value}}
}

func (g *Generator) inferUnknown(e *ast.UnknownExpr) Result {
	t := g.Fresh.Value()
	eff := g.Fresh.Row()
	return Result{Node: &typedast.TypedUnknown{TypeInfo: info(t, eff, e.Pos)}}
}

func (g *Generator) inferVar(e *ast.VarRef) Result {
	t := g.Fresh.Value()
	eff := g.Fresh.Row()
	return Result{
		Node: &typedast.TypedVar{TypeInfo: info(t, eff, e.Pos), Name: e.Name},
		Assumptions: []constraint.Assumption{
			{Name: e.Name, Type: t, Effect: eff, Location: loc(e.Pos)},
		},
	}
}

func (g *Generator) inferVector(e *ast.Vector, monovars map[string]bool) Result {
	elemType := g.Fresh.Value()
	eff := g.Fresh.Row()
	vecType := types.Vector(elemType)

	out := Result{}
	elems := make([]typedast.TypedNode, len(e.Elems))
	for i, el := range e.Elems {
		r := g.Infer(el, monovars)
		elems[i] = r.Node
		out.Constraints = append(out.Constraints, r.Constraints...)
		out.Assumptions = append(out.Assumptions, r.Assumptions...)
		ni := r.Node.Info()
		out.Constraints = append(out.Constraints,
			constraint.Equal{A: ni.Type, B: elemType, Location: loc(el.Position())},
			constraint.EffectEqual{NodeEffect: ni.Effect, Target: eff, Location: loc(el.Position())},
		)
	}
	out.Node = &typedast.TypedVector{TypeInfo: info(vecType, eff, e.Pos), Elems: elems}
	return out
}

func (g *Generator) inferRecord(e *ast.Record, monovars map[string]bool) Result {
	eff := g.Fresh.Row()
	out := Result{}

	fields := make([]typedast.TypedRecordField, len(e.Fields))
	row := types.Monotype(types.RowEmpty{})
	rowFields := make(map[string]types.Monotype, len(e.Fields))
	order := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		r := g.Infer(f.Value, monovars)
		out.Constraints = append(out.Constraints, r.Constraints...)
		out.Assumptions = append(out.Assumptions, r.Assumptions...)
		ni := r.Node.Info()
		out.Constraints = append(out.Constraints,
			constraint.EffectEqual{NodeEffect: ni.Effect, Target: eff, Location: loc(f.Value.Position())},
		)
		fields[i] = typedast.TypedRecordField{Label: f.Label, Value: r.Node}
		rowFields[f.Label] = ni.Type
		order[i] = f.Label
	}
	for i := len(order) - 1; i >= 0; i-- {
		row = types.RowExt{Label: order[i], FieldType: rowFields[order[i]], Tail: row}
	}

	var tailNode typedast.TypedNode
	if e.Tail != nil {
		r := g.Infer(e.Tail, monovars)
		out.Constraints = append(out.Constraints, r.Constraints...)
		out.Assumptions = append(out.Assumptions, r.Assumptions...)
		ni := r.Node.Info()
		tailNode = r.Node

		// The tail must unify with a closed record carrying a fresh
		// type for every label this literal declares, plus a fresh
		// open remainder ρ: this is what allows the tail to supply
		// *extra* fields while every listed label is overridden
		// (spec §4.5) — and it is also what makes updating a second
		// already-listed label in the tail an error, since ρ can
		// never re-supply a label the tail's own closed prefix fixed.
		rho := g.Fresh.Row()
		freshRow := types.Monotype(rho)
		for i := len(order) - 1; i >= 0; i-- {
			freshRow = types.RowExt{Label: order[i], FieldType: g.Fresh.Value(), Tail: freshRow}
		}
		// The updated record ends in the same ρ, so the tail's extra
		// fields carry through to the result.
		row = types.Monotype(rho)
		for i := len(order) - 1; i >= 0; i-- {
			row = types.RowExt{Label: order[i], FieldType: rowFields[order[i]], Tail: row}
		}
		out.Constraints = append(out.Constraints,
			constraint.Equal{A: ni.Type, B: types.Record(freshRow), Location: loc(e.Tail.Position())},
			constraint.EffectEqual{NodeEffect: ni.Effect, Target: eff, Location: loc(e.Tail.Position())},
		)
	}

	recordType := types.Record(row)
	out.Node = &typedast.TypedRecord{TypeInfo: info(recordType, eff, e.Pos), Fields: fields, Tail: tailNode}
	return out
}

func (g *Generator) inferIf(e *ast.If, monovars map[string]bool) Result {
	t := g.Fresh.Value()
	eff := g.Fresh.Row()

	rc := g.Infer(e.Cond, monovars)
	rt := g.Infer(e.Then, monovars)
	re := g.Infer(e.Else, monovars)

	out := Result{}
	out.Constraints = append(out.Constraints, rc.Constraints...)
	out.Constraints = append(out.Constraints, rt.Constraints...)
	out.Constraints = append(out.Constraints, re.Constraints...)
	out.Assumptions = append(out.Assumptions, rc.Assumptions...)
	out.Assumptions = append(out.Assumptions, rt.Assumptions...)
	out.Assumptions = append(out.Assumptions, re.Assumptions...)

	ci, ti, ei := rc.Node.Info(), rt.Node.Info(), re.Node.Info()
	out.Constraints = append(out.Constraints,
		constraint.Equal{A: ci.Type, B: types.Boolean, Location: loc(e.Cond.Position())},
		constraint.Equal{A: ti.Type, B: t, Location: loc(e.Then.Position())},
		constraint.Equal{A: ei.Type, B: t, Location: loc(e.Else.Position())},
		constraint.EffectEqual{NodeEffect: ci.Effect, Target: eff, Location: loc(e.Cond.Position())},
		constraint.EffectEqual{NodeEffect: ti.Effect, Target: eff, Location: loc(e.Then.Position())},
		constraint.EffectEqual{NodeEffect: ei.Effect, Target: eff, Location: loc(e.Else.Position())},
	)
	out.Node = &typedast.TypedIf{TypeInfo: info(t, eff, e.Pos), Cond: rc.Node, Then: rt.Node, Else: re.Node}
	return out
}

func (g *Generator) inferLambda(e *ast.Lambda, monovars map[string]bool) Result {
	paramTypes := make([]types.Monotype, len(e.Params))
	bodyMonovars := make(map[string]bool, len(monovars)+len(e.Params))
	for k := range monovars {
		bodyMonovars[k] = true
	}
	for i, p := range e.Params {
		pt := g.Fresh.Value()
		paramTypes[i] = pt
		bodyMonovars[p] = true
	}
	effBody := g.Fresh.Row()
	effOuter := g.Fresh.Row() // evaluating the lambda (building the closure) is effect-free in caller context; left unconstrained.

	out := Result{}
	body := make([]typedast.TypedNode, len(e.Body))
	var lastType types.Monotype
	for i, form := range e.Body {
		r := g.Infer(form, bodyMonovars)
		body[i] = r.Node
		out.Constraints = append(out.Constraints, r.Constraints...)
		ni := r.Node.Info()
		out.Constraints = append(out.Constraints,
			constraint.EffectEqual{NodeEffect: ni.Effect, Target: effBody, Location: loc(form.Position())},
		)
		lastType = ni.Type

		// Assumptions that bind to a parameter name become monomorphic
		// equalities; everything else escapes to the caller (spec
		// §4.5).
		for _, a := range r.Assumptions {
			if idx := paramIndex(e.Params, a.Name); idx >= 0 {
				out.Constraints = append(out.Constraints,
					constraint.Equal{A: a.Type, B: paramTypes[idx], Location: a.Location},
					constraint.EffectEqual{NodeEffect: a.Effect, Target: effBody, Location: a.Location},
				)
			} else {
				out.Assumptions = append(out.Assumptions, a)
			}
		}
	}

	fnType := types.Func(paramTypes, effBody, lastType)
	out.Node = &typedast.TypedLambda{
		TypeInfo:   info(fnType, effOuter, e.Pos),
		Params:     e.Params,
		ParamTypes: paramTypes,
		Body:       body,
	}
	return out
}

func paramIndex(params []string, name string) int {
	for i, p := range params {
		if p == name {
			return i
		}
	}
	return -1
}

func (g *Generator) inferCall(e *ast.Call, monovars map[string]bool) Result {
	t := g.Fresh.Value()
	eff := g.Fresh.Row()

	rf := g.Infer(e.Func, monovars)
	out := Result{}
	out.Constraints = append(out.Constraints, rf.Constraints...)
	out.Assumptions = append(out.Assumptions, rf.Assumptions...)

	args := make([]typedast.TypedNode, len(e.Args))
	argTypes := make([]types.Monotype, len(e.Args))
	for i, a := range e.Args {
		r := g.Infer(a, monovars)
		args[i] = r.Node
		argTypes[i] = r.Node.Info().Type
		out.Constraints = append(out.Constraints, r.Constraints...)
		out.Assumptions = append(out.Assumptions, r.Assumptions...)
		out.Constraints = append(out.Constraints,
			constraint.EffectEqual{NodeEffect: r.Node.Info().Effect, Target: eff, Location: loc(a.Position())},
		)
	}

	fi := rf.Node.Info()
	out.Constraints = append(out.Constraints,
		constraint.Equal{A: fi.Type, B: types.Func(argTypes, eff, t), Location: loc(e.Pos)},
		constraint.EffectEqual{NodeEffect: fi.Effect, Target: eff, Location: loc(e.Func.Position())},
	)
	out.Node = &typedast.TypedCall{TypeInfo: info(t, eff, e.Pos), Func: rf.Node, Args: args}
	return out
}

func (g *Generator) inferLet(e *ast.Let, monovars map[string]bool) Result {
	eff := g.Fresh.Row()
	out := Result{}

	bindingTypes := make(map[string]types.Monotype, len(e.Bindings))
	bindings := make([]typedast.TypedBinding, len(e.Bindings))
	for i, b := range e.Bindings {
		r := g.Infer(b.Value, monovars)
		out.Constraints = append(out.Constraints, r.Constraints...)
		out.Assumptions = append(out.Assumptions, r.Assumptions...)
		ni := r.Node.Info()

		// Let-bindings are effect-free: this is what makes
		// generalizing them sound (spec §4.5).
		out.Constraints = append(out.Constraints,
			constraint.EffectEqual{NodeEffect: ni.Effect, Target: types.RowEmpty{}, Location: loc(b.Value.Position())},
		)
		bindingTypes[b.Name] = ni.Type
		bindings[i] = typedast.TypedBinding{Name: b.Name, Scheme: types.Mono(ni.Type), Value: r.Node}
	}

	body := make([]typedast.TypedNode, len(e.Body))
	var lastType types.Monotype
	var bodyAssumptions []constraint.Assumption
	for i, form := range e.Body {
		r := g.Infer(form, monovars)
		body[i] = r.Node
		out.Constraints = append(out.Constraints, r.Constraints...)
		bodyAssumptions = append(bodyAssumptions, r.Assumptions...)
		ni := r.Node.Info()
		out.Constraints = append(out.Constraints,
			constraint.EffectEqual{NodeEffect: ni.Effect, Target: eff, Location: loc(form.Position())},
		)
		lastType = ni.Type
	}

	// Every assumption in the body resolving to a let-bound name
	// becomes an ImplicitInstance against that binding's type,
	// generalized over the monovars live here — this is where
	// let-polymorphism enters (spec §4.5).
	for _, a := range bodyAssumptions {
		if bt, ok := bindingTypes[a.Name]; ok {
			out.Constraints = append(out.Constraints,
				constraint.ImplicitInstance{Use: a.Type, Monovars: copyMonovars(monovars), Template: bt, Location: a.Location},
				constraint.EffectEqual{NodeEffect: a.Effect, Target: eff, Location: a.Location},
			)
		} else {
			out.Assumptions = append(out.Assumptions, a)
		}
	}

	out.Node = &typedast.TypedLet{TypeInfo: info(lastType, eff, e.Pos), Bindings: bindings, Body: body}
	return out
}

func copyMonovars(monovars map[string]bool) map[string]bool {
	out := make(map[string]bool, len(monovars))
	for k := range monovars {
		out[k] = true
	}
	return out
}

func (g *Generator) inferAnnotation(e *ast.Annotation, monovars map[string]bool) Result {
	w := &alias.Wildcards{}
	annotated, err := g.Aliases.ToMonotype(g.Fresh, w, e.Type)

	r := g.Infer(e.Expr, monovars)
	out := Result{Constraints: r.Constraints, Assumptions: r.Assumptions}
	ni := r.Node.Info()

	if err != nil {
		// An unparseable annotation still lets inference continue: it
		// contributes no equality, only the wrapped expression's own
		// type and effect (spec §4.5 generator-never-fails policy).
		out.Node = &typedast.TypedAnnotation{TypeInfo: info(ni.Type, ni.Effect, e.Pos), Expr: r.Node}
		return out
	}

	out.Constraints = append(out.Constraints,
		constraint.Equal{A: ni.Type, B: annotated, Location: loc(e.Pos)},
	)
	out.Node = &typedast.TypedAnnotation{TypeInfo: info(annotated, ni.Effect, e.Pos), Expr: r.Node}
	return out
}

func (g *Generator) inferDo(e *ast.Do, monovars map[string]bool) Result {
	eff := g.Fresh.Row()
	out := Result{}

	forms := make([]typedast.TypedNode, len(e.Forms))
	for i, f := range e.Forms {
		r := g.Infer(f, monovars)
		forms[i] = r.Node
		out.Constraints = append(out.Constraints, r.Constraints...)
		out.Assumptions = append(out.Assumptions, r.Assumptions...)
		out.Constraints = append(out.Constraints,
			constraint.EffectEqual{NodeEffect: r.Node.Info().Effect, Target: eff, Location: loc(f.Position())},
		)
	}
	rr := g.Infer(e.Returning, monovars)
	out.Constraints = append(out.Constraints, rr.Constraints...)
	out.Assumptions = append(out.Assumptions, rr.Assumptions...)
	out.Constraints = append(out.Constraints,
		constraint.EffectEqual{NodeEffect: rr.Node.Info().Effect, Target: eff, Location: loc(e.Returning.Position())},
	)

	out.Node = &typedast.TypedDo{TypeInfo: info(rr.Node.Info().Type, eff, e.Pos), Forms: forms, Returning: rr.Node}
	return out
}

func (g *Generator) inferMatch(e *ast.Match, monovars map[string]bool) Result {
	t := g.Fresh.Value()
	eff := g.Fresh.Row()

	rv := g.Infer(e.Scrutinee, monovars)
	out := Result{Constraints: rv.Constraints, Assumptions: rv.Assumptions}
	out.Constraints = append(out.Constraints,
		constraint.EffectEqual{NodeEffect: rv.Node.Info().Effect, Target: eff, Location: loc(e.Scrutinee.Position())},
	)

	rowFields := make(map[string]types.Monotype, len(e.Cases))
	cases := make([]typedast.TypedMatchCase, len(e.Cases))
	order := make([]string, len(e.Cases))
	for ci, c := range e.Cases {
		labelType := g.Fresh.Value()
		rowFields[c.Label] = labelType
		order[ci] = c.Label

		body := make([]typedast.TypedNode, len(c.Body))
		var lastType types.Monotype
		for i, form := range c.Body {
			r := g.Infer(form, monovars)
			body[i] = r.Node
			out.Constraints = append(out.Constraints, r.Constraints...)
			ni := r.Node.Info()
			out.Constraints = append(out.Constraints,
				constraint.EffectEqual{NodeEffect: ni.Effect, Target: eff, Location: loc(form.Position())},
			)
			lastType = ni.Type

			for _, a := range r.Assumptions {
				if a.Name == c.Var {
					out.Constraints = append(out.Constraints,
						constraint.Equal{A: a.Type, B: labelType, Location: a.Location},
						constraint.EffectEqual{NodeEffect: a.Effect, Target: eff, Location: a.Location},
					)
				} else {
					out.Assumptions = append(out.Assumptions, a)
				}
			}
		}
		out.Constraints = append(out.Constraints,
			constraint.Equal{A: lastType, B: t, Location: loc(e.Pos)},
		)
		cases[ci] = typedast.TypedMatchCase{Label: c.Label, Var: c.Var, Body: body}
	}

	var variantRow types.Monotype = types.RowEmpty{}
	for i := len(order) - 1; i >= 0; i-- {
		variantRow = types.RowExt{Label: order[i], FieldType: rowFields[order[i]], Tail: variantRow}
	}
	out.Constraints = append(out.Constraints,
		constraint.Equal{A: rv.Node.Info().Type, B: types.Variant(variantRow), Location: loc(e.Scrutinee.Position())},
	)

	out.Node = &typedast.TypedMatch{TypeInfo: info(t, eff, e.Pos), Scrutinee: rv.Node, Cases: cases}
	return out
}

// inferValues types a multiple-value producer (spec §4.5, §9, and
// SPEC_FULL.md §4): an ordinary values(...) application, not a new
// Monotype case. PrimaryOf builds the constraint that narrows a
// values-producer to its primary (first) value, but no generator case
// emits it: a values-producer in a single-value position keeps its
// whole App(values, …) type there.
func (g *Generator) inferValues(e *ast.Values, monovars map[string]bool) Result {
	eff := g.Fresh.Row()
	out := Result{}
	elems := make([]typedast.TypedNode, len(e.Elems))
	elemTypes := make([]types.Monotype, len(e.Elems))
	for i, el := range e.Elems {
		r := g.Infer(el, monovars)
		elems[i] = r.Node
		elemTypes[i] = r.Node.Info().Type
		out.Constraints = append(out.Constraints, r.Constraints...)
		out.Assumptions = append(out.Assumptions, r.Assumptions...)
		out.Constraints = append(out.Constraints,
			constraint.EffectEqual{NodeEffect: r.Node.Info().Effect, Target: eff, Location: loc(el.Position())},
		)
	}
	out.Node = &typedast.TypedValues{TypeInfo: info(types.Values(elemTypes...), eff, e.Pos), Elems: elems}
	return out
}

// PrimaryOf returns the constraint that forces a values-producing
// expression used in ordinary (single-value) position down to just
// its first component (SPEC_FULL.md §4). Callers that place an
// arbitrary sub-expression in a single-value slot and want to accept
// either an ordinary value or a values-producer should use this
// instead of a plain Equal.
func PrimaryOf(producerType types.Monotype, consumer types.Monotype, at types.Location) constraint.Constraint {
	if app, ok := producerType.(types.App); ok && app.Op == types.OpValues && len(app.Args) > 0 {
		return constraint.Equal{A: app.Args[0], B: consumer, Location: at}
	}
	return constraint.Equal{A: producerType, B: consumer, Location: at}
}

func (g *Generator) inferMultipleValueBind(e *ast.MultipleValueBind, monovars map[string]bool) Result {
	eff := g.Fresh.Row()
	elemTypes := make([]types.Monotype, len(e.Names))
	bodyMonovars := copyMonovars(monovars)
	for i := range e.Names {
		elemTypes[i] = g.Fresh.Value()
	}

	rp := g.Infer(e.Producer, monovars)
	out := Result{Constraints: rp.Constraints, Assumptions: rp.Assumptions}
	out.Constraints = append(out.Constraints,
		constraint.Equal{A: rp.Node.Info().Type, B: types.Values(elemTypes...), Location: loc(e.Producer.Position())},
		constraint.EffectEqual{NodeEffect: rp.Node.Info().Effect, Target: eff, Location: loc(e.Producer.Position())},
	)

	body := make([]typedast.TypedNode, len(e.Body))
	var lastType types.Monotype
	for i, form := range e.Body {
		r := g.Infer(form, bodyMonovars)
		body[i] = r.Node
		out.Constraints = append(out.Constraints, r.Constraints...)
		ni := r.Node.Info()
		out.Constraints = append(out.Constraints,
			constraint.EffectEqual{NodeEffect: ni.Effect, Target: eff, Location: loc(form.Position())},
		)
		lastType = ni.Type

		for _, a := range r.Assumptions {
			if idx := paramIndex(e.Names, a.Name); idx >= 0 {
				out.Constraints = append(out.Constraints,
					constraint.Equal{A: a.Type, B: elemTypes[idx], Location: a.Location},
					constraint.EffectEqual{NodeEffect: a.Effect, Target: eff, Location: a.Location},
				)
			} else {
				out.Assumptions = append(out.Assumptions, a)
			}
		}
	}

	out.Node = &typedast.TypedMultipleValueBind{
		TypeInfo: info(lastType, eff, e.Pos),
		Names:    e.Names,
		Producer: rp.Node,
		Body:     body,
	}
	return out
}
