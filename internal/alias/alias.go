// Package alias expands user-declared type aliases on demand and
// detects cycles among them before inference begins (spec §4.8).
package alias

import (
	"fmt"

	"github.com/sunholo/ailang-infer/internal/ast"
	"github.com/sunholo/ailang-infer/internal/fresh"
	"github.com/sunholo/ailang-infer/internal/types"
)

// Table is the collected set of alias declarations for one module,
// keyed by name.
type Table struct {
	decls map[string]ast.AliasDecl
	order []string
}

// NewTable collects a module's alias declarations. It does not itself
// check for cycles — call CheckCycles once the table is built.
func NewTable(decls []ast.AliasDecl) (*Table, error) {
	t := &Table{decls: make(map[string]ast.AliasDecl, len(decls))}
	for _, d := range decls {
		if _, dup := t.decls[d.Name]; dup {
			return nil, fmt.Errorf("duplicate type alias declaration: %s", d.Name)
		}
		t.decls[d.Name] = d
		t.order = append(t.order, d.Name)
	}
	return t, nil
}

// CheckCycles runs a DFS over the alias reference graph — an edge
// from A to B meaning "A's body mentions B" — and reports a
// *types.CheckError if it finds a back-edge. A self-loop reports
// "recursive type aliases are not allowed"; a longer cycle lists the
// offending path (spec §4.8).
func (t *Table) CheckCycles() error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(t.decls))
	var path []string

	var visit func(name string) error
	visit = func(name string) error {
		color[name] = gray
		path = append(path, name)
		for _, ref := range referencedAliases(t.decls[name].Body, t) {
			switch color[ref] {
			case gray:
				if ref == name {
					return types.NewRecursiveAliasError([]string{ref})
				}
				cyclePath := append(append([]string{}, path...), ref)
				return types.NewRecursiveAliasError(trimToCycle(cyclePath, ref))
			case white:
				if err := visit(ref); err != nil {
					return err
				}
			}
		}
		path = path[:len(path)-1]
		color[name] = black
		return nil
	}

	for _, name := range t.order {
		if color[name] == white {
			if err := visit(name); err != nil {
				return err
			}
		}
	}
	return nil
}

// trimToCycle trims a DFS path down to just the cycle it closes,
// i.e. from the first occurrence of `closing` onward.
func trimToCycle(path []string, closing string) []string {
	for i, n := range path {
		if n == closing {
			return path[i:]
		}
	}
	return path
}

// referencedAliases collects every alias name (from t's table) that
// texpr's surface syntax mentions, directly.
func referencedAliases(texpr ast.TypeExpr, t *Table) []string {
	var names []string
	var walk func(ast.TypeExpr)
	walk = func(texpr ast.TypeExpr) {
		switch texpr := texpr.(type) {
		case ast.TConstExpr:
			if _, ok := t.decls[texpr.Name]; ok {
				names = append(names, texpr.Name)
			}
		case ast.TAppExpr:
			if _, ok := t.decls[texpr.Op]; ok {
				names = append(names, texpr.Op)
			}
			for _, a := range texpr.Args {
				walk(a)
			}
		case ast.TRowExpr:
			for _, f := range texpr.Fields {
				walk(f.Type)
			}
			if texpr.Tail != nil {
				walk(texpr.Tail)
			}
		case ast.TVarExpr:
			// no references
		}
	}
	walk(texpr)
	return names
}

// Wildcards tracks, within one annotation, the fresh variables minted
// so far for each named wildcard (`_name`), so every occurrence of
// the same name shares one variable (spec §4.7). Construct a fresh
// zero-value Wildcards per annotation; never share it across
// annotations.
type Wildcards struct {
	named map[string]types.Var
}

// ToMonotype converts a surface TypeExpr into a Monotype, expanding
// alias references recursively and instantiating wildcards: a plain
// name becomes a user_specified variable, `_` mints an independent
// fresh variable per occurrence, and `_name` shares one fresh
// variable across every occurrence within this call's Wildcards.
func (t *Table) ToMonotype(freshSrc *fresh.Source, w *Wildcards, texpr ast.TypeExpr) (types.Monotype, error) {
	return t.expand(freshSrc, w, texpr, nil, 0)
}

func (t *Table) expand(freshSrc *fresh.Source, w *Wildcards, texpr ast.TypeExpr, args []types.Monotype, depth int) (types.Monotype, error) {
	if depth > len(t.decls)+1 {
		return nil, fmt.Errorf("alias expansion did not terminate (cycle check should have caught this)")
	}

	switch texpr := texpr.(type) {
	case resolvedType:
		return texpr.t, nil

	case ast.TConstExpr:
		if decl, ok := t.decls[texpr.Name]; ok {
			if len(decl.Params) != len(args) {
				return nil, fmt.Errorf("type alias %s expects %d argument(s), got %d", texpr.Name, len(decl.Params), len(args))
			}
			return t.expandAliasBody(freshSrc, w, decl, args, depth)
		}
		if len(args) > 0 {
			return nil, fmt.Errorf("%s is not a parametric type", texpr.Name)
		}
		return builtinConstant(texpr.Name), nil

	case ast.TVarExpr:
		if len(args) > 0 {
			return nil, fmt.Errorf("type variable %s cannot be applied to arguments", texpr.Name)
		}
		return t.instantiateVar(freshSrc, w, texpr), nil

	case ast.TAppExpr:
		if decl, ok := t.decls[texpr.Op]; ok {
			argTypes, err := t.expandArgs(freshSrc, w, texpr.Args, depth)
			if err != nil {
				return nil, err
			}
			if len(decl.Params) != len(argTypes) {
				return nil, fmt.Errorf("type alias %s expects %d argument(s), got %d", texpr.Op, len(decl.Params), len(argTypes))
			}
			return t.expandAliasBody(freshSrc, w, decl, argTypes, depth)
		}

		// The function, record, variant, and effect constructors carry a
		// row in at least one argument slot (the effect slot for "->",
		// the sole argument for the other three): those slots expand to
		// a bare row, never auto-wrapped as a record, since they are
		// consumed directly as App(op, row) by the caller.
		switch texpr.Op {
		case types.OpFunc:
			if len(texpr.Args) < 2 {
				return nil, fmt.Errorf("function type expects at least an effect and a result, got %d argument(s)", len(texpr.Args))
			}
			n := len(texpr.Args)
			argExprs, effectExpr, resultExpr := texpr.Args[:n-2], texpr.Args[n-2], texpr.Args[n-1]
			argTypes, err := t.expandArgs(freshSrc, w, argExprs, depth)
			if err != nil {
				return nil, err
			}
			effect, err := t.expandRow(freshSrc, w, effectExpr, depth)
			if err != nil {
				return nil, err
			}
			result, err := t.expand(freshSrc, w, resultExpr, nil, depth)
			if err != nil {
				return nil, err
			}
			return types.Func(argTypes, effect, result), nil

		case types.OpRecord, types.OpVariant, types.OpEffect:
			if len(texpr.Args) != 1 {
				return nil, fmt.Errorf("%s type expects exactly one row argument, got %d", texpr.Op, len(texpr.Args))
			}
			row, err := t.expandRow(freshSrc, w, texpr.Args[0], depth)
			if err != nil {
				return nil, err
			}
			return types.App{Op: texpr.Op, Args: []types.Monotype{row}}, nil
		}

		argTypes, err := t.expandArgs(freshSrc, w, texpr.Args, depth)
		if err != nil {
			return nil, err
		}
		return types.App{Op: texpr.Op, Args: argTypes}, nil

	case ast.TRowExpr:
		row, err := t.expandRow(freshSrc, w, texpr, depth)
		if err != nil {
			return nil, err
		}
		// A bare row literal used as a complete type (an alias body, an
		// annotation) denotes the record carrying that row, matching
		// how the printer shows a record type as just its row with no
		// "record" keyword (spec §6).
		return types.Record(row), nil

	default:
		return nil, fmt.Errorf("alias.ToMonotype: unhandled surface type %T", texpr)
	}
}

// expandRow converts texpr to a bare row Monotype (kind row), for the
// positions that need one directly: a function type's effect slot, and
// the single argument of an explicit record/variant/effect
// application. A TVarExpr wildcard or named variable here instantiates
// a row-kind variable rather than the default value-kind one.
func (t *Table) expandRow(freshSrc *fresh.Source, w *Wildcards, texpr ast.TypeExpr, depth int) (types.Monotype, error) {
	switch texpr := texpr.(type) {
	case resolvedType:
		return texpr.t, nil

	case ast.TVarExpr:
		return t.instantiateRowVar(freshSrc, w, texpr), nil

	case ast.TAppExpr:
		if texpr.Op == types.OpEffect && len(texpr.Args) == 1 {
			return t.expandRow(freshSrc, w, texpr.Args[0], depth)
		}
		return nil, fmt.Errorf("%s is not a row type", texpr.Op)

	case ast.TRowExpr:
		tail := types.Monotype(types.RowEmpty{})
		if texpr.Tail != nil {
			var err error
			tail, err = t.expandRow(freshSrc, w, texpr.Tail, depth)
			if err != nil {
				return nil, err
			}
		}
		row := tail
		for i := len(texpr.Fields) - 1; i >= 0; i-- {
			f := texpr.Fields[i]
			ft, err := t.expand(freshSrc, w, f.Type, nil, depth)
			if err != nil {
				return nil, err
			}
			row = types.RowExt{Label: f.Label, FieldType: ft, Tail: row}
		}
		return row, nil

	case ast.TConstExpr:
		if texpr.Name == "" {
			return types.RowEmpty{}, nil
		}
		return nil, fmt.Errorf("%s is not a row type", texpr.Name)

	default:
		return nil, fmt.Errorf("alias.expandRow: unhandled surface row type %T", texpr)
	}
}

func (t *Table) expandArgs(freshSrc *fresh.Source, w *Wildcards, exprs []ast.TypeExpr, depth int) ([]types.Monotype, error) {
	out := make([]types.Monotype, len(exprs))
	for i, a := range exprs {
		m, err := t.expand(freshSrc, w, a, nil, depth)
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}

// expandAliasBody substitutes decl's formal parameters with actual
// monotypes and expands the resulting body one level deeper. Unknown
// constants nested in the body that are not themselves declared
// aliases stay opaque, so an alias is transparent only within the
// module that declares it (spec §4.8).
func (t *Table) expandAliasBody(freshSrc *fresh.Source, w *Wildcards, decl ast.AliasDecl, args []types.Monotype, depth int) (types.Monotype, error) {
	body := substituteParams(decl.Body, decl.Params, args)
	return t.expand(freshSrc, w, body, nil, depth+1)
}

// substituteParams rewrites formal parameter references (surface
// TVarExpr names matching a formal) in body to the corresponding
// actual monotype, represented as a resolved placeholder the
// expansion pass will pass through unchanged.
func substituteParams(body ast.TypeExpr, params []string, args []types.Monotype) ast.TypeExpr {
	if len(params) == 0 {
		return body
	}
	bind := make(map[string]types.Monotype, len(params))
	for i, p := range params {
		bind[p] = args[i]
	}
	return rewriteParams(body, bind)
}

func rewriteParams(texpr ast.TypeExpr, bind map[string]types.Monotype) ast.TypeExpr {
	switch texpr := texpr.(type) {
	case ast.TVarExpr:
		if t, ok := bind[texpr.Name]; ok {
			return resolvedType{t: t}
		}
		return texpr
	case ast.TConstExpr:
		if t, ok := bind[texpr.Name]; ok {
			return resolvedType{t: t}
		}
		return texpr
	case ast.TAppExpr:
		args := make([]ast.TypeExpr, len(texpr.Args))
		for i, a := range texpr.Args {
			args[i] = rewriteParams(a, bind)
		}
		return ast.TAppExpr{Op: texpr.Op, Args: args}
	case ast.TRowExpr:
		fields := make([]ast.TRowFieldExpr, len(texpr.Fields))
		for i, f := range texpr.Fields {
			fields[i] = ast.TRowFieldExpr{Label: f.Label, Type: rewriteParams(f.Type, bind)}
		}
		var tail ast.TypeExpr
		if texpr.Tail != nil {
			tail = rewriteParams(texpr.Tail, bind)
		}
		return ast.TRowExpr{Fields: fields, Tail: tail}
	default:
		return texpr
	}
}

// resolvedType wraps an already-computed Monotype so it can flow
// through the surface-syntax expansion pass unchanged after parameter
// substitution.
type resolvedType struct {
	ast.TypeExpr
	t types.Monotype
}

func (t *Table) instantiateVar(freshSrc *fresh.Source, w *Wildcards, v ast.TVarExpr) types.Monotype {
	if !v.IsWildcard {
		return types.Var{Name: v.Name, UserSpecified: true, VarKind: types.KindValue}
	}
	if v.Name == "" {
		return freshSrc.Value()
	}
	if w.named == nil {
		w.named = make(map[string]types.Var)
	}
	if existing, ok := w.named[v.Name]; ok {
		return existing
	}
	fv := freshSrc.Value()
	w.named[v.Name] = fv
	return fv
}

func builtinConstant(name string) types.Monotype {
	return types.Constant{Name: name}
}

// instantiateRowVar is instantiateVar's row-kind counterpart, used for a
// variable written directly in a row position (an alias standing for an
// effect set, or a polymorphic row tail).
func (t *Table) instantiateRowVar(freshSrc *fresh.Source, w *Wildcards, v ast.TVarExpr) types.Monotype {
	if !v.IsWildcard {
		return types.Var{Name: v.Name, UserSpecified: true, VarKind: types.KindRow}
	}
	if v.Name == "" {
		return freshSrc.Row()
	}
	if w.named == nil {
		w.named = make(map[string]types.Var)
	}
	if existing, ok := w.named[v.Name]; ok {
		return existing
	}
	fv := freshSrc.Row()
	w.named[v.Name] = fv
	return fv
}
