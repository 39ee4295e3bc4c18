// Package typedast is the output of the generator (and, after the
// solver runs, of the module driver): the same expression tree the
// input carried, with every node now also carrying a monomorphic
// {type, effect} pair (spec §3, "Typed node").
package typedast

import (
	"github.com/sunholo/ailang-infer/internal/ast"
	"github.com/sunholo/ailang-infer/internal/subst"
	"github.com/sunholo/ailang-infer/internal/types"
)

// TypeInfo is the {type, effect} pair every typed node carries. It is
// shared by pointer so that applying the solver's substitution can
// update every node's annotation in place without rebuilding the tree
// (spec §4.9, "apply the substitution to every annotated node").
type TypeInfo struct {
	Type   types.Monotype
	Effect types.Monotype
	Pos    ast.Pos
}

// TypedNode is the common interface of every typed tree node.
type TypedNode interface {
	Info() *TypeInfo
}

func (t *TypeInfo) Info() *TypeInfo { return t }

// TypedLit is a typed literal.
type TypedLit struct {
	*TypeInfo
	Kind  ast.LitKind
	Value interface{}
}

// TypedUnknown is a typed gap left by an upstream syntax error.
type TypedUnknown struct{ *TypeInfo }

// TypedVar is a typed variable reference.
type TypedVar struct {
	*TypeInfo
	Name string
}

// TypedVector is a typed vector literal.
type TypedVector struct {
	*TypeInfo
	Elems []TypedNode
}

// TypedRecordField is one typed `:label value` pair.
type TypedRecordField struct {
	Label string
	Value TypedNode
}

// TypedRecord is a typed record literal. Tail is nil when the literal
// had none.
type TypedRecord struct {
	*TypeInfo
	Fields []TypedRecordField
	Tail   TypedNode
}

// TypedIf is a typed conditional.
type TypedIf struct {
	*TypeInfo
	Cond, Then, Else TypedNode
}

// TypedLambda is a typed function. ParamTypes holds the parameters'
// monomorphic types in declaration order.
type TypedLambda struct {
	*TypeInfo
	Params     []string
	ParamTypes []types.Monotype
	Body       []TypedNode
}

// TypedCall is a typed function application.
type TypedCall struct {
	*TypeInfo
	Func TypedNode
	Args []TypedNode
}

// TypedBinding is one typed `xi vi` let-binding. Scheme holds the
// bound value's type with no quantified variables, rewritten in place
// by ApplySubstitution; it is not generalized. Each use of the name in
// the let body is instantiated through its own ImplicitInstance
// constraint instead.
type TypedBinding struct {
	Name   string
	Scheme *types.Scheme
	Value  TypedNode
}

// TypedLet is a typed let form.
type TypedLet struct {
	*TypeInfo
	Bindings []TypedBinding
	Body     []TypedNode
}

// TypedAnnotation is a typed `(the T e)` form.
type TypedAnnotation struct {
	*TypeInfo
	Expr TypedNode
}

// TypedDo is a typed do-block.
type TypedDo struct {
	*TypeInfo
	Forms     []TypedNode
	Returning TypedNode
}

// TypedMatchCase is one typed match arm.
type TypedMatchCase struct {
	Label string
	Var   string
	Body  []TypedNode
}

// TypedMatch is a typed match expression.
type TypedMatch struct {
	*TypeInfo
	Scrutinee TypedNode
	Cases     []TypedMatchCase
}

// TypedValues is a typed multiple-values producer.
type TypedValues struct {
	*TypeInfo
	Elems []TypedNode
}

// TypedMultipleValueBind is a typed multiple-value-bind form.
type TypedMultipleValueBind struct {
	*TypeInfo
	Names    []string
	Producer TypedNode
	Body     []TypedNode
}

// TypedDefinition is one typed top-level module binding.
type TypedDefinition struct {
	Name   string
	Scheme *types.Scheme
	Value  TypedNode
}

// TypedModule is the fully-typed output of the module driver (spec
// §6, "Typed module").
type TypedModule struct {
	Defs  []TypedDefinition
	Exprs []TypedNode
}

// ApplySubstitution rewrites every node's Type and Effect in place by
// applying sub, recursing through every child. It is the last step of
// the module driver pipeline (spec §4.9 step 7).
func ApplySubstitution(sub subst.Substitution, node TypedNode) {
	if node == nil {
		return
	}
	info := node.Info()
	info.Type = subst.Apply(sub, info.Type)
	if info.Effect != nil {
		info.Effect = subst.Apply(sub, info.Effect)
	}

	switch n := node.(type) {
	case *TypedVector:
		for _, e := range n.Elems {
			ApplySubstitution(sub, e)
		}
	case *TypedRecord:
		for _, f := range n.Fields {
			ApplySubstitution(sub, f.Value)
		}
		ApplySubstitution(sub, n.Tail)
	case *TypedIf:
		ApplySubstitution(sub, n.Cond)
		ApplySubstitution(sub, n.Then)
		ApplySubstitution(sub, n.Else)
	case *TypedLambda:
		for i, pt := range n.ParamTypes {
			n.ParamTypes[i] = subst.Apply(sub, pt)
		}
		for _, b := range n.Body {
			ApplySubstitution(sub, b)
		}
	case *TypedCall:
		ApplySubstitution(sub, n.Func)
		for _, a := range n.Args {
			ApplySubstitution(sub, a)
		}
	case *TypedLet:
		for _, b := range n.Bindings {
			if b.Scheme != nil {
				*b.Scheme = *subst.ApplyScheme(sub, b.Scheme)
			}
			ApplySubstitution(sub, b.Value)
		}
		for _, b := range n.Body {
			ApplySubstitution(sub, b)
		}
	case *TypedAnnotation:
		ApplySubstitution(sub, n.Expr)
	case *TypedDo:
		for _, f := range n.Forms {
			ApplySubstitution(sub, f)
		}
		ApplySubstitution(sub, n.Returning)
	case *TypedMatch:
		ApplySubstitution(sub, n.Scrutinee)
		for _, c := range n.Cases {
			for _, b := range c.Body {
				ApplySubstitution(sub, b)
			}
		}
	case *TypedValues:
		for _, e := range n.Elems {
			ApplySubstitution(sub, e)
		}
	case *TypedMultipleValueBind:
		ApplySubstitution(sub, n.Producer)
		for _, b := range n.Body {
			ApplySubstitution(sub, b)
		}
	}
}

// ApplySubstitutionToModule applies ApplySubstitution to every
// definition and top-level expression in m.
func ApplySubstitutionToModule(sub subst.Substitution, m *TypedModule) {
	for _, d := range m.Defs {
		if d.Scheme != nil {
			*d.Scheme = *subst.ApplyScheme(sub, d.Scheme)
		}
		ApplySubstitution(sub, d.Value)
	}
	for _, e := range m.Exprs {
		ApplySubstitution(sub, e)
	}
}
