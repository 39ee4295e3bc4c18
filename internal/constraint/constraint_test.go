package constraint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sunholo/ailang-infer/internal/constraint"
	"github.com/sunholo/ailang-infer/internal/types"
)

func tv(name string) types.Var { return types.Var{Name: name, VarKind: types.KindValue} }

func TestEqualCarriesItsLocationAndPrintsBothSides(t *testing.T) {
	loc := types.Location{File: "f.ail", Line: 3, Column: 1}
	c := constraint.Equal{A: tv("a"), B: types.Number, Location: loc}
	assert.Equal(t, loc, c.At())
	assert.Contains(t, c.String(), "number")
}

func TestEffectEqualPrintsBothSides(t *testing.T) {
	c := constraint.EffectEqual{NodeEffect: types.Var{Name: "e", VarKind: types.KindRow}, Target: types.RowEmpty{}}
	assert.Contains(t, c.String(), "{}")
}

func TestImplicitInstancePrintsUseAndGeneralizedTemplate(t *testing.T) {
	c := constraint.ImplicitInstance{Use: tv("u"), Monovars: map[string]bool{}, Template: types.Number}
	assert.Contains(t, c.String(), "number")
}

func TestExplicitInstancePrintsSchemeWithQuantifiers(t *testing.T) {
	s := &types.Scheme{
		Vars: []types.QuantifiedVar{{Name: "a", Kind: types.KindValue}},
		Type: tv("a"),
	}
	c := constraint.ExplicitInstance{Use: tv("u"), Scheme: s}
	assert.Contains(t, c.String(), "∀")
}

func TestAssumptionFieldsRoundTrip(t *testing.T) {
	loc := types.Location{File: "f.ail", Line: 1, Column: 1}
	a := constraint.Assumption{Name: "x", Type: tv("t"), Effect: types.Var{Name: "e", VarKind: types.KindRow}, Location: loc}
	assert.Equal(t, "x", a.Name)
	assert.Equal(t, loc, a.Location)
}

// TestConstraintKindsSatisfyTheInterface is a compile-time-adjacent
// sanity check that all four constraint kinds implement the shared
// interface the solver switches over.
func TestConstraintKindsSatisfyTheInterface(t *testing.T) {
	var cs []constraint.Constraint
	cs = append(cs,
		constraint.Equal{A: tv("a"), B: tv("b")},
		constraint.EffectEqual{NodeEffect: tv("a"), Target: tv("b")},
		constraint.ImplicitInstance{Use: tv("a"), Monovars: map[string]bool{}, Template: tv("b")},
		constraint.ExplicitInstance{Use: tv("a"), Scheme: types.Mono(types.Number)},
	)
	assert.Len(t, cs, 4)
}
