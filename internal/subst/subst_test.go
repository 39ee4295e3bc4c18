package subst_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/ailang-infer/internal/subst"
	"github.com/sunholo/ailang-infer/internal/types"
)

func tv(name string) types.Var { return types.Var{Name: name, VarKind: types.KindValue} }

func TestApplyRewritesBoundVariable(t *testing.T) {
	sub := subst.Substitution{"t1": types.Number}
	assert.True(t, types.Equal(types.Number, subst.Apply(sub, tv("t1"))))
}

func TestApplyLeavesUnboundVariableAlone(t *testing.T) {
	sub := subst.Substitution{"t1": types.Number}
	assert.True(t, types.Equal(tv("t2"), subst.Apply(sub, tv("t2"))))
}

func TestApplyIsFixpointThroughChainedBindings(t *testing.T) {
	// t1 -> t2 -> number: applying once must fully resolve through
	// the chain, not stop at the first hop.
	sub := subst.Substitution{"t1": tv("t2"), "t2": types.Number}
	assert.True(t, types.Equal(types.Number, subst.Apply(sub, tv("t1"))))
}

func TestApplyRecursesThroughApplicationsAndRows(t *testing.T) {
	sub := subst.Substitution{"t1": types.Number}
	vec := types.Vector(tv("t1"))
	assert.True(t, types.Equal(types.Vector(types.Number), subst.Apply(sub, vec)))

	row := types.RowExt{Label: "x", FieldType: tv("t1"), Tail: types.RowEmpty{}}
	want := types.RowExt{Label: "x", FieldType: types.Number, Tail: types.RowEmpty{}}
	assert.True(t, types.Equal(want, subst.Apply(sub, row)))
}

// TestIdempotence is spec §8's "idempotence of substitution" property:
// apply(s, apply(s, t)) = apply(s, t).
func TestIdempotence(t *testing.T) {
	sub := subst.Substitution{"t1": types.Vector(tv("t2")), "t2": types.Number}
	start := tv("t1")
	once := subst.Apply(sub, start)
	twice := subst.Apply(sub, once)
	assert.True(t, types.Equal(once, twice))
}

func TestComposeAppliesS1ToS2sRangeThenUnions(t *testing.T) {
	s1 := subst.Substitution{"t2": types.Number}
	s2 := subst.Substitution{"t1": tv("t2")}
	composed := subst.Compose(s1, s2)
	assert.True(t, types.Equal(types.Number, subst.Apply(composed, tv("t1"))))
}

func TestComposeS1WinsOnDomainOverlap(t *testing.T) {
	s1 := subst.Substitution{"t1": types.Number}
	s2 := subst.Substitution{"t1": types.String}
	composed := subst.Compose(s1, s2)
	assert.True(t, types.Equal(types.Number, composed["t1"]))
}

// TestOccursCheck is spec §8's "occurs soundness" property: extending
// a substitution must never bind a variable to a type that contains
// it.
func TestOccursCheck(t *testing.T) {
	_, err := subst.Extend(subst.Empty(), "t1", types.Vector(tv("t1")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "occurs-check")
}

func TestOccursCheckThroughExistingSubstitution(t *testing.T) {
	sub := subst.Substitution{"t2": types.Vector(tv("t1"))}
	_, err := subst.Extend(sub, "t1", tv("t2"))
	require.Error(t, err)
}

func TestExtendSucceedsWhenNoCycle(t *testing.T) {
	sub, err := subst.Extend(subst.Empty(), "t1", types.Number)
	require.NoError(t, err)
	assert.True(t, types.Equal(types.Number, sub["t1"]))
}

func TestFreeVarsCollectsFromNestedStructure(t *testing.T) {
	t1, t2 := tv("t1"), tv("t2")
	fn := types.Func([]types.Monotype{t1}, types.RowEmpty{}, t2)
	free := subst.FreeVars(fn)
	assert.True(t, free["t1"])
	assert.True(t, free["t2"])
	assert.Len(t, free, 2)
}

func TestFreeVarsOfConstantIsEmpty(t *testing.T) {
	assert.Empty(t, subst.FreeVars(types.Number))
}

func TestFreeVarsSubUnionsAcrossBindings(t *testing.T) {
	sub := subst.Substitution{"a": tv("t1"), "b": tv("t2")}
	free := subst.FreeVarsSub(sub)
	assert.True(t, free["t1"])
	assert.True(t, free["t2"])
}

func TestApplySchemeSkipsQuantifiedVariables(t *testing.T) {
	sub := subst.Substitution{"t1": types.Number, "t2": types.String}
	scheme := &types.Scheme{
		Vars: []types.QuantifiedVar{{Name: "t1", Kind: types.KindValue}},
		Type: types.Vector(tv("t1")),
	}
	applied := subst.ApplyScheme(sub, scheme)
	// t1 is bound by the scheme itself, so substituting it must not
	// touch the body even though sub has a binding for it.
	assert.True(t, types.Equal(types.Vector(tv("t1")), applied.Type))
}

func TestApplySchemeRewritesFreeVariables(t *testing.T) {
	sub := subst.Substitution{"t2": types.String}
	scheme := &types.Scheme{
		Vars: []types.QuantifiedVar{{Name: "t1", Kind: types.KindValue}},
		Type: types.App{Op: "pair", Args: []types.Monotype{tv("t1"), tv("t2")}},
	}
	applied := subst.ApplyScheme(sub, scheme)
	want := types.App{Op: "pair", Args: []types.Monotype{tv("t1"), types.String}}
	assert.True(t, types.Equal(want, applied.Type))
}
