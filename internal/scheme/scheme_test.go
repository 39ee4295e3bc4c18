package scheme_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/ailang-infer/internal/fresh"
	"github.com/sunholo/ailang-infer/internal/scheme"
	"github.com/sunholo/ailang-infer/internal/subst"
	"github.com/sunholo/ailang-infer/internal/types"
)

func tv(name string) types.Var { return types.Var{Name: name, VarKind: types.KindValue} }

func TestGeneralizeQuantifiesOnlyNonMonomorphicVars(t *testing.T) {
	t1, t2 := tv("t1"), tv("t2")
	monovars := map[string]bool{"t1": true}
	s := scheme.Generalize(types.App{Op: "pair", Args: []types.Monotype{t1, t2}}, monovars)
	names := make([]string, len(s.Vars))
	for i, v := range s.Vars {
		names[i] = v.Name
	}
	assert.Equal(t, []string{"t2"}, names)
}

func TestGeneralizeOverEmptyMonovarsQuantifiesEverything(t *testing.T) {
	s := scheme.Generalize(tv("t1"), map[string]bool{})
	require.Len(t, s.Vars, 1)
	assert.Equal(t, "t1", s.Vars[0].Name)
}

func TestGeneralizePreservesVariableKind(t *testing.T) {
	rowVar := types.Var{Name: "r1", VarKind: types.KindRow}
	s := scheme.Generalize(rowVar, map[string]bool{})
	require.Len(t, s.Vars, 1)
	assert.Equal(t, types.KindRow, s.Vars[0].Kind)
}

func TestInstantiateMintsFreshVariablesOfSameKind(t *testing.T) {
	src := fresh.NewSource()
	s := &types.Scheme{
		Vars: []types.QuantifiedVar{{Name: "a", Kind: types.KindValue}},
		Type: types.Vector(tv("a")),
	}
	instance := scheme.Instantiate(src, s)
	app, ok := instance.(types.App)
	require.True(t, ok)
	v, ok := app.Args[0].(types.Var)
	require.True(t, ok)
	assert.NotEqual(t, "a", v.Name)
	assert.Equal(t, types.KindValue, v.VarKind)
}

func TestInstantiateTwiceProducesDistinctVariables(t *testing.T) {
	src := fresh.NewSource()
	s := &types.Scheme{Vars: []types.QuantifiedVar{{Name: "t1", Kind: types.KindValue}}, Type: tv("t1")}
	a := scheme.Instantiate(src, s)
	b := scheme.Instantiate(src, s)
	assert.False(t, types.Equal(a, b), "two instantiations of a polymorphic scheme must not share identity")
}

func TestInstantiateMonomorphicSchemeIsIdentity(t *testing.T) {
	src := fresh.NewSource()
	s := types.Mono(types.Number)
	assert.True(t, types.Equal(types.Number, scheme.Instantiate(src, s)))
}

func TestActiveVarsExcludesMonovars(t *testing.T) {
	t1, t2 := tv("t1"), tv("t2")
	active := scheme.ActiveVars(types.App{Op: "pair", Args: []types.Monotype{t1, t2}}, map[string]bool{"t1": true})
	assert.False(t, active["t1"])
	assert.True(t, active["t2"])
}

// TestLetGeneralizationIsSound is a unit-level check of the building
// block behind spec §8's let-generalization property: generalizing
// the identity function's inferred type over an empty monomorphic set
// yields a polymorphic scheme whose two instantiations can each unify
// with a different concrete type.
func TestLetGeneralizationIsSound(t *testing.T) {
	src := fresh.NewSource()
	param := src.Value()
	idType := types.Func([]types.Monotype{param}, src.Row(), param)
	s := scheme.Generalize(idType, map[string]bool{})
	require.NotEmpty(t, s.Vars)

	first := scheme.Instantiate(src, s)
	second := scheme.Instantiate(src, s)
	assert.False(t, types.Equal(first, second))

	// Both instances must still be shaped like a one-argument identity
	// function (same argument and result type).
	for _, inst := range []types.Monotype{first, second} {
		app, ok := inst.(types.App)
		require.True(t, ok)
		args, _, result := types.FuncParts(app)
		require.Len(t, args, 1)
		assert.True(t, types.Equal(args[0], result))
	}
}

func TestApplyScheme_SkipsVariablesTheSchemeItselfQuantifies(t *testing.T) {
	// t2 is generalized by Generalize below, so a substitution for t2
	// must not leak into the scheme's body; only t1 (free, not
	// quantified) is rewritten.
	sub := subst.Substitution{"t1": types.Number, "t2": types.String}
	s := scheme.Generalize(types.App{Op: "pair", Args: []types.Monotype{tv("t1"), tv("t2")}}, map[string]bool{"t1": true})
	applied := subst.ApplyScheme(sub, s)
	app := applied.Type.(types.App)
	assert.True(t, types.Equal(types.Number, app.Args[0]))
	assert.True(t, types.Equal(tv("t2"), app.Args[1]))
}
