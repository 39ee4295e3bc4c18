package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/ailang-infer/internal/types"
)

func TestEqualConstants(t *testing.T) {
	assert.True(t, types.Equal(types.Number, types.Number))
	assert.False(t, types.Equal(types.Number, types.String))
}

func TestEqualApp(t *testing.T) {
	a := types.Vector(types.Number)
	b := types.Vector(types.Number)
	c := types.Vector(types.String)
	assert.True(t, types.Equal(a, b))
	assert.False(t, types.Equal(a, c))
}

func TestEqualVarRespectsNameAndKind(t *testing.T) {
	v1 := types.Var{Name: "a", VarKind: types.KindValue}
	v2 := types.Var{Name: "a", VarKind: types.KindValue}
	v3 := types.Var{Name: "a", VarKind: types.KindRow}
	assert.True(t, types.Equal(v1, v2))
	assert.False(t, types.Equal(v1, v3))
}

// TestRowPermutationEquality covers spec §8's "row permutation"
// property: {:x A :y B} ≡ {:y B :x A}.
func TestRowPermutationEquality(t *testing.T) {
	a := types.RowExt{Label: "x", FieldType: types.Number, Tail: types.RowExt{Label: "y", FieldType: types.String, Tail: types.RowEmpty{}}}
	b := types.RowExt{Label: "y", FieldType: types.String, Tail: types.RowExt{Label: "x", FieldType: types.Number, Tail: types.RowEmpty{}}}
	assert.True(t, types.Equal(a, b))
}

func TestRowPermutationWithSharedOpenTail(t *testing.T) {
	tailVar := types.Var{Name: "r1", VarKind: types.KindRow}
	a := types.RowExt{Label: "x", FieldType: types.Number, Tail: types.RowExt{Label: "y", FieldType: types.String, Tail: tailVar}}
	b := types.RowExt{Label: "y", FieldType: types.String, Tail: types.RowExt{Label: "x", FieldType: types.Number, Tail: tailVar}}
	assert.True(t, types.Equal(a, b))
}

func TestRowInequalityOnDifferentTails(t *testing.T) {
	a := types.RowExt{Label: "x", FieldType: types.Number, Tail: types.RowEmpty{}}
	b := types.RowExt{Label: "x", FieldType: types.Number, Tail: types.Var{Name: "r1", VarKind: types.KindRow}}
	assert.False(t, types.Equal(a, b))
}

func TestFuncPartsRoundTrips(t *testing.T) {
	arg := types.Var{Name: "t1", VarKind: types.KindValue}
	eff := types.Var{Name: "r1", VarKind: types.KindRow}
	result := types.Var{Name: "t2", VarKind: types.KindValue}
	fn := types.Func([]types.Monotype{arg}, eff, result)

	args, effect, res := types.FuncParts(fn)
	require.Len(t, args, 1)
	assert.True(t, types.Equal(args[0], arg))
	assert.True(t, types.Equal(effect, eff))
	assert.True(t, types.Equal(res, result))
}

func TestPrintConstantsAndApplications(t *testing.T) {
	assert.Equal(t, "number", types.Print(types.Number))
	assert.Equal(t, "[number]", types.Print(types.Vector(types.Number)))
}

func TestPrintFunctionWithUnconstrainedEffect(t *testing.T) {
	// Scenario 2 from spec §8: (lambda (x) x) -> (-> α β α).
	arg := types.Var{Name: "t1", VarKind: types.KindValue}
	eff := types.Var{Name: "r1", VarKind: types.KindRow}
	fn := types.Func([]types.Monotype{arg}, eff, arg)
	assert.Equal(t, "(-> α β α)", types.Print(fn))
}

func TestPrintFunctionWithConcreteEffectRow(t *testing.T) {
	// Scenario 11 from spec §8: (-> string (effect console | α) string).
	tail := types.Var{Name: "r9", VarKind: types.KindRow}
	eff := types.RowExt{Label: "console", FieldType: types.Void, Tail: tail}
	fn := types.Func([]types.Monotype{types.String}, eff, types.String)
	assert.Equal(t, "(-> string (effect console | α) string)", types.Print(fn))
}

func TestPrintRecordAndVariant(t *testing.T) {
	row := types.RowExt{Label: "x", FieldType: types.Number, Tail: types.RowExt{Label: "y", FieldType: types.String, Tail: types.RowEmpty{}}}
	assert.Equal(t, "{:x number :y string}", types.Print(types.Record(row)))
	assert.Equal(t, "(variant {:x number :y string})", types.Print(types.Variant(row)))
}

func TestPrintUserSpecifiedVariableKeepsItsName(t *testing.T) {
	v := types.Var{Name: "a", UserSpecified: true, VarKind: types.KindValue}
	assert.Equal(t, "a", types.Print(v))
}

func TestPrintSchemeQuantifiers(t *testing.T) {
	v := types.Var{Name: "t1", VarKind: types.KindValue}
	s := &types.Scheme{Vars: []types.QuantifiedVar{{Name: "t1", Kind: types.KindValue}}, Type: types.Vector(v)}
	assert.Equal(t, "∀α. [α]", types.PrintScheme(s))
}

func TestPrintGeneratedVariablesAreStableWithinOneCall(t *testing.T) {
	v := types.Var{Name: "t7", VarKind: types.KindValue}
	pair := types.App{Op: "pair", Args: []types.Monotype{v, v}}
	assert.Equal(t, "(pair α α)", types.Print(pair))
}
