package manifest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/ailang-infer/internal/alias"
	"github.com/sunholo/ailang-infer/internal/ast"
	"github.com/sunholo/ailang-infer/internal/fresh"
	"github.com/sunholo/ailang-infer/internal/manifest"
	"github.com/sunholo/ailang-infer/internal/types"
)

const validManifest = `
schema: ailang.env-manifest/v1
engine_version: ">=1.0.0"
primitives:
  "+":
    type: "(-> number number _e number)"
  print:
    type: "(-> string (effect console | _r) void)"
aliases:
  Age:
    body: "number"
`

func TestParseValidManifest(t *testing.T) {
	m, err := manifest.Parse([]byte(validManifest), "1.2.0")
	require.NoError(t, err)
	assert.Equal(t, manifest.SchemaVersion, m.Schema)
	assert.Len(t, m.Primitives, 2)
	assert.Len(t, m.Aliases, 1)
}

func TestParseRejectsWrongSchema(t *testing.T) {
	_, err := manifest.Parse([]byte("schema: wrong\nprimitives: {}\n"), "")
	require.Error(t, err)
}

func TestParseRejectsEngineVersionOutsideConstraint(t *testing.T) {
	_, err := manifest.Parse([]byte(validManifest), "0.1.0")
	require.Error(t, err)
}

func TestParseRejectsPrimitiveWithoutType(t *testing.T) {
	bad := "schema: ailang.env-manifest/v1\nprimitives:\n  foo:\n    type: \"\"\n"
	_, err := manifest.Parse([]byte(bad), "")
	require.Error(t, err)
}

func TestAliasDeclsParsesEachBody(t *testing.T) {
	m, err := manifest.Parse([]byte(validManifest), "")
	require.NoError(t, err)
	decls, err := m.AliasDecls()
	require.NoError(t, err)
	require.Len(t, decls, 1)
	assert.Equal(t, "Age", decls[0].Name)
}

func TestSchemesGeneralizesEachPrimitive(t *testing.T) {
	m, err := manifest.Parse([]byte(validManifest), "")
	require.NoError(t, err)
	table, err := alias.NewTable(nil)
	require.NoError(t, err)

	schemes, err := m.Schemes(fresh.NewSource(), table)
	require.NoError(t, err)
	require.Contains(t, schemes, "+")
	require.Contains(t, schemes, "print")

	plusScheme := schemes["+"]
	require.NotEmpty(t, plusScheme.Vars, "the effect-polymorphic \"+\" must generalize over its own effect variable")

	printScheme := schemes["print"]
	assert.Contains(t, types.PrintScheme(printScheme), "console")
}

func TestParseTypeExprFunctionType(t *testing.T) {
	texpr, err := manifest.ParseTypeExpr("(-> number number _e number)")
	require.NoError(t, err)
	app, ok := texpr.(ast.TAppExpr)
	require.True(t, ok)
	assert.Equal(t, types.OpFunc, app.Op)
	assert.Len(t, app.Args, 4)
}

func TestParseTypeExprVector(t *testing.T) {
	texpr, err := manifest.ParseTypeExpr("[number]")
	require.NoError(t, err)
	app, ok := texpr.(ast.TAppExpr)
	require.True(t, ok)
	assert.Equal(t, types.OpVector, app.Op)
}

func TestParseTypeExprRecord(t *testing.T) {
	texpr, err := manifest.ParseTypeExpr("{:x number :y string}")
	require.NoError(t, err)
	row, ok := texpr.(ast.TRowExpr)
	require.True(t, ok)
	assert.Len(t, row.Fields, 2)
}

func TestParseTypeExprEffectRow(t *testing.T) {
	texpr, err := manifest.ParseTypeExpr("(effect console | _r)")
	require.NoError(t, err)
	app, ok := texpr.(ast.TAppExpr)
	require.True(t, ok)
	assert.Equal(t, types.OpEffect, app.Op)
	row := app.Args[0].(ast.TRowExpr)
	require.Len(t, row.Fields, 1)
	assert.Equal(t, "console", row.Fields[0].Label)
	require.NotNil(t, row.Tail)
}

func TestParseTypeExprRejectsTrailingGarbage(t *testing.T) {
	_, err := manifest.ParseTypeExpr("number extra")
	assert.Error(t, err)
}
