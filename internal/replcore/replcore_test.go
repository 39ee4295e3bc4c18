package replcore_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/ailang-infer/internal/ast"
	"github.com/sunholo/ailang-infer/internal/manifest"
	"github.com/sunholo/ailang-infer/internal/replcore"
)

func TestInferOnePrintsPrincipalTypeForLiteral(t *testing.T) {
	r := replcore.New()
	var out bytes.Buffer
	r.InferOne(&ast.Lit{Kind: ast.NumberLit, Value: 1.0}, &out)
	assert.Contains(t, out.String(), "number")
}

func TestInferOneOmitsEffectLineWhenDefaultedToEmpty(t *testing.T) {
	r := replcore.New()
	var out bytes.Buffer
	r.InferOne(&ast.Lit{Kind: ast.NumberLit, Value: 1.0}, &out)
	assert.NotContains(t, out.String(), "effect")
}

func TestInferOneReportsTypeError(t *testing.T) {
	r := replcore.New()
	var out bytes.Buffer
	r.InferOne(&ast.If{
		Cond: &ast.Lit{Kind: ast.BooleanLit, Value: true},
		Then: &ast.Lit{Kind: ast.NumberLit, Value: 1.0},
		Else: &ast.Lit{Kind: ast.StringLit, Value: "x"},
	}, &out)
	assert.Contains(t, out.String(), "type error")
}

func TestInferOneReportsUnresolvedFreeVariable(t *testing.T) {
	r := replcore.New()
	var out bytes.Buffer
	r.InferOne(&ast.VarRef{Name: "mystery"}, &out)
	assert.Contains(t, out.String(), "unresolved")
	assert.Contains(t, out.String(), "mystery")
}

const replManifest = `
schema: ailang.env-manifest/v1
primitives:
  "+":
    type: "(-> number number _e number)"
aliases:
  Age:
    body: "number"
`

func TestLoadManifestInstallsPrimitivesAndAliases(t *testing.T) {
	r := replcore.New()
	m, err := manifest.Parse([]byte(replManifest), "")
	require.NoError(t, err)
	require.NoError(t, r.LoadManifest("env.yaml", m))

	var out bytes.Buffer
	r.InferOne(&ast.Call{
		Func: &ast.VarRef{Name: "+"},
		Args: []ast.Expr{
			&ast.Lit{Kind: ast.NumberLit, Value: 1.0},
			&ast.Lit{Kind: ast.NumberLit, Value: 2.0},
		},
	}, &out)
	assert.Contains(t, out.String(), "number")
	assert.NotContains(t, out.String(), "unresolved")
}

func TestWatchManifestFailsWithoutALoadedManifest(t *testing.T) {
	r := replcore.New()
	done := make(chan struct{})
	close(done)
	err := r.WatchManifest(&bytes.Buffer{}, done)
	assert.Error(t, err)
}
