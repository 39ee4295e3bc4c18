// Package manifest loads the external-environment manifest: the YAML
// file a driver invocation may supply declaring the primitive
// bindings and type aliases available to a module from outside the
// core (spec.md §6, "external environment"). The shape and the
// Load/Parse/validate pattern mirror the teacher's own manifest
// package, retargeted from example-status tracking to type
// signatures.
package manifest

import (
	"fmt"
	"os"
	"sort"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/sunholo/ailang-infer/internal/alias"
	"github.com/sunholo/ailang-infer/internal/ast"
	"github.com/sunholo/ailang-infer/internal/fresh"
	"github.com/sunholo/ailang-infer/internal/lexer"
	"github.com/sunholo/ailang-infer/internal/types"
)

// SchemaVersion identifies this manifest shape, carried in every
// manifest file's "schema" field the way the teacher's
// ailang.manifest/v1 constant does.
const SchemaVersion = "ailang.env-manifest/v1"

// AliasEntry is one `aliases:` entry: a type alias's formal parameters
// and wire-format body.
type AliasEntry struct {
	Params []string `yaml:"params,omitempty"`
	Body   string   `yaml:"body"`
}

// Manifest is the parsed external-environment manifest: a table of
// primitive bindings (name -> wire-format type signature), a table of
// type aliases, and the engine-version constraint both were written
// against.
type Manifest struct {
	Schema          string                `yaml:"schema"`
	EngineVersion   string                `yaml:"engine_version,omitempty"`
	Primitives      map[string]PrimEntry  `yaml:"primitives"`
	Aliases         map[string]AliasEntry `yaml:"aliases,omitempty"`
}

// PrimEntry is one `primitives:` entry.
type PrimEntry struct {
	Type string `yaml:"type"`
}

// Load reads and validates a manifest file from disk.
func Load(path string, engineVersion string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read environment manifest: %w", err)
	}
	return Parse(data, engineVersion)
}

// Parse validates and decodes manifest bytes already read from
// wherever (disk, embedded asset, network fetch by the caller).
func Parse(data []byte, engineVersion string) (*Manifest, error) {
	normalized := lexer.Normalize(data)

	var m Manifest
	if err := yaml.Unmarshal(normalized, &m); err != nil {
		return nil, fmt.Errorf("failed to parse environment manifest: %w", err)
	}
	if err := m.validate(engineVersion); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate(engineVersion string) error {
	if m.Schema != SchemaVersion {
		return fmt.Errorf("unsupported manifest schema: %s (expected %s)", m.Schema, SchemaVersion)
	}
	if m.EngineVersion != "" && engineVersion != "" {
		c, err := semver.NewConstraint(m.EngineVersion)
		if err != nil {
			return fmt.Errorf("invalid engine_version constraint %q: %w", m.EngineVersion, err)
		}
		v, err := semver.NewVersion(engineVersion)
		if err != nil {
			return fmt.Errorf("invalid engine version %q: %w", engineVersion, err)
		}
		if !c.Check(v) {
			return fmt.Errorf("manifest requires engine_version %s, got %s", m.EngineVersion, engineVersion)
		}
	}
	for name, p := range m.Primitives {
		if p.Type == "" {
			return fmt.Errorf("primitive %q missing type", name)
		}
	}
	for name, a := range m.Aliases {
		if a.Body == "" {
			return fmt.Errorf("alias %q missing body", name)
		}
	}
	return nil
}

// AliasDecls converts the manifest's alias table into the
// ast.AliasDecl list the alias table constructor expects, parsing each
// body's wire-format string.
func (m *Manifest) AliasDecls() ([]ast.AliasDecl, error) {
	names := sortedKeys(m.Aliases)
	decls := make([]ast.AliasDecl, 0, len(names))
	for _, name := range names {
		entry := m.Aliases[name]
		body, err := ParseTypeExpr(entry.Body)
		if err != nil {
			return nil, fmt.Errorf("alias %s: %w", name, err)
		}
		decls = append(decls, ast.AliasDecl{Name: name, Params: entry.Params, Body: body})
	}
	return decls, nil
}

// Schemes resolves every primitive's wire-format type string into a
// generalized Scheme, using aliasTable to expand any alias references
// the signatures mention. Each primitive is generalized with an empty
// monomorphic set, since manifest primitives are always declared
// fully polymorphic in whatever type variables their signature names.
func (m *Manifest) Schemes(freshSrc *fresh.Source, aliasTable *alias.Table) (map[string]*types.Scheme, error) {
	out := make(map[string]*types.Scheme, len(m.Primitives))
	for _, name := range sortedKeys(m.Primitives) {
		texpr, err := ParseTypeExpr(m.Primitives[name].Type)
		if err != nil {
			return nil, fmt.Errorf("primitive %s: %w", name, err)
		}
		w := &alias.Wildcards{}
		mono, err := aliasTable.ToMonotype(freshSrc, w, texpr)
		if err != nil {
			return nil, fmt.Errorf("primitive %s: %w", name, err)
		}
		out[name] = generalizeClosed(mono)
	}
	return out, nil
}

// generalizeClosed quantifies every free variable in t — manifest
// primitives carry no surrounding monomorphic context, unlike
// in-module let-bindings, so generalization here is unconditional.
func generalizeClosed(t types.Monotype) *types.Scheme {
	seen := map[string]bool{}
	var vars []types.QuantifiedVar
	var walk func(types.Monotype)
	walk = func(t types.Monotype) {
		switch t := t.(type) {
		case types.Var:
			if !seen[t.Name] {
				seen[t.Name] = true
				vars = append(vars, types.QuantifiedVar{Name: t.Name, Kind: t.VarKind})
			}
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
	return &types.Scheme{Vars: vars, Type: t}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
