// Package schema provides the structured JSON report format the
// typecheck CLI emits in `--json` mode: a manifest-inspection report
// naming the resolved schemes and aliases of an external-environment
// manifest (spec.md §6, "External environment").
package schema

import (
	"encoding/json"
	"fmt"
)

// Plan is a manifest-inspection report: the resolved scheme of every
// primitive and the declared body of every alias a manifest declares,
// named "Plan" after the teacher's own structured-report type since
// this package is adapted from its code-generation plan rather than
// rewritten from scratch.
type Plan struct {
	Schema    string     `json:"schema"` // "ailang.manifest-plan/v1"
	Goal      string     `json:"goal"`   // human-readable report title
	Types     []TypePlan `json:"types"`
	Functions []FuncPlan `json:"functions"`
}

// TypePlan reports one declared type alias.
type TypePlan struct {
	Name       string `json:"name"`       // alias name (e.g., "Age")
	Kind       string `json:"kind"`       // "alias" (the only kind this report names)
	Definition string `json:"definition"` // the alias's body as declared, in wire-format notation
	Module     string `json:"module"`     // manifest path the alias was declared in
}

// FuncPlan reports one primitive's resolved scheme.
type FuncPlan struct {
	Name    string   `json:"name"`              // primitive name (e.g., "+")
	Type    string   `json:"type"`              // principal scheme, in types.PrintScheme's wire format
	Effects []string `json:"effects,omitempty"` // reserved for a future effect-row summary; unused today
	Module  string   `json:"module"`            // manifest path the primitive was declared in
}

// NewPlan creates an empty report with the current schema version.
func NewPlan(goal string) *Plan {
	return &Plan{
		Schema:    PlanV1,
		Goal:      goal,
		Types:     []TypePlan{},
		Functions: []FuncPlan{},
	}
}

// ToJSON converts the report to deterministic (sorted-key) JSON.
func (p *Plan) ToJSON() ([]byte, error) {
	data, err := MarshalDeterministic(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal plan: %w", err)
	}
	return FormatJSON(data)
}

// PlanFromJSON loads a report from JSON bytes, rejecting an
// unexpected schema version.
func PlanFromJSON(data []byte) (*Plan, error) {
	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
	}
	if p.Schema != PlanV1 {
		return nil, fmt.Errorf("unsupported plan schema: %s (expected %s)", p.Schema, PlanV1)
	}
	return &p, nil
}

// AddType records a resolved type alias.
func (p *Plan) AddType(name, kind, definition, module string) {
	p.Types = append(p.Types, TypePlan{
		Name:       name,
		Kind:       kind,
		Definition: definition,
		Module:     module,
	})
}

// AddFunction records a primitive's resolved scheme.
func (p *Plan) AddFunction(name, typeSignature, module string, effects []string) {
	p.Functions = append(p.Functions, FuncPlan{
		Name:    name,
		Type:    typeSignature,
		Effects: effects,
		Module:  module,
	})
}
