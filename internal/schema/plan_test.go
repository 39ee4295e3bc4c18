package schema

import (
	"testing"
)

func TestNewPlan(t *testing.T) {
	p := NewPlan("env.yaml schemes")

	if p.Schema != PlanV1 {
		t.Errorf("expected schema %s, got %s", PlanV1, p.Schema)
	}

	if p.Goal != "env.yaml schemes" {
		t.Errorf("expected goal 'env.yaml schemes', got '%s'", p.Goal)
	}

	if len(p.Types) != 0 || len(p.Functions) != 0 {
		t.Error("expected empty collections for new plan")
	}
}

func TestPlanJSON_RoundTrip(t *testing.T) {
	plan := NewPlan("env.yaml schemes")
	plan.AddType("Age", "alias", "number", "env.yaml")
	plan.AddFunction("+", "∀ε. (-> number number ε number)", "env.yaml", nil)

	// Marshal to JSON
	data, err := plan.ToJSON()
	if err != nil {
		t.Fatalf("failed to marshal plan: %v", err)
	}

	// Unmarshal back
	loaded, err := PlanFromJSON(data)
	if err != nil {
		t.Fatalf("failed to unmarshal plan: %v", err)
	}

	// Verify fields
	if loaded.Goal != plan.Goal {
		t.Errorf("goal mismatch: expected '%s', got '%s'", plan.Goal, loaded.Goal)
	}

	if len(loaded.Types) != 1 {
		t.Errorf("expected 1 type, got %d", len(loaded.Types))
	}

	if len(loaded.Functions) != 1 {
		t.Errorf("expected 1 function, got %d", len(loaded.Functions))
	}

	if loaded.Types[0].Name != "Age" || loaded.Types[0].Definition != "number" {
		t.Errorf("type round-trip mismatch: %+v", loaded.Types[0])
	}

	if loaded.Functions[0].Name != "+" {
		t.Errorf("function round-trip mismatch: %+v", loaded.Functions[0])
	}
}

func TestPlanFromJSON_RejectsWrongSchema(t *testing.T) {
	_, err := PlanFromJSON([]byte(`{"schema":"some.other/v1","goal":"x"}`))
	if err == nil {
		t.Error("expected an error for a mismatched schema version")
	}
}

func TestAddType_Accumulates(t *testing.T) {
	plan := NewPlan("g")
	plan.AddType("A", "alias", "number", "m")
	plan.AddType("B", "alias", "string", "m")

	if len(plan.Types) != 2 {
		t.Fatalf("expected 2 types, got %d", len(plan.Types))
	}
}

func TestAddFunction_Accumulates(t *testing.T) {
	plan := NewPlan("g")
	plan.AddFunction("f", "number", "m", nil)
	plan.AddFunction("g", "string", "m", []string{"console"})

	if len(plan.Functions) != 2 {
		t.Fatalf("expected 2 functions, got %d", len(plan.Functions))
	}
	if plan.Functions[1].Effects[0] != "console" {
		t.Errorf("expected effects to be preserved, got %+v", plan.Functions[1])
	}
}
