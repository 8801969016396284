package parser

import (
	"testing"

	"veritor-hq/veritor/pkg/pcl/ast"
)

const leavePolicyYAML = `
id: leave-policy
name: Leave Policy
description: Annual leave approval rules
domain: hr
version: "1.2.0"

variables:
  - name: employee_type
    type: enum
    description: Employment category
    possible_values: [permanent, contractor, intern]
  - name: requested_days
    type: number
    description: Number of days requested
  - name: advance_notice_days
    type: number
    description: Days of advance notice given
    is_mandatory: false
    default_value: 0
  - name: is_manager
    type: boolean
    is_mandatory: false

rules:
  - id: notice-for-long-leave
    description: Long leave needs two weeks notice
    condition: requested_days > 5 AND advance_notice_days < 14
    conclusion: invalid
    priority: 10
  - id: contractor-cap
    description: Contractors may take at most 10 days
    condition: employee_type == "contractor" AND requested_days > 10
    conclusion: invalid
    priority: 20

constraints:
  - requested_days > 0
  - id: notice-not-negative
    expression: advance_notice_days >= 0
    description: Notice cannot be negative

examples:
  - name: valid short leave
    question: Can a permanent employee take 3 days off?
    variables:
      employee_type: permanent
      requested_days: 3
    expected_result: valid
`

func TestParsePolicy(t *testing.T) {
	policy, err := ParsePolicy([]byte(leavePolicyYAML), "leave-policy.yaml")
	if err != nil {
		t.Fatalf("ParsePolicy() error = %v", err)
	}

	if policy.ID != "leave-policy" {
		t.Errorf("ID = %q, want %q", policy.ID, "leave-policy")
	}
	if policy.Version != "1.2.0" {
		t.Errorf("Version = %q, want %q", policy.Version, "1.2.0")
	}
	if len(policy.Variables) != 4 {
		t.Fatalf("len(Variables) = %d, want 4", len(policy.Variables))
	}
	if len(policy.Rules) != 2 {
		t.Fatalf("len(Rules) = %d, want 2", len(policy.Rules))
	}
	if len(policy.Constraints) != 2 {
		t.Fatalf("len(Constraints) = %d, want 2", len(policy.Constraints))
	}
	if len(policy.Examples) != 1 {
		t.Fatalf("len(Examples) = %d, want 1", len(policy.Examples))
	}
}

func TestParsePolicyMandatoryDefaultsToTrue(t *testing.T) {
	policy, err := ParsePolicy([]byte(leavePolicyYAML), "leave-policy.yaml")
	if err != nil {
		t.Fatalf("ParsePolicy() error = %v", err)
	}

	tests := []struct {
		name          string
		wantMandatory bool
	}{
		{"employee_type", true},
		{"requested_days", true},
		{"advance_notice_days", false},
		{"is_manager", false},
	}
	for _, tt := range tests {
		v := policy.GetVariable(tt.name)
		if v == nil {
			t.Fatalf("variable %q not found", tt.name)
		}
		if v.Mandatory != tt.wantMandatory {
			t.Errorf("%s: Mandatory = %v, want %v", tt.name, v.Mandatory, tt.wantMandatory)
		}
	}
}

func TestParsePolicyDefaultValue(t *testing.T) {
	policy, err := ParsePolicy([]byte(leavePolicyYAML), "leave-policy.yaml")
	if err != nil {
		t.Fatalf("ParsePolicy() error = %v", err)
	}

	v := policy.GetVariable("advance_notice_days")
	if v.Default == nil {
		t.Fatal("advance_notice_days Default = nil, want set")
	}
	if *v.Default != "0" {
		t.Errorf("Default = %q, want %q", *v.Default, "0")
	}
	if m := policy.GetVariable("is_manager"); m.Default != nil {
		t.Errorf("is_manager Default = %q, want nil", *m.Default)
	}
}

func TestParsePolicyConstraintForms(t *testing.T) {
	policy, err := ParsePolicy([]byte(leavePolicyYAML), "leave-policy.yaml")
	if err != nil {
		t.Fatalf("ParsePolicy() error = %v", err)
	}

	short := policy.Constraints[0]
	if short.ID != "constraint-1" {
		t.Errorf("short-form constraint ID = %q, want %q", short.ID, "constraint-1")
	}
	if short.Expression != "requested_days > 0" {
		t.Errorf("short-form Expression = %q", short.Expression)
	}
	if short.Description != short.Expression {
		t.Errorf("short-form Description = %q, want the expression", short.Description)
	}

	long := policy.Constraints[1]
	if long.ID != "notice-not-negative" {
		t.Errorf("long-form constraint ID = %q, want %q", long.ID, "notice-not-negative")
	}
	if long.Description != "Notice cannot be negative" {
		t.Errorf("long-form Description = %q", long.Description)
	}
}

func TestParsePolicyIDFallsBackToName(t *testing.T) {
	policy, err := ParsePolicy([]byte("name: Unnamed Policy\n"), "p.yaml")
	if err != nil {
		t.Fatalf("ParsePolicy() error = %v", err)
	}
	if policy.ID != "Unnamed Policy" {
		t.Errorf("ID = %q, want the name", policy.ID)
	}
}

func TestParsePolicyRejectsMalformedYAML(t *testing.T) {
	if _, err := ParsePolicy([]byte("rules: [unclosed"), "bad.yaml"); err == nil {
		t.Fatal("ParsePolicy() with malformed YAML expected error, got nil")
	}
}

func TestParsePolicyEnumVariable(t *testing.T) {
	policy, err := ParsePolicy([]byte(leavePolicyYAML), "leave-policy.yaml")
	if err != nil {
		t.Fatalf("ParsePolicy() error = %v", err)
	}
	v := policy.GetVariable("employee_type")
	if v.Type != ast.VariableTypeEnum {
		t.Fatalf("Type = %q, want enum", v.Type)
	}
	want := []string{"permanent", "contractor", "intern"}
	if len(v.PossibleValues) != len(want) {
		t.Fatalf("len(PossibleValues) = %d, want %d", len(v.PossibleValues), len(want))
	}
	for i, member := range want {
		if v.PossibleValues[i] != member {
			t.Errorf("PossibleValues[%d] = %q, want %q", i, v.PossibleValues[i], member)
		}
	}
}
