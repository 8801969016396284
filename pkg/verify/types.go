package verify

import (
	"veritor-hq/veritor/pkg/pcl/ast"
)

// Classification is the terminal outcome of a verification.
type Classification string

const (
	// ClassificationValid means no invalid-conclusion rule and no global
	// constraint was violated.
	ClassificationValid Classification = "valid"

	// ClassificationInvalid means at least one global constraint or
	// invalid-conclusion rule was violated.
	ClassificationInvalid Classification = "invalid"

	// ClassificationNeedsClarification means mandatory variables are
	// missing; this is insufficient input, not a policy violation.
	ClassificationNeedsClarification Classification = "needs_clarification"

	// ClassificationError means a system fault: a bad runtime value or an
	// internal evaluation failure. Partial results are never reported.
	ClassificationError Classification = "error"
)

// State identifies a step of the verification state machine.
type State string

const (
	StateReceived               State = "received"
	StateCheckMandatory         State = "check_mandatory"
	StateApplyDefaults          State = "apply_defaults"
	StateCheckGlobalConstraints State = "check_global_constraints"
	StateEvaluateRules          State = "evaluate_rules"
)

// Assignment maps variable names to typed values. Upstream extractors
// hand off only fully typed values; BindRaw converts loosely typed input
// at the boundary.
type Assignment map[string]ast.Value

// Clone returns a shallow copy of the assignment.
func (a Assignment) Clone() Assignment {
	clone := make(Assignment, len(a))
	for name, value := range a {
		clone[name] = value
	}
	return clone
}

// ViolatedRule names one violated rule or global constraint.
type ViolatedRule struct {
	ID          string // Rule or constraint id
	Description string // Explanation text from the definition
	Priority    int    // Rule priority; constraints outrank all rules
	Constraint  bool   // True when this is a global constraint
}

// Result is the outcome of a verification call.
// All fields are value types; rendering (Explanation, Suggestions) is
// derived from the other fields and never alters the classification.
type Result struct {
	// Classification is the terminal outcome.
	Classification Classification

	// Violated lists violated rules/constraints ordered by descending
	// priority (declaration order within equal priority). Empty unless
	// Classification is invalid.
	Violated []ViolatedRule

	// MissingMandatory lists mandatory variables that had neither a
	// value nor a default, in declaration order. Empty unless
	// Classification is needs_clarification.
	MissingMandatory []string

	// Explanation is the deterministic human-readable rendering.
	Explanation string

	// Suggestions holds one actionable prompt per missing variable or
	// violated rule.
	Suggestions []string

	// ErrorReason carries the fault detail when Classification is error.
	ErrorReason string

	// PolicyID and CompilationID identify what was verified against.
	PolicyID      string
	CompilationID string

	// Trace records the states traversed, for observability.
	Trace []State
}
