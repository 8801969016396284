package ast

// Conclusion is the outcome a rule asserts when its condition holds.
type Conclusion string

const (
	ConclusionValid   Conclusion = "valid"
	ConclusionInvalid Conclusion = "invalid"
)

// IsValid returns true if the conclusion is one of the declared conclusions.
func (c Conclusion) IsValid() bool {
	return c == ConclusionValid || c == ConclusionInvalid
}

// Policy is the structured policy definition handed to the compiler.
// Upstream collaborators (document ingestion, LLM authoring) produce this
// shape; the compiler validates only the structured fields, never prose.
type Policy struct {
	// Metadata
	ID          string // Unique policy identifier
	Name        string // Human-readable name
	Description string // Human-readable description
	Domain      string // Policy domain (e.g., "hr", "finance")
	Version     string // Policy version

	// Content
	Variables   []*Variable   // Declared variables
	Rules       []*Rule       // Policy rules
	Constraints []*Constraint // Global constraints
	Examples    []*Example    // Advisory examples, usable as regression fixtures

	// Source tracking
	SourceFile string // Path to the definition file, if loaded from disk
}

// Variable is a declared policy variable.
type Variable struct {
	Name           string       // Unique within the policy
	Type           VariableType // string, number, boolean, enum, date
	Description    string       // Used to derive clarification prompts
	PossibleValues []string     // Required iff Type is enum; finite ordered set
	Mandatory      bool         // Must be present (or defaulted) before rule evaluation
	Default        *string      // Raw default value; nil when unset, forbidden when Mandatory
}

// IsEnum returns true if the variable is enum-typed.
func (v *Variable) IsEnum() bool {
	return v.Type == VariableTypeEnum
}

// InDomain returns true if the given member is one of the variable's
// possible values. Only meaningful for enum variables.
func (v *Variable) InDomain(member string) bool {
	for _, pv := range v.PossibleValues {
		if pv == member {
			return true
		}
	}
	return false
}

// Rule is a single policy rule.
type Rule struct {
	ID          string     // Unique within the policy
	Description string     // Explanation text, surfaced on violation
	Condition   string     // PCL condition expression
	Conclusion  Conclusion // valid or invalid
	Priority    int        // Higher evaluates and reports first
}

// Constraint is a global constraint that must hold under every assignment.
// A violated constraint behaves like an invalid-conclusion rule with
// maximum priority.
type Constraint struct {
	ID          string // Unique within the policy; synthesized when absent
	Description string // Explanation text, surfaced on violation
	Expression  string // PCL condition expression
}

// Example is an advisory scenario attached to a policy.
// Examples are not consumed at verification time, but they are usable as
// regression fixtures against the compiled policy.
type Example struct {
	Name           string         // Short scenario name
	Question       string         // Original natural-language question, if any
	Variables      map[string]any // Raw variable assignment
	ExpectedResult string         // Expected classification
	Explanation    string         // Why the expectation holds
}

// GetVariable returns the variable with the given name, or nil if not found.
func (p *Policy) GetVariable(name string) *Variable {
	for _, v := range p.Variables {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// HasVariable returns true if the policy declares a variable with the given name.
func (p *Policy) HasVariable(name string) bool {
	return p.GetVariable(name) != nil
}

// GetRule returns the rule with the given id, or nil if not found.
func (p *Policy) GetRule(id string) *Rule {
	for _, r := range p.Rules {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// VariableNames returns the declared variable names in declaration order.
func (p *Policy) VariableNames() []string {
	names := make([]string, 0, len(p.Variables))
	for _, v := range p.Variables {
		names = append(names, v.Name)
	}
	return names
}

// MandatoryVariables returns the mandatory variables in declaration order.
func (p *Policy) MandatoryVariables() []*Variable {
	var mandatory []*Variable
	for _, v := range p.Variables {
		if v.Mandatory {
			mandatory = append(mandatory, v)
		}
	}
	return mandatory
}
