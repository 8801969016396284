package compiler

import (
	"time"
)

// RulePredicate is one compiled rule: a formula tree tagged with the
// rule's id, conclusion, and priority.
type RulePredicate struct {
	ID          string
	Description string
	Conclusion  RuleConclusion
	Priority    int
	Formula     *Formula
}

// RuleConclusion mirrors ast.Conclusion at the compiled layer.
type RuleConclusion string

const (
	ConclusionValid   RuleConclusion = "valid"
	ConclusionInvalid RuleConclusion = "invalid"
)

// ConstraintPredicate is one compiled global constraint.
// A violated constraint behaves like an invalid-conclusion rule with
// maximum priority.
type ConstraintPredicate struct {
	ID          string
	Description string
	Formula     *Formula
}

// CompiledPolicy is the immutable result of a successful compilation:
// bound symbolic variables, one predicate per rule (pre-sorted by
// descending priority, declaration order as tie-break), one predicate per
// global constraint, and the automatically derived enum domain
// constraints.
//
// A CompiledPolicy is read-only after creation. Concurrent verification
// calls share it without locking; replacing it is the registry's job
// (publish-by-swap, never in-place mutation).
type CompiledPolicy struct {
	// PolicyID identifies the source policy.
	PolicyID string

	// PolicyVersion is the version string of the source definition.
	PolicyVersion string

	// CompilationID uniquely identifies this compilation (uuid).
	CompilationID string

	// CompiledAt is the compilation timestamp.
	CompiledAt time.Time

	// Symbols maps variable name to its bound symbolic variable.
	Symbols map[string]*Symbol

	// SymbolOrder lists variable names in declaration order.
	SymbolOrder []string

	// Rules holds the compiled rule predicates, sorted by descending
	// priority (stable within equal priority).
	Rules []*RulePredicate

	// Constraints holds the compiled global constraints in declaration
	// order.
	Constraints []*ConstraintPredicate

	// DomainConstraints holds the automatically conjoined enum domain
	// constraints, one per enum variable, in declaration order.
	DomainConstraints []*ConstraintPredicate
}

// Symbol returns the bound symbol for a variable name, or nil.
func (cp *CompiledPolicy) Symbol(name string) *Symbol {
	return cp.Symbols[name]
}

// OrderedSymbols returns the bound symbols in declaration order.
func (cp *CompiledPolicy) OrderedSymbols() []*Symbol {
	symbols := make([]*Symbol, 0, len(cp.SymbolOrder))
	for _, name := range cp.SymbolOrder {
		symbols = append(symbols, cp.Symbols[name])
	}
	return symbols
}

// MandatorySymbols returns the mandatory symbols in declaration order.
func (cp *CompiledPolicy) MandatorySymbols() []*Symbol {
	var mandatory []*Symbol
	for _, name := range cp.SymbolOrder {
		if sym := cp.Symbols[name]; sym.Mandatory {
			mandatory = append(mandatory, sym)
		}
	}
	return mandatory
}

// Rule returns the compiled rule predicate with the given id, or nil.
func (cp *CompiledPolicy) Rule(id string) *RulePredicate {
	for _, r := range cp.Rules {
		if r.ID == id {
			return r
		}
	}
	return nil
}
