package compiler

import (
	"fmt"
	"strings"

	"veritor-hq/veritor/pkg/pcl/ast"
)

// Symbol is a symbolic variable: a named placeholder of a fixed type
// bound once per compiled policy, whose value is supplied only at
// verification time.
type Symbol struct {
	Name           string
	Type           ast.VariableType
	Description    string
	PossibleValues []string   // Enum domain; nil for other types
	Mandatory      bool       // Must have a value or default before evaluation
	Default        *ast.Value // Parsed default value; nil when unset
}

// InDomain returns true if the member is within the symbol's enum domain.
func (s *Symbol) InDomain(member string) bool {
	for _, pv := range s.PossibleValues {
		if pv == member {
			return true
		}
	}
	return false
}

// FormulaKind represents the kind of a formula node.
type FormulaKind string

const (
	FormulaKindAnd     FormulaKind = "and"
	FormulaKindOr      FormulaKind = "or"
	FormulaKindNot     FormulaKind = "not"
	FormulaKindCompare FormulaKind = "compare"
)

// Formula is a compiled boolean formula over symbolic variables.
// Logical nodes carry Operands; compare nodes carry Sym, Op, and a
// fully typed comparison Value. Formulas are immutable after compilation.
type Formula struct {
	Kind     FormulaKind
	Operands []*Formula   // and/or/not
	Sym      *Symbol      // compare
	Op       ast.Operator // compare
	Value    ast.Value    // compare: typed right-hand side
}

// And constructs a conjunction formula.
func And(operands ...*Formula) *Formula {
	return &Formula{Kind: FormulaKindAnd, Operands: operands}
}

// Or constructs a disjunction formula.
func Or(operands ...*Formula) *Formula {
	return &Formula{Kind: FormulaKindOr, Operands: operands}
}

// Not constructs a negation formula.
func Not(operand *Formula) *Formula {
	return &Formula{Kind: FormulaKindNot, Operands: []*Formula{operand}}
}

// Compare constructs a comparison formula.
func Compare(sym *Symbol, op ast.Operator, value ast.Value) *Formula {
	return &Formula{Kind: FormulaKindCompare, Sym: sym, Op: op, Value: value}
}

// Symbols returns the distinct symbols referenced by the formula,
// in first-reference order.
func (f *Formula) Symbols() []*Symbol {
	var symbols []*Symbol
	seen := make(map[string]bool)

	var walk func(node *Formula)
	walk = func(node *Formula) {
		if node == nil {
			return
		}
		if node.Kind == FormulaKindCompare && node.Sym != nil && !seen[node.Sym.Name] {
			seen[node.Sym.Name] = true
			symbols = append(symbols, node.Sym)
		}
		for _, op := range node.Operands {
			walk(op)
		}
	}
	walk(f)

	return symbols
}

// String renders the formula in a normalized prefix-free text form.
// The rendering is deterministic and used for logging and debugging only.
func (f *Formula) String() string {
	if f == nil {
		return "<nil>"
	}
	switch f.Kind {
	case FormulaKindCompare:
		return fmt.Sprintf("%s %s %s", f.Sym.Name, f.Op, f.Value)
	case FormulaKindNot:
		return fmt.Sprintf("NOT (%s)", f.Operands[0])
	case FormulaKindAnd, FormulaKindOr:
		joiner := " AND "
		if f.Kind == FormulaKindOr {
			joiner = " OR "
		}
		parts := make([]string, len(f.Operands))
		for i, op := range f.Operands {
			parts[i] = fmt.Sprintf("(%s)", op)
		}
		return strings.Join(parts, joiner)
	default:
		return "<invalid>"
	}
}
