package verify

import (
	"fmt"

	"veritor-hq/veritor/pkg/pcl/ast"
	"veritor-hq/veritor/pkg/pcl/compiler"
)

// tri is a three-valued truth value. Comparisons over variables with no
// value evaluate to triUnknown, which propagates through the logical
// connectives under Kleene semantics: AND is false if any operand is
// false, OR is true if any operand is true, NOT flips only definite
// values.
type tri int

const (
	triFalse tri = iota
	triTrue
	triUnknown
)

func (t tri) String() string {
	switch t {
	case triFalse:
		return "false"
	case triTrue:
		return "true"
	default:
		return "unknown"
	}
}

// evalFormula evaluates a compiled formula against an assignment.
// Every operand is evaluated; there is no short-circuiting, so an
// internal fault anywhere in the tree always surfaces.
func evalFormula(f *compiler.Formula, assignment Assignment) (tri, error) {
	if f == nil {
		return triUnknown, fmt.Errorf("nil formula node")
	}

	switch f.Kind {
	case compiler.FormulaKindCompare:
		return evalCompare(f, assignment)

	case compiler.FormulaKindNot:
		if len(f.Operands) != 1 {
			return triUnknown, fmt.Errorf("negation has %d operands", len(f.Operands))
		}
		inner, err := evalFormula(f.Operands[0], assignment)
		if err != nil {
			return triUnknown, err
		}
		switch inner {
		case triTrue:
			return triFalse, nil
		case triFalse:
			return triTrue, nil
		default:
			return triUnknown, nil
		}

	case compiler.FormulaKindAnd:
		result := triTrue
		for _, op := range f.Operands {
			v, err := evalFormula(op, assignment)
			if err != nil {
				return triUnknown, err
			}
			switch v {
			case triFalse:
				result = triFalse
			case triUnknown:
				if result == triTrue {
					result = triUnknown
				}
			}
		}
		return result, nil

	case compiler.FormulaKindOr:
		result := triFalse
		for _, op := range f.Operands {
			v, err := evalFormula(op, assignment)
			if err != nil {
				return triUnknown, err
			}
			switch v {
			case triTrue:
				result = triTrue
			case triUnknown:
				if result == triFalse {
					result = triUnknown
				}
			}
		}
		return result, nil

	default:
		return triUnknown, fmt.Errorf("unknown formula kind %q", f.Kind)
	}
}

// evalCompare evaluates one comparison. An unassigned variable yields
// unknown; the mandatory gate guarantees this can only happen for
// optional variables without a default.
func evalCompare(f *compiler.Formula, assignment Assignment) (tri, error) {
	value, ok := assignment[f.Sym.Name]
	if !ok {
		return triUnknown, nil
	}
	if value.Kind != f.Value.Kind {
		return triUnknown, fmt.Errorf("variable %q holds %s but is compared against %s",
			f.Sym.Name, value.Kind, f.Value.Kind)
	}

	switch f.Op {
	case ast.OperatorEqual:
		return fromBool(value.Equal(f.Value)), nil
	case ast.OperatorNotEqual:
		return fromBool(!value.Equal(f.Value)), nil
	}

	cmp, err := value.Compare(f.Value)
	if err != nil {
		return triUnknown, fmt.Errorf("variable %q: %w", f.Sym.Name, err)
	}
	switch f.Op {
	case ast.OperatorLessThan:
		return fromBool(cmp < 0), nil
	case ast.OperatorGreaterThan:
		return fromBool(cmp > 0), nil
	case ast.OperatorLessEqual:
		return fromBool(cmp <= 0), nil
	case ast.OperatorGreaterEqual:
		return fromBool(cmp >= 0), nil
	default:
		return triUnknown, fmt.Errorf("unknown operator %q", f.Op)
	}
}

func fromBool(b bool) tri {
	if b {
		return triTrue
	}
	return triFalse
}
