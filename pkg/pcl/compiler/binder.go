package compiler

import (
	"fmt"
	"strconv"

	"veritor-hq/veritor/pkg/pcl/ast"
	pclerrors "veritor-hq/veritor/pkg/pcl/errors"
)

// binder resolves AST identifiers against declared symbols and checks
// operator and literal compatibility. It accumulates every error it finds
// instead of stopping at the first one.
type binder struct {
	symbols map[string]*Symbol
	order   []string
	errors  *pclerrors.ErrorList
}

func newBinder() *binder {
	return &binder{
		symbols: make(map[string]*Symbol),
		errors:  pclerrors.NewErrorList(),
	}
}

// bindSymbols declares one symbolic variable per policy variable,
// validating each declaration. Invalid declarations are recorded and the
// variable is still bound where possible so later rule binding can report
// its own errors instead of cascading unknown-variable noise.
func (b *binder) bindSymbols(policy *ast.Policy) {
	for _, v := range policy.Variables {
		if _, exists := b.symbols[v.Name]; exists {
			b.errors.AddError(pclerrors.KindInvalidDeclaration, v.Name,
				fmt.Sprintf("duplicate variable declaration %q", v.Name))
			continue
		}

		if !v.Type.IsValid() {
			b.errors.AddError(pclerrors.KindInvalidDeclaration, v.Name,
				fmt.Sprintf("unknown variable type %q", v.Type))
			continue
		}

		if v.IsEnum() {
			if len(v.PossibleValues) == 0 {
				b.errors.AddError(pclerrors.KindInvalidDeclaration, v.Name,
					"enum variable must declare a non-empty possible_values set")
				continue
			}
		} else if len(v.PossibleValues) > 0 {
			b.errors.AddError(pclerrors.KindInvalidDeclaration, v.Name,
				fmt.Sprintf("possible_values is only valid for enum variables, not %s", v.Type))
			continue
		}

		sym := &Symbol{
			Name:           v.Name,
			Type:           v.Type,
			Description:    v.Description,
			PossibleValues: v.PossibleValues,
			Mandatory:      v.Mandatory,
		}

		if v.Default != nil {
			if v.Mandatory {
				b.errors.AddError(pclerrors.KindInvalidDeclaration, v.Name,
					"default_value is forbidden on mandatory variables")
				continue
			}
			value, err := parseRawValue(*v.Default, sym)
			if err != nil {
				b.errors.AddError(pclerrors.KindTypeMismatch, v.Name,
					fmt.Sprintf("default_value %q does not match declared type %s: %v", *v.Default, v.Type, err))
				continue
			}
			sym.Default = &value
		}

		b.symbols[v.Name] = sym
		b.order = append(b.order, v.Name)
	}
}

// bindExpr translates a parsed expression into a formula tree by direct
// structural mapping. On error it records the failure against subjectID
// and returns nil, but keeps descending so every broken comparison in the
// expression is reported.
func (b *binder) bindExpr(expr *ast.ExprNode, subjectID string) *Formula {
	if expr == nil {
		return nil
	}

	switch expr.Kind {
	case ast.ExprKindCompare:
		return b.bindComparison(expr, subjectID)

	case ast.ExprKindNot:
		child := b.bindExpr(expr.Children[0], subjectID)
		if child == nil {
			return nil
		}
		return Not(child)

	case ast.ExprKindAll, ast.ExprKindAny:
		operands := make([]*Formula, 0, len(expr.Children))
		failed := false
		for _, child := range expr.Children {
			operand := b.bindExpr(child, subjectID)
			if operand == nil {
				failed = true
				continue
			}
			operands = append(operands, operand)
		}
		if failed {
			return nil
		}
		if expr.Kind == ast.ExprKindAll {
			return And(operands...)
		}
		return Or(operands...)

	default:
		b.errors.AddError(pclerrors.KindParse, subjectID,
			fmt.Sprintf("unknown expression node kind %q", expr.Kind))
		return nil
	}
}

// bindComparison resolves a comparison's identifier, operator, and literal.
func (b *binder) bindComparison(expr *ast.ExprNode, subjectID string) *Formula {
	sym, ok := b.symbols[expr.Ident]
	if !ok {
		b.errors.Add(&pclerrors.Error{
			Kind:       pclerrors.KindUnknownVariable,
			SubjectID:  subjectID,
			Message:    fmt.Sprintf("condition references undeclared variable %q", expr.Ident),
			Pos:        expr.Pos,
			HasPos:     true,
			Suggestion: pclerrors.SuggestVariableName(expr.Ident, b.order),
		})
		return nil
	}

	if expr.Op.IsOrdering() && !sym.Type.SupportsOrdering() {
		b.errors.Add(&pclerrors.Error{
			Kind:       pclerrors.KindUnsupportedOperator,
			SubjectID:  subjectID,
			Message:    fmt.Sprintf("operator %q is not valid for %s variable %q", expr.Op, sym.Type, sym.Name),
			Pos:        expr.Pos,
			HasPos:     true,
			Suggestion: pclerrors.SuggestOperator(sym.Type),
		})
		return nil
	}

	value, err := b.bindLiteral(expr.Literal, sym, subjectID)
	if err != nil {
		return nil
	}

	return Compare(sym, expr.Op, value)
}

// bindLiteral checks a literal against the symbol's declared type and
// domain and produces the typed comparison value. The error return only
// signals failure; the detail has already been recorded.
func (b *binder) bindLiteral(lit *ast.Literal, sym *Symbol, subjectID string) (ast.Value, error) {
	mismatch := func(message, suggestion string) (ast.Value, error) {
		b.errors.Add(&pclerrors.Error{
			Kind:       pclerrors.KindTypeMismatch,
			SubjectID:  subjectID,
			Message:    message,
			Pos:        lit.Pos,
			HasPos:     true,
			Suggestion: suggestion,
		})
		return ast.Value{}, fmt.Errorf("type mismatch")
	}

	switch sym.Type {
	case ast.VariableTypeString:
		if lit.Kind != ast.LiteralKindString {
			return mismatch(
				fmt.Sprintf("string variable %q compared against non-string literal %q", sym.Name, lit.Raw),
				"quote the literal")
		}
		return ast.StringVal(lit.Str), nil

	case ast.VariableTypeNumber:
		if lit.Kind != ast.LiteralKindNumber {
			return mismatch(
				fmt.Sprintf("number variable %q compared against non-numeric literal %q", sym.Name, lit.Raw), "")
		}
		return ast.NumberVal(lit.Num), nil

	case ast.VariableTypeBoolean:
		if lit.Kind != ast.LiteralKindBool {
			return mismatch(
				fmt.Sprintf("boolean variable %q compared against non-boolean literal %q", sym.Name, lit.Raw),
				"use true or false")
		}
		return ast.BoolVal(lit.Bool), nil

	case ast.VariableTypeEnum:
		if lit.Kind != ast.LiteralKindString && lit.Kind != ast.LiteralKindBareword {
			return mismatch(
				fmt.Sprintf("enum variable %q compared against non-member literal %q", sym.Name, lit.Raw), "")
		}
		if !sym.InDomain(lit.Str) {
			return mismatch(
				fmt.Sprintf("literal %q is not a member of enum variable %q", lit.Str, sym.Name),
				pclerrors.SuggestEnumMember(lit.Str, sym.PossibleValues))
		}
		return ast.EnumVal(lit.Str), nil

	case ast.VariableTypeDate:
		if lit.Kind != ast.LiteralKindString {
			return mismatch(
				fmt.Sprintf("date variable %q compared against non-date literal %q", sym.Name, lit.Raw),
				"use a quoted YYYY-MM-DD date")
		}
		day, err := ast.ParseDate(lit.Str)
		if err != nil {
			return mismatch(
				fmt.Sprintf("date variable %q compared against invalid date %q", sym.Name, lit.Str),
				"use YYYY-MM-DD")
		}
		return ast.DateVal(day), nil

	default:
		return mismatch(fmt.Sprintf("variable %q has unbindable type %q", sym.Name, sym.Type), "")
	}
}

// parseRawValue parses a raw scalar (a default value from the policy
// definition) into a typed value for the symbol.
func parseRawValue(raw string, sym *Symbol) (ast.Value, error) {
	switch sym.Type {
	case ast.VariableTypeString:
		return ast.StringVal(raw), nil

	case ast.VariableTypeNumber:
		num, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return ast.Value{}, fmt.Errorf("not a number")
		}
		return ast.NumberVal(num), nil

	case ast.VariableTypeBoolean:
		switch raw {
		case "true":
			return ast.BoolVal(true), nil
		case "false":
			return ast.BoolVal(false), nil
		default:
			return ast.Value{}, fmt.Errorf("not a boolean")
		}

	case ast.VariableTypeEnum:
		if !sym.InDomain(raw) {
			return ast.Value{}, fmt.Errorf("not a member of the declared possible_values")
		}
		return ast.EnumVal(raw), nil

	case ast.VariableTypeDate:
		day, err := ast.ParseDate(raw)
		if err != nil {
			return ast.Value{}, err
		}
		return ast.DateVal(day), nil

	default:
		return ast.Value{}, fmt.Errorf("unknown type %q", sym.Type)
	}
}
