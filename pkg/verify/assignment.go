package verify

import (
	"fmt"

	"veritor-hq/veritor/pkg/pcl/ast"
	"veritor-hq/veritor/pkg/pcl/compiler"
)

// BindRaw converts a loosely typed assignment (as decoded from YAML or
// JSON) into a typed Assignment using each variable's declared type.
//
// Conversion is strict: numbers for number variables, booleans for
// boolean variables, strings for string/enum/date variables. Enum
// domain membership is not checked here; Verify rejects out-of-domain
// members itself so the fault is always classified as error, never
// silently dropped at the boundary.
func BindRaw(cp *compiler.CompiledPolicy, raw map[string]any) (Assignment, error) {
	assignment := make(Assignment, len(raw))
	for name, rv := range raw {
		sym := cp.Symbol(name)
		if sym == nil {
			return nil, &TypeMismatchError{Variable: name, Reason: "variable is not declared by the policy"}
		}
		value, err := bindRawValue(sym, rv)
		if err != nil {
			return nil, err
		}
		assignment[name] = value
	}
	return assignment, nil
}

func bindRawValue(sym *compiler.Symbol, rv any) (ast.Value, error) {
	mismatch := func(format string, args ...any) (ast.Value, error) {
		return ast.Value{}, &TypeMismatchError{Variable: sym.Name, Reason: fmt.Sprintf(format, args...)}
	}

	switch sym.Type {
	case ast.VariableTypeString:
		s, ok := rv.(string)
		if !ok {
			return mismatch("expected a string, got %T", rv)
		}
		return ast.StringVal(s), nil

	case ast.VariableTypeNumber:
		switch n := rv.(type) {
		case float64:
			return ast.NumberVal(n), nil
		case int:
			return ast.NumberVal(float64(n)), nil
		case int64:
			return ast.NumberVal(float64(n)), nil
		default:
			return mismatch("expected a number, got %T", rv)
		}

	case ast.VariableTypeBoolean:
		b, ok := rv.(bool)
		if !ok {
			return mismatch("expected a boolean, got %T", rv)
		}
		return ast.BoolVal(b), nil

	case ast.VariableTypeEnum:
		s, ok := rv.(string)
		if !ok {
			return mismatch("expected an enum member string, got %T", rv)
		}
		return ast.EnumVal(s), nil

	case ast.VariableTypeDate:
		s, ok := rv.(string)
		if !ok {
			return mismatch("expected a YYYY-MM-DD date string, got %T", rv)
		}
		day, err := ast.ParseDate(s)
		if err != nil {
			return mismatch("%v", err)
		}
		return ast.DateVal(day), nil

	default:
		return mismatch("variable has unknown type %q", sym.Type)
	}
}

// validateAssignment checks every provided value against its variable's
// declared type and, for enums, its domain. Defaults have already been
// parsed at compile time, so post-default assignments pass the same
// check.
func validateAssignment(cp *compiler.CompiledPolicy, assignment Assignment) error {
	for _, name := range cp.SymbolOrder {
		value, ok := assignment[name]
		if !ok {
			continue
		}
		sym := cp.Symbols[name]
		if want := kindForType(sym.Type); value.Kind != want {
			return &TypeMismatchError{
				Variable: name,
				Reason:   fmt.Sprintf("declared %s but assigned a %s value", sym.Type, value.Kind),
			}
		}
		if sym.Type == ast.VariableTypeEnum && !sym.InDomain(value.Str) {
			return &TypeMismatchError{
				Variable: name,
				Reason:   fmt.Sprintf("%q is not a member of the declared possible values", value.Str),
			}
		}
	}
	for name := range assignment {
		if cp.Symbol(name) == nil {
			return &TypeMismatchError{Variable: name, Reason: "variable is not declared by the policy"}
		}
	}
	return nil
}

func kindForType(t ast.VariableType) ast.ValueKind {
	switch t {
	case ast.VariableTypeString:
		return ast.KindString
	case ast.VariableTypeNumber:
		return ast.KindNumber
	case ast.VariableTypeBoolean:
		return ast.KindBool
	case ast.VariableTypeEnum:
		return ast.KindEnum
	case ast.VariableTypeDate:
		return ast.KindDate
	default:
		return ast.ValueKind("")
	}
}
