package ast

import (
	"fmt"
	"strconv"
	"time"
)

// VariableType represents the declared type of a policy variable.
// PCL has a strong type system with no automatic coercion.
type VariableType string

const (
	VariableTypeString  VariableType = "string"
	VariableTypeNumber  VariableType = "number"
	VariableTypeBoolean VariableType = "boolean"
	VariableTypeEnum    VariableType = "enum"
	VariableTypeDate    VariableType = "date"
)

// IsValid returns true if the variable type is one of the declared types.
func (t VariableType) IsValid() bool {
	switch t {
	case VariableTypeString, VariableTypeNumber, VariableTypeBoolean, VariableTypeEnum, VariableTypeDate:
		return true
	default:
		return false
	}
}

// SupportsOrdering returns true if ordering operators (<, >, <=, >=)
// are valid for this type.
func (t VariableType) SupportsOrdering() bool {
	return t == VariableTypeNumber || t == VariableTypeDate
}

// ValueKind represents the runtime kind of a typed value.
type ValueKind string

const (
	KindString ValueKind = "string"
	KindNumber ValueKind = "number"
	KindBool   ValueKind = "bool"
	KindEnum   ValueKind = "enum"
	KindDate   ValueKind = "date"
)

// Value is a closed tagged variant for runtime variable values.
// Exactly one payload field is meaningful, selected by Kind.
// Values are compared only against values of the same kind; the compiler
// and the verification engine normalize everything at the boundary so no
// implicit coercion ever happens during evaluation.
type Value struct {
	Kind ValueKind
	Str  string  // KindString, KindEnum
	Num  float64 // KindNumber
	Bool bool    // KindBool
	Day  int     // KindDate: days since 1970-01-01 UTC
}

// StringVal constructs a string value.
func StringVal(s string) Value { return Value{Kind: KindString, Str: s} }

// NumberVal constructs a number value.
func NumberVal(f float64) Value { return Value{Kind: KindNumber, Num: f} }

// BoolVal constructs a boolean value.
func BoolVal(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// EnumVal constructs an enum member value.
func EnumVal(s string) Value { return Value{Kind: KindEnum, Str: s} }

// DateVal constructs a date value from a day ordinal
// (days since 1970-01-01 UTC).
func DateVal(day int) Value { return Value{Kind: KindDate, Day: day} }

// Equal reports whether two values are equal.
// Values of different kinds are never equal.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindString, KindEnum:
		return v.Str == o.Str
	case KindNumber:
		return v.Num == o.Num
	case KindBool:
		return v.Bool == o.Bool
	case KindDate:
		return v.Day == o.Day
	default:
		return false
	}
}

// Compare returns -1, 0, or +1 ordering v against o.
// It is only meaningful for number and date values; the compiler rejects
// ordering comparisons for all other types.
func (v Value) Compare(o Value) (int, error) {
	if v.Kind != o.Kind {
		return 0, fmt.Errorf("cannot order %s against %s", v.Kind, o.Kind)
	}
	switch v.Kind {
	case KindNumber:
		switch {
		case v.Num < o.Num:
			return -1, nil
		case v.Num > o.Num:
			return 1, nil
		default:
			return 0, nil
		}
	case KindDate:
		switch {
		case v.Day < o.Day:
			return -1, nil
		case v.Day > o.Day:
			return 1, nil
		default:
			return 0, nil
		}
	default:
		return 0, fmt.Errorf("type %s does not support ordering", v.Kind)
	}
}

// String returns a human-readable representation of the value.
func (v Value) String() string {
	switch v.Kind {
	case KindString:
		return strconv.Quote(v.Str)
	case KindEnum:
		return v.Str
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindDate:
		return FormatDate(v.Day)
	default:
		return "<invalid>"
	}
}

// dateLayout is the canonical wire format for date values.
const dateLayout = "2006-01-02"

// ParseDate parses an ISO-8601 date (YYYY-MM-DD) into a day ordinal
// (days since 1970-01-01 UTC).
func ParseDate(s string) (int, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return int(t.Unix() / 86400), nil
}

// FormatDate renders a day ordinal back into YYYY-MM-DD form.
func FormatDate(day int) string {
	return time.Unix(int64(day)*86400, 0).UTC().Format(dateLayout)
}
