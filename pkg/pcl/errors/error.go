package errors

import (
	"fmt"
	"strings"

	"veritor-hq/veritor/pkg/pcl/ast"
)

// Kind categorizes a compilation error.
type Kind string

const (
	KindParse               Kind = "parse_error"
	KindUnknownVariable     Kind = "unknown_variable"
	KindUnsupportedOperator Kind = "unsupported_operator"
	KindTypeMismatch        Kind = "type_mismatch"
	KindInvalidDeclaration  Kind = "invalid_declaration"
)

// Error is a single compilation error with the offending rule or
// constraint id, a reason code, and an optional suggestion.
type Error struct {
	Kind       Kind         // Reason code
	SubjectID  string       // Offending rule/constraint/variable id
	Message    string       // Error message
	Pos        ast.Position // Position in the condition expression, if applicable
	HasPos     bool         // Whether Pos is meaningful
	Suggestion string       // Suggested fix (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s]", e.Kind))
	if e.SubjectID != "" {
		sb.WriteString(fmt.Sprintf(" %s:", e.SubjectID))
	}
	sb.WriteString(" ")
	sb.WriteString(e.Message)

	if e.HasPos {
		sb.WriteString(fmt.Sprintf(" (at %s)", e.Pos))
	}
	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("; %s", e.Suggestion))
	}

	return sb.String()
}

// ErrorList is an ordered collection of compilation errors.
// Order follows declaration order of the offending rules and constraints,
// so the list is stable across recompilations of the same definition.
type ErrorList struct {
	Errors []*Error
}

// NewErrorList creates a new empty error list.
func NewErrorList() *ErrorList {
	return &ErrorList{Errors: make([]*Error, 0)}
}

// Add appends an error to the list.
func (el *ErrorList) Add(err *Error) {
	el.Errors = append(el.Errors, err)
}

// AddError creates and appends a new error.
func (el *ErrorList) AddError(kind Kind, subjectID, message string) {
	el.Add(&Error{Kind: kind, SubjectID: subjectID, Message: message})
}

// AddErrorAt creates and appends a new error with an expression position.
func (el *ErrorList) AddErrorAt(kind Kind, subjectID, message string, pos ast.Position) {
	el.Add(&Error{Kind: kind, SubjectID: subjectID, Message: message, Pos: pos, HasPos: true})
}

// AddErrorWithSuggestion creates and appends a new error with a suggestion.
func (el *ErrorList) AddErrorWithSuggestion(kind Kind, subjectID, message, suggestion string) {
	el.Add(&Error{Kind: kind, SubjectID: subjectID, Message: message, Suggestion: suggestion})
}

// Merge appends all errors from another list.
func (el *ErrorList) Merge(other *ErrorList) {
	if other == nil {
		return
	}
	el.Errors = append(el.Errors, other.Errors...)
}

// HasErrors returns true if the list contains any errors.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Count returns the number of errors in the list.
func (el *ErrorList) Count() int {
	return len(el.Errors)
}

// ByKind returns all errors of the given kind.
func (el *ErrorList) ByKind(kind Kind) []*Error {
	var result []*Error
	for _, err := range el.Errors {
		if err.Kind == kind {
			result = append(result, err)
		}
	}
	return result
}

// BySubject returns all errors for the given rule/constraint id.
func (el *ErrorList) BySubject(subjectID string) []*Error {
	var result []*Error
	for _, err := range el.Errors {
		if err.SubjectID == subjectID {
			result = append(result, err)
		}
	}
	return result
}

// Error implements the error interface.
func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("policy compilation failed with %d error(s):\n", el.Count()))
	for _, err := range el.Errors {
		sb.WriteString("  - ")
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}
	return sb.String()
}

// ToError returns nil if the list is empty, otherwise the list itself.
func (el *ErrorList) ToError() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}
