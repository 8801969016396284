package manager

import (
	"fmt"
	"strings"
)

// LoadError describes a failure to read a policy file or directory.
type LoadError struct {
	FilePath string
	Message  string
	Cause    error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("load %s: %s: %v", e.FilePath, e.Message, e.Cause)
	}
	return fmt.Sprintf("load %s: %s", e.FilePath, e.Message)
}

func (e *LoadError) Unwrap() error { return e.Cause }

// RegistryError describes a registry operation failure.
type RegistryError struct {
	PolicyID  string
	Operation string
	Message   string
}

func (e *RegistryError) Error() string {
	if e.PolicyID != "" {
		return fmt.Sprintf("registry %s %q: %s", e.Operation, e.PolicyID, e.Message)
	}
	return fmt.Sprintf("registry %s: %s", e.Operation, e.Message)
}

// ErrorList aggregates per-file failures from a directory load so one
// broken file does not hide the others.
type ErrorList struct {
	Errors []error
}

// Add appends an error to the list.
func (el *ErrorList) Add(err error) {
	el.Errors = append(el.Errors, err)
}

// HasErrors returns true if the list contains any errors.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d policy file(s) failed:\n", len(el.Errors)))
	for _, err := range el.Errors {
		sb.WriteString("  - ")
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}
	return sb.String()
}
