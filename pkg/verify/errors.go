package verify

import "fmt"

// TypeMismatchError reports a runtime value that does not fit its
// variable's declared type or enum domain. It classifies the
// verification as error rather than invalid: a bad value is a system
// fault of the upstream extractor, not a policy violation.
type TypeMismatchError struct {
	Variable string
	Reason   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch for variable %q: %s", e.Variable, e.Reason)
}

// evalError reports an internal formula evaluation failure. It should
// not occur for well-formed compiled policies and well-typed
// assignments; when it does, the whole verification classifies as
// error with no partial results.
type evalError struct {
	SubjectID string
	Cause     error
}

func (e *evalError) Error() string {
	return fmt.Sprintf("evaluating %q: %v", e.SubjectID, e.Cause)
}

func (e *evalError) Unwrap() error { return e.Cause }
