package audit

import (
	"context"
	"errors"
	"strings"
	"time"

	"veritor-hq/veritor/pkg/verify"
)

// ErrClosed is returned when recording to a stopped recorder.
var ErrClosed = errors.New("audit recorder is closed")

// Record is one verification outcome as stored in the audit trail.
type Record struct {
	// ID is a unique record id (uuid).
	ID string

	// PolicyID and CompilationID identify the policy version verified
	// against.
	PolicyID      string
	CompilationID string

	// Classification is the terminal verification outcome.
	Classification string

	// ViolatedIDs lists violated rule/constraint ids in the order they
	// were reported.
	ViolatedIDs []string

	// MissingMandatory lists the variables a needs_clarification
	// outcome asked for.
	MissingMandatory []string

	// ErrorReason carries the fault detail for error outcomes.
	ErrorReason string

	// RecordedAt is when the record was created.
	RecordedAt time.Time
}

// newRecord builds an audit record from a verification result.
func newRecord(id string, result *verify.Result, at time.Time) *Record {
	violated := make([]string, 0, len(result.Violated))
	for _, v := range result.Violated {
		violated = append(violated, v.ID)
	}
	return &Record{
		ID:               id,
		PolicyID:         result.PolicyID,
		CompilationID:    result.CompilationID,
		Classification:   string(result.Classification),
		ViolatedIDs:      violated,
		MissingMandatory: append([]string(nil), result.MissingMandatory...),
		ErrorReason:      result.ErrorReason,
		RecordedAt:       at,
	}
}

// joinIDs and splitIDs are the wire encoding for id lists in storage.
func joinIDs(ids []string) string {
	return strings.Join(ids, ",")
}

func splitIDs(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// Storage persists audit records. Implementations must be safe for
// concurrent use.
type Storage interface {
	// Append stores one record.
	Append(ctx context.Context, record *Record) error

	// ListByPolicy returns the most recent records for a policy, newest
	// first, up to limit.
	ListByPolicy(ctx context.Context, policyID string, limit int) ([]*Record, error)

	// Count returns the total number of stored records.
	Count(ctx context.Context) (int64, error)

	// DeleteOlderThan removes records recorded before the cutoff and
	// returns how many were deleted.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases storage resources.
	Close() error
}
