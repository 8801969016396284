package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a policy id has no stored record.
var ErrNotFound = errors.New("policy not found")

// PolicyRecord is one stored policy definition with its latest
// compilation metadata.
type PolicyRecord struct {
	// ID is the policy id.
	ID string

	// Version is the definition's declared version string.
	Version string

	// Source is the raw YAML definition.
	Source []byte

	// SourceFile is the path the definition was loaded from, if any.
	SourceFile string

	// CompilationID identifies the most recent successful compilation.
	CompilationID string

	// CompiledAt is when that compilation happened.
	CompiledAt time.Time

	// UpdatedAt is when this record was last written.
	UpdatedAt time.Time
}

// Backend is the storage interface for policy definitions.
//
// Implementations must be safe for concurrent use. Save overwrites any
// existing record with the same id.
type Backend interface {
	// Save stores or replaces a policy record.
	Save(ctx context.Context, record *PolicyRecord) error

	// Get retrieves a policy record by id. Returns ErrNotFound if the
	// id has no record.
	Get(ctx context.Context, id string) (*PolicyRecord, error)

	// List returns all stored records ordered by id.
	List(ctx context.Context) ([]*PolicyRecord, error)

	// Delete removes a policy record. Returns ErrNotFound if the id has
	// no record.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}
