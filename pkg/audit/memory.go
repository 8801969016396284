package audit

import (
	"context"
	"sync"
	"time"
)

// MemoryStorage implements Storage in process memory. Records are lost
// on restart.
type MemoryStorage struct {
	mu      sync.RWMutex
	records []*Record
}

// NewMemoryStorage creates an empty in-memory audit store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Append stores one record.
func (m *MemoryStorage) Append(_ context.Context, record *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *record
	m.records = append(m.records, &clone)
	return nil
}

// ListByPolicy returns the most recent records for a policy, newest first.
func (m *MemoryStorage) ListByPolicy(_ context.Context, policyID string, limit int) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*Record
	for i := len(m.records) - 1; i >= 0 && (limit <= 0 || len(result) < limit); i-- {
		if m.records[i].PolicyID == policyID {
			clone := *m.records[i]
			result = append(result, &clone)
		}
	}
	return result, nil
}

// Count returns the total number of stored records.
func (m *MemoryStorage) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return int64(len(m.records)), nil
}

// DeleteOlderThan removes records recorded before the cutoff.
func (m *MemoryStorage) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.records[:0]
	var deleted int64
	for _, record := range m.records {
		if record.RecordedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, record)
	}
	m.records = kept
	return deleted, nil
}

// Close is a no-op for the memory store.
func (m *MemoryStorage) Close() error {
	return nil
}
