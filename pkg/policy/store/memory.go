package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryBackend implements Backend with an in-process map. State is
// lost on restart; use it for tests and deployments that reload
// policies from disk on startup anyway.
type MemoryBackend struct {
	mu      sync.RWMutex
	records map[string]*PolicyRecord
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		records: make(map[string]*PolicyRecord),
	}
}

// Save stores or replaces a policy record.
func (m *MemoryBackend) Save(_ context.Context, record *PolicyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *record
	clone.Source = append([]byte(nil), record.Source...)
	clone.UpdatedAt = time.Now().UTC()
	m.records[record.ID] = &clone
	return nil
}

// Get retrieves a policy record by id.
func (m *MemoryBackend) Get(_ context.Context, id string) (*PolicyRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *record
	clone.Source = append([]byte(nil), record.Source...)
	return &clone, nil
}

// List returns all stored records ordered by id.
func (m *MemoryBackend) List(_ context.Context) ([]*PolicyRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	records := make([]*PolicyRecord, 0, len(ids))
	for _, id := range ids {
		record := m.records[id]
		clone := *record
		clone.Source = append([]byte(nil), record.Source...)
		records = append(records, &clone)
	}
	return records, nil
}

// Delete removes a policy record.
func (m *MemoryBackend) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return ErrNotFound
	}
	delete(m.records, id)
	return nil
}

// Close is a no-op for the memory backend.
func (m *MemoryBackend) Close() error {
	return nil
}
