package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// backends returns one factory per Backend implementation so every
// backend runs the same conformance tests.
func backends(t *testing.T) map[string]func(t *testing.T) Backend {
	return map[string]func(t *testing.T) Backend{
		"memory": func(t *testing.T) Backend {
			return NewMemoryBackend()
		},
		"sqlite": func(t *testing.T) Backend {
			backend, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "policies.db"))
			if err != nil {
				t.Fatalf("NewSQLiteBackend() error = %v", err)
			}
			return backend
		},
	}
}

func testRecord(id string) *PolicyRecord {
	return &PolicyRecord{
		ID:            id,
		Version:       "1.0.0",
		Source:        []byte("id: " + id + "\n"),
		SourceFile:    id + ".yaml",
		CompilationID: "comp-" + id,
		CompiledAt:    time.Now().UTC().Truncate(time.Second),
	}
}

func TestBackendSaveAndGet(t *testing.T) {
	for name, newBackend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			backend := newBackend(t)
			defer backend.Close()
			ctx := context.Background()

			if err := backend.Save(ctx, testRecord("leave-policy")); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			got, err := backend.Get(ctx, "leave-policy")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.ID != "leave-policy" || got.Version != "1.0.0" {
				t.Errorf("Get() = %+v", got)
			}
			if string(got.Source) != "id: leave-policy\n" {
				t.Errorf("Source = %q", got.Source)
			}
			if got.UpdatedAt.IsZero() {
				t.Error("UpdatedAt is zero, want set on save")
			}
		})
	}
}

func TestBackendGetMissing(t *testing.T) {
	for name, newBackend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			backend := newBackend(t)
			defer backend.Close()

			_, err := backend.Get(context.Background(), "nope")
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get() error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestBackendSaveOverwrites(t *testing.T) {
	for name, newBackend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			backend := newBackend(t)
			defer backend.Close()
			ctx := context.Background()

			if err := backend.Save(ctx, testRecord("p")); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			updated := testRecord("p")
			updated.Version = "2.0.0"
			updated.CompilationID = "comp-p-2"
			if err := backend.Save(ctx, updated); err != nil {
				t.Fatalf("Save() second error = %v", err)
			}

			got, err := backend.Get(ctx, "p")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.Version != "2.0.0" || got.CompilationID != "comp-p-2" {
				t.Errorf("Get() after overwrite = %+v", got)
			}
		})
	}
}

func TestBackendListOrderedByID(t *testing.T) {
	for name, newBackend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			backend := newBackend(t)
			defer backend.Close()
			ctx := context.Background()

			for _, id := range []string{"charlie", "alpha", "bravo"} {
				if err := backend.Save(ctx, testRecord(id)); err != nil {
					t.Fatalf("Save(%q) error = %v", id, err)
				}
			}

			records, err := backend.List(ctx)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			want := []string{"alpha", "bravo", "charlie"}
			if len(records) != len(want) {
				t.Fatalf("List() returned %d records, want %d", len(records), len(want))
			}
			for i, id := range want {
				if records[i].ID != id {
					t.Errorf("List()[%d].ID = %q, want %q", i, records[i].ID, id)
				}
			}
		})
	}
}

func TestBackendDelete(t *testing.T) {
	for name, newBackend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			backend := newBackend(t)
			defer backend.Close()
			ctx := context.Background()

			if err := backend.Save(ctx, testRecord("p")); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if err := backend.Delete(ctx, "p"); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if _, err := backend.Get(ctx, "p"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get() after delete error = %v, want ErrNotFound", err)
			}
			if err := backend.Delete(ctx, "p"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Delete() missing error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestSQLiteBackendPersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "policies.db")
	ctx := context.Background()

	backend, err := NewSQLiteBackend(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteBackend() error = %v", err)
	}
	if err := backend.Save(ctx, testRecord("durable")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := backend.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := NewSQLiteBackend(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteBackend() reopen error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(ctx, "durable")
	if err != nil {
		t.Fatalf("Get() after reopen error = %v", err)
	}
	if got.CompilationID != "comp-durable" {
		t.Errorf("CompilationID = %q", got.CompilationID)
	}
}

func TestSQLiteBackendRejectsEmptyPath(t *testing.T) {
	if _, err := NewSQLiteBackendWithConfig(SQLiteBackendConfig{}); err == nil {
		t.Fatal("NewSQLiteBackendWithConfig() with empty path expected error, got nil")
	}
}
