package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"veritor-hq/veritor/pkg/verify"
)

func storages(t *testing.T) map[string]func(t *testing.T) Storage {
	return map[string]func(t *testing.T) Storage{
		"memory": func(t *testing.T) Storage {
			return NewMemoryStorage()
		},
		"sqlite": func(t *testing.T) Storage {
			s, err := NewSQLiteStorage(&SQLiteConfig{
				Path: filepath.Join(t.TempDir(), "audit.db"),
			})
			if err != nil {
				t.Fatalf("NewSQLiteStorage() error = %v", err)
			}
			return s
		},
	}
}

func sampleRecord(id, policyID string, at time.Time) *Record {
	return &Record{
		ID:             id,
		PolicyID:       policyID,
		CompilationID:  "comp-1",
		Classification: "invalid",
		ViolatedIDs:    []string{"rule-a", "rule-b"},
		RecordedAt:     at,
	}
}

func TestStorageAppendAndList(t *testing.T) {
	for name, newStorage := range storages(t) {
		t.Run(name, func(t *testing.T) {
			storage := newStorage(t)
			defer storage.Close()
			ctx := context.Background()

			base := time.Now().UTC()
			for i, id := range []string{"r1", "r2", "r3"} {
				record := sampleRecord(id, "leave-policy", base.Add(time.Duration(i)*time.Second))
				if err := storage.Append(ctx, record); err != nil {
					t.Fatalf("Append(%q) error = %v", id, err)
				}
			}
			if err := storage.Append(ctx, sampleRecord("other", "other-policy", base)); err != nil {
				t.Fatalf("Append(other) error = %v", err)
			}

			records, err := storage.ListByPolicy(ctx, "leave-policy", 10)
			if err != nil {
				t.Fatalf("ListByPolicy() error = %v", err)
			}
			if len(records) != 3 {
				t.Fatalf("len(records) = %d, want 3", len(records))
			}
			// Newest first.
			if records[0].ID != "r3" || records[2].ID != "r1" {
				t.Errorf("order = [%s %s %s], want newest first", records[0].ID, records[1].ID, records[2].ID)
			}
			if len(records[0].ViolatedIDs) != 2 || records[0].ViolatedIDs[0] != "rule-a" {
				t.Errorf("ViolatedIDs = %v", records[0].ViolatedIDs)
			}

			count, err := storage.Count(ctx)
			if err != nil {
				t.Fatalf("Count() error = %v", err)
			}
			if count != 4 {
				t.Errorf("Count() = %d, want 4", count)
			}
		})
	}
}

func TestStorageListLimit(t *testing.T) {
	for name, newStorage := range storages(t) {
		t.Run(name, func(t *testing.T) {
			storage := newStorage(t)
			defer storage.Close()
			ctx := context.Background()

			base := time.Now().UTC()
			for i := 0; i < 5; i++ {
				record := sampleRecord("", "p", base.Add(time.Duration(i)*time.Second))
				record.ID = string(rune('a' + i))
				if err := storage.Append(ctx, record); err != nil {
					t.Fatalf("Append() error = %v", err)
				}
			}

			records, err := storage.ListByPolicy(ctx, "p", 2)
			if err != nil {
				t.Fatalf("ListByPolicy() error = %v", err)
			}
			if len(records) != 2 {
				t.Errorf("len(records) = %d, want 2", len(records))
			}
		})
	}
}

func TestStorageDeleteOlderThan(t *testing.T) {
	for name, newStorage := range storages(t) {
		t.Run(name, func(t *testing.T) {
			storage := newStorage(t)
			defer storage.Close()
			ctx := context.Background()

			now := time.Now().UTC()
			old := sampleRecord("old", "p", now.Add(-48*time.Hour))
			recent := sampleRecord("recent", "p", now)
			if err := storage.Append(ctx, old); err != nil {
				t.Fatalf("Append(old) error = %v", err)
			}
			if err := storage.Append(ctx, recent); err != nil {
				t.Fatalf("Append(recent) error = %v", err)
			}

			deleted, err := storage.DeleteOlderThan(ctx, now.Add(-24*time.Hour))
			if err != nil {
				t.Fatalf("DeleteOlderThan() error = %v", err)
			}
			if deleted != 1 {
				t.Errorf("deleted = %d, want 1", deleted)
			}

			count, _ := storage.Count(ctx)
			if count != 1 {
				t.Errorf("Count() = %d, want 1", count)
			}
		})
	}
}

func TestRecorderWritesAsync(t *testing.T) {
	storage := NewMemoryStorage()
	recorder := NewRecorder(storage, nil)

	result := &verify.Result{
		Classification: verify.ClassificationInvalid,
		PolicyID:       "leave-policy",
		CompilationID:  "comp-1",
		Violated: []verify.ViolatedRule{
			{ID: "contractor-cap", Priority: 20},
		},
	}
	recorder.RecordVerification(context.Background(), result)

	if err := recorder.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	records, err := storage.ListByPolicy(context.Background(), "leave-policy", 10)
	if err != nil {
		t.Fatalf("ListByPolicy() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	record := records[0]
	if record.ID == "" {
		t.Error("record ID is empty, want a generated uuid")
	}
	if record.Classification != "invalid" {
		t.Errorf("Classification = %q", record.Classification)
	}
	if len(record.ViolatedIDs) != 1 || record.ViolatedIDs[0] != "contractor-cap" {
		t.Errorf("ViolatedIDs = %v", record.ViolatedIDs)
	}
}

func TestRecorderDropsWhenBufferFull(t *testing.T) {
	// blockingStorage never completes, so the single-slot buffer fills.
	storage := &blockingStorage{release: make(chan struct{})}
	recorder := NewRecorder(storage, &RecorderConfig{BufferSize: 1, FlushTimeout: 100 * time.Millisecond})
	defer func() {
		close(storage.release)
		recorder.Stop()
	}()

	result := &verify.Result{Classification: verify.ClassificationValid, PolicyID: "p"}
	for i := 0; i < 5; i++ {
		recorder.RecordVerification(context.Background(), result)
	}

	if recorder.Dropped() == 0 {
		t.Error("Dropped() = 0, want drops with a full buffer")
	}
}

func TestRecorderIgnoresAfterStop(t *testing.T) {
	storage := NewMemoryStorage()
	recorder := NewRecorder(storage, nil)
	if err := recorder.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	recorder.RecordVerification(context.Background(), &verify.Result{PolicyID: "p"})

	count, _ := storage.Count(context.Background())
	if count != 0 {
		t.Errorf("Count() = %d, want 0 after stop", count)
	}
}

type blockingStorage struct {
	MemoryStorage
	release chan struct{}
}

func (b *blockingStorage) Append(ctx context.Context, record *Record) error {
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return nil
}

func TestPrunerRespectsRetention(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()

	now := time.Now().UTC()
	storage.Append(ctx, sampleRecord("old", "p", now.AddDate(0, 0, -40)))
	storage.Append(ctx, sampleRecord("recent", "p", now))

	pruner := NewPruner(storage, &RetentionConfig{RetentionDays: 30})
	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
}

func TestPrunerDisabledWithoutRetention(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()
	storage.Append(ctx, sampleRecord("old", "p", time.Now().UTC().AddDate(0, 0, -400)))

	pruner := NewPruner(storage, nil)
	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 0 {
		t.Errorf("deleted = %d, want 0 with retention disabled", deleted)
	}
	count, _ := storage.Count(ctx)
	if count != 1 {
		t.Errorf("Count() = %d, want record kept", count)
	}
}

func TestSchedulerNoScheduleIsNoop(t *testing.T) {
	pruner := NewPruner(NewMemoryStorage(), &RetentionConfig{RetentionDays: 30})
	scheduler := NewScheduler(pruner)

	if err := scheduler.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if scheduler.IsRunning() {
		t.Error("IsRunning() = true without a schedule")
	}
}

func TestSchedulerRejectsBadCron(t *testing.T) {
	pruner := NewPruner(NewMemoryStorage(), &RetentionConfig{
		RetentionDays: 30,
		PruneSchedule: "not a cron line",
	})
	if err := NewScheduler(pruner).Start(context.Background()); err == nil {
		t.Fatal("Start() with invalid cron expected error, got nil")
	}
}

func TestSchedulerStartStop(t *testing.T) {
	pruner := NewPruner(NewMemoryStorage(), &RetentionConfig{
		RetentionDays: 30,
		PruneSchedule: "0 3 * * *",
	})
	scheduler := NewScheduler(pruner)

	ctx, cancel := context.WithCancel(context.Background())
	if err := scheduler.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !scheduler.IsRunning() {
		t.Error("IsRunning() = false after Start")
	}

	cancel()
	deadline := time.Now().Add(time.Second)
	for scheduler.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if scheduler.IsRunning() {
		t.Error("IsRunning() = true after context cancellation")
	}
}
