package manager

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCollapsesBursts(t *testing.T) {
	debouncer := NewDebouncer(50 * time.Millisecond)
	defer debouncer.Stop()

	var fired atomic.Int32
	for i := 0; i < 10; i++ {
		debouncer.Trigger(func() { fired.Add(1) })
	}

	time.Sleep(200 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Errorf("callback fired %d times, want 1", got)
	}
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	debouncer := NewDebouncer(50 * time.Millisecond)

	var fired atomic.Int32
	debouncer.Trigger(func() { fired.Add(1) })
	debouncer.Stop()

	time.Sleep(150 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Errorf("callback fired %d times after Stop, want 0", got)
	}
}

func TestFileWatcherTriggersReload(t *testing.T) {
	dir := writePolicyDir(t, map[string]string{"leave.yaml": validPolicyYAML})

	watcher, err := NewFileWatcher(&FileWatcherConfig{
		Path:             dir,
		DebounceInterval: 30 * time.Millisecond,
	}, nil)
	if err != nil {
		t.Fatalf("NewFileWatcher() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	reloaded := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- watcher.Watch(ctx, func() error {
			select {
			case reloaded <- struct{}{}:
			default:
			}
			return nil
		})
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "leave.yaml"), []byte(validPolicyYAML), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	select {
	case <-reloaded:
	case <-ctx.Done():
		t.Fatal("reload callback never fired")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
}

func TestFileWatcherIgnoresOtherExtensions(t *testing.T) {
	dir := writePolicyDir(t, map[string]string{"leave.yaml": validPolicyYAML})

	watcher, err := NewFileWatcher(&FileWatcherConfig{
		Path:             dir,
		DebounceInterval: 30 * time.Millisecond,
	}, nil)
	if err != nil {
		t.Fatalf("NewFileWatcher() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	var reloads atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- watcher.Watch(ctx, func() error {
			reloads.Add(1)
			return nil
		})
	}()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	<-ctx.Done()
	<-done
	if got := reloads.Load(); got != 0 {
		t.Errorf("reload fired %d times for a .txt write, want 0", got)
	}
}
