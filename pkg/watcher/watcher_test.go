package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCoalescesRapidTriggers(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var calls atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("expected 1 callback invocation, got %d", n)
	}
}

func TestDebouncerLastTriggerWins(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var got atomic.Int32
	d.Trigger(func() { got.Store(1) })
	d.Trigger(func() { got.Store(2) })

	time.Sleep(100 * time.Millisecond)
	if got.Load() != 2 {
		t.Errorf("expected the last scheduled callback to run, got %d", got.Load())
	}
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var called atomic.Bool
	d.Trigger(func() { called.Store(true) })
	d.Cancel()

	time.Sleep(100 * time.Millisecond)
	if called.Load() {
		t.Error("callback should not run after cancel")
	}
}

func TestDebouncerFlushRunsImmediately(t *testing.T) {
	d := NewDebouncer(time.Hour)

	var called atomic.Bool
	d.Trigger(func() { called.Store(true) })
	d.Flush()

	if !called.Load() {
		t.Fatal("flush did not run the pending callback")
	}

	// Flush with nothing pending is a no-op.
	called.Store(false)
	d.Flush()
	if called.Load() {
		t.Fatal("flush ran a callback twice")
	}
}

func TestWatcherDetectsFileChange(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "manual_mapping.json")
	if err := os.WriteFile(tmpFile, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	var changed atomic.Bool
	w, err := NewWatcher(tmpFile,
		WithDebounceDuration(50*time.Millisecond),
		WithOnChange(func() { changed.Store(true) }),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(tmpFile, []byte(`{"a":"b"}`), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for !changed.Load() {
		if time.Now().After(deadline) {
			t.Fatal("expected change to be detected")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestWatcherDetectsAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	tmpFile := filepath.Join(dir, "manual_mapping.json")
	if err := os.WriteFile(tmpFile, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	var changed atomic.Bool
	w, err := NewWatcher(tmpFile,
		WithDebounceDuration(50*time.Millisecond),
		WithOnChange(func() { changed.Store(true) }),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)

	// Replace-by-rename, the way the store itself writes.
	staging := filepath.Join(dir, ".staging.json")
	if err := os.WriteFile(staging, []byte(`{"a":"b"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(staging, tmpFile); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for !changed.Load() {
		if time.Now().After(deadline) {
			t.Fatal("expected rename to be detected")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestWatcherFileRemoved(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "manual_mapping.json")
	if err := os.WriteFile(tmpFile, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	errCh := make(chan error, 1)
	w, err := NewWatcher(tmpFile,
		WithDebounceDuration(10*time.Millisecond),
		WithOnError(func(err error) {
			select {
			case errCh <- err:
			default:
			}
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)
	if err := os.Remove(tmpFile); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-errCh:
		if err != ErrFileRemoved {
			t.Fatalf("expected ErrFileRemoved, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for removal notification")
	}
}

func TestWatcherStartStop(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "manual_mapping.json")
	if err := os.WriteFile(tmpFile, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(tmpFile)
	if err != nil {
		t.Fatal(err)
	}
	if w.IsStarted() {
		t.Error("watcher should not be started initially")
	}

	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	if !w.IsStarted() {
		t.Error("watcher should be started after Start()")
	}
	if err := w.Start(); err != ErrAlreadyStarted {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}

	w.Stop()
	if w.IsStarted() {
		t.Error("watcher should not be started after Stop()")
	}
	w.Stop() // double stop is safe
}

func TestWatcherPath(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "manual_mapping.json")
	if err := os.WriteFile(tmpFile, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(tmpFile)
	if err != nil {
		t.Fatal(err)
	}
	absPath, _ := filepath.Abs(tmpFile)
	if w.Path() != absPath {
		t.Errorf("expected path %s, got %s", absPath, w.Path())
	}
}
