// Package watcher provides debounced file-change notification for the manual
// mapping files, plus the Debouncer used to coalesce edit bursts into single
// persistence writes.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceDuration coalesces rapid successive events.
const DefaultDebounceDuration = 300 * time.Millisecond

// Common errors.
var (
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// Debouncer coalesces bursts of triggers into one callback per window.
// The zero value is unusable; construct with NewDebouncer.
type Debouncer struct {
	d       time.Duration
	mu      sync.Mutex
	timer   *time.Timer
	pending func()
}

// NewDebouncer returns a debouncer with the given window. A non-positive
// window falls back to DefaultDebounceDuration.
func NewDebouncer(d time.Duration) *Debouncer {
	if d <= 0 {
		d = DefaultDebounceDuration
	}
	return &Debouncer{d: d}
}

// Trigger schedules fn to run after the debounce window, replacing any
// previously scheduled callback.
func (db *Debouncer) Trigger(fn func()) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.pending = fn
	if db.timer != nil {
		db.timer.Stop()
	}
	db.timer = time.AfterFunc(db.d, func() {
		db.mu.Lock()
		fn := db.pending
		db.pending = nil
		db.mu.Unlock()
		if fn != nil {
			fn()
		}
	})
}

// Flush runs any pending callback immediately and cancels the timer.
// Used on popup close and program exit to force persistence.
func (db *Debouncer) Flush() {
	db.mu.Lock()
	fn := db.pending
	db.pending = nil
	if db.timer != nil {
		db.timer.Stop()
		db.timer = nil
	}
	db.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Cancel drops any pending callback without running it.
func (db *Debouncer) Cancel() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.pending = nil
	if db.timer != nil {
		db.timer.Stop()
		db.timer = nil
	}
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounceDuration sets the debounce duration.
func WithDebounceDuration(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounceDuration = d
	}
}

// WithOnChange sets the callback invoked when the file changes.
func WithOnChange(fn func()) WatcherOption {
	return func(w *Watcher) {
		w.onChange = fn
	}
}

// WithOnError sets the callback invoked on errors.
func WithOnError(fn func(error)) WatcherOption {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// Watcher monitors a single file for external modification using fsnotify.
// The containing directory is watched so atomic replace-by-rename writers are
// still observed.
type Watcher struct {
	path             string
	debounceDuration time.Duration
	onChange         func()
	onError          func(error)

	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer

	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	mu      sync.RWMutex
}

// NewWatcher creates a new file watcher for the given path.
func NewWatcher(path string, opts ...WatcherOption) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:             absPath,
		debounceDuration: DefaultDebounceDuration,
		onChange:         func() {},
		onError:          func(error) {},
	}

	for _, opt := range opts {
		opt(w)
	}

	w.debouncer = NewDebouncer(w.debounceDuration)
	return w, nil
}

// Start begins watching the file for changes.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}

	if _, err := os.Stat(w.path); err != nil && os.IsPermission(err) {
		return ErrPermission
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory containing the file (more reliable for atomic writes)
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return err
	}

	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.fsWatcher = fsw
	w.started = true
	go w.loop()
	return nil
}

// Stop stops watching the file.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}
	w.cancel()
	if w.fsWatcher != nil {
		w.fsWatcher.Close()
		w.fsWatcher = nil
	}
	w.debouncer.Cancel()
	w.started = false
}

// IsStarted returns true if the watcher is running.
func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.started
}

// Path returns the watched file path.
func (w *Watcher) Path() string { return w.path }

func (w *Watcher) loop() {
	targetFile := filepath.Base(w.path)

	w.mu.RLock()
	if w.fsWatcher == nil {
		w.mu.RUnlock()
		return
	}
	events := w.fsWatcher.Events
	errs := w.fsWatcher.Errors
	w.mu.RUnlock()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != targetFile {
				continue
			}
			switch {
			case event.Op&fsnotify.Remove != 0:
				w.onError(ErrFileRemoved)
			case event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
				w.debouncer.Trigger(w.onChange)
			}

		case err, ok := <-errs:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}
