// Package project holds the per-session state around the sheet models: the
// current project and category, lazy detail sheet creation, the shared
// debounce timer that flushes dirty sheets, and the wiring of the process
// stores into one context.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/sanchul-dev/sanchul/pkg/chunkstore"
	"github.com/sanchul-dev/sanchul/pkg/debug"
	"github.com/sanchul-dev/sanchul/pkg/model"
	"github.com/sanchul-dev/sanchul/pkg/sheet"
	"github.com/sanchul-dev/sanchul/pkg/watcher"
)

// sheetFile is the persisted form of one detail sheet.
type sheetFile struct {
	Category string            `json:"category"`
	Rows     []model.DetailRow `json:"rows"`
}

// State tracks the open project: its summary sheet, the detail sheets
// created so far, and the debounce timer that coalesces edit bursts into
// one save per interval. Sheet edits arrive on the UI loop; the debounced
// write runs off it but only ever sees row snapshots taken on the UI loop,
// and the mutex serializes the disk writes themselves.
type State struct {
	mu sync.Mutex

	root     string
	project  string
	category string

	summary *sheet.SummaryModel
	details map[string]*sheet.DetailModel
	undo    *sheet.UndoStack

	deb *watcher.Debouncer
}

// NewState opens project state rooted at the data directory. An empty
// debounce falls back to the default interval.
func NewState(root, projectName string, debounce time.Duration) *State {
	if debounce <= 0 {
		debounce = watcher.DefaultDebounceDuration
	}
	undo := sheet.NewUndoStack(sheet.GlobalUndoDepth)
	s := &State{
		root:    root,
		project: projectName,
		summary: sheet.NewSummaryModel(projectName, undo),
		details: make(map[string]*sheet.DetailModel),
		undo:    undo,
		deb:     watcher.NewDebouncer(debounce),
	}
	s.loadSummary()
	return s
}

// ProjectName returns the open project's name.
func (s *State) ProjectName() string { return s.project }

// Category returns the selected category.
func (s *State) Category() string { return s.category }

// SetCategory selects a category; its detail sheet materializes on first
// access through Detail.
func (s *State) SetCategory(category string) { s.category = category }

// Summary returns the summary sheet.
func (s *State) Summary() *sheet.SummaryModel { return s.summary }

// Undo returns the global undo stack shared by the summary and detail
// sheets.
func (s *State) Undo() *sheet.UndoStack { return s.undo }

// Detail returns the detail sheet for a category, creating and loading it
// on first access. Edits schedule a debounced flush.
func (s *State) Detail(category string) *sheet.DetailModel {
	if m, ok := s.details[category]; ok {
		return m
	}
	m := sheet.NewDetailModel(category, s.undo)
	if rows := s.loadSheet(category); len(rows) > 0 {
		m.ReplaceRows(rows)
		m.ClearDirty()
	}
	m.Subscribe(func(sheet.Change) { s.ScheduleFlush() })
	s.details[category] = m
	return m
}

// Loaded reports whether a category's detail sheet has been materialized.
func (s *State) Loaded(category string) bool {
	_, ok := s.details[category]
	return ok
}

// ScheduleFlush snapshots the dirty sheets on the caller's goroutine and
// arms the debounce timer with the write. Bursts of edits collapse into one
// write per interval; each edit re-arms with a fresh snapshot, so the one
// that fires carries the latest state. The timer goroutine only ever sees
// the snapshot, never the live models.
func (s *State) ScheduleFlush() { s.deb.Trigger(s.flushSnapshot()) }

type sheetSnapshot struct {
	category string
	rows     []model.DetailRow
}

// flushSnapshot copies every dirty sheet plus the summary and returns the
// closure that writes them. Model access happens here, on the caller's
// goroutine; the closure touches only the copies and the disk.
func (s *State) flushSnapshot() func() {
	var sheets []sheetSnapshot
	for category, m := range s.details {
		if !m.Dirty() {
			continue
		}
		sheets = append(sheets, sheetSnapshot{category: category, rows: m.Rows()})
		m.ClearDirty()
	}
	for category, m := range s.details {
		s.summary.SetHasDetail(category, hasContent(m.Rows()))
	}
	summary := s.summary.Rows()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, sn := range sheets {
			s.saveSheet(sn.category, sn.rows)
		}
		s.saveSummaryRows(summary)
	}
}

// FlushAll runs any pending debounced write, then persists the current state
// synchronously on the caller's goroutine. A sheet already snapshotted into
// the pending write is not dirty anymore, so Flush-then-snapshot never loses
// it.
func (s *State) FlushAll() {
	s.deb.Flush()
	s.flushSnapshot()()
}

// Close force-flushes everything.
func (s *State) Close() {
	s.FlushAll()
	s.deb.Cancel()
}

// projectDir is <root>/project_data/<sanitized_project>.
func (s *State) projectDir() string {
	name := s.project
	if name == "" {
		name = chunkstore.UnsavedSessionDir
	}
	return filepath.Join(s.root, "project_data", chunkstore.Sanitize(name))
}

func (s *State) sheetPath(category string) string {
	return filepath.Join(s.projectDir(), "sheets", chunkstore.Sanitize(category)+".json")
}

func (s *State) summaryPath() string {
	return filepath.Join(s.projectDir(), "summary.json")
}

// loadSheet reads a persisted detail sheet; missing or corrupt files read
// as empty.
func (s *State) loadSheet(category string) []model.DetailRow {
	data, err := os.ReadFile(s.sheetPath(category))
	if err != nil {
		return nil
	}
	var f sheetFile
	if err := json.Unmarshal(data, &f); err != nil {
		debug.Error("sheet %s: corrupt file: %v", category, err)
		return nil
	}
	return f.Rows
}

// saveSheet writes a detail sheet atomically; failures are logged, the
// previous file stays intact.
func (s *State) saveSheet(category string, rows []model.DetailRow) {
	f := sheetFile{Category: category, Rows: rows}
	if err := writeJSONAtomic(s.sheetPath(category), f); err != nil {
		debug.Error("sheet %s: save failed: %v", category, err)
	}
}

func (s *State) loadSummary() {
	data, err := os.ReadFile(s.summaryPath())
	if err != nil {
		return
	}
	var rows []model.SummaryRow
	if err := json.Unmarshal(data, &rows); err != nil {
		debug.Error("summary: corrupt file: %v", err)
		return
	}
	if len(rows) > 0 {
		s.summary.ReplaceRows(rows)
	}
}

func (s *State) saveSummaryRows(rows []model.SummaryRow) {
	if err := writeJSONAtomic(s.summaryPath(), rows); err != nil {
		debug.Error("summary: save failed: %v", err)
	}
}

// hasContent reports whether any row of a detail sheet carries user input.
func hasContent(rows []model.DetailRow) bool {
	for _, r := range rows {
		if r.Item != "" || r.Formula != "" {
			return true
		}
	}
	return false
}

// writeJSONAtomic marshals v and writes it temp-then-rename so readers
// never observe a partial file.
func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".sheet-*.json")
	if err != nil {
		return fmt.Errorf("temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
