// Package chunkstore persists sub-detail sheets as per-item JSON chunk files
// under <root>/data/unit_price_chunks/<project>/<item>.json. Writes are
// atomic (temp-then-rename) so a failed save leaves the previous chunk
// intact; loads degrade to an empty sheet on any failure. Filesystem errors
// never propagate to callers.
package chunkstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/sanchul-dev/sanchul/pkg/debug"
	"github.com/sanchul-dev/sanchul/pkg/metrics"
	"github.com/sanchul-dev/sanchul/pkg/model"
)

const (
	// ChunkDir is the chunk directory relative to the data root.
	ChunkDir = "data/unit_price_chunks"
	// UnsavedSessionDir is the project directory used when no project is
	// active. It is purged on every application start.
	UnsavedSessionDir = "_unsaved_session_"
	// PieceExt is the extension for saved selection pieces.
	PieceExt = ".piece"
)

// Store is a chunk store rooted at a data directory.
type Store struct {
	root string
}

// New creates a store rooted at root. The directory tree is created lazily
// on first save.
func New(root string) *Store {
	return &Store{root: root}
}

// Root returns the store's data root.
func (s *Store) Root() string { return s.root }

// Sanitize replaces every character that is unsafe in a file name with '_'.
// Applied to both project and item names before they become path segments.
func Sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\\', '/', '*', '?', ':', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}

// ChunkPath returns the chunk file path for (project, item). An empty project
// maps to the unsaved-session directory.
func (s *Store) ChunkPath(project, item string) string {
	if strings.TrimSpace(project) == "" {
		project = UnsavedSessionDir
	}
	return filepath.Join(s.root, ChunkDir, Sanitize(project), Sanitize(item)+".json")
}

// Load returns the persisted rows for (project, item), with markers left for
// the caller to reclassify. Missing files and corrupt JSON both yield an
// empty slice; corruption is logged and will be overwritten by the next save.
func (s *Store) Load(project, item string) []model.SubDetailRow {
	defer metrics.Timer(metrics.ChunkLoad)()

	path := s.ChunkPath(project, item)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			debug.Error("reading chunk %s: %v", path, err)
		}
		metrics.ChunkCache.Miss()
		return []model.SubDetailRow{}
	}
	var rows []model.SubDetailRow
	if err := json.Unmarshal(data, &rows); err != nil {
		debug.Error("corrupt chunk %s: %v", path, err)
		metrics.ChunkCache.Miss()
		return []model.SubDetailRow{}
	}
	metrics.ChunkCache.Hit()
	return rows
}

// Save persists rows for (project, item). When rows is empty and a chunk
// exists, the chunk is removed instead: an emptied sheet should not leave a
// stale file behind. Failures are logged, never raised.
func (s *Store) Save(project, item string, rows []model.SubDetailRow) {
	defer metrics.Timer(metrics.ChunkSave)()

	path := s.ChunkPath(project, item)

	if allBlank(rows) {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			debug.Error("removing empty chunk %s: %v", path, err)
		}
		return
	}

	if err := writeJSONAtomic(path, rows); err != nil {
		debug.Error("saving chunk %s: %v", path, err)
	}
}

// Rekey moves the chunk for (project, oldItem) to newItem. Used when the
// parent row's item text changes while its sub-detail popup is open: the
// current rows are re-saved under the new key and the old chunk removed.
func (s *Store) Rekey(project, oldItem, newItem string, rows []model.SubDetailRow) {
	if oldItem == newItem {
		return
	}
	s.Save(project, newItem, rows)
	old := s.ChunkPath(project, oldItem)
	if err := os.Remove(old); err != nil && !os.IsNotExist(err) {
		debug.Error("removing rekeyed chunk %s: %v", old, err)
	}
}

// PurgeUnsavedSession deletes and recreates the unsaved-session project
// directory. Called once on application start.
func (s *Store) PurgeUnsavedSession() {
	dir := filepath.Join(s.root, ChunkDir, UnsavedSessionDir)
	if err := os.RemoveAll(dir); err != nil {
		debug.Error("purging unsaved session %s: %v", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		debug.Error("recreating unsaved session %s: %v", dir, err)
	}
}

// SavePiece writes a row selection to a piece file. The path gains the
// .piece extension when missing.
func (s *Store) SavePiece(path string, rows []model.SubDetailRow) error {
	if !strings.HasSuffix(path, PieceExt) {
		path += PieceExt
	}
	if err := writeJSONAtomic(path, rows); err != nil {
		debug.Error("saving piece %s: %v", path, err)
		return err
	}
	return nil
}

// LoadPiece reads a previously saved piece file.
func (s *Store) LoadPiece(path string) ([]model.SubDetailRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading piece: %w", err)
	}
	var rows []model.SubDetailRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing piece: %w", err)
	}
	return rows, nil
}

// allBlank reports whether rows has no user content at all.
func allBlank(rows []model.SubDetailRow) bool {
	for _, r := range rows {
		if !r.IsBlank() {
			return false
		}
	}
	return true
}

// writeJSONAtomic marshals v and writes it via temp-then-rename.
func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".chunk-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing: %w", err)
	}
	return nil
}
