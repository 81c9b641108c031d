// Package mapping persists the manual code overrides an estimator records
// when the dictionary match is wrong or missing. Overrides live in two flat
// JSON maps keyed by "<name>|<spec>": a shared original map and a per-project
// map, with the project map taking precedence at resolve time. Writes go to
// exactly one scope and never merge silently.
package mapping

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/sanchul-dev/sanchul/pkg/debug"
	"github.com/sanchul-dev/sanchul/pkg/metrics"
	"github.com/sanchul-dev/sanchul/pkg/model"
)

// Scope selects which map a write lands in.
type Scope int

const (
	// ScopeOriginal writes to the shared original map.
	ScopeOriginal Scope = iota
	// ScopeProject writes to the per-project map.
	ScopeProject
)

func (s Scope) String() string {
	if s == ScopeProject {
		return "project"
	}
	return "original"
}

// Store is the two-tier manual mapping store. Zero value is unusable;
// construct with NewStore.
type Store struct {
	mu           sync.RWMutex
	originalPath string
	projectPath  string
	original     map[string]string
	project      map[string]string
}

// NewStore creates a store over the two JSON files and loads both.
// Either path may be empty, leaving that tier empty and unwritable.
func NewStore(originalPath, projectPath string) *Store {
	s := &Store{
		originalPath: originalPath,
		projectPath:  projectPath,
	}
	s.Reload()
	return s
}

// SetProjectPath repoints the project tier (the active project changed) and
// reloads it.
func (s *Store) SetProjectPath(path string) {
	s.mu.Lock()
	s.projectPath = path
	s.project = loadMap(path)
	s.mu.Unlock()
}

// Resolve returns the override code for key, project scope first. The second
// return reports whether any override exists.
func (s *Store) Resolve(key string) (string, bool) {
	defer metrics.Timer(metrics.MappingResolve)()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if code, ok := s.project[key]; ok {
		return code, true
	}
	if code, ok := s.original[key]; ok {
		return code, true
	}
	return "", false
}

// ResolveEntry resolves the override for a name/spec pair.
func (s *Store) ResolveEntry(name, spec string) (string, bool) {
	return s.Resolve(model.ManualMappingKey(name, spec))
}

// Put records an override in the selected scope and persists that scope's
// file. Only the written file is touched.
func (s *Store) Put(key, code string, scope Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch scope {
	case ScopeProject:
		if s.projectPath == "" {
			return fmt.Errorf("no project mapping path configured")
		}
		if s.project == nil {
			s.project = make(map[string]string)
		}
		s.project[key] = code
		return saveMap(s.projectPath, s.project)
	default:
		if s.originalPath == "" {
			return fmt.Errorf("no original mapping path configured")
		}
		if s.original == nil {
			s.original = make(map[string]string)
		}
		s.original[key] = code
		return saveMap(s.originalPath, s.original)
	}
}

// Register records an override for a name/spec pair. This is the operation
// behind manual-mapping registration from the reference lookup overlay; the
// host decides when to trigger it.
func (s *Store) Register(name, spec, code string, scope Scope) error {
	return s.Put(model.ManualMappingKey(name, spec), code, scope)
}

// Delete removes an override from the selected scope and persists it.
// Removing a missing key is a no-op.
func (s *Store) Delete(key string, scope Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch scope {
	case ScopeProject:
		if _, ok := s.project[key]; !ok {
			return nil
		}
		delete(s.project, key)
		return saveMap(s.projectPath, s.project)
	default:
		if _, ok := s.original[key]; !ok {
			return nil
		}
		delete(s.original, key)
		return saveMap(s.originalPath, s.original)
	}
}

// Reload re-reads both files. Corrupt or missing files become empty maps and
// are left on disk untouched until the next explicit write.
func (s *Store) Reload() {
	s.mu.Lock()
	s.original = loadMap(s.originalPath)
	s.project = loadMap(s.projectPath)
	s.mu.Unlock()
}

// Len returns the number of overrides per tier, for status surfaces.
func (s *Store) Len() (original, project int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.original), len(s.project)
}

func loadMap(path string) map[string]string {
	if path == "" {
		return map[string]string{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			debug.Error("reading mapping file %s: %v", path, err)
		}
		return map[string]string{}
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		debug.Error("corrupt mapping file %s: %v", path, err)
		return map[string]string{}
	}
	if m == nil {
		m = map[string]string{}
	}
	return m
}

// saveMap writes the map atomically (temp-then-rename) so a failed write
// leaves the previous file intact.
func saveMap(path string, m map[string]string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling mapping: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating mapping directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".mapping-*.json")
	if err != nil {
		return fmt.Errorf("creating temp mapping file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing mapping: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing mapping: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing mapping file: %w", err)
	}
	return nil
}
