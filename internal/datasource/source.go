// Package datasource discovers and validates the read-only SQLite stores
// the estimator depends on. Several candidate dictionary files can exist
// side by side (a configured path, an environment override, files dropped
// into the data root); the freshest valid one wins.
package datasource

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// EnvDictionaryDB overrides the configured dictionary path when set.
const EnvDictionaryDB = "SANCHUL_DICT_DB"

// Priority values for candidate origins (higher = more authoritative).
const (
	PriorityEnv        = 100
	PriorityConfigured = 90
	PriorityDataRoot   = 50
)

// Candidate is one potential dictionary database.
type Candidate struct {
	// Path is the absolute path to the database file.
	Path string `json:"path"`
	// Priority determines preference when timestamps are equal.
	Priority int `json:"priority"`
	// ModTime is the last modification time of the file.
	ModTime time.Time `json:"mod_time"`
	// Valid indicates whether the candidate passed validation.
	Valid bool `json:"valid"`
	// ValidationError describes why validation failed.
	ValidationError string `json:"validation_error,omitempty"`
	// EntryCount is the dictionary row count, set during validation.
	EntryCount int `json:"entry_count"`
	// Size is the file size in bytes.
	Size int64 `json:"size"`
}

// String returns a human-readable description of the candidate.
func (c Candidate) String() string {
	status := "valid"
	if !c.Valid {
		status = fmt.Sprintf("invalid: %s", c.ValidationError)
	}
	return fmt.Sprintf("%s (priority=%d, mod=%s, entries=%d, %s)",
		c.Path, c.Priority, c.ModTime.Format(time.RFC3339), c.EntryCount, status)
}

// DiscoveryOptions configures candidate discovery.
type DiscoveryOptions struct {
	// ConfiguredPath is the dictionary path from config (optional).
	ConfiguredPath string
	// DataRoot is scanned for loose .db files (optional).
	DataRoot string
	// Validate opens each candidate and checks the dictionary table.
	Validate bool
	// IncludeInvalid keeps candidates that failed validation in results.
	IncludeInvalid bool
	// Logger receives discovery log messages (optional).
	Logger func(msg string)
}

// Discover finds all candidate dictionary databases, sorted freshest first
// with priority breaking ties.
func Discover(opts DiscoveryOptions) ([]Candidate, error) {
	log := opts.Logger
	if log == nil {
		log = func(string) {}
	}

	var cands []Candidate
	seen := make(map[string]bool)

	add := func(path string, priority int) {
		if path == "" || seen[path] {
			return
		}
		info, err := os.Stat(path)
		if err != nil {
			return
		}
		seen[path] = true
		cands = append(cands, Candidate{
			Path:     path,
			Priority: priority,
			ModTime:  info.ModTime(),
			Size:     info.Size(),
		})
		log(fmt.Sprintf("found candidate: %s (mod=%s)", path, info.ModTime().Format(time.RFC3339)))
	}

	if env := os.Getenv(EnvDictionaryDB); env != "" {
		add(env, PriorityEnv)
	}
	add(opts.ConfiguredPath, PriorityConfigured)

	if opts.DataRoot != "" {
		entries, err := os.ReadDir(opts.DataRoot)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading data root: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".db") {
				continue
			}
			add(filepath.Join(opts.DataRoot, e.Name()), PriorityDataRoot)
		}
	}

	if opts.Validate {
		for i := range cands {
			if err := Validate(&cands[i]); err != nil {
				log(fmt.Sprintf("validation failed for %s: %v", cands[i].Path, err))
			}
		}
		if !opts.IncludeInvalid {
			var valid []Candidate
			for _, c := range cands {
				if c.Valid {
					valid = append(valid, c)
				}
			}
			cands = valid
		}
	}

	sort.Slice(cands, func(i, j int) bool {
		if cands[i].ModTime.Equal(cands[j].ModTime) {
			return cands[i].Priority > cands[j].Priority
		}
		return cands[i].ModTime.After(cands[j].ModTime)
	})

	log(fmt.Sprintf("discovered %d candidates", len(cands)))
	return cands, nil
}

// SelectBest discovers and validates candidates and returns the winner.
// No valid candidate is not an error to the caller beyond the ok flag: the
// dictionary degrades to empty.
func SelectBest(opts DiscoveryOptions) (Candidate, bool) {
	opts.Validate = true
	opts.IncludeInvalid = false
	cands, err := Discover(opts)
	if err != nil || len(cands) == 0 {
		return Candidate{}, false
	}
	return cands[0], true
}
