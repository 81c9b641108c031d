// Package refdict holds the in-memory reference dictionary (자료사전): the
// catalog of items with codes, names, specs and units that sub-detail rows
// are matched against. The dictionary is loaded once from a SQLite store and
// is immutable afterwards, so every lookup is lock-free.
package refdict

import (
	"strings"

	"github.com/sanchul-dev/sanchul/pkg/debug"
	"github.com/sanchul-dev/sanchul/pkg/metrics"
	"github.com/sanchul-dev/sanchul/pkg/model"
)

// Dictionary is the process-wide reference dictionary. The zero value is an
// empty dictionary: every code misses and every search returns nothing, which
// is the wanted degradation when the source store is absent.
type Dictionary struct {
	entries []model.ReferenceEntry
	codeSet map[string]struct{}
}

// Load opens the SQLite store at path and builds the dictionary indices.
// A missing or unreadable store yields an empty dictionary; no error
// propagates to callers beyond the error log.
func Load(path string) *Dictionary {
	defer metrics.Timer(metrics.DictionaryLoad)()

	d := &Dictionary{codeSet: make(map[string]struct{})}
	if path == "" {
		return d
	}
	entries, err := readEntries(path)
	if err != nil {
		debug.Error("reference dictionary unavailable at %s: %v", path, err)
		return d
	}
	d.index(entries)
	debug.Log("reference dictionary loaded: %d entries, %d distinct codes",
		len(d.entries), len(d.codeSet))
	return d
}

// FromEntries builds a dictionary directly from entries. Used by tests and by
// hosts that source the catalog elsewhere.
func FromEntries(entries []model.ReferenceEntry) *Dictionary {
	d := &Dictionary{codeSet: make(map[string]struct{})}
	d.index(entries)
	return d
}

func (d *Dictionary) index(entries []model.ReferenceEntry) {
	d.entries = entries
	for i := range d.entries {
		if d.entries[i].SearchBlob == "" {
			d.entries[i].SearchBlob = d.entries[i].BuildSearchBlob()
		}
		if code := strings.TrimSpace(d.entries[i].Code); code != "" {
			d.codeSet[code] = struct{}{}
		}
	}
}

// Len returns the number of entries.
func (d *Dictionary) Len() int { return len(d.entries) }

// Entry returns the entry at index i. Indices come from Search.
func (d *Dictionary) Entry(i int) model.ReferenceEntry {
	return d.entries[i]
}

// ContainsCode reports whether any entry carries the code. Codes may repeat
// across entries, so this is a set-membership answer only.
func (d *Dictionary) ContainsCode(code string) bool {
	_, ok := d.codeSet[strings.TrimSpace(code)]
	return ok
}

// FindByNamePrefix returns up to limit entries whose name starts with text,
// case-insensitively, preserving insertion order. limit <= 0 means 10.
func (d *Dictionary) FindByNamePrefix(text string, limit int) []model.ReferenceEntry {
	defer metrics.Timer(metrics.DictionarySearch)()

	if limit <= 0 {
		limit = 10
	}
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return nil
	}
	var out []model.ReferenceEntry
	for i := range d.entries {
		if strings.HasPrefix(strings.ToLower(d.entries[i].Name), needle) {
			out = append(out, d.entries[i])
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// FindExactOrPrefix prefers an exact case-insensitive name match and falls
// back to the first prefix match. Returns nil when nothing matches.
func (d *Dictionary) FindExactOrPrefix(text string) *model.ReferenceEntry {
	defer metrics.Timer(metrics.DictionarySearch)()

	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return nil
	}
	var prefix *model.ReferenceEntry
	for i := range d.entries {
		name := strings.ToLower(d.entries[i].Name)
		if name == needle {
			e := d.entries[i]
			return &e
		}
		if prefix == nil && strings.HasPrefix(name, needle) {
			e := d.entries[i]
			prefix = &e
		}
	}
	return prefix
}

// Search returns the indices of every entry whose search blob contains the
// query as a substring. A '+' in the query is normalized to a space first,
// matching how the blobs were built. The indices drive a host-side cursor
// that steps through hits.
func (d *Dictionary) Search(query string) []int {
	defer metrics.Timer(metrics.DictionarySearch)()

	needle := strings.ToLower(strings.TrimSpace(query))
	needle = strings.ReplaceAll(needle, "+", " ")
	if needle == "" {
		return nil
	}
	var hits []int
	for i := range d.entries {
		if strings.Contains(d.entries[i].SearchBlob, needle) {
			hits = append(hits, i)
		}
	}
	return hits
}
