package refdict

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/sanchul-dev/sanchul/pkg/debug"
	"github.com/sanchul-dev/sanchul/pkg/model"
)

// LightingStore reads template BOMs for lighting types. The backing SQLite
// store keeps one table per lighting category; the table name is the category
// string from the master row.
type LightingStore struct {
	path string
}

// OpenLightingStore wraps the lighting-type store at path. The store is read
// lazily per category, so a missing file only surfaces as empty templates.
func OpenLightingStore(path string) *LightingStore {
	return &LightingStore{path: path}
}

// Categories lists the template tables present in the store.
func (s *LightingStore) Categories() []string {
	if s == nil || s.path == "" {
		return nil
	}
	db, err := s.open()
	if err != nil {
		debug.Error("lighting store unavailable at %s: %v", s.path, err)
		return nil
	}
	defer db.Close()

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
	if err != nil {
		debug.Error("listing lighting categories: %v", err)
		return nil
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			continue
		}
		if strings.HasPrefix(name, "sqlite_") {
			continue
		}
		names = append(names, name)
	}
	return names
}

// TemplateBOM loads the template rows for a lighting category. Missing store,
// missing table and bad rows all degrade to an empty template; the caller
// shows a blank BOM in that case.
func (s *LightingStore) TemplateBOM(category string) []model.SubDetailRow {
	if s == nil || s.path == "" || strings.TrimSpace(category) == "" {
		return nil
	}
	db, err := s.open()
	if err != nil {
		debug.Error("lighting store unavailable at %s: %v", s.path, err)
		return nil
	}
	defer db.Close()

	// The category string names the table directly; it comes from a master
	// row cell, so it is quoted rather than interpolated bare.
	query := fmt.Sprintf(`SELECT "CODE", "산출목록", "단위수식" FROM "%s"`,
		strings.ReplaceAll(category, `"`, `""`))
	rows, err := db.Query(query)
	if err != nil {
		debug.Log("no lighting template table for category %q: %v", category, err)
		return nil
	}
	defer rows.Close()

	var out []model.SubDetailRow
	for rows.Next() {
		var code, list, qty sql.NullString
		if err := rows.Scan(&code, &list, &qty); err != nil {
			continue
		}
		out = append(out, model.SubDetailRow{
			Code:        code.String,
			List:        list.String,
			UnitFormula: qty.String,
		})
	}
	return out
}

func (s *LightingStore) open() (*sql.DB, error) {
	if _, err := os.Stat(s.path); err != nil {
		return nil, fmt.Errorf("stat lighting store: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", s.path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open lighting store: %w", err)
	}
	return db, nil
}
