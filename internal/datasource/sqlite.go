package datasource

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/sanchul-dev/sanchul/pkg/refdict"
)

// Validate opens a candidate read-only and checks that the dictionary table
// exists and counts its rows. The result is recorded on the candidate; the
// returned error mirrors ValidationError for callers that want it.
func Validate(c *Candidate) error {
	c.Valid = false
	c.EntryCount = 0

	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", c.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		c.ValidationError = fmt.Sprintf("cannot open database: %v", err)
		return fmt.Errorf("%s", c.ValidationError)
	}
	defer db.Close()

	var name string
	err = db.QueryRow(
		`SELECT name FROM sqlite_master WHERE type='table' AND name=?`,
		refdict.DictionaryTable,
	).Scan(&name)
	if err == sql.ErrNoRows {
		c.ValidationError = fmt.Sprintf("table %q not found", refdict.DictionaryTable)
		return fmt.Errorf("%s", c.ValidationError)
	}
	if err != nil {
		c.ValidationError = fmt.Sprintf("schema query failed: %v", err)
		return fmt.Errorf("%s", c.ValidationError)
	}

	var count int
	if err := db.QueryRow(
		fmt.Sprintf(`SELECT COUNT(*) FROM %q`, refdict.DictionaryTable),
	).Scan(&count); err != nil {
		c.ValidationError = fmt.Sprintf("count query failed: %v", err)
		return fmt.Errorf("%s", c.ValidationError)
	}

	c.Valid = true
	c.ValidationError = ""
	c.EntryCount = count
	return nil
}
