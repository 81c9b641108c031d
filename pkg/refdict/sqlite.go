package refdict

import (
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"github.com/sanchul-dev/sanchul/pkg/model"
)

// DictionaryTable is the reference dictionary table name in the SQLite store.
const DictionaryTable = "자료사전"

// readEntries opens the store read-only and scans the 자료사전 table.
// Rows with unreadable columns are skipped rather than failing the load,
// matching the tolerance the rest of the core shows toward bad data.
func readEntries(path string) ([]model.ReferenceEntry, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat dictionary store: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open dictionary store: %w", err)
	}
	defer db.Close()

	pragmas := []string{
		"PRAGMA cache_size = -16000",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			// Non-fatal, read performance only
		}
	}

	query := fmt.Sprintf(`
		SELECT "ID", "품명", "규격", "단위", "CODE", "그룹",
		       "목록2", "목록3", "목록4", "목록5", "목록6",
		       "약칭", "W", "산출목록", "검색목록"
		FROM "%s"
		ORDER BY "ID"
	`, DictionaryTable)

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", DictionaryTable, err)
	}
	defer rows.Close()

	var entries []model.ReferenceEntry
	for rows.Next() {
		var e model.ReferenceEntry
		var name, spec, unit, code, group sql.NullString
		var l2, l3, l4, l5, l6 sql.NullString
		var alias, wflag, outputName, searchBlob sql.NullString

		err := rows.Scan(&e.ID, &name, &spec, &unit, &code, &group,
			&l2, &l3, &l4, &l5, &l6,
			&alias, &wflag, &outputName, &searchBlob)
		if err != nil {
			continue
		}

		e.Name = name.String
		e.Spec = spec.String
		e.Unit = unit.String
		e.Code = code.String
		e.Group = group.String
		e.List2 = l2.String
		e.List3 = l3.String
		e.List4 = l4.String
		e.List5 = l5.String
		e.List6 = l6.String
		e.Alias = alias.String
		e.WFlag = wflag.String
		e.OutputName = outputName.String
		if searchBlob.Valid && searchBlob.String != "" {
			e.SearchBlob = model.NormalizeSearchBlob(searchBlob.String)
		}

		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", DictionaryTable, err)
	}

	return entries, nil
}
