package testutil

import (
	"testing"

	"github.com/sanchul-dev/sanchul/pkg/model"
)

// AssertRowCount verifies the expected number of sub-detail rows.
func AssertRowCount(t *testing.T, rows []model.SubDetailRow, expected int) {
	t.Helper()
	if len(rows) != expected {
		t.Errorf("expected %d rows, got %d", expected, len(rows))
	}
}

// AssertMarker verifies the marker of one row.
func AssertMarker(t *testing.T, rows []model.SubDetailRow, i int, want model.Marker) {
	t.Helper()
	if i >= len(rows) {
		t.Fatalf("row %d out of range (have %d rows)", i, len(rows))
	}
	if rows[i].Mark != want {
		t.Errorf("row %d: marker = %q, want %q", i, rows[i].Mark, want)
	}
}

// AssertRowsEqual verifies two row lists match field by field.
func AssertRowsEqual(t *testing.T, got, want []model.SubDetailRow) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("row count = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Mark != want[i].Mark || got[i].Code != want[i].Code ||
			got[i].List != want[i].List || got[i].UnitFormula != want[i].UnitFormula {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

// AssertDetailCell verifies one detail sheet cell.
func AssertDetailCell(t *testing.T, r model.DetailRow, col model.DetailCol, want string) {
	t.Helper()
	if got := r.Cell(col); got != want {
		t.Errorf("cell %d = %q, want %q", col, got, want)
	}
}

// AssertSequence verifies the sequence cells of summary rows from the first
// category row on.
func AssertSequence(t *testing.T, rows []model.SummaryRow, want []string) {
	t.Helper()
	got := rows[2:]
	if len(got) != len(want) {
		t.Fatalf("category row count = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Sequence != want[i] {
			t.Errorf("row %d: sequence = %q, want %q", i+2, got[i].Sequence, want[i])
		}
	}
}
