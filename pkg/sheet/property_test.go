package sheet

import (
	"strconv"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/sanchul-dev/sanchul/pkg/model"
)

// genSequence draws sequence cell contents: valid "N" / "N.M" chains, free
// text, and blanks.
func genSequence(t *rapid.T) string {
	switch rapid.IntRange(0, 3).Draw(t, "seqKind") {
	case 0:
		return strconv.Itoa(rapid.IntRange(1, 30).Draw(t, "base"))
	case 1:
		base := rapid.IntRange(1, 30).Draw(t, "base")
		sub := rapid.IntRange(1, 9).Draw(t, "sub")
		return strconv.Itoa(base) + "." + strconv.Itoa(sub)
	case 2:
		return rapid.SampledFrom([]string{"abc", "공통", "-", "x.y"}).Draw(t, "junk")
	default:
		return ""
	}
}

func TestRenumberBasesMonotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		undo := NewUndoStack(GlobalUndoDepth)
		m := NewSummaryModel("현장", undo)

		n := rapid.IntRange(0, 12).Draw(t, "rows")
		for i := 0; i < n; i++ {
			m.InsertRow(m.Len())
			row := m.Len() - 1
			m.SetCell(row, model.SummaryColGongjongNum, genSequence(t))
			if rapid.Bool().Draw(t, "named") {
				m.SetCell(row, model.SummaryColGongjong, "공종"+strconv.Itoa(i))
			}
		}
		before0, before1 := m.Row(0), m.Row(1)

		m.Renumber()

		if m.Row(0) != before0 || m.Row(1) != before1 {
			t.Fatalf("renumber touched a reserved row")
		}

		prev := 0
		for i := FirstCategoryRow; i < m.Len(); i++ {
			seq := m.Row(i).Sequence
			if seq == "" {
				continue
			}
			head := seq
			if dot := strings.IndexByte(seq, '.'); dot >= 0 {
				head = seq[:dot]
			}
			base, err := strconv.Atoi(head)
			if err != nil {
				t.Fatalf("row %d sequence %q has a non-numeric base", i, seq)
			}
			if base < prev {
				t.Fatalf("row %d base %d decreases below %d", i, base, prev)
			}
			if base > prev+1 {
				t.Fatalf("row %d base %d skips past %d", i, base, prev+1)
			}
			prev = base
		}
	})
}

func TestDetailEditsUndoToOriginal(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		undo := NewUndoStack(GlobalUndoDepth)
		m := NewDetailModel("전등설비", undo)
		m.ReplaceRows([]model.DetailRow{
			{Item: "전선관", Formula: "2*4"},
			{Item: "케이블", Formula: "3"},
			{},
		})
		want := m.Rows()

		cols := []model.DetailCol{
			model.DetailColItem, model.DetailColFormula,
			model.DetailColUnit, model.DetailColRemark,
		}
		// Stay well under the stack bound so every edit is reversible.
		n := rapid.IntRange(1, 30).Draw(t, "edits")
		for i := 0; i < n; i++ {
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				row := rapid.IntRange(0, m.Len()-1).Draw(t, "row")
				col := rapid.SampledFrom(cols).Draw(t, "col")
				m.SetCell(row, col, rapid.StringMatching(`[0-9+*a-z가-힣]{0,6}`).Draw(t, "text"))
			case 1:
				m.InsertRow(rapid.IntRange(0, m.Len()).Draw(t, "at"))
			default:
				m.DeleteRow(rapid.IntRange(0, m.Len()-1).Draw(t, "at"))
			}
		}

		for undo.Pop() {
		}

		// Deletes pad the grid with trailing blanks that undo does not trim,
		// so the original rows must reappear as a prefix with only blanks
		// after them.
		got := m.Rows()
		if len(got) < len(want) {
			t.Fatalf("row count after undo = %d, want at least %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("row %d after undo = %+v, want %+v", i, got[i], want[i])
			}
		}
		for i := len(want); i < len(got); i++ {
			if got[i] != (model.DetailRow{}) {
				t.Fatalf("trailing row %d not blank after undo: %+v", i, got[i])
			}
		}
	})
}
