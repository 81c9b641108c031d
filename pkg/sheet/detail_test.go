package sheet

import (
	"strings"
	"testing"

	"github.com/sanchul-dev/sanchul/pkg/model"
)

func newDetail(t *testing.T) *DetailModel {
	t.Helper()
	return NewDetailModel("전등설비", NewUndoStack(GlobalUndoDepth))
}

func TestDetailSetCellRecomputesTotal(t *testing.T) {
	tests := []struct {
		formula string
		total   string
	}{
		{"3+4", "7"},
		{"{1+2}*3", "9"},
		{"2x3", "6"},
		{"0.1+0.2", "0.3"},
		{"", ""},
		{"1+", ""},    // dangling operator
		{"1@", ""},    // pending-marker placeholder is not a number
		{"===", ""},   // mapping placeholder
		{"자재비", ""},   // free text
		{"1.2.3", ""}, // double dot
	}
	for _, tt := range tests {
		m := newDetail(t)
		m.SetCell(0, model.DetailColFormula, tt.formula)
		if got := m.Row(0).Total; got != tt.total {
			t.Errorf("formula %q: total = %q, want %q", tt.formula, got, tt.total)
		}
	}
}

func TestDetailSetCellSameValueNoUndo(t *testing.T) {
	undo := NewUndoStack(GlobalUndoDepth)
	m := NewDetailModel("전등설비", undo)
	m.SetCell(0, model.DetailColItem, "전선관")
	m.SetCell(0, model.DetailColItem, "전선관")
	if undo.Len() != 1 {
		t.Fatalf("undo depth = %d, want 1 (no record for a no-op write)", undo.Len())
	}
}

func TestEnterInFormulaAppendsPlusUnderThreshold(t *testing.T) {
	m := newDetail(t)
	m.SetCell(0, model.DetailColFormula, "3+4")

	focus, wrapped := m.EnterInFormula(0)
	if wrapped {
		t.Fatal("short formula should not wrap")
	}
	if focus != 0 {
		t.Fatalf("focus row = %d, want 0", focus)
	}
	if got := m.Row(0).Formula; got != "3+4+" {
		t.Fatalf("formula = %q, want %q", got, "3+4+")
	}
}

func TestEnterInFormulaWrapBoundary(t *testing.T) {
	// 39 ASCII bytes: "+ " fits (40 <= 40). 40 bytes: the trailing '+'
	// would land on byte 41, so editing wraps to the next row.
	at39 := strings.Repeat("1+", 19) + "1" // 39 bytes
	at40 := at39 + "+"                     // 40 bytes

	m := newDetail(t)
	m.SetCell(0, model.DetailColItem, "전선관 16C")
	m.SetCell(0, model.DetailColFormula, at39)
	if focus, wrapped := m.EnterInFormula(0); wrapped || focus != 0 {
		t.Fatalf("39-byte formula: focus=%d wrapped=%v, want in-place append", focus, wrapped)
	}
	if got := m.Row(0).Formula; got != at40 {
		t.Fatalf("formula = %q, want %q", got, at40)
	}

	focus, wrapped := m.EnterInFormula(0)
	if !wrapped || focus != 1 {
		t.Fatalf("40-byte formula: focus=%d wrapped=%v, want wrap to row 1", focus, wrapped)
	}
	if got := m.Row(1).Item; got != "전선관 16C" {
		t.Fatalf("wrapped row item = %q, want the item copied down", got)
	}
}

func TestEnterInFormulaWrapKeepsExistingItem(t *testing.T) {
	m := newDetail(t)
	long := strings.Repeat("1+", 20) // 40 bytes
	m.SetCell(0, model.DetailColItem, "전선관")
	m.SetCell(0, model.DetailColFormula, long)
	m.SetCell(1, model.DetailColItem, "케이블")

	if focus, wrapped := m.EnterInFormula(0); !wrapped || focus != 1 {
		t.Fatalf("focus=%d wrapped=%v, want wrap to row 1", focus, wrapped)
	}
	if got := m.Row(1).Item; got != "케이블" {
		t.Fatalf("item = %q, want the existing item untouched", got)
	}
}

func TestCtrlDigitDerivesConnectionRow(t *testing.T) {
	m := newDetail(t)
	m.SetCell(0, model.DetailColFormula, "2*4")
	m.SetCell(1, model.DetailColFormula, "3*2")
	m.SetCell(2, model.DetailColFormula, "1*5")

	m.CtrlDigit(3, 3)

	r := m.Row(3)
	if r.Item != ConnectionItem {
		t.Errorf("item = %q, want %q", r.Item, ConnectionItem)
	}
	if r.Formula != "0.2*2*19" {
		t.Errorf("formula = %q, want %q", r.Formula, "0.2*2*19")
	}
	if r.Total != "7.6" {
		t.Errorf("total = %q, want %q", r.Total, "7.6")
	}
	if r.Unit != ConnectionUnit {
		t.Errorf("unit = %q, want %q", r.Unit, ConnectionUnit)
	}
}

func TestCtrlDigitClampsAboveTop(t *testing.T) {
	m := newDetail(t)
	m.SetCell(0, model.DetailColFormula, "2*4")

	// n reaches above row 0; only the existing row contributes.
	m.CtrlDigit(1, 5)
	if got := m.Row(1).Formula; got != "0.2*2*8" {
		t.Fatalf("formula = %q, want %q", got, "0.2*2*8")
	}
}

func TestDetailDeleteRowKeepsGridHeight(t *testing.T) {
	m := newDetail(t)
	m.SetCell(0, model.DetailColItem, "a")
	m.SetCell(1, model.DetailColItem, "b")
	m.SetCell(2, model.DetailColItem, "c")
	n := m.Len()

	m.DeleteRow(1)
	if m.Len() != n {
		t.Fatalf("len = %d, want %d (blank appended after delete)", m.Len(), n)
	}
	if got := m.Row(1).Item; got != "c" {
		t.Fatalf("row 1 item = %q, want %q", got, "c")
	}
	if got := m.Row(n - 1); got != (model.DetailRow{}) {
		t.Fatalf("last row = %+v, want blank", got)
	}
}

func TestDetailCopyPasteCell(t *testing.T) {
	m := newDetail(t)
	clip := &Clipboard{}
	m.SetCell(0, model.DetailColFormula, "3+4")

	m.Copy(0, model.DetailColFormula, clip)
	if clip.Kind() != ClipCell || clip.Cell() != "3+4" {
		t.Fatalf("clipboard = kind %d cell %q, want single cell %q", clip.Kind(), clip.Cell(), "3+4")
	}

	m.Paste(2, model.DetailColFormula, clip)
	if got := m.Row(2).Total; got != "7" {
		t.Fatalf("pasted row total = %q, want recomputed 7", got)
	}
}

func TestDetailNumColumnCopiesWholeRow(t *testing.T) {
	m := newDetail(t)
	clip := &Clipboard{}
	m.SetCell(0, model.DetailColItem, "전선관")
	m.SetCell(0, model.DetailColFormula, "2*4")
	m.SetCell(1, model.DetailColItem, "케이블")

	m.Copy(0, model.DetailColNum, clip)
	if clip.Kind() != ClipDetailRows {
		t.Fatalf("clipboard kind = %d, want whole rows", clip.Kind())
	}

	m.Paste(1, model.DetailColNum, clip)
	if got := m.Row(1).Item; got != "전선관" {
		t.Fatalf("row 1 item = %q, want inserted copy", got)
	}
	if got := m.Row(1).Total; got != "8" {
		t.Fatalf("row 1 total = %q, want recomputed 8", got)
	}
	if got := m.Row(2).Item; got != "케이블" {
		t.Fatalf("row 2 item = %q, want pushed-down original", got)
	}
}

func TestDetailPasteRowsIntoCellColumnIsNoop(t *testing.T) {
	m := newDetail(t)
	clip := &Clipboard{}
	m.SetCell(0, model.DetailColItem, "전선관")
	m.Copy(0, model.DetailColNum, clip)

	n := m.Len()
	m.Paste(0, model.DetailColFormula, clip)
	if m.Len() != n {
		t.Fatal("row paste outside the NUM column must not insert rows")
	}
}

func TestDetailCutRowVersusCell(t *testing.T) {
	m := newDetail(t)
	clip := &Clipboard{}
	m.SetCell(0, model.DetailColItem, "전선관")
	m.SetCell(0, model.DetailColFormula, "2*4")

	m.Cut(0, model.DetailColFormula, clip)
	if got := m.Row(0).Formula; got != "" {
		t.Fatalf("cut cell left formula %q", got)
	}
	if got := m.Row(0).Item; got != "전선관" {
		t.Fatalf("cell cut cleared the item: %q", got)
	}

	m.SetCell(0, model.DetailColFormula, "2*4")
	m.Cut(0, model.DetailColNum, clip)
	if got := m.Row(0).Item; got != "" {
		t.Fatalf("row cut left item %q", got)
	}
	if rows := clip.DetailRows(); len(rows) != 1 || rows[0].Item != "전선관" {
		t.Fatalf("clipboard rows = %+v, want the cut row", rows)
	}
}

func TestDetailInsertSelectionsPushesDown(t *testing.T) {
	m := newDetail(t)
	m.SetCell(0, model.DetailColItem, "기존품")

	sels := []model.ReferenceSelection{
		{EntryName: "전선관", EntrySpec: "16C", EntryUnit: "m", QuantityText: "3+4"},
		{EntryName: "케이블", EntryUnit: "m", QuantityText: "2"},
	}
	if err := m.InsertSelections(0, sels); err != nil {
		t.Fatalf("InsertSelections: %v", err)
	}

	if got := m.Row(0).Item; got != "전선관 16C" {
		t.Errorf("row 0 item = %q, want name plus spec", got)
	}
	if got := m.Row(0).Total; got != "7" {
		t.Errorf("row 0 total = %q, want 7", got)
	}
	if got := m.Row(1).Item; got != "케이블" {
		t.Errorf("row 1 item = %q", got)
	}
	if got := m.Row(2).Item; got != "기존품" {
		t.Errorf("row 2 item = %q, want the pushed-down original", got)
	}
}

func TestDetailInsertSelectionsRejectsNonNumericQuantity(t *testing.T) {
	m := newDetail(t)
	sels := []model.ReferenceSelection{
		{EntryName: "전선관", QuantityText: "3"},
		{EntryName: "케이블", QuantityText: "==="},
	}
	if err := m.InsertSelections(0, sels); err == nil {
		t.Fatal("expected a rejection for quantity ===")
	}
	if m.Len() != 0 {
		t.Fatalf("rejected batch must not touch the sheet, got %d rows", m.Len())
	}
}

func TestDetailUndoEditRestoresTotal(t *testing.T) {
	undo := NewUndoStack(GlobalUndoDepth)
	m := NewDetailModel("전등설비", undo)
	m.SetCell(0, model.DetailColFormula, "3+4")
	m.SetCell(0, model.DetailColFormula, "2*5")
	if got := m.Row(0).Total; got != "10" {
		t.Fatalf("total = %q, want 10", got)
	}

	undo.Pop()
	if got := m.Row(0).Formula; got != "3+4" {
		t.Fatalf("formula after undo = %q, want 3+4", got)
	}
	if got := m.Row(0).Total; got != "7" {
		t.Fatalf("total after undo = %q, want recomputed 7", got)
	}
}

func TestDetailUndoInsertAndDelete(t *testing.T) {
	undo := NewUndoStack(GlobalUndoDepth)
	m := NewDetailModel("전등설비", undo)
	m.SetCell(0, model.DetailColItem, "a")
	m.SetCell(1, model.DetailColItem, "b")

	m.InsertRow(1)
	if got := m.Row(2).Item; got != "b" {
		t.Fatalf("row 2 item = %q after insert", got)
	}
	undo.Pop()
	if got := m.Row(1).Item; got != "b" {
		t.Fatalf("undo of insert left row 1 = %q, want b", got)
	}

	m.SetCell(0, model.DetailColFormula, "2*4")
	m.DeleteRow(0)
	if got := m.Row(0).Item; got != "b" {
		t.Fatalf("row 0 item = %q after delete, want b", got)
	}
	undo.Pop()
	r := m.Row(0)
	if r.Item != "a" || r.Formula != "2*4" {
		t.Fatalf("undo of delete restored %+v", r)
	}
}

func TestDetailUndoDepthEvictsOldest(t *testing.T) {
	undo := NewUndoStack(GlobalUndoDepth)
	m := NewDetailModel("전등설비", undo)
	for i := 0; i < GlobalUndoDepth+10; i++ {
		m.SetCell(0, model.DetailColRemark, strings.Repeat("x", i+1))
	}
	if undo.Len() != GlobalUndoDepth {
		t.Fatalf("undo depth = %d, want capped at %d", undo.Len(), GlobalUndoDepth)
	}
	for undo.Pop() {
	}
	// The oldest records were evicted, so undo bottoms out at the state
	// after the first ten edits, not at the blank sheet.
	if got := m.Row(0).Remark; got != strings.Repeat("x", 10) {
		t.Fatalf("remark after full undo = %q, want %q", got, strings.Repeat("x", 10))
	}
}

func TestDetailReplaceRowsRecomputes(t *testing.T) {
	m := newDetail(t)
	m.ReplaceRows([]model.DetailRow{
		{Item: "전선관", Formula: "3+4"},
		{Item: "케이블", Formula: "abc"},
		{},
	})
	if got := m.Row(0).Total; got != "7" {
		t.Errorf("row 0 total = %q, want 7", got)
	}
	if got := m.Row(1).Total; got != "" {
		t.Errorf("row 1 total = %q, want blank for malformed formula", got)
	}
	if m.Dirty() {
		t.Error("ReplaceRows is the load path and must not mark dirty")
	}
}
