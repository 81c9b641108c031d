package sheet

import (
	"fmt"
	"strings"

	"github.com/sanchul-dev/sanchul/pkg/formula"
	"github.com/sanchul-dev/sanchul/pkg/metrics"
	"github.com/sanchul-dev/sanchul/pkg/model"
)

// ConnectionItem is the auto-derived 접속선 row written by CtrlDigit.
const (
	ConnectionItem = "접속선"
	ConnectionUnit = "m"
)

// DetailModel is one per-category line-item sheet (을지). Rows hold a
// formula whose evaluated value is mirrored into the total cell; edits mark
// the sheet dirty so the project state can schedule a debounced save.
type DetailModel struct {
	notifier
	Category string

	rows  []model.DetailRow
	undo  *UndoStack
	dirty bool
}

// NewDetailModel creates an empty detail sheet for a category.
func NewDetailModel(category string, undo *UndoStack) *DetailModel {
	if undo == nil {
		undo = NewUndoStack(GlobalUndoDepth)
	}
	return &DetailModel{Category: category, undo: undo}
}

// Len returns the row count.
func (m *DetailModel) Len() int { return len(m.rows) }

// Row returns a copy of row i.
func (m *DetailModel) Row(i int) model.DetailRow { return m.rows[i] }

// Rows returns a copy of all rows.
func (m *DetailModel) Rows() []model.DetailRow {
	return append([]model.DetailRow(nil), m.rows...)
}

// ReplaceRows swaps in a full row set (load path) without recording undo.
func (m *DetailModel) ReplaceRows(rows []model.DetailRow) {
	m.rows = append([]model.DetailRow(nil), rows...)
	m.recomputeAll()
	m.emit(Change{Kind: SheetReloaded})
}

// Dirty reports whether the sheet has unsaved edits.
func (m *DetailModel) Dirty() bool { return m.dirty }

// ClearDirty marks the sheet saved.
func (m *DetailModel) ClearDirty() { m.dirty = false }

// MarkDirty flags the sheet for the next flush. Used when a popup export
// writes the parent row through RowPtr, bypassing SetCell.
func (m *DetailModel) MarkDirty() { m.dirty = true }

// RowPtr exposes row i for payload attachment (sub-detail export). The
// pointer is only valid until the next structural edit.
func (m *DetailModel) RowPtr(i int) *model.DetailRow {
	if i < 0 || i >= len(m.rows) {
		return nil
	}
	return &m.rows[i]
}

// SetCell writes one cell, recording an undo delta. A write into the formula
// column triggers a total recompute for the row.
func (m *DetailModel) SetCell(row int, col model.DetailCol, text string) {
	m.ensureRow(row)
	prev := m.rows[row].Cell(col)
	if prev == text {
		return
	}
	m.undo.Push(UndoRecord{target: m, Action: UndoEdit, Row: row, Col: int(col), Prev: prev})
	m.rows[row].SetCell(col, text)
	m.dirty = true
	m.emit(Change{Kind: CellChanged, Row: row, Col: int(col)})

	if col == model.DetailColFormula {
		m.OnFormulaChanged(row)
	}
}

// OnFormulaChanged recomputes a row's total: empty formula shows an empty
// total, a malformed formula leaves the total blank, and a well-formed one
// mirrors the evaluated value in integer form when integral.
func (m *DetailModel) OnFormulaChanged(row int) {
	if row < 0 || row >= len(m.rows) {
		return
	}
	r := &m.rows[row]
	if strings.TrimSpace(r.Formula) == "" {
		r.Total = ""
	} else if v, err := formula.TryEval(r.Formula); err != nil {
		r.Total = ""
	} else {
		r.Total = formula.FormatTotal(v)
	}
	m.emit(Change{Kind: TotalsChanged, Row: row, Col: int(model.DetailColTotal)})
}

// EnterInFormula implements continuous input on the formula column: while
// the formula plus a trailing '+' still fits the wrap threshold in display
// bytes, the '+' is appended in place; past the threshold editing advances
// to the next row (inserted when missing), copying the item down when the
// next row has none. Returns the row that should hold the editing focus and
// whether the wrap fired.
func (m *DetailModel) EnterInFormula(row int) (focusRow int, wrapped bool) {
	m.ensureRow(row)
	r := &m.rows[row]

	if formula.ByteLength(r.Formula+"+") <= formula.WrapThreshold {
		m.SetCell(row, model.DetailColFormula, r.Formula+"+")
		return row, false
	}

	next := row + 1
	if next >= len(m.rows) {
		m.InsertRow(next)
	}
	if m.rows[next].Item == "" {
		m.SetCell(next, model.DetailColItem, m.rows[row].Item)
	}
	return next, true
}

// CtrlDigit implements the section-connection shortcut: the n rows directly
// above row contribute their parsed section counts, and the current row is
// rewritten as the derived 접속선 line with formula 0.2*2*<sum>.
func (m *DetailModel) CtrlDigit(row, n int) {
	if n <= 0 {
		return
	}
	m.ensureRow(row)

	sum := 0
	for i := row - n; i < row; i++ {
		if i < 0 {
			continue
		}
		sum += formula.SectionCount(m.rows[i].Formula)
	}

	expr := fmt.Sprintf("0.2*2*%d", sum)
	m.SetCell(row, model.DetailColItem, ConnectionItem)
	m.SetCell(row, model.DetailColFormula, expr)
	m.SetCell(row, model.DetailColUnit, ConnectionUnit)
}

// InsertRow inserts a blank row at index at, recording undo.
func (m *DetailModel) InsertRow(at int) {
	if at < 0 {
		at = 0
	}
	if at > len(m.rows) {
		at = len(m.rows)
	}
	m.rows = append(m.rows, model.DetailRow{})
	copy(m.rows[at+1:], m.rows[at:])
	m.rows[at] = model.DetailRow{}
	m.undo.Push(UndoRecord{target: m, Action: UndoInsert, Row: at})
	m.dirty = true
	m.emit(Change{Kind: RowInserted, Row: at})
}

// DeleteRow removes row at and appends a blank row at the end so the grid
// height stays constant, recording undo for the removal.
func (m *DetailModel) DeleteRow(at int) {
	if at < 0 || at >= len(m.rows) {
		return
	}
	m.undo.Push(UndoRecord{
		target: m, Action: UndoDelete, Row: at,
		Cells: detailCells(m.rows[at]),
	})
	m.rows = append(m.rows[:at], m.rows[at+1:]...)
	m.rows = append(m.rows, model.DetailRow{})
	m.dirty = true
	m.emit(Change{Kind: RowDeleted, Row: at})
}

// Copy copies to the internal clipboard: the whole row when col is the NUM
// column, the single cell otherwise.
func (m *DetailModel) Copy(row int, col model.DetailCol, clip *Clipboard) {
	if row < 0 || row >= len(m.rows) {
		return
	}
	if col == model.DetailColNum {
		clip.SetDetailRows(m.rows[row : row+1])
		return
	}
	clip.SetCell(m.rows[row].Cell(col))
}

// Cut copies like Copy and then clears the source: the whole row for the
// NUM column, the single cell otherwise.
func (m *DetailModel) Cut(row int, col model.DetailCol, clip *Clipboard) {
	if row < 0 || row >= len(m.rows) {
		return
	}
	m.Copy(row, col, clip)
	if col == model.DetailColNum {
		m.DeleteRow(row)
		return
	}
	m.SetCell(row, col, "")
}

// Paste writes clipboard content at (row, col): whole rows are inserted when
// the clipboard holds rows and col is the NUM column; otherwise a cell value
// is written into the single cell.
func (m *DetailModel) Paste(row int, col model.DetailCol, clip *Clipboard) {
	switch clip.Kind() {
	case ClipDetailRows:
		if col != model.DetailColNum {
			return
		}
		for i, r := range clip.DetailRows() {
			at := row + i
			m.InsertRow(at)
			m.rows[at] = r
			m.OnFormulaChanged(at)
		}
		m.dirty = true
		m.emit(Change{Kind: SheetReloaded})
	case ClipCell:
		m.SetCell(row, col, clip.Cell())
	}
}

// InsertSelections performs the bulk import from the reference-lookup
// overlay: selections are written starting at row, pushing existing content
// down by inserting a row whenever the target row already has an item.
// Non-numeric quantity text rejects the whole batch.
func (m *DetailModel) InsertSelections(row int, sels []model.ReferenceSelection) error {
	if err := validateSelections(sels); err != nil {
		return err
	}
	at := row
	for _, sel := range sels {
		m.ensureRow(at)
		if m.rows[at].Item != "" {
			m.InsertRow(at)
		}
		m.SetCell(at, model.DetailColItem, displayItem(sel))
		m.SetCell(at, model.DetailColUnit, sel.EntryUnit)
		m.SetCell(at, model.DetailColFormula, sel.QuantityText)
		at++
	}
	return nil
}

// recomputeAll refreshes every row total, used after bulk row replacement.
func (m *DetailModel) recomputeAll() {
	defer metrics.Timer(metrics.SheetRecompute)()
	for i := range m.rows {
		if strings.TrimSpace(m.rows[i].Formula) == "" {
			m.rows[i].Total = ""
		} else if v, err := formula.TryEval(m.rows[i].Formula); err != nil {
			m.rows[i].Total = ""
		} else {
			m.rows[i].Total = formula.FormatTotal(v)
		}
	}
}

// ensureRow grows the sheet so row exists.
func (m *DetailModel) ensureRow(row int) {
	for row >= len(m.rows) {
		m.rows = append(m.rows, model.DetailRow{})
	}
}

// undoTarget implementation.

func (m *DetailModel) undoInsert(row int) {
	if row < 0 || row >= len(m.rows) {
		return
	}
	m.rows = append(m.rows[:row], m.rows[row+1:]...)
	m.dirty = true
	m.emit(Change{Kind: RowDeleted, Row: row})
}

func (m *DetailModel) undoDelete(row int, cells []string) {
	if row < 0 || row > len(m.rows) {
		return
	}
	restored := detailFromCells(cells)
	m.rows = append(m.rows, model.DetailRow{})
	copy(m.rows[row+1:], m.rows[row:])
	m.rows[row] = restored
	m.dirty = true
	m.emit(Change{Kind: RowInserted, Row: row})
}

func (m *DetailModel) undoEdit(row, col int, prev string) {
	if row < 0 || row >= len(m.rows) {
		return
	}
	m.rows[row].SetCell(model.DetailCol(col), prev)
	if model.DetailCol(col) == model.DetailColFormula {
		m.OnFormulaChanged(row)
	}
	m.dirty = true
	m.emit(Change{Kind: CellChanged, Row: row, Col: col})
}

func detailCells(r model.DetailRow) []string {
	cells := make([]string, model.DetailColCount)
	for c := 0; c < model.DetailColCount; c++ {
		cells[c] = r.Cell(model.DetailCol(c))
	}
	return cells
}

func detailFromCells(cells []string) model.DetailRow {
	var r model.DetailRow
	for c := 0; c < len(cells) && c < model.DetailColCount; c++ {
		r.SetCell(model.DetailCol(c), cells[c])
	}
	return r
}

// displayItem renders a selection's sheet item text: name plus spec when a
// spec exists.
func displayItem(sel model.ReferenceSelection) string {
	if sel.EntrySpec == "" {
		return sel.EntryName
	}
	return sel.EntryName + " " + sel.EntrySpec
}

// validateSelections rejects quantity text the evaluator cannot read, e.g.
// the "===" placeholder an estimator types to flag a row for later mapping.
func validateSelections(sels []model.ReferenceSelection) error {
	for _, sel := range sels {
		if err := sel.Validate(); err != nil {
			return err
		}
		if strings.TrimSpace(sel.QuantityText) == "" {
			continue
		}
		if _, err := formula.TryEval(sel.QuantityText); err != nil {
			return fmt.Errorf("quantity %q for %s is not numeric", sel.QuantityText, sel.EntryName)
		}
	}
	return nil
}
