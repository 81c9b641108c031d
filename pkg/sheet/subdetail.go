package sheet

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/sanchul-dev/sanchul/pkg/chunkstore"
	"github.com/sanchul-dev/sanchul/pkg/classify"
	"github.com/sanchul-dev/sanchul/pkg/formula"
	"github.com/sanchul-dev/sanchul/pkg/model"
	"github.com/sanchul-dev/sanchul/pkg/watcher"
)

// ExportUnit is the fixed unit written to the parent row on export (1식).
const (
	ExportUnit    = "식"
	ExportFormula = "1"
)

// CodeResolver maps a list text to a catalog code. Wired from the manual
// mapping store layered over the dictionary; nil disables auto-resolution.
type CodeResolver func(list string) (string, bool)

// SubDetailModel is the unit-price sub-sheet (산출일위표) behind a detail
// row's popup. Rows persist through the chunk store keyed by the parent
// row's item text; every edit schedules a debounced save and close forces a
// flush.
type SubDetailModel struct {
	notifier

	store   *chunkstore.Store
	project string
	item    string

	rows    []model.SubDetailRow
	dict    classify.CodeChecker
	isIlwi  classify.IsIlwiFunc
	resolve CodeResolver

	undo  *UndoStack
	deb   *watcher.Debouncer
	dirty bool
}

// OpenSubDetail loads (or starts blank) the sub-sheet for (project, item).
// A sheet with no persisted chunk opens with the default blank row count.
func OpenSubDetail(store *chunkstore.Store, project, item string, dict classify.CodeChecker, isIlwi classify.IsIlwiFunc) *SubDetailModel {
	m := &SubDetailModel{
		store:   store,
		project: project,
		item:    item,
		dict:    dict,
		isIlwi:  isIlwi,
		undo:    NewUndoStack(PopupUndoDepth),
		deb:     watcher.NewDebouncer(watcher.DefaultDebounceDuration),
	}
	m.rows = store.Load(project, item)
	if len(m.rows) == 0 {
		m.rows = make([]model.SubDetailRow, model.DefaultBlankSubDetailRows)
	}
	classify.ReclassifyAll(m.rows, m.dict, m.isIlwi)
	m.recomputeUnitTotals()
	return m
}

// SetResolver installs the code auto-resolution hook.
func (m *SubDetailModel) SetResolver(r CodeResolver) { m.resolve = r }

// Item returns the chunk key this sheet is saved under.
func (m *SubDetailModel) Item() string { return m.item }

// Len returns the row count.
func (m *SubDetailModel) Len() int { return len(m.rows) }

// Row returns a copy of row i.
func (m *SubDetailModel) Row(i int) model.SubDetailRow { return m.rows[i] }

// Rows returns a copy of all rows.
func (m *SubDetailModel) Rows() []model.SubDetailRow {
	return append([]model.SubDetailRow(nil), m.rows...)
}

// Undo pops one record off the popup's own undo stack.
func (m *SubDetailModel) Undo() bool { return m.undo.Pop() }

// SetCell writes one cell. Code and list edits reclassify; a list edit on a
// row without a code consults the resolver first. Quantity edits recompute
// the row's unit total. Every change schedules a debounced save.
func (m *SubDetailModel) SetCell(row int, col model.SubDetailCol, text string) {
	m.ensureRow(row)
	prev := m.rows[row].Cell(col)
	if prev == text {
		return
	}
	m.undo.Push(UndoRecord{target: m, Action: UndoEdit, Row: row, Col: int(col), Prev: prev})
	m.rows[row].SetCell(col, text)

	switch col {
	case model.SubDetailColCode:
		m.reclassifyRow(row)
	case model.SubDetailColList:
		if m.rows[row].Code == "" && m.resolve != nil {
			if code, ok := m.resolve(text); ok {
				m.rows[row].Code = code
			}
		}
		m.reclassifyRow(row)
	case model.SubDetailColUnitFormula:
		m.recomputeRow(row)
	}

	m.dirty = true
	m.emit(Change{Kind: CellChanged, Row: row, Col: int(col)})
	m.scheduleSave()
}

// SetItem renames the parent item while the popup is open: the current rows
// are re-saved under the new chunk key and the old chunk is removed.
func (m *SubDetailModel) SetItem(newItem string) {
	if newItem == m.item {
		return
	}
	m.store.Rekey(m.project, m.item, newItem, m.rows)
	m.item = newItem
}

// InsertRow inserts a blank row, recording undo.
func (m *SubDetailModel) InsertRow(at int) {
	if at < 0 {
		at = 0
	}
	if at > len(m.rows) {
		at = len(m.rows)
	}
	m.rows = append(m.rows, model.SubDetailRow{})
	copy(m.rows[at+1:], m.rows[at:])
	m.rows[at] = model.SubDetailRow{}
	m.undo.Push(UndoRecord{target: m, Action: UndoInsert, Row: at})
	m.dirty = true
	m.emit(Change{Kind: RowInserted, Row: at})
	m.scheduleSave()
}

// DeleteRow removes a row, recording undo with the cell payload.
func (m *SubDetailModel) DeleteRow(at int) {
	if at < 0 || at >= len(m.rows) {
		return
	}
	m.undo.Push(UndoRecord{
		target: m, Action: UndoDelete, Row: at,
		Cells: subDetailCells(m.rows[at]),
	})
	m.rows = append(m.rows[:at], m.rows[at+1:]...)
	m.dirty = true
	m.emit(Change{Kind: RowDeleted, Row: at})
	m.scheduleSave()
}

// CopyRows copies rows [from, to) to the internal clipboard.
func (m *SubDetailModel) CopyRows(from, to int, clip *Clipboard) {
	if from < 0 || to > len(m.rows) || from >= to {
		return
	}
	clip.SetSubDetailRows(m.rows[from:to])
}

// PasteRows inserts clipboard rows at row, pushing existing content down.
func (m *SubDetailModel) PasteRows(row int, clip *Clipboard) {
	if clip.Kind() != ClipSubDetailRows {
		return
	}
	for i, r := range clip.SubDetailRows() {
		at := row + i
		m.InsertRow(at)
		m.rows[at] = r
		m.recomputeRow(at)
	}
	classify.ReclassifyAll(m.rows, m.dict, m.isIlwi)
	m.dirty = true
	m.emit(Change{Kind: SheetReloaded})
	m.scheduleSave()
}

// CopyCell copies one cell to the internal clipboard. The F6/F7 block
// operations carry whole rows; ctrl+c/x/v work on single cells.
func (m *SubDetailModel) CopyCell(row int, col model.SubDetailCol, clip *Clipboard) {
	if row < 0 || row >= len(m.rows) {
		return
	}
	clip.SetCell(m.rows[row].Cell(col))
}

// CutCell copies the cell and clears it.
func (m *SubDetailModel) CutCell(row int, col model.SubDetailCol, clip *Clipboard) {
	if row < 0 || row >= len(m.rows) {
		return
	}
	m.CopyCell(row, col, clip)
	m.SetCell(row, col, "")
}

// PasteCell writes the clipboard cell text into the cell.
func (m *SubDetailModel) PasteCell(row int, col model.SubDetailCol, clip *Clipboard) {
	if clip.Kind() != ClipCell {
		return
	}
	m.SetCell(row, col, clip.Cell())
}

// InsertSelections performs bulk import from the reference-lookup overlay
// starting at row: when the target row already has content it is pushed down
// by an insert. Quantities accumulate through the session per entry.
func (m *SubDetailModel) InsertSelections(row int, sels []model.ReferenceSelection, session *QuantitySession) error {
	for _, sel := range sels {
		if err := sel.Validate(); err != nil {
			return err
		}
	}
	at := row
	for _, sel := range sels {
		m.ensureRow(at)
		if !m.rows[at].IsBlank() {
			m.InsertRow(at)
		}
		qty := sel.QuantityText
		if session != nil {
			qty = session.Accumulate(sel.EntryCode+"|"+sel.EntryName, qty)
		}
		m.rows[at].Code = sel.EntryCode
		m.rows[at].List = displayItem(sel)
		m.rows[at].UnitFormula = qty
		m.recomputeRow(at)
		at++
	}
	classify.ReclassifyAll(m.rows, m.dict, m.isIlwi)
	m.dirty = true
	m.emit(Change{Kind: SheetReloaded})
	m.scheduleSave()
	return nil
}

// RefreshMappings reclassifies every row, called after a manual-mapping
// reload so marker states track the new overrides.
func (m *SubDetailModel) RefreshMappings() {
	classify.ReclassifyAll(m.rows, m.dict, m.isIlwi)
	m.emit(Change{Kind: SheetReloaded})
}

// ExportTo rolls the sheet up into the parent detail row: item from the
// header row's list text, fixed 1식 unit and formula, total as the sum of
// every row's unit formula. A non-numeric quantity rejects the export.
func (m *SubDetailModel) ExportTo(parent *model.DetailRow) error {
	var vals []float64
	for i, r := range m.rows {
		if i == 0 || strings.TrimSpace(r.UnitFormula) == "" {
			continue
		}
		v, err := formula.TryEval(r.UnitFormula)
		if err != nil {
			return fmt.Errorf("row %d quantity %q: %w", i, r.UnitFormula, err)
		}
		vals = append(vals, v)
	}

	if len(m.rows) > 0 && m.rows[0].List != "" {
		parent.Item = m.rows[0].List
	}
	parent.Unit = ExportUnit
	parent.Formula = ExportFormula
	parent.Total = formula.FormatTotal(floats.Sum(vals))
	m.emit(Change{Kind: Exported})
	return nil
}

// Flush writes the sheet to disk now and cancels any pending debounce.
func (m *SubDetailModel) Flush() {
	m.deb.Cancel()
	if m.dirty {
		m.store.Save(m.project, m.item, m.rows)
		m.dirty = false
	}
}

// Close force-flushes; the model must not be used afterwards.
func (m *SubDetailModel) Close() { m.Flush() }

// scheduleSave snapshots the rows on the caller's goroutine; the debounced
// write sees only the snapshot. The dirty flag stays set so a later Flush
// re-writes at worst, it never reads the flag off the UI loop.
func (m *SubDetailModel) scheduleSave() {
	project, item := m.project, m.item
	rows := append([]model.SubDetailRow(nil), m.rows...)
	m.deb.Trigger(func() {
		m.store.Save(project, item, rows)
	})
}

func (m *SubDetailModel) reclassifyRow(row int) {
	if row == 0 {
		m.rows[0].Mark = model.MarkerNone
		return
	}
	m.rows[row].Mark = classify.Classify(m.rows[row].Code, m.dict, m.isIlwi)
}

func (m *SubDetailModel) recomputeRow(row int) {
	r := &m.rows[row]
	if strings.TrimSpace(r.UnitFormula) == "" {
		r.UnitTotal = ""
		return
	}
	if v, err := formula.TryEval(r.UnitFormula); err != nil {
		r.UnitTotal = ""
	} else {
		r.UnitTotal = formula.FormatTotal(v)
	}
}

func (m *SubDetailModel) recomputeUnitTotals() {
	for i := range m.rows {
		m.recomputeRow(i)
	}
}

func (m *SubDetailModel) ensureRow(row int) {
	for row >= len(m.rows) {
		m.rows = append(m.rows, model.SubDetailRow{})
	}
}

// undoTarget implementation.

func (m *SubDetailModel) undoInsert(row int) {
	if row < 0 || row >= len(m.rows) {
		return
	}
	m.rows = append(m.rows[:row], m.rows[row+1:]...)
	m.dirty = true
	m.emit(Change{Kind: RowDeleted, Row: row})
	m.scheduleSave()
}

func (m *SubDetailModel) undoDelete(row int, cells []string) {
	if row < 0 || row > len(m.rows) {
		return
	}
	restored := subDetailFromCells(cells)
	m.rows = append(m.rows, model.SubDetailRow{})
	copy(m.rows[row+1:], m.rows[row:])
	m.rows[row] = restored
	m.dirty = true
	m.emit(Change{Kind: RowInserted, Row: row})
	m.scheduleSave()
}

func (m *SubDetailModel) undoEdit(row, col int, prev string) {
	if row < 0 || row >= len(m.rows) {
		return
	}
	m.rows[row].SetCell(model.SubDetailCol(col), prev)
	m.reclassifyRow(row)
	m.recomputeRow(row)
	m.dirty = true
	m.emit(Change{Kind: CellChanged, Row: row, Col: col})
	m.scheduleSave()
}

func subDetailCells(r model.SubDetailRow) []string {
	cells := make([]string, model.SubDetailColCount)
	for c := 0; c < model.SubDetailColCount; c++ {
		cells[c] = r.Cell(model.SubDetailCol(c))
	}
	return cells
}

func subDetailFromCells(cells []string) model.SubDetailRow {
	var r model.SubDetailRow
	for c := 0; c < len(cells) && c < model.SubDetailColCount; c++ {
		r.SetCell(model.SubDetailCol(c), cells[c])
	}
	return r
}

// QuantitySession tracks the quantity text last entered per reference entry
// within one lookup session, so repeated picks of the same entry accumulate
// instead of overwriting.
type QuantitySession struct {
	last map[string]string
}

// NewQuantitySession returns an empty session.
func NewQuantitySession() *QuantitySession {
	return &QuantitySession{last: make(map[string]string)}
}

// Accumulate combines a prior quantity for key with text: "<old>+<new>"
// unless text already carries the old value as a prefix. The combined text
// becomes the new remembered value.
func (q *QuantitySession) Accumulate(key, text string) string {
	old, ok := q.last[key]
	out := text
	if ok && old != "" && !strings.HasPrefix(text, old) {
		out = old + "+" + text
	}
	q.last[key] = out
	return out
}

// Reset forgets all remembered quantities.
func (q *QuantitySession) Reset() { q.last = make(map[string]string) }
