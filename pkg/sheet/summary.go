package sheet

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sanchul-dev/sanchul/pkg/model"
)

// Reserved summary rows: row 0 carries the project title, row 1 the 공통
// category. Renumber and delete never touch them.
const (
	SummaryProjectRow = 0
	SummaryCommonRow  = 1
	// FirstCategoryRow is the first user-editable category row.
	FirstCategoryRow = 2
)

// numberPrefixRe matches the numeric template prefix of a pasted category
// line, e.g. "12." or "3.1-" in "3.1- 간선공사".
var numberPrefixRe = regexp.MustCompile(`^[\d.\-]+`)

// SummaryModel is the summary sheet (갑지): the ordered list of work
// categories for one project.
type SummaryModel struct {
	notifier
	rows []model.SummaryRow
	undo *UndoStack
}

// NewSummaryModel creates a summary sheet with the two reserved rows.
func NewSummaryModel(projectName string, undo *UndoStack) *SummaryModel {
	if undo == nil {
		undo = NewUndoStack(GlobalUndoDepth)
	}
	return &SummaryModel{
		rows: []model.SummaryRow{
			{Name: projectName},
			{Category: "공통", Name: "공통"},
		},
		undo: undo,
	}
}

// Len returns the row count including the reserved rows.
func (m *SummaryModel) Len() int { return len(m.rows) }

// Row returns a copy of row i.
func (m *SummaryModel) Row(i int) model.SummaryRow { return m.rows[i] }

// Rows returns a copy of all rows.
func (m *SummaryModel) Rows() []model.SummaryRow {
	return append([]model.SummaryRow(nil), m.rows...)
}

// ReplaceRows swaps in a full row set (load path) without recording undo.
// The reserved rows are re-seeded when the set is too short.
func (m *SummaryModel) ReplaceRows(rows []model.SummaryRow) {
	m.rows = append([]model.SummaryRow(nil), rows...)
	for len(m.rows) < FirstCategoryRow {
		m.rows = append(m.rows, model.SummaryRow{})
	}
	if m.rows[SummaryCommonRow].Name == "" {
		m.rows[SummaryCommonRow] = model.SummaryRow{Category: "공통", Name: "공통"}
	}
	m.emit(Change{Kind: SheetReloaded})
}

// ProjectName returns the project title held by row 0.
func (m *SummaryModel) ProjectName() string { return m.rows[SummaryProjectRow].Name }

// SetProjectName writes the project title into row 0.
func (m *SummaryModel) SetProjectName(name string) {
	m.rows[SummaryProjectRow].Name = name
	m.emit(Change{Kind: CellChanged, Row: SummaryProjectRow, Col: int(model.SummaryColGongjong)})
}

// SetCell writes one cell, growing the grid as needed and recording an undo
// delta.
func (m *SummaryModel) SetCell(row int, col model.SummaryCol, text string) {
	if row < 0 {
		return
	}
	m.ensureRow(row)
	prev := m.rows[row].Cell(col)
	if prev == text {
		return
	}
	m.undo.Push(UndoRecord{target: m, Action: UndoEdit, Row: row, Col: int(col), Prev: prev})
	m.rows[row].SetCell(col, text)
	m.emit(Change{Kind: CellChanged, Row: row, Col: int(col)})
}

func (m *SummaryModel) ensureRow(row int) {
	for row >= len(m.rows) {
		m.rows = append(m.rows, model.SummaryRow{})
	}
}

// Copy copies one cell to the internal clipboard.
func (m *SummaryModel) Copy(row int, col model.SummaryCol, clip *Clipboard) {
	if row < 0 || row >= len(m.rows) {
		return
	}
	clip.SetCell(m.rows[row].Cell(col))
}

// Cut copies the cell and clears it, recording undo for the clear.
func (m *SummaryModel) Cut(row int, col model.SummaryCol, clip *Clipboard) {
	if row < 0 || row >= len(m.rows) {
		return
	}
	m.Copy(row, col, clip)
	m.SetCell(row, col, "")
}

// Paste writes the clipboard cell text into the cell.
func (m *SummaryModel) Paste(row int, col model.SummaryCol, clip *Clipboard) {
	if clip.Kind() != ClipCell {
		return
	}
	m.SetCell(row, col, clip.Cell())
}

// InsertRow inserts a blank row at index at (clamped below the reserved
// rows), recording undo.
func (m *SummaryModel) InsertRow(at int) {
	if at < FirstCategoryRow {
		at = FirstCategoryRow
	}
	if at > len(m.rows) {
		at = len(m.rows)
	}
	m.rows = append(m.rows, model.SummaryRow{})
	copy(m.rows[at+1:], m.rows[at:])
	m.rows[at] = model.SummaryRow{}
	m.undo.Push(UndoRecord{target: m, Action: UndoInsert, Row: at})
	m.emit(Change{Kind: RowInserted, Row: at})
}

// DeleteRow removes row at, recording undo with the full cell payload.
// The reserved rows cannot be deleted.
func (m *SummaryModel) DeleteRow(at int) {
	if at < FirstCategoryRow || at >= len(m.rows) {
		return
	}
	m.undo.Push(UndoRecord{
		target: m, Action: UndoDelete, Row: at,
		Cells: summaryCells(m.rows[at]),
	})
	m.rows = append(m.rows[:at], m.rows[at+1:]...)
	m.emit(Change{Kind: RowDeleted, Row: at})
}

// InsertRowFromTemplate appends a category row parsed from pasted text: any
// leading numeric template prefix is stripped, a fresh sequential integer is
// assigned from the highest base already present, and both the sequence cell
// and the "N. name" display form are written.
func (m *SummaryModel) InsertRowFromTemplate(text string) {
	name := strings.TrimSpace(numberPrefixRe.ReplaceAllString(strings.TrimSpace(text), ""))
	next := m.maxBase() + 1

	row := model.SummaryRow{
		Sequence: strconv.Itoa(next),
		Name:     fmt.Sprintf("%d. %s", next, name),
	}
	at := len(m.rows)
	m.rows = append(m.rows, row)
	m.undo.Push(UndoRecord{target: m, Action: UndoInsert, Row: at})
	m.emit(Change{Kind: RowInserted, Row: at})
}

// Renumber is 번호정리: rewrite the hierarchical sequence prefixes of the
// user category rows so base integers run monotonically. Rows with empty
// names are skipped and their sequence cleared; non-numeric rows receive
// fresh sequential integers; suffixes (".x.y") are preserved. Rows 0 and 1
// are never touched.
func (m *SummaryModel) Renumber() {
	counter := 0
	prevBase := 0
	havePrev := false

	for i := FirstCategoryRow; i < len(m.rows); i++ {
		r := &m.rows[i]
		if strings.TrimSpace(r.Name) == "" {
			r.Sequence = ""
			continue
		}

		base, suffix, ok := splitSequence(r.Sequence)
		if !ok {
			// No recognizable base: fresh integer, suffix dropped.
			counter++
			havePrev = false
			suffix = ""
		} else {
			if !havePrev || base != prevBase {
				counter++
			}
			prevBase = base
			havePrev = true
		}

		r.Sequence = strconv.Itoa(counter) + suffix
		r.Name = rewriteNamePrefix(r.Name, counter)
	}
	m.emit(Change{Kind: SheetReloaded})
}

// SetHasDetail sets or clears the "*" marker on the row whose category (or
// displayed name, stripped of its number prefix) matches.
func (m *SummaryModel) SetHasDetail(categoryName string, flag bool) {
	marker := ""
	if flag {
		marker = "*"
	}
	for i := range m.rows {
		if m.matchesCategory(i, categoryName) {
			if m.rows[i].Marker != marker {
				m.rows[i].Marker = marker
				m.emit(Change{Kind: CellChanged, Row: i, Col: int(model.SummaryColNum)})
			}
			return
		}
	}
}

// CategoryAt returns the bare category name of row i: the Category cell when
// set, otherwise the Name cell with its number prefix stripped.
func (m *SummaryModel) CategoryAt(i int) string {
	if i < 0 || i >= len(m.rows) {
		return ""
	}
	if c := strings.TrimSpace(m.rows[i].Category); c != "" {
		return c
	}
	return stripNamePrefix(m.rows[i].Name)
}

func (m *SummaryModel) matchesCategory(i int, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	return m.CategoryAt(i) == name || stripNamePrefix(m.rows[i].Name) == name
}

// maxBase returns the highest integer base of any row's sequence.
func (m *SummaryModel) maxBase() int {
	max := 0
	for i := FirstCategoryRow; i < len(m.rows); i++ {
		if base, _, ok := splitSequence(m.rows[i].Sequence); ok && base > max {
			max = base
		}
	}
	return max
}

// splitSequence splits "3.1.2" into base 3 and suffix ".1.2".
func splitSequence(seq string) (base int, suffix string, ok bool) {
	seq = strings.TrimSpace(seq)
	if seq == "" {
		return 0, "", false
	}
	head := seq
	if i := strings.IndexByte(seq, '.'); i >= 0 {
		head = seq[:i]
		suffix = seq[i:]
	}
	base, err := strconv.Atoi(head)
	if err != nil || base <= 0 {
		return 0, "", false
	}
	return base, suffix, true
}

// stripNamePrefix removes a "N." style display prefix from a category name.
func stripNamePrefix(name string) string {
	return strings.TrimSpace(numberPrefixRe.ReplaceAllString(strings.TrimSpace(name), ""))
}

// rewriteNamePrefix replaces the display prefix of name with the new base.
func rewriteNamePrefix(name string, base int) string {
	return fmt.Sprintf("%d. %s", base, stripNamePrefix(name))
}

// undoTarget implementation.

func (m *SummaryModel) undoInsert(row int) {
	if row < 0 || row >= len(m.rows) {
		return
	}
	m.rows = append(m.rows[:row], m.rows[row+1:]...)
	m.emit(Change{Kind: RowDeleted, Row: row})
}

func (m *SummaryModel) undoDelete(row int, cells []string) {
	if row < 0 || row > len(m.rows) {
		return
	}
	restored := summaryFromCells(cells)
	m.rows = append(m.rows, model.SummaryRow{})
	copy(m.rows[row+1:], m.rows[row:])
	m.rows[row] = restored
	m.emit(Change{Kind: RowInserted, Row: row})
}

func (m *SummaryModel) undoEdit(row, col int, prev string) {
	if row < 0 || row >= len(m.rows) {
		return
	}
	m.rows[row].SetCell(model.SummaryCol(col), prev)
	m.emit(Change{Kind: CellChanged, Row: row, Col: col})
}

func summaryCells(r model.SummaryRow) []string {
	cells := make([]string, model.SummaryColCount)
	for c := 0; c < model.SummaryColCount; c++ {
		cells[c] = r.Cell(model.SummaryCol(c))
	}
	return cells
}

func summaryFromCells(cells []string) model.SummaryRow {
	var r model.SummaryRow
	for c := 0; c < len(cells) && c < model.SummaryColCount; c++ {
		r.SetCell(model.SummaryCol(c), cells[c])
	}
	return r
}
