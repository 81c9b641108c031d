package sheet

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/sanchul-dev/sanchul/pkg/classify"
	"github.com/sanchul-dev/sanchul/pkg/formula"
	"github.com/sanchul-dev/sanchul/pkg/metrics"
	"github.com/sanchul-dev/sanchul/pkg/model"
)

// LightingExportItem is the fixed item text written to the parent row when a
// lighting sheet is exported.
const LightingExportItem = "조명기구 Type산출"

// TemplateSource materializes the template BOM for a lighting category.
// Satisfied by refdict.LightingStore; nil means cache misses load empty.
type TemplateSource interface {
	TemplateBOM(category string) []model.SubDetailRow
}

// LightingModel is the two-pane lighting sub-sheet: a master table with one
// row per lighting type and a detail table holding the BOM of the selected
// type. Edits to a type's BOM survive switching types through the per-master
// cache; the whole state serializes onto the parent detail row for re-entry.
type LightingModel struct {
	notifier

	masters []model.LightingMasterRow
	cache   map[int][]model.SubDetailRow
	details []model.SubDetailRow
	focused int

	templates TemplateSource
	dict      classify.CodeChecker
	isIlwi    classify.IsIlwiFunc
	undo      *UndoStack
}

// NewLightingModel starts a fresh lighting sheet with one empty master row.
func NewLightingModel(templates TemplateSource, dict classify.CodeChecker, isIlwi classify.IsIlwiFunc) *LightingModel {
	m := &LightingModel{
		masters:   []model.LightingMasterRow{{}},
		cache:     make(map[int][]model.SubDetailRow),
		templates: templates,
		dict:      dict,
		isIlwi:    isIlwi,
		undo:      NewUndoStack(PopupUndoDepth),
	}
	m.loadFocused()
	return m
}

// RestoreLightingModel rebuilds a lighting sheet from a payload previously
// attached to a detail row.
func RestoreLightingModel(p *model.LightingPayload, templates TemplateSource, dict classify.CodeChecker, isIlwi classify.IsIlwiFunc) *LightingModel {
	if p == nil {
		return NewLightingModel(templates, dict, isIlwi)
	}
	p = p.Clone()
	m := &LightingModel{
		masters:   p.Masters,
		cache:     p.DetailsCache,
		focused:   p.FocusedMaster,
		templates: templates,
		dict:      dict,
		isIlwi:    isIlwi,
		undo:      NewUndoStack(PopupUndoDepth),
	}
	if len(m.masters) == 0 {
		m.masters = []model.LightingMasterRow{{}}
	}
	if m.focused < 0 || m.focused >= len(m.masters) {
		m.focused = 0
	}
	if m.cache == nil {
		m.cache = make(map[int][]model.SubDetailRow)
	}
	m.recomputeMasters()
	m.loadFocused()
	return m
}

// Focused returns the index of the selected master row.
func (m *LightingModel) Focused() int { return m.focused }

// Masters returns copies of the master rows.
func (m *LightingModel) Masters() []model.LightingMasterRow {
	return append([]model.LightingMasterRow(nil), m.masters...)
}

// Details returns copies of the selected type's BOM rows.
func (m *LightingModel) Details() []model.SubDetailRow {
	return append([]model.SubDetailRow(nil), m.details...)
}

// Undo pops one record off the popup's own undo stack.
func (m *LightingModel) Undo() bool { return m.undo.Pop() }

// SelectMaster switches the detail pane to master row i. The outgoing BOM is
// snapshotted into the cache before the incoming one loads, so no edit is
// lost when stepping between types. A cache miss materializes the template
// BOM for the incoming row's category.
func (m *LightingModel) SelectMaster(i int) {
	if i < 0 || i >= len(m.masters) || i == m.focused {
		return
	}
	m.cache[m.focused] = append([]model.SubDetailRow(nil), m.details...)
	m.focused = i
	m.loadFocused()
	// BOM undo records are relative to the pane they were made in; they
	// must not replay against another type's rows.
	m.undo.Clear()
	m.emit(Change{Kind: SheetReloaded})
}

// AddMaster appends a master row and returns its index.
func (m *LightingModel) AddMaster(category, name string) int {
	m.masters = append(m.masters, model.LightingMasterRow{Category: category, Name: name})
	return len(m.masters) - 1
}

// SetMasterName renames master row i.
func (m *LightingModel) SetMasterName(i int, name string) {
	if i < 0 || i >= len(m.masters) {
		return
	}
	m.masters[i].Name = name
	m.emit(Change{Kind: CellChanged, Row: i})
}

// SetMasterCategory rebinds master row i to another template category. The
// row's cached BOM is dropped so the next selection loads the new template.
func (m *LightingModel) SetMasterCategory(i int, category string) {
	if i < 0 || i >= len(m.masters) || m.masters[i].Category == category {
		return
	}
	m.masters[i].Category = category
	delete(m.cache, i)
	if i == m.focused {
		m.loadFocused()
	}
	m.emit(Change{Kind: SheetReloaded})
}

// SetMasterFormula writes the per-type quantity expression and refreshes the
// mirrored total.
func (m *LightingModel) SetMasterFormula(i int, expr string) {
	if i < 0 || i >= len(m.masters) {
		return
	}
	prev := m.masters[i].Formula
	if prev == expr {
		return
	}
	m.undo.Push(UndoRecord{target: m, Action: UndoEdit, Row: i, Col: masterFormulaCol, Prev: prev})
	m.masters[i].Formula = expr
	m.recomputeMaster(i)
	m.emit(Change{Kind: TotalsChanged, Row: i})
}

// SetDetailCell edits the selected type's BOM like a unit-price sheet: code
// and list edits reclassify, quantity edits recompute the unit total. The
// edit records undo against the pane it was made in.
func (m *LightingModel) SetDetailCell(row int, col model.SubDetailCol, text string) {
	for row >= len(m.details) {
		m.details = append(m.details, model.SubDetailRow{})
	}
	prev := m.details[row].Cell(col)
	if prev == text {
		return
	}
	m.undo.Push(UndoRecord{target: m, Action: UndoEdit, Row: row, Col: int(col), Prev: prev})
	m.details[row].SetCell(col, text)
	switch col {
	case model.SubDetailColCode, model.SubDetailColList:
		if row == 0 {
			m.details[0].Mark = model.MarkerNone
		} else {
			m.details[row].Mark = classify.Classify(m.details[row].Code, m.dict, m.isIlwi)
		}
	case model.SubDetailColUnitFormula:
		m.recomputeDetail(row)
	}
	m.emit(Change{Kind: CellChanged, Row: row, Col: int(col)})
}

// Payload snapshots the whole sheet state for attachment to the parent row.
func (m *LightingModel) Payload() *model.LightingPayload {
	m.cache[m.focused] = append([]model.SubDetailRow(nil), m.details...)
	p := &model.LightingPayload{
		Masters:       m.masters,
		DetailsCache:  m.cache,
		FocusedMaster: m.focused,
	}
	return p.Clone()
}

// ExportTo rolls the master formulas up into the parent detail row and
// attaches the payload for re-entry. A non-numeric master formula rejects
// the export.
func (m *LightingModel) ExportTo(parent *model.DetailRow) error {
	var vals []float64
	for i, mr := range m.masters {
		if strings.TrimSpace(mr.Formula) == "" {
			continue
		}
		v, err := formula.TryEval(mr.Formula)
		if err != nil {
			return fmt.Errorf("type %d formula %q: %w", i, mr.Formula, err)
		}
		vals = append(vals, v)
	}

	parent.Item = LightingExportItem
	parent.Unit = ExportUnit
	parent.Formula = ExportFormula
	parent.Total = formula.FormatTotal(floats.Sum(vals))
	parent.Payload = m.Payload()
	m.emit(Change{Kind: Exported})
	return nil
}

// loadFocused fills the detail pane for the focused master: cached rows when
// the type was visited before, the category's template BOM otherwise.
func (m *LightingModel) loadFocused() {
	if rows, ok := m.cache[m.focused]; ok {
		metrics.LightingCache.Hit()
		m.details = append([]model.SubDetailRow(nil), rows...)
	} else {
		metrics.LightingCache.Miss()
		var rows []model.SubDetailRow
		if m.templates != nil && m.masters[m.focused].Category != "" {
			rows = m.templates.TemplateBOM(m.masters[m.focused].Category)
		}
		if len(rows) == 0 {
			rows = make([]model.SubDetailRow, model.DefaultBlankSubDetailRows)
		}
		classify.ReclassifyAll(rows, m.dict, m.isIlwi)
		m.details = rows
	}
	for i := range m.details {
		m.recomputeDetail(i)
	}
}

func (m *LightingModel) recomputeDetail(row int) {
	r := &m.details[row]
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

func (m *LightingModel) recomputeMaster(i int) {
	mr := &m.masters[i]
	if strings.TrimSpace(mr.Formula) == "" {
		mr.Total = ""
		return
	}
	if v, err := formula.TryEval(mr.Formula); err != nil {
		mr.Total = ""
	} else {
		mr.Total = formula.FormatTotal(v)
	}
}

func (m *LightingModel) recomputeMasters() {
	for i := range m.masters {
		m.recomputeMaster(i)
	}
}

// masterFormulaCol tags an undo record as a master formula edit; BOM edits
// carry the real column index.
const masterFormulaCol = -1

// undoTarget implementation: the lighting popup records cell edits only, so
// insert/delete are no-ops.

func (m *LightingModel) undoInsert(int) {}

func (m *LightingModel) undoDelete(int, []string) {}

func (m *LightingModel) undoEdit(row, col int, prev string) {
	if col == masterFormulaCol {
		if row < 0 || row >= len(m.masters) {
			return
		}
		m.masters[row].Formula = prev
		m.recomputeMaster(row)
		m.emit(Change{Kind: TotalsChanged, Row: row})
		return
	}
	if row < 0 || row >= len(m.details) {
		return
	}
	m.details[row].SetCell(model.SubDetailCol(col), prev)
	if row == 0 {
		m.details[0].Mark = model.MarkerNone
	} else {
		m.details[row].Mark = classify.Classify(m.details[row].Code, m.dict, m.isIlwi)
	}
	m.recomputeDetail(row)
	m.emit(Change{Kind: CellChanged, Row: row, Col: col})
}
