// Package ui is the terminal host for the estimation core: a bubbletea
// program that renders the summary, detail and sub-detail grids and routes
// key chords through the event router. All estimation semantics live in the
// core packages; this package only draws and translates input.
package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sanchul-dev/sanchul/pkg/chunkstore"
	"github.com/sanchul-dev/sanchul/pkg/debug"
	"github.com/sanchul-dev/sanchul/pkg/model"
	"github.com/sanchul-dev/sanchul/pkg/project"
	"github.com/sanchul-dev/sanchul/pkg/router"
	"github.com/sanchul-dev/sanchul/pkg/sheet"
)

type viewMode int

const (
	modeSummary viewMode = iota
	modeDetail
	modePopup
	modeLighting
	modeLookup
)

// App is the bubbletea model for the whole program.
type App struct {
	core *project.CoreContext
	rt   *router.Router

	mode   viewMode
	width  int
	height int

	// summary cursor
	sumRow, sumCol int

	// detail cursor
	detail         *sheet.DetailModel
	detRow, detCol int

	// unit-price popup
	popup          *sheet.SubDetailModel
	popRow, popCol int
	popupParentRow int
	blockSelect    bool
	blockStart     int

	// lighting popup
	lighting      *sheet.LightingModel
	lightOnMaster bool
	lightRow      int
	lightCol      int

	lookup *lookupOverlay

	editor  textinput.Model
	editing bool

	status string
}

// NewApp builds the host over an initialized core context.
func NewApp(core *project.CoreContext) *App {
	ed := textinput.New()
	return &App{
		core:   core,
		rt:     router.New(),
		editor: ed,
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, nil
	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlQ {
		a.core.Teardown()
		return a, tea.Quit
	}

	if a.mode == modeLookup {
		if done := a.lookup.Update(msg); done {
			a.applyLookup()
		}
		return a, nil
	}

	chord := ChordFor(msg)
	if chord != "" && a.rt.Dispatch(chord, a.context(), a) {
		return a, nil
	}

	if a.editing {
		var cmd tea.Cmd
		a.editor, cmd = a.editor.Update(msg)
		return a, cmd
	}

	a.moveCursor(msg)
	return a, nil
}

// context reports where the cursor is for chord resolution.
func (a *App) context() router.Context {
	switch a.mode {
	case modeSummary:
		return router.ContextSummaryCategory
	case modeDetail:
		col := model.DetailCol(a.detCol)
		if col == model.DetailColItem || col == model.DetailColFormula {
			return router.ContextDetailText
		}
		return router.ContextDetailGrid
	default:
		return router.ContextSubDetail
	}
}

// CommitEditor implements router.Host: pending editor text lands in the
// current cell before the chord's operation runs.
func (a *App) CommitEditor() {
	if !a.editing {
		return
	}
	text := a.editor.Value()
	a.editing = false
	a.editor.Blur()
	switch a.mode {
	case modeSummary:
		a.core.State.Summary().SetCell(a.sumRow, model.SummaryCol(a.sumCol), text)
	case modeDetail:
		a.writeDetailCell(text)
	case modePopup:
		a.popup.SetCell(a.popRow, model.SubDetailCol(a.popCol), text)
	case modeLighting:
		if a.lightOnMaster {
			a.lighting.SetMasterFormula(a.lighting.Focused(), text)
		} else {
			a.lighting.SetDetailCell(a.lightRow, model.SubDetailCol(a.lightCol), text)
		}
	}
}

// writeDetailCell routes an item rename through the open popup's rekey when
// one exists for this row.
func (a *App) writeDetailCell(text string) {
	col := model.DetailCol(a.detCol)
	if col == model.DetailColItem && a.popup != nil && a.popupParentRow == a.detRow {
		a.popup.SetItem(text)
	}
	a.detail.SetCell(a.detRow, col, text)
}

// Execute implements router.Host.
func (a *App) Execute(op router.Op, digit int) {
	switch op {
	case router.OpOpenLookup:
		a.lookup = newLookupOverlay(a.core.Dict)
		a.mode = modeLookup
	case router.OpOpenCategory:
		a.openCategory()
	case router.OpInsertRow:
		a.insertRow()
	case router.OpDeleteRow:
		a.deleteRow()
	case router.OpUndo:
		a.undo()
	case router.OpCopy:
		a.copy(false)
	case router.OpCut:
		a.copy(true)
	case router.OpPaste:
		a.paste()
	case router.OpToggleSubDetail:
		a.toggleSubDetail()
	case router.OpFormulaPlaceholder:
		if a.detail == nil {
			return
		}
		a.detail.SetCell(a.detRow, model.DetailColFormula, "1@")
		a.detRow++
	case router.OpEnterFormula:
		if a.detail == nil {
			return
		}
		a.CommitEditor()
		row, wrapped := a.detail.EnterInFormula(a.detRow)
		a.detRow = row
		if wrapped {
			a.startEdit(a.detail.Row(row).Formula)
		}
	case router.OpSectionSum:
		if a.detail == nil {
			return
		}
		a.detail.CtrlDigit(a.detRow, digit)
	case router.OpToggleBlockSelect:
		a.blockSelect = !a.blockSelect
		a.blockStart = a.popRow
	case router.OpCopyBlock:
		a.copyBlock()
	case router.OpPasteBlock:
		if a.popup != nil {
			a.popup.PasteRows(a.popRow, a.core.Clipboard)
		}
	case router.OpSavePiece:
		a.savePiece()
	case router.OpExportPopup:
		a.exportPopup()
	case router.OpClosePopup:
		a.closePopup()
	}
}

func (a *App) openCategory() {
	category := a.core.State.Summary().CategoryAt(a.sumRow)
	if category == "" {
		return
	}
	a.core.State.SetCategory(category)
	a.detail = a.core.State.Detail(category)
	a.detRow, a.detCol = 0, int(model.DetailColItem)
	a.mode = modeDetail
}

func (a *App) toggleSubDetail() {
	if a.mode == modePopup {
		a.closePopup()
		return
	}
	if a.detail == nil {
		return
	}
	row := a.detail.Row(a.detRow)
	if row.HasPayload() {
		a.lighting = sheet.RestoreLightingModel(row.Payload, a.core.Lighting, a.core.Dict, nil)
		a.lightOnMaster = true
		a.lightRow, a.lightCol = 0, 0
		a.popupParentRow = a.detRow
		a.mode = modeLighting
		return
	}
	if row.Item == sheet.LightingExportItem {
		a.lighting = sheet.NewLightingModel(a.core.Lighting, a.core.Dict, nil)
		a.lightOnMaster = true
		a.lightRow, a.lightCol = 0, 0
		a.popupParentRow = a.detRow
		a.mode = modeLighting
		return
	}
	item := row.Item
	if item == "" {
		a.status = "품명이 없는 행입니다"
		return
	}
	if !a.rt.OpenPopup(item) {
		a.status = fmt.Sprintf("%s: 이미 열려 있습니다", item)
		return
	}
	a.popup = a.core.OpenSubDetail(item)
	a.popupParentRow = a.detRow
	a.popRow, a.popCol = 1, int(model.SubDetailColList)
	a.mode = modePopup
}

// exportPopup rolls the popup up into its parent detail row. A failed
// roll-up leaves the popup open with the reason on the status line so the
// bad cell can be fixed first.
func (a *App) exportPopup() {
	if a.detail == nil {
		return
	}
	a.CommitEditor()
	parent := a.detail.RowPtr(a.popupParentRow)
	switch a.mode {
	case modePopup:
		if parent != nil {
			if err := a.popup.ExportTo(parent); err != nil {
				a.status = err.Error()
				return
			}
		}
	case modeLighting:
		if parent != nil {
			if err := a.lighting.ExportTo(parent); err != nil {
				a.status = err.Error()
				return
			}
		}
	default:
		return
	}
	a.detail.MarkDirty()
	a.dismissPopup()
}

// closePopup commits, persists and closes without the roll-up. Esc always
// gets the user out; the sheet is saved and reopens as left.
func (a *App) closePopup() {
	a.CommitEditor()
	switch a.mode {
	case modePopup:
	case modeLighting:
		// keep the edits reachable on re-entry even without an export
		if parent := a.detail.RowPtr(a.popupParentRow); parent != nil {
			parent.Payload = a.lighting.Payload()
			a.detail.MarkDirty()
		}
	default:
		return
	}
	a.dismissPopup()
}

func (a *App) dismissPopup() {
	switch a.mode {
	case modePopup:
		a.popup.Close()
		a.rt.ClosePopup(a.popup.Item())
		a.popup = nil
		a.blockSelect = false
	case modeLighting:
		a.lighting = nil
	}
	a.mode = modeDetail
	a.core.State.ScheduleFlush()
}

func (a *App) applyLookup() {
	sels := a.lookup.Selections()
	a.mode = modeDetailOrPopup(a)
	a.lookup = nil
	if len(sels) == 0 {
		return
	}
	var err error
	if a.mode == modePopup {
		err = a.popup.InsertSelections(a.popRow, sels, nil)
	} else if a.detail != nil {
		err = a.detail.InsertSelections(a.detRow, sels)
	}
	if err != nil {
		a.status = err.Error()
	}
}

// modeDetailOrPopup picks where focus returns after the overlay closes.
func modeDetailOrPopup(a *App) viewMode {
	if a.popup != nil {
		return modePopup
	}
	if a.detail != nil {
		return modeDetail
	}
	return modeSummary
}

func (a *App) insertRow() {
	switch a.mode {
	case modeSummary:
		a.core.State.Summary().InsertRow(a.sumRow)
	case modeDetail:
		a.detail.InsertRow(a.detRow)
	case modePopup:
		a.popup.InsertRow(a.popRow)
	}
}

func (a *App) deleteRow() {
	switch a.mode {
	case modeSummary:
		a.core.State.Summary().DeleteRow(a.sumRow)
	case modeDetail:
		a.detail.DeleteRow(a.detRow)
	case modePopup:
		a.popup.DeleteRow(a.popRow)
	}
}

func (a *App) undo() {
	switch a.mode {
	case modePopup:
		a.popup.Undo()
	case modeLighting:
		a.lighting.Undo()
	default:
		a.core.State.Undo().Pop()
	}
}

// copy mirrors the cell or row to the OS clipboard alongside the internal
// one; cut additionally clears the source.
func (a *App) copy(cut bool) {
	clip := a.core.Clipboard
	switch a.mode {
	case modeDetail:
		col := model.DetailCol(a.detCol)
		if cut {
			a.detail.Cut(a.detRow, col, clip)
		} else {
			a.detail.Copy(a.detRow, col, clip)
		}
	case modeSummary:
		col := model.SummaryCol(a.sumCol)
		if cut {
			a.core.State.Summary().Cut(a.sumRow, col, clip)
		} else {
			a.core.State.Summary().Copy(a.sumRow, col, clip)
		}
	case modePopup:
		col := model.SubDetailCol(a.popCol)
		if cut {
			a.popup.CutCell(a.popRow, col, clip)
		} else {
			a.popup.CopyCell(a.popRow, col, clip)
		}
	case modeLighting:
		if a.lightOnMaster {
			clip.SetCell(a.lighting.Masters()[a.lighting.Focused()].Formula)
			if cut {
				a.lighting.SetMasterFormula(a.lighting.Focused(), "")
			}
		} else if det := a.lighting.Details(); a.lightRow < len(det) {
			col := model.SubDetailCol(a.lightCol)
			clip.SetCell(det[a.lightRow].Cell(col))
			if cut {
				a.lighting.SetDetailCell(a.lightRow, col, "")
			}
		}
	}
	if a.core.Clipboard.Kind() == sheet.ClipCell {
		if err := clipboard.WriteAll(a.core.Clipboard.Cell()); err != nil {
			debug.Log("os clipboard unavailable: %v", err)
		}
	}
}

func (a *App) paste() {
	clip := a.core.Clipboard
	switch a.mode {
	case modeDetail:
		a.detail.Paste(a.detRow, model.DetailCol(a.detCol), clip)
	case modeSummary:
		a.core.State.Summary().Paste(a.sumRow, model.SummaryCol(a.sumCol), clip)
	case modePopup:
		a.popup.PasteCell(a.popRow, model.SubDetailCol(a.popCol), clip)
	case modeLighting:
		if clip.Kind() != sheet.ClipCell {
			return
		}
		if a.lightOnMaster {
			a.lighting.SetMasterFormula(a.lighting.Focused(), clip.Cell())
		} else {
			a.lighting.SetDetailCell(a.lightRow, model.SubDetailCol(a.lightCol), clip.Cell())
		}
	}
}

func (a *App) copyBlock() {
	if a.popup == nil || !a.blockSelect {
		return
	}
	from, to := min(a.blockStart, a.popRow), max(a.blockStart, a.popRow)+1
	a.popup.CopyRows(from, to, a.core.Clipboard)
	a.blockSelect = false
}

func (a *App) savePiece() {
	if a.popup == nil || a.core.Clipboard.Kind() != sheet.ClipSubDetailRows {
		return
	}
	path := filepath.Join(a.core.Chunks.Root(), "pieces", chunkstore.Sanitize(a.popup.Item())+chunkstore.PieceExt)
	if err := a.core.Chunks.SavePiece(path, a.core.Clipboard.SubDetailRows()); err != nil {
		a.status = err.Error()
		return
	}
	a.status = "piece saved"
}

func (a *App) startEdit(initial string) {
	a.editor.SetValue(initial)
	a.editor.Focus()
	a.editing = true
}

// moveCursor handles plain navigation keys outside the chord table.
func (a *App) moveCursor(msg tea.KeyMsg) {
	var row, col *int
	var maxRow, maxCol int
	switch a.mode {
	case modeSummary:
		row, col = &a.sumRow, &a.sumCol
		maxRow, maxCol = a.core.State.Summary().Len()-1, model.SummaryColCount-1
	case modeDetail:
		if a.detail == nil {
			return
		}
		row, col = &a.detRow, &a.detCol
		maxRow, maxCol = a.detail.Len(), model.DetailColCount-1
	case modePopup:
		row, col = &a.popRow, &a.popCol
		maxRow, maxCol = a.popup.Len()-1, model.SubDetailColCount-1
	case modeLighting:
		row, col = &a.lightRow, &a.lightCol
		maxRow, maxCol = len(a.lighting.Details())-1, model.SubDetailColCount-1
		if msg.String() == "left" || msg.String() == "right" {
			a.lightOnMaster = !a.lightOnMaster
			return
		}
	default:
		return
	}

	switch msg.Type {
	case tea.KeyUp:
		if *row > 0 {
			*row--
		}
	case tea.KeyDown:
		if *row < maxRow {
			*row++
		}
	case tea.KeyLeft:
		if *col > 0 {
			*col--
		}
	case tea.KeyRight:
		if *col < maxCol {
			*col++
		}
	case tea.KeyRunes, tea.KeySpace:
		a.startEdit("")
		var cmd tea.Cmd
		a.editor, cmd = a.editor.Update(msg)
		_ = cmd
	}
}

// View implements tea.Model.
func (a *App) View() string {
	var body string
	switch a.mode {
	case modeSummary:
		body = FocusedPanelStyle.Render(renderSummary(a.core.State.Summary(), a.sumRow, a.sumCol, true))
	case modeDetail:
		body = FocusedPanelStyle.Render(renderDetail(a.detail, a.detRow, a.detCol, true))
	case modePopup:
		back := PanelStyle.Render(renderDetail(a.detail, a.detRow, a.detCol, false))
		front := FocusedPanelStyle.Render(renderSubDetail(a.popup.Rows(), a.popRow, a.popCol, a.blockStart, a.blockSelect))
		body = lipgloss.JoinVertical(lipgloss.Left, back, front)
	case modeLighting:
		body = renderLighting(a.lighting, a.lightOnMaster, a.lightRow, a.lightCol)
	case modeLookup:
		body = a.lookup.View(a.width)
	}

	var status strings.Builder
	status.WriteString(StatusStyle.Render(chordLegend(a.context())))
	if a.editing {
		status.WriteString("  ")
		status.WriteString(a.editor.View())
	}
	if a.status != "" {
		status.WriteString("  ")
		status.WriteString(StatusStyle.Render(a.status))
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, status.String())
}
