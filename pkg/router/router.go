// Package router binds key chords to core sheet operations without knowing
// any widget toolkit. The host translates its input events to Chords and
// Contexts, dispatches, and executes the resulting operation through the
// Host callbacks. One popup per item is enforced here.
package router

import (
	"strconv"
	"strings"
)

// Chord is a normalized key chord, lowercase with "+"-joined modifiers.
type Chord string

const (
	ChordTab   Chord = "tab"
	ChordEnter Chord = "enter"
	ChordEsc   Chord = "esc"
	ChordCtrlN Chord = "ctrl+n"
	ChordCtrlY Chord = "ctrl+y"
	ChordCtrlZ Chord = "ctrl+z"
	ChordCtrlC Chord = "ctrl+c"
	ChordCtrlX Chord = "ctrl+x"
	ChordCtrlV Chord = "ctrl+v"
	ChordF3    Chord = "f3"
	ChordF4    Chord = "f4"
	ChordF5    Chord = "f5"
	ChordF6    Chord = "f6"
	ChordF7    Chord = "f7"
	ChordF8    Chord = "f8"
	ChordF9    Chord = "f9"
)

// CtrlDigit reports whether the chord is ctrl+1 .. ctrl+9 and returns the
// digit.
func CtrlDigit(c Chord) (int, bool) {
	s := string(c)
	if !strings.HasPrefix(s, "ctrl+") || len(s) != len("ctrl+")+1 {
		return 0, false
	}
	n, err := strconv.Atoi(s[len("ctrl+"):])
	if err != nil || n < 1 || n > 9 {
		return 0, false
	}
	return n, true
}

// Context tags where the cursor currently is. Column-sensitive bindings get
// their own tags so the keymap stays a flat table.
type Context int

const (
	// ContextSummaryCategory is a category cell of the summary sheet.
	ContextSummaryCategory Context = iota
	// ContextDetailText is an item or formula cell of a detail sheet.
	ContextDetailText
	// ContextDetailGrid is any other detail sheet cell.
	ContextDetailGrid
	// ContextSubDetail is a unit-price or lighting popup.
	ContextSubDetail
)

// Op is an abstract operation the host executes.
type Op int

const (
	OpNone Op = iota
	// OpOpenLookup opens the reference-lookup overlay for the current cell.
	OpOpenLookup
	// OpOpenCategory opens the detail sheet (or persisted lighting payload)
	// behind a summary category row.
	OpOpenCategory
	// OpInsertRow inserts a blank row above the cursor.
	OpInsertRow
	// OpDeleteRow deletes the cursor row, appending a blank row at the end.
	OpDeleteRow
	// OpUndo pops the active undo stack.
	OpUndo
	OpCopy
	OpCut
	OpPaste
	// OpToggleSubDetail opens or closes the unit-price popup for the row.
	OpToggleSubDetail
	// OpFormulaPlaceholder writes the "1@" pending marker into the formula
	// cell and advances.
	OpFormulaPlaceholder
	// OpToggleBlockSelect toggles block-selection mode in a popup.
	OpToggleBlockSelect
	// OpCopyBlock copies the block selection to the internal clipboard.
	OpCopyBlock
	// OpPasteBlock pastes the internal clipboard at the cursor row.
	OpPasteBlock
	// OpSavePiece saves the block selection to a piece file.
	OpSavePiece
	// OpEnterFormula runs the continuous-input wrap rule.
	OpEnterFormula
	// OpExportPopup rolls the popup up into its parent detail row. The popup
	// stays open when the roll-up fails so the bad cell can be fixed.
	OpExportPopup
	// OpClosePopup commits, persists and closes the active popup without the
	// roll-up.
	OpClosePopup
	// OpSectionSum is ctrl+1..9; the digit rides along in Dispatch.
	OpSectionSum
)

type binding struct {
	chord Chord
	ctx   Context
}

// contextual holds the bindings whose meaning depends on where the cursor
// is; anyChord holds the ones valid everywhere.
var contextual = map[binding]Op{
	{ChordTab, ContextDetailText}:      OpOpenLookup,
	{ChordTab, ContextSummaryCategory}: OpOpenCategory,
	{ChordEnter, ContextDetailText}:    OpEnterFormula,
	{ChordF3, ContextDetailText}:       OpToggleSubDetail,
	{ChordF3, ContextDetailGrid}:       OpToggleSubDetail,
	{ChordF4, ContextDetailText}:       OpFormulaPlaceholder,
	{ChordF4, ContextDetailGrid}:       OpFormulaPlaceholder,
	{ChordF5, ContextSubDetail}:        OpToggleBlockSelect,
	{ChordF6, ContextSubDetail}:        OpCopyBlock,
	{ChordF7, ContextSubDetail}:        OpPasteBlock,
	{ChordF9, ContextSubDetail}:        OpSavePiece,
	{ChordF8, ContextSubDetail}:        OpExportPopup,
	{ChordEsc, ContextSubDetail}:       OpClosePopup,
}

var anyChord = map[Chord]Op{
	ChordCtrlN: OpInsertRow,
	ChordCtrlY: OpDeleteRow,
	ChordCtrlZ: OpUndo,
	ChordCtrlC: OpCopy,
	ChordCtrlX: OpCut,
	ChordCtrlV: OpPaste,
}

// Lookup resolves a chord in a context. Ctrl+digit resolves to OpSectionSum
// with the digit returned separately; it only binds on a detail sheet, where
// the section rows it sums actually exist.
func Lookup(c Chord, ctx Context) (op Op, digit int, ok bool) {
	if n, isDigit := CtrlDigit(c); isDigit {
		if ctx == ContextDetailText || ctx == ContextDetailGrid {
			return OpSectionSum, n, true
		}
		return OpNone, 0, false
	}
	if op, ok := contextual[binding{c, ctx}]; ok {
		return op, 0, true
	}
	if op, ok := anyChord[c]; ok {
		return op, 0, true
	}
	return OpNone, 0, false
}

// Host executes resolved operations. Hosts back these with the sheet models
// and their own cursor and overlay state.
type Host interface {
	// CommitEditor commits any active in-cell editor. Called before the
	// lookup overlay or a category sheet opens so the pending text lands.
	CommitEditor()
	Execute(op Op, digit int)
}

// Router dispatches chords and enforces one open popup per item key.
type Router struct {
	open map[string]bool
}

// New returns a router with no open popups.
func New() *Router {
	return &Router{open: make(map[string]bool)}
}

// Dispatch resolves the chord and hands the operation to the host. Tab
// commits the active editor before its operation runs. Returns false when
// the chord is unbound in this context.
func (r *Router) Dispatch(c Chord, ctx Context, h Host) bool {
	op, digit, ok := Lookup(c, ctx)
	if !ok {
		return false
	}
	if c == ChordTab {
		h.CommitEditor()
	}
	h.Execute(op, digit)
	return true
}

// OpenPopup records a popup for the item key. Returns false when one is
// already open, in which case the host must focus the existing popup
// instead of opening a second.
func (r *Router) OpenPopup(item string) bool {
	if r.open[item] {
		return false
	}
	r.open[item] = true
	return true
}

// ClosePopup releases the popup slot for the item key.
func (r *Router) ClosePopup(item string) { delete(r.open, item) }

// PopupOpen reports whether a popup is open for the item key.
func (r *Router) PopupOpen(item string) bool { return r.open[item] }
