package sheet

import "github.com/sanchul-dev/sanchul/pkg/model"

// ClipKind identifies what the internal clipboard currently holds.
type ClipKind int

const (
	// ClipEmpty means nothing has been copied yet.
	ClipEmpty ClipKind = iota
	// ClipCell holds a single cell's text.
	ClipCell
	// ClipDetailRows holds whole detail rows (NUM-column copy).
	ClipDetailRows
	// ClipSubDetailRows holds sub-detail rows (block selection, F6).
	ClipSubDetailRows
)

// Clipboard is the process-internal clipboard shared by all sheets through
// the core context. It is distinct from the OS clipboard, which hosts feed
// from it if they choose.
type Clipboard struct {
	kind       ClipKind
	cell       string
	detailRows []model.DetailRow
	subRows    []model.SubDetailRow
}

// Kind returns what the clipboard holds.
func (c *Clipboard) Kind() ClipKind { return c.kind }

// SetCell stores a single cell value.
func (c *Clipboard) SetCell(text string) {
	c.kind = ClipCell
	c.cell = text
}

// Cell returns the stored cell text, empty when the clipboard holds rows.
func (c *Clipboard) Cell() string {
	if c.kind != ClipCell {
		return ""
	}
	return c.cell
}

// SetDetailRows stores copies of whole detail rows.
func (c *Clipboard) SetDetailRows(rows []model.DetailRow) {
	c.kind = ClipDetailRows
	c.detailRows = append([]model.DetailRow(nil), rows...)
}

// DetailRows returns copies of the stored detail rows.
func (c *Clipboard) DetailRows() []model.DetailRow {
	return append([]model.DetailRow(nil), c.detailRows...)
}

// SetSubDetailRows stores copies of sub-detail rows.
func (c *Clipboard) SetSubDetailRows(rows []model.SubDetailRow) {
	c.kind = ClipSubDetailRows
	c.subRows = append([]model.SubDetailRow(nil), rows...)
}

// SubDetailRows returns copies of the stored sub-detail rows.
func (c *Clipboard) SubDetailRows() []model.SubDetailRow {
	return append([]model.SubDetailRow(nil), c.subRows...)
}

// Clear empties the clipboard.
func (c *Clipboard) Clear() {
	*c = Clipboard{}
}
