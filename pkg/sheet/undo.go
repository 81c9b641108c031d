package sheet

// UndoAction identifies the kind of structural edit an undo record reverses.
type UndoAction int

const (
	// UndoInsert reverses to a delete of the inserted row.
	UndoInsert UndoAction = iota
	// UndoDelete reverses to re-insertion of the saved row payload.
	UndoDelete
	// UndoEdit reverses to an edit restoring the prior cell value.
	UndoEdit
)

// Undo depth limits.
const (
	// GlobalUndoDepth bounds the shared undo stack across the main sheets.
	GlobalUndoDepth = 50
	// PopupUndoDepth bounds each sub-detail popup's private stack.
	PopupUndoDepth = 20
)

// undoTarget is implemented by every model so records can be replayed
// against the model that produced them.
type undoTarget interface {
	undoInsert(row int)
	undoDelete(row int, cells []string)
	undoEdit(row, col int, prev string)
}

// UndoRecord is one reversible structural edit.
type UndoRecord struct {
	target undoTarget
	Action UndoAction
	Row    int
	Col    int
	Cells  []string // saved row payload for UndoDelete
	Prev   string   // saved cell value for UndoEdit
}

// UndoStack is a bounded LIFO of undo records. When the bound is reached the
// oldest record is discarded. Popping an empty stack is a no-op.
type UndoStack struct {
	records []UndoRecord
	max     int
}

// NewUndoStack returns a stack bounded at max records. max <= 0 falls back
// to GlobalUndoDepth.
func NewUndoStack(max int) *UndoStack {
	if max <= 0 {
		max = GlobalUndoDepth
	}
	return &UndoStack{max: max}
}

// Push records a reversible edit, evicting the oldest record at capacity.
func (s *UndoStack) Push(rec UndoRecord) {
	if len(s.records) >= s.max {
		copy(s.records, s.records[1:])
		s.records = s.records[:len(s.records)-1]
	}
	s.records = append(s.records, rec)
}

// Pop reverses the most recent edit against its model. Returns false when
// the stack is empty.
func (s *UndoStack) Pop() bool {
	if len(s.records) == 0 {
		return false
	}
	rec := s.records[len(s.records)-1]
	s.records = s.records[:len(s.records)-1]

	switch rec.Action {
	case UndoInsert:
		rec.target.undoInsert(rec.Row)
	case UndoDelete:
		rec.target.undoDelete(rec.Row, rec.Cells)
	case UndoEdit:
		rec.target.undoEdit(rec.Row, rec.Col, rec.Prev)
	}
	return true
}

// Len returns the number of stored records.
func (s *UndoStack) Len() int { return len(s.records) }

// Clear drops all records.
func (s *UndoStack) Clear() { s.records = s.records[:0] }
