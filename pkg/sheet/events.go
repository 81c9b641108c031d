// Package sheet implements the estimation sheet models: the summary sheet
// (갑지), the per-category detail sheets (을지) and the sub-detail sheets
// behind them (산출일위표 and the lighting-type variant), together with the
// bounded undo stack and the internal clipboard they share.
//
// The models hold no UI vocabulary. Hosts subscribe to change events and
// translate key chords through the router package; the models themselves only
// mutate rows, recompute totals and schedule persistence.
package sheet

// ChangeKind identifies what a model change event describes.
type ChangeKind int

const (
	// CellChanged reports a single cell edit.
	CellChanged ChangeKind = iota
	// RowInserted reports a structural row insertion.
	RowInserted
	// RowDeleted reports a structural row deletion.
	RowDeleted
	// TotalsChanged reports a recompute of derived totals.
	TotalsChanged
	// SheetReloaded reports a wholesale row replacement (load, paste of rows).
	SheetReloaded
	// Exported reports a 1식 export back into a parent row.
	Exported
)

// Change is one model change notification.
type Change struct {
	Kind ChangeKind
	Row  int
	Col  int
}

// notifier is the embedded event fan-out shared by every model.
type notifier struct {
	subs []func(Change)
}

// Subscribe registers fn for future change events. Subscribers run
// synchronously on the mutating call, in registration order.
func (n *notifier) Subscribe(fn func(Change)) {
	n.subs = append(n.subs, fn)
}

func (n *notifier) emit(c Change) {
	for _, fn := range n.subs {
		fn(c)
	}
}
