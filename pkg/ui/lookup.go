package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sanchul-dev/sanchul/pkg/model"
	"github.com/sanchul-dev/sanchul/pkg/refdict"
	"github.com/sanchul-dev/sanchul/pkg/sheet"
)

// lookupPhase is the overlay's two-step input: search the dictionary, then
// type a quantity for the highlighted hit.
type lookupPhase int

const (
	phaseSearch lookupPhase = iota
	phaseQuantity
)

// lookupOverlay is the reference-lookup popup: substring search over the
// dictionary with a cursor stepping through hits, collecting (entry,
// quantity) selections until the user closes it.
type lookupOverlay struct {
	dict    *refdict.Dictionary
	input   textinput.Model
	phase   lookupPhase
	hits    []int
	cursor  int
	picked  []model.ReferenceSelection
	session *sheet.QuantitySession
}

func newLookupOverlay(dict *refdict.Dictionary) *lookupOverlay {
	in := textinput.New()
	in.Placeholder = "품명 검색"
	in.Focus()
	return &lookupOverlay{
		dict:    dict,
		input:   in,
		session: sheet.NewQuantitySession(),
	}
}

// Update handles one key. done reports that the overlay closed; the caller
// then reads Selections.
func (o *lookupOverlay) Update(msg tea.KeyMsg) (done bool) {
	switch msg.Type {
	case tea.KeyEsc:
		if o.phase == phaseQuantity {
			o.phase = phaseSearch
			o.input.SetValue("")
			o.input.Placeholder = "품명 검색"
			return false
		}
		return true
	case tea.KeyUp:
		if o.cursor > 0 {
			o.cursor--
		}
		return false
	case tea.KeyDown:
		if o.cursor < len(o.hits)-1 {
			o.cursor++
		}
		return false
	case tea.KeyEnter:
		if o.phase == phaseSearch {
			if len(o.hits) > 0 {
				o.phase = phaseQuantity
				o.input.SetValue("")
				o.input.Placeholder = "수량"
			}
			return false
		}
		o.pick(o.input.Value())
		o.phase = phaseSearch
		o.input.SetValue("")
		o.input.Placeholder = "품명 검색"
		return false
	}

	var cmd tea.Cmd
	o.input, cmd = o.input.Update(msg)
	_ = cmd
	if o.phase == phaseSearch {
		o.hits = o.dict.Search(o.input.Value())
		if o.cursor >= len(o.hits) {
			o.cursor = 0
		}
	}
	return false
}

// pick records the highlighted entry with the typed quantity, accumulating
// repeated picks of the same entry through the session.
func (o *lookupOverlay) pick(qty string) {
	if o.cursor >= len(o.hits) {
		return
	}
	e := o.dict.Entry(o.hits[o.cursor])
	qty = o.session.Accumulate(model.ManualMappingKey(e.Name, e.Spec), qty)
	o.picked = append(o.picked, model.ReferenceSelection{
		EntryName:    e.Name,
		EntrySpec:    e.Spec,
		EntryCode:    e.Code,
		EntryUnit:    e.Unit,
		QuantityText: qty,
	})
}

// Selections returns everything picked during this overlay session.
func (o *lookupOverlay) Selections() []model.ReferenceSelection { return o.picked }

// View renders the overlay panel.
func (o *lookupOverlay) View(width int) string {
	var b strings.Builder
	b.WriteString(o.input.View())
	b.WriteString("\n")

	const maxRows = 12
	start := 0
	if o.cursor >= maxRows {
		start = o.cursor - maxRows + 1
	}
	for i := start; i < len(o.hits) && i < start+maxRows; i++ {
		e := o.dict.Entry(o.hits[i])
		line := fmt.Sprintf("%-8s %s %s [%s]", e.Code, e.Name, e.Spec, e.Unit)
		if i == o.cursor {
			line = SelectedCellStyle.Render(line)
		} else {
			line = CellStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if len(o.picked) > 0 {
		b.WriteString(StatusStyle.Render(fmt.Sprintf("%d selected", len(o.picked))))
	}
	return FocusedPanelStyle.Width(min(width-4, 72)).Render(b.String())
}
