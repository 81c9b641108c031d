package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sanchul-dev/sanchul/pkg/router"
)

// ChordFor translates a bubbletea key message into a router chord.
// Unbound keys translate to an empty chord.
func ChordFor(msg tea.KeyMsg) router.Chord {
	switch msg.Type {
	case tea.KeyTab:
		return router.ChordTab
	case tea.KeyEnter:
		return router.ChordEnter
	case tea.KeyEsc:
		return router.ChordEsc
	case tea.KeyF3:
		return router.ChordF3
	case tea.KeyF4:
		return router.ChordF4
	case tea.KeyF5:
		return router.ChordF5
	case tea.KeyF6:
		return router.ChordF6
	case tea.KeyF7:
		return router.ChordF7
	case tea.KeyF8:
		return router.ChordF8
	case tea.KeyF9:
		return router.ChordF9
	}

	s := msg.String()
	if strings.HasPrefix(s, "ctrl+") {
		rest := s[len("ctrl+"):]
		switch rest {
		case "n", "y", "z", "c", "x", "v":
			return router.Chord(s)
		}
		if len(rest) == 1 && rest[0] >= '1' && rest[0] <= '9' {
			return router.Chord(s)
		}
	}
	return ""
}

// chordLegend is the help line shown in the status bar.
func chordLegend(ctx router.Context) string {
	switch ctx {
	case router.ContextSubDetail:
		return "F5 block  F6 copy  F7 paste  F8 export  F9 piece  Esc close"
	case router.ContextSummaryCategory:
		return "Tab open sheet  Ctrl+N insert  Ctrl+Y delete  Ctrl+Z undo"
	default:
		return fmt.Sprintf("Tab lookup  Enter continue  F3 sub-detail  F4 pending  Ctrl+1-9 %s", "접속선")
	}
}
