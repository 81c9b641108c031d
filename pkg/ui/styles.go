package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sanchul-dev/sanchul/pkg/classify"
)

// Adaptive colors for light and dark terminals. The marker colors follow
// the estimator's long-standing palette: dark blue for composite work
// items, red for unknown codes, olive for rows with no code at all.
var (
	ColorBg          = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}
	ColorBgHighlight = lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"}
	ColorText        = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorSubtext     = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorMuted       = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}
	ColorPrimary     = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}

	ColorMarkerIlwi    = lipgloss.AdaptiveColor{Light: "#00008B", Dark: "#6699FF"}
	ColorMarkerUnknown = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}
	ColorMarkerNoCode  = lipgloss.AdaptiveColor{Light: "#808000", Dark: "#F1FA8C"}
)

var (
	// HeaderStyle renders column headers.
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSubtext).
			Background(ColorBg)

	// CellStyle is the default grid cell.
	CellStyle = lipgloss.NewStyle().Foreground(ColorText)

	// SelectedCellStyle marks the cursor cell.
	SelectedCellStyle = lipgloss.NewStyle().
				Foreground(ColorText).
				Background(ColorBgHighlight).
				Bold(true)

	// PanelStyle wraps sheets and popups.
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBgHighlight)

	// FocusedPanelStyle marks the pane holding the cursor.
	FocusedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary)

	// StatusStyle renders the bottom status line.
	StatusStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	markerIlwiStyle    = lipgloss.NewStyle().Foreground(ColorMarkerIlwi)
	markerUnknownStyle = lipgloss.NewStyle().Foreground(ColorMarkerUnknown)
	markerNoCodeStyle  = lipgloss.NewStyle().Foreground(ColorMarkerNoCode)
)

// MarkerStyle maps the advisory color class of a marker to a lipgloss
// style.
func MarkerStyle(c classify.ColorClass) lipgloss.Style {
	switch c {
	case classify.ColorDarkBlue:
		return markerIlwiStyle
	case classify.ColorRed:
		return markerUnknownStyle
	case classify.ColorOlive:
		return markerNoCodeStyle
	default:
		return CellStyle
	}
}
