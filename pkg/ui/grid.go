package ui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/sanchul-dev/sanchul/pkg/classify"
	"github.com/sanchul-dev/sanchul/pkg/model"
	"github.com/sanchul-dev/sanchul/pkg/sheet"
)

var summaryHeaders = []string{"", "구분", "공종번호", "공종", "단위", "층고", "반자", "수량", "비고"}
var summaryWidths = []int{2, 8, 8, 24, 6, 6, 6, 8, 10}

var detailHeaders = []string{"NO", "구분", "FROM", "TO", "회로", "품명", "산출식", "계", "단위", "비고"}
var detailWidths = []int{4, 6, 8, 8, 6, 20, 42, 10, 6, 8}

var subDetailHeaders = []string{"W", "CODE", "산출목록", "단위수식", "단위계"}
var subDetailWidths = []int{4, 10, 28, 20, 10}

// pad clips or right-pads a cell to its column width in display cells.
func pad(s string, w int) string {
	if runewidth.StringWidth(s) > w {
		return runewidth.Truncate(s, w, "…")
	}
	return s + strings.Repeat(" ", w-runewidth.StringWidth(s))
}

func headerLine(headers []string, widths []int) string {
	parts := make([]string, len(headers))
	for i, h := range headers {
		parts[i] = pad(h, widths[i])
	}
	return HeaderStyle.Render(strings.Join(parts, " "))
}

// renderSummary draws the summary sheet with the cursor on (curRow, curCol).
func renderSummary(m *sheet.SummaryModel, curRow, curCol int, focused bool) string {
	var b strings.Builder
	b.WriteString(headerLine(summaryHeaders, summaryWidths))
	b.WriteString("\n")
	for i := 0; i < m.Len(); i++ {
		r := m.Row(i)
		for c := 0; c < model.SummaryColCount; c++ {
			cell := pad(r.Cell(model.SummaryCol(c)), summaryWidths[c])
			if focused && i == curRow && c == curCol {
				cell = SelectedCellStyle.Render(cell)
			} else {
				cell = CellStyle.Render(cell)
			}
			b.WriteString(cell)
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderDetail draws a detail sheet.
func renderDetail(m *sheet.DetailModel, curRow, curCol int, focused bool) string {
	var b strings.Builder
	b.WriteString(headerLine(detailHeaders, detailWidths))
	b.WriteString("\n")
	for i := 0; i < m.Len(); i++ {
		r := m.Row(i)
		for c := 0; c < model.DetailColCount; c++ {
			cell := pad(r.Cell(model.DetailCol(c)), detailWidths[c])
			if focused && i == curRow && c == curCol {
				cell = SelectedCellStyle.Render(cell)
			} else {
				cell = CellStyle.Render(cell)
			}
			b.WriteString(cell)
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderSubDetail draws a unit-price popup's rows, coloring each row by its
// marker class.
func renderSubDetail(rows []model.SubDetailRow, curRow, curCol int, blockStart int, blockSelect bool) string {
	var b strings.Builder
	b.WriteString(headerLine(subDetailHeaders, subDetailWidths))
	b.WriteString("\n")
	for i, r := range rows {
		style := MarkerStyle(classify.MarkerColor(r.Mark))
		inBlock := blockSelect && i >= min(blockStart, curRow) && i <= max(blockStart, curRow)
		for c := 0; c < model.SubDetailColCount; c++ {
			cell := pad(r.Cell(model.SubDetailCol(c)), subDetailWidths[c])
			switch {
			case i == curRow && c == curCol:
				cell = SelectedCellStyle.Render(cell)
			case inBlock:
				cell = SelectedCellStyle.Render(cell)
			default:
				cell = style.Render(cell)
			}
			b.WriteString(cell)
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderLighting draws the two-pane lighting popup.
func renderLighting(m *sheet.LightingModel, masterFocused bool, curRow, curCol int) string {
	var mb strings.Builder
	mb.WriteString(headerLine([]string{"분류", "TYPE", "산출식", "계"}, []int{12, 12, 20, 10}))
	mb.WriteString("\n")
	for i, mr := range m.Masters() {
		line := pad(mr.Category, 12) + " " + pad(mr.Name, 12) + " " + pad(mr.Formula, 20) + " " + pad(mr.Total, 10)
		if i == m.Focused() {
			line = SelectedCellStyle.Render(line)
		} else {
			line = CellStyle.Render(line)
		}
		mb.WriteString(line)
		mb.WriteString("\n")
	}

	master := PanelStyle.Render(mb.String())
	detail := PanelStyle.Render(renderSubDetail(m.Details(), curRow, curCol, 0, false))
	if masterFocused {
		master = FocusedPanelStyle.Render(mb.String())
	} else {
		detail = FocusedPanelStyle.Render(renderSubDetail(m.Details(), curRow, curCol, 0, false))
	}
	return master + "\n" + detail
}
