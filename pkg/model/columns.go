package model

// Column indices for the summary sheet (갑지), left to right.
// The order is part of the external contract and must not change.
type SummaryCol int

const (
	SummaryColNum SummaryCol = iota // marker column
	SummaryColGubun
	SummaryColGongjongNum // hierarchical sequence
	SummaryColGongjong    // category name
	SummaryColUnit
	SummaryColHeight
	SummaryColCeiling
	SummaryColQty
	SummaryColRemark
	summaryColCount
)

// SummaryColCount is the number of summary sheet columns.
const SummaryColCount = int(summaryColCount)

// Column indices for the detail sheet (을지).
type DetailCol int

const (
	DetailColNum DetailCol = iota
	DetailColGubun
	DetailColFrom
	DetailColTo
	DetailColCircuit
	DetailColItem
	DetailColFormula
	DetailColTotal
	DetailColUnit
	DetailColRemark
	detailColCount
)

// DetailColCount is the number of detail sheet columns.
const DetailColCount = int(detailColCount)

// Column indices for the unit-price sub-detail sheet (산출일위표).
type SubDetailCol int

const (
	SubDetailColMark SubDetailCol = iota
	SubDetailColCode
	SubDetailColList
	SubDetailColUnitFormula
	SubDetailColUnitTotal
	subDetailColCount
)

// SubDetailColCount is the number of sub-detail columns.
const SubDetailColCount = int(subDetailColCount)

// RenderAs describes how a host should materialize a cell: plain text or an
// embedded action button. The core never renders; it only tags cells.
type RenderAs int

const (
	RenderText RenderAs = iota
	RenderActionReorder
	RenderActionOpenDetail
)

// Presentation constants. These are advisory for hosts; core logic never
// depends on them.
const (
	// RowHeight is the advisory grid row height in display units.
	RowHeight = 22
	// DefaultBlankSubDetailRows is the number of blank rows a fresh
	// sub-detail sheet starts with.
	DefaultBlankSubDetailRows = 30
)

// Cell reads the named column of a summary row.
func (r *SummaryRow) Cell(col SummaryCol) string {
	switch col {
	case SummaryColNum:
		return r.Marker
	case SummaryColGubun:
		return r.Category
	case SummaryColGongjongNum:
		return r.Sequence
	case SummaryColGongjong:
		return r.Name
	case SummaryColUnit:
		return r.Unit
	case SummaryColHeight:
		return r.Height
	case SummaryColCeiling:
		return r.Ceiling
	case SummaryColQty:
		return r.Quantity
	case SummaryColRemark:
		return r.Remark
	}
	return ""
}

// SetCell writes the named column of a summary row.
func (r *SummaryRow) SetCell(col SummaryCol, text string) {
	switch col {
	case SummaryColNum:
		r.Marker = text
	case SummaryColGubun:
		r.Category = text
	case SummaryColGongjongNum:
		r.Sequence = text
	case SummaryColGongjong:
		r.Name = text
	case SummaryColUnit:
		r.Unit = text
	case SummaryColHeight:
		r.Height = text
	case SummaryColCeiling:
		r.Ceiling = text
	case SummaryColQty:
		r.Quantity = text
	case SummaryColRemark:
		r.Remark = text
	}
}

// Cell reads the named column of a detail row.
func (r *DetailRow) Cell(col DetailCol) string {
	switch col {
	case DetailColNum:
		return r.Num
	case DetailColGubun:
		return r.Gubun
	case DetailColFrom:
		return r.From
	case DetailColTo:
		return r.To
	case DetailColCircuit:
		return r.Circuit
	case DetailColItem:
		return r.Item
	case DetailColFormula:
		return r.Formula
	case DetailColTotal:
		return r.Total
	case DetailColUnit:
		return r.Unit
	case DetailColRemark:
		return r.Remark
	}
	return ""
}

// SetCell writes the named column of a detail row.
func (r *DetailRow) SetCell(col DetailCol, text string) {
	switch col {
	case DetailColNum:
		r.Num = text
	case DetailColGubun:
		r.Gubun = text
	case DetailColFrom:
		r.From = text
	case DetailColTo:
		r.To = text
	case DetailColCircuit:
		r.Circuit = text
	case DetailColItem:
		r.Item = text
	case DetailColFormula:
		r.Formula = text
	case DetailColTotal:
		r.Total = text
	case DetailColUnit:
		r.Unit = text
	case DetailColRemark:
		r.Remark = text
	}
}

// Cell reads the named column of a sub-detail row.
func (r *SubDetailRow) Cell(col SubDetailCol) string {
	switch col {
	case SubDetailColMark:
		return string(r.Mark)
	case SubDetailColCode:
		return r.Code
	case SubDetailColList:
		return r.List
	case SubDetailColUnitFormula:
		return r.UnitFormula
	case SubDetailColUnitTotal:
		return r.UnitTotal
	}
	return ""
}

// SetCell writes the named column of a sub-detail row.
func (r *SubDetailRow) SetCell(col SubDetailCol, text string) {
	switch col {
	case SubDetailColMark:
		r.Mark = Marker(text)
	case SubDetailColCode:
		r.Code = text
	case SubDetailColList:
		r.List = text
	case SubDetailColUnitFormula:
		r.UnitFormula = text
	case SubDetailColUnitTotal:
		r.UnitTotal = text
	}
}
