// Package model defines the core data types for the sanchul estimation sheets:
// reference dictionary entries, summary rows (갑지), detail rows (을지) and
// sub-detail rows (산출일위표), together with the marker alphabet and the
// column schemas the sheets expose to hosts.
package model

import (
	"fmt"
	"strings"
)

// Marker is the W-marker tag carried by every sub-detail row. It encodes
// (code present?, code known to the dictionary?, ilwi?) in two to three
// characters. The empty marker is reserved for the header/product-name row.
type Marker string

const (
	// MarkerNone is the empty marker used on header rows.
	MarkerNone Marker = ""
	// MarkerNoCode marks a row with no code at all.
	MarkerNoCode Marker = "**"
	// MarkerKnown marks a row whose code exists in the reference dictionary.
	MarkerKnown Marker = "--"
	// MarkerKnownIlwi marks a known composite (일위대가) code.
	MarkerKnownIlwi Marker = "-i-"
	// MarkerUnknown marks a row whose code misses the dictionary.
	MarkerUnknown Marker = "~*"
	// MarkerUnknownIlwi marks an unknown composite code.
	MarkerUnknownIlwi Marker = "~i"
	// MarkerIlwi is the legacy single-character ilwi tag still accepted on
	// load for chunks written by older versions.
	MarkerIlwi Marker = "i"
)

// ValidMarkers lists every marker value that may appear in persisted chunks.
var ValidMarkers = []Marker{
	MarkerNone, MarkerNoCode, MarkerKnown, MarkerKnownIlwi,
	MarkerUnknown, MarkerUnknownIlwi, MarkerIlwi,
}

// IsValid reports whether m is one of the known marker values.
func (m Marker) IsValid() bool {
	for _, v := range ValidMarkers {
		if m == v {
			return true
		}
	}
	return false
}

// ReferenceEntry is one catalog item from the 자료사전 table. Code is the
// matching key; it is a string and may repeat across entries, so code lookups
// answer set membership only, never identity.
type ReferenceEntry struct {
	ID         int
	Name       string // 품명
	Spec       string // 규격
	Unit       string // 단위
	Code       string // CODE
	Group      string // 그룹
	List2      string
	List3      string
	List4      string
	List5      string
	List6      string
	Alias      string // 약칭
	WFlag      string // W
	OutputName string // 산출목록
	SearchBlob string // precomputed lowercased search text
}

// BuildSearchBlob concatenates the searchable fields, lowercases the result
// and replaces '+' with a space so token search treats compound specs as
// separate words. Stored once at load time.
func (e *ReferenceEntry) BuildSearchBlob() string {
	parts := []string{e.Name, e.Spec, e.Code, e.Alias, e.OutputName,
		e.List2, e.List3, e.List4, e.List5, e.List6}
	return NormalizeSearchBlob(strings.Join(parts, " "))
}

// NormalizeSearchBlob lowercases raw search text and replaces '+' with a
// space, the same normalization applied to queries at search time.
func NormalizeSearchBlob(raw string) string {
	return strings.ReplaceAll(strings.ToLower(raw), "+", " ")
}

// MappingKey returns the manual-mapping key for this entry ("<name>|<spec>").
func (e *ReferenceEntry) MappingKey() string {
	return ManualMappingKey(e.Name, e.Spec)
}

// ManualMappingKey builds the two-part key used by the manual mapping store.
func ManualMappingKey(name, spec string) string {
	return name + "|" + spec
}

// SummaryRow is one row of the summary sheet (갑지). Row 0 holds the project
// title in Name, row 1 is the reserved 공통 row, rows 2+ are user categories.
type SummaryRow struct {
	Marker   string // "*" when a detail sheet exists for this category
	Category string // 구분, free text like "공통"
	Sequence string // hierarchical number such as "1.2.3"
	Name     string // 공종
	Unit     string
	Height   string
	Ceiling  string
	Quantity string
	Remark   string
}

// DetailRow is one line item of a per-category detail sheet (을지).
// Total is derived: it equals the evaluated Formula whenever Formula is
// non-empty and well formed, and is empty otherwise. Payload carries the
// serialized sub-detail state owned by this row, if any.
type DetailRow struct {
	Num     string
	Gubun   string
	From    string
	To      string
	Circuit string
	Item    string
	Formula string
	Total   string
	Unit    string
	Remark  string
	Payload *LightingPayload
}

// HasPayload reports whether this row carries re-enterable sub-detail state.
func (r *DetailRow) HasPayload() bool { return r.Payload != nil }

// SubDetailRow is one row of a unit-price sub-detail (산출일위표) or of a
// lighting BOM. The persisted form is {mark, list, qty} with code present only
// when the row is bound to a catalog item; UnitTotal is recomputed on load.
type SubDetailRow struct {
	Mark        Marker `json:"mark"`
	Code        string `json:"code,omitempty"`
	List        string `json:"list"`
	UnitFormula string `json:"qty"`
	UnitTotal   string `json:"-"`
}

// IsBlank reports whether the row carries no user content.
func (r SubDetailRow) IsBlank() bool {
	return r.Code == "" && r.List == "" && r.UnitFormula == ""
}

// LightingMasterRow is one lighting type in the master pane of the lighting
// sub-detail. Category selects the template table in the lighting dictionary;
// Formula is the per-type quantity expression rolled up on export.
type LightingMasterRow struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Formula  string `json:"formula"`
	Total    string `json:"-"`
}

// LightingPayload is the full lighting sub-detail state attached to the parent
// detail row so the popup can be re-entered. DetailsCache preserves the BOM
// edits of every master row the user visited, keyed by master row index.
type LightingPayload struct {
	Masters       []LightingMasterRow    `json:"masters"`
	DetailsCache  map[int][]SubDetailRow `json:"master_details_cache"`
	FocusedMaster int                    `json:"focused_master"`
}

// Clone returns a deep copy of the payload. Rows are value types, so copying
// the slices is enough.
func (p *LightingPayload) Clone() *LightingPayload {
	if p == nil {
		return nil
	}
	out := &LightingPayload{
		Masters:       append([]LightingMasterRow(nil), p.Masters...),
		DetailsCache:  make(map[int][]SubDetailRow, len(p.DetailsCache)),
		FocusedMaster: p.FocusedMaster,
	}
	for k, rows := range p.DetailsCache {
		out.DetailsCache[k] = append([]SubDetailRow(nil), rows...)
	}
	return out
}

// ReferenceSelection is one record returned by the reference-lookup overlay:
// a catalog entry plus the quantity text the user typed for it. QuantityText
// may be any expression the formula evaluator accepts.
type ReferenceSelection struct {
	EntryName    string
	EntrySpec    string
	EntryCode    string
	EntryUnit    string
	QuantityText string
}

// Validate checks a selection before it is exported into a sheet.
func (s ReferenceSelection) Validate() error {
	if s.EntryName == "" {
		return fmt.Errorf("selection has no entry name")
	}
	return nil
}
