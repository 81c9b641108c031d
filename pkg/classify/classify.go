// Package classify computes the W-marker for sub-detail rows from the triple
// (code present?, code known to the reference dictionary?, ilwi?).
//
// The decision table:
//
//	code present | code in dictionary | ilwi | marker
//	-------------+--------------------+------+-------
//	no           | -                  | -    | **
//	yes          | yes                | no   | --
//	yes          | yes                | yes  | -i-
//	yes          | no                 | no   | ~*
//	yes          | no                 | yes  | ~i
//
// Row 0 of a sub-detail sheet is the header/product-name row and is exempt;
// that exemption is enforced by the sheet models, not here.
package classify

import (
	"strings"

	"github.com/sanchul-dev/sanchul/pkg/metrics"
	"github.com/sanchul-dev/sanchul/pkg/model"
)

// CodeChecker answers code set-membership questions. Satisfied by
// refdict.Dictionary; an empty dictionary makes every code classify as
// unknown, which is exactly the degraded behavior wanted when the reference
// store is missing.
type CodeChecker interface {
	ContainsCode(code string) bool
}

// IsIlwiFunc decides whether a code denotes a composite work item (일위대가).
type IsIlwiFunc func(code string) bool

// DefaultIsIlwi is the provisional ilwi rule: the code begins with 'i',
// case-insensitive. The rule is annotated provisional in the source material,
// so callers can substitute their own predicate.
func DefaultIsIlwi(code string) bool {
	return strings.HasPrefix(strings.ToLower(code), "i")
}

// Classify returns the marker for a code. A nil dict is treated as an empty
// dictionary; a nil isIlwi falls back to DefaultIsIlwi.
func Classify(code string, dict CodeChecker, isIlwi IsIlwiFunc) model.Marker {
	defer metrics.Timer(metrics.Classify)()

	if isIlwi == nil {
		isIlwi = DefaultIsIlwi
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return model.MarkerNoCode
	}

	known := dict != nil && dict.ContainsCode(code)
	ilwi := isIlwi(code)
	switch {
	case known && ilwi:
		return model.MarkerKnownIlwi
	case known:
		return model.MarkerKnown
	case ilwi:
		return model.MarkerUnknownIlwi
	default:
		return model.MarkerUnknown
	}
}

// ReclassifyAll rewrites the Mark of every row in place. Row 0 always gets
// the empty marker: it is the header/product-name row. Called after a code
// edit, a product edit, a bulk manual-mapping refresh, and load.
func ReclassifyAll(rows []model.SubDetailRow, dict CodeChecker, isIlwi IsIlwiFunc) {
	for i := range rows {
		if i == 0 {
			rows[i].Mark = model.MarkerNone
			continue
		}
		rows[i].Mark = Classify(rows[i].Code, dict, isIlwi)
	}
}

// ColorClass is the advisory rendering class for a marker. The core never
// styles anything; hosts map these to their own palette.
type ColorClass int

const (
	ColorNormal ColorClass = iota
	ColorDarkBlue
	ColorRed
	ColorOlive
)

// MarkerColor returns the advisory color class for a marker: known codes are
// normal, ilwi rows dark blue, unknown codes red, and code-less rows olive.
func MarkerColor(m model.Marker) ColorClass {
	switch m {
	case model.MarkerKnownIlwi, model.MarkerUnknownIlwi, model.MarkerIlwi:
		return ColorDarkBlue
	case model.MarkerUnknown:
		return ColorRed
	case model.MarkerNoCode:
		return ColorOlive
	default:
		return ColorNormal
	}
}
