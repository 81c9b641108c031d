// Package formula evaluates the restricted arithmetic expressions used in
// estimation sheets. The evaluator is a total function: any input string
// terminates and yields a finite number, with every malformed expression
// (including division by zero) collapsing to 0.0. It never executes anything
// beyond the four arithmetic operators.
//
// The package also owns the display-byte semantics behind the 40-byte formula
// wrap rule: multi-byte characters (Korean in practice) count as two display
// bytes.
package formula

import (
	"math"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/sanchul-dev/sanchul/pkg/metrics"
)

// WrapThreshold is the display-byte length at which continuous formula input
// wraps to the next row.
const WrapThreshold = 40

// Eval evaluates expr and returns its value, or 0.0 when expr is empty,
// malformed, divides by zero, or overflows to a non-finite value.
func Eval(expr string) float64 {
	v, err := TryEval(expr)
	if err != nil {
		return 0.0
	}
	return v
}

// TryEval evaluates expr and reports malformation. Sheets use the error to
// leave a total cell blank instead of showing a spurious 0.
func TryEval(expr string) (float64, error) {
	defer metrics.Timer(metrics.FormulaEval)()

	for _, r := range expr {
		if !validRune(r) {
			return 0.0, errBadExpr
		}
	}
	cleaned := Normalize(expr)
	if cleaned == "" {
		return 0.0, errEmptyExpr
	}
	toks, err := tokenize(cleaned)
	if err != nil {
		return 0.0, err
	}
	rpn, err := toRPN(toks)
	if err != nil {
		return 0.0, err
	}
	v, err := evalRPN(rpn)
	if err != nil {
		return 0.0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0.0, errBadExpr
	}
	return v, nil
}

// validRune reports whether r belongs to the evaluator's input alphabet.
// The pending marker '@' and free text are rejected rather than silently
// dropped so their cells show a blank total.
func validRune(r rune) bool {
	switch r {
	case ' ', '\t', '{', '[', '}', ']', 'x', 'X',
		'+', '-', '*', '/', '(', ')', '.':
		return true
	}
	return r >= '0' && r <= '9'
}

// Normalize strips spaces, folds every bracket shape to parentheses, maps the
// multiplication aliases 'x'/'X' to '*' and drops every character outside the
// evaluator's alphabet. Exposed so hosts can validate quantity text the same
// way the evaluator will read it.
func Normalize(expr string) string {
	var b strings.Builder
	b.Grow(len(expr))
	for _, r := range expr {
		switch r {
		case ' ', '\t':
			// dropped
		case '{', '[':
			b.WriteByte('(')
		case '}', ']':
			b.WriteByte(')')
		case 'x', 'X':
			b.WriteByte('*')
		case '+', '-', '*', '/', '(', ')', '.':
			b.WriteRune(r)
		default:
			if r >= '0' && r <= '9' {
				b.WriteRune(r)
			}
			// everything else is dropped
		}
	}
	return b.String()
}

// ByteLength returns the display-byte length of s: single-width runes count
// one, wide (East Asian) runes count two. This matches the byte length the
// original CP949 sheets measured against the wrap threshold.
func ByteLength(s string) int {
	return runewidth.StringWidth(s)
}

// FormatTotal renders an evaluated total for a grid cell: integer form when
// the value is integral, otherwise the shortest decimal. Values are rounded
// at the sixth decimal first so float noise from chained multiplication never
// leaks into cells.
func FormatTotal(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	r := math.Round(v*1e6) / 1e6
	if r == math.Trunc(r) && math.Abs(r) < 1e15 {
		return strconv.FormatInt(int64(r), 10)
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// SectionCount parses the "section" count out of a wiring formula: the
// expression is split into additive terms, each term contributes the product
// of its integer factors, and the contributions are summed. "2*4" counts 8
// sections, "2*4+3" counts 11, and decimal factors (lengths, not counts) are
// skipped: "0.2*2*19" counts 38.
func SectionCount(expr string) int {
	cleaned := Normalize(expr)
	if cleaned == "" {
		return 0
	}
	total := 0
	for _, term := range splitTerms(cleaned) {
		prod := 0
		for _, factor := range strings.Split(term, "*") {
			n, err := strconv.Atoi(factor)
			if err != nil || n <= 0 {
				continue
			}
			if prod == 0 {
				prod = n
			} else {
				prod *= n
			}
		}
		total += prod
	}
	return total
}

// splitTerms splits a normalized expression on top-level '+' and '-'.
// Parenthesized groups stay intact inside their term.
func splitTerms(s string) []string {
	var terms []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case '+', '-':
			if depth == 0 && i > start {
				terms = append(terms, s[start:i])
				start = i + 1
			} else if depth == 0 {
				start = i + 1
			}
		}
	}
	if start < len(s) {
		terms = append(terms, s[start:])
	}
	return terms
}
