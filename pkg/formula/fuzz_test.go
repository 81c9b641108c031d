package formula_test

import (
	"math"
	"testing"

	"github.com/sanchul-dev/sanchul/pkg/formula"
)

// FuzzTryEval verifies the evaluator is total: no input panics, hangs, or
// yields a non-finite value without an error.
//
// Run with: go test -fuzz=FuzzTryEval -fuzztime=10m ./pkg/formula/...
func FuzzTryEval(f *testing.F) {
	seeds := []string{
		"",
		"1",
		"1+2*3",
		"(1+2)*3",
		"-(-(-1))",
		"0.2*2*19",
		"1/0",
		"1//2",
		"((((((((((1))))))))))",
		"(((",
		")))",
		"1+",
		"+1",
		"*1",
		"1.2.3",
		"1@",
		"===",
		"2x3",
		"{1+[2]}",
		"999999999999999999999999*999999999999999999999999",
		"전선관 2*4",
		"1-+-+-2",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, expr string) {
		v, err := formula.TryEval(expr)
		if err != nil {
			if v != 0 {
				t.Errorf("TryEval(%q) returned %v alongside error %v", expr, v, err)
			}
			return
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("TryEval(%q) = %v without error", expr, v)
		}
		if got := formula.Eval(expr); got != v {
			t.Errorf("Eval(%q) = %v, TryEval = %v", expr, got, v)
		}
	})
}
