package classify_test

import (
	"testing"

	"github.com/sanchul-dev/sanchul/pkg/classify"
	"github.com/sanchul-dev/sanchul/pkg/model"
	"github.com/sanchul-dev/sanchul/pkg/testutil"
)

func TestClassify(t *testing.T) {
	dict := testutil.NewDefault().Dictionary(20) // codes C0000..C0019

	tests := []struct {
		name string
		code string
		want model.Marker
	}{
		{"no code", "", model.MarkerNoCode},
		{"whitespace only", "   ", model.MarkerNoCode},
		{"known", "C0003", model.MarkerKnown},
		{"unknown", "Z9999", model.MarkerUnknown},
		{"unknown ilwi", "i123", model.MarkerUnknownIlwi},
		{"unknown ilwi uppercase", "I123", model.MarkerUnknownIlwi},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify.Classify(tt.code, dict, nil); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.code, got, tt.want)
			}
		})
	}
}

func TestClassifyKnownIlwi(t *testing.T) {
	dict := testutil.New(testutil.GeneratorConfig{Seed: 7, IlwiRatio: 1}).Dictionary(5)
	// every generated code starts with I
	if got := classify.Classify("I0002", dict, nil); got != model.MarkerKnownIlwi {
		t.Errorf("known ilwi code = %q, want %q", got, model.MarkerKnownIlwi)
	}
}

func TestClassifyNilDictionary(t *testing.T) {
	if got := classify.Classify("C0001", nil, nil); got != model.MarkerUnknown {
		t.Errorf("nil dictionary: got %q, want %q", got, model.MarkerUnknown)
	}
}

func TestClassifyCustomIlwi(t *testing.T) {
	isIlwi := func(code string) bool { return code == "SPECIAL" }
	if got := classify.Classify("SPECIAL", nil, isIlwi); got != model.MarkerUnknownIlwi {
		t.Errorf("custom predicate: got %q, want %q", got, model.MarkerUnknownIlwi)
	}
	if got := classify.Classify("i123", nil, isIlwi); got != model.MarkerUnknown {
		t.Errorf("custom predicate should replace the default: got %q", got)
	}
}

func TestReclassifyAllHeaderExempt(t *testing.T) {
	dict := testutil.NewDefault().Dictionary(10)
	rows := []model.SubDetailRow{
		{List: "LED평판등 600x600"}, // header row, no code
		{Code: "C0001"},
		{Code: "nope"},
		{},
	}
	classify.ReclassifyAll(rows, dict, nil)

	testutil.AssertMarker(t, rows, 0, model.MarkerNone)
	testutil.AssertMarker(t, rows, 1, model.MarkerKnown)
	testutil.AssertMarker(t, rows, 2, model.MarkerUnknown)
	testutil.AssertMarker(t, rows, 3, model.MarkerNoCode)
}

func TestMarkerColor(t *testing.T) {
	tests := []struct {
		m    model.Marker
		want classify.ColorClass
	}{
		{model.MarkerNone, classify.ColorNormal},
		{model.MarkerKnown, classify.ColorNormal},
		{model.MarkerKnownIlwi, classify.ColorDarkBlue},
		{model.MarkerUnknownIlwi, classify.ColorDarkBlue},
		{model.MarkerIlwi, classify.ColorDarkBlue},
		{model.MarkerUnknown, classify.ColorRed},
		{model.MarkerNoCode, classify.ColorOlive},
	}
	for _, tt := range tests {
		if got := classify.MarkerColor(tt.m); got != tt.want {
			t.Errorf("MarkerColor(%q) = %v, want %v", tt.m, got, tt.want)
		}
	}
}
