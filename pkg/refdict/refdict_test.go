package refdict_test

import (
	"path/filepath"
	"testing"

	"github.com/sanchul-dev/sanchul/pkg/model"
	"github.com/sanchul-dev/sanchul/pkg/refdict"
)

func fixtureDict() *refdict.Dictionary {
	return refdict.FromEntries([]model.ReferenceEntry{
		{ID: 1, Name: "전선관", Spec: "16mm", Unit: "m", Code: "C100"},
		{ID: 2, Name: "전선관", Spec: "22mm", Unit: "m", Code: "C101"},
		{ID: 3, Name: "케이블", Spec: "CV 2.5sq", Unit: "m", Code: "C200"},
		{ID: 4, Name: "콘센트", Spec: "2구 접지", Unit: "개", Code: "C300"},
		{ID: 5, Name: "접속재", Spec: "", Unit: "식", Code: "I400"},
	})
}

func TestContainsCode(t *testing.T) {
	d := fixtureDict()
	if !d.ContainsCode("C100") {
		t.Error("C100 should be present")
	}
	if d.ContainsCode("C999") {
		t.Error("C999 should be absent")
	}
	if d.ContainsCode("") {
		t.Error("empty code should be absent")
	}
}

func TestFindByNamePrefix(t *testing.T) {
	d := fixtureDict()

	hits := d.FindByNamePrefix("전선", 10)
	if len(hits) != 2 {
		t.Fatalf("prefix 전선: %d hits, want 2", len(hits))
	}
	// insertion order preserved
	if hits[0].Code != "C100" || hits[1].Code != "C101" {
		t.Errorf("hit order = %s, %s", hits[0].Code, hits[1].Code)
	}

	if hits := d.FindByNamePrefix("전선", 1); len(hits) != 1 {
		t.Errorf("limit 1: %d hits", len(hits))
	}
	// non-positive limit falls back to 10
	if hits := d.FindByNamePrefix("전선", 0); len(hits) != 2 {
		t.Errorf("limit 0: %d hits, want 2", len(hits))
	}
	if hits := d.FindByNamePrefix("없음", 10); len(hits) != 0 {
		t.Errorf("no match: %d hits", len(hits))
	}
}

func TestFindExactOrPrefix(t *testing.T) {
	d := fixtureDict()

	if e := d.FindExactOrPrefix("케이블"); e == nil || e.Code != "C200" {
		t.Errorf("exact match failed: %+v", e)
	}
	if e := d.FindExactOrPrefix("콘"); e == nil || e.Code != "C300" {
		t.Errorf("prefix fallback failed: %+v", e)
	}
	if e := d.FindExactOrPrefix("없음"); e != nil {
		t.Errorf("miss returned %+v", e)
	}
	if e := d.FindExactOrPrefix("  "); e != nil {
		t.Errorf("blank query returned %+v", e)
	}
}

func TestSearch(t *testing.T) {
	d := fixtureDict()

	if hits := d.Search("2.5sq"); len(hits) != 1 || d.Entry(hits[0]).Code != "C200" {
		t.Errorf("substring search failed: %v", hits)
	}
	// '+' normalizes to space
	a := d.Search("콘센트 2구")
	b := d.Search("콘센트+2구")
	if len(a) != 1 || len(b) != 1 || a[0] != b[0] {
		t.Errorf("plus normalization: %v vs %v", a, b)
	}
	if hits := d.Search(""); len(hits) != 0 {
		t.Errorf("empty query: %v", hits)
	}
}

func TestLoadMissingFileDegradesToEmpty(t *testing.T) {
	d := refdict.Load(filepath.Join(t.TempDir(), "no-such.db"))
	if d.Len() != 0 {
		t.Fatalf("missing store: %d entries", d.Len())
	}
	if d.ContainsCode("C100") {
		t.Error("empty dictionary should miss every code")
	}
	if hits := d.Search("전선관"); len(hits) != 0 {
		t.Errorf("empty dictionary search: %v", hits)
	}
}
