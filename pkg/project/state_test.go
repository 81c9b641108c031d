package project

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/sanchul-dev/sanchul/pkg/model"
	"github.com/sanchul-dev/sanchul/pkg/sheet"
)

func newState(t *testing.T) (*State, string) {
	t.Helper()
	root := t.TempDir()
	s := NewState(root, "현장A", 50*time.Millisecond)
	t.Cleanup(s.Close)
	return s, root
}

func TestDetailLazyCreation(t *testing.T) {
	s, _ := newState(t)
	if s.Loaded("전등설비") {
		t.Fatal("detail sheet materialized before first access")
	}
	d := s.Detail("전등설비")
	if d == nil || !s.Loaded("전등설비") {
		t.Fatal("first access must create the sheet")
	}
	if s.Detail("전등설비") != d {
		t.Fatal("second access must return the same sheet")
	}
}

func TestFlushAllPersistsDirtySheets(t *testing.T) {
	s, root := newState(t)
	d := s.Detail("전등설비")
	d.SetCell(0, model.DetailColItem, "전선관")
	d.SetCell(0, model.DetailColFormula, "3+4")

	s.FlushAll()
	if d.Dirty() {
		t.Fatal("flush left the sheet dirty")
	}

	path := filepath.Join(root, "project_data", "현장A", "sheets", "전등설비.json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("sheet file not written: %v", err)
	}

	// A fresh state reloads the rows with totals recomputed.
	s2 := NewState(root, "현장A", 0)
	defer s2.Close()
	d2 := s2.Detail("전등설비")
	if got := d2.Row(0).Item; got != "전선관" {
		t.Fatalf("reloaded item = %q", got)
	}
	if got := d2.Row(0).Total; got != "7" {
		t.Fatalf("reloaded total = %q, want 7", got)
	}
	if d2.Dirty() {
		t.Fatal("load path must not leave the sheet dirty")
	}
}

func TestFlushAllUpdatesHasDetailMarkers(t *testing.T) {
	s, _ := newState(t)
	s.Summary().SetCell(sheet.FirstCategoryRow, model.SummaryColGongjong, "전등설비")

	d := s.Detail("전등설비")
	d.SetCell(0, model.DetailColItem, "전선관")
	s.FlushAll()
	if got := s.Summary().Row(sheet.FirstCategoryRow).Marker; got != "*" {
		t.Fatalf("marker = %q, want * for a sheet with content", got)
	}

	d.SetCell(0, model.DetailColItem, "")
	s.FlushAll()
	if got := s.Summary().Row(sheet.FirstCategoryRow).Marker; got != "" {
		t.Fatalf("marker = %q, want cleared for an empty sheet", got)
	}
}

func TestEditsScheduleDebouncedFlush(t *testing.T) {
	root := t.TempDir()
	s := NewState(root, "현장A", 50*time.Millisecond)
	defer s.Close()

	d := s.Detail("전등설비")
	d.SetCell(0, model.DetailColItem, "전선관")

	path := filepath.Join(root, "project_data", "현장A", "sheets", "전등설비.json")
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(path); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("debounced flush never wrote the sheet")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// readSheetFile decodes a persisted detail sheet, reporting ok=false until
// the file exists.
func readSheetFile(t *testing.T, path string) (sheetFile, bool) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		return sheetFile{}, false
	}
	var f sheetFile
	if err := json.Unmarshal(data, &f); err != nil {
		t.Fatalf("persisted sheet unreadable: %v", err)
	}
	return f, true
}

func TestDebouncedWriteCarriesLatestEdits(t *testing.T) {
	root := t.TempDir()
	s := NewState(root, "현장A", 30*time.Millisecond)
	defer s.Close()

	d := s.Detail("전등설비")
	d.SetCell(0, model.DetailColItem, "전선관")
	// A second edit inside the window re-arms the write with a fresh
	// snapshot; the one that fires must carry it.
	d.SetCell(0, model.DetailColItem, "케이블")

	path := filepath.Join(root, "project_data", "현장A", "sheets", "전등설비.json")
	deadline := time.Now().Add(2 * time.Second)
	for {
		if f, ok := readSheetFile(t, path); ok && len(f.Rows) > 0 && f.Rows[0].Item == "케이블" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("debounced write never carried the latest edit")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestCloseFlushesPendingWrite(t *testing.T) {
	root := t.TempDir()
	// A window this long never fires on its own; Close must run the
	// pending write instead of dropping it.
	s := NewState(root, "현장A", time.Hour)
	d := s.Detail("전등설비")
	d.SetCell(0, model.DetailColItem, "전선관")
	s.Close()

	path := filepath.Join(root, "project_data", "현장A", "sheets", "전등설비.json")
	f, ok := readSheetFile(t, path)
	if !ok || len(f.Rows) == 0 || f.Rows[0].Item != "전선관" {
		t.Fatalf("pending write lost on close: %+v ok=%v", f, ok)
	}
}

func TestEditsDuringDebouncedWrites(t *testing.T) {
	root := t.TempDir()
	s := NewState(root, "현장A", time.Millisecond)

	// Writes fire while edits keep arriving; the write path must only see
	// snapshots, and the final state on disk must match the final edit.
	d := s.Detail("전등설비")
	for i := 0; i < 200; i++ {
		d.SetCell(0, model.DetailColFormula, strconv.Itoa(i))
		time.Sleep(100 * time.Microsecond)
	}
	s.Close()

	path := filepath.Join(root, "project_data", "현장A", "sheets", "전등설비.json")
	f, ok := readSheetFile(t, path)
	if !ok || len(f.Rows) == 0 {
		t.Fatal("sheet never persisted")
	}
	if got := f.Rows[0].Formula; got != "199" {
		t.Fatalf("persisted formula = %q, want the final edit", got)
	}
}

func TestSummaryPersistsAcrossSessions(t *testing.T) {
	root := t.TempDir()
	s := NewState(root, "현장A", 50*time.Millisecond)
	s.Summary().SetCell(sheet.FirstCategoryRow, model.SummaryColGongjong, "전등설비")
	s.Summary().SetCell(sheet.FirstCategoryRow, model.SummaryColGongjongNum, "1")
	s.Close()

	s2 := NewState(root, "현장A", 0)
	defer s2.Close()
	r := s2.Summary().Row(sheet.FirstCategoryRow)
	if r.Name != "전등설비" || r.Sequence != "1" {
		t.Fatalf("reloaded summary row = %+v", r)
	}
}

func TestCorruptSheetFileReadsEmpty(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "project_data", "현장A", "sheets", "전등설비.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewState(root, "현장A", 0)
	defer s.Close()
	if got := s.Detail("전등설비").Len(); got != 0 {
		t.Fatalf("corrupt sheet loaded %d rows, want 0", got)
	}
}

func TestUnnamedProjectUsesSessionDir(t *testing.T) {
	root := t.TempDir()
	s := NewState(root, "", 50*time.Millisecond)
	d := s.Detail("공통")
	d.SetCell(0, model.DetailColItem, "가설재")
	s.Close()

	path := filepath.Join(root, "project_data", "_unsaved_session_", "sheets", "공통.json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("unnamed project sheet not under the session dir: %v", err)
	}
}
