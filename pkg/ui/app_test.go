package ui

import (
	"path/filepath"
	"testing"

	"github.com/sanchul-dev/sanchul/pkg/config"
	"github.com/sanchul-dev/sanchul/pkg/model"
	"github.com/sanchul-dev/sanchul/pkg/project"
	"github.com/sanchul-dev/sanchul/pkg/router"
	"github.com/sanchul-dev/sanchul/pkg/sheet"
)

// testApp builds an App over a throwaway data root. The store paths do not
// exist; the stores degrade to empty exactly as on a fresh machine.
func testApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Config{
		DataRoot: dir,
		Stores: config.StoresConfig{
			DictionaryDB: filepath.Join(dir, "자료사전.db"),
			LightingDB:   filepath.Join(dir, "조명기구.db"),
			MappingFile:  filepath.Join(dir, "manual_mapping.json"),
		},
	}
	core := project.NewCoreContext(cfg, "현장A")
	t.Cleanup(core.Teardown)
	return NewApp(core)
}

// openCommonDetail drives the app onto the 공통 detail sheet.
func openCommonDetail(t *testing.T, a *App) {
	t.Helper()
	a.sumRow = sheet.SummaryCommonRow
	a.openCategory()
	if a.mode != modeDetail || a.detail == nil {
		t.Fatal("category sheet did not open")
	}
}

func TestDetailOpsWithoutDetailSheet(t *testing.T) {
	a := testApp(t)
	// Fresh session, cursor still on the summary: detail-sheet operations
	// must be inert, not crash.
	a.Execute(router.OpSectionSum, 3)
	a.Execute(router.OpFormulaPlaceholder, 0)
	a.Execute(router.OpEnterFormula, 0)
	if a.mode != modeSummary {
		t.Fatalf("mode = %d, want summary", a.mode)
	}
}

func TestCtrlDigitUnboundOnSummary(t *testing.T) {
	a := testApp(t)
	if a.rt.Dispatch(router.Chord("ctrl+3"), a.context(), a) {
		t.Fatal("ctrl+3 must not dispatch from the summary sheet")
	}
}

func TestEscClosesPopupDespiteBadQuantity(t *testing.T) {
	a := testApp(t)
	openCommonDetail(t, a)
	a.detail.SetCell(0, model.DetailColItem, "전선관")
	a.toggleSubDetail()
	if a.mode != modePopup {
		t.Fatal("popup did not open")
	}

	a.popup.SetCell(1, model.SubDetailColUnitFormula, "미정")
	a.closePopup()
	if a.mode != modeDetail || a.popup != nil {
		t.Fatalf("esc left the user in the popup: mode=%d", a.mode)
	}
	// No roll-up happened.
	if got := a.detail.Row(0).Unit; got == sheet.ExportUnit {
		t.Fatal("close must not export")
	}

	// The sheet was persisted as left and reopens with the edit.
	a.toggleSubDetail()
	if a.mode != modePopup {
		t.Fatal("popup did not reopen")
	}
	if got := a.popup.Row(1).UnitFormula; got != "미정" {
		t.Fatalf("reopened quantity = %q, want the pre-close edit", got)
	}
}

func TestExportPopupRollsUpIntoParent(t *testing.T) {
	a := testApp(t)
	openCommonDetail(t, a)
	a.detail.SetCell(0, model.DetailColItem, "전선관")
	a.toggleSubDetail()

	a.popup.SetCell(1, model.SubDetailColUnitFormula, "3+4")
	a.exportPopup()
	if a.mode != modeDetail || a.popup != nil {
		t.Fatalf("export did not close the popup: mode=%d", a.mode)
	}
	r := a.detail.Row(0)
	if r.Unit != sheet.ExportUnit || r.Total != "7" {
		t.Fatalf("parent row after export = %+v", r)
	}
}

func TestExportPopupStaysOpenOnBadQuantity(t *testing.T) {
	a := testApp(t)
	openCommonDetail(t, a)
	a.detail.SetCell(0, model.DetailColItem, "전선관")
	a.toggleSubDetail()

	a.popup.SetCell(1, model.SubDetailColUnitFormula, "미정")
	a.exportPopup()
	if a.mode != modePopup || a.popup == nil {
		t.Fatal("failed export must keep the popup open")
	}
	if a.status == "" {
		t.Fatal("failed export must report the reason")
	}
}

func TestLightingOpensForLightingItem(t *testing.T) {
	a := testApp(t)
	openCommonDetail(t, a)
	a.detail.SetCell(0, model.DetailColItem, sheet.LightingExportItem)

	a.toggleSubDetail()
	if a.mode != modeLighting || a.lighting == nil {
		t.Fatal("lighting sheet did not open for the lighting item")
	}

	a.lighting.SetMasterFormula(0, "2")
	a.exportPopup()
	if a.mode != modeDetail {
		t.Fatal("lighting export did not return to the detail sheet")
	}
	r := a.detail.Row(0)
	if r.Total != "2" || !r.HasPayload() {
		t.Fatalf("parent row after lighting export = %+v", r)
	}

	// Re-entry restores the sheet from the payload.
	a.toggleSubDetail()
	if a.mode != modeLighting || a.lighting == nil {
		t.Fatal("lighting sheet did not restore from the payload")
	}
	if got := a.lighting.Masters()[0].Formula; got != "2" {
		t.Fatalf("restored master formula = %q", got)
	}
}

func TestLightingEscKeepsEditsWithoutExport(t *testing.T) {
	a := testApp(t)
	openCommonDetail(t, a)
	a.detail.SetCell(0, model.DetailColItem, sheet.LightingExportItem)
	a.toggleSubDetail()

	a.lighting.SetDetailCell(1, model.SubDetailColList, "등기구 조립")
	a.closePopup()
	if a.mode != modeDetail {
		t.Fatal("esc did not close the lighting sheet")
	}
	row := a.detail.Row(0)
	if !row.HasPayload() {
		t.Fatal("close must keep the edits reachable on re-entry")
	}

	a.toggleSubDetail()
	if got := a.lighting.Details()[1].List; got != "등기구 조립" {
		t.Fatalf("restored BOM list = %q", got)
	}
}

func TestClipboardRoutingPerMode(t *testing.T) {
	a := testApp(t)

	// Summary cell.
	a.core.State.Summary().SetCell(sheet.FirstCategoryRow, model.SummaryColGongjong, "간선공사")
	a.sumRow, a.sumCol = sheet.FirstCategoryRow, int(model.SummaryColGongjong)
	a.copy(false)
	if got := a.core.Clipboard.Cell(); got != "간선공사" {
		t.Fatalf("summary copy = %q", got)
	}
	a.sumRow = sheet.FirstCategoryRow + 1
	a.paste()
	if got := a.core.State.Summary().Row(sheet.FirstCategoryRow + 1).Name; got != "간선공사" {
		t.Fatalf("summary paste = %q", got)
	}

	// Popup cell.
	openCommonDetail(t, a)
	a.detail.SetCell(0, model.DetailColItem, "전선관")
	a.toggleSubDetail()
	a.popup.SetCell(1, model.SubDetailColUnitFormula, "3+4")
	a.popRow, a.popCol = 1, int(model.SubDetailColUnitFormula)
	a.copy(true)
	if got := a.popup.Row(1).UnitFormula; got != "" {
		t.Fatalf("popup cut left the source: %q", got)
	}
	a.popRow = 2
	a.paste()
	if got := a.popup.Row(2).UnitTotal; got != "7" {
		t.Fatalf("popup paste total = %q", got)
	}
}
