package scan

import (
	"testing"
	"time"

	"tally/internal/core"
)

func TestDedupeKeepsNewestDownload(t *testing.T) {
	base := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	files := []FileMeta{
		{Path: "in/statement.xlsx", Name: "statement.xlsx", Folder: "in", ModTime: base},
		{Path: "in/statement (1).xlsx", Name: "statement (1).xlsx", Folder: "in", ModTime: base.Add(time.Hour)},
		{Path: "in/statement (2).xlsx", Name: "statement (2).xlsx", Folder: "in", ModTime: base.Add(30 * time.Minute)},
	}

	got := Dedupe(files)
	if len(got) != 1 {
		t.Fatalf("Dedupe returned %d files, want 1", len(got))
	}
	if got[0].Name != "statement (1).xlsx" {
		t.Errorf("kept %q, want the newest download statement (1).xlsx", got[0].Name)
	}
}

func TestDedupeLargeCounterIsNotADuplicate(t *testing.T) {
	base := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	files := []FileMeta{
		{Path: "in/bill (18).xlsx", Name: "bill (18).xlsx", Folder: "in", ModTime: base},
		{Path: "in/bill (33).xlsx", Name: "bill (33).xlsx", Folder: "in", ModTime: base},
	}

	got := Dedupe(files)
	if len(got) != 2 {
		t.Fatalf("Dedupe returned %d files, want both kept", len(got))
	}
}

func TestDedupeIgnoresSpacingAndCase(t *testing.T) {
	base := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	files := []FileMeta{
		{Path: "in/Bill.xlsx", Name: "Bill.xlsx", Folder: "in", ModTime: base},
		{Path: "in/bill (1).xlsx", Name: "bill (1).xlsx", Folder: "in", ModTime: base.Add(time.Hour)},
		{Path: "in/BILL(2).xlsx", Name: "BILL(2).xlsx", Folder: "in", ModTime: base.Add(30 * time.Minute)},
	}

	got := Dedupe(files)
	if len(got) != 1 {
		t.Fatalf("Dedupe returned %d files, want 1", len(got))
	}
	if got[0].Name != "bill (1).xlsx" {
		t.Errorf("kept %q, want the newest download bill (1).xlsx", got[0].Name)
	}
}

func TestDedupeSameNameDifferentFolders(t *testing.T) {
	base := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	files := []FileMeta{
		{Path: "jul/FundDetail.xlsx", Name: "FundDetail.xlsx", Folder: "jul", ModTime: base},
		{Path: "aug/FundDetail.xlsx", Name: "FundDetail.xlsx", Folder: "aug", ModTime: base},
	}

	if got := Dedupe(files); len(got) != 2 {
		t.Fatalf("Dedupe returned %d files, want both folders kept", len(got))
	}
}

func TestDedupeTieBreaksOnPath(t *testing.T) {
	base := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	files := []FileMeta{
		{Path: "in/report (2).xlsx", Name: "report (2).xlsx", Folder: "in", ModTime: base},
		{Path: "in/report (1).xlsx", Name: "report (1).xlsx", Folder: "in", ModTime: base},
	}

	got := Dedupe(files)
	if len(got) != 1 || got[0].Path != "in/report (1).xlsx" {
		t.Fatalf("Dedupe tie kept %+v, want in/report (1).xlsx", got)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		wantKind core.SourceKind
		wantOK   bool
	}{
		{"2-UK2025JulMonthlyTransaction.csv", core.SourceMarketplace, true},
		{"FundDetail-1754358591792.xlsx", core.SourceFundDetail, true},
		{"KH922 Detail-20250701.xlsx", core.SourceFundDetail, true},
		{"已完成账单导出-20250801.xlsx", core.SourceStatement, true},
		{"账单商品维度明细.xlsx", core.SourceStatement, true},
		{"店铺收支明细-7月.xlsx", core.SourceManaged, true},
		{"收支流水导出.xlsx", core.SourceFlow, true},
		{"transaction-dump.xlsx", "", false},
		{"retail price list.xlsx", "", false},
	}
	for _, tt := range tests {
		kind, ok := Classify(tt.name)
		if ok != tt.wantOK || kind != tt.wantKind {
			t.Errorf("Classify(%q) = %q, %v; want %q, %v", tt.name, kind, ok, tt.wantKind, tt.wantOK)
		}
	}
}

func TestCanonicalName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"statement (1).xlsx", "statement.xlsx"},
		{"statement (9).xlsx", "statement.xlsx"},
		{"statement(2).xlsx", "statement.xlsx"},
		{"statement (10).xlsx", "statement (10).xlsx"},
		{"statement.xlsx", "statement.xlsx"},
		{"bill (2) final.xlsx", "bill (2) final.xlsx"},
	}
	for _, tt := range tests {
		if got := canonicalName(tt.in); got != tt.want {
			t.Errorf("canonicalName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
