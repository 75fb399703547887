package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tally/internal/config"
	"tally/internal/core"
	"tally/internal/workbook"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("fixture"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func openFrom(docs map[string]workbook.Document) func(string) (workbook.Document, error) {
	return func(path string) (workbook.Document, error) {
		if d, ok := docs[path]; ok {
			return d, nil
		}
		return nil, fmt.Errorf("no fixture for %s", path)
	}
}

func marketplaceDoc(path string) workbook.Document {
	return workbook.NewMemory(path, workbook.Grid{
		Name: "transactions",
		Rows: [][]string{
			{"All amounts in GBP, unless specified"},
			{"date/time", "type", "order id", "description", "product sales", "selling fees", "other", "total"},
			{"2025-07-03 10:00:00", "Order", "111-2223334", "widget", "250.00", "-4.50", "0.00", "245.50"},
			{"2025-07-15 09:00:00", "Transfer", "", "Transfer to bank account", "0.00", "0.00", "-200.00", "-200.00"},
		},
	})
}

func warehouseDoc(path string) workbook.Document {
	return workbook.NewMemory(path, workbook.Grid{
		Name: "Storage Fees",
		Rows: [][]string{
			{"Date", "Description", "Cost"},
			{"2025-07-02", "pallet storage", "12.50"},
			{"2025-07-09", "pallet storage", "17.50"},
			{"Total", "", "30.00"},
		},
	})
}

func TestRunEndToEnd(t *testing.T) {
	platformRoot := t.TempDir()
	warehouseRoot := t.TempDir()

	mpPath := filepath.Join(platformRoot, "AllStar-UK CustomTransaction.csv")
	dupPath := filepath.Join(platformRoot, "AllStar-UK CustomTransaction (1).csv")
	brokenPath := filepath.Join(platformRoot, "Broken-UK Transaction.csv")
	whPath := filepath.Join(warehouseRoot, "TSP Bill 2025-07.xlsx")

	touch(t, mpPath)
	touch(t, dupPath)
	touch(t, brokenPath)
	touch(t, whPath)
	// the redownload is older, so the plain name must survive dedup
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(dupPath, old, old); err != nil {
		t.Fatal(err)
	}

	p, err := New(Options{
		PlatformRoot: platformRoot,
		Warehouses: []config.WarehouseSource{
			{Name: "TSP", Family: core.SourceWarehouseItemized, Currency: "GBP", Root: warehouseRoot},
		},
		Workers: 2,
		Open: openFrom(map[string]workbook.Document{
			mpPath: marketplaceDoc(mpPath),
			whPath: warehouseDoc(whPath),
		}),
	})
	if err != nil {
		t.Fatal(err)
	}
	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	s := res.Summary
	if s.FilesScanned != 4 {
		t.Errorf("FilesScanned = %d, want 4", s.FilesScanned)
	}
	if s.DuplicatesCollapsed != 1 {
		t.Errorf("DuplicatesCollapsed = %d, want 1", s.DuplicatesCollapsed)
	}
	if s.FilesParsed != 2 {
		t.Errorf("FilesParsed = %d, want 2", s.FilesParsed)
	}
	if s.FilesSkipped[core.WarnUnreadable] != 1 {
		t.Errorf("unreadable skips = %d, want 1", s.FilesSkipped[core.WarnUnreadable])
	}
	if s.EntriesIncluded != 3 || s.EntriesExcluded != 1 || s.EntriesSkipped != 0 {
		t.Errorf("entries included/excluded/skipped = %d/%d/%d, want 3/1/0",
			s.EntriesIncluded, s.EntriesExcluded, s.EntriesSkipped)
	}

	if len(res.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(res.Records))
	}
	// sorted by entity: "TSP" before "allstar_uk"
	wh := res.Records[0]
	if wh.Entity != "TSP" || string(wh.Period) != "2025-07" || wh.Currency != "GBP" {
		t.Fatalf("warehouse record key = %s/%s/%s", wh.Entity, wh.Period, wh.Currency)
	}
	if !wh.Cost.Equal(decimal.RequireFromString("30.00")) {
		t.Errorf("warehouse cost = %s, want 30.00", wh.Cost)
	}
	if wh.IncludedCount != 2 {
		t.Errorf("warehouse entries = %d, want 2", wh.IncludedCount)
	}

	shop := res.Records[1]
	if shop.Entity != "allstar_uk" || string(shop.Period) != "2025-07" || shop.Currency != "GBP" {
		t.Fatalf("shop record key = %s/%s/%s", shop.Entity, shop.Period, shop.Currency)
	}
	if !shop.Net.Equal(decimal.RequireFromString("245.50")) {
		t.Errorf("net = %s, want 245.50", shop.Net)
	}
	if !shop.Withdrawn.Equal(decimal.RequireFromString("200.00")) {
		t.Errorf("withdrawn = %s, want 200.00", shop.Withdrawn)
	}
	if shop.IncludedCount != 1 || shop.ExcludedCount != 1 {
		t.Errorf("shop counts = %d/%d, want 1/1", shop.IncludedCount, shop.ExcludedCount)
	}
	if !shop.GrossProfit().Equal(decimal.RequireFromString("245.50")) {
		t.Errorf("gross profit = %s, want 245.50", shop.GrossProfit())
	}
}

func TestRunIsDeterministic(t *testing.T) {
	platformRoot := t.TempDir()
	mpPath := filepath.Join(platformRoot, "AllStar-UK CustomTransaction.csv")
	touch(t, mpPath)

	opts := Options{
		PlatformRoot: platformRoot,
		Workers:      4,
		Open:         openFrom(map[string]workbook.Document{mpPath: marketplaceDoc(mpPath)}),
	}

	run := func() *Result {
		p, err := New(opts)
		if err != nil {
			t.Fatal(err)
		}
		res, err := p.Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		return res
	}

	a, b := run(), run()
	if len(a.Records) != len(b.Records) {
		t.Fatalf("record counts differ: %d vs %d", len(a.Records), len(b.Records))
	}
	for i := range a.Records {
		ra, rb := a.Records[i], b.Records[i]
		if ra.Key != rb.Key || !ra.Net.Equal(rb.Net) || !ra.Cost.Equal(rb.Cost) {
			t.Errorf("record %d differs: %+v vs %+v", i, ra, rb)
		}
	}
	if a.Summary.EntriesIncluded != b.Summary.EntriesIncluded {
		t.Errorf("included counts differ: %d vs %d", a.Summary.EntriesIncluded, b.Summary.EntriesIncluded)
	}
}

func TestRunSkipsUnattributableEntries(t *testing.T) {
	warehouseRoot := t.TempDir()
	whPath := filepath.Join(warehouseRoot, "TSP Bill.xlsx")
	touch(t, whPath)

	p, err := New(Options{
		Warehouses: []config.WarehouseSource{
			{Name: "TSP", Family: core.SourceWarehouseItemized, Currency: "GBP", Root: warehouseRoot},
		},
		Open: openFrom(map[string]workbook.Document{whPath: warehouseDoc(whPath)}),
	})
	if err != nil {
		t.Fatal(err)
	}
	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if res.Summary.EntriesSkipped != 2 {
		t.Errorf("EntriesSkipped = %d, want 2", res.Summary.EntriesSkipped)
	}
	if len(res.Records) != 0 {
		t.Errorf("records = %d, want 0", len(res.Records))
	}
	found := false
	for _, w := range res.Summary.Warnings {
		if w.Code == core.WarnUnattributable {
			found = true
		}
	}
	if !found {
		t.Error("expected an unattributable warning")
	}
}

func TestRunMissingRootsIsNotAnError(t *testing.T) {
	p, err := New(Options{PlatformRoot: filepath.Join(t.TempDir(), "nope")})
	if err != nil {
		t.Fatal(err)
	}
	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Summary.FilesScanned != 0 || len(res.Records) != 0 {
		t.Errorf("scanned %d files, %d records; want none", res.Summary.FilesScanned, len(res.Records))
	}
}
