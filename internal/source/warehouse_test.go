package source

import (
	"context"
	"testing"

	"tally/internal/core"
	"tally/internal/scan"
	"tally/internal/workbook"
)

func mustWarehouse(t *testing.T, kind core.SourceKind, name, currency string) Adapter {
	t.Helper()
	a, err := NewWarehouse(kind, name, currency)
	if err != nil {
		t.Fatalf("NewWarehouse(%s): %v", kind, err)
	}
	return a
}

func TestItemizedUsesTotalCostOnInvoiceItems(t *testing.T) {
	doc := workbook.NewMemory("wh/TSP Invoice Jul25.xlsx",
		workbook.Grid{
			Name: "Invoice Items",
			Rows: [][]string{
				{"Item", "Storage Fee", "Handling Fee", "Total Cost"},
				{"SKU pick", "4.00", "6.00", "10.00"},
				{"Total", "", "", "10.00"},
			},
		},
		workbook.Grid{
			Name: "Returns",
			Rows: [][]string{
				{"Item", "Cost"},
				{"Return handling", "20.00"},
			},
		},
		workbook.Grid{
			Name: "Notes",
			Rows: [][]string{{"free text"}},
		},
	)
	meta := scan.FileMeta{Path: doc.Path(), Name: "TSP Invoice Jul25.xlsx", Kind: core.SourceWarehouseItemized}

	res := mustWarehouse(t, core.SourceWarehouseItemized, "TSP", "GBP").Parse(context.Background(), doc, meta)

	if len(res.Entries) != 2 {
		t.Fatalf("entries = %d, want 2 (decomposed fee columns and totals row not counted)", len(res.Entries))
	}
	if got := res.EntrySum().StringFixed(2); got != "30.00" {
		t.Errorf("cost sum = %s, want 30.00", got)
	}
	for _, e := range res.Entries {
		if e.Source != core.SourceWarehouseItemized || !e.Source.IsCost() {
			t.Errorf("entry source = %q, want a cost-side kind", e.Source)
		}
	}
}

func TestCoverBillReadsGrandTotalOnly(t *testing.T) {
	doc := workbook.NewMemory("wh/bill-HBR-O-M20250201.xlsx",
		workbook.Grid{
			Name: "账单封面",
			Rows: [][]string{
				{"Statement Period", "2025-01-01 ~ 2025-01-31"},
				{"账单总计(Total bill amount)", "", "1234.50"},
			},
		},
		workbook.Grid{
			Name: "明细",
			Rows: [][]string{
				{"Item", "Amount"},
				{"storage", "1000.00"},
				{"handling", "234.50"},
			},
		},
	)
	meta := scan.FileMeta{Path: doc.Path(), Name: "bill-HBR-O-M20250201.xlsx", Kind: core.SourceWarehouseCoverBill}

	res := mustWarehouse(t, core.SourceWarehouseCoverBill, "1510", "GBP").Parse(context.Background(), doc, meta)

	if len(res.Entries) != 1 {
		t.Fatalf("entries = %d, want only the cover total", len(res.Entries))
	}
	if got := res.Entries[0].Amount.Amount.StringFixed(2); got != "1234.50" {
		t.Errorf("cover total = %s, want 1234.50", got)
	}
	if res.StatedTotal == nil || res.StatedTotal.StringFixed(2) != "1234.50" {
		t.Errorf("stated total = %v, want 1234.50", res.StatedTotal)
	}
}

func TestCoverBillMissingLabelYieldsZeroWithWarning(t *testing.T) {
	doc := workbook.NewMemory("wh/bill-broken.xlsx", workbook.Grid{
		Name: "Sheet1",
		Rows: [][]string{{"nothing", "useful"}},
	})
	meta := scan.FileMeta{Path: doc.Path(), Name: "bill-broken.xlsx", Kind: core.SourceWarehouseCoverBill}

	res := mustWarehouse(t, core.SourceWarehouseCoverBill, "1510", "GBP").Parse(context.Background(), doc, meta)

	if len(res.Entries) != 0 {
		t.Fatalf("entries = %d, want none (no detail-sheet fallback)", len(res.Entries))
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Code != core.WarnNoAmountColumn {
		t.Fatalf("warnings = %v, want a single %s", res.Warnings, core.WarnNoAmountColumn)
	}
}

func TestSummaryPageProbesForHeader(t *testing.T) {
	doc := workbook.NewMemory("wh/KH922_海外物流仓储服务费_2025-10-01_2025-10-15.xlsx", workbook.Grid{
		Name: "汇总页",
		Rows: [][]string{
			{"账单编号", "KH9220000002310"},
			{"账期", "2025-10-01 ~ 2025-10-15"},
			{},
			{"Billing Product", "Billing Item(计费项)", "Amount of Settlement Currency(结算币种金额)"},
			{"仓储", "Storage", "120.00"},
			{"配送", "Delivery", "80.00"},
		},
	})
	meta := scan.FileMeta{Path: doc.Path(), Name: "KH922_海外物流仓储服务费_2025-10-01_2025-10-15.xlsx", Kind: core.SourceWarehouseSummary}

	res := mustWarehouse(t, core.SourceWarehouseSummary, "jd", "CNY").Parse(context.Background(), doc, meta)

	if len(res.Entries) != 2 {
		t.Fatalf("entries = %d, want 2 (warnings: %v)", len(res.Entries), res.Warnings)
	}
	if got := res.EntrySum().StringFixed(2); got != "200.00" {
		t.Errorf("cost sum = %s, want 200.00", got)
	}
	if res.Entries[0].RawLabel != "Storage" {
		t.Errorf("raw label = %q, want the billing item", res.Entries[0].RawLabel)
	}
}

func TestCostBillPrefersBillingRuleAmount(t *testing.T) {
	doc := workbook.NewMemory("wh/2025-7月_CostBillExport1599.xlsx",
		workbook.Grid{
			Name: "CostBill",
			Rows: [][]string{
				{"费用类型", "结算金额", "计费规则金额", "计费时间"},
				{"仓储费", "99.99", "100.00", "2025-07-02 00:00:00"},
				{"操作费", "49.99", "50.00", "2025-08-01 00:00:00"},
			},
		},
		workbook.Grid{
			Name: "CostBill2",
			Rows: [][]string{
				{"费用类型", "计费规则金额"},
				{"ignored", "999.00"},
			},
		},
	)
	meta := scan.FileMeta{Path: doc.Path(), Name: "2025-7月_CostBillExport1599.xlsx", Kind: core.SourceWarehouseCostBill}

	res := mustWarehouse(t, core.SourceWarehouseCostBill, "haiyang", "GBP").Parse(context.Background(), doc, meta)

	if len(res.Entries) != 2 {
		t.Fatalf("entries = %d, want 2 from the CostBill sheet only", len(res.Entries))
	}
	if got := res.EntrySum().StringFixed(2); got != "150.00" {
		t.Errorf("cost sum = %s, want 150.00 from the billing-rule column", got)
	}
	if res.Entries[0].OccurredAt == nil || res.Entries[1].OccurredAt == nil {
		t.Fatal("billing-time column must populate per-row timestamps")
	}
	if res.Entries[0].OccurredAt.Month() == res.Entries[1].OccurredAt.Month() {
		t.Error("rows span two months; the timestamps must preserve that")
	}
}

func TestBookkeptFindsColumnsByShape(t *testing.T) {
	doc := workbook.NewMemory("wh/table-list-export.xlsx", workbook.Grid{
		Name: "账户明细",
		Rows: [][]string{
			{"±кÅ", "»ãÂÊ", "½ð¶î", "ʱ¼ä"}, // mojibake headers
			{"1", "1.00", "-120.50", "2025-06-28 10:00:00"},
			{"2", "1.00", "300.00", "2025-07-02 10:00:00"},
			{"3", "1.00", "-15.00", "2025-07-01 09:00:00"},
		},
	})
	meta := scan.FileMeta{Path: doc.Path(), Name: "table-list-export.xlsx", Kind: core.SourceWarehouseBookkept}

	res := mustWarehouse(t, core.SourceWarehouseBookkept, "dongfang", "CNY").Parse(context.Background(), doc, meta)

	if len(res.Entries) != 3 {
		t.Fatalf("entries = %d, want 3 (warnings: %v)", len(res.Entries), res.Warnings)
	}
	if res.Period != "2025-07" {
		t.Errorf("period = %q, want 2025-07 from the latest bookkeeping timestamp", res.Period)
	}
	if got := res.EntrySum().StringFixed(2); got != "164.50" {
		t.Errorf("sum = %s, want 164.50", got)
	}
	for _, e := range res.Entries {
		if e.OccurredAt != nil {
			t.Error("bookkept entries carry no row timestamps; the file is one month")
		}
	}
}
