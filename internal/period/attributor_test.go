package period

import (
	"testing"
	"time"

	"tally/internal/core"
)

func TestResolvePriorityChain(t *testing.T) {
	rowTime := time.Date(2025, 7, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name         string
		ctx          Context
		wantPeriod   core.PeriodToken
		wantStrategy string
		wantOK       bool
	}{
		{
			name:         "row date outranks filename token",
			ctx:          Context{RowTime: &rowTime, FileName: "statement 2025-08.xlsx"},
			wantPeriod:   "2025-07",
			wantStrategy: StrategyRowDate,
			wantOK:       true,
		},
		{
			name:         "due date minus one day takes the previous month",
			ctx:          Context{FileName: "bill-HBR-O-M20250201.xlsx"},
			wantPeriod:   "2025-01",
			wantStrategy: StrategyDueDate,
			wantOK:       true,
		},
		{
			name:         "due date mid-month stays in its own month",
			ctx:          Context{FileName: "bill-HBR-O-A20241015.xlsx"},
			wantPeriod:   "2024-10",
			wantStrategy: StrategyDueDate,
			wantOK:       true,
		},
		{
			name:         "iso filename token",
			ctx:          Context{FileName: "KH922_海外物流仓储服务费_2025-10-01_2025-10-15.xlsx"},
			wantPeriod:   "2025-10",
			wantStrategy: StrategyFilenameToken,
			wantOK:       true,
		},
		{
			name:         "month-first token",
			ctx:          Context{FileName: "开票费用明细 05-2025 HUP.xlsx"},
			wantPeriod:   "2025-05",
			wantStrategy: StrategyFilenameToken,
			wantOK:       true,
		},
		{
			name:         "dotted month-first token",
			ctx:          Context{FileName: "开票费用明细 12.2024 HUP.xlsx"},
			wantPeriod:   "2024-12",
			wantStrategy: StrategyFilenameToken,
			wantOK:       true,
		},
		{
			name:         "year plus month abbreviation",
			ctx:          Context{FileName: "2-UK2025JulMonthlyTransaction.csv"},
			wantPeriod:   "2025-07",
			wantStrategy: StrategyFilenameToken,
			wantOK:       true,
		},
		{
			name:         "abbreviation plus two-digit year",
			ctx:          Context{FileName: "TSP Invoice Jul25.xlsx"},
			wantPeriod:   "2025-07",
			wantStrategy: StrategyFilenameToken,
			wantOK:       true,
		},
		{
			name:         "full month name with year",
			ctx:          Context{FileName: "Invoice November 2025 final.xlsx"},
			wantPeriod:   "2025-11",
			wantStrategy: StrategyFilenameToken,
			wantOK:       true,
		},
		{
			name:         "cjk year-month token",
			ctx:          Context{FileName: "2025-7月_CostBillExport1599.xlsx"},
			wantPeriod:   "2025-07",
			wantStrategy: StrategyFilenameToken,
			wantOK:       true,
		},
		{
			name:         "folder token with reference year",
			ctx:          Context{FileName: "FundDetail-1754358591792.xlsx", Folder: "多平台收入-7月", ReferenceYear: 2025},
			wantPeriod:   "2025-07",
			wantStrategy: StrategyFolderToken,
			wantOK:       true,
		},
		{
			name:   "folder month without reference year is unattributable",
			ctx:    Context{FileName: "FundDetail-1754358591792.xlsx", Folder: "多平台收入-7月"},
			wantOK: false,
		},
		{
			name:   "nothing applicable",
			ctx:    Context{FileName: "notes.xlsx", Folder: "misc"},
			wantOK: false,
		},
		{
			name:   "timestamp fragment is not a year",
			ctx:    Context{FileName: "export Jan01.xlsx"},
			wantOK: false,
		},
	}

	a := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, strategy, ok := a.Resolve(tt.ctx)
			if ok != tt.wantOK {
				t.Fatalf("Resolve ok = %v, want %v (got %q via %q)", ok, tt.wantOK, got, strategy)
			}
			if !ok {
				return
			}
			if got != tt.wantPeriod {
				t.Errorf("Resolve period = %q, want %q", got, tt.wantPeriod)
			}
			if strategy != tt.wantStrategy {
				t.Errorf("Resolve strategy = %q, want %q", strategy, tt.wantStrategy)
			}
		})
	}
}

func TestNormalizeInvisibleCharacters(t *testing.T) {
	// NBSP between tokens must not defeat the match.
	ctx := Context{FileName: "开票费用明细 05-2025 HUP.xlsx"}
	got, _, ok := New().Resolve(ctx)
	if !ok || got != "2025-05" {
		t.Errorf("Resolve with NBSP = %q ok=%v, want 2025-05", got, ok)
	}
}
