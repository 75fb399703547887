// Package report writes the monthly reconciliation workbook: revenue
// months, warehouse cost months, a combined overview, and every warning the
// run produced.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"tally/internal/aggregate"
	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/rates"
)

const (
	sheetOverview = "Monthly Overview"
	sheetRevenue  = "Revenue"
	sheetCosts    = "Warehouse Costs"
	sheetWarnings = "Warnings"
)

// RunMeta stamps the workbook with the run that produced it.
type RunMeta struct {
	RunID       string
	GeneratedAt time.Time
}

type Writer struct {
	table  rates.Table
	logger *log.Logger
}

func NewWriter(table rates.Table, logger *log.Logger) *Writer {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Writer{table: table, logger: logger.WithComponent(log.ComponentReport)}
}

// Write renders the records and warnings to path, creating parent
// directories as needed.
func (w *Writer) Write(path string, meta RunMeta, records []*aggregate.Record, warnings []core.Warning) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("report: create output directory: %w", err)
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetOverview); err != nil {
		return fmt.Errorf("report: rename sheet: %w", err)
	}
	for _, name := range []string{sheetRevenue, sheetCosts, sheetWarnings} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("report: create sheet %s: %w", name, err)
		}
	}

	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("report: money style: %w", err)
	}

	if err := w.writeOverview(f, meta, records, moneyStyle); err != nil {
		return err
	}
	if err := w.writeRevenue(f, records, moneyStyle); err != nil {
		return err
	}
	if err := w.writeCosts(f, records, moneyStyle); err != nil {
		return err
	}
	if err := w.writeWarnings(f, warnings); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("report: save %s: %w", path, err)
	}
	w.logger.Info("report written", log.FieldFile, path, "months", len(records), log.FieldWarnings, len(warnings))
	return nil
}

func (w *Writer) writeOverview(f *excelize.File, meta RunMeta, records []*aggregate.Record, moneyStyle int) error {
	display := w.table.Display
	header := []any{
		"Entity", "Period", "Currency",
		"Net Settlement", "Fulfillment Cost", "Gross Profit",
		"Gross Profit (" + display + ")",
	}
	if err := f.SetSheetRow(sheetOverview, "A1", &header); err != nil {
		return fmt.Errorf("report: overview header: %w", err)
	}

	row := 2
	for _, r := range records {
		profit := r.GrossProfit()
		cells := []any{
			r.Entity, string(r.Period), r.Currency,
			money(r.Net), money(r.Cost), money(profit),
		}
		if converted, ok := w.table.Convert(core.NewMoney(profit, r.Currency)); ok {
			cells = append(cells, money(converted.Amount))
		} else {
			cells = append(cells, "")
		}
		if err := f.SetSheetRow(sheetOverview, fmt.Sprintf("A%d", row), &cells); err != nil {
			return fmt.Errorf("report: overview row %d: %w", row, err)
		}
		row++
	}

	// run stamp below the table
	stamp := []any{"run", meta.RunID, meta.GeneratedAt.Format(time.RFC3339)}
	if err := f.SetSheetRow(sheetOverview, fmt.Sprintf("A%d", row+1), &stamp); err != nil {
		return fmt.Errorf("report: overview stamp: %w", err)
	}
	return styleMoneyColumns(f, sheetOverview, moneyStyle, "D", "G", row-1)
}

func (w *Writer) writeRevenue(f *excelize.File, records []*aggregate.Record, moneyStyle int) error {
	header := []any{
		"Entity", "Period", "Currency",
		"Orders", "Refunds", "Fees", "Other",
		"Net Settlement", "Withdrawn (ref)", "Entries",
	}
	if err := f.SetSheetRow(sheetRevenue, "A1", &header); err != nil {
		return fmt.Errorf("report: revenue header: %w", err)
	}

	row := 2
	for _, r := range records {
		if r.Cost.IsZero() && r.Net.IsZero() && r.Withdrawn.IsZero() {
			continue
		}
		if !r.Cost.IsZero() && r.Net.IsZero() {
			// cost-only month, lives on the costs sheet
			continue
		}
		fees := r.ByCategory[core.CategoryServiceFee].Add(r.ByCategory[core.CategoryInventoryFee])
		other := r.Net.
			Sub(r.ByCategory[core.CategoryOrder]).
			Sub(r.ByCategory[core.CategoryRefund]).
			Sub(fees)
		cells := []any{
			r.Entity, string(r.Period), r.Currency,
			money(r.ByCategory[core.CategoryOrder]),
			money(r.ByCategory[core.CategoryRefund]),
			money(fees),
			money(other),
			money(r.Net),
			money(r.Withdrawn),
			r.IncludedCount + r.ExcludedCount,
		}
		if err := f.SetSheetRow(sheetRevenue, fmt.Sprintf("A%d", row), &cells); err != nil {
			return fmt.Errorf("report: revenue row %d: %w", row, err)
		}
		row++
	}
	return styleMoneyColumns(f, sheetRevenue, moneyStyle, "D", "I", row-1)
}

func (w *Writer) writeCosts(f *excelize.File, records []*aggregate.Record, moneyStyle int) error {
	header := []any{"Warehouse", "Period", "Currency", "Total Cost", "Entries", "Source Files"}
	if err := f.SetSheetRow(sheetCosts, "A1", &header); err != nil {
		return fmt.Errorf("report: costs header: %w", err)
	}

	row := 2
	for _, r := range records {
		if r.Cost.IsZero() {
			continue
		}
		cells := []any{
			r.Entity, string(r.Period), r.Currency,
			money(r.Cost), r.IncludedCount,
			strings.Join(baseNames(r.SourceFiles()), "; "),
		}
		if err := f.SetSheetRow(sheetCosts, fmt.Sprintf("A%d", row), &cells); err != nil {
			return fmt.Errorf("report: costs row %d: %w", row, err)
		}
		row++
	}
	return styleMoneyColumns(f, sheetCosts, moneyStyle, "D", "D", row-1)
}

func (w *Writer) writeWarnings(f *excelize.File, warnings []core.Warning) error {
	header := []any{"File", "Code", "Message"}
	if err := f.SetSheetRow(sheetWarnings, "A1", &header); err != nil {
		return fmt.Errorf("report: warnings header: %w", err)
	}
	for i, warn := range warnings {
		cells := []any{warn.File, warn.Code, warn.Message}
		if err := f.SetSheetRow(sheetWarnings, fmt.Sprintf("A%d", i+2), &cells); err != nil {
			return fmt.Errorf("report: warning row %d: %w", i+2, err)
		}
	}
	return nil
}

// money renders a full-precision decimal at the 2-decimal reporting
// precision.
func money(d decimal.Decimal) float64 {
	v, _ := d.Round(2).Float64()
	return v
}

func styleMoneyColumns(f *excelize.File, sheet string, style int, fromCol, toCol string, dataRows int) error {
	if dataRows < 1 {
		return nil
	}
	top := fmt.Sprintf("%s2", fromCol)
	bottom := fmt.Sprintf("%s%d", toCol, dataRows+1)
	if err := f.SetCellStyle(sheet, top, bottom, style); err != nil {
		return fmt.Errorf("report: style %s: %w", sheet, err)
	}
	return nil
}

func baseNames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}
