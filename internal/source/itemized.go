package source

import (
	"context"
	"strings"

	"tally/internal/core"
	"tally/internal/scan"
	"tally/internal/workbook"
)

// itemized parses fully itemized warehouse invoices: every sheet is a fee
// category with one cost row per charge. Invoice-items sheets decompose each
// charge into fee columns, so only their Total Cost column is summed; other
// sheets carry a plain Cost column.
type itemized struct {
	warehouse string
	currency  string
}

func (itemized) Kind() core.SourceKind { return core.SourceWarehouseItemized }

func (a itemized) Parse(_ context.Context, doc workbook.Document, meta scan.FileMeta) core.DocumentResult {
	res := core.DocumentResult{Source: a.Kind(), File: meta.Path, Entity: a.warehouse, Currency: a.currency}

	for _, sheet := range doc.Sheets() {
		rows, err := doc.Rows(sheet)
		if err != nil {
			res.Warnf(core.WarnUnreadable, "sheet %s: %v", sheet, err)
			continue
		}
		if len(rows) < 2 {
			continue
		}

		costCol := a.costColumn(sheet, rows[0])
		if costCol < 0 {
			continue
		}

		for i, row := range rows[1:] {
			if blankRow(row) || summaryRow(row) {
				continue
			}
			raw := workbook.Cell(row, costCol)
			if raw == "" {
				continue
			}
			amount, err := core.ParseAmount(raw, core.FormatStandard)
			if err != nil {
				res.Warnf(core.WarnBadRow, "sheet %s row %d: unparseable cost %q", sheet, i+2, raw)
				continue
			}
			res.Entries = append(res.Entries, core.LedgerEntry{
				Amount:     core.NewMoney(amount, a.currency),
				Category:   core.CategoryServiceFee,
				RawLabel:   sheet,
				Source:     a.Kind(),
				Entity:     a.warehouse,
				Provenance: core.Provenance{File: meta.Path, Row: i + 2},
			})
		}
	}
	return res
}

// costColumn picks the column to sum for one sheet. On invoice-items sheets
// only Total Cost avoids double-counting the decomposed fee columns.
func (itemized) costColumn(sheet string, header []string) int {
	lower := strings.ToLower(sheet)
	if strings.Contains(lower, "invoice items") && !strings.Contains(lower, "additional") {
		return columnByKeyword(header, "total cost")
	}
	if col := columnExact(header, "cost"); col >= 0 {
		return col
	}
	for i, cell := range header {
		name := strings.ToLower(cell)
		if strings.Contains(name, "total") && strings.Contains(name, "cost") {
			return i
		}
	}
	return -1
}
