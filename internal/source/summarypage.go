package source

import (
	"context"

	"tally/internal/core"
	"tally/internal/scan"
	"tally/internal/workbook"
)

// summaryPage parses warehouse bills whose first sheet opens with free-form
// bill information and buries a bilingual header somewhere in the first
// twenty rows; the settlement-currency amount column below it carries one
// charge per row.
type summaryPage struct {
	warehouse string
	currency  string
}

func (summaryPage) Kind() core.SourceKind { return core.SourceWarehouseSummary }

// summaryHeaderProbe bounds the header search on the summary sheet.
const summaryHeaderProbe = 20

func (a summaryPage) Parse(_ context.Context, doc workbook.Document, meta scan.FileMeta) core.DocumentResult {
	res := core.DocumentResult{Source: a.Kind(), File: meta.Path, Entity: a.warehouse, Currency: a.currency}

	sheets := doc.Sheets()
	if len(sheets) == 0 {
		res.Warnf(core.WarnUnreadable, "document has no sheets")
		return res
	}
	rows, err := doc.Rows(sheets[0])
	if err != nil {
		res.Warnf(core.WarnUnreadable, "read summary sheet: %v", err)
		return res
	}

	headerIdx, amountCol := -1, -1
	limit := len(rows)
	if limit > summaryHeaderProbe {
		limit = summaryHeaderProbe
	}
	for i := 0; i < limit; i++ {
		if col := columnByKeyword(rows[i], "amount of settlement currency"); col >= 0 {
			headerIdx, amountCol = i, col
			break
		}
	}
	if headerIdx < 0 {
		res.Warnf(core.WarnNoAmountColumn, "no settlement-currency column within the first %d rows", summaryHeaderProbe)
		return res
	}

	itemCol := columnByKeyword(rows[headerIdx], "billing item")

	for i, row := range rows[headerIdx+1:] {
		if blankRow(row) || summaryRow(row) {
			continue
		}
		raw := workbook.Cell(row, amountCol)
		if raw == "" {
			continue
		}
		amount, err := core.ParseAmount(raw, core.FormatStandard)
		if err != nil {
			continue
		}
		res.Entries = append(res.Entries, core.LedgerEntry{
			Amount:     core.NewMoney(amount, a.currency),
			Category:   core.CategoryServiceFee,
			RawLabel:   workbook.Cell(row, itemCol),
			Source:     a.Kind(),
			Entity:     a.warehouse,
			Provenance: core.Provenance{File: meta.Path, Row: headerIdx + i + 2},
		})
	}
	return res
}
