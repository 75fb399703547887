package source

import (
	"context"
	"strings"

	"tally/internal/core"
	"tally/internal/scan"
	"tally/internal/workbook"
)

// coverBill parses warehouse bills whose first sheet is a cover page with a
// labeled grand total; the remaining sheets are detail that must not be
// summed, or the total would be counted twice.
type coverBill struct {
	warehouse string
	currency  string
}

func (coverBill) Kind() core.SourceKind { return core.SourceWarehouseCoverBill }

// coverTotalLabels are the grand-total cell labels seen across cover pages,
// in English, Chinese and German renderings.
var coverTotalLabels = []string{
	"total bill amount", "invoice total", "grand total",
	"账单总计", "账单小计", "账单合计", "账单金额",
	"rechnungsbetrag",
}

func (a coverBill) Parse(_ context.Context, doc workbook.Document, meta scan.FileMeta) core.DocumentResult {
	res := core.DocumentResult{Source: a.Kind(), File: meta.Path, Entity: a.warehouse, Currency: a.currency}

	sheets := doc.Sheets()
	if len(sheets) == 0 {
		res.Warnf(core.WarnUnreadable, "document has no sheets")
		return res
	}
	rows, err := doc.Rows(sheets[0])
	if err != nil {
		res.Warnf(core.WarnUnreadable, "read cover sheet: %v", err)
		return res
	}

	for r, row := range rows {
		for c, cell := range row {
			label := strings.ToLower(strings.TrimSpace(cell))
			if label == "" || !containsAny(label, coverTotalLabels) {
				continue
			}
			// first parseable value to the right of the label
			for cc := c + 1; cc < len(row); cc++ {
				raw := workbook.Cell(row, cc)
				if raw == "" {
					continue
				}
				amount, err := core.ParseAmount(raw, core.FormatStandard)
				if err != nil {
					continue
				}
				res.StatedTotal = &amount
				res.Entries = append(res.Entries, core.LedgerEntry{
					Amount:     core.NewMoney(amount, a.currency),
					Category:   core.CategoryServiceFee,
					RawLabel:   strings.TrimSpace(cell),
					Source:     a.Kind(),
					Entity:     a.warehouse,
					Provenance: core.Provenance{File: meta.Path, Row: r + 1},
				})
				return res
			}
		}
	}

	// no fallback to summing detail sheets; a miss is a loud zero
	res.Warnf(core.WarnNoAmountColumn, "no grand-total label on the cover sheet")
	return res
}
