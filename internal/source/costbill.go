package source

import (
	"context"
	"strings"

	"tally/internal/core"
	"tally/internal/scan"
	"tally/internal/workbook"
)

// costBill parses warehouse cost-bill exports: the CostBill sheet holds one
// charge per row, with the authoritative amount under the billing-rule
// column when present. A billing-time column, when the export carries one,
// lets a single bill spanning several months split per row downstream.
type costBill struct {
	warehouse string
	currency  string
}

func (costBill) Kind() core.SourceKind { return core.SourceWarehouseCostBill }

// costBillAmountPriority orders the candidate amount headers; the billing
// rule amount is the settlement basis, the others are fallbacks.
var costBillAmountPriority = [][]string{
	{"计费规则金额", "计费金额"},
	{"结算金额"},
	{"金额"},
}

func (a costBill) Parse(_ context.Context, doc workbook.Document, meta scan.FileMeta) core.DocumentResult {
	res := core.DocumentResult{Source: a.Kind(), File: meta.Path, Entity: a.warehouse, Currency: a.currency}

	sheets := doc.Sheets()
	if len(sheets) == 0 {
		res.Warnf(core.WarnUnreadable, "document has no sheets")
		return res
	}
	sheet := sheets[0]
	for _, s := range sheets {
		if strings.EqualFold(strings.TrimSpace(s), "costbill") {
			sheet = s
			break
		}
	}

	rows, err := doc.Rows(sheet)
	if err != nil {
		res.Warnf(core.WarnUnreadable, "sheet %s: %v", sheet, err)
		return res
	}
	if len(rows) < 2 {
		return res
	}

	header := rows[0]
	amountCol := -1
	for _, keywords := range costBillAmountPriority {
		if col := columnByKeyword(header, keywords...); col >= 0 {
			amountCol = col
			break
		}
	}
	if amountCol < 0 {
		res.Warnf(core.WarnNoAmountColumn, "sheet %s: no billing amount column", sheet)
		return res
	}

	timeCol := columnByKeyword(header, "计费时间", "计费日期", "billing time", "billing date")
	itemCol := columnByKeyword(header, "费用类型", "计费规则", "费用项")

	for i, row := range rows[1:] {
		if blankRow(row) || summaryRow(row) {
			continue
		}
		raw := workbook.Cell(row, amountCol)
		if raw == "" {
			continue
		}
		amount, err := core.ParseAmount(raw, core.FormatStandard)
		if err != nil {
			res.Warnf(core.WarnBadRow, "sheet %s row %d: unparseable amount %q", sheet, i+2, raw)
			continue
		}
		res.Entries = append(res.Entries, core.LedgerEntry{
			OccurredAt: timeAt(row, timeCol),
			Amount:     core.NewMoney(amount, a.currency),
			Category:   core.CategoryServiceFee,
			RawLabel:   workbook.Cell(row, itemCol),
			Source:     a.Kind(),
			Entity:     a.warehouse,
			Provenance: core.Provenance{File: meta.Path, Row: i + 2},
		})
	}
	return res
}
