package source

import (
	"context"
	"strings"

	"tally/internal/core"
	"tally/internal/scan"
	"tally/internal/workbook"
)

// flow parses the income-and-expense ledger export: fixed Chinese headers,
// amounts prefixed with the settlement currency glyph, withdrawal rows that
// must stay out of revenue.
type flow struct{}

func NewFlow() Adapter { return flow{} }

func (flow) Kind() core.SourceKind { return core.SourceFlow }

// withdrawalTokens mark money leaving the platform account.
var withdrawalTokens = []string{"提现", "出金"}

func (f flow) Parse(_ context.Context, doc workbook.Document, meta scan.FileMeta) core.DocumentResult {
	res := core.DocumentResult{Source: f.Kind(), File: meta.Path, Entity: "aliexpress", Currency: "CNY"}

	sheets := doc.Sheets()
	if len(sheets) == 0 {
		res.Warnf(core.WarnUnreadable, "document has no sheets")
		return res
	}
	rows, err := doc.Rows(sheets[0])
	if err != nil {
		res.Warnf(core.WarnUnreadable, "read rows: %v", err)
		return res
	}
	if len(rows) < 2 {
		return res
	}

	header := rows[0]
	amountCol := columnByKeyword(header, "变动金额")
	typeCol := columnByKeyword(header, "收支类型")
	feeCol := columnByKeyword(header, "费用项")
	timeCol := columnByKeyword(header, "结算时间")
	orderCol := columnByKeyword(header, "订单号")
	currencyCol := columnByKeyword(header, "币种")
	if amountCol < 0 {
		res.Warnf(core.WarnNoAmountColumn, "no change-amount column")
		return res
	}

	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		raw := workbook.Cell(row, amountCol)
		if raw == "" {
			continue
		}
		amount, err := core.ParseAmount(raw, core.FormatStandard)
		if err != nil {
			res.Warnf(core.WarnBadRow, "row %d: unparseable amount %q", i+2, raw)
			continue
		}

		incomeType := workbook.Cell(row, typeCol)
		feeItem := workbook.Cell(row, feeCol)
		category := core.CategoryOrder
		switch {
		case containsAny(incomeType, withdrawalTokens) || containsAny(feeItem, withdrawalTokens):
			category = core.CategoryTransfer
		case strings.Contains(incomeType, "退款"):
			category = core.CategoryRefund
		}

		currency := workbook.Cell(row, currencyCol)
		if currency == "" {
			currency = res.Currency
		}

		res.Entries = append(res.Entries, core.LedgerEntry{
			OccurredAt:  timeAt(row, timeCol),
			Amount:      core.NewMoney(amount, currency),
			Category:    category,
			RawLabel:    feeItem,
			Description: incomeType,
			ReferenceID: workbook.Cell(row, orderCol),
			Source:      f.Kind(),
			Entity:      res.Entity,
			Provenance:  core.Provenance{File: meta.Path, Row: i + 2},
		})
	}
	return res
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
