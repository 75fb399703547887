package source

import (
	"context"
	"regexp"
	"strings"

	"tally/internal/core"
	"tally/internal/scan"
	"tally/internal/workbook"
)

// managed parses the managed-store income/expense detail export. Every row
// names its fee item; the fee item decides the category, with withdrawals
// classified as transfers so they drop out of revenue downstream.
type managed struct{}

func NewManaged() Adapter { return managed{} }

func (managed) Kind() core.SourceKind { return core.SourceManaged }

var managedFeeItems = map[string]core.Category{
	"供货款":   core.CategoryOrder,
	"售后退款":  core.CategoryRefund,
	"履约服务费": core.CategoryServiceFee,
	"技术服务费": core.CategoryServiceFee,
	"提现":    core.CategoryTransfer,
}

var managedStorePattern = regexp.MustCompile(`^(.+?)\s*收支明细`)

func (m managed) Parse(_ context.Context, doc workbook.Document, meta scan.FileMeta) core.DocumentResult {
	res := core.DocumentResult{Source: m.Kind(), File: meta.Path, Currency: "CNY"}

	store := meta.Name
	if match := managedStorePattern.FindStringSubmatch(meta.Name); match != nil {
		store = strings.TrimSpace(match[1])
	} else if i := strings.LastIndex(store, "."); i >= 0 {
		store = store[:i]
	}
	res.Entity = entityID(store, "")

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
	feeCol := columnByKeyword(header, "费用项")
	amountCol := columnByKeyword(header, "金额")
	timeCol := columnByKeyword(header, "结算时间")
	orderCol := columnByKeyword(header, "订单号")
	if amountCol < 0 {
		res.Warnf(core.WarnNoAmountColumn, "no amount column")
		return res
	}

	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		feeItem := workbook.Cell(row, feeCol)
		if feeItem == "" {
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

		category, ok := managedFeeItems[feeItem]
		if !ok {
			category = core.Classify(feeItem)
		}

		res.Entries = append(res.Entries, core.LedgerEntry{
			OccurredAt:  timeAt(row, timeCol),
			Amount:      core.NewMoney(amount, res.Currency),
			Category:    category,
			RawLabel:    feeItem,
			ReferenceID: workbook.Cell(row, orderCol),
			Source:      m.Kind(),
			Entity:      res.Entity,
			Provenance:  core.Provenance{File: meta.Path, Row: i + 2},
		})
	}
	return res
}
