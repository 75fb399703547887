package source

import (
	"context"
	"regexp"
	"strings"

	"tally/internal/core"
	"tally/internal/scan"
	"tally/internal/workbook"
)

// fundDetail parses the multi-sheet fund-detail workbook: one sheet per
// settlement stream, with the sheet name carrying both the stream's category
// and the sign convention of its amounts.
type fundDetail struct{}

func NewFundDetail() Adapter { return fundDetail{} }

func (fundDetail) Kind() core.SourceKind { return core.SourceFundDetail }

// sheetStream binds a sheet-name prefix to a category and sign. Matching is
// longest-prefix so the generic settlement prefix cannot shadow the refund
// and violation sheets.
type sheetStream struct {
	prefix   string
	category core.Category
	sign     int
}

var fundDetailStreams = []sheetStream{
	{"结算-交易收入", core.CategoryOrder, 1},
	{"结算-售后退款", core.CategoryRefund, -1},
	{"结算-运费收入", core.CategoryOrder, 1},
	{"结算-运费退款", core.CategoryRefund, -1},
	{"支出-履约违规", core.CategoryServiceFee, -1},
	{"支出-技术服务费", core.CategoryServiceFee, -1},
	{"结算", core.CategoryOrder, 1},
}

// fundDetailAmountColumns are the known amount headers, by stream.
var fundDetailAmountColumns = []string{
	"交易收入", "退款金额", "运费收入", "运费退款", "违规金额", "扣款金额", "结算金额",
}

var fundDetailStorePattern = regexp.MustCompile(`(?i)^(.+?)\s*funddetail`)

func (f fundDetail) Parse(_ context.Context, doc workbook.Document, meta scan.FileMeta) core.DocumentResult {
	res := core.DocumentResult{Source: f.Kind(), File: meta.Path}

	store := meta.Name
	if m := fundDetailStorePattern.FindStringSubmatch(meta.Name); m != nil {
		store = strings.TrimSpace(m[1])
	} else if i := strings.LastIndex(store, "."); i >= 0 {
		store = store[:i]
	}
	res.Entity = entityID(store, "")

	for _, sheet := range doc.Sheets() {
		stream, ok := matchStream(sheet)
		if !ok {
			continue
		}
		rows, err := doc.Rows(sheet)
		if err != nil {
			res.Warnf(core.WarnUnreadable, "sheet %s: %v", sheet, err)
			continue
		}
		f.parseSheet(&res, meta, sheet, stream, rows)
	}
	return res
}

// matchStream finds the longest stream prefix contained in the sheet name.
func matchStream(sheet string) (sheetStream, bool) {
	var best sheetStream
	bestLen := 0
	for _, s := range fundDetailStreams {
		if strings.Contains(sheet, s.prefix) && len(s.prefix) > bestLen {
			best = s
			bestLen = len(s.prefix)
		}
	}
	return best, bestLen > 0
}

func (f fundDetail) parseSheet(res *core.DocumentResult, meta scan.FileMeta, sheet string, stream sheetStream, rows [][]string) {
	if len(rows) < 2 {
		return
	}
	header := rows[0]

	amountCol := -1
	for _, name := range fundDetailAmountColumns {
		if col := columnExact(header, name); col >= 0 {
			amountCol = col
			break
		}
	}
	if amountCol < 0 {
		amountCol = probeNumericColumn(rows)
	}
	if amountCol < 0 {
		res.Warnf(core.WarnNoAmountColumn, "sheet %s: no amount column", sheet)
		return
	}

	timeCol := columnByKeyword(header, "账务时间", "时间")
	currencyCol := columnExact(header, "币种")
	orderCol := columnExact(header, "订单编号")

	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		raw := workbook.Cell(row, amountCol)
		if raw == "" || raw == "/" {
			continue
		}
		amount, err := core.ParseAmount(raw, core.FormatStandard)
		if err != nil {
			res.Warnf(core.WarnBadRow, "sheet %s row %d: unparseable amount %q", sheet, i+2, raw)
			continue
		}
		// refund and expense sheets state magnitudes, so their sign comes
		// from the sheet; income sheets keep the raw sign so correction
		// rows stay negative
		if stream.sign < 0 {
			amount = amount.Abs().Neg()
		}

		currency := workbook.Cell(row, currencyCol)
		if currency == "" {
			currency = "USD"
		}
		if res.Currency == "" {
			res.Currency = currency
		}

		res.Entries = append(res.Entries, core.LedgerEntry{
			OccurredAt:  timeAt(row, timeCol),
			Amount:      core.NewMoney(amount, currency),
			Category:    stream.category,
			RawLabel:    sheet,
			ReferenceID: workbook.Cell(row, orderCol),
			Source:      f.Kind(),
			Entity:      res.Entity,
			Provenance:  core.Provenance{File: meta.Path, Row: i + 2},
		})
	}
}

// probeNumericColumn finds the first column whose data cells parse as
// numbers, for sheets with nonstandard amount headers.
func probeNumericColumn(rows [][]string) int {
	if len(rows) < 2 {
		return -1
	}
	width := len(rows[0])
	for col := 0; col < width; col++ {
		hits := 0
		for _, row := range rows[1:] {
			cell := workbook.Cell(row, col)
			if cell == "" || cell == "/" {
				continue
			}
			if _, err := core.ParseAmount(cell, core.FormatStandard); err != nil {
				hits = 0
				break
			}
			hits++
		}
		if hits > 0 {
			return col
		}
	}
	return -1
}
