package source

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"tally/internal/core"
	"tally/internal/scan"
	"tally/internal/workbook"
)

// bookkept parses warehouse account ledgers exported from a bookkeeping
// system. Column names vary (and sometimes arrive mojibake), so the amount
// and time columns are found by keyword first and by value shape second.
// The whole file belongs to the month of its latest bookkeeping timestamp;
// these ledgers are not truncated by month.
type bookkept struct {
	warehouse string
	currency  string
}

func (bookkept) Kind() core.SourceKind { return core.SourceWarehouseBookkept }

var (
	bookkeptAmountKeywords = []string{"记账金额", "入账金额", "收支金额", "发生额", "交易金额"}
	bookkeptTimeKeywords   = []string{"记账时间", "记账日期", "入账时间", "交易时间", "交易日期"}

	// bounds of the exchange-rate band used by the column shape heuristic
	nearOneLow  = decimal.RequireFromString("0.9")
	nearOneHigh = decimal.RequireFromString("1.1")
)

func (a bookkept) Parse(_ context.Context, doc workbook.Document, meta scan.FileMeta) core.DocumentResult {
	res := core.DocumentResult{Source: a.Kind(), File: meta.Path, Entity: a.warehouse, Currency: a.currency}

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
	data := rows[1:]

	amountCol := columnByKeyword(header, bookkeptAmountKeywords...)
	if amountCol < 0 {
		amountCol = amountColumnByShape(data, len(header))
	}
	if amountCol < 0 {
		res.Warnf(core.WarnNoAmountColumn, "no bookkeeping amount column by name or shape")
		return res
	}

	timeCol := columnByKeyword(header, bookkeptTimeKeywords...)
	if timeCol < 0 {
		timeCol = timeColumnByShape(data, len(header))
	}
	if timeCol < 0 {
		res.Warnf(core.WarnUnattributable, "no bookkeeping time column; file cannot be placed in a month")
		return res
	}

	var latest time.Time
	for i, row := range data {
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
		if t, ok := parseTime(workbook.Cell(row, timeCol)); ok && t.After(latest) {
			latest = t
		}
		res.Entries = append(res.Entries, core.LedgerEntry{
			Amount:     core.NewMoney(amount, a.currency),
			Category:   core.CategoryServiceFee,
			Source:     a.Kind(),
			Entity:     a.warehouse,
			Provenance: core.Provenance{File: meta.Path, Row: i + 2},
		})
	}

	if latest.IsZero() {
		if len(res.Entries) > 0 {
			res.Entries = nil
			res.Warnf(core.WarnUnattributable, "no parseable bookkeeping timestamps")
		}
		return res
	}
	res.Period = core.PeriodOf(latest)
	return res
}

// amountColumnByShape picks the column that looks most like a signed amount:
// mostly numeric, mixed signs, not an exchange-rate column hovering near 1.
func amountColumnByShape(data [][]string, width int) int {
	best, bestScore := -1, -1
	for col := 0; col < width; col++ {
		numeric, negative, nearOne := 0, 0, 0
		for _, row := range data {
			raw := workbook.Cell(row, col)
			if raw == "" {
				continue
			}
			v, err := core.ParseAmount(raw, core.FormatStandard)
			if err != nil {
				numeric = 0
				break
			}
			numeric++
			if v.IsNegative() {
				negative++
			}
			abs := v.Abs()
			if abs.GreaterThanOrEqual(nearOneLow) && abs.LessThanOrEqual(nearOneHigh) {
				nearOne++
			}
		}
		if numeric == 0 {
			continue
		}
		if nearOne*10 >= numeric*8 {
			// exchange-rate shaped
			continue
		}
		score := numeric
		if negative > 0 && negative < numeric {
			score += 1 << 20
		}
		if score > bestScore {
			best, bestScore = col, score
		}
	}
	return best
}

// timeColumnByShape picks the column with the highest share of parseable
// timestamps, requiring at least a fifth of the cells to parse.
func timeColumnByShape(data [][]string, width int) int {
	best := -1
	bestRate := 0.2
	for col := 0; col < width; col++ {
		total, parsed := 0, 0
		for _, row := range data {
			raw := workbook.Cell(row, col)
			if raw == "" {
				continue
			}
			total++
			if _, ok := parseTime(raw); ok {
				parsed++
			}
		}
		if total == 0 {
			continue
		}
		rate := float64(parsed) / float64(total)
		if rate > bestRate {
			best, bestRate = col, rate
		}
	}
	return best
}
