package source

import (
	"context"
	"regexp"
	"strings"

	"tally/internal/core"
	"tally/internal/scan"
	"tally/internal/workbook"
)

// statement parses the completed-bill workbook: a one-row summary banner,
// then the header on the second row, then item rows keyed by bill type.
type statement struct{}

func NewStatement() Adapter { return statement{} }

func (statement) Kind() core.SourceKind { return core.SourceStatement }

var (
	statementStorePattern = regexp.MustCompile(`^(.+?)\s*已完成账单`)
	statementSitePattern  = regexp.MustCompile(`(?i)(UK|DE|FR|IT|ES|US)`)
)

func (s statement) Parse(_ context.Context, doc workbook.Document, meta scan.FileMeta) core.DocumentResult {
	res := core.DocumentResult{Source: s.Kind(), File: meta.Path}

	store := meta.Name
	if m := statementStorePattern.FindStringSubmatch(meta.Name); m != nil {
		store = strings.TrimSpace(m[1])
	} else if i := strings.LastIndex(store, "."); i >= 0 {
		store = store[:i]
	}
	site := ""
	if m := statementSitePattern.FindStringSubmatch(meta.Name); m != nil {
		site = strings.ToUpper(m[1])
		// store names often end in the site token; keep it out of the name
		// so the entity id carries it exactly once
		store = strings.TrimSpace(strings.TrimSuffix(store, site))
	}
	res.Entity = entityID(store, site)
	res.Currency = siteCurrency[site]
	if res.Currency == "" {
		res.Currency = "USD"
	}

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
	if len(rows) < 3 {
		res.Warnf(core.WarnNoHeader, "too few rows for a banner, header and data")
		return res
	}

	// the first row is the summary banner; the real header is the second
	header := rows[1]
	amountCol := columnByKeyword(header, "应收金额")
	orderCol := columnByKeyword(header, "订单号", "order")
	dateCol := columnByKeyword(header, "打款日期", "签收")
	typeCol := columnByKeyword(header, "账单类型")
	if amountCol < 0 {
		amountCol = probeNumericColumn(rows[1:])
	}
	if amountCol < 0 {
		res.Warnf(core.WarnNoAmountColumn, "no receivable-amount column")
		return res
	}

	for i, row := range rows[2:] {
		if blankRow(row) || summaryRow(row) {
			continue
		}
		raw := workbook.Cell(row, amountCol)
		if raw == "" {
			continue
		}
		amount, err := core.ParseAmount(raw, core.FormatStandard)
		if err != nil {
			res.Warnf(core.WarnBadRow, "row %d: unparseable amount %q", i+3, raw)
			continue
		}

		label := workbook.Cell(row, typeCol)
		category := core.CategoryOrder
		if strings.Contains(label, "退款") {
			category = core.CategoryRefund
			if amount.IsPositive() {
				amount = amount.Neg()
			}
		}

		res.Entries = append(res.Entries, core.LedgerEntry{
			OccurredAt:  timeAt(row, dateCol),
			Amount:      core.NewMoney(amount, res.Currency),
			Category:    category,
			RawLabel:    label,
			ReferenceID: workbook.Cell(row, orderCol),
			Source:      s.Kind(),
			Entity:      res.Entity,
			Provenance:  core.Provenance{File: meta.Path, Row: i + 3},
		})
	}
	return res
}
