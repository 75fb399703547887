package source

import (
	"context"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"tally/internal/core"
	"tally/internal/scan"
	"tally/internal/workbook"
)

// marketplace parses the monthly transaction CSV a marketplace seller
// account exports. The export language follows the site (en/de/fr/jp), the
// header sits below a free-text preamble, and every row decomposes its net
// total into sale, tax, credit, rebate and fee components.
type marketplace struct{}

func NewMarketplace() Adapter { return marketplace{} }

func (marketplace) Kind() core.SourceKind { return core.SourceMarketplace }

// headerScanLimit bounds the preamble scan; real exports keep the header
// within the first dozen lines.
const headerScanLimit = 50

// langMarkers identify the header row and its language at once: a row
// containing every marker for a language is that language's header.
var langMarkers = []struct {
	lang    string
	markers []string
}{
	{"jp", []string{"トランザクションの種類", "商品の売上", "合計"}},
	{"de", []string{"typ", "umsätze", "gesamt"}},
	{"fr", []string{"type", "ventes de produits", "total"}},
	{"en", []string{"type", "product sales", "total"}},
}

// fieldHeaders maps each logical field to its localized header text. Lookup
// falls back to the English header when a language lacks an override.
var fieldHeaders = map[string]map[string]string{
	"date_time":   {"en": "date/time", "de": "datum/uhrzeit", "fr": "date/heure", "jp": "日付/時間"},
	"type":        {"en": "type", "de": "typ", "fr": "type", "jp": "トランザクションの種類"},
	"order_id":    {"en": "order id", "de": "bestellnummer", "fr": "numéro de la commande", "jp": "注文番号"},
	"description": {"en": "description", "de": "beschreibung", "fr": "description", "jp": "商品名"},
	"total":       {"en": "total", "de": "gesamt", "fr": "total", "jp": "合計"},

	"product sales":           {"en": "product sales", "de": "umsätze", "fr": "ventes de produits", "jp": "商品の売上"},
	"product sales tax":       {"en": "product sales tax", "de": "produktumsatzsteuer", "fr": "taxe sur les ventes de produits", "jp": "商品の売上税"},
	"postage credits":         {"en": "postage credits", "de": "gutschrift für versandkosten", "fr": "crédits d'expédition", "jp": "配送料"},
	"postage credits tax":     {"en": "postage credits tax", "de": "steuer auf versandgutschrift", "fr": "taxe sur les crédits d'expédition", "jp": "配送料金にかかる税金"},
	"gift wrap credits":       {"en": "gift wrap credits", "de": "gutschrift für geschenkverpackung", "fr": "crédits cadeau", "jp": "ギフト包装手数料"},
	"giftwrap credits tax":    {"en": "giftwrap credits tax", "de": "steuer auf geschenkverpackungsgutschriften", "fr": "taxe sur les crédits cadeau", "jp": "ギフト包装料にかかる税金"},
	"promotional rebates":     {"en": "promotional rebates", "de": "rabatte aus werbeaktionen", "fr": "rabais promotionnels", "jp": "プロモーション割引额"},
	"promotional rebates tax": {"en": "promotional rebates tax", "de": "steuer auf aktionsrabatte", "fr": "taxe sur les rabais promotionnels", "jp": "プロモーション割引の税金"},
	"marketplace withheld tax": {
		"en": "marketplace withheld tax", "de": "einbehaltene steuer auf marketplace",
		"fr": "taxe retenue par le site de vente", "jp": "源泉徴収税",
	},
	"selling fees":           {"en": "selling fees", "de": "verkaufsgebühren", "fr": "frais de vente", "jp": "手数料"},
	"fba fees":               {"en": "fba fees", "de": "gebühren zu versand durch amazon", "fr": "frais expédié par amazon", "jp": "fba 手数料"},
	"other transaction fees": {"en": "other transaction fees", "de": "andere transaktionsgebühren", "fr": "autres frais de transaction", "jp": "トランザクションに関するその他の手数料"},
	"other":                  {"en": "other", "de": "andere", "fr": "divers", "jp": "その他"},
}

// componentFields are the decomposition columns; their sum is checked
// against the row total by the verifier. "total" itself is deliberately not
// a component.
var componentFields = []string{
	"product sales", "product sales tax",
	"postage credits", "postage credits tax",
	"gift wrap credits", "giftwrap credits tax",
	"promotional rebates", "promotional rebates tax",
	"marketplace withheld tax",
	"selling fees", "fba fees",
	"other transaction fees", "other",
}

// preambleCurrencyPattern matches the "All amounts in GBP, unless specified"
// note some exports carry above the header.
var preambleCurrencyPattern = regexp.MustCompile(`(?i)all\s+amounts\s+in\s+(GBP|EUR|USD|CAD|JPY|AUD)\b`)

var currencySite = map[string]string{
	"GBP": "UK", "USD": "US", "EUR": "DE", "CAD": "CA", "JPY": "JP", "AUD": "AU",
}

// langDefault supplies the site and currency when neither the file name nor
// the preamble states one.
var langDefault = map[string]struct{ site, currency string }{
	"de": {"DE", "EUR"},
	"fr": {"FR", "EUR"},
	"jp": {"JP", "JPY"},
	"en": {"US", "USD"},
}

func (m marketplace) Parse(_ context.Context, doc workbook.Document, meta scan.FileMeta) core.DocumentResult {
	res := core.DocumentResult{Source: m.Kind(), File: meta.Path}

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

	headerIdx, lang := detectMarketplaceHeader(rows)
	if headerIdx < 0 {
		res.Warnf(core.WarnNoHeader, "no transaction header within the first %d rows", headerScanLimit)
		return res
	}

	store, site := storeIdentity(meta.Name)
	if site == "" {
		if cur := preambleCurrency(rows[:headerIdx]); cur != "" {
			site = currencySite[cur]
		}
	}
	currency := siteCurrency[site]
	if site == "" || currency == "" {
		def := langDefault[lang]
		if site == "" {
			site = def.site
		}
		if currency == "" {
			currency = def.currency
		}
	}
	res.Entity = entityID(store, site)
	res.Currency = currency

	format := core.FormatStandard
	if lang == "de" || lang == "fr" {
		format = core.FormatEuropean
	}

	cols := resolveFieldColumns(rows[headerIdx], lang)
	totalCol, ok := cols["total"]
	if !ok {
		res.Warnf(core.WarnNoAmountColumn, "no total column in %s header", lang)
		return res
	}

	for i, row := range rows[headerIdx+1:] {
		if blankRow(row) {
			continue
		}
		rowNum := headerIdx + i + 2

		amount, err := core.ParseAmount(workbook.Cell(row, totalCol), format)
		if err != nil {
			if workbook.Cell(row, totalCol) == "" {
				amount = decimal.Zero
			} else {
				res.Warnf(core.WarnBadRow, "row %d: unparseable total %q", rowNum, workbook.Cell(row, totalCol))
				continue
			}
		}

		components := make(map[string]decimal.Decimal, len(componentFields))
		for _, field := range componentFields {
			col, ok := cols[field]
			if !ok {
				continue
			}
			if v, err := core.ParseAmount(workbook.Cell(row, col), format); err == nil {
				components[field] = v
			} else {
				components[field] = decimal.Zero
			}
		}

		label := cellAt(row, cols, "type")
		res.Entries = append(res.Entries, core.LedgerEntry{
			OccurredAt:  timeAt(row, colOr(cols, "date_time")),
			Amount:      core.NewMoney(amount, currency),
			Components:  components,
			Category:    core.Classify(label),
			RawLabel:    label,
			Description: cellAt(row, cols, "description"),
			ReferenceID: cellAt(row, cols, "order_id"),
			Source:      m.Kind(),
			Entity:      res.Entity,
			Provenance:  core.Provenance{File: meta.Path, Row: rowNum},
		})
	}
	return res
}

// detectMarketplaceHeader scans the preamble for a row carrying all the
// marker headers of one language.
func detectMarketplaceHeader(rows [][]string) (int, string) {
	limit := len(rows)
	if limit > headerScanLimit {
		limit = headerScanLimit
	}
	for i := 0; i < limit; i++ {
		joined := strings.ToLower(strings.Join(rows[i], ","))
		for _, lm := range langMarkers {
			all := true
			for _, marker := range lm.markers {
				if !strings.Contains(joined, strings.ToLower(marker)) {
					all = false
					break
				}
			}
			if all {
				return i, lm.lang
			}
		}
	}
	return -1, ""
}

// resolveFieldColumns maps logical field names to column indexes using the
// localized headers, falling back to English per field.
func resolveFieldColumns(header []string, lang string) map[string]int {
	index := make(map[string]int, len(header))
	for i, cell := range header {
		index[strings.ToLower(strings.TrimSpace(cell))] = i
	}
	cols := make(map[string]int, len(fieldHeaders))
	for field, byLang := range fieldHeaders {
		name, ok := byLang[lang]
		if !ok {
			name = byLang["en"]
		}
		if col, ok := index[strings.ToLower(name)]; ok {
			cols[field] = col
			continue
		}
		if name != byLang["en"] {
			if col, ok := index[strings.ToLower(byLang["en"])]; ok {
				cols[field] = col
			}
		}
	}
	return cols
}

func preambleCurrency(rows [][]string) string {
	for _, row := range rows {
		if m := preambleCurrencyPattern.FindStringSubmatch(strings.Join(row, " ")); m != nil {
			return strings.ToUpper(m[1])
		}
	}
	return ""
}

func colOr(cols map[string]int, field string) int {
	if col, ok := cols[field]; ok {
		return col
	}
	return -1
}

func cellAt(row []string, cols map[string]int, field string) string {
	return workbook.Cell(row, colOr(cols, field))
}
