// Package period resolves the billing month for a document or an individual
// row. Resolution runs an ordered chain of strategies; the first applicable
// one wins, and a miss on the whole chain is an explicit "unattributable"
// outcome, never a guessed default.
package period

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"tally/internal/core"
)

// Strategy names, surfaced so callers can see which rule fired. The
// document-level names also drive the "collapsed to a single month" warning
// in the pipeline.
const (
	StrategyRowDate       = "row-date"
	StrategyDueDate       = "due-date"
	StrategyFilenameToken = "filename-token"
	StrategyFolderToken   = "folder-token"
)

// Context carries the signals a strategy may consult.
type Context struct {
	// RowTime is the per-row timestamp, when the source exposes one.
	RowTime *time.Time
	// FileName is the bare file name, without directories.
	FileName string
	// Folder is the name of the containing directory.
	Folder string
	// ReferenceYear resolves folder tokens like "7月" that carry no year. It
	// comes from configuration; the attributor never assumes the current
	// year on its own.
	ReferenceYear int
}

// Strategy resolves a billing period from one kind of signal.
type Strategy interface {
	Name() string
	Resolve(ctx Context) (core.PeriodToken, bool)
}

// Attributor runs the strategy chain in priority order.
type Attributor struct {
	chain []Strategy
}

// New returns the standard chain: row timestamp, due-date convention,
// filename token, containing-folder token.
func New() *Attributor {
	return &Attributor{chain: []Strategy{
		rowDate{},
		dueDate{},
		filenameToken{},
		folderToken{},
	}}
}

// Resolve returns the billing period, the name of the strategy that
// produced it, and whether any strategy applied.
func (a *Attributor) Resolve(ctx Context) (core.PeriodToken, string, bool) {
	for _, s := range a.chain {
		if p, ok := s.Resolve(ctx); ok && p.Valid() {
			return p, s.Name(), true
		}
	}
	return "", "", false
}

// rowDate uses the month of an explicit per-row timestamp. This is what
// lets one statement split across multiple output periods.
type rowDate struct{}

func (rowDate) Name() string { return StrategyRowDate }

func (rowDate) Resolve(ctx Context) (core.PeriodToken, bool) {
	if ctx.RowTime == nil || ctx.RowTime.IsZero() {
		return "", false
	}
	return core.PeriodOf(*ctx.RowTime), true
}

// dueDate handles warehouses that invoice the month after the service
// period and encode only the payment due date in the filename, as
// "M20250101" or "A20241001". The service period is the month containing
// due date minus one day, not the due date's own month.
type dueDate struct{}

var dueDatePattern = regexp.MustCompile(`(?i)[AM](\d{4})(\d{2})(\d{2})`)

func (dueDate) Name() string { return StrategyDueDate }

func (dueDate) Resolve(ctx Context) (core.PeriodToken, bool) {
	m := dueDatePattern.FindStringSubmatch(normalize(ctx.FileName))
	if m == nil {
		return "", false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	due := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if due.Day() != day {
		// normalized date differs, e.g. Feb 30
		return "", false
	}
	return core.PeriodOf(due.AddDate(0, 0, -1)), true
}

// filenameToken matches the explicit date grammars that appear across the
// source set's file names.
type filenameToken struct{}

func (filenameToken) Name() string { return StrategyFilenameToken }

func (filenameToken) Resolve(ctx Context) (core.PeriodToken, bool) {
	return tokenPeriod(ctx.FileName)
}

// folderToken is the weakest signal: a containing folder literally named
// for a month, e.g. "多平台收入-7月". Consulted only after every filename
// strategy has missed.
type folderToken struct{}

var folderMonthPattern = regexp.MustCompile(`(\d{1,2})月`)

func (folderToken) Name() string { return StrategyFolderToken }

func (folderToken) Resolve(ctx Context) (core.PeriodToken, bool) {
	if p, ok := tokenPeriod(ctx.Folder); ok {
		return p, true
	}
	if ctx.ReferenceYear == 0 {
		return "", false
	}
	m := folderMonthPattern.FindStringSubmatch(normalize(ctx.Folder))
	if m == nil {
		return "", false
	}
	month, _ := strconv.Atoi(m[1])
	if month < 1 || month > 12 {
		return "", false
	}
	return core.NewPeriod(ctx.ReferenceYear, time.Month(month)), true
}

var monthAbbrev = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

var monthNames = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

var (
	// 2025-08 (also the leading part of a full 2025-08-05 date)
	isoPattern = regexp.MustCompile(`(\d{4})-(\d{2})`)
	// 05-2025, 12.2024
	monthFirstPattern = regexp.MustCompile(`(\d{1,2})[-.](\d{4})`)
	// 2025JulMonthly, 2025Nov...
	yearAbbrevPattern = regexp.MustCompile(`(?i)(\d{4})(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)`)
	// Jul25; the two-digit year is restricted so timestamps like "Jan01"
	// cannot read as years
	abbrevYearPattern = regexp.MustCompile(`(?i)(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)(2[4-9])\b`)
	// 2025-7月
	cjkMonthPattern = regexp.MustCompile(`(\d{4})-(\d{1,2})月`)
	yearNearby      = regexp.MustCompile(`(20\d{2})`)
)

// tokenPeriod extracts a billing period from one name. Patterns run from
// most to least explicit; month values are validated before acceptance.
func tokenPeriod(name string) (core.PeriodToken, bool) {
	s := normalize(name)
	lower := strings.ToLower(s)

	if m := cjkMonthPattern.FindStringSubmatch(s); m != nil {
		if p, ok := makePeriod(m[1], m[2]); ok {
			return p, true
		}
	}
	if m := isoPattern.FindStringSubmatch(s); m != nil {
		if p, ok := makePeriod(m[1], m[2]); ok {
			return p, true
		}
	}
	if m := monthFirstPattern.FindStringSubmatch(s); m != nil {
		if p, ok := makePeriod(m[2], m[1]); ok {
			return p, true
		}
	}
	if m := yearAbbrevPattern.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		return core.NewPeriod(year, monthAbbrev[strings.ToLower(m[2])]), true
	}
	if m := abbrevYearPattern.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi("20" + m[2])
		return core.NewPeriod(year, monthAbbrev[strings.ToLower(m[1])]), true
	}
	for fullName, month := range monthNames {
		idx := strings.Index(lower, fullName)
		if idx < 0 {
			continue
		}
		// "may" inside a longer month name was already handled above; find a
		// year in the text after the month name
		if m := yearNearby.FindStringSubmatch(lower[idx+len(fullName):]); m != nil {
			year, _ := strconv.Atoi(m[1])
			return core.NewPeriod(year, month), true
		}
	}
	return "", false
}

func makePeriod(yearStr, monthStr string) (core.PeriodToken, bool) {
	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 2000 || year > 2100 {
		return "", false
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return "", false
	}
	return core.NewPeriod(year, time.Month(month)), true
}

// normalize strips the invisible characters (NBSP and friends) that show up
// in file names exported from web portals.
func normalize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', ' ', ' ':
			return ' '
		}
		return r
	}, s)
}
