// Package aggregate folds normalized ledger entries into per-month records.
// Aggregation is keyed by (entity, period, currency): the fold never crosses
// a currency boundary and never converts.
package aggregate

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"tally/internal/core"
)

// ErrMissingPeriod reports an upstream contract violation: every entry must
// carry a billing period before it reaches the fold.
var ErrMissingPeriod = errors.New("aggregate: entry has no billing period")

// Key identifies one monthly record.
type Key struct {
	Entity   string
	Period   core.PeriodToken
	Currency string
}

// Record is one entity's month in one currency. Amounts stay full precision
// inside the fold; the report rounds on the way out.
type Record struct {
	Key

	// Net is the month's net settlement over included revenue entries.
	Net decimal.Decimal
	// Cost is the month's fulfillment cost from warehouse sources.
	Cost decimal.Decimal
	// Withdrawn is the money moved out via excluded transfer and payout
	// entries, negated so a -200.00 payout reports as 200.00 withdrawn. It
	// is reference information, never part of Net.
	Withdrawn decimal.Decimal

	ByCategory map[core.Category]decimal.Decimal

	IncludedCount int
	ExcludedCount int

	sourceFiles map[string]struct{}
}

// GrossProfit is the month's net settlement minus fulfillment cost. It is a
// proxy: procurement and other cost kinds are out of scope.
func (r *Record) GrossProfit() decimal.Decimal {
	return r.Net.Sub(r.Cost)
}

// SourceFiles lists the files that contributed, sorted.
func (r *Record) SourceFiles() []string {
	files := make([]string, 0, len(r.sourceFiles))
	for f := range r.sourceFiles {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// Book accumulates entries into monthly records.
type Book struct {
	records map[Key]*Record
}

func NewBook() *Book {
	return &Book{records: make(map[Key]*Record)}
}

// Add folds one entry. The entry must already carry its billing period;
// Add with an unattributed entry returns ErrMissingPeriod and changes
// nothing.
func (b *Book) Add(e core.LedgerEntry) error {
	if !e.Period.Valid() {
		return ErrMissingPeriod
	}

	key := Key{Entity: e.Entity, Period: e.Period, Currency: e.Amount.Currency}
	rec, ok := b.records[key]
	if !ok {
		rec = &Record{
			Key:         key,
			ByCategory:  make(map[core.Category]decimal.Decimal),
			sourceFiles: make(map[string]struct{}),
		}
		b.records[key] = rec
	}

	if e.Provenance.File != "" {
		rec.sourceFiles[e.Provenance.File] = struct{}{}
	}

	switch {
	case e.Source.IsCost():
		rec.Cost = rec.Cost.Add(e.Amount.Amount)
		rec.ByCategory[e.Category] = rec.ByCategory[e.Category].Add(e.Amount.Amount)
		rec.IncludedCount++
	case e.ExcludedFromRevenue():
		rec.Withdrawn = rec.Withdrawn.Add(e.Amount.Amount.Neg())
		rec.ExcludedCount++
	default:
		rec.Net = rec.Net.Add(e.Amount.Amount)
		rec.ByCategory[e.Category] = rec.ByCategory[e.Category].Add(e.Amount.Amount)
		rec.IncludedCount++
	}
	return nil
}

// Records returns the folded months sorted by entity, period, currency, so
// identical inputs always produce identical output order.
func (b *Book) Records() []*Record {
	out := make([]*Record, 0, len(b.records))
	for _, rec := range b.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Entity != out[j].Entity {
			return out[i].Entity < out[j].Entity
		}
		if out[i].Period != out[j].Period {
			return out[i].Period < out[j].Period
		}
		return out[i].Currency < out[j].Currency
	})
	return out
}

func (b *Book) Len() int { return len(b.records) }
