// Package rates holds the fixed exchange-rate table used for the report's
// optional common-currency column. Canonical aggregation stays per-currency;
// conversion here is display only.
package rates

import (
	"github.com/shopspring/decimal"

	"tally/internal/core"
)

// Table converts settlement currencies into one display currency at fixed
// rates. A Table is a value; copies are independent.
type Table struct {
	Display string
	toCNY   map[string]decimal.Decimal
}

// defaultToCNY is the seeded table, in CNY per unit.
var defaultToCNY = map[string]string{
	"GBP": "9.2",
	"EUR": "7.8",
	"USD": "7.2",
	"CAD": "5.3",
	"JPY": "0.048",
	"AUD": "4.7",
	"CNY": "1",
}

// Default returns the seeded table displaying in CNY.
func Default() Table {
	t := Table{Display: "CNY", toCNY: make(map[string]decimal.Decimal, len(defaultToCNY))}
	for c, r := range defaultToCNY {
		t.toCNY[c] = decimal.RequireFromString(r)
	}
	return t
}

// WithOverrides returns a copy of the table with the given CNY rates
// replacing or extending the seeded ones.
func (t Table) WithOverrides(overrides map[string]decimal.Decimal) Table {
	out := Table{Display: t.Display, toCNY: make(map[string]decimal.Decimal, len(t.toCNY)+len(overrides))}
	for c, r := range t.toCNY {
		out.toCNY[c] = r
	}
	for c, r := range overrides {
		out.toCNY[c] = r
	}
	return out
}

// Convert returns the value in the display currency. The second return is
// false when no rate is known; callers leave the display column blank rather
// than guess.
func (t Table) Convert(m core.Money) (core.Money, bool) {
	if m.Currency == t.Display {
		return m, true
	}
	from, ok := t.toCNY[m.Currency]
	if !ok {
		return core.Money{}, false
	}
	to, ok := t.toCNY[t.Display]
	if !ok || to.IsZero() {
		return core.Money{}, false
	}
	amount := m.Amount.Mul(from).Div(to)
	return core.NewMoney(amount, t.Display), true
}
