package rates

import (
	"testing"

	"github.com/shopspring/decimal"

	"tally/internal/core"
)

func TestConvertToDisplayCurrency(t *testing.T) {
	table := Default()

	got, ok := table.Convert(core.NewMoney(decimal.RequireFromString("100.00"), "GBP"))
	if !ok {
		t.Fatal("Convert GBP: no rate")
	}
	if got.Currency != "CNY" || got.Amount.StringFixed(2) != "920.00" {
		t.Errorf("Convert = %s, want 920.00 CNY", got)
	}
}

func TestConvertSameCurrencyIsIdentity(t *testing.T) {
	table := Default()
	m := core.NewMoney(decimal.RequireFromString("55.10"), "CNY")
	got, ok := table.Convert(m)
	if !ok || !got.Amount.Equal(m.Amount) {
		t.Errorf("Convert CNY->CNY = %s, %v; want identity", got, ok)
	}
}

func TestConvertUnknownCurrency(t *testing.T) {
	table := Default()
	if _, ok := table.Convert(core.NewMoney(decimal.RequireFromString("1"), "CHF")); ok {
		t.Error("Convert CHF: want no rate rather than a guess")
	}
}

func TestWithOverrides(t *testing.T) {
	table := Default().WithOverrides(map[string]decimal.Decimal{
		"GBP": decimal.RequireFromString("9.5"),
		"CHF": decimal.RequireFromString("8.1"),
	})

	got, ok := table.Convert(core.NewMoney(decimal.RequireFromString("10"), "GBP"))
	if !ok || got.Amount.StringFixed(2) != "95.00" {
		t.Errorf("overridden GBP rate: got %s, %v", got, ok)
	}
	if _, ok := table.Convert(core.NewMoney(decimal.RequireFromString("1"), "CHF")); !ok {
		t.Error("extended CHF rate missing")
	}

	// the base table must not change
	if orig, _ := Default().Convert(core.NewMoney(decimal.RequireFromString("10"), "GBP")); orig.Amount.StringFixed(2) != "92.00" {
		t.Errorf("default table mutated: %s", orig.Amount)
	}
}
