// Package core provides the domain model for the reconciliation pipeline:
// monetary values, ledger entries, categories and billing periods.
//
// This file contains money handling and the centralized locale-aware amount
// parser consumed by every source adapter.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrCurrencyMismatch = errors.New("currency mismatch")
)

// NumberFormat selects how thousands and decimal separators are read.
type NumberFormat int

const (
	// FormatStandard reads "1,234.56" (en/jp style exports).
	FormatStandard NumberFormat = iota
	// FormatEuropean reads "1.234,56" (de/fr style exports).
	FormatEuropean
)

// Money is an exact-decimal quantity with an ISO-like currency code.
// Stored and reported values are quantized to 2 decimal places, half up;
// intermediate sums keep full precision until Rounded is called.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

// Rounded quantizes the amount to 2 decimal places, rounding half up.
func (m Money) Rounded() Money {
	return Money{Amount: m.Amount.Round(2), Currency: m.Currency}
}

// Add sums two values of the same currency. The core never converts
// currencies implicitly.
func (m Money) Add(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{Amount: m.Amount.Add(o.Amount), Currency: m.Currency}, nil
}

func (m Money) Neg() Money {
	return Money{Amount: m.Amount.Neg(), Currency: m.Currency}
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

func (m Money) String() string {
	return m.Amount.StringFixed(2) + " " + m.Currency
}

// currencyGlyphs are stripped before numeric parsing. Some exports prefix
// amounts with the settlement currency, e.g. "CN￥ 1,234.56".
var currencyGlyphs = []string{"CN￥", "CN¥", "￥", "¥", "£", "€", "$", "US", " "}

// ParseAmount converts a raw cell value into an exact decimal, handling the
// two separator conventions that appear across the source set. All adapters
// go through this function so format assumptions stay in one place.
//
// Examples:
//
//	ParseAmount("1,234.56", FormatStandard) -> 1234.56
//	ParseAmount("1.234,56", FormatEuropean) -> 1234.56
//	ParseAmount("CN￥ 50,00", FormatEuropean) -> 50.00
func ParseAmount(raw string, format NumberFormat) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	for _, g := range currencyGlyphs {
		s = strings.ReplaceAll(s, g, "")
	}
	s = strings.TrimSpace(s)
	if s == "" || s == "/" || s == "-" {
		return decimal.Decimal{}, ErrInvalidAmount
	}

	switch format {
	case FormatEuropean:
		dot := strings.LastIndex(s, ".")
		comma := strings.LastIndex(s, ",")
		switch {
		case dot >= 0 && comma > dot:
			// 1.234,56 -> dot is a thousands separator
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		case comma >= 0 && dot < 0:
			// a lone comma is a decimal point
			s = strings.Replace(s, ",", ".", 1)
		default:
			// already in standard form, or dot-decimal with comma thousands
			s = strings.ReplaceAll(s, ",", "")
		}
	default:
		s = strings.ReplaceAll(s, ",", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return d, nil
}

// Quantize rounds a bare decimal to the 2-decimal reporting precision.
func Quantize(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
