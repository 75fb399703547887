package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		format  NumberFormat
		want    string
		wantErr bool
	}{
		{name: "plain", raw: "12.34", format: FormatStandard, want: "12.34"},
		{name: "thousands", raw: "1,234.56", format: FormatStandard, want: "1234.56"},
		{name: "negative", raw: "-200.00", format: FormatStandard, want: "-200"},
		{name: "european", raw: "1.234,56", format: FormatEuropean, want: "1234.56"},
		{name: "european lone comma", raw: "50,00", format: FormatEuropean, want: "50"},
		{name: "european already standard", raw: "1,234.56", format: FormatEuropean, want: "1234.56"},
		{name: "currency prefix", raw: "CN￥ 1,234.56", format: FormatStandard, want: "1234.56"},
		{name: "pound sign", raw: "£30.00", format: FormatStandard, want: "30"},
		{name: "placeholder slash", raw: "/", format: FormatStandard, wantErr: true},
		{name: "empty", raw: "  ", format: FormatStandard, wantErr: true},
		{name: "garbage", raw: "n/a", format: FormatStandard, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.raw, tt.format)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAmount(%q) expected error, got %s", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) unexpected error: %v", tt.raw, err)
			}
			if got.String() != tt.want {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}

func TestMoneyRounded(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12.345", "12.35"},
		{"12.344", "12.34"},
		{"12.005", "12.01"},
		{"-12.005", "-12.01"},
		{"100", "100.00"},
	}
	for _, tt := range tests {
		d, err := decimal.NewFromString(tt.in)
		if err != nil {
			t.Fatal(err)
		}
		got := NewMoney(d, "GBP").Rounded()
		if got.Amount.StringFixed(2) != tt.want {
			t.Errorf("Rounded(%s) = %s, want %s", tt.in, got.Amount.StringFixed(2), tt.want)
		}
	}
}

func TestMoneyAddCurrencyMismatch(t *testing.T) {
	a := NewMoney(decimal.NewFromInt(1), "GBP")
	b := NewMoney(decimal.NewFromInt(1), "EUR")
	if _, err := a.Add(b); err != ErrCurrencyMismatch {
		t.Errorf("Add across currencies: got %v, want ErrCurrencyMismatch", err)
	}
}
