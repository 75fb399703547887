package core

import "strings"

// Category is the semantic type of a ledger entry.
type Category string

const (
	CategoryOrder        Category = "Order"
	CategoryRefund       Category = "Refund"
	CategoryTransfer     Category = "Transfer"
	CategoryPayout       Category = "Payout"
	CategoryServiceFee   Category = "Service Fee"
	CategoryInventoryFee Category = "Inventory Fee"
	CategoryAdjustment   Category = "Adjustment"
	CategoryOther        Category = "Other"
)

// ExcludedFromRevenue reports whether entries of this category are kept out
// of net settlement. Transfers and payouts move money between accounts; they
// are not revenue.
func (c Category) ExcludedFromRevenue() bool {
	return c == CategoryTransfer || c == CategoryPayout
}

// categoryKeywords maps substring signals, in any supported source language,
// to a category. Checked in order after the exact match fails, so the more
// specific signals sit before the generic ones.
var categoryKeywords = []struct {
	tokens   []string
	category Category
}{
	{[]string{"payout"}, CategoryPayout},
	{[]string{"transfer", "übertrag", "transfert", "virement", "振込", "送金", "提现", "出金", "withdraw"}, CategoryTransfer},
	{[]string{"refund", "erstattung", "remboursement", "返金", "退款"}, CategoryRefund},
	{[]string{"inventory fee", "storage fee", "仓储"}, CategoryInventoryFee},
	{[]string{"service fee", "servicegebühr", "frais de service", "サービス料", "服务费"}, CategoryServiceFee},
	{[]string{"order", "bestellung", "commande", "注文", "供货款"}, CategoryOrder},
	{[]string{"adjustment", "anpassung", "ajustement", "調整"}, CategoryAdjustment},
	{[]string{"liquidation"}, CategoryAdjustment},
	{[]string{"fee", "gebühr", "frais", "手数料"}, CategoryServiceFee},
}

// Classify maps an arbitrary, possibly non-English, possibly abbreviated
// source label to a category: exact match first, then keyword heuristics.
func Classify(label string) Category {
	raw := strings.ToLower(strings.TrimSpace(label))
	if raw == "" {
		return CategoryOther
	}

	for _, c := range []Category{
		CategoryOrder, CategoryRefund, CategoryTransfer, CategoryPayout,
		CategoryServiceFee, CategoryInventoryFee, CategoryAdjustment, CategoryOther,
	} {
		if strings.ToLower(string(c)) == raw {
			return c
		}
	}

	for _, k := range categoryKeywords {
		for _, tok := range k.tokens {
			if strings.Contains(raw, tok) {
				return k.category
			}
		}
	}
	return CategoryOther
}
