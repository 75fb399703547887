package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SourceKind identifies the platform or warehouse family a document came
// from. Adapters register under these tags; routing never branches on file
// contents outside the adapter that owns the kind.
type SourceKind string

const (
	SourceMarketplace SourceKind = "marketplace"
	SourceFundDetail  SourceKind = "funddetail"
	SourceStatement   SourceKind = "statement"
	SourceFlow        SourceKind = "flow"
	SourceManaged     SourceKind = "managed"

	SourceWarehouseItemized  SourceKind = "warehouse-itemized"
	SourceWarehouseCoverBill SourceKind = "warehouse-coverbill"
	SourceWarehouseSummary   SourceKind = "warehouse-summary"
	SourceWarehouseCostBill  SourceKind = "warehouse-costbill"
	SourceWarehouseBookkept  SourceKind = "warehouse-bookkept"
)

// IsCost reports whether the kind contributes to the fulfillment-cost side
// of the report rather than revenue.
func (k SourceKind) IsCost() bool {
	return strings.HasPrefix(string(k), "warehouse-")
}

// Provenance records where an entry came from, for traceability.
type Provenance struct {
	File string
	Row  int
}

// LedgerEntry is one normalized signed monetary fact derived from a source
// row. Amount is the single authoritative net-effect value: positive
// increases operator cash, negative decreases it. Components, when a source
// exposes a decomposition, are used only for verification.
type LedgerEntry struct {
	OccurredAt  *time.Time
	Amount      Money
	Components  map[string]decimal.Decimal
	Category    Category
	RawLabel    string
	Description string
	ReferenceID string
	Source      SourceKind
	Entity      string
	Period      PeriodToken
	Provenance  Provenance
}

// ExcludedFromRevenue reports whether the entry stays out of net settlement.
// Beyond the category check, an entry with no reference id whose free text
// mentions a transfer is excluded as well; sources occasionally mislabel
// payout rows.
func (e LedgerEntry) ExcludedFromRevenue() bool {
	if e.Category.ExcludedFromRevenue() {
		return true
	}
	if e.ReferenceID == "" && e.Description != "" {
		desc := strings.ToLower(e.Description)
		if strings.Contains(desc, "transfer") || strings.Contains(desc, "提现") {
			return true
		}
	}
	return false
}

// ComponentSum is the full-precision sum of the decomposed fields.
func (e LedgerEntry) ComponentSum() decimal.Decimal {
	sum := decimal.Zero
	for _, v := range e.Components {
		sum = sum.Add(v)
	}
	return sum
}
