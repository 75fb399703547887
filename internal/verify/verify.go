// Package verify cross-checks parsed documents against their own redundant
// data: component decompositions against row totals, and entry sums against
// a document's stated grand total. Mismatches degrade to warnings; the
// parsed amounts stay authoritative.
package verify

import (
	"github.com/shopspring/decimal"

	"tally/internal/core"
)

// tolerance absorbs the rounding drift a source's own spreadsheet math
// introduces; anything above it is a real discrepancy worth surfacing.
var tolerance = decimal.RequireFromString("0.01")

type Verifier struct {
	tolerance decimal.Decimal
}

func New() *Verifier {
	return &Verifier{tolerance: tolerance}
}

// NewWithTolerance is for tests and unusual sources; the default tolerance
// is the right choice everywhere else.
func NewWithTolerance(t decimal.Decimal) *Verifier {
	return &Verifier{tolerance: t}
}

// Check appends reconciliation warnings to the result and reports how many
// it found. Entries are never dropped or adjusted here.
func (v *Verifier) Check(res *core.DocumentResult) int {
	found := 0

	for _, e := range res.Entries {
		if len(e.Components) == 0 {
			continue
		}
		diff := e.ComponentSum().Sub(e.Amount.Amount).Abs()
		if diff.GreaterThan(v.tolerance) {
			res.Warnf(core.WarnReconciliation,
				"row %d: components sum to %s but total is %s",
				e.Provenance.Row, e.ComponentSum().StringFixed(2), e.Amount.Amount.StringFixed(2))
			found++
		}
	}

	if res.StatedTotal != nil {
		diff := res.EntrySum().Sub(*res.StatedTotal).Abs()
		if diff.GreaterThan(v.tolerance) {
			res.Warnf(core.WarnReconciliation,
				"entries sum to %s but the document states %s",
				res.EntrySum().StringFixed(2), res.StatedTotal.StringFixed(2))
			found++
		}
	}
	return found
}
