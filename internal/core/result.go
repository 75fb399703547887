package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Warning codes. A warning never aborts a batch run; it degrades the file or
// entry it names to "contributes nothing, with a recorded reason".
const (
	WarnUnreadable     = "unreadable"
	WarnNoAmountColumn = "no-amount-column"
	WarnNoHeader       = "no-header"
	WarnBadRow         = "bad-row"
	WarnUnattributable = "unattributable"
	WarnReconciliation = "reconciliation-mismatch"
	WarnDocumentPeriod = "document-period"
)

// Warning is a non-fatal problem attached to a file or document result.
type Warning struct {
	File    string
	Code    string
	Message string
}

func (w Warning) String() string {
	return w.File + " [" + w.Code + "]: " + w.Message
}

// DocumentResult is a source adapter's unit of output: the entries extracted
// from one document plus adapter-level metadata. A document that cannot be
// parsed yields an empty result with warnings, never an error.
type DocumentResult struct {
	Source   SourceKind
	File     string
	Entity   string
	Currency string

	// Period is the document-level billing period when the source states a
	// uniform one; empty when attribution happens per row or downstream.
	Period PeriodToken

	// StatedTotal carries the document's own declared total when the source
	// exposes one (cover-page bills); used only by the verifier.
	StatedTotal *decimal.Decimal

	Entries  []LedgerEntry
	Warnings []Warning
}

// Warnf appends a formatted warning to the result.
func (r *DocumentResult) Warnf(code, format string, args ...any) {
	r.Warnings = append(r.Warnings, Warning{
		File:    r.File,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	})
}

// EntrySum is the full-precision sum of all entry amounts.
func (r *DocumentResult) EntrySum() decimal.Decimal {
	sum := decimal.Zero
	for _, e := range r.Entries {
		sum = sum.Add(e.Amount.Amount)
	}
	return sum
}
