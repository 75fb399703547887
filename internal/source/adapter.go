// Package source contains the per-platform and per-warehouse adapters that
// turn raw spreadsheet documents into normalized ledger entries. Adapters
// never fail a document: anything they cannot use becomes a warning on the
// result.
package source

import (
	"context"

	"tally/internal/core"
	"tally/internal/scan"
	"tally/internal/workbook"
)

// Adapter parses documents of one source kind.
type Adapter interface {
	Kind() core.SourceKind
	Parse(ctx context.Context, doc workbook.Document, meta scan.FileMeta) core.DocumentResult
}

// Registry resolves the adapter for a platform source kind. Warehouse
// adapters are bound to a specific warehouse and currency, so the pipeline
// holds those per warehouse instead of registering them here.
type Registry struct {
	adapters map[core.SourceKind]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[core.SourceKind]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Kind()] = a
	}
	return r
}

// Register replaces any adapter previously held for the same kind.
func (r *Registry) Register(a Adapter) {
	r.adapters[a.Kind()] = a
}

func (r *Registry) Lookup(kind core.SourceKind) (Adapter, bool) {
	a, ok := r.adapters[kind]
	return a, ok
}

// DefaultRegistry returns the platform adapter set.
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewMarketplace(),
		NewFundDetail(),
		NewStatement(),
		NewFlow(),
		NewManaged(),
	)
}
