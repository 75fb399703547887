package source

import (
	"fmt"

	"tally/internal/core"
)

// NewWarehouse builds the adapter for one warehouse's bill family, bound to
// that warehouse's name and settlement currency. Two warehouses may share a
// family yet settle in different currencies, so these are instantiated per
// warehouse rather than registered by kind.
func NewWarehouse(kind core.SourceKind, name, currency string) (Adapter, error) {
	switch kind {
	case core.SourceWarehouseItemized:
		return itemized{warehouse: name, currency: currency}, nil
	case core.SourceWarehouseCoverBill:
		return coverBill{warehouse: name, currency: currency}, nil
	case core.SourceWarehouseSummary:
		return summaryPage{warehouse: name, currency: currency}, nil
	case core.SourceWarehouseCostBill:
		return costBill{warehouse: name, currency: currency}, nil
	case core.SourceWarehouseBookkept:
		return bookkept{warehouse: name, currency: currency}, nil
	default:
		return nil, fmt.Errorf("source: %q is not a warehouse bill family", kind)
	}
}
