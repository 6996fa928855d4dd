// Package reconcile derives purchase order state from item, payment, return
// and timeline snapshots.
//
// Every function here is pure: no I/O, no shared state, safe to call
// concurrently. Inputs are already-fetched records; recomputation is
// idempotent. The engine never returns errors: anomalous input (returned
// above received, negative payments) is clamped, not rejected. Quantity and
// amount validation is the job of the document services, not this package.
package reconcile

import (
	"stockbook/internal/core/types"
)

// Item is the quantity snapshot of one purchase order line.
type Item struct {
	Quantity         types.Quantity
	ReceivedQuantity types.Quantity
	ReturnedQuantity types.Quantity
	PurchasePrice    types.Money
}

// Totals is the aggregate quantity view over all order lines.
type Totals struct {
	Ordered     types.Quantity
	Received    types.Quantity
	Returned    types.Quantity
	NetReceived types.Quantity
}

// SumItems aggregates line quantities.
func SumItems(items []Item) Totals {
	var t Totals
	for _, it := range items {
		t.Ordered += it.Quantity
		t.Received += it.ReceivedQuantity
		t.Returned += it.ReturnedQuantity
	}
	t.NetReceived = t.Received - t.Returned
	return t
}
