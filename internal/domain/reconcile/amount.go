package reconcile

import (
	"stockbook/internal/core/types"
)

// ReturnAmount is the value of all returned items at their purchase price.
func ReturnAmount(items []Item) types.Money {
	sum := types.Zero()
	for _, it := range items {
		if it.ReturnedQuantity <= 0 {
			continue
		}
		sum = sum.Add(it.PurchasePrice.Mul(it.ReturnedQuantity.Decimal()))
	}
	return sum
}

// NetAmount is the amount actually owed after returns. The order total is
// fixed at creation and never mutated by receipts or returns; the result is
// clamped at zero regardless of data anomalies.
func NetAmount(totalAmount types.Money, items []Item) types.Money {
	net := totalAmount.Sub(ReturnAmount(items))
	if net.IsNegative() {
		return types.Zero()
	}
	return net
}
