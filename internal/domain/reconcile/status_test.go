package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stockbook/internal/core/types"
)

func qty(v float64) types.Quantity {
	return types.NewQuantityFromFloat64(v)
}

func item(ordered, received, returned float64, price string) Item {
	return Item{
		Quantity:         qty(ordered),
		ReceivedQuantity: qty(received),
		ReturnedQuantity: qty(returned),
		PurchasePrice:    types.MustMoney(price),
	}
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name  string
		items []Item
		want  Status
	}{
		{"no items", nil, StatusPending},
		{"nothing received", []Item{item(10, 0, 0, "5")}, StatusPending},
		{"partial receipt", []Item{item(10, 4, 0, "5")}, StatusPartiallyReceived},
		{"full receipt", []Item{item(10, 10, 0, "5")}, StatusReceived},
		{"full receipt then full return", []Item{item(10, 10, 10, "5")}, StatusReturned},
		{"full receipt then partial return", []Item{item(10, 10, 4, "5")}, StatusPartiallyReturned},
		{"partial receipt then partial return", []Item{item(10, 6, 2, "5")}, StatusPartiallyReceived},
		{"full unwind before full receipt", []Item{item(10, 4, 4, "5")}, StatusPending},
		{"unwind across lines", []Item{item(5, 2, 2, "5"), item(5, 1, 1, "3")}, StatusPending},
		{"mixed lines partial return", []Item{item(5, 5, 2, "5"), item(5, 5, 0, "3")}, StatusPartiallyReturned},
		{"returned above received does not crash", []Item{item(10, 2, 5, "5")}, StatusPending},
		{"returns without receipts stay pending", []Item{item(10, 0, 3, "5")}, StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.items))
		})
	}
}

func TestDeriveStatusIdempotent(t *testing.T) {
	items := []Item{item(10, 6, 2, "5"), item(3, 3, 0, "7")}

	first := DeriveStatus(items)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, DeriveStatus(items))
	}
}

func TestSumItems(t *testing.T) {
	t1 := SumItems([]Item{item(10, 6, 2, "5"), item(5, 5, 5, "3")})

	assert.Equal(t, qty(15), t1.Ordered)
	assert.Equal(t, qty(11), t1.Received)
	assert.Equal(t, qty(7), t1.Returned)
	assert.Equal(t, qty(4), t1.NetReceived)
}
