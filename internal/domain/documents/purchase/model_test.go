package purchase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
	"stockbook/internal/domain/reconcile"
)

func qty(v float64) types.Quantity {
	return types.NewQuantityFromFloat64(v)
}

func newTestOrder() *PurchaseOrder {
	return NewPurchaseOrder(id.New(), id.New())
}

func TestAddLineRecalculatesTotal(t *testing.T) {
	o := newTestOrder()

	o.AddLine(id.New(), qty(10), types.MustMoney("5"))
	assert.True(t, o.TotalAmount.Equal(types.MustMoney("50")), "total %s", o.TotalAmount)

	o.AddLine(id.New(), qty(3), types.MustMoney("2.50"))
	assert.True(t, o.TotalAmount.Equal(types.MustMoney("57.50")), "total %s", o.TotalAmount)

	assert.Equal(t, 1, o.Lines[0].LineNo)
	assert.Equal(t, 2, o.Lines[1].LineNo)
	assert.True(t, o.Lines[1].Amount.Equal(types.MustMoney("7.50")))
}

func TestDeriveStatusFollowsQuantities(t *testing.T) {
	o := newTestOrder()
	o.AddLine(id.New(), qty(10), types.MustMoney("5"))

	assert.Equal(t, reconcile.StatusPending, o.DeriveStatus())

	o.Lines[0].ReceivedQuantity = qty(4)
	assert.Equal(t, reconcile.StatusPartiallyReceived, o.DeriveStatus())

	o.Lines[0].ReceivedQuantity = qty(10)
	assert.Equal(t, reconcile.StatusReceived, o.DeriveStatus())

	o.Lines[0].ReturnedQuantity = qty(4)
	assert.Equal(t, reconcile.StatusPartiallyReturned, o.DeriveStatus())

	o.Lines[0].ReturnedQuantity = qty(10)
	assert.Equal(t, reconcile.StatusReturned, o.DeriveStatus())
}

func TestDeriveStatusFullUnwindResetsToPending(t *testing.T) {
	o := newTestOrder()
	o.AddLine(id.New(), qty(10), types.MustMoney("5"))
	o.Lines[0].ReceivedQuantity = qty(4)
	o.Lines[0].ReturnedQuantity = qty(4)

	assert.Equal(t, reconcile.StatusPending, o.DeriveStatus())
}

func TestDeriveStatusCancelledIsTerminal(t *testing.T) {
	o := newTestOrder()
	o.AddLine(id.New(), qty(10), types.MustMoney("5"))
	o.Lines[0].ReceivedQuantity = qty(10)
	o.Status = reconcile.StatusCancelled

	assert.Equal(t, reconcile.StatusCancelled, o.DeriveStatus())
}

func TestIsFullyReceived(t *testing.T) {
	o := newTestOrder()
	assert.False(t, o.IsFullyReceived(), "no lines means nothing received")

	o.AddLine(id.New(), qty(10), types.MustMoney("5"))
	o.AddLine(id.New(), qty(5), types.MustMoney("3"))
	assert.False(t, o.IsFullyReceived())

	o.Lines[0].ReceivedQuantity = qty(10)
	assert.False(t, o.IsFullyReceived())

	o.Lines[1].ReceivedQuantity = qty(5)
	assert.True(t, o.IsFullyReceived())
}

func TestIsFullyReturned(t *testing.T) {
	o := newTestOrder()
	o.AddLine(id.New(), qty(10), types.MustMoney("5"))

	assert.False(t, o.IsFullyReturned(), "nothing received yet")

	o.Lines[0].ReceivedQuantity = qty(6)
	assert.False(t, o.IsFullyReturned())

	o.Lines[0].ReturnedQuantity = qty(6)
	assert.True(t, o.IsFullyReturned(), "everything received went back")
}

func TestFindLine(t *testing.T) {
	o := newTestOrder()
	productID := id.New()
	o.AddLine(productID, qty(1), types.MustMoney("1"))

	require.NotNil(t, o.FindLine(productID))
	assert.Nil(t, o.FindLine(id.New()))
}

func TestReconcileItemsSnapshot(t *testing.T) {
	o := newTestOrder()
	o.AddLine(id.New(), qty(10), types.MustMoney("5"))
	o.Lines[0].ReceivedQuantity = qty(7)
	o.Lines[0].ReturnedQuantity = qty(2)

	items := o.ReconcileItems()
	require.Len(t, items, 1)
	assert.Equal(t, qty(10), items[0].Quantity)
	assert.Equal(t, qty(7), items[0].ReceivedQuantity)
	assert.Equal(t, qty(2), items[0].ReturnedQuantity)
	assert.True(t, items[0].PurchasePrice.Equal(types.MustMoney("5")))
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid order", func(t *testing.T) {
		o := newTestOrder()
		o.AddLine(id.New(), qty(1), types.MustMoney("1"))
		assert.NoError(t, o.Validate(ctx))
	})

	t.Run("missing supplier", func(t *testing.T) {
		o := NewPurchaseOrder(id.Nil(), id.New())
		o.AddLine(id.New(), qty(1), types.MustMoney("1"))
		assert.Error(t, o.Validate(ctx))
	})

	t.Run("missing warehouse", func(t *testing.T) {
		o := NewPurchaseOrder(id.New(), id.Nil())
		o.AddLine(id.New(), qty(1), types.MustMoney("1"))
		assert.Error(t, o.Validate(ctx))
	})

	t.Run("no lines", func(t *testing.T) {
		o := newTestOrder()
		assert.Error(t, o.Validate(ctx))
	})

	t.Run("zero quantity", func(t *testing.T) {
		o := newTestOrder()
		o.AddLine(id.New(), qty(0), types.MustMoney("1"))
		assert.Error(t, o.Validate(ctx))
	})

	t.Run("negative price", func(t *testing.T) {
		o := newTestOrder()
		o.AddLine(id.New(), qty(1), types.MustMoney("-1"))
		assert.Error(t, o.Validate(ctx))
	})

	t.Run("invalid currency", func(t *testing.T) {
		o := newTestOrder()
		o.AddLine(id.New(), qty(1), types.MustMoney("1"))
		o.Currency = "DOLLARS"
		assert.Error(t, o.Validate(ctx))
	})
}
