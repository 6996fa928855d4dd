package purchase_return

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

func TestAddLineRecalculatesTotal(t *testing.T) {
	r := NewPurchaseReturn(id.New(), id.New())

	r.AddLine(id.New(), qty(4), types.MustMoney("5"))
	assert.True(t, r.TotalAmount.Equal(types.MustMoney("20")), "total %s", r.TotalAmount)

	r.AddLine(id.New(), qty(2), types.MustMoney("1.50"))
	assert.True(t, r.TotalAmount.Equal(types.MustMoney("23")), "total %s", r.TotalAmount)
}

func TestRefundTransitions(t *testing.T) {
	tests := []struct {
		from    reconcile.RefundStatus
		to      reconcile.RefundStatus
		allowed bool
	}{
		{reconcile.RefundPending, reconcile.RefundProcessing, true},
		{reconcile.RefundPending, reconcile.RefundCancelled, true},
		{reconcile.RefundPending, reconcile.RefundCompleted, false},
		{reconcile.RefundProcessing, reconcile.RefundCompleted, true},
		{reconcile.RefundProcessing, reconcile.RefundFailed, true},
		{reconcile.RefundProcessing, reconcile.RefundCancelled, false},
		{reconcile.RefundFailed, reconcile.RefundProcessing, true},
		{reconcile.RefundFailed, reconcile.RefundCancelled, true},
		{reconcile.RefundCompleted, reconcile.RefundProcessing, false},
		{reconcile.RefundCompleted, reconcile.RefundPending, false},
		{reconcile.RefundCancelled, reconcile.RefundProcessing, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			r := NewPurchaseReturn(id.New(), id.New())
			r.RefundStatus = tt.from

			err := r.TransitionTo(tt.to)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.to, r.RefundStatus)
			} else {
				require.Error(t, err)
				assert.Equal(t, tt.from, r.RefundStatus, "status unchanged on rejected transition")
			}
		})
	}
}

func TestSnapshot(t *testing.T) {
	r := NewPurchaseReturn(id.New(), id.New())
	r.AddLine(id.New(), qty(4), types.MustMoney("5"))
	r.RefundStatus = reconcile.RefundProcessing
	r.RefundAmount = types.MustMoney("10")

	snap := r.Snapshot()
	assert.Equal(t, reconcile.RefundProcessing, snap.RefundStatus)
	assert.True(t, snap.RefundAmount.Equal(types.MustMoney("10")))
	assert.True(t, snap.TotalAmount.Equal(types.MustMoney("20")))
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid return", func(t *testing.T) {
		r := NewPurchaseReturn(id.New(), id.New())
		r.AddLine(id.New(), qty(1), types.MustMoney("1"))
		assert.NoError(t, r.Validate(ctx))
	})

	t.Run("missing order", func(t *testing.T) {
		r := NewPurchaseReturn(id.Nil(), id.New())
		r.AddLine(id.New(), qty(1), types.MustMoney("1"))
		assert.Error(t, r.Validate(ctx))
	})

	t.Run("no lines", func(t *testing.T) {
		r := NewPurchaseReturn(id.New(), id.New())
		assert.Error(t, r.Validate(ctx))
	})

	t.Run("zero quantity line", func(t *testing.T) {
		r := NewPurchaseReturn(id.New(), id.New())
		r.AddLine(id.New(), qty(0), types.MustMoney("1"))
		assert.Error(t, r.Validate(ctx))
	})
}
