package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
)

func TestNewPurchasePayment(t *testing.T) {
	orderID := id.New()
	p := NewPurchasePayment(orderID, types.MustMoney("30"), MethodBankTransfer)

	assert.Equal(t, orderID, p.OrderID)
	assert.Equal(t, StatusActive, p.Status)
	assert.False(t, p.IsVoid())
	assert.False(t, p.Date.IsZero())
}

func TestMarkVoid(t *testing.T) {
	p := NewPurchasePayment(id.New(), types.MustMoney("30"), MethodCash)

	p.MarkVoid("entered twice", "user-1")

	assert.True(t, p.IsVoid())
	require.NotNil(t, p.VoidReason)
	assert.Equal(t, "entered twice", *p.VoidReason)
	require.NotNil(t, p.VoidedBy)
	assert.Equal(t, "user-1", *p.VoidedBy)
	assert.NotNil(t, p.VoidedAt)
}

func TestMarkVoidWithoutActor(t *testing.T) {
	p := NewPurchasePayment(id.New(), types.MustMoney("30"), MethodCash)

	p.MarkVoid("reason", "")

	assert.True(t, p.IsVoid())
	assert.Nil(t, p.VoidedBy)
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	valid := func() *PurchasePayment {
		return NewPurchasePayment(id.New(), types.MustMoney("30"), MethodCard)
	}

	t.Run("valid payment", func(t *testing.T) {
		assert.NoError(t, valid().Validate(ctx))
	})

	t.Run("missing order", func(t *testing.T) {
		p := valid()
		p.OrderID = id.Nil()
		assert.Error(t, p.Validate(ctx))
	})

	t.Run("zero amount", func(t *testing.T) {
		p := valid()
		p.Amount = types.Zero()
		assert.Error(t, p.Validate(ctx))
	})

	t.Run("negative amount", func(t *testing.T) {
		p := valid()
		p.Amount = types.MustMoney("-1")
		assert.Error(t, p.Validate(ctx))
	})

	t.Run("unknown method", func(t *testing.T) {
		p := valid()
		p.Method = "barter"
		assert.Error(t, p.Validate(ctx))
	})

	t.Run("unknown status", func(t *testing.T) {
		p := valid()
		p.Status = "archived"
		assert.Error(t, p.Validate(ctx))
	})
}
