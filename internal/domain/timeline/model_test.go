package timeline

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockbook/internal/core/id"
	"stockbook/internal/domain/reconcile"
)

func TestNewPurchaseEvent(t *testing.T) {
	orderID := id.New()
	ev := NewPurchaseEvent(orderID, reconcile.EventOrderPlaced)

	assert.False(t, id.IsNil(ev.ID))
	assert.Equal(t, orderID, ev.OrderID)
	assert.Equal(t, reconcile.EventOrderPlaced, ev.Type)
	assert.False(t, ev.CreatedAt.IsZero())
}

func TestEventLinks(t *testing.T) {
	paymentID := id.New()
	returnID := id.New()

	ev := NewPurchaseEvent(id.New(), reconcile.EventPaymentMade).
		WithPayment(paymentID).
		WithReturn(returnID)

	require.NotNil(t, ev.PaymentID)
	assert.Equal(t, paymentID, *ev.PaymentID)
	require.NotNil(t, ev.ReturnID)
	assert.Equal(t, returnID, *ev.ReturnID)
}

func TestWithPayload(t *testing.T) {
	ev := NewPurchaseEvent(id.New(), reconcile.EventPartialReceipt).
		WithPayload(map[string]any{"quantity": 4})

	var payload map[string]any
	require.NoError(t, json.Unmarshal(ev.Payload, &payload))
	assert.Equal(t, float64(4), payload["quantity"])
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid event", func(t *testing.T) {
		ev := NewPurchaseEvent(id.New(), reconcile.EventFullReceipt)
		assert.NoError(t, ev.Validate(ctx))
	})

	t.Run("missing order", func(t *testing.T) {
		ev := NewPurchaseEvent(id.Nil(), reconcile.EventFullReceipt)
		assert.Error(t, ev.Validate(ctx))
	})

	t.Run("unknown type", func(t *testing.T) {
		ev := NewPurchaseEvent(id.New(), "order_misplaced")
		assert.Error(t, ev.Validate(ctx))
	})
}

func TestEngineEvents(t *testing.T) {
	events := []PurchaseEvent{
		*NewPurchaseEvent(id.New(), reconcile.EventOrderPlaced),
		*NewPurchaseEvent(id.New(), reconcile.EventPaymentMade),
	}

	out := EngineEvents(events)
	require.Len(t, out, 2)
	assert.Equal(t, reconcile.EventOrderPlaced, out[0].Type)
	assert.Equal(t, events[0].CreatedAt, out[0].CreatedAt)
	assert.Equal(t, reconcile.EventPaymentMade, out[1].Type)
}
