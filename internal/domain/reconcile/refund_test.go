package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stockbook/internal/core/types"
)

func TestCalculateRefundDue(t *testing.T) {
	// One line: 10 ordered at 5, all received, 4 returned => returnAmount 20.
	items := []Item{item(10, 10, 4, "5")}

	t.Run("paid before return owes the return value", func(t *testing.T) {
		returns := []Return{{RefundStatus: RefundPending, TotalAmount: types.MustMoney("20")}}
		events := []Event{
			{EventPaymentMade, at(1)},
			{EventFullReturn, at(2)},
		}

		s := CalculateRefundDue(items, types.MustMoney("50"), returns, events)

		assert.False(t, s.PaymentMadeAfterReturns)
		assert.True(t, s.RefundDue.Equal(types.MustMoney("20")), "due %s", s.RefundDue)
		assert.True(t, s.PendingRefundAmount.Equal(types.MustMoney("20")))
		assert.True(t, s.RefundedAmount.Equal(types.Zero()))
		assert.True(t, s.HasReturns)
	})

	t.Run("paid after return owes nothing", func(t *testing.T) {
		returns := []Return{{RefundStatus: RefundPending, TotalAmount: types.MustMoney("20")}}
		events := []Event{
			{EventFullReturn, at(1)},
			{EventPaymentMade, at(2)},
		}

		s := CalculateRefundDue(items, types.MustMoney("50"), returns, events)

		assert.True(t, s.PaymentMadeAfterReturns)
		assert.True(t, s.RefundDue.Equal(types.Zero()), "due %s", s.RefundDue)
	})

	t.Run("completed refunds reduce the due amount", func(t *testing.T) {
		returns := []Return{
			{RefundStatus: RefundCompleted, RefundAmount: types.MustMoney("15"), TotalAmount: types.MustMoney("15")},
			{RefundStatus: RefundPending, TotalAmount: types.MustMoney("5")},
		}
		events := []Event{
			{EventPaymentMade, at(1)},
			{EventPartialReturn, at(2)},
			{EventPartialReturn, at(3)},
		}

		s := CalculateRefundDue(items, types.MustMoney("50"), returns, events)

		assert.True(t, s.RefundedAmount.Equal(types.MustMoney("15")))
		assert.True(t, s.PendingRefundAmount.Equal(types.MustMoney("5")))
		assert.True(t, s.RefundDue.Equal(types.MustMoney("5")), "due %s", s.RefundDue)
	})

	t.Run("due is capped by amount actually paid", func(t *testing.T) {
		events := []Event{
			{EventPaymentMade, at(1)},
			{EventFullReturn, at(2)},
		}

		s := CalculateRefundDue(items, types.MustMoney("12"), nil, events)

		assert.True(t, s.RefundDue.Equal(types.MustMoney("12")), "due %s", s.RefundDue)
	})

	t.Run("fully refunded owes nothing", func(t *testing.T) {
		returns := []Return{{RefundStatus: RefundCompleted, RefundAmount: types.MustMoney("20"), TotalAmount: types.MustMoney("20")}}
		events := []Event{
			{EventPaymentMade, at(1)},
			{EventFullReturn, at(2)},
		}

		s := CalculateRefundDue(items, types.MustMoney("50"), returns, events)

		assert.True(t, s.RefundDue.Equal(types.Zero()), "due %s", s.RefundDue)
	})

	t.Run("failed and cancelled refunds are ignored", func(t *testing.T) {
		returns := []Return{
			{RefundStatus: RefundFailed, RefundAmount: types.MustMoney("20"), TotalAmount: types.MustMoney("20")},
			{RefundStatus: RefundCancelled, TotalAmount: types.MustMoney("20")},
		}
		events := []Event{
			{EventPaymentMade, at(1)},
			{EventFullReturn, at(2)},
		}

		s := CalculateRefundDue(items, types.MustMoney("50"), returns, events)

		assert.True(t, s.RefundedAmount.Equal(types.Zero()))
		assert.True(t, s.PendingRefundAmount.Equal(types.Zero()))
		assert.True(t, s.RefundDue.Equal(types.MustMoney("20")), "due %s", s.RefundDue)
	})

	t.Run("nothing paid means nothing refundable", func(t *testing.T) {
		s := CalculateRefundDue(items, types.Zero(), nil, nil)

		assert.True(t, s.RefundDue.Equal(types.Zero()), "due %s", s.RefundDue)
	})
}

func TestReconcileBundle(t *testing.T) {
	items := []Item{item(10, 10, 4, "5")}
	in := Input{
		TotalAmount: types.MustMoney("50"),
		Items:       items,
		AmountPaid:  types.MustMoney("50"),
		Returns:     []Return{{RefundStatus: RefundPending, TotalAmount: types.MustMoney("20")}},
		Events: []Event{
			{EventOrderPlaced, at(0)},
			{EventFullReceipt, at(1)},
			{EventPaymentMade, at(2)},
			{EventPartialReturn, at(3)},
		},
	}

	r := Reconcile(in)

	assert.Equal(t, StatusPartiallyReturned, r.Status)
	assert.True(t, r.ReturnAmount.Equal(types.MustMoney("20")))
	assert.True(t, r.NetAmount.Equal(types.MustMoney("30")))
	assert.Equal(t, PaymentPaid, r.Payment.Status)
	assert.True(t, r.Refund.RefundDue.Equal(types.MustMoney("20")))
	assert.Equal(t, "Paid - Refund Due", r.DisplayStatus.Label)
	assert.True(t, r.DisplayStatus.ShowRefundSection)
}
