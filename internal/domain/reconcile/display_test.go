package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stockbook/internal/core/types"
)

func TestComposeDisplayStatus(t *testing.T) {
	money := types.MustMoney

	tests := []struct {
		name      string
		payment   PaymentSummary
		refund    RefundSummary
		wantLabel string
		wantColor BadgeColor
	}{
		{
			"unpaid",
			PaymentSummary{Status: PaymentUnpaid},
			RefundSummary{RefundDue: types.Zero(), RefundedAmount: types.Zero()},
			"Unpaid", BadgeGray,
		},
		{
			"partial",
			PaymentSummary{Status: PaymentPartial},
			RefundSummary{RefundDue: types.Zero(), RefundedAmount: types.Zero()},
			"Partially Paid", BadgeAmber,
		},
		{
			"paid clean",
			PaymentSummary{Status: PaymentPaid},
			RefundSummary{RefundDue: types.Zero(), RefundedAmount: types.Zero()},
			"Paid", BadgeGreen,
		},
		{
			"paid with refund due",
			PaymentSummary{Status: PaymentPaid},
			RefundSummary{RefundDue: money("20"), RefundedAmount: types.Zero()},
			"Paid - Refund Due", BadgeOrange,
		},
		{
			"paid and refunded",
			PaymentSummary{Status: PaymentPaid},
			RefundSummary{RefundDue: types.Zero(), RefundedAmount: money("20")},
			"Paid - Refunded", BadgeTeal,
		},
		{
			"overpaid",
			PaymentSummary{Status: PaymentOverpaid},
			RefundSummary{RefundDue: types.Zero(), RefundedAmount: types.Zero()},
			"Overpaid", BadgeRed,
		},
		{
			"overpaid with refund due",
			PaymentSummary{Status: PaymentOverpaid},
			RefundSummary{RefundDue: money("20"), RefundedAmount: types.Zero()},
			"Overpaid - Refund Due", BadgeOrange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ComposeDisplayStatus(tt.payment, tt.refund)

			assert.Equal(t, tt.wantLabel, d.Label)
			assert.Equal(t, tt.wantColor, d.BadgeColor)
		})
	}
}

func TestShowRefundSection(t *testing.T) {
	payment := PaymentSummary{Status: PaymentPaid}

	t.Run("shown when returns exist and payment predates them", func(t *testing.T) {
		d := ComposeDisplayStatus(payment, RefundSummary{
			HasReturns:     true,
			RefundDue:      types.Zero(),
			RefundedAmount: types.Zero(),
		})
		assert.True(t, d.ShowRefundSection)
	})

	t.Run("hidden when the payment absorbed the returns", func(t *testing.T) {
		d := ComposeDisplayStatus(payment, RefundSummary{
			HasReturns:              true,
			PaymentMadeAfterReturns: true,
			RefundDue:               types.Zero(),
			RefundedAmount:          types.Zero(),
		})
		assert.False(t, d.ShowRefundSection)
	})

	t.Run("hidden without returns", func(t *testing.T) {
		d := ComposeDisplayStatus(payment, RefundSummary{
			RefundDue:      types.Zero(),
			RefundedAmount: types.Zero(),
		})
		assert.False(t, d.ShowRefundSection)
	})
}
