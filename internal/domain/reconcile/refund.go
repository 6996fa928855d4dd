package reconcile

import (
	"stockbook/internal/core/types"
)

// RefundStatus is the processing state of a purchase return's refund.
type RefundStatus string

const (
	RefundPending    RefundStatus = "pending"
	RefundProcessing RefundStatus = "processing"
	RefundCompleted  RefundStatus = "completed"
	RefundFailed     RefundStatus = "failed"
	RefundCancelled  RefundStatus = "cancelled"
)

// Return is the refund snapshot of one purchase return document.
type Return struct {
	RefundStatus RefundStatus
	RefundAmount types.Money
	TotalAmount  types.Money
}

// RefundSummary is the aggregate refund obligation for one order.
type RefundSummary struct {
	RefundDue               types.Money `json:"refundDue"`
	ReturnAmount            types.Money `json:"returnAmount"`
	HasReturns              bool        `json:"hasReturns"`
	RefundedAmount          types.Money `json:"refundedAmount"`
	PendingRefundAmount     types.Money `json:"pendingRefundAmount"`
	PaymentMadeAfterReturns bool        `json:"paymentMadeAfterReturns"`
}

// CalculateRefundDue computes the aggregate refund owed to the payer.
//
// The engine works on sums only: it does not track which payment funds which
// refund. A payment recorded after the returns absorbs the adjustment, so
// nothing is owed on top of it. Otherwise the refundable ceiling is what was
// both returned and actually paid, less what was already refunded.
func CalculateRefundDue(items []Item, amountPaid types.Money, returns []Return, events []Event) RefundSummary {
	s := RefundSummary{
		RefundDue:           types.Zero(),
		ReturnAmount:        ReturnAmount(items),
		HasReturns:          len(returns) > 0,
		RefundedAmount:      types.Zero(),
		PendingRefundAmount: types.Zero(),
	}

	for _, r := range returns {
		switch r.RefundStatus {
		case RefundCompleted:
			s.RefundedAmount = s.RefundedAmount.Add(r.RefundAmount)
		case RefundPending, RefundProcessing:
			s.PendingRefundAmount = s.PendingRefundAmount.Add(r.TotalAmount)
		}
	}

	s.PaymentMadeAfterReturns = PaymentMadeAfterReturns(events)
	if s.PaymentMadeAfterReturns {
		return s
	}

	maxRefundable := s.ReturnAmount
	if amountPaid.LessThan(maxRefundable) {
		maxRefundable = amountPaid
	}
	due := maxRefundable.Sub(s.RefundedAmount)
	if due.IsPositive() {
		s.RefundDue = due
	}
	return s
}
