package reconcile

import (
	"github.com/shopspring/decimal"

	"stockbook/internal/core/types"
)

// PaymentStatus classifies how much of the base amount has been paid.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPartial  PaymentStatus = "partial"
	PaymentPaid     PaymentStatus = "paid"
	PaymentOverpaid PaymentStatus = "overpaid"
)

// PaymentSummary is the result of payment classification.
type PaymentSummary struct {
	Status                  PaymentStatus `json:"status"`
	BaseAmount              types.Money   `json:"baseAmount"`
	RemainingAmount         types.Money   `json:"remainingAmount"`
	OverpaidAmount          types.Money   `json:"overpaidAmount"`
	ProgressPercentage      int           `json:"progressPercentage"`
	PaymentMadeAfterReturns bool          `json:"paymentMadeAfterReturns"`
}

// CalculatePaymentStatus classifies the amount paid against the net amount.
// Use CalculateNetPaymentStatus when a timeline is available; the two agree
// whenever no payment follows a return.
func CalculatePaymentStatus(netAmount, amountPaid types.Money) PaymentSummary {
	return classifyPayment(netAmount, amountPaid, false)
}

// CalculateNetPaymentStatus classifies the amount paid with return chronology
// taken into account. A payment recorded after the returns was already
// adjusted to the net amount, so it is compared against netAmount; a payment
// that predates the returns was made against the original order total, and
// the delta is handled as a refund obligation instead (CalculateRefundDue).
func CalculateNetPaymentStatus(originalAmount, netAmount, amountPaid types.Money, events []Event) PaymentSummary {
	after := PaymentMadeAfterReturns(events)
	base := originalAmount
	if after {
		base = netAmount
	}
	return classifyPayment(base, amountPaid, after)
}

func classifyPayment(base, amountPaid types.Money, afterReturns bool) PaymentSummary {
	s := PaymentSummary{
		BaseAmount:              base,
		RemainingAmount:         types.Zero(),
		OverpaidAmount:          types.Zero(),
		PaymentMadeAfterReturns: afterReturns,
	}

	switch {
	case amountPaid.Sign() <= 0:
		s.Status = PaymentUnpaid
		s.RemainingAmount = base
		s.ProgressPercentage = 0
	case amountPaid.LessThan(base):
		s.Status = PaymentPartial
		s.RemainingAmount = base.Sub(amountPaid)
		s.ProgressPercentage = progressPercent(base, amountPaid)
	case amountPaid.Equal(base):
		s.Status = PaymentPaid
		s.ProgressPercentage = 100
	default:
		s.Status = PaymentOverpaid
		s.OverpaidAmount = amountPaid.Sub(base)
		s.ProgressPercentage = 100
	}

	return s
}

func progressPercent(base, paid types.Money) int {
	if base.Sign() <= 0 {
		return 0
	}
	pct := paid.Div(base).Mul(decimal.NewFromInt(100)).Round(0)
	return int(pct.IntPart())
}
