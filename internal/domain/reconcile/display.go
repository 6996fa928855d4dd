package reconcile

// BadgeColor is the UI tag color for a display status.
type BadgeColor string

const (
	BadgeGray   BadgeColor = "gray"
	BadgeAmber  BadgeColor = "amber"
	BadgeGreen  BadgeColor = "green"
	BadgeOrange BadgeColor = "orange"
	BadgeTeal   BadgeColor = "teal"
	BadgeRed    BadgeColor = "red"
)

// DisplayStatus is the user-facing fusion of payment and refund state.
// Pure presentation mapping; no new invariants.
type DisplayStatus struct {
	Label             string     `json:"label"`
	BadgeColor        BadgeColor `json:"badgeColor"`
	ShowRefundSection bool       `json:"showRefundSection"`
}

// ComposeDisplayStatus maps the two computed summaries to one label.
func ComposeDisplayStatus(payment PaymentSummary, refund RefundSummary) DisplayStatus {
	d := DisplayStatus{
		ShowRefundSection: refund.HasReturns && !refund.PaymentMadeAfterReturns,
	}

	refundDue := refund.RefundDue.IsPositive()
	refunded := refund.RefundedAmount.IsPositive()

	switch payment.Status {
	case PaymentUnpaid:
		d.Label, d.BadgeColor = "Unpaid", BadgeGray
	case PaymentPartial:
		d.Label, d.BadgeColor = "Partially Paid", BadgeAmber
	case PaymentPaid:
		switch {
		case refundDue:
			d.Label, d.BadgeColor = "Paid - Refund Due", BadgeOrange
		case refunded:
			d.Label, d.BadgeColor = "Paid - Refunded", BadgeTeal
		default:
			d.Label, d.BadgeColor = "Paid", BadgeGreen
		}
	case PaymentOverpaid:
		if refundDue {
			d.Label, d.BadgeColor = "Overpaid - Refund Due", BadgeOrange
		} else {
			d.Label, d.BadgeColor = "Overpaid", BadgeRed
		}
	default:
		d.Label, d.BadgeColor = "Unpaid", BadgeGray
	}

	return d
}
