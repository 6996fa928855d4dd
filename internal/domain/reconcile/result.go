package reconcile

import (
	"stockbook/internal/core/types"
)

// Input is a full snapshot of one order's reconciliation inputs.
type Input struct {
	TotalAmount types.Money
	Items       []Item
	AmountPaid  types.Money
	Returns     []Return
	Events      []Event
}

// Result bundles every engine output for one order snapshot.
type Result struct {
	Status        Status         `json:"status"`
	ReturnAmount  types.Money    `json:"returnAmount"`
	NetAmount     types.Money    `json:"netAmount"`
	Payment       PaymentSummary `json:"payment"`
	Refund        RefundSummary  `json:"refund"`
	DisplayStatus DisplayStatus  `json:"displayStatus"`
}

// Reconcile runs the whole engine over one snapshot.
func Reconcile(in Input) Result {
	payment := CalculateNetPaymentStatus(in.TotalAmount, NetAmount(in.TotalAmount, in.Items), in.AmountPaid, in.Events)
	refund := CalculateRefundDue(in.Items, in.AmountPaid, in.Returns, in.Events)

	return Result{
		Status:        DeriveStatus(in.Items),
		ReturnAmount:  ReturnAmount(in.Items),
		NetAmount:     NetAmount(in.TotalAmount, in.Items),
		Payment:       payment,
		Refund:        refund,
		DisplayStatus: ComposeDisplayStatus(payment, refund),
	}
}
