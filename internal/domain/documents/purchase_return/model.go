// Package purchase_return provides the PurchaseReturn document.
// A return sends received goods back to the supplier and may owe the buyer a
// refund, settled through one or more refund transactions.
package purchase_return

import (
	"context"
	"time"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/entity"
	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
	"stockbook/internal/domain/reconcile"
)

// refundTransitions lists the allowed refund status changes.
// completed and cancelled are terminal; failed may be retried.
var refundTransitions = map[reconcile.RefundStatus][]reconcile.RefundStatus{
	reconcile.RefundPending:    {reconcile.RefundProcessing, reconcile.RefundCancelled},
	reconcile.RefundProcessing: {reconcile.RefundCompleted, reconcile.RefundFailed},
	reconcile.RefundFailed:     {reconcile.RefundProcessing, reconcile.RefundCancelled},
}

// PurchaseReturn represents goods returned to the supplier.
type PurchaseReturn struct {
	entity.Document

	// OrderID is the purchase order being returned against
	OrderID id.ID `db:"order_id" json:"orderId"`

	// WarehouseID goods are shipped back from
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	// TotalAmount is the value of returned goods (Σ quantity × price)
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`

	// RefundStatus is the processing state of the refund
	RefundStatus reconcile.RefundStatus `db:"refund_status" json:"refundStatus"`

	// RefundAmount accrues as refund transactions complete
	RefundAmount types.Money `db:"refund_amount" json:"refundAmount"`

	// Table part: returned items
	Lines []PurchaseReturnLine `db:"-" json:"lines"`
}

// PurchaseReturnLine represents one returned item.
type PurchaseReturnLine struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ProductID id.ID `db:"product_id" json:"productId"`

	Quantity      types.Quantity `db:"quantity" json:"quantity"`
	PurchasePrice types.Money    `db:"purchase_price" json:"purchasePrice"`
	Amount        types.Money    `db:"amount" json:"amount"`
}

// RefundTransaction is one partial refund against a return, optionally tied
// to the original payment it reverses.
type RefundTransaction struct {
	ID id.ID `db:"id" json:"id"`

	ReturnID id.ID `db:"return_id" json:"returnId"`

	// PaymentID is the original payment being refunded, when known
	PaymentID *id.ID `db:"payment_id" json:"paymentId,omitempty"`

	Amount types.Money `db:"amount" json:"amount"`

	// Status mirrors the refund lifecycle for a single transaction
	Status reconcile.RefundStatus `db:"status" json:"status"`

	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	CompletedAt *time.Time `db:"completed_at" json:"completedAt,omitempty"`
}

// NewPurchaseReturn creates a return document for an order.
func NewPurchaseReturn(orderID, warehouseID id.ID) *PurchaseReturn {
	return &PurchaseReturn{
		Document:     entity.NewDocument(),
		OrderID:      orderID,
		WarehouseID:  warehouseID,
		TotalAmount:  types.Zero(),
		RefundStatus: reconcile.RefundPending,
		RefundAmount: types.Zero(),
		Lines:        make([]PurchaseReturnLine, 0),
	}
}

// NewRefundTransaction creates a pending refund transaction.
func NewRefundTransaction(returnID id.ID, paymentID *id.ID, amount types.Money) *RefundTransaction {
	return &RefundTransaction{
		ID:        id.New(),
		ReturnID:  returnID,
		PaymentID: paymentID,
		Amount:    amount,
		Status:    reconcile.RefundPending,
		CreatedAt: time.Now().UTC(),
	}
}

// AddLine adds a returned item and recalculates the total.
func (r *PurchaseReturn) AddLine(productID id.ID, quantity types.Quantity, price types.Money) {
	line := PurchaseReturnLine{
		LineID:        id.New(),
		LineNo:        len(r.Lines) + 1,
		ProductID:     productID,
		Quantity:      quantity,
		PurchasePrice: price,
		Amount:        price.Mul(quantity.Decimal()),
	}

	r.Lines = append(r.Lines, line)
	r.recalculateTotal()
}

func (r *PurchaseReturn) recalculateTotal() {
	total := types.Zero()
	for _, line := range r.Lines {
		total = total.Add(line.Amount)
	}
	r.TotalAmount = total
}

// CanTransitionTo reports whether the refund status change is allowed.
func (r *PurchaseReturn) CanTransitionTo(next reconcile.RefundStatus) bool {
	for _, allowed := range refundTransitions[r.RefundStatus] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TransitionTo applies a guarded refund status change.
func (r *PurchaseReturn) TransitionTo(next reconcile.RefundStatus) error {
	if !r.CanTransitionTo(next) {
		return apperror.NewRefundStateInvalid(string(r.RefundStatus), string(next))
	}
	r.RefundStatus = next
	return nil
}

// Snapshot converts the return to the engine's refund view.
func (r *PurchaseReturn) Snapshot() reconcile.Return {
	return reconcile.Return{
		RefundStatus: r.RefundStatus,
		RefundAmount: r.RefundAmount,
		TotalAmount:  r.TotalAmount,
	}
}

// Validate implements entity.Validatable.
func (r *PurchaseReturn) Validate(ctx context.Context) error {
	if err := r.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(r.OrderID) {
		return apperror.NewValidation("order is required").
			WithDetail("field", "orderId")
	}

	if id.IsNil(r.WarehouseID) {
		return apperror.NewValidation("warehouse is required").
			WithDetail("field", "warehouseId")
	}

	if len(r.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range r.Lines {
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// GetDocumentType returns the document type name for register movements.
func (r *PurchaseReturn) GetDocumentType() string {
	return "PurchaseReturn"
}
