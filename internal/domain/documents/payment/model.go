// Package payment provides the PurchasePayment document.
// Payments are recorded against a purchase order; voiding keeps the row for
// audit and excludes it from paid sums.
package payment

import (
	"context"
	"time"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/entity"
	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
)

// Status of a payment row.
type Status string

const (
	StatusActive Status = "active"
	StatusVoid   Status = "void"
)

// Method is how the payment was made.
type Method string

const (
	MethodCash         Method = "cash"
	MethodBankTransfer Method = "bank_transfer"
	MethodCard         Method = "card"
)

// PurchasePayment represents a supplier payment against an order.
type PurchasePayment struct {
	entity.Document

	// OrderID is the purchase order this payment settles
	OrderID id.ID `db:"order_id" json:"orderId"`

	// Amount paid
	Amount types.Money `db:"amount" json:"amount"`

	// Method of payment
	Method Method `db:"method" json:"method"`

	// Status: active payments count toward the paid sum, void ones do not
	Status Status `db:"status" json:"status"`

	// Void audit trail
	VoidReason *string    `db:"void_reason" json:"voidReason,omitempty"`
	VoidedAt   *time.Time `db:"voided_at" json:"voidedAt,omitempty"`
	VoidedBy   *string    `db:"voided_by" json:"voidedBy,omitempty"`
}

// NewPurchasePayment creates an active payment for an order.
func NewPurchasePayment(orderID id.ID, amount types.Money, method Method) *PurchasePayment {
	return &PurchasePayment{
		Document: entity.NewDocument(),
		OrderID:  orderID,
		Amount:   amount,
		Method:   method,
		Status:   StatusActive,
	}
}

// IsVoid reports whether the payment has been voided.
func (p *PurchasePayment) IsVoid() bool {
	return p.Status == StatusVoid
}

// MarkVoid records the void with audit fields. Idempotence is enforced by the
// service; calling this on an already void payment is a programming error.
func (p *PurchasePayment) MarkVoid(reason, voidedBy string) {
	now := time.Now().UTC()
	p.Status = StatusVoid
	p.VoidReason = &reason
	p.VoidedAt = &now
	if voidedBy != "" {
		p.VoidedBy = &voidedBy
	}
}

// Validate implements entity.Validatable.
func (p *PurchasePayment) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(p.OrderID) {
		return apperror.NewValidation("order is required").
			WithDetail("field", "orderId")
	}

	if !p.Amount.IsPositive() {
		return apperror.NewValidation("amount must be positive").
			WithDetail("field", "amount")
	}

	if !isValidMethod(p.Method) {
		return apperror.NewValidation("invalid payment method").
			WithDetail("field", "method").
			WithDetail("value", string(p.Method))
	}

	if !isValidStatus(p.Status) {
		return apperror.NewValidation("invalid payment status").
			WithDetail("field", "status").
			WithDetail("value", string(p.Status))
	}

	return nil
}

func isValidMethod(m Method) bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodCard:
		return true
	}
	return false
}

func isValidStatus(s Status) bool {
	return s == StatusActive || s == StatusVoid
}
