package payment

import (
	"context"

	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
)

// Repository defines operations for purchase payment documents.
type Repository interface {
	Create(ctx context.Context, doc *PurchasePayment) error
	GetByID(ctx context.Context, docID id.ID) (*PurchasePayment, error)
	Update(ctx context.Context, doc *PurchasePayment) error

	// ListByOrder returns all payments for an order, active and void,
	// in chronological order.
	ListByOrder(ctx context.Context, orderID id.ID) ([]PurchasePayment, error)

	// SumActiveByOrder returns the paid total excluding void payments.
	SumActiveByOrder(ctx context.Context, orderID id.ID) (types.Money, error)

	// GetForUpdate retrieves payment with row lock.
	GetForUpdate(ctx context.Context, docID id.ID) (*PurchasePayment, error)
}
