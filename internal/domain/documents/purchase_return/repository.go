package purchase_return

import (
	"context"

	"stockbook/internal/core/id"
)

// Repository defines operations for purchase return documents.
type Repository interface {
	Create(ctx context.Context, doc *PurchaseReturn) error
	GetByID(ctx context.Context, docID id.ID) (*PurchaseReturn, error)
	Update(ctx context.Context, doc *PurchaseReturn) error

	// Line operations
	GetLines(ctx context.Context, docID id.ID) ([]PurchaseReturnLine, error)
	SaveLines(ctx context.Context, docID id.ID, lines []PurchaseReturnLine) error

	// ListByOrder returns all returns for an order in chronological order.
	ListByOrder(ctx context.Context, orderID id.ID) ([]PurchaseReturn, error)

	// Locking
	GetForUpdate(ctx context.Context, docID id.ID) (*PurchaseReturn, error)

	// Refund transactions
	CreateTransaction(ctx context.Context, tx *RefundTransaction) error
	GetTransaction(ctx context.Context, txID id.ID) (*RefundTransaction, error)
	UpdateTransaction(ctx context.Context, tx *RefundTransaction) error
	ListTransactions(ctx context.Context, returnID id.ID) ([]RefundTransaction, error)
}
