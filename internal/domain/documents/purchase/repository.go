package purchase

import (
	"context"
	"time"

	"stockbook/internal/core/id"
	"stockbook/internal/domain"
	"stockbook/internal/domain/reconcile"
)

// Repository defines operations for purchase order documents.
type Repository interface {
	// CRUD operations
	Create(ctx context.Context, doc *PurchaseOrder) error
	GetByID(ctx context.Context, docID id.ID) (*PurchaseOrder, error)
	GetByNumber(ctx context.Context, number string) (*PurchaseOrder, error)
	Update(ctx context.Context, doc *PurchaseOrder) error
	Delete(ctx context.Context, docID id.ID) error

	// Line operations
	GetLines(ctx context.Context, docID id.ID) ([]PurchaseOrderLine, error)
	SaveLines(ctx context.Context, docID id.ID, lines []PurchaseOrderLine) error

	// List operations
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*PurchaseOrder], error)

	// Locking
	GetForUpdate(ctx context.Context, docID id.ID) (*PurchaseOrder, error)
}

// ListFilter for filtering purchase orders.
type ListFilter struct {
	domain.ListFilter

	// Document-specific filters
	SupplierID  *id.ID
	WarehouseID *id.ID
	Status      *reconcile.Status
	DateFrom    *time.Time
	DateTo      *time.Time
}
