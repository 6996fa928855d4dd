package supplier

import (
	"context"

	"stockbook/internal/core/id"
	"stockbook/internal/domain"
)

// Repository defines the interface for Supplier persistence.
type Repository interface {
	domain.CatalogRepository[*Supplier]

	// FindByTaxID retrieves supplier by tax ID (unique).
	FindByTaxID(ctx context.Context, taxID string) (*Supplier, error)

	// GetForUpdate retrieves supplier with row lock (for transactional updates).
	GetForUpdate(ctx context.Context, id id.ID) (*Supplier, error)
}
