package supplier

import (
	"context"
	"fmt"
	"time"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/core/tx"
	"stockbook/internal/domain"
	"stockbook/pkg/numerator"
)

// Service provides business logic for Supplier catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Supplier] // Embedded for delegation
	repo                              Repository
	numerator                         numerator.Generator
}

// NewService creates a new Supplier service.
func NewService(
	repo Repository,
	txm tx.Manager,
	gen numerator.Generator,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Supplier]{
		Repo:       repo,
		TxManager:  txm,
		Numerator:  gen,
		EntityName: "supplier",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      gen,
	}

	// Register hooks for entity-specific logic
	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.prepareForUpdate)

	return svc
}

// prepareForCreate handles code generation and uniqueness checks before create.
func (s *Service) prepareForCreate(ctx context.Context, sup *Supplier) error {
	// Generate code if not provided
	if sup.Code == "" {
		cfg := numerator.DefaultConfig("SUP")
		code, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		sup.Code = code
	}

	// Check tax ID uniqueness
	if sup.TaxID != nil && *sup.TaxID != "" {
		exists, err := s.checkTaxIDExists(ctx, *sup.TaxID, sup.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperror.NewConflict("supplier with this tax ID already exists").
				WithDetail("taxId", sup.TaxID)
		}
	}

	return nil
}

// prepareForUpdate handles uniqueness checks before update.
func (s *Service) prepareForUpdate(ctx context.Context, sup *Supplier) error {
	// Check tax ID uniqueness (exclude current record)
	if sup.TaxID != nil && *sup.TaxID != "" {
		exists, err := s.checkTaxIDExists(ctx, *sup.TaxID, sup.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperror.NewConflict("supplier with this tax ID already exists").
				WithDetail("taxId", sup.TaxID)
		}
	}

	return nil
}

// --- Entity-specific methods (not in base CatalogService) ---

// FindByTaxID retrieves supplier by tax ID.
func (s *Service) FindByTaxID(ctx context.Context, taxID string) (*Supplier, error) {
	return s.repo.FindByTaxID(ctx, taxID)
}

// checkTaxIDExists checks if tax ID is already used by another supplier.
func (s *Service) checkTaxIDExists(ctx context.Context, taxID string, excludeID id.ID) (bool, error) {
	existing, err := s.repo.FindByTaxID(ctx, taxID)
	if err != nil {
		// Not found is OK; other errors must be propagated (DB errors, timeouts, etc.).
		if apperror.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	// If found and it's a different record
	return existing.ID != excludeID, nil
}
