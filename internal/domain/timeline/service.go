package timeline

import (
	"context"
	"fmt"

	corecontext "stockbook/internal/core/context"
	"stockbook/internal/core/id"
	"stockbook/internal/domain/reconcile"
	"stockbook/pkg/logger"
)

// Service provides timeline operations. Appends run inside the caller's
// transaction so events commit atomically with the document mutation that
// produced them.
type Service struct {
	repo Repository
}

// NewService creates a new timeline service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record validates and appends an event, stamping the acting user.
func (s *Service) Record(ctx context.Context, event *PurchaseEvent) error {
	if event.CreatedBy == "" {
		event.CreatedBy = corecontext.GetUserID(ctx)
	}

	if err := event.Validate(ctx); err != nil {
		return err
	}

	if err := s.repo.Append(ctx, event); err != nil {
		return fmt.Errorf("append event: %w", err)
	}

	logger.Debug(ctx, "timeline event recorded",
		"order_id", event.OrderID,
		"type", event.Type)

	return nil
}

// ListByOrder returns the full chronology for an order.
func (s *Service) ListByOrder(ctx context.Context, orderID id.ID) ([]PurchaseEvent, error) {
	return s.repo.ListByOrder(ctx, orderID)
}

// ChronologyForOrder returns the engine view of an order's events.
func (s *Service) ChronologyForOrder(ctx context.Context, orderID id.ID) ([]reconcile.Event, error) {
	events, err := s.repo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return EngineEvents(events), nil
}
