package timeline

import (
	"context"

	"stockbook/internal/core/id"
	"stockbook/internal/domain/reconcile"
)

// Repository defines the append-only event store.
// Events are never updated or deleted.
type Repository interface {
	// Append stores a new event.
	Append(ctx context.Context, event *PurchaseEvent) error

	// ListByOrder returns all events for an order in chronological order.
	ListByOrder(ctx context.Context, orderID id.ID) ([]PurchaseEvent, error)

	// ListByOrderAndType returns matching events in chronological order.
	ListByOrderAndType(ctx context.Context, orderID id.ID, eventType reconcile.EventType) ([]PurchaseEvent, error)
}
