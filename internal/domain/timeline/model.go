// Package timeline provides the append-only purchase event log.
// Events are immutable facts; reconciliation reads them as a chronology.
package timeline

import (
	"context"
	"encoding/json"
	"time"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/domain/reconcile"
)

// PurchaseEvent is one immutable entry in an order's timeline.
type PurchaseEvent struct {
	ID id.ID `db:"id" json:"id"`

	// OrderID is the purchase order this event belongs to
	OrderID id.ID `db:"order_id" json:"orderId"`

	// Type is one of the reconcile event types
	Type reconcile.EventType `db:"event_type" json:"type"`

	// PaymentID links payment_made / payment_voided events to the payment
	PaymentID *id.ID `db:"payment_id" json:"paymentId,omitempty"`

	// ReturnID links partial_return / full_return events to the return
	ReturnID *id.ID `db:"return_id" json:"returnId,omitempty"`

	// Payload carries event-specific details (quantities, amounts, statuses)
	Payload json.RawMessage `db:"payload" json:"payload,omitempty"`

	// CreatedBy is the user who triggered the event
	CreatedBy string `db:"created_by" json:"createdBy,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewPurchaseEvent creates an event with generated ID and current timestamp.
func NewPurchaseEvent(orderID id.ID, eventType reconcile.EventType) *PurchaseEvent {
	return &PurchaseEvent{
		ID:        id.New(),
		OrderID:   orderID,
		Type:      eventType,
		CreatedAt: time.Now().UTC(),
	}
}

// WithPayment links the event to a payment document.
func (e *PurchaseEvent) WithPayment(paymentID id.ID) *PurchaseEvent {
	e.PaymentID = &paymentID
	return e
}

// WithReturn links the event to a return document.
func (e *PurchaseEvent) WithReturn(returnID id.ID) *PurchaseEvent {
	e.ReturnID = &returnID
	return e
}

// WithPayload attaches a JSON payload. Marshal errors are ignored here and
// surface as an empty payload; callers pass plain maps and structs.
func (e *PurchaseEvent) WithPayload(v any) *PurchaseEvent {
	if data, err := json.Marshal(v); err == nil {
		e.Payload = data
	}
	return e
}

// Validate implements entity.Validatable.
func (e *PurchaseEvent) Validate(ctx context.Context) error {
	if id.IsNil(e.OrderID) {
		return apperror.NewValidation("order is required").
			WithDetail("field", "orderId")
	}
	if !isValidEventType(e.Type) {
		return apperror.NewValidation("invalid event type").
			WithDetail("field", "type").
			WithDetail("value", string(e.Type))
	}
	return nil
}

// EngineEvent converts the stored event to the engine's chronology view.
func (e *PurchaseEvent) EngineEvent() reconcile.Event {
	return reconcile.Event{
		Type:      e.Type,
		CreatedAt: e.CreatedAt,
	}
}

// EngineEvents converts a slice of stored events for the engine.
func EngineEvents(events []PurchaseEvent) []reconcile.Event {
	out := make([]reconcile.Event, 0, len(events))
	for _, e := range events {
		out = append(out, e.EngineEvent())
	}
	return out
}

func isValidEventType(t reconcile.EventType) bool {
	switch t {
	case reconcile.EventOrderPlaced, reconcile.EventPartialReceipt, reconcile.EventFullReceipt,
		reconcile.EventPartialReturn, reconcile.EventFullReturn,
		reconcile.EventPaymentMade, reconcile.EventPaymentVoided,
		reconcile.EventStatusChange, reconcile.EventBalanceResolved, reconcile.EventCancelled:
		return true
	}
	return false
}
