package reconcile

import (
	"time"
)

// EventType identifies a purchase timeline entry.
type EventType string

const (
	EventOrderPlaced     EventType = "order_placed"
	EventPartialReceipt  EventType = "partial_receipt"
	EventFullReceipt     EventType = "full_receipt"
	EventPartialReturn   EventType = "partial_return"
	EventFullReturn      EventType = "full_return"
	EventPaymentMade     EventType = "payment_made"
	EventPaymentVoided   EventType = "payment_voided"
	EventStatusChange    EventType = "status_change"
	EventBalanceResolved EventType = "balance_resolved"
	EventCancelled       EventType = "cancelled"
)

// IsReturn reports whether the event records a return.
func (t EventType) IsReturn() bool {
	return t == EventPartialReturn || t == EventFullReturn
}

// Event is the chronology view of one timeline entry. The engine uses events
// only to order payments against returns; payload and linkage stay in the
// timeline document model.
type Event struct {
	Type      EventType
	CreatedAt time.Time
}

// PaymentMadeAfterReturns reports whether the earliest payment was recorded
// strictly after the latest return. When true the payment was presumably
// already adjusted for the return by staff, so no separate refund is owed.
// Absence of either side means false.
func PaymentMadeAfterReturns(events []Event) bool {
	var (
		firstPayment time.Time
		lastReturn   time.Time
		havePayment  bool
		haveReturn   bool
	)

	for _, ev := range events {
		switch {
		case ev.Type == EventPaymentMade:
			if !havePayment || ev.CreatedAt.Before(firstPayment) {
				firstPayment = ev.CreatedAt
				havePayment = true
			}
		case ev.Type.IsReturn():
			if !haveReturn || ev.CreatedAt.After(lastReturn) {
				lastReturn = ev.CreatedAt
				haveReturn = true
			}
		}
	}

	return havePayment && haveReturn && firstPayment.After(lastReturn)
}
