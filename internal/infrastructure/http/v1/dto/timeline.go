package dto

import (
	"encoding/json"
	"time"

	"stockbook/internal/domain/reconcile"
	"stockbook/internal/domain/timeline"
)

// TimelineEventResponse is one purchase timeline entry.
type TimelineEventResponse struct {
	ID        string              `json:"id"`
	OrderID   string              `json:"orderId"`
	Type      reconcile.EventType `json:"type"`
	PaymentID *string             `json:"paymentId,omitempty"`
	ReturnID  *string             `json:"returnId,omitempty"`
	Payload   json.RawMessage     `json:"payload,omitempty"`
	CreatedBy string              `json:"createdBy,omitempty"`
	CreatedAt time.Time           `json:"createdAt"`
}

// FromTimelineEvent creates response DTO from domain entity.
func FromTimelineEvent(ev timeline.PurchaseEvent) TimelineEventResponse {
	resp := TimelineEventResponse{
		ID:        ev.ID.String(),
		OrderID:   ev.OrderID.String(),
		Type:      ev.Type,
		Payload:   ev.Payload,
		CreatedBy: ev.CreatedBy,
		CreatedAt: ev.CreatedAt,
	}
	if ev.PaymentID != nil {
		s := ev.PaymentID.String()
		resp.PaymentID = &s
	}
	if ev.ReturnID != nil {
		s := ev.ReturnID.String()
		resp.ReturnID = &s
	}
	return resp
}

// TimelineResponse is the chronological event list for one order.
type TimelineResponse struct {
	Items []TimelineEventResponse `json:"items"`
}
