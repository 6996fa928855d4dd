package dto

import (
	"time"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
	"stockbook/internal/domain/documents/payment"
)

// --- Request DTOs ---

// RecordPaymentRequest is the request body for recording a payment.
type RecordPaymentRequest struct {
	OrderID string         `json:"orderId" binding:"required"`
	Amount  types.Money    `json:"amount" binding:"required"`
	Method  payment.Method `json:"method" binding:"required"`
	Date    *time.Time     `json:"date"`
	Comment string         `json:"comment"`
}

// ToEntity converts DTO to domain entity.
func (r *RecordPaymentRequest) ToEntity() (*payment.PurchasePayment, error) {
	orderID, err := id.Parse(r.OrderID)
	if err != nil {
		return nil, apperror.NewValidation("invalid orderId format")
	}

	doc := payment.NewPurchasePayment(orderID, r.Amount, r.Method)
	if r.Date != nil {
		doc.Date = *r.Date
	}
	doc.Comment = r.Comment
	return doc, nil
}

// VoidPaymentRequest is the request body for voiding a payment.
type VoidPaymentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// --- Response DTOs ---

// PaymentResponse is the response body for a payment.
type PaymentResponse struct {
	DocumentResponse
	OrderID    string         `json:"orderId"`
	Amount     types.Money    `json:"amount"`
	Method     payment.Method `json:"method"`
	Status     payment.Status `json:"status"`
	VoidReason *string        `json:"voidReason,omitempty"`
	VoidedAt   *time.Time     `json:"voidedAt,omitempty"`
	VoidedBy   *string        `json:"voidedBy,omitempty"`
}

// FromPayment creates response DTO from domain entity.
func FromPayment(doc *payment.PurchasePayment) *PaymentResponse {
	return &PaymentResponse{
		DocumentResponse: FromDocument(doc.Document),
		OrderID:          doc.OrderID.String(),
		Amount:           doc.Amount,
		Method:           doc.Method,
		Status:           doc.Status,
		VoidReason:       doc.VoidReason,
		VoidedAt:         doc.VoidedAt,
		VoidedBy:         doc.VoidedBy,
	}
}

// PaymentListResponse is a list of payments with the active total.
type PaymentListResponse struct {
	Items      []*PaymentResponse `json:"items"`
	AmountPaid types.Money        `json:"amountPaid"`
}
