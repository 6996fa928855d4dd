package dto

import (
	"time"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
	"stockbook/internal/domain/documents/purchase_return"
	"stockbook/internal/domain/reconcile"
)

// --- Request DTOs ---

// UpdateRefundStatusRequest moves a return's refund lifecycle.
type UpdateRefundStatusRequest struct {
	Status reconcile.RefundStatus `json:"status" binding:"required"`
}

// AddRefundTransactionRequest records a refund disbursement attempt.
type AddRefundTransactionRequest struct {
	PaymentID *string     `json:"paymentId"`
	Amount    types.Money `json:"amount" binding:"required"`
}

// ParsePaymentID parses the optional payment reference.
func (r *AddRefundTransactionRequest) ParsePaymentID() (*id.ID, error) {
	if r.PaymentID == nil || *r.PaymentID == "" {
		return nil, nil
	}
	parsed, err := id.Parse(*r.PaymentID)
	if err != nil {
		return nil, apperror.NewValidation("invalid paymentId format")
	}
	return &parsed, nil
}

// --- Response DTOs ---

// PurchaseReturnLineResponse is one returned item in responses.
type PurchaseReturnLineResponse struct {
	LineID        string         `json:"lineId"`
	LineNo        int            `json:"lineNo"`
	ProductID     string         `json:"productId"`
	Quantity      types.Quantity `json:"quantity"`
	PurchasePrice types.Money    `json:"purchasePrice"`
	Amount        types.Money    `json:"amount"`
}

// PurchaseReturnResponse is the response body for a purchase return.
type PurchaseReturnResponse struct {
	DocumentResponse
	OrderID      string                       `json:"orderId"`
	WarehouseID  string                       `json:"warehouseId"`
	TotalAmount  types.Money                  `json:"totalAmount"`
	RefundStatus reconcile.RefundStatus       `json:"refundStatus"`
	RefundAmount types.Money                  `json:"refundAmount"`
	Lines        []PurchaseReturnLineResponse `json:"lines,omitempty"`
}

// FromPurchaseReturn creates response DTO from domain entity.
func FromPurchaseReturn(doc *purchase_return.PurchaseReturn) *PurchaseReturnResponse {
	lines := make([]PurchaseReturnLineResponse, len(doc.Lines))
	for i, line := range doc.Lines {
		lines[i] = PurchaseReturnLineResponse{
			LineID:        line.LineID.String(),
			LineNo:        line.LineNo,
			ProductID:     line.ProductID.String(),
			Quantity:      line.Quantity,
			PurchasePrice: line.PurchasePrice,
			Amount:        line.Amount,
		}
	}

	return &PurchaseReturnResponse{
		DocumentResponse: FromDocument(doc.Document),
		OrderID:          doc.OrderID.String(),
		WarehouseID:      doc.WarehouseID.String(),
		TotalAmount:      doc.TotalAmount,
		RefundStatus:     doc.RefundStatus,
		RefundAmount:     doc.RefundAmount,
		Lines:            lines,
	}
}

// RefundTransactionResponse is the response body for a refund transaction.
type RefundTransactionResponse struct {
	ID          string                 `json:"id"`
	ReturnID    string                 `json:"returnId"`
	PaymentID   *string                `json:"paymentId,omitempty"`
	Amount      types.Money            `json:"amount"`
	Status      reconcile.RefundStatus `json:"status"`
	CreatedAt   time.Time              `json:"createdAt"`
	CompletedAt *time.Time             `json:"completedAt,omitempty"`
}

// FromRefundTransaction creates response DTO from domain entity.
func FromRefundTransaction(tx *purchase_return.RefundTransaction) *RefundTransactionResponse {
	resp := &RefundTransactionResponse{
		ID:          tx.ID.String(),
		ReturnID:    tx.ReturnID.String(),
		Amount:      tx.Amount,
		Status:      tx.Status,
		CreatedAt:   tx.CreatedAt,
		CompletedAt: tx.CompletedAt,
	}
	if tx.PaymentID != nil {
		s := tx.PaymentID.String()
		resp.PaymentID = &s
	}
	return resp
}
