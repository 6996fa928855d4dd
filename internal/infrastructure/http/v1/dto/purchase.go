package dto

import (
	"time"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
	"stockbook/internal/domain/documents/purchase"
	"stockbook/internal/domain/reconcile"
)

// --- Request DTOs ---

// PurchaseOrderLineRequest is one ordered item in a create/update request.
type PurchaseOrderLineRequest struct {
	ProductID     string         `json:"productId" binding:"required"`
	Quantity      types.Quantity `json:"quantity" binding:"required"`
	PurchasePrice types.Money    `json:"purchasePrice" binding:"required"`
}

// CreatePurchaseOrderRequest is the request body for creating an order.
type CreatePurchaseOrderRequest struct {
	SupplierID  string                     `json:"supplierId" binding:"required"`
	WarehouseID string                     `json:"warehouseId" binding:"required"`
	Date        *time.Time                 `json:"date"`
	Currency    string                     `json:"currency"`
	Comment     string                     `json:"comment"`
	Lines       []PurchaseOrderLineRequest `json:"lines" binding:"required,min=1"`
}

// ToEntity converts DTO to domain entity.
func (r *CreatePurchaseOrderRequest) ToEntity() (*purchase.PurchaseOrder, error) {
	supplierID, err := id.Parse(r.SupplierID)
	if err != nil {
		return nil, apperror.NewValidation("invalid supplierId format")
	}
	warehouseID, err := id.Parse(r.WarehouseID)
	if err != nil {
		return nil, apperror.NewValidation("invalid warehouseId format")
	}

	doc := purchase.NewPurchaseOrder(supplierID, warehouseID)
	if r.Date != nil {
		doc.Date = *r.Date
	}
	if r.Currency != "" {
		doc.Currency = r.Currency
	}
	doc.Comment = r.Comment

	for _, line := range r.Lines {
		productID, err := id.Parse(line.ProductID)
		if err != nil {
			return nil, apperror.NewValidation("invalid productId format").
				WithDetail("productId", line.ProductID)
		}
		doc.AddLine(productID, line.Quantity, line.PurchasePrice)
	}

	return doc, nil
}

// UpdatePurchaseOrderRequest is the request body for updating a pending order.
type UpdatePurchaseOrderRequest struct {
	Date     *time.Time                 `json:"date"`
	Currency string                     `json:"currency"`
	Comment  *string                    `json:"comment"`
	Lines    []PurchaseOrderLineRequest `json:"lines"`
	Version  int                        `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity. Replacing lines resets
// received and returned quantities, which is safe for pending orders only;
// the service enforces that guard.
func (r *UpdatePurchaseOrderRequest) ApplyTo(doc *purchase.PurchaseOrder) error {
	if r.Date != nil {
		doc.Date = *r.Date
	}
	if r.Currency != "" {
		doc.Currency = r.Currency
	}
	if r.Comment != nil {
		doc.Comment = *r.Comment
	}
	doc.Version = r.Version

	if r.Lines != nil {
		doc.Lines = doc.Lines[:0]
		for _, line := range r.Lines {
			productID, err := id.Parse(line.ProductID)
			if err != nil {
				return apperror.NewValidation("invalid productId format").
					WithDetail("productId", line.ProductID)
			}
			doc.AddLine(productID, line.Quantity, line.PurchasePrice)
		}
	}

	return nil
}

// ReceiptLineRequest is one received item.
type ReceiptLineRequest struct {
	ProductID string         `json:"productId" binding:"required"`
	Quantity  types.Quantity `json:"quantity" binding:"required"`
}

// ReceiveRequest is the request body for recording a goods receipt.
type ReceiveRequest struct {
	Lines []ReceiptLineRequest `json:"lines" binding:"required,min=1"`
}

// ToReceiptLines converts the request to service input.
func (r *ReceiveRequest) ToReceiptLines() ([]purchase.ReceiptLine, error) {
	lines := make([]purchase.ReceiptLine, 0, len(r.Lines))
	for _, line := range r.Lines {
		productID, err := id.Parse(line.ProductID)
		if err != nil {
			return nil, apperror.NewValidation("invalid productId format").
				WithDetail("productId", line.ProductID)
		}
		lines = append(lines, purchase.ReceiptLine{
			ProductID: productID,
			Quantity:  line.Quantity,
		})
	}
	return lines, nil
}

// ReturnRequest is the request body for returning received items.
type ReturnRequest struct {
	Lines []ReceiptLineRequest `json:"lines" binding:"required,min=1"`
}

// ToReturnLines converts the request to service input.
func (r *ReturnRequest) ToReturnLines() ([]purchase.ReturnLine, error) {
	lines := make([]purchase.ReturnLine, 0, len(r.Lines))
	for _, line := range r.Lines {
		productID, err := id.Parse(line.ProductID)
		if err != nil {
			return nil, apperror.NewValidation("invalid productId format").
				WithDetail("productId", line.ProductID)
		}
		lines = append(lines, purchase.ReturnLine{
			ProductID: productID,
			Quantity:  line.Quantity,
		})
	}
	return lines, nil
}

// --- Response DTOs ---

// PurchaseOrderLineResponse is one ordered item in responses.
type PurchaseOrderLineResponse struct {
	LineID           string         `json:"lineId"`
	LineNo           int            `json:"lineNo"`
	ProductID        string         `json:"productId"`
	Quantity         types.Quantity `json:"quantity"`
	ReceivedQuantity types.Quantity `json:"receivedQuantity"`
	ReturnedQuantity types.Quantity `json:"returnedQuantity"`
	PurchasePrice    types.Money    `json:"purchasePrice"`
	Amount           types.Money    `json:"amount"`
}

// PurchaseOrderResponse is the response body for a purchase order.
type PurchaseOrderResponse struct {
	DocumentResponse
	SupplierID  string                      `json:"supplierId"`
	WarehouseID string                      `json:"warehouseId"`
	Currency    string                      `json:"currency"`
	TotalAmount types.Money                 `json:"totalAmount"`
	Status      reconcile.Status            `json:"status"`
	Lines       []PurchaseOrderLineResponse `json:"lines,omitempty"`
}

// FromPurchaseOrder creates response DTO from domain entity.
func FromPurchaseOrder(doc *purchase.PurchaseOrder) *PurchaseOrderResponse {
	lines := make([]PurchaseOrderLineResponse, len(doc.Lines))
	for i, line := range doc.Lines {
		lines[i] = PurchaseOrderLineResponse{
			LineID:           line.LineID.String(),
			LineNo:           line.LineNo,
			ProductID:        line.ProductID.String(),
			Quantity:         line.Quantity,
			ReceivedQuantity: line.ReceivedQuantity,
			ReturnedQuantity: line.ReturnedQuantity,
			PurchasePrice:    line.PurchasePrice,
			Amount:           line.Amount,
		}
	}

	return &PurchaseOrderResponse{
		DocumentResponse: FromDocument(doc.Document),
		SupplierID:       doc.SupplierID.String(),
		WarehouseID:      doc.WarehouseID.String(),
		Currency:         doc.Currency,
		TotalAmount:      doc.TotalAmount,
		Status:           doc.Status,
		Lines:            lines,
	}
}

// ReconciliationResponse wraps the derived financial state of one order.
type ReconciliationResponse struct {
	OrderID string           `json:"orderId"`
	Result  reconcile.Result `json:"result"`
}
