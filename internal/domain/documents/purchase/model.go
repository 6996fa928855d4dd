// Package purchase provides the PurchaseOrder document.
// A purchase order tracks ordered, received and returned quantities per line;
// its status and money figures are derived by the reconcile engine.
package purchase

import (
	"context"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/entity"
	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
	"stockbook/internal/domain/reconcile"
)

// PurchaseOrder represents an order placed with a supplier.
type PurchaseOrder struct {
	entity.Document
	entity.CurrencyAware

	// Supplier reference
	SupplierID id.ID `db:"supplier_id" json:"supplierId"`

	// Warehouse goods are received into
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	// TotalAmount is fixed at creation from lines; returns never mutate it.
	// Net payable is always derived from it by the reconcile engine.
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`

	// Status is the derived order status, persisted for listing
	Status reconcile.Status `db:"status" json:"status"`

	// Table part: ordered items
	Lines []PurchaseOrderLine `db:"-" json:"lines"`
}

// PurchaseOrderLine represents one ordered item.
type PurchaseOrderLine struct {
	// Line identification
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	// Product reference
	ProductID id.ID `db:"product_id" json:"productId"`

	// Quantities
	Quantity         types.Quantity `db:"quantity" json:"quantity"`
	ReceivedQuantity types.Quantity `db:"received_quantity" json:"receivedQuantity"`
	ReturnedQuantity types.Quantity `db:"returned_quantity" json:"returnedQuantity"`

	// Pricing
	PurchasePrice types.Money `db:"purchase_price" json:"purchasePrice"`
	Amount        types.Money `db:"amount" json:"amount"`
}

// NewPurchaseOrder creates a new purchase order document.
func NewPurchaseOrder(supplierID, warehouseID id.ID) *PurchaseOrder {
	return &PurchaseOrder{
		Document:      entity.NewDocument(),
		CurrencyAware: entity.CurrencyAware{Currency: "USD"},
		SupplierID:    supplierID,
		WarehouseID:   warehouseID,
		TotalAmount:   types.Zero(),
		Status:        reconcile.StatusPending,
		Lines:         make([]PurchaseOrderLine, 0),
	}
}

// AddLine adds an ordered item and recalculates the total.
func (o *PurchaseOrder) AddLine(productID id.ID, quantity types.Quantity, price types.Money) {
	line := PurchaseOrderLine{
		LineID:        id.New(),
		LineNo:        len(o.Lines) + 1,
		ProductID:     productID,
		Quantity:      quantity,
		PurchasePrice: price,
		Amount:        price.Mul(quantity.Decimal()),
	}

	o.Lines = append(o.Lines, line)
	o.RecalculateTotal()
}

// RecalculateTotal updates TotalAmount from lines.
// Called on creation only; the total stays fixed afterwards.
func (o *PurchaseOrder) RecalculateTotal() {
	total := types.Zero()
	for i := range o.Lines {
		o.Lines[i].Amount = o.Lines[i].PurchasePrice.Mul(o.Lines[i].Quantity.Decimal())
		total = total.Add(o.Lines[i].Amount)
	}
	o.TotalAmount = total
}

// ReconcileItems converts lines to the engine's item snapshot.
func (o *PurchaseOrder) ReconcileItems() []reconcile.Item {
	items := make([]reconcile.Item, 0, len(o.Lines))
	for _, line := range o.Lines {
		items = append(items, reconcile.Item{
			Quantity:         line.Quantity,
			ReceivedQuantity: line.ReceivedQuantity,
			ReturnedQuantity: line.ReturnedQuantity,
			PurchasePrice:    line.PurchasePrice,
		})
	}
	return items
}

// DeriveStatus recomputes the order status from current line quantities.
// Cancelled is terminal and never recomputed away.
func (o *PurchaseOrder) DeriveStatus() reconcile.Status {
	if o.Status == reconcile.StatusCancelled {
		return reconcile.StatusCancelled
	}
	return reconcile.DeriveStatus(o.ReconcileItems())
}

// FindLine returns the line for a product, or nil.
func (o *PurchaseOrder) FindLine(productID id.ID) *PurchaseOrderLine {
	for i := range o.Lines {
		if o.Lines[i].ProductID == productID {
			return &o.Lines[i]
		}
	}
	return nil
}

// IsFullyReceived reports whether every line is received in full.
func (o *PurchaseOrder) IsFullyReceived() bool {
	for _, line := range o.Lines {
		if line.ReceivedQuantity < line.Quantity {
			return false
		}
	}
	return len(o.Lines) > 0
}

// IsFullyReturned reports whether everything received has been returned.
func (o *PurchaseOrder) IsFullyReturned() bool {
	received := false
	for _, line := range o.Lines {
		if line.ReceivedQuantity > 0 {
			received = true
		}
		if line.ReturnedQuantity < line.ReceivedQuantity {
			return false
		}
	}
	return received
}

// Validate implements entity.Validatable.
func (o *PurchaseOrder) Validate(ctx context.Context) error {
	if err := o.Document.Validate(ctx); err != nil {
		return err
	}

	if err := o.ValidateCurrency(ctx); err != nil {
		return err
	}

	if id.IsNil(o.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}

	if id.IsNil(o.WarehouseID) {
		return apperror.NewValidation("warehouse is required").
			WithDetail("field", "warehouseId")
	}

	if len(o.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range o.Lines {
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.PurchasePrice.IsNegative() {
			return apperror.NewValidation("purchase price cannot be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.ReceivedQuantity.IsNegative() || line.ReturnedQuantity.IsNegative() {
			return apperror.NewValidation("received and returned quantities cannot be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// GetDocumentType returns the document type name for register movements.
func (o *PurchaseOrder) GetDocumentType() string {
	return "PurchaseOrder"
}
