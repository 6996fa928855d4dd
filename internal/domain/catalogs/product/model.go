// Package product provides the Product catalog.
// Products are the purchasable items referenced by order lines and stock records.
package product

import (
	"context"

	"github.com/shopspring/decimal"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/entity"
)

// ProductType defines the type of item.
type ProductType string

const (
	TypeGoods    ProductType = "goods"
	TypeMaterial ProductType = "material"
	TypeService  ProductType = "service"
)

// Product represents a purchasable item.
type Product struct {
	entity.Catalog

	// Type defines item category
	Type ProductType `db:"type" json:"type"`

	// SKU is the stock keeping unit (unique among products)
	SKU *string `db:"sku" json:"sku,omitempty"`

	// Barcode is the item barcode (EAN-13, etc.)
	Barcode *string `db:"barcode" json:"barcode,omitempty"`

	// Unit is the unit of measure (pcs, kg, m, ...)
	Unit string `db:"unit" json:"unit"`

	// DefaultPurchasePrice is the last agreed purchase price per unit
	DefaultPurchasePrice decimal.Decimal `db:"default_purchase_price" json:"defaultPurchasePrice"`

	// Weight in kg (for logistics)
	Weight decimal.Decimal `db:"weight" json:"weight"`

	// Volume in cubic meters (for logistics)
	Volume decimal.Decimal `db:"volume" json:"volume"`

	// Description is a detailed description
	Description *string `db:"description" json:"description,omitempty"`

	// MinStockLevel triggers the low-stock listing when on-hand drops below it
	MinStockLevel decimal.Decimal `db:"min_stock_level" json:"minStockLevel"`
}

// NewProduct creates a new Product with required fields.
func NewProduct(code, name string, itemType ProductType) *Product {
	return &Product{
		Catalog: entity.NewCatalog(code, name),
		Type:    itemType,
		Unit:    "pcs",
		Weight:  decimal.Zero,
		Volume:  decimal.Zero,
	}
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	// Base catalog validation
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	// Type validation
	if !isValidProductType(p.Type) {
		return apperror.NewValidation("invalid product type").
			WithDetail("field", "type").
			WithDetail("value", string(p.Type))
	}

	if p.Unit == "" {
		return apperror.NewValidation("unit is required").
			WithDetail("field", "unit")
	}

	// Price must be non-negative
	if p.DefaultPurchasePrice.IsNegative() {
		return apperror.NewValidation("purchase price cannot be negative").
			WithDetail("field", "defaultPurchasePrice")
	}

	// Weight must be non-negative
	if p.Weight.IsNegative() {
		return apperror.NewValidation("weight cannot be negative").
			WithDetail("field", "weight")
	}

	// Volume must be non-negative
	if p.Volume.IsNegative() {
		return apperror.NewValidation("volume cannot be negative").
			WithDetail("field", "volume")
	}

	if p.MinStockLevel.IsNegative() {
		return apperror.NewValidation("minimum stock level cannot be negative").
			WithDetail("field", "minStockLevel")
	}

	return nil
}

// IsPhysical returns true if item has physical presence (not a service).
// Only physical items produce stock register movements.
func (p *Product) IsPhysical() bool {
	return p.Type != TypeService
}

// --- Validation Helpers ---

func isValidProductType(t ProductType) bool {
	switch t {
	case TypeGoods, TypeMaterial, TypeService:
		return true
	}
	return false
}
