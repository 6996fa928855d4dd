package dto

import (
	"github.com/shopspring/decimal"

	"stockbook/internal/domain/catalogs/product"
)

// --- Request DTOs ---

// CreateProductRequest is the request body for creating a product.
type CreateProductRequest struct {
	Code                 string              `json:"code"`
	Name                 string              `json:"name" binding:"required"`
	Type                 product.ProductType `json:"type" binding:"required"`
	SKU                  *string             `json:"sku"`
	Barcode              *string             `json:"barcode"`
	Unit                 string              `json:"unit"`
	DefaultPurchasePrice decimal.Decimal     `json:"defaultPurchasePrice"`
	Weight               decimal.Decimal     `json:"weight"`
	Volume               decimal.Decimal     `json:"volume"`
	Description          *string             `json:"description"`
	MinStockLevel        decimal.Decimal     `json:"minStockLevel"`
	ParentID             *string             `json:"parentId"`
	IsFolder             bool                `json:"isFolder"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateProductRequest) ToEntity() *product.Product {
	p := product.NewProduct(r.Code, r.Name, r.Type)
	p.SKU = r.SKU
	p.Barcode = r.Barcode
	if r.Unit != "" {
		p.Unit = r.Unit
	}
	p.DefaultPurchasePrice = r.DefaultPurchasePrice
	p.Weight = r.Weight
	p.Volume = r.Volume
	p.Description = r.Description
	p.MinStockLevel = r.MinStockLevel
	p.ParentID = r.ParentID
	p.IsFolder = r.IsFolder
	return p
}

// UpdateProductRequest is the request body for updating a product.
type UpdateProductRequest struct {
	Code                 string              `json:"code"`
	Name                 string              `json:"name" binding:"required"`
	Type                 product.ProductType `json:"type" binding:"required"`
	SKU                  *string             `json:"sku"`
	Barcode              *string             `json:"barcode"`
	Unit                 string              `json:"unit"`
	DefaultPurchasePrice decimal.Decimal     `json:"defaultPurchasePrice"`
	Weight               decimal.Decimal     `json:"weight"`
	Volume               decimal.Decimal     `json:"volume"`
	Description          *string             `json:"description"`
	MinStockLevel        decimal.Decimal     `json:"minStockLevel"`
	ParentID             *string             `json:"parentId"`
	IsFolder             bool                `json:"isFolder"`
	Version              int                 `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateProductRequest) ApplyTo(p *product.Product) {
	p.Code = r.Code
	p.Name = r.Name
	p.Type = r.Type
	p.SKU = r.SKU
	p.Barcode = r.Barcode
	if r.Unit != "" {
		p.Unit = r.Unit
	}
	p.DefaultPurchasePrice = r.DefaultPurchasePrice
	p.Weight = r.Weight
	p.Volume = r.Volume
	p.Description = r.Description
	p.MinStockLevel = r.MinStockLevel
	p.ParentID = r.ParentID
	p.IsFolder = r.IsFolder
	p.Version = r.Version
}

// --- Response DTOs ---

// ProductResponse is the response body for a product.
type ProductResponse struct {
	ID                   string              `json:"id"`
	Code                 string              `json:"code"`
	Name                 string              `json:"name"`
	Type                 product.ProductType `json:"type"`
	SKU                  *string             `json:"sku,omitempty"`
	Barcode              *string             `json:"barcode,omitempty"`
	Unit                 string              `json:"unit"`
	DefaultPurchasePrice decimal.Decimal     `json:"defaultPurchasePrice"`
	Weight               decimal.Decimal     `json:"weight"`
	Volume               decimal.Decimal     `json:"volume"`
	Description          *string             `json:"description,omitempty"`
	MinStockLevel        decimal.Decimal     `json:"minStockLevel"`
	ParentID             *string             `json:"parentId,omitempty"`
	IsFolder             bool                `json:"isFolder"`
	DeletionMark         bool                `json:"deletionMark"`
	Version              int                 `json:"version"`
}

// FromProduct creates response DTO from domain entity.
func FromProduct(p *product.Product) *ProductResponse {
	return &ProductResponse{
		ID:                   p.ID.String(),
		Code:                 p.Code,
		Name:                 p.Name,
		Type:                 p.Type,
		SKU:                  p.SKU,
		Barcode:              p.Barcode,
		Unit:                 p.Unit,
		DefaultPurchasePrice: p.DefaultPurchasePrice,
		Weight:               p.Weight,
		Volume:               p.Volume,
		Description:          p.Description,
		MinStockLevel:        p.MinStockLevel,
		ParentID:             p.ParentID,
		IsFolder:             p.IsFolder,
		DeletionMark:         p.DeletionMark,
		Version:              p.Version,
	}
}
