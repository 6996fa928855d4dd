package dto

import (
	"stockbook/internal/domain/catalogs/supplier"
)

// --- Request DTOs ---

// CreateSupplierRequest is the request body for creating a supplier.
type CreateSupplierRequest struct {
	Code             string             `json:"code"`
	Name             string             `json:"name" binding:"required"`
	LegalForm        supplier.LegalForm `json:"legalForm" binding:"required"`
	FullName         *string            `json:"fullName"`
	TaxID            *string            `json:"taxId"`
	LegalAddress     *string            `json:"legalAddress"`
	ActualAddress    *string            `json:"actualAddress"`
	Phone            *string            `json:"phone"`
	Email            *string            `json:"email"`
	ContactPerson    *string            `json:"contactPerson"`
	PaymentTermsDays int                `json:"paymentTermsDays"`
	Comment          *string            `json:"comment"`
	ParentID         *string            `json:"parentId"`
	IsFolder         bool               `json:"isFolder"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateSupplierRequest) ToEntity() *supplier.Supplier {
	s := supplier.NewSupplier(r.Code, r.Name, r.LegalForm)
	s.FullName = r.FullName
	s.TaxID = r.TaxID
	s.LegalAddress = r.LegalAddress
	s.ActualAddress = r.ActualAddress
	s.Phone = r.Phone
	s.Email = r.Email
	s.ContactPerson = r.ContactPerson
	s.PaymentTermsDays = r.PaymentTermsDays
	s.Comment = r.Comment
	s.ParentID = r.ParentID
	s.IsFolder = r.IsFolder
	return s
}

// UpdateSupplierRequest is the request body for updating a supplier.
type UpdateSupplierRequest struct {
	Code             string             `json:"code"`
	Name             string             `json:"name" binding:"required"`
	LegalForm        supplier.LegalForm `json:"legalForm" binding:"required"`
	FullName         *string            `json:"fullName"`
	TaxID            *string            `json:"taxId"`
	LegalAddress     *string            `json:"legalAddress"`
	ActualAddress    *string            `json:"actualAddress"`
	Phone            *string            `json:"phone"`
	Email            *string            `json:"email"`
	ContactPerson    *string            `json:"contactPerson"`
	PaymentTermsDays int                `json:"paymentTermsDays"`
	Comment          *string            `json:"comment"`
	ParentID         *string            `json:"parentId"`
	IsFolder         bool               `json:"isFolder"`
	Version          int                `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateSupplierRequest) ApplyTo(s *supplier.Supplier) {
	s.Code = r.Code
	s.Name = r.Name
	s.LegalForm = r.LegalForm
	s.FullName = r.FullName
	s.TaxID = r.TaxID
	s.LegalAddress = r.LegalAddress
	s.ActualAddress = r.ActualAddress
	s.Phone = r.Phone
	s.Email = r.Email
	s.ContactPerson = r.ContactPerson
	s.PaymentTermsDays = r.PaymentTermsDays
	s.Comment = r.Comment
	s.ParentID = r.ParentID
	s.IsFolder = r.IsFolder
	s.Version = r.Version
}

// --- Response DTOs ---

// SupplierResponse is the response body for a supplier.
type SupplierResponse struct {
	ID               string             `json:"id"`
	Code             string             `json:"code"`
	Name             string             `json:"name"`
	LegalForm        supplier.LegalForm `json:"legalForm"`
	FullName         *string            `json:"fullName,omitempty"`
	TaxID            *string            `json:"taxId,omitempty"`
	LegalAddress     *string            `json:"legalAddress,omitempty"`
	ActualAddress    *string            `json:"actualAddress,omitempty"`
	Phone            *string            `json:"phone,omitempty"`
	Email            *string            `json:"email,omitempty"`
	ContactPerson    *string            `json:"contactPerson,omitempty"`
	PaymentTermsDays int                `json:"paymentTermsDays"`
	Comment          *string            `json:"comment,omitempty"`
	ParentID         *string            `json:"parentId,omitempty"`
	IsFolder         bool               `json:"isFolder"`
	DeletionMark     bool               `json:"deletionMark"`
	Version          int                `json:"version"`
}

// FromSupplier creates response DTO from domain entity.
func FromSupplier(s *supplier.Supplier) *SupplierResponse {
	return &SupplierResponse{
		ID:               s.ID.String(),
		Code:             s.Code,
		Name:             s.Name,
		LegalForm:        s.LegalForm,
		FullName:         s.FullName,
		TaxID:            s.TaxID,
		LegalAddress:     s.LegalAddress,
		ActualAddress:    s.ActualAddress,
		Phone:            s.Phone,
		Email:            s.Email,
		ContactPerson:    s.ContactPerson,
		PaymentTermsDays: s.PaymentTermsDays,
		Comment:          s.Comment,
		ParentID:         s.ParentID,
		IsFolder:         s.IsFolder,
		DeletionMark:     s.DeletionMark,
		Version:          s.Version,
	}
}
