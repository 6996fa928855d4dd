// Package supplier provides the Supplier catalog.
// Suppliers are the counterparties purchase orders are placed with.
package supplier

import (
	"context"
	"regexp"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/entity"
)

// Pre-compiled regex patterns for validation (performance optimization)
var (
	whitespaceRE = regexp.MustCompile(`\s`)
	digitsOnlyRE = regexp.MustCompile(`^\d+$`)
	emailRE      = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// LegalForm defines the legal form of a supplier.
type LegalForm string

const (
	LegalIndividual LegalForm = "individual"
	LegalSoleTrader LegalForm = "sole_trader"
	LegalCompany    LegalForm = "company"
)

// Supplier represents a vendor goods are purchased from.
type Supplier struct {
	entity.Catalog

	// LegalForm defines the legal status
	LegalForm LegalForm `db:"legal_form" json:"legalForm"`

	// FullName is the official registered name
	FullName *string `db:"full_name" json:"fullName"`

	// TaxID is the tax identification number (unique among suppliers)
	TaxID *string `db:"tax_id" json:"taxId"`

	// LegalAddress is the registered address
	LegalAddress *string `db:"legal_address" json:"legalAddress,omitempty"`

	// ActualAddress is the actual/physical address
	ActualAddress *string `db:"actual_address" json:"actualAddress,omitempty"`

	// Phone is the primary contact phone
	Phone *string `db:"phone" json:"phone,omitempty"`

	// Email is the primary contact email
	Email *string `db:"email" json:"email,omitempty"`

	// ContactPerson is the primary contact name
	ContactPerson *string `db:"contact_person" json:"contactPerson,omitempty"`

	// PaymentTermsDays is the agreed invoice due period in days (0 = prepayment)
	PaymentTermsDays int `db:"payment_terms_days" json:"paymentTermsDays"`

	// Comment is a free-form note
	Comment *string `db:"comment" json:"comment,omitempty"`
}

// NewSupplier creates a new Supplier with required fields.
func NewSupplier(code, name string, legalForm LegalForm) *Supplier {
	return &Supplier{
		Catalog:   entity.NewCatalog(code, name),
		LegalForm: legalForm,
	}
}

// Validate implements entity.Validatable interface.
func (s *Supplier) Validate(ctx context.Context) error {
	// Base catalog validation
	if err := s.Catalog.Validate(ctx); err != nil {
		return err
	}

	// Legal form validation
	if !isValidLegalForm(s.LegalForm) {
		return apperror.NewValidation("invalid legal form").
			WithDetail("field", "legalForm").
			WithDetail("value", string(s.LegalForm))
	}

	// Tax ID validation (if provided)
	if s.TaxID != nil && *s.TaxID != "" {
		if err := validateTaxID(*s.TaxID); err != nil {
			return err
		}
	}

	// Email validation (if provided)
	if s.Email != nil && *s.Email != "" && !isValidEmail(*s.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}

	// Payment terms sanity
	if s.PaymentTermsDays < 0 {
		return apperror.NewValidation("payment terms cannot be negative").
			WithDetail("field", "paymentTermsDays")
	}

	return nil
}

// --- Validation Helpers ---

func isValidLegalForm(f LegalForm) bool {
	switch f {
	case LegalIndividual, LegalSoleTrader, LegalCompany:
		return true
	}
	return false
}

func validateTaxID(taxID string) error {
	// Remove spaces
	cleaned := whitespaceRE.ReplaceAllString(taxID, "")

	if len(cleaned) < 8 || len(cleaned) > 15 {
		return apperror.NewValidation("tax ID must be 8 to 15 digits").
			WithDetail("field", "taxId")
	}

	// Check that all characters are digits
	if !digitsOnlyRE.MatchString(cleaned) {
		return apperror.NewValidation("tax ID must contain only digits").
			WithDetail("field", "taxId")
	}

	return nil
}

func isValidEmail(email string) bool {
	return emailRE.MatchString(email)
}
