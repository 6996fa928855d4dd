package entity

import (
	"context"

	"stockbook/internal/core/apperror"
)

// CurrencyAware is a trait for documents that carry a currency dimension.
// Currency is an ISO 4217 code; all amounts in one document share it.
type CurrencyAware struct {
	Currency string `db:"currency" json:"currency"`
}

// ValidateCurrency ensures a currency code is set and looks like ISO 4217.
func (c *CurrencyAware) ValidateCurrency(ctx context.Context) error {
	if len(c.Currency) != 3 {
		return apperror.NewValidation("currency must be a 3-letter ISO code").
			WithDetail("field", "currency").
			WithDetail("value", c.Currency)
	}
	return nil
}

// GetCurrency returns the currency code (useful for interfaces).
func (c *CurrencyAware) GetCurrency() string {
	return c.Currency
}
