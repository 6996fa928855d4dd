package payment

import "stockbook/pkg/numerator"

const (
	// NumberPrefix is the document number prefix (PAY-2026-00001).
	NumberPrefix = "PAY"

	// NumeratorStrategy: payments are money documents, numbering is strict.
	NumeratorStrategy = numerator.StrategyStrict
)
