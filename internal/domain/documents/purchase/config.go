package purchase

import "stockbook/pkg/numerator"

const (
	// NumberPrefix is the document number prefix (PO-2026-00001).
	NumberPrefix = "PO"

	// NumeratorStrategy defines the numbering strategy for this document type.
	// Purchase orders are primary accounting documents, so numbering is strict.
	NumeratorStrategy = numerator.StrategyStrict
)
