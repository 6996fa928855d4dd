package purchase_return

import "stockbook/pkg/numerator"

const (
	// NumberPrefix is the document number prefix (PR-2026-00001).
	NumberPrefix = "PR"

	// NumeratorStrategy: returns feed refunds, numbering is strict.
	NumeratorStrategy = numerator.StrategyStrict
)
