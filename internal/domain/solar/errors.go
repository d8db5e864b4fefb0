package solar

import "errors"

// Sentinel error kinds for this package.
var (
	// ErrInsufficientData marks a series without a resolvable calendar day.
	ErrInsufficientData = errors.New("insufficient price data")
)
