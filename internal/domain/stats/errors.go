package stats

import "errors"

// Sentinel error kinds for this package. Callers match with errors.Is.
var (
	// ErrInsufficientData marks a series that is not a usable full day.
	ErrInsufficientData = errors.New("insufficient price data")
)
