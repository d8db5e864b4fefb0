package cache

import "errors"

// Sentinel error kinds for this package.
var (
	// ErrUnavailable marks a store that cannot be read or written. Callers
	// degrade to always-recompute instead of failing the tick.
	ErrUnavailable = errors.New("cache unavailable")
)
