package window

import "errors"

// Sentinel error kinds for this package.
var (
	// ErrInvalidLength marks a window length outside (0, len(seq)].
	ErrInvalidLength = errors.New("invalid window length")
)
