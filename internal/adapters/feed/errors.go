package feed

import "errors"

// Feed errors.
var (
	// ErrFetchFailed is returned when the price API cannot be reached or
	// answers with a non-OK status.
	ErrFetchFailed = errors.New("price fetch failed")

	// ErrBadPayload is returned when the API answers with a body that does
	// not carry usable price data.
	ErrBadPayload = errors.New("unusable price payload")
)
