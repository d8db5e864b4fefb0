package app

import "errors"

// Service errors.
var (
	// ErrUnknownBucket is returned when a bucket name is not part of the
	// enumerated bucket set.
	ErrUnknownBucket = errors.New("unknown bucket")

	// ErrBucketDisabled is returned when a known bucket is switched off in
	// configuration.
	ErrBucketDisabled = errors.New("bucket disabled")
)
