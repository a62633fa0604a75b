package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound             = errors.New("entity not found")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrStoreUnavailable     = errors.New("shared store unavailable")
	ErrSubmissionContended  = errors.New("submit lock contended, retry")
	ErrLockNotHeld          = errors.New("lock not held")
	ErrClassificationFailed = errors.New("classification failed")
)
