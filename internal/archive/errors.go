package archive

import "errors"

var (
	// ErrBucketCheckFailed is returned when bucket existence could not be verified
	ErrBucketCheckFailed = errors.New("failed to verify archive bucket")
	// ErrSaveFailed is returned when a document could not be stored
	ErrSaveFailed = errors.New("failed to archive document")
	// ErrNotFound is returned when no document exists at the given location
	ErrNotFound = errors.New("archived document not found")
)
