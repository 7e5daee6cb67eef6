package fetch

import "errors"

var (
	// ErrRequestFailed is returned when the request could not be sent or timed out
	ErrRequestFailed = errors.New("fetch request failed")
	// ErrBodyReadFailed is returned when the response body could not be read
	ErrBodyReadFailed = errors.New("failed to read response body")
)
