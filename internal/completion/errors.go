package completion

import "errors"

var (
	// ErrCompletionFailed is returned when the completion request fails
	ErrCompletionFailed = errors.New("completion request failed")
	// ErrEmptyCompletion is returned when the model returns no choices
	ErrEmptyCompletion = errors.New("completion returned no choices")
)
