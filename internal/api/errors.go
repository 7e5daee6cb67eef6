package api

import "errors"

var (
	// ErrInvalidRequestBody is returned when the request body cannot be decoded
	ErrInvalidRequestBody = errors.New("invalid request body")
	// ErrDomainOrEmailRequired is returned when neither domain nor email is provided
	ErrDomainOrEmailRequired = errors.New("domain or email required")
	// ErrInvalidEmailFormat is returned when the email address format is invalid
	ErrInvalidEmailFormat = errors.New("invalid email format")
	// ErrMultipleJSONObjects is returned when the request body contains more than one JSON object
	ErrMultipleJSONObjects = errors.New("request body must contain a single JSON object")
	// ErrAssessorNotConfigured is returned when the assessment engine is nil
	ErrAssessorNotConfigured = errors.New("assessment engine not configured")
)
