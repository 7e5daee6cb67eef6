package extract

import "errors"

// ErrPDFParseFailed is returned when PDF content could not be read
var ErrPDFParseFailed = errors.New("failed to parse pdf content")
