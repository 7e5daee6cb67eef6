package discovery

import "errors"

// ErrInvalidDomain is returned when the vendor domain is empty or malformed
var ErrInvalidDomain = errors.New("invalid vendor domain")
