package assessment

import "errors"

// ErrInvalidVendor is returned when the vendor input cannot be parsed into a domain
var ErrInvalidVendor = errors.New("invalid vendor domain")
