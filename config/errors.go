package config

import "errors"

var (
	// ErrConfigRead is returned when the config file or environment cannot be read
	ErrConfigRead = errors.New("failed to read configuration")
	// ErrConfigUnmarshal is returned when config unmarshalling fails
	ErrConfigUnmarshal = errors.New("failed to unmarshal configuration")
)
