package config

import "errors"

var (
	// ErrNilPointer is returned when Load receives a nil target.
	ErrNilPointer = errors.New("config: nil pointer passed")

	// ErrParsingConfig is returned when environment parsing fails.
	ErrParsingConfig = errors.New("config: failed to parse")

	// ErrConfigNotLoaded is returned when a configuration type failed to
	// parse on an earlier concurrent load.
	ErrConfigNotLoaded = errors.New("config: configuration not loaded")

	// ErrLoadingEnvFile is returned when an explicitly named .env file
	// cannot be loaded.
	ErrLoadingEnvFile = errors.New("config: failed to load env file")
)
