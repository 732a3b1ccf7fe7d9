package pgstore

import "errors"

var (
	// ErrFailedToParseDBConfig is returned when the connection string
	// cannot be parsed.
	ErrFailedToParseDBConfig = errors.New("pgstore: failed to parse db config")

	// ErrFailedToOpenDBConnection is returned when every connection
	// attempt fails.
	ErrFailedToOpenDBConnection = errors.New("pgstore: failed to open db connection")
)
