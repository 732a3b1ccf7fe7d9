package device

import "errors"

var (
	// ErrNotConnected is returned by readers when Read is called without
	// an established session.
	ErrNotConnected = errors.New("device: not connected")

	// ErrReadFailed is returned by readers when a poll cycle could not
	// fetch the requested tags. The session remains usable.
	ErrReadFailed = errors.New("device: read failed")
)
