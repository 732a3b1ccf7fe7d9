package feed

import "errors"

var (
	// ErrAlreadyStarted is returned by Start when the feed's pump is
	// already running.
	ErrAlreadyStarted = errors.New("feed: already started")
)
