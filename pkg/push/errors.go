package push

import "errors"

var (
	// ErrChannelClosed is returned by Broadcast after the channel has been
	// closed.
	ErrChannelClosed = errors.New("push: channel is closed")

	// ErrPublishFailed wraps transport errors raised while broadcasting.
	ErrPublishFailed = errors.New("push: publish failed")
)
