package device

import (
	"context"
	"time"
)

// Sample is a single tag reading taken from a device.
type Sample struct {
	// TagID identifies the tag (register, node) the value was read from.
	TagID string `json:"tag_id"`

	// Value is the raw reading.
	Value float64 `json:"value"`

	// StatusGood reports whether the underlying protocol marked the read
	// as trustworthy. Bad-status samples must not become alerts.
	StatusGood bool `json:"status_good"`

	// ReadAt is the moment the value was read, as reported by the driver.
	ReadAt time.Time `json:"read_at"`
}

// Reader yields raw tag samples on demand. Implementations wrap a concrete
// wire protocol and may be unavailable for long stretches; callers own the
// reconnect policy.
type Reader interface {
	// Connect establishes a session with the device. It is called before
	// the first Read and again after Close when the caller reconnects.
	Connect(ctx context.Context) error

	// Read fetches the current value of each requested tag. A failed read
	// does not invalidate the session; callers may retry on the next cycle.
	Read(ctx context.Context, tags []string) ([]Sample, error)

	// Close releases the session. It must be safe to call after a failed
	// Connect and must be idempotent.
	Close() error
}
