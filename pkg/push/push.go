package push

import (
	"context"

	"github.com/plantops/alertfeed/pkg/alert"
)

// Subscriber receives broadcast notifications in FIFO order.
// Implementations must be safe for concurrent use.
type Subscriber interface {
	// Receive returns the channel notifications arrive on. The channel is
	// closed when the subscriber is closed or disconnected; a consumer that
	// observes closure while still running must resubscribe and reconcile
	// via pagination. The context lets blocking adapters respect
	// cancellation; the in-memory implementation keeps it for interface
	// consistency.
	Receive(ctx context.Context) <-chan alert.Notification

	// Close releases the subscription. Idempotent.
	Close() error
}

// Channel is the fan-out broadcast bus between the alert publisher and the
// connected feed consumers.
type Channel interface {
	// Subscribe registers a new subscriber receiving all future
	// broadcasts. The subscription lives until the context is cancelled or
	// Close is called.
	Subscribe(ctx context.Context) Subscriber

	// Broadcast delivers a notification to every active subscriber,
	// waiting at most the channel's send timeout per stalled subscriber
	// before disconnecting it.
	Broadcast(ctx context.Context, n alert.Notification) error

	// Close shuts the channel down and closes every subscriber.
	Close() error
}
