// Package poller drives a device reader on a fixed cadence and hands each
// successful sample batch to the alert publisher.
//
// # Lifecycle
//
//	Disconnected -> Connecting -> Polling -> (transient failure) -> Backoff -> Polling
//
// Cancellation stops the loop in the terminal Stopped state, releasing the
// reader session on every exit path. Connection failures are retried
// forever with a fixed delay: operator visibility matters more than bounded
// retries here.
//
// A failed read never tears the session down; the cycle is logged and
// skipped, and polling resumes on the next tick. The publisher is called
// synchronously from the cycle; when a call overruns the poll interval the
// poller logs a lag warning instead of queueing unbounded work.
//
// # Usage
//
//	p := poller.New(reader, publisher, []string{"boiler.temp", "boiler.psi"},
//	    poller.WithInterval(200*time.Millisecond),
//	)
//	err := p.Run(ctx) // blocks until ctx is cancelled
package poller
