// Package push implements the live notification channel: a fan-out bus
// that redelivers every broadcast notification to each currently-connected
// subscriber.
//
// # Guarantees
//
// Delivery is at-least-once and best-effort. Each subscriber sees messages
// in FIFO order, but there is no ordering across subscribers and no backlog:
// a subscriber connected after a broadcast never receives it. Consumers that
// reconnect must reconcile the gap through pagination, never by expecting
// channel replay.
//
// A stalled subscriber is given a bounded send timeout and then
// disconnected; it can never stall the broadcaster or other subscribers
// indefinitely.
//
// # Implementations
//
//   - MemoryChannel: in-process bus for single-binary deployments and tests.
//   - RedisChannel: Redis pub/sub adapter with the same contract for
//     multi-process deployments; its receive loop rides on go-redis's
//     automatic reconnection, with no delivery guarantee for the gap.
package push
