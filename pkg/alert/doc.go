// Package alert contains the notification domain: the Notification model,
// the threshold rules that derive notifications from device samples, the
// Publisher that persists and broadcasts them, and the Store contract used
// by every persistence backend.
//
// # Architecture
//
// The package follows a layered design:
//
//   - Rule / Evaluate: pure derivation of an alert from a sample
//   - Store: durable, cursor-paginated persistence (memory, Redis, Postgres)
//   - Publisher: orchestrates durability-before-visibility delivery
//
// # Delivery ordering
//
// Publish writes to the Store first and only then broadcasts. A failed store
// write suppresses the broadcast so a live notification can never exist that
// is absent from history. A failed broadcast is logged and tolerated; the
// notification remains reachable through pagination.
//
// # Pagination
//
// Store.List pages strictly backward through IDs. IDs are UUIDv7, so their
// canonical string form sorts in creation order and "older" is a plain
// string comparison. Cursors are opaque tokens bound to the scope and filter
// they were issued for; using one against a different query fails with
// ErrCursorScope.
//
// # Basic usage
//
//	store := alert.NewMemoryStore()
//	pub := alert.NewPublisher(store, channel, rules)
//
//	n, err := pub.Publish(ctx, sample)
package alert
