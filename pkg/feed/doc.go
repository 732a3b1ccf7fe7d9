// Package feed implements the per-operator notification feed: a state
// machine merging cursor-paginated history, a one-page prefetch buffer and
// live push events into a single ordered, gap-free, duplicate-free view
// with independent unread accounting.
//
// # Consistency model
//
// Pagination only ever moves backward (older) through notification IDs,
// while live pushes only ever arrive at the head. The two append points
// never collide, so a push arriving during an in-flight page fetch is
// applied immediately rather than waiting for the fetch to settle.
//
// Every mutation keeps the view invariants: items sorted newest-first, no
// duplicate IDs, at most one buffered page, and an unread count that only
// a confirmed mark-read may decrement.
//
// # Prefetch
//
// After each applied page the feed opportunistically fetches the next page
// into a buffer, hiding one round-trip of latency from the following
// LoadMore. The buffered page is consumed without re-querying the store.
// Prefetches run detached, tagged with the feed generation at launch; a
// Reset bumps the generation so a stale prefetch result is discarded
// silently instead of landing on a cleared list.
//
// # Lifecycle
//
// A Feed is a constructed instance with injected collaborators. Start
// subscribes to the push channel, loads the first page and pumps live
// events; a dropped push connection is resumed by resubscribing and
// reloading the current tab through pagination, never by expecting channel
// replay. Stop tears the pump down.
//
//	f := feed.New(store, channel, "operator-7")
//	if err := f.Start(ctx); err != nil { ... }
//	defer f.Stop()
//
//	_ = f.LoadMore(ctx)      // scroll back
//	_ = f.Reset(ctx, feed.TabUnread)
package feed
