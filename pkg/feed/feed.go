package feed

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/plantops/alertfeed/pkg/alert"
	"github.com/plantops/alertfeed/pkg/logger"
	"github.com/plantops/alertfeed/pkg/push"
)

// Tab selects which slice of history the feed displays.
type Tab string

const (
	TabAll    Tab = "all"
	TabUnread Tab = "unread"
	TabRead   Tab = "read"
)

const defaultResubscribeDelay = time.Second

// Feed is one operator's notification view. All methods are safe for
// concurrent use; store calls run outside the state lock so a slow backend
// never blocks live pushes.
type Feed struct {
	store   alert.Store
	channel push.Channel
	ownerID string

	pageSize         int
	resubscribeDelay time.Duration
	logger           *slog.Logger

	mu           sync.Mutex
	tab          Tab
	items        []alert.Notification
	ids          map[string]struct{}
	prefetch     []alert.Notification
	nextCursor   alert.Cursor
	storeHasMore bool
	unread       int
	loading      bool
	// gen invalidates in-flight loads and prefetches: Reset bumps it, and a
	// result whose launch generation no longer matches is discarded.
	gen uint64

	stop context.CancelFunc
	done chan struct{}
}

// Option configures a Feed.
type Option func(*Feed)

// WithPageSize sets the pagination page size.
func WithPageSize(n int) Option {
	return func(f *Feed) {
		if n > 0 {
			f.pageSize = n
		}
	}
}

// WithTab sets the tab the feed starts on.
func WithTab(t Tab) Option {
	return func(f *Feed) {
		if t != "" {
			f.tab = t
		}
	}
}

// WithResubscribeDelay sets the wait before reopening a dropped push
// subscription.
func WithResubscribeDelay(d time.Duration) Option {
	return func(f *Feed) {
		if d > 0 {
			f.resubscribeDelay = d
		}
	}
}

// WithFeedLogger sets the feed's logger.
func WithFeedLogger(l *slog.Logger) Option {
	return func(f *Feed) {
		if l != nil {
			f.logger = l
		}
	}
}

// New creates a feed for one operator with injected collaborators. The
// channel may be nil for a pagination-only feed (Start then only loads the
// first page).
func New(store alert.Store, channel push.Channel, ownerID string, opts ...Option) *Feed {
	f := &Feed{
		store:            store,
		channel:          channel,
		ownerID:          ownerID,
		pageSize:         alert.DefaultPageLimit,
		resubscribeDelay: defaultResubscribeDelay,
		logger:           slog.Default(),
		tab:              TabAll,
		ids:              make(map[string]struct{}),
		storeHasMore:     true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// query maps a tab onto the store's scope and read-state filter.
func (f *Feed) query(tab Tab, cursor alert.Cursor) alert.ListQuery {
	q := alert.ListQuery{Cursor: cursor, Limit: f.pageSize}
	switch tab {
	case TabUnread:
		q.Scope = alert.ScopeMine
		q.OwnerID = f.ownerID
		q.Filter = alert.FilterUnread
	case TabRead:
		q.Scope = alert.ScopeMine
		q.OwnerID = f.ownerID
		q.Filter = alert.FilterRead
	default:
		q.Scope = alert.ScopeAll
		q.Filter = alert.FilterAny
	}
	return q
}

// Reset switches the active tab, discards items, prefetch buffer and
// cursor, and reloads the first page from scratch. Any in-flight load or
// prefetch belonging to the previous tab is invalidated and its result
// dropped silently.
func (f *Feed) Reset(ctx context.Context, tab Tab) error {
	f.mu.Lock()
	f.tab = tab
	f.items = nil
	f.ids = make(map[string]struct{})
	f.prefetch = nil
	f.nextCursor = ""
	f.storeHasMore = true
	f.gen++
	// The previous load no longer owns the single-flight flag; its result
	// will fail the generation check and be discarded.
	f.loading = false
	f.mu.Unlock()

	return f.LoadPage(ctx, true)
}

// LoadPage loads one page into the view. With reset it replaces the items
// from the top of history; otherwise it extends them with the prefetch
// buffer when one is ready (without issuing a store query) or with a fresh
// page at the current cursor. Concurrent calls are single-flight: a call
// that finds a load in progress is a no-op.
//
// A store failure surfaces to the caller and leaves every piece of feed
// state untouched.
func (f *Feed) LoadPage(ctx context.Context, reset bool) error {
	f.mu.Lock()
	if f.loading {
		f.mu.Unlock()
		return nil
	}
	gen := f.gen
	tab := f.tab

	// Consuming the buffered page replaces the store round-trip entirely.
	if !reset && len(f.prefetch) > 0 {
		f.appendLocked(f.prefetch)
		f.prefetch = nil
		ahead := f.storeHasMore
		cursor := f.nextCursor
		f.mu.Unlock()

		if ahead {
			f.prefetchAhead(ctx, gen, tab, cursor)
		}
		f.refreshUnread(ctx)
		return nil
	}

	f.loading = true
	cursor := alert.Cursor("")
	if !reset {
		cursor = f.nextCursor
	}
	f.mu.Unlock()

	page, err := f.store.List(ctx, f.query(tab, cursor))

	f.mu.Lock()
	if f.gen != gen {
		// The feed was reset while the fetch was in flight; this result
		// belongs to a dead generation.
		f.mu.Unlock()
		return nil
	}
	f.loading = false
	if err != nil {
		f.mu.Unlock()
		return err
	}

	if reset {
		f.items = nil
		f.ids = make(map[string]struct{})
	}
	f.appendLocked(page.Items)
	f.nextCursor = page.NextCursor
	f.storeHasMore = page.HasMore
	f.mu.Unlock()

	if page.HasMore {
		f.prefetchAhead(ctx, gen, tab, page.NextCursor)
	}
	f.refreshUnread(ctx)
	return nil
}

// LoadMore extends the view by one page. It is a no-op while a load is in
// flight or when neither the store nor the prefetch buffer has anything
// older.
func (f *Feed) LoadMore(ctx context.Context) error {
	f.mu.Lock()
	if f.loading || (!f.storeHasMore && len(f.prefetch) == 0) {
		f.mu.Unlock()
		return nil
	}
	f.mu.Unlock()

	return f.LoadPage(ctx, false)
}

// prefetchAhead fetches the page past cursor into the buffer from a
// detached goroutine, hiding one round-trip from the next LoadMore. The
// result is applied only if the feed has not been reset since launch.
func (f *Feed) prefetchAhead(ctx context.Context, gen uint64, tab Tab, cursor alert.Cursor) {
	go func() {
		page, err := f.store.List(ctx, f.query(tab, cursor))

		f.mu.Lock()
		defer f.mu.Unlock()
		if f.gen != gen {
			return
		}
		if err != nil {
			// Opportunistic only: the next LoadMore falls back to a
			// regular fetch at the unchanged cursor.
			f.logger.LogAttrs(ctx, slog.LevelDebug, "prefetch failed",
				logger.Component("feed"),
				logger.Error(err),
			)
			return
		}
		f.prefetch = page.Items
		f.nextCursor = page.NextCursor
		f.storeHasMore = page.HasMore
	}()
}

// OnLivePush applies one live notification. It is by construction unread at
// creation, so the owner's unread count moves up by exactly one. The item
// itself is prepended only when the active tab can show it; a read-only
// view must not display a necessarily-unread arrival. Pagination state is
// never touched: live pushes are strictly newer than anything being paged
// backward.
func (f *Feed) OnLivePush(n alert.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if n.OwnerID == f.ownerID {
		f.unread++
	}

	switch f.tab {
	case TabRead:
		return
	case TabUnread:
		if n.OwnerID != f.ownerID {
			return
		}
	}

	if _, dup := f.ids[n.ID]; dup {
		return
	}
	f.items = append([]alert.Notification{n}, f.items...)
	f.ids[n.ID] = struct{}{}
}

// MarkRead marks one notification read in the store, then decrements the
// unread count (floored at zero) and reloads the current tab so the visible
// read flags match the store. A store failure leaves count and view
// unchanged.
func (f *Feed) MarkRead(ctx context.Context, id string) error {
	if err := f.store.MarkRead(ctx, f.ownerID, id); err != nil {
		return err
	}

	f.mu.Lock()
	if f.unread > 0 {
		f.unread--
	}
	tab := f.tab
	f.mu.Unlock()

	return f.Reset(ctx, tab)
}

// MarkAllRead marks everything read in the store, zeroes the unread count
// and switches to the read tab as confirmation. A store failure leaves
// count and tab unchanged.
func (f *Feed) MarkAllRead(ctx context.Context) error {
	if err := f.store.MarkAllRead(ctx, f.ownerID); err != nil {
		return err
	}

	f.mu.Lock()
	f.unread = 0
	f.mu.Unlock()

	return f.Reset(ctx, TabRead)
}

// refreshUnread re-reads the owner's total unread count, decoupled from
// whatever page is displayed. Failures keep the last known value.
func (f *Feed) refreshUnread(ctx context.Context) {
	count, err := f.store.CountUnread(ctx, f.ownerID)
	if err != nil {
		f.logger.LogAttrs(ctx, slog.LevelWarn, "unread count refresh failed",
			logger.Component("feed"),
			logger.Error(err),
		)
		return
	}

	f.mu.Lock()
	f.unread = count
	f.mu.Unlock()
}

// appendLocked extends items with older entries, skipping IDs already in
// the view. Callers hold f.mu.
func (f *Feed) appendLocked(older []alert.Notification) {
	for _, n := range older {
		if _, dup := f.ids[n.ID]; dup {
			continue
		}
		f.items = append(f.items, n)
		f.ids[n.ID] = struct{}{}
	}
}

// Items returns a copy of the visible notifications, newest first.
func (f *Feed) Items() []alert.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]alert.Notification, len(f.items))
	copy(out, f.items)
	return out
}

// UnreadCount returns the owner's last known unread total.
func (f *Feed) UnreadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unread
}

// HasMore reports whether LoadMore can yield anything older, counting both
// remaining store pages and a filled prefetch buffer.
func (f *Feed) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.storeHasMore || len(f.prefetch) > 0
}

// Tab returns the active tab.
func (f *Feed) Tab() Tab {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tab
}

// Start loads the first page of the initial tab and, when a push channel is
// configured, begins pumping live notifications into the view. The pump
// runs until Stop or until ctx is cancelled.
func (f *Feed) Start(ctx context.Context) error {
	f.mu.Lock()
	if f.stop != nil {
		f.mu.Unlock()
		return ErrAlreadyStarted
	}
	runCtx, cancel := context.WithCancel(ctx)
	f.stop = cancel
	tab := f.tab
	f.mu.Unlock()

	if err := f.Reset(runCtx, tab); err != nil {
		cancel()
		f.mu.Lock()
		f.stop = nil
		f.mu.Unlock()
		return err
	}

	if f.channel == nil {
		return nil
	}

	done := make(chan struct{})
	f.mu.Lock()
	f.done = done
	f.mu.Unlock()

	go f.pump(runCtx, done)
	return nil
}

// Stop cancels the pump and waits for it to exit. Safe to call when the
// feed was never started.
func (f *Feed) Stop() {
	f.mu.Lock()
	stop, done := f.stop, f.done
	f.stop, f.done = nil, nil
	f.mu.Unlock()

	if stop == nil {
		return
	}
	stop()
	if done != nil {
		<-done
	}
}

// pump forwards live pushes into the view. A closed subscription while the
// context is still live means the push connection dropped: the pump
// resubscribes and reconciles the gap by reloading the current tab.
// Pagination, not channel replay, is the recovery path.
func (f *Feed) pump(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		sub := f.channel.Subscribe(ctx)
		for n := range sub.Receive(ctx) {
			f.OnLivePush(n)
		}
		_ = sub.Close()

		if ctx.Err() != nil {
			return
		}

		f.logger.LogAttrs(ctx, slog.LevelWarn, "push connection lost, resubscribing",
			logger.Component("feed"),
		)
		select {
		case <-ctx.Done():
			return
		case <-time.After(f.resubscribeDelay):
		}
		if err := f.Reset(ctx, f.Tab()); err != nil {
			f.logger.LogAttrs(ctx, slog.LevelWarn, "reconcile reload failed",
				logger.Component("feed"),
				logger.Error(err),
			)
		}
	}
}
