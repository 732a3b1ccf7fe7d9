package alert

import "context"

// Scope selects the visibility partition a query runs against.
type Scope string

const (
	// ScopeAll covers every notification regardless of owner.
	ScopeAll Scope = "all"
	// ScopeMine restricts the query to the calling owner's notifications.
	ScopeMine Scope = "mine"
)

// Filter narrows a ScopeMine query by read state.
type Filter string

const (
	FilterAny    Filter = "any"
	FilterUnread Filter = "unread"
	FilterRead   Filter = "read"
)

// DefaultPageLimit is the page size used when ListQuery.Limit is zero.
const DefaultPageLimit = 6

// ListQuery describes one backward page request.
type ListQuery struct {
	Scope   Scope
	OwnerID string // required for ScopeMine
	Filter  Filter // read-state narrowing; FilterAny when empty
	Cursor  Cursor // empty starts from the newest notification
	Limit   int    // page size; DefaultPageLimit when zero
}

// normalize fills query defaults in place.
func (q *ListQuery) normalize() {
	if q.Limit <= 0 {
		q.Limit = DefaultPageLimit
	}
	if q.Filter == "" {
		q.Filter = FilterAny
	}
	if q.Scope == "" {
		q.Scope = ScopeAll
	}
}

// Page is one slice of descending-ID history.
type Page struct {
	Items []Notification
	// NextCursor resumes pagination after the last item of this page.
	// Empty when the page itself is empty.
	NextCursor Cursor
	// HasMore reports whether older notifications remain past NextCursor.
	HasMore bool
}

// Store is the durable, append-ordered notification log. Implementations
// must be safe for concurrent use and must keep List free of side effects:
// a failed query leaves nothing half-written.
type Store interface {
	// Create appends a notification. IDs are assigned by the publisher and
	// must be unique and monotonically orderable.
	Create(ctx context.Context, n Notification) error

	// List returns one page of notifications, newest first, strictly older
	// than the query cursor. The returned cursor is bound to the query's
	// scope and filter.
	List(ctx context.Context, q ListQuery) (Page, error)

	// MarkRead marks the given notifications as read for the owner.
	MarkRead(ctx context.Context, ownerID string, ids ...string) error

	// MarkAllRead marks every unread notification of the owner as read.
	MarkAllRead(ctx context.Context, ownerID string) error

	// CountUnread returns the owner's total unread count, independent of
	// whatever page a client currently displays.
	CountUnread(ctx context.Context, ownerID string) (int, error)
}
