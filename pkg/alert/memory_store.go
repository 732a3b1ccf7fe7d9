package alert

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store with real cursor semantics. Suitable
// for development and testing; production deployments use the Redis or
// Postgres backends.
type MemoryStore struct {
	notifications []Notification // append-ordered, so ascending by ID
	mu            sync.RWMutex
}

// NewMemoryStore creates an empty in-memory notification store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Create(ctx context.Context, n Notification) error {
	if n.ID == "" {
		return ErrEmptyID
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
	return nil
}

// matches applies the scope and read-state filter of a query.
func matches(n Notification, q ListQuery) bool {
	if q.Scope == ScopeMine && n.OwnerID != q.OwnerID {
		return false
	}
	switch q.Filter {
	case FilterUnread:
		return !n.Read
	case FilterRead:
		return n.Read
	default:
		return true
	}
}

func (s *MemoryStore) List(ctx context.Context, q ListQuery) (Page, error) {
	q.normalize()

	afterID := ""
	if q.Cursor != "" {
		id, err := DecodeCursor(q.Cursor, q.Scope, q.Filter)
		if err != nil {
			return Page{}, err
		}
		afterID = id
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	// Walk newest to oldest; fetch one extra item to learn whether older
	// pages remain without a second query.
	items := make([]Notification, 0, q.Limit)
	hasMore := false
	for i := len(s.notifications) - 1; i >= 0; i-- {
		n := s.notifications[i]
		if afterID != "" && n.ID >= afterID {
			continue
		}
		if !matches(n, q) {
			continue
		}
		if len(items) == q.Limit {
			hasMore = true
			break
		}
		items = append(items, n)
	}

	page := Page{Items: items, HasMore: hasMore}
	if len(items) > 0 {
		page.NextCursor = EncodeCursor(q.Scope, q.Filter, items[len(items)-1].ID)
	}
	return page, nil
}

func (s *MemoryStore) MarkRead(ctx context.Context, ownerID string, ids ...string) error {
	idSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.notifications {
		n := &s.notifications[i]
		if n.OwnerID == ownerID && idSet[n.ID] && !n.Read {
			n.MarkAsRead()
		}
	}
	return nil
}

func (s *MemoryStore) MarkAllRead(ctx context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.notifications {
		n := &s.notifications[i]
		if n.OwnerID == ownerID && !n.Read {
			n.MarkAsRead()
		}
	}
	return nil
}

func (s *MemoryStore) CountUnread(ctx context.Context, ownerID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.notifications {
		if n.OwnerID == ownerID && !n.Read {
			count++
		}
	}
	return count, nil
}
