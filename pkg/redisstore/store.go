package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/plantops/alertfeed/pkg/alert"
)

const defaultKeyPrefix = "alertfeed"

// Store is the Redis-backed alert.Store implementation.
type Store struct {
	client *redis.Client
	prefix string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithKeyPrefix namespaces every key the store writes.
func WithKeyPrefix(prefix string) StoreOption {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// New creates a store on an established Redis client. The client belongs to
// the caller and is not closed by the store.
func New(client *redis.Client, opts ...StoreOption) *Store {
	s := &Store{client: client, prefix: defaultKeyPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) notifKey(id string) string { return fmt.Sprintf("%s:notif:%s", s.prefix, id) }
func (s *Store) allKey() string            { return s.prefix + ":idx:all" }
func (s *Store) ownerKey(owner string) string {
	return fmt.Sprintf("%s:idx:owner:%s", s.prefix, owner)
}
func (s *Store) unreadKey(owner string) string { return s.ownerKey(owner) + ":unread" }
func (s *Store) readKey(owner string) string   { return s.ownerKey(owner) + ":read" }

// indexKey selects the sorted set a query pages over. Read-state filters
// only exist within an owner partition; the all scope always pages the
// full index.
func (s *Store) indexKey(q alert.ListQuery) string {
	if q.Scope != alert.ScopeMine {
		return s.allKey()
	}
	switch q.Filter {
	case alert.FilterUnread:
		return s.unreadKey(q.OwnerID)
	case alert.FilterRead:
		return s.readKey(q.OwnerID)
	default:
		return s.ownerKey(q.OwnerID)
	}
}

func (s *Store) Create(ctx context.Context, n alert.Notification) error {
	if n.ID == "" {
		return alert.ErrEmptyID
	}

	doc, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("redisstore: encode notification: %w", err)
	}

	member := redis.Z{Score: 0, Member: n.ID}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.notifKey(n.ID), doc, 0)
	pipe.ZAdd(ctx, s.allKey(), member)
	if n.OwnerID != "" {
		pipe.ZAdd(ctx, s.ownerKey(n.OwnerID), member)
		if n.Read {
			pipe.ZAdd(ctx, s.readKey(n.OwnerID), member)
		} else {
			pipe.ZAdd(ctx, s.unreadKey(n.OwnerID), member)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redisstore: create notification: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, q alert.ListQuery) (alert.Page, error) {
	if q.Limit <= 0 {
		q.Limit = alert.DefaultPageLimit
	}
	if q.Filter == "" {
		q.Filter = alert.FilterAny
	}
	if q.Scope == "" {
		q.Scope = alert.ScopeAll
	}

	max := "+"
	if q.Cursor != "" {
		afterID, err := alert.DecodeCursor(q.Cursor, q.Scope, q.Filter)
		if err != nil {
			return alert.Page{}, err
		}
		max = "(" + afterID
	}

	// One extra member tells us whether older pages remain.
	ids, err := s.client.ZRevRangeByLex(ctx, s.indexKey(q), &redis.ZRangeBy{
		Min:   "-",
		Max:   max,
		Count: int64(q.Limit + 1),
	}).Result()
	if err != nil {
		return alert.Page{}, fmt.Errorf("redisstore: range index: %w", err)
	}

	hasMore := len(ids) > q.Limit
	if hasMore {
		ids = ids[:q.Limit]
	}

	items := make([]alert.Notification, 0, len(ids))
	for _, id := range ids {
		n, err := s.get(ctx, id)
		if err != nil {
			if errors.Is(err, redis.Nil) {
				// Index entry without a document; retention cleanup races
				// are skipped rather than failing the page.
				continue
			}
			return alert.Page{}, err
		}
		items = append(items, n)
	}

	page := alert.Page{Items: items, HasMore: hasMore}
	if len(items) > 0 {
		page.NextCursor = alert.EncodeCursor(q.Scope, q.Filter, items[len(items)-1].ID)
	}
	return page, nil
}

func (s *Store) get(ctx context.Context, id string) (alert.Notification, error) {
	doc, err := s.client.Get(ctx, s.notifKey(id)).Result()
	if err != nil {
		return alert.Notification{}, err
	}
	var n alert.Notification
	if err := json.Unmarshal([]byte(doc), &n); err != nil {
		return alert.Notification{}, errors.Join(ErrDecodeFailed, err)
	}
	return n, nil
}

func (s *Store) MarkRead(ctx context.Context, ownerID string, ids ...string) error {
	for _, id := range ids {
		n, err := s.get(ctx, id)
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return err
		}
		if n.OwnerID != ownerID || n.Read {
			continue
		}

		n.MarkAsRead()
		doc, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("redisstore: encode notification: %w", err)
		}

		pipe := s.client.TxPipeline()
		pipe.Set(ctx, s.notifKey(id), doc, 0)
		pipe.ZRem(ctx, s.unreadKey(ownerID), id)
		pipe.ZAdd(ctx, s.readKey(ownerID), redis.Z{Score: 0, Member: id})
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("redisstore: mark read: %w", err)
		}
	}
	return nil
}

func (s *Store) MarkAllRead(ctx context.Context, ownerID string) error {
	ids, err := s.client.ZRange(ctx, s.unreadKey(ownerID), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("redisstore: list unread: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	return s.MarkRead(ctx, ownerID, ids...)
}

func (s *Store) CountUnread(ctx context.Context, ownerID string) (int, error) {
	count, err := s.client.ZCard(ctx, s.unreadKey(ownerID)).Result()
	if err != nil {
		return 0, fmt.Errorf("redisstore: count unread: %w", err)
	}
	return int(count), nil
}
