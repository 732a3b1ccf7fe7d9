package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/plantops/alertfeed/pkg/alert"
)

// EnsureSchema bootstraps the notifications table and its pagination
// index. Broader schema management belongs to the deployment, not this
// store.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS notifications (
    id         TEXT PRIMARY KEY,
    owner_id   TEXT NOT NULL DEFAULT '',
    device     TEXT NOT NULL,
    metric     TEXT NOT NULL,
    severity   TEXT NOT NULL,
    message    TEXT NOT NULL,
    read       BOOLEAN NOT NULL DEFAULT FALSE,
    read_at    TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS notifications_owner_id_idx
    ON notifications (owner_id, id DESC);`

	if _, err := pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("pgstore: ensure schema: %w", err)
	}
	return nil
}

// Store is the PostgreSQL-backed alert.Store implementation.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a store on an established pool. The pool belongs to the
// caller and is not closed by the store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Create(ctx context.Context, n alert.Notification) error {
	if n.ID == "" {
		return alert.ErrEmptyID
	}

	const q = `
INSERT INTO notifications (id, owner_id, device, metric, severity, message, read, read_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.pool.Exec(ctx, q,
		n.ID, n.OwnerID, n.Device, n.Metric, string(n.Severity), n.Message, n.Read, n.ReadAt, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("pgstore: create notification: %w", err)
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

	where := "TRUE"
	args := []any{}
	if q.Scope == alert.ScopeMine {
		args = append(args, q.OwnerID)
		where = fmt.Sprintf("owner_id = $%d", len(args))
		switch q.Filter {
		case alert.FilterUnread:
			where += " AND NOT read"
		case alert.FilterRead:
			where += " AND read"
		}
	}
	if q.Cursor != "" {
		afterID, err := alert.DecodeCursor(q.Cursor, q.Scope, q.Filter)
		if err != nil {
			return alert.Page{}, err
		}
		args = append(args, afterID)
		where += fmt.Sprintf(" AND id < $%d", len(args))
	}

	// One extra row tells us whether older pages remain.
	args = append(args, q.Limit+1)
	query := fmt.Sprintf(`
SELECT id, owner_id, device, metric, severity, message, read, read_at, created_at
FROM notifications
WHERE %s
ORDER BY id DESC
LIMIT $%d`, where, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return alert.Page{}, fmt.Errorf("pgstore: list notifications: %w", err)
	}
	defer rows.Close()

	items := make([]alert.Notification, 0, q.Limit)
	for rows.Next() {
		var n alert.Notification
		if err := rows.Scan(&n.ID, &n.OwnerID, &n.Device, &n.Metric, &n.Severity, &n.Message, &n.Read, &n.ReadAt, &n.CreatedAt); err != nil {
			return alert.Page{}, fmt.Errorf("pgstore: scan notification: %w", err)
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return alert.Page{}, fmt.Errorf("pgstore: list notifications: %w", err)
	}

	hasMore := len(items) > q.Limit
	if hasMore {
		items = items[:q.Limit]
	}

	page := alert.Page{Items: items, HasMore: hasMore}
	if len(items) > 0 {
		page.NextCursor = alert.EncodeCursor(q.Scope, q.Filter, items[len(items)-1].ID)
	}
	return page, nil
}

func (s *Store) MarkRead(ctx context.Context, ownerID string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	const q = `
UPDATE notifications
SET read = TRUE, read_at = now()
WHERE owner_id = $1 AND id = ANY($2) AND NOT read`

	if _, err := s.pool.Exec(ctx, q, ownerID, ids); err != nil {
		return fmt.Errorf("pgstore: mark read: %w", err)
	}
	return nil
}

func (s *Store) MarkAllRead(ctx context.Context, ownerID string) error {
	const q = `
UPDATE notifications
SET read = TRUE, read_at = now()
WHERE owner_id = $1 AND NOT read`

	if _, err := s.pool.Exec(ctx, q, ownerID); err != nil {
		return fmt.Errorf("pgstore: mark all read: %w", err)
	}
	return nil
}

func (s *Store) CountUnread(ctx context.Context, ownerID string) (int, error) {
	const q = `SELECT count(*) FROM notifications WHERE owner_id = $1 AND NOT read`

	var count int
	if err := s.pool.QueryRow(ctx, q, ownerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("pgstore: count unread: %w", err)
	}
	return count, nil
}

// Get fetches one notification by ID, primarily for diagnostics.
func (s *Store) Get(ctx context.Context, id string) (*alert.Notification, error) {
	const q = `
SELECT id, owner_id, device, metric, severity, message, read, read_at, created_at
FROM notifications
WHERE id = $1`

	var n alert.Notification
	err := s.pool.QueryRow(ctx, q, id).Scan(&n.ID, &n.OwnerID, &n.Device, &n.Metric, &n.Severity, &n.Message, &n.Read, &n.ReadAt, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, alert.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("pgstore: get notification: %w", err)
	}
	return &n, nil
}
