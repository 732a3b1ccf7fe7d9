package alert

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedStore fills a store with n notifications for ownerID, IDs ascending so
// notification 1 is the oldest. Every third one belongs to someone else when
// mixedOwners is set.
func seedStore(t *testing.T, s Store, n int, ownerID string, mixedOwners bool) {
	t.Helper()
	ctx := context.Background()
	for i := 1; i <= n; i++ {
		owner := ownerID
		if mixedOwners && i%3 == 0 {
			owner = "someone-else"
		}
		err := s.Create(ctx, Notification{
			ID:       fmt.Sprintf("0190a1b2-0000-7000-8000-%012d", i),
			OwnerID:  owner,
			Device:   "boiler-7",
			Metric:   "temperature",
			Severity: SeverityWarning,
			Message:  `{"tag_id":"boiler.temp","value":91,"limit":90}`,
		})
		require.NoError(t, err)
	}
}

func TestMemoryStoreCreate(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	err := s.Create(context.Background(), Notification{})
	assert.ErrorIs(t, err, ErrEmptyID)
}

func TestMemoryStorePagination(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryStore()
	seedStore(t, s, 14, "op-1", false)

	q := ListQuery{Scope: ScopeMine, OwnerID: "op-1", Filter: FilterUnread, Limit: 6}

	// Page 1: newest six.
	page, err := s.List(ctx, q)
	require.NoError(t, err)
	require.Len(t, page.Items, 6)
	assert.True(t, page.HasMore)
	assert.Equal(t, "0190a1b2-0000-7000-8000-000000000014", page.Items[0].ID)
	assert.Equal(t, "0190a1b2-0000-7000-8000-000000000009", page.Items[5].ID)

	// Page 2 resumes strictly after the page-1 cursor.
	q.Cursor = page.NextCursor
	page, err = s.List(ctx, q)
	require.NoError(t, err)
	require.Len(t, page.Items, 6)
	assert.True(t, page.HasMore)
	assert.Equal(t, "0190a1b2-0000-7000-8000-000000000008", page.Items[0].ID)

	// Page 3: remaining two, end of feed.
	q.Cursor = page.NextCursor
	page, err = s.List(ctx, q)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.False(t, page.HasMore)
	assert.Equal(t, "0190a1b2-0000-7000-8000-000000000001", page.Items[1].ID)

	// Exhausted cursor yields an empty page, not an error.
	q.Cursor = page.NextCursor
	page, err = s.List(ctx, q)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore)
}

func TestMemoryStorePaginationNoDuplicatesOrGaps(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryStore()
	seedStore(t, s, 25, "op-1", false)

	seen := make(map[string]bool)
	q := ListQuery{Scope: ScopeAll, Filter: FilterAny, Limit: 4}
	for {
		page, err := s.List(ctx, q)
		require.NoError(t, err)
		for _, n := range page.Items {
			require.False(t, seen[n.ID], "duplicate %s across pages", n.ID)
			seen[n.ID] = true
		}
		if !page.HasMore {
			break
		}
		q.Cursor = page.NextCursor
	}
	assert.Len(t, seen, 25)
}

func TestMemoryStoreCursorScopeMismatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryStore()
	seedStore(t, s, 3, "op-1", false)

	page, err := s.List(ctx, ListQuery{Scope: ScopeAll, Filter: FilterAny, Limit: 2})
	require.NoError(t, err)

	_, err = s.List(ctx, ListQuery{
		Scope:   ScopeMine,
		OwnerID: "op-1",
		Filter:  FilterUnread,
		Cursor:  page.NextCursor,
		Limit:   2,
	})
	assert.ErrorIs(t, err, ErrCursorScope)
}

func TestMemoryStoreScopeAndFilter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryStore()
	seedStore(t, s, 9, "op-1", true) // 3, 6, 9 belong to someone-else

	t.Run("mine excludes other owners", func(t *testing.T) {
		page, err := s.List(ctx, ListQuery{Scope: ScopeMine, OwnerID: "op-1", Filter: FilterAny, Limit: 20})
		require.NoError(t, err)
		assert.Len(t, page.Items, 6)
		for _, n := range page.Items {
			assert.Equal(t, "op-1", n.OwnerID)
		}
	})

	t.Run("all sees everything", func(t *testing.T) {
		page, err := s.List(ctx, ListQuery{Scope: ScopeAll, Filter: FilterAny, Limit: 20})
		require.NoError(t, err)
		assert.Len(t, page.Items, 9)
	})

	t.Run("read filter tracks mark-read", func(t *testing.T) {
		require.NoError(t, s.MarkRead(ctx,
			"op-1",
			"0190a1b2-0000-7000-8000-000000000001",
			"0190a1b2-0000-7000-8000-000000000002",
		))

		read, err := s.List(ctx, ListQuery{Scope: ScopeMine, OwnerID: "op-1", Filter: FilterRead, Limit: 20})
		require.NoError(t, err)
		assert.Len(t, read.Items, 2)

		unread, err := s.List(ctx, ListQuery{Scope: ScopeMine, OwnerID: "op-1", Filter: FilterUnread, Limit: 20})
		require.NoError(t, err)
		assert.Len(t, unread.Items, 4)
	})
}

func TestMemoryStoreMarkRead(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryStore()
	seedStore(t, s, 4, "op-1", false)

	count, err := s.CountUnread(ctx, "op-1")
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	// Another operator cannot mark someone else's notifications.
	require.NoError(t, s.MarkRead(ctx, "intruder", "0190a1b2-0000-7000-8000-000000000001"))
	count, err = s.CountUnread(ctx, "op-1")
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	require.NoError(t, s.MarkRead(ctx, "op-1", "0190a1b2-0000-7000-8000-000000000001"))
	count, err = s.CountUnread(ctx, "op-1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// Marking twice is a no-op.
	require.NoError(t, s.MarkRead(ctx, "op-1", "0190a1b2-0000-7000-8000-000000000001"))
	count, err = s.CountUnread(ctx, "op-1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestMemoryStoreMarkAllRead(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryStore()
	seedStore(t, s, 6, "op-1", true)

	require.NoError(t, s.MarkAllRead(ctx, "op-1"))

	count, err := s.CountUnread(ctx, "op-1")
	require.NoError(t, err)
	assert.Zero(t, count)

	// Other owners are untouched.
	count, err = s.CountUnread(ctx, "someone-else")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
