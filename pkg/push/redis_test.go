package push

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantops/alertfeed/pkg/alert"
)

func newTestRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// waitSubscribed blocks until the server has registered a subscriber on the
// channel, so a following publish cannot race the subscription handshake.
func waitSubscribed(t *testing.T, client *redis.Client, name string) {
	t.Helper()
	require.Eventually(t, func() bool {
		counts, err := client.PubSubNumSub(context.Background(), name).Result()
		return err == nil && counts[name] > 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRedisChannelBroadcast(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestRedisClient(t)
	c := NewRedisChannel(client, WithRedisChannelName("test:notifications"))
	defer c.Close()

	sub := c.Subscribe(ctx)
	waitSubscribed(t, client, "test:notifications")

	want := alert.Notification{
		ID:       "0190a1b2-0000-7000-8000-000000000001",
		OwnerID:  "op-1",
		Device:   "boiler-7",
		Metric:   "temperature",
		Severity: alert.SeverityCritical,
		Message:  `{"tag_id":"boiler.temp","value":99,"limit":95}`,
	}
	require.NoError(t, c.Broadcast(ctx, want))

	got := waitNotification(t, sub)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.OwnerID, got.OwnerID)
	assert.Equal(t, want.Severity, got.Severity)
}

func TestRedisChannelDropsUndecodableEnvelope(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestRedisClient(t)
	c := NewRedisChannel(client)
	defer c.Close()

	sub := c.Subscribe(ctx)
	waitSubscribed(t, client, DefaultRedisChannelName)

	// Raw garbage on the wire is logged and skipped, not fatal.
	require.NoError(t, client.Publish(ctx, DefaultRedisChannelName, "{not json").Err())
	require.NoError(t, c.Broadcast(ctx, alert.Notification{ID: "good"}))

	got := waitNotification(t, sub)
	assert.Equal(t, "good", got.ID)
}

func TestRedisChannelSubscriberContextCancel(t *testing.T) {
	t.Parallel()

	client := newTestRedisClient(t)
	c := NewRedisChannel(client)
	defer c.Close()

	subCtx, cancel := context.WithCancel(context.Background())
	sub := c.Subscribe(subCtx)
	waitSubscribed(t, client, DefaultRedisChannelName)
	cancel()

	select {
	case _, ok := <-sub.Receive(context.Background()):
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber stream never closed after context cancel")
	}
}

func TestRedisChannelClose(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestRedisClient(t)
	c := NewRedisChannel(client)

	sub := c.Subscribe(ctx)
	waitSubscribed(t, client, DefaultRedisChannelName)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	select {
	case _, ok := <-sub.Receive(ctx):
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber stream never closed after channel close")
	}

	assert.ErrorIs(t, c.Broadcast(ctx, alert.Notification{ID: "n1"}), ErrChannelClosed)
}
