package push

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantops/alertfeed/pkg/alert"
)

func waitNotification(t *testing.T, sub Subscriber) alert.Notification {
	t.Helper()
	select {
	case n, ok := <-sub.Receive(context.Background()):
		require.True(t, ok, "subscriber channel closed unexpectedly")
		return n
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification")
		return alert.Notification{}
	}
}

func TestMemoryChannelFanOut(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewMemoryChannel()
	defer c.Close()

	sub1 := c.Subscribe(ctx)
	sub2 := c.Subscribe(ctx)

	n := alert.Notification{ID: "n1", OwnerID: "op-1"}
	require.NoError(t, c.Broadcast(ctx, n))

	assert.Equal(t, "n1", waitNotification(t, sub1).ID)
	assert.Equal(t, "n1", waitNotification(t, sub2).ID)
}

func TestMemoryChannelFIFOPerSubscriber(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewMemoryChannel(WithBufferSize(10))
	defer c.Close()

	sub := c.Subscribe(ctx)
	for i := 0; i < 5; i++ {
		require.NoError(t, c.Broadcast(ctx, alert.Notification{ID: fmt.Sprintf("n%d", i)}))
	}

	for i := 0; i < 5; i++ {
		assert.Equal(t, fmt.Sprintf("n%d", i), waitNotification(t, sub).ID)
	}
}

func TestMemoryChannelNoReplayForLateSubscribers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewMemoryChannel()
	defer c.Close()

	require.NoError(t, c.Broadcast(ctx, alert.Notification{ID: "before"}))

	sub := c.Subscribe(ctx)
	require.NoError(t, c.Broadcast(ctx, alert.Notification{ID: "after"}))

	assert.Equal(t, "after", waitNotification(t, sub).ID)
}

func TestMemoryChannelDisconnectsStalledSubscriber(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewMemoryChannel(WithBufferSize(1), WithSendTimeout(20*time.Millisecond))
	defer c.Close()

	stalled := c.Subscribe(ctx) // never reads
	healthy := c.Subscribe(ctx)

	// First broadcast fills the stalled subscriber's buffer; the second
	// overruns the send timeout and evicts it.
	require.NoError(t, c.Broadcast(ctx, alert.Notification{ID: "n1"}))
	require.NoError(t, c.Broadcast(ctx, alert.Notification{ID: "n2"}))

	assert.Equal(t, "n1", waitNotification(t, healthy).ID)
	assert.Equal(t, "n2", waitNotification(t, healthy).ID)

	// The stalled subscriber's stream ends instead of blocking delivery.
	deadline := time.After(time.Second)
	for open := true; open; {
		select {
		case _, ok := <-stalled.Receive(ctx):
			open = ok
		case <-deadline:
			t.Fatal("stalled subscriber stream never closed")
		}
	}

	// Healthy delivery continues after the eviction.
	require.NoError(t, c.Broadcast(ctx, alert.Notification{ID: "n3"}))
	assert.Equal(t, "n3", waitNotification(t, healthy).ID)
}

func TestMemoryChannelContextCancelUnsubscribes(t *testing.T) {
	t.Parallel()

	c := NewMemoryChannel()
	defer c.Close()

	subCtx, cancel := context.WithCancel(context.Background())
	sub := c.Subscribe(subCtx)
	cancel()

	select {
	case _, ok := <-sub.Receive(context.Background()):
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscriber stream never closed after context cancel")
	}
}

func TestMemoryChannelClose(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewMemoryChannel()
	sub := c.Subscribe(ctx)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	select {
	case _, ok := <-sub.Receive(ctx):
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscriber stream never closed after channel close")
	}

	assert.ErrorIs(t, c.Broadcast(ctx, alert.Notification{ID: "n1"}), ErrChannelClosed)

	// Subscribing after close hands back an already-closed subscriber.
	late := c.Subscribe(ctx)
	_, ok := <-late.Receive(ctx)
	assert.False(t, ok)
}
