package push

import (
	"context"
	"sync"
	"time"

	"github.com/plantops/alertfeed/pkg/alert"
)

const (
	defaultBufferSize  = 16
	defaultSendTimeout = time.Second
)

// memorySubscriber is one connected consumer of a MemoryChannel.
type memorySubscriber struct {
	ch        chan alert.Notification
	done      chan struct{}
	closeOnce sync.Once
}

func newMemorySubscriber(bufferSize int) *memorySubscriber {
	return &memorySubscriber{
		ch:   make(chan alert.Notification, bufferSize),
		done: make(chan struct{}),
	}
}

func (s *memorySubscriber) Receive(ctx context.Context) <-chan alert.Notification {
	return s.ch
}

func (s *memorySubscriber) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		// Drain so an in-flight send commits before the channel closes
		// instead of panicking into a blocked broadcaster.
		go func() {
			for range s.ch {
			}
		}()
		close(s.ch)
	})
	return nil
}

// send delivers one notification, waiting at most timeout when the buffer
// is full. It reports false when the subscriber is closed or stalled past
// the timeout, in which case the caller disconnects it.
func (s *memorySubscriber) send(n alert.Notification, timeout time.Duration) (delivered bool) {
	select {
	case <-s.done:
		return false
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	// The send races a concurrent Close; the drain goroutine makes the
	// window tiny but not zero, so a panicked send is absorbed and counts
	// as an undelivered message to an already-dead subscriber.
	defer func() { _ = recover() }()

	select {
	case s.ch <- n:
		return true
	case <-timer.C:
		return false
	case <-s.done:
		return false
	}
}

// MemoryChannel is the in-process Channel implementation. All methods are
// safe for concurrent use.
type MemoryChannel struct {
	subscribers map[*memorySubscriber]struct{}
	bufferSize  int
	sendTimeout time.Duration
	closed      bool
	done        chan struct{}
	mu          sync.RWMutex
	cleanupWg   sync.WaitGroup
}

// MemoryChannelOption configures a MemoryChannel.
type MemoryChannelOption func(*MemoryChannel)

// WithBufferSize sets each subscriber's channel buffer. A minimum of 1 is
// enforced so sends stay non-blocking on a healthy subscriber.
func WithBufferSize(n int) MemoryChannelOption {
	return func(c *MemoryChannel) {
		if n > 0 {
			c.bufferSize = n
		}
	}
}

// WithSendTimeout bounds how long Broadcast waits on one stalled
// subscriber before disconnecting it.
func WithSendTimeout(d time.Duration) MemoryChannelOption {
	return func(c *MemoryChannel) {
		if d > 0 {
			c.sendTimeout = d
		}
	}
}

// NewMemoryChannel creates an in-process broadcast bus.
func NewMemoryChannel(opts ...MemoryChannelOption) *MemoryChannel {
	c := &MemoryChannel{
		subscribers: make(map[*memorySubscriber]struct{}),
		bufferSize:  defaultBufferSize,
		sendTimeout: defaultSendTimeout,
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe registers a subscriber that is cleaned up automatically when
// ctx is cancelled. A closed channel hands back an already-closed
// subscriber so callers observe immediate channel closure.
func (c *MemoryChannel) Subscribe(ctx context.Context) Subscriber {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub := newMemorySubscriber(c.bufferSize)
	if c.closed {
		_ = sub.Close()
		return sub
	}
	c.subscribers[sub] = struct{}{}

	if ctx.Done() != nil {
		c.cleanupWg.Add(1)
		go func() {
			defer c.cleanupWg.Done()
			select {
			case <-ctx.Done():
				c.unsubscribe(sub)
			case <-c.done:
			}
		}()
	}

	return sub
}

// Broadcast delivers n to every subscriber. A subscriber that stays full
// past the send timeout is disconnected rather than allowed to stall
// delivery to the rest.
func (c *MemoryChannel) Broadcast(ctx context.Context, n alert.Notification) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrChannelClosed
	}
	subs := make([]*memorySubscriber, 0, len(c.subscribers))
	for sub := range c.subscribers {
		subs = append(subs, sub)
	}
	c.mu.RUnlock()

	for _, sub := range subs {
		if !sub.send(n, c.sendTimeout) {
			c.unsubscribe(sub)
		}
	}
	return nil
}

// Close shuts down the channel and every subscriber. Idempotent.
func (c *MemoryChannel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	for sub := range c.subscribers {
		_ = sub.Close()
	}
	clear(c.subscribers)
	c.mu.Unlock()

	c.cleanupWg.Wait()
	return nil
}

func (c *MemoryChannel) unsubscribe(sub *memorySubscriber) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subscribers, sub)
	_ = sub.Close()
}
