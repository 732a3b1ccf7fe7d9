package push

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/plantops/alertfeed/pkg/alert"
	"github.com/plantops/alertfeed/pkg/logger"
)

// DefaultRedisChannelName is the pub/sub channel used when none is given.
const DefaultRedisChannelName = "alertfeed:notifications"

// RedisChannel is a Channel implementation over Redis pub/sub, letting
// publishers and feed consumers live in different processes. Redis pub/sub
// keeps exactly the contract this package promises: fan-out to current
// subscribers, FIFO per connection, no backlog for late joiners.
type RedisChannel struct {
	client *redis.Client
	name   string
	logger *slog.Logger

	subs   map[*redisSubscriber]struct{}
	closed bool
	mu     sync.Mutex
}

// RedisChannelOption configures a RedisChannel.
type RedisChannelOption func(*RedisChannel)

// WithRedisChannelName overrides the pub/sub channel name.
func WithRedisChannelName(name string) RedisChannelOption {
	return func(c *RedisChannel) {
		if name != "" {
			c.name = name
		}
	}
}

// WithRedisChannelLogger sets the logger used for undecodable envelopes.
func WithRedisChannelLogger(l *slog.Logger) RedisChannelOption {
	return func(c *RedisChannel) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewRedisChannel creates a Redis-backed broadcast bus on the given client.
func NewRedisChannel(client *redis.Client, opts ...RedisChannelOption) *RedisChannel {
	c := &RedisChannel{
		client: client,
		name:   DefaultRedisChannelName,
		logger: slog.Default(),
		subs:   make(map[*redisSubscriber]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Broadcast publishes the notification as a JSON envelope. Subscribers in
// every process receive it; there is no replay for subscribers that join
// later.
func (c *RedisChannel) Broadcast(ctx context.Context, n alert.Notification) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrChannelClosed
	}
	c.mu.Unlock()

	payload, err := json.Marshal(n)
	if err != nil {
		return errors.Join(ErrPublishFailed, err)
	}
	if err := c.client.Publish(ctx, c.name, payload).Err(); err != nil {
		return errors.Join(ErrPublishFailed, err)
	}
	return nil
}

// Subscribe opens a dedicated pub/sub connection. go-redis reconnects the
// connection transparently on drop; messages published during the gap are
// lost, which is why feed consumers reconcile through pagination.
func (c *RedisChannel) Subscribe(ctx context.Context) Subscriber {
	sub := &redisSubscriber{
		out:    make(chan alert.Notification, defaultBufferSize),
		logger: c.logger,
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		sub.closeOnce.Do(func() { close(sub.out) })
		return sub
	}
	sub.ps = c.client.Subscribe(ctx, c.name)
	c.subs[sub] = struct{}{}
	c.mu.Unlock()

	go sub.pump(ctx, func() { c.unsubscribe(sub) })
	return sub
}

// Close closes every subscriber. The underlying Redis client stays open; it
// belongs to the caller.
func (c *RedisChannel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	subs := make([]*redisSubscriber, 0, len(c.subs))
	for sub := range c.subs {
		subs = append(subs, sub)
	}
	clear(c.subs)
	c.mu.Unlock()

	var errs []error
	for _, sub := range subs {
		if err := sub.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *RedisChannel) unsubscribe(sub *redisSubscriber) {
	c.mu.Lock()
	delete(c.subs, sub)
	c.mu.Unlock()
	_ = sub.Close()
}

type redisSubscriber struct {
	ps        *redis.PubSub
	out       chan alert.Notification
	logger    *slog.Logger
	closeOnce sync.Once
}

func (s *redisSubscriber) Receive(ctx context.Context) <-chan alert.Notification {
	return s.out
}

func (s *redisSubscriber) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.ps != nil {
			err = s.ps.Close()
		}
	})
	return err
}

// pump decodes envelopes off the pub/sub connection until it or the context
// ends, then detaches from the channel and closes the outbound stream.
func (s *redisSubscriber) pump(ctx context.Context, detach func()) {
	defer func() {
		detach()
		close(s.out)
	}()

	msgs := s.ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var n alert.Notification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				s.logger.LogAttrs(ctx, slog.LevelWarn, "dropping undecodable push envelope",
					logger.Component("push.redis"),
					logger.Error(err),
				)
				continue
			}
			select {
			case s.out <- n:
			case <-ctx.Done():
				return
			}
		}
	}
}
