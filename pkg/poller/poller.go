package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/plantops/alertfeed/pkg/device"
	"github.com/plantops/alertfeed/pkg/logger"
)

// State is the poller's position in its connect/poll lifecycle.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StatePolling
	StateBackoff
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StatePolling:
		return "polling"
	case StateBackoff:
		return "backoff"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Publisher consumes one poll cycle's sample batch. alert.Publisher
// satisfies it.
type Publisher interface {
	HandleBatch(ctx context.Context, samples []device.Sample) error
}

// Poller owns the single read loop against one device reader. Cycles never
// overlap: cycle n+1 does not start before cycle n's read returns or times
// out.
type Poller struct {
	reader    device.Reader
	publisher Publisher
	tags      []string

	interval       time.Duration
	reconnectDelay time.Duration
	readTimeout    time.Duration
	logger         *slog.Logger

	state atomic.Int32
}

// New creates a poller reading the given tags. See the Option functions for
// tuning; defaults are a 200ms interval, a 5s reconnect delay and a read
// timeout equal to the interval.
func New(reader device.Reader, publisher Publisher, tags []string, opts ...Option) *Poller {
	p := &Poller{
		reader:         reader,
		publisher:      publisher,
		tags:           tags,
		interval:       DefaultInterval,
		reconnectDelay: DefaultReconnectDelay,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.readTimeout <= 0 {
		p.readTimeout = p.interval
	}
	return p
}

// State returns the current lifecycle state.
func (p *Poller) State() State {
	return State(p.state.Load())
}

func (p *Poller) setState(s State) {
	p.state.Store(int32(s))
}

// Run polls until ctx is cancelled. Connection faults are logged and
// retried indefinitely with a fixed delay; Run returns nil on cancellation
// and never for a device fault.
func (p *Poller) Run(ctx context.Context) error {
	defer p.setState(StateStopped)

	for {
		p.setState(StateConnecting)
		if err := p.reader.Connect(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.setState(StateDisconnected)
			p.logger.LogAttrs(ctx, slog.LevelWarn, "device connect failed, retrying",
				logger.Component("poller"),
				logger.Duration(p.reconnectDelay),
				logger.Error(err),
			)
			if !sleep(ctx, p.reconnectDelay) {
				return nil
			}
			continue
		}

		err := p.session(ctx)
		if ctx.Err() != nil {
			return nil
		}

		p.setState(StateDisconnected)
		p.logger.LogAttrs(ctx, slog.LevelWarn, "device session lost, reconnecting",
			logger.Component("poller"),
			logger.Duration(p.reconnectDelay),
			logger.Error(err),
		)
		if !sleep(ctx, p.reconnectDelay) {
			return nil
		}
	}
}

// session runs the poll loop over one established session. The deferred
// Close releases the session on every exit path, including panics in the
// publisher.
func (p *Poller) session(ctx context.Context) error {
	defer func() {
		if err := p.reader.Close(); err != nil {
			p.logger.LogAttrs(ctx, slog.LevelWarn, "device session close failed",
				logger.Component("poller"),
				logger.Error(err),
			)
		}
	}()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.cycle(ctx); err != nil {
				if errors.Is(err, device.ErrNotConnected) {
					return err
				}
				// Transient read fault: skip this cycle, keep the session.
				p.setState(StateBackoff)
				p.logger.LogAttrs(ctx, slog.LevelWarn, "poll cycle failed, skipping",
					logger.Component("poller"),
					logger.Error(err),
				)
			}
		}
	}
}

// cycle performs one read-and-publish pass.
func (p *Poller) cycle(ctx context.Context) error {
	p.setState(StatePolling)

	readCtx, cancel := context.WithTimeout(ctx, p.readTimeout)
	samples, err := p.reader.Read(readCtx, p.tags)
	cancel()
	if err != nil {
		return err
	}

	start := time.Now()
	if err := p.publisher.HandleBatch(ctx, samples); err != nil {
		// Publish faults already suppressed delivery of the failed samples;
		// the cycle itself goes on.
		p.logger.LogAttrs(ctx, slog.LevelWarn, "publish skipped samples",
			logger.Component("poller"),
			logger.Error(err),
		)
	}
	if elapsed := time.Since(start); elapsed > p.interval {
		p.logger.LogAttrs(ctx, slog.LevelWarn, "publisher slower than poll interval, poller lagging",
			logger.Component("poller"),
			logger.Duration(elapsed),
		)
	}
	return nil
}

// sleep waits d or until ctx is cancelled, reporting false on cancellation.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
