package poller

import (
	"log/slog"
	"time"
)

const (
	// DefaultInterval is the poll cadence when none is configured.
	DefaultInterval = 200 * time.Millisecond
	// DefaultReconnectDelay is the fixed wait between reconnect attempts.
	DefaultReconnectDelay = 5 * time.Second
)

// Option configures a Poller.
type Option func(*Poller)

// WithInterval sets the poll cadence.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithReconnectDelay sets the fixed wait between reconnect attempts.
func WithReconnectDelay(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.reconnectDelay = d
		}
	}
}

// WithReadTimeout caps a single read call. Defaults to the poll interval so
// a hung read cannot make cycles overlap.
func WithReadTimeout(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.readTimeout = d
		}
	}
}

// WithLogger sets the poller's logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}

// Config carries poller settings loadable from the environment via
// pkg/config.
type Config struct {
	Interval       time.Duration `env:"POLLER_INTERVAL" envDefault:"200ms"`       // Poll cadence.
	ReconnectDelay time.Duration `env:"POLLER_RECONNECT_DELAY" envDefault:"5s"`   // Fixed wait between reconnects.
	ReadTimeout    time.Duration `env:"POLLER_READ_TIMEOUT" envDefault:"200ms"`   // Cap on one read call.
	Tags           []string      `env:"POLLER_TAGS" envSeparator:","`             // Tags to read each cycle.
}

// Options expands the config into constructor options.
func (c Config) Options() []Option {
	return []Option{
		WithInterval(c.Interval),
		WithReconnectDelay(c.ReconnectDelay),
		WithReadTimeout(c.ReadTimeout),
	}
}
