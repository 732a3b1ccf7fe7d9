package alert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/plantops/alertfeed/pkg/device"
	"github.com/plantops/alertfeed/pkg/logger"
)

// Rule declares the permitted range for one tag. A sample above Warn raises
// a warning, above Crit a critical alert. Rules carry everything Evaluate
// needs so derivation stays a pure function of rule and sample.
type Rule struct {
	TagID   string  `json:"tag_id"`
	Device  string  `json:"device"`
	Metric  string  `json:"metric"`
	OwnerID string  `json:"owner_id,omitempty"`
	Warn    float64 `json:"warn"`
	Crit    float64 `json:"crit"`
}

// Evaluate grades a sample against the rule. It returns false when the
// sample is in range or carries a bad quality status; bad-status readings
// never become alerts.
func (r Rule) Evaluate(s device.Sample) (Severity, bool) {
	if !s.StatusGood {
		return "", false
	}
	switch {
	case s.Value > r.Crit:
		return SeverityCritical, true
	case s.Value > r.Warn:
		return SeverityWarning, true
	default:
		return "", false
	}
}

// limit returns the threshold the sample actually crossed.
func (r Rule) limit(sev Severity) float64 {
	if sev == SeverityCritical {
		return r.Crit
	}
	return r.Warn
}

// Broadcaster pushes a freshly stored notification to live subscribers.
// push.Channel satisfies it; tests substitute doubles.
type Broadcaster interface {
	Broadcast(ctx context.Context, n Notification) error
}

// Publisher turns out-of-range samples into stored, broadcast notifications.
type Publisher struct {
	store       Store
	broadcaster Broadcaster
	rules       map[string]Rule
	logger      *slog.Logger
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithPublisherLogger sets the logger for the Publisher.
func WithPublisherLogger(l *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPublisher creates a publisher evaluating samples against the given
// rules. A nil broadcaster disables live delivery; notifications are then
// reachable only through pagination.
func NewPublisher(store Store, b Broadcaster, rules []Rule, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		store:       store,
		broadcaster: b,
		rules:       make(map[string]Rule, len(rules)),
		logger:      slog.Default(),
	}
	for _, r := range rules {
		p.rules[r.TagID] = r
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish evaluates one sample and, when it is out of range, persists the
// resulting notification and broadcasts it. The store write happens first:
// if it fails the broadcast is suppressed, so a live notification can never
// be missing from history. A broadcast failure is logged and non-fatal.
//
// Publish returns (nil, nil) for samples that raise no alert.
func (p *Publisher) Publish(ctx context.Context, s device.Sample) (*Notification, error) {
	rule, ok := p.rules[s.TagID]
	if !ok {
		return nil, nil
	}
	sev, ok := rule.Evaluate(s)
	if !ok {
		return nil, nil
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("alert: generate notification id: %w", err)
	}

	detail, err := json.Marshal(Detail{
		TagID: s.TagID,
		Value: s.Value,
		Limit: rule.limit(sev),
	})
	if err != nil {
		return nil, fmt.Errorf("alert: encode detail: %w", err)
	}

	n := Notification{
		ID:        id.String(),
		OwnerID:   rule.OwnerID,
		Device:    rule.Device,
		Metric:    rule.Metric,
		Severity:  sev,
		Message:   string(detail),
		CreatedAt: time.Now(),
	}

	if err := p.store.Create(ctx, n); err != nil {
		return nil, errors.Join(ErrStoreFailed, err)
	}

	if p.broadcaster != nil {
		if err := p.broadcaster.Broadcast(ctx, n); err != nil {
			p.logger.LogAttrs(ctx, slog.LevelWarn, "notification stored but live delivery failed",
				logger.NotificationID(n.ID),
				logger.TagID(s.TagID),
				logger.Error(err),
			)
		}
	}

	return &n, nil
}

// HandleBatch publishes every alerting sample of one poll cycle. Store
// failures skip the sample and are joined into the returned error so the
// poller can log the cycle without losing the remaining samples.
func (p *Publisher) HandleBatch(ctx context.Context, samples []device.Sample) error {
	var errs []error
	for _, s := range samples {
		if _, err := p.Publish(ctx, s); err != nil {
			errs = append(errs, fmt.Errorf("tag %s: %w", s.TagID, err))
		}
	}
	return errors.Join(errs...)
}
