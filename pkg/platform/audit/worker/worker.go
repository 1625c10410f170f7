// Package worker relays persisted audit events from the outbox to the broker.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	audit "realmgov/pkg/platform/audit"
)

// Outbox is the read side of the transactional outbox.
type Outbox interface {
	FetchUnpublished(ctx context.Context, limit int) ([]audit.OutboxEntry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// Producer publishes one message keyed by the aggregate id.
type Producer interface {
	Publish(ctx context.Context, key, value []byte, headers map[string]string) error
}

// Worker polls the outbox and publishes entries in creation order. Delivery
// is at-least-once: an entry is marked only after the broker acknowledged it.
type Worker struct {
	outbox       Outbox
	producer     Producer
	logger       *slog.Logger
	pollInterval time.Duration
	batchSize    int
	maxElapsed   time.Duration
}

// Option configures the Worker.
type Option func(*Worker)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) { w.logger = logger }
}

func WithPollInterval(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

// WithMaxRetryElapsed bounds how long a single publish is retried.
func WithMaxRetryElapsed(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.maxElapsed = d
		}
	}
}

func NewWorker(outbox Outbox, producer Producer, opts ...Option) *Worker {
	w := &Worker{
		outbox:       outbox,
		producer:     producer,
		logger:       slog.Default(),
		pollInterval: time.Second,
		batchSize:    100,
		maxElapsed:   30 * time.Second,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run polls until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		if _, err := w.RelayOnce(ctx); err != nil && ctx.Err() == nil {
			w.logger.WarnContext(ctx, "outbox relay failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RelayOnce publishes one batch and returns the number of entries relayed.
// It stops at the first entry that cannot be published so ordering per
// aggregate is preserved.
func (w *Worker) RelayOnce(ctx context.Context) (int, error) {
	entries, err := w.outbox.FetchUnpublished(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch outbox: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	published := make([]uuid.UUID, 0, len(entries))
	var publishErr error
	for _, entry := range entries {
		if err := w.publish(ctx, entry); err != nil {
			publishErr = fmt.Errorf("publish outbox entry %s: %w", entry.ID, err)
			break
		}
		published = append(published, entry.ID)
	}

	if err := w.outbox.MarkPublished(ctx, published, time.Now()); err != nil {
		return 0, fmt.Errorf("mark published: %w", err)
	}
	if len(published) > 0 {
		w.logger.DebugContext(ctx, "outbox entries relayed", "count", len(published))
	}
	return len(published), publishErr
}

func (w *Worker) publish(ctx context.Context, entry audit.OutboxEntry) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = w.maxElapsed

	headers := map[string]string{
		"event_type":     entry.EventType,
		"aggregate_type": entry.AggregateType,
	}
	operation := func() error {
		return w.producer.Publish(ctx, []byte(entry.AggregateID), entry.Payload, headers)
	}
	notify := func(err error, next time.Duration) {
		w.logger.WarnContext(ctx, "outbox publish failed, retrying",
			"entry_id", entry.ID,
			"error", err,
			"next_retry_in", next,
		)
	}
	return backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify)
}
