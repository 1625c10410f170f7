// Package compliance provides a fail-closed audit publisher for record mutations.
//
// Emit writes synchronously to the audit store. When the store is the postgres
// outbox and the context carries a SQL transaction, the event commits or rolls
// back together with the record change. If the write fails the caller MUST
// fail its operation.
package compliance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"realmgov/pkg/domain"
	audit "realmgov/pkg/platform/audit"
)

var (
	ErrMissingSubject = errors.New("compliance event requires a record address subject")
	ErrUnknownAction  = errors.New("compliance event has an unknown action")
	ErrMissingAmount  = errors.New("token movement event requires a non-zero amount")
)

// Publisher emits compliance events with fail-closed semantics.
type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		tracer: otel.Tracer("realmgov/audit/compliance"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Validate checks an event before it is persisted.
func Validate(event audit.Event) error {
	if _, err := domain.ParsePubkey(event.Subject); err != nil {
		return fmt.Errorf("%w: %v", ErrMissingSubject, err)
	}
	action := audit.AuditEvent(event.Action)
	if !action.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownAction, event.Action)
	}
	if action.MovesTokens() && event.Amount == 0 {
		return ErrMissingAmount
	}
	return nil
}

// Emit synchronously writes an audit event and returns an error if it could
// not be validated or persisted.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "compliance.emit", trace.WithAttributes(
		attribute.String("audit.action", event.Action),
		attribute.String("audit.subject", event.Subject),
	))
	defer span.End()

	if err := Validate(event); err != nil {
		span.SetStatus(codes.Error, "invalid event")
		return err
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Category = audit.AuditEvent(event.Action).Category()

	if err := p.store.Append(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		if p.metrics != nil {
			p.metrics.IncPersistFailures(event.Category)
		}
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "CRITICAL: compliance audit failed",
				"action", event.Action,
				"subject", event.Subject,
				"request_id", event.RequestID,
				"error", err,
			)
		}
		return fmt.Errorf("compliance audit persistence failed: %w", err)
	}

	if p.metrics != nil {
		p.metrics.ObservePersistDuration(time.Since(start).Seconds())
		p.metrics.IncEventsEmitted(event.Category)
	}
	return nil
}

// Close is a no-op; Emit holds no buffered state.
func (p *Publisher) Close() error {
	return nil
}
