// Package service implements the governance operations over token owner
// records: deposit, withdraw and delegate assignment.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"realmgov/internal/governance/metrics"
	"realmgov/internal/governance/models"
	"realmgov/internal/governance/ports"
	"realmgov/pkg/domain"
	dErrors "realmgov/pkg/domain-errors"
	"realmgov/pkg/platform/sentinel"
)

const tracerName = "realmgov/internal/governance/service"

const (
	opDeposit     = "deposit"
	opWithdraw    = "withdraw"
	opSetDelegate = "set_delegate"
)

const defaultOpTimeout = 10 * time.Second

// Service orchestrates token owner record mutations against the realm
// registry, the vote-hold oracle and the custody ledger.
type Service struct {
	programID domain.Pubkey
	records   ports.RecordStore
	tx        ports.RecordTx
	registry  ports.RealmRegistry
	oracle    ports.VoteHoldOracle
	custody   ports.Custody

	logger         *slog.Logger
	auditPublisher ports.AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
	opTimeout      time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithAuditPublisher sets the publisher for compliance events. Record
// mutations fail when it cannot persist their event.
func WithAuditPublisher(publisher ports.AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithOpTimeout bounds operations whose context carries no deadline.
func WithOpTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.opTimeout = d
		}
	}
}

// Deps groups the collaborators every Service needs.
type Deps struct {
	Records  ports.RecordStore
	Tx       ports.RecordTx
	Registry ports.RealmRegistry
	Oracle   ports.VoteHoldOracle
	Custody  ports.Custody
}

// New constructs a Service for the given program id.
func New(programID domain.Pubkey, deps Deps, opts ...Option) (*Service, error) {
	switch {
	case programID.IsNil():
		return nil, errors.New("program id is required")
	case deps.Records == nil:
		return nil, errors.New("record store is required")
	case deps.Tx == nil:
		return nil, errors.New("record transaction manager is required")
	case deps.Registry == nil:
		return nil, errors.New("realm registry is required")
	case deps.Oracle == nil:
		return nil, errors.New("vote-hold oracle is required")
	case deps.Custody == nil:
		return nil, errors.New("custody is required")
	}
	s := &Service{
		programID: programID,
		records:   deps.Records,
		tx:        deps.Tx,
		registry:  deps.Registry,
		oracle:    deps.Oracle,
		custody:   deps.Custody,
		tracer:    otel.Tracer(tracerName),
		opTimeout: defaultOpTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ProgramID returns the id every address is derived under.
func (s *Service) ProgramID() domain.Pubkey {
	return s.programID
}

// RecordAddress derives the deterministic address of the record for key.
func (s *Service) RecordAddress(key domain.RecordKey) (domain.Pubkey, error) {
	if err := key.Validate(); err != nil {
		return domain.Pubkey{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, err.Error())
	}
	addr, err := domain.TokenOwnerRecordAddress(s.programID, key)
	if err != nil {
		return domain.Pubkey{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to derive record address")
	}
	return addr, nil
}

// HoldingAddress derives the realm custody account for mint.
func (s *Service) HoldingAddress(realm domain.RealmID, mint domain.MintID) (domain.Identity, error) {
	addr, err := domain.GoverningTokenHoldingAddress(s.programID, realm, mint)
	if err != nil {
		return domain.Identity{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to derive holding address")
	}
	return addr, nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

func (s *Service) startSpan(ctx context.Context, op string, key domain.RecordKey) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "governance."+op, trace.WithAttributes(
		attribute.String("realm", key.Realm.String()),
		attribute.String("mint", key.Mint.String()),
		attribute.String("owner", key.Owner.String()),
	))
}

func (s *Service) finish(span trace.Span, op string, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.ObserveOperation(op, start)
	}
	if err != nil {
		code := string(dErrors.CodeOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, code)
		if s.metrics != nil {
			s.metrics.IncrementFailure(op, code)
		}
		return
	}
	span.SetStatus(codes.Ok, "")
	if s.metrics != nil {
		s.metrics.IncrementSuccess(op)
	}
}

func (s *Service) mintConfig(ctx context.Context, realm domain.RealmID, mint domain.MintID) (*models.MintConfig, error) {
	cfg, err := s.registry.MintConfig(ctx, realm, mint)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeInvalidRealmConfig, "governing token mint is not configured for realm")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve realm configuration")
	}
	return cfg, nil
}

// findRecord translates store lookups into domain errors.
func findRecord(ctx context.Context, store ports.RecordStore, address domain.Pubkey) (*models.TokenOwnerRecord, error) {
	rec, err := store.FindByAddress(ctx, address)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeRecordNotFound, "token owner record not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load token owner record")
	}
	return rec, nil
}

func saveRecord(ctx context.Context, store ports.RecordStore, rec *models.TokenOwnerRecord) error {
	if err := store.Save(ctx, rec); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.Wrap(err, dErrors.CodeConflict, "token owner record was modified concurrently")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save token owner record")
	}
	return nil
}

// txError keeps domain errors from fn and classifies the rest.
func txError(err error) error {
	if err == nil {
		return nil
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, sentinel.ErrConflict) {
		return dErrors.Wrap(err, dErrors.CodeConflict, "token owner record was modified concurrently")
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "operation timed out")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to commit token owner record")
}
