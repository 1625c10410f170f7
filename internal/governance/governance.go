// Package governance is the entry point to the token owner record core:
// deposits, withdrawals and delegate assignment over per (realm, mint, owner)
// records. The subpackages hold the pieces; this package re-exports what
// callers wiring a server need.
package governance

import (
	"log/slog"

	"realmgov/internal/governance/handler"
	"realmgov/internal/governance/models"
	"realmgov/internal/governance/ports"
	"realmgov/internal/governance/service"
	"realmgov/pkg/domain"
)

type (
	Service            = service.Service
	Deps               = service.Deps
	Option             = service.Option
	Handler            = handler.Handler
	TokenOwnerRecord   = models.TokenOwnerRecord
	DepositRequest     = models.DepositRequest
	WithdrawRequest    = models.WithdrawRequest
	SetDelegateRequest = models.SetDelegateRequest
	RecordStore        = ports.RecordStore
	RecordTx           = ports.RecordTx
	RealmRegistry      = ports.RealmRegistry
	VoteHoldOracle     = ports.VoteHoldOracle
	Custody            = ports.Custody
)

var (
	WithLogger         = service.WithLogger
	WithAuditPublisher = service.WithAuditPublisher
	WithMetrics        = service.WithMetrics
	WithTracer         = service.WithTracer
	WithOpTimeout      = service.WithOpTimeout
)

// NewService builds the governance service for programID.
func NewService(programID domain.Pubkey, deps Deps, opts ...Option) (*Service, error) {
	return service.New(programID, deps, opts...)
}

// NewHandler exposes svc over HTTP.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return handler.New(svc, logger)
}
