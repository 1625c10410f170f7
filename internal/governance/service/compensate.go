package service

import (
	"context"
	"errors"
	"time"

	"realmgov/internal/governance/ports"
	"realmgov/pkg/domain"
	dErrors "realmgov/pkg/domain-errors"
	"realmgov/pkg/platform/audit"
)

const compensationTimeout = 5 * time.Second

// transfer describes a custody movement that already happened.
type transfer struct {
	mint    domain.MintID
	from    domain.Identity
	to      domain.Identity
	amount  uint64
	address domain.Pubkey
}

// compensate undoes t after the record transaction failed. Ledgers that
// enlist in the record transaction were rolled back with it and need nothing.
// It returns the error the caller should surface.
func (s *Service) compensate(ctx context.Context, t transfer, cause error) error {
	if enlister, ok := s.custody.(ports.TxEnlister); ok && enlister.EnlistsInRecordTx() {
		return cause
	}

	// The operation context may already be done; the reversal gets its own budget.
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	if err := s.custody.Transfer(rctx, t.mint, t.to, t.from, t.amount); err != nil {
		if s.metrics != nil {
			s.metrics.IncrementCompensation("failed")
		}
		s.logAudit(rctx, audit.EventCustodyReconcileNeed,
			"address", t.address.String(),
			"mint", t.mint.String(),
			"from", t.from.String(),
			"to", t.to.String(),
			"amount", t.amount,
			"reason", err.Error(),
			"cause", cause.Error(),
		)
		return dErrors.Wrap(errors.Join(cause, err), dErrors.CodeInternal,
			"record update failed after custody transfer and the transfer could not be reversed")
	}

	if s.metrics != nil {
		s.metrics.IncrementCompensation("reversed")
	}
	s.logAudit(rctx, audit.EventTransferCompensated,
		"address", t.address.String(),
		"mint", t.mint.String(),
		"amount", t.amount,
		"reason", cause.Error(),
	)
	return cause
}
