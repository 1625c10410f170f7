package service

import (
	"context"
	"time"

	"realmgov/internal/governance/models"
	"realmgov/internal/governance/ports"
	dErrors "realmgov/pkg/domain-errors"
	"realmgov/pkg/platform/audit"
	"realmgov/pkg/requestcontext"
)

// WithdrawGoverningTokens returns the owner's full deposit to req.Destination.
// Only the owner can withdraw; the delegate never can. Withdrawal is refused
// while the vote-hold oracle reports unresolved votes or proposals.
func (s *Service) WithdrawGoverningTokens(ctx context.Context, req *models.WithdrawRequest) (*models.TokenOwnerRecord, error) {
	start := time.Now()
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	ctx, span := s.startSpan(ctx, opWithdraw, req.Key())
	defer span.End()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rec, err := s.withdraw(ctx, req)
	s.finish(span, opWithdraw, start, err)
	return rec, err
}

func (s *Service) withdraw(ctx context.Context, req *models.WithdrawRequest) (*models.TokenOwnerRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	address, err := s.RecordAddress(req.Key())
	if err != nil {
		return nil, err
	}
	holding, err := s.HoldingAddress(req.Realm, req.Mint)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	var (
		result      *models.TokenOwnerRecord
		amount      uint64
		transferred bool
	)
	err = s.tx.RunInTx(ctx, address, func(ctx context.Context, store ports.RecordStore) error {
		rec, err := findRecord(ctx, store, address)
		if err != nil {
			return err
		}
		if rec.IsEmpty() {
			return dErrors.New(dErrors.CodeRecordNotFound, "token owner record has no deposit to withdraw")
		}

		if !req.Signers.Has(req.Owner) {
			reason := "governing token owner must sign withdrawal"
			if rec.GovernanceDelegate != nil && req.Signers.Has(*rec.GovernanceDelegate) {
				reason = "delegate cannot withdraw governing tokens"
			}
			s.logAudit(ctx, audit.EventAuthorizationDenied,
				"address", address.String(),
				"owner", req.Owner.String(),
				"reason", reason,
			)
			return dErrors.New(dErrors.CodeUnauthorized, reason)
		}

		cfg, err := s.mintConfig(ctx, req.Realm, req.Mint)
		if err != nil {
			return err
		}
		if !cfg.AllowsWithdrawal() {
			return dErrors.New(dErrors.CodeInvalidRealmConfig, "membership tokens cannot be withdrawn")
		}

		hold, err := s.oracle.HoldStatus(ctx, address)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeOracleUnavailable, "vote-hold check could not be completed")
		}
		if hold.Blocked() {
			s.logAudit(ctx, audit.EventWithdrawalBlocked,
				"address", address.String(),
				"owner", req.Owner.String(),
				"outstanding_votes", hold.OutstandingVotes,
				"outstanding_proposals", hold.OutstandingProposals,
			)
			if hold.OutstandingVotes > 0 {
				return dErrors.New(dErrors.CodeVotesOutstanding, "relinquish outstanding votes before withdrawing")
			}
			return dErrors.New(dErrors.CodeVotesOutstanding, "resolve outstanding proposals before withdrawing")
		}

		amount = rec.GoverningTokenDepositAmount
		if err := s.custody.Transfer(ctx, req.Mint, holding, req.Destination, amount); err != nil {
			return dErrors.Wrap(err, dErrors.CodeTransferFailed, "custody transfer failed")
		}
		transferred = true

		if err := rec.ApplyWithdrawal(amount, now); err != nil {
			return err
		}
		if err := saveRecord(ctx, store, rec); err != nil {
			return err
		}
		if err := s.emitRecordEvent(ctx, audit.EventWithdrawalApplied, rec, req.Owner.String(), amount); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
		}
		result = rec
		return nil
	})
	if err != nil {
		err = txError(err)
		if transferred {
			return nil, s.compensate(ctx, transfer{
				mint:    req.Mint,
				from:    holding,
				to:      req.Destination,
				amount:  amount,
				address: address,
			}, err)
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.AddWithdrawn(amount)
	}
	return result, nil
}
