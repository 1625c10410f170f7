package service

import (
	"context"
	"errors"
	"time"

	"realmgov/internal/governance/models"
	"realmgov/internal/governance/ports"
	dErrors "realmgov/pkg/domain-errors"
	"realmgov/pkg/platform/audit"
	"realmgov/pkg/platform/sentinel"
	"realmgov/pkg/requestcontext"
)

// DepositGoverningTokens moves req.Amount from req.Source into the realm
// holding account and credits the owner's record, creating it on first
// deposit. Votes already cast keep their original weight.
func (s *Service) DepositGoverningTokens(ctx context.Context, req *models.DepositRequest) (*models.TokenOwnerRecord, error) {
	start := time.Now()
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	ctx, span := s.startSpan(ctx, opDeposit, req.Key())
	defer span.End()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rec, err := s.deposit(ctx, req)
	s.finish(span, opDeposit, start, err)
	return rec, err
}

func (s *Service) deposit(ctx context.Context, req *models.DepositRequest) (*models.TokenOwnerRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cfg, err := s.mintConfig(ctx, req.Realm, req.Mint)
	if err != nil {
		return nil, err
	}
	if !cfg.AllowsDeposit() {
		return nil, dErrors.New(dErrors.CodeInvalidRealmConfig, "governing token mint does not accept deposits")
	}

	if err := s.authorizeSource(ctx, req); err != nil {
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
		created     bool
		transferred bool
	)
	err = s.tx.RunInTx(ctx, address, func(ctx context.Context, store ports.RecordStore) error {
		var rec *models.TokenOwnerRecord
		var err error
		rec, created, err = store.GetOrCreate(ctx, address, req.Key(), now)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load token owner record")
		}
		if created && (!req.Signers.Has(req.Owner) || !req.Signers.Has(req.Payer)) {
			s.logAudit(ctx, audit.EventAuthorizationDenied,
				"address", address.String(),
				"owner", req.Owner.String(),
				"reason", "owner and payer must sign record creation",
			)
			return dErrors.New(dErrors.CodeUnauthorized, "owner and payer must sign when creating a token owner record")
		}
		// Overflow is checked before funds move so a successful transfer is
		// never followed by a rejected credit.
		if err := rec.CanDeposit(req.Amount); err != nil {
			return err
		}

		if err := s.custody.Transfer(ctx, req.Mint, req.Source, holding, req.Amount); err != nil {
			return dErrors.Wrap(err, dErrors.CodeTransferFailed, "custody transfer failed")
		}
		transferred = true

		if err := rec.ApplyDeposit(req.Amount, now); err != nil {
			return err
		}
		if err := saveRecord(ctx, store, rec); err != nil {
			return err
		}
		if created {
			if err := s.emitRecordEvent(ctx, audit.EventRecordCreated, rec, req.Payer.String(), 0); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
			}
		}
		if err := s.emitRecordEvent(ctx, audit.EventDepositApplied, rec, req.SourceAuthority.String(), req.Amount); err != nil {
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
				from:    req.Source,
				to:      holding,
				amount:  req.Amount,
				address: address,
			}, err)
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.AddDeposited(req.Amount)
		if created {
			s.metrics.IncrementRecordCreated()
		}
	}
	return result, nil
}

// authorizeSource requires the source authority to have signed and to be the
// identity custody reports as controlling the source.
func (s *Service) authorizeSource(ctx context.Context, req *models.DepositRequest) error {
	deny := func(reason string) error {
		address, _ := s.RecordAddress(req.Key())
		s.logAudit(ctx, audit.EventAuthorizationDenied,
			"address", address.String(),
			"realm", req.Realm.String(),
			"mint", req.Mint.String(),
			"owner", req.Owner.String(),
			"actor", req.SourceAuthority.String(),
			"reason", reason,
		)
		return dErrors.New(dErrors.CodeUnauthorized, reason)
	}

	if !req.Signers.Has(req.SourceAuthority) {
		return deny("source authority must sign")
	}
	authority, err := s.custody.Authority(ctx, req.Mint, req.Source)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return deny("source token account not found")
		}
		return dErrors.Wrap(err, dErrors.CodeTransferFailed, "failed to resolve source authority")
	}
	if authority != req.SourceAuthority {
		return deny("source authority does not control source")
	}
	return nil
}

