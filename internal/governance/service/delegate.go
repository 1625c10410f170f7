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

// SetGovernanceDelegate replaces the record's delegate. The owner or the
// current delegate may sign; a nil delegate revokes. Balance and vote holds
// are not consulted.
func (s *Service) SetGovernanceDelegate(ctx context.Context, req *models.SetDelegateRequest) (*models.TokenOwnerRecord, error) {
	start := time.Now()
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	ctx, span := s.startSpan(ctx, opSetDelegate, req.Key())
	defer span.End()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rec, err := s.setDelegate(ctx, req)
	s.finish(span, opSetDelegate, start, err)
	return rec, err
}

func (s *Service) setDelegate(ctx context.Context, req *models.SetDelegateRequest) (*models.TokenOwnerRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	address, err := s.RecordAddress(req.Key())
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	var result *models.TokenOwnerRecord
	err = s.tx.RunInTx(ctx, address, func(ctx context.Context, store ports.RecordStore) error {
		rec, err := findRecord(ctx, store, address)
		if err != nil {
			return err
		}

		// Owner authority always wins; the current delegate may hand over or revoke.
		var actor string
		switch {
		case req.Signers.Has(req.Owner):
			actor = req.Owner.String()
		case rec.GovernanceDelegate != nil && req.Signers.Has(*rec.GovernanceDelegate):
			actor = rec.GovernanceDelegate.String()
		default:
			s.logAudit(ctx, audit.EventAuthorizationDenied,
				"address", address.String(),
				"owner", req.Owner.String(),
				"reason", "signer is neither owner nor current delegate",
			)
			return dErrors.New(dErrors.CodeUnauthorized, "governing token owner or current delegate must sign")
		}

		rec.SetDelegate(req.NewDelegate, now)
		if err := saveRecord(ctx, store, rec); err != nil {
			return err
		}
		if err := s.emitRecordEvent(ctx, audit.EventDelegateSet, rec, actor, 0); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
		}
		result = rec
		return nil
	})
	if err != nil {
		return nil, txError(err)
	}
	return result, nil
}
