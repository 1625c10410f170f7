package service

import (
	"context"

	"realmgov/internal/governance/models"
	"realmgov/pkg/domain"
	dErrors "realmgov/pkg/domain-errors"
)

// GetTokenOwnerRecord returns the record for key.
func (s *Service) GetTokenOwnerRecord(ctx context.Context, key domain.RecordKey) (*models.TokenOwnerRecord, error) {
	address, err := s.RecordAddress(key)
	if err != nil {
		return nil, err
	}
	return findRecord(ctx, s.records, address)
}

// ListRealmRecords returns every record in realm, across both governing mints.
func (s *Service) ListRealmRecords(ctx context.Context, realm domain.RealmID) ([]*models.TokenOwnerRecord, error) {
	if realm.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "realm is required")
	}
	recs, err := s.records.ListByRealm(ctx, realm)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list token owner records")
	}
	return recs, nil
}

// ListDelegatedRecords returns the records delegate may vote for.
func (s *Service) ListDelegatedRecords(ctx context.Context, delegate domain.Identity) ([]*models.TokenOwnerRecord, error) {
	if delegate.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "delegate is required")
	}
	recs, err := s.records.ListByDelegate(ctx, delegate)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list delegated records")
	}
	return recs, nil
}
