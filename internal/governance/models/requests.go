package models

import (
	"realmgov/pkg/domain"
	dErrors "realmgov/pkg/domain-errors"
)

// DepositRequest moves Amount governing tokens from Source into the realm
// holding account and credits the owner's record.
type DepositRequest struct {
	Realm           domain.RealmID
	Mint            domain.MintID
	Owner           domain.Identity
	Source          domain.Identity
	SourceAuthority domain.Identity
	Payer           domain.Identity
	Amount          uint64
	Signers         domain.SignerSet
}

// Key returns the record key the deposit targets.
func (r *DepositRequest) Key() domain.RecordKey {
	return domain.RecordKey{Realm: r.Realm, Mint: r.Mint, Owner: r.Owner}
}

// Validate follows validation order: Required -> Semantic.
func (r *DepositRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := r.Key().Validate(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, err.Error())
	}
	if r.Source.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "source is required")
	}
	if r.SourceAuthority.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "source authority is required")
	}
	if r.Payer.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "payer is required")
	}
	if r.Amount == 0 {
		return dErrors.New(dErrors.CodeInvalidAmount, "amount must be greater than zero")
	}
	return nil
}

// WithdrawRequest returns the owner's full deposit to Destination.
type WithdrawRequest struct {
	Realm       domain.RealmID
	Mint        domain.MintID
	Owner       domain.Identity
	Destination domain.Identity
	Signers     domain.SignerSet
}

func (r *WithdrawRequest) Key() domain.RecordKey {
	return domain.RecordKey{Realm: r.Realm, Mint: r.Mint, Owner: r.Owner}
}

func (r *WithdrawRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := r.Key().Validate(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, err.Error())
	}
	if r.Destination.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "destination is required")
	}
	return nil
}

// SetDelegateRequest replaces the record's delegate. A nil NewDelegate
// revokes delegation.
type SetDelegateRequest struct {
	Realm       domain.RealmID
	Mint        domain.MintID
	Owner       domain.Identity
	NewDelegate *domain.Identity
	Signers     domain.SignerSet
}

func (r *SetDelegateRequest) Key() domain.RecordKey {
	return domain.RecordKey{Realm: r.Realm, Mint: r.Mint, Owner: r.Owner}
}

func (r *SetDelegateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := r.Key().Validate(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, err.Error())
	}
	return nil
}
