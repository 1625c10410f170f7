package models

import (
	"math"
	"time"

	"realmgov/pkg/domain"
	dErrors "realmgov/pkg/domain-errors"
)

// TokenOwnerRecord is the per (realm, mint, owner) accounting entry for
// deposited governing tokens.
//
// Invariants:
//   - Realm, GoverningTokenMint and GoverningTokenOwner never change after creation
//   - Address is derived from the triple and is the record's storage key
//   - GoverningTokenDepositAmount is the net of all applied deposits and
//     withdrawals and never underflows or wraps
//   - GovernanceDelegate never affects the balance
//
// Outstanding votes are deliberately absent: the vote-hold oracle is their
// only source.
type TokenOwnerRecord struct {
	Address                     domain.Pubkey    `json:"address"`
	Realm                       domain.RealmID   `json:"realm"`
	GoverningTokenMint          domain.MintID    `json:"governing_token_mint"`
	GoverningTokenOwner         domain.Identity  `json:"governing_token_owner"`
	GoverningTokenDepositAmount uint64           `json:"governing_token_deposit_amount,string"`
	GovernanceDelegate          *domain.Identity `json:"governance_delegate"`
	Version                     uint64           `json:"version"`
	CreatedAt                   time.Time        `json:"created_at"`
	UpdatedAt                   time.Time        `json:"updated_at"`
}

// NewTokenOwnerRecord creates an empty record with no delegate.
func NewTokenOwnerRecord(address domain.Pubkey, key domain.RecordKey, now time.Time) (*TokenOwnerRecord, error) {
	if err := key.Validate(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvariantViolation, err.Error())
	}
	if address.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "record address is required")
	}
	return &TokenOwnerRecord{
		Address:             address,
		Realm:               key.Realm,
		GoverningTokenMint:  key.Mint,
		GoverningTokenOwner: key.Owner,
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}

// Key returns the natural key of the record.
func (r *TokenOwnerRecord) Key() domain.RecordKey {
	return domain.RecordKey{Realm: r.Realm, Mint: r.GoverningTokenMint, Owner: r.GoverningTokenOwner}
}

// IsEmpty reports whether the record currently carries no voting weight.
func (r *TokenOwnerRecord) IsEmpty() bool {
	return r.GoverningTokenDepositAmount == 0
}

// CanDeposit checks that amount can be added without wrapping.
// Use before moving funds so a transfer is never followed by a rejected update.
func (r *TokenOwnerRecord) CanDeposit(amount uint64) error {
	if amount == 0 {
		return dErrors.New(dErrors.CodeInvalidAmount, "amount must be greater than zero")
	}
	if amount > math.MaxUint64-r.GoverningTokenDepositAmount {
		return dErrors.New(dErrors.CodeOverflow, "deposit would overflow the governing token balance")
	}
	return nil
}

// ApplyDeposit increments the balance by amount.
func (r *TokenOwnerRecord) ApplyDeposit(amount uint64, now time.Time) error {
	if err := r.CanDeposit(amount); err != nil {
		return err
	}
	r.GoverningTokenDepositAmount += amount
	r.UpdatedAt = now
	return nil
}

// CanWithdraw checks that amount is positive and covered by the balance.
func (r *TokenOwnerRecord) CanWithdraw(amount uint64) error {
	if amount == 0 {
		return dErrors.New(dErrors.CodeInvalidAmount, "amount must be greater than zero")
	}
	if amount > r.GoverningTokenDepositAmount {
		return dErrors.New(dErrors.CodeInsufficientBalance, "withdrawal exceeds deposited amount")
	}
	return nil
}

// ApplyWithdrawal decrements the balance by amount. Vote holds are checked by
// the caller; this only guards the arithmetic.
func (r *TokenOwnerRecord) ApplyWithdrawal(amount uint64, now time.Time) error {
	if err := r.CanWithdraw(amount); err != nil {
		return err
	}
	r.GoverningTokenDepositAmount -= amount
	r.UpdatedAt = now
	return nil
}

// SetDelegate replaces the delegate unconditionally; nil clears it.
func (r *TokenOwnerRecord) SetDelegate(delegate *domain.Identity, now time.Time) {
	if delegate != nil && delegate.IsNil() {
		delegate = nil
	}
	if delegate != nil {
		d := *delegate
		delegate = &d
	}
	r.GovernanceDelegate = delegate
	r.UpdatedAt = now
}

// IsDelegate reports whether id is the current delegate.
func (r *TokenOwnerRecord) IsDelegate(id domain.Identity) bool {
	return r.GovernanceDelegate != nil && *r.GovernanceDelegate == id
}

// Clone returns a deep copy so stores never share mutable state with callers.
func (r *TokenOwnerRecord) Clone() *TokenOwnerRecord {
	if r == nil {
		return nil
	}
	c := *r
	if r.GovernanceDelegate != nil {
		d := *r.GovernanceDelegate
		c.GovernanceDelegate = &d
	}
	return &c
}
