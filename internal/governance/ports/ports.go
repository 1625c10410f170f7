// Package ports declares the collaborators the governance service depends on.
// Adapters live in internal/realm, internal/voting, internal/custody and
// internal/governance/store.
package ports

import (
	"context"
	"time"

	"realmgov/internal/governance/models"
	"realmgov/pkg/domain"
	"realmgov/pkg/platform/audit"
)

// RecordStore is keyed storage for token owner records.
// Lookups return sentinel.ErrNotFound when the record does not exist and Save
// returns sentinel.ErrConflict when the stored version moved on.
type RecordStore interface {
	FindByAddress(ctx context.Context, address domain.Pubkey) (*models.TokenOwnerRecord, error)
	// GetOrCreate returns the record at address, allocating an empty one on
	// first use. created reports whether allocation happened.
	GetOrCreate(ctx context.Context, address domain.Pubkey, key domain.RecordKey, now time.Time) (rec *models.TokenOwnerRecord, created bool, err error)
	Save(ctx context.Context, rec *models.TokenOwnerRecord) error
	ListByRealm(ctx context.Context, realm domain.RealmID) ([]*models.TokenOwnerRecord, error)
	ListByDelegate(ctx context.Context, delegate domain.Identity) ([]*models.TokenOwnerRecord, error)
}

// RecordTx runs fn with exclusive access to one record. Writes made through
// the store handed to fn commit only when fn returns nil.
type RecordTx interface {
	RunInTx(ctx context.Context, address domain.Pubkey, fn func(ctx context.Context, store RecordStore) error) error
}

// RealmRegistry resolves a realm's governing mint configuration.
// Returns sentinel.ErrNotFound when the mint is not part of the realm.
type RealmRegistry interface {
	MintConfig(ctx context.Context, realm domain.RealmID, mint domain.MintID) (*models.MintConfig, error)
}

// VoteHoldOracle reports unresolved votes and proposals that depend on a
// record's weight.
type VoteHoldOracle interface {
	HoldStatus(ctx context.Context, record domain.Pubkey) (models.HoldStatus, error)
}

// Custody moves governing tokens between endpoints. Transfer either moves
// the full amount or nothing.
type Custody interface {
	// Authority returns the identity that may spend from source: the token
	// account owner, or the mint authority when source is the mint itself.
	Authority(ctx context.Context, mint domain.MintID, source domain.Identity) (domain.Identity, error)
	Transfer(ctx context.Context, mint domain.MintID, from, to domain.Identity, amount uint64) error
}

// TxEnlister is implemented by custody ledgers whose transfers join the record
// transaction carried in ctx, so a rollback also undoes the transfer.
type TxEnlister interface {
	EnlistsInRecordTx() bool
}

// AuditPublisher emits audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
