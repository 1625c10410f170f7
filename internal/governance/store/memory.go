package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"realmgov/internal/governance/models"
	"realmgov/internal/governance/ports"
	"realmgov/pkg/domain"
	"realmgov/pkg/platform/sentinel"
)

// InMemory stores token owner records in a map. Records are cloned on the way
// in and out so callers never share state with the store.
type InMemory struct {
	mu      sync.RWMutex
	records map[domain.Pubkey]*models.TokenOwnerRecord

	locks   *recordLocks
	timeout time.Duration
}

func NewInMemory() *InMemory {
	return &InMemory{
		records: make(map[domain.Pubkey]*models.TokenOwnerRecord),
		locks:   newRecordLocks(),
		timeout: defaultTxTimeout,
	}
}

func (s *InMemory) FindByAddress(_ context.Context, address domain.Pubkey) (*models.TokenOwnerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[address]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return rec.Clone(), nil
}

// GetOrCreate allocates and persists an empty record on first use.
func (s *InMemory) GetOrCreate(_ context.Context, address domain.Pubkey, key domain.RecordKey, now time.Time) (*models.TokenOwnerRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[address]; ok {
		return rec.Clone(), false, nil
	}
	rec, err := newStoredRecord(address, key, now)
	if err != nil {
		return nil, false, err
	}
	s.records[address] = rec
	return rec.Clone(), true, nil
}

// Save writes rec when its version matches the stored one and bumps it.
func (s *InMemory) Save(_ context.Context, rec *models.TokenOwnerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return putVersioned(s.records, rec)
}

func (s *InMemory) ListByRealm(_ context.Context, realm domain.RealmID) ([]*models.TokenOwnerRecord, error) {
	return s.list(func(r *models.TokenOwnerRecord) bool { return r.Realm == realm }), nil
}

func (s *InMemory) ListByDelegate(_ context.Context, delegate domain.Identity) ([]*models.TokenOwnerRecord, error) {
	return s.list(func(r *models.TokenOwnerRecord) bool { return r.IsDelegate(delegate) }), nil
}

func (s *InMemory) list(match func(*models.TokenOwnerRecord) bool) []*models.TokenOwnerRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.TokenOwnerRecord, 0)
	for _, rec := range s.records {
		if match(rec) {
			out = append(out, rec.Clone())
		}
	}
	sortRecords(out)
	return out
}

// RunInTx serializes fn against other transactions on address. Writes are
// staged and applied only when fn succeeds.
func (s *InMemory) RunInTx(ctx context.Context, address domain.Pubkey, fn func(ctx context.Context, store ports.RecordStore) error) error {
	ctx, unlock, err := lockRecord(ctx, s.locks, address, s.timeout)
	if err != nil {
		return err
	}
	defer unlock()

	tx := &memoryTx{base: s, staged: make(map[domain.Pubkey]*models.TokenOwnerRecord)}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for addr, rec := range tx.staged {
		s.records[addr] = rec
	}
	return nil
}

// memoryTx is the store view handed to a transaction.
type memoryTx struct {
	base   *InMemory
	staged map[domain.Pubkey]*models.TokenOwnerRecord
}

func (t *memoryTx) FindByAddress(ctx context.Context, address domain.Pubkey) (*models.TokenOwnerRecord, error) {
	if rec, ok := t.staged[address]; ok {
		return rec.Clone(), nil
	}
	return t.base.FindByAddress(ctx, address)
}

func (t *memoryTx) GetOrCreate(ctx context.Context, address domain.Pubkey, key domain.RecordKey, now time.Time) (*models.TokenOwnerRecord, bool, error) {
	rec, err := t.FindByAddress(ctx, address)
	if err == nil {
		return rec, false, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, false, err
	}
	rec, err = newStoredRecord(address, key, now)
	if err != nil {
		return nil, false, err
	}
	t.staged[address] = rec
	return rec.Clone(), true, nil
}

func (t *memoryTx) Save(_ context.Context, rec *models.TokenOwnerRecord) error {
	if _, ok := t.staged[rec.Address]; !ok {
		t.base.mu.RLock()
		if cur, ok := t.base.records[rec.Address]; ok {
			t.staged[rec.Address] = cur.Clone()
		}
		t.base.mu.RUnlock()
	}
	return putVersioned(t.staged, rec)
}

func (t *memoryTx) ListByRealm(ctx context.Context, realm domain.RealmID) ([]*models.TokenOwnerRecord, error) {
	return t.base.ListByRealm(ctx, realm)
}

func (t *memoryTx) ListByDelegate(ctx context.Context, delegate domain.Identity) ([]*models.TokenOwnerRecord, error) {
	return t.base.ListByDelegate(ctx, delegate)
}

// newStoredRecord builds the first stored version of a record.
func newStoredRecord(address domain.Pubkey, key domain.RecordKey, now time.Time) (*models.TokenOwnerRecord, error) {
	rec, err := models.NewTokenOwnerRecord(address, key, now)
	if err != nil {
		return nil, err
	}
	rec.Version = 1
	return rec, nil
}

func putVersioned(records map[domain.Pubkey]*models.TokenOwnerRecord, rec *models.TokenOwnerRecord) error {
	cur, ok := records[rec.Address]
	switch {
	case !ok && rec.Version != 0:
		return sentinel.ErrNotFound
	case ok && cur.Version != rec.Version:
		return sentinel.ErrConflict
	}
	rec.Version++
	records[rec.Address] = rec.Clone()
	return nil
}

func sortRecords(recs []*models.TokenOwnerRecord) {
	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.GoverningTokenMint != b.GoverningTokenMint {
			return a.GoverningTokenMint.String() < b.GoverningTokenMint.String()
		}
		return a.GoverningTokenOwner.String() < b.GoverningTokenOwner.String()
	})
}
