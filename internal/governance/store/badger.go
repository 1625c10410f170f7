package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"realmgov/internal/governance/models"
	"realmgov/internal/governance/ports"
	"realmgov/pkg/domain"
	"realmgov/pkg/platform/sentinel"
)

// Key layout:
//
//	tor/<address>                      -> JSON record
//	idx/realm/<realm>/<address>        -> empty
//	idx/delegate/<delegate>/<address>  -> empty
const (
	recordPrefix   = "tor/"
	realmIndex     = "idx/realm/"
	delegateIndex  = "idx/delegate/"
	badgerGCPeriod = 5 * time.Minute
)

// BadgerStore persists token owner records in an embedded badger database.
type BadgerStore struct {
	db      *badger.DB
	locks   *recordLocks
	timeout time.Duration
	logger  *slog.Logger
}

type BadgerOption func(*BadgerStore)

func WithBadgerLogger(logger *slog.Logger) BadgerOption {
	return func(s *BadgerStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// OpenBadger opens the database under dir, or in memory when dir is empty.
func OpenBadger(dir string, opts ...BadgerOption) (*BadgerStore, error) {
	s := &BadgerStore{
		locks:   newRecordLocks(),
		timeout: defaultTxTimeout,
		logger:  slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	bopts := badger.DefaultOptions(dir).
		WithLogger(&badgerLogger{logger: s.logger}).
		WithLoggingLevel(badger.WARNING)
	if dir == "" {
		bopts = bopts.WithInMemory(true)
	}
	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	s.db = db
	return s, nil
}

// Close releases the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// RunGC reclaims value log space until ctx is done. Run it in its own goroutine.
func (s *BadgerStore) RunGC(ctx context.Context) {
	ticker := time.NewTicker(badgerGCPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for {
				if err := s.db.RunValueLogGC(0.5); err != nil {
					if !errors.Is(err, badger.ErrNoRewrite) && !errors.Is(err, badger.ErrRejected) {
						s.logger.Warn("badger value log GC failed", "error", err)
					}
					break
				}
			}
		}
	}
}

func (s *BadgerStore) FindByAddress(ctx context.Context, address domain.Pubkey) (*models.TokenOwnerRecord, error) {
	var rec *models.TokenOwnerRecord
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		rec, err = (&badgerTx{txn: txn}).FindByAddress(ctx, address)
		return err
	})
	return rec, err
}

func (s *BadgerStore) GetOrCreate(ctx context.Context, address domain.Pubkey, key domain.RecordKey, now time.Time) (*models.TokenOwnerRecord, bool, error) {
	var (
		rec     *models.TokenOwnerRecord
		created bool
	)
	err := s.update(func(txn *badger.Txn) error {
		var err error
		rec, created, err = (&badgerTx{txn: txn}).GetOrCreate(ctx, address, key, now)
		return err
	})
	return rec, created, err
}

func (s *BadgerStore) Save(ctx context.Context, rec *models.TokenOwnerRecord) error {
	return s.update(func(txn *badger.Txn) error {
		return (&badgerTx{txn: txn}).Save(ctx, rec)
	})
}

func (s *BadgerStore) ListByRealm(ctx context.Context, realm domain.RealmID) ([]*models.TokenOwnerRecord, error) {
	var out []*models.TokenOwnerRecord
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		out, err = (&badgerTx{txn: txn}).ListByRealm(ctx, realm)
		return err
	})
	return out, err
}

func (s *BadgerStore) ListByDelegate(ctx context.Context, delegate domain.Identity) ([]*models.TokenOwnerRecord, error) {
	var out []*models.TokenOwnerRecord
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		out, err = (&badgerTx{txn: txn}).ListByDelegate(ctx, delegate)
		return err
	})
	return out, err
}

// RunInTx holds the record lock for address and runs fn in one badger
// read-write transaction.
func (s *BadgerStore) RunInTx(ctx context.Context, address domain.Pubkey, fn func(ctx context.Context, store ports.RecordStore) error) error {
	ctx, unlock, err := lockRecord(ctx, s.locks, address, s.timeout)
	if err != nil {
		return err
	}
	defer unlock()
	return s.update(func(txn *badger.Txn) error {
		return fn(ctx, &badgerTx{txn: txn})
	})
}

func (s *BadgerStore) update(fn func(txn *badger.Txn) error) error {
	err := s.db.Update(fn)
	if errors.Is(err, badger.ErrConflict) {
		return sentinel.ErrConflict
	}
	return err
}

// badgerTx implements ports.RecordStore over one badger transaction.
type badgerTx struct {
	txn *badger.Txn
}

func (t *badgerTx) FindByAddress(_ context.Context, address domain.Pubkey) (*models.TokenOwnerRecord, error) {
	item, err := t.txn.Get(recordKey(address))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get token owner record: %w", err)
	}
	var rec models.TokenOwnerRecord
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	}); err != nil {
		return nil, fmt.Errorf("decode token owner record: %w", err)
	}
	return &rec, nil
}

func (t *badgerTx) GetOrCreate(ctx context.Context, address domain.Pubkey, key domain.RecordKey, now time.Time) (*models.TokenOwnerRecord, bool, error) {
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
	if err := t.put(nil, rec); err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

func (t *badgerTx) Save(ctx context.Context, rec *models.TokenOwnerRecord) error {
	cur, err := t.FindByAddress(ctx, rec.Address)
	if err != nil {
		return err
	}
	if cur.Version != rec.Version {
		return sentinel.ErrConflict
	}
	next := rec.Clone()
	next.Version++
	if err := t.put(cur, next); err != nil {
		return err
	}
	rec.Version = next.Version
	return nil
}

// put writes rec and moves its index entries away from prev.
func (t *badgerTx) put(prev, rec *models.TokenOwnerRecord) error {
	buf, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode token owner record: %w", err)
	}
	if err := t.txn.Set(recordKey(rec.Address), buf); err != nil {
		return fmt.Errorf("set token owner record: %w", err)
	}
	if prev == nil {
		if err := t.txn.Set(indexKey(realmIndex, rec.Realm.String(), rec.Address), nil); err != nil {
			return fmt.Errorf("set realm index: %w", err)
		}
	}
	if prev != nil && prev.GovernanceDelegate != nil {
		if err := t.txn.Delete(indexKey(delegateIndex, prev.GovernanceDelegate.String(), rec.Address)); err != nil {
			return fmt.Errorf("delete delegate index: %w", err)
		}
	}
	if rec.GovernanceDelegate != nil {
		if err := t.txn.Set(indexKey(delegateIndex, rec.GovernanceDelegate.String(), rec.Address), nil); err != nil {
			return fmt.Errorf("set delegate index: %w", err)
		}
	}
	return nil
}

func (t *badgerTx) ListByRealm(ctx context.Context, realm domain.RealmID) ([]*models.TokenOwnerRecord, error) {
	return t.listIndex(ctx, realmIndex+realm.String()+"/")
}

func (t *badgerTx) ListByDelegate(ctx context.Context, delegate domain.Identity) ([]*models.TokenOwnerRecord, error) {
	return t.listIndex(ctx, delegateIndex+delegate.String()+"/")
}

func (t *badgerTx) listIndex(ctx context.Context, prefix string) ([]*models.TokenOwnerRecord, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = []byte(prefix)
	it := t.txn.NewIterator(opts)

	var addrs []domain.Pubkey
	for it.Rewind(); it.ValidForPrefix(opts.Prefix); it.Next() {
		addr, err := domain.ParsePubkey(string(it.Item().Key()[len(prefix):]))
		if err != nil {
			it.Close()
			return nil, fmt.Errorf("decode index key: %w", err)
		}
		addrs = append(addrs, addr)
	}
	it.Close()

	out := make([]*models.TokenOwnerRecord, 0, len(addrs))
	for _, addr := range addrs {
		rec, err := t.FindByAddress(ctx, addr)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	sortRecords(out)
	return out, nil
}

func recordKey(address domain.Pubkey) []byte {
	return []byte(recordPrefix + address.String())
}

func indexKey(prefix, owner string, address domain.Pubkey) []byte {
	return []byte(prefix + owner + "/" + address.String())
}

// badgerLogger adapts slog to badger's logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(msg string, args ...any) {
	l.logger.Error(fmt.Sprintf(msg, args...), "component", "badger")
}

func (l *badgerLogger) Warningf(msg string, args ...any) {
	l.logger.Warn(fmt.Sprintf(msg, args...), "component", "badger")
}

func (l *badgerLogger) Infof(msg string, args ...any) {
	l.logger.Info(fmt.Sprintf(msg, args...), "component", "badger")
}

func (l *badgerLogger) Debugf(msg string, args ...any) {
	l.logger.Debug(fmt.Sprintf(msg, args...), "component", "badger")
}
