package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"realmgov/internal/governance/ports"
	"realmgov/pkg/domain"
	dErrors "realmgov/pkg/domain-errors"
	"realmgov/pkg/platform/sentinel"
	"realmgov/pkg/testutil"
)

// transactionalStore is what every backend offers.
type transactionalStore interface {
	ports.RecordStore
	ports.RecordTx
}

// RecordStoreSuite checks the behaviour every backend shares. Backend test
// files supply newStore.
type RecordStoreSuite struct {
	suite.Suite
	newStore func() transactionalStore
	store    transactionalStore
	now      time.Time
}

func (s *RecordStoreSuite) SetupTest() {
	s.store = s.newStore()
	s.now = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
}

func (s *RecordStoreSuite) newKey() (domain.Pubkey, domain.RecordKey) {
	t := s.T()
	key := domain.RecordKey{
		Realm: testutil.NewRealmID(t),
		Mint:  testutil.NewMintID(t),
		Owner: testutil.NewIdentity(t),
	}
	return domain.Pubkey(testutil.NewIdentity(t)), key
}

func (s *RecordStoreSuite) TestGetOrCreateIsIdempotent() {
	ctx := context.Background()
	addr, key := s.newKey()

	first, created, err := s.store.GetOrCreate(ctx, addr, key, s.now)
	s.Require().NoError(err)
	s.True(created)
	s.Zero(first.GoverningTokenDepositAmount)
	s.Nil(first.GovernanceDelegate)

	second, created, err := s.store.GetOrCreate(ctx, addr, key, s.now.Add(time.Hour))
	s.Require().NoError(err)
	s.False(created)
	s.Equal(first.Address, second.Address)
	s.Equal(first.Version, second.Version)
	s.Equal(key, second.Key())
}

func (s *RecordStoreSuite) TestFindByAddressMissing() {
	addr, _ := s.newKey()
	_, err := s.store.FindByAddress(context.Background(), addr)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RecordStoreSuite) TestSaveChecksVersion() {
	ctx := context.Background()
	addr, key := s.newKey()
	rec, _, err := s.store.GetOrCreate(ctx, addr, key, s.now)
	s.Require().NoError(err)
	stale := rec.Clone()

	s.Require().NoError(rec.ApplyDeposit(10, s.now))
	s.Require().NoError(s.store.Save(ctx, rec))

	s.Require().NoError(stale.ApplyDeposit(99, s.now))
	s.ErrorIs(s.store.Save(ctx, stale), sentinel.ErrConflict)

	got, err := s.store.FindByAddress(ctx, addr)
	s.Require().NoError(err)
	s.Equal(uint64(10), got.GoverningTokenDepositAmount)
	s.Equal(rec.Version, got.Version)
}

func (s *RecordStoreSuite) TestListings() {
	ctx := context.Background()
	realm := testutil.NewRealmID(s.T())
	delegate := testutil.NewIdentity(s.T())
	other := testutil.NewIdentity(s.T())

	var addrs []domain.Pubkey
	for i := 0; i < 3; i++ {
		addr, key := s.newKey()
		key.Realm = realm
		rec, _, err := s.store.GetOrCreate(ctx, addr, key, s.now)
		s.Require().NoError(err)
		if i < 2 {
			rec.SetDelegate(&delegate, s.now)
			s.Require().NoError(s.store.Save(ctx, rec))
		}
		addrs = append(addrs, addr)
	}
	unrelated, key := s.newKey()
	_, _, err := s.store.GetOrCreate(ctx, unrelated, key, s.now)
	s.Require().NoError(err)

	inRealm, err := s.store.ListByRealm(ctx, realm)
	s.Require().NoError(err)
	s.Len(inRealm, 3)

	delegated, err := s.store.ListByDelegate(ctx, delegate)
	s.Require().NoError(err)
	s.Len(delegated, 2)

	s.Run("reassigning moves the record between delegates", func() {
		rec, err := s.store.FindByAddress(ctx, addrs[0])
		s.Require().NoError(err)
		rec.SetDelegate(&other, s.now)
		s.Require().NoError(s.store.Save(ctx, rec))

		delegated, err := s.store.ListByDelegate(ctx, delegate)
		s.Require().NoError(err)
		s.Len(delegated, 1)
		moved, err := s.store.ListByDelegate(ctx, other)
		s.Require().NoError(err)
		s.Require().Len(moved, 1)
		s.Equal(addrs[0], moved[0].Address)
	})

	s.Run("empty listing is not nil", func() {
		none, err := s.store.ListByDelegate(ctx, testutil.NewIdentity(s.T()))
		s.Require().NoError(err)
		s.NotNil(none)
		s.Empty(none)
	})
}

func (s *RecordStoreSuite) TestRunInTxRollsBackOnError() {
	ctx := context.Background()
	addr, key := s.newKey()
	boom := errors.New("transfer failed")

	err := s.store.RunInTx(ctx, addr, func(ctx context.Context, tx ports.RecordStore) error {
		rec, created, err := tx.GetOrCreate(ctx, addr, key, s.now)
		s.Require().NoError(err)
		s.True(created)
		s.Require().NoError(rec.ApplyDeposit(5, s.now))
		s.Require().NoError(tx.Save(ctx, rec))
		return boom
	})
	s.ErrorIs(err, boom)

	_, err = s.store.FindByAddress(ctx, addr)
	s.ErrorIs(err, sentinel.ErrNotFound, "record created in a failed transaction must not persist")
}

func (s *RecordStoreSuite) TestRunInTxCommits() {
	ctx := context.Background()
	addr, key := s.newKey()

	err := s.store.RunInTx(ctx, addr, func(ctx context.Context, tx ports.RecordStore) error {
		rec, _, err := tx.GetOrCreate(ctx, addr, key, s.now)
		if err != nil {
			return err
		}
		if err := rec.ApplyDeposit(100, s.now); err != nil {
			return err
		}
		if err := tx.Save(ctx, rec); err != nil {
			return err
		}
		again, err := tx.FindByAddress(ctx, addr)
		if err != nil {
			return err
		}
		s.Equal(uint64(100), again.GoverningTokenDepositAmount, "writes are visible inside the transaction")
		return nil
	})
	s.Require().NoError(err)

	got, err := s.store.FindByAddress(ctx, addr)
	s.Require().NoError(err)
	s.Equal(uint64(100), got.GoverningTokenDepositAmount)
}

func (s *RecordStoreSuite) TestRunInTxSerializesOneRecord() {
	ctx := context.Background()
	addr, key := s.newKey()
	const workers = 25

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.store.RunInTx(ctx, addr, func(ctx context.Context, tx ports.RecordStore) error {
				rec, _, err := tx.GetOrCreate(ctx, addr, key, s.now)
				if err != nil {
					return err
				}
				if err := rec.ApplyDeposit(2, s.now); err != nil {
					return err
				}
				return tx.Save(ctx, rec)
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	got, err := s.store.FindByAddress(ctx, addr)
	s.Require().NoError(err)
	s.Equal(uint64(2*workers), got.GoverningTokenDepositAmount, "no lost updates")
}

func (s *RecordStoreSuite) TestRunInTxCancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	addr, _ := s.newKey()

	called := false
	err := s.store.RunInTx(ctx, addr, func(context.Context, ports.RecordStore) error {
		called = true
		return nil
	})
	s.False(called)
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
}

func (s *RecordStoreSuite) TestStoredCopiesAreIsolated() {
	ctx := context.Background()
	addr, key := s.newKey()
	rec, _, err := s.store.GetOrCreate(ctx, addr, key, s.now)
	s.Require().NoError(err)

	rec.GoverningTokenDepositAmount = 1_000

	got, err := s.store.FindByAddress(ctx, addr)
	s.Require().NoError(err)
	s.Zero(got.GoverningTokenDepositAmount)
}

