//go:build integration

package custody

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	"realmgov/pkg/domain"
	"realmgov/pkg/platform/sentinel"
	txcontext "realmgov/pkg/platform/tx"
	"realmgov/pkg/testutil"
	"realmgov/pkg/testutil/containers"
)

type PostgresLedgerSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	ledger   *PostgresLedger
	mint     domain.MintID
	alice    domain.Identity
	holding  domain.Identity
}

func TestPostgresLedgerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresLedgerSuite))
}

func (s *PostgresLedgerSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.ledger = NewPostgres(s.postgres.DB)
}

func (s *PostgresLedgerSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.Truncate(ctx))
	s.mint = testutil.NewMintID(s.T())
	s.alice = testutil.NewIdentity(s.T())
	s.holding = testutil.NewIdentity(s.T())
	s.Require().NoError(s.ledger.OpenAccount(ctx, s.alice, s.mint, s.alice, 100))
}

func (s *PostgresLedgerSuite) balance(id domain.Identity) uint64 {
	b, err := s.ledger.Balance(context.Background(), id, s.mint)
	s.Require().NoError(err)
	return b
}

func (s *PostgresLedgerSuite) TestTransfer() {
	ctx := context.Background()
	s.Require().NoError(s.ledger.Transfer(ctx, s.mint, s.alice, s.holding, 30))
	s.Equal(uint64(70), s.balance(s.alice))
	s.Equal(uint64(30), s.balance(s.holding))

	authority, err := s.ledger.Authority(ctx, s.mint, s.holding)
	s.Require().NoError(err)
	s.Equal(s.holding, authority)
}

func (s *PostgresLedgerSuite) TestOppositeTransfersDoNotDeadlock() {
	ctx := context.Background()
	s.Require().NoError(s.ledger.OpenAccount(ctx, s.holding, s.mint, s.holding, 100))

	const rounds = 25
	var g errgroup.Group
	for range rounds {
		g.Go(func() error { return s.ledger.Transfer(ctx, s.mint, s.alice, s.holding, 1) })
		g.Go(func() error { return s.ledger.Transfer(ctx, s.mint, s.holding, s.alice, 1) })
	}
	s.Require().NoError(g.Wait())
	s.Equal(uint64(100), s.balance(s.alice))
	s.Equal(uint64(100), s.balance(s.holding))
}

func (s *PostgresLedgerSuite) TestInsufficientFunds() {
	err := s.ledger.Transfer(context.Background(), s.mint, s.alice, s.holding, 101)
	s.ErrorIs(err, ErrInsufficientFunds)
	s.Equal(uint64(100), s.balance(s.alice))
}

func (s *PostgresLedgerSuite) TestBalanceAboveInt64() {
	ctx := context.Background()
	s.Require().NoError(s.ledger.OpenAccount(ctx, s.alice, s.mint, s.alice, math.MaxUint64))
	s.Require().NoError(s.ledger.Transfer(ctx, s.mint, s.alice, s.holding, math.MaxUint64-1))
	s.Equal(uint64(math.MaxUint64-1), s.balance(s.holding))

	s.Require().NoError(s.ledger.OpenAccount(ctx, s.alice, s.mint, s.alice, 2))
	s.ErrorIs(s.ledger.Transfer(ctx, s.mint, s.alice, s.holding, 2), ErrBalanceOverflow)
}

func (s *PostgresLedgerSuite) TestTransferRollsBackWithCallerTransaction() {
	ctx := context.Background()
	tx, err := s.postgres.DB.BeginTx(ctx, nil)
	s.Require().NoError(err)

	s.Require().NoError(s.ledger.Transfer(txcontext.WithTx(ctx, tx), s.mint, s.alice, s.holding, 50))
	s.Require().NoError(tx.Rollback())

	s.Equal(uint64(100), s.balance(s.alice))
	s.Equal(uint64(0), s.balance(s.holding))
}

func (s *PostgresLedgerSuite) TestMintAuthority() {
	ctx := context.Background()
	endpoint := domain.Identity(s.mint)
	_, err := s.ledger.Authority(ctx, s.mint, endpoint)
	s.ErrorIs(err, sentinel.ErrNotFound)

	authority := testutil.NewIdentity(s.T())
	s.Require().NoError(s.ledger.RegisterMint(ctx, s.mint, authority))
	got, err := s.ledger.Authority(ctx, s.mint, endpoint)
	s.Require().NoError(err)
	s.Equal(authority, got)

	s.Require().NoError(s.ledger.Transfer(ctx, s.mint, endpoint, s.holding, 7))
	s.Equal(uint64(7), s.balance(s.holding))
}
