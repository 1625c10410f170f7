package models

import (
	"crypto/rand"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realmgov/pkg/domain"
	dErrors "realmgov/pkg/domain-errors"
)

func randomPubkey(t *testing.T) domain.Pubkey {
	t.Helper()
	var p domain.Pubkey
	_, err := rand.Read(p[:])
	require.NoError(t, err)
	return p
}

func newRecord(t *testing.T) *TokenOwnerRecord {
	t.Helper()
	key := domain.RecordKey{
		Realm: domain.RealmID(randomPubkey(t)),
		Mint:  domain.MintID(randomPubkey(t)),
		Owner: domain.Identity(randomPubkey(t)),
	}
	rec, err := NewTokenOwnerRecord(randomPubkey(t), key, time.Unix(1700000000, 0))
	require.NoError(t, err)
	return rec
}

func TestNewTokenOwnerRecord(t *testing.T) {
	t.Run("starts empty with no delegate", func(t *testing.T) {
		rec := newRecord(t)
		assert.True(t, rec.IsEmpty())
		assert.Nil(t, rec.GovernanceDelegate)
		assert.Zero(t, rec.Version)
	})

	t.Run("rejects missing owner", func(t *testing.T) {
		key := domain.RecordKey{Realm: domain.RealmID(randomPubkey(t)), Mint: domain.MintID(randomPubkey(t))}
		_, err := NewTokenOwnerRecord(randomPubkey(t), key, time.Now())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("rejects missing address", func(t *testing.T) {
		rec := newRecord(t)
		_, err := NewTokenOwnerRecord(domain.Pubkey{}, rec.Key(), time.Now())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestTokenOwnerRecord_Deposit(t *testing.T) {
	now := time.Unix(1700000100, 0)

	t.Run("zero amount", func(t *testing.T) {
		rec := newRecord(t)
		err := rec.ApplyDeposit(0, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidAmount))
	})

	t.Run("accumulates", func(t *testing.T) {
		rec := newRecord(t)
		require.NoError(t, rec.ApplyDeposit(100, now))
		require.NoError(t, rec.ApplyDeposit(50, now))
		assert.Equal(t, uint64(150), rec.GoverningTokenDepositAmount)
		assert.Equal(t, now, rec.UpdatedAt)
	})

	t.Run("overflow leaves balance unchanged", func(t *testing.T) {
		rec := newRecord(t)
		require.NoError(t, rec.ApplyDeposit(math.MaxUint64-1, now))
		err := rec.ApplyDeposit(2, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeOverflow))
		assert.Equal(t, uint64(math.MaxUint64-1), rec.GoverningTokenDepositAmount)
	})

	t.Run("fills to max exactly", func(t *testing.T) {
		rec := newRecord(t)
		require.NoError(t, rec.ApplyDeposit(math.MaxUint64-1, now))
		require.NoError(t, rec.ApplyDeposit(1, now))
		assert.Equal(t, uint64(math.MaxUint64), rec.GoverningTokenDepositAmount)
	})
}

func TestTokenOwnerRecord_Withdrawal(t *testing.T) {
	now := time.Unix(1700000200, 0)

	t.Run("more than balance", func(t *testing.T) {
		rec := newRecord(t)
		require.NoError(t, rec.ApplyDeposit(10, now))
		err := rec.ApplyWithdrawal(11, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInsufficientBalance))
		assert.Equal(t, uint64(10), rec.GoverningTokenDepositAmount)
	})

	t.Run("zero amount", func(t *testing.T) {
		rec := newRecord(t)
		err := rec.ApplyWithdrawal(0, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidAmount))
	})

	t.Run("full balance empties record", func(t *testing.T) {
		rec := newRecord(t)
		require.NoError(t, rec.ApplyDeposit(10, now))
		require.NoError(t, rec.ApplyWithdrawal(10, now))
		assert.True(t, rec.IsEmpty())
	})
}

func TestTokenOwnerRecord_Conservation(t *testing.T) {
	rec := newRecord(t)
	now := time.Now()
	var deposited, withdrawn uint64
	ops := []struct {
		deposit bool
		amount  uint64
	}{
		{true, 40}, {true, 60}, {false, 30}, {true, 5}, {false, 75}, {true, 1}, {false, 1},
	}
	for _, op := range ops {
		if op.deposit {
			require.NoError(t, rec.ApplyDeposit(op.amount, now))
			deposited += op.amount
		} else {
			require.NoError(t, rec.ApplyWithdrawal(op.amount, now))
			withdrawn += op.amount
		}
		assert.Equal(t, deposited-withdrawn, rec.GoverningTokenDepositAmount)
	}
	assert.True(t, rec.IsEmpty())
}

func TestTokenOwnerRecord_SetDelegate(t *testing.T) {
	now := time.Now()
	rec := newRecord(t)
	require.NoError(t, rec.ApplyDeposit(7, now))

	d := domain.Identity(randomPubkey(t))
	rec.SetDelegate(&d, now)
	require.NotNil(t, rec.GovernanceDelegate)
	assert.True(t, rec.IsDelegate(d))

	d[0] ^= 0xff
	assert.False(t, rec.IsDelegate(d), "record must not alias the caller's delegate")

	rec.SetDelegate(nil, now)
	assert.Nil(t, rec.GovernanceDelegate)
	assert.Equal(t, uint64(7), rec.GoverningTokenDepositAmount)

	zero := domain.Identity{}
	rec.SetDelegate(&zero, now)
	assert.Nil(t, rec.GovernanceDelegate, "zero identity clears delegation")
}

func TestTokenOwnerRecord_Clone(t *testing.T) {
	rec := newRecord(t)
	d := domain.Identity(randomPubkey(t))
	rec.SetDelegate(&d, time.Now())

	c := rec.Clone()
	c.GovernanceDelegate[0] ^= 0xff
	c.GoverningTokenDepositAmount = 99

	assert.True(t, rec.IsDelegate(d))
	assert.Zero(t, rec.GoverningTokenDepositAmount)
	assert.Nil(t, (*TokenOwnerRecord)(nil).Clone())
}

func TestMintConfigPolicy(t *testing.T) {
	tests := []struct {
		tokenType TokenType
		deposit   bool
		withdraw  bool
	}{
		{TokenTypeLiquid, true, true},
		{TokenTypeMembership, true, false},
		{TokenTypeDormant, false, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.tokenType), func(t *testing.T) {
			cfg := MintConfig{TokenType: tt.tokenType}
			assert.Equal(t, tt.deposit, cfg.AllowsDeposit())
			assert.Equal(t, tt.withdraw, cfg.AllowsWithdrawal())
		})
	}

	tt, err := ParseTokenType("")
	require.NoError(t, err)
	assert.Equal(t, TokenTypeLiquid, tt)
	_, err = ParseTokenType("frozen")
	assert.Error(t, err)
	_, err = ParseMintRole("treasury")
	assert.Error(t, err)
}

func TestHoldStatus_Blocked(t *testing.T) {
	assert.False(t, HoldStatus{}.Blocked())
	assert.True(t, HoldStatus{OutstandingVotes: 1}.Blocked())
	assert.True(t, HoldStatus{OutstandingProposals: 1}.Blocked())
}
