// Package custody provides the token ledgers governance deposits and
// withdrawals move funds through.
package custody

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"realmgov/pkg/domain"
	"realmgov/pkg/platform/sentinel"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidTransfer   = errors.New("invalid transfer")
	ErrBalanceOverflow   = errors.New("balance overflow")
)

type accountKey struct {
	account domain.Identity
	mint    domain.MintID
}

type account struct {
	authority domain.Identity
	balance   uint64
}

// Ledger is an in-process custody ledger. Accounts are created on first
// credit with themselves as authority, which is how realm holding accounts
// come into existence. A mint registered with RegisterMint can be used as a
// transfer source (mint) or destination (burn).
type Ledger struct {
	mu       sync.Mutex
	accounts map[accountKey]*account
	mints    map[domain.MintID]domain.Identity
}

func NewLedger() *Ledger {
	return &Ledger{
		accounts: make(map[accountKey]*account),
		mints:    make(map[domain.MintID]domain.Identity),
	}
}

// RegisterMint records the authority allowed to mint new supply of mint.
func (l *Ledger) RegisterMint(mint domain.MintID, authority domain.Identity) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mints[mint] = authority
}

// OpenAccount creates or replaces a token account.
func (l *Ledger) OpenAccount(acct domain.Identity, mint domain.MintID, authority domain.Identity, balance uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[accountKey{account: acct, mint: mint}] = &account{authority: authority, balance: balance}
}

// Balance returns the balance of acct for mint, zero when the account does not exist.
func (l *Ledger) Balance(acct domain.Identity, mint domain.MintID) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if a, ok := l.accounts[accountKey{account: acct, mint: mint}]; ok {
		return a.balance
	}
	return 0
}

func (l *Ledger) Authority(_ context.Context, mint domain.MintID, source domain.Identity) (domain.Identity, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if source == domain.Identity(mint) {
		if authority, ok := l.mints[mint]; ok {
			return authority, nil
		}
		return domain.Identity{}, sentinel.ErrNotFound
	}
	a, ok := l.accounts[accountKey{account: source, mint: mint}]
	if !ok {
		return domain.Identity{}, sentinel.ErrNotFound
	}
	return a.authority, nil
}

// Transfer moves amount of mint from one endpoint to another. Nothing changes
// when it fails.
func (l *Ledger) Transfer(ctx context.Context, mint domain.MintID, from, to domain.Identity, amount uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if amount == 0 || from == to {
		return ErrInvalidTransfer
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	mintSource := from == domain.Identity(mint)
	burnTarget := to == domain.Identity(mint)
	if mintSource || burnTarget {
		if _, ok := l.mints[mint]; !ok {
			return fmt.Errorf("mint %s: %w", mint, sentinel.ErrNotFound)
		}
	}

	var src *account
	if !mintSource {
		var ok bool
		src, ok = l.accounts[accountKey{account: from, mint: mint}]
		if !ok {
			return fmt.Errorf("source account %s: %w", from, sentinel.ErrNotFound)
		}
		if src.balance < amount {
			return ErrInsufficientFunds
		}
	}

	var dst *account
	if !burnTarget {
		key := accountKey{account: to, mint: mint}
		dst = l.accounts[key]
		if dst == nil {
			dst = &account{authority: to}
			l.accounts[key] = dst
		}
		if dst.balance > math.MaxUint64-amount {
			return ErrBalanceOverflow
		}
	}

	if src != nil {
		src.balance -= amount
	}
	if dst != nil {
		dst.balance += amount
	}
	return nil
}
