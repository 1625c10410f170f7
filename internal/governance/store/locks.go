package store

import (
	"context"
	"sync"
	"time"

	"realmgov/pkg/domain"
	dErrors "realmgov/pkg/domain-errors"
)

// defaultTxTimeout bounds a record transaction whose context has no deadline.
const defaultTxTimeout = 5 * time.Second

// recordLocks hands out one lock per record address. Entries are reference
// counted and dropped when the last holder or waiter leaves, so the map only
// holds addresses that are in use.
type recordLocks struct {
	mu    sync.Mutex
	locks map[domain.Pubkey]*recordLock
}

type recordLock struct {
	ch   chan struct{}
	refs int
}

func newRecordLocks() *recordLocks {
	return &recordLocks{locks: make(map[domain.Pubkey]*recordLock)}
}

// acquire blocks until address is free or ctx is done.
func (l *recordLocks) acquire(ctx context.Context, address domain.Pubkey) (func(), error) {
	l.mu.Lock()
	lock, ok := l.locks[address]
	if !ok {
		lock = &recordLock{ch: make(chan struct{}, 1)}
		l.locks[address] = lock
	}
	lock.refs++
	l.mu.Unlock()

	select {
	case lock.ch <- struct{}{}:
		return func() {
			<-lock.ch
			l.release(address, lock)
		}, nil
	case <-ctx.Done():
		l.release(address, lock)
		return nil, ctx.Err()
	}
}

func (l *recordLocks) release(address domain.Pubkey, lock *recordLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, address)
	}
}

// size reports how many addresses currently have holders or waiters.
func (l *recordLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

// lockRecord applies the default timeout and acquires the record lock,
// translating cancellation into a timeout error.
func lockRecord(ctx context.Context, locks *recordLocks, address domain.Pubkey, timeout time.Duration) (context.Context, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	cancel := func() {}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}
	release, err := locks.acquire(ctx, address)
	if err != nil {
		cancel()
		return nil, nil, dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return ctx, func() {
		release()
		cancel()
	}, nil
}
