// Package voting tracks the votes and proposals that pin a token owner
// record's deposit until they resolve.
package voting

import (
	"context"
	"errors"
	"sync"

	"realmgov/internal/governance/models"
	"realmgov/pkg/domain"
)

// ErrNoHold is returned when releasing a hold that was never placed.
var ErrNoHold = errors.New("no outstanding hold")

// Kind selects which counter a hold affects.
type Kind string

const (
	KindVote     Kind = "votes"
	KindProposal Kind = "proposals"
)

// Tracker is an in-process hold oracle. Voting collaborators Place a hold when
// a vote is cast or a proposal created and Release it when it resolves.
type Tracker struct {
	mu    sync.RWMutex
	holds map[domain.Pubkey]models.HoldStatus
}

func NewTracker() *Tracker {
	return &Tracker{holds: make(map[domain.Pubkey]models.HoldStatus)}
}

func (t *Tracker) HoldStatus(ctx context.Context, record domain.Pubkey) (models.HoldStatus, error) {
	if err := ctx.Err(); err != nil {
		return models.HoldStatus{}, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.holds[record], nil
}

func (t *Tracker) Place(_ context.Context, record domain.Pubkey, kind Kind) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	h := t.holds[record]
	switch kind {
	case KindVote:
		h.OutstandingVotes++
	case KindProposal:
		h.OutstandingProposals++
	default:
		return errors.New("unknown hold kind")
	}
	t.holds[record] = h
	return nil
}

func (t *Tracker) Release(_ context.Context, record domain.Pubkey, kind Kind) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	h := t.holds[record]
	switch kind {
	case KindVote:
		if h.OutstandingVotes == 0 {
			return ErrNoHold
		}
		h.OutstandingVotes--
	case KindProposal:
		if h.OutstandingProposals == 0 {
			return ErrNoHold
		}
		h.OutstandingProposals--
	default:
		return errors.New("unknown hold kind")
	}
	if h.Blocked() {
		t.holds[record] = h
	} else {
		delete(t.holds, record)
	}
	return nil
}
