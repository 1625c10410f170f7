package voting

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/redis/go-redis/v9"

	"realmgov/internal/governance/models"
	"realmgov/pkg/domain"
)

const holdKeyPrefix = "gov:holds:"

// releaseScript decrements a hold counter without letting it go negative.
// Returns -1 when there was nothing to release.
var releaseScript = redis.NewScript(`
local n = tonumber(redis.call('GET', KEYS[1]) or '0')
if n <= 0 then
	return -1
end
if n == 1 then
	redis.call('DEL', KEYS[1])
	return 0
end
return redis.call('DECR', KEYS[1])
`)

// RedisOracle keeps hold counters in Redis so every service instance and the
// voting collaborators see the same view.
type RedisOracle struct {
	client *redis.Client
}

func NewRedisOracle(client *redis.Client) *RedisOracle {
	return &RedisOracle{client: client}
}

func holdKey(kind Kind, record domain.Pubkey) string {
	return holdKeyPrefix + string(kind) + ":" + record.String()
}

func (o *RedisOracle) HoldStatus(ctx context.Context, record domain.Pubkey) (models.HoldStatus, error) {
	vals, err := o.client.MGet(ctx, holdKey(KindVote, record), holdKey(KindProposal, record)).Result()
	if err != nil {
		return models.HoldStatus{}, fmt.Errorf("read hold counters: %w", err)
	}
	votes, err := parseCounter(vals[0])
	if err != nil {
		return models.HoldStatus{}, err
	}
	proposals, err := parseCounter(vals[1])
	if err != nil {
		return models.HoldStatus{}, err
	}
	return models.HoldStatus{OutstandingVotes: votes, OutstandingProposals: proposals}, nil
}

func (o *RedisOracle) Place(ctx context.Context, record domain.Pubkey, kind Kind) error {
	if kind != KindVote && kind != KindProposal {
		return errors.New("unknown hold kind")
	}
	if err := o.client.Incr(ctx, holdKey(kind, record)).Err(); err != nil {
		return fmt.Errorf("place hold: %w", err)
	}
	return nil
}

func (o *RedisOracle) Release(ctx context.Context, record domain.Pubkey, kind Kind) error {
	if kind != KindVote && kind != KindProposal {
		return errors.New("unknown hold kind")
	}
	n, err := releaseScript.Run(ctx, o.client, []string{holdKey(kind, record)}).Int64()
	if err != nil {
		return fmt.Errorf("release hold: %w", err)
	}
	if n < 0 {
		return ErrNoHold
	}
	return nil
}

func parseCounter(v any) (uint32, error) {
	if v == nil {
		return 0, nil
	}
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected hold counter type %T", v)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse hold counter: %w", err)
	}
	if n <= 0 {
		return 0, nil
	}
	if n > math.MaxUint32 {
		return math.MaxUint32, nil
	}
	return uint32(n), nil
}
