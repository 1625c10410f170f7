package jwttoken

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReplayGuard records token ids. Claim returns false when jti was seen before
// and has not yet expired.
type ReplayGuard interface {
	Claim(ctx context.Context, jti string, until time.Time) (bool, error)
}

// InMemoryReplayGuard is a process-local ReplayGuard.
type InMemoryReplayGuard struct {
	mu   sync.Mutex
	seen map[string]time.Time
	now  func() time.Time
}

func NewInMemoryReplayGuard() *InMemoryReplayGuard {
	return &InMemoryReplayGuard{seen: make(map[string]time.Time), now: time.Now}
}

func (g *InMemoryReplayGuard) Claim(_ context.Context, jti string, until time.Time) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for k, exp := range g.seen {
		if !exp.After(now) {
			delete(g.seen, k)
		}
	}
	if _, ok := g.seen[jti]; ok {
		return false, nil
	}
	g.seen[jti] = until
	return true, nil
}

const replayKeyPrefix = "gov:jti:"

// RedisReplayGuard shares seen token ids across instances with SET NX.
type RedisReplayGuard struct {
	client *redis.Client
}

func NewRedisReplayGuard(client *redis.Client) *RedisReplayGuard {
	return &RedisReplayGuard{client: client}
}

func (g *RedisReplayGuard) Claim(ctx context.Context, jti string, until time.Time) (bool, error) {
	ttl := time.Until(until)
	if ttl < time.Second {
		ttl = time.Second
	}
	ok, err := g.client.SetNX(ctx, replayKeyPrefix+jti, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim jti: %w", err)
	}
	return ok, nil
}
