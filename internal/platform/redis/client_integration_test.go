//go:build integration

package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"realmgov/internal/platform/config"
	redisplatform "realmgov/internal/platform/redis"
	"realmgov/pkg/testutil/containers"
)

func TestOpenAndHealth(t *testing.T) {
	rc := containers.GetManager().GetRedis(t)
	ctx := context.Background()

	client, err := redisplatform.Open(ctx, config.RedisConfig{URL: rc.URL, PoolSize: 2}, nil)
	require.NoError(t, err)
	require.NoError(t, client.Health(ctx))
	require.NoError(t, client.Close())
	require.Error(t, client.Health(ctx), "closed client reports unhealthy")
}

func TestOpenGivesUpWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	_, err := redisplatform.Open(ctx, config.RedisConfig{URL: "redis://127.0.0.1:1", DialTimeout: 100 * time.Millisecond}, nil)
	require.Error(t, err)
}
