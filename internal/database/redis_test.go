package database

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return WrapRedis(client), mr
}

func TestTryLock_ExclusiveUntilReleased(t *testing.T) {
	rdb, mr := setupRedis(t)
	ctx := context.Background()

	lock, err := rdb.TryLock(ctx, "reminder:run:2024-01-03", "run-a", time.Hour)
	require.NoError(t, err)
	require.NotNil(t, lock)
	assert.True(t, mr.Exists("reminder:run:2024-01-03"))

	_, err = rdb.TryLock(ctx, "reminder:run:2024-01-03", "run-b", time.Hour)
	assert.ErrorIs(t, err, ErrLockHeld)

	require.NoError(t, lock.Release(ctx))
	assert.False(t, mr.Exists("reminder:run:2024-01-03"))

	again, err := rdb.TryLock(ctx, "reminder:run:2024-01-03", "run-b", time.Hour)
	require.NoError(t, err)
	assert.NotNil(t, again)
}

func TestLockRelease_DoesNotDropForeignLock(t *testing.T) {
	rdb, mr := setupRedis(t)
	ctx := context.Background()

	lock, err := rdb.TryLock(ctx, "reminder:run:2024-01-03", "run-a", time.Minute)
	require.NoError(t, err)

	// Lock expired and somebody else took it over.
	mr.FastForward(2 * time.Minute)
	_, err = rdb.TryLock(ctx, "reminder:run:2024-01-03", "run-b", time.Minute)
	require.NoError(t, err)

	require.NoError(t, lock.Release(ctx))
	got, err := mr.Get("reminder:run:2024-01-03")
	require.NoError(t, err)
	assert.Equal(t, "run-b", got)
}

func TestRedisHealthCheck(t *testing.T) {
	rdb, mr := setupRedis(t)
	assert.NoError(t, rdb.HealthCheck(context.Background()))

	mr.Close()
	assert.Error(t, rdb.HealthCheck(context.Background()))
}
