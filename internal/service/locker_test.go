package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentease/rent-ledger/internal/service"
)

func TestSweepLocker(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	locker := service.NewSweepLocker(client, time.Minute)
	ctx := context.Background()

	release, acquired, err := locker.TryLock(ctx, "late-fees")
	require.NoError(t, err)
	assert.True(t, acquired)

	// second acquisition while held fails
	_, acquired2, err := locker.TryLock(ctx, "late-fees")
	require.NoError(t, err)
	assert.False(t, acquired2)

	// a differently named lock is independent
	releaseOther, acquiredOther, err := locker.TryLock(ctx, "notifications")
	require.NoError(t, err)
	assert.True(t, acquiredOther)
	releaseOther()

	// releasing makes the lock available again
	release()
	release3, acquired3, err := locker.TryLock(ctx, "late-fees")
	require.NoError(t, err)
	assert.True(t, acquired3)
	release3()
}

func TestSweepLockerTTLExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	locker := service.NewSweepLocker(client, time.Minute)
	ctx := context.Background()

	_, acquired, err := locker.TryLock(ctx, "late-fees")
	require.NoError(t, err)
	require.True(t, acquired)

	// a crashed holder never releases; the TTL unblocks the next run
	mr.FastForward(2 * time.Minute)

	release, acquired, err := locker.TryLock(ctx, "late-fees")
	require.NoError(t, err)
	assert.True(t, acquired)
	release()
}

func TestSweepLockerNilClientAlwaysGrants(t *testing.T) {
	var locker *service.SweepLocker

	release, acquired, err := locker.TryLock(context.Background(), "anything")
	assert.NoError(t, err)
	assert.True(t, acquired)
	release()
}
