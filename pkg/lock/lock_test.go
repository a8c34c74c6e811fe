package lock

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T, cfg Config) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisLocker(client, cfg), mr
}

func TestRedisLocker_ExclusiveUntilReleased(t *testing.T) {
	locker, mr := newTestLocker(t, Config{Prefix: "slot:", TTL: time.Second, Wait: 0})
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "doc-1:2024-06-01:10:00")
	require.NoError(t, err)
	assert.True(t, mr.Exists("slot:doc-1:2024-06-01:10:00"))

	_, err = locker.Acquire(ctx, "doc-1:2024-06-01:10:00")
	assert.ErrorIs(t, err, ErrNotAcquired)

	require.NoError(t, release(ctx))
	assert.False(t, mr.Exists("slot:doc-1:2024-06-01:10:00"))

	release, err = locker.Acquire(ctx, "doc-1:2024-06-01:10:00")
	require.NoError(t, err)
	require.NoError(t, release(ctx))
}

func TestRedisLocker_ReleaseDoesNotDeleteOtherHoldersLock(t *testing.T) {
	locker, mr := newTestLocker(t, Config{TTL: time.Second})
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "k")
	require.NoError(t, err)

	// lock expired and was taken by another replica
	require.NoError(t, mr.Set("k", "someone-else"))

	require.NoError(t, release(ctx))
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestRedisLocker_ExpiresAfterTTL(t *testing.T) {
	locker, mr := newTestLocker(t, Config{TTL: 500 * time.Millisecond})
	ctx := context.Background()

	_, err := locker.Acquire(ctx, "k")
	require.NoError(t, err)

	mr.FastForward(time.Second)

	release, err := locker.Acquire(ctx, "k")
	require.NoError(t, err)
	require.NoError(t, release(ctx))
}

func TestNopLocker(t *testing.T) {
	release, err := NopLocker{}.Acquire(context.Background(), "anything")
	require.NoError(t, err)
	assert.NoError(t, release(context.Background()))
}
