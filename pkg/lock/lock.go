package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired is returned when the lock is still held by someone else
// after the wait period.
var ErrNotAcquired = errors.New("lock not acquired")

// ReleaseFunc gives the lock back. Releasing a lock that already expired
// is not an error.
type ReleaseFunc func(ctx context.Context) error

// Locker grants mutual exclusion on a key across replicas.
type Locker interface {
	Acquire(ctx context.Context, key string) (ReleaseFunc, error)
}

type Config struct {
	Prefix string
	TTL    time.Duration
	Wait   time.Duration
	Retry  time.Duration
}

// release only deletes the key while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client redis.UniversalClient
	cfg    Config
}

func NewRedisLocker(client redis.UniversalClient, cfg Config) *RedisLocker {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Second
	}
	if cfg.Retry <= 0 {
		cfg.Retry = 25 * time.Millisecond
	}
	return &RedisLocker{client: client, cfg: cfg}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (ReleaseFunc, error) {
	key = l.cfg.Prefix + key
	token := uuid.New().String()
	deadline := time.Now().Add(l.cfg.Wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.cfg.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			return func(ctx context.Context) error {
				if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
					return fmt.Errorf("failed to release lock %s: %w", key, err)
				}
				return nil
			}, nil
		}

		if !time.Now().Before(deadline) {
			return nil, ErrNotAcquired
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.cfg.Retry):
		}
	}
}

// NopLocker always grants the lock. Used when no Redis is configured.
type NopLocker struct{}

func (NopLocker) Acquire(ctx context.Context, key string) (ReleaseFunc, error) {
	return func(context.Context) error { return nil }, nil
}
