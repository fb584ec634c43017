package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tablesight/tablesight-backend/pkg/env"
)

const defaultTTL = 25 * time.Hour

// Lock coordinates exclusive runs across processes.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// Store defines the operations used by RedisLock.
type Store interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// RedisLock implements Lock using Redis SETNX + TTL. A RedisLock value tracks
// its own owner token, so build one per critical section.
type RedisLock struct {
	client Store
	key    string
	ttl    time.Duration
	owner  string
}

// NewRedisLock constructs a Redis-backed lock.
func NewRedisLock(client Store, key string, ttl time.Duration) (*RedisLock, error) {
	if client == nil {
		return nil, errors.New("redis client required for lock")
	}
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisLock{client: client, key: key, ttl: ttl}, nil
}

// Key returns the redis key guarded by the lock.
func (l *RedisLock) Key() string {
	return l.key
}

// Acquire tries to own the lock for the configured TTL. The stored value names
// the holding instance.
func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	owner := env.InstanceID() + "/" + uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, owner, l.ttl)
	if err != nil {
		return false, fmt.Errorf("setnx: %w", err)
	}
	if ok {
		l.owner = owner
	}
	return ok, nil
}

// Release frees the lock only if the owner value still matches.
func (l *RedisLock) Release(ctx context.Context) error {
	if l.owner == "" {
		return nil
	}
	value, err := l.client.Get(ctx, l.key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			l.owner = ""
			return nil
		}
		return fmt.Errorf("read lock owner: %w", err)
	}
	if value != l.owner {
		l.owner = ""
		return nil
	}
	if err := l.client.Del(ctx, l.key); err != nil {
		return fmt.Errorf("delete lock: %w", err)
	}
	l.owner = ""
	return nil
}

// Factory builds locks for a key on demand.
type Factory func(key string) (Lock, error)

// NewRedisFactory returns a Factory producing RedisLocks with a shared TTL.
func NewRedisFactory(client Store, ttl time.Duration) Factory {
	return func(key string) (Lock, error) {
		return NewRedisLock(client, key, ttl)
	}
}
