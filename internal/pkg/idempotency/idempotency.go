package idempotency

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker guards an operation so only one caller at a time runs it for a
// given key.
type Locker interface {
	// Acquire takes the lock for key, returning false when another caller
	// already holds it.
	Acquire(ctx context.Context, key string) (bool, error)

	// Release frees the lock for key.
	Release(ctx context.Context, key string) error
}

// RedisLocker implements Locker on top of Redis SET NX with a TTL so a
// crashed holder cannot wedge the key forever.
type RedisLocker struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedisLocker creates a RedisLocker. Keys are namespaced under prefix and
// expire after ttl.
func NewRedisLocker(client redis.Cmdable, prefix string, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, prefix: prefix, ttl: ttl}
}

// Acquire implements the Locker interface.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (bool, error) {
	return l.client.SetNX(ctx, l.prefix+":"+key, "1", l.ttl).Result()
}

// Release implements the Locker interface.
func (l *RedisLocker) Release(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.prefix+":"+key).Err()
}
