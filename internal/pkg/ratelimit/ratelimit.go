// Package ratelimit implements the TTL-cache throttles guarding OTP
// delivery and login attempts.
package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter is a redis-backed throttle with two shapes: a one-shot cooldown
// (AllowOnce) and a bounded failure counter (Fail/Reset).
type Limiter interface {
	// AllowOnce atomically tests and sets a cooldown. It returns true when
	// the key was free (the cooldown is now armed for window) and false
	// when a cooldown is already running. A running cooldown is never
	// extended by further calls.
	AllowOnce(ctx context.Context, key string, window time.Duration) (bool, error)

	// Fail records one failure under key and reports whether the count has
	// reached max. The window starts at the first failure and is not
	// extended by later ones.
	Fail(ctx context.Context, key string, window time.Duration, max int64) (bool, error)

	// Count reads a failure counter without touching it. A missing key
	// counts as zero.
	Count(ctx context.Context, key string) (int64, error)

	// Reset clears a failure counter.
	Reset(ctx context.Context, key string) error
}

// Redis implements Limiter on a redis client.
type Redis struct {
	client *redis.Client
	prefix string
}

// New returns a Redis limiter. Keys are namespaced under "ratelimit:".
func New(client *redis.Client) *Redis {
	return &Redis{
		client: client,
		prefix: "ratelimit:",
	}
}

func (l *Redis) AllowOnce(ctx context.Context, key string, window time.Duration) (bool, error) {
	armed, err := l.client.SetNX(ctx, l.prefix+key, "1", window).Result()
	if err != nil {
		return false, err
	}
	return armed, nil
}

func (l *Redis) Fail(ctx context.Context, key string, window time.Duration, max int64) (bool, error) {
	fk := l.prefix + key

	count, err := l.client.Incr(ctx, fk).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, fk, window).Err(); err != nil {
			return false, err
		}
	}
	return count >= max, nil
}

func (l *Redis) Count(ctx context.Context, key string) (int64, error) {
	count, err := l.client.Get(ctx, l.prefix+key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (l *Redis) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.prefix+key).Err()
}
