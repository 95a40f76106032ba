package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// WindowConfig describes one fixed window: at most MaxRequests per Window.
type WindowConfig struct {
	MaxRequests int
	Window      time.Duration
}

// Config holds the per-bucket window definitions keyed by bucket name.
type Config struct {
	Buckets map[string]WindowConfig
}

// Decision is the outcome of a single rate check.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter enforces per-(ip, bucket) request budgets using Redis counters.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// Check counts one request for the (ip, bucket) pair and reports whether it
// fits the window. The counter advances whether or not the request later
// succeeds; only window expiry resets it. Unknown buckets are allowed so a
// misconfigured route fails open at the routing layer, not here.
func (l *Limiter) Check(ctx context.Context, ip, bucket string) (Decision, error) {
	window, ok := l.config.Buckets[bucket]
	if !ok || window.MaxRequests <= 0 || ip == "" {
		return Decision{Allowed: true}, nil
	}

	key := counterKey(bucket, ip)
	count, err := l.incrementWithTTL(ctx, key, window.Window)
	if err != nil {
		return Decision{}, err
	}

	if count > int64(window.MaxRequests) {
		retryAfter, err := l.remainingWindow(ctx, key, window.Window)
		if err != nil {
			return Decision{}, err
		}
		return Decision{Allowed: false, RetryAfter: retryAfter}, nil
	}

	return Decision{
		Allowed:   true,
		Remaining: window.MaxRequests - int(count),
	}, nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}

func (l *Limiter) remainingWindow(ctx context.Context, key string, window time.Duration) (time.Duration, error) {
	ttl, err := l.redis.PTTL(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// A key with no TTL is mid-reset; report the full window rather than 0
	// so callers never advertise an immediate retry that would be denied.
	if ttl <= 0 {
		return window, nil
	}

	return ttl, nil
}

func counterKey(bucket, ip string) string {
	return "rl:" + bucket + ":" + ip
}
