package devices

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTracker keeps one hash of device records per user: field is the
// (userAgent, ip) key, value is the last-seen unix timestamp.
type RedisTracker struct {
	redis      redis.UniversalClient
	prefix     string
	maxPerUser int
}

// NewRedisTracker creates a [RedisTracker]. An empty prefix defaults to
// "dev"; maxPerUser <= 0 disables the cap.
func NewRedisTracker(redisClient redis.UniversalClient, prefix string, maxPerUser int) *RedisTracker {
	if prefix == "" {
		prefix = "dev"
	}
	return &RedisTracker{
		redis:      redisClient,
		prefix:     prefix,
		maxPerUser: maxPerUser,
	}
}

func (t *RedisTracker) key(userID string) string {
	return t.prefix + ":" + userID
}

// Touch describes the touch operation and its observable behavior.
//
// Touch may return an error when input validation, dependency calls, or security checks fail.
// Touch does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (t *RedisTracker) Touch(ctx context.Context, userID, userAgent, ip string, seenAt time.Time) error {
	key := t.key(userID)
	field := fieldKey(userAgent, ip)
	incoming := seenAt.Unix()

	// Last-writer-wins by timestamp: a stale deferred touch must not roll
	// back a fresher record for the same device.
	current, err := t.redis.HGet(ctx, key, field).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err == nil {
		if stored, parseErr := strconv.ParseInt(current, 10, 64); parseErr == nil && stored > incoming {
			return nil
		}
	}

	if err := t.redis.HSet(ctx, key, field, strconv.FormatInt(incoming, 10)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if t.maxPerUser > 0 {
		if err := t.evictOverflow(ctx, key, field); err != nil {
			return err
		}
	}

	return nil
}

// evictOverflow removes the oldest records until the hash fits the cap.
// The just-written field is never the eviction victim, even when its
// timestamp ties the oldest.
func (t *RedisTracker) evictOverflow(ctx context.Context, key, keep string) error {
	entries, err := t.redis.HGetAll(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if len(entries) <= t.maxPerUser {
		return nil
	}

	type aged struct {
		field string
		seen  int64
	}
	candidates := make([]aged, 0, len(entries))
	for field, value := range entries {
		if field == keep {
			continue
		}
		seen, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			seen = 0
		}
		candidates = append(candidates, aged{field: field, seen: seen})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].seen < candidates[j].seen })

	overflow := len(entries) - t.maxPerUser
	for i := 0; i < overflow && i < len(candidates); i++ {
		if err := t.redis.HDel(ctx, key, candidates[i].field).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}

	return nil
}

// List describes the list operation and its observable behavior.
//
// List may return an error when input validation, dependency calls, or security checks fail.
// List does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (t *RedisTracker) List(ctx context.Context, userID string) ([]Record, error) {
	entries, err := t.redis.HGetAll(ctx, t.key(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	records := make([]Record, 0, len(entries))
	for field, value := range entries {
		seen, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue
		}
		userAgent, ip := splitFieldKey(field)
		records = append(records, Record{
			UserAgent:  userAgent,
			IPAddress:  ip,
			LastSeenAt: time.Unix(seen, 0),
		})
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].LastSeenAt.After(records[j].LastSeenAt)
	})

	return records, nil
}
