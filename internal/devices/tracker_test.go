package devices

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisTracker(t *testing.T, cap int) (*RedisTracker, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewRedisTracker(rdb, "dev", cap), mr
}

func trackers(t *testing.T, cap int) map[string]Tracker {
	redisTracker, _ := newRedisTracker(t, cap)
	return map[string]Tracker{
		"redis":  redisTracker,
		"memory": NewMemoryTracker(cap),
	}
}

func TestTouchCreatesRecord(t *testing.T) {
	for name, tracker := range trackers(t, 10) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seen := time.Now().Truncate(time.Second)

			if err := tracker.Touch(ctx, "u1", "Mozilla/5.0", "1.2.3.4", seen); err != nil {
				t.Fatalf("Touch failed: %v", err)
			}

			records, err := tracker.List(ctx, "u1")
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(records) != 1 {
				t.Fatalf("got %d records, want 1", len(records))
			}
			if records[0].UserAgent != "Mozilla/5.0" || records[0].IPAddress != "1.2.3.4" {
				t.Fatalf("unexpected record %+v", records[0])
			}
			if !records[0].LastSeenAt.Equal(seen) {
				t.Fatalf("LastSeenAt = %v, want %v", records[0].LastSeenAt, seen)
			}
		})
	}
}

func TestTouchUpsertsSameDevice(t *testing.T) {
	for name, tracker := range trackers(t, 10) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first := time.Now().Add(-time.Hour).Truncate(time.Second)
			second := time.Now().Truncate(time.Second)

			if err := tracker.Touch(ctx, "u1", "Mozilla/5.0", "1.2.3.4", first); err != nil {
				t.Fatalf("Touch failed: %v", err)
			}
			if err := tracker.Touch(ctx, "u1", "Mozilla/5.0", "1.2.3.4", second); err != nil {
				t.Fatalf("Touch failed: %v", err)
			}

			records, err := tracker.List(ctx, "u1")
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(records) != 1 {
				t.Fatalf("same (ua, ip) must upsert, got %d records", len(records))
			}
			if !records[0].LastSeenAt.Equal(second) {
				t.Fatalf("LastSeenAt = %v, want refreshed %v", records[0].LastSeenAt, second)
			}
		})
	}
}

func TestStaleTouchDoesNotRollBackFresherRecord(t *testing.T) {
	for name, tracker := range trackers(t, 10) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			fresh := time.Now().Truncate(time.Second)
			stale := fresh.Add(-time.Hour)

			if err := tracker.Touch(ctx, "u1", "Mozilla/5.0", "1.2.3.4", fresh); err != nil {
				t.Fatalf("Touch failed: %v", err)
			}
			// Deferred touches can land out of order; the older timestamp
			// must lose.
			if err := tracker.Touch(ctx, "u1", "Mozilla/5.0", "1.2.3.4", stale); err != nil {
				t.Fatalf("Touch failed: %v", err)
			}

			records, err := tracker.List(ctx, "u1")
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(records) != 1 {
				t.Fatalf("got %d records, want 1", len(records))
			}
			if !records[0].LastSeenAt.Equal(fresh) {
				t.Fatalf("LastSeenAt rolled back to %v, want %v", records[0].LastSeenAt, fresh)
			}
		})
	}
}

func TestDistinctDevicesAccumulate(t *testing.T) {
	for name, tracker := range trackers(t, 10) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			now := time.Now()

			if err := tracker.Touch(ctx, "u1", "Mozilla/5.0", "1.2.3.4", now); err != nil {
				t.Fatalf("Touch failed: %v", err)
			}
			if err := tracker.Touch(ctx, "u1", "Mozilla/5.0", "5.6.7.8", now); err != nil {
				t.Fatalf("Touch failed: %v", err)
			}
			if err := tracker.Touch(ctx, "u1", "curl/8.0", "1.2.3.4", now); err != nil {
				t.Fatalf("Touch failed: %v", err)
			}

			records, err := tracker.List(ctx, "u1")
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(records) != 3 {
				t.Fatalf("got %d records, want 3", len(records))
			}
		})
	}
}

func TestCapEvictsOldest(t *testing.T) {
	for name, tracker := range trackers(t, 2) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Now().Add(-time.Hour).Truncate(time.Second)

			if err := tracker.Touch(ctx, "u1", "oldest", "1.1.1.1", base); err != nil {
				t.Fatalf("Touch failed: %v", err)
			}
			if err := tracker.Touch(ctx, "u1", "middle", "2.2.2.2", base.Add(time.Minute)); err != nil {
				t.Fatalf("Touch failed: %v", err)
			}
			if err := tracker.Touch(ctx, "u1", "newest", "3.3.3.3", base.Add(2*time.Minute)); err != nil {
				t.Fatalf("Touch failed: %v", err)
			}

			records, err := tracker.List(ctx, "u1")
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(records) != 2 {
				t.Fatalf("got %d records, want cap of 2", len(records))
			}
			for _, r := range records {
				if r.UserAgent == "oldest" {
					t.Fatal("oldest record should have been evicted")
				}
			}
		})
	}
}

func TestListIsNewestFirst(t *testing.T) {
	for name, tracker := range trackers(t, 10) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Now().Add(-time.Hour).Truncate(time.Second)

			if err := tracker.Touch(ctx, "u1", "old", "1.1.1.1", base); err != nil {
				t.Fatalf("Touch failed: %v", err)
			}
			if err := tracker.Touch(ctx, "u1", "new", "2.2.2.2", base.Add(time.Minute)); err != nil {
				t.Fatalf("Touch failed: %v", err)
			}

			records, err := tracker.List(ctx, "u1")
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if records[0].UserAgent != "new" {
				t.Fatalf("records[0] = %q, want newest first", records[0].UserAgent)
			}
		})
	}
}

func TestRedisOutageSurfacesError(t *testing.T) {
	tracker, mr := newRedisTracker(t, 10)
	mr.Close()

	err := tracker.Touch(context.Background(), "u1", "Mozilla/5.0", "1.2.3.4", time.Now())
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
