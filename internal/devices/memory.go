package devices

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryTracker is an in-process [Tracker] for tests and redis-less builds.
type MemoryTracker struct {
	mu         sync.Mutex
	maxPerUser int
	seen       map[string]map[string]time.Time
}

// NewMemoryTracker describes the newmemorytracker operation and its observable behavior.
func NewMemoryTracker(maxPerUser int) *MemoryTracker {
	return &MemoryTracker{
		maxPerUser: maxPerUser,
		seen:       make(map[string]map[string]time.Time),
	}
}

// Touch describes the touch operation and its observable behavior.
//
// Touch may return an error when input validation, dependency calls, or security checks fail.
// Touch does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (t *MemoryTracker) Touch(_ context.Context, userID, userAgent, ip string, seenAt time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	records, ok := t.seen[userID]
	if !ok {
		records = make(map[string]time.Time)
		t.seen[userID] = records
	}

	field := fieldKey(userAgent, ip)

	// Last-writer-wins by timestamp: a stale deferred touch must not roll
	// back a fresher one for the same device.
	if current, ok := records[field]; ok && current.After(seenAt) {
		return nil
	}
	records[field] = seenAt

	if t.maxPerUser > 0 && len(records) > t.maxPerUser {
		oldestField := ""
		var oldest time.Time
		for f, ts := range records {
			if f == field {
				continue
			}
			if oldestField == "" || ts.Before(oldest) {
				oldestField = f
				oldest = ts
			}
		}
		if oldestField != "" {
			delete(records, oldestField)
		}
	}

	return nil
}

// List describes the list operation and its observable behavior.
//
// List may return an error when input validation, dependency calls, or security checks fail.
// List does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (t *MemoryTracker) List(_ context.Context, userID string) ([]Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	records := make([]Record, 0, len(t.seen[userID]))
	for field, ts := range t.seen[userID] {
		userAgent, ip := splitFieldKey(field)
		records = append(records, Record{
			UserAgent:  userAgent,
			IPAddress:  ip,
			LastSeenAt: ts,
		})
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].LastSeenAt.After(records[j].LastSeenAt)
	})

	return records, nil
}
