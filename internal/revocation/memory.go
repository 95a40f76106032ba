package revocation

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process [Store] for tests and redis-less builds.
// It mirrors RedisStore semantics: idempotent revokes, lazy pruning of
// entries past their expiry.
type MemoryStore struct {
	mu      sync.Mutex
	revoked map[string]map[string]time.Time
}

// NewMemoryStore describes the newmemorystore operation and its observable behavior.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		revoked: make(map[string]map[string]time.Time),
	}
}

// Revoke describes the revoke operation and its observable behavior.
//
// Revoke may return an error when input validation, dependency calls, or security checks fail.
// Revoke does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) Revoke(_ context.Context, userID, tokenString string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.revoked[userID]
	if !ok {
		set = make(map[string]time.Time)
		s.revoked[userID] = set
	}

	now := time.Now()
	for digest, exp := range set {
		if exp.Before(now) {
			delete(set, digest)
		}
	}

	set[tokenDigest(tokenString)] = expiresAt
	return nil
}

// IsRevoked describes the isrevoked operation and its observable behavior.
//
// IsRevoked may return an error when input validation, dependency calls, or security checks fail.
// IsRevoked does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) IsRevoked(_ context.Context, userID, tokenString string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.revoked[userID]
	if !ok {
		return false, nil
	}

	_, revoked := set[tokenDigest(tokenString)]
	return revoked, nil
}
