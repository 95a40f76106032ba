package revocation

import (
	"context"
	"errors"
	"time"
)

// ErrStoreUnavailable is an exported constant or variable used by the session integrity core.
var ErrStoreUnavailable = errors.New("revocation store unavailable")

// Store is the injected revocation backend. Revoke must be idempotent;
// IsRevoked must see every Revoke that completed before it on the same
// store.
type Store interface {
	Revoke(ctx context.Context, userID, tokenString string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, userID, tokenString string) (bool, error)
}
