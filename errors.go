package authcore

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrMissingToken is an exported constant or variable used by the session integrity core.
	ErrMissingToken = errors.New("missing bearer token")
	// ErrTokenInvalid is an exported constant or variable used by the session integrity core.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is an exported constant or variable used by the session integrity core.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenRevoked is an exported constant or variable used by the session integrity core.
	ErrTokenRevoked = errors.New("token revoked")
	// ErrUserNotFound is an exported constant or variable used by the session integrity core.
	ErrUserNotFound = errors.New("user not found")
	// ErrAccountBlocked is an exported constant or variable used by the session integrity core.
	ErrAccountBlocked = errors.New("account blocked")
	// ErrForbidden is an exported constant or variable used by the session integrity core.
	ErrForbidden = errors.New("admin privileges required")
	// ErrInvalidCredentials is an exported constant or variable used by the session integrity core.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRateLimited is an exported constant or variable used by the session integrity core.
	ErrRateLimited = errors.New("rate limited")
	// ErrAuthUnavailable is an exported constant or variable used by the session integrity core.
	//
	// It marks infrastructure failure during an authentication decision
	// (user store or revocation store unreachable). It is deliberately
	// distinct from every security verdict: an outage must map to 503,
	// never to "revoked" or "not found".
	ErrAuthUnavailable = errors.New("authentication backend unavailable")
	// ErrEngineNotReady is an exported constant or variable used by the session integrity core.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// Bucket identifies a rate-limit window class.
//
// Bucket instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Bucket string

const (
	// BucketGeneral is an exported constant or variable used by the session integrity core.
	BucketGeneral Bucket = "general"
	// BucketAuth is an exported constant or variable used by the session integrity core.
	BucketAuth Bucket = "auth"
)

// LimitError reports a denied rate-limit check. It unwraps to
// [ErrRateLimited] so callers can use errors.Is, and carries the bucket and
// remaining window so the HTTP layer can shape its 429 response.
type LimitError struct {
	Bucket     Bucket
	RetryAfter time.Duration
}

// Error describes the error operation and its observable behavior.
func (e *LimitError) Error() string {
	return fmt.Sprintf("rate limited (%s bucket, retry after %s)", e.Bucket, e.RetryAfter)
}

// Unwrap describes the unwrap operation and its observable behavior.
func (e *LimitError) Unwrap() error {
	return ErrRateLimited
}
