package authcore

import (
	"context"
	"time"

	"github.com/commercekit/authcore/token"
)

// User is the account record returned by [UserProvider]. It carries the
// credential hash, admin and blocked flags, and nothing else; sessions,
// revocation state, and device history are owned by the engine's stores.
type User struct {
	ID             string
	Identifier     string
	CredentialHash string
	IsAdmin        bool
	IsBlocked      bool
}

// Summary returns the serializable view of the user with the credential
// hash stripped. Login responses must never echo credential material.
func (u User) Summary() UserSummary {
	return UserSummary{
		ID:         u.ID,
		Identifier: u.Identifier,
		IsAdmin:    u.IsAdmin,
	}
}

// UserSummary defines a public type used by authcore APIs.
//
// UserSummary instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type UserSummary struct {
	ID         string `json:"id"`
	Identifier string `json:"identifier"`
	IsAdmin    bool   `json:"isAdmin"`
}

// Identity is the authenticated principal produced by [Engine.Authenticate].
// It is constructed once per request and passed by reference through the
// call chain; downstream handlers must treat it as read-only.
type Identity struct {
	User   User
	Token  string
	Claims token.Claims
}

// LoginResult is returned by [Engine.Login].
type LoginResult struct {
	Token  string
	Claims token.Claims
	User   UserSummary
}

// DeviceRecord is one recently-seen device for a user, keyed by the
// (userAgent, ipAddress) pair.
type DeviceRecord struct {
	UserAgent  string    `json:"userAgent"`
	IPAddress  string    `json:"ipAddress"`
	LastSeenAt time.Time `json:"lastSeenAt"`
}

// UserProvider is the interface the host application implements to connect
// authcore to its user database. Lookups are the only potentially suspending
// calls on the authentication path; implementations should honor ctx
// cancellation.
//
// A missing user is reported via the (User, bool, error) form with ok=false
// and a nil error. A non-nil error means the backing store itself failed and
// is mapped to [ErrAuthUnavailable], never to a security verdict.
type UserProvider interface {
	GetUserByID(ctx context.Context, userID string) (User, bool, error)
	GetUserByIdentifier(ctx context.Context, identifier string) (User, bool, error)
	SetBlocked(ctx context.Context, userID string, blocked bool) error
}

// CredentialVerifier checks a presented password against a stored credential
// hash. The hashing scheme is the host application's concern; authcore only
// consumes the verdict.
type CredentialVerifier interface {
	Verify(password, credentialHash string) (bool, error)
}

// CredentialVerifierFunc adapts a function to the [CredentialVerifier]
// interface.
type CredentialVerifierFunc func(password, credentialHash string) (bool, error)

// Verify describes the verify operation and its observable behavior.
func (f CredentialVerifierFunc) Verify(password, credentialHash string) (bool, error) {
	return f(password, credentialHash)
}
