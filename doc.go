// Package authcore provides the session and token integrity core for an
// e-commerce backend: bearer token issuance and validation, per-user token
// revocation, device provenance tracking, admin gating, and per-IP request
// throttling.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (Identity, LoginResult, MetricsSnapshot, etc.). Internal
// coordination — rate limiting, revocation storage, device tracking — lives
// under internal/ and is never exported. HTTP adapters live in middleware/
// and depend only on the public surface.
//
// # What this package must NOT do
//
//   - Own user persistence. Account records are reached exclusively through
//     the [UserProvider] interface implemented by the host application.
//   - Hash passwords. Credential verification is delegated to an injected
//     [CredentialVerifier]; authcore never sees a hashing scheme.
//   - Expose Redis clients or internal key layouts in its public API.
//
// # Performance contract
//
// Authenticate is the hot path. Signature and expiry checks are pure and run
// before any store lookup, so malformed or expired tokens never cost a
// round trip. A successful Authenticate performs exactly one user load and
// one revocation check; device tracking happens off the request goroutine.
package authcore
