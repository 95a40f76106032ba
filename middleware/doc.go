// Package middleware exposes HTTP middleware adapters that enforce
// authentication, admin access, and rate limits on top of authcore.Engine.
//
// # Guards
//
//   - [Guard] — authenticates the Authorization header and injects the
//     resolved identity into the request context.
//   - [RequireAdmin] — rejects non-admin identities; must run inside [Guard].
//   - [RateLimit] — counts the request against a named bucket before the
//     handler runs.
//
// Each guard reads request metadata, calls the engine, and translates the
// engine's sentinel errors into HTTP status codes and JSON bodies.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself — all decisions are delegated to
// the engine.
//
// # What this package must NOT do
//
//   - Parse or create tokens directly (delegates to Engine).
//   - Access Redis (Engine handles I/O).
//   - Make authorization decisions beyond pass/reject from the Engine.
package middleware
