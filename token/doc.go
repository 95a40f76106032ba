// Package token signs and verifies the opaque bearer tokens issued by the
// session integrity core.
//
// # Design
//
// Tokens are HS256 JWTs carrying subject, issued-at, expiry, and a random
// jti. Verification is pure and stateless: it consults no store, so the
// engine can reject forged or expired tokens before spending a round trip.
//
// # What this package must NOT do
//
//   - Consult revocation or user state.
//   - Import authcore or any sibling package.
package token
