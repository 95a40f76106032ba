// Package revocation tracks tokens explicitly invalidated before their
// natural expiry.
//
// # Design
//
// Each user owns one Redis sorted set. Members are SHA-256 digests of the
// revoked token string (plaintext tokens are never persisted), scored by the
// token's expiry. Revoking is an idempotent ZADD; a lazy prune on each write
// drops digests whose score has passed, so the set is bounded by the number
// of unexpired revoked tokens rather than growing for the life of the
// account. A token past its expiry is rejected by the codec before this
// package is ever consulted, so pruning cannot un-revoke anything a caller
// could still use.
//
// The [Store] interface is the injection point: production wires
// [RedisStore], tests wire [MemoryStore].
package revocation
