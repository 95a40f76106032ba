// Package devices records per-user device provenance: which (userAgent, ip)
// pairs were recently seen, and when.
//
// Tracking is telemetry, not a security control. Callers treat every error
// from this package as ignorable; nothing here may influence an
// authentication verdict. History is capped per user, with the oldest
// record evicted first.
package devices
