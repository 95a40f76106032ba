// Package rate enforces fixed-window per-IP request budgets with Redis
// counters.
//
// Counters use INCR with an EXPIRE applied on the first hit of a window, so
// the increment is atomic per key and the window boundary is owned by Redis
// rather than by process clocks. Each (ip, bucket) pair has an independent
// counter; the general traffic bucket and the credential-endpoint bucket
// never share a window.
package rate
