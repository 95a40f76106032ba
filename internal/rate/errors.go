package rate

import "errors"

// ErrRedisUnavailable is an exported constant or variable used by the session integrity core.
var ErrRedisUnavailable = errors.New("rate limiter redis unavailable")
