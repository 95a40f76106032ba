package middleware

import (
	"net/http"
	"strconv"
	"time"

	authcore "github.com/commercekit/authcore"
)

// RateLimit counts the request against the given bucket before the handler
// runs. Denials answer 429 with a Retry-After header; the auth bucket gets
// its own response code so login throttling is distinguishable from general
// throttling on the client side.
func RateLimit(engine *authcore.Engine, bucket authcore.Bucket) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := RequestContext(r)
			if err := engine.CheckRate(ctx, bucket); err != nil {
				writeRateLimitError(w, bucket, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeRateLimitError(w http.ResponseWriter, bucket authcore.Bucket, err error) {
	var limitErr *authcore.LimitError
	if !asLimitError(err, &limitErr) {
		writeEngineError(w, err)
		return
	}

	if limitErr.RetryAfter > 0 {
		seconds := int(limitErr.RetryAfter / time.Second)
		if seconds < 1 {
			seconds = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	code := "RATE_LIMIT_EXCEEDED"
	if bucket == authcore.BucketAuth {
		code = "LOGIN_LIMIT_EXCEEDED"
	}
	writeError(w, http.StatusTooManyRequests, "too many requests, please try again later", code)
}
