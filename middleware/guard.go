package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	authcore "github.com/commercekit/authcore"
)

type identityContextKey struct{}

// IdentityFromContext returns the identity injected by [Guard], if any.
func IdentityFromContext(ctx context.Context) (*authcore.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(*authcore.Identity)
	return identity, ok
}

// Guard authenticates the Authorization header via the engine and injects
// the resolved [authcore.Identity] into the request context. Failures are
// written as JSON with the status mapped from the engine's sentinel errors.
func Guard(engine *authcore.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				writeError(w, http.StatusUnauthorized, "authentication required", "")
				return
			}

			ctx := RequestContext(r)
			identity, err := engine.Authenticate(ctx, r.Header.Get("Authorization"))
			if err != nil {
				writeEngineError(w, err)
				return
			}

			ctx = context.WithValue(ctx, identityContextKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose identity is not an admin. It must be
// mounted inside [Guard]; without an identity in the context the request is
// treated as unauthenticated.
func RequireAdmin(engine *authcore.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "authentication required", "")
				return
			}

			if err := engine.RequireAdmin(r.Context(), identity); err != nil {
				writeEngineError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequestContext derives a context carrying the request's client IP and
// User-Agent so the engine can rate limit and record device provenance.
func RequestContext(r *http.Request) context.Context {
	ctx := authcore.WithClientIP(r.Context(), clientIP(r))
	return authcore.WithUserAgent(ctx, r.UserAgent())
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if i := strings.IndexByte(forwarded, ','); i >= 0 {
			return strings.TrimSpace(forwarded[:i])
		}
		return strings.TrimSpace(forwarded)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
