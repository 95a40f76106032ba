package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	authcore "github.com/commercekit/authcore"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Success: false,
		Message: message,
		Code:    code,
	})
}

// writeEngineError maps the engine's sentinel errors onto HTTP statuses.
// Token-shaped failures all answer 401 with the same body so a caller
// cannot distinguish a revoked token from a deleted user.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authcore.ErrMissingToken):
		writeError(w, http.StatusUnauthorized, "authentication required", "")
	case errors.Is(err, authcore.ErrTokenInvalid),
		errors.Is(err, authcore.ErrTokenExpired),
		errors.Is(err, authcore.ErrTokenRevoked),
		errors.Is(err, authcore.ErrUserNotFound):
		writeError(w, http.StatusUnauthorized, "invalid or expired token", "")
	case errors.Is(err, authcore.ErrAccountBlocked):
		writeError(w, http.StatusForbidden, "account is blocked", "")
	case errors.Is(err, authcore.ErrForbidden):
		writeError(w, http.StatusForbidden, "admin access required", "")
	case errors.Is(err, authcore.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "too many requests, please try again later", "RATE_LIMIT_EXCEEDED")
	case errors.Is(err, authcore.ErrAuthUnavailable):
		writeError(w, http.StatusServiceUnavailable, "authentication service unavailable", "")
	default:
		writeError(w, http.StatusUnauthorized, "authentication required", "")
	}
}

func asLimitError(err error, target **authcore.LimitError) bool {
	return errors.As(err, target)
}
