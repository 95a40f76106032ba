package authcore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/commercekit/authcore/internal/devices"
	"github.com/commercekit/authcore/internal/rate"
	"github.com/commercekit/authcore/internal/revocation"
	"github.com/commercekit/authcore/token"
)

// Engine defines a public type used by authcore APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config      Config
	codec       *token.Codec
	revocations revocation.Store
	devices     devices.Tracker
	rateLimiter *rate.Limiter
	users       UserProvider
	credentials CredentialVerifier
	audit       *auditDispatcher
	metrics     *Metrics
	touches     sync.WaitGroup
}

// Close drains the audit dispatcher and waits for in-flight device touches.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.touches.Wait()
	if e.audit != nil {
		e.audit.Close()
	}
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// AuditDropped reports how many audit events were dropped under
// backpressure since the engine was built.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	cause error,
	metadata func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		UserID:    userID,
		IP:        clientIPFromContext(ctx),
		UserAgent: userAgentFromContext(ctx),
		Success:   success,
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	if metadata != nil {
		event.Metadata = metadata()
	}

	e.audit.Emit(ctx, event)
}

// Authenticate validates the Authorization header and resolves it to an
// [Identity]. Checks run cheapest-first: bearer shape, then signature and
// expiry (pure), then the user load, blocked flag, and revocation lookup.
// A malformed or expired token therefore never touches a store.
//
// On success, device provenance is recorded on a background goroutine
// unless the context carries [WithoutDeviceTouch]. Admin and role state are
// read fresh from the user record on every call and are never cached in
// the token.
func (e *Engine) Authenticate(ctx context.Context, authorizationHeader string) (*Identity, error) {
	if e == nil || e.codec == nil {
		return nil, ErrEngineNotReady
	}

	start := time.Now()
	defer func() {
		if e.metrics != nil {
			e.metrics.Observe(MetricAuthenticateLatency, time.Since(start))
		}
	}()

	raw, ok := bearerToken(authorizationHeader)
	if !ok {
		return nil, e.failAuth(ctx, "", ErrMissingToken, MetricAuthenticateFailure)
	}

	claims, err := e.codec.Verify(raw)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return nil, e.failAuth(ctx, "", ErrTokenExpired, MetricTokenExpired)
		}
		return nil, e.failAuth(ctx, "", ErrTokenInvalid, MetricAuthenticateFailure)
	}

	user, found, err := e.users.GetUserByID(ctx, claims.SubjectID)
	if err != nil {
		e.metricInc(MetricAuthUnavailable)
		e.emitAudit(ctx, auditEventAuthFailure, false, claims.SubjectID, ErrAuthUnavailable, func() map[string]string {
			return map[string]string{"reason": "user_store_error"}
		})
		return nil, fmt.Errorf("%w: %v", ErrAuthUnavailable, err)
	}
	if !found {
		return nil, e.failAuth(ctx, claims.SubjectID, ErrUserNotFound, MetricAuthenticateFailure)
	}

	if user.IsBlocked {
		return nil, e.failAuth(ctx, user.ID, ErrAccountBlocked, MetricAccountBlocked)
	}

	revoked, err := e.revocations.IsRevoked(ctx, user.ID, raw)
	if err != nil {
		e.metricInc(MetricAuthUnavailable)
		e.emitAudit(ctx, auditEventAuthFailure, false, user.ID, ErrAuthUnavailable, func() map[string]string {
			return map[string]string{"reason": "revocation_store_error"}
		})
		return nil, fmt.Errorf("%w: %v", ErrAuthUnavailable, err)
	}
	if revoked {
		return nil, e.failAuth(ctx, user.ID, ErrTokenRevoked, MetricTokenRevoked)
	}

	if !skipDeviceTouchFromContext(ctx) {
		e.touchDeviceAsync(ctx, user.ID)
	}

	e.metricInc(MetricAuthenticateSuccess)

	return &Identity{
		User:   user,
		Token:  raw,
		Claims: claims,
	}, nil
}

func (e *Engine) failAuth(ctx context.Context, userID string, verdict error, metric MetricID) error {
	e.metricInc(metric)
	e.emitAudit(ctx, auditEventAuthFailure, false, userID, verdict, nil)
	return verdict
}

// RequireAdmin is the admin gate: a pure predicate over an [Identity] with
// no side effects. The flag comes from the user record loaded during
// Authenticate, so promoting or demoting a user takes effect on their next
// request without reissuing tokens.
func RequireAdmin(identity *Identity) error {
	if identity == nil || !identity.User.IsAdmin {
		return ErrForbidden
	}
	return nil
}

// RequireAdmin describes the requireadmin operation and its observable behavior.
//
// RequireAdmin may return an error when input validation, dependency calls, or security checks fail.
// RequireAdmin does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) RequireAdmin(ctx context.Context, identity *Identity) error {
	if err := RequireAdmin(identity); err != nil {
		e.metricInc(MetricAdminDenied)
		userID := ""
		if identity != nil {
			userID = identity.User.ID
		}
		e.emitAudit(ctx, auditEventAdminDenied, false, userID, err, nil)
		return err
	}
	return nil
}

// CheckRate counts one request from the context's client IP against the
// given bucket. Denials return a [LimitError]; a rate-limiter backend
// outage maps to [ErrAuthUnavailable] rather than silently allowing or
// denying.
func (e *Engine) CheckRate(ctx context.Context, bucket Bucket) error {
	if e == nil || e.rateLimiter == nil || !e.config.RateLimit.Enabled {
		return nil
	}

	decision, err := e.rateLimiter.Check(ctx, clientIPFromContext(ctx), string(bucket))
	if err != nil {
		e.metricInc(MetricAuthUnavailable)
		return fmt.Errorf("%w: %v", ErrAuthUnavailable, err)
	}

	if !decision.Allowed {
		e.metricInc(MetricRateLimitHit)
		e.emitAudit(ctx, auditEventRateLimited, false, "", ErrRateLimited, func() map[string]string {
			return map[string]string{"bucket": string(bucket)}
		})
		return &LimitError{Bucket: bucket, RetryAfter: decision.RetryAfter}
	}

	return nil
}

// RevokeToken invalidates one specific token for a user without requiring
// the bearer to present it, which is the hook for admin tooling. The token must
// still verify so the revocation entry inherits its real expiry; revoking
// an already-expired token is a no-op.
func (e *Engine) RevokeToken(ctx context.Context, userID, tokenString string) error {
	if e == nil || e.codec == nil {
		return ErrEngineNotReady
	}

	claims, err := e.codec.Verify(tokenString)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return nil
		}
		return ErrTokenInvalid
	}
	if claims.SubjectID != userID {
		return ErrTokenInvalid
	}

	if err := e.revocations.Revoke(ctx, userID, tokenString, claims.ExpiresAt); err != nil {
		e.metricInc(MetricAuthUnavailable)
		return fmt.Errorf("%w: %v", ErrAuthUnavailable, err)
	}

	e.metricInc(MetricTokenRevoked)
	e.emitAudit(ctx, auditEventTokenRevoked, true, userID, nil, nil)
	return nil
}

// SetBlocked toggles the blocked flag on a user record. Because Authenticate
// reads the record on every call, blocking invalidates all of the user's
// outstanding tokens immediately, including ones never individually revoked.
func (e *Engine) SetBlocked(ctx context.Context, userID string, blocked bool) error {
	if e == nil || e.users == nil {
		return ErrEngineNotReady
	}

	if err := e.users.SetBlocked(ctx, userID, blocked); err != nil {
		return fmt.Errorf("%w: %v", ErrAuthUnavailable, err)
	}

	e.emitAudit(ctx, auditEventAccountBlocked, true, userID, nil, func() map[string]string {
		if blocked {
			return map[string]string{"blocked": "true"}
		}
		return map[string]string{"blocked": "false"}
	})
	return nil
}

// Devices returns the user's recently-seen device records, newest first.
func (e *Engine) Devices(ctx context.Context, userID string) ([]DeviceRecord, error) {
	if e == nil || e.devices == nil {
		return nil, ErrEngineNotReady
	}

	records, err := e.devices.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthUnavailable, err)
	}

	out := make([]DeviceRecord, 0, len(records))
	for _, r := range records {
		out = append(out, DeviceRecord{
			UserAgent:  r.UserAgent,
			IPAddress:  r.IPAddress,
			LastSeenAt: r.LastSeenAt,
		})
	}
	return out, nil
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
