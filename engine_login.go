package authcore

import (
	"context"
	"fmt"
)

// Login verifies credentials for an identifier and issues a fresh token.
//
// The caller's IP (see [WithClientIP]) is counted against the auth rate
// bucket before any credential work happens. Missing users and wrong
// passwords both map to [ErrInvalidCredentials] so a caller cannot probe
// which identifiers exist.
func (e *Engine) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	if e == nil || e.codec == nil || e.users == nil || e.credentials == nil {
		return nil, ErrEngineNotReady
	}

	if err := e.CheckRate(ctx, BucketAuth); err != nil {
		if limitErr, ok := asLimitError(err); ok {
			e.metricInc(MetricLoginRateLimited)
			e.emitAudit(ctx, auditEventLoginRateLimited, false, "", ErrRateLimited, func() map[string]string {
				return map[string]string{"identifier": identifier}
			})
			return nil, limitErr
		}
		return nil, err
	}

	if identifier == "" || password == "" {
		return nil, e.failLogin(ctx, identifier, "", ErrInvalidCredentials)
	}

	user, found, err := e.users.GetUserByIdentifier(ctx, identifier)
	if err != nil {
		e.metricInc(MetricAuthUnavailable)
		return nil, fmt.Errorf("%w: %v", ErrAuthUnavailable, err)
	}
	if !found {
		return nil, e.failLogin(ctx, identifier, "", ErrInvalidCredentials)
	}

	match, err := e.credentials.Verify(password, user.CredentialHash)
	if err != nil || !match {
		return nil, e.failLogin(ctx, identifier, user.ID, ErrInvalidCredentials)
	}

	if user.IsBlocked {
		e.metricInc(MetricAccountBlocked)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.ID, ErrAccountBlocked, nil)
		return nil, ErrAccountBlocked
	}

	raw, claims, err := e.codec.Issue(user.ID)
	if err != nil {
		e.metricInc(MetricAuthUnavailable)
		return nil, fmt.Errorf("%w: %v", ErrAuthUnavailable, err)
	}

	e.metricInc(MetricTokenIssued)
	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, user.ID, nil, nil)
	e.touchDeviceAsync(ctx, user.ID)

	return &LoginResult{
		Token:  raw,
		Claims: claims,
		User:   user.Summary(),
	}, nil
}

func (e *Engine) failLogin(ctx context.Context, identifier, userID string, verdict error) error {
	e.metricInc(MetricLoginFailure)
	e.emitAudit(ctx, auditEventLoginFailure, false, userID, verdict, func() map[string]string {
		return map[string]string{"identifier": identifier}
	})
	return verdict
}

// Logout revokes the presented token. The header must still authenticate:
// an expired, malformed, or foreign token cannot be logged out, it simply
// fails with the same error Authenticate would return. Revoking a token
// that is already revoked reports [ErrTokenRevoked] for the same reason.
//
// Logout never records device provenance; tearing down a session is not
// device activity.
func (e *Engine) Logout(ctx context.Context, authorizationHeader string) error {
	identity, err := e.Authenticate(WithoutDeviceTouch(ctx), authorizationHeader)
	if err != nil {
		return err
	}

	if err := e.revocations.Revoke(ctx, identity.User.ID, identity.Token, identity.Claims.ExpiresAt); err != nil {
		e.metricInc(MetricAuthUnavailable)
		return fmt.Errorf("%w: %v", ErrAuthUnavailable, err)
	}

	e.metricInc(MetricLogout)
	e.metricInc(MetricTokenRevoked)
	e.emitAudit(ctx, auditEventLogout, true, identity.User.ID, nil, nil)
	return nil
}

func asLimitError(err error) (*LimitError, bool) {
	limitErr, ok := err.(*LimitError)
	return limitErr, ok
}
