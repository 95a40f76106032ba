package authcore

import "context"

type clientIPContextKey struct{}
type userAgentContextKey struct{}
type skipDeviceTouchContextKey struct{}

// WithClientIP attaches the caller's IP address to ctx. The Engine uses it
// for per-IP rate limiting, audit records, and device provenance.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithUserAgent attaches the HTTP User-Agent string to ctx. Used together
// with the client IP as the device provenance key.
func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	return context.WithValue(ctx, userAgentContextKey{}, userAgent)
}

// WithoutDeviceTouch suppresses the device-tracking side effect of
// [Engine.Authenticate] for this request. The logout path uses it so that a
// session being torn down is not recorded as fresh device activity.
func WithoutDeviceTouch(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipDeviceTouchContextKey{}, true)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

func userAgentFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	userAgent, _ := ctx.Value(userAgentContextKey{}).(string)
	return userAgent
}

func skipDeviceTouchFromContext(ctx context.Context) bool {
	if ctx == nil {
		return false
	}

	skip, _ := ctx.Value(skipDeviceTouchContextKey{}).(bool)
	return skip
}
