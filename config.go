package authcore

import (
	"errors"
	"time"
)

// Config defines a public type used by authcore APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Token     TokenConfig
	RateLimit RateLimitConfig
	Devices   DeviceConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig defines a public type used by authcore APIs.
//
// TokenConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenConfig struct {
	// Secret signs and verifies bearer tokens. An absent secret fails
	// [Builder.Build]: a process without a signing secret must not start.
	Secret []byte
	TTL    time.Duration
	Issuer string
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// WindowConfig defines a public type used by authcore APIs.
//
// WindowConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type WindowConfig struct {
	MaxRequests int
	Window      time.Duration
}

// RateLimitConfig defines a public type used by authcore APIs.
//
// RateLimitConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RateLimitConfig struct {
	Enabled bool
	General WindowConfig
	Auth    WindowConfig
}

/*
====================================
DEVICE CONFIG
====================================
*/

// DeviceConfig defines a public type used by authcore APIs.
//
// DeviceConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type DeviceConfig struct {
	Enabled bool
	// MaxPerUser caps the retained device history. The oldest record is
	// evicted when a new (userAgent, ip) pair would exceed the cap.
	MaxPerUser int
	// TouchTimeout bounds the background device update so a slow store
	// cannot pile up goroutines behind it.
	TouchTimeout time.Duration
}

// AuditConfig defines a public type used by authcore APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by authcore APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the baseline configuration: 30-day tokens, the
// standard storefront rate windows (100 req / 15 min general, 5 req / 60 min
// for credential endpoints), and device tracking capped at 20 records.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			TTL:    30 * 24 * time.Hour,
			Issuer: "authcore",
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			General: WindowConfig{
				MaxRequests: 100,
				Window:      15 * time.Minute,
			},
			Auth: WindowConfig{
				MaxRequests: 5,
				Window:      60 * time.Minute,
			},
		},
		Devices: DeviceConfig{
			Enabled:      true,
			MaxPerUser:   20,
			TouchTimeout: 2 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.Secret = cloneBytes(cfg.Token.Secret)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Token
	if len(c.Token.Secret) == 0 {
		return errors.New("Token Secret is required")
	}
	if len(c.Token.Secret) < 32 {
		return errors.New("Token Secret must be >= 256 bits")
	}
	if c.Token.TTL <= 0 {
		return errors.New("Token TTL must be > 0")
	}

	// Rate limiting
	if c.RateLimit.Enabled {
		if c.RateLimit.General.MaxRequests <= 0 {
			return errors.New("RateLimit General MaxRequests must be > 0")
		}
		if c.RateLimit.General.Window <= 0 {
			return errors.New("RateLimit General Window must be > 0")
		}
		if c.RateLimit.Auth.MaxRequests <= 0 {
			return errors.New("RateLimit Auth MaxRequests must be > 0")
		}
		if c.RateLimit.Auth.Window <= 0 {
			return errors.New("RateLimit Auth Window must be > 0")
		}
	}

	// Devices
	if c.Devices.Enabled {
		if c.Devices.MaxPerUser <= 0 {
			return errors.New("Devices MaxPerUser must be > 0 when device tracking is enabled")
		}
		if c.Devices.TouchTimeout <= 0 {
			return errors.New("Devices TouchTimeout must be > 0 when device tracking is enabled")
		}
	}

	// Audit
	if c.Audit.Enabled {
		if c.Audit.BufferSize <= 0 {
			return errors.New("Audit BufferSize must be > 0 when audit is enabled")
		}
	}

	return nil
}
