package authcore

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/commercekit/authcore/internal/devices"
	"github.com/commercekit/authcore/internal/rate"
	"github.com/commercekit/authcore/internal/revocation"
	"github.com/commercekit/authcore/token"
)

// Builder defines a public type used by authcore APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  *redis.Client

	userProvider       UserProvider
	credentialVerifier CredentialVerifier
	auditSink          AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithUserProvider describes the withuserprovider operation and its observable behavior.
//
// WithUserProvider does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithUserProvider(up UserProvider) *Builder {
	b.userProvider = up
	return b
}

// WithCredentialVerifier describes the withcredentialverifier operation and its observable behavior.
//
// WithCredentialVerifier does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithCredentialVerifier(cv CredentialVerifier) *Builder {
	b.credentialVerifier = cv
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// A missing or short token secret is a fatal startup condition and always fails the build.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.userProvider == nil {
		return nil, errors.New("user provider required")
	}

	if b.credentialVerifier == nil {
		return nil, errors.New("credential verifier required")
	}

	if b.redis == nil && cfg.RateLimit.Enabled {
		return nil, errors.New("rate limiting requires redis client")
	}

	codec, err := token.NewCodec(token.Config{
		Secret: cloneBytes(cfg.Token.Secret),
		TTL:    cfg.Token.TTL,
		Issuer: cfg.Token.Issuer,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:      cfg,
		codec:       codec,
		users:       b.userProvider,
		credentials: b.credentialVerifier,
	}

	// Without a redis client the engine falls back to process-local
	// stores. Single-node deployments only; revocations and device
	// history do not survive a restart.
	if b.redis != nil {
		engine.revocations = revocation.NewRedisStore(b.redis, "")
		engine.devices = devices.NewRedisTracker(b.redis, "", cfg.Devices.MaxPerUser)
	} else {
		engine.revocations = revocation.NewMemoryStore()
		engine.devices = devices.NewMemoryTracker(cfg.Devices.MaxPerUser)
	}

	if cfg.RateLimit.Enabled {
		engine.rateLimiter = rate.New(b.redis, rate.Config{
			Buckets: map[string]rate.WindowConfig{
				string(BucketGeneral): {
					MaxRequests: cfg.RateLimit.General.MaxRequests,
					Window:      cfg.RateLimit.General.Window,
				},
				string(BucketAuth): {
					MaxRequests: cfg.RateLimit.Auth.MaxRequests,
					Window:      cfg.RateLimit.Auth.Window,
				},
			},
		})
	}

	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return engine, nil
}
