package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalid is returned for tokens that fail signature, shape, or
	// claim validation for any reason other than expiry.
	ErrInvalid = errors.New("invalid token")
	// ErrExpired is returned for structurally valid tokens past their exp.
	ErrExpired = errors.New("token expired")
)

// Config defines a public type used by authcore APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
}

// Claims is the decoded payload of a bearer token.
type Claims struct {
	SubjectID string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type registeredClaims struct {
	jwt.RegisteredClaims
}

// Codec issues and verifies signed bearer tokens. A Codec is immutable and
// safe for concurrent use.
type Codec struct {
	config Config
}

// NewCodec describes the newcodec operation and its observable behavior.
//
// NewCodec may return an error when input validation, dependency calls, or security checks fail.
// NewCodec does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("signing secret is required")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}

	return &Codec{config: cfg}, nil
}

// Issue creates a signed token for subjectID with issuedAt = now and
// expiresAt = now + TTL. The jti claim is a fresh UUID, so two tokens issued
// to the same subject in the same second still differ.
func (c *Codec) Issue(subjectID string) (string, Claims, error) {
	now := time.Now()
	jti := uuid.NewString()

	claims := registeredClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.config.TTL)),
		},
	}
	if c.config.Issuer != "" {
		claims.Issuer = c.config.Issuer
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.config.Secret)
	if err != nil {
		return "", Claims{}, err
	}

	return signed, Claims{
		SubjectID: subjectID,
		TokenID:   jti,
		IssuedAt:  now,
		ExpiresAt: now.Add(c.config.TTL),
	}, nil
}

// Verify parses and validates raw. It is pure: revocation and account state
// are the engine's concern. Expired-but-otherwise-valid tokens return
// [ErrExpired]; everything else that fails returns [ErrInvalid].
func (c *Codec) Verify(raw string) (Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if c.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(c.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	parsed, err := parser.ParseWithClaims(raw, &registeredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return c.config.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpired
		}
		return Claims{}, ErrInvalid
	}

	claims, ok := parsed.Claims.(*registeredClaims)
	if !ok || !parsed.Valid {
		return Claims{}, ErrInvalid
	}
	if claims.Subject == "" {
		return Claims{}, ErrInvalid
	}
	if claims.ExpiresAt == nil {
		return Claims{}, ErrInvalid
	}

	out := Claims{
		SubjectID: claims.Subject,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}

	return out, nil
}

// TTL reports the configured token lifetime.
func (c *Codec) TTL() time.Duration {
	return c.config.TTL
}
