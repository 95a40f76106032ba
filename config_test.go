package authcore

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.Token.Secret = []byte("0123456789abcdef0123456789abcdef")
	return cfg
}

func TestDefaultConfigValidatesOnceSecretIsSet(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func TestValidateRejectsMissingSecret(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation failure without a secret")
	}
}

func TestValidateRejectsShortSecret(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Token.Secret = []byte("short")

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation failure for a short secret")
	}
	if !strings.Contains(err.Error(), "256 bits") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestValidateRejectsNonPositiveTTL(t *testing.T) {
	cfg := validConfig()
	cfg.Token.TTL = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation failure for zero TTL")
	}
}

func TestValidateRejectsBadRateWindows(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit.Auth.MaxRequests = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation failure for zero auth MaxRequests")
	}

	cfg = validConfig()
	cfg.RateLimit.General.Window = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation failure for zero general window")
	}

	// Disabled rate limiting skips the window checks entirely.
	cfg = validConfig()
	cfg.RateLimit.Enabled = false
	cfg.RateLimit.General = WindowConfig{}
	cfg.RateLimit.Auth = WindowConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled rate limiting should not be validated: %v", err)
	}
}

func TestValidateRejectsBadDeviceConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Devices.MaxPerUser = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation failure for zero device cap")
	}

	cfg = validConfig()
	cfg.Devices.TouchTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation failure for zero touch timeout")
	}
}

func TestCloneConfigDetachesSecret(t *testing.T) {
	cfg := validConfig()
	clone := cloneConfig(cfg)

	cfg.Token.Secret[0] ^= 0xFF
	if clone.Token.Secret[0] == cfg.Token.Secret[0] {
		t.Fatal("clone shares the secret backing array")
	}
}

func TestDefaultWindowsMatchStorefrontPolicy(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.RateLimit.General.MaxRequests != 100 || cfg.RateLimit.General.Window != 15*time.Minute {
		t.Fatalf("general window = %+v", cfg.RateLimit.General)
	}
	if cfg.RateLimit.Auth.MaxRequests != 5 || cfg.RateLimit.Auth.Window != 60*time.Minute {
		t.Fatalf("auth window = %+v", cfg.RateLimit.Auth)
	}
	if cfg.Token.TTL != 30*24*time.Hour {
		t.Fatalf("token TTL = %v", cfg.Token.TTL)
	}
}
