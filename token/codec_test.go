package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestCodec(t *testing.T, ttl time.Duration) *Codec {
	t.Helper()

	codec, err := NewCodec(Config{
		Secret: testSecret,
		TTL:    ttl,
		Issuer: "authcore-test",
	})
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}
	return codec
}

func TestNewCodecRequiresSecret(t *testing.T) {
	if _, err := NewCodec(Config{TTL: time.Hour}); err == nil {
		t.Fatal("expected error for missing secret")
	}
}

func TestNewCodecRequiresTTL(t *testing.T) {
	if _, err := NewCodec(Config{Secret: testSecret}); err == nil {
		t.Fatal("expected error for zero TTL")
	}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	codec := newTestCodec(t, time.Hour)

	raw, issued, err := codec.Issue("u1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if issued.SubjectID != "u1" {
		t.Fatalf("issued subject = %q", issued.SubjectID)
	}
	if issued.TokenID == "" {
		t.Fatal("issued token has empty jti")
	}

	claims, err := codec.Verify(raw)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.SubjectID != "u1" {
		t.Fatalf("verified subject = %q", claims.SubjectID)
	}
	if claims.TokenID != issued.TokenID {
		t.Fatalf("jti mismatch: %q vs %q", claims.TokenID, issued.TokenID)
	}
	if !claims.ExpiresAt.After(claims.IssuedAt) {
		t.Fatal("expiry not after issuance")
	}
}

func TestIssueProducesUniqueTokens(t *testing.T) {
	codec := newTestCodec(t, time.Hour)

	first, _, err := codec.Issue("u1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	second, _, err := codec.Issue("u1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if first == second {
		t.Fatal("two tokens for the same subject must differ")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	codec := newTestCodec(t, time.Millisecond)

	raw, _, err := codec.Issue("u1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	if _, err := codec.Verify(raw); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	codec := newTestCodec(t, time.Hour)

	raw, _, err := codec.Issue("u1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	tampered := raw[:len(raw)-2] + "xx"
	if _, err := codec.Verify(tampered); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	codec := newTestCodec(t, time.Hour)
	other, err := NewCodec(Config{
		Secret: []byte(strings.Repeat("x", 32)),
		TTL:    time.Hour,
		Issuer: "authcore-test",
	})
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	raw, _, err := other.Issue("u1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := codec.Verify(raw); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	codec := newTestCodec(t, time.Hour)

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := codec.Verify(raw); !errors.Is(err, ErrInvalid) {
			t.Fatalf("Verify(%q): expected ErrInvalid, got %v", raw, err)
		}
	}
}
