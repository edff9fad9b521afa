package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	v, err := NewVerifier("s3cret", false)
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	token, err := v.Sign(Claims{Sub: "user-1", Email: "ana@example.com"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := v.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Sub != "user-1" || claims.Email != "ana@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	a, _ := NewVerifier("one", false)
	b, _ := NewVerifier("two", false)
	token, err := a.Sign(Claims{Sub: "user-1"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := b.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	v, _ := NewVerifier("s3cret", false)
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	v.now = func() time.Time { return base }
	token, err := v.Sign(Claims{Sub: "user-1", Exp: base.Add(time.Minute).Unix()})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	v.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, err := v.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to fail, got %v", err)
	}
}

func TestVerifyRejectsAlgNone(t *testing.T) {
	v, _ := NewVerifier("s3cret", false)
	token, _ := v.Sign(Claims{Sub: "user-1"})
	parts := strings.Split(token, ".")
	parts[0] = base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none"}`))
	if _, err := v.Verify(strings.Join(parts, ".")); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected alg none to fail, got %v", err)
	}
}

func TestNewVerifierRequiresSecretOutsideDev(t *testing.T) {
	if _, err := NewVerifier("", false); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
	if _, err := NewVerifier("", true); err != nil {
		t.Fatalf("expected dev fallback, got %v", err)
	}
}
