package usecases

import (
	"encoding/base64"
	"testing"
	"time"

	"media-pipeline/internal/pkg/config"
)

func newTestTokenService(t *testing.T, now time.Time) *tokenService {
	t.Helper()
	svc, err := NewTokenService(config.TokenConfig{
		PrimaryVerificationKey: base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef")),
		Issuer:                 "https://issuer.example.test",
		Audience:               "urn:media-pipeline",
	})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	ts := svc.(*tokenService)
	ts.now = func() time.Time { return now }
	return ts
}

func TestTokenRoundTrip(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestTokenService(t, issued)

	token, err := svc.Issue()
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got := claims.NotBefore.Time; !got.Equal(issued.Add(-time.Minute)) {
		t.Fatalf("nbf = %v, want %v", got, issued.Add(-time.Minute))
	}
	if got := claims.ExpiresAt.Time; !got.Equal(issued.Add(10 * time.Minute)) {
		t.Fatalf("exp = %v, want %v", got, issued.Add(10*time.Minute))
	}
	if claims.Issuer != "https://issuer.example.test" {
		t.Fatalf("iss = %q", claims.Issuer)
	}

	// 30 seconds before issue is still inside the not-before skew.
	svc.now = func() time.Time { return issued.Add(-30 * time.Second) }
	if _, err := svc.Validate(token); err != nil {
		t.Fatalf("Validate within skew: %v", err)
	}
}

func TestTokenOutsideWindow(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestTokenService(t, issued)

	token, err := svc.Issue()
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	for _, at := range []time.Time{issued.Add(11 * time.Minute), issued.Add(-2 * time.Minute)} {
		svc.now = func() time.Time { return at }
		if _, err := svc.Validate(token); err == nil {
			t.Fatalf("Validate at %v succeeded, want rejection", at)
		}
	}
}

func TestTokenWrongKey(t *testing.T) {
	issued := time.Now()
	svc := newTestTokenService(t, issued)
	token, err := svc.Issue()
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	other := newTestTokenService(t, issued)
	other.key = []byte("another-key-another-key-another!!")
	if _, err := other.Validate(token); err == nil {
		t.Fatalf("Validate with wrong key succeeded")
	}
}

func TestNewTokenServiceRejectsBadKey(t *testing.T) {
	for _, key := range []string{"", "not base64!"} {
		if _, err := NewTokenService(config.TokenConfig{PrimaryVerificationKey: key}); err == nil {
			t.Fatalf("NewTokenService(%q) err = nil", key)
		}
	}
}
