package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hushh-labs/consentcore/internal/consent/scope"
)

var testKey = []byte("0123456789abcdef0123456789abcdef") // 32 bytes

func testRegistry(t *testing.T) *scope.Registry {
	t.Helper()
	r, err := scope.NewRegistry([]string{
		"custom.ethical.values",
		"vault.read.email",
		"vault.read.finance",
	})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return r
}

func TestIssue_Fields(t *testing.T) {
	t.Parallel()
	iss := NewIssuer(testRegistry(t), testKey)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	iss.now = func() time.Time { return base }

	tk, err := iss.Issue("u1", "ethical_consumption_agent", "custom.ethical.values", time.Hour)
	if err != nil {
		t.Fatalf("Issue err: %v", err)
	}
	if tk.TokenID == "" {
		t.Fatal("token_id vacío")
	}
	if tk.UserID != "u1" || tk.AgentID != "ethical_consumption_agent" {
		t.Fatalf("claims mismatch: %+v", tk.Claims)
	}
	if tk.Scope != "custom.ethical.values" {
		t.Fatalf("scope mismatch: %q", tk.Scope)
	}
	if !tk.IssuedAt.Equal(base) {
		t.Fatalf("iat: got %v want %v", tk.IssuedAt, base)
	}
	if !tk.ExpiresAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("exp: got %v", tk.ExpiresAt)
	}
	// exp > iat siempre
	if !tk.ExpiresAt.After(tk.IssuedAt) {
		t.Fatal("expires_at debe ser > issued_at")
	}
	// JWT compacto: header.payload.signature
	if parts := strings.Split(tk.Raw, "."); len(parts) != 3 {
		t.Fatalf("raw no es un JWT compacto: %q", tk.Raw)
	}
}

func TestIssue_UniqueTokenIDs(t *testing.T) {
	t.Parallel()
	iss := NewIssuer(testRegistry(t), testKey)
	a, err := iss.Issue("u1", "agent", "vault.read.email", time.Hour)
	if err != nil {
		t.Fatalf("Issue err: %v", err)
	}
	b, err := iss.Issue("u1", "agent", "vault.read.email", time.Hour)
	if err != nil {
		t.Fatalf("Issue err: %v", err)
	}
	if a.TokenID == b.TokenID {
		t.Fatal("token_id repetido")
	}
}

func TestIssue_InvalidScope(t *testing.T) {
	t.Parallel()
	iss := NewIssuer(testRegistry(t), testKey)
	_, err := iss.Issue("u1", "agent", "not.registered", time.Hour)
	if !errors.Is(err, ErrInvalidScope) {
		t.Fatalf("expected ErrInvalidScope, got %v", err)
	}
}

func TestIssue_InvalidTTL(t *testing.T) {
	t.Parallel()
	iss := NewIssuer(testRegistry(t), testKey)
	for _, ttl := range []time.Duration{0, -time.Second} {
		if _, err := iss.Issue("u1", "agent", "vault.read.email", ttl); !errors.Is(err, ErrInvalidTTL) {
			t.Fatalf("ttl=%v: expected ErrInvalidTTL, got %v", ttl, err)
		}
	}
}
