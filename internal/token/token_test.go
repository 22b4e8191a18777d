package token

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"bazaar/internal/domain"
)

type stubRegistry struct {
	revoked map[string]bool
	err     error
}

func (s *stubRegistry) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.revoked[tokenID], nil
}

func testKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key
}

func TestIssueAndVerifyAccess(t *testing.T) {
	key := testKey(t)
	issuer := NewIssuer(key, 15*time.Minute, 28*24*time.Hour)
	verifier := NewVerifier(&key.PublicKey, &stubRegistry{})

	raw, issued, err := issuer.IssueAccess("cust-1", "cart-1")
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}
	if issued.ID != "" {
		t.Fatalf("access token must not carry a jti, got %q", issued.ID)
	}

	claims, err := verifier.Verify(context.Background(), raw, TypeAccess)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "cust-1" || claims.CartID != "cart-1" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != 15*time.Minute {
		t.Fatalf("unexpected TTL %v", got)
	}
}

func TestRefreshTokensGetUniqueIDs(t *testing.T) {
	issuer := NewIssuer(testKey(t), time.Minute, time.Hour)
	_, first, err := issuer.IssueRefresh("cust-1", "cart-1")
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}
	_, second, err := issuer.IssueRefresh("cust-1", "cart-1")
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}
	if first.ID == "" || first.ID == second.ID {
		t.Fatalf("expected unique jti per issuance, got %q and %q", first.ID, second.ID)
	}
}

func TestVerifyExpired(t *testing.T) {
	key := testKey(t)
	issuer := NewIssuer(key, 15*time.Minute, time.Hour)
	raw, _, err := issuer.IssueAccess("cust-1", "cart-1")
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	verifier := NewVerifier(&key.PublicKey, &stubRegistry{})
	verifier.now = func() time.Time { return time.Now().Add(16 * time.Minute) }
	if _, err := verifier.Verify(context.Background(), raw, TypeAccess); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	key := testKey(t)
	verifier := NewVerifier(&key.PublicKey, &stubRegistry{})

	if _, err := verifier.Verify(context.Background(), "not-a-token", TypeAccess); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}

	// Signed by a different key.
	other := NewIssuer(testKey(t), time.Minute, time.Hour)
	raw, _, err := other.IssueAccess("cust-1", "cart-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.Verify(context.Background(), raw, TypeAccess); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed for foreign signature, got %v", err)
	}
}

func TestVerifyRejectsWrongType(t *testing.T) {
	key := testKey(t)
	issuer := NewIssuer(key, time.Minute, time.Hour)
	verifier := NewVerifier(&key.PublicKey, &stubRegistry{})

	access, _, err := issuer.IssueAccess("cust-1", "cart-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.Verify(context.Background(), access, TypeRefresh); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed for access-as-refresh, got %v", err)
	}
}

func TestVerifyRevokedRefresh(t *testing.T) {
	key := testKey(t)
	issuer := NewIssuer(key, time.Minute, time.Hour)
	registry := &stubRegistry{revoked: map[string]bool{}}
	verifier := NewVerifier(&key.PublicKey, registry)

	raw, claims, err := issuer.IssueRefresh("cust-1", "cart-1")
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}
	if _, err := verifier.Verify(context.Background(), raw, TypeRefresh); err != nil {
		t.Fatalf("verify before revocation: %v", err)
	}

	registry.revoked[claims.ID] = true
	if _, err := verifier.Verify(context.Background(), raw, TypeRefresh); !errors.Is(err, domain.ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked, got %v", err)
	}
}
