package token

import (
	"context"
	"crypto/rsa"
	"errors"
	"time"

	"bazaar/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// RevocationChecker reports whether a refresh token id has been revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Verifier validates tokens using only the public key. Refresh tokens
// are additionally checked against the revocation registry; access
// tokens are not, their short TTL stands in for revocation.
type Verifier struct {
	key     *rsa.PublicKey
	revoked RevocationChecker
	now     func() time.Time
}

func NewVerifier(key *rsa.PublicKey, revoked RevocationChecker) *Verifier {
	return &Verifier{key: key, revoked: revoked, now: time.Now}
}

// Verify parses and validates a raw token of the expected type. It
// returns domain.ErrTokenExpired, domain.ErrTokenMalformed or
// domain.ErrTokenRevoked; no finer-grained failure reason escapes.
func (v *Verifier) Verify(ctx context.Context, raw string, want Type) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (interface{}, error) { return v.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodPS256.Alg()}),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenMalformed
	}
	if claims.TokenType != want {
		return nil, domain.ErrTokenMalformed
	}
	if want == TypeRefresh {
		if claims.ID == "" {
			return nil, domain.ErrTokenMalformed
		}
		revoked, err := v.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, domain.ErrTokenRevoked
		}
	}
	return claims, nil
}
