package token

import (
	"crypto/rsa"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer mints access and refresh tokens signed with RSASSA-PSS.
type Issuer struct {
	key        *rsa.PrivateKey
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewIssuer(key *rsa.PrivateKey, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		key:        key,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (i *Issuer) AccessTTL() time.Duration  { return i.accessTTL }
func (i *Issuer) RefreshTTL() time.Duration { return i.refreshTTL }

// IssueAccess mints a short-lived access token. Access tokens carry no
// jti and are never revocable; their TTL is the sole mitigation for
// compromise.
func (i *Issuer) IssueAccess(customerID, cartID string) (string, *Claims, error) {
	return i.issue(customerID, cartID, TypeAccess, i.accessTTL, "")
}

// IssueRefresh mints a long-lived refresh token with a fresh jti.
func (i *Issuer) IssueRefresh(customerID, cartID string) (string, *Claims, error) {
	return i.issue(customerID, cartID, TypeRefresh, i.refreshTTL, uuid.NewString())
}

func (i *Issuer) issue(customerID, cartID string, typ Type, ttl time.Duration, jti string) (string, *Claims, error) {
	now := i.now()
	claims := &Claims{
		CartID:    cartID,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   customerID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodPS256, claims).SignedString(i.key)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}
