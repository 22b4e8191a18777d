// Package token issues and verifies the signed credentials backing a
// session. Signing requires the private key and lives on the Issuer;
// verification needs only the public key, so components that never hold
// signing material use a Verifier.
package token

import (
	"github.com/golang-jwt/jwt/v5"
)

type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

// Claims carried by both token kinds. Subject is the customer id,
// ID (jti) is set for refresh tokens only and keys the revocation
// registry.
type Claims struct {
	CartID    string `json:"cartId,omitempty"`
	TokenType Type   `json:"tokenType"`
	jwt.RegisteredClaims
}
