package session

import (
	"context"
	"errors"
	"strings"

	"bazaar/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

type bcryptVerifier struct {
	customers customerRepo
}

// NewBcryptVerifier returns a CredentialVerifier backed by the customer
// store and bcrypt hashes.
func NewBcryptVerifier(customers customerRepo) CredentialVerifier {
	return &bcryptVerifier{customers: customers}
}

func (v *bcryptVerifier) Verify(ctx context.Context, email, password string) (string, error) {
	c, err := v.customers.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(strings.TrimSpace(password))); err != nil {
		return "", domain.ErrInvalidCredentials
	}
	return c.ID, nil
}
