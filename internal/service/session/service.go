// Package session orchestrates authentication: signup, login, logout
// and refresh, binding the cart engine to token issuance. Logging in
// verifies credentials, folds any anonymous cart the caller held into
// the customer's cart and establishes a fresh token pair.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bazaar/internal/domain"
	cartsvc "bazaar/internal/service/cart"
	"bazaar/internal/token"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const passwordMin = 8

// CredentialVerifier checks an email/password pair and returns the
// matching customer id. Failures surface only domain.ErrInvalidCredentials;
// whether the email exists is never leaked.
type CredentialVerifier interface {
	Verify(ctx context.Context, email, password string) (string, error)
}

type customerRepo interface {
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	Update(ctx context.Context, c domain.Customer) (*domain.Customer, error)
}

type revocationRegistry interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}

type Service struct {
	customers       customerRepo
	carts           *cartsvc.Service
	creds           CredentialVerifier
	issuer          *token.Issuer
	verifier        *token.Verifier
	registry        revocationRegistry
	defaultCurrency string
}

func New(customers customerRepo, carts *cartsvc.Service, creds CredentialVerifier, issuer *token.Issuer, verifier *token.Verifier, registry revocationRegistry, defaultCurrency string) *Service {
	return &Service{
		customers:       customers,
		carts:           carts,
		creds:           creds,
		issuer:          issuer,
		verifier:        verifier,
		registry:        registry,
		defaultCurrency: defaultCurrency,
	}
}

// Tokens is the pair handed to the transport layer as opaque values.
type Tokens struct {
	IssuedAt              int64  `json:"issuedAt"`
	AccessToken           string `json:"accessToken"`
	AccessTokenExpiresIn  int64  `json:"accessTokenExpiresIn"`
	RefreshToken          string `json:"refreshToken"`
	RefreshTokenExpiresIn int64  `json:"refreshTokenExpiresIn"`
}

type SignupInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Currency  string `json:"currency"`
}

// Signup registers a customer and opens their known cart.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*domain.Customer, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" {
		return nil, errors.New("email required")
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(in.Password)), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	customer, err := s.customers.Create(ctx, domain.Customer{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hashed),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	})
	if err != nil {
		return nil, err
	}

	currency := in.Currency
	if strings.TrimSpace(currency) == "" {
		currency = s.defaultCurrency
	}
	if _, err := s.carts.Create(ctx, domain.KnownOwner(customer.ID), currency); err != nil {
		return nil, fmt.Errorf("create cart for customer: %w", err)
	}
	return customer, nil
}

// UpdateProfileInput carries the fields a customer may change. Nil
// fields are left untouched.
type UpdateProfileInput struct {
	Email     *string `json:"email"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

// UpdateProfile rewrites the customer's email and name fields. A new
// email is normalised and must be unique.
func (s *Service) UpdateProfile(ctx context.Context, customerID string, in UpdateProfileInput) (*domain.Customer, error) {
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	updated := *customer
	if in.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*in.Email))
		if email == "" || !strings.Contains(email, "@") {
			return nil, errors.New("invalid email")
		}
		updated.Email = email
	}
	if in.FirstName != nil {
		updated.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		updated.LastName = strings.TrimSpace(*in.LastName)
	}
	return s.customers.Update(ctx, updated)
}

type LoginResult struct {
	Customer *domain.Customer `json:"customer"`
	Cart     *domain.Cart     `json:"cart"`
	Tokens   Tokens           `json:"tokens"`
}

// Login verifies credentials, identifies or creates the customer's
// cart, merges any anonymous cart the caller held and issues a fresh
// token pair.
func (s *Service) Login(ctx context.Context, email, password, anonymousCartID string) (*LoginResult, error) {
	customerID, err := s.creds.Verify(ctx, email, password)
	if err != nil {
		return nil, err
	}

	var cart *domain.Cart
	if anonymousCartID != "" {
		cart, err = s.carts.MergeForCustomer(ctx, customerID, anonymousCartID)
	} else {
		cart, err = s.carts.ForCustomer(ctx, customerID, s.defaultCurrency)
	}
	if err != nil {
		return nil, err
	}

	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	tokens, err := s.issueTokens(customerID, cart.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Customer: customer, Cart: cart, Tokens: *tokens}, nil
}

// Refresh rotates the token pair: the presented refresh token is
// verified against the revocation registry, its jti is revoked and a
// brand-new pair is returned. A replayed predecessor therefore always
// reads as revoked.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	claims, err := s.verifier.Verify(ctx, refreshToken, token.TypeRefresh)
	if err != nil {
		return nil, err
	}
	if err := s.registry.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return nil, err
	}
	return s.issueTokens(claims.Subject, claims.CartID)
}

// Logout revokes the presented refresh token. The access token remains
// valid until its own expiry.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.verifier.Verify(ctx, refreshToken, token.TypeRefresh)
	if err != nil {
		return err
	}
	return s.registry.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

// Authenticate resolves an access token to its customer.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*domain.Customer, error) {
	claims, err := s.verifier.Verify(ctx, accessToken, token.TypeAccess)
	if err != nil {
		return nil, err
	}
	customer, err := s.customers.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrTokenMalformed
		}
		return nil, err
	}
	return customer, nil
}

func (s *Service) issueTokens(customerID, cartID string) (*Tokens, error) {
	access, accessClaims, err := s.issuer.IssueAccess(customerID, cartID)
	if err != nil {
		return nil, err
	}
	refresh, _, err := s.issuer.IssueRefresh(customerID, cartID)
	if err != nil {
		return nil, err
	}
	return &Tokens{
		IssuedAt:              accessClaims.IssuedAt.Unix(),
		AccessToken:           access,
		AccessTokenExpiresIn:  int64(s.issuer.AccessTTL().Seconds()),
		RefreshToken:          refresh,
		RefreshTokenExpiresIn: int64(s.issuer.RefreshTTL().Seconds()),
	}, nil
}

func validatePassword(p string) error {
	trimmed := strings.TrimSpace(p)
	if len(trimmed) < passwordMin {
		return fmt.Errorf("password must be at least %d characters", passwordMin)
	}
	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, r := range trimmed {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return errors.New("password must contain at least 1 uppercase letter, 1 lowercase letter, and 1 number")
	}
	return nil
}
