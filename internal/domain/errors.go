package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidQuantity is returned when a cart mutation would drive an
	// item quantity below zero.
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrUnknownSKU is returned when a SKU cannot be priced.
	ErrUnknownSKU = errors.New("unknown sku")
	// ErrCurrencyMismatch is returned when two carts with different
	// currencies would be combined.
	ErrCurrencyMismatch = errors.New("currency mismatch")
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenExpired indicates the token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMalformed indicates the token signature or structure is invalid.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenRevoked indicates the refresh token id is in the revocation registry.
	ErrTokenRevoked = errors.New("token revoked")
	// ErrVersionConflict indicates an optimistic-concurrency check failed.
	// Callers retry a bounded number of times before surfacing
	// ErrConflictRetryExceeded.
	ErrVersionConflict = errors.New("version conflict")
	// ErrConflictRetryExceeded indicates the retry budget for a contended
	// cart was exhausted.
	ErrConflictRetryExceeded = errors.New("conflict retries exceeded")
)
