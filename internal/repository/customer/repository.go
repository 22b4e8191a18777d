package customer

import (
	"context"

	"bazaar/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	// Update rewrites email and name fields. A taken email fails with
	// domain.ErrAlreadyExists.
	Update(ctx context.Context, c domain.Customer) (*domain.Customer, error)
}
