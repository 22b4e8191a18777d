package cart

import (
	"context"

	"bazaar/internal/domain"
)

// Repository persists carts. Every write that carries a Version is an
// optimistic-concurrency check: when the stored version differs the
// write fails with domain.ErrVersionConflict and nothing changes.
type Repository interface {
	Create(ctx context.Context, cart domain.Cart) (*domain.Cart, error)
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	// GetByCustomer returns the customer's active known cart.
	GetByCustomer(ctx context.Context, customerID string) (*domain.Cart, error)
	// Update replaces items, discounts and totals of the cart identified
	// by cart.ID at cart.Version.
	Update(ctx context.Context, cart domain.Cart) (*domain.Cart, error)
	// Promote rewrites an anonymous cart's owner to the customer. It
	// only matches carts still anonymous, so promotion happens at most
	// once.
	Promote(ctx context.Context, cartID string, version int, customerID string) (*domain.Cart, error)
	// MergeInto applies target (an Update at target.Version) and deletes
	// the anonymous cart at anonymousVersion in one transaction: either
	// both are observed or neither is. A write to either cart since it
	// was read fails the whole merge with domain.ErrVersionConflict.
	MergeInto(ctx context.Context, target domain.Cart, anonymousCartID string, anonymousVersion int) (*domain.Cart, error)
}
