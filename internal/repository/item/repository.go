package item

import (
	"context"

	"bazaar/internal/domain"
)

// Repository resolves SKUs to priced catalog items and discount ids to
// their definitions.
type Repository interface {
	GetBySKU(ctx context.Context, sku string) (*domain.Item, error)
	// GetDiscounts returns the definitions for the given ids. A missing
	// id fails with domain.ErrNotFound.
	GetDiscounts(ctx context.Context, ids []string) ([]domain.Discount, error)
}
