package item

import (
	"context"
	"errors"
	"fmt"

	"bazaar/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) GetBySKU(ctx context.Context, sku string) (*domain.Item, error) {
	const q = `
SELECT sku, name, description, price_cents, currency
FROM items
WHERE sku = $1
`
	var it domain.Item
	var currency string
	err := r.pool.QueryRow(ctx, q, sku).Scan(
		&it.SKU,
		&it.Name,
		&it.Description,
		&it.PriceCents,
		&currency,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUnknownSKU
		}
		return nil, err
	}
	it.Currency = domain.Currency(currency)
	return &it, nil
}

func (r *postgresRepo) GetDiscounts(ctx context.Context, ids []string) ([]domain.Discount, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const q = `
SELECT id, kind, permyriad, amount_cents, description
FROM discounts
WHERE id = ANY ($1)
ORDER BY id ASC
`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Discount
	for rows.Next() {
		var d domain.Discount
		var kind string
		if err := rows.Scan(&d.ID, &kind, &d.Permyriad, &d.AmountCents, &d.Description); err != nil {
			return nil, err
		}
		d.Kind = domain.DiscountKind(kind)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) != len(ids) {
		return nil, fmt.Errorf("discount definitions missing: %w", domain.ErrNotFound)
	}
	return out, nil
}
