package cart

import (
	"context"
	"errors"

	"bazaar/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const cartColumns = `
id::text, owner_kind, customer_id::text, currency, items, discounts,
price_before_cents, price_after_cents, version, created_at, last_modified
`

func (r *postgresRepo) Create(ctx context.Context, cart domain.Cart) (*domain.Cart, error) {
	const q = `
INSERT INTO carts (id, owner_kind, customer_id, currency, items, discounts, price_before_cents, price_after_cents)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + cartColumns
	var customerID *string
	if cart.Owner.Kind == domain.OwnerKnown {
		customerID = &cart.Owner.CustomerID
	}
	row := r.pool.QueryRow(ctx, q,
		cart.ID,
		string(cart.Owner.Kind),
		customerID,
		string(cart.Currency),
		itemsOrEmpty(cart.Items),
		discountsOrEmpty(cart.Discounts),
		cart.PriceBeforeDiscounts,
		cart.PriceAfterDiscounts,
	)
	out, err := scanCart(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	const q = `SELECT ` + cartColumns + ` FROM carts WHERE id = $1`
	return r.fetch(ctx, q, id)
}

func (r *postgresRepo) GetByCustomer(ctx context.Context, customerID string) (*domain.Cart, error) {
	const q = `SELECT ` + cartColumns + ` FROM carts WHERE customer_id = $1 AND owner_kind = 'known'`
	return r.fetch(ctx, q, customerID)
}

func (r *postgresRepo) Update(ctx context.Context, cart domain.Cart) (*domain.Cart, error) {
	const q = `
UPDATE carts
SET items = $1,
    discounts = $2,
    price_before_cents = $3,
    price_after_cents = $4,
    version = version + 1,
    last_modified = now()
WHERE id = $5 AND version = $6
RETURNING ` + cartColumns
	row := r.pool.QueryRow(ctx, q,
		itemsOrEmpty(cart.Items),
		discountsOrEmpty(cart.Discounts),
		cart.PriceBeforeDiscounts,
		cart.PriceAfterDiscounts,
		cart.ID,
		cart.Version,
	)
	out, err := scanCart(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.conflictOrMissing(ctx, cart.ID)
	}
	return out, err
}

func (r *postgresRepo) Promote(ctx context.Context, cartID string, version int, customerID string) (*domain.Cart, error) {
	const q = `
UPDATE carts
SET owner_kind = 'known',
    customer_id = $1,
    version = version + 1,
    last_modified = now()
WHERE id = $2 AND version = $3 AND owner_kind = 'anonymous'
RETURNING ` + cartColumns
	row := r.pool.QueryRow(ctx, q, customerID, cartID, version)
	out, err := scanCart(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.conflictOrMissing(ctx, cartID)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) MergeInto(ctx context.Context, target domain.Cart, anonymousCartID string, anonymousVersion int) (*domain.Cart, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const q = `
UPDATE carts
SET items = $1,
    discounts = $2,
    price_before_cents = $3,
    price_after_cents = $4,
    version = version + 1,
    last_modified = now()
WHERE id = $5 AND version = $6
RETURNING ` + cartColumns
	row := tx.QueryRow(ctx, q,
		itemsOrEmpty(target.Items),
		discountsOrEmpty(target.Discounts),
		target.PriceBeforeDiscounts,
		target.PriceAfterDiscounts,
		target.ID,
		target.Version,
	)
	out, err := scanCart(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.conflictOrMissing(ctx, target.ID)
		}
		return nil, err
	}

	cmd, err := tx.Exec(ctx,
		`DELETE FROM carts WHERE id = $1 AND owner_kind = 'anonymous' AND version = $2`,
		anonymousCartID, anonymousVersion)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, r.conflictOrMissing(ctx, anonymousCartID)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) fetch(ctx context.Context, q string, args ...interface{}) (*domain.Cart, error) {
	out, err := scanCart(r.pool.QueryRow(ctx, q, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return out, err
}

// conflictOrMissing decides whether a version-guarded write missed
// because the cart is gone or because someone else got there first.
func (r *postgresRepo) conflictOrMissing(ctx context.Context, id string) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM carts WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrVersionConflict
}

func scanCart(row pgx.Row) (*domain.Cart, error) {
	var cart domain.Cart
	var ownerKind string
	var customerID *string
	var currency string
	if err := row.Scan(
		&cart.ID,
		&ownerKind,
		&customerID,
		&currency,
		&cart.Items,
		&cart.Discounts,
		&cart.PriceBeforeDiscounts,
		&cart.PriceAfterDiscounts,
		&cart.Version,
		&cart.CreatedAt,
		&cart.LastModified,
	); err != nil {
		return nil, err
	}
	cart.Owner = domain.CartOwner{Kind: domain.OwnerKind(ownerKind)}
	if customerID != nil {
		cart.Owner.CustomerID = *customerID
	}
	cart.Currency = domain.Currency(currency)
	return &cart, nil
}

func itemsOrEmpty(items []domain.CartItem) []domain.CartItem {
	if items == nil {
		return []domain.CartItem{}
	}
	return items
}

func discountsOrEmpty(discounts []string) []string {
	if discounts == nil {
		return []string{}
	}
	return discounts
}
