package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type itemSeed struct {
	SKU         string
	Name        string
	Description string
	PriceCents  int64
	Currency    string
}

type discountSeed struct {
	ID          string
	Kind        string
	Permyriad   int
	AmountCents int64
	Description string
}

// Apply inserts basic seed data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	items := []itemSeed{
		{
			SKU:         "SKU-DEMO-TSHIRT",
			Name:        "Demo T-Shirt",
			Description: "Soft cotton tee for demo purposes",
			PriceCents:  1999,
			Currency:    "USD",
		},
		{
			SKU:         "SKU-DEMO-MUG",
			Name:        "Demo Mug",
			Description: "Ceramic mug with demo logo",
			PriceCents:  1299,
			Currency:    "USD",
		},
	}
	for _, it := range items {
		if err := upsertItem(ctx, pool, it); err != nil {
			return fmt.Errorf("upsert item %s: %w", it.SKU, err)
		}
	}

	discounts := []discountSeed{
		{
			ID:          "spring-15",
			Kind:        "relative",
			Permyriad:   1500,
			Description: "15% off everything",
		},
		{
			ID:          "welcome-5",
			Kind:        "absolute",
			AmountCents: 500,
			Description: "5 off your first order",
		},
	}
	for _, d := range discounts {
		if err := upsertDiscount(ctx, pool, d); err != nil {
			return fmt.Errorf("upsert discount %s: %w", d.ID, err)
		}
	}

	return nil
}

func upsertItem(ctx context.Context, pool *pgxpool.Pool, it itemSeed) error {
	const q = `
INSERT INTO items (sku, name, description, price_cents, currency)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (sku) DO UPDATE
SET name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency
`
	_, err := pool.Exec(ctx, q, it.SKU, it.Name, it.Description, it.PriceCents, it.Currency)
	return err
}

func upsertDiscount(ctx context.Context, pool *pgxpool.Pool, d discountSeed) error {
	const q = `
INSERT INTO discounts (id, kind, permyriad, amount_cents, description)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE
SET kind = EXCLUDED.kind,
    permyriad = EXCLUDED.permyriad,
    amount_cents = EXCLUDED.amount_cents,
    description = EXCLUDED.description
`
	_, err := pool.Exec(ctx, q, d.ID, d.Kind, d.Permyriad, d.AmountCents, d.Description)
	return err
}
