package revocation

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRegistry struct {
	pool *pgxpool.Pool
}

// NewPostgres returns a Registry backed by the revoked_tokens table.
func NewPostgres(pool *pgxpool.Pool) Registry {
	return &postgresRegistry{pool: pool}
}

func (r *postgresRegistry) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	const q = `
INSERT INTO revoked_tokens (token_id, expires_at)
VALUES ($1, $2)
ON CONFLICT (token_id) DO NOTHING
`
	_, err := r.pool.Exec(ctx, q, tokenID, expiresAt)
	return err
}

func (r *postgresRegistry) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	const q = `
SELECT EXISTS (
	SELECT 1 FROM revoked_tokens WHERE token_id = $1 AND expires_at > now()
)
`
	var revoked bool
	if err := r.pool.QueryRow(ctx, q, tokenID).Scan(&revoked); err != nil {
		return false, err
	}
	return revoked, nil
}

func (r *postgresRegistry) Purge(ctx context.Context, now time.Time) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at < $1`, now)
	return err
}
