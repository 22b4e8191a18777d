package revocation

import (
	"context"
	"time"
)

// Registry tracks refresh-token ids that were explicitly invalidated.
// Entries only matter until the token's natural expiry; implementations
// may drop them afterwards.
type Registry interface {
	// Revoke records the token id. Revoking an already-revoked id is a no-op.
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	// Purge drops entries whose expiry is in the past.
	Purge(ctx context.Context, now time.Time) error
}
