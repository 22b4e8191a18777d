package revocation

import (
	"context"
	"io"
	"log"
	"time"
)

// PurgeLoop drops expired registry entries every interval until ctx is
// cancelled. This keeps persistent registries bounded by the set of
// revoked-and-not-yet-expired tokens; the in-memory registry already
// drops expired entries on read.
func PurgeLoop(ctx context.Context, reg Registry, interval time.Duration, logger *log.Logger) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := reg.Purge(ctx, now); err != nil {
				logger.Printf("purge revoked tokens: %v", err)
			}
		}
	}
}
