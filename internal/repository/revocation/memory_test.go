package revocation

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryRevokeAndCheck(t *testing.T) {
	ctx := context.Background()
	reg := NewMemory()

	revoked, err := reg.IsRevoked(ctx, "jti-1")
	if err != nil || revoked {
		t.Fatalf("fresh id should not be revoked, got %v %v", revoked, err)
	}

	if err := reg.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	revoked, err = reg.IsRevoked(ctx, "jti-1")
	if err != nil || !revoked {
		t.Fatalf("expected revoked, got %v %v", revoked, err)
	}
}

func TestMemoryRevokeIdempotent(t *testing.T) {
	ctx := context.Background()
	reg := NewMemory()

	if err := reg.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := reg.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("second revoke: %v", err)
	}
	revoked, err := reg.IsRevoked(ctx, "jti-1")
	if err != nil || !revoked {
		t.Fatalf("expected revoked, got %v %v", revoked, err)
	}
}

func TestMemoryExpiredEntriesDropOut(t *testing.T) {
	ctx := context.Background()
	reg := NewMemory()

	if err := reg.Revoke(ctx, "jti-old", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	revoked, err := reg.IsRevoked(ctx, "jti-old")
	if err != nil || revoked {
		t.Fatalf("expired entry should read as not revoked, got %v %v", revoked, err)
	}
}

func TestMemoryPurge(t *testing.T) {
	ctx := context.Background()
	reg := NewMemory().(*memoryRegistry)

	_ = reg.Revoke(ctx, "jti-old", time.Now().Add(-time.Minute))
	_ = reg.Revoke(ctx, "jti-live", time.Now().Add(time.Hour))

	if err := reg.Purge(ctx, time.Now()); err != nil {
		t.Fatalf("purge: %v", err)
	}
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	if _, ok := reg.entries["jti-old"]; ok {
		t.Fatalf("expected expired entry purged")
	}
	if _, ok := reg.entries["jti-live"]; !ok {
		t.Fatalf("live entry must survive purge")
	}
}

func TestPurgeLoopSweepsExpiredEntries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reg := NewMemory().(*memoryRegistry)

	_ = reg.Revoke(ctx, "jti-old", time.Now().Add(-time.Minute))
	_ = reg.Revoke(ctx, "jti-live", time.Now().Add(time.Hour))

	go PurgeLoop(ctx, reg, time.Millisecond, nil)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		reg.mu.RLock()
		_, oldPresent := reg.entries["jti-old"]
		_, livePresent := reg.entries["jti-live"]
		reg.mu.RUnlock()
		if !oldPresent {
			if !livePresent {
				t.Fatalf("live entry must survive the sweep")
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expired entry was never purged")
}

func TestMemoryConcurrentRevokes(t *testing.T) {
	ctx := context.Background()
	reg := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = reg.Revoke(ctx, "shared", time.Now().Add(time.Hour))
			_, _ = reg.IsRevoked(ctx, "shared")
		}()
	}
	wg.Wait()

	revoked, err := reg.IsRevoked(ctx, "shared")
	if err != nil || !revoked {
		t.Fatalf("expected revoked after concurrent writes, got %v %v", revoked, err)
	}
}
