package revocation

import (
	"context"
	"sync"
	"time"
)

type memoryRegistry struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

// NewMemory returns an in-process Registry. Suitable for tests and
// single-instance deployments.
func NewMemory() Registry {
	return &memoryRegistry{entries: make(map[string]time.Time)}
}

func (m *memoryRegistry) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	m.mu.Lock()
	if _, ok := m.entries[tokenID]; !ok {
		m.entries[tokenID] = expiresAt
	}
	m.mu.Unlock()
	return nil
}

func (m *memoryRegistry) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.RLock()
	expiresAt, ok := m.entries[tokenID]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if time.Now().After(expiresAt) {
		// Past natural expiry the token is unusable anyway.
		m.mu.Lock()
		delete(m.entries, tokenID)
		m.mu.Unlock()
		return false, nil
	}
	return true, nil
}

func (m *memoryRegistry) Purge(_ context.Context, now time.Time) error {
	m.mu.Lock()
	for id, expiresAt := range m.entries {
		if now.After(expiresAt) {
			delete(m.entries, id)
		}
	}
	m.mu.Unlock()
	return nil
}
