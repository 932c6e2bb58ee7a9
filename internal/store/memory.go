package store

import (
	"context"
	"slices"
	"sync"

	"github.com/fjod/go_storefront/internal/domain"
)

// MemoryBackend is the ephemeral in-process medium, used when no redis is
// configured and in tests.
type MemoryBackend struct {
	mu    sync.RWMutex
	carts map[string][]domain.LineItem
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{carts: make(map[string][]domain.LineItem)}
}

func (m *MemoryBackend) Load(_ context.Context, sessionID string) ([]domain.LineItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items, ok := m.carts[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(items), nil
}

func (m *MemoryBackend) Save(_ context.Context, sessionID string, items []domain.LineItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[sessionID] = slices.Clone(items)
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionID)
	return nil
}
