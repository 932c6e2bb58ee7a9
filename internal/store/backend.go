package store

import (
	"context"
	"errors"

	"github.com/fjod/go_storefront/internal/domain"
)

// Backend is the keyed storage a cart is persisted to after every mutation.
// Consumers define this interface, not the storage implementation.
type Backend interface {
	Load(ctx context.Context, sessionID string) ([]domain.LineItem, error)
	Save(ctx context.Context, sessionID string, items []domain.LineItem) error
	Delete(ctx context.Context, sessionID string) error
}

var ErrNotFound = errors.New("cart not found")
