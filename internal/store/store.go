package store

import (
	"context"
	"errors"
	"iter"
	"slices"
	"sync"

	"github.com/fjod/go_storefront/internal/domain"
)

// Store holds the line items of one session's cart. At most one item exists
// per product id and every retained item has quantity >= 1. Mutations are
// persisted to the backend before being committed in memory, so a persist
// failure leaves the cart exactly as it was.
type Store struct {
	mu        sync.Mutex
	sessionID string
	backend   Backend
	items     []domain.LineItem
}

// Open loads the session's cart from the backend. A missing cart is not an
// error, the cart is simply created empty on first add.
func Open(ctx context.Context, sessionID string, backend Backend) (*Store, error) {
	items, err := backend.Load(ctx, sessionID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return &Store{sessionID: sessionID, backend: backend, items: items}, nil
}

// Add inserts the item, or increments the existing quantity when the product
// is already in the cart. Stock limits are an external concern, no upper
// bound is enforced here.
func (s *Store) Add(ctx context.Context, item domain.LineItem) error {
	if item.ProductID == "" {
		return &domain.ValidationError{Field: "product_id", Reason: "is required"}
	}
	if item.Quantity < 1 {
		return &domain.ValidationError{Field: "quantity", Reason: "must be at least 1"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := slices.Clone(s.items)
	found := false
	for i := range next {
		if next[i].ProductID == item.ProductID {
			next[i].Quantity += item.Quantity
			found = true
			break
		}
	}
	if !found {
		next = append(next, item)
	}
	return s.commit(ctx, next)
}

// SetQuantity sets the quantity exactly. A quantity below 1 is treated as
// removal, not as an error.
func (s *Store) SetQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return s.Remove(ctx, productID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := slices.Clone(s.items)
	for i := range next {
		if next[i].ProductID == productID {
			next[i].Quantity = quantity
			return s.commit(ctx, next)
		}
	}
	return nil
}

// Remove deletes the item if present. Removing an absent product is a no-op.
func (s *Store) Remove(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := slices.DeleteFunc(slices.Clone(s.items), func(it domain.LineItem) bool {
		return it.ProductID == productID
	})
	if len(next) == len(s.items) {
		return nil
	}
	return s.commit(ctx, next)
}

// ReplaceAll swaps the whole cart for the given items. Used by the
// synchronizer when a remote response supersedes local state.
func (s *Store) ReplaceAll(ctx context.Context, items []domain.LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, slices.Clone(items))
}

// Clear empties the cart, used after a successful checkout and on logout.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Delete(ctx, s.sessionID); err != nil {
		return err
	}
	s.items = nil
	return nil
}

// All returns a snapshot of the cart as a restartable sequence. Mutations
// after the call do not affect a sequence already handed out.
func (s *Store) All() iter.Seq[domain.LineItem] {
	s.mu.Lock()
	snapshot := slices.Clone(s.items)
	s.mu.Unlock()

	return func(yield func(domain.LineItem) bool) {
		for _, item := range snapshot {
			if !yield(item) {
				return
			}
		}
	}
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// commit persists first and only then swaps the in-memory state. Callers
// must hold s.mu.
func (s *Store) commit(ctx context.Context, next []domain.LineItem) error {
	if err := s.backend.Save(ctx, s.sessionID, next); err != nil {
		return err
	}
	s.items = next
	return nil
}
