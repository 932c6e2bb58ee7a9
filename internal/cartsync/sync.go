// Package cartsync keeps a local line-item store consistent with a remote
// cart service. Every successful remote write returns the full cart, which
// replaces local state wholesale (replace-on-success); a failed write leaves
// local state untouched, so optimistic edits never survive a divergence.
package cartsync

import (
	"context"
	"iter"
	"sync"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/store"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CartClient is the remote cart service as seen by the synchronizer.
// Consumers define this interface, not the HTTP implementation.
type CartClient interface {
	Get(ctx context.Context) (*domain.Cart, error)
	AddItem(ctx context.Context, item domain.LineItem) (*domain.Cart, error)
	UpdateItem(ctx context.Context, productID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, productID string) (*domain.Cart, error)
}

type Synchronizer struct {
	store  *store.Store
	client CartClient
	logger *zap.Logger
	mu     sync.Mutex         // pushes are not pipelined, replace-on-success needs ordering
	sfg    singleflight.Group // prevents concurrent pulls for the same session
}

func New(st *store.Store, client CartClient, logger *zap.Logger) *Synchronizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synchronizer{store: st, client: client, logger: logger}
}

// Add pushes the addition to the remote cart and adopts its response.
func (s *Synchronizer) Add(ctx context.Context, item domain.LineItem) error {
	if item.ProductID == "" {
		return &domain.ValidationError{Field: "product_id", Reason: "is required"}
	}
	if item.Quantity < 1 {
		return &domain.ValidationError{Field: "quantity", Reason: "must be at least 1"}
	}

	return s.push(ctx, func(ctx context.Context) (*domain.Cart, error) {
		return s.client.AddItem(ctx, item)
	})
}

// SetQuantity pushes an exact quantity. Below 1 it becomes a removal.
func (s *Synchronizer) SetQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return s.Remove(ctx, productID)
	}
	return s.push(ctx, func(ctx context.Context) (*domain.Cart, error) {
		return s.client.UpdateItem(ctx, productID, quantity)
	})
}

func (s *Synchronizer) Remove(ctx context.Context, productID string) error {
	return s.push(ctx, func(ctx context.Context) (*domain.Cart, error) {
		return s.client.RemoveItem(ctx, productID)
	})
}

// Pull fetches the remote cart wholesale and replaces local state. Invoked
// on view entry. Concurrent pulls collapse into one remote call.
func (s *Synchronizer) Pull(ctx context.Context) error {
	_, err, _ := s.sfg.Do("pull", func() (interface{}, error) {
		cart, err := s.client.Get(ctx)
		if err != nil {
			return nil, err
		}
		return nil, s.store.ReplaceAll(ctx, cart.Items)
	})
	return err
}

// Clear empties the local store. The remote cart is cleared by the order
// service as part of order creation, not from here.
func (s *Synchronizer) Clear(ctx context.Context) error {
	return s.store.Clear(ctx)
}

func (s *Synchronizer) All() iter.Seq[domain.LineItem] {
	return s.store.All()
}

func (s *Synchronizer) push(ctx context.Context, call func(context.Context) (*domain.Cart, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := call(ctx)
	if err != nil {
		// No optimistic mutation was made, the local store is unchanged.
		return err
	}

	if err := s.store.ReplaceAll(ctx, cart.Items); err != nil {
		s.logger.Warn("failed to persist reconciled cart", zap.Error(err))
		return err
	}
	return nil
}
