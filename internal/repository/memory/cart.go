package memory

import (
	"context"
	"sync"
	"time"

	"github.com/habscollection/storefront/internal/entity"
)

// CartStore implements repository.CartRepository over a mutex-guarded map.
type CartStore struct {
	mu    sync.RWMutex
	carts map[string]*entity.Cart
}

func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[string]*entity.Cart)}
}

func (s *CartStore) Find(ctx context.Context, ownerKey string) (*entity.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cart, ok := s.carts[ownerKey]
	if !ok {
		return nil, entity.ErrNotFound
	}
	clone := cloneCart(cart)
	return &clone, nil
}

func (s *CartStore) Save(ctx context.Context, cart *entity.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := cloneCart(cart)
	clone.UpdatedAt = time.Now()
	s.carts[cart.OwnerKey] = &clone
	return nil
}

func (s *CartStore) Delete(ctx context.Context, ownerKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, ownerKey)
	return nil
}

func cloneCart(c *entity.Cart) entity.Cart {
	clone := *c
	clone.Lines = append([]entity.CartLine(nil), c.Lines...)
	return clone
}
