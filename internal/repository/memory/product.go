// Package memory provides in-memory repository implementations with the same
// semantics as the Postgres ones. Used for tests and the memory storage mode.
package memory

import (
	"context"
	"sync"

	"github.com/habscollection/storefront/internal/entity"
)

// ProductStore implements repository.ProductRepository and
// repository.StockRepository over a mutex-guarded map.
type ProductStore struct {
	mu       sync.RWMutex
	products map[string]*entity.Product
	order    []string
}

func NewProductStore() *ProductStore {
	return &ProductStore{products: make(map[string]*entity.Product)}
}

func (s *ProductStore) FindAll(ctx context.Context) ([]entity.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]entity.Product, 0, len(s.order))
	for _, id := range s.order {
		products = append(products, cloneProduct(s.products[id]))
	}
	return products, nil
}

func (s *ProductStore) FindBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if p.Slug == slug {
			clone := cloneProduct(p)
			return &clone, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (s *ProductStore) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	clone := cloneProduct(p)
	return &clone, nil
}

func (s *ProductStore) Seed(ctx context.Context, products []entity.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.products) > 0 {
		return nil // already seeded
	}
	for _, p := range products {
		clone := cloneProduct(&p)
		s.products[p.ID] = &clone
		s.order = append(s.order, p.ID)
	}
	return nil
}

func (s *ProductStore) Availability(ctx context.Context, productID, size string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[productID]
	if !ok {
		return 0, entity.ErrNotFound
	}
	count, ok := p.Stock[size]
	if !ok {
		return 0, entity.ErrNotFound
	}
	return count, nil
}

// Decrement applies the conditional decrement under the store lock, matching
// the atomic UPDATE of the Postgres implementation.
func (s *ProductStore) Decrement(ctx context.Context, productID, size string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decrementLocked(productID, size, qty)
}

func (s *ProductStore) decrementLocked(productID, size string, qty int) error {
	p, ok := s.products[productID]
	if !ok {
		return &entity.InsufficientStockError{ProductID: productID, Size: size, Requested: qty}
	}
	current := p.Stock[size]
	if current < qty {
		return &entity.InsufficientStockError{
			ProductID: productID,
			Size:      size,
			Available: current,
			Requested: qty,
		}
	}
	p.Stock[size] = current - qty
	return nil
}

func cloneProduct(p *entity.Product) entity.Product {
	clone := *p
	clone.Sizes = append([]string(nil), p.Sizes...)
	clone.Stock = make(map[string]int, len(p.Stock))
	for size, count := range p.Stock {
		clone.Stock[size] = count
	}
	clone.Images.Gallery = append([]string(nil), p.Images.Gallery...)
	return clone
}
