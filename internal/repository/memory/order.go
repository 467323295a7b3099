package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/habscollection/storefront/internal/entity"
)

// OrderStore implements repository.OrderRepository. It shares the ProductStore
// so Commit can decrement stock with the same all-or-nothing semantics as the
// Postgres transaction.
type OrderStore struct {
	mu       sync.RWMutex
	products *ProductStore
	orders   map[string]*entity.Order // keyed by store id
	byIntent map[string]string        // payment intent id -> store id
}

func NewOrderStore(products *ProductStore) *OrderStore {
	return &OrderStore{
		products: products,
		orders:   make(map[string]*entity.Order),
		byIntent: make(map[string]string),
	}
}

func (s *OrderStore) Commit(ctx context.Context, order *entity.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byIntent[order.PaymentIntentID]; exists {
		return entity.ErrDuplicate
	}

	// Hold the product lock across check and apply so the commit is atomic.
	s.products.mu.Lock()
	defer s.products.mu.Unlock()

	for _, item := range order.Items {
		p, ok := s.products.products[item.ProductID]
		if !ok || p.Stock[item.Size] < item.Quantity {
			available := 0
			if ok {
				available = p.Stock[item.Size]
			}
			return &entity.InsufficientStockError{
				ProductID: item.ProductID,
				Size:      item.Size,
				Available: available,
				Requested: item.Quantity,
			}
		}
	}
	for _, item := range order.Items {
		p := s.products.products[item.ProductID]
		p.Stock[item.Size] -= item.Quantity
	}

	clone := cloneOrder(order)
	s.orders[order.ID] = &clone
	s.byIntent[order.PaymentIntentID] = order.ID
	return nil
}

func (s *OrderStore) FindByIdentifier(ctx context.Context, identifier string) (*entity.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if order, ok := s.orders[identifier]; ok {
		clone := cloneOrder(order)
		return &clone, nil
	}
	for _, order := range s.orders {
		if order.OrderID == identifier {
			clone := cloneOrder(order)
			return &clone, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (s *OrderStore) FindByPaymentIntent(ctx context.Context, intentID string) (*entity.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byIntent[intentID]
	if !ok {
		return nil, entity.ErrNotFound
	}
	clone := cloneOrder(s.orders[id])
	return &clone, nil
}

func (s *OrderStore) FindRecentByUser(ctx context.Context, userID string, limit int) ([]entity.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var orders []entity.Order
	for _, order := range s.orders {
		if order.UserID == userID {
			orders = append(orders, cloneOrder(order))
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

func (s *OrderStore) UpdateStatus(ctx context.Context, orderID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, order := range s.orders {
		if order.OrderID == orderID {
			order.Status = status
			return nil
		}
	}
	return entity.ErrNotFound
}

func cloneOrder(o *entity.Order) entity.Order {
	clone := *o
	clone.Items = append([]entity.CartLine(nil), o.Items...)
	return clone
}
