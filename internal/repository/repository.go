package repository

import (
	"context"

	"github.com/habscollection/storefront/internal/entity"
)

// ProductRepository handles persistence for the catalog.
type ProductRepository interface {
	FindAll(ctx context.Context) ([]entity.Product, error)
	FindBySlug(ctx context.Context, slug string) (*entity.Product, error)
	FindByID(ctx context.Context, id string) (*entity.Product, error)
	// Seed inserts initial products if none exist.
	Seed(ctx context.Context, products []entity.Product) error
}

// StockRepository mutates per-size stock counts. Decrement must be an atomic
// conditional update ("decrement if current >= requested") at the storage
// layer so concurrent checkouts cannot oversell.
type StockRepository interface {
	Availability(ctx context.Context, productID, size string) (int, error)
	// Decrement reduces stock by qty. Returns *entity.InsufficientStockError
	// and leaves stock unchanged when the current count is below qty.
	Decrement(ctx context.Context, productID, size string, qty int) error
}

// CartRepository handles persistence for carts, keyed by owner.
type CartRepository interface {
	// Find returns entity.ErrNotFound when no cart exists for the key.
	Find(ctx context.Context, ownerKey string) (*entity.Cart, error)
	Save(ctx context.Context, cart *entity.Cart) error
	// Delete is idempotent: deleting an absent cart is not an error.
	Delete(ctx context.Context, ownerKey string) error
}

// OrderRepository handles persistence for orders.
type OrderRepository interface {
	// Commit persists the order and decrements stock for every line in one
	// transaction: either the order exists and all stock moved, or nothing
	// did. Returns entity.ErrDuplicate when an order for the same payment
	// intent already exists, *entity.InsufficientStockError when any line
	// cannot be covered.
	Commit(ctx context.Context, order *entity.Order) error
	// FindByIdentifier matches either the human-readable order id or the
	// store-assigned id.
	FindByIdentifier(ctx context.Context, identifier string) (*entity.Order, error)
	FindByPaymentIntent(ctx context.Context, intentID string) (*entity.Order, error)
	FindRecentByUser(ctx context.Context, userID string, limit int) ([]entity.Order, error)
	UpdateStatus(ctx context.Context, orderID, status string) error
}

// UserRepository handles persistence for customer accounts.
type UserRepository interface {
	// Create returns entity.ErrDuplicate when the email is taken.
	Create(ctx context.Context, user *entity.User) error
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
