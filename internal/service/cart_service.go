package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/habscollection/storefront/internal/entity"
	"github.com/habscollection/storefront/internal/pricing"
	"github.com/habscollection/storefront/internal/repository"
)

// CartService owns cart mutations and the server-side totals computation.
// The cart in storage is the sole source of truth; clients only display
// values the server returns.
type CartService struct {
	carts repository.CartRepository
}

func NewCartService(carts repository.CartRepository) *CartService {
	return &CartService{carts: carts}
}

// ListItems returns the cart lines for the owner, empty if no cart exists.
func (s *CartService) ListItems(ctx context.Context, ownerKey string) ([]entity.CartLine, error) {
	cart, err := s.carts.Find(ctx, ownerKey)
	if errors.Is(err, entity.ErrNotFound) {
		return []entity.CartLine{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart.Lines == nil {
		return []entity.CartLine{}, nil
	}
	return cart.Lines, nil
}

// AddItemParams carries everything needed to add a line to a cart.
type AddItemParams struct {
	ProductID string
	Size      string
	Quantity  int
	Price     float64
	Name      string
	Image     string
}

func (p AddItemParams) validate() error {
	switch {
	case p.ProductID == "":
		return fmt.Errorf("%w: product id is required", entity.ErrValidation)
	case p.Size == "":
		return fmt.Errorf("%w: size is required", entity.ErrValidation)
	case p.Quantity <= 0:
		return fmt.Errorf("%w: quantity must be positive", entity.ErrValidation)
	case p.Price <= 0:
		return fmt.Errorf("%w: price must be positive", entity.ErrValidation)
	case p.Name == "":
		return fmt.Errorf("%w: name is required", entity.ErrValidation)
	case p.Image == "":
		return fmt.Errorf("%w: image is required", entity.ErrValidation)
	}
	return nil
}

// AddItem adds quantity to an existing (productID, size) line or appends a
// new one. No stock check happens here; stock is enforced at commit time.
func (s *CartService) AddItem(ctx context.Context, ownerKey string, params AddItemParams) ([]entity.CartLine, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	slog.Info("Service: Adding item to cart", "owner", ownerKey, "product_id", params.ProductID, "size", params.Size)

	cart, err := s.carts.Find(ctx, ownerKey)
	if errors.Is(err, entity.ErrNotFound) {
		cart = &entity.Cart{OwnerKey: ownerKey}
	} else if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	if i := cart.FindLine(params.ProductID, params.Size); i >= 0 {
		cart.Lines[i].Quantity += params.Quantity
	} else {
		cart.Lines = append(cart.Lines, entity.CartLine{
			ProductID: params.ProductID,
			Size:      params.Size,
			Quantity:  params.Quantity,
			Price:     params.Price,
			Name:      params.Name,
			Image:     params.Image,
		})
	}
	cart.UpdatedAt = time.Now()

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return cart.Lines, nil
}

// UpdateItem overwrites the quantity of an existing line. A quantity of zero
// or less removes the line.
func (s *CartService) UpdateItem(ctx context.Context, ownerKey, productID, size string, quantity int) ([]entity.CartLine, error) {
	cart, err := s.carts.Find(ctx, ownerKey)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, fmt.Errorf("%w: cart", entity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	i := cart.FindLine(productID, size)
	if i < 0 {
		return nil, fmt.Errorf("%w: item", entity.ErrNotFound)
	}

	if quantity <= 0 {
		cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
	} else {
		cart.Lines[i].Quantity = quantity
	}
	cart.UpdatedAt = time.Now()

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return cart.Lines, nil
}

// RemoveItem deletes the line matching (productID, size).
func (s *CartService) RemoveItem(ctx context.Context, ownerKey, productID, size string) ([]entity.CartLine, error) {
	cart, err := s.carts.Find(ctx, ownerKey)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, fmt.Errorf("%w: cart", entity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	i := cart.FindLine(productID, size)
	if i < 0 {
		return nil, fmt.Errorf("%w: item", entity.ErrNotFound)
	}

	cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
	cart.UpdatedAt = time.Now()

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return cart.Lines, nil
}

// Clear deletes the cart entirely. Idempotent.
func (s *CartService) Clear(ctx context.Context, ownerKey string) error {
	if err := s.carts.Delete(ctx, ownerKey); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Totals computes the pricing breakdown for the owner's cart. An absent cart
// totals to zero.
func (s *CartService) Totals(ctx context.Context, ownerKey string) (entity.Totals, error) {
	lines, err := s.ListItems(ctx, ownerKey)
	if err != nil {
		return entity.Totals{}, err
	}
	if len(lines) == 0 {
		return entity.Totals{}, nil
	}
	return pricing.TotalsFor(lines), nil
}
