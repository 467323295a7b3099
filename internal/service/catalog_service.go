package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/habscollection/storefront/internal/entity"
	"github.com/habscollection/storefront/internal/repository"
)

// CatalogService reads products and exposes the stock operations.
type CatalogService struct {
	products repository.ProductRepository
	stock    repository.StockRepository
}

func NewCatalogService(products repository.ProductRepository, stock repository.StockRepository) *CatalogService {
	return &CatalogService{products: products, stock: stock}
}

func (s *CatalogService) Products(ctx context.Context) ([]entity.Product, error) {
	return s.products.FindAll(ctx)
}

func (s *CatalogService) ProductBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	return s.products.FindBySlug(ctx, slug)
}

// Stock returns the full per-size stock map for a product.
func (s *CatalogService) Stock(ctx context.Context, productID string) (map[string]int, error) {
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return p.Stock, nil
}

// StockForSize returns the available count for one size.
func (s *CatalogService) StockForSize(ctx context.Context, productID, size string) (int, error) {
	return s.stock.Availability(ctx, productID, size)
}

// DecrementStock reduces stock for (productID, size) by qty. The storage
// layer enforces the conditional decrement; this never drives stock negative.
func (s *CatalogService) DecrementStock(ctx context.Context, productID, size string, qty int) (int, error) {
	if qty <= 0 {
		return 0, fmt.Errorf("%w: quantity must be positive", entity.ErrValidation)
	}

	if err := s.stock.Decrement(ctx, productID, size, qty); err != nil {
		return 0, err
	}

	remaining, err := s.stock.Availability(ctx, productID, size)
	if err != nil {
		return 0, err
	}

	slog.Info("Service: Stock decremented", "product_id", productID, "size", size, "quantity", qty, "remaining", remaining)
	return remaining, nil
}
