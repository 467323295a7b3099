package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/habscollection/storefront/internal/entity"
	"github.com/habscollection/storefront/internal/repository"
)

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a ProductRepository backed by Postgres.
func NewProductRepository(db *sql.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

const productColumns = "id, slug, name, description, price, reference, image_main, image_hover, sizes, on_sale, sold_out"

func (r *productRepository) FindAll(ctx context.Context) ([]entity.Product, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product rows: %w", err)
	}

	for i := range products {
		if err := r.loadStock(ctx, &products[i]); err != nil {
			return nil, err
		}
	}
	return products, nil
}

func (r *productRepository) FindBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	return r.findOne(ctx, "slug = $1", slug)
}

func (r *productRepository) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.findOne(ctx, "id = $1", id)
}

func (r *productRepository) findOne(ctx context.Context, where string, arg any) (*entity.Product, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE "+where, arg)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadStock(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.Slug, &p.Name, &p.Description, &p.Price, &p.Reference,
		&p.Images.Main, &p.Images.Hover, pq.Array(&p.Sizes), &p.OnSale, &p.SoldOut)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}
	return &p, nil
}

func (r *productRepository) loadStock(ctx context.Context, p *entity.Product) error {
	rows, err := r.db.QueryContext(ctx, "SELECT size, count FROM product_stock WHERE product_id = $1", p.ID)
	if err != nil {
		return fmt.Errorf("failed to query stock for product %s: %w", p.ID, err)
	}
	defer rows.Close()

	p.Stock = make(map[string]int)
	for rows.Next() {
		var size string
		var count int
		if err := rows.Scan(&size, &count); err != nil {
			return fmt.Errorf("failed to scan stock row: %w", err)
		}
		p.Stock[size] = count
	}
	return rows.Err()
}

func (r *productRepository) Seed(ctx context.Context, products []entity.Product) error {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // already seeded
	}

	for _, p := range products {
		_, err := r.db.ExecContext(ctx,
			"INSERT INTO products (id, slug, name, description, price, reference, image_main, image_hover, sizes, on_sale, sold_out) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)",
			p.ID, p.Slug, p.Name, p.Description, p.Price, p.Reference, p.Images.Main, p.Images.Hover, pq.Array(p.Sizes), p.OnSale, p.SoldOut,
		)
		if err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.ID, err)
		}
		for size, c := range p.Stock {
			_, err := r.db.ExecContext(ctx,
				"INSERT INTO product_stock (product_id, size, count) VALUES ($1, $2, $3)",
				p.ID, size, c,
			)
			if err != nil {
				return fmt.Errorf("failed to seed stock for product %s size %s: %w", p.ID, size, err)
			}
		}
	}
	return nil
}
