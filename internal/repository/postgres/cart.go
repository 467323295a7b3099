package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/habscollection/storefront/internal/entity"
	"github.com/habscollection/storefront/internal/repository"
)

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a CartRepository backed by Postgres.
func NewCartRepository(db *sql.DB) repository.CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) Find(ctx context.Context, ownerKey string) (*entity.Cart, error) {
	cart := &entity.Cart{OwnerKey: ownerKey}
	err := r.db.QueryRowContext(ctx,
		"SELECT updated_at FROM carts WHERE owner_key = $1", ownerKey,
	).Scan(&cart.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT product_id, size, quantity, price, name, image FROM cart_items WHERE owner_key = $1 ORDER BY position",
		ownerKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line entity.CartLine
		if err := rows.Scan(&line.ProductID, &line.Size, &line.Quantity, &line.Price, &line.Name, &line.Image); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		cart.Lines = append(cart.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart item rows: %w", err)
	}
	return cart, nil
}

// Save rewrites the whole cart. Carts are small, so replace is simpler than
// diffing line by line.
func (r *cartRepository) Save(ctx context.Context, cart *entity.Cart) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO carts (owner_key, updated_at) VALUES ($1, NOW())
		ON CONFLICT (owner_key) DO UPDATE SET updated_at = NOW()`,
		cart.OwnerKey,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM cart_items WHERE owner_key = $1", cart.OwnerKey); err != nil {
		return fmt.Errorf("failed to clear cart items: %w", err)
	}

	for i, line := range cart.Lines {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO cart_items (owner_key, product_id, size, quantity, price, name, image, position) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
			cart.OwnerKey, line.ProductID, line.Size, line.Quantity, line.Price, line.Name, line.Image, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert cart item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *cartRepository) Delete(ctx context.Context, ownerKey string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM carts WHERE owner_key = $1", ownerKey)
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
