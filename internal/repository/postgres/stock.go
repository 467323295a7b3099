package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/habscollection/storefront/internal/entity"
	"github.com/habscollection/storefront/internal/repository"
)

type stockRepository struct {
	db *sql.DB
}

// NewStockRepository creates a StockRepository backed by Postgres.
func NewStockRepository(db *sql.DB) repository.StockRepository {
	return &stockRepository{db: db}
}

func (r *stockRepository) Availability(ctx context.Context, productID, size string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT count FROM product_stock WHERE product_id = $1 AND size = $2",
		productID, size,
	).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, entity.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query stock: %w", err)
	}
	return count, nil
}

func (r *stockRepository) Decrement(ctx context.Context, productID, size string, qty int) error {
	return decrementStock(ctx, r.db, productID, size, qty)
}

// execer lets the conditional decrement run against both *sql.DB and *sql.Tx,
// so order commit can reuse it inside its transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// decrementStock is the single point of stock mutation: a conditional update
// that only fires when the current count covers the requested quantity.
func decrementStock(ctx context.Context, db execer, productID, size string, qty int) error {
	res, err := db.ExecContext(ctx,
		"UPDATE product_stock SET count = count - $3 WHERE product_id = $1 AND size = $2 AND count >= $3",
		productID, size, qty,
	)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		var available int
		err := db.QueryRowContext(ctx,
			"SELECT count FROM product_stock WHERE product_id = $1 AND size = $2",
			productID, size,
		).Scan(&available)
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("failed to read remaining stock: %w", err)
		}
		return &entity.InsufficientStockError{
			ProductID: productID,
			Size:      size,
			Available: available,
			Requested: qty,
		}
	}
	return nil
}
