package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/habscollection/storefront/internal/entity"
	"github.com/habscollection/storefront/internal/repository"
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates an OrderRepository backed by Postgres.
func NewOrderRepository(db *sql.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

// Commit inserts the order and decrements stock for every line in one
// transaction. The UNIQUE constraint on payment_intent_id makes retried
// submissions idempotent instead of double-committing.
func (r *orderRepository) Commit(ctx context.Context, order *entity.Order) error {
	customer, err := json.Marshal(order.Customer)
	if err != nil {
		return fmt.Errorf("failed to marshal customer: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var inserted bool
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (id, order_id, payment_intent_id, user_id, customer, subtotal, shipping, total, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (payment_intent_id) DO NOTHING RETURNING true`,
		order.ID, order.OrderID, order.PaymentIntentID, order.UserID, customer,
		order.Subtotal, order.Shipping, order.Total, order.Status, order.CreatedAt,
	).Scan(&inserted)
	if err == sql.ErrNoRows {
		// An order for this payment intent already exists.
		return entity.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO order_items (order_id, product_id, size, quantity, price, name, image) VALUES ($1, $2, $3, $4, $5, $6, $7)",
			order.ID, item.ProductID, item.Size, item.Quantity, item.Price, item.Name, item.Image,
		)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}

		if err := decrementStock(ctx, tx, item.ProductID, item.Size, item.Quantity); err != nil {
			// Aborts the whole commit: no order row, no partial decrements.
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

const orderColumns = "id, order_id, payment_intent_id, user_id, customer, subtotal, shipping, total, status, created_at"

func (r *orderRepository) FindByIdentifier(ctx context.Context, identifier string) (*entity.Order, error) {
	return r.findOne(ctx, "order_id = $1 OR id = $1", identifier)
}

func (r *orderRepository) FindByPaymentIntent(ctx context.Context, intentID string) (*entity.Order, error) {
	return r.findOne(ctx, "payment_intent_id = $1", intentID)
}

func (r *orderRepository) findOne(ctx context.Context, where string, arg any) (*entity.Order, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE "+where, arg)
	order, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func scanOrder(row rowScanner) (*entity.Order, error) {
	var order entity.Order
	var customer []byte
	err := row.Scan(&order.ID, &order.OrderID, &order.PaymentIntentID, &order.UserID,
		&customer, &order.Subtotal, &order.Shipping, &order.Total, &order.Status, &order.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	if err := json.Unmarshal(customer, &order.Customer); err != nil {
		return nil, fmt.Errorf("failed to unmarshal customer: %w", err)
	}
	return &order, nil
}

func (r *orderRepository) loadItems(ctx context.Context, order *entity.Order) error {
	rows, err := r.db.QueryContext(ctx,
		"SELECT product_id, size, quantity, price, name, image FROM order_items WHERE order_id = $1",
		order.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item entity.CartLine
		if err := rows.Scan(&item.ProductID, &item.Size, &item.Quantity, &item.Price, &item.Name, &item.Image); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	return rows.Err()
}

func (r *orderRepository) FindRecentByUser(ctx context.Context, userID string, limit int) ([]entity.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2",
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []entity.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order rows: %w", err)
	}

	for i := range orders {
		if err := r.loadItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, orderID, status string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE orders SET status = $2 WHERE order_id = $1",
		orderID, status,
	)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return entity.ErrNotFound
	}
	return nil
}
