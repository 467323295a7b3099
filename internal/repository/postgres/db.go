package postgres

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
)

func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrateDB(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	slog.Info("Database connected and migrated")
	return db, nil
}

func migrateDB(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			slug TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price DOUBLE PRECISION NOT NULL DEFAULT 0,
			reference TEXT NOT NULL DEFAULT '',
			image_main TEXT NOT NULL DEFAULT '',
			image_hover TEXT NOT NULL DEFAULT '',
			sizes TEXT[] NOT NULL DEFAULT '{}',
			on_sale BOOLEAN NOT NULL DEFAULT FALSE,
			sold_out BOOLEAN NOT NULL DEFAULT FALSE
		);

		CREATE TABLE IF NOT EXISTS product_stock (
			product_id TEXT NOT NULL REFERENCES products(id),
			size TEXT NOT NULL,
			count INT NOT NULL DEFAULT 0 CHECK (count >= 0),
			PRIMARY KEY (product_id, size)
		);

		CREATE TABLE IF NOT EXISTS carts (
			owner_key TEXT PRIMARY KEY,
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS cart_items (
			owner_key TEXT NOT NULL REFERENCES carts(owner_key) ON DELETE CASCADE,
			product_id TEXT NOT NULL,
			size TEXT NOT NULL,
			quantity INT NOT NULL DEFAULT 1,
			price DOUBLE PRECISION NOT NULL DEFAULT 0,
			name TEXT NOT NULL DEFAULT '',
			image TEXT NOT NULL DEFAULT '',
			position INT NOT NULL DEFAULT 0,
			PRIMARY KEY (owner_key, product_id, size)
		);

		CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			order_id TEXT NOT NULL UNIQUE,
			payment_intent_id TEXT NOT NULL UNIQUE,
			user_id TEXT NOT NULL DEFAULT '',
			customer JSONB NOT NULL DEFAULT '{}',
			subtotal DOUBLE PRECISION NOT NULL DEFAULT 0,
			shipping DOUBLE PRECISION NOT NULL DEFAULT 0,
			total DOUBLE PRECISION NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS order_items (
			id SERIAL PRIMARY KEY,
			order_id TEXT NOT NULL REFERENCES orders(id),
			product_id TEXT NOT NULL,
			size TEXT NOT NULL,
			quantity INT NOT NULL DEFAULT 1,
			price DOUBLE PRECISION NOT NULL DEFAULT 0,
			name TEXT NOT NULL DEFAULT '',
			image TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		);
	`)
	return err
}
