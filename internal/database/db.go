package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/codform/order-api/internal/config"
	"github.com/codform/order-api/pkg/logger"
	"github.com/codform/order-api/pkg/retry"
)

// Database wraps the sqlx connection pool.
type Database struct {
	DB     *sqlx.DB
	logger logger.Logger
}

// New connects to Postgres, retrying briefly so the service survives a
// database that comes up a few seconds after it does.
func New(cfg *config.Config, logger logger.Logger) (*Database, error) {
	var db *sqlx.DB

	connect := func() error {
		var err error
		db, err = sqlx.Connect("postgres", cfg.GetDBConnString())
		return err
	}

	err := retry.Do(context.Background(), connect, &retry.Config{
		MaxAttempts: 5,
		Backoff:     retry.NewDefaultExponentialBackoff(),
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	logger.Info("Connected to database", "host", cfg.DB.Host, "database", cfg.DB.Name)

	return &Database{
		DB:     db,
		logger: logger,
	}, nil
}

// Ping checks the database connection.
func (d *Database) Ping(ctx context.Context) error {
	return d.DB.PingContext(ctx)
}

// Close closes the connection pool.
func (d *Database) Close() error {
	return d.DB.Close()
}

// RunMigrations creates the schema. Kept as plain DDL for now; a
// migration tool becomes worthwhile once the schema starts changing.
func (d *Database) RunMigrations() error {
	schema := `
	CREATE TABLE IF NOT EXISTS stores (
		id VARCHAR(50) PRIMARY KEY,
		shop_domain VARCHAR(255) NOT NULL UNIQUE,
		access_token TEXT NOT NULL DEFAULT '',
		form_enabled BOOLEAN NOT NULL DEFAULT TRUE,
		plan VARCHAR(20) NOT NULL DEFAULT 'free',
		orders_this_month INT NOT NULL DEFAULT 0,
		month_reset_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		button_text VARCHAR(100) NOT NULL DEFAULT 'Cash on Delivery',
		button_color VARCHAR(20) NOT NULL DEFAULT '#000000',
		button_text_color VARCHAR(20) NOT NULL DEFAULT '#ffffff',
		show_name BOOLEAN NOT NULL DEFAULT TRUE,
		show_phone BOOLEAN NOT NULL DEFAULT TRUE,
		show_address BOOLEAN NOT NULL DEFAULT TRUE,
		show_city BOOLEAN NOT NULL DEFAULT TRUE,
		show_pincode BOOLEAN NOT NULL DEFAULT TRUE,
		show_state BOOLEAN NOT NULL DEFAULT FALSE,
		label_name VARCHAR(100) NOT NULL DEFAULT 'Full Name',
		label_phone VARCHAR(100) NOT NULL DEFAULT 'Phone Number',
		label_address VARCHAR(100) NOT NULL DEFAULT 'Address',
		label_city VARCHAR(100) NOT NULL DEFAULT 'City',
		label_pincode VARCHAR(100) NOT NULL DEFAULT 'Pincode',
		label_state VARCHAR(100) NOT NULL DEFAULT 'State',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS cod_orders (
		id VARCHAR(50) PRIMARY KEY,
		store_id VARCHAR(50) NOT NULL REFERENCES stores(id),
		customer_name VARCHAR(255) NOT NULL,
		customer_phone VARCHAR(50) NOT NULL,
		customer_address TEXT NOT NULL,
		customer_city VARCHAR(100) NOT NULL,
		customer_pincode VARCHAR(20) NOT NULL,
		customer_state VARCHAR(100),
		customer_email VARCHAR(255) NOT NULL,
		product_id VARCHAR(100) NOT NULL,
		product_title VARCHAR(255) NOT NULL,
		product_price DECIMAL(10, 2) NOT NULL,
		product_variant_id VARCHAR(100),
		product_image TEXT,
		quantity INT NOT NULL DEFAULT 1,
		total_amount DECIMAL(10, 2) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		shopify_order_id VARCHAR(100),
		shopify_order_number VARCHAR(100),
		ip_address VARCHAR(100) NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		device_type VARCHAR(20) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_cod_orders_store_id ON cod_orders(store_id);
	CREATE INDEX IF NOT EXISTS idx_cod_orders_status ON cod_orders(status);
	CREATE INDEX IF NOT EXISTS idx_cod_orders_created_at ON cod_orders(created_at);
	`

	_, err := d.DB.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.logger.Info("Database migrations completed successfully")
	return nil
}
