package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// InitializeDBSchema creates the checkout tables. The UNIQUE constraints on
// payment_reference are the idempotency mechanism: reconciliation inserts
// are conflict-ignored, so racing triggers cannot double-create records.
func InitializeDBSchema(db *sqlx.DB) error {
	_, err := db.ExecContext(context.Background(), `
CREATE TABLE IF NOT EXISTS online_orders (
	id UUID PRIMARY KEY,
	order_number VARCHAR(64) NOT NULL UNIQUE,
	payment_reference VARCHAR(255) NOT NULL UNIQUE,
	status VARCHAR(32) NOT NULL,
	payment_method VARCHAR(32) NOT NULL,
	payment_status VARCHAR(32) NOT NULL,
	first_name VARCHAR(255) NOT NULL,
	last_name VARCHAR(255) NOT NULL,
	email VARCHAR(255) NOT NULL,
	phone VARCHAR(64) NOT NULL DEFAULT '',
	shipping_street VARCHAR(255) NOT NULL DEFAULT '',
	shipping_city VARCHAR(255) NOT NULL DEFAULT '',
	shipping_postal VARCHAR(32) NOT NULL DEFAULT '',
	shipping_country VARCHAR(64) NOT NULL DEFAULT '',
	shipping_region VARCHAR(16) NOT NULL,
	items JSONB NOT NULL,
	subtotal NUMERIC(10, 2) NOT NULL,
	shipping NUMERIC(10, 2) NOT NULL,
	vat NUMERIC(10, 2) NOT NULL,
	total NUMERIC(10, 2) NOT NULL,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
);`)
	if err != nil {
		return fmt.Errorf("failed to create online_orders table: %w", err)
	}

	_, err = db.ExecContext(context.Background(), `
CREATE TABLE IF NOT EXISTS ticket_sales (
	id UUID PRIMARY KEY,
	ticket_number VARCHAR(64) NOT NULL UNIQUE,
	payment_reference VARCHAR(255) NOT NULL UNIQUE,
	status VARCHAR(32) NOT NULL,
	payment_status VARCHAR(32) NOT NULL,
	first_name VARCHAR(255) NOT NULL,
	last_name VARCHAR(255) NOT NULL,
	email VARCHAR(255) NOT NULL,
	items JSONB NOT NULL,
	event_title VARCHAR(255) NOT NULL DEFAULT '',
	event_date VARCHAR(64) NOT NULL DEFAULT '',
	event_location VARCHAR(255) NOT NULL DEFAULT '',
	subtotal NUMERIC(10, 2) NOT NULL,
	vat NUMERIC(10, 2) NOT NULL,
	total NUMERIC(10, 2) NOT NULL,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
);`)
	if err != nil {
		return fmt.Errorf("failed to create ticket_sales table: %w", err)
	}

	// Sale records inherit uniqueness from their owning order, so
	// payment_reference is only indexed here, not unique.
	_, err = db.ExecContext(context.Background(), `
CREATE TABLE IF NOT EXISTS sale_records (
	id UUID PRIMARY KEY,
	item_name VARCHAR(255) NOT NULL,
	item_type VARCHAR(32) NOT NULL,
	unit_price NUMERIC(10, 2) NOT NULL,
	quantity INTEGER NOT NULL,
	shipping_share NUMERIC(10, 2) NOT NULL,
	vat_share NUMERIC(10, 2) NOT NULL,
	net_amount NUMERIC(10, 2) NOT NULL,
	buyer_email VARCHAR(255) NOT NULL,
	payment_reference VARCHAR(255) NOT NULL,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS sale_records_payment_reference_idx
	ON sale_records (payment_reference);`)
	if err != nil {
		return fmt.Errorf("failed to create sale_records table: %w", err)
	}

	return nil
}
