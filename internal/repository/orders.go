package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"shop/internal/domain/checkout"
	"shop/internal/entities"
)

type OrdersRepo struct {
	db *sqlx.DB
}

func NewOrdersRepo(db *sqlx.DB) *OrdersRepo {
	return &OrdersRepo{db: db}
}

// Create inserts the order unless one already exists for its payment
// reference. It reports whether a row was actually inserted; a false return
// with nil error means another trigger won the race.
func (r *OrdersRepo) Create(ctx context.Context, o *entities.OnlineOrder) (bool, error) {
	query := `
		INSERT INTO online_orders (
			id, order_number, payment_reference, status,
			payment_method, payment_status,
			first_name, last_name, email, phone,
			shipping_street, shipping_city, shipping_postal, shipping_country,
			shipping_region, items, subtotal, shipping, vat, total, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21
		)
		ON CONFLICT (payment_reference) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query,
		o.ID,
		o.OrderNumber,
		o.PaymentReference,
		o.Status,
		o.PaymentMethod,
		o.PaymentStatus,
		o.FirstName,
		o.LastName,
		o.Email,
		o.Phone,
		o.ShippingStreet,
		o.ShippingCity,
		o.ShippingPostal,
		o.ShippingCountry,
		o.ShippingRegion,
		o.Items,
		o.Subtotal,
		o.Shipping,
		o.VAT,
		o.Total,
		o.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert online order: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return inserted > 0, nil
}

func (r *OrdersRepo) GetByOrderNumber(ctx context.Context, orderNumber string) (*entities.OnlineOrder, error) {
	return r.get(ctx, "order_number", orderNumber)
}

func (r *OrdersRepo) GetByPaymentReference(ctx context.Context, paymentReference string) (*entities.OnlineOrder, error) {
	return r.get(ctx, "payment_reference", paymentReference)
}

func (r *OrdersRepo) get(ctx context.Context, column, value string) (*entities.OnlineOrder, error) {
	var order entities.OnlineOrder
	query := fmt.Sprintf(`
		SELECT id, order_number, payment_reference, status,
			payment_method, payment_status,
			first_name, last_name, email, phone,
			shipping_street, shipping_city, shipping_postal, shipping_country,
			shipping_region, items, subtotal, shipping, vat, total, created_at
		FROM online_orders
		WHERE %s = $1`, column)

	err := r.db.GetContext(ctx, &order, query, value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, checkout.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get online order: %w", err)
	}
	return &order, nil
}

func (r *OrdersRepo) ExistsByPaymentReference(ctx context.Context, paymentReference string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM online_orders WHERE payment_reference = $1)`,
		paymentReference,
	)
	if err != nil {
		return false, fmt.Errorf("failed to check online order existence: %w", err)
	}
	return exists, nil
}
