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

type TicketSalesRepo struct {
	db *sqlx.DB
}

func NewTicketSalesRepo(db *sqlx.DB) *TicketSalesRepo {
	return &TicketSalesRepo{db: db}
}

// Create inserts the ticket sale unless one already exists for its payment
// reference, reporting whether a row was inserted.
func (r *TicketSalesRepo) Create(ctx context.Context, t *entities.TicketSale) (bool, error) {
	query := `
		INSERT INTO ticket_sales (
			id, ticket_number, payment_reference, status, payment_status,
			first_name, last_name, email, items,
			event_title, event_date, event_location,
			subtotal, vat, total, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		)
		ON CONFLICT (payment_reference) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.TicketNumber,
		t.PaymentReference,
		t.Status,
		t.PaymentStatus,
		t.FirstName,
		t.LastName,
		t.Email,
		t.Items,
		t.EventTitle,
		t.EventDate,
		t.EventLocation,
		t.Subtotal,
		t.VAT,
		t.Total,
		t.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert ticket sale: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return inserted > 0, nil
}

func (r *TicketSalesRepo) GetByTicketNumber(ctx context.Context, ticketNumber string) (*entities.TicketSale, error) {
	return r.get(ctx, "ticket_number", ticketNumber)
}

func (r *TicketSalesRepo) GetByPaymentReference(ctx context.Context, paymentReference string) (*entities.TicketSale, error) {
	return r.get(ctx, "payment_reference", paymentReference)
}

func (r *TicketSalesRepo) get(ctx context.Context, column, value string) (*entities.TicketSale, error) {
	var ticket entities.TicketSale
	query := fmt.Sprintf(`
		SELECT id, ticket_number, payment_reference, status, payment_status,
			first_name, last_name, email, items,
			event_title, event_date, event_location,
			subtotal, vat, total, created_at
		FROM ticket_sales
		WHERE %s = $1`, column)

	err := r.db.GetContext(ctx, &ticket, query, value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, checkout.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket sale: %w", err)
	}
	return &ticket, nil
}

func (r *TicketSalesRepo) ExistsByPaymentReference(ctx context.Context, paymentReference string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM ticket_sales WHERE payment_reference = $1)`,
		paymentReference,
	)
	if err != nil {
		return false, fmt.Errorf("failed to check ticket sale existence: %w", err)
	}
	return exists, nil
}
