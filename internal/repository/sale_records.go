package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"shop/internal/entities"
)

type SaleRecordsRepo struct {
	db *sqlx.DB
}

func NewSaleRecordsRepo(db *sqlx.DB) *SaleRecordsRepo {
	return &SaleRecordsRepo{db: db}
}

// Create inserts one sale record. These rows are only created alongside a
// freshly inserted order, so there is no conflict handling here.
func (r *SaleRecordsRepo) Create(ctx context.Context, s *entities.SaleRecord) error {
	query := `
		INSERT INTO sale_records (
			id, item_name, item_type, unit_price, quantity,
			shipping_share, vat_share, net_amount,
			buyer_email, payment_reference, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)`

	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.ItemName,
		s.ItemType,
		s.UnitPrice,
		s.Quantity,
		s.ShippingShare,
		s.VATShare,
		s.NetAmount,
		s.BuyerEmail,
		s.PaymentReference,
		s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sale record: %w", err)
	}
	return nil
}

func (r *SaleRecordsRepo) ListByPaymentReference(ctx context.Context, paymentReference string) ([]entities.SaleRecord, error) {
	var records []entities.SaleRecord
	query := `
		SELECT id, item_name, item_type, unit_price, quantity,
			shipping_share, vat_share, net_amount,
			buyer_email, payment_reference, created_at
		FROM sale_records
		WHERE payment_reference = $1
		ORDER BY created_at`

	err := r.db.SelectContext(ctx, &records, query, paymentReference)
	if err != nil {
		return nil, fmt.Errorf("failed to list sale records: %w", err)
	}
	return records, nil
}
