package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentMethodStripe PaymentMethod = "stripe"
	PaymentMethodPayPal PaymentMethod = "paypal"
)

type TicketStatus string

const (
	TicketStatusActive    TicketStatus = "active"
	TicketStatusUsed      TicketStatus = "used"
	TicketStatusCancelled TicketStatus = "cancelled"
	TicketStatusRefunded  TicketStatus = "refunded"
)

// OrderItem is a persisted order line. Amounts are in major units (euros),
// converted from the cart's cents at creation time.
type OrderItem struct {
	Name      string          `json:"name"`
	Kind      ItemKind        `json:"kind"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type OrderItems []OrderItem

func (i OrderItems) Value() (driver.Value, error) {
	return json.Marshal(i)
}

func (i *OrderItems) Scan(src any) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported type for OrderItems: %T", src)
	}
	return json.Unmarshal(b, i)
}

// OnlineOrder is the authoritative record for the physical part of a
// checkout. At most one exists per payment reference.
type OnlineOrder struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	OrderNumber      string          `db:"order_number" json:"order_number"`
	PaymentReference string          `db:"payment_reference" json:"payment_reference"`
	Status           OrderStatus     `db:"status" json:"status"`
	PaymentMethod    PaymentMethod   `db:"payment_method" json:"payment_method"`
	PaymentStatus    string          `db:"payment_status" json:"payment_status"`
	FirstName        string          `db:"first_name" json:"first_name"`
	LastName         string          `db:"last_name" json:"last_name"`
	Email            string          `db:"email" json:"email"`
	Phone            string          `db:"phone" json:"phone,omitempty"`
	ShippingStreet   string          `db:"shipping_street" json:"shipping_street"`
	ShippingCity     string          `db:"shipping_city" json:"shipping_city"`
	ShippingPostal   string          `db:"shipping_postal" json:"shipping_postal"`
	ShippingCountry  string          `db:"shipping_country" json:"shipping_country"`
	ShippingRegion   ShippingRegion  `db:"shipping_region" json:"shipping_region"`
	Items            OrderItems      `db:"items" json:"items"`
	Subtotal         decimal.Decimal `db:"subtotal" json:"subtotal"`
	Shipping         decimal.Decimal `db:"shipping" json:"shipping"`
	VAT              decimal.Decimal `db:"vat" json:"vat"`
	Total            decimal.Decimal `db:"total" json:"total"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
}

// TicketLineItem is an embedded ticket line of a TicketSale, in major units.
type TicketLineItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type TicketLineItems []TicketLineItem

func (i TicketLineItems) Value() (driver.Value, error) {
	return json.Marshal(i)
}

func (i *TicketLineItems) Scan(src any) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported type for TicketLineItems: %T", src)
	}
	return json.Unmarshal(b, i)
}

// TicketSale is the authoritative record for the ticket part of a checkout.
// Event metadata is denormalized at creation time, not joined live.
// At most one exists per payment reference.
type TicketSale struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	TicketNumber     string          `db:"ticket_number" json:"ticket_number"`
	PaymentReference string          `db:"payment_reference" json:"payment_reference"`
	Status           TicketStatus    `db:"status" json:"status"`
	PaymentStatus    string          `db:"payment_status" json:"payment_status"`
	FirstName        string          `db:"first_name" json:"first_name"`
	LastName         string          `db:"last_name" json:"last_name"`
	Email            string          `db:"email" json:"email"`
	Items            TicketLineItems `db:"items" json:"items"`
	EventTitle       string          `db:"event_title" json:"event_title"`
	EventDate        string          `db:"event_date" json:"event_date"`
	EventLocation    string          `db:"event_location" json:"event_location"`
	Subtotal         decimal.Decimal `db:"subtotal" json:"subtotal"`
	VAT              decimal.Decimal `db:"vat" json:"vat"`
	Total            decimal.Decimal `db:"total" json:"total"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
}

// SaleRecord is a per-item analytics row derived from an OnlineOrder.
// ShippingShare and VATShare carry the proportional allocation of the
// cart-level aggregates; NetAmount = line total + both shares.
type SaleRecord struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	ItemName         string          `db:"item_name" json:"item_name"`
	ItemType         ItemKind        `db:"item_type" json:"item_type"`
	UnitPrice        decimal.Decimal `db:"unit_price" json:"unit_price"`
	Quantity         int             `db:"quantity" json:"quantity"`
	ShippingShare    decimal.Decimal `db:"shipping_share" json:"shipping_share"`
	VATShare         decimal.Decimal `db:"vat_share" json:"vat_share"`
	NetAmount        decimal.Decimal `db:"net_amount" json:"net_amount"`
	BuyerEmail       string          `db:"buyer_email" json:"buyer_email"`
	PaymentReference string          `db:"payment_reference" json:"payment_reference"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
}
