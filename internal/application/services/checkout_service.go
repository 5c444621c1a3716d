package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shop/internal/domain/checkout"
	"shop/internal/entities"
	"shop/internal/idempotency"
)

type OrdersRepository interface {
	Create(ctx context.Context, order *entities.OnlineOrder) (bool, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*entities.OnlineOrder, error)
	GetByPaymentReference(ctx context.Context, paymentReference string) (*entities.OnlineOrder, error)
	ExistsByPaymentReference(ctx context.Context, paymentReference string) (bool, error)
}

type TicketSalesRepository interface {
	Create(ctx context.Context, sale *entities.TicketSale) (bool, error)
	GetByTicketNumber(ctx context.Context, ticketNumber string) (*entities.TicketSale, error)
	GetByPaymentReference(ctx context.Context, paymentReference string) (*entities.TicketSale, error)
	ExistsByPaymentReference(ctx context.Context, paymentReference string) (bool, error)
}

type SaleRecordsRepository interface {
	Create(ctx context.Context, record *entities.SaleRecord) error
}

// PaymentMethodResolver tells apart PayPal-routed payments from native
// Stripe ones. Implementations must degrade to a default on lookup failure
// rather than return an error; the distinction is informational.
type PaymentMethodResolver interface {
	PaymentMethodFamily(ctx context.Context, paymentReference string) entities.PaymentMethod
}

type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

// CheckoutService reconciles a paid checkout into durable records. It is the
// single convergence point for both triggers (webhook and client fallback),
// so all idempotency guarantees live here and in the repositories beneath.
type CheckoutService struct {
	orders        OrdersRepository
	ticketSales   TicketSalesRepository
	saleRecords   SaleRecordsRepository
	paymentMethod PaymentMethodResolver
	publisher     EventPublisher
}

func NewCheckoutService(
	orders OrdersRepository,
	ticketSales TicketSalesRepository,
	saleRecords SaleRecordsRepository,
	paymentMethod PaymentMethodResolver,
	publisher EventPublisher,
) *CheckoutService {
	return &CheckoutService{
		orders:        orders,
		ticketSales:   ticketSales,
		saleRecords:   saleRecords,
		paymentMethod: paymentMethod,
		publisher:     publisher,
	}
}

// Reconcile turns a confirmed payment plus its cart snapshot into an
// OnlineOrder (physical items), a TicketSale (ticket items), or both. It is
// safe to call any number of times for the same payment reference: the
// repositories insert with conflict-ignore on the reference, and only the
// call that actually inserts emits sale records and confirmation events.
func (s *CheckoutService) Reconcile(ctx context.Context, paymentReference string, oc entities.OrderContext) (entities.ReconciliationResult, error) {
	logger := log.FromContext(ctx).WithField("payment_reference", paymentReference)

	if err := checkout.ValidateOrderContext(paymentReference, oc); err != nil {
		return entities.ReconciliationResult{}, fmt.Errorf("%w: %s", checkout.ErrInvalidInput, err)
	}

	tickets, physical := checkout.Partition(oc.CartItems)

	result := entities.ReconciliationResult{AlreadyProcessed: true}

	if len(physical) > 0 {
		orderNumber, inserted, err := s.reconcileOrder(ctx, paymentReference, oc, physical)
		if err != nil {
			return entities.ReconciliationResult{}, err
		}
		result.OrderNumber = orderNumber
		if inserted {
			result.AlreadyProcessed = false
		}
	}

	if len(tickets) > 0 {
		ticketNumber, inserted, err := s.reconcileTicketSale(ctx, paymentReference, oc, tickets)
		if err != nil {
			return entities.ReconciliationResult{}, err
		}
		result.TicketNumber = ticketNumber
		if inserted {
			result.AlreadyProcessed = false
		}
	}

	if result.AlreadyProcessed {
		logger.Info("payment already reconciled, nothing to do")
	}

	return result, nil
}

func (s *CheckoutService) reconcileOrder(
	ctx context.Context,
	paymentReference string,
	oc entities.OrderContext,
	physical []entities.CartLineItem,
) (orderNumber string, inserted bool, err error) {
	logger := log.FromContext(ctx).WithField("payment_reference", paymentReference)

	order := buildOrder(paymentReference, oc, physical)
	order.PaymentMethod = s.paymentMethod.PaymentMethodFamily(ctx, paymentReference)

	inserted, err = s.orders.Create(ctx, order)
	if err != nil {
		return "", false, fmt.Errorf("%w: failed to create order: %s", checkout.ErrUpstreamUnavailable, err)
	}

	if !inserted {
		existing, err := s.orders.GetByPaymentReference(ctx, paymentReference)
		if err != nil {
			return "", false, fmt.Errorf("%w: failed to load existing order: %s", checkout.ErrUpstreamUnavailable, err)
		}
		return existing.OrderNumber, false, nil
	}

	logger.WithField("order_number", order.OrderNumber).Info("order created")

	s.createSaleRecords(ctx, order, oc, physical)

	if err := s.publisher.Publish(ctx, entities.OrderConfirmed_v1{
		Header: entities.NewEventHeaderWithIdempotencyKey(idempotency.GetKey(ctx)),
		Order:  *order,
	}); err != nil {
		// Confirmation mail is best effort. The order is already durable.
		logger.WithError(err).Error("failed to publish order confirmed event")
	}

	return order.OrderNumber, true, nil
}

func (s *CheckoutService) reconcileTicketSale(
	ctx context.Context,
	paymentReference string,
	oc entities.OrderContext,
	tickets []entities.CartLineItem,
) (ticketNumber string, inserted bool, err error) {
	logger := log.FromContext(ctx).WithField("payment_reference", paymentReference)

	sale := buildTicketSale(paymentReference, oc, tickets)

	inserted, err = s.ticketSales.Create(ctx, sale)
	if err != nil {
		return "", false, fmt.Errorf("%w: failed to create ticket sale: %s", checkout.ErrUpstreamUnavailable, err)
	}

	if !inserted {
		existing, err := s.ticketSales.GetByPaymentReference(ctx, paymentReference)
		if err != nil {
			return "", false, fmt.Errorf("%w: failed to load existing ticket sale: %s", checkout.ErrUpstreamUnavailable, err)
		}
		return existing.TicketNumber, false, nil
	}

	logger.WithField("ticket_number", sale.TicketNumber).Info("ticket sale created")

	if err := s.publisher.Publish(ctx, entities.TicketSaleConfirmed_v1{
		Header: entities.NewEventHeaderWithIdempotencyKey(idempotency.GetKey(ctx)),
		Ticket: *sale,
	}); err != nil {
		logger.WithError(err).Error("failed to publish ticket sale confirmed event")
	}

	return sale.TicketNumber, true, nil
}

// createSaleRecords writes the per-item analytics rows for a freshly
// inserted order. A failed row is logged and skipped; analytics must never
// take the reconciliation down with it.
func (s *CheckoutService) createSaleRecords(
	ctx context.Context,
	order *entities.OnlineOrder,
	oc entities.OrderContext,
	physical []entities.CartLineItem,
) {
	logger := log.FromContext(ctx).WithField("payment_reference", order.PaymentReference)

	allocations := checkout.AllocateCharges(physical, oc.Totals)

	for i, item := range physical {
		record := &entities.SaleRecord{
			ID:               uuid.New(),
			ItemName:         item.Name,
			ItemType:         item.Kind,
			UnitPrice:        checkout.MinorToMajor(item.UnitPrice),
			Quantity:         item.Quantity,
			ShippingShare:    allocations[i].ShippingShare,
			VATShare:         allocations[i].VATShare,
			NetAmount:        allocations[i].NetAmount,
			BuyerEmail:       oc.Customer.Email,
			PaymentReference: order.PaymentReference,
			CreatedAt:        time.Now().UTC(),
		}
		if err := s.saleRecords.Create(ctx, record); err != nil {
			logger.WithError(err).WithField("item_name", item.Name).Error("failed to create sale record")
		}
	}
}

// IsProcessed reports whether any durable record exists for the payment.
// A mixed cart counts as processed as soon as either half landed; the
// trigger retry will converge the other half.
func (s *CheckoutService) IsProcessed(ctx context.Context, paymentReference string) (bool, error) {
	orderExists, err := s.orders.ExistsByPaymentReference(ctx, paymentReference)
	if err != nil {
		return false, fmt.Errorf("%w: order existence check failed: %s", checkout.ErrUpstreamUnavailable, err)
	}
	if orderExists {
		return true, nil
	}

	ticketExists, err := s.ticketSales.ExistsByPaymentReference(ctx, paymentReference)
	if err != nil {
		return false, fmt.Errorf("%w: ticket sale existence check failed: %s", checkout.ErrUpstreamUnavailable, err)
	}
	return ticketExists, nil
}

func (s *CheckoutService) GetOrder(ctx context.Context, orderNumber string) (*entities.OnlineOrder, error) {
	order, err := s.orders.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, checkout.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: order lookup failed: %s", checkout.ErrUpstreamUnavailable, err)
	}
	return order, nil
}

func (s *CheckoutService) GetTicketSale(ctx context.Context, ticketNumber string) (*entities.TicketSale, error) {
	sale, err := s.ticketSales.GetByTicketNumber(ctx, ticketNumber)
	if err != nil {
		if errors.Is(err, checkout.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: ticket sale lookup failed: %s", checkout.ErrUpstreamUnavailable, err)
	}
	return sale, nil
}

func buildOrder(paymentReference string, oc entities.OrderContext, physical []entities.CartLineItem) *entities.OnlineOrder {
	items := make(entities.OrderItems, 0, len(physical))
	for _, item := range physical {
		items = append(items, entities.OrderItem{
			Name:      item.Name,
			Kind:      item.Kind,
			Quantity:  item.Quantity,
			UnitPrice: checkout.MinorToMajor(item.UnitPrice),
			LineTotal: checkout.MinorToMajor(item.LineTotal()),
		})
	}

	return &entities.OnlineOrder{
		ID:               uuid.New(),
		OrderNumber:      checkout.NewOrderNumber(),
		PaymentReference: paymentReference,
		Status:           entities.OrderStatusPending,
		PaymentStatus:    "paid",
		FirstName:        oc.Customer.FirstName,
		LastName:         oc.Customer.LastName,
		Email:            oc.Customer.Email,
		Phone:            oc.Customer.Phone,
		ShippingStreet:   oc.Customer.Address.Street,
		ShippingCity:     oc.Customer.Address.City,
		ShippingPostal:   oc.Customer.Address.PostalCode,
		ShippingCountry:  oc.Customer.Address.Country,
		ShippingRegion:   oc.ShippingRegion,
		Items:            items,
		Subtotal:         checkout.MinorToMajor(oc.Totals.Subtotal),
		Shipping:         checkout.MinorToMajor(oc.Totals.Shipping),
		VAT:              checkout.MinorToMajor(oc.Totals.VAT),
		Total:            checkout.MinorToMajor(oc.Totals.Total),
		CreatedAt:        time.Now().UTC(),
	}
}

func buildTicketSale(paymentReference string, oc entities.OrderContext, tickets []entities.CartLineItem) *entities.TicketSale {
	items := make(entities.TicketLineItems, 0, len(tickets))
	var subtotal int64
	for _, item := range tickets {
		items = append(items, entities.TicketLineItem{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: checkout.MinorToMajor(item.UnitPrice),
			LineTotal: checkout.MinorToMajor(item.LineTotal()),
		})
		subtotal += item.LineTotal()
	}

	// Event metadata comes from the first ticket line. Carts mixing tickets
	// for different events are not supported by the storefront.
	first := tickets[0]

	return &entities.TicketSale{
		ID:               uuid.New(),
		TicketNumber:     checkout.NewTicketNumber(),
		PaymentReference: paymentReference,
		Status:           entities.TicketStatusActive,
		PaymentStatus:    "paid",
		FirstName:        oc.Customer.FirstName,
		LastName:         oc.Customer.LastName,
		Email:            oc.Customer.Email,
		Items:            items,
		EventTitle:       first.Metadata[entities.MetaEventTitle],
		EventDate:        first.Metadata[entities.MetaEventDate],
		EventLocation:    first.Metadata[entities.MetaEventLocation],
		Subtotal:         checkout.MinorToMajor(subtotal),
		VAT:              decimal.Zero,
		Total:            checkout.MinorToMajor(subtotal),
		CreatedAt:        time.Now().UTC(),
	}
}
