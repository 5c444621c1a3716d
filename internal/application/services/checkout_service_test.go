package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop/internal/application/services"
	"shop/internal/domain/checkout"
	"shop/internal/entities"
)

type fakeOrdersRepo struct {
	byReference map[string]*entities.OnlineOrder
	createErr   error
}

func newFakeOrdersRepo() *fakeOrdersRepo {
	return &fakeOrdersRepo{byReference: map[string]*entities.OnlineOrder{}}
}

func (r *fakeOrdersRepo) Create(_ context.Context, order *entities.OnlineOrder) (bool, error) {
	if r.createErr != nil {
		return false, r.createErr
	}
	if _, ok := r.byReference[order.PaymentReference]; ok {
		return false, nil
	}
	r.byReference[order.PaymentReference] = order
	return true, nil
}

func (r *fakeOrdersRepo) GetByOrderNumber(_ context.Context, orderNumber string) (*entities.OnlineOrder, error) {
	for _, order := range r.byReference {
		if order.OrderNumber == orderNumber {
			return order, nil
		}
	}
	return nil, checkout.ErrNotFound
}

func (r *fakeOrdersRepo) GetByPaymentReference(_ context.Context, ref string) (*entities.OnlineOrder, error) {
	order, ok := r.byReference[ref]
	if !ok {
		return nil, checkout.ErrNotFound
	}
	return order, nil
}

func (r *fakeOrdersRepo) ExistsByPaymentReference(_ context.Context, ref string) (bool, error) {
	_, ok := r.byReference[ref]
	return ok, nil
}

type fakeTicketSalesRepo struct {
	byReference map[string]*entities.TicketSale
	createErr   error
}

func newFakeTicketSalesRepo() *fakeTicketSalesRepo {
	return &fakeTicketSalesRepo{byReference: map[string]*entities.TicketSale{}}
}

func (r *fakeTicketSalesRepo) Create(_ context.Context, sale *entities.TicketSale) (bool, error) {
	if r.createErr != nil {
		return false, r.createErr
	}
	if _, ok := r.byReference[sale.PaymentReference]; ok {
		return false, nil
	}
	r.byReference[sale.PaymentReference] = sale
	return true, nil
}

func (r *fakeTicketSalesRepo) GetByTicketNumber(_ context.Context, ticketNumber string) (*entities.TicketSale, error) {
	for _, sale := range r.byReference {
		if sale.TicketNumber == ticketNumber {
			return sale, nil
		}
	}
	return nil, checkout.ErrNotFound
}

func (r *fakeTicketSalesRepo) GetByPaymentReference(_ context.Context, ref string) (*entities.TicketSale, error) {
	sale, ok := r.byReference[ref]
	if !ok {
		return nil, checkout.ErrNotFound
	}
	return sale, nil
}

func (r *fakeTicketSalesRepo) ExistsByPaymentReference(_ context.Context, ref string) (bool, error) {
	_, ok := r.byReference[ref]
	return ok, nil
}

type fakeSaleRecordsRepo struct {
	records []*entities.SaleRecord
	failFor string
}

func (r *fakeSaleRecordsRepo) Create(_ context.Context, record *entities.SaleRecord) error {
	if r.failFor != "" && record.ItemName == r.failFor {
		return errors.New("insert failed")
	}
	r.records = append(r.records, record)
	return nil
}

type fakePaymentMethodResolver struct {
	family entities.PaymentMethod
}

func (f *fakePaymentMethodResolver) PaymentMethodFamily(context.Context, string) entities.PaymentMethod {
	if f.family == "" {
		return entities.PaymentMethodStripe
	}
	return f.family
}

type fakePublisher struct {
	published []any
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, event any) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, event)
	return nil
}

type serviceFixture struct {
	service     *services.CheckoutService
	orders      *fakeOrdersRepo
	ticketSales *fakeTicketSalesRepo
	saleRecords *fakeSaleRecordsRepo
	resolver    *fakePaymentMethodResolver
	publisher   *fakePublisher
}

func newFixture() *serviceFixture {
	f := &serviceFixture{
		orders:      newFakeOrdersRepo(),
		ticketSales: newFakeTicketSalesRepo(),
		saleRecords: &fakeSaleRecordsRepo{},
		resolver:    &fakePaymentMethodResolver{},
		publisher:   &fakePublisher{},
	}
	f.service = services.NewCheckoutService(f.orders, f.ticketSales, f.saleRecords, f.resolver, f.publisher)
	return f
}

func mixedCart() entities.OrderContext {
	return entities.OrderContext{
		Customer: entities.CustomerData{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
			Address: entities.Address{
				Street:     "Torstr. 1",
				City:       "Berlin",
				PostalCode: "10119",
				Country:    "DE",
			},
		},
		CartItems: []entities.CartLineItem{
			{ID: "lp-1", Name: "LP", UnitPrice: 2000, Quantity: 1, Kind: entities.ItemKindRelease},
			{
				ID: "show-1", Name: "Release show", UnitPrice: 1500, Quantity: 1, Kind: entities.ItemKindTicket,
				Metadata: map[string]string{
					entities.MetaEventTitle:    "Release show",
					entities.MetaEventDate:     "2026-10-01",
					entities.MetaEventLocation: "Kantine",
				},
			},
		},
		// Tickets are excluded from the cart-level subtotal and VAT; the
		// totals cover the physical half plus shipping.
		Totals: entities.Totals{
			Subtotal: 2000,
			Shipping: 500,
			VAT:      475,
			Total:    2975,
		},
		ShippingRegion: entities.RegionGermany,
	}
}

func ticketOnlyCart() entities.OrderContext {
	oc := mixedCart()
	oc.CartItems = oc.CartItems[1:2]
	oc.Totals = entities.Totals{Subtotal: 1500, Total: 1500}
	oc.Customer.Address = entities.Address{}
	return oc
}

func TestReconcile_MixedCart(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	result, err := f.service.Reconcile(ctx, "pi_1", mixedCart())
	require.NoError(t, err)

	assert.False(t, result.AlreadyProcessed)
	assert.NotEmpty(t, result.OrderNumber)
	assert.NotEmpty(t, result.TicketNumber)

	order := f.orders.byReference["pi_1"]
	require.NotNil(t, order)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "LP", order.Items[0].Name)
	assert.True(t, order.Subtotal.Equal(decimal.RequireFromString("20.00")))
	assert.True(t, order.Total.Equal(decimal.RequireFromString("29.75")))
	assert.Equal(t, entities.OrderStatusPending, order.Status)

	sale := f.ticketSales.byReference["pi_1"]
	require.NotNil(t, sale)
	assert.Equal(t, "Release show", sale.EventTitle)
	assert.Equal(t, "2026-10-01", sale.EventDate)
	assert.True(t, sale.VAT.IsZero(), "tickets are VAT exempt")
	assert.True(t, sale.Total.Equal(decimal.RequireFromString("15.00")))

	// The single physical item absorbs the full shipping and VAT aggregates.
	require.Len(t, f.saleRecords.records, 1)
	record := f.saleRecords.records[0]
	assert.Equal(t, "LP", record.ItemName)
	assert.True(t, record.ShippingShare.Equal(decimal.RequireFromString("5.00")))
	assert.True(t, record.VATShare.Equal(decimal.RequireFromString("4.75")))
	assert.True(t, record.NetAmount.Equal(decimal.RequireFromString("29.75")))

	require.Len(t, f.publisher.published, 2)
	_, ok := f.publisher.published[0].(entities.OrderConfirmed_v1)
	assert.True(t, ok)
	_, ok = f.publisher.published[1].(entities.TicketSaleConfirmed_v1)
	assert.True(t, ok)
}

func TestReconcile_Idempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.service.Reconcile(ctx, "pi_1", mixedCart())
	require.NoError(t, err)
	assert.False(t, first.AlreadyProcessed)

	second, err := f.service.Reconcile(ctx, "pi_1", mixedCart())
	require.NoError(t, err)

	assert.True(t, second.AlreadyProcessed)
	assert.Equal(t, first.OrderNumber, second.OrderNumber)
	assert.Equal(t, first.TicketNumber, second.TicketNumber)

	assert.Len(t, f.orders.byReference, 1)
	assert.Len(t, f.ticketSales.byReference, 1)
	assert.Len(t, f.saleRecords.records, 1, "sale records only on first insert")
	assert.Len(t, f.publisher.published, 2, "events only on first insert")
}

func TestReconcile_TicketOnlyCart(t *testing.T) {
	f := newFixture()

	result, err := f.service.Reconcile(context.Background(), "pi_1", ticketOnlyCart())
	require.NoError(t, err)

	assert.Empty(t, result.OrderNumber)
	assert.NotEmpty(t, result.TicketNumber)
	assert.Empty(t, f.orders.byReference)
	assert.Empty(t, f.saleRecords.records)
}

func TestReconcile_PaymentMethodFamily(t *testing.T) {
	f := newFixture()
	f.resolver.family = entities.PaymentMethodPayPal

	_, err := f.service.Reconcile(context.Background(), "pi_1", mixedCart())
	require.NoError(t, err)

	assert.Equal(t, entities.PaymentMethodPayPal, f.orders.byReference["pi_1"].PaymentMethod)
}

func TestReconcile_InvalidInput(t *testing.T) {
	f := newFixture()

	oc := mixedCart()
	oc.Customer.Email = ""

	_, err := f.service.Reconcile(context.Background(), "pi_1", oc)
	assert.ErrorIs(t, err, checkout.ErrInvalidInput)
	assert.Empty(t, f.orders.byReference)
}

func TestReconcile_OrderCreateFailure(t *testing.T) {
	f := newFixture()
	f.orders.createErr = errors.New("connection refused")

	_, err := f.service.Reconcile(context.Background(), "pi_1", mixedCart())
	assert.ErrorIs(t, err, checkout.ErrUpstreamUnavailable)
}

func TestReconcile_SaleRecordFailureIsTolerated(t *testing.T) {
	f := newFixture()
	f.saleRecords.failFor = "Shirt"

	oc := mixedCart()
	oc.CartItems = append(oc.CartItems, entities.CartLineItem{
		ID: "shirt-1", Name: "Shirt", UnitPrice: 1000, Quantity: 1, Kind: entities.ItemKindMerch,
	})
	oc.Totals = entities.Totals{Subtotal: 3000, Shipping: 500, VAT: 475, Total: 3975}

	result, err := f.service.Reconcile(context.Background(), "pi_1", oc)
	require.NoError(t, err, "analytics failures must not fail the reconciliation")

	assert.False(t, result.AlreadyProcessed)
	require.Len(t, f.saleRecords.records, 1)
	assert.Equal(t, "LP", f.saleRecords.records[0].ItemName)
}

func TestReconcile_PublishFailureIsSwallowed(t *testing.T) {
	f := newFixture()
	f.publisher.err = errors.New("redis down")

	result, err := f.service.Reconcile(context.Background(), "pi_1", mixedCart())
	require.NoError(t, err)
	assert.False(t, result.AlreadyProcessed)
	assert.NotNil(t, f.orders.byReference["pi_1"])
}

func TestIsProcessed(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	processed, err := f.service.IsProcessed(ctx, "pi_1")
	require.NoError(t, err)
	assert.False(t, processed)

	_, err = f.service.Reconcile(ctx, "pi_1", ticketOnlyCart())
	require.NoError(t, err)

	processed, err = f.service.IsProcessed(ctx, "pi_1")
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestGetOrder_NotFound(t *testing.T) {
	f := newFixture()

	_, err := f.service.GetOrder(context.Background(), "SHUSH-ORDER-missing")
	assert.ErrorIs(t, err, checkout.ErrNotFound)

	_, err = f.service.GetTicketSale(context.Background(), "SHUSH-TICKET-missing")
	assert.ErrorIs(t, err, checkout.ErrNotFound)
}
