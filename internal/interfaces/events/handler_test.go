package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop/internal/entities"
	"shop/internal/infrastructure/clients"
	"shop/internal/interfaces/events"
)

type fakeMailer struct {
	sent []clients.Email
	err  error
}

func (m *fakeMailer) Send(_ context.Context, email clients.Email) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email)
	return nil
}

func confirmedOrder() entities.OnlineOrder {
	return entities.OnlineOrder{
		OrderNumber:      "SHUSH-ORDER-1700000000000-deadbeef",
		PaymentReference: "pi_1",
		PaymentMethod:    entities.PaymentMethodStripe,
		FirstName:        "Ada",
		LastName:         "Lovelace",
		Email:            "ada@example.com",
		ShippingStreet:   "Torstr. 1",
		ShippingCity:     "Berlin",
		ShippingPostal:   "10119",
		ShippingCountry:  "DE",
		Items: entities.OrderItems{{
			Name:      "LP",
			Kind:      entities.ItemKindRelease,
			Quantity:  1,
			UnitPrice: decimal.RequireFromString("20.00"),
			LineTotal: decimal.RequireFromString("20.00"),
		}},
		Subtotal: decimal.RequireFromString("20.00"),
		Shipping: decimal.RequireFromString("5.00"),
		VAT:      decimal.RequireFromString("4.75"),
		Total:    decimal.RequireFromString("29.75"),
	}
}

func confirmedTicketSale() entities.TicketSale {
	return entities.TicketSale{
		TicketNumber:  "SHUSH-TICKET-1700000000000-deadbeef",
		FirstName:     "Ada",
		LastName:      "Lovelace",
		Email:         "ada@example.com",
		EventTitle:    "Release show",
		EventDate:     "2026-10-01",
		EventLocation: "Kantine",
		Items: entities.TicketLineItems{{
			Name:      "Release show",
			Quantity:  2,
			UnitPrice: decimal.RequireFromString("15.00"),
			LineTotal: decimal.RequireFromString("30.00"),
		}},
		Subtotal: decimal.RequireFromString("30.00"),
		VAT:      decimal.Zero,
		Total:    decimal.RequireFromString("30.00"),
	}
}

func TestOrderConfirmationHandler(t *testing.T) {
	mailer := &fakeMailer{}
	handler := events.OrderConfirmationHandler(mailer)

	err := handler.Handle(context.Background(), &entities.OrderConfirmed_v1{
		Header: entities.NewEventHeader(),
		Order:  confirmedOrder(),
	})
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	email := mailer.sent[0]
	assert.Equal(t, []string{"ada@example.com"}, email.To)
	assert.Contains(t, email.Subject, "SHUSH-ORDER-1700000000000-deadbeef")
	assert.Contains(t, email.HTML, "Torstr. 1")
	assert.Contains(t, email.HTML, "29.75")
	assert.Contains(t, email.Text, "29.75")
}

func TestFulfillmentNotificationHandler(t *testing.T) {
	mailer := &fakeMailer{}
	handler := events.FulfillmentNotificationHandler(mailer, events.NotificationAddresses{
		Fulfillment: "warehouse@example.com",
	})

	err := handler.Handle(context.Background(), &entities.OrderConfirmed_v1{
		Header: entities.NewEventHeader(),
		Order:  confirmedOrder(),
	})
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"warehouse@example.com"}, mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].HTML, "pi_1")
	assert.Contains(t, mailer.sent[0].HTML, "1x LP")
}

func TestTicketConfirmationHandler(t *testing.T) {
	mailer := &fakeMailer{}
	handler := events.TicketConfirmationHandler(mailer)

	err := handler.Handle(context.Background(), &entities.TicketSaleConfirmed_v1{
		Header: entities.NewEventHeader(),
		Ticket: confirmedTicketSale(),
	})
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	email := mailer.sent[0]
	assert.Equal(t, []string{"ada@example.com"}, email.To)
	assert.Contains(t, email.HTML, "Release show")
	assert.Contains(t, email.HTML, "2026-10-01")
	assert.Contains(t, email.HTML, "Kantine")
}

func TestGuestListNotificationHandler(t *testing.T) {
	mailer := &fakeMailer{}
	handler := events.GuestListNotificationHandler(mailer, events.NotificationAddresses{
		EventsTeam: "events@example.com",
	})

	err := handler.Handle(context.Background(), &entities.TicketSaleConfirmed_v1{
		Header: entities.NewEventHeader(),
		Ticket: confirmedTicketSale(),
	})
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"events@example.com"}, mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].Subject, "Lovelace (+2)")
}

func TestHandlerPropagatesMailerError(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("resend down")}
	handler := events.OrderConfirmationHandler(mailer)

	err := handler.Handle(context.Background(), &entities.OrderConfirmed_v1{
		Header: entities.NewEventHeader(),
		Order:  confirmedOrder(),
	})
	assert.Error(t, err, "errors must surface so the router retries the delivery")
}
