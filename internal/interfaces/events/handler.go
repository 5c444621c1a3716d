package events

import (
	"context"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"

	"shop/internal/entities"
	"shop/internal/infrastructure/clients"
)

type Mailer interface {
	Send(ctx context.Context, email clients.Email) error
}

// NotificationAddresses are the internal recipients of operational mails.
type NotificationAddresses struct {
	Fulfillment string
	EventsTeam  string
}

func OrderConfirmationHandler(mailer Mailer) cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"order_confirmation_handler",
		func(ctx context.Context, payload *entities.OrderConfirmed_v1) error {
			log.FromContext(ctx).
				WithField("order_number", payload.Order.OrderNumber).
				Info("Sending order confirmation")

			subject, html, text := orderConfirmationEmail(payload.Order)
			return mailer.Send(ctx, clients.Email{
				To:      []string{payload.Order.Email},
				Subject: subject,
				HTML:    html,
				Text:    text,
			})
		},
	)
}

func FulfillmentNotificationHandler(mailer Mailer, addresses NotificationAddresses) cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"fulfillment_notification_handler",
		func(ctx context.Context, payload *entities.OrderConfirmed_v1) error {
			log.FromContext(ctx).
				WithField("order_number", payload.Order.OrderNumber).
				Info("Notifying fulfillment")

			subject, html, text := fulfillmentNotificationEmail(payload.Order)
			return mailer.Send(ctx, clients.Email{
				To:      []string{addresses.Fulfillment},
				Subject: subject,
				HTML:    html,
				Text:    text,
			})
		},
	)
}

func TicketConfirmationHandler(mailer Mailer) cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"ticket_confirmation_handler",
		func(ctx context.Context, payload *entities.TicketSaleConfirmed_v1) error {
			log.FromContext(ctx).
				WithField("ticket_number", payload.Ticket.TicketNumber).
				Info("Sending ticket confirmation")

			subject, html, text := ticketConfirmationEmail(payload.Ticket)
			return mailer.Send(ctx, clients.Email{
				To:      []string{payload.Ticket.Email},
				Subject: subject,
				HTML:    html,
				Text:    text,
			})
		},
	)
}

func GuestListNotificationHandler(mailer Mailer, addresses NotificationAddresses) cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"guest_list_notification_handler",
		func(ctx context.Context, payload *entities.TicketSaleConfirmed_v1) error {
			log.FromContext(ctx).
				WithField("ticket_number", payload.Ticket.TicketNumber).
				Info("Notifying events team")

			subject, html, text := guestListNotificationEmail(payload.Ticket)
			return mailer.Send(ctx, clients.Email{
				To:      []string{addresses.EventsTeam},
				Subject: subject,
				HTML:    html,
				Text:    text,
			})
		},
	)
}
