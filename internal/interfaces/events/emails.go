package events

import (
	"fmt"
	"strings"

	"shop/internal/entities"
)

func orderConfirmationEmail(order entities.OnlineOrder) (subject, html, text string) {
	subject = fmt.Sprintf("Order confirmation %s", order.OrderNumber)

	var rows strings.Builder
	for _, item := range order.Items {
		rows.WriteString(fmt.Sprintf(
			"<tr><td>%s</td><td>%d</td><td>%s &euro;</td></tr>",
			item.Name, item.Quantity, item.LineTotal.StringFixed(2),
		))
	}

	html = fmt.Sprintf(`
<h1>Thanks for your order, %s!</h1>
<p>Your order <strong>%s</strong> is confirmed and will ship to:</p>
<p>%s<br>%s %s<br>%s</p>
<table>
<tr><th>Item</th><th>Qty</th><th>Total</th></tr>
%s
</table>
<p>Subtotal: %s &euro;<br>
Shipping: %s &euro;<br>
VAT: %s &euro;<br>
<strong>Total: %s &euro;</strong></p>
`,
		order.FirstName,
		order.OrderNumber,
		order.ShippingStreet,
		order.ShippingPostal, order.ShippingCity,
		order.ShippingCountry,
		rows.String(),
		order.Subtotal.StringFixed(2),
		order.Shipping.StringFixed(2),
		order.VAT.StringFixed(2),
		order.Total.StringFixed(2),
	)

	text = fmt.Sprintf(
		"Thanks for your order, %s!\n\nOrder %s is confirmed.\nTotal: %s EUR\n",
		order.FirstName, order.OrderNumber, order.Total.StringFixed(2),
	)

	return subject, html, text
}

func fulfillmentNotificationEmail(order entities.OnlineOrder) (subject, html, text string) {
	subject = fmt.Sprintf("New order to fulfill: %s", order.OrderNumber)

	var lines strings.Builder
	for _, item := range order.Items {
		lines.WriteString(fmt.Sprintf("<li>%dx %s (%s)</li>", item.Quantity, item.Name, item.Kind))
	}

	html = fmt.Sprintf(`
<h2>Order %s</h2>
<p>Payment reference: %s (%s)</p>
<p>Ship to:<br>%s %s<br>%s<br>%s %s<br>%s</p>
<ul>%s</ul>
<p>Total: %s &euro;</p>
`,
		order.OrderNumber,
		order.PaymentReference, order.PaymentMethod,
		order.FirstName, order.LastName,
		order.ShippingStreet,
		order.ShippingPostal, order.ShippingCity,
		order.ShippingCountry,
		lines.String(),
		order.Total.StringFixed(2),
	)

	text = fmt.Sprintf(
		"Order %s (%s)\nShip to: %s %s, %s, %s %s, %s\nTotal: %s EUR\n",
		order.OrderNumber, order.PaymentReference,
		order.FirstName, order.LastName,
		order.ShippingStreet, order.ShippingPostal, order.ShippingCity, order.ShippingCountry,
		order.Total.StringFixed(2),
	)

	return subject, html, text
}

func ticketConfirmationEmail(ticket entities.TicketSale) (subject, html, text string) {
	subject = fmt.Sprintf("Your ticket %s", ticket.TicketNumber)

	var rows strings.Builder
	for _, item := range ticket.Items {
		rows.WriteString(fmt.Sprintf(
			"<tr><td>%s</td><td>%d</td><td>%s &euro;</td></tr>",
			item.Name, item.Quantity, item.LineTotal.StringFixed(2),
		))
	}

	html = fmt.Sprintf(`
<h1>See you there, %s!</h1>
<p>Your ticket number is <strong>%s</strong>. Show it at the door.</p>
<p><strong>%s</strong><br>%s<br>%s</p>
<table>
<tr><th>Ticket</th><th>Qty</th><th>Total</th></tr>
%s
</table>
<p><strong>Total: %s &euro;</strong></p>
`,
		ticket.FirstName,
		ticket.TicketNumber,
		ticket.EventTitle,
		ticket.EventDate,
		ticket.EventLocation,
		rows.String(),
		ticket.Total.StringFixed(2),
	)

	text = fmt.Sprintf(
		"Your ticket %s for %s on %s at %s.\nTotal: %s EUR\n",
		ticket.TicketNumber, ticket.EventTitle, ticket.EventDate, ticket.EventLocation,
		ticket.Total.StringFixed(2),
	)

	return subject, html, text
}

func guestListNotificationEmail(ticket entities.TicketSale) (subject, html, text string) {
	quantity := 0
	for _, item := range ticket.Items {
		quantity += item.Quantity
	}

	subject = fmt.Sprintf("Guest list: %s (+%d) for %s", ticket.LastName, quantity, ticket.EventTitle)

	html = fmt.Sprintf(`
<h2>%s</h2>
<p>%s, %s</p>
<p>%s %s &lt;%s&gt;, %d ticket(s), number %s</p>
`,
		ticket.EventTitle,
		ticket.EventDate, ticket.EventLocation,
		ticket.FirstName, ticket.LastName, ticket.Email,
		quantity, ticket.TicketNumber,
	)

	text = fmt.Sprintf(
		"%s (%s, %s): %s %s <%s>, %d ticket(s), number %s\n",
		ticket.EventTitle, ticket.EventDate, ticket.EventLocation,
		ticket.FirstName, ticket.LastName, ticket.Email,
		quantity, ticket.TicketNumber,
	)

	return subject, html, text
}
