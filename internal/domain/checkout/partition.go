package checkout

import "shop/internal/entities"

// Partition splits a cart into ticket lines and physical lines, classified
// solely by each item's kind. A cart may contain both.
func Partition(items []entities.CartLineItem) (tickets, physical []entities.CartLineItem) {
	for _, item := range items {
		if item.Kind == entities.ItemKindTicket {
			tickets = append(tickets, item)
		} else {
			physical = append(physical, item)
		}
	}
	return tickets, physical
}
