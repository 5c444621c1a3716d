package entities

type Event interface {
	IsInternal() bool
}

// OrderConfirmed_v1 is published after a new OnlineOrder row was created.
// Notification handlers derive both the customer confirmation and the
// fulfillment-team email from it.
type OrderConfirmed_v1 struct {
	Header EventHeader `json:"header"`
	Order  OnlineOrder `json:"order"`
}

func (e OrderConfirmed_v1) IsInternal() bool {
	return false
}

// TicketSaleConfirmed_v1 is published after a new TicketSale row was created.
type TicketSaleConfirmed_v1 struct {
	Header EventHeader `json:"header"`
	Ticket TicketSale  `json:"ticket"`
}

func (e TicketSaleConfirmed_v1) IsInternal() bool {
	return false
}
