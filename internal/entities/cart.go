package entities

// ItemKind discriminates cart lines into tickets and physical goods.
type ItemKind string

const (
	ItemKindTicket  ItemKind = "ticket"
	ItemKindMerch   ItemKind = "merch"
	ItemKindRelease ItemKind = "release"
)

func (k ItemKind) IsValid() bool {
	switch k {
	case ItemKindTicket, ItemKindMerch, ItemKindRelease:
		return true
	}
	return false
}

// IsPhysical reports whether an item of this kind needs shipping.
// Everything that is not a ticket is shipped.
func (k ItemKind) IsPhysical() bool {
	return k != ItemKindTicket
}

type ShippingRegion string

const (
	RegionGermany     ShippingRegion = "germany"
	RegionEU          ShippingRegion = "eu"
	RegionRestOfWorld ShippingRegion = "restOfWorld"
)

func (r ShippingRegion) IsValid() bool {
	switch r {
	case RegionGermany, RegionEU, RegionRestOfWorld:
		return true
	}
	return false
}

// CartLineItem is one line of the client-assembled cart. It only lives for
// the duration of a checkout; persisted order items are derived from it.
// Prices are in minor currency units (euro cents).
type CartLineItem struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	UnitPrice   int64             `json:"unit_price"`
	Quantity    int               `json:"quantity"`
	Kind        ItemKind          `json:"kind"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

func (i CartLineItem) LineTotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

// Metadata keys carried by ticket lines.
const (
	MetaEventTitle    = "eventTitle"
	MetaEventDate     = "eventDate"
	MetaEventLocation = "eventLocation"
)

type Address struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

type CustomerData struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone,omitempty"`
	Address   Address `json:"address,omitempty"`
}

func (c CustomerData) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Totals are cart-level aggregates in minor units, computed by the client
// and re-validated before reconciliation.
type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Shipping int64 `json:"shipping"`
	VAT      int64 `json:"vat"`
	Total    int64 `json:"total"`
}

// OrderContext is the serialized order state that travels with a payment,
// either as Stripe metadata (webhook path) or in the fallback request body.
type OrderContext struct {
	Customer       CustomerData   `json:"customer"`
	CartItems      []CartLineItem `json:"cart_items"`
	Totals         Totals         `json:"totals"`
	ShippingRegion ShippingRegion `json:"shipping_region"`
}

// ReconciliationResult summarizes what a reconcile call created.
type ReconciliationResult struct {
	AlreadyProcessed bool   `json:"already_processed"`
	OrderNumber      string `json:"order_number,omitempty"`
	TicketNumber     string `json:"ticket_number,omitempty"`
}
