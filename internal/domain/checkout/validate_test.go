package checkout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop/internal/domain/checkout"
	"shop/internal/entities"
)

func validOrderContext() entities.OrderContext {
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
		},
		Totals:         entities.Totals{Subtotal: 2000, Shipping: 500, VAT: 475, Total: 2975},
		ShippingRegion: entities.RegionGermany,
	}
}

func TestValidateOrderContext_Valid(t *testing.T) {
	require.NoError(t, checkout.ValidateOrderContext("pi_123", validOrderContext()))
}

func TestValidateOrderContext_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		ref    string
		mutate func(*entities.OrderContext)
	}{
		{"missing payment reference", "", func(oc *entities.OrderContext) {}},
		{"missing first name", "pi_123", func(oc *entities.OrderContext) { oc.Customer.FirstName = "" }},
		{"missing email", "pi_123", func(oc *entities.OrderContext) { oc.Customer.Email = "" }},
		{"empty cart", "pi_123", func(oc *entities.OrderContext) { oc.CartItems = nil }},
		{"unknown region", "pi_123", func(oc *entities.OrderContext) { oc.ShippingRegion = "mars" }},
		{"unknown kind", "pi_123", func(oc *entities.OrderContext) { oc.CartItems[0].Kind = "subscription" }},
		{"zero quantity", "pi_123", func(oc *entities.OrderContext) { oc.CartItems[0].Quantity = 0 }},
		{"negative price", "pi_123", func(oc *entities.OrderContext) { oc.CartItems[0].UnitPrice = -1 }},
		{"negative shipping", "pi_123", func(oc *entities.OrderContext) { oc.Totals.Shipping = -500 }},
		{"totals mismatch", "pi_123", func(oc *entities.OrderContext) { oc.Totals.Total = 9999 }},
		{"missing address for physical item", "pi_123", func(oc *entities.OrderContext) {
			oc.Customer.Address = entities.Address{}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oc := validOrderContext()
			tt.mutate(&oc)

			err := checkout.ValidateOrderContext(tt.ref, oc)
			assert.ErrorIs(t, err, checkout.ErrInvalidInput)
		})
	}
}

func TestValidateOrderContext_TicketOnlyNeedsNoAddress(t *testing.T) {
	oc := validOrderContext()
	oc.CartItems = []entities.CartLineItem{
		{ID: "tix-1", Name: "Show", UnitPrice: 1500, Quantity: 1, Kind: entities.ItemKindTicket},
	}
	oc.Customer.Address = entities.Address{}
	oc.Totals = entities.Totals{Subtotal: 0, Shipping: 0, VAT: 0, Total: 0}

	require.NoError(t, checkout.ValidateOrderContext("pi_123", oc))
}

func TestValidateOrderContext_ToleratesRoundingSlack(t *testing.T) {
	oc := validOrderContext()
	oc.Totals.Total = oc.Totals.Total + 1

	require.NoError(t, checkout.ValidateOrderContext("pi_123", oc))

	// Slack scales per cart line, one cent each.
	oc = validOrderContext()
	oc.CartItems = append(oc.CartItems, entities.CartLineItem{
		ID: "shirt-1", Name: "Shirt", UnitPrice: 1000, Quantity: 1, Kind: entities.ItemKindMerch,
	})
	oc.Totals = entities.Totals{Subtotal: 3000, Shipping: 500, VAT: 475, Total: 3977}
	require.NoError(t, checkout.ValidateOrderContext("pi_123", oc))

	oc.Totals.Total = 3978
	assert.ErrorIs(t, checkout.ValidateOrderContext("pi_123", oc), checkout.ErrInvalidInput)
}
