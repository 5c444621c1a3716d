package checkout

import (
	"fmt"

	"shop/internal/entities"
)

// totalsTolerancePerItem is the accepted rounding slack, in cents per cart
// line, between the client-computed total and subtotal+shipping+vat.
const totalsTolerancePerItem = 1

// ValidateOrderContext checks the reconcile input contract. All violations
// wrap ErrInvalidInput so triggers can map them to a 4xx uniformly.
func ValidateOrderContext(paymentReference string, oc entities.OrderContext) error {
	if paymentReference == "" {
		return fmt.Errorf("%w: payment reference is required", ErrInvalidInput)
	}
	if oc.Customer.FirstName == "" || oc.Customer.LastName == "" {
		return fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	}
	if oc.Customer.Email == "" {
		return fmt.Errorf("%w: customer email is required", ErrInvalidInput)
	}
	if len(oc.CartItems) == 0 {
		return fmt.Errorf("%w: cart is empty", ErrInvalidInput)
	}
	if !oc.ShippingRegion.IsValid() {
		return fmt.Errorf("%w: unknown shipping region %q", ErrInvalidInput, oc.ShippingRegion)
	}

	hasPhysical := false
	for _, item := range oc.CartItems {
		if !item.Kind.IsValid() {
			return fmt.Errorf("%w: unknown item kind %q", ErrInvalidInput, item.Kind)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item %q has non-positive quantity", ErrInvalidInput, item.Name)
		}
		if item.UnitPrice < 0 {
			return fmt.Errorf("%w: item %q has negative unit price", ErrInvalidInput, item.Name)
		}
		if item.Kind.IsPhysical() {
			hasPhysical = true
		}
	}

	// The shipping address is only required when something ships.
	if hasPhysical {
		addr := oc.Customer.Address
		if addr.Street == "" || addr.City == "" || addr.PostalCode == "" || addr.Country == "" {
			return fmt.Errorf("%w: shipping address is required for physical items", ErrInvalidInput)
		}
	}

	t := oc.Totals
	if t.Subtotal < 0 || t.Shipping < 0 || t.VAT < 0 || t.Total < 0 {
		return fmt.Errorf("%w: totals must be non-negative", ErrInvalidInput)
	}
	diff := t.Total - (t.Subtotal + t.Shipping + t.VAT)
	tolerance := int64(len(oc.CartItems)) * totalsTolerancePerItem
	if diff < -tolerance || diff > tolerance {
		return fmt.Errorf("%w: total %d does not match subtotal+shipping+vat %d",
			ErrInvalidInput, t.Total, t.Subtotal+t.Shipping+t.VAT)
	}

	return nil
}
