package checkout

import (
	"github.com/shopspring/decimal"

	"shop/internal/entities"
)

// Allocation is the per-item split of the cart-level shipping and VAT
// aggregates, in major units. NetAmount = line total + both shares, so the
// nets of all physical items sum back to the order total.
type Allocation struct {
	LineTotal     decimal.Decimal
	ShippingShare decimal.Decimal
	VATShare      decimal.Decimal
	NetAmount     decimal.Decimal
}

// AllocateCharges distributes totals.Shipping and totals.VAT across the
// physical items proportionally to each item's share of the physical line
// value. The split is by value, not by shipping-tier rules; that is a
// business simplification carried over deliberately.
//
// Shares are rounded to cents; the last item absorbs the rounding remainder
// so the allocation conserves the cart-level aggregates exactly. A cart
// whose physical lines sum to zero (fully discounted items) allocates zero
// everywhere instead of dividing by zero.
func AllocateCharges(physical []entities.CartLineItem, totals entities.Totals) []Allocation {
	if len(physical) == 0 {
		return nil
	}

	var sum int64
	for _, item := range physical {
		sum += item.LineTotal()
	}

	allocations := make([]Allocation, len(physical))

	if sum == 0 {
		for i, item := range physical {
			lineTotal := MinorToMajor(item.LineTotal())
			allocations[i] = Allocation{
				LineTotal:     lineTotal,
				ShippingShare: decimal.Zero,
				VATShare:      decimal.Zero,
				NetAmount:     lineTotal,
			}
		}
		return allocations
	}

	shippingTotal := MinorToMajor(totals.Shipping)
	vatTotal := MinorToMajor(totals.VAT)
	valueSum := MinorToMajor(sum)

	shippingLeft := shippingTotal
	vatLeft := vatTotal

	for i, item := range physical {
		lineTotal := MinorToMajor(item.LineTotal())

		var shippingShare, vatShare decimal.Decimal
		if i == len(physical)-1 {
			shippingShare = shippingLeft
			vatShare = vatLeft
		} else {
			proportion := lineTotal.Div(valueSum)
			shippingShare = shippingTotal.Mul(proportion).Round(2)
			vatShare = vatTotal.Mul(proportion).Round(2)
			shippingLeft = shippingLeft.Sub(shippingShare)
			vatLeft = vatLeft.Sub(vatShare)
		}

		allocations[i] = Allocation{
			LineTotal:     lineTotal,
			ShippingShare: shippingShare,
			VATShare:      vatShare,
			NetAmount:     lineTotal.Add(shippingShare).Add(vatShare),
		}
	}

	return allocations
}
