package order

import (
	"errors"

	"github.com/shopspring/decimal"

	"storefront-core/internal/domain/coupon"
)

var ErrCouponExceedsTotal = errors.New("coupon amount exceeds order total")

// Quote is the priced result of a set of line items plus an optional coupon.
// Shipping price is the pre-discount subtotal; total is what gets charged.
type Quote struct {
	ShippingCents int64
	TotalCents    int64
}

var oneHundred = decimal.NewFromInt(100)

// Price computes the quote deterministically: recomputing from the stored
// line items and coupon snapshot always reproduces the persisted total.
// Percentage discounts round half-up to the cent.
func Price(items []LineItem, discount *coupon.Discount) (Quote, error) {
	if len(items) == 0 {
		return Quote{}, ErrEmptyLineItems
	}

	var shipping int64
	for _, item := range items {
		shipping += item.TotalCents()
	}

	total := shipping
	if discount != nil {
		switch {
		case discount.IsFixed():
			if discount.AmountOffCents() > shipping {
				return Quote{}, ErrCouponExceedsTotal
			}
			total = shipping - discount.AmountOffCents()
		case discount.IsPercentage():
			// percentOff <= 100 is enforced at coupon creation, so no
			// lower-bound check is needed here.
			pct := decimal.NewFromFloat(discount.PercentOff())
			total = decimal.NewFromInt(shipping).
				Mul(oneHundred.Sub(pct)).
				Div(oneHundred).
				Round(0).
				IntPart()
		}
	}

	return Quote{ShippingCents: shipping, TotalCents: total}, nil
}
