//go:build unit

package order_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-core/internal/domain/coupon"
	"storefront-core/internal/domain/order"
)

func lineItem(t *testing.T, quantity int32, unitPriceCents int64) order.LineItem {
	t.Helper()
	item, err := order.NewLineItem(uuid.New(), "widget", quantity, unitPriceCents)
	require.NoError(t, err)
	return item
}

func fixedDiscount(t *testing.T, amountOffCents int64) *coupon.Discount {
	t.Helper()
	d, err := coupon.NewFixedDiscount(amountOffCents)
	require.NoError(t, err)
	return &d
}

func percentageDiscount(t *testing.T, percentOff float64) *coupon.Discount {
	t.Helper()
	d, err := coupon.NewPercentageDiscount(percentOff)
	require.NoError(t, err)
	return &d
}

func TestPrice(t *testing.T) {
	testCases := []struct {
		name         string
		items        []order.LineItem
		discount     *coupon.Discount
		wantShipping int64
		wantTotal    int64
		wantErr      error
	}{
		{
			name:         "single item no discount",
			items:        []order.LineItem{lineItem(t, 3, 1000)},
			wantShipping: 3000,
			wantTotal:    3000,
		},
		{
			name:         "multiple items summed",
			items:        []order.LineItem{lineItem(t, 2, 1500), lineItem(t, 1, 250)},
			wantShipping: 3250,
			wantTotal:    3250,
		},
		{
			name:         "fixed discount subtracted",
			items:        []order.LineItem{lineItem(t, 1, 5000)},
			discount:     fixedDiscount(t, 500),
			wantShipping: 5000,
			wantTotal:    4500,
		},
		{
			name:         "fixed discount equal to subtotal gives zero",
			items:        []order.LineItem{lineItem(t, 1, 500)},
			discount:     fixedDiscount(t, 500),
			wantShipping: 500,
			wantTotal:    0,
		},
		{
			name:     "fixed discount exceeding subtotal rejected",
			items:    []order.LineItem{lineItem(t, 1, 499)},
			discount: fixedDiscount(t, 500),
			wantErr:  order.ErrCouponExceedsTotal,
		},
		{
			name:         "percentage discount",
			items:        []order.LineItem{lineItem(t, 1, 10000)},
			discount:     percentageDiscount(t, 10),
			wantShipping: 10000,
			wantTotal:    9000,
		},
		{
			name: "percentage rounds half up",
			// 333 * 0.85 = 283.05 -> 283; 335 * 0.85 = 284.75 -> 285
			items:        []order.LineItem{lineItem(t, 1, 335)},
			discount:     percentageDiscount(t, 15),
			wantShipping: 335,
			wantTotal:    285,
		},
		{
			name:         "hundred percent discount gives zero",
			items:        []order.LineItem{lineItem(t, 1, 999)},
			discount:     percentageDiscount(t, 100),
			wantShipping: 999,
			wantTotal:    0,
		},
		{
			name:    "empty items rejected",
			items:   nil,
			wantErr: order.ErrEmptyLineItems,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			quote, err := order.Price(tc.items, tc.discount)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantShipping, quote.ShippingCents)
			assert.Equal(t, tc.wantTotal, quote.TotalCents)
		})
	}
}

func TestPrice_Deterministic(t *testing.T) {
	items := []order.LineItem{lineItem(t, 3, 1333), lineItem(t, 1, 77)}
	discount := percentageDiscount(t, 33.33)

	first, err := order.Price(items, discount)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := order.Price(items, discount)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestLineItem_Validation(t *testing.T) {
	_, err := order.NewLineItem(uuid.New(), "widget", 0, 100)
	assert.ErrorIs(t, err, order.ErrInvalidQuantity)

	_, err = order.NewLineItem(uuid.New(), "widget", 1, -1)
	assert.ErrorIs(t, err, order.ErrInvalidUnitPrice)

	item, err := order.NewLineItem(uuid.New(), "freebie", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), item.TotalCents())
}
