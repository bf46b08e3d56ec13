//go:build unit

package cart_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-core/internal/domain/cart"
)

func TestCart_PutProduct(t *testing.T) {
	userID := uuid.New()
	productA := uuid.New()
	productB := uuid.New()

	c := cart.NewCart(uuid.New(), userID)
	assert.True(t, c.IsEmpty())

	require.NoError(t, c.PutProduct(productA, "widget", 1000, 2))
	require.NoError(t, c.PutProduct(productB, "gadget", 250, 1))
	assert.Len(t, c.Lines(), 2)
	assert.Equal(t, int64(2250), c.SubTotalCents())

	// Putting an existing product replaces the quantity, it does not add.
	require.NoError(t, c.PutProduct(productA, "widget", 1000, 5))
	assert.Len(t, c.Lines(), 2)
	assert.Equal(t, int64(5250), c.SubTotalCents())

	assert.ErrorIs(t, c.PutProduct(productA, "widget", 1000, 0), cart.ErrInvalidQuantity)
}

func TestCart_RemoveProduct(t *testing.T) {
	productA := uuid.New()
	productB := uuid.New()

	c := cart.NewCart(uuid.New(), uuid.New())
	require.NoError(t, c.PutProduct(productA, "widget", 1000, 1))
	require.NoError(t, c.PutProduct(productB, "gadget", 500, 2))

	require.NoError(t, c.RemoveProduct(productA))
	assert.Len(t, c.Lines(), 1)
	assert.Equal(t, int64(1000), c.SubTotalCents())

	assert.ErrorIs(t, c.RemoveProduct(productA), cart.ErrProductNotInCart)

	require.NoError(t, c.RemoveProduct(productB))
	assert.True(t, c.IsEmpty())
	assert.Equal(t, int64(0), c.SubTotalCents())
}

func TestCart_ToOrderItems(t *testing.T) {
	productA := uuid.New()

	c := cart.NewCart(uuid.New(), uuid.New())
	_, err := c.ToOrderItems()
	assert.ErrorIs(t, err, cart.ErrEmptyCart)

	require.NoError(t, c.PutProduct(productA, "widget", 1200, 3))
	items, err := c.ToOrderItems()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, productA, items[0].ProductID)
	assert.Equal(t, "widget", items[0].Title)
	assert.Equal(t, int32(3), items[0].Quantity)
	assert.Equal(t, int64(1200), items[0].UnitPriceCents)
	assert.Equal(t, int64(3600), items[0].TotalCents())
}
