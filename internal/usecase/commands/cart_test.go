//go:build unit

package commands_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reqdto "storefront-core/internal/handler/dto/request"
	"storefront-core/internal/usecase/commands"
)

func TestPutItem(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	productID := f.addProduct("widget", 1000, 5)

	view, err := f.carts.PutItem(context.Background(),
		reqdto.PutCartItemRequest{ProductID: productID, Quantity: 2}, userID)
	require.NoError(t, err)

	require.Len(t, view.Lines, 1)
	assert.Equal(t, productID, view.Lines[0].ProductID)
	assert.Equal(t, "widget", view.Lines[0].Title)
	assert.Equal(t, int64(1000), view.Lines[0].BasePriceCents)
	assert.Equal(t, int64(2000), view.SubTotalCents)

	// Adding to the cart reads stock but reserves nothing.
	assert.Equal(t, int32(5), f.store.productStock(productID))
}

func TestPutItem_ReplacesQuantity(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	productID := f.addProduct("widget", 1000, 5)

	_, err := f.carts.PutItem(context.Background(),
		reqdto.PutCartItemRequest{ProductID: productID, Quantity: 2}, userID)
	require.NoError(t, err)

	view, err := f.carts.PutItem(context.Background(),
		reqdto.PutCartItemRequest{ProductID: productID, Quantity: 4}, userID)
	require.NoError(t, err)

	require.Len(t, view.Lines, 1)
	assert.Equal(t, int32(4), view.Lines[0].Quantity)
	assert.Equal(t, int64(4000), view.SubTotalCents)
}

func TestPutItem_Rejections(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	scarce := f.addProduct("widget", 1000, 1)

	t.Run("unknown product", func(t *testing.T) {
		_, err := f.carts.PutItem(context.Background(),
			reqdto.PutCartItemRequest{ProductID: uuid.New(), Quantity: 1}, userID)
		assert.ErrorIs(t, err, commands.ErrProductNotFound)
	})

	t.Run("quantity beyond stock", func(t *testing.T) {
		_, err := f.carts.PutItem(context.Background(),
			reqdto.PutCartItemRequest{ProductID: scarce, Quantity: 2}, userID)
		assert.ErrorIs(t, err, commands.ErrProductUnavailable)
	})
}

func TestRemoveItem(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	productA := f.addProduct("widget", 1000, 5)
	productB := f.addProduct("gadget", 500, 5)

	require.NoError(t, f.seedCartLine(userID, productA, "widget", 1000, 1))
	require.NoError(t, f.seedCartLine(userID, productB, "gadget", 500, 2))

	view, err := f.carts.RemoveItem(context.Background(), productA, userID)
	require.NoError(t, err)
	require.NotNil(t, view)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, int64(1000), view.SubTotalCents)

	// Removing the last line deletes the cart; nil signals "no cart left".
	view, err = f.carts.RemoveItem(context.Background(), productB, userID)
	require.NoError(t, err)
	assert.Nil(t, view)

	f.store.mu.Lock()
	_, survives := f.store.carts[userID]
	f.store.mu.Unlock()
	assert.False(t, survives)
}

func TestRemoveItem_Rejections(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	productID := f.addProduct("widget", 1000, 5)

	t.Run("no cart", func(t *testing.T) {
		_, err := f.carts.RemoveItem(context.Background(), productID, userID)
		assert.ErrorIs(t, err, commands.ErrCartNotFound)
	})

	t.Run("product not in cart", func(t *testing.T) {
		require.NoError(t, f.seedCartLine(userID, productID, "widget", 1000, 1))
		_, err := f.carts.RemoveItem(context.Background(), uuid.New(), userID)
		assert.ErrorIs(t, err, commands.ErrDomainValidation)
	})
}
