package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/stationery_shop/internal/events"
	"github.com/Skotchmaster/stationery_shop/internal/testutil"
)

func TestCartAdd_CreatesOpenOrder(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := testutil.User(t, e.db, "alice")
	p := testutil.Product(t, e.db, e.cat, "gel-pen", "2.50", 10)

	cart, err := e.cart.Add(ctx, u.ID, p.ID, 2)
	require.NoError(t, err)
	require.NotNil(t, cart.Order)
	assert.Equal(t, 1, cart.ItemsTotal)
	assert.Equal(t, "5.00", cart.Total.StringFixed(2))

	user, err := e.repo.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, user.ActiveOrderID)
	assert.Equal(t, cart.Order.ID, *user.ActiveOrderID)
	assert.Len(t, e.events.Events(events.TopicCart), 1)

	// same product merges into the existing line
	cart, err = e.cart.Add(ctx, u.ID, p.ID, 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
}

func TestCartAdd_CombinedQuantityExceedsStock(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := testutil.User(t, e.db, "alice")
	p := testutil.Product(t, e.db, e.cat, "notebook", "4.00", 5)

	_, err := e.cart.Add(ctx, u.ID, p.ID, 3)
	require.NoError(t, err)

	_, err = e.cart.Add(ctx, u.ID, p.ID, 3)
	require.ErrorIs(t, err, ErrCombinedQuantityExceedsStock)

	cart, err := e.cart.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
}

func TestCartAdd_Rejections(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := testutil.User(t, e.db, "alice")
	p := testutil.Product(t, e.db, e.cat, "stapler", "9.99", 2)

	tests := []struct {
		name      string
		productID uint
		quantity  int
		want      error
	}{
		{name: "more than stock", productID: p.ID, quantity: 3, want: ErrInsufficientStock},
		{name: "zero", productID: p.ID, quantity: 0, want: ErrInvalidQuantity},
		{name: "negative", productID: p.ID, quantity: -1, want: ErrInvalidQuantity},
		{name: "unknown product", productID: 9999, quantity: 1, want: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.cart.Add(ctx, u.ID, tt.productID, tt.quantity)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	cart, err := e.cart.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Nil(t, cart.Order)
}

func TestCartUpdateAndRemove(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := testutil.User(t, e.db, "alice")
	other := testutil.User(t, e.db, "bob")
	pen := testutil.Product(t, e.db, e.cat, "pen", "1.00", 4)
	ink := testutil.Product(t, e.db, e.cat, "ink", "3.00", 4)

	_, err := e.cart.Add(ctx, u.ID, pen.ID, 1)
	require.NoError(t, err)
	cart, err := e.cart.Add(ctx, u.ID, ink.ID, 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	penLine := cart.Items[0].ID

	cart, changed, err := e.cart.Update(ctx, u.ID, penLine, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, changed.Quantity)
	assert.Equal(t, "7.00", cart.Total.StringFixed(2))

	_, _, err = e.cart.Update(ctx, u.ID, penLine, 5)
	require.ErrorIs(t, err, ErrInsufficientStock)
	_, _, err = e.cart.Update(ctx, u.ID, penLine, 0)
	require.ErrorIs(t, err, ErrInvalidQuantity)

	// another user can not touch the line
	_, _, err = e.cart.Remove(ctx, other.ID, penLine)
	require.ErrorIs(t, err, ErrNotFound)

	cart, removed, err := e.cart.Remove(ctx, u.ID, penLine)
	require.NoError(t, err)
	assert.Equal(t, pen.ID, removed.ProductID)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.ItemsTotal)
	assert.Equal(t, "3.00", cart.Total.StringFixed(2))
}
