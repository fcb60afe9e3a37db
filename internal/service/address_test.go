package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/stationery_shop/internal/models"
	"github.com/Skotchmaster/stationery_shop/internal/testutil"
)

func TestAddress_AddListRemove(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := testutil.User(t, e.db, "alice")

	north, err := e.address.CreateRegion(ctx, "North")
	require.NoError(t, err)
	south, err := e.address.CreateRegion(ctx, "South")
	require.NoError(t, err)
	city, err := e.address.CreateSubRegion(ctx, north.ID, "City")
	require.NoError(t, err)
	_, err = e.address.CreateSubRegion(ctx, 999, "Nowhere")
	require.ErrorIs(t, err, ErrNotFound)

	subs, err := e.address.SubRegions(ctx, north.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)

	_, err = e.address.Add(ctx, u.ID, AddressForm{Address: "1 Main", RegionID: south.ID, SubRegionID: city.ID, Zip: "1"})
	require.ErrorIs(t, err, ErrInvalidRegion)

	_, err = e.address.Add(ctx, u.ID, AddressForm{RegionID: north.ID, SubRegionID: city.ID})
	require.ErrorIs(t, err, ErrRequired)
	var verr ValidationErrors
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr, 2)

	a, err := e.address.Add(ctx, u.ID, AddressForm{Name: "Home", Address: "1 Main", RegionID: north.ID, SubRegionID: city.ID, Zip: "10001"})
	require.NoError(t, err)

	list, err := e.address.List(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "North", list[0].Region.Name)
	assert.Equal(t, "City", list[0].SubRegion.Name)

	require.NoError(t, e.address.Remove(ctx, u.ID, a.ID))
	require.ErrorIs(t, e.address.Remove(ctx, u.ID, a.ID), ErrNotFound)

	list, err = e.address.List(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	// the row survives for orders that point at it
	var kept models.Address
	require.NoError(t, e.db.First(&kept, a.ID).Error)
	assert.Nil(t, kept.UserID)
}
