package transport

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/stationery_shop/internal/models"
)

func TestProduct_DiscountRendering(t *testing.T) {
	t.Parallel()

	p := models.Product{ID: 1, Name: "Pen", Price: decimal.RequireFromString("2.5")}
	out := Product(p)
	assert.Equal(t, "2.50", out.Price)
	assert.Nil(t, out.DiscountPrice)
	assert.Equal(t, "2.50", out.EffectivePrice)

	p.DiscountPrice = decimal.NewNullDecimal(decimal.RequireFromString("1.999"))
	out = Product(p)
	require.NotNil(t, out.DiscountPrice)
	assert.Equal(t, "2.00", *out.DiscountPrice)
	assert.Equal(t, "2.00", out.EffectivePrice)
}

func TestOrder_DerivedFlags(t *testing.T) {
	t.Parallel()

	delivered := time.Date(2025, time.June, 20, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		status                                            models.OrderStatus
		deliveredAt                                       *time.Time
		ordered, delivering, received, requested, granted bool
	}{
		{status: models.StatusFinalized, ordered: true},
		{status: models.StatusInTransit, ordered: true, delivering: true},
		{status: models.StatusDelivered, deliveredAt: &delivered, ordered: true, received: true},
		{status: models.StatusRefundRequested, ordered: true, requested: true},
		{status: models.StatusRefundRequested, deliveredAt: &delivered, ordered: true, received: true, requested: true},
		{status: models.StatusRefundGranted, deliveredAt: &delivered, ordered: true, received: true, requested: true, granted: true},
	}
	for _, tt := range tests {
		out := Order(models.Order{Status: tt.status, DeliveredAt: tt.deliveredAt})
		assert.Equal(t, tt.ordered, out.Ordered, tt.status)
		assert.Equal(t, tt.delivering, out.BeingDelivered, tt.status)
		assert.Equal(t, tt.received, out.Received, tt.status)
		assert.Equal(t, tt.requested, out.RefundRequested, tt.status)
		assert.Equal(t, tt.granted, out.RefundGranted, tt.status)
	}
}

func TestCart_LineTotals(t *testing.T) {
	t.Parallel()

	items := []models.CartProduct{
		{ID: 1, Quantity: 3, Product: models.Product{
			Price:         decimal.RequireFromString("4.00"),
			DiscountPrice: decimal.NewNullDecimal(decimal.RequireFromString("3.50")),
		}},
	}
	o := &models.Order{ID: 9, Items: items}
	out := Cart(o, items, o.Total())

	assert.EqualValues(t, 9, out.OrderID)
	assert.Equal(t, 1, out.ItemsTotal)
	assert.Equal(t, "10.50", out.Total)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "10.50", out.Items[0].LineTotal)
	assert.Equal(t, "1.50", out.Items[0].AmountSaved)
}

func TestCards_Masked(t *testing.T) {
	t.Parallel()

	out := Cards([]models.Card{{ID: 1, Name: "A", Number: "1234 5678 9012 3456", Expiry: "Jan 1 2030"}})
	assert.Equal(t, "**** **** **** 3456", out[0].Number)
}
