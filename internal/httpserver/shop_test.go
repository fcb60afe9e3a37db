package httpserver

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/stationery_shop/internal/testutil"
	"github.com/Skotchmaster/stationery_shop/internal/transport"
)

func TestHealth(t *testing.T) {
	te := newTestEnv(t)

	assert.Equal(t, http.StatusOK, te.do(t, http.MethodGet, "/health/live", nil).Code)
	assert.Equal(t, http.StatusOK, te.do(t, http.MethodGet, "/health/ready", nil).Code)
}

func TestListProducts(t *testing.T) {
	te := newTestEnv(t)
	testutil.Product(t, te.db, te.cat, "gel-pen", "2.50", 5)
	other := testutil.Category(t, te.db, "paper")
	testutil.Product(t, te.db, other, "a4-pad", "4.00", 5)

	rec := te.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[transport.ProductListResponse](t, rec)
	assert.Len(t, all.Data, 2)
	assert.Nil(t, all.Category)

	rec = te.do(t, http.MethodGet, "/category/paper", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	paper := decode[transport.ProductListResponse](t, rec)
	require.Len(t, paper.Data, 1)
	assert.Equal(t, "a4-pad", paper.Data[0].Slug)
	require.NotNil(t, paper.Category)
	assert.Equal(t, "paper", paper.Category.Slug)

	assert.Equal(t, http.StatusNotFound, te.do(t, http.MethodGet, "/category/nope", nil).Code)
}

func TestProductPage(t *testing.T) {
	te := newTestEnv(t)
	p := testutil.Product(t, te.db, te.cat, "gel-pen", "2.50", 5)

	rec := te.do(t, http.MethodGet, "/product/gel-pen", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[transport.ProductPageResponse](t, rec)
	assert.Equal(t, p.ID, page.Product.ID)
	assert.Equal(t, "2.50", page.Product.Price)
	assert.Equal(t, "0.0", page.Stats.Average)
	assert.Empty(t, page.Suggestions)

	assert.Equal(t, http.StatusNotFound, te.do(t, http.MethodGet, "/product/missing", nil).Code)
}

func TestProductAction_AddToCart(t *testing.T) {
	te := newTestEnv(t)
	u := testutil.User(t, te.db, "alice")
	testutil.Product(t, te.db, te.cat, "gel-pen", "2.50", 5)

	rec := te.do(t, http.MethodPost, "/product/gel-pen",
		map[string]any{"action": "add_to_cart", "quantity": 2}, session(t, u))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	cart := decode[transport.CartResponse](t, rec)
	assert.Equal(t, 1, cart.ItemsTotal)
	assert.Equal(t, "5.00", cart.Total)
	assert.NotEmpty(t, cart.Message)

	ck := cookie(rec, ItemsTotalCookie)
	require.NotNil(t, ck)
	assert.Equal(t, "1", ck.Value)
}

func TestProductAction_Rejections(t *testing.T) {
	te := newTestEnv(t)
	u := testutil.User(t, te.db, "alice")
	testutil.Product(t, te.db, te.cat, "gel-pen", "2.50", 5)

	cases := []struct {
		name   string
		path   string
		body   map[string]any
		status int
		msg    string
	}{
		{"over stock", "/product/gel-pen", map[string]any{"action": "add_to_cart", "quantity": 6}, http.StatusBadRequest, "chosen quantity exceeds stock"},
		{"zero quantity", "/product/gel-pen", map[string]any{"action": "add_to_cart", "quantity": 0}, http.StatusBadRequest, "choose a valid amount"},
		{"unknown action", "/product/gel-pen", map[string]any{"action": "wishlist"}, http.StatusBadRequest, "unknown action"},
		{"unknown product", "/product/missing", map[string]any{"action": "add_to_cart", "quantity": 1}, http.StatusNotFound, "not found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := te.do(t, http.MethodPost, tc.path, tc.body, session(t, u))
			require.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.Equal(t, tc.msg, decode[transport.ErrorResponse](t, rec).Message)
		})
	}

	rec := te.do(t, http.MethodGet, "/cart", nil, session(t, u))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[transport.CartResponse](t, rec).Items)
}

func TestProductAction_RequiresLogin(t *testing.T) {
	te := newTestEnv(t)
	testutil.Product(t, te.db, te.cat, "gel-pen", "2.50", 5)

	rec := te.do(t, http.MethodPost, "/product/gel-pen", map[string]any{"action": "add_to_cart", "quantity": 1})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProductAction_Review(t *testing.T) {
	te := newTestEnv(t)
	u := testutil.User(t, te.db, "alice")
	p := testutil.Product(t, te.db, te.cat, "gel-pen", "2.50", 5)

	rec := te.do(t, http.MethodPost, "/product/gel-pen",
		map[string]any{"action": "review", "subject": "Smooth", "comment": "Writes well", "rating": 4}, session(t, u))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = te.do(t, http.MethodPost, "/product/gel-pen",
		map[string]any{"action": "review", "comment": "Bad", "rating": 9}, session(t, u))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[transport.ErrorResponse](t, rec)
	require.NotEmpty(t, body.Errors)
	assert.Equal(t, "rating", body.Errors[0].Field)

	rec = te.do(t, http.MethodGet, fmt.Sprintf("/ajax/reviews?product_id=%d&page=1", p.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	reviews := decode[transport.ReviewPageResponse](t, rec)
	require.Len(t, reviews.Data, 1)
	assert.Equal(t, "Writes well", reviews.Data[0].Comment)

	assert.Equal(t, http.StatusBadRequest, te.do(t, http.MethodGet, "/ajax/reviews", nil).Code)
}

func TestCartAction(t *testing.T) {
	te := newTestEnv(t)
	u := testutil.User(t, te.db, "alice")
	testutil.Product(t, te.db, te.cat, "gel-pen", "2.50", 5)
	ck := session(t, u)

	rec := te.do(t, http.MethodPost, "/product/gel-pen", map[string]any{"action": "add_to_cart", "quantity": 1}, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	line := decode[transport.CartResponse](t, rec).Items[0]

	rec = te.do(t, http.MethodPost, "/cart", map[string]any{"action": "change", "item_id": line.ID, "quantity": 3}, ck)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "7.50", decode[transport.CartResponse](t, rec).Total)

	rec = te.do(t, http.MethodPost, "/cart", map[string]any{"action": "change", "item_id": line.ID, "quantity": 9}, ck)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = te.do(t, http.MethodPost, "/cart", map[string]any{"action": "delete", "item_id": line.ID}, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[transport.CartResponse](t, rec).Items)
	assert.Equal(t, "0", cookie(rec, ItemsTotalCookie).Value)

	rec = te.do(t, http.MethodPost, "/cart", map[string]any{"action": "delete", "item_id": line.ID}, ck)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func addToCart(t *testing.T, te *testEnv, ck *http.Cookie, slug string, q int) {
	t.Helper()
	rec := te.do(t, http.MethodPost, "/product/"+slug, map[string]any{"action": "add_to_cart", "quantity": q}, ck)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

type checkoutResponse struct {
	Message string                  `json:"message"`
	Order   transport.OrderResponse `json:"order"`
}

func TestCheckout_Wallet(t *testing.T) {
	te := newTestEnv(t)
	u := testutil.User(t, te.db, "alice")
	p := testutil.Product(t, te.db, te.cat, "gel-pen", "2.50", 5)
	addr := testutil.Address(t, te.db, u.ID)
	testutil.SetBalance(t, te.db, u.ID, "20.00")
	ck := session(t, u)

	addToCart(t, te, ck, "gel-pen", 2)

	rec := te.do(t, http.MethodGet, "/checkout", nil, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	sum := decode[transport.CheckoutSummaryResponse](t, rec)
	assert.Equal(t, "5.00", sum.Cart.Total)
	assert.Equal(t, "20.00", sum.Balance)
	require.Len(t, sum.Addresses, 1)

	rec = te.do(t, http.MethodPost, "/checkout", map[string]any{"action": "pay_wallet", "address_id": addr.ID}, ck)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode[checkoutResponse](t, rec)
	assert.True(t, out.Order.Ordered)
	assert.Equal(t, "FINALIZED", out.Order.Status)
	assert.Equal(t, "5.00", out.Order.Total)
	assert.Equal(t, "0", cookie(rec, ItemsTotalCookie).Value)

	assert.Equal(t, 3, testutil.Stock(t, te.db, p.ID))
	assert.Equal(t, "15.00", testutil.Balance(t, te.db, u.ID).StringFixed(2))

	rec = te.do(t, http.MethodGet, "/orders", nil, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	orders := decode[[]transport.OrderResponse](t, rec)
	require.Len(t, orders, 1)
	assert.Equal(t, out.Order.ID, orders[0].ID)

	rec = te.do(t, http.MethodPost, "/checkout", map[string]any{"action": "pay_wallet", "address_id": addr.ID}, ck)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCheckout_InsufficientBalance(t *testing.T) {
	te := newTestEnv(t)
	u := testutil.User(t, te.db, "alice")
	p := testutil.Product(t, te.db, te.cat, "gel-pen", "2.50", 5)
	addr := testutil.Address(t, te.db, u.ID)
	testutil.SetBalance(t, te.db, u.ID, "1.00")
	ck := session(t, u)

	addToCart(t, te, ck, "gel-pen", 2)

	rec := te.do(t, http.MethodPost, "/checkout", map[string]any{"action": "pay_wallet", "address_id": addr.ID}, ck)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "insufficient balance", decode[transport.ErrorResponse](t, rec).Message)
	assert.Equal(t, 5, testutil.Stock(t, te.db, p.ID))
	assert.Equal(t, "1.00", testutil.Balance(t, te.db, u.ID).StringFixed(2))
}

func TestCheckout_NewCard(t *testing.T) {
	te := newTestEnv(t)
	u := testutil.User(t, te.db, "alice")
	testutil.Product(t, te.db, te.cat, "gel-pen", "2.50", 5)
	addr := testutil.Address(t, te.db, u.ID)
	ck := session(t, u)

	addToCart(t, te, ck, "gel-pen", 1)

	rec := te.do(t, http.MethodPost, "/checkout", map[string]any{
		"action": "pay_new_card", "address_id": addr.ID,
		"name": "Alice", "number": "12345678", "cvc": "123", "expiry": "December 31 2099",
	}, ck)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[transport.ErrorResponse](t, rec)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "number", body.Errors[0].Field)

	rec = te.do(t, http.MethodPost, "/checkout", map[string]any{
		"action": "pay_new_card", "address_id": addr.ID, "save_card": true,
		"name": "Alice", "number": "1234 5678 9012 3456", "cvc": "123", "expiry": "December 31 2099",
	}, ck)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = te.do(t, http.MethodGet, "/wallet", nil, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	w := decode[transport.WalletResponse](t, rec)
	require.Len(t, w.Cards, 1)
	assert.Equal(t, "**** **** **** 3456", w.Cards[0].Number)

	rec = te.do(t, http.MethodPost, "/checkout", map[string]any{"action": "delete_card", "card_id": w.Cards[0].ID}, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = te.do(t, http.MethodPost, "/checkout", map[string]any{"action": "delete_card", "card_id": w.Cards[0].ID}, ck)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWallet(t *testing.T) {
	te := newTestEnv(t)
	u := testutil.User(t, te.db, "alice")
	ck := session(t, u)

	rec := te.do(t, http.MethodPost, "/wallet", map[string]any{"amount": "10.005"}, ck)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "10.01", decode[transport.WalletResponse](t, rec).Balance)

	assert.Equal(t, http.StatusBadRequest, te.do(t, http.MethodPost, "/wallet", map[string]any{"amount": "-1"}, ck).Code)
	assert.Equal(t, http.StatusBadRequest, te.do(t, http.MethodPost, "/wallet", map[string]any{"amount": "abc"}, ck).Code)

	rec = te.do(t, http.MethodPost, "/addcard", map[string]any{
		"name": "Alice", "number": "1234 5678 9012 3456", "cvc": "123", "expiry": "December 31 2099",
	}, ck)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	card := decode[transport.CardResponse](t, rec)

	rec = te.do(t, http.MethodGet, "/addcard", nil, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]transport.CardResponse](t, rec), 1)

	other := testutil.User(t, te.db, "bob")
	path := fmt.Sprintf("/cards/%d", card.ID)
	assert.Equal(t, http.StatusNotFound, te.do(t, http.MethodDelete, path, nil, session(t, other)).Code)
	assert.Equal(t, http.StatusNoContent, te.do(t, http.MethodDelete, path, nil, ck).Code)
}

type addressBook struct {
	Addresses []transport.AddressResponse `json:"addresses"`
	Regions   []transport.RegionResponse  `json:"regions"`
}

func TestAddresses(t *testing.T) {
	te := newTestEnv(t)
	u := testutil.User(t, te.db, "alice")
	ck := session(t, u)
	seed := testutil.Address(t, te.db, u.ID)

	rec := te.do(t, http.MethodGet, fmt.Sprintf("/ajax/load-subregions?region_id=%d", seed.RegionID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	subs := decode[[]transport.RegionResponse](t, rec)
	require.Len(t, subs, 1)

	rec = te.do(t, http.MethodPost, "/addresses/add", map[string]any{
		"name": "Home", "address": "2 Ink Rd", "region": seed.RegionID, "subregion": subs[0].ID, "zip": "20002",
	}, ck)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = te.do(t, http.MethodPost, "/addresses/add", map[string]any{"region": seed.RegionID, "subregion": 999}, ck)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, decode[transport.ErrorResponse](t, rec).Errors, 3)

	rec = te.do(t, http.MethodGet, "/addresses", nil, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	book := decode[addressBook](t, rec)
	assert.Len(t, book.Addresses, 2)
	assert.Len(t, book.Regions, 1)

	rec = te.do(t, http.MethodPost, fmt.Sprintf("/addresses/remove/%d", seed.ID), nil, ck)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = te.do(t, http.MethodPost, fmt.Sprintf("/addresses/remove/%d", seed.ID), nil, ck)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContact(t *testing.T) {
	te := newTestEnv(t)

	rec := te.do(t, http.MethodPost, "/contact", map[string]any{
		"name": "Eve\r\nBcc: all@example.com", "email": "eve@example.com", "subject": "hi", "message": "hello",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid header found.", decode[transport.ErrorResponse](t, rec).Message)

	rec = te.do(t, http.MethodPost, "/contact", map[string]any{
		"name": "Eve", "email": "eve@example.com", "subject": "hi", "message": "hello",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, te.events.Events("contact_events"), 1)
}
