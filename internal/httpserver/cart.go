package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/stationery_shop/internal/logging"
	"github.com/Skotchmaster/stationery_shop/internal/service"
	"github.com/Skotchmaster/stationery_shop/internal/transport"
)

const (
	actionDelete = "delete"
	actionChange = "change"
)

type CartHTTP struct {
	Svc          *service.CartService
	CookieSecure bool
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	userID, err := GetID(c)
	if err != nil {
		return writeError(c, l, "get_cart_failed", err)
	}

	cart, err := h.Svc.Get(ctx, userID)
	if err != nil {
		return writeError(c, l, "get_cart_failed", err)
	}
	setItemsTotal(c, cart.ItemsTotal, h.CookieSecure)

	return c.JSON(http.StatusOK, transport.Cart(cart.Order, cart.Items, cart.Total))
}

// CartAction deletes a line or changes its quantity.
func (h *CartHTTP) CartAction(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.action")

	userID, err := GetID(c)
	if err != nil {
		return writeError(c, l, "cart_action_failed", err)
	}

	var req transport.CartActionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "cart_action_failed", "invalid body", err)
	}
	if req.ItemID == 0 {
		return badRequest(c, l, "cart_action_failed", "item_id required", nil)
	}

	var (
		cart *service.Cart
		msg  string
	)
	switch req.Action {
	case actionDelete:
		cart, _, err = h.Svc.Remove(ctx, userID, req.ItemID)
		msg = "Item removed from cart."
	case actionChange:
		cart, _, err = h.Svc.Update(ctx, userID, req.ItemID, req.Quantity)
		msg = "Quantity updated."
	default:
		return badRequest(c, l, "cart_action_failed", "unknown action", nil)
	}
	if err != nil {
		return writeError(c, l, "cart_action_failed", err)
	}
	setItemsTotal(c, cart.ItemsTotal, h.CookieSecure)

	l.Info("cart_action_success", "action", req.Action, "item_id", req.ItemID)
	resp := transport.Cart(cart.Order, cart.Items, cart.Total)
	resp.Message = msg
	return c.JSON(http.StatusOK, resp)
}
