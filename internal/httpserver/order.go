package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/stationery_shop/internal/logging"
	"github.com/Skotchmaster/stationery_shop/internal/service"
	"github.com/Skotchmaster/stationery_shop/internal/transport"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	userID, err := GetID(c)
	if err != nil {
		return writeError(c, l, "list_orders_failed", err)
	}
	orders, err := h.Svc.List(ctx, userID)
	if err != nil {
		return writeError(c, l, "list_orders_failed", err)
	}
	return c.JSON(http.StatusOK, transport.Orders(orders))
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	userID, err := GetID(c)
	if err != nil {
		return writeError(c, l, "get_order_failed", err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, l, "get_order_failed", err.Error(), err)
	}

	o, err := h.Svc.Get(ctx, userID, id)
	if err != nil {
		return writeError(c, l, "get_order_failed", err)
	}
	return c.JSON(http.StatusOK, transport.Order(*o))
}

func (h *OrderHTTP) RequestRefund(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.request_refund")

	userID, err := GetID(c)
	if err != nil {
		return writeError(c, l, "request_refund_failed", err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, l, "request_refund_failed", err.Error(), err)
	}
	var req transport.RefundRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "request_refund_failed", "invalid body", err)
	}

	o, err := h.Svc.RequestRefund(ctx, userID, id, req.Reason)
	if err != nil {
		return writeError(c, l, "request_refund_failed", err)
	}

	l.Info("request_refund_success", "order_id", o.ID)
	return c.JSON(http.StatusOK, map[string]any{
		"message": "Your request was received.",
		"order":   transport.Order(*o),
	})
}
