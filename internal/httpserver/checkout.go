package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/stationery_shop/internal/logging"
	"github.com/Skotchmaster/stationery_shop/internal/models"
	"github.com/Skotchmaster/stationery_shop/internal/service"
	"github.com/Skotchmaster/stationery_shop/internal/transport"
)

const (
	actionPayWallet  = "pay_wallet"
	actionPayCard    = "pay_card"
	actionPayNewCard = "pay_new_card"
	actionDeleteCard = "delete_card"
)

type CheckoutHTTP struct {
	Svc          *service.CheckoutService
	Wallet       *service.WalletService
	CookieSecure bool
}

func (h *CheckoutHTTP) Summary(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.summary")

	userID, err := GetID(c)
	if err != nil {
		return writeError(c, l, "checkout_summary_failed", err)
	}

	sum, err := h.Svc.Summary(ctx, userID)
	if err != nil {
		return writeError(c, l, "checkout_summary_failed", err)
	}

	return c.JSON(http.StatusOK, transport.CheckoutSummaryResponse{
		Cart:      transport.Cart(sum.Cart.Order, sum.Cart.Items, sum.Cart.Total),
		Addresses: transport.Addresses(sum.Addresses),
		Cards:     transport.Cards(sum.Cards),
		Balance:   transport.Money(sum.Balance),
	})
}

func (h *CheckoutHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.checkout")

	userID, err := GetID(c)
	if err != nil {
		return writeError(c, l, "checkout_failed", err)
	}

	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "checkout_failed", "invalid body", err)
	}

	var pay service.PaymentRequest
	switch req.Action {
	case actionPayWallet:
		pay = service.PaymentRequest{Method: models.PaymentWallet}
	case actionPayCard:
		pay = service.PaymentRequest{Method: models.PaymentCard, CardID: req.CardID}
	case actionPayNewCard:
		pay = service.PaymentRequest{
			Method:   models.PaymentCard,
			NewCard:  &service.CardForm{Name: req.Name, Number: req.Number, Cvc: req.Cvc, Expiry: req.Expiry},
			SaveCard: req.SaveCard,
		}
	case actionDeleteCard:
		if err := h.Wallet.DeleteCard(ctx, userID, req.CardID); err != nil {
			return writeError(c, l, "delete_card_failed", err)
		}
		l.Info("delete_card_success", "card_id", req.CardID)
		return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Card removed."})
	default:
		return badRequest(c, l, "checkout_failed", "unknown action", nil)
	}

	order, err := h.Svc.Checkout(ctx, userID, req.AddressID, pay)
	if err != nil {
		return writeError(c, l, "checkout_failed", err)
	}
	setItemsTotal(c, 0, h.CookieSecure)

	l.Info("checkout_success", "order_id", order.ID)
	return c.JSON(http.StatusOK, map[string]any{
		"message": "Your order was placed.",
		"order":   transport.Order(*order),
	})
}
