package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/stationery_shop/internal/logging"
	"github.com/Skotchmaster/stationery_shop/internal/models"
	"github.com/Skotchmaster/stationery_shop/internal/service"
	"github.com/Skotchmaster/stationery_shop/internal/transport"
)

type WalletHTTP struct {
	Svc *service.WalletService
}

func (h *WalletHTTP) wallet(c echo.Context, userID uint, msg string) error {
	ctx := c.Request().Context()
	bal, err := h.Svc.Balance(ctx, userID)
	if err != nil {
		return err
	}
	cards, err := h.Svc.ListCards(ctx, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transport.WalletResponse{
		Balance: transport.Money(bal),
		Cards:   transport.Cards(cards),
		Message: msg,
	})
}

func (h *WalletHTTP) GetWallet(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "wallet.get")

	userID, err := GetID(c)
	if err != nil {
		return writeError(c, l, "get_wallet_failed", err)
	}
	if err := h.wallet(c, userID, ""); err != nil {
		return writeError(c, l, "get_wallet_failed", err)
	}
	return nil
}

func (h *WalletHTTP) TopUp(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wallet.top_up")

	userID, err := GetID(c)
	if err != nil {
		return writeError(c, l, "top_up_failed", err)
	}

	var req transport.TopUpRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "top_up_failed", "invalid body", err)
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return badRequest(c, l, "top_up_failed", "amount must be a number", err)
	}

	bal, err := h.Svc.TopUp(ctx, userID, amount)
	if err != nil {
		return writeError(c, l, "top_up_failed", err)
	}

	l.Info("top_up_success", "balance", transport.Money(bal))
	if err := h.wallet(c, userID, "Wallet topped up."); err != nil {
		return writeError(c, l, "top_up_failed", err)
	}
	return nil
}

func (h *WalletHTTP) ListCards(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wallet.list_cards")

	userID, err := GetID(c)
	if err != nil {
		return writeError(c, l, "list_cards_failed", err)
	}
	cards, err := h.Svc.ListCards(ctx, userID)
	if err != nil {
		return writeError(c, l, "list_cards_failed", err)
	}
	return c.JSON(http.StatusOK, transport.Cards(cards))
}

func (h *WalletHTTP) AddCard(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wallet.add_card")

	userID, err := GetID(c)
	if err != nil {
		return writeError(c, l, "add_card_failed", err)
	}

	var form service.CardForm
	if err := c.Bind(&form); err != nil {
		return badRequest(c, l, "add_card_failed", "invalid body", err)
	}

	card, err := h.Svc.AddCard(ctx, userID, form)
	if err != nil {
		return writeError(c, l, "add_card_failed", err)
	}

	l.Info("add_card_success", "card_id", card.ID)
	return c.JSON(http.StatusCreated, transport.Cards([]models.Card{*card})[0])
}

func (h *WalletHTTP) DeleteCard(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wallet.delete_card")

	userID, err := GetID(c)
	if err != nil {
		return writeError(c, l, "delete_card_failed", err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, l, "delete_card_failed", err.Error(), err)
	}

	if err := h.Svc.DeleteCard(ctx, userID, id); err != nil {
		return writeError(c, l, "delete_card_failed", err)
	}

	l.Info("delete_card_success", "card_id", id)
	return c.NoContent(http.StatusNoContent)
}
