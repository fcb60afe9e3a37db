package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/stationery_shop/internal/logging"
	"github.com/Skotchmaster/stationery_shop/internal/models"
	"github.com/Skotchmaster/stationery_shop/internal/service"
	"github.com/Skotchmaster/stationery_shop/internal/tokens"
	"github.com/Skotchmaster/stationery_shop/internal/transport"
)

type AuthHTTP struct {
	Svc          *service.AuthService
	CookieSecure bool
}

func (h *AuthHTTP) setAuthCookies(c echo.Context, p *tokens.Pair) {
	c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, p.AccessToken, "/", p.AccessExp, h.CookieSecure))
	c.SetCookie(tokens.CreateCookie(tokens.RefreshCookie, p.RefreshToken, "/", p.RefreshExp, h.CookieSecure))
}

func (h *AuthHTTP) clearAuthCookies(c echo.Context) {
	c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, "/", h.CookieSecure))
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/", h.CookieSecure))
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var form service.RegisterForm
	if err := c.Bind(&form); err != nil {
		return badRequest(c, l, "register_failed", "invalid body", err)
	}

	user, err := h.Svc.Register(ctx, form)
	if err != nil {
		return writeError(c, l, "register_failed", err)
	}

	l.Info("register_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, transport.User(*user))
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "login_failed", "invalid body", err)
	}

	pair, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		return writeError(c, l, "login_failed", err)
	}
	h.setAuthCookies(c, pair)

	l.Info("login_success", "user_id", pair.UserID)
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":  pair.UserID,
		"is_admin": pair.Role == models.RoleAdmin,
	})
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	rc, err := c.Cookie(tokens.RefreshCookie)
	if err != nil || rc.Value == "" {
		l.Warn("refresh_failed", "status", 401, "reason", "no refresh cookie")
		return c.JSON(http.StatusUnauthorized, transport.ErrorResponse{Message: "login required"})
	}

	pair, err := h.Svc.Refresh(ctx, rc.Value)
	if err != nil {
		h.clearAuthCookies(c)
		return writeError(c, l, "refresh_failed", err)
	}
	h.setAuthCookies(c, pair)

	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "refreshed"})
}

func (h *AuthHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	if rc, err := c.Cookie(tokens.RefreshCookie); err == nil {
		if err := h.Svc.LogOut(ctx, rc.Value); err != nil {
			h.clearAuthCookies(c)
			return writeError(c, l, "logout_failed", err)
		}
	}
	h.clearAuthCookies(c)
	setItemsTotal(c, 0, h.CookieSecure)

	l.Info("logout_success")
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "logged out"})
}

func (h *AuthHTTP) Account(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.account")

	userID, err := GetID(c)
	if err != nil {
		return writeError(c, l, "account_failed", err)
	}
	u, err := h.Svc.Account(ctx, userID)
	if err != nil {
		return writeError(c, l, "account_failed", err)
	}
	return c.JSON(http.StatusOK, transport.User(*u))
}

func (h *AuthHTTP) UpdateAccount(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.update_account")

	userID, err := GetID(c)
	if err != nil {
		return writeError(c, l, "update_account_failed", err)
	}
	var form service.AccountForm
	if err := c.Bind(&form); err != nil {
		return badRequest(c, l, "update_account_failed", "invalid body", err)
	}

	u, err := h.Svc.UpdateAccount(ctx, userID, form)
	if err != nil {
		return writeError(c, l, "update_account_failed", err)
	}

	l.Info("update_account_success", "user_id", userID)
	return c.JSON(http.StatusOK, transport.User(*u))
}
