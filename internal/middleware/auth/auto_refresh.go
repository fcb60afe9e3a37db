package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/stationery_shop/internal/logging"
	"github.com/Skotchmaster/stationery_shop/internal/models"
	"github.com/Skotchmaster/stationery_shop/internal/tokens"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

// Refresher rotates a refresh token into a new pair.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*tokens.Pair, error)
}

type AutoRefreshMiddleware struct {
	JWTSecret    []byte
	Refresher    Refresher
	CookieSecure bool
}

func NewAutoRefreshMiddleware(secret []byte, refresher Refresher, secure bool) *AutoRefreshMiddleware {
	return &AutoRefreshMiddleware{
		JWTSecret:    secret,
		Refresher:    refresher,
		CookieSecure: secure,
	}
}

type ValidatorFunc func(claims *tokens.AccessClaims) error

func (m *AutoRefreshMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

func (m *AutoRefreshMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, func(claims *tokens.AccessClaims) error {
		if claims.Role != models.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}

// Optional sets the user when a valid session exists and lets anonymous requests through.
func (m *AutoRefreshMiddleware) Optional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ac, err := c.Cookie(tokens.AccessCookie)
		if err == nil && ac.Value != "" {
			if claims, err := tokens.AccessClaimsFromToken(ac.Value, m.JWTSecret); err == nil {
				setUserContext(c, claims)
				return next(c)
			}
		}
		if rc, err := c.Cookie(tokens.RefreshCookie); err == nil && rc.Value != "" {
			if claims, err := m.rotate(c, rc.Value); err == nil {
				setUserContext(c, claims)
			}
		}
		return next(c)
	}
}

func (m *AutoRefreshMiddleware) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context())

		accessCookie, err := c.Cookie(tokens.AccessCookie)
		var claims *tokens.AccessClaims
		if err == nil && accessCookie.Value != "" {
			claims, err = tokens.AccessClaimsFromToken(accessCookie.Value, m.JWTSecret)
			if err != nil && !errors.Is(err, jwt.ErrTokenExpired) {
				m.clearAuthCookies(c)
				l.Warn("auth_failed", "status", 401, "reason", "invalid access token", "error", err)
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
			}
		}

		if claims == nil {
			refreshCookie, rErr := c.Cookie(tokens.RefreshCookie)
			if rErr != nil || refreshCookie.Value == "" {
				m.clearAuthCookies(c)
				return echo.NewHTTPError(http.StatusUnauthorized, "login required")
			}
			claims, err = m.rotate(c, refreshCookie.Value)
			if err != nil {
				m.clearAuthCookies(c)
				l.Warn("auth_failed", "status", 401, "reason", "refresh failed", "error", err)
				return echo.NewHTTPError(http.StatusUnauthorized, "refresh failed")
			}
		}

		if validator != nil {
			if err := validator(claims); err != nil {
				return err
			}
		}

		setUserContext(c, claims)
		return next(c)
	}
}

// rotate exchanges the refresh token, sets the new cookies and returns the new access claims.
func (m *AutoRefreshMiddleware) rotate(c echo.Context, refreshToken string) (*tokens.AccessClaims, error) {
	if m.Refresher == nil {
		return nil, errors.New("no refresher configured")
	}
	pair, err := m.Refresher.Refresh(c.Request().Context(), refreshToken)
	if err != nil {
		return nil, err
	}

	c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, pair.AccessToken, "/", pair.AccessExp, m.CookieSecure))
	c.SetCookie(tokens.CreateCookie(tokens.RefreshCookie, pair.RefreshToken, "/", pair.RefreshExp, m.CookieSecure))

	return tokens.AccessClaimsFromToken(pair.AccessToken, m.JWTSecret)
}

func (m *AutoRefreshMiddleware) clearAuthCookies(c echo.Context) {
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/", m.CookieSecure))
	c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, "/", m.CookieSecure))
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set(CtxUserID, claims.Subject)
	c.Set(CtxRole, claims.Role)
}
