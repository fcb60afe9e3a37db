package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/stationery_shop/internal/middleware/auth"
	"github.com/Skotchmaster/stationery_shop/internal/util"
)

const ItemsTotalCookie = "items_total"

var errUnauthorized = echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")

func GetID(c echo.Context) (uint, error) {
	s, ok := c.Get(auth.CtxUserID).(string)
	if !ok || s == "" {
		return 0, errUnauthorized
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, errUnauthorized
	}
	return uint(id), nil
}

func paramID(c echo.Context, name string) (uint, error) {
	id, ok := util.ParseUint(c.Param(name))
	if !ok {
		return 0, errors.New(name + " is not a positive integer")
	}
	return id, nil
}

// setItemsTotal keeps the cart counter readable by the page scripts.
func setItemsTotal(c echo.Context, n int, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     ItemsTotalCookie,
		Value:    strconv.Itoa(n),
		Path:     "/",
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
