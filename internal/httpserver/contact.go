package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/stationery_shop/internal/logging"
	"github.com/Skotchmaster/stationery_shop/internal/service"
	"github.com/Skotchmaster/stationery_shop/internal/transport"
)

type ContactHTTP struct {
	Svc *service.ContactService
}

func (h *ContactHTTP) ContactInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"email": h.Svc.To})
}

func (h *ContactHTTP) Send(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "contact.send")

	var form service.ContactForm
	if err := c.Bind(&form); err != nil {
		return badRequest(c, l, "contact_failed", "invalid body", err)
	}

	if err := h.Svc.Send(ctx, form); err != nil {
		return writeError(c, l, "contact_failed", err)
	}

	l.Info("contact_sent")
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Your message was sent."})
}
