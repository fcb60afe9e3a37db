package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/stationery_shop/internal/service"
	"github.com/Skotchmaster/stationery_shop/internal/transport"
)

var conflictErrs = []error{
	service.ErrInsufficientBalance,
	service.ErrStockExceeded,
	service.ErrEmptyCart,
	service.ErrConflict,
	service.ErrInvalidTransition,
}

var badRequestErrs = []error{
	service.ErrValidation,
	service.ErrRequired,
	service.ErrTooLong,
	service.ErrInvalidQuantity,
	service.ErrInsufficientStock,
	service.ErrCombinedQuantityExceedsStock,
	service.ErrInvalidAmount,
	service.ErrInvalidCardNumber,
	service.ErrInvalidCvc,
	service.ErrInvalidExpiry,
	service.ErrExpiredCard,
	service.ErrInvalidPayment,
	service.ErrInvalidRating,
	service.ErrInvalidRegion,
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// statusOf maps service errors to an HTTP status and the message shown to the user.
func statusOf(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok {
			return he.Code, msg
		}
		return he.Code, http.StatusText(he.Code)
	}

	switch {
	case errors.Is(err, service.ErrHeaderInjection):
		return http.StatusBadRequest, "Invalid header found."
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidRefreshToken):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "not found"
	case isAny(err, conflictErrs):
		return http.StatusConflict, err.Error()
	case isAny(err, badRequestErrs):
		return http.StatusBadRequest, err.Error()
	}
	return http.StatusInternalServerError, "internal error"
}

func errorBody(err error, msg string) transport.ErrorResponse {
	out := transport.ErrorResponse{Message: msg}
	var verrs service.ValidationErrors
	if errors.As(err, &verrs) {
		out.Message = "invalid form"
		for _, fe := range verrs {
			out.Errors = append(out.Errors, transport.FieldError{Field: fe.Field, Error: fe.Err.Error()})
		}
	}
	return out
}

// writeError logs the failure under event and renders it. 5xx hides the cause.
func writeError(c echo.Context, l *slog.Logger, event string, err error) error {
	status, msg := statusOf(err)
	switch {
	case status >= http.StatusInternalServerError:
		l.Error(event, "status", status, "error", err)
	default:
		l.Warn(event, "status", status, "reason", msg, "error", err)
	}
	return c.JSON(status, errorBody(err, msg))
}

func badRequest(c echo.Context, l *slog.Logger, event, reason string, err error) error {
	l.Warn(event, "status", http.StatusBadRequest, "reason", reason, "error", err)
	return c.JSON(http.StatusBadRequest, transport.ErrorResponse{Message: reason})
}
