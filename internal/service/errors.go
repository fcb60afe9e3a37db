package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/stationery_shop/internal/models"
)

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrRequired   = errors.New("this field is required")
	ErrTooLong    = errors.New("value is too long")
)

// cart
var (
	ErrInvalidQuantity              = errors.New("choose a valid amount")
	ErrInsufficientStock            = errors.New("chosen quantity exceeds stock")
	ErrCombinedQuantityExceedsStock = errors.New("item already in cart, total quantity exceeds stock")
)

// checkout and wallet
var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrStockExceeded       = errors.New("stock exceeded")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidCardNumber   = errors.New("card number must be 4 groups of 4 characters")
	ErrInvalidCvc          = errors.New("cvc must be 3 or 4 characters")
	ErrInvalidExpiry       = errors.New("expiry must look like \"month day year\"")
	ErrExpiredCard         = errors.New("card is expired")
	ErrInvalidPayment      = errors.New("unknown payment method")
)

// reviews, addresses, contact, auth
var (
	ErrInvalidRating       = errors.New("rating must be between 1 and 5")
	ErrInvalidRegion       = errors.New("subregion does not belong to the region")
	ErrHeaderInjection     = errors.New("invalid header found")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// ErrInvalidTransition is re-exported so callers only import service.
var ErrInvalidTransition = models.ErrInvalidTransition

type StockExceededError struct {
	Product models.Product
}

func (e *StockExceededError) Error() string {
	return fmt.Sprintf("only %d of %s left in stock", e.Product.Stock, e.Product.Name)
}

func (e *StockExceededError) Is(target error) bool { return target == ErrStockExceeded }

type FieldError struct {
	Field string
	Err   error
}

func (e FieldError) Error() string { return e.Field + ": " + e.Err.Error() }

func (e FieldError) Unwrap() error { return e.Err }

// ValidationErrors lists every failing field of a form. It matches ErrValidation
// as well as the error of each field.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fe.Error()
	}
	return strings.Join(parts, "; ")
}

func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, 0, len(v)+1)
	errs = append(errs, ErrValidation)
	for _, fe := range v {
		errs = append(errs, fe)
	}
	return errs
}

func (v ValidationErrors) OrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
