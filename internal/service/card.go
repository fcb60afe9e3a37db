package service

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// maxCvcLen matches the width of the stored cvc column.
const maxCvcLen = 4

type CardForm struct {
	Name   string `json:"name" form:"name"`
	Number string `json:"number" form:"number"`
	Cvc    string `json:"cvc" form:"cvc"`
	Expiry string `json:"expiry" form:"expiry"`
}

// ValidateCard checks every field and returns ValidationErrors, or nil for a usable card.
func ValidateCard(f CardForm, now time.Time) error {
	var errs ValidationErrors
	if strings.TrimSpace(f.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Err: ErrRequired})
	}
	if !validCardNumber(f.Number) {
		errs = append(errs, FieldError{Field: "number", Err: ErrInvalidCardNumber})
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(f.Cvc)); n < 3 || n > maxCvcLen {
		errs = append(errs, FieldError{Field: "cvc", Err: ErrInvalidCvc})
	}
	if err := CheckExpiry(f.Expiry, now); err != nil {
		errs = append(errs, FieldError{Field: "expiry", Err: err})
	}
	return errs.OrNil()
}

func validCardNumber(number string) bool {
	groups := strings.Split(strings.TrimSpace(number), " ")
	if len(groups) != 4 {
		return false
	}
	for _, g := range groups {
		if utf8.RuneCountInString(g) != 4 {
			return false
		}
	}
	return true
}

// CheckExpiry parses "month day year" and rejects dates before the current month.
func CheckExpiry(expiry string, now time.Time) error {
	tokens := strings.Fields(expiry)
	if len(tokens) < 3 {
		return ErrInvalidExpiry
	}
	month, ok := parseMonth(tokens[0])
	if !ok {
		return ErrInvalidExpiry
	}
	year, err := strconv.Atoi(tokens[len(tokens)-1])
	if err != nil || year < 0 {
		return ErrInvalidExpiry
	}
	if year < 100 {
		year += 2000
	}

	if year < now.Year() || (year == now.Year() && month < now.Month()) {
		return ErrExpiredCard
	}
	return nil
}

func parseMonth(tok string) (time.Month, bool) {
	if n, err := strconv.Atoi(tok); err == nil {
		if n < 1 || n > 12 {
			return 0, false
		}
		return time.Month(n), true
	}
	tok = strings.ToLower(strings.TrimSuffix(tok, ","))
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		if tok == name || (len(tok) >= 3 && strings.HasPrefix(name, tok)) {
			return m, true
		}
	}
	return 0, false
}
