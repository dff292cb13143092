// Package validators holds the business-rule predicates services run before
// touching the store. Every failure wraps an apperr kind.
package validators

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/unimart/internal/apperr"
	"github.com/Skotchmaster/unimart/internal/models"
)

const (
	MaxProductName    = 150
	MinPasswordLength = 8
	passwordSpecials  = "$%&!"
	PriceScale        = 2
)

var (
	telephoneRe = regexp.MustCompile(`^\+7\d{10}$`)
	maxPrice    = decimal.New(1, 10)
)

// ProductInCart rejects adding a product the owner already has an active line for.
func ProductInCart(existing *models.CartItem) error {
	if existing != nil {
		return fmt.Errorf("product is already in cart: %w", apperr.ErrConflict)
	}
	return nil
}

func AddQuantity(q int) error {
	if q < 0 {
		return fmt.Errorf("quantity must be greater than or equal to 0: %w", apperr.ErrValidation)
	}
	return nil
}

func UpdateQuantity(q int) error {
	if q <= 0 {
		return fmt.Errorf("quantity must be greater than 0: %w", apperr.ErrValidation)
	}
	return nil
}

// Price accepts non-negative amounts that fit numeric(12,2).
func Price(p decimal.Decimal) error {
	if p.IsNegative() {
		return fmt.Errorf("price must be non-negative: %w", apperr.ErrValidation)
	}
	if !p.Equal(p.Round(PriceScale)) {
		return fmt.Errorf("price must have at most %d decimal places: %w", PriceScale, apperr.ErrValidation)
	}
	if p.GreaterThanOrEqual(maxPrice) {
		return fmt.Errorf("price must be less than %s: %w", maxPrice, apperr.ErrValidation)
	}
	return nil
}

func ProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name is required: %w", apperr.ErrValidation)
	}
	if utf8.RuneCountInString(name) > MaxProductName {
		return fmt.Errorf("name must be at most %d characters: %w", MaxProductName, apperr.ErrValidation)
	}
	return nil
}

// Password requires 8+ characters, an uppercase letter, one of $%&! and a
// matching confirmation.
func Password(password, confirm string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength ||
		!strings.ContainsFunc(password, unicode.IsUpper) ||
		!strings.ContainsAny(password, passwordSpecials) {
		return fmt.Errorf("password must be at least %d characters long, contain an uppercase letter and one of %s: %w",
			MinPasswordLength, passwordSpecials, apperr.ErrValidation)
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match: %w", apperr.ErrValidation)
	}
	return nil
}

// Telephone accepts an empty value or a +7 number with ten digits.
func Telephone(t string) error {
	if t == "" {
		return nil
	}
	if !telephoneRe.MatchString(t) {
		return fmt.Errorf("telephone must match +7XXXXXXXXXX: %w", apperr.ErrValidation)
	}
	return nil
}

func Email(e string) error {
	at := strings.IndexByte(e, '@')
	if at <= 0 || at == len(e)-1 || strings.ContainsAny(e, " \t\n") {
		return fmt.Errorf("invalid email: %w", apperr.ErrValidation)
	}
	return nil
}
