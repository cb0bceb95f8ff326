package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidCurrency    = errors.New("invalid currency code")
	ErrAmountTooLarge     = errors.New("amount exceeds maximum allowed")
	ErrAmountTooSmall     = errors.New("amount below minimum allowed")
	ErrAmountPrecision    = errors.New("amount has too many decimal places")
	ErrInvalidDescription = errors.New("invalid description")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrPasswordTooWeak    = errors.New("password does not meet requirements")
	ErrInvalidName        = errors.New("invalid name")
)

// Validation constants
const (
	MaxDescriptionLength = 255
	MaxNameLength        = 100
	MaxOperationAmount   = "1000000000000" // 1 trillion
	MinOperationAmount   = "0.01"
	AmountScale          = 2
	MinPasswordLength    = 8
	MaxPasswordLength    = 72 // bcrypt input limit, in bytes

	// maxAmountIntegerDigits bounds the digits left of the decimal point
	// (MaxOperationAmount has 13).
	maxAmountIntegerDigits = 13
	// maxAmountFractionDigits bounds the exponent accepted for amounts
	// written with trailing zeros such as "1.500".
	maxAmountFractionDigits = 18
)

// Valid currency codes (ISO 4217)
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CNY": true, "AUD": true, "CAD": true, "CHF": true,
	"SEK": true, "NZD": true, "KRW": true, "SGD": true,
	"NOK": true, "MXN": true, "INR": true, "BRL": true,
	"ZAR": true, "RUB": true, "TRY": true, "HKD": true,
}

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	upperRegex = regexp.MustCompile(`[A-Z]`)
	lowerRegex = regexp.MustCompile(`[a-z]`)
	digitRegex = regexp.MustCompile(`[0-9]`)
)

var validationErrors = []error{
	ErrInvalidAmount,
	ErrInvalidCurrency,
	ErrAmountTooLarge,
	ErrAmountTooSmall,
	ErrAmountPrecision,
	ErrInvalidDescription,
	ErrInvalidEmail,
	ErrPasswordTooWeak,
	ErrInvalidName,
}

// IsValidationError reports whether err is a client input error.
func IsValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// NormalizeCurrency upper-cases a currency code and trims surrounding space.
func NormalizeCurrency(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}

// ValidateCurrency validates currency code
func ValidateCurrency(currency string) error {
	currency = NormalizeCurrency(currency)

	if !validCurrencies[currency] {
		return fmt.Errorf("%w: %s is not a valid ISO 4217 currency code", ErrInvalidCurrency, currency)
	}

	return nil
}

// ValidateAmount validates a deposit or withdrawal amount.
//
// Comparisons on decimal.Decimal rescale both operands to a common exponent,
// so the magnitude is bounded from the coefficient and exponent first.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	exp := int64(amount.Exponent())
	if int64(amount.NumDigits())+exp > maxAmountIntegerDigits {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxOperationAmount)
	}
	if exp < -maxAmountFractionDigits {
		return fmt.Errorf("%w: at most %d decimal places", ErrAmountPrecision, AmountScale)
	}

	minAmount := decimal.RequireFromString(MinOperationAmount)
	if amount.LessThan(minAmount) {
		return fmt.Errorf("%w: minimum amount is %s", ErrAmountTooSmall, MinOperationAmount)
	}

	if !amount.Equal(amount.Truncate(AmountScale)) {
		return fmt.Errorf("%w: at most %d decimal places", ErrAmountPrecision, AmountScale)
	}

	maxAmount := decimal.RequireFromString(MaxOperationAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxOperationAmount)
	}

	return nil
}

// NormalizeDescription trims the description and falls back to the default
// for the transaction type.
func NormalizeDescription(description string, txType TransactionType) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return DefaultDescription(txType), nil
	}

	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return "", fmt.Errorf("%w: exceeds %d characters", ErrInvalidDescription, MaxDescriptionLength)
	}

	return description, nil
}

// ValidateEmail validates email format
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}

	return nil
}

// ValidatePassword validates password strength. Lengths are in bytes.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrPasswordTooWeak, MinPasswordLength)
	}

	if len(password) > MaxPasswordLength {
		return fmt.Errorf("%w: must not exceed %d characters", ErrPasswordTooWeak, MaxPasswordLength)
	}

	if !upperRegex.MatchString(password) || !lowerRegex.MatchString(password) || !digitRegex.MatchString(password) {
		return fmt.Errorf("%w: must contain uppercase, lowercase, and numbers", ErrPasswordTooWeak)
	}

	return nil
}

// ValidateName checks a first or last name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: cannot be empty", ErrInvalidName)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidName, MaxNameLength)
	}
	return nil
}

// ValidatePagination clamps pagination parameters to the allowed range.
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
