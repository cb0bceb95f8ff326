package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestValidateCurrency(t *testing.T) {
	t.Parallel()

	if err := ValidateCurrency("usd"); err != nil {
		t.Fatalf("expected uppercase conversion to succeed, got %v", err)
	}

	if err := ValidateCurrency("XYZ"); !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("expected ErrInvalidCurrency, got %v", err)
	}
}

func TestValidateAmount(t *testing.T) {
	t.Parallel()

	if err := ValidateAmount(decimal.RequireFromString("100.25")); err != nil {
		t.Fatalf("expected valid amount, got %v", err)
	}

	if err := ValidateAmount(decimal.RequireFromString("100.50000")); err != nil {
		t.Fatalf("expected trailing zeros to be accepted, got %v", err)
	}

	if err := ValidateAmount(decimal.Zero); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero, got %v", err)
	}

	if err := ValidateAmount(decimal.NewFromInt(-5)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for negative, got %v", err)
	}

	if err := ValidateAmount(decimal.RequireFromString("0.001")); !errors.Is(err, ErrAmountTooSmall) {
		t.Fatalf("expected ErrAmountTooSmall, got %v", err)
	}

	if err := ValidateAmount(decimal.RequireFromString("10.005")); !errors.Is(err, ErrAmountPrecision) {
		t.Fatalf("expected ErrAmountPrecision, got %v", err)
	}

	huge := decimal.RequireFromString(MaxOperationAmount).Add(decimal.NewFromInt(1))
	if err := ValidateAmount(huge); !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected ErrAmountTooLarge, got %v", err)
	}
}

func TestValidateAmount_ExtremeExponentsFailFast(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		json string
		want error
	}{
		{name: "huge positive exponent", json: `"1e100000000"`, want: ErrAmountTooLarge},
		{name: "huge negative exponent", json: `"1e-100000000"`, want: ErrAmountPrecision},
		{name: "thirteen integer digits above max", json: `"9999999999999"`, want: ErrAmountTooLarge},
		{name: "fourteen integer digits", json: `"10000000000000"`, want: ErrAmountTooLarge},
		{name: "scientific notation within range", json: `"1.5e2"`, want: nil},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var amount decimal.Decimal
			if err := amount.UnmarshalJSON([]byte(tc.json)); err != nil {
				t.Fatalf("unmarshal %s: %v", tc.json, err)
			}

			done := make(chan error, 1)
			go func() { done <- ValidateAmount(amount) }()

			select {
			case err := <-done:
				if tc.want == nil && err != nil {
					t.Fatalf("expected %s to be valid, got %v", tc.json, err)
				}
				if tc.want != nil && !errors.Is(err, tc.want) {
					t.Fatalf("expected %v for %s, got %v", tc.want, tc.json, err)
				}
			case <-time.After(time.Second):
				t.Fatalf("ValidateAmount(%s) did not return within 1s", tc.json)
			}
		})
	}
}

func TestNormalizeCurrency(t *testing.T) {
	t.Parallel()

	if got := NormalizeCurrency(" eur "); got != "EUR" {
		t.Fatalf("expected EUR, got %q", got)
	}
}

func TestNormalizeDescription(t *testing.T) {
	t.Parallel()

	got, err := NormalizeDescription("  ", TransactionTypeDeposit)
	if err != nil || got != DefaultDepositDescription {
		t.Fatalf("expected default deposit description, got %q (%v)", got, err)
	}

	got, err = NormalizeDescription("", TransactionTypeWithdrawal)
	if err != nil || got != DefaultWithdrawalDescription {
		t.Fatalf("expected default withdrawal description, got %q (%v)", got, err)
	}

	got, err = NormalizeDescription(" salary ", TransactionTypeDeposit)
	if err != nil || got != "salary" {
		t.Fatalf("expected trimmed description, got %q (%v)", got, err)
	}

	_, err = NormalizeDescription(strings.Repeat("x", MaxDescriptionLength+1), TransactionTypeDeposit)
	if !errors.Is(err, ErrInvalidDescription) {
		t.Fatalf("expected ErrInvalidDescription, got %v", err)
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	if err := ValidateEmail("USER@example.com"); err != nil {
		t.Fatalf("expected valid email, got %v", err)
	}

	if err := ValidateEmail("invalid-email"); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	if err := ValidatePassword("StrongPass1"); err != nil {
		t.Fatalf("expected valid password, got %v", err)
	}

	if err := ValidatePassword("short1A"); !errors.Is(err, ErrPasswordTooWeak) {
		t.Fatalf("expected ErrPasswordTooWeak for short password, got %v", err)
	}

	if err := ValidatePassword(strings.Repeat("A", MaxPasswordLength+1)); !errors.Is(err, ErrPasswordTooWeak) {
		t.Fatalf("expected ErrPasswordTooWeak for overly long password, got %v", err)
	}

	// 72 bytes is the most bcrypt will hash; multi-byte runes count per byte.
	if err := ValidatePassword("Aa1" + strings.Repeat("x", MaxPasswordLength-3)); err != nil {
		t.Fatalf("expected 72-byte password to be accepted, got %v", err)
	}
	if err := ValidatePassword("Aa1" + strings.Repeat("é", 35)); !errors.Is(err, ErrPasswordTooWeak) {
		t.Fatalf("expected ErrPasswordTooWeak for 73-byte password, got %v", err)
	}

	if err := ValidatePassword("alllowercase1"); !errors.Is(err, ErrPasswordTooWeak) {
		t.Fatalf("expected ErrPasswordTooWeak for missing upper case, got %v", err)
	}

	if err := ValidatePassword("NoDigitsHere"); !errors.Is(err, ErrPasswordTooWeak) {
		t.Fatalf("expected ErrPasswordTooWeak for missing digits, got %v", err)
	}
}

func TestValidateName(t *testing.T) {
	t.Parallel()

	if err := ValidateName("Ada"); err != nil {
		t.Fatalf("expected valid name, got %v", err)
	}
	if err := ValidateName(" "); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if err := ValidateName(strings.Repeat("n", MaxNameLength+1)); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	limit, offset := ValidatePagination(0, -10)
	if limit != 50 || offset != 0 {
		t.Fatalf("expected defaults (50, 0), got (%d, %d)", limit, offset)
	}

	limit, offset = ValidatePagination(5000, 20)
	if limit != 1000 || offset != 20 {
		t.Fatalf("expected clamped (1000, 20), got (%d, %d)", limit, offset)
	}
}

func TestIsValidationError(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("deposit: %w", ErrAmountTooSmall)
	if !IsValidationError(wrapped) {
		t.Fatal("expected wrapped ErrAmountTooSmall to be a validation error")
	}
	if IsValidationError(ErrInsufficientBalance) {
		t.Fatal("insufficient balance is not a validation error")
	}
	if IsValidationError(&StoreError{Op: "x", Err: errors.New("boom")}) {
		t.Fatal("store error is not a validation error")
	}
}
