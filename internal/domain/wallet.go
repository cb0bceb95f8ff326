package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is assigned to wallets created without an explicit currency.
const DefaultCurrency = "USD"

// Wallet holds the balance of a single user in one currency.
type Wallet struct {
	ID        string
	UserID    string
	Currency  string
	Balance   decimal.Decimal
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateWithdrawal checks that the wallet can cover amount.
func (w *Wallet) ValidateWithdrawal(amount decimal.Decimal) error {
	if w.Balance.Sub(amount).IsNegative() {
		return ErrInsufficientBalance
	}
	return nil
}

// ApplyDeposit returns the balance after crediting amount.
func (w *Wallet) ApplyDeposit(amount decimal.Decimal) decimal.Decimal {
	return w.Balance.Add(amount)
}

// ApplyWithdrawal returns the balance after debiting amount.
func (w *Wallet) ApplyWithdrawal(amount decimal.Decimal) decimal.Decimal {
	return w.Balance.Sub(amount)
}
