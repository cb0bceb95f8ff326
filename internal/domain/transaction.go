package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a balance change.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
)

// IsValid reports whether t is a known transaction type.
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeDeposit || t == TransactionTypeWithdrawal
}

// TransactionStatusCompleted is the only status a transaction can have.
// There is no pending or failed lifecycle.
const TransactionStatusCompleted = "completed"

// Default descriptions used when the caller does not provide one.
const (
	DefaultDepositDescription    = "Deposit"
	DefaultWithdrawalDescription = "Withdrawal"
)

// Transaction is an immutable ledger record of one balance change.
type Transaction struct {
	CreatedAt     time.Time
	ID            string
	WalletID      string
	Type          TransactionType
	Description   string
	Status        string
	Amount        decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
}

// Validate checks the before/after snapshot against the amount.
func (t *Transaction) Validate() error {
	if !t.Type.IsValid() {
		return ErrInvalidTransactionType
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	var expected decimal.Decimal
	if t.Type == TransactionTypeDeposit {
		expected = t.BalanceBefore.Add(t.Amount)
	} else {
		expected = t.BalanceBefore.Sub(t.Amount)
	}
	if !expected.Equal(t.BalanceAfter) {
		return ErrBalanceSnapshotMismatch
	}

	return nil
}

// DefaultDescription returns the description stored when none is given.
func DefaultDescription(t TransactionType) string {
	if t == TransactionTypeWithdrawal {
		return DefaultWithdrawalDescription
	}
	return DefaultDepositDescription
}
