package domain

import (
	"errors"
	"fmt"
)

var (
	// Wallet errors
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrWalletAlreadyExists = errors.New("wallet already exists for user")
	ErrInsufficientBalance = errors.New("insufficient balance")

	// Transaction errors
	ErrInvalidAmount           = errors.New("amount must be positive")
	ErrInvalidTransactionType  = errors.New("invalid transaction type")
	ErrBalanceSnapshotMismatch = errors.New("balance after does not match balance before and amount")
)

// StoreError wraps a failure of the underlying ledger store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err unless it is nil or already a domain error that
// callers are expected to branch on.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrWalletNotFound) ||
		errors.Is(err, ErrWalletAlreadyExists) {
		return err
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// IsStoreError reports whether err originated in the ledger store.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
