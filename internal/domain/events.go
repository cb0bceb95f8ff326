package domain

import "time"

// Event types
const (
	EventTypeWalletCreated   = "wallet.created"
	EventTypeWalletDeposited = "wallet.deposited"
	EventTypeWalletWithdrawn = "wallet.withdrawn"
)

// Aggregate types
const (
	AggregateTypeWallet = "wallet"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// WalletCreatedEvent payload
type WalletCreatedEvent struct {
	WalletID string `json:"wallet_id"`
	UserID   string `json:"user_id"`
	Currency string `json:"currency"`
}

// WalletBalanceChangedEvent payload, used for deposits and withdrawals.
type WalletBalanceChangedEvent struct {
	WalletID      string `json:"wallet_id"`
	TransactionID string `json:"transaction_id"`
	Type          string `json:"type"`
	Amount        string `json:"amount"`
	BalanceBefore string `json:"balance_before"`
	BalanceAfter  string `json:"balance_after"`
	Currency      string `json:"currency"`
}

// EventTypeFor returns the outbox event type for a transaction type.
func EventTypeFor(t TransactionType) string {
	if t == TransactionTypeWithdrawal {
		return EventTypeWalletWithdrawn
	}
	return EventTypeWalletDeposited
}
