package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
)

// WalletRepository defines data access for wallets.
type WalletRepository interface {
	// Create inserts a new wallet. It returns domain.ErrWalletAlreadyExists
	// when the user already owns one.
	Create(ctx context.Context, tx Tx, wallet *domain.Wallet) error
	GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error)
	// GetByIDForUpdate reads the wallet and holds its row lock until tx ends.
	GetByIDForUpdate(ctx context.Context, tx Tx, id string) (*domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx Tx, id string, balance decimal.Decimal, updatedAt time.Time) error
}

// TransactionRepository defines data access for wallet transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx Tx, transaction *domain.Transaction) error
	// ListByWallet returns transactions newest first.
	ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*domain.Transaction, error)
}

// WalletSummary compares a wallet's stored balance with its transaction history.
type WalletSummary struct {
	WalletID         string
	Balance          decimal.Decimal
	TotalDeposits    decimal.Decimal
	TotalWithdrawals decimal.Decimal
	TransactionCount int64
}

// LedgerRepository defines data access for ledger-wide checks.
type LedgerRepository interface {
	WalletSummaries(ctx context.Context, limit, offset int) ([]*WalletSummary, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Tx, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// UserRepository defines data access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// SessionStore persists sessions keyed by access token.
type SessionStore interface {
	Save(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
}

// TokenPair is an issued access and refresh token.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// TokenIssuer issues and verifies signed tokens.
type TokenIssuer interface {
	Issue(userID string) (*TokenPair, error)
	// Verify checks an access token and returns its user id.
	Verify(token string) (string, error)
	// VerifyRefresh checks a refresh token and returns its user id.
	VerifyRefresh(token string) (string, error)
}

// Tx represents a database transaction.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TxManager handles transaction lifecycle.
type TxManager interface {
	Begin(ctx context.Context) (Tx, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Delete releases a key whose request did not complete.
	Delete(ctx context.Context, key string) error
}

// WalletMetrics records wallet operation outcomes.
type WalletMetrics interface {
	WalletCreated()
	OperationSucceeded(txType domain.TransactionType, amount decimal.Decimal, duration time.Duration)
	OperationFailed(txType domain.TransactionType, reason string)
}
