package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/infrastructure/postgres/generated"
	"github.com/iho/gowallet/internal/usecase"
)

// WalletRepository implements usecase.WalletRepository.
type WalletRepository struct {
	queries *generated.Queries
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(db generated.DBTX) *WalletRepository {
	return &WalletRepository{
		queries: generated.New(db),
	}
}

// Create inserts a wallet inside tx. The unique index on user_id makes a
// concurrent insert for the same user wait for the first and then fail.
func (r *WalletRepository) Create(ctx context.Context, tx usecase.Tx, wallet *domain.Wallet) error {
	queries := generated.New(tx.(*Tx).PgxTx())

	_, err := queries.CreateWallet(ctx, generated.CreateWalletParams{
		ID:        wallet.ID,
		UserID:    wallet.UserID,
		Balance:   decimalToNumeric(wallet.Balance),
		Currency:  wallet.Currency,
		Version:   wallet.Version,
		CreatedAt: timeToPgTimestamptz(wallet.CreatedAt),
		UpdatedAt: timeToPgTimestamptz(wallet.UpdatedAt),
	})
	if isUniqueViolation(err, constraintWalletsUserID) {
		return domain.ErrWalletAlreadyExists
	}

	return err
}

// GetByUserID retrieves the wallet owned by userID.
func (r *WalletRepository) GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error) {
	row, err := r.queries.GetWalletByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}

		return nil, err
	}

	return rowToWallet(row), nil
}

// GetByIDForUpdate retrieves a wallet by ID with a FOR UPDATE lock.
func (r *WalletRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Tx, id string) (*domain.Wallet, error) {
	queries := generated.New(tx.(*Tx).PgxTx())

	row, err := queries.GetWalletByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}

		return nil, err
	}

	return rowToWallet(row), nil
}

// UpdateBalance sets the balance and bumps the version.
func (r *WalletRepository) UpdateBalance(ctx context.Context, tx usecase.Tx, id string, balance decimal.Decimal, updatedAt time.Time) error {
	queries := generated.New(tx.(*Tx).PgxTx())

	err := queries.UpdateWalletBalance(ctx, generated.UpdateWalletBalanceParams{
		ID:        id,
		Balance:   decimalToNumeric(balance),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if isCheckViolation(err, constraintWalletsBalance) {
		return domain.ErrInsufficientBalance
	}

	return err
}

func rowToWallet(row generated.Wallet) *domain.Wallet {
	return &domain.Wallet{
		ID:        row.ID,
		UserID:    row.UserID,
		Currency:  row.Currency,
		Balance:   numericToDecimal(row.Balance),
		Version:   row.Version,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}
