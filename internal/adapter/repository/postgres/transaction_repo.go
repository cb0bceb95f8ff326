package postgres

import (
	"context"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/infrastructure/postgres/generated"
	"github.com/iho/gowallet/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	queries *generated.Queries
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db generated.DBTX) *TransactionRepository {
	return &TransactionRepository{
		queries: generated.New(db),
	}
}

// Create appends a transaction row inside tx.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Tx, transaction *domain.Transaction) error {
	queries := generated.New(tx.(*Tx).PgxTx())

	return queries.CreateTransaction(ctx, generated.CreateTransactionParams{
		ID:            transaction.ID,
		WalletID:      transaction.WalletID,
		Type:          string(transaction.Type),
		Amount:        decimalToNumeric(transaction.Amount),
		BalanceBefore: decimalToNumeric(transaction.BalanceBefore),
		BalanceAfter:  decimalToNumeric(transaction.BalanceAfter),
		Description:   transaction.Description,
		Status:        transaction.Status,
		CreatedAt:     timeToPgTimestamptz(transaction.CreatedAt),
	})
}

// ListByWallet lists a wallet's transactions by created_at then id, newest first.
func (r *TransactionRepository) ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*domain.Transaction, error) {
	rows, err := r.queries.ListTransactionsByWallet(ctx, generated.ListTransactionsByWalletParams{
		WalletID: walletID,
		Limit:    int32(limit),
		Offset:   int32(offset),
	})
	if err != nil {
		return nil, err
	}

	transactions := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		transactions = append(transactions, rowToTransaction(row))
	}

	return transactions, nil
}

func rowToTransaction(row generated.Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:            row.ID,
		WalletID:      row.WalletID,
		Type:          domain.TransactionType(row.Type),
		Amount:        numericToDecimal(row.Amount),
		BalanceBefore: numericToDecimal(row.BalanceBefore),
		BalanceAfter:  numericToDecimal(row.BalanceAfter),
		Description:   row.Description,
		Status:        row.Status,
		CreatedAt:     row.CreatedAt.Time,
	}
}
