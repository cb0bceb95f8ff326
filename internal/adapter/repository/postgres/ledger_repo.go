package postgres

import (
	"context"

	"github.com/iho/gowallet/internal/infrastructure/postgres/generated"
	"github.com/iho/gowallet/internal/usecase"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// WalletSummaries totals each wallet's deposits and withdrawals.
func (r *LedgerRepository) WalletSummaries(ctx context.Context, limit, offset int) ([]*usecase.WalletSummary, error) {
	rows, err := r.queries.WalletSummaries(ctx, generated.WalletSummariesParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	summaries := make([]*usecase.WalletSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, &usecase.WalletSummary{
			WalletID:         row.WalletID,
			Balance:          numericToDecimal(row.Balance),
			TotalDeposits:    numericToDecimal(row.TotalDeposits),
			TotalWithdrawals: numericToDecimal(row.TotalWithdrawals),
			TransactionCount: row.TransactionCount,
		})
	}

	return summaries, nil
}
