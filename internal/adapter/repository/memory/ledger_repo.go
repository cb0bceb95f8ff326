package memory

import (
	"context"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	store *Store
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

// WalletSummaries totals each wallet's history, ordered by wallet ID.
func (r *LedgerRepository) WalletSummaries(ctx context.Context, limit, offset int) ([]*usecase.WalletSummary, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	ids := page(r.store.sortedWalletIDs(), limit, offset)

	summaries := make([]*usecase.WalletSummary, 0, len(ids))
	for _, id := range ids {
		s := &usecase.WalletSummary{
			WalletID: id,
			Balance:  r.store.wallets[id].Balance,
		}
		for _, t := range r.store.transactions[id] {
			switch t.Type {
			case domain.TransactionTypeDeposit:
				s.TotalDeposits = s.TotalDeposits.Add(t.Amount)
			case domain.TransactionTypeWithdrawal:
				s.TotalWithdrawals = s.TotalWithdrawals.Add(t.Amount)
			}
			s.TransactionCount++
		}
		summaries = append(summaries, s)
	}

	return summaries, nil
}
