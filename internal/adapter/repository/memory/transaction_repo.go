package memory

import (
	"context"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	store *Store
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(store *Store) *TransactionRepository {
	return &TransactionRepository{store: store}
}

// Create stages an append to the wallet's history.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Tx, transaction *domain.Transaction) error {
	mt, err := asTx(tx)
	if err != nil {
		return err
	}

	t := *transaction
	return mt.stage(func(s *Store) {
		s.transactions[t.WalletID] = append(s.transactions[t.WalletID], &t)
	})
}

// ListByWallet returns the wallet's transactions newest first. History is
// kept in commit order, which per wallet is the row lock order.
func (r *TransactionRepository) ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	history := r.store.transactions[walletID]
	newestFirst := make([]*domain.Transaction, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		c := *history[i]
		newestFirst = append(newestFirst, &c)
	}

	return page(newestFirst, limit, offset), nil
}
