package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// WalletRepository implements usecase.WalletRepository.
type WalletRepository struct {
	store *Store
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(store *Store) *WalletRepository {
	return &WalletRepository{store: store}
}

// Create stages a wallet insert. A concurrent insert for the same user waits
// for the first one to finish, like a unique index would.
func (r *WalletRepository) Create(ctx context.Context, tx usecase.Tx, wallet *domain.Wallet) error {
	mt, err := asTx(tx)
	if err != nil {
		return err
	}

	if err := r.reserve(ctx, mt, wallet.UserID); err != nil {
		return err
	}

	w := *wallet
	return mt.stage(func(s *Store) {
		s.wallets[w.ID] = &w
		s.walletByUser[w.UserID] = w.ID
	})
}

func (r *WalletRepository) reserve(ctx context.Context, mt *Tx, userID string) error {
	for {
		r.store.mu.Lock()
		if _, ok := r.store.walletByUser[userID]; ok {
			r.store.mu.Unlock()
			return domain.ErrWalletAlreadyExists
		}

		res, ok := r.store.reserved[userID]
		if !ok {
			r.store.reserved[userID] = &reservation{tx: mt, done: make(chan struct{})}
			r.store.mu.Unlock()

			mt.mu.Lock()
			mt.users = append(mt.users, userID)
			mt.mu.Unlock()
			return nil
		}
		r.store.mu.Unlock()

		if res.tx == mt {
			return domain.ErrWalletAlreadyExists
		}

		select {
		case <-res.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (r *WalletRepository) get(id string) (*domain.Wallet, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	w, ok := r.store.wallets[id]
	if !ok {
		return nil, domain.ErrWalletNotFound
	}
	c := *w
	return &c, nil
}

// GetByUserID retrieves the wallet owned by userID.
func (r *WalletRepository) GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.walletByUser[userID]
	if !ok {
		return nil, domain.ErrWalletNotFound
	}
	c := *r.store.wallets[id]
	return &c, nil
}

// GetByIDForUpdate locks the wallet for the rest of tx and returns it.
func (r *WalletRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Tx, id string) (*domain.Wallet, error) {
	mt, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	if err := mt.lock(ctx, id); err != nil {
		return nil, err
	}

	return r.get(id)
}

// UpdateBalance stages a balance change and bumps the wallet version.
func (r *WalletRepository) UpdateBalance(ctx context.Context, tx usecase.Tx, id string, balance decimal.Decimal, updatedAt time.Time) error {
	mt, err := asTx(tx)
	if err != nil {
		return err
	}

	if balance.IsNegative() {
		return domain.ErrInsufficientBalance
	}

	if _, err := r.get(id); err != nil {
		return err
	}

	return mt.stage(func(s *Store) {
		w := s.wallets[id]
		w.Balance = balance
		w.Version++
		w.UpdatedAt = updatedAt
	})
}

// sortedWalletIDs must be called with mu held.
func (s *Store) sortedWalletIDs() []string {
	ids := make([]string, 0, len(s.wallets))
	for id := range s.wallets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
