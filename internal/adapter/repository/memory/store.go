// Package memory provides process-local implementations of the ledger
// repositories. Wallet rows are locked for the lifetime of a transaction and
// writes become visible only on commit.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// ErrTxClosed is returned when a committed or rolled back transaction is used.
var ErrTxClosed = errors.New("memory: transaction already closed")

// Store holds all ledger state.
type Store struct {
	mu sync.RWMutex

	wallets      map[string]*domain.Wallet
	walletByUser map[string]string
	reserved     map[string]*reservation

	transactions map[string][]*domain.Transaction

	outbox []*domain.OutboxEvent

	locksMu sync.Mutex
	locks   map[string]chan struct{}
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		wallets:      make(map[string]*domain.Wallet),
		walletByUser: make(map[string]string),
		reserved:     make(map[string]*reservation),
		transactions: make(map[string][]*domain.Transaction),
		locks:        make(map[string]chan struct{}),
	}
}

// reservation marks a user id claimed by an uncommitted wallet insert.
type reservation struct {
	tx   *Tx
	done chan struct{}
}

func (s *Store) rowLock(walletID string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	l, ok := s.locks[walletID]
	if !ok {
		l = make(chan struct{}, 1)
		s.locks[walletID] = l
	}
	return l
}

// TxManager implements usecase.TxManager.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Tx{store: m.store, held: make(map[string]chan struct{})}, nil
}

// Tx stages writes and applies them atomically on Commit.
type Tx struct {
	store  *Store
	mu     sync.Mutex
	held   map[string]chan struct{}
	users  []string
	ops    []func(s *Store)
	closed bool
}

// Commit applies staged writes and releases row locks.
func (t *Tx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrTxClosed
	}
	if err := ctx.Err(); err != nil {
		t.release()
		return err
	}

	t.store.mu.Lock()
	for _, op := range t.ops {
		op(t.store)
	}
	t.store.mu.Unlock()

	t.release()
	return nil
}

// Rollback discards staged writes and releases row locks.
func (t *Tx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrTxClosed
	}
	t.release()
	return nil
}

func (t *Tx) release() {
	t.closed = true
	t.ops = nil

	if len(t.users) > 0 {
		t.store.mu.Lock()
		for _, userID := range t.users {
			if r := t.store.reserved[userID]; r != nil && r.tx == t {
				delete(t.store.reserved, userID)
				close(r.done)
			}
		}
		t.store.mu.Unlock()
	}

	t.users = nil

	for id, l := range t.held {
		<-l
		delete(t.held, id)
	}
}

func (t *Tx) stage(op func(s *Store)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrTxClosed
	}
	t.ops = append(t.ops, op)
	return nil
}

// lock acquires the wallet row lock, waiting until it is free or ctx ends.
func (t *Tx) lock(ctx context.Context, walletID string) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrTxClosed
	}
	if _, ok := t.held[walletID]; ok {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	l := t.store.rowLock(walletID)
	select {
	case l <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		<-l
		return ErrTxClosed
	}
	t.held[walletID] = l
	return nil
}

func asTx(tx usecase.Tx) (*Tx, error) {
	mt, ok := tx.(*Tx)
	if !ok {
		return nil, errors.New("memory: foreign transaction")
	}
	return mt, nil
}
