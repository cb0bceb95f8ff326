package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
)

// WalletUseCase is the sole writer of wallet balances and the sole creator
// of wallet transactions.
type WalletUseCase struct {
	txManager       TxManager
	walletRepo      WalletRepository
	transactionRepo TransactionRepository
	outboxRepo      OutboxRepository
	idGen           IDGenerator
	metrics         WalletMetrics
	defaultCurrency string
	now             func() time.Time
}

// NewWalletUseCase creates a new WalletUseCase.
func NewWalletUseCase(
	txManager TxManager,
	walletRepo WalletRepository,
	transactionRepo TransactionRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
) *WalletUseCase {
	return &WalletUseCase{
		txManager:       txManager,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		outboxRepo:      outboxRepo,
		idGen:           idGen,
		metrics:         noopWalletMetrics{},
		defaultCurrency: domain.DefaultCurrency,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// WithMetrics sets the metrics sink.
func (uc *WalletUseCase) WithMetrics(m WalletMetrics) *WalletUseCase {
	if m != nil {
		uc.metrics = m
	}
	return uc
}

// WithDefaultCurrency sets the currency assigned to newly created wallets.
func (uc *WalletUseCase) WithDefaultCurrency(currency string) *WalletUseCase {
	if currency != "" {
		uc.defaultCurrency = currency
	}
	return uc
}

// DepositInput represents input for a deposit.
type DepositInput struct {
	UserID      string
	Description string
	Amount      decimal.Decimal
}

// WithdrawInput represents input for a withdrawal.
type WithdrawInput struct {
	UserID      string
	Description string
	Amount      decimal.Decimal
}

// WalletOperationResult is the wallet state after a deposit or withdrawal
// together with the transaction that recorded it.
type WalletOperationResult struct {
	Wallet      *domain.Wallet
	Transaction *domain.Transaction
}

// ListTransactionsInput represents input for listing wallet transactions.
type ListTransactionsInput struct {
	UserID string
	Limit  int
	Offset int
}

// GetWallet returns the user's wallet, creating it on first access.
func (uc *WalletUseCase) GetWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	return uc.GetOrCreateWallet(ctx, userID)
}

// GetOrCreateWallet fetches the wallet owned by userID or creates an empty one.
// Concurrent first calls for the same user produce exactly one wallet: the
// loser of the insert race re-reads the winner's row.
func (uc *WalletUseCase) GetOrCreateWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	wallet, err := uc.walletRepo.GetByUserID(ctx, userID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, domain.ErrWalletNotFound) {
		return nil, domain.NewStoreError("get wallet", err)
	}

	wallet, err = uc.createWallet(ctx, userID)
	if errors.Is(err, domain.ErrWalletAlreadyExists) {
		wallet, err = uc.walletRepo.GetByUserID(ctx, userID)
		if err != nil {
			return nil, domain.NewStoreError("get wallet after create conflict", err)
		}
		return wallet, nil
	}
	if err != nil {
		return nil, err
	}

	uc.metrics.WalletCreated()
	zerolog.Ctx(ctx).Debug().
		Str("user_id", userID).
		Str("wallet_id", wallet.ID).
		Msg("wallet created")

	return wallet, nil
}

func (uc *WalletUseCase) createWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	now := uc.now()
	wallet := &domain.Wallet{
		ID:        uc.idGen.Generate(),
		UserID:    userID,
		Currency:  uc.defaultCurrency,
		Balance:   decimal.Zero,
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, domain.NewStoreError("begin", err)
	}
	defer tx.Rollback(ctx)

	if err := uc.walletRepo.Create(ctx, tx, wallet); err != nil {
		return nil, domain.NewStoreError("create wallet", err)
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   wallet.ID,
		AggregateType: domain.AggregateTypeWallet,
		EventType:     domain.EventTypeWalletCreated,
		Payload: map[string]any{
			"wallet_id": wallet.ID,
			"user_id":   wallet.UserID,
			"currency":  wallet.Currency,
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, domain.NewStoreError("create outbox event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.NewStoreError("commit", err)
	}

	return wallet, nil
}

// Deposit credits amount to the user's wallet.
func (uc *WalletUseCase) Deposit(ctx context.Context, input DepositInput) (*WalletOperationResult, error) {
	return uc.apply(ctx, domain.TransactionTypeDeposit, input.UserID, input.Amount, input.Description)
}

// Withdraw debits amount from the user's wallet. It fails with
// domain.ErrInsufficientBalance, leaving the wallet untouched, when the
// balance observed under the row lock cannot cover amount.
func (uc *WalletUseCase) Withdraw(ctx context.Context, input WithdrawInput) (*WalletOperationResult, error) {
	return uc.apply(ctx, domain.TransactionTypeWithdrawal, input.UserID, input.Amount, input.Description)
}

func (uc *WalletUseCase) apply(
	ctx context.Context,
	txType domain.TransactionType,
	userID string,
	amount decimal.Decimal,
	description string,
) (*WalletOperationResult, error) {
	start := time.Now()

	// 0. Validate inputs before touching the store. The amount is only
	// formatted once it is known to be bounded.
	if err := domain.ValidateAmount(amount); err != nil {
		uc.metrics.OperationFailed(txType, "validation")
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().
		Str("user_id", userID).
		Str("type", string(txType)).
		Str("amount", amount.String()).
		Logger()

	description, err := domain.NormalizeDescription(description, txType)
	if err != nil {
		uc.metrics.OperationFailed(txType, "validation")
		return nil, err
	}

	// 1. Resolve the wallet outside the balance transaction
	wallet, err := uc.GetOrCreateWallet(ctx, userID)
	if err != nil {
		uc.metrics.OperationFailed(txType, "store")
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	result, err := uc.applyLocked(ctx, wallet.ID, txType, amount, description)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientBalance):
			uc.metrics.OperationFailed(txType, "insufficient_balance")
			logger.Info().Msg("withdrawal rejected: insufficient balance")
		default:
			uc.metrics.OperationFailed(txType, "store")
			logger.Error().Err(err).Msg("wallet operation failed")
		}
		return nil, err
	}

	uc.metrics.OperationSucceeded(txType, amount, time.Since(start))
	logger.Debug().
		Str("wallet_id", result.Wallet.ID).
		Str("transaction_id", result.Transaction.ID).
		Str("balance", result.Wallet.Balance.StringFixed(domain.AmountScale)).
		Msg("wallet operation completed")

	return result, nil
}

// applyLocked performs the read-check-write under the wallet row lock. The
// balance update, the transaction row and the outbox event commit together
// or not at all.
func (uc *WalletUseCase) applyLocked(
	ctx context.Context,
	walletID string,
	txType domain.TransactionType,
	amount decimal.Decimal,
	description string,
) (*WalletOperationResult, error) {
	// 1. Begin transaction
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, domain.NewStoreError("begin", err)
	}
	defer tx.Rollback(ctx)

	// 2. Lock wallet row
	wallet, err := uc.walletRepo.GetByIDForUpdate(ctx, tx, walletID)
	if err != nil {
		return nil, domain.NewStoreError("lock wallet", err)
	}

	// 3. Check and compute the new balance while holding the lock
	var newBalance decimal.Decimal
	if txType == domain.TransactionTypeWithdrawal {
		if err := wallet.ValidateWithdrawal(amount); err != nil {
			return nil, err
		}
		newBalance = wallet.ApplyWithdrawal(amount)
	} else {
		newBalance = wallet.ApplyDeposit(amount)
	}

	now := uc.now()
	transaction := &domain.Transaction{
		ID:            uc.idGen.Generate(),
		WalletID:      wallet.ID,
		Type:          txType,
		Amount:        amount,
		BalanceBefore: wallet.Balance,
		BalanceAfter:  newBalance,
		Description:   description,
		Status:        domain.TransactionStatusCompleted,
		CreatedAt:     now,
	}
	if err := transaction.Validate(); err != nil {
		return nil, err
	}

	// 4. Write balance, then append the transaction
	if err := uc.walletRepo.UpdateBalance(ctx, tx, wallet.ID, newBalance, now); err != nil {
		return nil, domain.NewStoreError("update balance", err)
	}

	if err := uc.transactionRepo.Create(ctx, tx, transaction); err != nil {
		return nil, domain.NewStoreError("create transaction", err)
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   wallet.ID,
		AggregateType: domain.AggregateTypeWallet,
		EventType:     domain.EventTypeFor(txType),
		Payload: map[string]any{
			"wallet_id":      wallet.ID,
			"transaction_id": transaction.ID,
			"type":           string(txType),
			"amount":         amount.StringFixed(domain.AmountScale),
			"balance_before": transaction.BalanceBefore.StringFixed(domain.AmountScale),
			"balance_after":  transaction.BalanceAfter.StringFixed(domain.AmountScale),
			"currency":       wallet.Currency,
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, domain.NewStoreError("create outbox event", err)
	}

	// 5. Commit transaction
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.NewStoreError("commit", err)
	}

	wallet.Balance = newBalance
	wallet.Version++
	wallet.UpdatedAt = now

	return &WalletOperationResult{Wallet: wallet, Transaction: transaction}, nil
}

// GetTransactions lists the user's transactions newest first. The first
// call for a user without a wallet creates the wallet and returns nothing.
func (uc *WalletUseCase) GetTransactions(ctx context.Context, input ListTransactionsInput) ([]*domain.Transaction, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	wallet, err := uc.GetOrCreateWallet(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	transactions, err := uc.transactionRepo.ListByWallet(ctx, wallet.ID, limit, offset)
	if err != nil {
		return nil, domain.NewStoreError("list transactions", err)
	}

	return transactions, nil
}

type noopWalletMetrics struct{}

func (noopWalletMetrics) WalletCreated() {}

func (noopWalletMetrics) OperationSucceeded(domain.TransactionType, decimal.Decimal, time.Duration) {}

func (noopWalletMetrics) OperationFailed(domain.TransactionType, string) {}
