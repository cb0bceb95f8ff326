package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/adapter/http/dto"
	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

type walletServiceStub struct {
	getFn          func(ctx context.Context, userID string) (*domain.Wallet, error)
	depositFn      func(ctx context.Context, input usecase.DepositInput) (*usecase.WalletOperationResult, error)
	withdrawFn     func(ctx context.Context, input usecase.WithdrawInput) (*usecase.WalletOperationResult, error)
	transactionsFn func(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error)
}

func (s *walletServiceStub) GetWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	return s.getFn(ctx, userID)
}

func (s *walletServiceStub) Deposit(ctx context.Context, input usecase.DepositInput) (*usecase.WalletOperationResult, error) {
	return s.depositFn(ctx, input)
}

func (s *walletServiceStub) Withdraw(ctx context.Context, input usecase.WithdrawInput) (*usecase.WalletOperationResult, error) {
	return s.withdrawFn(ctx, input)
}

func (s *walletServiceStub) GetTransactions(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error) {
	return s.transactionsFn(ctx, input)
}

func operationResult(balance, amount string, txType domain.TransactionType) *usecase.WalletOperationResult {
	after := decimal.RequireFromString(balance)
	amt := decimal.RequireFromString(amount)
	before := after.Sub(amt)
	if txType == domain.TransactionTypeWithdrawal {
		before = after.Add(amt)
	}
	return &usecase.WalletOperationResult{
		Wallet: &domain.Wallet{ID: "wallet-1", UserID: "user-1", Currency: "USD", Balance: after},
		Transaction: &domain.Transaction{
			ID:            "tx-1",
			WalletID:      "wallet-1",
			Type:          txType,
			Amount:        amt,
			BalanceBefore: before,
			BalanceAfter:  after,
			Status:        domain.TransactionStatusCompleted,
		},
	}
}

func TestWalletHandler_Get(t *testing.T) {
	h := NewWalletHandler(&walletServiceStub{
		getFn: func(ctx context.Context, userID string) (*domain.Wallet, error) {
			if userID != "user-1" {
				t.Fatalf("expected user-1, got %s", userID)
			}
			return &domain.Wallet{ID: "wallet-1", UserID: userID, Currency: "USD", Balance: decimal.Zero}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.Get(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/wallet", nil), "user-1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.GetWalletResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Wallet.ID != "wallet-1" || resp.Wallet.Balance != "0.00" || resp.Wallet.Currency != "USD" {
		t.Fatalf("unexpected wallet: %+v", resp.Wallet)
	}
}

func TestWalletHandler_Get_RequiresUser(t *testing.T) {
	h := NewWalletHandler(&walletServiceStub{})

	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/api/wallet", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestWalletHandler_Deposit_Success(t *testing.T) {
	var captured usecase.DepositInput
	h := NewWalletHandler(&walletServiceStub{
		depositFn: func(ctx context.Context, input usecase.DepositInput) (*usecase.WalletOperationResult, error) {
			captured = input
			return operationResult("100.50", "100.50", domain.TransactionTypeDeposit), nil
		},
	})

	body := `{"amount":"100.50","description":"Initial deposit"}`
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/wallet/deposit", strings.NewReader(body)), "user-1")
	rec := httptest.NewRecorder()

	h.Deposit(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.UserID != "user-1" || !captured.Amount.Equal(decimal.RequireFromString("100.50")) || captured.Description != "Initial deposit" {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.OperationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Message != "Deposit successful" || resp.Wallet.Balance != "100.50" || resp.Transaction.ID != "tx-1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestWalletHandler_Deposit_InvalidAmount(t *testing.T) {
	h := NewWalletHandler(&walletServiceStub{
		depositFn: func(ctx context.Context, input usecase.DepositInput) (*usecase.WalletOperationResult, error) {
			return nil, domain.ErrInvalidAmount
		},
	})

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/wallet/deposit", strings.NewReader(`{"amount":"-5"}`)), "user-1")
	rec := httptest.NewRecorder()

	h.Deposit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := decodeError(t, rec).Error; got != "Invalid amount" {
		t.Fatalf("expected Invalid amount, got %q", got)
	}
}

func TestWalletHandler_Deposit_MalformedBody(t *testing.T) {
	called := false
	h := NewWalletHandler(&walletServiceStub{
		depositFn: func(ctx context.Context, input usecase.DepositInput) (*usecase.WalletOperationResult, error) {
			called = true
			return nil, nil
		},
	})

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/wallet/deposit", strings.NewReader(`{"amount":`)), "user-1")
	rec := httptest.NewRecorder()

	h.Deposit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if called {
		t.Fatal("use case must not run for a malformed body")
	}
}

func TestWalletHandler_Withdraw_InsufficientBalance(t *testing.T) {
	h := NewWalletHandler(&walletServiceStub{
		withdrawFn: func(ctx context.Context, input usecase.WithdrawInput) (*usecase.WalletOperationResult, error) {
			return nil, domain.ErrInsufficientBalance
		},
	})

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/wallet/withdraw", strings.NewReader(`{"amount":"50"}`)), "user-1")
	rec := httptest.NewRecorder()

	h.Withdraw(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := decodeError(t, rec).Error; got != "Insufficient balance" {
		t.Fatalf("expected Insufficient balance, got %q", got)
	}
}

func TestWalletHandler_Withdraw_Success(t *testing.T) {
	h := NewWalletHandler(&walletServiceStub{
		withdrawFn: func(ctx context.Context, input usecase.WithdrawInput) (*usecase.WalletOperationResult, error) {
			return operationResult("70.50", "30", domain.TransactionTypeWithdrawal), nil
		},
	})

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/wallet/withdraw", strings.NewReader(`{"amount":"30"}`)), "user-1")
	rec := httptest.NewRecorder()

	h.Withdraw(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.OperationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Message != "Withdrawal successful" || resp.Wallet.Balance != "70.50" || resp.Transaction.Amount != "30.00" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestWalletHandler_Withdraw_StoreFailure(t *testing.T) {
	h := NewWalletHandler(&walletServiceStub{
		withdrawFn: func(ctx context.Context, input usecase.WithdrawInput) (*usecase.WalletOperationResult, error) {
			return nil, domain.NewStoreError("lock wallet", errors.New("deadlock detected"))
		},
	})

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/wallet/withdraw", strings.NewReader(`{"amount":"1"}`)), "user-1")
	rec := httptest.NewRecorder()

	h.Withdraw(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if got := decodeError(t, rec).Error; got != "Withdrawal failed" {
		t.Fatalf("expected fallback message, got %q", got)
	}
}

func TestWalletHandler_Transactions(t *testing.T) {
	var captured usecase.ListTransactionsInput
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	h := NewWalletHandler(&walletServiceStub{
		transactionsFn: func(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error) {
			captured = input
			return []*domain.Transaction{
				{
					ID:            "tx-2",
					WalletID:      "wallet-1",
					Type:          domain.TransactionTypeWithdrawal,
					Amount:        decimal.RequireFromString("30"),
					BalanceBefore: decimal.RequireFromString("100.50"),
					BalanceAfter:  decimal.RequireFromString("70.50"),
					Description:   "Withdrawal",
					Status:        domain.TransactionStatusCompleted,
					CreatedAt:     created,
				},
			}, nil
		},
	})

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/wallet/transactions?limit=10&offset=5", nil), "user-1")
	rec := httptest.NewRecorder()

	h.Transactions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.UserID != "user-1" || captured.Limit != 10 || captured.Offset != 5 {
		t.Fatalf("unexpected input: %+v", captured)
	}

	var resp dto.ListTransactionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(resp.Transactions))
	}
	got := resp.Transactions[0]
	if got.Type != "withdrawal" || got.BalanceBefore != "100.50" || got.BalanceAfter != "70.50" || got.Status != "completed" {
		t.Fatalf("unexpected transaction: %+v", got)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("expected createdAt %v, got %v", created, got.CreatedAt)
	}
}

func TestWalletHandler_Transactions_EmptyListIsArray(t *testing.T) {
	h := NewWalletHandler(&walletServiceStub{
		transactionsFn: func(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error) {
			if input.Limit != 0 || input.Offset != 0 {
				t.Fatalf("expected zero paging defaults, got %+v", input)
			}
			return nil, nil
		},
	})

	rec := httptest.NewRecorder()
	h.Transactions(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/wallet/transactions", nil), "user-1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"transactions":[]`) {
		t.Fatalf("expected empty array, got %s", rec.Body.String())
	}
}
