package handler

import (
	"context"
	"net/http"

	"github.com/iho/gowallet/internal/adapter/http/dto"
	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// WalletService defines the behavior needed by WalletHandler.
type WalletService interface {
	GetWallet(ctx context.Context, userID string) (*domain.Wallet, error)
	Deposit(ctx context.Context, input usecase.DepositInput) (*usecase.WalletOperationResult, error)
	Withdraw(ctx context.Context, input usecase.WithdrawInput) (*usecase.WalletOperationResult, error)
	GetTransactions(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error)
}

// WalletHandler handles wallet HTTP requests for the authenticated user.
type WalletHandler struct {
	walletUC WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletUC WalletService) *WalletHandler {
	return &WalletHandler{walletUC: walletUC}
}

// Get returns the caller's wallet, creating it on first access.
func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	wallet, err := h.walletUC.GetWallet(r.Context(), userID)
	if err != nil {
		writeDomainError(w, r, err, "Failed to get wallet")
		return
	}

	writeJSON(w, http.StatusOK, dto.GetWalletResponse{Wallet: dto.WalletFromDomain(wallet)})
}

// Deposit credits the caller's wallet.
func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.OperationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.walletUC.Deposit(r.Context(), req.ToDepositInput(userID))
	if err != nil {
		writeDomainError(w, r, err, "Deposit failed")
		return
	}

	writeJSON(w, http.StatusOK, dto.OperationFromResult("Deposit successful", result))
}

// Withdraw debits the caller's wallet.
func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.OperationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.walletUC.Withdraw(r.Context(), req.ToWithdrawInput(userID))
	if err != nil {
		writeDomainError(w, r, err, "Withdrawal failed")
		return
	}

	writeJSON(w, http.StatusOK, dto.OperationFromResult("Withdrawal successful", result))
}

// Transactions lists the caller's transactions, newest first.
func (h *WalletHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	transactions, err := h.walletUC.GetTransactions(r.Context(), usecase.ListTransactionsInput{
		UserID: userID,
		Limit:  parseIntQuery(r, "limit", 0),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, r, err, "Failed to get transactions")
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(transactions))
}
