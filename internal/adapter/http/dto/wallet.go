package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// OperationRequest is the body of a deposit or withdrawal. Amount accepts a
// JSON number or a decimal string.
type OperationRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

// ToDepositInput converts to use case input.
func (r *OperationRequest) ToDepositInput(userID string) usecase.DepositInput {
	return usecase.DepositInput{
		UserID:      userID,
		Amount:      r.Amount,
		Description: r.Description,
	}
}

// ToWithdrawInput converts to use case input.
func (r *OperationRequest) ToWithdrawInput(userID string) usecase.WithdrawInput {
	return usecase.WithdrawInput{
		UserID:      userID,
		Amount:      r.Amount,
		Description: r.Description,
	}
}

// WalletResponse represents a wallet in API responses.
type WalletResponse struct {
	ID       string `json:"id"`
	Balance  string `json:"balance"`
	Currency string `json:"currency"`
}

// GetWalletResponse is the body of GET /api/wallet.
type GetWalletResponse struct {
	Wallet WalletResponse `json:"wallet"`
}

// WalletFromDomain converts a domain wallet to a response.
func WalletFromDomain(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		ID:       w.ID,
		Balance:  formatAmount(w.Balance),
		Currency: w.Currency,
	}
}

// BalanceResponse carries the balance after an operation.
type BalanceResponse struct {
	Balance string `json:"balance"`
}

// OperationTransaction identifies the transaction an operation recorded.
type OperationTransaction struct {
	ID     string `json:"id"`
	Amount string `json:"amount"`
}

// OperationResponse is the body of a successful deposit or withdrawal.
type OperationResponse struct {
	Message     string               `json:"message"`
	Wallet      BalanceResponse      `json:"wallet"`
	Transaction OperationTransaction `json:"transaction"`
}

// OperationFromResult converts a use case result to a response.
func OperationFromResult(message string, result *usecase.WalletOperationResult) OperationResponse {
	return OperationResponse{
		Message: message,
		Wallet:  BalanceResponse{Balance: formatAmount(result.Wallet.Balance)},
		Transaction: OperationTransaction{
			ID:     result.Transaction.ID,
			Amount: formatAmount(result.Transaction.Amount),
		},
	}
}

// TransactionResponse represents a wallet transaction in API responses.
type TransactionResponse struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Amount        string    `json:"amount"`
	BalanceBefore string    `json:"balanceBefore"`
	BalanceAfter  string    `json:"balanceAfter"`
	Description   string    `json:"description"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:            t.ID,
		Type:          string(t.Type),
		Amount:        formatAmount(t.Amount),
		BalanceBefore: formatAmount(t.BalanceBefore),
		BalanceAfter:  formatAmount(t.BalanceAfter),
		Description:   t.Description,
		Status:        t.Status,
		CreatedAt:     t.CreatedAt,
	}
}

// ListTransactionsResponse is the body of GET /api/wallet/transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}

// TransactionsFromDomain converts domain transactions to a list response.
func TransactionsFromDomain(transactions []*domain.Transaction) ListTransactionsResponse {
	result := make([]TransactionResponse, len(transactions))
	for i, t := range transactions {
		result[i] = TransactionFromDomain(t)
	}
	return ListTransactionsResponse{Transactions: result}
}

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(domain.AmountScale)
}
