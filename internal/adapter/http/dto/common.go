package dto

import (
	"time"

	"github.com/iho/gowallet/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// MessageResponse carries a bare confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// DiscrepancyResponse describes a wallet whose balance does not match its history.
type DiscrepancyResponse struct {
	WalletID          string `json:"walletId"`
	RecordedBalance   string `json:"recordedBalance"`
	CalculatedBalance string `json:"calculatedBalance"`
	Difference        string `json:"difference"`
	TransactionCount  int64  `json:"transactionCount"`
}

// ConsistencyResponse is the body of the ledger consistency check.
type ConsistencyResponse struct {
	Status            string                `json:"status"`
	Consistent        bool                  `json:"consistent"`
	TotalWallets      int                   `json:"totalWallets"`
	ReconciledWallets int                   `json:"reconciledWallets"`
	Discrepancies     []DiscrepancyResponse `json:"discrepancies"`
	CheckedAt         time.Time             `json:"checkedAt"`
}

// ConsistencyFromReport converts a reconciliation report to a response.
func ConsistencyFromReport(report *usecase.ReconciliationReport) ConsistencyResponse {
	status := "consistent"
	if !report.LedgerConsistent {
		status = "inconsistent"
	}

	discrepancies := make([]DiscrepancyResponse, len(report.Discrepancies))
	for i, d := range report.Discrepancies {
		discrepancies[i] = DiscrepancyResponse{
			WalletID:          d.WalletID,
			RecordedBalance:   formatAmount(d.RecordedBalance),
			CalculatedBalance: formatAmount(d.CalculatedBalance),
			Difference:        formatAmount(d.Difference),
			TransactionCount:  d.TransactionCount,
		}
	}

	return ConsistencyResponse{
		Status:            status,
		Consistent:        report.LedgerConsistent,
		TotalWallets:      report.TotalWallets,
		ReconciledWallets: report.ReconciledWallets,
		Discrepancies:     discrepancies,
		CheckedAt:         report.CheckedAt,
	}
}
