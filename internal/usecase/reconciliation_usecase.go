package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ReconciliationUseCase checks stored wallet balances against their
// transaction history.
type ReconciliationUseCase struct {
	ledgerRepo LedgerRepository
	now        func() time.Time
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(ledgerRepo LedgerRepository) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		ledgerRepo: ledgerRepo,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ReconciliationResult represents the result of checking one wallet
type ReconciliationResult struct {
	WalletID          string
	RecordedBalance   decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	TransactionCount  int64
	IsReconciled      bool
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalWallets      int
	ReconciledWallets int
	Discrepancies     []*ReconciliationResult
	LedgerConsistent  bool
	CheckedAt         time.Time
}

// ReconcileSummary compares a wallet's balance with deposits minus
// withdrawals. A negative balance never reconciles.
func ReconcileSummary(s *WalletSummary) *ReconciliationResult {
	calculated := s.TotalDeposits.Sub(s.TotalWithdrawals)
	diff := s.Balance.Sub(calculated)

	return &ReconciliationResult{
		WalletID:          s.WalletID,
		RecordedBalance:   s.Balance,
		CalculatedBalance: calculated,
		Difference:        diff,
		TransactionCount:  s.TransactionCount,
		IsReconciled:      diff.IsZero() && !s.Balance.IsNegative(),
	}
}

// CheckConsistency walks every wallet and reports those whose balance does
// not match their transaction history.
func (uc *ReconciliationUseCase) CheckConsistency(ctx context.Context) (*ReconciliationReport, error) {
	report := &ReconciliationReport{
		Discrepancies: make([]*ReconciliationResult, 0),
		CheckedAt:     uc.now(),
	}

	for offset := 0; ; offset += ReconciliationPageSize {
		summaries, err := uc.ledgerRepo.WalletSummaries(ctx, ReconciliationPageSize, offset)
		if err != nil {
			return nil, err
		}

		for _, s := range summaries {
			result := ReconcileSummary(s)
			report.TotalWallets++
			if result.IsReconciled {
				report.ReconciledWallets++
			} else {
				report.Discrepancies = append(report.Discrepancies, result)
			}
		}

		if len(summaries) < ReconciliationPageSize {
			break
		}
	}

	report.LedgerConsistent = len(report.Discrepancies) == 0

	return report, nil
}
