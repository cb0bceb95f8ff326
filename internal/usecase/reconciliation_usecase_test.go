package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/gowallet/internal/usecase"
	"github.com/iho/gowallet/internal/usecase/mocks"
)

func summary(id, balance, deposits, withdrawals string) *usecase.WalletSummary {
	return &usecase.WalletSummary{
		WalletID:         id,
		Balance:          decimal.RequireFromString(balance),
		TotalDeposits:    decimal.RequireFromString(deposits),
		TotalWithdrawals: decimal.RequireFromString(withdrawals),
	}
}

func TestReconcileSummary(t *testing.T) {
	t.Parallel()

	ok := usecase.ReconcileSummary(summary("w-1", "60.00", "100.00", "40.00"))
	assert.True(t, ok.IsReconciled)
	assert.True(t, ok.Difference.IsZero())

	drift := usecase.ReconcileSummary(summary("w-2", "70.00", "100.00", "40.00"))
	assert.False(t, drift.IsReconciled)
	assert.Equal(t, "10.00", drift.Difference.StringFixed(2))

	negative := usecase.ReconcileSummary(summary("w-3", "-5", "0", "5"))
	assert.False(t, negative.IsReconciled)
}

func TestReconciliationUseCase_CheckConsistency(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockLedgerRepository(ctrl)

	firstPage := make([]*usecase.WalletSummary, 0, usecase.ReconciliationPageSize)
	for i := 0; i < usecase.ReconciliationPageSize; i++ {
		firstPage = append(firstPage, summary(fmt.Sprintf("w-%d", i), "1", "1", "0"))
	}

	gomock.InOrder(
		ledger.EXPECT().WalletSummaries(gomock.Any(), usecase.ReconciliationPageSize, 0).Return(firstPage, nil),
		ledger.EXPECT().WalletSummaries(gomock.Any(), usecase.ReconciliationPageSize, usecase.ReconciliationPageSize).
			Return([]*usecase.WalletSummary{summary("w-bad", "5", "1", "0")}, nil),
	)

	report, err := usecase.NewReconciliationUseCase(ledger).CheckConsistency(context.Background())
	require.NoError(t, err)
	assert.Equal(t, usecase.ReconciliationPageSize+1, report.TotalWallets)
	assert.Equal(t, usecase.ReconciliationPageSize, report.ReconciledWallets)
	assert.False(t, report.LedgerConsistent)
	require.Len(t, report.Discrepancies, 1)
	assert.Equal(t, "w-bad", report.Discrepancies[0].WalletID)
}

func TestReconciliationUseCase_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockLedgerRepository(ctrl)
	ledger.EXPECT().WalletSummaries(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))

	_, err := usecase.NewReconciliationUseCase(ledger).CheckConsistency(context.Background())
	assert.Error(t, err)
}
