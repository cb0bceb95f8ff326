package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := New(registry)

	if m.Deposits == nil || m.HTTPRequests == nil || m.OperationErrors == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.WalletCreated()

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestNewTwiceOnSeparateRegistries(t *testing.T) {
	New(prometheus.NewRegistry())
	New(prometheus.NewRegistry())
}

func TestWalletMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.OperationSucceeded(domain.TransactionTypeDeposit, decimal.NewFromInt(100), 10*time.Millisecond)
	m.OperationSucceeded(domain.TransactionTypeDeposit, decimal.NewFromInt(5), 10*time.Millisecond)
	m.OperationSucceeded(domain.TransactionTypeWithdrawal, decimal.NewFromInt(20), 10*time.Millisecond)
	m.OperationFailed(domain.TransactionTypeWithdrawal, "insufficient_balance")
	m.OperationFailed(domain.TransactionTypeDeposit, "store")
	m.WalletCreated()

	if got := testutil.ToFloat64(m.Deposits); got != 2 {
		t.Fatalf("expected 2 deposits, got %v", got)
	}
	if got := testutil.ToFloat64(m.Withdrawals); got != 1 {
		t.Fatalf("expected 1 withdrawal, got %v", got)
	}
	if got := testutil.ToFloat64(m.InsufficientBalance); got != 1 {
		t.Fatalf("expected 1 insufficient balance, got %v", got)
	}
	if got := testutil.ToFloat64(m.OperationErrors.WithLabelValues("deposit", "store")); got != 1 {
		t.Fatalf("expected 1 store error, got %v", got)
	}
	if got := testutil.ToFloat64(m.WalletsCreated); got != 1 {
		t.Fatalf("expected 1 wallet created, got %v", got)
	}
	if got := testutil.CollectAndCount(m.OperationDuration); got != 2 {
		t.Fatalf("expected duration series for both types, got %d", got)
	}
}

func TestAuthAndEventCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.AuthAttempt("login", true)
	m.AuthAttempt("login", false)
	m.AuthAttempt("login", false)
	m.EventPublished(domain.EventTypeWalletDeposited, true)

	if got := testutil.ToFloat64(m.AuthAttempts.WithLabelValues("login", "failure")); got != 2 {
		t.Fatalf("expected 2 failed logins, got %v", got)
	}
	if got := testutil.ToFloat64(m.EventsPublished.WithLabelValues(domain.EventTypeWalletDeposited, "published")); got != 1 {
		t.Fatalf("expected 1 published event, got %v", got)
	}
}
