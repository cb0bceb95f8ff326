package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/gowallet/internal/adapter/http/handler"
	"github.com/iho/gowallet/internal/adapter/http/middleware"
	"github.com/iho/gowallet/internal/infrastructure/metrics"
	"github.com/iho/gowallet/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	WalletHandler *handler.WalletHandler
	AuthHandler   *handler.AuthHandler
	HealthHandler *handler.HealthHandler
	LedgerHandler *handler.LedgerHandler

	Authenticator    middleware.Authenticator
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	LoginRateLimiter *middleware.RateLimiter

	Logger         zerolog.Logger
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	// Health endpoints
	r.Get("/", cfg.HealthHandler.Info)
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	requireAuth := middleware.AuthMiddleware(cfg.Authenticator)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Group(func(r chi.Router) {
			if cfg.LoginRateLimiter != nil {
				r.Use(cfg.LoginRateLimiter.Limit)
			}
			r.Post("/login", cfg.AuthHandler.Login)
			r.Post("/refresh", cfg.AuthHandler.Refresh)
		})
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/logout", cfg.AuthHandler.Logout)
			r.Get("/me", cfg.AuthHandler.Me)
		})
	})

	r.Route("/api/wallet", func(r chi.Router) {
		r.Use(requireAuth)
		// Keys are scoped per user, so this runs after authentication.
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL).Wrap)
		}

		r.Get("/", cfg.WalletHandler.Get)
		r.Post("/deposit", cfg.WalletHandler.Deposit)
		r.Post("/withdraw", cfg.WalletHandler.Withdraw)
		r.Get("/transactions", cfg.WalletHandler.Transactions)
	})

	r.Get("/internal/ledger/consistency", cfg.LedgerHandler.CheckConsistency)

	return r
}
