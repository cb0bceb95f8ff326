package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/gowallet/internal/adapter/http"
	"github.com/iho/gowallet/internal/adapter/http/handler"
	"github.com/iho/gowallet/internal/adapter/http/middleware"
	memoryRepo "github.com/iho/gowallet/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/gowallet/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/gowallet/internal/adapter/repository/redis"
	"github.com/iho/gowallet/internal/infrastructure/auth"
	"github.com/iho/gowallet/internal/infrastructure/config"
	"github.com/iho/gowallet/internal/infrastructure/eventpublisher"
	"github.com/iho/gowallet/internal/infrastructure/logger"
	"github.com/iho/gowallet/internal/infrastructure/metrics"
	"github.com/iho/gowallet/internal/infrastructure/postgres"
	"github.com/iho/gowallet/internal/infrastructure/redis"
	"github.com/iho/gowallet/internal/usecase"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: cfg.ServiceName,
	})
	log.Logger = appLogger
	zerolog.DefaultContextLogger = &appLogger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a, err := newApp(ctx, cfg, logger, reg)
	if err != nil {
		return err
	}
	defer a.Close()

	workers, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	go a.rateLimiter.RunCleanup(workers, time.Minute)
	if a.publisher != nil {
		go func() {
			if err := a.publisher.Start(workers); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("outbox publisher stopped")
			}
		}()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      a.handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().
			Str("port", cfg.HTTPPort).
			Str("driver", cfg.LedgerDriver).
			Str("version", version).
			Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info().Msg("server stopped")
	return nil
}

// app is the wired service: the HTTP handler plus the background workers and
// connections it owns.
type app struct {
	handler     http.Handler
	rateLimiter *middleware.RateLimiter
	publisher   *eventpublisher.EventPublisher
	closers     []func()
}

// Close releases connections in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

type ledgerStores struct {
	txManager       usecase.TxManager
	walletRepo      usecase.WalletRepository
	transactionRepo usecase.TransactionRepository
	outboxRepo      usecase.OutboxRepository
	ledgerRepo      usecase.LedgerRepository
	userRepo        usecase.UserRepository
}

func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger, reg *prometheus.Registry) (*app, error) {
	a := &app{}
	checks := map[string]handler.Pinger{}

	var stores ledgerStores
	switch cfg.LedgerDriver {
	case config.DriverMemory:
		store := memoryRepo.NewStore()
		stores = ledgerStores{
			txManager:       memoryRepo.NewTxManager(store),
			walletRepo:      memoryRepo.NewWalletRepository(store),
			transactionRepo: memoryRepo.NewTransactionRepository(store),
			outboxRepo:      postgresRepo.NewNullOutboxRepository(),
			ledgerRepo:      memoryRepo.NewLedgerRepository(store),
			userRepo:        memoryRepo.NewUserRepository(),
		}
		if cfg.OutboxEnabled {
			stores.outboxRepo = memoryRepo.NewOutboxRepository(store)
		}
		logger.Warn().Msg("using in-memory ledger store; data is lost on restart")

	default:
		pool, err := postgres.ConnectWithRetry(ctx, postgres.PoolConfig{
			DatabaseURL:    cfg.DatabaseURL,
			MaxConns:       cfg.DatabaseMaxConns,
			MinConns:       cfg.DatabaseMinConns,
			ConnectTimeout: cfg.DatabaseConnectTimeout,
		}, cfg.DatabaseConnectTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		logger.Info().Msg("connected to postgres")

		if cfg.RunMigrations {
			if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
				a.Close()
				return nil, fmt.Errorf("failed to run migrations: %w", err)
			}
			logger.Info().Str("path", cfg.MigrationsPath).Msg("migrations applied")
		}

		stores = ledgerStores{
			txManager:       postgresRepo.NewTxManager(pool),
			walletRepo:      postgresRepo.NewWalletRepository(pool),
			transactionRepo: postgresRepo.NewTransactionRepository(pool),
			outboxRepo:      postgresRepo.NewNullOutboxRepository(),
			ledgerRepo:      postgresRepo.NewLedgerRepository(pool),
			userRepo:        postgresRepo.NewUserRepository(pool),
		}
		if cfg.OutboxEnabled {
			stores.outboxRepo = postgresRepo.NewOutboxRepository(pool)
		}
		checks["database"] = pool.Ping
	}

	var (
		sessions    usecase.SessionStore
		idempotency usecase.IdempotencyStore
	)
	if cfg.RedisURL == "" {
		sessions = memoryRepo.NewSessionStore()
		idempotency = memoryRepo.NewIdempotencyStore()
		logger.Warn().Msg("REDIS_URL is empty; sessions and idempotency keys are kept in process")
	} else {
		client, err := redis.NewClientWithRetry(ctx, cfg.RedisURL, cfg.DatabaseConnectTimeout)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { client.Close() })
		logger.Info().Msg("connected to redis")

		sessions = redisRepo.NewSessionStore(client)
		idempotency = redisRepo.NewIdempotencyStore(client)
		checks["redis"] = redisPinger(client)
	}

	m := metrics.New(reg)
	idGen := postgresRepo.NewULIDGenerator()
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration, cfg.RefreshExpiration)

	walletUC := usecase.NewWalletUseCase(
		stores.txManager,
		stores.walletRepo,
		stores.transactionRepo,
		stores.outboxRepo,
		idGen,
	).WithMetrics(m).WithDefaultCurrency(cfg.DefaultCurrency)
	authUC := usecase.NewAuthUseCase(stores.userRepo, sessions, jwtManager, idGen)
	reconciliationUC := usecase.NewReconciliationUseCase(stores.ledgerRepo)

	a.rateLimiter = middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateBurst).
		OnReject(m.RateLimitHits.Inc)

	a.handler = httpAdapter.NewRouter(httpAdapter.RouterConfig{
		WalletHandler:    handler.NewWalletHandler(walletUC),
		AuthHandler:      handler.NewAuthHandler(authUC).WithRecorder(m),
		HealthHandler:    handler.NewHealthHandler(cfg.ServiceName, version, checks),
		LedgerHandler:    handler.NewLedgerHandler(reconciliationUC),
		Authenticator:    authUC,
		IdempotencyStore: idempotency,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		LoginRateLimiter: a.rateLimiter,
		Logger:           logger,
		Metrics:          m,
		MetricsHandler:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	})

	if cfg.OutboxEnabled {
		a.publisher = eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: stores.outboxRepo,
			Publisher:  eventpublisher.NewLogPublisher(logger),
			Recorder:   m,
			Logger:     logger,
			Interval:   cfg.OutboxInterval,
			Retention:  24 * time.Hour,
		})
	}

	return a, nil
}

func redisPinger(client *goredis.Client) handler.Pinger {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
