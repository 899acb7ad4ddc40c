package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpAdapter "github.com/iho/bankstream/internal/adapter/http"
	"github.com/iho/bankstream/internal/adapter/http/handler"
	postgresRepo "github.com/iho/bankstream/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/bankstream/internal/adapter/repository/redis"
	"github.com/iho/bankstream/internal/infrastructure/auth"
	"github.com/iho/bankstream/internal/infrastructure/config"
	"github.com/iho/bankstream/internal/infrastructure/logger"
	"github.com/iho/bankstream/internal/infrastructure/metrics"
	"github.com/iho/bankstream/internal/infrastructure/postgres"
	"github.com/iho/bankstream/internal/infrastructure/redis"
	"github.com/iho/bankstream/internal/notification"
	"github.com/iho/bankstream/internal/realtime"
	"github.com/iho/bankstream/internal/taskqueue"
	"github.com/iho/bankstream/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	ctx := context.Background()

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Connect to the task queue broker
	taskClient, err := taskqueue.NewClient(cfg.AMQPURL, cfg.TaskExchangeName, cfg.TaskQueueName)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to task queue")
	}
	defer taskClient.Close()
	log.Info().Msg("connected to task queue")

	m := metrics.New()
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)

	// Live subscriber registry and notification fan-out
	registry := realtime.NewRegistry(jwtManager, cfg.WSQueueSize, log)
	dispatcher := notification.NewDispatcher(
		realtime.NewSubscriberRegistry(registry),
		taskClient,
		cfg.LargeTransactionThreshold,
		log,
		m,
	)

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	txnRepo := postgresRepo.NewTransactionRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	refGen := postgresRepo.NewReferenceGenerator()
	retrier := postgresRepo.NewRetrier()

	// Initialize use cases
	accountUC := usecase.NewAccountUseCase(accountRepo, txnRepo, idGen)
	ledgerUC := usecase.NewLedgerUseCase(txManager, accountRepo, txnRepo, idGen, refGen, retrier, dispatcher)

	// Initialize handlers
	accountHandler := handler.NewAccountHandler(accountUC, m)
	transactionHandler := handler.NewTransactionHandler(ledgerUC, accountUC, m)
	wsHandler := handler.NewWSHandler(registry, m, log)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:     accountHandler,
		TransactionHandler: transactionHandler,
		WSHandler:          wsHandler,
		HealthHandler:      healthHandler,
		JWTManager:         jwtManager,
		IdempotencyStore:   idempotencyStore,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		Metrics:            m,
		Logger:             log,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown: stop accepting HTTP first, then evict live
	// WebSocket connections.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	registry.Close()

	log.Info().Msg("server stopped")
}
