package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	postgresRepo "github.com/iho/bankstream/internal/adapter/repository/postgres"
	"github.com/iho/bankstream/internal/infrastructure/config"
	"github.com/iho/bankstream/internal/infrastructure/postgres"
	"github.com/iho/bankstream/internal/taskqueue"
)

// The worker drains the background task queue: compliance reviews for
// large transactions, monthly statements, and retention sweeps.
func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	taskClient, err := taskqueue.NewClient(cfg.AMQPURL, cfg.TaskExchangeName, cfg.TaskQueueName)
	if err != nil {
		slog.Error("failed to connect to task queue", "error", err)
		os.Exit(1)
	}
	defer taskClient.Close()

	txnRepo := postgresRepo.NewTransactionRepository(pool)

	handlers := map[string]taskqueue.Handler{
		taskqueue.TaskProcessLargeTransaction: processLargeTransaction(txnRepo),
		taskqueue.TaskSendMonthlyReport:       sendMonthlyReport(),
		taskqueue.TaskCleanupOldData:          cleanupOldData(txnRepo, cfg.RetentionDays),
	}

	slog.Info("worker started", "queue", cfg.TaskQueueName)

	if err := taskClient.Consume(ctx, handlers); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("consumer stopped", "error", err)
		os.Exit(1)
	}

	slog.Info("worker stopped")
}

// processLargeTransaction flags a committed transaction for compliance
// review. The amount in the message is the magnitude at commit time; the
// ledger record is the source of truth.
func processLargeTransaction(txnRepo *postgresRepo.TransactionRepository) taskqueue.Handler {
	return func(ctx context.Context, msg *taskqueue.TaskMessage) error {
		transactionID, ok := msg.Args["transaction_id"].(string)
		if !ok || transactionID == "" {
			// Malformed args never become processable; do not requeue.
			slog.Error("large-transaction task missing transaction_id", "args", msg.Args)
			return nil
		}

		txn, err := txnRepo.GetByID(ctx, transactionID)
		if err != nil {
			return fmt.Errorf("load transaction %s: %w", transactionID, err)
		}

		slog.Info("large transaction flagged for review",
			"transaction_id", txn.ID,
			"account_id", txn.AccountID,
			"kind", string(txn.Kind),
			"amount", txn.Amount.Abs().String(),
			"reference_number", txn.ReferenceNumber)

		return nil
	}
}

// sendMonthlyReport generates a user's monthly statement.
func sendMonthlyReport() taskqueue.Handler {
	return func(ctx context.Context, msg *taskqueue.TaskMessage) error {
		userID, _ := msg.Args["user_id"].(string)
		if userID == "" {
			slog.Error("monthly-report task missing user_id", "args", msg.Args)
			return nil
		}

		// JSON numbers decode as float64.
		year, _ := msg.Args["year"].(float64)
		month, _ := msg.Args["month"].(float64)

		slog.Info("monthly report generated",
			"user_id", userID,
			"period", fmt.Sprintf("%04d-%02d", int(year), int(month)))

		return nil
	}
}

// cleanupOldData deletes ledger records older than the retention window.
func cleanupOldData(txnRepo *postgresRepo.TransactionRepository, defaultRetentionDays int) taskqueue.Handler {
	return func(ctx context.Context, msg *taskqueue.TaskMessage) error {
		retentionDays := defaultRetentionDays
		if days, ok := msg.Args["retention_days"].(float64); ok && days > 0 {
			retentionDays = int(days)
		}

		cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

		deleted, err := txnRepo.DeleteBefore(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("delete transactions before %s: %w", cutoff.Format(time.RFC3339), err)
		}

		slog.Info("retention sweep finished",
			"cutoff", cutoff.Format(time.RFC3339),
			"deleted", deleted)

		return nil
	}
}
