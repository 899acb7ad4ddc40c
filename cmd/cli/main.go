package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/bankstream/internal/domain"
	"github.com/iho/bankstream/internal/infrastructure/auth"
	"github.com/iho/bankstream/internal/infrastructure/config"
	"github.com/iho/bankstream/internal/infrastructure/postgres"
	"github.com/iho/bankstream/internal/taskqueue"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bankstream-cli",
		Short: "BankStream CLI tool",
		Long:  `A command line interface for operating the BankStream service.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the BankStream API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(wsCommand())
	rootCmd.AddCommand(tokenCommand())
	rootCmd.AddCommand(taskCommand())
	rootCmd.AddCommand(migrateCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func wsCommand() *cobra.Command {
	wsCmd := &cobra.Command{
		Use:   "ws",
		Short: "WebSocket operations",
	}

	wsCmd.AddCommand(&cobra.Command{
		Use:   "connections",
		Short: "Show live connection counts",
		Run: func(cmd *cobra.Command, args []string) {
			showConnections()
		},
	})

	return wsCmd
}

func showConnections() {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + "/ws/connections")
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var stats struct {
		TotalConnections int            `json:"total_connections"`
		PerUserCounts    map[string]int `json:"per_user_counts"`
		PublicCount      int            `json:"public_count"`
	}
	if err := json.Unmarshal(body, &stats); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Total connections: %d\n", stats.TotalConnections)
	fmt.Printf("Public connections: %d\n", stats.PublicCount)
	for userID, count := range stats.PerUserCounts {
		fmt.Printf("  %s: %d\n", userID, count)
	}
}

func tokenCommand() *cobra.Command {
	var email string

	tokenCmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Mint a JWT for a user",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load()
			if err != nil {
				fmt.Printf("Failed to load configuration: %v\n", err)
				os.Exit(1)
			}
			if cfg.JWTSecret == "" {
				fmt.Println("JWT_SECRET must be set")
				os.Exit(1)
			}

			manager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
			token, err := manager.Generate(&domain.Identity{UserID: args[0], Email: email})
			if err != nil {
				fmt.Printf("Failed to generate token: %v\n", err)
				os.Exit(1)
			}

			fmt.Println(token)
		},
	}

	tokenCmd.Flags().StringVar(&email, "email", "", "Email claim for the token")

	return tokenCmd
}

func taskCommand() *cobra.Command {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Enqueue background tasks",
	}

	var (
		year  int
		month int
	)

	reportCmd := &cobra.Command{
		Use:   "monthly-report <user-id>",
		Short: "Enqueue a monthly report task",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			now := time.Now().UTC()
			if year == 0 {
				year = now.Year()
			}
			if month == 0 {
				month = int(now.Month())
			}
			enqueueTask(taskqueue.NewSendMonthlyReport(args[0], year, time.Month(month)))
		},
	}
	reportCmd.Flags().IntVar(&year, "year", 0, "Report year (defaults to current)")
	reportCmd.Flags().IntVar(&month, "month", 0, "Report month (defaults to current)")

	var retentionDays int

	cleanupCmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Enqueue a retention sweep task",
		Run: func(cmd *cobra.Command, args []string) {
			enqueueTask(taskqueue.NewCleanupOldData(retentionDays))
		},
	}
	cleanupCmd.Flags().IntVar(&retentionDays, "retention-days", 0, "Override the retention window")

	taskCmd.AddCommand(reportCmd)
	taskCmd.AddCommand(cleanupCmd)

	return taskCmd
}

func enqueueTask(msg *taskqueue.TaskMessage) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	client, err := taskqueue.NewClient(cfg.AMQPURL, cfg.TaskExchangeName, cfg.TaskQueueName)
	if err != nil {
		fmt.Printf("Failed to connect to task queue: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Enqueue(ctx, msg); err != nil {
		fmt.Printf("Failed to enqueue task: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Enqueued %s (idempotency key %s)\n", msg.Task, msg.IdempotencyKey)
}

func migrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load()
			if err != nil {
				fmt.Printf("Failed to load configuration: %v\n", err)
				os.Exit(1)
			}
			if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
				fmt.Printf("Migration failed: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("Migrations applied")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load()
			if err != nil {
				fmt.Printf("Failed to load configuration: %v\n", err)
				os.Exit(1)
			}
			if err := postgres.RunMigrationsDown(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
				fmt.Printf("Rollback failed: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("Migration rolled back")
		},
	})

	return migrateCmd
}
