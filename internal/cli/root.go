package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"social-leaderboard/backend-api/internal/api/gateway"
	"social-leaderboard/backend-api/internal/db"
	"social-leaderboard/backend-api/internal/metrics"
	"social-leaderboard/backend-api/internal/services/auth"
	"social-leaderboard/backend-api/pkg/config"
	"social-leaderboard/backend-api/pkg/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// NewRootCommand creates the root command. Running it without a subcommand
// starts the API server.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "server",
		Short:         "Social leaderboard API server",
		Long:          "Serves per-account leaderboard sync sessions and taunts over HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newTokenCommand())

	return cmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	cmd.AddCommand(
		migrationCommand("up", "Run pending migrations", db.RunMigrations),
		migrationCommand("down", "Rollback the last migration", db.Rollback),
		migrationCommand("status", "Show migration status", db.Status),
	)
	return cmd
}

func migrationCommand(name, short string, fn func(*sql.DB) error) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer conn.Close()
			return fn(conn)
		},
	}
}

func newTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "token <account-id>",
		Short: "Issue an access token for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid account id %q: %w", args[0], err)
			}
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logger, err := logging.NewLogger()
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer logger.Sync()

			token, err := auth.NewAuthService(*cfg, logger).GenerateAccessToken(accountID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}

func runServe() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.Database)
	if err != nil {
		logger.Error("Failed to open database", zap.Error(err))
		return err
	}
	defer dbConn.Close()

	if err := db.RunMigrations(dbConn); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	gw := gateway.NewAPIGateway(*cfg, logger, dbConn, metrics.New())

	errCh := make(chan error, 1)
	go func() {
		errCh <- gw.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Gateway failed", zap.Error(err))
			return err
		}
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := gw.Shutdown(ctx); err != nil {
		logger.Error("Gateway shutdown failed", zap.Error(err))
	}
	logger.Info("Server stopped")
	return nil
}
