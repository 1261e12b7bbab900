package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/nyashahama/scas-screening-backend/internal/bootstrap"
	"github.com/nyashahama/scas-screening-backend/internal/config"
	"github.com/nyashahama/scas-screening-backend/internal/db"
	"github.com/nyashahama/scas-screening-backend/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "scasctl",
	Short:         "Maintenance tool for the SCAS screening service",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("database-url", "", "Postgres DSN (overrides DATABASE_URL)")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(versionCmd)
}

// env bundles what every database-backed subcommand needs.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	pool   *sql.DB
	q      *db.Queries
	store  *store.Store
}

func (e *env) Close() {
	e.q.Close()
	e.pool.Close()
}

// openEnv loads config, applying the --database-url override, and connects.
// migrate controls whether the embedded schema is applied first.
func openEnv(ctx context.Context, cmd *cobra.Command, migrate bool) (*env, error) {
	if dsn, _ := cmd.Flags().GetString("database-url"); dsn != "" {
		if err := os.Setenv("DATABASE_URL", dsn); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger := bootstrap.NewLogger(cfg.Env)

	pool, queries, err := bootstrap.OpenDB(ctx, cfg.DatabaseURL, migrate)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	return &env{
		cfg:    cfg,
		logger: logger,
		pool:   pool,
		q:      queries,
		store:  store.New(pool, queries),
	}, nil
}
