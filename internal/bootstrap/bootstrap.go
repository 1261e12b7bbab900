// Package bootstrap holds the startup steps shared by the API server and
// the scasctl tool.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/lib/pq" // postgres driver

	"github.com/nyashahama/scas-screening-backend/internal/auth"
	"github.com/nyashahama/scas-screening-backend/internal/classifier"
	"github.com/nyashahama/scas-screening-backend/internal/config"
	"github.com/nyashahama/scas-screening-backend/internal/db"
	"github.com/nyashahama/scas-screening-backend/internal/scoring"
	"github.com/nyashahama/scas-screening-backend/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// NewLogger returns a JSON logger in production and a debug-level text
// logger everywhere else.
func NewLogger(env string) *slog.Logger {
	if env == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// OpenDB opens the connection pool, optionally applies the embedded schema,
// and prepares every statement. Preparing validates the SQL against the live
// schema, so a mismatch stops startup instead of failing the first request.
func OpenDB(ctx context.Context, dsn string, migrate bool) (*sql.DB, *db.Queries, error) {
	pool, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open: %w", err)
	}

	pool.SetMaxOpenConns(25)
	pool.SetMaxIdleConns(10)
	pool.SetConnMaxLifetime(5 * time.Minute)
	pool.SetConnMaxIdleTime(2 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}

	if migrate {
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
	}

	queries, err := db.Prepare(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("prepare statements: %w", err)
	}

	return pool, queries, nil
}

// Seed inserts the SCAS questionnaire and the bootstrap administrator. Both
// steps are idempotent. The admin is skipped when no password is configured.
func Seed(ctx context.Context, st *store.Store, cfg *config.Config, logger *slog.Logger) (scoring.Questionnaire, error) {
	q, err := st.EnsureQuestionnaire(ctx)
	if err != nil {
		return scoring.Questionnaire{}, fmt.Errorf("seed questionnaire: %w", err)
	}
	logger.Info("questionnaire ready", "code", q.Code, "items", q.Len(), "max_total", q.MaxTotal())

	if cfg.AdminPassword == "" {
		logger.Warn("ADMIN_PASSWORD not set; admin account not seeded")
		return q, nil
	}

	hash, err := auth.HashPassword(cfg.AdminPassword, bcrypt.DefaultCost)
	if err != nil {
		return scoring.Questionnaire{}, err
	}
	u, created, err := st.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, hash)
	if err != nil {
		return scoring.Questionnaire{}, fmt.Errorf("seed admin: %w", err)
	}
	if created {
		logger.Info("admin account created", "email", u.Email)
	}
	return q, nil
}

// ArtifactStore returns the S3 store when a bucket is configured and the
// local file store otherwise.
func ArtifactStore(ctx context.Context, cfg *config.Config) (classifier.ArtifactStore, error) {
	if cfg.ModelS3Bucket == "" {
		return classifier.NewFileStore(cfg.ModelPath), nil
	}
	client, err := classifier.NewS3Client(ctx)
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}
	return classifier.NewS3Store(client, cfg.ModelS3Bucket, cfg.ModelS3Key), nil
}
