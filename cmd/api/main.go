package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nyashahama/scas-screening-backend/internal/api"
	"github.com/nyashahama/scas-screening-backend/internal/auth"
	"github.com/nyashahama/scas-screening-backend/internal/bootstrap"
	"github.com/nyashahama/scas-screening-backend/internal/cache"
	"github.com/nyashahama/scas-screening-backend/internal/classifier"
	"github.com/nyashahama/scas-screening-backend/internal/config"
	"github.com/nyashahama/scas-screening-backend/internal/email"
	"github.com/nyashahama/scas-screening-backend/internal/events"
	"github.com/nyashahama/scas-screening-backend/internal/rpc"
	"github.com/nyashahama/scas-screening-backend/internal/scoring"
	"github.com/nyashahama/scas-screening-backend/internal/screening"
	"github.com/nyashahama/scas-screening-backend/internal/store"
	"github.com/nyashahama/scas-screening-backend/internal/worker"
)

func main() {
	// ── Logger ────────────────────────────────────────────────────────────────
	// JSON in production, pretty text in development.
	logger := bootstrap.NewLogger(os.Getenv("ENV"))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// Root context cancelled by OS signal. Every background loop respects it.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Config ────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Info("config loaded", "env", cfg.Env, "port", cfg.Port)

	// ── Database ──────────────────────────────────────────────────────────────
	pool, queries, err := bootstrap.OpenDB(ctx, cfg.DatabaseURL, cfg.AutoMigrate)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()
	logger.Info("database connected", "auto_migrate", cfg.AutoMigrate)

	// ── Store + seed ──────────────────────────────────────────────────────────
	st := store.New(pool, queries)
	q, err := bootstrap.Seed(ctx, st, cfg, logger)
	if err != nil {
		return err
	}
	items := store.NewQuestionnaireLoader(st, scoring.SCASCode)
	items.Prime(q)

	// ── Classifier ────────────────────────────────────────────────────────────
	artifacts, err := bootstrap.ArtifactStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("artifact store: %w", err)
	}
	model := classifier.New(artifacts, logger)
	trainer := classifier.NewTrainer(st, artifacts, q.ID, cfg.ModelMinSamples)
	logger.Info("classifier ready", "artifact", artifacts.Location(), "min_samples", trainer.MinSamples())

	// ── Retraining worker ─────────────────────────────────────────────────────
	runner := worker.NewRunner(worker.NewJob(trainer, model, st, logger), worker.RunnerConfig{
		Interval:     cfg.RetrainInterval,
		RetrainEvery: cfg.RetrainEvery,
		JobTimeout:   cfg.TrainTimeout,
		MaxRetries:   cfg.MaxRetries,
	}, logger)

	// ── Cache (Redis) ─────────────────────────────────────────────────────────
	statsCache := cache.NewNoopCache()
	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer rdb.Close()
		statsCache = cache.NewRedisCache(rdb, "scas:", cfg.StatsCacheTTL)
		logger.Info("redis cache enabled", "ttl", cfg.StatsCacheTTL)
	}

	// ── Email (Resend) ────────────────────────────────────────────────────────
	mailer := email.NewNoopSender()
	if cfg.AlertsEnabled() {
		mailer = email.NewResendClient(cfg.ResendAPIKey, cfg.EmailFromAddr, cfg.EmailFromName, cfg.PublicBaseURL)
		logger.Info("high-level alerts enabled", "to", cfg.AlertEmail)
	}
	alerts := email.NewAlertObserver(mailer, queries, cfg.AlertEmail, q.MaxTotal(), logger)

	// ── Events (Kafka, SQS) ───────────────────────────────────────────────────
	publisher, err := newPublisher(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("events: %w", err)
	}
	dispatcher := events.NewDispatcher(publisher, 0, logger)

	// ── Screening pipeline ────────────────────────────────────────────────────
	screener := screening.NewService(items, queries, st, model, logger,
		screening.WithDuplicateWindow(cfg.DuplicateWindow),
		screening.WithObserver(cache.NewInvalidator(statsCache, logger)),
		screening.WithObserver(runner),
		screening.WithObserver(alerts),
		screening.WithObserver(dispatcher),
	)

	// ── HTTP + gRPC on one port ───────────────────────────────────────────────
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	handler := api.NewServer(api.Deps{
		Querier:   queries,
		Records:   st,
		Accounts:  auth.NewService(st, issuer),
		Items:     items,
		Screener:  screener,
		Model:     model,
		Retrainer: runner,
		Cache:     statsCache,
		DB:        pool,
	}, api.Config{Env: cfg.Env}, logger)

	srv := rpc.NewServer(handler, screener, issuer, pool, rpc.Config{
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}, logger)

	lis, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	go runner.Start(ctx)

	// The dispatcher outlives the signal so events from requests that finish
	// during srv.Shutdown are still published. It is stopped explicitly below.
	eventsCtx, stopEvents := context.WithCancel(context.Background())
	defer stopEvents()
	go dispatcher.Run(eventsCtx)

	serverErr := make(chan error, 1)
	go func() { serverErr <- srv.Serve(ctx, lis) }()

	// Block until either a signal arrives or the server dies unexpectedly.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	// Give in-flight requests up to 20 seconds to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if err := alerts.Wait(shutdownCtx); err != nil {
		logger.Warn("pending alerts abandoned", "error", err)
	}
	stopEvents()
	select {
	case <-dispatcher.Done():
	case <-shutdownCtx.Done():
		logger.Warn("event dispatcher did not drain in time")
	}

	logger.Info("shutdown complete")
	return nil
}

// newPublisher fans events out to every configured sink. With none
// configured events are discarded.
func newPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (events.Publisher, error) {
	var sinks events.Fanout
	if len(cfg.KafkaBrokers) > 0 {
		sinks = append(sinks, events.NewKafkaPublisher(events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic)))
		logger.Info("events: kafka enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}
	if cfg.EventsSQSQueueURL != "" {
		client, err := events.NewSQSClient(ctx)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, events.NewSQSPublisher(client, cfg.EventsSQSQueueURL))
		logger.Info("events: sqs enabled", "queue", cfg.EventsSQSQueueURL)
	}
	if len(sinks) == 0 {
		return events.NewNoopPublisher(), nil
	}
	return sinks, nil
}
