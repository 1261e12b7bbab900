// Package worker retrains the model classifier in the background. It is
// decoupled from the HTTP layer: the api package holds a narrow interface
// with RunNow and never imports the concrete Runner or Job types.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nyashahama/scas-screening-backend/internal/classifier"
	"github.com/nyashahama/scas-screening-backend/internal/screening"
)

// ErrBusy is returned by RunNow when a training pass is already running.
var ErrBusy = errors.New("worker: training already in progress")

// ─── RUNNER ───────────────────────────────────────────────────────────────────

// RunnerConfig holds tuning parameters for the Runner. Zero fields take the
// values from DefaultRunnerConfig, except Interval and RetrainEvery where
// zero disables that trigger.
type RunnerConfig struct {
	// Interval retrains on a fixed schedule. Zero disables the ticker.
	Interval time.Duration

	// RetrainEvery queues a pass after this many accepted submissions.
	// Zero disables the count trigger.
	RetrainEvery int

	// JobTimeout is the per-attempt context deadline. Default: 2 minutes.
	JobTimeout time.Duration

	// MaxRetries is the number of attempts for a background pass. Default: 3.
	MaxRetries int
}

// DefaultRunnerConfig returns safe production defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Interval:     0,
		RetrainEvery: 0,
		JobTimeout:   2 * time.Minute,
		MaxRetries:   3,
	}
}

// Runner serializes training passes. Background passes arrive through a
// one-slot queue, so any number of triggers while a pass is pending collapse
// into one.
type Runner struct {
	job    *Job
	cfg    RunnerConfig
	logger *slog.Logger

	mu       sync.Mutex // held for the duration of a pass
	queue    chan struct{}
	accepted atomic.Int64
	wg       sync.WaitGroup
}

// NewRunner constructs a Runner. Call Start() to begin background processing.
func NewRunner(job *Job, cfg RunnerConfig, logger *slog.Logger) *Runner {
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = DefaultRunnerConfig().JobTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultRunnerConfig().MaxRetries
	}
	return &Runner{
		job:    job,
		cfg:    cfg,
		logger: logger,
		queue:  make(chan struct{}, 1),
	}
}

// Enqueue requests a background pass. It never blocks.
func (r *Runner) Enqueue() {
	select {
	case r.queue <- struct{}{}:
		r.logger.Info("worker: training enqueued")
	default:
		// A pass is already pending.
	}
}

// SubmissionAccepted implements screening.Observer: every RetrainEvery
// accepted submissions it enqueues a pass.
func (r *Runner) SubmissionAccepted(context.Context, screening.Result) {
	if r.cfg.RetrainEvery <= 0 {
		return
	}
	if r.accepted.Add(1)%int64(r.cfg.RetrainEvery) == 0 {
		r.Enqueue()
	}
}

// RunNow performs a pass synchronously for the admin endpoint. It fails fast
// with ErrBusy instead of waiting behind a running pass.
func (r *Runner) RunNow(ctx context.Context) (classifier.TrainResult, error) {
	if !r.mu.TryLock() {
		return classifier.TrainResult{}, ErrBusy
	}
	defer r.mu.Unlock()

	jobCtx, cancel := context.WithTimeout(ctx, r.cfg.JobTimeout)
	defer cancel()
	return r.job.Run(jobCtx)
}

// Start launches the background worker and, if configured, the ticker. It
// blocks until ctx is cancelled. Call it in a goroutine from main:
//
//	go runner.Start(ctx)
func (r *Runner) Start(ctx context.Context) {
	r.logger.Info("worker: starting",
		"interval", r.cfg.Interval,
		"retrain_every", r.cfg.RetrainEvery,
	)

	r.wg.Add(1)
	go r.work(ctx)

	if r.cfg.Interval > 0 {
		r.wg.Add(1)
		go r.tick(ctx)
	}

	r.wg.Wait()
	r.logger.Info("worker: stopped")
}

func (r *Runner) work(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.queue:
			r.runWithRetry(ctx)
		}
	}
}

func (r *Runner) tick(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Enqueue()
		}
	}
}

// runWithRetry executes the job up to MaxRetries times, backing off between
// attempts. A failed pass leaves the serving model unchanged.
func (r *Runner) runWithRetry(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxRetries; attempt++ {
		jobCtx, cancel := context.WithTimeout(ctx, r.cfg.JobTimeout)
		res, err := r.job.Run(jobCtx)
		cancel()

		if err == nil {
			r.logger.Info("worker: training completed",
				"attempt", attempt,
				"trained", res.Trained,
				"samples", res.Samples,
			)
			return
		}
		lastErr = err

		r.logger.Warn("worker: training attempt failed",
			"attempt", attempt,
			"max", r.cfg.MaxRetries,
			"error", err,
		)

		if attempt < r.cfg.MaxRetries {
			// Exponential back-off: 2s, 4s, 8s …
			backoff := time.Duration(1<<attempt) * time.Second
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
		}
	}

	r.logger.Error("worker: training permanently failed", "error", lastErr)
}
