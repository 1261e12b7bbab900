package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nyashahama/scas-screening-backend/internal/classifier"
	"github.com/nyashahama/scas-screening-backend/internal/db"
	"github.com/nyashahama/scas-screening-backend/internal/store"
)

// Trainer fits and saves a model. *classifier.Trainer satisfies it.
type Trainer interface {
	Train(ctx context.Context) (classifier.TrainResult, error)
}

// Installer swaps the serving model. *classifier.Classifier satisfies it.
type Installer interface {
	Install(m *classifier.Model)
}

// RunRecorder appends to the training_runs audit table. *store.Store
// satisfies it.
type RunRecorder interface {
	RecordTrainingRun(ctx context.Context, p store.TrainingRunParams) (db.TrainingRun, error)
}

// Job holds the dependencies for one retraining pass.
type Job struct {
	trainer   Trainer
	installer Installer
	recorder  RunRecorder
	now       func() time.Time
	logger    *slog.Logger
}

// NewJob constructs a Job with all required dependencies.
func NewJob(trainer Trainer, installer Installer, recorder RunRecorder, logger *slog.Logger) *Job {
	return &Job{
		trainer:   trainer,
		installer: installer,
		recorder:  recorder,
		now:       time.Now,
		logger:    logger,
	}
}

// Run executes one retraining pass:
//
//  1. Fit a model on the full submission history and save the artifact.
//  2. Swap it into the serving classifier.
//  3. Record the run in training_runs.
//
// A history below the sample threshold is a successful run with Trained
// false. Only a training failure is returned; a failed audit insert is logged.
func (j *Job) Run(ctx context.Context) (classifier.TrainResult, error) {
	started := j.now()
	log := j.logger.With("started_at", started)
	log.Info("job: training started")

	// ── 1. Fit and save ──────────────────────────────────────────────────────
	res, err := j.trainer.Train(ctx)
	if err != nil {
		return classifier.TrainResult{}, fmt.Errorf("job: train: %w", err)
	}

	// ── 2. Serve it ──────────────────────────────────────────────────────────
	if res.Trained {
		j.installer.Install(res.Model)
		log.Info("job: model installed",
			"samples", res.Samples,
			"train_accuracy", res.TrainAccuracy,
			"location", res.Location,
		)
	} else {
		log.Info("job: not enough samples, model unchanged", "samples", res.Samples)
	}

	// ── 3. Audit ─────────────────────────────────────────────────────────────
	if _, err := j.recorder.RecordTrainingRun(ctx, store.TrainingRunParams{
		StartedAt:  started,
		FinishedAt: j.now(),
		Samples:    res.Samples,
		Trained:    res.Trained,
		Location:   res.Location,
		Metrics:    res,
	}); err != nil {
		log.Error("job: record training run", "error", err)
	}

	return res, nil
}
