package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nyashahama/scas-screening-backend/internal/bootstrap"
	"github.com/nyashahama/scas-screening-backend/internal/classifier"
	"github.com/nyashahama/scas-screening-backend/internal/scoring"
	"github.com/nyashahama/scas-screening-backend/internal/worker"
	"github.com/spf13/cobra"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Retrain the classifier from stored submissions",
	Long: "Fit the classifier on every stored submission and write the artifact " +
		"to the configured store (MODEL_PATH or MODEL_S3_BUCKET). Running " +
		"servers pick it up on POST /api/admin/model/reload.",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context(), cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		minSamples, _ := cmd.Flags().GetInt("min-samples")
		if minSamples <= 0 {
			minSamples = e.cfg.ModelMinSamples
		}

		res, err := train(cmd.Context(), e, minSamples)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func init() {
	trainCmd.Flags().Int("min-samples", 0, "minimum submissions required (default MODEL_MIN_SAMPLES)")
}

func train(ctx context.Context, e *env, minSamples int) (classifier.TrainResult, error) {
	q, err := e.store.LoadQuestionnaire(ctx, scoring.SCASCode)
	if err != nil {
		return classifier.TrainResult{}, fmt.Errorf("load questionnaire (run seed first): %w", err)
	}

	artifacts, err := bootstrap.ArtifactStore(ctx, e.cfg)
	if err != nil {
		return classifier.TrainResult{}, err
	}

	trainer := classifier.NewTrainer(e.store, artifacts, q.ID, minSamples)
	e.logger.Info("training", "artifact", artifacts.Location(), "min_samples", trainer.MinSamples())
	job := worker.NewJob(trainer, classifier.New(artifacts, e.logger), e.store, e.logger)

	ctx, cancel := context.WithTimeout(ctx, e.cfg.TrainTimeout)
	defer cancel()
	return job.Run(ctx)
}
