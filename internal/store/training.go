package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nyashahama/scas-screening-backend/internal/db"
	"github.com/nyashahama/scas-screening-backend/internal/scoring"
	"github.com/sqlc-dev/pqtype"
)

// TrainingRunParams describes one finished training attempt.
type TrainingRunParams struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Samples    int
	Trained    bool
	Location   string // artifact location; empty when nothing was written
	Metrics    any    // marshalled to JSON; nil leaves the column NULL
}

// TrainingVectors returns the score vector of every stored submission for the
// questionnaire, oldest first.
func (s *Store) TrainingVectors(ctx context.Context, questionnaireID int32) ([]scoring.ScoreVector, error) {
	rows, err := s.q.ListTrainingVectors(ctx, questionnaireID)
	if err != nil {
		return nil, fmt.Errorf("TrainingVectors: %w", err)
	}
	out := make([]scoring.ScoreVector, 0, len(rows))
	for _, r := range rows {
		out = append(out, scoring.ScoreVector{
			Total: int(r.TotalScore),
			Subscales: scoring.SubscaleScores{
				GAD: int(r.Gad),
				SOC: int(r.Soc),
				OCD: int(r.Ocd),
				PAA: int(r.Paa),
				PHB: int(r.Phb),
				SAD: int(r.Sad),
			},
		})
	}
	return out, nil
}

// RecordTrainingRun appends a row to training_runs.
func (s *Store) RecordTrainingRun(ctx context.Context, p TrainingRunParams) (db.TrainingRun, error) {
	var metrics pqtype.NullRawMessage
	if p.Metrics != nil {
		b, err := json.Marshal(p.Metrics)
		if err != nil {
			return db.TrainingRun{}, fmt.Errorf("RecordTrainingRun: marshal metrics: %w", err)
		}
		metrics = pqtype.NullRawMessage{RawMessage: b, Valid: true}
	}

	run, err := s.q.CreateTrainingRun(ctx, db.CreateTrainingRunParams{
		StartedAt:  p.StartedAt,
		FinishedAt: p.FinishedAt,
		Samples:    int32(p.Samples),
		Trained:    p.Trained,
		Location:   sql.NullString{String: p.Location, Valid: p.Location != ""},
		Metrics:    metrics,
	})
	if err != nil {
		return db.TrainingRun{}, fmt.Errorf("RecordTrainingRun: %w", err)
	}
	return run, nil
}
