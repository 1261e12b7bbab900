package classifier

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nyashahama/scas-screening-backend/internal/scoring"
)

// Source records which classifier produced an Output.
type Source string

const (
	SourceModel Source = "model"
	SourceRule  Source = "rule"
)

// Fallback weights used when no trained model is available. They are a
// policy choice that keeps the response shape stable, not an estimate.
const (
	FallbackPrimary = 0.70
	FallbackOther   = 0.15
)

// Output is the model classifier's verdict for one score vector.
type Output struct {
	Predicted     scoring.Level             `json:"pred"`
	Probabilities map[scoring.Level]float64 `json:"proba"`
	Source        Source                    `json:"source"`
}

// RuleOutput is the fallback verdict for a rule-derived label.
func RuleOutput(label scoring.Level) Output {
	dist := make(map[scoring.Level]float64, len(scoring.Levels))
	for _, l := range scoring.Levels {
		dist[l] = FallbackOther
	}
	dist[label] = FallbackPrimary
	return Output{Predicted: label, Probabilities: dist, Source: SourceRule}
}

// Status describes the model currently in use.
type Status struct {
	Loaded    bool      `json:"loaded"`
	Location  string    `json:"location"`
	TrainedAt time.Time `json:"trained_at,omitempty"`
	Samples   int       `json:"samples,omitempty"`
}

// Classifier serves predictions from the current model. The model is loaded
// from the artifact store on the first Classify call and swapped atomically
// by Install or Reload; a loaded Model is never mutated, so concurrent
// callers share it freely.
type Classifier struct {
	store  ArtifactStore
	logger *slog.Logger

	model atomic.Pointer[Model]

	// loadMu serializes artifact reads. absent is set once the store has
	// reported ErrNoArtifact and cleared by Install/Reload.
	loadMu sync.Mutex
	absent atomic.Bool
}

// New returns a Classifier backed by store. Nothing is read until the first
// Classify call.
func New(store ArtifactStore, logger *slog.Logger) *Classifier {
	return &Classifier{store: store, logger: logger}
}

// Classify returns the model's prediction for v, or the rule fallback when
// no usable model exists. It never fails.
func (c *Classifier) Classify(ctx context.Context, v scoring.ScoreVector) Output {
	m := c.current(ctx)
	if m == nil {
		return RuleOutput(scoring.ClassifyTotal(v.Total))
	}

	pred, dist, err := m.Predict(v.Features())
	if err != nil {
		c.logger.Error("classifier: predict failed, using rule fallback", "error", err)
		return RuleOutput(scoring.ClassifyTotal(v.Total))
	}
	return Output{Predicted: pred, Probabilities: dist, Source: SourceModel}
}

// current returns the loaded model, loading it on first use. A missing
// artifact is remembered; any other load error is logged and retried on the
// next call.
func (c *Classifier) current(ctx context.Context) *Model {
	if m := c.model.Load(); m != nil {
		return m
	}
	if c.absent.Load() {
		return nil
	}

	c.loadMu.Lock()
	defer c.loadMu.Unlock()
	if m := c.model.Load(); m != nil {
		return m
	}
	if c.absent.Load() {
		return nil
	}

	m, err := c.store.Load(ctx)
	switch {
	case errors.Is(err, ErrNoArtifact):
		c.absent.Store(true)
		c.logger.Info("classifier: no model artifact, using rule fallback", "location", c.store.Location())
		return nil
	case err != nil:
		c.logger.Error("classifier: load model failed, using rule fallback", "location", c.store.Location(), "error", err)
		return nil
	}

	c.model.Store(m)
	c.logger.Info("classifier: model loaded",
		"location", c.store.Location(),
		"trained_at", m.TrainedAt,
		"samples", m.Samples,
	)
	return m
}

// Install makes m the current model. It is called after training so the new
// artifact takes effect without a reload round-trip.
func (c *Classifier) Install(m *Model) {
	if m == nil {
		return
	}
	c.model.Store(m)
	c.absent.Store(false)
}

// Reload re-reads the artifact store. On ErrNoArtifact the in-memory model is
// dropped and the fallback is used; on any other error the current model is
// kept and the error returned.
func (c *Classifier) Reload(ctx context.Context) (Status, error) {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	m, err := c.store.Load(ctx)
	switch {
	case errors.Is(err, ErrNoArtifact):
		c.model.Store(nil)
		c.absent.Store(true)
	case err != nil:
		return c.Status(), err
	default:
		c.model.Store(m)
		c.absent.Store(false)
	}
	return c.Status(), nil
}

// Status reports the in-memory model without touching the store.
func (c *Classifier) Status() Status {
	s := Status{Location: c.store.Location()}
	if m := c.model.Load(); m != nil {
		s.Loaded = true
		s.TrainedAt = m.TrainedAt
		s.Samples = m.Samples
	}
	return s
}
