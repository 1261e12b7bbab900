package classifier

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/nyashahama/scas-screening-backend/internal/scoring"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// DefaultMinSamples is the smallest history the trainer will fit on.
const DefaultMinSamples = 30

const (
	maxIterations     = 2000
	gradientThreshold = 1e-6
	l2Penalty         = 1.0 // inverse of the regularization strength C
)

// ErrFitFailed is returned when the optimizer produced no usable parameters.
var ErrFitFailed = errors.New("classifier: fit failed")

// ─── TRAINER ──────────────────────────────────────────────────────────────────

// VectorSource supplies the full submission history as score vectors.
type VectorSource interface {
	TrainingVectors(ctx context.Context, questionnaireID int32) ([]scoring.ScoreVector, error)
}

// TrainResult summarizes one training attempt. Model is nil unless Trained.
type TrainResult struct {
	Samples       int                   `json:"samples"`
	Trained       bool                  `json:"trained"`
	Classes       []scoring.Level       `json:"classes"`
	ClassCounts   map[scoring.Level]int `json:"class_counts"`
	TrainAccuracy float64               `json:"train_accuracy,omitempty"`
	TrainedAt     time.Time             `json:"trained_at,omitempty"`
	Location      string                `json:"location,omitempty"`
	Model         *Model                `json:"-"`
}

// Trainer rebuilds the model from the entire submission history. Labels are
// derived from the rule thresholds; there is no other ground truth.
type Trainer struct {
	source          VectorSource
	store           ArtifactStore
	questionnaireID int32
	minSamples      int
	now             func() time.Time
}

// NewTrainer returns a Trainer. minSamples <= 0 selects DefaultMinSamples.
func NewTrainer(source VectorSource, store ArtifactStore, questionnaireID int32, minSamples int) *Trainer {
	if minSamples <= 0 {
		minSamples = DefaultMinSamples
	}
	return &Trainer{
		source:          source,
		store:           store,
		questionnaireID: questionnaireID,
		minSamples:      minSamples,
		now:             time.Now,
	}
}

// MinSamples is the configured training threshold.
func (t *Trainer) MinSamples() int { return t.minSamples }

// Train fits a new model and saves it, replacing any prior artifact. Below
// the sample threshold nothing is written and Trained is false; that is not
// an error.
func (t *Trainer) Train(ctx context.Context) (TrainResult, error) {
	vectors, err := t.source.TrainingVectors(ctx, t.questionnaireID)
	if err != nil {
		return TrainResult{}, fmt.Errorf("classifier: load training set: %w", err)
	}

	res := TrainResult{
		Samples:     len(vectors),
		Classes:     scoring.Levels,
		ClassCounts: make(map[scoring.Level]int, len(scoring.Levels)),
	}
	x := make([][]float64, len(vectors))
	y := make([]int, len(vectors))
	for i, v := range vectors {
		label := scoring.ClassifyTotal(v.Total)
		res.ClassCounts[label]++
		x[i] = v.Features()
		y[i] = label.Index()
	}

	if len(vectors) < t.minSamples {
		return res, nil
	}

	m, err := Fit(ctx, x, y)
	if err != nil {
		return TrainResult{}, err
	}
	m.TrainedAt = t.now().UTC()

	if err := t.store.Save(ctx, m); err != nil {
		return TrainResult{}, fmt.Errorf("classifier: save artifact: %w", err)
	}

	res.Trained = true
	res.TrainedAt = m.TrainedAt
	res.Location = t.store.Location()
	res.TrainAccuracy = accuracy(m, x, y)
	res.Model = m
	return res, nil
}

// ─── FIT ──────────────────────────────────────────────────────────────────────

// Fit trains a softmax regression over the three severity levels. y holds
// indices into scoring.Levels. Classes are weighted inversely to their
// frequency and the weights carry an L2 penalty; biases are not penalized.
// Classes absent from y still get a row, which the data drives down.
func Fit(ctx context.Context, x [][]float64, y []int) (*Model, error) {
	n := len(x)
	if n == 0 || n != len(y) {
		return nil, fmt.Errorf("%w: %d samples, %d labels", ErrFitFailed, n, len(y))
	}
	d := len(x[0])
	k := len(scoring.Levels)

	for i, row := range x {
		if len(row) != d {
			return nil, fmt.Errorf("%w: sample %d has %d features, want %d", ErrFitFailed, i, len(row), d)
		}
		if y[i] < 0 || y[i] >= k {
			return nil, fmt.Errorf("%w: label %d out of range", ErrFitFailed, y[i])
		}
	}

	mean, scale := standardization(x)
	z := make([][]float64, n)
	for i, row := range x {
		z[i] = make([]float64, d)
		for j := range row {
			z[i][j] = (row[j] - mean[j]) / scale[j]
		}
	}
	sw := sampleWeights(y, k)

	// Parameters are laid out per class as [bias, w_1..w_d].
	stride := d + 1
	logits := make([]float64, k)
	objective := func(grad, theta []float64) float64 {
		if grad != nil {
			for i := range grad {
				grad[i] = 0
			}
		}
		var loss float64
		for i := 0; i < n; i++ {
			for c := 0; c < k; c++ {
				row := theta[c*stride : (c+1)*stride]
				logits[c] = row[0] + floats.Dot(row[1:], z[i])
			}
			lse := floats.LogSumExp(logits)
			loss += sw[i] * (lse - logits[y[i]])
			if grad == nil {
				continue
			}
			for c := 0; c < k; c++ {
				g := math.Exp(logits[c] - lse)
				if c == y[i] {
					g--
				}
				g *= sw[i]
				grow := grad[c*stride : (c+1)*stride]
				grow[0] += g
				floats.AddScaled(grow[1:], g, z[i])
			}
		}
		for c := 0; c < k; c++ {
			w := theta[c*stride+1 : (c+1)*stride]
			loss += 0.5 * l2Penalty * floats.Dot(w, w)
			if grad != nil {
				floats.AddScaled(grad[c*stride+1:(c+1)*stride], l2Penalty, w)
			}
		}
		return loss
	}

	problem := optimize.Problem{
		Func: func(theta []float64) float64 { return objective(nil, theta) },
		Grad: func(grad, theta []float64) { objective(grad, theta) },
	}
	settings := &optimize.Settings{
		MajorIterations:   maxIterations,
		GradientThreshold: gradientThreshold,
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result, err := optimize.Minimize(problem, make([]float64, k*stride), settings, &optimize.LBFGS{})
	if result == nil || !finite(result.X) {
		if err == nil {
			err = errors.New("non-finite parameters")
		}
		return nil, fmt.Errorf("%w: %v", ErrFitFailed, err)
	}

	m := &Model{
		Features: append([]string(nil), scoring.FeatureNames...),
		Classes:  append([]scoring.Level(nil), scoring.Levels...),
		Mean:     mean,
		Scale:    scale,
		Weights:  make([][]float64, k),
		Bias:     make([]float64, k),
		Samples:  n,
	}
	for c := 0; c < k; c++ {
		row := result.X[c*stride : (c+1)*stride]
		m.Bias[c] = row[0]
		m.Weights[c] = append([]float64(nil), row[1:]...)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFitFailed, err)
	}
	return m, nil
}

// standardization returns per-column mean and population standard deviation.
// Constant columns get scale 1 so they pass through centred.
func standardization(x [][]float64) (mean, scale []float64) {
	d := len(x[0])
	n := float64(len(x))
	mean = make([]float64, d)
	scale = make([]float64, d)
	for _, row := range x {
		floats.Add(mean, row)
	}
	floats.Scale(1/n, mean)
	for _, row := range x {
		for j, v := range row {
			diff := v - mean[j]
			scale[j] += diff * diff
		}
	}
	for j := range scale {
		scale[j] = math.Sqrt(scale[j] / n)
		if scale[j] < 1e-12 {
			scale[j] = 1
		}
	}
	return mean, scale
}

// sampleWeights implements balanced class weights, n / (k_present * n_c),
// where k_present counts only the classes that occur.
func sampleWeights(y []int, k int) []float64 {
	counts := make([]int, k)
	for _, c := range y {
		counts[c]++
	}
	present := 0
	for _, n := range counts {
		if n > 0 {
			present++
		}
	}
	w := make([]float64, len(y))
	for i, c := range y {
		w[i] = float64(len(y)) / (float64(present) * float64(counts[c]))
	}
	return w
}

func accuracy(m *Model, x [][]float64, y []int) float64 {
	if len(x) == 0 {
		return 0
	}
	hits := 0
	for i := range x {
		p, err := m.Probabilities(x[i])
		if err == nil && floats.MaxIdx(p) == y[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(x))
}

func finite(v []float64) bool {
	if len(v) == 0 {
		return false
	}
	for _, f := range v {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
