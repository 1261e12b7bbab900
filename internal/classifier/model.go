// Package classifier refines the rule-based severity label with a multinomial
// logistic regression trained on stored score vectors. When no trained model
// is available it falls back to the rule classifier with a fixed, policy-based
// probability distribution.
package classifier

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/nyashahama/scas-screening-backend/internal/scoring"
	"gonum.org/v1/gonum/floats"
)

// ErrInvalidModel is returned when an artifact is structurally unusable.
var ErrInvalidModel = errors.New("classifier: invalid model")

// Model is a trained softmax regression over standardized features. It is
// never mutated after construction; retraining produces a new Model.
type Model struct {
	Features  []string        `json:"features"`
	Classes   []scoring.Level `json:"classes"`
	Mean      []float64       `json:"mean"`
	Scale     []float64       `json:"scale"`
	Weights   [][]float64     `json:"weights"` // [class][feature]
	Bias      []float64       `json:"bias"`
	TrainedAt time.Time       `json:"trained_at"`
	Samples   int             `json:"samples"`
}

// Validate checks that every dimension agrees and that the class set is the
// known severity labels.
func (m *Model) Validate() error {
	d, k := len(m.Features), len(m.Classes)
	if d == 0 || k == 0 {
		return fmt.Errorf("%w: empty features or classes", ErrInvalidModel)
	}
	if len(m.Mean) != d || len(m.Scale) != d {
		return fmt.Errorf("%w: standardization has %d/%d columns, want %d", ErrInvalidModel, len(m.Mean), len(m.Scale), d)
	}
	if len(m.Weights) != k || len(m.Bias) != k {
		return fmt.Errorf("%w: %d weight rows and %d biases for %d classes", ErrInvalidModel, len(m.Weights), len(m.Bias), k)
	}
	for c, row := range m.Weights {
		if len(row) != d {
			return fmt.Errorf("%w: class %d has %d weights, want %d", ErrInvalidModel, c, len(row), d)
		}
	}
	for _, s := range m.Scale {
		if s == 0 || math.IsNaN(s) || math.IsInf(s, 0) {
			return fmt.Errorf("%w: non-finite or zero scale", ErrInvalidModel)
		}
	}
	for _, c := range m.Classes {
		if c.Index() < 0 {
			return fmt.Errorf("%w: unknown class %q", ErrInvalidModel, c)
		}
	}
	return nil
}

// Probabilities returns P(class | x) in the order of m.Classes.
func (m *Model) Probabilities(x []float64) ([]float64, error) {
	if len(x) != len(m.Features) {
		return nil, fmt.Errorf("%w: got %d features, want %d", ErrInvalidModel, len(x), len(m.Features))
	}
	z := make([]float64, len(x))
	for j := range x {
		z[j] = (x[j] - m.Mean[j]) / m.Scale[j]
	}

	logits := make([]float64, len(m.Classes))
	for c := range m.Classes {
		logits[c] = m.Bias[c] + floats.Dot(m.Weights[c], z)
	}
	softmax(logits)
	return logits, nil
}

// Predict returns the most probable label and the full distribution.
func (m *Model) Predict(x []float64) (scoring.Level, map[scoring.Level]float64, error) {
	p, err := m.Probabilities(x)
	if err != nil {
		return "", nil, err
	}
	dist := make(map[scoring.Level]float64, len(p))
	for c, label := range m.Classes {
		dist[label] = p[c]
	}
	return m.Classes[floats.MaxIdx(p)], dist, nil
}

// softmax replaces logits with normalized probabilities in place.
func softmax(logits []float64) {
	lse := floats.LogSumExp(logits)
	for i, v := range logits {
		logits[i] = math.Exp(v - lse)
	}
}
