package scoring

// ─── CONSTANTS ────────────────────────────────────────────────────────────────

// Severity thresholds on the total score. Boundaries are inclusive.
const (
	ModerateThreshold = 38 // total >= 38 → moderate
	HighThreshold     = 76 // total >= 76 → high
)

// ─── TYPES ────────────────────────────────────────────────────────────────────

// Level is the three-bucket severity classification. String values match the
// API and the training labels.
type Level string

const (
	LevelLow      Level = "low"
	LevelModerate Level = "moderate"
	LevelHigh     Level = "high"
)

// Levels lists the labels in ascending severity. The classifier uses this
// order for its class indices.
var Levels = []Level{LevelLow, LevelModerate, LevelHigh}

// Index returns the position of l in Levels, or -1.
func (l Level) Index() int {
	for i, known := range Levels {
		if l == known {
			return i
		}
	}
	return -1
}

// SubscaleScores holds the six subscale sums.
type SubscaleScores struct {
	GAD int `json:"GAD"`
	SOC int `json:"SOC"`
	OCD int `json:"OCD"`
	PAA int `json:"PAA"`
	PHB int `json:"PHB"`
	SAD int `json:"SAD"`
}

// Get returns the sum for s; SubscaleNone and unknown tags yield 0.
func (s SubscaleScores) Get(sub Subscale) int {
	switch sub {
	case SubscaleGAD:
		return s.GAD
	case SubscaleSOC:
		return s.SOC
	case SubscaleOCD:
		return s.OCD
	case SubscalePAA:
		return s.PAA
	case SubscalePHB:
		return s.PHB
	case SubscaleSAD:
		return s.SAD
	}
	return 0
}

func (s *SubscaleScores) add(sub Subscale, v int) {
	switch sub {
	case SubscaleGAD:
		s.GAD += v
	case SubscaleSOC:
		s.SOC += v
	case SubscaleOCD:
		s.OCD += v
	case SubscalePAA:
		s.PAA += v
	case SubscalePHB:
		s.PHB += v
	case SubscaleSAD:
		s.SAD += v
	}
}

// Sum is the sum over all six subscales.
func (s SubscaleScores) Sum() int {
	return s.GAD + s.SOC + s.OCD + s.PAA + s.PHB + s.SAD
}

// ScoreVector is the derived result of one submission.
type ScoreVector struct {
	Total     int
	Subscales SubscaleScores
}

// FeatureNames is the column order of Features.
var FeatureNames = []string{"total", "GAD", "SOC", "OCD", "PAA", "PHB", "SAD"}

// Features returns the 7-dimensional classifier input
// [total, GAD, SOC, OCD, PAA, PHB, SAD].
func (v ScoreVector) Features() []float64 {
	out := make([]float64, 0, len(FeatureNames))
	out = append(out, float64(v.Total))
	for _, sub := range Subscales {
		out = append(out, float64(v.Subscales.Get(sub)))
	}
	return out
}

// ─── CORE FUNCTIONS ───────────────────────────────────────────────────────────

// Score aggregates normalized answers. Only scored items count, both toward
// the total and toward their subscale, so Subscales.Sum() never exceeds Total.
// Answers referring to items missing from q are ignored.
func Score(q Questionnaire, answers []Answer) ScoreVector {
	var v ScoreVector
	for _, a := range answers {
		it, ok := q.Lookup(a.ItemNumber)
		if !ok || !it.Scored {
			continue
		}
		v.Total += a.Value
		v.Subscales.add(it.Subscale, a.Value)
	}
	return v
}

// ClassifyTotal maps a total score to a severity level.
//
//	total >= 76 → high
//	total >= 38 → moderate
//	otherwise   → low
func ClassifyTotal(total int) Level {
	switch {
	case total >= HighThreshold:
		return LevelHigh
	case total >= ModerateThreshold:
		return LevelModerate
	default:
		return LevelLow
	}
}
