package scoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// Value range of a single SCAS answer (never, sometimes, often, always).
const (
	MinValue = 0
	MaxValue = 3
)

// ErrEmptySubmission is returned by Normalize when no usable answer remains.
var ErrEmptySubmission = errors.New("scoring: no valid answers in submission")

// RawAnswer is one (item identifier, raw value) pair as received from the
// client. Both fields are kept as raw JSON so that non-integer values can be
// detected and discarded rather than failing the whole request.
type RawAnswer struct {
	ItemID json.RawMessage
	Value  json.RawMessage
}

// Answer is a normalized answer: a known item number and a value in [0,3].
type Answer struct {
	ItemNumber int
	Value      int
}

// Clamp constrains v to [MinValue, MaxValue].
func Clamp(v int64) int {
	if v < MinValue {
		return MinValue
	}
	if v > MaxValue {
		return MaxValue
	}
	return int(v)
}

// Normalize maps raw answers onto the questionnaire. Entries with an unknown
// item or a value that is not an integer are dropped; the rest are clamped.
// When the same item appears more than once the last entry wins, and the
// output is ordered by item number.
//
// Returns ErrEmptySubmission if raw is empty or nothing survives.
func Normalize(q Questionnaire, raw []RawAnswer) ([]Answer, error) {
	if len(raw) == 0 {
		return nil, ErrEmptySubmission
	}

	values := make(map[int]int, len(raw))
	for _, r := range raw {
		id, ok := parseInteger(r.ItemID)
		if !ok || id < math.MinInt32 || id > math.MaxInt32 {
			continue
		}
		if _, known := q.Lookup(int(id)); !known {
			continue
		}
		v, ok := parseInteger(r.Value)
		if !ok {
			continue
		}
		values[int(id)] = Clamp(v)
	}

	if len(values) == 0 {
		return nil, ErrEmptySubmission
	}

	out := make([]Answer, 0, len(values))
	for _, it := range q.Items() {
		if v, ok := values[it.Number]; ok {
			out = append(out, Answer{ItemNumber: it.Number, Value: v})
		}
	}
	return out, nil
}

// parseInteger accepts a JSON number or a JSON string holding a number, as
// long as the number is integral. Integers beyond the int64 range saturate,
// which is harmless because every caller clamps or range-checks the result.
func parseInteger(raw json.RawMessage) (int64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}

	text := string(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		text = strings.TrimSpace(s)
	}
	if text == "" {
		return 0, false
	}

	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return n, true
	} else if errors.Is(err, strconv.ErrRange) {
		if strings.HasPrefix(text, "-") {
			return math.MinInt64, true
		}
		return math.MaxInt64, true
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	switch {
	case f >= math.MaxInt64:
		return math.MaxInt64, true
	case f <= math.MinInt64:
		return math.MinInt64, true
	}
	return int64(f), true
}
