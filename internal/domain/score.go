package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	MinScore = 0
	MaxScore = 10
)

// Score is a 0-10 rating. A value the model sent that is not a number is
// kept as NaN; it encodes as null and decodes back to NaN.
type Score float64

func (s Score) Finite() bool {
	f := float64(s)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Finite() {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, float64(s), 'f', -1, 64), nil
}

func (s *Score) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	*s = Score(CoerceScore(v))
	return nil
}

// CoerceScore converts a loosely typed score into a float64 the way a
// JavaScript Number() call would for the shapes a model returns: numbers
// pass through, numeric strings parse, booleans map to 0/1, an empty
// string is 0 and everything else is NaN.
func CoerceScore(v any) float64 {
	switch t := v.(type) {
	case Score:
		return float64(t)
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case bool:
		if t {
			return 1
		}
		return 0
	default:
		return math.NaN()
	}
}

// ClampScore bounds finite values to [MinScore, MaxScore] and leaves
// non-finite values untouched.
func ClampScore(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	return math.Max(MinScore, math.Min(MaxScore, f))
}

// FormatScore renders a score with one decimal. Anything that does not
// coerce to a finite number renders as "0.0".
func FormatScore(v any) string {
	f := CoerceScore(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "0.0"
	}
	return strconv.FormatFloat(f, 'f', 1, 64)
}

// ScorePercent is the fill width of a rating bar, 0-100.
func ScorePercent(v any) float64 {
	f := CoerceScore(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return ClampScore(f) * 10
}
