package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// StripCodeFence removes markdown fence markers a model wraps JSON in.
func StripCodeFence(content string) string {
	cleaned := strings.ReplaceAll(content, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

type rawAnalysis struct {
	Overall        *Score `json:"overall"`
	FacialSymmetry *Score `json:"facialSymmetry"`
	SkinHealth     *Score `json:"skinHealth"`
	Style          *Score `json:"style"`
	Assessment     any    `json:"assessment"`
}

// DecodeAnalysis parses model output into an AnalysisResult. Scores are
// coerced and clamped; missing scores become NaN.
func DecodeAnalysis(content string) (*AnalysisResult, error) {
	var raw rawAnalysis
	if err := json.Unmarshal([]byte(StripCodeFence(content)), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponseFormat, err)
	}

	result := &AnalysisResult{
		Overall:        validScore(raw.Overall),
		FacialSymmetry: validScore(raw.FacialSymmetry),
		SkinHealth:     validScore(raw.SkinHealth),
		Style:          validScore(raw.Style),
	}
	switch a := raw.Assessment.(type) {
	case nil:
	case string:
		result.Assessment = a
	default:
		result.Assessment = fmt.Sprint(a)
	}
	return result, nil
}

func validScore(s *Score) Score {
	if s == nil {
		return Score(math.NaN())
	}
	return Score(ClampScore(float64(*s)))
}

// DecodeRoutine parses model output into a Routine. Section contents are
// free-form and are not validated.
func DecodeRoutine(content string) (*Routine, error) {
	var routine Routine
	if err := json.Unmarshal([]byte(StripCodeFence(content)), &routine); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponseFormat, err)
	}
	return &routine, nil
}

// StepList is a list of routine steps. Models do not always answer with a
// plain string array, so a bare string, an object of steps, or an array of
// objects is flattened into strings in the order received.
type StepList []string

func (l *StepList) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	steps, err := readSteps(dec)
	if err != nil {
		return err
	}
	*l = steps
	return nil
}

func readSteps(dec *json.Decoder) (StepList, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		var steps StepList
		switch t {
		case '[':
			for dec.More() {
				item, err := readSteps(dec)
				if err != nil {
					return nil, err
				}
				steps = append(steps, item.joined())
			}
		case '{':
			for dec.More() {
				if _, err := dec.Token(); err != nil {
					return nil, err
				}
				item, err := readSteps(dec)
				if err != nil {
					return nil, err
				}
				steps = append(steps, item...)
			}
		}
		// closing delimiter
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return compact(steps), nil
	case string:
		return compact(StepList{t}), nil
	case json.Number:
		return StepList{t.String()}, nil
	case bool:
		return StepList{fmt.Sprint(t)}, nil
	default:
		return nil, nil
	}
}

func (l StepList) joined() string {
	return strings.Join(l, " - ")
}

func compact(steps StepList) StepList {
	out := steps[:0]
	for _, s := range steps {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// UnmarshalJSON accepts the usual {morning, evening} object. Any other
// shape leaves both lists empty, matching how the section is displayed.
func (s *SkincareRoutine) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		*s = SkincareRoutine{}
		return nil
	}
	type plain SkincareRoutine
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return err
	}
	*s = SkincareRoutine(p)
	return nil
}
