package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"alfredoptarigan/resume-shortlister/internal/models"
)

// ReasoningSeparator joins the model's reasoning sentences into one display string.
const ReasoningSeparator = " | "

// ExtractionMode selects how the JSON object is located in the model output.
type ExtractionMode string

const (
	// ExtractBalanced bounds the object with a brace-depth scanner that skips
	// braces inside string literals.
	ExtractBalanced ExtractionMode = "balanced"
	// ExtractFirstMatch takes the shortest "{...}" span, so nested objects are
	// cut at the first inner "}".
	ExtractFirstMatch ExtractionMode = "first-match"
)

var firstMatchPattern = regexp.MustCompile(`(?s)\{.*?\}`)

type ResponseParser interface {
	Parse(name, raw string) (models.EvaluationResult, error)
}

type responseParser struct {
	locate func(text string) (string, bool)
}

func NewResponseParser(mode ExtractionMode) (ResponseParser, error) {
	switch mode {
	case ExtractBalanced, "":
		return &responseParser{locate: locateBalancedObject}, nil
	case ExtractFirstMatch:
		return &responseParser{locate: locateFirstMatch}, nil
	default:
		return nil, fmt.Errorf("unknown extraction mode %q", mode)
	}
}

func (p *responseParser) Parse(name, raw string) (models.EvaluationResult, error) {
	candidate, ok := p.locate(raw)
	if !ok {
		return models.EvaluationResult{}, &ParseError{Kind: NoJSONFound, Raw: raw}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &fields); err != nil {
		return models.EvaluationResult{}, &ParseError{Kind: InvalidJSON, Raw: raw, Err: err}
	}

	score, err := decodeScore(fields["score"])
	if err != nil {
		return models.EvaluationResult{}, &ParseError{Kind: InvalidJSON, Raw: raw, Err: err}
	}

	reasoning, err := decodeReasoning(fields["reasoning"])
	if err != nil {
		return models.EvaluationResult{}, &ParseError{Kind: InvalidJSON, Raw: raw, Err: err}
	}

	missing, err := decodeMissing(fields["missing"])
	if err != nil {
		return models.EvaluationResult{}, &ParseError{Kind: InvalidJSON, Raw: raw, Err: err}
	}

	return models.EvaluationResult{
		Name:      name,
		Score:     score,
		Reasoning: reasoning,
		Missing:   missing,
	}, nil
}

func locateFirstMatch(text string) (string, bool) {
	match := firstMatchPattern.FindString(text)
	return match, match != ""
}

func locateBalancedObject(text string) (string, bool) {
	for offset := 0; offset < len(text); {
		start := strings.IndexByte(text[offset:], '{')
		if start == -1 {
			return "", false
		}
		start += offset

		if end, ok := matchingBrace(text, start); ok {
			return text[start : end+1], true
		}
		offset = start + 1
	}
	return "", false
}

// matchingBrace returns the index of the "}" closing the "{" at start.
func matchingBrace(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func decodeValue(raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func decodeScore(raw json.RawMessage) (int, error) {
	v, err := decodeValue(raw)
	if err != nil {
		return 0, err
	}

	var f float64
	switch s := v.(type) {
	case nil:
		return 0, nil
	case json.Number:
		f, err = s.Float64()
		if err != nil {
			return 0, fmt.Errorf("score %q is not a number", s)
		}
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("score %q is not a number", s)
		}
	default:
		return 0, fmt.Errorf("score has unexpected type %T", v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("score %v is not a finite number", f)
	}

	// clamp before converting so huge values cannot overflow int
	f = math.Max(0, math.Min(100, f))
	return int(math.Round(f)), nil
}

func decodeReasoning(raw json.RawMessage) (string, error) {
	v, err := decodeValue(raw)
	if err != nil {
		return "", err
	}

	switch r := v.(type) {
	case nil:
		return "", nil
	case string:
		return r, nil
	case []any:
		parts := make([]string, 0, len(r))
		for _, item := range r {
			parts = append(parts, stringify(item))
		}
		return strings.Join(parts, ReasoningSeparator), nil
	default:
		return "", fmt.Errorf("reasoning has unexpected type %T", v)
	}
}

func decodeMissing(raw json.RawMessage) ([]string, error) {
	v, err := decodeValue(raw)
	if err != nil {
		return nil, err
	}

	missing := []string{}
	switch m := v.(type) {
	case nil:
	case string:
		if strings.TrimSpace(m) != "" {
			missing = append(missing, m)
		}
	case []any:
		for _, item := range m {
			missing = append(missing, stringify(item))
		}
	default:
		return nil, fmt.Errorf("missing has unexpected type %T", v)
	}
	return missing, nil
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
}
