package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-shortlister/internal/models"
)

func newParser(t *testing.T, mode ExtractionMode) ResponseParser {
	t.Helper()
	p, err := NewResponseParser(mode)
	require.NoError(t, err)
	return p
}

func TestParse_ObjectEmbeddedInProse(t *testing.T) {
	raw := `Here is the result: {"score": 87, "reasoning": ["Strong fit"], "missing": ["AWS"]} Thanks.`

	for _, mode := range []ExtractionMode{ExtractBalanced, ExtractFirstMatch} {
		t.Run(string(mode), func(t *testing.T) {
			result, err := newParser(t, mode).Parse("alice.docx", raw)

			require.NoError(t, err)
			assert.Equal(t, models.EvaluationResult{
				Name:      "alice.docx",
				Score:     87,
				Reasoning: "Strong fit",
				Missing:   []string{"AWS"},
			}, result)
		})
	}
}

func TestParse_NoJSONFound(t *testing.T) {
	for _, raw := range []string{"No JSON here", "", "only an opening { brace"} {
		_, err := newParser(t, ExtractBalanced).Parse("bob.docx", raw)

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoJSONFound))

		var parseErr *ParseError
		require.True(t, errors.As(err, &parseErr))
		assert.Equal(t, NoJSONFound, parseErr.Kind)
		assert.Equal(t, raw, parseErr.Raw)
		assert.Equal(t, "ParseError: NoJsonFound", parseErr.Error())
	}
}

func TestParse_NestedObject(t *testing.T) {
	raw := `{"score": 90, "nested": {"a":1}}`

	t.Run("first-match truncates at the inner brace", func(t *testing.T) {
		_, err := newParser(t, ExtractFirstMatch).Parse("carol.docx", raw)

		assert.True(t, errors.Is(err, ErrInvalidJSON))
		var parseErr *ParseError
		require.True(t, errors.As(err, &parseErr))
		assert.Equal(t, raw, parseErr.Raw)
	})

	t.Run("balanced reads the whole object", func(t *testing.T) {
		result, err := newParser(t, ExtractBalanced).Parse("carol.docx", raw)

		require.NoError(t, err)
		assert.Equal(t, 90, result.Score)
		assert.Equal(t, "", result.Reasoning)
		assert.Equal(t, []string{}, result.Missing)
	})
}

func TestParse_BracesInsideStrings(t *testing.T) {
	raw := `{"score": 60, "reasoning": "uses } and { in prose", "missing": []}`

	result, err := newParser(t, ExtractBalanced).Parse("dan.pdf", raw)
	require.NoError(t, err)
	assert.Equal(t, 60, result.Score)
	assert.Equal(t, "uses } and { in prose", result.Reasoning)

	_, err = newParser(t, ExtractFirstMatch).Parse("dan.pdf", raw)
	assert.True(t, errors.Is(err, ErrInvalidJSON))
}

func TestParse_SkipsUnbalancedPrefix(t *testing.T) {
	result, err := newParser(t, ExtractBalanced).Parse("eve.txt", `{ oops {"score": 41}`)

	require.NoError(t, err)
	assert.Equal(t, 41, result.Score)
}

func TestParse_FirstBalancedObjectIsTheCandidate(t *testing.T) {
	_, err := newParser(t, ExtractBalanced).Parse("eve.txt", `{bad} {"score": 5}`)

	assert.True(t, errors.Is(err, ErrInvalidJSON))
}

func TestParse_MarkdownFence(t *testing.T) {
	raw := "```json\n{\"score\": 75, \"reasoning\": [\"Good\", \"Solid\"], \"missing\": []}\n```"

	result, err := newParser(t, ExtractBalanced).Parse("frank.docx", raw)

	require.NoError(t, err)
	assert.Equal(t, 75, result.Score)
	assert.Equal(t, "Good | Solid", result.Reasoning)
	assert.Empty(t, result.Missing)
}

func TestParse_InvalidObject(t *testing.T) {
	for _, raw := range []string{`{score: 90}`, `{"score": 90,}`} {
		_, err := newParser(t, ExtractBalanced).Parse("gina.docx", raw)

		assert.True(t, errors.Is(err, ErrInvalidJSON), raw)
		assert.False(t, errors.Is(err, ErrNoJSONFound), raw)
	}
}

func TestParse_FieldRules(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		score     int
		reasoning string
		missing   []string
		invalid   bool
	}{
		{name: "absent fields", raw: `{}`, score: 0, reasoning: "", missing: []string{}},
		{name: "null fields", raw: `{"score": null, "reasoning": null, "missing": null}`, score: 0, reasoning: "", missing: []string{}},
		{name: "fraction rounds", raw: `{"score": 72.6}`, score: 73, missing: []string{}},
		{name: "numeric string", raw: `{"score": " 85 "}`, score: 85, missing: []string{}},
		{name: "clamped high", raw: `{"score": 150}`, score: 100, missing: []string{}},
		{name: "clamped low", raw: `{"score": -5}`, score: 0, missing: []string{}},
		{name: "huge score clamped high", raw: `{"score": 1e19}`, score: 100, missing: []string{}},
		{name: "far out of range clamped high", raw: `{"score": 1e300}`, score: 100, missing: []string{}},
		{name: "huge negative clamped low", raw: `{"score": -1e300}`, score: 0, missing: []string{}},
		{name: "infinity string", raw: `{"score": "Infinity"}`, invalid: true},
		{name: "nan string", raw: `{"score": "NaN"}`, invalid: true},
		{name: "boolean score", raw: `{"score": true}`, invalid: true},
		{name: "word score", raw: `{"score": "high"}`, invalid: true},
		{name: "string reasoning", raw: `{"reasoning": "Fits well."}`, reasoning: "Fits well.", missing: []string{}},
		{name: "numeric reasoning", raw: `{"reasoning": 3}`, invalid: true},
		{name: "string missing", raw: `{"missing": "Kubernetes"}`, missing: []string{"Kubernetes"}},
		{name: "blank missing", raw: `{"missing": "  "}`, missing: []string{}},
		{name: "object missing", raw: `{"missing": {"a": 1}}`, invalid: true},
		{name: "mixed missing list", raw: `{"missing": ["Go", 5]}`, missing: []string{"Go", "5"}},
	}

	parser := newParser(t, ExtractBalanced)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parser.Parse("resume.docx", tt.raw)
			if tt.invalid {
				assert.True(t, errors.Is(err, ErrInvalidJSON))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.score, result.Score)
			assert.Equal(t, tt.reasoning, result.Reasoning)
			assert.Equal(t, tt.missing, result.Missing)
		})
	}
}

func TestParse_IsDeterministic(t *testing.T) {
	raw := `Sure! {"score": 66, "reasoning": ["One.", "Two."], "missing": ["SQL", "Docker"]}`
	parser := newParser(t, ExtractBalanced)

	first, err := parser.Parse("hank.docx", raw)
	require.NoError(t, err)
	second, err := parser.Parse("hank.docx", raw)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestNewResponseParser_UnknownMode(t *testing.T) {
	_, err := NewResponseParser("greedy")
	assert.Error(t, err)
}

func TestLocateBalancedObject(t *testing.T) {
	got, ok := locateBalancedObject(`x {"a": "\"}", "b": {"c": 1}} y {"d": 2}`)

	require.True(t, ok)
	assert.Equal(t, `{"a": "\"}", "b": {"c": 1}}`, got)
}
