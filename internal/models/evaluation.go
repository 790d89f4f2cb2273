package models

import (
	"time"

	"github.com/google/uuid"
)

// JobDescription is one entry of the fixed role catalog.
type JobDescription struct {
	Role        string `json:"role"`
	Description string `json:"description"`
}

// ResumeUpload is a raw uploaded file as received from the form.
type ResumeUpload struct {
	Name string
	Data []byte
}

// ResumeDocument is a resume after text extraction.
type ResumeDocument struct {
	Name string
	Text string
}

// EvaluationResult is the parsed verdict for one resume.
type EvaluationResult struct {
	Name      string   `json:"name"`
	Score     int      `json:"score"`
	Reasoning string   `json:"reasoning"`
	Missing   []string `json:"missing"`
}

type FailureKind string

const (
	FailureExtraction FailureKind = "extraction_error"
	FailureEmpty      FailureKind = "empty_document"
	FailureInvocation FailureKind = "invocation_error"
	FailureNoJSON     FailureKind = "no_json_found"
	FailureInvalid    FailureKind = "invalid_json"
)

// FailureKinds lists every kind in the order summaries report them.
var FailureKinds = []FailureKind{
	FailureExtraction,
	FailureEmpty,
	FailureInvocation,
	FailureNoJSON,
	FailureInvalid,
}

type ItemFailure struct {
	Kind      FailureKind `json:"kind"`
	Message   string      `json:"message"`
	RawOutput string      `json:"raw_output,omitempty"`
}

// ItemOutcome records what happened to a single upload. Exactly one of
// Result and Failure is set.
type ItemOutcome struct {
	Name    string            `json:"name"`
	Result  *EvaluationResult `json:"result,omitempty"`
	Failure *ItemFailure      `json:"failure,omitempty"`
}

type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

type Histogram struct {
	Bins []HistogramBin `json:"bins"`
}

// MaxCount is the tallest bin, used to scale the dashboard bars.
func (h Histogram) MaxCount() int {
	max := 0
	for _, b := range h.Bins {
		if b.Count > max {
			max = b.Count
		}
	}
	return max
}

type RankedResult struct {
	Rank     int `json:"rank"`
	Position int `json:"position"`
	EvaluationResult
}

type SkillCount struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

type Summary struct {
	Total          int                 `json:"total"`
	Succeeded      int                 `json:"succeeded"`
	Failed         int                 `json:"failed"`
	FailuresByKind map[FailureKind]int `json:"failures_by_kind"`
}

type Report struct {
	Histogram     Histogram      `json:"histogram"`
	Top           []RankedResult `json:"top"`
	MissingSkills []SkillCount   `json:"missing_skills"`
	Summary       Summary        `json:"summary"`
}

// ScreeningBatch is the in-memory result table for one dashboard run.
type ScreeningBatch struct {
	ID        uuid.UUID          `json:"id"`
	Role      string             `json:"role"`
	Items     []ItemOutcome      `json:"items"`
	Results   []EvaluationResult `json:"results"`
	Report    Report             `json:"report"`
	CreatedAt time.Time          `json:"created_at"`
}
