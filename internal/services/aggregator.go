package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"alfredoptarigan/resume-shortlister/internal/models"
)

const (
	DefaultHistogramBins = 10
	DefaultTopN          = 5

	// MissingSeparator joins missing skills inside a single CSV cell.
	MissingSeparator = " | "

	ExportFileName = "resume_evaluation_results.csv"
)

var csvHeader = []string{"name", "score", "reasoning", "missing"}

// Aggregator turns a result table into the dashboard report. It never keeps
// state between calls; every report is recomputed from the table it is given.
type Aggregator struct {
	bins       int
	topN       int
	skillLimit int
}

func NewAggregator(bins, topN int) *Aggregator {
	if bins <= 0 {
		bins = DefaultHistogramBins
	}
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Aggregator{bins: bins, topN: topN, skillLimit: 15}
}

func (a *Aggregator) BuildReport(items []models.ItemOutcome, results []models.EvaluationResult) models.Report {
	return models.Report{
		Histogram:     BuildHistogram(results, a.bins),
		Top:           TopN(results, a.topN),
		MissingSkills: MissingSkillCounts(results, a.skillLimit),
		Summary:       Summarize(items),
	}
}

// BuildHistogram splits the observed score range into equal-width bins. The
// last bin is closed on the right so the maximum score is always counted.
func BuildHistogram(results []models.EvaluationResult, bins int) models.Histogram {
	if len(results) == 0 || bins <= 0 {
		return models.Histogram{Bins: []models.HistogramBin{}}
	}

	lo := float64(results[0].Score)
	hi := lo
	for _, r := range results[1:] {
		s := float64(r.Score)
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}

	width := (hi - lo) / float64(bins)
	histogram := models.Histogram{Bins: make([]models.HistogramBin, bins)}
	for i := range histogram.Bins {
		histogram.Bins[i].Lower = lo + float64(i)*width
		histogram.Bins[i].Upper = lo + float64(i+1)*width
	}
	histogram.Bins[bins-1].Upper = hi

	for _, r := range results {
		idx := int((float64(r.Score) - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		histogram.Bins[idx].Count++
	}

	return histogram
}

// TopN ranks results by score, highest first. Ties keep upload order.
func TopN(results []models.EvaluationResult, n int) []models.RankedResult {
	ranked := make([]models.RankedResult, len(results))
	for i, r := range results {
		ranked[i] = models.RankedResult{Position: i + 1, EvaluationResult: r}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// MissingSkillCounts counts how often each missing skill was reported.
// Skills are compared case-insensitively; the first spelling seen is kept.
func MissingSkillCounts(results []models.EvaluationResult, limit int) []models.SkillCount {
	counts := []models.SkillCount{}
	index := map[string]int{}

	for _, r := range results {
		for _, skill := range r.Missing {
			skill = strings.TrimSpace(skill)
			if skill == "" {
				continue
			}
			key := strings.ToLower(skill)
			if i, ok := index[key]; ok {
				counts[i].Count++
				continue
			}
			index[key] = len(counts)
			counts = append(counts, models.SkillCount{Skill: skill, Count: 1})
		}
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})

	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}

func Summarize(items []models.ItemOutcome) models.Summary {
	summary := models.Summary{
		Total:          len(items),
		FailuresByKind: map[models.FailureKind]int{},
	}

	for _, item := range items {
		if item.Failure != nil {
			summary.Failed++
			summary.FailuresByKind[item.Failure.Kind]++
			continue
		}
		summary.Succeeded++
	}
	return summary
}

// SummaryLine renders the batch outcome for logs and the dashboard banner.
func SummaryLine(s models.Summary) string {
	if s.Failed == 0 {
		return fmt.Sprintf("All %d resumes evaluated", s.Total)
	}

	parts := []string{}
	for _, kind := range models.FailureKinds {
		if n := s.FailuresByKind[kind]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", kind, n))
		}
	}
	return fmt.Sprintf("%d of %d resumes failed (%s)", s.Failed, s.Total, strings.Join(parts, ", "))
}

// WriteCSV writes the result table in upload order.
func WriteCSV(w io.Writer, results []models.EvaluationResult) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, r := range results {
		row := []string{
			r.Name,
			strconv.Itoa(r.Score),
			r.Reasoning,
			strings.Join(r.Missing, MissingSeparator),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row for %s: %w", r.Name, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
