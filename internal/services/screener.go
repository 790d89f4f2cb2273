package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/resume-shortlister/internal/models"
	"alfredoptarigan/resume-shortlister/internal/repositories"
)

type ScreeningService interface {
	Screen(ctx context.Context, role string, uploads []models.ResumeUpload) (*models.ScreeningBatch, error)
	Batch(ctx context.Context, id uuid.UUID) (*models.ScreeningBatch, error)
	ExportCSV(ctx context.Context, id uuid.UUID) ([]byte, error)
}

// ScreeningDeps wires the screening loop. History, Index, Exports and Batches
// are optional; a nil value switches that side channel off.
type ScreeningDeps struct {
	Catalog    JobCatalog
	Extractor  TextExtractor
	Invoker    ModelInvoker
	Parser     ResponseParser
	Aggregator *Aggregator
	History    repositories.ScreeningRepository
	Index      CandidateIndex
	Exports    ExportStore
	Batches    BatchStore
	Provider   string
	Model      string
}

type screeningService struct {
	catalog       JobCatalog
	extractor     TextExtractor
	promptBuilder *PromptBuilder
	invoker       ModelInvoker
	parser        ResponseParser
	aggregator    *Aggregator
	history       repositories.ScreeningRepository
	index         CandidateIndex
	exports       ExportStore
	batches       BatchStore
	provider      string
	model         string
	now           func() time.Time
}

func NewScreeningService(deps ScreeningDeps) ScreeningService {
	aggregator := deps.Aggregator
	if aggregator == nil {
		aggregator = NewAggregator(DefaultHistogramBins, DefaultTopN)
	}

	return &screeningService{
		catalog:       deps.Catalog,
		extractor:     deps.Extractor,
		promptBuilder: NewPromptBuilder(),
		invoker:       deps.Invoker,
		parser:        deps.Parser,
		aggregator:    aggregator,
		history:       deps.History,
		index:         deps.Index,
		exports:       deps.Exports,
		batches:       deps.Batches,
		provider:      deps.Provider,
		model:         deps.Model,
		now:           time.Now,
	}
}

// Screen evaluates every upload in order against the role's job description.
// An unknown role is the only error; per-resume failures are recorded on the
// batch and the loop moves on.
func (s *screeningService) Screen(ctx context.Context, role string, uploads []models.ResumeUpload) (*models.ScreeningBatch, error) {
	job, err := s.catalog.Get(role)
	if err != nil {
		return nil, err
	}

	batch := &models.ScreeningBatch{
		ID:        uuid.New(),
		Role:      job.Role,
		Items:     make([]models.ItemOutcome, 0, len(uploads)),
		Results:   []models.EvaluationResult{},
		CreatedAt: s.now(),
	}

	log.Printf("🔄 Screening %d resumes for %s (batch %s)\n", len(uploads), job.Role, batch.ID)

	var scored []ScoredDocument
	for _, upload := range uploads {
		outcome, doc := s.evaluate(ctx, job, upload)
		batch.Items = append(batch.Items, outcome)
		if outcome.Result != nil {
			batch.Results = append(batch.Results, *outcome.Result)
			scored = append(scored, ScoredDocument{Result: *outcome.Result, Text: doc.Text})
		}
	}

	batch.Report = s.aggregator.BuildReport(batch.Items, batch.Results)
	log.Printf("📊 %s\n", SummaryLine(batch.Report.Summary))

	s.archive(ctx, batch)
	s.record(batch)
	s.indexCandidates(ctx, batch, scored)

	if s.batches != nil {
		if err := s.batches.Save(ctx, batch); err != nil {
			log.Printf("⚠️  Failed to keep batch %s: %v\n", batch.ID, err)
		}
	}

	return batch, nil
}

func (s *screeningService) evaluate(ctx context.Context, job models.JobDescription, upload models.ResumeUpload) (models.ItemOutcome, models.ResumeDocument) {
	outcome := models.ItemOutcome{Name: upload.Name}

	doc, err := s.extractor.Extract(upload)
	if err != nil {
		kind := models.FailureExtraction
		if errors.Is(err, ErrEmptyDocument) {
			kind = models.FailureEmpty
		}
		log.Printf("❌ Failed to read %s: %v\n", upload.Name, err)
		outcome.Failure = &models.ItemFailure{Kind: kind, Message: err.Error()}
		return outcome, doc
	}

	log.Printf("📑 Evaluating: %s\n", upload.Name)

	prompt := s.promptBuilder.BuildScreeningPrompt(doc.Text, job.Description)

	raw, err := s.invoker.Invoke(ctx, prompt)
	if err != nil {
		log.Printf("❌ Error evaluating %s: %v\n", upload.Name, err)
		outcome.Failure = &models.ItemFailure{Kind: models.FailureInvocation, Message: err.Error()}
		return outcome, doc
	}

	result, err := s.parser.Parse(upload.Name, raw)
	if err != nil {
		kind := models.FailureInvalid
		if errors.Is(err, ErrNoJSONFound) {
			kind = models.FailureNoJSON
		}
		log.Printf("❌ Failed to parse response for %s: %v\n", upload.Name, err)
		outcome.Failure = &models.ItemFailure{Kind: kind, Message: err.Error(), RawOutput: raw}
		return outcome, doc
	}

	log.Printf("✅ Score: %s - %d/100\n", upload.Name, result.Score)
	outcome.Result = &result
	return outcome, doc
}

func (s *screeningService) archive(ctx context.Context, batch *models.ScreeningBatch) {
	if s.exports == nil {
		return
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, batch.Results); err != nil {
		log.Printf("⚠️  Failed to render export for batch %s: %v\n", batch.ID, err)
		return
	}

	location, err := s.exports.Archive(ctx, archiveName(batch.ID), buf.Bytes())
	if err != nil {
		log.Printf("⚠️  Failed to archive batch %s: %v\n", batch.ID, err)
		return
	}
	log.Printf("💾 Archived results to %s\n", location)
}

func (s *screeningService) record(batch *models.ScreeningBatch) {
	if s.history == nil {
		return
	}

	if _, err := s.history.Record(batch, s.provider, s.model); err != nil {
		log.Printf("⚠️  Failed to record history for batch %s: %v\n", batch.ID, err)
	}
}

func (s *screeningService) indexCandidates(ctx context.Context, batch *models.ScreeningBatch, scored []ScoredDocument) {
	if s.index == nil || len(scored) == 0 {
		return
	}

	if err := s.index.Index(ctx, batch.ID.String(), batch.Role, scored); err != nil {
		log.Printf("⚠️  Failed to index candidates for batch %s: %v\n", batch.ID, err)
	}
}

func (s *screeningService) Batch(ctx context.Context, id uuid.UUID) (*models.ScreeningBatch, error) {
	if s.batches == nil {
		return nil, ErrBatchNotFound
	}
	return s.batches.Get(ctx, id)
}

// ExportCSV renders the batch's result table, falling back to the archived
// copy once the batch has left the batch store.
func (s *screeningService) ExportCSV(ctx context.Context, id uuid.UUID) ([]byte, error) {
	batch, err := s.Batch(ctx, id)
	if err == nil {
		var buf bytes.Buffer
		if err := WriteCSV(&buf, batch.Results); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	if !errors.Is(err, ErrBatchNotFound) || s.exports == nil {
		return nil, err
	}

	data, fetchErr := s.exports.Fetch(ctx, archiveName(id))
	if fetchErr != nil {
		if errors.Is(fetchErr, ErrExportNotFound) {
			return nil, ErrBatchNotFound
		}
		return nil, fmt.Errorf("failed to fetch archived export: %w", fetchErr)
	}
	return data, nil
}

func archiveName(id uuid.UUID) string {
	return id.String() + ".csv"
}
