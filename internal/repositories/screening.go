package repositories

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/resume-shortlister/internal/models"
)

const missingSeparator = " | "

var ErrRunNotFound = errors.New("screening run not found")

type ScreeningRepository interface {
	Record(batch *models.ScreeningBatch, provider, model string) (*models.ScreeningRun, error)
	FindByID(id uuid.UUID) (*models.ScreeningRun, error)
	ListRecent(limit int) ([]models.ScreeningRun, error)
}

type screeningRepository struct {
	db *gorm.DB
}

func NewScreeningRepository(db *gorm.DB) ScreeningRepository {
	return &screeningRepository{db: db}
}

// NewScreeningRun flattens a batch into its history row. The run shares the
// batch id so history entries can be matched to exports.
func NewScreeningRun(batch *models.ScreeningBatch, provider, model string) *models.ScreeningRun {
	summary := batch.Report.Summary
	byKind := summary.FailuresByKind

	run := &models.ScreeningRun{
		ID:                 batch.ID,
		Role:               batch.Role,
		Provider:           provider,
		Model:              model,
		TotalDocuments:     summary.Total,
		Succeeded:          summary.Succeeded,
		Failed:             summary.Failed,
		InvocationFailures: byKind[models.FailureInvocation],
		ParseFailures:      byKind[models.FailureNoJSON] + byKind[models.FailureInvalid],
		DocumentFailures:   byKind[models.FailureExtraction] + byKind[models.FailureEmpty],
		CreatedAt:          batch.CreatedAt,
	}

	for i, result := range batch.Results {
		run.Candidates = append(run.Candidates, models.CandidateRecord{
			ID:        uuid.New(),
			RunID:     batch.ID,
			Position:  i + 1,
			Name:      result.Name,
			Score:     result.Score,
			Reasoning: result.Reasoning,
			Missing:   strings.Join(result.Missing, missingSeparator),
			CreatedAt: batch.CreatedAt,
		})
	}

	return run
}

func (r *screeningRepository) Record(batch *models.ScreeningBatch, provider, model string) (*models.ScreeningRun, error) {
	run := NewScreeningRun(batch, provider, model)

	err := r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(run).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record screening run: %w", err)
	}
	return run, nil
}

func (r *screeningRepository) FindByID(id uuid.UUID) (*models.ScreeningRun, error) {
	var run models.ScreeningRun
	err := r.db.Preload("Candidates", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("id = ?", id).First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to find screening run: %w", err)
	}
	return &run, nil
}

func (r *screeningRepository) ListRecent(limit int) ([]models.ScreeningRun, error) {
	if limit <= 0 {
		limit = 20
	}

	var runs []models.ScreeningRun
	err := r.db.Order("created_at DESC").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list screening runs: %w", err)
	}
	return runs, nil
}
