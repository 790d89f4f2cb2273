package models

import (
	"time"

	"github.com/google/uuid"
)

type ScreeningRun struct {
	ID                 uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Role               string    `gorm:"type:text;not null" json:"role"`
	Provider           string    `gorm:"type:text" json:"provider"`
	Model              string    `gorm:"type:text" json:"model"`
	TotalDocuments     int       `gorm:"not null" json:"total_documents"`
	Succeeded          int       `gorm:"not null" json:"succeeded"`
	Failed             int       `gorm:"not null" json:"failed"`
	InvocationFailures int       `gorm:"not null;default:0" json:"invocation_failures"`
	ParseFailures      int       `gorm:"not null;default:0" json:"parse_failures"`
	DocumentFailures   int       `gorm:"not null;default:0" json:"document_failures"`
	CreatedAt          time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`

	Candidates []CandidateRecord `gorm:"foreignKey:RunID" json:"candidates,omitempty"`
}

func (ScreeningRun) TableName() string {
	return "screening_runs"
}

type CandidateRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	RunID     uuid.UUID `gorm:"type:uuid;not null;index" json:"run_id"`
	Position  int       `gorm:"not null" json:"position"`
	Name      string    `gorm:"type:text" json:"name"`
	Score     int       `gorm:"not null" json:"score"`
	Reasoning string    `gorm:"type:text" json:"reasoning"`
	Missing   string    `gorm:"type:text" json:"missing"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (CandidateRecord) TableName() string {
	return "screening_candidates"
}
