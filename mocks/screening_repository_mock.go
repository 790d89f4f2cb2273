package mocks

import (
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"alfredoptarigan/resume-shortlister/internal/models"
)

type MockScreeningRepository struct {
	mock.Mock
}

func (m *MockScreeningRepository) Record(batch *models.ScreeningBatch, provider, model string) (*models.ScreeningRun, error) {
	args := m.Called(batch, provider, model)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.ScreeningRun), args.Error(1)
}

func (m *MockScreeningRepository) FindByID(id uuid.UUID) (*models.ScreeningRun, error) {
	args := m.Called(id)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.ScreeningRun), args.Error(1)
}

func (m *MockScreeningRepository) ListRecent(limit int) ([]models.ScreeningRun, error) {
	args := m.Called(limit)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]models.ScreeningRun), args.Error(1)
}
