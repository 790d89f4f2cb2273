package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"alfredoptarigan/resume-shortlister/internal/models"
	"alfredoptarigan/resume-shortlister/internal/services"
)

type MockCandidateVectorStore struct {
	mock.Mock
}

func (m *MockCandidateVectorStore) InitCollection(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCandidateVectorStore) Upsert(ctx context.Context, points []services.CandidatePoint) error {
	args := m.Called(ctx, points)
	return args.Error(0)
}

func (m *MockCandidateVectorStore) Search(ctx context.Context, vector []float32, role string, limit int) ([]services.CandidateHit, error) {
	args := m.Called(ctx, vector, role, limit)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]services.CandidateHit), args.Error(1)
}

func (m *MockCandidateVectorStore) DeleteBatch(ctx context.Context, batchID string) error {
	args := m.Called(ctx, batchID)
	return args.Error(0)
}

func (m *MockCandidateVectorStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockCandidateIndex struct {
	mock.Mock
}

func (m *MockCandidateIndex) Index(ctx context.Context, batchID, role string, docs []services.ScoredDocument) error {
	args := m.Called(ctx, batchID, role, docs)
	return args.Error(0)
}

func (m *MockCandidateIndex) Search(ctx context.Context, query, role string, limit int) ([]models.CandidateMatch, error) {
	args := m.Called(ctx, query, role, limit)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]models.CandidateMatch), args.Error(1)
}
