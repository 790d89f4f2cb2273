package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockModelInvoker struct {
	mock.Mock
}

func (m *MockModelInvoker) Invoke(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]float32), args.Error(1)
}
