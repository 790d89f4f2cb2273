package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockExportStore struct {
	mock.Mock
}

func (m *MockExportStore) Archive(ctx context.Context, name string, data []byte) (string, error) {
	args := m.Called(ctx, name, data)
	return args.String(0), args.Error(1)
}

func (m *MockExportStore) Fetch(ctx context.Context, name string) ([]byte, error) {
	args := m.Called(ctx, name)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]byte), args.Error(1)
}
