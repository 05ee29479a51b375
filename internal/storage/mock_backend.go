package storage

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Name() string {
	return "mock"
}

func (m *MockBackend) Upload(ctx context.Context, in UploadInput) (UploadResult, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(UploadResult), args.Error(1)
}

func (m *MockBackend) Destroy(ctx context.Context, publicID string) error {
	args := m.Called(ctx, publicID)
	return args.Error(0)
}
