package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockRemoteStore struct {
	mock.Mock
}

func (m *MockRemoteStore) Upload(ctx context.Context, stagedPath, publicID string) (string, error) {
	args := m.Called(ctx, stagedPath, publicID)
	return args.String(0), args.Error(1)
}
