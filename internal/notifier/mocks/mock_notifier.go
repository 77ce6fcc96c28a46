package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, recipient, link string) error {
	args := m.Called(ctx, recipient, link)
	return args.Error(0)
}
