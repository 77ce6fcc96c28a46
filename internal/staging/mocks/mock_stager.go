package mocks

import (
	"io"

	"github.com/stretchr/testify/mock"
)

type MockStager struct {
	mock.Mock
}

func (m *MockStager) Stage(r io.Reader, suggestedName, originalName string) (string, error) {
	args := m.Called(r, suggestedName, originalName)
	return args.String(0), args.Error(1)
}
