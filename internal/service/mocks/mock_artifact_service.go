package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"bookvault/internal/model"
	"bookvault/internal/service"
)

type MockArtifactService struct {
	mock.Mock
}

func (m *MockArtifactService) Ingest(ctx context.Context, r io.Reader, in service.IngestInput) (*model.Artifact, error) {
	args := m.Called(ctx, r, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Artifact), args.Error(1)
}

func (m *MockArtifactService) Get(ctx context.Context, id string) (*model.Artifact, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Artifact), args.Error(1)
}

func (m *MockArtifactService) List(ctx context.Context, limit, offset int) (*service.ArtifactListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ArtifactListResult), args.Error(1)
}

func (m *MockArtifactService) Resolve(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockArtifactService) Notify(ctx context.Context, id, recipient string) error {
	args := m.Called(ctx, id, recipient)
	return args.Error(0)
}
