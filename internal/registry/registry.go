package registry

import (
	"context"
	"errors"

	"bookvault/internal/model"
)

// ErrStorageLocatorRequired is returned by Create when the record carries no
// storage locator; registry rows never exist without one.
var ErrStorageLocatorRequired = errors.New("storage locator is required")

// ArtifactRepository defines data access for artifact records using SQL
// queries only. No business logic here — strictly persistence operations.
// Records are insert-only: no update, and deletion is an external
// administrative action outside this service.
type ArtifactRepository interface {
	// Create inserts a new artifact record. The caller provides ID and
	// CreatedAt; the stored record is returned (may include values set by
	// the database).
	Create(ctx context.Context, a *model.Artifact) (*model.Artifact, error)

	// FindByID returns an artifact by its ID. An unknown ID surfaces
	// sql.ErrNoRows, which callers map to their own not-found error.
	FindByID(ctx context.Context, id string) (*model.Artifact, error)

	// List returns a page of artifacts ordered newest first, with the total
	// row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Artifact], error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
