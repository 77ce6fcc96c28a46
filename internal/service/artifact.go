package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookvault/internal/filter"
	"bookvault/internal/model"
	"bookvault/internal/notifier"
	"bookvault/internal/provider"
	"bookvault/internal/registry"
	"bookvault/internal/resolver"
	"bookvault/internal/staging"
)

// IngestInput carries everything the ingest pipeline needs about one upload.
type IngestInput struct {
	// DisplayName is the caller-supplied label; falls back to the original
	// filename's stem when empty.
	DisplayName string
	Description string
	// MediaType is the client-declared MIME type, validated before staging.
	MediaType string
	// OriginalFilename contributes the staged file's extension and the
	// display-name fallback.
	OriginalFilename string
	// ShareURL is an optional external sharing link; a download locator is
	// derived from it at ingest time when it matches the expected shape.
	ShareURL string
}

// ArtifactListResult is the service-level DTO for paginated artifacts.
type ArtifactListResult struct {
	Items []model.Artifact `json:"data"`
	Total int              `json:"total"`
}

// ArtifactService defines the use cases for the upload-persist-resolve
// pipeline.
type ArtifactService interface {
	// Ingest validates the declared media type, stages the stream, relays it
	// to the remote store, and persists the artifact record. The record is
	// only visible after the remote upload succeeded.
	Ingest(ctx context.Context, r io.Reader, in IngestInput) (*model.Artifact, error)

	// Get returns a single artifact by its ID.
	Get(ctx context.Context, id string) (*model.Artifact, error)

	// List returns artifacts newest first using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*ArtifactListResult, error)

	// Resolve turns a stored artifact into a fetchable download URL.
	Resolve(ctx context.Context, id string) (string, error)

	// Notify resolves the artifact and delivers the URL to the recipient.
	Notify(ctx context.Context, id, recipient string) error
}

// artifactService is a concrete implementation of ArtifactService.
type artifactService struct {
	allow    filter.AllowList
	stage    staging.Stager
	store    provider.RemoteStore
	repo     registry.ArtifactRepository
	resolver *resolver.Resolver
	notify   notifier.Notifier // nil when notifications are disabled
}

// NewArtifactService constructs a new ArtifactService. notify may be nil.
func NewArtifactService(
	allow filter.AllowList,
	stage staging.Stager,
	store provider.RemoteStore,
	repo registry.ArtifactRepository,
	res *resolver.Resolver,
	notify notifier.Notifier,
) ArtifactService {
	return &artifactService{
		allow:    allow,
		stage:    stage,
		store:    store,
		repo:     repo,
		resolver: res,
		notify:   notify,
	}
}

// Ingest runs the pipeline sequentially: filter, stage, upload, insert.
// The staged file is released by the remote store client on every path; a
// rejected media type never reaches the disk.
func (s *artifactService) Ingest(ctx context.Context, r io.Reader, in IngestInput) (*model.Artifact, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	if !s.allow.Accept(in.MediaType) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMediaType, in.MediaType)
	}

	displayName := in.DisplayName
	if displayName == "" {
		displayName = stem(in.OriginalFilename)
	}
	downloadURL := s.resolver.DeriveShareDownload(in.ShareURL)

	stagedPath, err := s.stage.Stage(r, displayName, in.OriginalFilename)
	if err != nil {
		return nil, &StagingError{Err: err}
	}

	storageURL, err := s.store.Upload(ctx, stagedPath, publicID(displayName))
	if err != nil {
		return nil, &RemoteUploadError{Err: err}
	}

	a := &model.Artifact{
		ID:          uuid.New().String(),
		DisplayName: displayName,
		Description: in.Description,
		StorageURL:  storageURL,
		DownloadURL: downloadURL,
		CreatedAt:   time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, a)
	if err != nil {
		// The remote write is billable and irreversible from here; report the
		// orphan distinctly instead of pretending the ingest succeeded.
		return nil, &PartialIngestError{StorageURL: storageURL, Err: err}
	}
	return stored, nil
}

// Get returns an artifact by ID.
func (s *artifactService) Get(ctx context.Context, id string) (*model.Artifact, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	return a, nil
}

// List returns paginated artifacts without exposing repository types.
func (s *artifactService) List(ctx context.Context, limit, offset int) (*ArtifactListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, registry.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	return &ArtifactListResult{Items: res.Items, Total: res.Total}, nil
}

// Resolve looks up the record and derives its download URL. Resolution is
// pure string work on the stored locators; no provider call happens here.
func (s *artifactService) Resolve(ctx context.Context, id string) (string, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return s.resolver.Resolve(a)
}

// Notify resolves the artifact and hands the URL to the notifier.
func (s *artifactService) Notify(ctx context.Context, id, recipient string) error {
	if recipient == "" {
		return ErrRecipientRequired
	}
	if s.notify == nil {
		return ErrNotifierUnavailable
	}
	url, err := s.Resolve(ctx, id)
	if err != nil {
		return err
	}
	return s.notify.Send(ctx, recipient, url)
}

// stem returns the filename without directory or extension.
func stem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// publicID is the provider-side display key for the upload. Collisions are
// provider-defined behavior (last write may overwrite).
func publicID(displayName string) string {
	if displayName == "" || displayName == "." {
		return "default"
	}
	return displayName
}
