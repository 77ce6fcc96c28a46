package postgres

import (
	"context"
	"database/sql"

	"bookvault/internal/model"
	"bookvault/internal/registry"
)

// ArtifactPostgres is a PostgreSQL implementation of registry.ArtifactRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type ArtifactPostgres struct {
	db *sql.DB
}

// NewArtifactPostgres creates a new ArtifactPostgres repository.
func NewArtifactPostgres(db *sql.DB) *ArtifactPostgres {
	return &ArtifactPostgres{db: db}
}

var _ registry.ArtifactRepository = (*ArtifactPostgres)(nil)

// Create inserts a new artifact row and returns the stored record.
// A record without a storage locator is rejected before touching the store.
func (r *ArtifactPostgres) Create(ctx context.Context, a *model.Artifact) (*model.Artifact, error) {
	if a.StorageURL == "" {
		return nil, registry.ErrStorageLocatorRequired
	}

	const q = `
		INSERT INTO artifacts (id, display_name, description, storage_url, download_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, display_name, description, storage_url, download_url, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		a.ID,
		a.DisplayName,
		a.Description,
		a.StorageURL,
		a.DownloadURL,
		a.CreatedAt,
	)
	return scanArtifact(row)
}

// FindByID fetches a single artifact by its ID.
func (r *ArtifactPostgres) FindByID(ctx context.Context, id string) (*model.Artifact, error) {
	const q = `
		SELECT id, display_name, description, storage_url, download_url, created_at
		FROM artifacts
		WHERE id = $1
	`
	return scanArtifact(r.db.QueryRowContext(ctx, q, id))
}

// List returns artifacts newest first using LIMIT/OFFSET pagination and a
// total count.
func (r *ArtifactPostgres) List(ctx context.Context, pq registry.PageQuery) (*registry.PageResult[model.Artifact], error) {
	const qCount = `SELECT COUNT(*) FROM artifacts`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT id, display_name, description, storage_url, download_url, created_at
		FROM artifacts
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Artifact, 0)
	for rows.Next() {
		var a model.Artifact
		if err := rows.Scan(
			&a.ID,
			&a.DisplayName,
			&a.Description,
			&a.StorageURL,
			&a.DownloadURL,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &registry.PageResult[model.Artifact]{
		Items: items,
		Total: total,
	}, nil
}

func scanArtifact(row *sql.Row) (*model.Artifact, error) {
	var a model.Artifact
	if err := row.Scan(
		&a.ID,
		&a.DisplayName,
		&a.Description,
		&a.StorageURL,
		&a.DownloadURL,
		&a.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}
