package model

import "time"

// Artifact is the durable record for a single ingested document.
// This is a pure domain model with no database-specific dependencies or tags.
// StorageURL is the locator returned by the remote store and is immutable once
// written; DownloadURL is the optional derived locator computed from a
// caller-supplied sharing link at ingest time.
type Artifact struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name,omitempty"`
	Description string    `json:"description,omitempty"`
	StorageURL  string    `json:"storage_url"`
	DownloadURL string    `json:"download_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
