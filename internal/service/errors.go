package service

import (
	"errors"
	"fmt"
)

var (
	ErrIDRequired           = errors.New("id is required")
	ErrNotFound             = errors.New("artifact not found")
	ErrReaderNil            = errors.New("reader is nil")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrRecipientRequired    = errors.New("recipient is required")
	ErrNotifierUnavailable  = errors.New("notifier is not configured")
	ErrRegistryUnavailable  = errors.New("artifact registry unavailable")
)

// StagingError reports a local I/O failure before any remote action was
// attempted.
type StagingError struct {
	Err error
}

func (e *StagingError) Error() string { return fmt.Sprintf("stage upload: %v", e.Err) }
func (e *StagingError) Unwrap() error { return e.Err }

// RemoteUploadError reports a provider failure; no registry record was
// created.
type RemoteUploadError struct {
	Err error
}

func (e *RemoteUploadError) Error() string { return fmt.Sprintf("remote upload: %v", e.Err) }
func (e *RemoteUploadError) Unwrap() error { return e.Err }

// PartialIngestError reports the one inconsistency this pipeline can leave
// behind: the remote upload succeeded but the registry write failed. The
// remote object is not rolled back; StorageURL identifies the orphaned
// upload so operators can reconcile it.
type PartialIngestError struct {
	StorageURL string
	Err        error
}

func (e *PartialIngestError) Error() string {
	return fmt.Sprintf("partial ingest: uploaded to %s but registry write failed: %v", e.StorageURL, e.Err)
}
func (e *PartialIngestError) Unwrap() error { return e.Err }
