// Package provider uploads staged files to the remote object store and owns
// the release of the staged copy: its lifetime is exactly the duration of one
// upload attempt, success or failure.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"bookvault/internal/config"
)

// RemoteStore is the boundary the ingest pipeline depends on.
type RemoteStore interface {
	// Upload sends the staged file to the remote store under publicID and
	// returns the persistent secure access URL. The staged file is removed
	// on every exit path.
	Upload(ctx context.Context, stagedPath, publicID string) (string, error)
}

// Uploader is the driver-level contract: transfer one local file, return its
// secure URL. Drivers do not touch the staged file's lifecycle.
type Uploader interface {
	Upload(ctx context.Context, stagedPath, publicID string) (string, error)
}

// Client implements RemoteStore over a concrete driver and guarantees the
// staged file is deleted after the attempt regardless of outcome.
type Client struct {
	driver Uploader
}

// NewClient wraps a driver in the staged-file cleanup discipline.
func NewClient(driver Uploader) *Client {
	return &Client{driver: driver}
}

// New builds a RemoteStore from configuration, selecting the driver.
func New(cfg config.ProviderConfig) (*Client, error) {
	switch cfg.Driver {
	case "cloudinary":
		drv, err := newCloudinaryUploader(cfg.Cloudinary)
		if err != nil {
			return nil, err
		}
		return NewClient(drv), nil
	case "s3":
		drv, err := newS3Uploader(cfg.S3)
		if err != nil {
			return nil, err
		}
		return NewClient(drv), nil
	default:
		return nil, fmt.Errorf("unknown provider driver %q", cfg.Driver)
	}
}

var _ RemoteStore = (*Client)(nil)

// Upload transfers stagedPath and unconditionally removes it afterward.
func (c *Client) Upload(ctx context.Context, stagedPath, publicID string) (string, error) {
	if stagedPath == "" {
		return "", errors.New("provider: staged path is required")
	}
	defer func() {
		if err := os.Remove(stagedPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("provider: remove staged file %q: %v", stagedPath, err)
		}
	}()

	url, err := c.driver.Upload(ctx, stagedPath, publicID)
	if err != nil {
		return "", fmt.Errorf("remote upload %q: %w", publicID, err)
	}
	if url == "" {
		return "", fmt.Errorf("remote upload %q: provider returned empty URL", publicID)
	}
	return url, nil
}
