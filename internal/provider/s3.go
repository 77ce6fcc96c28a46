package provider

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"bookvault/internal/config"
)

// s3Uploader transfers staged files to an S3-compatible backend (MinIO,
// AWS S3). The secure URL is the configured public base plus the object key.
type s3Uploader struct {
	client     *minio.Client
	bucket     string
	publicBase string
}

func newS3Uploader(cfg config.S3Config) (*s3Uploader, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("s3 credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	u := &s3Uploader{
		client:     cli,
		bucket:     cfg.Bucket,
		publicBase: strings.TrimRight(cfg.PublicBase, "/"),
	}
	if u.publicBase == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		u.publicBase = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Ensure bucket exists.
	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return u, nil
}

// Upload copies the staged file into the bucket under the public ID, keeping
// the staged file's extension so the key stays recognizable.
func (u *s3Uploader) Upload(ctx context.Context, stagedPath, publicID string) (string, error) {
	key := publicID + filepath.Ext(stagedPath)
	contentType := mime.TypeByExtension(filepath.Ext(stagedPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if _, err := u.client.FPutObject(ctx, u.bucket, key, stagedPath, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return "", fmt.Errorf("s3 put object: %w", err)
	}
	return u.publicBase + "/" + key, nil
}
