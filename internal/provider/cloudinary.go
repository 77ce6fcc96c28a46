package provider

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"bookvault/internal/config"
)

// cloudinaryUploader transfers staged files through the Cloudinary upload API.
type cloudinaryUploader struct {
	cld          *cloudinary.Cloudinary
	folder       string
	resourceType string
}

func newCloudinaryUploader(cfg config.CloudinaryConfig) (*cloudinaryUploader, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials are required")
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("create cloudinary client: %w", err)
	}
	resourceType := cfg.ResourceType
	if resourceType == "" {
		resourceType = "raw"
	}
	return &cloudinaryUploader{
		cld:          cld,
		folder:       cfg.Folder,
		resourceType: resourceType,
	}, nil
}

// Upload sends the staged file and returns the secure URL. Provider failures
// surface the provider's message only; credentials never appear in errors.
func (u *cloudinaryUploader) Upload(ctx context.Context, stagedPath, publicID string) (string, error) {
	res, err := u.cld.Upload.Upload(ctx, stagedPath, uploader.UploadParams{
		PublicID:     publicID,
		Folder:       u.folder,
		ResourceType: u.resourceType,
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary: %w", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary: %s", res.Error.Message)
	}
	return res.SecureURL, nil
}
