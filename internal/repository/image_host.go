package repository

import (
	"context"
	"fmt"

	appConfig "github.com/mansoorceksport/image-uploader/internal/config"
	"github.com/mansoorceksport/image-uploader/internal/domain"
)

// NewImageHost builds the provider driver selected by IMAGE_PROVIDER
func NewImageHost(ctx context.Context, cfg *appConfig.Config) (domain.ImageHost, error) {
	switch cfg.Provider.Driver {
	case appConfig.ProviderCloudinary:
		return NewCloudinaryImageHost(cfg.Cloudinary)
	case appConfig.ProviderS3:
		return NewSeaweedS3ImageHost(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown image provider %q", cfg.Provider.Driver)
	}
}
