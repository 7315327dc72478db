package repository

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	appConfig "github.com/mansoorceksport/image-uploader/internal/config"
	"github.com/mansoorceksport/image-uploader/internal/domain"
)

const cloudinaryProviderName = "cloudinary"

// cloudinaryUploader is the subset of *uploader.API used here
type cloudinaryUploader interface {
	Upload(ctx context.Context, file interface{}, uploadParams uploader.UploadParams) (*uploader.UploadResult, error)
}

// CloudinaryImageHost implements domain.ImageHost on top of the Cloudinary upload API
type CloudinaryImageHost struct {
	uploader cloudinaryUploader
}

// NewCloudinaryImageHost creates a Cloudinary client from account credentials.
// Empty credentials are accepted; Cloudinary rejects them per request.
func NewCloudinaryImageHost(cfg appConfig.CloudinaryConfig) (*CloudinaryImageHost, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("unable to create cloudinary client: %w", err)
	}

	return &CloudinaryImageHost{uploader: &cld.Upload}, nil
}

// Name returns the provider name
func (h *CloudinaryImageHost) Name() string {
	return cloudinaryProviderName
}

// Upload streams r to Cloudinary and returns its secure URL and public id
func (h *CloudinaryImageHost) Upload(ctx context.Context, r io.Reader, opts domain.UploadOptions) (*domain.UploadedImage, error) {
	params := uploader.UploadParams{
		Folder:       opts.Folder,
		PublicID:     opts.PublicID,
		Overwrite:    api.Bool(opts.Overwrite),
		ResourceType: opts.ResourceType,
	}

	result, err := h.uploader.Upload(ctx, r, params)
	if err != nil {
		return nil, domain.NewProviderError(cloudinaryProviderName, err)
	}
	// Cloudinary reports API errors in the body rather than as a transport error
	if result == nil {
		return nil, &domain.ProviderError{Provider: cloudinaryProviderName, Message: "empty response from cloudinary"}
	}
	if result.Error.Message != "" {
		return nil, &domain.ProviderError{Provider: cloudinaryProviderName, Message: result.Error.Message}
	}

	return &domain.UploadedImage{
		URL:      result.SecureURL,
		PublicID: result.PublicID,
	}, nil
}
