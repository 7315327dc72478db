package domain

import (
	"context"
	"io"
)

// ResourceTypeImage instructs the provider to treat the payload as image data
const ResourceTypeImage = "image"

// UploadedImage is what the provider returns for a stored asset
type UploadedImage struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// UploadOptions are passed to the provider with every upload
type UploadOptions struct {
	Folder       string
	PublicID     string // empty lets the provider assign one
	Overwrite    bool
	ResourceType string
	ContentType  string
	Size         int64
}

// ImageHost defines the interface for an external image-hosting provider
type ImageHost interface {
	// Name identifies the provider in logs and health output
	Name() string
	// Upload streams r to the provider and returns the hosted asset
	Upload(ctx context.Context, r io.Reader, opts UploadOptions) (*UploadedImage, error)
}

// UploadRequest is one received file destined for a folder
type UploadRequest struct {
	Destination string
	PublicID    string
	Data        []byte
	ContentType string
}

// UploadService defines the business logic for image uploads
type UploadService interface {
	Upload(ctx context.Context, req UploadRequest) (*UploadedImage, error)
}
