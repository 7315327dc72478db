package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	appConfig "github.com/mansoorceksport/image-uploader/internal/config"
	"github.com/mansoorceksport/image-uploader/internal/domain"
	"github.com/oklog/ulid/v2"
)

const s3ProviderName = "s3"

// SeaweedS3ImageHost implements domain.ImageHost on an S3-compatible store using AWS SDK v2
type SeaweedS3ImageHost struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewSeaweedS3ImageHost creates a new S3 image host and makes sure the bucket exists
func NewSeaweedS3ImageHost(ctx context.Context, cfg appConfig.S3Config) (*SeaweedS3ImageHost, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config, %v", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true // Required for many S3-compatible stores including SeaweedFS
		// SeaweedFS and older MinIO builds reject the default CRC32 checksums
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = cfg.Endpoint
	}

	host := &SeaweedS3ImageHost{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}

	if err := host.ensureBucket(ctx); err != nil {
		return nil, err
	}

	return host, nil
}

// Name returns the provider name
func (h *SeaweedS3ImageHost) Name() string {
	return s3ProviderName
}

// Upload stores the stream under <folder>/<public id> and returns its URL.
// A missing public id is replaced by a fresh ULID.
func (h *SeaweedS3ImageHost) Upload(ctx context.Context, r io.Reader, opts domain.UploadOptions) (*domain.UploadedImage, error) {
	publicID := opts.PublicID
	if publicID == "" {
		publicID = ulid.Make().String()
	}
	key := path.Join(opts.Folder, publicID)

	if !opts.Overwrite {
		exists, err := h.objectExists(ctx, key)
		if err != nil {
			return nil, domain.NewProviderError(s3ProviderName, err)
		}
		if exists {
			return nil, &domain.ProviderError{Provider: s3ProviderName, Message: domain.ErrAssetExists.Error(), Err: domain.ErrAssetExists}
		}
	}

	// SigV4 over plain HTTP needs a seekable body
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, domain.NewProviderError(s3ProviderName, err)
	}

	contentType := opts.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = h.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(h.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, domain.NewProviderError(s3ProviderName, fmt.Errorf("failed to upload file to S3: %w", err))
	}

	// Format: {PublicURL}/{Bucket}/{Key}
	return &domain.UploadedImage{
		URL:      fmt.Sprintf("%s/%s/%s", h.publicURL, h.bucket, key),
		PublicID: key,
	}, nil
}

func (h *SeaweedS3ImageHost) objectExists(ctx context.Context, key string) (bool, error) {
	_, err := h.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check object %s: %w", key, err)
}

// ensureBucket checks if bucket exists, creating it if necessary
func (h *SeaweedS3ImageHost) ensureBucket(ctx context.Context) error {
	_, err := h.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(h.bucket),
	})

	if err != nil {
		_, err = h.client.CreateBucket(ctx, &s3.CreateBucketInput{
			Bucket: aws.String(h.bucket),
		})
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", h.bucket, err)
		}
	}
	return nil
}
