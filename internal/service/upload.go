package service

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/mansoorceksport/image-uploader/internal/domain"
	"github.com/mansoorceksport/image-uploader/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// UploadServiceImpl implements domain.UploadService
type UploadServiceImpl struct {
	host    domain.ImageHost
	timeout time.Duration
	metrics *telemetry.UploadMetrics
}

// uploadOutcome is delivered exactly once per upload
type uploadOutcome struct {
	image *domain.UploadedImage
	err   error
}

// NewUploadService creates a new upload service.
// A zero timeout leaves the call bounded only by the request context.
func NewUploadService(host domain.ImageHost, timeout time.Duration) *UploadServiceImpl {
	metrics, err := telemetry.NewUploadMetrics()
	if err != nil {
		log.Printf("Warning: failed to create upload metrics: %v", err)
	}
	return &UploadServiceImpl{
		host:    host,
		timeout: timeout,
		metrics: metrics,
	}
}

// Upload streams the buffered file to the provider under req.Destination.
// The provider always receives overwrite=true and resource type image.
func (s *UploadServiceImpl) Upload(ctx context.Context, req domain.UploadRequest) (*domain.UploadedImage, error) {
	if req.Data == nil {
		return nil, domain.ErrNoFileProvided
	}

	ctx, span := otel.Tracer(telemetry.TracerName).Start(ctx, "provider.upload",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("provider", s.host.Name()),
			attribute.String("upload.folder", req.Destination),
			attribute.Int("upload.size", len(req.Data)),
		),
	)
	defer span.End()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	opts := domain.UploadOptions{
		Folder:       req.Destination,
		PublicID:     req.PublicID,
		Overwrite:    true,
		ResourceType: domain.ResourceTypeImage,
		ContentType:  contentType(req),
		Size:         int64(len(req.Data)),
	}

	image, err := s.stream(ctx, req.Data, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.Record(ctx, s.host.Name(), telemetry.OutcomeFailure, opts.Size)
		return nil, err
	}

	span.SetAttributes(attribute.String("upload.public_id", image.PublicID))
	s.metrics.Record(ctx, s.host.Name(), telemetry.OutcomeSuccess, opts.Size)
	return image, nil
}

// contentType sniffs the payload and falls back to the client's declared type
func contentType(req domain.UploadRequest) string {
	detected := mimetype.Detect(req.Data)
	if detected.Is("application/octet-stream") && req.ContentType != "" {
		return req.ContentType
	}
	return detected.String()
}

// stream pipes data into the provider and waits for its single result
func (s *UploadServiceImpl) stream(ctx context.Context, data []byte, opts domain.UploadOptions) (*domain.UploadedImage, error) {
	pr, pw := io.Pipe()

	go func() {
		_, err := pw.Write(data)
		pw.CloseWithError(err)
	}()

	done := make(chan uploadOutcome, 1)
	go func() {
		image, err := s.host.Upload(ctx, pr, opts)
		// unblocks the writer if the provider stopped reading early
		pr.Close()
		done <- uploadOutcome{image: image, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return nil, domain.NewProviderError(s.host.Name(), out.err)
		}
		if out.image == nil {
			return nil, &domain.ProviderError{Provider: s.host.Name(), Message: "provider returned no result"}
		}
		return out.image, nil
	case <-ctx.Done():
		pr.CloseWithError(ctx.Err())
		return nil, domain.NewProviderError(s.host.Name(), ctx.Err())
	}
}
