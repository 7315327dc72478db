package handler

import (
	"errors"
	"io"
	"log"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/mansoorceksport/image-uploader/internal/domain"
	"github.com/mansoorceksport/image-uploader/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// Form fields accepted by POST /upload/:destination
const (
	imageField    = "image"
	publicIDField = "public_id"
)

// UploadHandler handles HTTP requests for image uploads
type UploadHandler struct {
	uploadService domain.UploadService
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploadService domain.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// UploadImage handles POST /upload/:destination
func (h *UploadHandler) UploadImage(c *fiber.Ctx) error {
	// Params and form values point into fasthttp buffers that are reused after return
	destination, err := decodeDestination(utils.CopyString(c.Params("destination")))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid destination",
			"error":   err.Error(),
		})
	}

	req, err := readUploadRequest(c)
	if err != nil {
		if errors.Is(err, domain.ErrNoFileProvided) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "No file uploaded",
			})
		}
		log.Printf("Error reading uploaded file (destination=%s): %v", destination, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error uploading image",
			"error":   err.Error(),
		})
	}
	req.Destination = destination

	telemetry.AddSpanEvent(c, "upload.received",
		attribute.String("upload.folder", destination),
		attribute.Int("upload.size", len(req.Data)),
	)

	image, err := h.uploadService.Upload(c.UserContext(), req)
	if err != nil {
		if errors.Is(err, domain.ErrNoFileProvided) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "No file uploaded",
			})
		}
		log.Printf("Error uploading to provider (destination=%s): %v", destination, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error uploading image",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":   "Image uploaded successfully",
		"url":       image.URL,
		"public_id": image.PublicID,
	})
}

// decodeDestination undoes the percent-encoding of the path segment.
// Fiber leaves params raw; an encoded "/" becomes a nested folder.
func decodeDestination(raw string) (string, error) {
	return url.PathUnescape(raw)
}

// readUploadRequest pulls the first "image" file into memory.
// A body that is not multipart counts as no file.
func readUploadRequest(c *fiber.Ctx) (domain.UploadRequest, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return domain.UploadRequest{}, domain.ErrNoFileProvided
	}

	files := form.File[imageField]
	if len(files) == 0 {
		return domain.UploadRequest{}, domain.ErrNoFileProvided
	}
	imageFile := files[0]

	fileHandle, err := imageFile.Open()
	if err != nil {
		return domain.UploadRequest{}, err
	}
	defer fileHandle.Close()

	data, err := io.ReadAll(fileHandle)
	if err != nil {
		return domain.UploadRequest{}, err
	}

	req := domain.UploadRequest{
		Data:        data,
		ContentType: imageFile.Header.Get(fiber.HeaderContentType),
	}
	if ids := form.Value[publicIDField]; len(ids) > 0 {
		req.PublicID = utils.CopyString(ids[0])
	}
	return req, nil
}
