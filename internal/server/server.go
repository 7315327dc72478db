package server

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/mansoorceksport/image-uploader/internal/config"
	"github.com/mansoorceksport/image-uploader/internal/domain"
	"github.com/mansoorceksport/image-uploader/internal/handler"
	"github.com/mansoorceksport/image-uploader/internal/middleware"
	"github.com/mansoorceksport/image-uploader/internal/service"
	"github.com/mansoorceksport/image-uploader/internal/telemetry"
	"github.com/redis/go-redis/v9"
)

// AppDependencies holds the dependencies required to start the application
type AppDependencies struct {
	Config    *config.Config
	ImageHost domain.ImageHost
	// RedisClient enables idempotent replay when non-nil
	RedisClient redis.UniversalClient
}

// NewApp creates and configures the Fiber application with the given dependencies
func NewApp(deps AppDependencies) *fiber.App {
	uploadService := service.NewUploadService(deps.ImageHost, deps.Config.Provider.UploadTimeout)
	uploadHandler := handler.NewUploadHandler(uploadService)

	app := fiber.New(fiber.Config{
		AppName:      "Image Uploader API",
		BodyLimit:    deps.Config.BodyLimitBytes(),
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, X-Correlation-ID",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(telemetry.FiberMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "healthy",
			"service":  "image-uploader",
			"provider": deps.ImageHost.Name(),
		})
	})

	upload := app.Group("/upload")
	if deps.RedisClient != nil {
		upload.Use(middleware.Idempotency(deps.RedisClient, deps.Config.Redis.IdempotencyTTL))
	}
	upload.Post("/:destination", uploadHandler.UploadImage)

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	if code >= fiber.StatusInternalServerError {
		log.Printf("Error: %v", err)
	}
	return c.Status(code).JSON(fiber.Map{
		"message": utils.StatusMessage(code),
		"error":   err.Error(),
	})
}
