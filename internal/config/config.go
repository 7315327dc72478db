package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Supported image provider drivers
const (
	ProviderCloudinary = "cloudinary"
	ProviderS3         = "s3"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Provider   ProviderConfig
	Cloudinary CloudinaryConfig
	S3         S3Config
	Redis      RedisConfig
	OTEL       OTELConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	MaxUploadSizeMB int64
}

// ProviderConfig selects the image host and bounds a single upload call
type ProviderConfig struct {
	Driver        string
	UploadTimeout time.Duration // zero means no timeout beyond the provider client's own
}

// CloudinaryConfig holds Cloudinary account credentials
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

// S3Config holds configuration for an S3-compatible store (SeaweedFS, MinIO)
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	PublicURL string
}

// RedisConfig holds Redis connection configuration for idempotent replay.
// An empty Addr disables it.
type RedisConfig struct {
	Addr           string
	Password       string
	IdempotencyTTL time.Duration
}

// OTELConfig holds OpenTelemetry exporter configuration
type OTELConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string
	InstanceID     string
	Token          string
}

// Load reads configuration from environment variables
// It attempts to load from .env file first, then falls back to system env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "3000"),
			MaxUploadSizeMB: getEnvAsInt64("MAX_UPLOAD_SIZE_MB", 10),
		},
		Provider: ProviderConfig{
			Driver:        getEnv("IMAGE_PROVIDER", ProviderCloudinary),
			UploadTimeout: getEnvAsDuration("UPLOAD_TIMEOUT", 0),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
			APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		},
		S3: S3Config{
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			Region:    getEnv("S3_REGION", "us-east-1"),
			Bucket:    getEnv("S3_BUCKET", "images"),
			AccessKey: getEnv("S3_ACCESS_KEY", "any"),
			SecretKey: getEnv("S3_SECRET_KEY", "any"),
			PublicURL: getEnv("S3_PUBLIC_URL", ""),
		},
		Redis: RedisConfig{
			Addr:           getEnv("REDIS_ADDR", ""),
			Password:       getEnv("REDIS_PASSWORD", ""),
			IdempotencyTTL: getEnvAsDuration("IDEMPOTENCY_TTL", 10*time.Minute),
		},
		OTEL: OTELConfig{
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "image-uploader"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			Environment:    getEnv("OTEL_ENVIRONMENT", "development"),
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			InstanceID:     getEnv("OTEL_INSTANCE_ID", ""),
			Token:          getEnv("OTEL_TOKEN", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the provider selection.
// Credentials are not checked here; the provider reports auth failures per request.
func (c *Config) Validate() error {
	switch c.Provider.Driver {
	case ProviderCloudinary:
	case ProviderS3:
		if c.S3.Endpoint == "" {
			return fmt.Errorf("S3_ENDPOINT is required when IMAGE_PROVIDER=%s", ProviderS3)
		}
	default:
		return fmt.Errorf("unknown IMAGE_PROVIDER %q", c.Provider.Driver)
	}
	if c.Server.MaxUploadSizeMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE_MB must be positive")
	}
	return nil
}

// BodyLimitBytes returns the maximum accepted request body size
func (c *Config) BodyLimitBytes() int {
	return int(c.Server.MaxUploadSizeMB * 1024 * 1024)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt64 retrieves an environment variable as int64 or returns a default value
func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go duration strings such as "30s" or "2m"
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
