package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("IMAGE_PROVIDER", "")
	t.Setenv("PORT", "")
	t.Setenv("UPLOAD_TIMEOUT", "")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, ProviderCloudinary, cfg.Provider.Driver)
	assert.Equal(t, time.Duration(0), cfg.Provider.UploadTimeout)
	assert.Equal(t, 10*time.Minute, cfg.Redis.IdempotencyTTL)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoad_MissingCredentialsAreNotValidated(t *testing.T) {
	t.Setenv("IMAGE_PROVIDER", ProviderCloudinary)
	t.Setenv("CLOUDINARY_CLOUD_NAME", "")
	t.Setenv("CLOUDINARY_API_KEY", "")
	t.Setenv("CLOUDINARY_API_SECRET", "")

	_, err := Load()
	assert.NoError(t, err)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_UPLOAD_SIZE_MB", "2")
	t.Setenv("IMAGE_PROVIDER", ProviderS3)
	t.Setenv("S3_ENDPOINT", "http://localhost:8333")
	t.Setenv("UPLOAD_TIMEOUT", "45s")
	t.Setenv("OTEL_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 2*1024*1024, cfg.BodyLimitBytes())
	assert.Equal(t, ProviderS3, cfg.Provider.Driver)
	assert.Equal(t, "http://localhost:8333", cfg.S3.Endpoint)
	assert.Equal(t, 45*time.Second, cfg.Provider.UploadTimeout)
	assert.True(t, cfg.OTEL.Enabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "cloudinary without credentials",
			cfg:  Config{Server: ServerConfig{MaxUploadSizeMB: 1}, Provider: ProviderConfig{Driver: ProviderCloudinary}},
		},
		{
			name:    "s3 without endpoint",
			cfg:     Config{Server: ServerConfig{MaxUploadSizeMB: 1}, Provider: ProviderConfig{Driver: ProviderS3}},
			wantErr: "S3_ENDPOINT is required",
		},
		{
			name:    "unknown driver",
			cfg:     Config{Server: ServerConfig{MaxUploadSizeMB: 1}, Provider: ProviderConfig{Driver: "imgur"}},
			wantErr: `unknown IMAGE_PROVIDER "imgur"`,
		},
		{
			name:    "non-positive body limit",
			cfg:     Config{Provider: ProviderConfig{Driver: ProviderCloudinary}},
			wantErr: "MAX_UPLOAD_SIZE_MB must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetEnvAsDuration_InvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_TIMEOUT", "soon")
	assert.Equal(t, 5*time.Second, getEnvAsDuration("SOME_TIMEOUT", 5*time.Second))
}
