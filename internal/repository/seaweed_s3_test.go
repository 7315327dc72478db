package repository

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	appConfig "github.com/mansoorceksport/image-uploader/internal/config"
	"github.com/mansoorceksport/image-uploader/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 is a minimal path-style S3 endpoint for a single bucket
type fakeS3 struct {
	mu            sync.Mutex
	bucket        string
	bucketExists  bool
	objects       map[string][]byte
	contentTypes  map[string]string
	createdBucket bool
}

func newFakeS3(bucket string, exists bool) *fakeS3 {
	return &fakeS3{
		bucket:       bucket,
		bucketExists: exists,
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p := strings.TrimPrefix(r.URL.Path, "/")
	bucket, key, _ := strings.Cut(p, "/")
	if bucket != f.bucket {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch {
	case key == "" && r.Method == http.MethodHead:
		if !f.bucketExists {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case key == "" && r.Method == http.MethodPut:
		f.bucketExists = true
		f.createdBucket = true
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodHead:
		if _, ok := f.objects[key]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[key] = body
		f.contentTypes[key] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestS3Host(t *testing.T, fake *fakeS3) *SeaweedS3ImageHost {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	host, err := NewSeaweedS3ImageHost(context.Background(), appConfig.S3Config{
		Endpoint:  srv.URL,
		Region:    "us-east-1",
		Bucket:    fake.bucket,
		AccessKey: "any",
		SecretKey: "any",
		PublicURL: "https://cdn.example.test/",
	})
	require.NoError(t, err)
	return host
}

func TestSeaweedS3ImageHost_CreatesMissingBucket(t *testing.T) {
	fake := newFakeS3("images", false)
	newTestS3Host(t, fake)
	assert.True(t, fake.createdBucket)
}

func TestSeaweedS3ImageHost_Upload(t *testing.T) {
	fake := newFakeS3("images", true)
	host := newTestS3Host(t, fake)

	data := []byte("\x89PNG\r\n\x1a\nab")
	img, err := host.Upload(context.Background(), bytes.NewReader(data), domain.UploadOptions{
		Folder:       "avatars",
		PublicID:     "a",
		Overwrite:    true,
		ResourceType: domain.ResourceTypeImage,
		ContentType:  "image/png",
	})
	require.NoError(t, err)

	assert.Equal(t, "avatars/a", img.PublicID)
	assert.Equal(t, "https://cdn.example.test/images/avatars/a", img.URL)
	assert.Equal(t, data, fake.objects["avatars/a"])
	assert.Equal(t, "image/png", fake.contentTypes["avatars/a"])
	assert.False(t, fake.createdBucket)
}

func TestSeaweedS3ImageHost_AssignsULIDWhenNoPublicID(t *testing.T) {
	fake := newFakeS3("images", true)
	host := newTestS3Host(t, fake)

	img, err := host.Upload(context.Background(), strings.NewReader("x"), domain.UploadOptions{Folder: "avatars", Overwrite: true})
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(img.PublicID, "avatars/"))
	assert.Len(t, strings.TrimPrefix(img.PublicID, "avatars/"), 26)
}

func TestSeaweedS3ImageHost_OverwriteKeepsSingleAsset(t *testing.T) {
	fake := newFakeS3("images", true)
	host := newTestS3Host(t, fake)
	opts := domain.UploadOptions{Folder: "avatars", PublicID: "me", Overwrite: true}

	_, err := host.Upload(context.Background(), strings.NewReader("first"), opts)
	require.NoError(t, err)
	_, err = host.Upload(context.Background(), strings.NewReader("second"), opts)
	require.NoError(t, err)

	assert.Len(t, fake.objects, 1)
	assert.Equal(t, []byte("second"), fake.objects["avatars/me"])
}

func TestSeaweedS3ImageHost_RefusesExistingWithoutOverwrite(t *testing.T) {
	fake := newFakeS3("images", true)
	fake.objects["avatars/me"] = []byte("first")
	host := newTestS3Host(t, fake)

	_, err := host.Upload(context.Background(), strings.NewReader("second"), domain.UploadOptions{
		Folder: "avatars", PublicID: "me", Overwrite: false,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAssetExists)
	assert.Equal(t, []byte("first"), fake.objects["avatars/me"])

	_, err = host.Upload(context.Background(), strings.NewReader("new"), domain.UploadOptions{
		Folder: "avatars", PublicID: "other", Overwrite: false,
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), fake.objects["avatars/other"])
}
