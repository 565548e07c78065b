package repository

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"glowscan/internal/config"
	"glowscan/internal/domain"
)

func resolver(values map[string]string) *config.Resolver {
	return config.NewResolver(zap.NewNop(), config.MapSource(values))
}

func payload() *domain.ImagePayload {
	return domain.NewImagePayload([]byte("jpeg-bytes"), "face.jpg", "image/jpeg")
}

func TestImgBBHost_Upload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "imgbb-key", r.FormValue("key"))
		assert.Equal(t, "anBlZy1ieXRlcw==", r.FormValue("image"))
		io.WriteString(w, `{"data":{"url":"https://i.ibb.co/abc/face.jpg"},"success":true,"status":200}`)
	}))
	defer srv.Close()

	host := NewImgBBHost(srv.URL, resolver(map[string]string{config.ImgBBAPIKey: "imgbb-key"}), srv.Client(), zap.NewNop())
	url, err := host.Upload(context.Background(), payload())
	require.NoError(t, err)
	assert.Equal(t, "https://i.ibb.co/abc/face.jpg", url)
}

func TestImgBBHost_MissingKey(t *testing.T) {
	host := NewImgBBHost("http://unused.invalid", resolver(nil), nil, zap.NewNop())
	_, err := host.Upload(context.Background(), payload())
	assert.ErrorIs(t, err, domain.ErrMissingCredential)
}

func TestImgBBHost_MalformedEnvelope(t *testing.T) {
	for name, body := range map[string]string{
		"not json":    `<html>oops</html>`,
		"no data":     `{"success":false}`,
		"empty url":   `{"data":{"url":""}}`,
		"wrong shape": `{"data":"x"}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, body)
			}))
			defer srv.Close()

			host := NewImgBBHost(srv.URL, resolver(map[string]string{config.ImgBBAPIKey: "k"}), srv.Client(), zap.NewNop())
			_, err := host.Upload(context.Background(), payload())
			assert.ErrorIs(t, err, domain.ErrProviderRejected)
		})
	}
}

func TestImgBBHost_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":{"message":"Invalid API v1 key."}}`)
	}))
	defer srv.Close()

	host := NewImgBBHost(srv.URL, resolver(map[string]string{config.ImgBBAPIKey: "k"}), srv.Client(), zap.NewNop())
	_, err := host.Upload(context.Background(), payload())
	require.ErrorIs(t, err, domain.ErrProviderRejected)
	assert.Contains(t, err.Error(), "status 400")

	var perr *domain.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "imgbb", perr.Provider)
}

func TestCloudinaryHost_Upload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/demo-cloud/image/upload", r.URL.Path)
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "data:image/jpeg;base64,anBlZy1ieXRlcw==", r.FormValue("file"))
		assert.Equal(t, "ml_default", r.FormValue("upload_preset"))
		assert.Empty(t, r.FormValue("api_key"))
		io.WriteString(w, `{"secure_url":"https://res.cloudinary.com/demo-cloud/image/upload/v1/face.jpg"}`)
	}))
	defer srv.Close()

	host := NewCloudinaryHost(srv.URL, resolver(map[string]string{
		config.CloudinaryCloudName: "demo-cloud",
		config.CloudinaryAPIKey:    "cloud-key",
	}), srv.Client(), zap.NewNop())

	url, err := host.Upload(context.Background(), payload())
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo-cloud/image/upload/v1/face.jpg", url)
}

func TestCloudinaryHost_CustomPreset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "faces", r.FormValue("upload_preset"))
		io.WriteString(w, `{"secure_url":"https://res.cloudinary.com/x.jpg"}`)
	}))
	defer srv.Close()

	host := NewCloudinaryHost(srv.URL, resolver(map[string]string{
		config.CloudinaryCloudName:    "c",
		config.CloudinaryAPIKey:       "k",
		config.CloudinaryUploadPreset: "faces",
	}), srv.Client(), zap.NewNop())

	_, err := host.Upload(context.Background(), payload())
	require.NoError(t, err)
}

func TestCloudinaryHost_MissingCredentials(t *testing.T) {
	var calls int
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
	}))
	defer srv.Close()

	host := NewCloudinaryHost(srv.URL, resolver(map[string]string{config.CloudinaryCloudName: "c"}), srv.Client(), zap.NewNop())
	_, err := host.Upload(context.Background(), payload())
	assert.ErrorIs(t, err, domain.ErrMissingCredential)
	assert.Zero(t, calls)
}

func TestCloudinaryHost_NoSecureURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"url":"http://insecure.example/x.jpg"}`)
	}))
	defer srv.Close()

	host := NewCloudinaryHost(srv.URL, resolver(map[string]string{
		config.CloudinaryCloudName: "c",
		config.CloudinaryAPIKey:    "k",
	}), srv.Client(), zap.NewNop())
	_, err := host.Upload(context.Background(), payload())
	assert.ErrorIs(t, err, domain.ErrProviderRejected)
}

func TestS3Host_Upload(t *testing.T) {
	var gotPath, gotContentType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := &config.S3Config{
		Endpoint:      srv.URL,
		Region:        "us-east-1",
		BucketName:    "faces",
		PublicBaseURL: "https://cdn.example.com",
	}
	host := NewS3Host(cfg, resolver(map[string]string{
		config.S3AccessKeyID:     "AKIDEXAMPLE",
		config.S3SecretAccessKey: "secret",
	}), zap.NewNop())

	url, err := host.Upload(context.Background(), payload())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(gotPath, "/faces/uploads/"), gotPath)
	assert.True(t, strings.HasSuffix(gotPath, ".jpg"), gotPath)
	assert.Equal(t, "image/jpeg", gotContentType)
	assert.Equal(t, "jpeg-bytes", string(gotBody))
	assert.Equal(t, "https://cdn.example.com"+strings.TrimPrefix(gotPath, "/faces"), url)
}

func TestS3Host_MissingConfig(t *testing.T) {
	host := NewS3Host(&config.S3Config{BucketName: "b", Region: "us-east-1"}, resolver(map[string]string{
		config.S3AccessKeyID:     "a",
		config.S3SecretAccessKey: "s",
	}), zap.NewNop())
	_, err := host.Upload(context.Background(), payload())
	assert.ErrorIs(t, err, domain.ErrMissingCredential)

	host = NewS3Host(&config.S3Config{BucketName: "b", Region: "us-east-1", PublicBaseURL: "https://cdn"}, resolver(nil), zap.NewNop())
	_, err = host.Upload(context.Background(), payload())
	assert.ErrorIs(t, err, domain.ErrMissingCredential)
}
