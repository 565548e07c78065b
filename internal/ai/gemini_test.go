package ai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"glowscan/internal/config"
	"glowscan/internal/domain"
)

func TestImageFormat(t *testing.T) {
	assert.Equal(t, "png", imageFormat("image/png"))
	assert.Equal(t, "jpeg", imageFormat("image/jpeg; charset=binary"))
	assert.Equal(t, "jpeg", imageFormat("application/octet-stream"))
	assert.Equal(t, "jpeg", imageFormat(""))
}

func TestGeminiClient_FetchImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		io.WriteString(w, "png-bytes")
	}))
	defer srv.Close()

	c := NewGeminiClient(srv.Client(), zap.NewNop())
	assert.Equal(t, config.GeminiAPIKey, c.CredentialName())

	data, format, err := c.fetchImage(context.Background(), srv.URL+"/face.png")
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, "png", format)

	_, _, err = c.fetchImage(context.Background(), srv.URL+"/missing.png")
	assert.ErrorIs(t, err, domain.ErrProviderRejected)
}
