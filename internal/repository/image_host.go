package repository

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"glowscan/internal/domain"
)

// ImageHost publishes a photo and returns a public URL for it.
type ImageHost interface {
	Name() string
	Upload(ctx context.Context, image *domain.ImagePayload) (string, error)
}

// maxErrorBody bounds how much of a failed response ends up in an error.
const maxErrorBody = 500

type formField struct {
	name  string
	value string
}

// postMultipart sends fields as multipart/form-data and returns the body
// of a 2xx response. Anything else is a ProviderError.
func postMultipart(ctx context.Context, client *http.Client, provider, url string, fields []formField) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, fmt.Errorf("failed to write form field %s: %w", f.name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return nil, domain.NewProviderError(provider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewProviderError(provider, fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(body)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody] + "..."
		}
		return nil, domain.NewProviderError(provider,
			fmt.Errorf("%w: status %d: %s", domain.ErrProviderRejected, resp.StatusCode, snippet))
	}
	return body, nil
}

func rejected(provider, reason string) error {
	return domain.NewProviderError(provider, fmt.Errorf("%w: %s", domain.ErrProviderRejected, reason))
}

func missingCredential(provider string, names ...string) error {
	return domain.NewProviderError(provider, fmt.Errorf("%w: %v", domain.ErrMissingCredential, names))
}
