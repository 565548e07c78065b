package ai

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"glowscan/internal/config"
	"glowscan/internal/domain"
)

const (
	providerGemini = "gemini"

	// maxImageBytes caps the photo fetched for inline Gemini input.
	maxImageBytes = 20 << 20
)

// GeminiClient sends the same chat requests to Gemini. Gemini cannot
// dereference a hosted URL itself, so image parts are fetched and sent
// inline.
type GeminiClient struct {
	httpClient *http.Client
	log        *zap.Logger
	opts       []option.ClientOption
}

func NewGeminiClient(httpClient *http.Client, log *zap.Logger, opts ...option.ClientOption) *GeminiClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &GeminiClient{httpClient: httpClient, log: log, opts: opts}
}

func (c *GeminiClient) CredentialName() string { return config.GeminiAPIKey }

func (c *GeminiClient) Complete(ctx context.Context, apiKey string, req ChatRequest) (string, error) {
	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, c.opts...)...)
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(req.Model)
	model.GenerationConfig.ResponseMIMEType = "application/json"
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}

	var parts []genai.Part
	for _, m := range req.Messages {
		if m.Role == RoleSystem {
			model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(m.Text)}}
			continue
		}
		parts = append(parts, genai.Text(m.Text))
		if m.ImageURL != "" {
			data, format, err := c.fetchImage(ctx, m.ImageURL)
			if err != nil {
				return "", err
			}
			parts = append(parts, genai.ImageData(format, data))
		}
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", domain.NewProviderError(providerGemini, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", domain.NewProviderError(providerGemini, fmt.Errorf("%w: no candidates in response", domain.ErrProviderRejected))
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

// fetchImage downloads a hosted photo and returns its bytes with the
// short image format genai expects ("jpeg", "png").
func (c *GeminiClient) fetchImage(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create image request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", domain.NewProviderError("image-fetch", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", domain.NewProviderError("image-fetch",
			fmt.Errorf("%w: status %d", domain.ErrProviderRejected, resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", domain.NewProviderError("image-fetch", err)
	}

	c.log.Debug("Fetched image for inline input",
		zap.String("url", url),
		zap.Int("size", len(data)))

	return data, imageFormat(resp.Header.Get("Content-Type")), nil
}

func imageFormat(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if format, ok := strings.CutPrefix(ct, "image/"); ok && format != "" {
		return format
	}
	return "jpeg"
}
