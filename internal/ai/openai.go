package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"glowscan/internal/config"
	"glowscan/internal/domain"
)

const providerOpenAI = "openai"

// maxErrorBody bounds how much of a failed response ends up in an error.
const maxErrorBody = 500

type OpenAIClient struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

// NewOpenAIClient uses httpClient as is; the zero-timeout default client
// leaves the deadline to the caller's context.
func NewOpenAIClient(baseURL string, httpClient *http.Client, log *zap.Logger) *OpenAIClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OpenAIClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		log:        log,
	}
}

func (c *OpenAIClient) CredentialName() string { return config.OpenAIAPIKey }

type openAIRequest struct {
	Model     string          `json:"model"`
	Messages  []openAIMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens,omitempty"`
}

// openAIMessage content is either a plain string or a list of parts.
type openAIMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type openAIPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openAIImageURL `json:"image_url,omitempty"`
}

type openAIImageURL struct {
	URL string `json:"url"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func toOpenAIMessages(msgs []Message) []openAIMessage {
	out := make([]openAIMessage, 0, len(msgs))
	for _, m := range msgs {
		if m.ImageURL == "" {
			out = append(out, openAIMessage{Role: m.Role, Content: m.Text})
			continue
		}
		out = append(out, openAIMessage{
			Role: m.Role,
			Content: []openAIPart{
				{Type: "text", Text: m.Text},
				{Type: "image_url", ImageURL: &openAIImageURL{URL: m.ImageURL}},
			},
		})
	}
	return out
}

func (c *OpenAIClient) Complete(ctx context.Context, apiKey string, req ChatRequest) (string, error) {
	body, err := json.Marshal(openAIRequest{
		Model:     req.Model,
		Messages:  toOpenAIMessages(req.Messages),
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	c.log.Debug("Calling chat completions",
		zap.String("model", req.Model),
		zap.Int("request_bytes", len(body)))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", domain.NewProviderError(providerOpenAI, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.NewProviderError(providerOpenAI, fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn("Chat completion rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(string(respBody), maxErrorBody)))
		return "", domain.NewProviderError(providerOpenAI,
			fmt.Errorf("%w: status %d: %s", domain.ErrProviderRejected, resp.StatusCode, truncate(string(respBody), maxErrorBody)))
	}

	var parsed openAIResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", domain.NewProviderError(providerOpenAI, fmt.Errorf("%w: decode envelope: %v", domain.ErrProviderRejected, err))
	}
	if len(parsed.Choices) == 0 {
		return "", domain.NewProviderError(providerOpenAI, fmt.Errorf("%w: no choices in response", domain.ErrProviderRejected))
	}

	return parsed.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
