// Package ai talks to generative-AI chat endpoints.
package ai

import (
	"context"
)

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one chat turn. ImageURL, when set, is sent as an image part
// alongside Text.
type Message struct {
	Role     string
	Text     string
	ImageURL string
}

type ChatRequest struct {
	Model     string
	MaxTokens int
	Messages  []Message
}

// Completer returns the text of the first choice for a chat request.
type Completer interface {
	// CredentialName is the configuration key holding the API key.
	CredentialName() string
	Complete(ctx context.Context, apiKey string, req ChatRequest) (string, error)
}
