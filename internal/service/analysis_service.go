package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"glowscan/internal/ai"
	"glowscan/internal/config"
	"glowscan/internal/domain"
	"glowscan/internal/store"
)

type AnalysisService interface {
	Analyze(ctx context.Context, imageURL string) (*domain.AnalysisResult, error)
}

type analysisService struct {
	completer ai.Completer
	resolver  *config.Resolver
	store     store.StateStore
	model     string
	log       *zap.Logger
}

func NewAnalysisService(completer ai.Completer, resolver *config.Resolver, st store.StateStore, model string, log *zap.Logger) AnalysisService {
	return &analysisService{
		completer: completer,
		resolver:  resolver,
		store:     st,
		model:     model,
		log:       log,
	}
}

// Analyze makes a single completion call and keeps the result as the last
// analysis. A response that is not JSON fails without touching the stored
// result; there is no retry.
func (s *analysisService) Analyze(ctx context.Context, imageURL string) (*domain.AnalysisResult, error) {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return nil, fmt.Errorf("%w: image URL", domain.ErrNoInputProvided)
	}

	apiKey, err := credential(s.resolver, s.completer)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	content, err := s.completer.Complete(ctx, apiKey, ai.ChatRequest{
		Model:     s.model,
		MaxTokens: analysisMaxTokens,
		Messages: []ai.Message{
			{Role: ai.RoleUser, Text: analysisPrompt, ImageURL: imageURL},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}

	result, err := domain.DecodeAnalysis(content)
	if err != nil {
		s.log.Warn("Analysis response was not valid JSON",
			zap.String("content", content),
			zap.Error(err))
		return nil, err
	}

	if err := s.store.SaveLastResults(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to save analysis: %w", err)
	}

	s.log.Info("Image analyzed",
		zap.String("image_url", imageURL),
		zap.Float64("overall", float64(result.Overall)),
		zap.Duration("elapsed", time.Since(start)))

	return result, nil
}

func credential(resolver *config.Resolver, completer ai.Completer) (string, error) {
	name := completer.CredentialName()
	key, ok := resolver.Resolve(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrMissingCredential, name)
	}
	return key, nil
}
