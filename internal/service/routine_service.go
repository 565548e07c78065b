package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"glowscan/internal/ai"
	"glowscan/internal/config"
	"glowscan/internal/domain"
	"glowscan/internal/store"
)

type RoutineService interface {
	Generate(ctx context.Context, result *domain.AnalysisResult) (*domain.Routine, error)
	// GenerateFromLast builds a routine from the stored last analysis.
	GenerateFromLast(ctx context.Context) (*domain.Routine, error)
}

type routineService struct {
	completer ai.Completer
	resolver  *config.Resolver
	store     store.StateStore
	model     string
	log       *zap.Logger
}

func NewRoutineService(completer ai.Completer, resolver *config.Resolver, st store.StateStore, model string, log *zap.Logger) RoutineService {
	return &routineService{
		completer: completer,
		resolver:  resolver,
		store:     st,
		model:     model,
		log:       log,
	}
}

func (s *routineService) Generate(ctx context.Context, result *domain.AnalysisResult) (*domain.Routine, error) {
	if result == nil {
		return nil, fmt.Errorf("%w: analysis result", domain.ErrNoInputProvided)
	}

	apiKey, err := credential(s.resolver, s.completer)
	if err != nil {
		return nil, err
	}

	content, err := s.completer.Complete(ctx, apiKey, ai.ChatRequest{
		Model:     s.model,
		MaxTokens: routineMaxTokens,
		Messages: []ai.Message{
			{Role: ai.RoleSystem, Text: routinePersona},
			{Role: ai.RoleUser, Text: routinePrompt(result)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("routine request failed: %w", err)
	}

	routine, err := domain.DecodeRoutine(content)
	if err != nil {
		s.log.Warn("Routine response was not valid JSON",
			zap.String("content", content),
			zap.Error(err))
		return nil, err
	}

	if err := s.store.SaveRoutine(ctx, routine); err != nil {
		return nil, fmt.Errorf("failed to save routine: %w", err)
	}

	s.log.Info("Routine generated",
		zap.Int("skincare_steps", len(routine.SkincareLines())),
		zap.Int("haircare_steps", len(routine.Haircare)),
		zap.Int("makeup_steps", len(routine.Makeup)),
		zap.Int("style_steps", len(routine.Style)))

	return routine, nil
}

func (s *routineService) GenerateFromLast(ctx context.Context) (*domain.Routine, error) {
	result, err := s.store.LastResults(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: no analysis to build a routine from", domain.ErrNoInputProvided)
	}
	if err != nil {
		return nil, err
	}
	return s.Generate(ctx, result)
}
