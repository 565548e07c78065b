package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"glowscan/internal/domain"
	"glowscan/internal/store"
)

const defaultProfileName = "User"

type ProfileInput struct {
	Name         string   `json:"name"`
	SkinType     string   `json:"skinType"`
	SkinConcerns []string `json:"skinConcerns"`
	HairType     string   `json:"hairType"`
}

// ProfileService covers onboarding: the user profile, the onboarding flag
// and the landing state derived from both.
type ProfileService interface {
	CreateProfile(ctx context.Context, in ProfileInput) (*domain.UserProfile, error)
	Profile(ctx context.Context) (*domain.UserProfile, error)
	CompleteOnboarding(ctx context.Context) error
	Home(ctx context.Context) (*domain.HomeState, error)
	Routine(ctx context.Context) (*domain.Routine, error)
	LastResults(ctx context.Context) (*domain.AnalysisResult, error)
}

type profileService struct {
	store store.StateStore
	log   *zap.Logger
	now   func() time.Time
}

func NewProfileService(st store.StateStore, log *zap.Logger) ProfileService {
	return &profileService{store: st, log: log, now: time.Now}
}

func (s *profileService) CreateProfile(ctx context.Context, in ProfileInput) (*domain.UserProfile, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = defaultProfileName
	}
	concerns := in.SkinConcerns
	if concerns == nil {
		concerns = []string{}
	}

	profile := &domain.UserProfile{
		Name:         name,
		SkinType:     in.SkinType,
		SkinConcerns: concerns,
		HairType:     in.HairType,
		DateCreated:  s.now().UTC(),
	}
	if err := s.store.SaveProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	s.log.Info("Profile created",
		zap.String("skin_type", profile.SkinType),
		zap.Int("concerns", len(profile.SkinConcerns)))
	return profile, nil
}

func (s *profileService) Profile(ctx context.Context) (*domain.UserProfile, error) {
	return s.store.Profile(ctx)
}

func (s *profileService) CompleteOnboarding(ctx context.Context) error {
	return s.store.CompleteOnboarding(ctx)
}

func (s *profileService) Home(ctx context.Context) (*domain.HomeState, error) {
	done, err := s.store.OnboardingComplete(ctx)
	if err != nil {
		return nil, err
	}
	_, err = s.store.Get(ctx, store.KeyRoutine)
	switch {
	case err == nil:
		return &domain.HomeState{HasCompletedOnboarding: done, HasPersonalRoutine: true}, nil
	case errors.Is(err, store.ErrNotFound):
		return &domain.HomeState{HasCompletedOnboarding: done}, nil
	default:
		return nil, err
	}
}

func (s *profileService) Routine(ctx context.Context) (*domain.Routine, error) {
	return s.store.Routine(ctx)
}

func (s *profileService) LastResults(ctx context.Context) (*domain.AnalysisResult, error) {
	return s.store.LastResults(ctx)
}
