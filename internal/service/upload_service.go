package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"glowscan/internal/domain"
	"glowscan/internal/repository"
)

// DefaultUploadTimeout bounds each host attempt independently.
const DefaultUploadTimeout = 15 * time.Second

type UploadService interface {
	Upload(ctx context.Context, image *domain.ImagePayload) (string, error)
}

// uploadService tries the primary host, then the secondary host, one after
// the other. The attempts are never raced: a second upload is only made
// once the first has definitely failed.
type uploadService struct {
	primary   repository.ImageHost
	secondary repository.ImageHost
	timeout   time.Duration
	log       *zap.Logger
}

func NewUploadService(primary, secondary repository.ImageHost, timeout time.Duration, log *zap.Logger) UploadService {
	if timeout <= 0 {
		timeout = DefaultUploadTimeout
	}
	return &uploadService{
		primary:   primary,
		secondary: secondary,
		timeout:   timeout,
		log:       log,
	}
}

func (s *uploadService) Upload(ctx context.Context, image *domain.ImagePayload) (string, error) {
	if image == nil || len(image.Data) == 0 {
		return "", domain.ErrNoInputProvided
	}

	var failures []error
	for _, host := range []repository.ImageHost{s.primary, s.secondary} {
		if host == nil {
			continue
		}

		url, err := s.attempt(ctx, host, image)
		if err == nil {
			return url, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		s.log.Warn("Image host failed, trying next",
			zap.String("provider", host.Name()),
			zap.Error(err))
		failures = append(failures, err)
	}

	s.log.Error("All image hosts failed", zap.Int("attempts", len(failures)))
	if len(failures) == 0 {
		return "", domain.ErrAllProvidersFailed
	}
	return "", fmt.Errorf("%w: %w", domain.ErrAllProvidersFailed, errors.Join(failures...))
}

func (s *uploadService) attempt(ctx context.Context, host repository.ImageHost, image *domain.ImagePayload) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	url, err := host.Upload(attemptCtx, image)
	if err != nil {
		if ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			err = domain.NewProviderError(host.Name(),
				fmt.Errorf("%w after %s: %v", domain.ErrProviderTimeout, s.timeout, err))
		}
		return "", err
	}

	s.log.Info("Image upload succeeded",
		zap.String("provider", host.Name()),
		zap.Duration("elapsed", time.Since(start)))
	return url, nil
}
