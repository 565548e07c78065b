package observability

import (
	"errors"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"glowscan/internal/config"
	"glowscan/internal/domain"
)

var sensitiveHeaders = []string{"Authorization", "Cookie", "X-Api-Key"}

// Reporter sends handler failures to Sentry. A Reporter built without a DSN
// only logs.
type Reporter struct {
	enabled bool
	log     *zap.Logger
}

// Init initializes Sentry. Safe to call without a DSN: error tracking is
// disabled and the returned Reporter is a no-op.
func Init(cfg config.SentryConfig, log *zap.Logger) (*Reporter, error) {
	if cfg.DSN == "" {
		log.Warn("Sentry DSN not configured - error tracking disabled")
		return &Reporter{log: log}, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			return scrub(event)
		},
	})
	if err != nil {
		log.Error("Failed to initialize Sentry", zap.Error(err))
		return nil, fmt.Errorf("sentry init: %w", err)
	}

	log.Info("Sentry initialized",
		zap.String("environment", cfg.Environment),
		zap.String("release", cfg.Release))
	return &Reporter{enabled: true, log: log}, nil
}

func scrub(event *sentry.Event) *sentry.Event {
	if event == nil || event.Request == nil || event.Request.Headers == nil {
		return event
	}
	for _, h := range sensitiveHeaders {
		delete(event.Request.Headers, h)
	}
	return event
}

// CaptureException records err with the given context under a fresh scope
// so tags from one request do not leak into the next.
func (r *Reporter) CaptureException(err error, context map[string]interface{}) {
	if r == nil || err == nil || !r.enabled {
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		for key, value := range context {
			scope.SetContext(key, sentry.Context{"value": value})
		}
		var perr *domain.ProviderError
		if errors.As(err, &perr) {
			scope.SetTag("provider", perr.Provider)
		}
		sentry.CaptureException(err)
	})

	r.log.Debug("Exception captured in Sentry", zap.Error(err))
}

// Flush waits for queued events. Call before exit.
func (r *Reporter) Flush(timeout time.Duration) bool {
	if r == nil || !r.enabled {
		return true
	}
	return sentry.Flush(timeout)
}
