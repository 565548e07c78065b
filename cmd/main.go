package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"glowscan/internal/ai"
	"glowscan/internal/config"
	"glowscan/internal/handler"
	"glowscan/internal/observability"
	"glowscan/internal/repository"
	"glowscan/internal/server"
	"glowscan/internal/service"
	"glowscan/internal/store"
	"glowscan/pkg/logger"
	"glowscan/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("CRITICAL: Failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.NewWithLevel(cfg.Log.Level)
	if err != nil {
		os.Stderr.WriteString("CRITICAL: Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()
	sugar := log.Sugar()

	reporter, err := observability.Init(cfg.Sentry, log)
	if err != nil {
		sugar.Fatal("Failed to initialize Sentry: ", err)
	}
	defer reporter.Flush(2 * time.Second)

	db, err := store.OpenDB(context.Background(), cfg.Store.Path)
	if err != nil {
		sugar.Fatal("Failed to open store: ", err)
	}
	defer db.Close()
	st := store.New(db, log)

	resolver, err := config.DefaultResolver(cfg, log)
	if err != nil {
		sugar.Fatal("Failed to build resolver: ", err)
	}

	httpClient := &http.Client{}

	uploads := service.NewUploadService(
		repository.NewImgBBHost(cfg.Hosts.ImgBBURL, resolver, httpClient, log),
		secondaryHost(cfg, resolver, httpClient, log),
		cfg.App.UploadTimeout,
		log,
	)

	completer, visionModel, routineModel := newCompleter(cfg, httpClient, log)

	h := handler.NewHandler(
		handler.Services{
			Upload:   uploads,
			Analysis: service.NewAnalysisService(completer, resolver, st, visionModel, log),
			Routine:  service.NewRoutineService(completer, resolver, st, routineModel, log),
			Profile:  service.NewProfileService(st, log),
		},
		utils.NewImageProcessor(utils.DefaultJPEGQuality, log),
		reporter,
		&cfg.App,
		log,
	)

	srv := server.New(cfg, h, log)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		sugar.Infof("Starting server on %s:%s", cfg.Server.Host, cfg.Server.Port)
		if err := srv.Run(); err != nil && err != http.ErrServerClosed {
			sugar.Fatal("Server failed: ", err)
		}
	}()
	sig := <-quit
	sugar.Infof("Received signal: %v. Shutting down gracefully...", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorf("Server forced to shutdown: %v", err)
	}

	sugar.Info("Server exited")
}

func secondaryHost(cfg *config.Config, resolver *config.Resolver, httpClient *http.Client, log *zap.Logger) repository.ImageHost {
	if cfg.Hosts.Secondary == config.SecondaryS3 {
		return repository.NewS3Host(&cfg.S3, resolver, log)
	}
	return repository.NewCloudinaryHost(cfg.Hosts.CloudinaryBaseURL, resolver, httpClient, log)
}

func newCompleter(cfg *config.Config, httpClient *http.Client, log *zap.Logger) (ai.Completer, string, string) {
	if cfg.AI.Provider == config.ProviderGemini {
		return ai.NewGeminiClient(httpClient, log), cfg.AI.GeminiModel, cfg.AI.GeminiModel
	}
	return ai.NewOpenAIClient(cfg.AI.OpenAIBaseURL, httpClient, log), cfg.AI.VisionModel, cfg.AI.RoutineModel
}
