package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"glowscan/internal/config"
	"glowscan/internal/domain"
	"glowscan/internal/observability"
	"glowscan/internal/service"
	"glowscan/internal/store"
	"glowscan/pkg/utils"
)

const (
	msgUploadFailed   = "Failed to upload image. Please try again."
	msgParseFailed    = "Error parsing AI response"
	msgAnalyzeFailed  = "Failed to analyze image. Please try again."
	msgNoImageURL     = "No image URL provided"
	msgRoutineFailed  = "Failed to create your personal routine. Please try again."
	msgNoRoutine      = "No personal routine found. Please create one first."
	msgNoResults      = "No analysis results found. Please analyze a photo first."
	msgNoProfile      = "No profile found"
	msgRequestAborted = "Request cancelled"
)

type Services struct {
	Upload   service.UploadService
	Analysis service.AnalysisService
	Routine  service.RoutineService
	Profile  service.ProfileService
}

type Handler struct {
	services  Services
	processor *utils.ImageProcessor
	reporter  *observability.Reporter
	cfg       *config.AppConfig
	log       *zap.Logger
}

func NewHandler(services Services, processor *utils.ImageProcessor, reporter *observability.Reporter, cfg *config.AppConfig, log *zap.Logger) *Handler {
	return &Handler{
		services:  services,
		processor: processor,
		reporter:  reporter,
		cfg:       cfg,
		log:       log,
	}
}

func (h *Handler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		h.log.Error("Failed to get file from form", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image file provided"})
		return
	}

	if file.Size > h.cfg.MaxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !h.allowedFormat(ext) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file format. Only JPG, JPEG, PNG allowed"})
		return
	}

	f, err := file.Open()
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to process file", err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.cfg.MaxUploadSize+1))
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to read file", err)
		return
	}

	data, err = h.processor.ToJPEG(data)
	if err != nil {
		h.log.Warn("Rejected upload", zap.String("filename", file.Filename), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image file"})
		return
	}

	url, err := h.services.Upload.Upload(c.Request.Context(), domain.NewImagePayload(data, file.Filename, "image/jpeg"))
	if err != nil {
		h.fail(c, http.StatusBadGateway, msgUploadFailed, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"imageUrl": url})
}

type analyzeRequest struct {
	ImageURL string `json:"imageUrl"`
}

func (h *Handler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.ImageURL) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNoImageURL})
		return
	}

	result, err := h.services.Analysis.Analyze(c.Request.Context(), req.ImageURL)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, newResultView(result))
	case errors.Is(err, domain.ErrInvalidResponseFormat):
		h.fail(c, http.StatusBadGateway, msgParseFailed, err)
	default:
		h.fail(c, statusFor(err), msgAnalyzeFailed, err)
	}
}

func (h *Handler) LastResults(c *gin.Context) {
	result, err := h.services.Profile.LastResults(c.Request.Context())
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": msgNoResults})
		return
	}
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to load results", err)
		return
	}
	c.JSON(http.StatusOK, newResultView(result))
}

func (h *Handler) CreateRoutine(c *gin.Context) {
	routine, err := h.services.Routine.GenerateFromLast(c.Request.Context())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, newRoutineView(routine))
	case errors.Is(err, domain.ErrNoInputProvided):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNoResults})
	default:
		h.fail(c, statusFor(err), msgRoutineFailed, err)
	}
}

func (h *Handler) GetRoutine(c *gin.Context) {
	routine, err := h.services.Profile.Routine(c.Request.Context())
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": msgNoRoutine})
		return
	}
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to load routine", err)
		return
	}
	c.JSON(http.StatusOK, newRoutineView(routine))
}

func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.services.Profile.Profile(c.Request.Context())
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": msgNoProfile})
		return
	}
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to load profile", err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) CreateProfile(c *gin.Context) {
	var in service.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	profile, err := h.services.Profile.CreateProfile(c.Request.Context(), in)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to save profile", err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}

func (h *Handler) CompleteOnboarding(c *gin.Context) {
	if err := h.services.Profile.CompleteOnboarding(c.Request.Context()); err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to save onboarding state", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hasCompletedOnboarding": true})
}

func (h *Handler) Home(c *gin.Context) {
	state, err := h.services.Profile.Home(c.Request.Context())
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to load state", err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

func (h *Handler) allowedFormat(ext string) bool {
	for _, f := range h.cfg.AllowedFormats {
		if strings.EqualFold(f, ext) {
			return true
		}
	}
	return false
}

// fail logs err, reports it unless the caller went away, and writes the
// user-facing message.
func (h *Handler) fail(c *gin.Context, status int, message string, err error) {
	if errors.Is(err, context.Canceled) && c.Request.Context().Err() != nil {
		h.log.Info("Request cancelled by client",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusRequestTimeout, gin.H{"error": msgRequestAborted})
		return
	}

	h.log.Error(message,
		zap.String("path", c.FullPath()),
		zap.Int("status", status),
		zap.Error(err))
	h.reporter.CaptureException(err, map[string]interface{}{
		"route":  c.FullPath(),
		"status": status,
	})
	c.JSON(status, gin.H{"error": message})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMissingCredential):
		return http.StatusInternalServerError
	case errors.Is(err, domain.ErrProviderTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
