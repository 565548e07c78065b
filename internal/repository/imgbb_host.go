package repository

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"glowscan/internal/config"
	"glowscan/internal/domain"
)

const providerImgBB = "imgbb"

type imgbbEnvelope struct {
	Data *struct {
		URL string `json:"url"`
	} `json:"data"`
}

type ImgBBHost struct {
	endpoint   string
	resolver   *config.Resolver
	httpClient *http.Client
	log        *zap.Logger
}

func NewImgBBHost(endpoint string, resolver *config.Resolver, httpClient *http.Client, log *zap.Logger) *ImgBBHost {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ImgBBHost{
		endpoint:   endpoint,
		resolver:   resolver,
		httpClient: httpClient,
		log:        log,
	}
}

func (h *ImgBBHost) Name() string { return providerImgBB }

func (h *ImgBBHost) Upload(ctx context.Context, image *domain.ImagePayload) (string, error) {
	key, ok := h.resolver.Resolve(config.ImgBBAPIKey)
	if !ok {
		return "", missingCredential(providerImgBB, config.ImgBBAPIKey)
	}

	body, err := postMultipart(ctx, h.httpClient, providerImgBB, h.endpoint, []formField{
		{name: "key", value: key},
		{name: "image", value: image.Base64},
	})
	if err != nil {
		return "", err
	}

	var env imgbbEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", rejected(providerImgBB, "malformed envelope: "+err.Error())
	}
	if env.Data == nil || env.Data.URL == "" {
		return "", rejected(providerImgBB, "envelope has no data.url")
	}

	h.log.Info("Image uploaded",
		zap.String("provider", providerImgBB),
		zap.String("url", env.Data.URL))

	return env.Data.URL, nil
}
