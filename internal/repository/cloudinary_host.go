package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"glowscan/internal/config"
	"glowscan/internal/domain"
)

const providerCloudinary = "cloudinary"

type cloudinaryEnvelope struct {
	SecureURL string `json:"secure_url"`
}

// CloudinaryHost uploads through an unsigned upload preset. The API key is
// required to be configured but is not sent with unsigned uploads.
type CloudinaryHost struct {
	baseURL    string
	resolver   *config.Resolver
	httpClient *http.Client
	log        *zap.Logger
}

func NewCloudinaryHost(baseURL string, resolver *config.Resolver, httpClient *http.Client, log *zap.Logger) *CloudinaryHost {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &CloudinaryHost{
		baseURL:    baseURL,
		resolver:   resolver,
		httpClient: httpClient,
		log:        log,
	}
}

func (h *CloudinaryHost) Name() string { return providerCloudinary }

func (h *CloudinaryHost) Upload(ctx context.Context, image *domain.ImagePayload) (string, error) {
	cloudName, okName := h.resolver.Resolve(config.CloudinaryCloudName)
	_, okKey := h.resolver.Resolve(config.CloudinaryAPIKey)
	preset := h.resolver.ResolveDefault(config.CloudinaryUploadPreset, config.DefaultUploadPreset)
	if !okName || !okKey {
		return "", missingCredential(providerCloudinary, config.CloudinaryCloudName, config.CloudinaryAPIKey)
	}

	endpoint := h.baseURL + "/" + url.PathEscape(cloudName) + "/image/upload"
	body, err := postMultipart(ctx, h.httpClient, providerCloudinary, endpoint, []formField{
		{name: "file", value: image.DataURI()},
		{name: "upload_preset", value: preset},
	})
	if err != nil {
		return "", err
	}

	var env cloudinaryEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", rejected(providerCloudinary, "malformed envelope: "+err.Error())
	}
	if env.SecureURL == "" {
		return "", rejected(providerCloudinary, "envelope has no secure_url")
	}

	h.log.Info("Image uploaded",
		zap.String("provider", providerCloudinary),
		zap.String("url", env.SecureURL))

	return env.SecureURL, nil
}
