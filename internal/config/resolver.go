package config

import (
	"go.uber.org/zap"
)

const (
	OpenAIAPIKey           = "OPENAI_API_KEY"
	GeminiAPIKey           = "GEMINI_API_KEY"
	ImgBBAPIKey            = "IMGBB_API_KEY"
	CloudinaryCloudName    = "CLOUDINARY_CLOUD_NAME"
	CloudinaryAPIKey       = "CLOUDINARY_API_KEY"
	CloudinaryUploadPreset = "CLOUDINARY_UPLOAD_PRESET"
	S3AccessKeyID          = "S3_ACCESS_KEY_ID"
	S3SecretAccessKey      = "S3_SECRET_ACCESS_KEY"

	DefaultUploadPreset = "ml_default"
)

// Resolver looks up named secrets across an ordered list of sources. It
// does not cache: every call walks the sources again, so a rotated key or
// an edited .env file is picked up on the next request.
type Resolver struct {
	sources []Source
	log     *zap.Logger
}

func NewResolver(log *zap.Logger, sources ...Source) *Resolver {
	return &Resolver{sources: sources, log: log}
}

// DefaultResolver layers development overrides (process environment, then
// the .env file), the embedded config, and PUBLIC_-prefixed variables.
func DefaultResolver(cfg *Config, log *zap.Logger) (*Resolver, error) {
	embedded, err := NewEmbeddedSource()
	if err != nil {
		return nil, err
	}
	return NewResolver(log,
		NewEnvSource(""),
		&DotenvSource{Path: cfg.App.DotenvPath},
		embedded,
		NewEnvSource(PublicPrefix),
	), nil
}

// Resolve returns the first non-empty value for name. A miss is logged and
// reported as ok == false; it is never an error.
func (r *Resolver) Resolve(name string) (string, bool) {
	for _, s := range r.sources {
		if v, ok := s.Lookup(name); ok && v != "" {
			r.log.Debug("Resolved configuration value",
				zap.String("name", name),
				zap.String("source", s.Name()))
			return v, true
		}
	}
	r.log.Warn("Configuration value not found", zap.String("name", name))
	return "", false
}

// ResolveDefault is Resolve with a fallback for non-sensitive values.
func (r *Resolver) ResolveDefault(name, fallback string) string {
	if v, ok := r.Resolve(name); ok {
		return v
	}
	return fallback
}
