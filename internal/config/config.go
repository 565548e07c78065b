package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	SecondaryCloudinary = "cloudinary"
	SecondaryS3         = "s3"

	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	Server ServerConfig
	Store  StoreConfig
	App    AppConfig
	Hosts  HostsConfig
	AI     AIConfig
	S3     S3Config
	Sentry SentryConfig
	Log    LogConfig
}

type ServerConfig struct {
	Host string
	Port string
}

type StoreConfig struct {
	Path string
}

type AppConfig struct {
	MaxUploadSize  int64
	AllowedFormats []string
	UploadTimeout  time.Duration
	DotenvPath     string
}

type HostsConfig struct {
	Secondary         string
	ImgBBURL          string
	CloudinaryBaseURL string
}

type AIConfig struct {
	Provider      string
	OpenAIBaseURL string
	VisionModel   string
	RoutineModel  string
	GeminiModel   string
}

// S3Config holds the non-secret half of the S3 secondary host settings.
// Access keys are resolved per upload through the Resolver.
type S3Config struct {
	Endpoint      string
	Region        string
	BucketName    string
	PublicBaseURL string
}

type SentryConfig struct {
	DSN         string
	Environment string
	Release     string
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	viper.SetDefault("SERVER_HOST", "localhost")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("STORE_PATH", "./data/glowscan.db")
	viper.SetDefault("APP_MAX_UPLOAD_SIZE", 10*1024*1024) // 10MB
	viper.SetDefault("APP_ALLOWED_FORMATS", []string{".jpg", ".jpeg", ".png"})
	viper.SetDefault("UPLOAD_TIMEOUT", 15*time.Second)
	viper.SetDefault("DOTENV_PATH", ".env")
	viper.SetDefault("UPLOAD_SECONDARY_HOST", SecondaryCloudinary)
	viper.SetDefault("IMGBB_UPLOAD_URL", "https://api.imgbb.com/1/upload")
	viper.SetDefault("CLOUDINARY_BASE_URL", "https://api.cloudinary.com/v1_1")
	viper.SetDefault("AI_PROVIDER", ProviderOpenAI)
	viper.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	viper.SetDefault("OPENAI_VISION_MODEL", "gpt-4o")
	viper.SetDefault("OPENAI_ROUTINE_MODEL", "gpt-4o")
	viper.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	viper.SetDefault("S3_ENDPOINT", "")
	viper.SetDefault("S3_REGION", "us-east-1")
	viper.SetDefault("S3_BUCKET_NAME", "glowscan-uploads")
	viper.SetDefault("S3_PUBLIC_BASE_URL", "")
	viper.SetDefault("SENTRY_ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")

	viper.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("SERVER_HOST"),
			Port: viper.GetString("SERVER_PORT"),
		},
		Store: StoreConfig{
			Path: viper.GetString("STORE_PATH"),
		},
		App: AppConfig{
			MaxUploadSize:  viper.GetInt64("APP_MAX_UPLOAD_SIZE"),
			AllowedFormats: viper.GetStringSlice("APP_ALLOWED_FORMATS"),
			UploadTimeout:  viper.GetDuration("UPLOAD_TIMEOUT"),
			DotenvPath:     viper.GetString("DOTENV_PATH"),
		},
		Hosts: HostsConfig{
			Secondary:         strings.ToLower(viper.GetString("UPLOAD_SECONDARY_HOST")),
			ImgBBURL:          viper.GetString("IMGBB_UPLOAD_URL"),
			CloudinaryBaseURL: strings.TrimRight(viper.GetString("CLOUDINARY_BASE_URL"), "/"),
		},
		AI: AIConfig{
			Provider:      strings.ToLower(viper.GetString("AI_PROVIDER")),
			OpenAIBaseURL: strings.TrimRight(viper.GetString("OPENAI_BASE_URL"), "/"),
			VisionModel:   viper.GetString("OPENAI_VISION_MODEL"),
			RoutineModel:  viper.GetString("OPENAI_ROUTINE_MODEL"),
			GeminiModel:   viper.GetString("GEMINI_MODEL"),
		},
		S3: S3Config{
			Endpoint:      viper.GetString("S3_ENDPOINT"),
			Region:        viper.GetString("S3_REGION"),
			BucketName:    viper.GetString("S3_BUCKET_NAME"),
			PublicBaseURL: strings.TrimRight(viper.GetString("S3_PUBLIC_BASE_URL"), "/"),
		},
		Sentry: SentryConfig{
			DSN:         viper.GetString("SENTRY_DSN"),
			Environment: viper.GetString("SENTRY_ENVIRONMENT"),
			Release:     viper.GetString("SENTRY_RELEASE"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if err := createDirs(cfg); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Hosts.Secondary {
	case SecondaryCloudinary, SecondaryS3:
	default:
		return fmt.Errorf("unknown UPLOAD_SECONDARY_HOST %q", c.Hosts.Secondary)
	}
	switch c.AI.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unknown AI_PROVIDER %q", c.AI.Provider)
	}
	if c.App.UploadTimeout <= 0 {
		return fmt.Errorf("UPLOAD_TIMEOUT must be positive, got %s", c.App.UploadTimeout)
	}
	return nil
}

func createDirs(cfg *Config) error {
	if cfg.Store.Path == ":memory:" {
		return nil
	}
	dir := filepath.Dir(cfg.Store.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}
