package repository

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"glowscan/internal/config"
	"glowscan/internal/domain"
)

const providerS3 = "s3"

// S3Host publishes photos to an S3-compatible bucket that is readable
// under cfg.PublicBaseURL. It can stand in for Cloudinary as the fallback
// host.
type S3Host struct {
	cfg      *config.S3Config
	resolver *config.Resolver
	log      *zap.Logger
}

func NewS3Host(cfg *config.S3Config, resolver *config.Resolver, log *zap.Logger) *S3Host {
	return &S3Host{
		cfg:      cfg,
		resolver: resolver,
		log:      log,
	}
}

func (h *S3Host) Name() string { return providerS3 }

// newClient is built per upload so rotated keys take effect immediately.
func (h *S3Host) newClient(ctx context.Context) (*s3.Client, error) {
	accessKey, okAccess := h.resolver.Resolve(config.S3AccessKeyID)
	secretKey, okSecret := h.resolver.Resolve(config.S3SecretAccessKey)
	if !okAccess || !okSecret {
		return nil, missingCredential(providerS3, config.S3AccessKeyID, config.S3SecretAccessKey)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey,
			secretKey,
			"",
		)),
		awsconfig.WithRegion(h.cfg.Region),
	)
	if err != nil {
		return nil, domain.NewProviderError(providerS3, fmt.Errorf("load aws config: %w", err))
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
		if h.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(h.cfg.Endpoint)
		}
	}), nil
}

func (h *S3Host) Upload(ctx context.Context, image *domain.ImagePayload) (string, error) {
	if h.cfg.PublicBaseURL == "" {
		return "", domain.NewProviderError(providerS3,
			fmt.Errorf("%w: S3_PUBLIC_BASE_URL not set", domain.ErrMissingCredential))
	}

	client, err := h.newClient(ctx)
	if err != nil {
		return "", err
	}

	key := "uploads/" + uuid.New().String() + ".jpg"
	contentType := image.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(h.cfg.BucketName),
		Key:           aws.String(key),
		Body:          bytes.NewReader(image.Data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(image.Data))),
	})
	if err != nil {
		h.log.Error("Failed to upload image to S3",
			zap.String("bucket", h.cfg.BucketName),
			zap.String("key", key),
			zap.Error(err))
		return "", domain.NewProviderError(providerS3, err)
	}

	url := h.cfg.PublicBaseURL + "/" + key
	h.log.Info("Image uploaded",
		zap.String("provider", providerS3),
		zap.String("key", key),
		zap.Int("size", len(image.Data)),
		zap.String("url", url))

	return url, nil
}
