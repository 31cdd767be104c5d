package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"rekaloka/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofrs/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// S3Storage uploads decoded payloads to an S3-compatible bucket (AWS, R2, MinIO)
type S3Storage struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
	maxRetries    int
	logger        *zap.Logger
}

// NewS3Storage creates an S3 backend. A custom endpoint switches the client
// to path-style addressing.
func NewS3Storage(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*S3Storage, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey, cfg.S3SecretKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	publicBase := cfg.S3PublicBaseURL
	if publicBase == "" {
		if cfg.S3Endpoint != "" {
			publicBase = strings.TrimRight(cfg.S3Endpoint, "/") + "/" + cfg.S3Bucket
		} else {
			publicBase = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
		}
	}

	return NewS3StorageFromClient(client, cfg.S3Bucket, publicBase, cfg.MaxRetries, logger), nil
}

// NewS3StorageFromClient wraps an existing client
func NewS3StorageFromClient(client *s3.Client, bucket, publicBaseURL string, maxRetries int, logger *zap.Logger) *S3Storage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &S3Storage{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		maxRetries:    maxRetries,
		logger:        logger,
	}
}

func (s *S3Storage) Upload(ctx context.Context, data string, folder string) (string, error) {
	mimeType, body, err := DecodeDataURI(data)
	if err != nil {
		return "", err
	}

	key, err := objectKey(folder, mimeType)
	if err != nil {
		return "", err
	}

	err = withRetry(ctx, s.maxRetries, s.logger, func() error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(body),
			ContentType: aws.String(mimeType),
		})
		return err
	})
	if err != nil {
		s.logger.Error("Failed to upload to S3",
			zap.String("bucket", s.bucket),
			zap.String("key", key),
			zap.Error(err))
		return "", fmt.Errorf("failed to upload to s3: %w", err)
	}

	url := s.publicBaseURL + "/" + key
	s.logger.Info("Media uploaded successfully",
		zap.String("key", key),
		zap.String("url", url))
	return url, nil
}

var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
	"audio/mpeg": "mp3",
	"audio/mp3":  "mp3",
	"audio/wav":  "wav",
	"audio/ogg":  "ogg",
}

// objectKey builds "<folder-slug>/<uuid>.<ext>"
func objectKey(folder, mimeType string) (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("failed to generate object key: %w", err)
	}

	prefix := slug.Make(folder)
	if prefix == "" {
		prefix = "uploads"
	}

	name := id.String()
	if ext, ok := extensions[mimeType]; ok {
		name += "." + ext
	}
	return prefix + "/" + name, nil
}
