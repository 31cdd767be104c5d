package storage

import (
	"context"
	"fmt"

	"rekaloka/internal/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

// CloudinaryStorage uploads data URIs to Cloudinary
type CloudinaryStorage struct {
	cld        *cloudinary.Cloudinary
	maxRetries int
	logger     *zap.Logger
}

// NewCloudinaryStorage creates a Cloudinary backend from credentials
func NewCloudinaryStorage(cfg config.StorageConfig, logger *zap.Logger) (*CloudinaryStorage, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}
	return NewCloudinaryStorageFromClient(cld, cfg.MaxRetries, logger), nil
}

// NewCloudinaryStorageFromClient wraps an existing client
func NewCloudinaryStorageFromClient(cld *cloudinary.Cloudinary, maxRetries int, logger *zap.Logger) *CloudinaryStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CloudinaryStorage{cld: cld, maxRetries: maxRetries, logger: logger}
}

// Upload sends the data URI to Cloudinary. Audio payloads are tagged with the
// "video" resource_type, the Cloudinary resource type for sound files.
func (s *CloudinaryStorage) Upload(ctx context.Context, data string, folder string) (string, error) {
	if _, _, err := DecodeDataURI(data); err != nil {
		return "", err
	}

	resourceType := "image"
	if IsAudio(data) {
		resourceType = "video"
	}

	params := uploader.UploadParams{
		Folder:         folder,
		ResourceType:   resourceType,
		UseFilename:    BoolPtr(false),
		UniqueFilename: BoolPtr(true),
		Tags:           []string{"rekaloka"},
	}

	var secureURL string
	err := withRetry(ctx, s.maxRetries, s.logger, func() error {
		result, err := s.cld.Upload.Upload(ctx, data, params)
		if err != nil {
			return err
		}
		if result.Error.Message != "" {
			return fmt.Errorf("cloudinary: %s", result.Error.Message)
		}
		secureURL = result.SecureURL
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to upload to Cloudinary",
			zap.String("folder", folder),
			zap.Error(err))
		return "", fmt.Errorf("failed to upload to cloudinary: %w", err)
	}

	s.logger.Info("Media uploaded successfully",
		zap.String("folder", folder),
		zap.String("url", secureURL))
	return secureURL, nil
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}
