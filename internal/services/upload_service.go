// file: internal/services/upload_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"rekaloka/internal/storage"
	"rekaloka/internal/validation"

	"go.uber.org/zap"
)

// DefaultUploadFolder receives uploads that name no folder
const DefaultUploadFolder = "rekaloka_general"

// uploadService implements UploadService
type uploadService struct {
	storage       storage.ObjectStorage
	defaultFolder string
	logger        *zap.Logger
}

// NewUploadService creates a media upload service
func NewUploadService(objectStorage storage.ObjectStorage, defaultFolder string, logger *zap.Logger) UploadService {
	if defaultFolder == "" {
		defaultFolder = DefaultUploadFolder
	}
	return &uploadService{
		storage:       objectStorage,
		defaultFolder: defaultFolder,
		logger:        logger,
	}
}

// Upload stores an image or audio payload and returns its URL
func (s *uploadService) Upload(ctx context.Context, req *UploadRequest) (*UploadResponse, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid upload", err)
	}

	folder := strings.TrimSpace(req.Folder)
	if folder == "" {
		folder = s.defaultFolder
	}

	mime := "image/jpeg"
	if req.MediaType == "audio" {
		mime = "audio/mpeg"
	}
	payload := storage.NormalizeDataURI(stripWhitespace(req.Data), mime)

	url, err := s.storage.Upload(ctx, payload, folder)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidPayload) {
			return nil, NewValidationError("payload is not valid base64 media", err)
		}
		s.logger.Error("Upload failed",
			zap.String("folder", folder),
			zap.Error(err))
		return nil, NewServiceUnavailableError("failed to upload media").WithCause(err)
	}

	s.logger.Info("Media uploaded",
		zap.String("folder", folder),
		zap.Bool("audio", storage.IsAudio(payload)))
	return &UploadResponse{URL: url, Folder: folder}, nil
}

// stripWhitespace removes line breaks and spaces that clients leave inside
// base64 payloads
func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
