// file: internal/services/ai_service.go
package services

import (
	"context"
	"errors"

	"rekaloka/internal/ai"
	"rekaloka/internal/validation"

	"go.uber.org/zap"
)

// aiService implements AIService
type aiService struct {
	generator ImageGenerator
	logger    *zap.Logger
}

// NewAIService creates an image generation service
func NewAIService(generator ImageGenerator, logger *zap.Logger) AIService {
	return &aiService{generator: generator, logger: logger}
}

// GenerateImage renders prompt into a PNG data URL
func (s *aiService) GenerateImage(ctx context.Context, req *GenerateImageRequest) (*GenerateImageResponse, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("prompt is required", err)
	}

	imageURL, err := s.generator.GenerateImage(ctx, req.Prompt)
	if err != nil {
		if errors.Is(err, ai.ErrNotConfigured) {
			return nil, NewServiceUnavailableError("image generation is not configured").WithCause(err)
		}
		s.logger.Error("Image generation failed", zap.Error(err))
		return nil, NewInternalError("failed to generate image").WithCause(err)
	}

	return &GenerateImageResponse{ImageURL: imageURL}, nil
}
