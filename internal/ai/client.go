// Package ai talks to an OpenAI-compatible provider for landmark
// verification and image generation.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rekaloka/internal/config"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned when no API key is set
var ErrNotConfigured = errors.New("ai provider is not configured")

// Client wraps the OpenAI-compatible SDK client
type Client struct {
	client       openai.Client
	configured   bool
	model        string
	imageModel   string
	timeout      time.Duration
	imageTimeout time.Duration
	logger       *zap.Logger
}

// NewClient creates a client from configuration. A missing API key yields a
// client whose calls return ErrNotConfigured.
func NewClient(cfg config.VisionConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	imageTimeout := cfg.ImageTimeout
	if imageTimeout <= 0 {
		imageTimeout = 2 * time.Minute
	}

	return &Client{
		client:       openai.NewClient(opts...),
		configured:   strings.TrimSpace(cfg.APIKey) != "",
		model:        cfg.Model,
		imageModel:   cfg.ImageModel,
		timeout:      timeout,
		imageTimeout: imageTimeout,
		logger:       logger,
	}
}

// ===============================
// LANDMARK VERIFICATION
// ===============================

func verificationPrompt(hotspotName string) string {
	return fmt.Sprintf(
		"Kamu adalah verifikator foto untuk aplikasi wisata budaya. "+
			"Apakah foto ini benar-benar diambil di atau menampilkan \"%s\"? "+
			"Jawab hanya dengan satu kata: YA atau TIDAK.", hotspotName)
}

// VerifyLandmark asks the vision model whether the photo shows hotspotName.
// imageBase64 may be bare base64 or a data URI. Errors and timeouts are
// returned to the caller, which decides the failure policy.
func (c *Client) VerifyLandmark(ctx context.Context, imageBase64, hotspotName string) (bool, error) {
	if !c.configured {
		return false, ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	imageURL := imageBase64
	if !strings.HasPrefix(imageURL, "data:") {
		imageURL = "data:image/jpeg;base64," + imageURL
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(verificationPrompt(hotspotName)),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: imageURL,
				}),
			}),
		},
	})
	if err != nil {
		return false, fmt.Errorf("vision request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return false, errors.New("vision response has no choices")
	}

	verdict := ParseVerdict(resp.Choices[0].Message.Content)
	c.logger.Info("Landmark verification completed",
		zap.String("hotspot", hotspotName),
		zap.Bool("verified", verdict))
	return verdict, nil
}

// ParseVerdict reads a YA/TIDAK style answer. Anything that does not start
// with an affirmative word is a rejection.
func ParseVerdict(answer string) bool {
	fields := strings.FieldsFunc(strings.ToUpper(answer), func(r rune) bool {
		return !(r >= 'A' && r <= 'Z')
	})
	if len(fields) == 0 {
		return false
	}
	switch fields[0] {
	case "YA", "YES", "TRUE", "BENAR":
		return true
	default:
		return false
	}
}

// ===============================
// IMAGE GENERATION
// ===============================

// GenerateImage renders prompt and returns a PNG data URL
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if !c.configured {
		return "", ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, c.imageTimeout)
	defer cancel()

	resp, err := c.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          openai.ImageModel(c.imageModel),
		N:              openai.Int(1),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
	})
	if err != nil {
		return "", fmt.Errorf("image generation failed: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return "", errors.New("image generation returned no image")
	}

	c.logger.Info("Image generated", zap.Int("prompt_length", len(prompt)))
	return "data:image/png;base64," + resp.Data[0].B64JSON, nil
}
