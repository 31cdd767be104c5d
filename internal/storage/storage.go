// Package storage persists proof photos and media to object storage.
package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"rekaloka/internal/config"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// ObjectStorage uploads a base64 or data-URI payload into folder and returns
// its durable HTTPS URL
type ObjectStorage interface {
	Upload(ctx context.Context, data string, folder string) (string, error)
}

// ErrInvalidPayload is returned for payloads that are not base64 media
var ErrInvalidPayload = errors.New("invalid media payload")

// New builds the configured storage backend
func New(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (ObjectStorage, error) {
	switch cfg.Provider {
	case "", "cloudinary":
		return NewCloudinaryStorage(cfg, logger)
	case "s3":
		return NewS3Storage(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.Provider)
	}
}

// ===============================
// DATA URI HELPERS
// ===============================

// NormalizeDataURI prefixes bare base64 with a data URI header for
// defaultMime. Payloads that already carry a header are returned unchanged.
func NormalizeDataURI(data, defaultMime string) string {
	data = strings.TrimSpace(data)
	if strings.HasPrefix(data, "data:") {
		return data
	}
	return "data:" + defaultMime + ";base64," + data
}

// DecodeDataURI splits a base64 data URI into its MIME type and bytes
func DecodeDataURI(uri string) (string, []byte, error) {
	if !strings.HasPrefix(uri, "data:") {
		return "", nil, fmt.Errorf("%w: missing data: prefix", ErrInvalidPayload)
	}

	header, payload, ok := strings.Cut(uri[len("data:"):], ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing payload", ErrInvalidPayload)
	}

	mimeType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("%w: only base64 payloads are supported", ErrInvalidPayload)
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	body, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if len(body) == 0 {
		return "", nil, fmt.Errorf("%w: empty payload", ErrInvalidPayload)
	}
	return mimeType, body, nil
}

// IsAudio reports whether a data URI carries audio
func IsAudio(uri string) bool {
	return strings.HasPrefix(uri, "data:audio/")
}

// ===============================
// RETRY
// ===============================

// withRetry runs op with exponential backoff, stopping after maxRetries
// retries or when ctx is done. Errors wrapped in backoff.Permanent stop
// immediately.
func withRetry(ctx context.Context, maxRetries int, logger *zap.Logger, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second

	var policy backoff.BackOff = b
	if maxRetries >= 0 {
		policy = backoff.WithMaxRetries(b, uint64(maxRetries))
	}

	notify := func(err error, wait time.Duration) {
		logger.Warn("Upload failed, retrying",
			zap.Error(err),
			zap.Duration("retry_in", wait))
	}

	return backoff.RetryNotify(op, backoff.WithContext(policy, ctx), notify)
}
