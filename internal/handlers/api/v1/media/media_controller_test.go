package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rekaloka/internal/response"
	"rekaloka/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubUpload struct {
	req *services.UploadRequest
	err error
}

func (s *stubUpload) Upload(ctx context.Context, req *services.UploadRequest) (*services.UploadResponse, error) {
	s.req = req
	if s.err != nil {
		return nil, s.err
	}
	return &services.UploadResponse{URL: "https://cdn.example.com/rekaloka_general/1.jpg", Folder: "rekaloka_general"}, nil
}

type stubAI struct{}

func (stubAI) GenerateImage(ctx context.Context, req *services.GenerateImageRequest) (*services.GenerateImageResponse, error) {
	if req.Prompt == "" {
		return nil, services.InvalidInputError("prompt", "is required")
	}
	return &services.GenerateImageResponse{ImageURL: "data:image/png;base64,aGVsbG8="}, nil
}

func newController(upload services.UploadService) *MediaController {
	sc := &services.ServiceCollection{UploadService: upload, AIService: stubAI{}}
	return NewMediaController(sc, zap.NewNop(), response.NewBuilder(response.DefaultConfig(), zap.NewNop()))
}

func TestUpload(t *testing.T) {
	stub := &stubUpload{}
	rec := httptest.NewRecorder()
	newController(stub).Upload(rec, httptest.NewRequest(http.MethodPost, "/api/v1/upload",
		strings.NewReader(`{"imageIcon":"aGVsbG8=","mediaType":"audio"}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, stub.req)
	assert.Equal(t, "aGVsbG8=", stub.req.Data)
	assert.Equal(t, "audio", stub.req.MediaType)
	assert.Contains(t, rec.Body.String(), "rekaloka_general")
}

func TestUploadStorageUnavailable(t *testing.T) {
	stub := &stubUpload{err: services.NewServiceUnavailableError("failed to store media")}
	rec := httptest.NewRecorder()
	newController(stub).Upload(rec, httptest.NewRequest(http.MethodPost, "/api/v1/upload",
		strings.NewReader(`{"imageIcon":"aGVsbG8="}`)))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGenerateImage(t *testing.T) {
	c := newController(&stubUpload{})

	rec := httptest.NewRecorder()
	c.GenerateImage(rec, httptest.NewRequest(http.MethodPost, "/api/v1/ai/generate-image",
		strings.NewReader(`{"prompt":"Candi Borobudur saat matahari terbit"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "data:image/png;base64,")

	rec = httptest.NewRecorder()
	c.GenerateImage(rec, httptest.NewRequest(http.MethodPost, "/api/v1/ai/generate-image", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
