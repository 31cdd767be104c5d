package storage

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pixel = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

func pngURI() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pixel)
}

func TestNormalizeDataURI(t *testing.T) {
	assert.Equal(t, "data:audio/mpeg;base64,AAAA", NormalizeDataURI("AAAA", "audio/mpeg"))
	assert.Equal(t, pngURI(), NormalizeDataURI("  "+pngURI()+"\n", "image/jpeg"))
}

func TestDecodeDataURI(t *testing.T) {
	mimeType, body, err := DecodeDataURI(pngURI())
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)
	assert.Equal(t, pixel, body)

	for _, bad := range []string{
		"AAAA",
		"data:image/png;base64",
		"data:text/plain,hello",
		"data:image/png;base64,!!!",
		"data:image/png;base64,",
	} {
		_, _, err := DecodeDataURI(bad)
		assert.ErrorIs(t, err, ErrInvalidPayload, bad)
	}
}

func TestObjectKey(t *testing.T) {
	key, err := objectKey("rekaloka_proofs", "image/jpeg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "rekaloka_proofs/"), key)
	assert.True(t, strings.HasSuffix(key, ".jpg"), key)

	key, err = objectKey("Bukti Check-in", "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "bukti-check-in/"), key)

	key, err = objectKey("", "application/x-unknown")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "uploads/"))
	assert.NotContains(t, key[len("uploads/"):], ".")
}

func TestS3Storage_Upload(t *testing.T) {
	var gotPath, gotType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := s3.New(s3.Options{
		Region:                     "auto",
		BaseEndpoint:               aws.String(srv.URL),
		UsePathStyle:               true,
		Credentials:                credentials.NewStaticCredentialsProvider("key", "secret", ""),
		RetryMaxAttempts:           1,
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
	})
	store := NewS3StorageFromClient(client, "media", "https://cdn.example.com/", 0, nil)

	url, err := store.Upload(context.Background(), pngURI(), "rekaloka_proofs")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(gotPath, "/media/rekaloka_proofs/"), gotPath)
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, pixel, gotBody)
	assert.True(t, strings.HasPrefix(url, "https://cdn.example.com/rekaloka_proofs/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)
}

func TestS3Storage_RejectsInvalidPayload(t *testing.T) {
	store := NewS3StorageFromClient(s3.New(s3.Options{Region: "auto"}), "media", "https://cdn", 0, nil)
	_, err := store.Upload(context.Background(), "not-a-data-uri", "x")
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func newTestCloudinary(t *testing.T, handler http.HandlerFunc) *cloudinary.Cloudinary {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cld, err := cloudinary.NewFromParams("demo", "key", "secret")
	require.NoError(t, err)
	cld.Upload.Config.API.UploadPrefix = srv.URL
	return cld
}

func TestCloudinaryStorage_Upload(t *testing.T) {
	var gotResource, gotFolder string
	cld := newTestCloudinary(t, func(w http.ResponseWriter, r *http.Request) {
		gotResource = r.FormValue("resource_type")
		gotFolder = r.FormValue("folder")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"public_id":"rekaloka_proofs/abc","secure_url":"https://res.cloudinary.com/demo/image/upload/rekaloka_proofs/abc.png"}`)
	})

	store := NewCloudinaryStorageFromClient(cld, 0, nil)
	url, err := store.Upload(context.Background(), pngURI(), "rekaloka_proofs")
	require.NoError(t, err)

	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/rekaloka_proofs/abc.png", url)
	assert.Equal(t, "image", gotResource)
	assert.Equal(t, "rekaloka_proofs", gotFolder)
}

func TestCloudinaryStorage_AudioUsesVideoResource(t *testing.T) {
	var gotResource string
	cld := newTestCloudinary(t, func(w http.ResponseWriter, r *http.Request) {
		gotResource = r.FormValue("resource_type")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"secure_url":"https://res.cloudinary.com/demo/video/upload/a.mp3"}`)
	})

	store := NewCloudinaryStorageFromClient(cld, 0, nil)
	audio := NormalizeDataURI(base64.StdEncoding.EncodeToString([]byte("ID3")), "audio/mpeg")
	_, err := store.Upload(context.Background(), audio, "rekaloka_general")
	require.NoError(t, err)
	assert.Equal(t, "video", gotResource)
}

func TestCloudinaryStorage_RetriesProviderErrors(t *testing.T) {
	var calls int32
	cld := newTestCloudinary(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"error":{"message":"temporary failure"}}`)
			return
		}
		_, _ = io.WriteString(w, `{"secure_url":"https://res.cloudinary.com/demo/image/upload/ok.png"}`)
	})

	store := NewCloudinaryStorageFromClient(cld, 2, nil)
	url, err := store.Upload(context.Background(), pngURI(), "rekaloka_proofs")
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/ok.png", url)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
