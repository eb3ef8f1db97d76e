package media

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rststore/storefront/pkg/httpclient"
)

func newTestUploader(t *testing.T, handler http.HandlerFunc) *Uploader {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	cfg := httpclient.DefaultConfig()
	cfg.MaxRetries = 0
	return NewUploader(cfg, server.URL, "storefront-products", logger)
}

func TestUpload_Success(t *testing.T) {
	uploader := newTestUploader(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(MaxUploadSize))
		assert.Equal(t, "storefront-products", r.FormValue("folder"))

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "sneaker.jpg", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"url":"https://img.example.com/abc.jpg","public_id":"storefront-products/abc"}`))
	})

	image, err := uploader.Upload(context.Background(), "sneaker.jpg", "image/jpeg", bytes.NewReader([]byte("fake-jpeg-bytes")))

	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/abc.jpg", image.URL)
	assert.Equal(t, "storefront-products/abc", image.PublicID)
}

func TestUpload_RejectsUnsupportedType(t *testing.T) {
	called := false
	uploader := newTestUploader(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := uploader.Upload(context.Background(), "notes.txt", "text/plain", bytes.NewReader([]byte("hello")))

	require.Error(t, err)
	assert.False(t, called)
}

func TestUpload_RejectsEmptyFile(t *testing.T) {
	uploader := newTestUploader(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := uploader.Upload(context.Background(), "empty.png", "image/png", bytes.NewReader(nil))

	require.Error(t, err)
}

func TestUpload_RejectsOversizedFile(t *testing.T) {
	called := false
	uploader := newTestUploader(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	big := bytes.Repeat([]byte("x"), MaxUploadSize+1)
	_, err := uploader.Upload(context.Background(), "huge.jpg", "image/jpeg", bytes.NewReader(big))

	require.Error(t, err)
	assert.False(t, called)
}

func TestUpload_HostError(t *testing.T) {
	uploader := newTestUploader(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`upload failed`))
	})

	_, err := uploader.Upload(context.Background(), "sneaker.jpg", "image/jpeg", bytes.NewReader([]byte("fake")))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "image host")
}

func TestUpload_MalformedResponse(t *testing.T) {
	uploader := newTestUploader(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"url":""}`))
	})

	_, err := uploader.Upload(context.Background(), "sneaker.jpg", "image/jpeg", bytes.NewReader([]byte("fake")))

	require.Error(t, err)
}
