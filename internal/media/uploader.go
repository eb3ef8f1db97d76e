package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/rststore/storefront/internal/domain"
	apperrors "github.com/rststore/storefront/pkg/errors"
	"github.com/rststore/storefront/pkg/httpclient"
)

// MaxUploadSize is the largest image accepted for upload, in bytes.
const MaxUploadSize = 5 << 20 // 5 MB

// allowedContentTypes are the image formats the host accepts.
var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Uploader sends product images to the external image host and returns the
// hosted reference. The host responds with the public URL and a public ID
// used for later management of the asset.
type Uploader struct {
	client   *httpclient.CircuitBreakerClient
	endpoint string
	folder   string
	logger   *slog.Logger
}

// NewUploader creates an uploader posting to the given endpoint. Images are
// grouped under the given folder on the host. Calls go through a circuit
// breaker so a failing image host does not hold up admin requests.
func NewUploader(cfg httpclient.Config, endpoint, folder string, logger *slog.Logger) *Uploader {
	client := httpclient.NewCircuitBreakerClient(
		httpclient.New(cfg),
		httpclient.DefaultCircuitBreakerConfig("image-host"),
		logger,
	)
	return &Uploader{
		client:   client,
		endpoint: endpoint,
		folder:   folder,
		logger:   logger,
	}
}

type uploadResponse struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// Upload sends the image to the host and returns its hosted reference. The
// reader is consumed up to MaxUploadSize; larger payloads are rejected
// without being sent.
func (u *Uploader) Upload(ctx context.Context, filename, contentType string, r io.Reader) (*domain.Image, error) {
	if !allowedContentTypes[contentType] {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unsupported image type %q", contentType))
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return nil, apperrors.InvalidInput("image file is empty")
	}
	if len(data) > MaxUploadSize {
		return nil, apperrors.InvalidInput(fmt.Sprintf("image exceeds the %d byte limit", MaxUploadSize))
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("folder", u.folder); err != nil {
		return nil, fmt.Errorf("write folder field: %w", err)
	}

	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	resp, err := u.client.Post(ctx, u.endpoint, writer.FormDataContentType(), bytes.NewReader(body.Bytes()))
	if err != nil {
		// 5xx host responses surface here as errors from the breaker.
		return nil, fmt.Errorf("image host: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "image host")
	}
	defer func() { _ = resp.Body.Close() }()

	var result uploadResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	if result.URL == "" {
		return nil, fmt.Errorf("image host returned no url")
	}

	u.logger.InfoContext(ctx, "image uploaded",
		slog.String("filename", filename),
		slog.String("public_id", result.PublicID),
		slog.Int("size_bytes", len(data)),
	)

	return &domain.Image{URL: result.URL, PublicID: result.PublicID}, nil
}
