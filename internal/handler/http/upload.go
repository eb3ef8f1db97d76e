package http

import (
	"log/slog"
	"net/http"

	"github.com/rststore/storefront/internal/media"
	"github.com/rststore/storefront/pkg/httputil"
)

// UploadHandler handles product image uploads.
type UploadHandler struct {
	uploader *media.Uploader
	logger   *slog.Logger
}

// NewUploadHandler creates a new upload HTTP handler.
func NewUploadHandler(uploader *media.Uploader, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{uploader: uploader, logger: logger}
}

// Create handles POST /api/v1/uploads (admin). The request is multipart
// form data with the image under the "image" field.
func (h *UploadHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(media.MaxUploadSize); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid multipart form: " + err.Error()},
		})
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "image file is required"},
		})
		return
	}
	defer func() { _ = file.Close() }()

	image, err := h.uploader.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: image})
}
