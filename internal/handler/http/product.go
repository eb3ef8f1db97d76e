package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rststore/storefront/internal/domain"
	"github.com/rststore/storefront/internal/repository"
	"github.com/rststore/storefront/internal/service"
	"github.com/rststore/storefront/pkg/httputil"
	"github.com/rststore/storefront/pkg/validator"
)

// ProductHandler handles HTTP requests for the catalog endpoints.
type ProductHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.CatalogService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// ImageRequest is the hosted image reference in product payloads.
type ImageRequest struct {
	URL      string `json:"url" validate:"omitempty,url,max=2000"`
	PublicID string `json:"public_id" validate:"omitempty,max=200"`
}

// CreateProductRequest is the JSON request body for creating a product.
type CreateProductRequest struct {
	Name         string       `json:"name" validate:"required,min=1,max=200"`
	Brand        string       `json:"brand" validate:"omitempty,max=100"`
	Category     string       `json:"category" validate:"omitempty,max=100"`
	Description  string       `json:"description" validate:"omitempty,max=5000"`
	Image        ImageRequest `json:"image"`
	Price        int64        `json:"price" validate:"gte=0"`
	CountInStock int          `json:"count_in_stock" validate:"gte=0"`
}

// UpdateProductRequest is the JSON request body for updating a product.
// Absent fields are left unchanged.
type UpdateProductRequest struct {
	Name         *string       `json:"name" validate:"omitempty,min=1,max=200"`
	Brand        *string       `json:"brand" validate:"omitempty,max=100"`
	Category     *string       `json:"category" validate:"omitempty,max=100"`
	Description  *string       `json:"description" validate:"omitempty,max=5000"`
	Image        *ImageRequest `json:"image"`
	Price        *int64        `json:"price" validate:"omitempty,gte=0"`
	CountInStock *int          `json:"count_in_stock" validate:"omitempty,gte=0"`
}

// --- Handlers ---

// List handles GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := parsePagination(r)
	filter := repository.ProductFilter{Page: page, PerPage: perPage}

	if keyword := r.URL.Query().Get("keyword"); keyword != "" {
		filter.Keyword = &keyword
	}
	if category := r.URL.Query().Get("category"); category != "" {
		filter.Category = &category
	}

	products, total, err := h.service.ListProducts(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK,
		httputil.NewPaginatedResponse(products, total, page, perPage))
}

// Get handles GET /api/v1/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// Create handles POST /api/v1/products (admin)
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), &service.CreateProductInput{
		Name:         req.Name,
		Brand:        req.Brand,
		Category:     req.Category,
		Description:  req.Description,
		Image:        domain.Image{URL: req.Image.URL, PublicID: req.Image.PublicID},
		Price:        req.Price,
		CountInStock: req.CountInStock,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: product})
}

// Update handles PUT /api/v1/products/{id} (admin)
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := &service.UpdateProductInput{
		Name:         req.Name,
		Brand:        req.Brand,
		Category:     req.Category,
		Description:  req.Description,
		Price:        req.Price,
		CountInStock: req.CountInStock,
	}
	if req.Image != nil {
		input.Image = &domain.Image{URL: req.Image.URL, PublicID: req.Image.PublicID}
	}

	product, err := h.service.UpdateProduct(r.Context(), id, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// Delete handles DELETE /api/v1/products/{id} (admin)
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]string{"id": id, "status": "deleted"},
	})
}
