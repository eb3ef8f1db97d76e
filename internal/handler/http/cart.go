package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rststore/storefront/internal/service"
	"github.com/rststore/storefront/pkg/httputil"
	"github.com/rststore/storefront/pkg/validator"
)

// CartHandler handles HTTP requests for the cart endpoints.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{service: svc, logger: logger}
}

// SetCartItemRequest is the JSON request body for setting a cart item
// quantity. A zero quantity removes the item.
type SetCartItemRequest struct {
	Qty int `json:"qty" validate:"gte=0"`
}

// Get handles GET /api/v1/cart (auth)
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity := identityFromRequest(r)

	cart, err := h.service.GetCart(r.Context(), identity.UserID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// SetItem handles PUT /api/v1/cart/items/{productId} (auth)
func (h *CartHandler) SetItem(w http.ResponseWriter, r *http.Request) {
	identity := identityFromRequest(r)
	productID := chi.URLParam(r, "productId")

	var req SetCartItemRequest
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

	cart, err := h.service.SetItem(r.Context(), identity.UserID, productID, req.Qty)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// Clear handles DELETE /api/v1/cart (auth)
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	identity := identityFromRequest(r)

	if err := h.service.Clear(r.Context(), identity.UserID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]string{"status": "cleared"},
	})
}
