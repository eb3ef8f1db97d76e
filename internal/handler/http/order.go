package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rststore/storefront/internal/domain"
	"github.com/rststore/storefront/internal/service"
	"github.com/rststore/storefront/pkg/httputil"
	"github.com/rststore/storefront/pkg/validator"
)

// OrderHandler handles HTTP requests for the order endpoints.
type OrderHandler struct {
	service *service.OrderService
	logger  *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(svc *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// OrderLineRequest is one requested line in an order.
type OrderLineRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Qty       int    `json:"qty" validate:"required,gt=0"`
}

// ShippingAddressRequest is the delivery destination in an order request.
type ShippingAddressRequest struct {
	Address    string `json:"address" validate:"required,min=1,max=500"`
	City       string `json:"city" validate:"required,min=1,max=100"`
	PostalCode string `json:"postal_code" validate:"required,min=1,max=20"`
	Country    string `json:"country" validate:"required,min=1,max=100"`
}

// PlaceOrderRequest is the JSON request body for placing an order.
type PlaceOrderRequest struct {
	Items           []OrderLineRequest     `json:"items" validate:"required,min=1,dive"`
	ShippingAddress ShippingAddressRequest `json:"shipping_address" validate:"required"`
	PaymentMethod   string                 `json:"payment_method" validate:"required,max=50"`
}

// PayOrderRequest is the JSON request body for confirming payment.
type PayOrderRequest struct {
	ID     string `json:"id" validate:"required,max=200"`
	Status string `json:"status" validate:"required,max=50"`
	Email  string `json:"email" validate:"omitempty,email"`
}

// --- Handlers ---

// Place handles POST /api/v1/orders (auth)
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	identity := identityFromRequest(r)

	var req PlaceOrderRequest
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

	lines := make([]service.OrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, service.OrderLine{ProductID: item.ProductID, Qty: item.Qty})
	}

	order, err := h.service.PlaceOrder(r.Context(), &service.PlaceOrderInput{
		UserID: identity.UserID,
		Lines:  lines,
		ShippingAddress: domain.ShippingAddress{
			Address:    req.ShippingAddress.Address,
			City:       req.ShippingAddress.City,
			PostalCode: req.ShippingAddress.PostalCode,
			Country:    req.ShippingAddress.Country,
		},
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: order})
}

// ListMine handles GET /api/v1/orders/mine (auth)
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	identity := identityFromRequest(r)
	page, perPage := parsePagination(r)

	orders, total, err := h.service.ListMyOrders(r.Context(), identity.UserID, page, perPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK,
		httputil.NewPaginatedResponse(orders, total, page, perPage))
}

// ListAll handles GET /api/v1/orders (admin)
func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	page, perPage := parsePagination(r)

	orders, total, err := h.service.ListAllOrders(r.Context(), page, perPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK,
		httputil.NewPaginatedResponse(orders, total, page, perPage))
}

// Get handles GET /api/v1/orders/{id} (owner or admin)
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity := identityFromRequest(r)
	orderID := chi.URLParam(r, "id")

	order, err := h.service.GetOrder(r.Context(), identity, orderID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

// Pay handles PUT /api/v1/orders/{id}/pay (owner or admin)
func (h *OrderHandler) Pay(w http.ResponseWriter, r *http.Request) {
	identity := identityFromRequest(r)
	orderID := chi.URLParam(r, "id")

	var req PayOrderRequest
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

	order, err := h.service.MarkPaid(r.Context(), identity, orderID, &domain.PaymentResult{
		ID:     req.ID,
		Status: req.Status,
		Email:  req.Email,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

// Deliver handles PUT /api/v1/orders/{id}/deliver (admin)
func (h *OrderHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	order, err := h.service.MarkDelivered(r.Context(), orderID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}
