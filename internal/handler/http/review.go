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

// ReviewHandler handles HTTP requests for product reviews.
type ReviewHandler struct {
	reviews *service.ReviewService
	users   *service.UserService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(reviews *service.ReviewService, users *service.UserService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, users: users, logger: logger}
}

// AddReviewRequest is the JSON request body for submitting a review.
type AddReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required"`
}

// List handles GET /api/v1/products/{id}/reviews
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	reviews, err := h.reviews.ListReviews(r.Context(), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: reviews})
}

// Create handles POST /api/v1/products/{id}/reviews (auth)
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")
	identity := identityFromRequest(r)

	var req AddReviewRequest
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

	// The reviewer's display name is denormalized onto the review.
	user, err := h.users.GetProfile(r.Context(), identity.UserID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	review, err := h.reviews.AddReview(r.Context(), &service.AddReviewInput{
		ProductID: productID,
		UserID:    identity.UserID,
		UserName:  user.Name,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: review})
}
