package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rststore/storefront/internal/domain"
	"github.com/rststore/storefront/internal/event"
	"github.com/rststore/storefront/internal/repository"
	apperrors "github.com/rststore/storefront/pkg/errors"
)

// ReviewService implements the review submission and aggregation logic.
type ReviewService struct {
	repo     repository.ProductRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(repo repository.ProductRepository, producer *event.Producer, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// AddReviewInput holds the parameters for submitting a review.
type AddReviewInput struct {
	ProductID string
	UserID    string
	UserName  string
	Rating    int
	Comment   string
}

// AddReview appends a review to a product and returns it. Preconditions are
// checked in a fixed order: product existence, comment length, rating range,
// then the one-review-per-user constraint (enforced by the repository's
// unique index inside the same transaction as the aggregate recompute).
func (s *ReviewService) AddReview(ctx context.Context, input *AddReviewInput) (*domain.Review, error) {
	if _, err := s.repo.GetByID(ctx, input.ProductID); err != nil {
		return nil, fmt.Errorf("get product for review: %w", err)
	}

	if !domain.ValidComment(input.Comment) {
		return nil, apperrors.InvalidInput(fmt.Sprintf(
			"comment must be between %d and %d characters", domain.MinCommentLength, domain.MaxCommentLength))
	}

	if !domain.ValidRating(input.Rating) {
		return nil, apperrors.InvalidInput(fmt.Sprintf(
			"rating must be an integer between %d and %d", domain.MinRating, domain.MaxRating))
	}

	review := &domain.Review{
		ID:        uuid.New().String(),
		ProductID: input.ProductID,
		UserID:    input.UserID,
		UserName:  input.UserName,
		Rating:    input.Rating,
		Comment:   input.Comment,
		CreatedAt: time.Now().UTC(),
	}

	rating, numReviews, err := s.repo.AddReview(ctx, review)
	if err != nil {
		return nil, fmt.Errorf("add review: %w", err)
	}

	if err := s.producer.PublishReviewCreated(ctx, review, rating, numReviews); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.created event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "review added",
		slog.String("review_id", review.ID),
		slog.String("product_id", review.ProductID),
		slog.String("user_id", review.UserID),
		slog.Int("rating", review.Rating),
		slog.Float64("product_rating", rating),
		slog.Int("num_reviews", numReviews),
	)

	return review, nil
}

// ListReviews returns all reviews of a product in submission order.
func (s *ReviewService) ListReviews(ctx context.Context, productID string) ([]domain.Review, error) {
	if _, err := s.repo.GetByID(ctx, productID); err != nil {
		return nil, fmt.Errorf("get product for reviews: %w", err)
	}

	reviews, err := s.repo.ListReviews(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	return reviews, nil
}
