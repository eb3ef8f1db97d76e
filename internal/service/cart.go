package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rststore/storefront/internal/domain"
	"github.com/rststore/storefront/internal/repository"
	apperrors "github.com/rststore/storefront/pkg/errors"
)

// CartService implements cart management. The cart is a convenience store;
// stock and prices are re-validated at order placement.
type CartService struct {
	repo     repository.CartRepository
	products repository.ProductRepository
	logger   *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(repo repository.CartRepository, products repository.ProductRepository, logger *slog.Logger) *CartService {
	return &CartService{
		repo:     repo,
		products: products,
		logger:   logger,
	}
}

// GetCart retrieves the user's cart.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

// SetItem sets the quantity for a product in the user's cart. A zero
// quantity removes the item. The stock check here is a courtesy for the
// shopper; the authoritative check happens at order placement.
func (s *CartService) SetItem(ctx context.Context, userID, productID string, qty int) (*domain.Cart, error) {
	if qty < 0 {
		return nil, apperrors.InvalidInput("quantity must not be negative")
	}

	if qty > 0 {
		product, err := s.products.GetByID(ctx, productID)
		if err != nil {
			return nil, fmt.Errorf("get product for cart: %w", err)
		}
		if !product.InStock(qty) {
			return nil, apperrors.InsufficientStock(productID, qty, product.CountInStock)
		}
	}

	if err := s.repo.SetItem(ctx, userID, productID, qty); err != nil {
		return nil, fmt.Errorf("set cart item: %w", err)
	}

	s.logger.DebugContext(ctx, "cart item set",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
		slog.Int("qty", qty),
	)

	return s.GetCart(ctx, userID)
}

// Clear removes the user's cart entirely.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	if err := s.repo.Clear(ctx, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	s.logger.DebugContext(ctx, "cart cleared",
		slog.String("user_id", userID),
	)

	return nil
}
