package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rststore/storefront/internal/auth"
	"github.com/rststore/storefront/internal/domain"
	"github.com/rststore/storefront/internal/event"
	"github.com/rststore/storefront/internal/repository"
	apperrors "github.com/rststore/storefront/pkg/errors"
)

// OrderService implements order placement and state transitions.
type OrderService struct {
	repo     repository.OrderRepository
	products repository.ProductRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(repo repository.OrderRepository, products repository.ProductRepository, producer *event.Producer, logger *slog.Logger) *OrderService {
	return &OrderService{
		repo:     repo,
		products: products,
		producer: producer,
		logger:   logger,
	}
}

// OrderLine is one requested (product, quantity) pair at checkout.
type OrderLine struct {
	ProductID string
	Qty       int
}

// PlaceOrderInput holds the parameters for placing an order.
type PlaceOrderInput struct {
	UserID          string
	Lines           []OrderLine
	ShippingAddress domain.ShippingAddress
	PaymentMethod   string
}

// PlaceOrder validates the requested lines against the live catalog,
// snapshots current prices, computes totals server-side, and persists the
// order. Stock is reserved by the repository inside the order-create
// transaction, so a failed line leaves no stock decremented.
func (s *OrderService) PlaceOrder(ctx context.Context, input *PlaceOrderInput) (*domain.Order, error) {
	if len(input.Lines) == 0 {
		return nil, apperrors.InvalidInput("order must contain at least one item")
	}
	if input.PaymentMethod == "" {
		return nil, apperrors.InvalidInput("payment method is required")
	}

	seen := make(map[string]struct{}, len(input.Lines))
	for _, line := range input.Lines {
		if line.Qty <= 0 {
			return nil, apperrors.InvalidInput(fmt.Sprintf("quantity for product %s must be positive", line.ProductID))
		}
		if _, dup := seen[line.ProductID]; dup {
			return nil, apperrors.InvalidInput(fmt.Sprintf("product %s appears more than once", line.ProductID))
		}
		seen[line.ProductID] = struct{}{}
	}

	orderID := uuid.New().String()
	now := time.Now().UTC()

	// Snapshot name, image, and price from the live catalog. Prices from the
	// client are never trusted.
	items := make([]domain.OrderItem, 0, len(input.Lines))
	for _, line := range input.Lines {
		product, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("get product %s for order: %w", line.ProductID, err)
		}

		items = append(items, domain.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			ProductID: product.ID,
			Name:      product.Name,
			ImageURL:  product.Image.URL,
			Price:     product.Price,
			Qty:       line.Qty,
		})
	}

	order := &domain.Order{
		ID:              orderID,
		UserID:          input.UserID,
		Items:           items,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
		CreatedAt:       now,
	}
	order.ComputeTotals()

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.producer.PublishOrderPlaced(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.placed event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID),
		slog.String("user_id", order.UserID),
		slog.Int("items", len(order.Items)),
		slog.Int64("total_price", order.TotalPrice),
	)

	return order, nil
}

// GetOrder retrieves an order, restricted to its owner or an admin.
func (s *OrderService) GetOrder(ctx context.Context, identity auth.Identity, orderID string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}

	if err := auth.RequireSelfOrAdmin(identity, order.UserID); err != nil {
		return nil, err
	}

	return order, nil
}

// ListMyOrders returns the orders owned by the given user.
func (s *OrderService) ListMyOrders(ctx context.Context, userID string, page, perPage int) ([]domain.Order, int, error) {
	orders, total, err := s.repo.List(ctx, repository.OrderFilter{
		UserID:  &userID,
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list orders for user: %w", err)
	}
	return orders, total, nil
}

// ListAllOrders returns all orders, paginated. The handler restricts this
// to admins.
func (s *OrderService) ListAllOrders(ctx context.Context, page, perPage int) ([]domain.Order, int, error) {
	orders, total, err := s.repo.List(ctx, repository.OrderFilter{
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list all orders: %w", err)
	}
	return orders, total, nil
}

// MarkPaid transitions an order to paid and records payment metadata.
// Marking an already-paid order is a no-op, so duplicate payment callbacks
// are tolerated. Only the owner or an admin may confirm payment.
func (s *OrderService) MarkPaid(ctx context.Context, identity auth.Identity, orderID string, result *domain.PaymentResult) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order for payment: %w", err)
	}

	if err := auth.RequireSelfOrAdmin(identity, order.UserID); err != nil {
		return nil, err
	}

	if order.IsPaid {
		return order, nil
	}

	paidAt := time.Now().UTC()
	if err := s.repo.MarkPaid(ctx, orderID, paidAt, result); err != nil {
		// A concurrent duplicate callback may have won the transition
		// between our read and the update; treat losing as the same no-op.
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			paid, getErr := s.repo.GetByID(ctx, orderID)
			if getErr != nil {
				return nil, fmt.Errorf("get order after concurrent payment: %w", getErr)
			}
			return paid, nil
		}
		return nil, fmt.Errorf("mark order paid: %w", err)
	}

	order.IsPaid = true
	order.PaidAt = &paidAt
	order.PaymentResult = result

	if err := s.producer.PublishOrderPaid(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.paid event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order paid",
		slog.String("order_id", order.ID),
		slog.String("user_id", order.UserID),
	)

	return order, nil
}

// MarkDelivered transitions a paid order to delivered. Delivering an unpaid
// order is an invalid state transition; repeating the call on a delivered
// order is a no-op. The handler restricts this to admins.
func (s *OrderService) MarkDelivered(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order for delivery: %w", err)
	}

	if !order.IsPaid {
		return nil, apperrors.InvalidState("order must be paid before it can be delivered")
	}

	if order.IsDelivered {
		return order, nil
	}

	deliveredAt := time.Now().UTC()
	if err := s.repo.MarkDelivered(ctx, orderID, deliveredAt); err != nil {
		return nil, fmt.Errorf("mark order delivered: %w", err)
	}

	order.IsDelivered = true
	order.DeliveredAt = &deliveredAt

	if err := s.producer.PublishOrderDelivered(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.delivered event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order delivered",
		slog.String("order_id", order.ID),
		slog.String("user_id", order.UserID),
	)

	return order, nil
}
