package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rststore/storefront/internal/domain"
	pkgkafka "github.com/rststore/storefront/pkg/kafka"
	"github.com/rststore/storefront/pkg/logger"
)

// Kafka topics for storefront domain events.
var (
	TopicProductCreated = pkgkafka.Topic("product", "created")
	TopicProductUpdated = pkgkafka.Topic("product", "updated")
	TopicProductDeleted = pkgkafka.Topic("product", "deleted")
	TopicReviewCreated  = pkgkafka.Topic("review", "created")
	TopicOrderPlaced    = pkgkafka.Topic("order", "placed")
	TopicOrderPaid      = pkgkafka.Topic("order", "paid")
	TopicOrderDelivered = pkgkafka.Topic("order", "delivered")
	TopicUserRegistered = pkgkafka.Topic("user", "registered")
)

// Aggregate type constants.
const (
	AggregateTypeProduct = "product"
	AggregateTypeOrder   = "order"
	AggregateTypeUser    = "user"
)

// Source identifier for events originating from this service.
const Source = "storefront"

// ProductData is the payload for product lifecycle events.
type ProductData struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    int64  `json:"price"`
}

// ReviewCreatedData is the payload for a review.created event.
type ReviewCreatedData struct {
	ReviewID   string  `json:"review_id"`
	ProductID  string  `json:"product_id"`
	UserID     string  `json:"user_id"`
	Rating     int     `json:"rating"`
	NewRating  float64 `json:"new_rating"`
	NumReviews int     `json:"num_reviews"`
}

// OrderPlacedData is the payload for an order.placed event.
type OrderPlacedData struct {
	OrderID    string `json:"order_id"`
	UserID     string `json:"user_id"`
	TotalPrice int64  `json:"total_price"`
	ItemCount  int    `json:"item_count"`
}

// OrderStateData is the payload for order.paid and order.delivered events.
type OrderStateData struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
}

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// publish wraps event construction and delivery for a single topic.
func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		event.WithCorrelationID(cid)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)

	return nil
}

// PublishProductCreated publishes a product.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductCreated, product.ID, AggregateTypeProduct, ProductData{
		ID:       product.ID,
		Name:     product.Name,
		Category: product.Category,
		Price:    product.Price,
	})
}

// PublishProductUpdated publishes a product.updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductUpdated, product.ID, AggregateTypeProduct, ProductData{
		ID:       product.ID,
		Name:     product.Name,
		Category: product.Category,
		Price:    product.Price,
	})
}

// PublishProductDeleted publishes a product.deleted event.
func (p *Producer) PublishProductDeleted(ctx context.Context, productID string) error {
	return p.publish(ctx, TopicProductDeleted, productID, AggregateTypeProduct, ProductData{ID: productID})
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review, newRating float64, numReviews int) error {
	return p.publish(ctx, TopicReviewCreated, review.ProductID, AggregateTypeProduct, ReviewCreatedData{
		ReviewID:   review.ID,
		ProductID:  review.ProductID,
		UserID:     review.UserID,
		Rating:     review.Rating,
		NewRating:  newRating,
		NumReviews: numReviews,
	})
}

// PublishOrderPlaced publishes an order.placed event.
func (p *Producer) PublishOrderPlaced(ctx context.Context, order *domain.Order) error {
	return p.publish(ctx, TopicOrderPlaced, order.ID, AggregateTypeOrder, OrderPlacedData{
		OrderID:    order.ID,
		UserID:     order.UserID,
		TotalPrice: order.TotalPrice,
		ItemCount:  len(order.Items),
	})
}

// PublishOrderPaid publishes an order.paid event.
func (p *Producer) PublishOrderPaid(ctx context.Context, order *domain.Order) error {
	return p.publish(ctx, TopicOrderPaid, order.ID, AggregateTypeOrder, OrderStateData{
		OrderID: order.ID,
		UserID:  order.UserID,
	})
}

// PublishOrderDelivered publishes an order.delivered event.
func (p *Producer) PublishOrderDelivered(ctx context.Context, order *domain.Order) error {
	return p.publish(ctx, TopicOrderDelivered, order.ID, AggregateTypeOrder, OrderStateData{
		OrderID: order.ID,
		UserID:  order.UserID,
	})
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	return p.publish(ctx, TopicUserRegistered, user.ID, AggregateTypeUser, UserRegisteredData{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
	})
}
