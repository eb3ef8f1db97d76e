package repository

import (
	"context"
	"time"

	"github.com/rststore/storefront/internal/domain"
)

// ProductFilter defines filter criteria for listing products.
type ProductFilter struct {
	Keyword  *string
	Category *string
	Page     int
	PerPage  int
}

// OrderFilter defines filter criteria for listing orders.
type OrderFilter struct {
	UserID  *string
	Page    int
	PerPage int
}

// ProductRepository defines the interface for product persistence operations.
type ProductRepository interface {
	// Create inserts a new product into the store.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its unique identifier, including its
	// reviews in submission order.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// List returns products matching the given filter along with the total
	// count. Listed products do not carry their review lists.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)

	// Update modifies an existing product.
	Update(ctx context.Context, product *domain.Product) error

	// Delete removes a product and its reviews.
	Delete(ctx context.Context, id string) error

	// AddReview appends a review and recomputes the product's rating and
	// review count in a single transaction. Returns the updated aggregate.
	AddReview(ctx context.Context, review *domain.Review) (rating float64, numReviews int, err error)

	// ListReviews returns all reviews of a product in submission order.
	ListReviews(ctx context.Context, productID string) ([]domain.Review, error)
}

// OrderRepository defines the interface for order persistence operations.
type OrderRepository interface {
	// Create inserts a new order and its items, decrementing stock for every
	// line item in the same transaction. If any product is missing or short
	// on stock, nothing is persisted.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by its unique identifier, including items.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// List returns orders matching the given filter along with the total count.
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, int, error)

	// MarkPaid sets the paid flag, timestamp, and payment metadata.
	MarkPaid(ctx context.Context, id string, paidAt time.Time, result *domain.PaymentResult) error

	// MarkDelivered sets the delivered flag and timestamp.
	MarkDelivered(ctx context.Context, id string, deliveredAt time.Time) error
}

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update modifies an existing user.
	Update(ctx context.Context, user *domain.User) error

	// List returns all users with the total count, paginated.
	List(ctx context.Context, page, perPage int) ([]domain.User, int, error)
}

// CartRepository defines the interface for cart persistence operations.
type CartRepository interface {
	// Get retrieves the cart for a user. A user without a stored cart gets
	// an empty cart, not an error.
	Get(ctx context.Context, userID string) (*domain.Cart, error)

	// SetItem sets the quantity for a product in the user's cart. A zero
	// quantity removes the item.
	SetItem(ctx context.Context, userID, productID string, qty int) error

	// Clear removes the user's cart entirely.
	Clear(ctx context.Context, userID string) error
}
