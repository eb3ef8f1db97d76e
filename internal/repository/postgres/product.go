package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rststore/storefront/internal/domain"
	"github.com/rststore/storefront/internal/repository"
	"github.com/rststore/storefront/pkg/database"
	apperrors "github.com/rststore/storefront/pkg/errors"
)

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productColumns = `id, name, slug, brand, category, description, image_url, image_public_id, price, count_in_stock, rating, num_reviews, created_at, updated_at`

// Create inserts a new product into the database.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (err error) {
	ctx, done := database.TraceQuery(ctx, "CreateProduct", "INSERT INTO products")
	defer func() { done(err) }()

	query := `
		INSERT INTO products (id, name, slug, brand, category, description, image_url, image_public_id, price, count_in_stock, rating, num_reviews, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err = r.pool.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Slug,
		p.Brand,
		p.Category,
		p.Description,
		p.Image.URL,
		p.Image.PublicID,
		p.Price,
		p.CountInStock,
		p.Rating,
		p.NumReviews,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by its ID, including its reviews in
// submission order.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (product *domain.Product, err error) {
	ctx, done := database.TraceQuery(ctx, "GetProduct", "SELECT FROM products")
	defer func() { done(err) }()

	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)

	var p domain.Product
	err = r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Brand,
		&p.Category,
		&p.Description,
		&p.Image.URL,
		&p.Image.PublicID,
		&p.Price,
		&p.CountInStock,
		&p.Rating,
		&p.NumReviews,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	reviews, err := r.ListReviews(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Reviews = reviews

	return &p, nil
}

// List returns products matching the given filter with the total count.
// Review lists are not loaded for listings.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) (products []domain.Product, total int, err error) {
	ctx, done := database.TraceQuery(ctx, "ListProducts", "SELECT FROM products")
	defer func() { done(err) }()

	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.Keyword != nil && *filter.Keyword != "" {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", argIndex))
		args = append(args, "%"+*filter.Keyword+"%")
		argIndex++
	}

	if filter.Category != nil && *filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIndex))
		args = append(args, *filter.Category)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Use count(*) OVER() for total count in a single query.
	query := fmt.Sprintf(`
		SELECT %s,
			   count(*) OVER() AS total_count
		FROM products
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		productColumns, whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var totalCount int
	products = make([]domain.Product, 0)

	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Slug,
			&p.Brand,
			&p.Category,
			&p.Description,
			&p.Image.URL,
			&p.Image.PublicID,
			&p.Price,
			&p.CountInStock,
			&p.Rating,
			&p.NumReviews,
			&p.CreatedAt,
			&p.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, totalCount, nil
}

// Update modifies an existing product. The derived rating fields are not
// touched here; they only change through AddReview.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) (err error) {
	ctx, done := database.TraceQuery(ctx, "UpdateProduct", "UPDATE products")
	defer func() { done(err) }()

	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products
		SET name = $1, slug = $2, brand = $3, category = $4, description = $5,
		    image_url = $6, image_public_id = $7, price = $8, count_in_stock = $9, updated_at = $10
		WHERE id = $11`

	ct, err := r.pool.Exec(ctx, query,
		p.Name,
		p.Slug,
		p.Brand,
		p.Category,
		p.Description,
		p.Image.URL,
		p.Image.PublicID,
		p.Price,
		p.CountInStock,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}

	return nil
}

// Delete removes a product from the database by its ID. Reviews are removed
// by the ON DELETE CASCADE constraint.
func (r *ProductRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, done := database.TraceQuery(ctx, "DeleteProduct", "DELETE FROM products")
	defer func() { done(err) }()

	query := `DELETE FROM products WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}

	return nil
}

// AddReview appends a review and recomputes the product's aggregate rating
// inside a single transaction. The product row is locked for the duration
// so concurrent reviewers cannot produce a stale aggregate, and the unique
// (product_id, user_id) index rejects a second review by the same user.
func (r *ProductRepository) AddReview(ctx context.Context, review *domain.Review) (rating float64, numReviews int, err error) {
	ctx, done := database.TraceQuery(ctx, "AddReview", "INSERT INTO product_reviews")
	defer func() { done(err) }()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Lock the product row; also confirms the product still exists.
	var productID string
	err = tx.QueryRow(ctx, `SELECT id FROM products WHERE id = $1 FOR UPDATE`, review.ProductID).Scan(&productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, apperrors.NotFound("product", review.ProductID)
		}
		return 0, 0, fmt.Errorf("lock product row: %w", err)
	}

	insertQuery := `
		INSERT INTO product_reviews (id, product_id, user_id, user_name, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = tx.Exec(ctx, insertQuery,
		review.ID,
		review.ProductID,
		review.UserID,
		review.UserName,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, 0, apperrors.DuplicateReview(review.ProductID, review.UserID)
		}
		return 0, 0, fmt.Errorf("insert review: %w", err)
	}

	// Recompute the aggregate from the authoritative review list rather than
	// incrementally tracking a running sum.
	aggregateQuery := `
		UPDATE products
		SET rating = sub.avg_rating, num_reviews = sub.review_count, updated_at = $2
		FROM (
			SELECT ROUND(AVG(rating)::numeric, 1)::float8 AS avg_rating, COUNT(*) AS review_count
			FROM product_reviews
			WHERE product_id = $1
		) AS sub
		WHERE products.id = $1
		RETURNING products.rating, products.num_reviews`

	err = tx.QueryRow(ctx, aggregateQuery, review.ProductID, time.Now().UTC()).Scan(&rating, &numReviews)
	if err != nil {
		return 0, 0, fmt.Errorf("recompute product rating: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("commit transaction: %w", err)
	}

	return rating, numReviews, nil
}

// ListReviews returns all reviews of a product in submission order.
func (r *ProductRepository) ListReviews(ctx context.Context, productID string) (reviews []domain.Review, err error) {
	ctx, done := database.TraceQuery(ctx, "ListReviews", "SELECT FROM product_reviews")
	defer func() { done(err) }()

	query := `
		SELECT id, product_id, user_id, user_name, rating, comment, created_at
		FROM product_reviews
		WHERE product_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	reviews = make([]domain.Review, 0)
	for rows.Next() {
		var rev domain.Review
		if err := rows.Scan(
			&rev.ID,
			&rev.ProductID,
			&rev.UserID,
			&rev.UserName,
			&rev.Rating,
			&rev.Comment,
			&rev.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	return reviews, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
