package postgres

import (
	"context"
	"encoding/json"
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

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts a new order and its items, reserving stock for every line
// item inside the same transaction. The conditional decrement only matches
// rows with enough stock, so two concurrent orders for the last units
// cannot both succeed; if any line item cannot be reserved the whole
// transaction rolls back and no stock changes persist.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) (err error) {
	ctx, done := database.TraceQuery(ctx, "CreateOrder", "INSERT INTO orders")
	defer func() { done(err) }()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	reserveQuery := `
		UPDATE products
		SET count_in_stock = count_in_stock - $2, updated_at = NOW()
		WHERE id = $1 AND count_in_stock >= $2`

	for _, item := range o.Items {
		ct, err := tx.Exec(ctx, reserveQuery, item.ProductID, item.Qty)
		if err != nil {
			return fmt.Errorf("reserve stock for product %s: %w", item.ProductID, err)
		}
		if ct.RowsAffected() == 0 {
			// Zero rows means either the product is gone or the stock is
			// short; look again to report the right error.
			var available int
			err := tx.QueryRow(ctx, `SELECT count_in_stock FROM products WHERE id = $1`, item.ProductID).Scan(&available)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return apperrors.NotFound("product", item.ProductID)
				}
				return fmt.Errorf("check stock for product %s: %w", item.ProductID, err)
			}
			return apperrors.InsufficientStock(item.ProductID, item.Qty, available)
		}
	}

	shippingJSON, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("marshal shipping address: %w", err)
	}

	orderQuery := `
		INSERT INTO orders (id, user_id, shipping_address, payment_method, items_price, shipping_price, tax_price, total_price, is_paid, is_delivered, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = tx.Exec(ctx, orderQuery,
		o.ID,
		o.UserID,
		shippingJSON,
		o.PaymentMethod,
		o.ItemsPrice,
		o.ShippingPrice,
		o.TaxPrice,
		o.TotalPrice,
		o.IsPaid,
		o.IsDelivered,
		o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, name, image_url, price, qty)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for _, item := range o.Items {
		_, err = tx.Exec(ctx, itemQuery,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Name,
			item.ImageURL,
			item.Price,
			item.Qty,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

const orderColumns = `id, user_id, shipping_address, payment_method, items_price, shipping_price, tax_price, total_price, is_paid, paid_at, payment_result, is_delivered, delivered_at, created_at`

// GetByID retrieves an order by its ID, eagerly loading its items.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (order *domain.Order, err error) {
	ctx, done := database.TraceQuery(ctx, "GetOrder", "SELECT FROM orders")
	defer func() { done(err) }()

	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)

	var (
		o            domain.Order
		shippingJSON []byte
		paymentJSON  []byte
	)

	err = r.pool.QueryRow(ctx, query, id).Scan(
		&o.ID,
		&o.UserID,
		&shippingJSON,
		&o.PaymentMethod,
		&o.ItemsPrice,
		&o.ShippingPrice,
		&o.TaxPrice,
		&o.TotalPrice,
		&o.IsPaid,
		&o.PaidAt,
		&paymentJSON,
		&o.IsDelivered,
		&o.DeliveredAt,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	if err := unmarshalOrderJSON(&o, shippingJSON, paymentJSON); err != nil {
		return nil, err
	}

	items, err := r.loadOrderItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

// List returns orders matching the given filter with the total count.
func (r *OrderRepository) List(ctx context.Context, filter repository.OrderFilter) (orders []domain.Order, total int, err error) {
	ctx, done := database.TraceQuery(ctx, "ListOrders", "SELECT FROM orders")
	defer func() { done(err) }()

	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIndex))
		args = append(args, *filter.UserID)
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
		FROM orders
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		orderColumns, whereClause, argIndex, argIndex+1,
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
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var totalCount int
	orders = make([]domain.Order, 0)

	for rows.Next() {
		var (
			o            domain.Order
			shippingJSON []byte
			paymentJSON  []byte
		)

		if err := rows.Scan(
			&o.ID,
			&o.UserID,
			&shippingJSON,
			&o.PaymentMethod,
			&o.ItemsPrice,
			&o.ShippingPrice,
			&o.TaxPrice,
			&o.TotalPrice,
			&o.IsPaid,
			&o.PaidAt,
			&paymentJSON,
			&o.IsDelivered,
			&o.DeliveredAt,
			&o.CreatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}

		if err := unmarshalOrderJSON(&o, shippingJSON, paymentJSON); err != nil {
			return nil, 0, err
		}

		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	// Batch-load items for all orders in a single query to avoid N+1.
	if len(orders) > 0 {
		orderIDs := make([]string, len(orders))
		for i := range orders {
			orderIDs[i] = orders[i].ID
		}

		itemsQuery := `
			SELECT id, order_id, product_id, name, image_url, price, qty
			FROM order_items
			WHERE order_id = ANY($1)
			ORDER BY id`

		itemRows, err := r.pool.Query(ctx, itemsQuery, orderIDs)
		if err != nil {
			return nil, 0, fmt.Errorf("batch load order items: %w", err)
		}
		defer itemRows.Close()

		itemsByOrderID := make(map[string][]domain.OrderItem, len(orders))
		for itemRows.Next() {
			var item domain.OrderItem
			if err := itemRows.Scan(
				&item.ID,
				&item.OrderID,
				&item.ProductID,
				&item.Name,
				&item.ImageURL,
				&item.Price,
				&item.Qty,
			); err != nil {
				return nil, 0, fmt.Errorf("scan order item: %w", err)
			}
			itemsByOrderID[item.OrderID] = append(itemsByOrderID[item.OrderID], item)
		}
		if err := itemRows.Err(); err != nil {
			return nil, 0, fmt.Errorf("iterate batch order item rows: %w", err)
		}

		for i := range orders {
			if items, ok := itemsByOrderID[orders[i].ID]; ok {
				orders[i].Items = items
			} else {
				orders[i].Items = []domain.OrderItem{}
			}
		}
	}

	return orders, totalCount, nil
}

// MarkPaid sets the paid flag, timestamp, and payment metadata.
func (r *OrderRepository) MarkPaid(ctx context.Context, id string, paidAt time.Time, result *domain.PaymentResult) (err error) {
	ctx, done := database.TraceQuery(ctx, "MarkOrderPaid", "UPDATE orders")
	defer func() { done(err) }()

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal payment result: %w", err)
	}

	// The is_paid guard makes the transition atomic: of two concurrent
	// duplicate payment callbacks, exactly one updates the row.
	query := `
		UPDATE orders
		SET is_paid = TRUE, paid_at = $2, payment_result = $3
		WHERE id = $1 AND is_paid = FALSE`

	ct, err := r.pool.Exec(ctx, query, id, paidAt, resultJSON)
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}

	if ct.RowsAffected() == 0 {
		var alreadyPaid bool
		scanErr := r.pool.QueryRow(ctx, `SELECT is_paid FROM orders WHERE id = $1`, id).Scan(&alreadyPaid)
		if scanErr != nil {
			if errors.Is(scanErr, pgx.ErrNoRows) {
				return apperrors.NotFound("order", id)
			}
			return fmt.Errorf("check order payment state: %w", scanErr)
		}
		if alreadyPaid {
			return fmt.Errorf("order %s is already paid: %w", id, apperrors.ErrAlreadyExists)
		}
		return apperrors.NotFound("order", id)
	}

	return nil
}

// MarkDelivered sets the delivered flag and timestamp.
func (r *OrderRepository) MarkDelivered(ctx context.Context, id string, deliveredAt time.Time) (err error) {
	ctx, done := database.TraceQuery(ctx, "MarkOrderDelivered", "UPDATE orders")
	defer func() { done(err) }()

	query := `
		UPDATE orders
		SET is_delivered = TRUE, delivered_at = $2
		WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id, deliveredAt)
	if err != nil {
		return fmt.Errorf("mark order delivered: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}

	return nil
}

// loadOrderItems retrieves all items belonging to a given order.
func (r *OrderRepository) loadOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, name, image_url, price, qty
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Name,
			&item.ImageURL,
			&item.Price,
			&item.Qty,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order item rows: %w", err)
	}

	return items, nil
}

// unmarshalOrderJSON decodes the JSONB columns of an order row.
func unmarshalOrderJSON(o *domain.Order, shippingJSON, paymentJSON []byte) error {
	if len(shippingJSON) > 0 && string(shippingJSON) != "null" {
		if err := json.Unmarshal(shippingJSON, &o.ShippingAddress); err != nil {
			return fmt.Errorf("unmarshal shipping address: %w", err)
		}
	}

	if len(paymentJSON) > 0 && string(paymentJSON) != "null" {
		var result domain.PaymentResult
		if err := json.Unmarshal(paymentJSON, &result); err != nil {
			return fmt.Errorf("unmarshal payment result: %w", err)
		}
		o.PaymentResult = &result
	}

	return nil
}
