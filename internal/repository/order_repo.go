package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/Cheertaboi/pharmacy-pricing-service/internal/models"
)

type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

// Create inserts o and its items. o.ID must already be set.
func (r *OrderRepo) Create(ctx context.Context, tx *sql.Tx, o *models.Order) error {
	q := pick(r.db, tx)

	insert := `
		INSERT INTO orders
		(id, user_id, status, delivery_mode, promo_code_id,
		 subtotal, discount, shipping_cost, weight, total, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW(),NOW())
		RETURNING created_at, updated_at
	`
	err := q.QueryRowContext(ctx, insert,
		o.ID,
		o.UserID,
		o.Status,
		o.DeliveryMode,
		o.PromoCodeID,
		o.Subtotal,
		o.Discount,
		o.ShippingCost,
		o.Weight,
		o.Total,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create order: %w", translate(err))
	}

	stmt := `
		INSERT INTO order_items (order_id, product_id, quantity, original_price, unit_price, line_total)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, it := range o.Items {
		if _, err := q.ExecContext(ctx, stmt, o.ID, it.ProductID, it.Quantity, it.OriginalPrice, it.UnitPrice, it.LineTotal); err != nil {
			return fmt.Errorf("create order item %d: %w", it.ProductID, translate(err))
		}
	}
	return nil
}

func (r *OrderRepo) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order

	query := `
		SELECT id, user_id, status, delivery_mode, promo_code_id,
		       subtotal, discount, shipping_cost, weight, total, created_at, updated_at
		FROM orders
		WHERE id = $1
	`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&o.ID,
		&o.UserID,
		&o.Status,
		&o.DeliveryMode,
		&o.PromoCodeID,
		&o.Subtotal,
		&o.Discount,
		&o.ShippingCost,
		&o.Weight,
		&o.Total,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", id, translate(err))
	}

	items, err := r.getItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

func (r *OrderRepo) getItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	query := `
		SELECT product_id, quantity, original_price, unit_price, line_total
		FROM order_items
		WHERE order_id = $1
		ORDER BY product_id
	`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list items of order %s: %w", orderID, err)
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ProductID, &it.Quantity, &it.OriginalPrice, &it.UnitPrice, &it.LineTotal); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpdateStatus moves the order from one status to another. It returns
// ErrConflict when the order is no longer in status from.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) error {
	query := `
		UPDATE orders
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, from, to)
	if err != nil {
		return fmt.Errorf("update status of order %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update status of order %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("order %s is no longer %s: %w", id, from, ErrConflict)
	}
	return nil
}
